// Package balance partitions a rated player pool into evenly matched teams
// using a captain-seeded snake draft and a randomized restart search.
package balance

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/riftforge/rift-balancer/internal/types"
)

// DefaultIterations bounds the restart search when the caller passes none.
const DefaultIterations = 100

// InsufficientPlayersError reports a pool smaller than teamSize*numberOfTeams.
type InsufficientPlayersError struct {
	Required int
	Actual   int
}

func (e *InsufficientPlayersError) Error() string {
	return fmt.Sprintf("insufficient players: need %d, have %d", e.Required, e.Actual)
}

// InsufficientPlayersForCaptainsError reports that the chosen captains cannot
// be honored within the pool size.
type InsufficientPlayersForCaptainsError struct {
	Required int
	Actual   int
}

func (e *InsufficientPlayersForCaptainsError) Error() string {
	return fmt.Sprintf("insufficient players to honor captain choices: need %d, have %d", e.Required, e.Actual)
}

// Balancer runs drafts with its own random source so tests can seed it and
// the server can construct a fresh one per request.
type Balancer struct {
	rng *rand.Rand
}

// New returns a Balancer seeded with the given value.
func New(seed int64) *Balancer {
	return &Balancer{rng: rand.New(rand.NewSource(seed))}
}

// NewFromTime returns a Balancer seeded from the current time.
func NewFromTime() *Balancer {
	return New(time.Now().UnixNano())
}

// BuildTeams runs a single captain-seeded snake draft. Captains claim the
// team matching their position in captainIDs; everyone else drafts in the
// order the caller supplied, which is how FindOptimalTeams injects its
// shuffles.
func (b *Balancer) BuildTeams(players []types.Player, teamSize, numberOfTeams int, captainIDs []string) ([]types.Team, error) {
	required := teamSize * numberOfTeams
	if len(players) < required {
		return nil, &InsufficientPlayersError{Required: required, Actual: len(players)}
	}

	sorted := make([]types.Player, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectiveRating() > sorted[j].EffectiveRating()
	})

	captains := resolveCaptains(players, captainIDs, numberOfTeams)
	isCaptain := make(map[string]bool, len(captains))
	for _, c := range captains {
		isCaptain[c.ID] = true
	}

	// Working pool: captains first, then the best of the rest until full.
	pool := make(map[string]bool, required)
	for _, c := range captains {
		pool[c.ID] = true
	}
	for _, p := range sorted {
		if len(pool) == required {
			break
		}
		if !pool[p.ID] {
			pool[p.ID] = true
		}
	}
	if len(pool) < required {
		return nil, &InsufficientPlayersForCaptainsError{Required: required, Actual: len(pool)}
	}

	rosters := make([][]types.Player, numberOfTeams)
	for i, c := range captains {
		rosters[i] = append(rosters[i], c)
	}

	cur, dir := 0, 1
	for _, p := range players {
		if !pool[p.ID] || isCaptain[p.ID] {
			continue
		}
		skips := 0
		for len(rosters[cur]) >= teamSize {
			cur, dir = snakeStep(cur, dir, numberOfTeams)
			skips++
			if skips > numberOfTeams {
				dir = -dir
				skips = 0
			}
		}
		rosters[cur] = append(rosters[cur], p)
		cur, dir = snakeStep(cur, dir, numberOfTeams)
	}

	teams := make([]types.Team, numberOfTeams)
	now := time.Now()
	for i, roster := range rosters {
		var total float64
		for _, p := range roster {
			total += p.EffectiveRating()
		}
		team := types.Team{
			ID:          uuid.NewString(),
			Name:        fmt.Sprintf("Team %d", i+1),
			Players:     roster,
			TotalRating: total,
			AvgRating:   total / float64(len(roster)),
			CreatedAt:   now,
			Type:        "balanced",
		}
		if i < len(captains) {
			team.CaptainID = captains[i].ID
		}
		if teamSize == 5 {
			team.PositionAssignments = b.assignPositions(roster)
		}
		teams[i] = team
	}
	return teams, nil
}

// FindOptimalTeams drafts once on the caller's order as a baseline, then
// rebuilds from shuffled orders and keeps the flattest partition found.
// Strictly-lower comparison keeps the first candidate on score ties.
func (b *Balancer) FindOptimalTeams(players []types.Player, teamSize, numberOfTeams, iterations int, captainIDs []string) ([]types.Team, error) {
	if iterations <= 0 {
		iterations = DefaultIterations
	}

	best, err := b.BuildTeams(players, teamSize, numberOfTeams, captainIDs)
	if err != nil {
		return nil, err
	}
	bestScore := BalanceScore(best)

	shuffled := make([]types.Player, len(players))
	copy(shuffled, players)
	for i := 0; i < iterations; i++ {
		b.rng.Shuffle(len(shuffled), func(a, c int) {
			shuffled[a], shuffled[c] = shuffled[c], shuffled[a]
		})
		candidate, err := b.BuildTeams(shuffled, teamSize, numberOfTeams, captainIDs)
		if err != nil {
			return nil, err
		}
		if score := BalanceScore(candidate); score < bestScore {
			best, bestScore = candidate, score
		}
	}
	return best, nil
}

// BalanceScore is the population standard deviation of team average ratings.
// Lower is flatter.
func BalanceScore(teams []types.Team) float64 {
	if len(teams) == 0 {
		return 0
	}
	var mean float64
	for _, t := range teams {
		mean += t.AvgRating
	}
	mean /= float64(len(teams))

	var variance float64
	for _, t := range teams {
		d := t.AvgRating - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(teams)))
}

// resolveCaptains maps captain ids onto players: de-duplicated, unknown ids
// dropped, input order kept, capped at numberOfTeams.
func resolveCaptains(players []types.Player, captainIDs []string, numberOfTeams int) []types.Player {
	byID := make(map[string]types.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	seen := make(map[string]bool, len(captainIDs))
	var captains []types.Player
	for _, id := range captainIDs {
		if len(captains) == numberOfTeams {
			break
		}
		p, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		captains = append(captains, p)
	}
	return captains
}

// snakeStep advances the draft cursor, lingering on the boundary team for one
// extra pick when the direction flips.
func snakeStep(i, dir, n int) (int, int) {
	next := i + dir
	if next >= n || next < 0 {
		return i, -dir
	}
	return next, dir
}
