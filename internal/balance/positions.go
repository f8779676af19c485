package balance

import (
	"github.com/riftforge/rift-balancer/internal/scoring"
	"github.com/riftforge/rift-balancer/internal/types"
)

// assignPositions maps each of five players to a distinct role. Preferred
// positions win first, declared fallbacks second, and whatever roles remain
// are raffled off uniformly at random.
func (b *Balancer) assignPositions(roster []types.Player) map[string]string {
	assignments := make(map[string]string, len(roster))
	claimed := make(map[scoring.Role]bool, 5)

	for _, p := range roster {
		if role, ok := scoring.ResolveRole(p.MainPosition); ok && !claimed[role] {
			assignments[p.ID] = string(role)
			claimed[role] = true
		}
	}
	for _, p := range roster {
		if _, done := assignments[p.ID]; done {
			continue
		}
		if role, ok := scoring.ResolveRole(p.SubPosition); ok && !claimed[role] {
			assignments[p.ID] = string(role)
			claimed[role] = true
		}
	}

	var remaining []scoring.Role
	for _, role := range scoring.Roles() {
		if !claimed[role] {
			remaining = append(remaining, role)
		}
	}
	for _, p := range roster {
		if _, done := assignments[p.ID]; done {
			continue
		}
		idx := b.rng.Intn(len(remaining))
		assignments[p.ID] = string(remaining[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return assignments
}
