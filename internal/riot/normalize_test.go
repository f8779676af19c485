package riot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStatLinePrefersCurrentFields(t *testing.T) {
	p := &Participant{
		TeamPosition:                "BOTTOM",
		TotalMinionsKilled:          200,
		MinionsKilled:               150,
		TotalDamageDealtToChampions: 25000,
		TotalDamageDealtToChamps:    20000,
		WardsPlaced:                 12,
		SightWardsBoughtInGame:      3,
	}

	s := NormalizeStatLine(p)
	assert.Equal(t, "BOTTOM", s.Role)
	assert.Equal(t, 200, s.MinionsKilled)
	assert.Equal(t, 25000, s.DamageToChampions)
	assert.Equal(t, 12, s.WardsPlaced)
}

func TestNormalizeStatLineFallsBackToLegacyFields(t *testing.T) {
	p := &Participant{
		IndividualPosition:       "MIDDLE",
		MinionsKilled:            150,
		TotalDamageDealtToChamps: 20000,
		SightWardsBoughtInGame:   3,
	}

	s := NormalizeStatLine(p)
	assert.Equal(t, "MIDDLE", s.Role)
	assert.Equal(t, 150, s.MinionsKilled)
	assert.Equal(t, 20000, s.DamageToChampions)
	assert.Equal(t, 3, s.WardsPlaced)
}

func analyzeMatch() *Match {
	return &Match{
		Metadata: MatchMetadata{MatchID: "NA1_100"},
		Info: MatchInfo{
			GameDuration:     1800,
			GameEndTimestamp: 1767225600000,
			Participants: []Participant{
				{
					PUUID: "me", TeamID: 100, TeamPosition: "TOP", ChampionName: "Garen",
					Kills: 5, Deaths: 2, Assists: 3, TotalMinionsKilled: 120,
					GoldEarned: 12000, TotalDamageDealtToChampions: 15000, Win: true,
				},
				{
					PUUID: "rival", TeamID: 200, TeamPosition: "TOP", ChampionName: "Darius",
					TotalMinionsKilled: 110, GoldEarned: 10000, TotalDamageDealtToChampions: 10000,
				},
				{
					PUUID: "their-jungler", TeamID: 200, TeamPosition: "JUNGLE", ChampionName: "Lee Sin",
				},
			},
		},
	}
}

func TestFindOpposingLaner(t *testing.T) {
	match := analyzeMatch()
	self := &match.Info.Participants[0]

	enemy := FindOpposingLaner(match, self)
	require.NotNil(t, enemy)
	assert.Equal(t, "rival", enemy.PUUID)

	// no counterpart on the enemy team
	soloRole := &Participant{PUUID: "solo", TeamID: 100, TeamPosition: "UTILITY"}
	assert.Nil(t, FindOpposingLaner(match, soloRole))

	// unresolvable role never matches
	blank := &Participant{PUUID: "blank", TeamID: 100}
	assert.Nil(t, FindOpposingLaner(match, blank))
}

func TestPerformanceFromMatch(t *testing.T) {
	perf, ok := PerformanceFromMatch(analyzeMatch(), "me")
	require.True(t, ok)

	assert.Equal(t, "NA1_100", perf.MatchID)
	assert.Equal(t, "TOP", perf.Position)
	assert.Equal(t, 120, perf.CS)
	assert.Equal(t, "Darius", perf.EnemyChampion)
	assert.True(t, perf.Win)
	// cs 40, kda 80, damage 75, gold 60 -> base 63.75, win -> 78.3
	assert.Equal(t, 78.3, perf.PerformanceScore)
	require.NotNil(t, perf.ScoreBreakdown)
	assert.Equal(t, 63.8, perf.ScoreBreakdown.BaseScore)
}

func TestPerformanceFromMatchAbsentPlayer(t *testing.T) {
	_, ok := PerformanceFromMatch(analyzeMatch(), "stranger")
	assert.False(t, ok)
}
