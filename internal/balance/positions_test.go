package balance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riftforge/rift-balancer/internal/types"
)

func positioned(id string, main, sub string) types.Player {
	return types.Player{ID: id, Name: id, MainPosition: main, SubPosition: sub}
}

func assertFullCoverage(t *testing.T, assignments map[string]string) {
	t.Helper()
	require.Len(t, assignments, 5)
	roles := make(map[string]bool)
	for _, role := range assignments {
		assert.False(t, roles[role], "role %s assigned twice", role)
		roles[role] = true
	}
}

func TestAssignPositionsHonorsMainPositions(t *testing.T) {
	roster := []types.Player{
		positioned("p1", "TOP", ""),
		positioned("p2", "JUNGLE", ""),
		positioned("p3", "MID", ""),
		positioned("p4", "ADC", ""),
		positioned("p5", "SUPPORT", ""),
	}

	assignments := New(1).assignPositions(roster)

	assert.Equal(t, "TOP", assignments["p1"])
	assert.Equal(t, "JUNGLE", assignments["p2"])
	assert.Equal(t, "MID", assignments["p3"])
	assert.Equal(t, "ADC", assignments["p4"])
	assert.Equal(t, "SUPPORT", assignments["p5"])
}

func TestAssignPositionsSharedMainFallsToSub(t *testing.T) {
	roster := []types.Player{
		positioned("p1", "MID", ""),
		positioned("p2", "MID", "TOP"),
		positioned("p3", "JUNGLE", ""),
		positioned("p4", "ADC", ""),
		positioned("p5", "SUPPORT", ""),
	}

	assignments := New(1).assignPositions(roster)

	// first claimant in roster order wins the contested role
	assert.Equal(t, "MID", assignments["p1"])
	assert.Equal(t, "TOP", assignments["p2"])
	assertFullCoverage(t, assignments)
}

func TestAssignPositionsRandomRemainder(t *testing.T) {
	roster := []types.Player{
		positioned("p1", "BOTTOM", ""),
		positioned("p2", "", ""),
		positioned("p3", "", ""),
		positioned("p4", "", ""),
		positioned("p5", "", ""),
	}

	assignments := New(3).assignPositions(roster)

	// BOTTOM aliases to ADC before the raffle
	assert.Equal(t, "ADC", assignments["p1"])
	assertFullCoverage(t, assignments)
}

func TestAssignPositionsViaBuildTeams(t *testing.T) {
	players := make([]types.Player, 0, 10)
	for i := 0; i < 10; i++ {
		p := ratedPlayer(string(rune('a'+i)), float64(90-i*4))
		players = append(players, p)
	}

	teams, err := New(5).BuildTeams(players, 5, 2, nil)
	require.NoError(t, err)
	for _, team := range teams {
		assertFullCoverage(t, team.PositionAssignments)
	}

	// smaller team sizes carry no assignments
	teams, err = New(5).BuildTeams(players[:6], 3, 2, nil)
	require.NoError(t, err)
	for _, team := range teams {
		assert.Nil(t, team.PositionAssignments)
	}
}
