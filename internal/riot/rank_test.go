package riot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/riftforge/rift-balancer/internal/types"
)

func TestTierRating(t *testing.T) {
	tests := []struct {
		name string
		tier string
		rank string
		lp   int
		want float64
	}{
		{"iron four floor", "IRON", "IV", 0, 0.25},
		{"gold two", "GOLD", "II", 50, 37.25},
		{"emerald one", "EMERALD", "I", 0, 67.5},
		{"diamond three", "DIAMOND", "III", 20, 76.2},
		{"challenger capped", "CHALLENGER", "I", 1200, 100},
		{"unknown tier falls to lp only", "WOOD", "IV", 10, 0.35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TierRating(tt.tier, tt.rank, tt.lp), 0.0001)
		})
	}
}

func TestDivision(t *testing.T) {
	assert.Equal(t, 1, Division("I"))
	assert.Equal(t, 4, Division("IV"))
	assert.Equal(t, 0, Division(""))
}

func TestApplySoloQueueRank(t *testing.T) {
	player := &types.Player{}
	applySoloQueueRank(player, []LeagueEntry{
		{QueueType: "RANKED_FLEX_SR", Tier: "DIAMOND", Rank: "I", LeaguePoints: 90},
		{QueueType: "RANKED_SOLO_5x5", Tier: "PLATINUM", Rank: "II", LeaguePoints: 40},
	})

	assert.Equal(t, "PLATINUM", player.Tier)
	assert.Equal(t, 2, player.Division)
	assert.Equal(t, 40, player.LeaguePoints)
	assert.InDelta(t, 52.15, player.Rating, 0.0001)
	assert.False(t, player.Unranked)
}

func TestApplySoloQueueRankUnranked(t *testing.T) {
	player := &types.Player{}
	applySoloQueueRank(player, []LeagueEntry{
		{QueueType: "RANKED_FLEX_SR", Tier: "GOLD", Rank: "I"},
	})

	assert.True(t, player.Unranked)
	assert.Equal(t, "IRON", player.Tier)
	assert.Equal(t, 4, player.Division)
	assert.Equal(t, 0.0, player.Rating)
}
