package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riftforge/rift-balancer/internal/types"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPlayerRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	adjusted := 61.5
	player := &types.Player{
		ID:           "puuid-1",
		Name:         "Faker",
		Tag:          "KR1",
		Tier:         "CHALLENGER",
		Division:     1,
		LeaguePoints: 1200,
		Rating:       100,
		MainPosition: "MID",
		Region:       "kr",
	}
	require.NoError(t, db.UpsertPlayer(ctx, player))

	got, err := db.GetPlayer(ctx, "puuid-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Faker", got.Name)
	assert.Equal(t, "MID", got.MainPosition)
	assert.Nil(t, got.AdjustedRating)

	// upsert refreshes in place
	player.AdjustedRating = &adjusted
	player.Tier = "GRANDMASTER"
	require.NoError(t, db.UpsertPlayer(ctx, player))

	got, err = db.GetPlayer(ctx, "puuid-1")
	require.NoError(t, err)
	assert.Equal(t, "GRANDMASTER", got.Tier)
	require.NotNil(t, got.AdjustedRating)
	assert.Equal(t, 61.5, *got.AdjustedRating)

	players, err := db.ListPlayers(ctx)
	require.NoError(t, err)
	assert.Len(t, players, 1)

	deleted, err := db.DeletePlayer(ctx, "puuid-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = db.DeletePlayer(ctx, "puuid-1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDeletePlayerCascadesPerformances(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertPlayer(ctx, &types.Player{ID: "p1", Name: "a", Tag: "t", Tier: "GOLD"}))
	require.NoError(t, db.SavePerformances(ctx, "p1", []types.GamePerformance{
		{MatchID: "NA1_1", Position: "TOP", PerformanceScore: 70, Win: true, GameTimestamp: 100},
	}))

	// foreign_keys must be on for the cascade to fire
	var fk int
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	deleted, err := db.DeletePlayer(ctx, "p1")
	require.NoError(t, err)
	require.True(t, deleted)

	got, err := db.ListPerformances(ctx, "p1", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetPlayerMissing(t *testing.T) {
	db := testDB(t)
	got, err := db.GetPlayer(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPerformanceRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertPlayer(ctx, &types.Player{ID: "p1", Name: "a", Tag: "t", Tier: "GOLD"}))

	perfs := []types.GamePerformance{
		{
			MatchID:          "NA1_1",
			Position:         "TOP",
			PerformanceScore: 78.3,
			Win:              true,
			GameTimestamp:    200,
			ScoreBreakdown:   &types.ScoreBreakdown{BaseScore: 63.8, Final: 78.3, Details: map[string]float64{"csScore": 40}},
		},
		{MatchID: "NA1_2", Position: "TOP", PerformanceScore: 45.0, GameTimestamp: 100},
	}
	require.NoError(t, db.SavePerformances(ctx, "p1", perfs))

	// rescoring the same match updates rather than duplicates
	perfs[0].PerformanceScore = 80.0
	require.NoError(t, db.SavePerformances(ctx, "p1", perfs[:1]))

	got, err := db.ListPerformances(ctx, "p1", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// newest first
	assert.Equal(t, "NA1_1", got[0].MatchID)
	assert.Equal(t, 80.0, got[0].PerformanceScore)
	require.NotNil(t, got[0].ScoreBreakdown)
	assert.Equal(t, 40.0, got[0].ScoreBreakdown.Details["csScore"])
	assert.Nil(t, got[1].ScoreBreakdown)
}

func TestTeamSetRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	teams := []types.Team{
		{
			ID:          uuid.NewString(),
			Name:        "Team 1",
			Players:     []types.Player{{ID: "a", Name: "a", Rating: 90}},
			TotalRating: 90, AvgRating: 90,
			CaptainID:           "a",
			PositionAssignments: map[string]string{"a": "MID"},
		},
		{
			ID:      uuid.NewString(),
			Name:    "Team 2",
			Players: []types.Player{{ID: "b", Name: "b", Rating: 80}},
			TotalRating: 80, AvgRating: 80,
		},
	}

	setID, err := db.SaveTeamSet(ctx, 1, 2, 5.0, teams)
	require.NoError(t, err)
	assert.NotEmpty(t, setID)

	sets, err := db.ListTeamSets(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, setID, sets[0].ID)
	assert.Equal(t, 5.0, sets[0].BalanceScore)
	require.Len(t, sets[0].Teams, 2)
	assert.Equal(t, "Team 1", sets[0].Teams[0].Name)
	assert.Equal(t, "a", sets[0].Teams[0].CaptainID)
	assert.Equal(t, "MID", sets[0].Teams[0].PositionAssignments["a"])
	assert.Empty(t, sets[0].Teams[1].CaptainID)
	assert.Nil(t, sets[0].Teams[1].PositionAssignments)
}
