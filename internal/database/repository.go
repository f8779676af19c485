package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/riftforge/rift-balancer/internal/types"
)

// UpsertPlayer inserts or refreshes one roster entry.
func (db *DB) UpsertPlayer(ctx context.Context, p *types.Player) error {
	now := time.Now().UTC()
	var adjusted sql.NullFloat64
	if p.AdjustedRating != nil {
		adjusted = sql.NullFloat64{Float64: *p.AdjustedRating, Valid: true}
	}

	_, err := db.stmt("upsert_player").ExecContext(ctx,
		p.ID, p.Name, p.Tag, p.Tier, p.Division, p.LeaguePoints,
		p.Rating, adjusted, p.Unranked, p.MainPosition, p.SubPosition,
		p.Region, p.ProfileIconID, now, now,
	)
	if err != nil {
		return fmt.Errorf("upserting player %s: %w", p.ID, err)
	}
	return nil
}

// DeletePlayer removes a roster entry and, via cascade, its performances.
func (db *DB) DeletePlayer(ctx context.Context, id string) (bool, error) {
	res, err := db.stmt("delete_player").ExecContext(ctx, id)
	if err != nil {
		return false, fmt.Errorf("deleting player %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetPlayer loads one roster entry.
func (db *DB) GetPlayer(ctx context.Context, id string) (*types.Player, error) {
	row := db.stmt("get_player").QueryRowContext(ctx, id)
	p, err := scanPlayer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading player %s: %w", id, err)
	}
	return p, nil
}

// ListPlayers loads the whole roster, best rating first.
func (db *DB) ListPlayers(ctx context.Context) ([]types.Player, error) {
	rows, err := db.stmt("list_players").QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	defer rows.Close()

	var players []types.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (*types.Player, error) {
	var p types.Player
	var adjusted sql.NullFloat64
	var mainPos, subPos, region sql.NullString

	err := row.Scan(&p.ID, &p.Name, &p.Tag, &p.Tier, &p.Division, &p.LeaguePoints,
		&p.Rating, &adjusted, &p.Unranked, &mainPos, &subPos, &region, &p.ProfileIconID)
	if err != nil {
		return nil, err
	}
	if adjusted.Valid {
		v := adjusted.Float64
		p.AdjustedRating = &v
	}
	p.MainPosition = mainPos.String
	p.SubPosition = subPos.String
	p.Region = region.String
	return &p, nil
}

// SavePerformances stores scored matches for a player, replacing rescored
// duplicates.
func (db *DB) SavePerformances(ctx context.Context, playerID string, performances []types.GamePerformance) error {
	now := time.Now().UTC()
	for _, perf := range performances {
		var breakdown []byte
		if perf.ScoreBreakdown != nil {
			var err error
			breakdown, err = json.Marshal(perf.ScoreBreakdown)
			if err != nil {
				return fmt.Errorf("encoding breakdown for %s: %w", perf.MatchID, err)
			}
		}
		_, err := db.stmt("insert_performance").ExecContext(ctx,
			uuid.NewString(), playerID, perf.MatchID, perf.Position,
			perf.PerformanceScore, perf.Win, perf.GameTimestamp, breakdown, now,
		)
		if err != nil {
			return fmt.Errorf("saving performance %s: %w", perf.MatchID, err)
		}
	}
	return nil
}

// ListPerformances loads a player's most recent scored matches.
func (db *DB) ListPerformances(ctx context.Context, playerID string, limit int) ([]types.GamePerformance, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.stmt("list_performances").QueryContext(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing performances for %s: %w", playerID, err)
	}
	defer rows.Close()

	var out []types.GamePerformance
	for rows.Next() {
		var perf types.GamePerformance
		var breakdown sql.NullString
		if err := rows.Scan(&perf.MatchID, &perf.Position, &perf.PerformanceScore,
			&perf.Win, &perf.GameTimestamp, &breakdown); err != nil {
			return nil, err
		}
		if breakdown.Valid {
			var bd types.ScoreBreakdown
			if err := json.Unmarshal([]byte(breakdown.String), &bd); err == nil {
				perf.ScoreBreakdown = &bd
			}
		}
		out = append(out, perf)
	}
	return out, rows.Err()
}

// SaveTeamSet persists one balanced partition as a unit.
func (db *DB) SaveTeamSet(ctx context.Context, teamSize, numberOfTeams int, balanceScore float64, teams []types.Team) (string, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("starting team set transaction: %w", err)
	}
	defer tx.Rollback()

	setID := uuid.NewString()
	now := time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO team_sets (id, team_size, number_of_teams, balance_score, created_at) VALUES (?, ?, ?, ?, ?)`,
		setID, teamSize, numberOfTeams, balanceScore, now,
	)
	if err != nil {
		return "", fmt.Errorf("saving team set: %w", err)
	}

	for _, team := range teams {
		playersJSON, err := json.Marshal(team.Players)
		if err != nil {
			return "", fmt.Errorf("encoding team %s players: %w", team.ID, err)
		}
		var positionsJSON []byte
		if team.PositionAssignments != nil {
			positionsJSON, err = json.Marshal(team.PositionAssignments)
			if err != nil {
				return "", fmt.Errorf("encoding team %s positions: %w", team.ID, err)
			}
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO teams (id, set_id, name, total_rating, avg_rating, captain_id, players_json, positions_json, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			team.ID, setID, team.Name, team.TotalRating, team.AvgRating,
			nullableString(team.CaptainID), playersJSON, positionsJSON, now,
		)
		if err != nil {
			return "", fmt.Errorf("saving team %s: %w", team.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing team set: %w", err)
	}
	return setID, nil
}

// TeamSet is one saved partition with its teams rehydrated.
type TeamSet struct {
	ID            string       `json:"id"`
	TeamSize      int          `json:"teamSize"`
	NumberOfTeams int          `json:"numberOfTeams"`
	BalanceScore  float64      `json:"balanceScore"`
	CreatedAt     time.Time    `json:"createdAt"`
	Teams         []types.Team `json:"teams"`
}

// ListTeamSets loads saved partitions, newest first.
func (db *DB) ListTeamSets(ctx context.Context, limit int) ([]TeamSet, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, team_size, number_of_teams, balance_score, created_at
		 FROM team_sets ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing team sets: %w", err)
	}
	defer rows.Close()

	var sets []TeamSet
	for rows.Next() {
		var set TeamSet
		if err := rows.Scan(&set.ID, &set.TeamSize, &set.NumberOfTeams, &set.BalanceScore, &set.CreatedAt); err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sets {
		teams, err := db.teamsForSet(ctx, sets[i].ID)
		if err != nil {
			return nil, err
		}
		sets[i].Teams = teams
	}
	return sets, nil
}

func (db *DB) teamsForSet(ctx context.Context, setID string) ([]types.Team, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, total_rating, avg_rating, captain_id, players_json, positions_json, created_at
		 FROM teams WHERE set_id = ? ORDER BY name`, setID)
	if err != nil {
		return nil, fmt.Errorf("loading teams for set %s: %w", setID, err)
	}
	defer rows.Close()

	var teams []types.Team
	for rows.Next() {
		var team types.Team
		var captain sql.NullString
		var playersJSON string
		var positionsJSON sql.NullString

		if err := rows.Scan(&team.ID, &team.Name, &team.TotalRating, &team.AvgRating,
			&captain, &playersJSON, &positionsJSON, &team.CreatedAt); err != nil {
			return nil, err
		}
		team.CaptainID = captain.String
		team.Type = "balanced"
		if err := json.Unmarshal([]byte(playersJSON), &team.Players); err != nil {
			return nil, fmt.Errorf("decoding team %s players: %w", team.ID, err)
		}
		if positionsJSON.Valid && positionsJSON.String != "" {
			if err := json.Unmarshal([]byte(positionsJSON.String), &team.PositionAssignments); err != nil {
				return nil, fmt.Errorf("decoding team %s positions: %w", team.ID, err)
			}
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
