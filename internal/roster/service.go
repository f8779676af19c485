// Package roster manages the persisted player pool and saved team history.
package roster

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/riftforge/rift-balancer/internal/database"
	"github.com/riftforge/rift-balancer/internal/types"
)

// Service fronts the database with a short-lived read cache. Writes
// invalidate so the pool endpoints never serve a stale roster for long.
type Service struct {
	db  *database.DB
	ttl time.Duration

	mu       sync.Mutex
	cached   []byte
	cachedAt time.Time
}

// NewService builds a roster service with the given read-cache TTL.
func NewService(db *database.DB, ttl time.Duration) *Service {
	return &Service{db: db, ttl: ttl}
}

// AddPlayer stores or refreshes a roster entry.
func (s *Service) AddPlayer(ctx context.Context, player *types.Player) error {
	if err := s.db.UpsertPlayer(ctx, player); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Players returns the roster, best rating first.
func (s *Service) Players(ctx context.Context) ([]types.Player, error) {
	s.mu.Lock()
	if s.cached != nil && time.Since(s.cachedAt) < s.ttl {
		data := s.cached
		s.mu.Unlock()

		var players []types.Player
		if err := json.Unmarshal(data, &players); err == nil {
			return players, nil
		}
		slog.Warn("roster cache decode failed, reloading")
	} else {
		s.mu.Unlock()
	}

	players, err := s.db.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(players); err == nil {
		s.mu.Lock()
		s.cached = data
		s.cachedAt = time.Now()
		s.mu.Unlock()
	}
	return players, nil
}

// Player loads one roster entry, nil when absent.
func (s *Service) Player(ctx context.Context, id string) (*types.Player, error) {
	return s.db.GetPlayer(ctx, id)
}

// Remove deletes a roster entry. Returns false when the id is unknown.
func (s *Service) Remove(ctx context.Context, id string) (bool, error) {
	deleted, err := s.db.DeletePlayer(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.invalidate()
	}
	return deleted, nil
}

// RecordPerformances stores scored matches and the refreshed adjusted rating.
func (s *Service) RecordPerformances(ctx context.Context, player *types.Player, performances []types.GamePerformance) error {
	if err := s.db.UpsertPlayer(ctx, player); err != nil {
		return err
	}
	if err := s.db.SavePerformances(ctx, player.ID, performances); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Performances loads a player's stored match scores, newest first.
func (s *Service) Performances(ctx context.Context, playerID string, limit int) ([]types.GamePerformance, error) {
	return s.db.ListPerformances(ctx, playerID, limit)
}

// SaveTeams persists one balanced partition.
func (s *Service) SaveTeams(ctx context.Context, teamSize, numberOfTeams int, balanceScore float64, teams []types.Team) (string, error) {
	return s.db.SaveTeamSet(ctx, teamSize, numberOfTeams, balanceScore, teams)
}

// History lists saved partitions, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]database.TeamSet, error) {
	return s.db.ListTeamSets(ctx, limit)
}

func (s *Service) invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}
