// Package database owns the sqlite schema and access layer for players,
// saved team sets and scored performances.
package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the sqlite handle with pooling and prepared statements.
type DB struct {
	*sql.DB
	pool     *ConnectionPool
	prepared map[string]*sql.Stmt
	mu       sync.RWMutex
}

// ConnectionPool records the pool bounds applied to the sql.DB.
type ConnectionPool struct {
	db           *sql.DB
	maxOpenConns int
	maxIdleConns int
	maxLifetime  time.Duration
}

// NewConnectionPool applies pool bounds to an open handle.
func NewConnectionPool(db *sql.DB, maxOpen, maxIdle int, maxLifetime time.Duration) *ConnectionPool {
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)
	return &ConnectionPool{db: db, maxOpenConns: maxOpen, maxIdleConns: maxIdle, maxLifetime: maxLifetime}
}

// Stats reports pool occupancy.
func (cp *ConnectionPool) Stats() map[string]any {
	stats := cp.db.Stats()
	return map[string]any{
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"max_open_connections": cp.maxOpenConns,
		"max_idle_connections": cp.maxIdleConns,
		"max_lifetime_seconds": cp.maxLifetime.Seconds(),
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
}

// New opens (creating if needed) the database under dataDir and migrates it.
func New(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "rift_balancer.db")
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_busy_timeout=5000", dbPath)

	handle, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := handle.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pool := NewConnectionPool(handle, 25, 5, 5*time.Minute)

	db := &DB{
		DB:       handle,
		pool:     pool,
		prepared: make(map[string]*sql.Stmt),
	}
	if err := db.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := db.initPreparedStatements(); err != nil {
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	slog.Info("database initialized", "path", dbPath)
	return db, nil
}

func (db *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			tag TEXT NOT NULL,
			tier TEXT NOT NULL,
			division INTEGER NOT NULL,
			league_points INTEGER NOT NULL,
			rating REAL NOT NULL,
			adjusted_rating REAL,
			is_unranked BOOLEAN NOT NULL DEFAULT FALSE,
			main_position TEXT,
			sub_position TEXT,
			region TEXT,
			profile_icon_id INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS team_sets (
			id TEXT PRIMARY KEY,
			team_size INTEGER NOT NULL,
			number_of_teams INTEGER NOT NULL,
			balance_score REAL NOT NULL,
			created_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS teams (
			id TEXT PRIMARY KEY,
			set_id TEXT NOT NULL,
			name TEXT NOT NULL,
			total_rating REAL NOT NULL,
			avg_rating REAL NOT NULL,
			captain_id TEXT,
			players_json TEXT NOT NULL,
			positions_json TEXT,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (set_id) REFERENCES team_sets(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS performances (
			id TEXT PRIMARY KEY,
			player_id TEXT NOT NULL,
			match_id TEXT NOT NULL,
			position TEXT NOT NULL,
			score REAL NOT NULL,
			win BOOLEAN NOT NULL,
			game_timestamp INTEGER NOT NULL,
			breakdown_json TEXT,
			created_at DATETIME NOT NULL,
			UNIQUE (player_id, match_id),
			FOREIGN KEY (player_id) REFERENCES players(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_performances_player ON performances(player_id)`,
		`CREATE INDEX IF NOT EXISTS idx_teams_set ON teams(set_id)`,
		`CREATE INDEX IF NOT EXISTS idx_players_rating ON players(rating DESC)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func (db *DB) initPreparedStatements() error {
	statements := map[string]string{
		"upsert_player": `INSERT INTO players
			(id, name, tag, tier, division, league_points, rating, adjusted_rating,
			 is_unranked, main_position, sub_position, region, profile_icon_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name=excluded.name, tag=excluded.tag, tier=excluded.tier,
				division=excluded.division, league_points=excluded.league_points,
				rating=excluded.rating, adjusted_rating=excluded.adjusted_rating,
				is_unranked=excluded.is_unranked, main_position=excluded.main_position,
				sub_position=excluded.sub_position, region=excluded.region,
				profile_icon_id=excluded.profile_icon_id, updated_at=excluded.updated_at`,
		"delete_player": `DELETE FROM players WHERE id = ?`,
		"list_players":  `SELECT id, name, tag, tier, division, league_points, rating, adjusted_rating, is_unranked, main_position, sub_position, region, profile_icon_id FROM players ORDER BY rating DESC`,
		"get_player":    `SELECT id, name, tag, tier, division, league_points, rating, adjusted_rating, is_unranked, main_position, sub_position, region, profile_icon_id FROM players WHERE id = ?`,
		"insert_performance": `INSERT INTO performances
			(id, player_id, match_id, position, score, win, game_timestamp, breakdown_json, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(player_id, match_id) DO UPDATE SET
				score=excluded.score, breakdown_json=excluded.breakdown_json`,
		"list_performances": `SELECT match_id, position, score, win, game_timestamp, breakdown_json
			FROM performances WHERE player_id = ? ORDER BY game_timestamp DESC LIMIT ?`,
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	for name, query := range statements {
		stmt, err := db.Prepare(query)
		if err != nil {
			return fmt.Errorf("preparing %s: %w", name, err)
		}
		db.prepared[name] = stmt
	}
	return nil
}

func (db *DB) stmt(name string) *sql.Stmt {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.prepared[name]
}

// PoolStats reports the connection pool for diagnostics.
func (db *DB) PoolStats() map[string]any {
	return db.pool.Stats()
}

// Close releases prepared statements and the handle.
func (db *DB) Close() error {
	db.mu.Lock()
	for _, stmt := range db.prepared {
		stmt.Close()
	}
	db.prepared = make(map[string]*sql.Stmt)
	db.mu.Unlock()
	return db.DB.Close()
}
