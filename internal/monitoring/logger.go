package monitoring

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog with helpers for the recurring log shapes.
type Logger struct {
	*slog.Logger
}

// NewLogger builds a JSON logger writing to stdout.
func NewLogger() *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})
	return &Logger{Logger: slog.New(handler)}
}

// RequestLogger logs one handled HTTP request.
func (l *Logger) RequestLogger(method, path, ip string, statusCode int, duration time.Duration) {
	l.Info("http request",
		"method", method,
		"path", path,
		"ip", ip,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// RiotAPILogger logs one outbound Riot API call at a level matching the outcome.
func (l *Logger) RiotAPILogger(endpoint string, statusCode int, duration time.Duration, success bool) {
	level := slog.LevelInfo
	if !success {
		level = slog.LevelWarn
	}
	l.Log(context.Background(), level, "riot api call",
		"endpoint", endpoint,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
		"success", success,
	)
}

// AnalysisLogger logs a finished performance analysis.
func (l *Logger) AnalysisLogger(puuid string, matches int, avgScore float64, duration time.Duration) {
	l.Info("analysis completed",
		"puuid", truncate(puuid, 8),
		"matches", matches,
		"avg_score", avgScore,
		"duration_ms", duration.Milliseconds(),
	)
}

// BalanceLogger logs a finished team-building run.
func (l *Logger) BalanceLogger(players, teams, iterations int, balanceScore float64, duration time.Duration) {
	l.Info("balance completed",
		"players", players,
		"teams", teams,
		"iterations", iterations,
		"balance_score", balanceScore,
		"duration_ms", duration.Milliseconds(),
	)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
