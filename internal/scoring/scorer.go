package scoring

import (
	"log/slog"
	"math"

	"github.com/riftforge/rift-balancer/internal/types"
)

const (
	defaultGameMinutes = 30.0
	laneCSTarget       = 10.0
	jungleCSTarget     = 14.28
	supportAssistWt    = 1.5
)

// metric is one named component of a role's score. Every metric evaluates to
// a value in [0,100].
type metric struct {
	name string
	eval func(in input) float64
}

// input carries everything a metric may read. Enemy fields are only valid
// when hasEnemy is true; without an opposing laner each ratio metric compares
// against 90% of the player's own value.
type input struct {
	self     *types.StatLine
	enemy    *types.StatLine
	hasEnemy bool
	minutes  float64
}

// Score rates one player's match in [0,100]. The enemy stat line is the
// same-role opponent and may be nil. durationSeconds at or below zero falls
// back to a 30 minute game so per-minute rates stay finite.
func Score(self *types.StatLine, enemy *types.StatLine, durationSeconds int) types.ScoreBreakdown {
	minutes := float64(durationSeconds) / 60.0
	if durationSeconds <= 0 {
		minutes = defaultGameMinutes
	}

	in := input{self: self, enemy: enemy, hasEnemy: enemy != nil, minutes: minutes}
	details := make(map[string]float64)

	var base float64
	role, ok := ResolveRole(self.Role)
	if !ok {
		slog.Warn("unknown role, scoring at neutral base", "role", self.Role, "champion", self.ChampionName)
		base = 50
	} else {
		metrics := metricsFor(role)
		var sum float64
		for _, m := range metrics {
			v := clamp(m.eval(in))
			details[m.name] = round1(v)
			sum += v
		}
		base = sum / float64(len(metrics))
	}

	var final float64
	if self.Win {
		final = math.Max(70, base*0.6+40)
	} else {
		final = math.Min(60, base*0.8)
	}
	final = clamp(final)

	bd := types.ScoreBreakdown{
		BaseScore:   round1(base),
		WinAdjusted: round1(final),
		Final:       round1(final),
		Details:     details,
	}
	if in.hasEnemy {
		bd.EnemyStats = &types.EnemyStats{
			CS:      enemy.MinionsKilled + enemy.NeutralMinionsKilled,
			Gold:    enemy.GoldEarned,
			Damage:  enemy.DamageToChampions,
			Kills:   enemy.Kills,
			Deaths:  enemy.Deaths,
			Assists: enemy.Assists,
			Wards:   enemy.WardsPlaced,
			Vision:  enemy.VisionScore,
		}
	}
	return bd
}

// metricsFor is exhaustive over the canonical roles.
func metricsFor(role Role) []metric {
	switch role {
	case RoleTop, RoleMid, RoleADC:
		return []metric{
			{"csScore", laneCS},
			{"kdaScore", kda(1.0)},
			{"damageScore", ratioOf(damage)},
			{"goldScore", ratioOf(gold)},
		}
	case RoleJungle:
		return []metric{
			{"csScore", jungleCS},
			{"kdaScore", kda(1.0)},
			{"objectiveScore", objectives},
			{"damageScore", ratioOf(damage)},
		}
	case RoleSupport:
		return []metric{
			{"wardScore", ratioOf(wards)},
			{"kdaScore", kda(supportAssistWt)},
			{"visionScore", ratioOf(vision)},
			{"damageScore", ratioOf(damage)},
		}
	}
	return nil
}

func laneCS(in input) float64 {
	return float64(in.self.MinionsKilled) / in.minutes * laneCSTarget
}

func jungleCS(in input) float64 {
	cs := float64(in.self.MinionsKilled + in.self.NeutralMinionsKilled)
	return cs / in.minutes * jungleCSTarget
}

// kda scales (K + A*weight) / max(1, D) so that a 5.0 effective KDA maps to
// the metric ceiling.
func kda(assistWeight float64) func(input) float64 {
	return func(in input) float64 {
		deaths := math.Max(1, float64(in.self.Deaths))
		return (float64(in.self.Kills) + float64(in.self.Assists)*assistWeight) / deaths * 20
	}
}

func objectives(in input) float64 {
	score := in.self.BaronKills*2 + in.self.DragonKills*2 + in.self.InhibitorKills
	return float64(score) * 10
}

// ratioOf builds a lane-relative metric: parity with the opponent is 50.
// Without an opponent the comparison runs against 90% of the player's own
// value, which lands a hair above parity rather than punishing sparse data.
func ratioOf(stat func(*types.StatLine) float64) func(input) float64 {
	return func(in input) float64 {
		self := stat(in.self)
		var enemy float64
		if in.hasEnemy {
			enemy = stat(in.enemy)
		} else {
			enemy = self * 0.9
		}
		return self / math.Max(1, enemy) * 50
	}
}

func damage(s *types.StatLine) float64 { return float64(s.DamageToChampions) }
func gold(s *types.StatLine) float64   { return float64(s.GoldEarned) }
func wards(s *types.StatLine) float64  { return float64(s.WardsPlaced) }
func vision(s *types.StatLine) float64 { return float64(s.VisionScore) }

func clamp(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
