package riot

import (
	"github.com/riftforge/rift-balancer/internal/scoring"
	"github.com/riftforge/rift-balancer/internal/types"
)

// NormalizeStatLine folds a raw participant into the canonical stat line,
// resolving every field pair that drifted across match-v5 versions here and
// nowhere else.
func NormalizeStatLine(p *Participant) *types.StatLine {
	minions := p.TotalMinionsKilled
	if minions == 0 {
		minions = p.MinionsKilled
	}
	damage := p.TotalDamageDealtToChampions
	if damage == 0 {
		damage = p.TotalDamageDealtToChamps
	}
	wards := p.WardsPlaced
	if wards == 0 {
		wards = p.SightWardsBoughtInGame
	}
	role := p.TeamPosition
	if role == "" {
		role = p.IndividualPosition
	}

	return &types.StatLine{
		Role:                 role,
		ChampionName:         p.ChampionName,
		Kills:                p.Kills,
		Deaths:               p.Deaths,
		Assists:              p.Assists,
		MinionsKilled:        minions,
		NeutralMinionsKilled: p.NeutralMinionsKilled,
		GoldEarned:           p.GoldEarned,
		DamageToChampions:    damage,
		DamageTaken:          p.TotalDamageTaken,
		WardsPlaced:          wards,
		VisionScore:          p.VisionScore,
		BaronKills:           p.BaronKills,
		DragonKills:          p.DragonKills,
		InhibitorKills:       p.InhibitorKills,
		Win:                  p.Win,
	}
}

// FindOpposingLaner returns the participant on the other team whose resolved
// role matches the subject's, nil when no counterpart exists.
func FindOpposingLaner(match *Match, self *Participant) *Participant {
	selfRole, ok := resolveParticipantRole(self)
	if !ok {
		return nil
	}
	for i := range match.Info.Participants {
		p := &match.Info.Participants[i]
		if p.TeamID == self.TeamID {
			continue
		}
		if role, ok := resolveParticipantRole(p); ok && role == selfRole {
			return p
		}
	}
	return nil
}

func resolveParticipantRole(p *Participant) (scoring.Role, bool) {
	role := p.TeamPosition
	if role == "" {
		role = p.IndividualPosition
	}
	return scoring.ResolveRole(role)
}

// PerformanceFromMatch scores one player's showing in a match. ok is false
// when the player did not take part.
func PerformanceFromMatch(match *Match, puuid string) (*types.GamePerformance, bool) {
	var self *Participant
	for i := range match.Info.Participants {
		if match.Info.Participants[i].PUUID == puuid {
			self = &match.Info.Participants[i]
			break
		}
	}
	if self == nil {
		return nil, false
	}

	stats := NormalizeStatLine(self)
	var enemyStats *types.StatLine
	enemyChampion := ""
	if enemy := FindOpposingLaner(match, self); enemy != nil {
		enemyStats = NormalizeStatLine(enemy)
		enemyChampion = enemy.ChampionName
	}

	breakdown := scoring.Score(stats, enemyStats, match.Info.GameDuration)

	return &types.GamePerformance{
		MatchID:          match.Metadata.MatchID,
		Position:         stats.Role,
		Kills:            stats.Kills,
		Deaths:           stats.Deaths,
		Assists:          stats.Assists,
		CS:               stats.MinionsKilled + stats.NeutralMinionsKilled,
		Gold:             stats.GoldEarned,
		DamageDealt:      stats.DamageToChampions,
		DamageTaken:      stats.DamageTaken,
		Objectives:       stats.BaronKills + stats.DragonKills + stats.InhibitorKills,
		Win:              stats.Win,
		EnemyChampion:    enemyChampion,
		GameTimestamp:    match.Info.GameEndTimestamp,
		PerformanceScore: breakdown.Final,
		ScoreBreakdown:   &breakdown,
	}, true
}
