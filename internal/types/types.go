package types

import "time"

// Player is a rated participant in the draft pool. Ratings live in [0,100];
// AdjustedRating blends the tier rating with recent match performance and is
// nil until the player's recent games have been analyzed.
type Player struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Tag            string            `json:"tag"`
	Tier           string            `json:"tier"`
	Division       int               `json:"rank"`
	LeaguePoints   int               `json:"lp"`
	Rating         float64           `json:"rating"`
	AdjustedRating *float64          `json:"adjustedRating,omitempty"`
	Unranked       bool              `json:"isUnranked,omitempty"`
	MainPosition   string            `json:"mainPosition,omitempty"`
	SubPosition    string            `json:"subPosition,omitempty"`
	Region         string            `json:"region,omitempty"`
	ProfileIconID  int               `json:"profileIconId,omitempty"`
	MostChampions  []ChampionMastery `json:"mostChampions,omitempty"`
}

// EffectiveRating returns the adjusted rating when one has been computed and
// the plain tier rating otherwise. This is the balancer's sort key.
func (p Player) EffectiveRating() float64 {
	if p.AdjustedRating != nil {
		return *p.AdjustedRating
	}
	return p.Rating
}

// ChampionMastery is one entry of a player's most-played champions.
type ChampionMastery struct {
	ChampionID     int    `json:"championId"`
	ChampionName   string `json:"championName"`
	ChampionLevel  int    `json:"championLevel"`
	ChampionPoints int    `json:"championPoints"`
}

// StatLine is the canonical per-participant telemetry the scorer consumes.
// Upstream schema drift (totalMinionsKilled vs minionsKilled and friends) is
// resolved before a StatLine is built, never inside scoring.
type StatLine struct {
	Role                 string `json:"role"`
	ChampionName         string `json:"championName,omitempty"`
	Kills                int    `json:"kills"`
	Deaths               int    `json:"deaths"`
	Assists              int    `json:"assists"`
	MinionsKilled        int    `json:"minionsKilled"`
	NeutralMinionsKilled int    `json:"neutralMinionsKilled"`
	GoldEarned           int    `json:"goldEarned"`
	DamageToChampions    int    `json:"damageToChampions"`
	DamageTaken          int    `json:"damageTaken"`
	WardsPlaced          int    `json:"wardsPlaced"`
	VisionScore          int    `json:"visionScore"`
	BaronKills           int    `json:"baronKills"`
	DragonKills          int    `json:"dragonKills"`
	InhibitorKills       int    `json:"inhibitorKills"`
	Win                  bool   `json:"win"`
}

// GamePerformance is the scored outcome of one match for one player.
type GamePerformance struct {
	MatchID          string          `json:"matchId"`
	Position         string          `json:"position"`
	Kills            int             `json:"kills"`
	Deaths           int             `json:"deaths"`
	Assists          int             `json:"assists"`
	CS               int             `json:"cs"`
	Gold             int             `json:"gold"`
	DamageDealt      int             `json:"damageDealt"`
	DamageTaken      int             `json:"damageTaken"`
	Objectives       int             `json:"objectives"`
	Win              bool            `json:"win"`
	EnemyChampion    string          `json:"enemyChampion,omitempty"`
	GameTimestamp    int64           `json:"gameTimestamp"`
	PerformanceScore float64         `json:"performanceScore"`
	ScoreBreakdown   *ScoreBreakdown `json:"scoreBreakdown,omitempty"`
}

// ScoreBreakdown retains the per-metric components behind a performance
// score. Display and audit only; nothing downstream computes with it.
type ScoreBreakdown struct {
	BaseScore   float64            `json:"baseScore"`
	WinAdjusted float64            `json:"winAdjusted"`
	Final       float64            `json:"final"`
	Details     map[string]float64 `json:"details"`
	EnemyStats  *EnemyStats        `json:"enemyStats,omitempty"`
}

// EnemyStats mirrors the opposing laner's raw numbers for display.
type EnemyStats struct {
	CS      int `json:"cs"`
	Gold    int `json:"gold"`
	Damage  int `json:"damage"`
	Kills   int `json:"kills"`
	Deaths  int `json:"deaths"`
	Assists int `json:"assists"`
	Wards   int `json:"wards"`
	Vision  int `json:"vision"`
}

// Team is one side of a balanced partition.
type Team struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	Players             []Player          `json:"players"`
	TotalRating         float64           `json:"totalRating"`
	AvgRating           float64           `json:"avgRating"`
	CreatedAt           time.Time         `json:"createdAt"`
	Type                string            `json:"type"`
	CaptainID           string            `json:"captainId,omitempty"`
	PositionAssignments map[string]string `json:"positionAssignments,omitempty"`
}

// SearchRequest is the body of POST /players/search.
type SearchRequest struct {
	SummonerName string `json:"summonerName" binding:"required"`
	TagLine      string `json:"tagLine" binding:"required"`
	Region       string `json:"region"`
}

// AnalyzeRequest is the body of POST /players/analyze.
type AnalyzeRequest struct {
	PUUID string `json:"puuid" binding:"required"`
	Count int    `json:"count"`
}

// BuildTeamsRequest is the body of POST /teams/build. When Players is empty
// the stored roster is used as the pool.
type BuildTeamsRequest struct {
	Players       []Player `json:"players"`
	TeamSize      int      `json:"teamSize" binding:"required"`
	NumberOfTeams int      `json:"numberOfTeams" binding:"required"`
	Iterations    int      `json:"iterations"`
	CaptainIDs    []string `json:"captainIds"`
}
