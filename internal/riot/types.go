package riot

// Account is an account-v1 response.
type Account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// Summoner is a summoner-v4 response.
type Summoner struct {
	ID            string `json:"id"`
	PUUID         string `json:"puuid"`
	ProfileIconID int    `json:"profileIconId"`
	SummonerLevel int    `json:"summonerLevel"`
}

// LeagueEntry is one league-v4 queue entry.
type LeagueEntry struct {
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

// Mastery is one champion-mastery-v4 entry.
type Mastery struct {
	ChampionID     int `json:"championId"`
	ChampionLevel  int `json:"championLevel"`
	ChampionPoints int `json:"championPoints"`
}

// Match is a match-v5 response.
type Match struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"`
}

type MatchInfo struct {
	GameDuration     int           `json:"gameDuration"`
	GameEndTimestamp int64         `json:"gameEndTimestamp"`
	GameMode         string        `json:"gameMode"`
	QueueID          int           `json:"queueId"`
	Participants     []Participant `json:"participants"`
}

// Participant carries both current and legacy field names for the stats that
// drifted across match-v5 versions. Normalization resolves the pairs once.
type Participant struct {
	PUUID              string `json:"puuid"`
	SummonerName       string `json:"summonerName"`
	ChampionID         int    `json:"championId"`
	ChampionName       string `json:"championName"`
	TeamID             int    `json:"teamId"`
	TeamPosition       string `json:"teamPosition"`
	IndividualPosition string `json:"individualPosition"`

	Kills   int `json:"kills"`
	Deaths  int `json:"deaths"`
	Assists int `json:"assists"`

	TotalMinionsKilled   int `json:"totalMinionsKilled"`
	MinionsKilled        int `json:"minionsKilled"`
	NeutralMinionsKilled int `json:"neutralMinionsKilled"`

	GoldEarned int `json:"goldEarned"`

	TotalDamageDealtToChampions int `json:"totalDamageDealtToChampions"`
	TotalDamageDealtToChamps    int `json:"totalDamageDealtToChamps"`
	TotalDamageTaken            int `json:"totalDamageTaken"`

	WardsPlaced            int `json:"wardsPlaced"`
	SightWardsBoughtInGame int `json:"sightWardsBoughtInGame"`
	VisionScore            int `json:"visionScore"`

	BaronKills     int `json:"baronKills"`
	DragonKills    int `json:"dragonKills"`
	InhibitorKills int `json:"inhibitorKills"`

	Win bool `json:"win"`
}

// championListResponse is the Data Dragon champion.json shape. Keys under
// data are champion names; each value carries the numeric id as a string.
type championListResponse struct {
	Data map[string]struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	} `json:"data"`
}
