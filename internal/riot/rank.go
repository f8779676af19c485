package riot

const soloQueue = "RANKED_SOLO_5x5"

var tierPoints = map[string]float64{
	"IRON":        0,
	"BRONZE":      10,
	"SILVER":      20,
	"GOLD":        35,
	"PLATINUM":    50,
	"EMERALD":     65,
	"DIAMOND":     75,
	"MASTER":      85,
	"GRANDMASTER": 92,
	"CHALLENGER":  97,
}

var rankPoints = map[string]float64{
	"I":   2.5,
	"II":  1.75,
	"III": 1.0,
	"IV":  0.25,
}

var rankDivisions = map[string]int{
	"I":   1,
	"II":  2,
	"III": 3,
	"IV":  4,
}

// TierRating maps a ranked entry onto the 0-100 scale the balancer drafts
// on. League points contribute fractionally so adjacent LP counts stay
// ordered.
func TierRating(tier, rank string, leaguePoints int) float64 {
	rating := tierPoints[tier] + rankPoints[rank] + float64(leaguePoints)/100
	if rating < 0 {
		return 0
	}
	if rating > 100 {
		return 100
	}
	return rating
}

// Division converts a roman-numeral rank to its numeric division, 0 when
// unranked or apex tier.
func Division(rank string) int {
	return rankDivisions[rank]
}
