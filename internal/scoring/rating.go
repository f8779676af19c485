package scoring

// AdjustedRating blends a player's tier rating with the mean of their recent
// performance scores, 70/30. With no scored games the tier rating stands.
func AdjustedRating(rating float64, performanceScores []float64) float64 {
	if len(performanceScores) == 0 {
		return rating
	}
	var sum float64
	for _, s := range performanceScores {
		sum += s
	}
	mean := sum / float64(len(performanceScores))
	return clamp(rating*0.7 + mean*0.3)
}
