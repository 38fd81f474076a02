package proof

import "math"

// uniquenessScore is injected rather than computed: de-duplication happens
// upstream at submission time, so every bundle reaching the engine is already
// unique.
const uniquenessScore = 1.0

// aggregateScore averages the available sub-scores, rounded to five decimal
// places. In normal operation all four are present.
func aggregateScore(subScores []float64) float64 {
	if len(subScores) == 0 {
		return 0
	}

	sum := 0.0
	for _, s := range subScores {
		sum += s
	}

	return math.Round(sum/float64(len(subScores))*1e5) / 1e5
}

// isValid reports whether the bundle passes: every contribution must be
// vouched for by a trusted witness.
func isValid(authenticity float64) bool {
	return authenticity >= 1.0
}
