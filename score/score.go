// Package score converts Euclidean distances in scaled feature space into a
// bounded match score.
//
// The score is a fixed linear heuristic, not a calibrated probability: a
// distance of 0 scores 100 and every distance of 10 or more scores 0.
package score

import (
	"fmt"
	"math"
)

const (
	// Max is the score of an exact match.
	Max = 100.0
	// Decay is the score lost per unit of distance.
	Decay = 10.0
)

// Score returns max(0, 100 - min(distance*10, 100)).
func Score(distance float64) float64 {
	return math.Max(0, Max-math.Min(distance*Decay, Max))
}

// Format renders a score with one decimal and a percent sign.
func Format(score float64) string {
	return fmt.Sprintf("%.1f%%", score)
}
