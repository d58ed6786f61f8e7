// Package efficiency derives the single 0..10 productivity score of a check-in.
package efficiency

import (
	"math"

	"github.com/julianstephens/peakstate/internal/constants"
	"github.com/julianstephens/peakstate/internal/models"
)

// Score returns the efficiency of one check-in in [0, 10].
//
// The four positive ratings are normalised and averaged, then scaled down by
// stress: stress 1 keeps the full score, stress 10 keeps 65% of it.
// A nil entry scores 0. Missing energy, focus or mood count as 0; a missing
// (or zero) result counts as the default rating.
func Score(e *models.CheckInEntry) float64 {
	if e == nil {
		return 0
	}

	result := constants.DefaultRating
	if e.Result != nil && *e.Result != 0 && !math.IsNaN(*e.Result) {
		result = *e.Result
	}

	base := (unit(e.Energy/10) + unit(e.Focus/10) + unit(e.Mood/10) + unit(result/10)) / 4

	stress := constants.DefaultRating
	if e.StressLevel != nil && !math.IsNaN(*e.StressLevel) {
		stress = *e.StressLevel
	}
	stress = clamp(stress, constants.RatingMin, constants.RatingMax)
	stressN := (stress - constants.RatingMin) / (constants.RatingMax - constants.RatingMin)
	factor := 1 - constants.StressMaxPenalty*stressN

	return clamp(10*base*factor, 0, 10)
}

// ScoreAll scores every entry, keeping input order.
func ScoreAll(entries []models.CheckInEntry) []float64 {
	scores := make([]float64, len(entries))
	for i := range entries {
		scores[i] = Score(&entries[i])
	}
	return scores
}

// Mean is the average score of entries, 0 when empty.
func Mean(entries []models.CheckInEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var sum float64
	for i := range entries {
		sum += Score(&entries[i])
	}
	return sum / float64(len(entries))
}

// Round1 rounds a score to one decimal for display.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func unit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
