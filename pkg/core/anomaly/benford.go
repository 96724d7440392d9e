package anomaly

import (
	"math"
	"strconv"
)

// =============================================================================
// LEADING-DIGIT SCREEN
// =============================================================================

// benfordExpected is the expected share of leading digits 1-9.
var benfordExpected = [10]float64{0, 0.30103, 0.17609, 0.12494, 0.09691, 0.07918, 0.06695, 0.05799, 0.05115, 0.04576}

// minBenfordSample is the smallest sample the screen reports a level for.
const minBenfordSample = 30

// DigitScreen is a Benford first-digit screen over the reported amounts of a
// statement. It is a supplementary signal; small statements rarely carry
// enough lines for a verdict.
type DigitScreen struct {
	Counts [10]int  `json:"counts"`
	Total  int      `json:"total"`
	MAD    *float64 `json:"mad"`
	Level  string   `json:"level"`
}

// ScreenLeadingDigits tallies the first significant digit of every amount of
// at least 10 yen and scores the mean absolute deviation from Benford's
// distribution: above 0.015 is nonconforming, above 0.010 marginal.
func ScreenLeadingDigits(amounts []float64) DigitScreen {
	var s DigitScreen
	for _, v := range amounts {
		v = math.Abs(v)
		if v < 10 || math.IsInf(v, 0) || math.IsNaN(v) {
			continue
		}
		for _, c := range strconv.FormatFloat(v, 'f', -1, 64) {
			if c >= '1' && c <= '9' {
				s.Counts[c-'0']++
				s.Total++
				break
			}
		}
	}
	if s.Total < minBenfordSample {
		s.Level = "insufficient_data"
		return s
	}

	var dev float64
	for d := 1; d <= 9; d++ {
		dev += math.Abs(float64(s.Counts[d])/float64(s.Total) - benfordExpected[d])
	}
	mad := dev / 9
	s.MAD = &mad
	switch {
	case mad > 0.015:
		s.Level = "nonconforming"
	case mad > 0.010:
		s.Level = "marginal"
	default:
		s.Level = "conforming"
	}
	return s
}
