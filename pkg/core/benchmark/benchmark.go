// Package benchmark rates a company's metrics against industry reference
// values (average and top quartile).
package benchmark

import (
	"math"

	"finstat/pkg/core/calc"
)

// =============================================================================
// RATINGS
// =============================================================================

// Rating is the qualitative tier of one metric against its industry.
type Rating string

const (
	RatingTop          Rating = "top"
	RatingAboveAverage Rating = "above-average"
	RatingAverage      Rating = "average"
	RatingBelowAverage Rating = "below-average"
	RatingBottom       Rating = "bottom"
)

// Score maps a rating onto 5 (top) .. 1 (bottom).
func (r Rating) Score() float64 {
	switch r {
	case RatingTop:
		return 5
	case RatingAboveAverage:
		return 4
	case RatingAverage:
		return 3
	case RatingBelowAverage:
		return 2
	case RatingBottom:
		return 1
	}
	return 0
}

// ratingForScore is the inverse of Score for a weighted mean.
func ratingForScore(s float64) Rating {
	switch {
	case s >= 4.5:
		return RatingTop
	case s >= 3.5:
		return RatingAboveAverage
	case s >= 2.5:
		return RatingAverage
	case s >= 1.5:
		return RatingBelowAverage
	default:
		return RatingBottom
	}
}

// Result is the rating of one metric.
type Result struct {
	Metric           string  `json:"metric"`
	Value            float64 `json:"value"`
	IndustryAverage  float64 `json:"industry_average"`
	TopQuartile      float64 `json:"top_quartile"`
	Rating           Rating  `json:"rating"`
	DeltaFromAverage float64 `json:"delta_from_average"`
	LowerIsBetter    bool    `json:"lower_is_better,omitempty"`
}

// BenchmarkMetric rates a higher-is-better metric:
//
//	value >= topQuartile        top
//	value >= average            above-average
//	value >= 0.8 * average      average
//	value >= 0.5 * average      below-average
//	otherwise                   bottom
//
// DeltaFromAverage is value minus the average, in the metric's own unit.
func BenchmarkMetric(value, average, topQuartile float64) Result {
	r := Result{Value: value, IndustryAverage: average, TopQuartile: topQuartile, DeltaFromAverage: value - average}
	switch {
	case value >= topQuartile:
		r.Rating = RatingTop
	case value >= average:
		r.Rating = RatingAboveAverage
	case value >= 0.8*average:
		r.Rating = RatingAverage
	case value >= 0.5*average:
		r.Rating = RatingBelowAverage
	default:
		r.Rating = RatingBottom
	}
	return r
}

// BenchmarkLowerIsBetter mirrors BenchmarkMetric for cost-like metrics where
// topQuartile is the low end: the 0.8 and 0.5 factors become 1.25 and 2.
func BenchmarkLowerIsBetter(value, average, topQuartile float64) Result {
	r := Result{Value: value, IndustryAverage: average, TopQuartile: topQuartile, DeltaFromAverage: value - average, LowerIsBetter: true}
	switch {
	case value <= topQuartile:
		r.Rating = RatingTop
	case value <= average:
		r.Rating = RatingAboveAverage
	case value <= 1.25*average:
		r.Rating = RatingAverage
	case value <= 2*average:
		r.Rating = RatingBelowAverage
	default:
		r.Rating = RatingBottom
	}
	return r
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary is the weighted qualitative score over several rated metrics.
type Summary struct {
	Score   *float64       `json:"score"`
	Rating  Rating         `json:"rating,omitempty"`
	Rated   int            `json:"rated"`
	Ratings map[Rating]int `json:"ratings"`
}

// Summarize takes the weighted mean of rating scores. Metrics without a
// weight count 1; a zero or negative weight drops the metric.
func Summarize(results []Result, weights map[string]float64) Summary {
	s := Summary{Ratings: map[Rating]int{}}
	var sum, total float64
	for _, r := range results {
		w := 1.0
		if v, ok := weights[r.Metric]; ok {
			w = v
		}
		if w <= 0 || r.Rating.Score() == 0 {
			continue
		}
		sum += w * r.Rating.Score()
		total += w
		s.Rated++
		s.Ratings[r.Rating]++
	}
	if total == 0 {
		return s
	}
	score := math.Round(sum/total*100) / 100
	s.Score = &score
	s.Rating = ratingForScore(score)
	return s
}

// =============================================================================
// COMPANY COMPARISON
// =============================================================================

// Report rates every metric that has both a value and an industry
// reference.
type Report struct {
	IndustryCode string   `json:"industry_code"`
	IndustryName string   `json:"industry_name"`
	Results      []Result `json:"results"`
	// Unrated lists metrics with a value but no usable reference.
	Unrated []string `json:"unrated,omitempty"`
	Summary Summary  `json:"summary"`
}

// Compare rates the metrics against the industry in report order. A
// reference with a zero average cannot anchor the relative bands and is
// left unrated.
func Compare(values map[string]float64, industry *IndustryData, weights map[string]float64) *Report {
	if industry == nil {
		return nil
	}
	rep := &Report{IndustryCode: industry.Code, IndustryName: industry.Name, Results: []Result{}}
	for _, key := range calc.MetricKeys {
		v, ok := values[key]
		if !ok {
			continue
		}
		ref, ok := industry.Metrics[key]
		if !ok || ref.Average == 0 {
			rep.Unrated = append(rep.Unrated, key)
			continue
		}
		var r Result
		if calc.LowerIsBetter(key) {
			r = BenchmarkLowerIsBetter(v, ref.Average, ref.TopQuartile)
		} else {
			r = BenchmarkMetric(v, ref.Average, ref.TopQuartile)
		}
		r.Metric = key
		rep.Results = append(rep.Results, r)
	}
	rep.Summary = Summarize(rep.Results, weights)
	return rep
}
