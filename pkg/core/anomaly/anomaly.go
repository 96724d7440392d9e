// Package anomaly flags metrics that swing sharply away from a baseline:
// the prior period or the industry average.
package anomaly

import (
	"math"
	"sort"

	"finstat/pkg/core/calc"
	"finstat/pkg/core/validate"
)

// Thresholds are relative swings, in percent, beyond which a metric is
// anomalous.
type Thresholds struct {
	Ratio  float64 `yaml:"ratio" json:"ratio"`
	Growth float64 `yaml:"growth" json:"growth"`
}

// DefaultThresholds: 30% for margins and ratios, 50% for growth rates.
var DefaultThresholds = Thresholds{Ratio: 30, Growth: 50}

func (t Thresholds) forMetric(key string) float64 {
	if calc.ClassOf(key) == calc.ClassGrowth {
		if t.Growth > 0 {
			return t.Growth
		}
		return DefaultThresholds.Growth
	}
	if t.Ratio > 0 {
		return t.Ratio
	}
	return DefaultThresholds.Ratio
}

// Source names the baseline a detection ran against.
type Source string

const (
	SourcePriorPeriod     Source = "prior_period"
	SourceIndustryAverage Source = "industry_average"
)

// Severity grades how far past the threshold a swing is.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// severityFor grades a swing: below 1.5× the threshold is info, below 2×
// warning, anything beyond critical.
func severityFor(change, threshold float64) Severity {
	r := math.Abs(change) / threshold
	switch {
	case r < 1.5:
		return SeverityInfo
	case r < 2:
		return SeverityWarning
	default:
		return SeverityCritical
	}
}

// Anomaly is one flagged metric.
type Anomaly struct {
	Metric    string     `json:"metric"`
	Class     calc.Class `json:"class"`
	Current   float64    `json:"current"`
	Baseline  float64    `json:"baseline"`
	ChangePct float64    `json:"change_pct"`
	Threshold float64    `json:"threshold"`
	Severity  Severity   `json:"severity"`
	Source    Source     `json:"source"`
	Reason    string     `json:"reason"`
}

// Result is the outcome of one detection. Undetermined lists metrics that
// had a value but no usable baseline; they are neither normal nor
// anomalous.
type Result struct {
	Source       Source    `json:"source"`
	Checked      int       `json:"checked"`
	Anomalies    []Anomaly `json:"anomalies"`
	Undetermined []string  `json:"undetermined,omitempty"`
}

// Detect compares each current metric with its baseline. A nil or empty
// baseline yields an empty anomaly set with every metric undetermined.
func Detect(current, baseline map[string]float64, source Source, th Thresholds) Result {
	res := Result{Source: source, Anomalies: []Anomaly{}}
	for _, key := range orderedKeys(current) {
		cur := current[key]
		base, ok := baseline[key]
		if !ok || base == 0 || math.IsNaN(base) || math.IsInf(base, 0) {
			res.Undetermined = append(res.Undetermined, key)
			continue
		}
		res.Checked++

		threshold := th.forMetric(key)
		check := validate.CheckForOutlier(key, cur, base, threshold)
		if !check.IsOutlier {
			continue
		}
		res.Anomalies = append(res.Anomalies, Anomaly{
			Metric:    key,
			Class:     calc.ClassOf(key),
			Current:   cur,
			Baseline:  base,
			ChangePct: check.ChangePct,
			Threshold: threshold,
			Severity:  severityFor(check.ChangePct, threshold),
			Source:    source,
			Reason:    check.Reason,
		})
	}
	return res
}

// orderedKeys returns the keys in report order, unknown keys last and
// sorted.
func orderedKeys(m map[string]float64) []string {
	known := make(map[string]bool, len(calc.MetricKeys))
	var keys []string
	for _, k := range calc.MetricKeys {
		known[k] = true
		if _, ok := m[k]; ok {
			keys = append(keys, k)
		}
	}
	var extra []string
	for k := range m {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}
