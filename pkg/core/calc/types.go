// Package calc provides deterministic financial calculations: profitability,
// safety, efficiency and growth metrics plus cash-flow pattern
// classification. All functions are pure; a zero or missing denominator
// yields a null Ratio, never NaN or Inf.
package calc

import (
	"encoding/json"
	"math"
)

// =============================================================================
// INPUT FIGURES
// =============================================================================

// Figures are the yen values of one fiscal period keyed by canonical
// account name (see the normalize package constants). Absence of a key
// means the figure was not reported.
type Figures map[string]float64

// Get returns the figure and whether it was reported.
func (f Figures) Get(name string) (float64, bool) {
	if f == nil {
		return 0, false
	}
	v, ok := f[name]
	return v, ok
}

// First returns the first reported figure among names.
func (f Figures) First(names ...string) (float64, bool) {
	for _, n := range names {
		if v, ok := f.Get(n); ok {
			return v, true
		}
	}
	return 0, false
}

// Sum adds the reported figures among names; ok is false when none was
// reported.
func (f Figures) Sum(names ...string) (float64, bool) {
	var total float64
	found := false
	for _, n := range names {
		if v, ok := f.Get(n); ok {
			total += v
			found = true
		}
	}
	return total, found
}

// =============================================================================
// RATIO
// =============================================================================

// Ratio is one computed metric. A nil Value means the metric could not be
// computed: either a denominator was zero or missing, or (with
// InsufficientData set) a required prior-period figure was absent.
type Ratio struct {
	Value            *float64 `json:"value"`
	Approximate      bool     `json:"approximate,omitempty"`
	InsufficientData bool     `json:"insufficient_data,omitempty"`
}

// Float returns the value and whether it exists.
func (r Ratio) Float() (float64, bool) {
	if r.Value == nil {
		return 0, false
	}
	return *r.Value, true
}

// Valid reports whether the ratio carries a value.
func (r Ratio) Valid() bool { return r.Value != nil }

func (r Ratio) MarshalJSON() ([]byte, error) {
	type plain Ratio
	out := plain(r)
	if out.Value != nil && (math.IsNaN(*out.Value) || math.IsInf(*out.Value, 0)) {
		out.Value = nil
	}
	return json.Marshal(out)
}

func value(v float64) Ratio {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Ratio{}
	}
	return Ratio{Value: &v}
}

func insufficient() Ratio {
	return Ratio{InsufficientData: true}
}

// safeDiv divides, returning a null Ratio for a zero denominator.
func safeDiv(numerator, denominator float64) Ratio {
	if denominator == 0 {
		return Ratio{}
	}
	return value(numerator / denominator)
}

// percent is safeDiv scaled by 100.
func percent(numerator, denominator float64) Ratio {
	if denominator == 0 {
		return Ratio{}
	}
	return value(numerator / denominator * 100)
}

// percentOf looks both figures up; a missing one yields a null Ratio.
func percentOf(f Figures, numerator, denominator string) Ratio {
	n, okN := f.Get(numerator)
	d, okD := f.Get(denominator)
	if !okN || !okD {
		return Ratio{}
	}
	return percent(n, d)
}
