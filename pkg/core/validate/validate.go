// Package validate provides reusable financial validation utilities:
// tolerance-aware equation checks, year-over-year changes and outlier
// detection. Every function works on plain yen values so the statement
// assembler, the analyzer and tests can share them.
package validate

import (
	"fmt"
	"math"
)

// =============================================================================
// TOLERANCE
// =============================================================================

// Tolerance is the allowed gap between a reported and a computed figure:
// the larger of Pct percent of the reference value and Abs yen.
type Tolerance struct {
	Pct float64 `yaml:"pct" json:"pct"`
	Abs float64 `yaml:"abs" json:"abs"`
}

// DefaultTolerance is max(1%, ¥1).
var DefaultTolerance = Tolerance{Pct: 1.0, Abs: 1.0}

// Allowed returns the absolute gap permitted against reference.
func (t Tolerance) Allowed(reference float64) float64 {
	return math.Max(math.Abs(reference)*t.Pct/100, t.Abs)
}

// Within reports whether reported and computed agree within the tolerance.
// The reported figure is the reference for the percentage part.
func (t Tolerance) Within(reported, computed float64) bool {
	return math.Abs(reported-computed) <= t.Allowed(reported)
}

// =============================================================================
// YEAR-OVER-YEAR (YoY) CALCULATIONS
// =============================================================================

// CalculateYoY returns (current - prior) / |prior| * 100. The second result
// is false when prior is zero, in which case no growth rate exists.
func CalculateYoY(current, prior float64) (float64, bool) {
	if prior == 0 || math.IsNaN(prior) || math.IsNaN(current) {
		return 0, false
	}
	return (current - prior) / math.Abs(prior) * 100, true
}

// =============================================================================
// STATEMENT EQUATIONS
// =============================================================================

// TotalCheck compares a reported subtotal with the sum of its items.
type TotalCheck struct {
	Name       string
	Reported   float64
	Computed   float64
	Difference float64
	Allowed    float64
	IsBalanced bool
}

// CheckTotal validates a reported total against its computed value.
func CheckTotal(name string, reported, computed float64, tol Tolerance) *TotalCheck {
	return &TotalCheck{
		Name:       name,
		Reported:   reported,
		Computed:   computed,
		Difference: reported - computed,
		Allowed:    tol.Allowed(reported),
		IsBalanced: tol.Within(reported, computed),
	}
}

// BalanceCheck verifies Assets = Liabilities + Net assets.
type BalanceCheck struct {
	TotalAssets      float64
	TotalLiabilities float64
	TotalEquity      float64
	ComputedAssets   float64 // L + E
	Difference       float64
	Allowed          float64
	IsBalanced       bool
}

// CheckBalanceEquation validates A = L + E within tolerance of A.
func CheckBalanceEquation(assets, liabilities, equity float64, tol Tolerance) *BalanceCheck {
	computed := liabilities + equity
	return &BalanceCheck{
		TotalAssets:      assets,
		TotalLiabilities: liabilities,
		TotalEquity:      equity,
		ComputedAssets:   computed,
		Difference:       assets - computed,
		Allowed:          tol.Allowed(assets),
		IsBalanced:       tol.Within(assets, computed),
	}
}

// CashFlowCheck verifies Operating + Investing + Financing + FX = Net change.
type CashFlowCheck struct {
	Operating     float64
	Investing     float64
	Financing     float64
	FXEffect      float64
	ComputedTotal float64
	ReportedTotal float64
	Difference    float64
	Allowed       float64
	IsBalanced    bool
}

// CheckCashFlowEquation validates the three activity sections (plus the
// exchange-rate effect, zero when not reported) against the reported net
// change in cash.
func CheckCashFlowEquation(operating, investing, financing, fx, reportedNetChange float64, tol Tolerance) *CashFlowCheck {
	computed := operating + investing + financing + fx
	return &CashFlowCheck{
		Operating:     operating,
		Investing:     investing,
		Financing:     financing,
		FXEffect:      fx,
		ComputedTotal: computed,
		ReportedTotal: reportedNetChange,
		Difference:    reportedNetChange - computed,
		Allowed:       tol.Allowed(reportedNetChange),
		IsBalanced:    tol.Within(reportedNetChange, computed),
	}
}

// =============================================================================
// OUTLIER DETECTION
// =============================================================================

// OutlierCheck identifies suspicious values.
type OutlierCheck struct {
	Item       string
	Value      float64
	PriorValue float64
	ChangePct  float64
	IsOutlier  bool
	Reason     string
	Threshold  float64
}

// CheckForOutlier flags a change larger than thresholdPct percent, or a
// value that collapsed to zero from a non-zero prior (usually a parsing
// error rather than a business event).
func CheckForOutlier(item string, current, prior, thresholdPct float64) *OutlierCheck {
	check := &OutlierCheck{
		Item:       item,
		Value:      current,
		PriorValue: prior,
		Threshold:  thresholdPct,
	}

	if current == 0 && prior != 0 {
		check.ChangePct = -100
		check.IsOutlier = true
		check.Reason = "value dropped to zero"
		return check
	}

	pct, ok := CalculateYoY(current, prior)
	if !ok {
		return check
	}
	check.ChangePct = pct
	if math.Abs(pct) > thresholdPct {
		check.IsOutlier = true
		check.Reason = fmt.Sprintf("change of %.1f%% exceeds threshold of %.1f%%", pct, thresholdPct)
	}
	return check
}

// =============================================================================
// FREE CASH FLOW
// =============================================================================

// CalculateFCF computes free cash flow = operating CF + investing CF.
// Investing CF is normally negative.
func CalculateFCF(operating, investing float64) float64 {
	return operating + investing
}
