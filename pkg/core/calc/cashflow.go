package calc

import (
	n "finstat/pkg/core/normalize"
	"finstat/pkg/core/validate"
)

// =============================================================================
// CASH-FLOW PATTERN CLASSIFICATION
// =============================================================================

// Health is the qualitative rating attached to a cash-flow pattern.
type Health string

const (
	HealthHealthy  Health = "healthy"
	HealthCaution  Health = "caution"
	HealthCritical Health = "critical"
)

// Pattern describes one of the eight sign combinations of operating,
// investing and financing cash flow.
type Pattern struct {
	Signs       string `json:"signs"`
	Name        string `json:"name"`
	Health      Health `json:"health"`
	Description string `json:"description"`
}

// patterns enumerates every sign combination, keyed operating, investing,
// financing. Zero counts as "+".
var patterns = map[string]Pattern{
	"+++": {
		Name:        "cash accumulation",
		Health:      HealthCaution,
		Description: "All three activities bring in cash. Operations are profitable, but asset sales and new funding suggest cash is being hoarded for a large investment or restructuring.",
	},
	"++-": {
		Name:        "asset restructuring",
		Health:      HealthCaution,
		Description: "Operations and asset sales generate cash that is used to repay debt or return capital. Typical of a company shrinking its balance sheet.",
	},
	"+-+": {
		Name:        "aggressive expansion",
		Health:      HealthHealthy,
		Description: "Operating cash plus new funding are invested heavily. Sustainable while operations stay profitable.",
	},
	"+--": {
		Name:        "healthy growth",
		Health:      HealthHealthy,
		Description: "Operating cash covers both investment and debt repayment or shareholder returns. The pattern of a stable, self-funding business.",
	},
	"-++": {
		Name:        "distress funding",
		Health:      HealthCritical,
		Description: "Operations burn cash, covered by selling assets and raising funds. Continuation depends on outside money.",
	},
	"-+-": {
		Name:        "recovery/restructuring",
		Health:      HealthCaution,
		Description: "Operations burn cash while assets are sold to repay debt. A restructuring phase that needs an operating turnaround.",
	},
	"--+": {
		Name:        "early-stage/distress funding",
		Health:      HealthCritical,
		Description: "Operations burn cash and investment continues, both funded by borrowing or equity. Normal for a start-up, dangerous for a mature company.",
	},
	"---": {
		Name:        "cash depletion",
		Health:      HealthCritical,
		Description: "All three activities consume cash, drawing down existing reserves. Not sustainable for long.",
	},
}

// CashFlowAnalysis is the pattern classification plus the underlying flows.
type CashFlowAnalysis struct {
	Operating    float64 `json:"operating"`
	Investing    float64 `json:"investing"`
	Financing    float64 `json:"financing"`
	FreeCashFlow float64 `json:"free_cash_flow"`
	Pattern      Pattern `json:"pattern"`
}

func sign(v float64) byte {
	if v < 0 {
		return '-'
	}
	return '+'
}

// ClassifyCashFlow maps the sign combination of the three flows to its
// pattern.
func ClassifyCashFlow(operating, investing, financing float64) Pattern {
	key := string([]byte{sign(operating), sign(investing), sign(financing)})
	p := patterns[key]
	p.Signs = key
	return p
}

// AnalyzeCashFlow classifies the period's cash flows. ok is false when the
// statement does not report all three activity totals.
func AnalyzeCashFlow(f Figures) (*CashFlowAnalysis, bool) {
	op, okOp := f.Get(n.AcctCFOperating)
	inv, okInv := f.Get(n.AcctCFInvesting)
	fin, okFin := f.Get(n.AcctCFFinancing)
	if !okOp || !okInv || !okFin {
		return nil, false
	}
	return &CashFlowAnalysis{
		Operating:    op,
		Investing:    inv,
		Financing:    fin,
		FreeCashFlow: validate.CalculateFCF(op, inv),
		Pattern:      ClassifyCashFlow(op, inv, fin),
	}, true
}

// AllPatterns returns the eight patterns in a fixed order.
func AllPatterns() []Pattern {
	keys := []string{"+++", "++-", "+-+", "+--", "-++", "-+-", "--+", "---"}
	out := make([]Pattern, 0, len(keys))
	for _, k := range keys {
		p := patterns[k]
		p.Signs = k
		out = append(out, p)
	}
	return out
}
