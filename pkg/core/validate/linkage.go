package validate

import "math"

// =============================================================================
// CROSS-STATEMENT LINKAGE
// =============================================================================

// CashLinkage checks that the cash-flow statement's closing cash agrees with
// the balance sheet's cash line, and that the reported net change equals
// closing minus opening cash.
type CashLinkage struct {
	CFCashEnding   float64 `json:"cf_cash_ending"`
	BSCash         float64 `json:"bs_cash"`
	DifferenceCash float64 `json:"difference_cash"`

	CFNetChange      float64 `json:"cf_net_change"`
	CFCashBeginning  float64 `json:"cf_cash_beginning"`
	DifferenceChange float64 `json:"difference_net_change"`

	IsLinked bool `json:"is_linked"`
}

// CheckCashLinkage compares closing cash with the balance sheet. Balance
// sheet "cash and deposits" often includes time deposits excluded from cash
// equivalents, so only a closing balance above the balance sheet figure is a
// break; a lower one is accepted.
func CheckCashLinkage(cfBeginning, cfNetChange, cfEnding, bsCash float64, tol Tolerance) *CashLinkage {
	link := &CashLinkage{
		CFCashEnding:     cfEnding,
		BSCash:           bsCash,
		DifferenceCash:   bsCash - cfEnding,
		CFNetChange:      cfNetChange,
		CFCashBeginning:  cfBeginning,
		DifferenceChange: cfEnding - cfBeginning - cfNetChange,
	}

	cashOK := link.DifferenceCash >= -tol.Allowed(bsCash)
	changeOK := math.Abs(link.DifferenceChange) <= tol.Allowed(cfNetChange)
	link.IsLinked = cashOK && changeOK
	return link
}
