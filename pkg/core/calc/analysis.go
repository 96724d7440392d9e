package calc

import (
	"math"

	n "finstat/pkg/core/normalize"
)

// =============================================================================
// PROFITABILITY (収益性)
// =============================================================================

// Profitability ratios, all in percent.
type Profitability struct {
	ROE             Ratio `json:"roe"`
	ROA             Ratio `json:"roa"`
	GrossMargin     Ratio `json:"gross_margin"`
	OperatingMargin Ratio `json:"operating_margin"`
	OrdinaryMargin  Ratio `json:"ordinary_margin"`
	NetMargin       Ratio `json:"net_margin"`
}

// CalculateProfitability computes return and margin ratios on ending
// balances of the current period.
func CalculateProfitability(f Figures) Profitability {
	return Profitability{
		ROE:             percentOf(f, n.AcctNetIncome, n.AcctNetAssetsTotal),
		ROA:             percentOf(f, n.AcctNetIncome, n.AcctTotalAssets),
		GrossMargin:     percentOf(f, n.AcctGrossProfit, n.AcctRevenue),
		OperatingMargin: percentOf(f, n.AcctOperatingIncome, n.AcctRevenue),
		OrdinaryMargin:  percentOf(f, n.AcctOrdinaryIncome, n.AcctRevenue),
		NetMargin:       percentOf(f, n.AcctNetIncome, n.AcctRevenue),
	}
}

// =============================================================================
// SAFETY (安全性)
// =============================================================================

// Safety ratios. Everything is in percent except InterestCoverage, which is
// in times.
type Safety struct {
	EquityRatio      Ratio `json:"equity_ratio"`
	CurrentRatio     Ratio `json:"current_ratio"`
	QuickRatio       Ratio `json:"quick_ratio"`
	FixedLongTerm    Ratio `json:"fixed_long_term_ratio"`
	DebtRatio        Ratio `json:"debt_ratio"`
	InterestCoverage Ratio `json:"interest_coverage"`
}

// CalculateSafety computes balance-sheet safety ratios.
//
//	equity ratio        = net assets / total assets
//	current ratio       = current assets / current liabilities
//	quick ratio         = (cash + receivables + securities) / current liabilities
//	fixed-to-long-term  = fixed assets / (net assets + fixed liabilities)
//	debt ratio          = total liabilities / net assets
//	interest coverage   = (operating income + interest and dividend income) / interest expense
func CalculateSafety(f Figures) Safety {
	s := Safety{
		EquityRatio:  percentOf(f, n.AcctNetAssetsTotal, n.AcctTotalAssets),
		CurrentRatio: percentOf(f, n.AcctCurrentAssetsTotal, n.AcctCurrentLiabTotal),
		DebtRatio:    percentOf(f, n.AcctTotalLiabilities, n.AcctNetAssetsTotal),
	}

	if currentLiab, ok := f.Get(n.AcctCurrentLiabTotal); ok {
		if quick, ok := quickAssets(f); ok {
			s.QuickRatio = percent(quick, currentLiab)
		}
	}

	fixedAssets, okFA := f.Get(n.AcctFixedAssetsTotal)
	netAssets, okNA := f.Get(n.AcctNetAssetsTotal)
	fixedLiab, okFL := f.Get(n.AcctFixedLiabTotal)
	if okFA && okNA && okFL {
		s.FixedLongTerm = percent(fixedAssets, netAssets+fixedLiab)
	}

	if interest, ok := f.Get(n.AcctInterestExpense); ok {
		if opIncome, ok := f.Get(n.AcctOperatingIncome); ok {
			financial, _ := f.Sum(n.AcctInterestIncome, n.AcctDividendIncome)
			s.InterestCoverage = safeDiv(opIncome+financial, math.Abs(interest))
		}
	}
	return s
}

// quickAssets sums cash, receivables and marketable securities. A combined
// receivables line takes precedence over its parts.
func quickAssets(f Figures) (float64, bool) {
	total, found := f.Sum(n.AcctCash, n.AcctSecurities)
	if v, ok := f.Get(n.AcctTradeReceivables); ok {
		return total + v, true
	}
	if v, ok := f.Sum(n.AcctNotesReceivable, n.AcctAccountsReceivable); ok {
		return total + v, true
	}
	return total, found
}

// =============================================================================
// EFFICIENCY (効率性)
// =============================================================================

// Efficiency turnover ratios, in times per period.
type Efficiency struct {
	TotalAssetTurnover  Ratio `json:"total_asset_turnover"`
	ReceivablesTurnover Ratio `json:"receivables_turnover"`
	InventoryTurnover   Ratio `json:"inventory_turnover"`
	PayablesTurnover    Ratio `json:"payables_turnover"`
	FixedAssetTurnover  Ratio `json:"fixed_asset_turnover"`
}

// CalculateEfficiency computes turnovers as flow / average balance when the
// prior period is available, else flow / ending balance marked Approximate.
// Payables turn over cost of sales; every other turnover uses revenue.
func CalculateEfficiency(cur, prior Figures) Efficiency {
	revenue, okRev := cur.Get(n.AcctRevenue)
	cost, okCost := cur.Get(n.AcctCostOfSales)

	turnover := func(flow float64, okFlow bool, balance func(Figures) (float64, bool)) Ratio {
		if !okFlow {
			return Ratio{}
		}
		ending, ok := balance(cur)
		if !ok {
			return Ratio{}
		}
		if beginning, ok := balance(prior); ok {
			return safeDiv(flow, (beginning+ending)/2)
		}
		r := safeDiv(flow, ending)
		r.Approximate = r.Valid()
		return r
	}

	return Efficiency{
		TotalAssetTurnover:  turnover(revenue, okRev, account(n.AcctTotalAssets)),
		ReceivablesTurnover: turnover(revenue, okRev, receivables),
		InventoryTurnover:   turnover(revenue, okRev, inventories),
		PayablesTurnover:    turnover(cost, okCost, payables),
		FixedAssetTurnover:  turnover(revenue, okRev, account(n.AcctFixedAssetsTotal)),
	}
}

func account(name string) func(Figures) (float64, bool) {
	return func(f Figures) (float64, bool) { return f.Get(name) }
}

func receivables(f Figures) (float64, bool) {
	if v, ok := f.Get(n.AcctTradeReceivables); ok {
		return v, true
	}
	return f.Sum(n.AcctNotesReceivable, n.AcctAccountsReceivable)
}

func inventories(f Figures) (float64, bool) {
	if v, ok := f.Get(n.AcctInventories); ok {
		return v, true
	}
	return f.Sum(n.AcctMerchandise, n.AcctWorkInProcess, n.AcctRawMaterials)
}

func payables(f Figures) (float64, bool) {
	if v, ok := f.Get(n.AcctTradePayables); ok {
		return v, true
	}
	return f.Sum(n.AcctNotesPayable, n.AcctAccountsPayable)
}
