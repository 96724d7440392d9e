package calc

import n "finstat/pkg/core/normalize"

// CommonSizeLine is one line of a vertical analysis.
type CommonSizeLine struct {
	Account string  `json:"account"`
	Yen     float64 `json:"yen"`
	Percent Ratio   `json:"percent"`
}

// CommonSize is a vertical analysis: income-statement lines as a share of
// revenue and balance-sheet lines as a share of total assets.
type CommonSize struct {
	IncomeStatement []CommonSizeLine `json:"income_statement"`
	BalanceSheet    []CommonSizeLine `json:"balance_sheet"`
}

var commonSizeIncome = []string{
	n.AcctRevenue, n.AcctCostOfSales, n.AcctGrossProfit, n.AcctSGA, n.AcctOperatingIncome,
	n.AcctOrdinaryIncome, n.AcctIncomeBeforeTax, n.AcctNetIncome,
}

var commonSizeBalance = []string{
	n.AcctCurrentAssetsTotal, n.AcctFixedAssetsTotal, n.AcctCurrentLiabTotal,
	n.AcctFixedLiabTotal, n.AcctTotalLiabilities, n.AcctNetAssetsTotal,
}

// CalculateCommonSize builds the vertical analysis of the reported lines.
func CalculateCommonSize(f Figures) CommonSize {
	revenue, okRev := f.Get(n.AcctRevenue)
	assets, okAssets := f.Get(n.AcctTotalAssets)

	lines := func(names []string, base float64, okBase bool) []CommonSizeLine {
		var out []CommonSizeLine
		for _, name := range names {
			v, ok := f.Get(name)
			if !ok {
				continue
			}
			line := CommonSizeLine{Account: name, Yen: v}
			if okBase {
				line.Percent = percent(v, base)
			}
			out = append(out, line)
		}
		return out
	}

	return CommonSize{
		IncomeStatement: lines(commonSizeIncome, revenue, okRev),
		BalanceSheet:    lines(commonSizeBalance, assets, okAssets),
	}
}
