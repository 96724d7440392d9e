package calc

import (
	n "finstat/pkg/core/normalize"
	"finstat/pkg/core/validate"
)

// =============================================================================
// GROWTH (成長性)
// =============================================================================

// Growth holds year-over-year changes in percent. Without a prior period
// every field is null with InsufficientData set.
type Growth struct {
	Revenue         Ratio `json:"revenue_growth"`
	OperatingIncome Ratio `json:"operating_income_growth"`
	OrdinaryIncome  Ratio `json:"ordinary_income_growth"`
	TotalAssets     Ratio `json:"total_assets_growth"`
	Employees       Ratio `json:"employee_growth"`
}

// CalculateGrowth compares the current period with the prior one.
// Employee counts are passed separately since they are company metadata
// rather than statement figures; nil means unknown.
func CalculateGrowth(cur, prior Figures, curEmployees, priorEmployees *float64) Growth {
	if prior == nil {
		return Growth{
			Revenue:         insufficient(),
			OperatingIncome: insufficient(),
			OrdinaryIncome:  insufficient(),
			TotalAssets:     insufficient(),
			Employees:       insufficient(),
		}
	}

	g := Growth{
		Revenue:         growthOf(cur, prior, n.AcctRevenue),
		OperatingIncome: growthOf(cur, prior, n.AcctOperatingIncome),
		OrdinaryIncome:  growthOf(cur, prior, n.AcctOrdinaryIncome),
		TotalAssets:     growthOf(cur, prior, n.AcctTotalAssets),
		Employees:       insufficient(),
	}
	if curEmployees != nil && priorEmployees != nil {
		g.Employees = GrowthRate(*curEmployees, *priorEmployees)
	}
	return g
}

// GrowthRate is (current - prior) / |prior| * 100; a zero prior has no
// defined rate and yields a null Ratio.
func GrowthRate(current, prior float64) Ratio {
	pct, ok := validate.CalculateYoY(current, prior)
	if !ok {
		return Ratio{}
	}
	return value(pct)
}

func growthOf(cur, prior Figures, name string) Ratio {
	c, okC := cur.Get(name)
	p, okP := prior.Get(name)
	if !okC || !okP {
		return insufficient()
	}
	return GrowthRate(c, p)
}
