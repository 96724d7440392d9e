package calc

// Metrics groups the four metric families of one analysis.
type Metrics struct {
	Profitability Profitability `json:"profitability"`
	Safety        Safety        `json:"safety"`
	Efficiency    Efficiency    `json:"efficiency"`
	Growth        Growth        `json:"growth"`
}

// Metric keys shared by benchmark references, anomaly detection and
// reports.
const (
	MetricROE                 = "roe"
	MetricROA                 = "roa"
	MetricGrossMargin         = "gross_margin"
	MetricOperatingMargin     = "operating_margin"
	MetricOrdinaryMargin      = "ordinary_margin"
	MetricNetMargin           = "net_margin"
	MetricEquityRatio         = "equity_ratio"
	MetricCurrentRatio        = "current_ratio"
	MetricQuickRatio          = "quick_ratio"
	MetricFixedLongTerm       = "fixed_long_term_ratio"
	MetricDebtRatio           = "debt_ratio"
	MetricInterestCoverage    = "interest_coverage"
	MetricTotalAssetTurnover  = "total_asset_turnover"
	MetricReceivablesTurnover = "receivables_turnover"
	MetricInventoryTurnover   = "inventory_turnover"
	MetricPayablesTurnover    = "payables_turnover"
	MetricFixedAssetTurnover  = "fixed_asset_turnover"
	MetricRevenueGrowth       = "revenue_growth"
	MetricOperatingGrowth     = "operating_income_growth"
	MetricOrdinaryGrowth      = "ordinary_income_growth"
	MetricTotalAssetsGrowth   = "total_assets_growth"
	MetricEmployeeGrowth      = "employee_growth"
)

// Class separates level metrics (margins, ratios, turnovers) from growth
// rates; anomaly thresholds differ per class.
type Class string

const (
	ClassRatio  Class = "ratio"
	ClassGrowth Class = "growth"
)

// MetricKeys lists every metric in report order.
var MetricKeys = []string{
	MetricROE, MetricROA, MetricGrossMargin, MetricOperatingMargin, MetricOrdinaryMargin, MetricNetMargin,
	MetricEquityRatio, MetricCurrentRatio, MetricQuickRatio, MetricFixedLongTerm, MetricDebtRatio, MetricInterestCoverage,
	MetricTotalAssetTurnover, MetricReceivablesTurnover, MetricInventoryTurnover, MetricPayablesTurnover, MetricFixedAssetTurnover,
	MetricRevenueGrowth, MetricOperatingGrowth, MetricOrdinaryGrowth, MetricTotalAssetsGrowth, MetricEmployeeGrowth,
}

var growthMetrics = map[string]bool{
	MetricRevenueGrowth:     true,
	MetricOperatingGrowth:   true,
	MetricOrdinaryGrowth:    true,
	MetricTotalAssetsGrowth: true,
	MetricEmployeeGrowth:    true,
}

// ClassOf returns the class of a metric key.
func ClassOf(key string) Class {
	if growthMetrics[key] {
		return ClassGrowth
	}
	return ClassRatio
}

// lowerIsBetter lists metrics where a smaller value is the stronger one.
var lowerIsBetter = map[string]bool{
	MetricDebtRatio:     true,
	MetricFixedLongTerm: true,
}

// LowerIsBetter reports whether a smaller value of the metric is better.
func LowerIsBetter(key string) bool {
	return lowerIsBetter[key]
}

// Values flattens the metrics into key → Ratio.
func (m Metrics) Values() map[string]Ratio {
	p, s, e, g := m.Profitability, m.Safety, m.Efficiency, m.Growth
	return map[string]Ratio{
		MetricROE:                 p.ROE,
		MetricROA:                 p.ROA,
		MetricGrossMargin:         p.GrossMargin,
		MetricOperatingMargin:     p.OperatingMargin,
		MetricOrdinaryMargin:      p.OrdinaryMargin,
		MetricNetMargin:           p.NetMargin,
		MetricEquityRatio:         s.EquityRatio,
		MetricCurrentRatio:        s.CurrentRatio,
		MetricQuickRatio:          s.QuickRatio,
		MetricFixedLongTerm:       s.FixedLongTerm,
		MetricDebtRatio:           s.DebtRatio,
		MetricInterestCoverage:    s.InterestCoverage,
		MetricTotalAssetTurnover:  e.TotalAssetTurnover,
		MetricReceivablesTurnover: e.ReceivablesTurnover,
		MetricInventoryTurnover:   e.InventoryTurnover,
		MetricPayablesTurnover:    e.PayablesTurnover,
		MetricFixedAssetTurnover:  e.FixedAssetTurnover,
		MetricRevenueGrowth:       g.Revenue,
		MetricOperatingGrowth:     g.OperatingIncome,
		MetricOrdinaryGrowth:      g.OrdinaryIncome,
		MetricTotalAssetsGrowth:   g.TotalAssets,
		MetricEmployeeGrowth:      g.Employees,
	}
}

// Floats returns only the metrics that carry a value.
func (m Metrics) Floats() map[string]float64 {
	out := make(map[string]float64)
	for k, r := range m.Values() {
		if v, ok := r.Float(); ok {
			out[k] = v
		}
	}
	return out
}

// Calculate computes every metric family for the current period. prior may
// be nil.
func Calculate(cur, prior Figures, curEmployees, priorEmployees *float64) Metrics {
	return Metrics{
		Profitability: CalculateProfitability(cur),
		Safety:        CalculateSafety(cur),
		Efficiency:    CalculateEfficiency(cur, prior),
		Growth:        CalculateGrowth(cur, prior, curEmployees, priorEmployees),
	}
}
