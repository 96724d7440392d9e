package calc

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	n "finstat/pkg/core/normalize"
)

func approx(t *testing.T, name string, r Ratio, want float64) {
	t.Helper()
	got, ok := r.Float()
	if !ok {
		t.Fatalf("%s: expected a value, got null", name)
	}
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func isNull(t *testing.T, name string, r Ratio) {
	t.Helper()
	if r.Valid() {
		t.Errorf("%s: expected null, got %v", name, *r.Value)
	}
}

// =============================================================================
// PROFITABILITY
// =============================================================================

func TestProfitability_Scenario(t *testing.T) {
	f := Figures{
		n.AcctRevenue:         100_000_000,
		n.AcctOperatingIncome: 10_000_000,
		n.AcctTotalAssets:     200_000_000,
		n.AcctNetAssetsTotal:  80_000_000,
		n.AcctNetIncome:       6_000_000,
	}

	p := CalculateProfitability(f)

	approx(t, "operating margin", p.OperatingMargin, 10.0)
	approx(t, "ROA", p.ROA, 3.0)
	approx(t, "ROE", p.ROE, 7.5)
	approx(t, "net margin", p.NetMargin, 6.0)
	isNull(t, "gross margin (no gross profit)", p.GrossMargin)
}

func TestProfitability_ZeroDenominators(t *testing.T) {
	f := Figures{
		n.AcctRevenue:         0,
		n.AcctOperatingIncome: 10,
		n.AcctGrossProfit:     5,
		n.AcctOrdinaryIncome:  3,
		n.AcctTotalAssets:     0,
		n.AcctNetAssetsTotal:  0,
		n.AcctNetIncome:       6,
	}

	p := CalculateProfitability(f)

	for name, r := range map[string]Ratio{
		"ROE": p.ROE, "ROA": p.ROA, "gross": p.GrossMargin,
		"operating": p.OperatingMargin, "ordinary": p.OrdinaryMargin, "net": p.NetMargin,
	} {
		isNull(t, name, r)
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "Inf") || strings.Contains(string(data), "NaN") {
		t.Errorf("non-finite value leaked into JSON: %s", data)
	}
	if !strings.Contains(string(data), `"roe":{"value":null}`) {
		t.Errorf("expected null roe, got %s", data)
	}
}

// =============================================================================
// SAFETY
// =============================================================================

func TestSafety(t *testing.T) {
	f := Figures{
		n.AcctTotalAssets:        1000,
		n.AcctCurrentAssetsTotal: 600,
		n.AcctCash:               200,
		n.AcctTradeReceivables:   150,
		n.AcctAccountsReceivable: 999, // superseded by the combined line
		n.AcctSecurities:         50,
		n.AcctInventories:        100,
		n.AcctFixedAssetsTotal:   400,
		n.AcctCurrentLiabTotal:   300,
		n.AcctFixedLiabTotal:     200,
		n.AcctTotalLiabilities:   500,
		n.AcctNetAssetsTotal:     500,
		n.AcctOperatingIncome:    90,
		n.AcctInterestIncome:     5,
		n.AcctDividendIncome:     5,
		n.AcctInterestExpense:    20,
	}

	s := CalculateSafety(f)

	approx(t, "equity ratio", s.EquityRatio, 50)
	approx(t, "current ratio", s.CurrentRatio, 200)
	approx(t, "quick ratio", s.QuickRatio, 400.0/300.0*100)
	approx(t, "fixed-to-long-term", s.FixedLongTerm, 400.0/700.0*100)
	approx(t, "debt ratio", s.DebtRatio, 100)
	approx(t, "interest coverage", s.InterestCoverage, 5)
}

func TestSafety_NoInterestExpense(t *testing.T) {
	s := CalculateSafety(Figures{n.AcctOperatingIncome: 100, n.AcctInterestExpense: 0})
	isNull(t, "interest coverage", s.InterestCoverage)

	s = CalculateSafety(Figures{n.AcctOperatingIncome: 100})
	isNull(t, "interest coverage (unreported)", s.InterestCoverage)
}

// =============================================================================
// EFFICIENCY
// =============================================================================

func TestEfficiency_AverageBalance(t *testing.T) {
	cur := Figures{
		n.AcctRevenue:            1200,
		n.AcctCostOfSales:        800,
		n.AcctTotalAssets:        1100,
		n.AcctNotesReceivable:    50,
		n.AcctAccountsReceivable: 150,
		n.AcctInventories:        120,
		n.AcctTradePayables:      90,
		n.AcctFixedAssetsTotal:   500,
	}
	prior := Figures{
		n.AcctTotalAssets:      900,
		n.AcctTradeReceivables: 200,
		n.AcctInventories:      80,
		n.AcctTradePayables:    70,
		n.AcctFixedAssetsTotal: 700,
	}

	e := CalculateEfficiency(cur, prior)

	approx(t, "total asset turnover", e.TotalAssetTurnover, 1.2)
	approx(t, "receivables turnover", e.ReceivablesTurnover, 6)
	approx(t, "inventory turnover", e.InventoryTurnover, 12)
	approx(t, "payables turnover", e.PayablesTurnover, 10)
	approx(t, "fixed asset turnover", e.FixedAssetTurnover, 2)
	if e.TotalAssetTurnover.Approximate {
		t.Error("average-balance turnover must not be approximate")
	}
}

func TestEfficiency_EndingBalanceIsApproximate(t *testing.T) {
	cur := Figures{
		n.AcctRevenue:     1200,
		n.AcctTotalAssets: 1000,
	}

	e := CalculateEfficiency(cur, nil)

	approx(t, "total asset turnover", e.TotalAssetTurnover, 1.2)
	if !e.TotalAssetTurnover.Approximate {
		t.Error("ending-balance turnover must be marked approximate")
	}
	isNull(t, "inventory turnover", e.InventoryTurnover)
	if e.InventoryTurnover.Approximate {
		t.Error("a null turnover is not approximate")
	}
}

// =============================================================================
// GROWTH
// =============================================================================

func TestGrowth(t *testing.T) {
	cur := Figures{n.AcctRevenue: 110, n.AcctOperatingIncome: -20, n.AcctTotalAssets: 500}
	prior := Figures{n.AcctRevenue: 100, n.AcctOperatingIncome: -40, n.AcctTotalAssets: 0}
	emp, priorEmp := 120.0, 100.0

	g := CalculateGrowth(cur, prior, &emp, &priorEmp)

	approx(t, "revenue growth", g.Revenue, 10)
	approx(t, "operating income growth", g.OperatingIncome, 50)
	approx(t, "employee growth", g.Employees, 20)
	isNull(t, "total assets growth (zero prior)", g.TotalAssets)
	isNull(t, "ordinary income growth", g.OrdinaryIncome)
	if !g.OrdinaryIncome.InsufficientData {
		t.Error("unreported figure should be insufficient data")
	}
}

func TestGrowth_NoPriorYear(t *testing.T) {
	g := CalculateGrowth(Figures{n.AcctRevenue: 110}, nil, nil, nil)

	for name, r := range map[string]Ratio{
		"revenue": g.Revenue, "operating": g.OperatingIncome, "ordinary": g.OrdinaryIncome,
		"assets": g.TotalAssets, "employees": g.Employees,
	} {
		if r.Valid() {
			t.Errorf("%s: expected null without prior year", name)
		}
		if !r.InsufficientData {
			t.Errorf("%s: expected insufficient-data marker", name)
		}
	}

	data, _ := json.Marshal(g.Revenue)
	if string(data) != `{"value":null,"insufficient_data":true}` {
		t.Errorf("unexpected JSON %s", data)
	}
}

// =============================================================================
// METRICS / COMMON SIZE
// =============================================================================

func TestMetricsValuesCoverEveryKey(t *testing.T) {
	values := Calculate(Figures{}, nil, nil, nil).Values()
	if len(values) != len(MetricKeys) {
		t.Fatalf("Values() has %d keys, MetricKeys has %d", len(values), len(MetricKeys))
	}
	for _, k := range MetricKeys {
		if _, ok := values[k]; !ok {
			t.Errorf("missing metric %s", k)
		}
	}
	if ClassOf(MetricRevenueGrowth) != ClassGrowth || ClassOf(MetricROE) != ClassRatio {
		t.Error("metric classes are wrong")
	}
}

func TestCommonSize(t *testing.T) {
	cs := CalculateCommonSize(Figures{
		n.AcctRevenue:         1000,
		n.AcctCostOfSales:     600,
		n.AcctOperatingIncome: 100,
		n.AcctNetAssetsTotal:  400,
	})

	if len(cs.IncomeStatement) != 3 {
		t.Fatalf("expected 3 income lines, got %d", len(cs.IncomeStatement))
	}
	approx(t, "cost of sales share", cs.IncomeStatement[1].Percent, 60)
	if len(cs.BalanceSheet) != 1 || cs.BalanceSheet[0].Percent.Valid() {
		t.Errorf("balance lines without total assets should have null share: %+v", cs.BalanceSheet)
	}
}
