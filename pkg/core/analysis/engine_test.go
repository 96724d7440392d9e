package analysis

import (
	"context"
	"errors"
	"math"
	"testing"

	"finstat/pkg/core/anomaly"
	"finstat/pkg/core/benchmark"
	"finstat/pkg/core/calc"
	"finstat/pkg/core/extract"
	"finstat/pkg/core/statement"
)

func assemble(t *testing.T, lines ...[]string) *statement.ParsedStatement {
	t.Helper()
	table := &extract.RawTable{Format: extract.FormatCSV}
	for i, line := range lines {
		row := extract.Row{Index: i}
		for j, text := range line {
			row.Cells = append(row.Cells, extract.Cell{Text: text, Column: j})
		}
		table.Rows = append(table.Rows, row)
	}
	p, err := statement.Assemble(table, statement.DefaultOptions())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return p
}

// company builds a yen-denominated statement with the figures of the
// reference scenario, scaled by revenue.
func company(t *testing.T, period, code, revenue string) *statement.ParsedStatement {
	return assemble(t,
		[]string{"会計期間", period},
		[]string{"業種コード", code},
		[]string{"資産合計", "200,000,000"},
		[]string{"純資産合計", "80,000,000"},
		[]string{"売上高", revenue},
		[]string{"営業利益", "10,000,000"},
		[]string{"当期純利益", "6,000,000"},
		[]string{"営業活動によるキャッシュ・フロー", "9,000,000"},
		[]string{"投資活動によるキャッシュ・フロー", "△4,000,000"},
		[]string{"財務活動によるキャッシュ・フロー", "△2,000,000"},
	)
}

func near(t *testing.T, name string, r calc.Ratio, want float64) {
	t.Helper()
	got, ok := r.Float()
	if !ok {
		t.Fatalf("%s: null", name)
	}
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestAnalyzeFinancialData_Scenario(t *testing.T) {
	stmt := company(t, "2023/4/1～2024/3/31", "3650", "100,000,000")

	res, err := AnalyzeFinancialData(stmt, nil, nil, Options{})
	if err != nil {
		t.Fatalf("AnalyzeFinancialData: %v", err)
	}

	p := res.Metrics.Profitability
	near(t, "operating margin", p.OperatingMargin, 10.0)
	near(t, "ROA", p.ROA, 3.0)
	near(t, "ROE", p.ROE, 7.5)

	if res.Metrics.Growth.Revenue.Valid() || !res.Metrics.Growth.Revenue.InsufficientData {
		t.Error("growth without a prior year must be insufficient data")
	}
	if res.CashFlowAnalysis == nil || res.CashFlowAnalysis.Pattern.Name != "healthy growth" {
		t.Errorf("unexpected cash-flow pattern %+v", res.CashFlowAnalysis)
	}
	if res.Benchmark != nil {
		t.Error("benchmark without industry data")
	}
	if len(res.Anomalies.PriorPeriod.Anomalies) != 0 || len(res.Anomalies.PriorPeriod.Undetermined) == 0 {
		t.Errorf("no prior year: expected only undetermined metrics, got %+v", res.Anomalies.PriorPeriod)
	}
	if res.QualityScore <= 0 || res.QualityScore > 100 {
		t.Errorf("quality score out of range: %d", res.QualityScore)
	}
}

func TestAnalyzeFinancialData_PriorYearAndIndustry(t *testing.T) {
	stmt := company(t, "2023/4/1～2024/3/31", "3650", "100,000,000")
	prev := company(t, "2022/4/1～2023/3/31", "3650", "40,000,000")
	industry := &benchmark.IndustryData{
		Code: "3650",
		Name: "電気機器",
		Metrics: map[string]benchmark.Reference{
			calc.MetricOperatingMargin: {Average: 8, TopQuartile: 12},
			calc.MetricROE:             {Average: 20, TopQuartile: 25},
		},
	}

	res, err := AnalyzeFinancialData(stmt, prev, industry, Options{})
	if err != nil {
		t.Fatalf("AnalyzeFinancialData: %v", err)
	}

	near(t, "revenue growth", res.Metrics.Growth.Revenue, 150)

	var margin *anomaly.Anomaly
	for i, a := range res.Anomalies.PriorPeriod.Anomalies {
		if a.Metric == calc.MetricOperatingMargin {
			margin = &res.Anomalies.PriorPeriod.Anomalies[i]
		}
	}
	if margin == nil {
		t.Fatalf("operating margin 25%% -> 10%% should be anomalous: %+v", res.Anomalies.PriorPeriod)
	}
	if margin.Severity != anomaly.SeverityCritical {
		t.Errorf("a -60%% swing is critical, got %s", margin.Severity)
	}

	if res.Benchmark == nil || len(res.Benchmark.Results) != 2 {
		t.Fatalf("expected two benchmarked metrics, got %+v", res.Benchmark)
	}
	for _, r := range res.Benchmark.Results {
		switch r.Metric {
		case calc.MetricOperatingMargin:
			if r.Rating != benchmark.RatingAboveAverage {
				t.Errorf("operating margin rated %s", r.Rating)
			}
		case calc.MetricROE:
			if r.Rating != benchmark.RatingBottom {
				t.Errorf("ROE rated %s", r.Rating)
			}
		}
	}

	peer := res.Anomalies.Peer
	if peer.Source != anomaly.SourceIndustryAverage || peer.Checked != 2 {
		t.Errorf("peer detection should check the two referenced metrics: %+v", peer)
	}
}

func TestAnalyzeFinancialData_Invalid(t *testing.T) {
	_, err := AnalyzeFinancialData(nil, nil, nil, Options{})
	var verr *statement.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	stmt := company(t, "2023/4/1～2024/3/31", "3650", "100,000,000")
	bad := *stmt
	bad.IncomeStatement = statement.IncomeStatement{}
	if _, err := AnalyzeFinancialData(stmt, &bad, nil, Options{}); !errors.As(err, &verr) {
		t.Errorf("invalid previous year should fail validation, got %v", err)
	}
}

func TestQualityScore(t *testing.T) {
	stmt := company(t, "2023/4/1～2024/3/31", "3650", "100,000,000")
	m := calc.Calculate(stmt.Figures(), nil, nil, nil)

	base := QualityScore(stmt, m, false)

	noisy := *stmt
	noisy.Warnings = append([]statement.Warning{{Code: statement.WarnBalanceMismatch}}, stmt.Warnings...)
	if got := QualityScore(&noisy, m, false); got != base-15 && base >= 15 {
		t.Errorf("balance warning should cost 15 points: %d -> %d", base, got)
	}

	for i := 0; i < 20; i++ {
		noisy.Warnings = append(noisy.Warnings, statement.Warning{Code: statement.WarnBalanceMismatch})
	}
	if got := QualityScore(&noisy, m, false); got != 0 {
		t.Errorf("score must clamp at 0, got %d", got)
	}
}

// =============================================================================
// BATCH
// =============================================================================

type panicSource struct{}

func (panicSource) Industry(_ context.Context, code string) (*benchmark.IndustryData, error) {
	if code == "9999" {
		panic("corrupt reference row")
	}
	return nil, benchmark.ErrIndustryNotFound
}

func TestAnalyzeBatch_OrderAndIsolation(t *testing.T) {
	valid := company(t, "2023/4/1～2024/3/31", "3650", "100,000,000")
	poisoned := company(t, "2023/4/1～2024/3/31", "9999", "100,000,000")
	malformed := &extract.ExtractionError{Format: extract.FormatPDF, Reason: "no extractable text layer"}

	items := []BatchItem{
		{ID: "a", Statement: valid},
		{ID: "b", Err: malformed},
		{ID: "c", Statement: poisoned},
		{ID: "d", Statement: nil},
		{ID: "e", Statement: valid},
	}

	results := AnalyzeBatch(context.Background(), items, Options{Workers: 2, Industries: panicSource{}})

	if len(results) != len(items) {
		t.Fatalf("got %d results for %d items", len(results), len(items))
	}
	for i, r := range results {
		if r.Index != i || r.ID != items[i].ID {
			t.Errorf("slot %d holds item %d (%s)", i, r.Index, r.ID)
		}
	}
	if !results[0].OK() || !results[4].OK() {
		t.Error("valid items must succeed")
	}

	var eerr *extract.ExtractionError
	if !errors.As(results[1].Err, &eerr) || results[1].Error == "" {
		t.Errorf("extraction error not carried into its slot: %+v", results[1])
	}
	if results[2].OK() || results[2].Err == nil {
		t.Error("panicking item must fail in isolation")
	}
	var verr *statement.ValidationError
	if !errors.As(results[3].Err, &verr) {
		t.Errorf("nil statement should be a validation error, got %v", results[3].Err)
	}
}

func TestAnalyzeBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := AnalyzeBatch(ctx, []BatchItem{{ID: "a", Statement: company(t, "2023/4/1～2024/3/31", "3650", "1")}}, Options{})
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", results[0].Err)
	}
}

func TestAnalyzeBatch_Empty(t *testing.T) {
	if got := AnalyzeBatch(context.Background(), nil, Options{}); len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
}
