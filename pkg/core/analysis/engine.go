// Package analysis composes metrics, cash-flow classification, benchmark
// comparison and anomaly detection into one result per statement, and fans
// batches out over a bounded worker pool.
package analysis

import (
	"context"
	"errors"
	"fmt"

	"finstat/pkg/core/anomaly"
	"finstat/pkg/core/benchmark"
	"finstat/pkg/core/calc"
	"finstat/pkg/core/statement"
)

// AnalyzeFinancialData analyzes stmt. prev is the prior-year statement and
// industry the reference data; both may be nil. The statement is validated
// first and a *statement.ValidationError is returned unchanged.
func AnalyzeFinancialData(stmt, prev *statement.ParsedStatement, industry *benchmark.IndustryData, opts Options) (*AnalysisResult, error) {
	if err := stmt.Validate(); err != nil {
		return nil, err
	}
	if prev != nil {
		if err := prev.Validate(); err != nil {
			return nil, fmt.Errorf("previous year: %w", err)
		}
	}

	cur := stmt.Figures()
	var prior calc.Figures
	var priorEmployees *float64
	if prev != nil {
		prior = prev.Figures()
		priorEmployees = prev.Company.EmployeeCount
	}

	metrics := calc.Calculate(cur, prior, stmt.Company.EmployeeCount, priorEmployees)
	values := metrics.Floats()

	res := &AnalysisResult{
		Company:     stmt.Company,
		Period:      stmt.Period,
		Metrics:     metrics,
		CommonSize:  calc.CalculateCommonSize(cur),
		DigitScreen: anomaly.ScreenLeadingDigits(amounts(stmt)),
		Warnings:    stmt.Warnings,
	}
	if cf, ok := calc.AnalyzeCashFlow(cur); ok {
		res.CashFlowAnalysis = cf
	}
	if res.Warnings == nil {
		res.Warnings = []statement.Warning{}
	}

	var priorValues map[string]float64
	if prev != nil {
		// The prior year has no year before it, so its growth and averaged
		// turnovers fall back to what one year supports.
		priorValues = calc.Calculate(prior, nil, priorEmployees, nil).Floats()
	}
	res.Anomalies.PriorPeriod = anomaly.Detect(values, priorValues, anomaly.SourcePriorPeriod, opts.Thresholds)

	var peer map[string]float64
	if industry != nil {
		res.Benchmark = benchmark.Compare(values, industry, opts.Weights)
		peer = industry.Averages()
	}
	res.Anomalies.Peer = anomaly.Detect(values, peer, anomaly.SourceIndustryAverage, opts.Thresholds)

	res.QualityScore = QualityScore(stmt, metrics, prev != nil)
	return res, nil
}

// resolveIndustry looks up reference data for the statement's industry
// code. A missing entry is not an error: the analysis runs without a
// benchmark.
func resolveIndustry(ctx context.Context, src benchmark.Source, stmt *statement.ParsedStatement) (*benchmark.IndustryData, error) {
	if src == nil || stmt == nil || stmt.Company.IndustryCode == "" {
		return nil, nil
	}
	d, err := src.Industry(ctx, stmt.Company.IndustryCode)
	if errors.Is(err, benchmark.ErrIndustryNotFound) {
		return nil, nil
	}
	return d, err
}

// amounts collects every parsed item amount of the statement.
func amounts(stmt *statement.ParsedStatement) []float64 {
	var out []float64
	for _, st := range []statement.Statement{
		stmt.BalanceSheet.Statement, stmt.IncomeStatement.Statement, stmt.CashFlowStatement.Statement,
	} {
		for _, it := range st.Items {
			if it.Yen != nil && *it.Yen != 0 {
				out = append(out, *it.Yen)
			}
		}
	}
	return out
}
