package analysis

import (
	"log/slog"

	"finstat/pkg/core/anomaly"
	"finstat/pkg/core/benchmark"
	"finstat/pkg/core/calc"
	"finstat/pkg/core/statement"
)

// AnalysisResult is the complete analysis of one statement. It is derived
// from its inputs only and never mutated after it is returned.
type AnalysisResult struct {
	Company          statement.CompanyInfo  `json:"company"`
	Period           statement.FiscalPeriod `json:"period"`
	Metrics          calc.Metrics           `json:"metrics"`
	CashFlowAnalysis *calc.CashFlowAnalysis `json:"cash_flow_analysis"`
	CommonSize       calc.CommonSize        `json:"common_size"`
	Benchmark        *benchmark.Report      `json:"benchmark_result,omitempty"`
	Anomalies        AnomalyReport          `json:"anomaly_result"`
	DigitScreen      anomaly.DigitScreen    `json:"digit_screen"`
	QualityScore     int                    `json:"quality_score"`
	Warnings         []statement.Warning    `json:"warnings"`
}

// AnomalyReport holds one detection per baseline. A baseline that was not
// supplied yields an empty anomaly set with every metric undetermined.
type AnomalyReport struct {
	PriorPeriod anomaly.Result `json:"prior_period"`
	Peer        anomaly.Result `json:"peer"`
}

// Options configure analysis. The zero value uses the defaults.
type Options struct {
	Thresholds anomaly.Thresholds
	// Weights per metric key for the benchmark summary; missing keys weigh 1.
	Weights map[string]float64
	// Industries resolves reference data by the statement's industry code
	// when no IndustryData is passed explicitly.
	Industries benchmark.Source
	// Workers bounds batch concurrency; zero means DefaultWorkers.
	Workers int
	Logger  *slog.Logger
}

// DefaultWorkers is the batch concurrency when Options.Workers is zero.
const DefaultWorkers = 4

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// BatchItem is one entry of a batch. Err carries an upstream failure
// (extraction, validation) into the item's slot. Warnings raised upstream
// are added to the result's.
type BatchItem struct {
	ID        string                     `json:"id"`
	Statement *statement.ParsedStatement `json:"statement,omitempty"`
	Previous  *statement.ParsedStatement `json:"previous,omitempty"`
	Industry  *benchmark.IndustryData    `json:"industry,omitempty"`
	Warnings  []statement.Warning        `json:"warnings,omitempty"`
	Err       error                      `json:"-"`
}

// BatchResult holds either a result or an error for the item at Index.
type BatchResult struct {
	Index  int             `json:"index"`
	ID     string          `json:"id,omitempty"`
	Result *AnalysisResult `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
	Err    error           `json:"-"`
}

// OK reports whether the item succeeded.
func (r BatchResult) OK() bool { return r.Err == nil && r.Result != nil }
