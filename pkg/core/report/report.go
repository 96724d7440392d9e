// Package report renders an analysis as Markdown, and Markdown as HTML.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"math"
	"strings"
	"text/template"

	"finstat/pkg/core/analysis"
	"finstat/pkg/core/anomaly"
	"finstat/pkg/core/benchmark"
	"finstat/pkg/core/calc"
	n "finstat/pkg/core/normalize"
	"finstat/pkg/core/statement"

	"github.com/Rhymond/go-money"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.md
var templates embed.FS

var reportTemplate = template.Must(template.New("report.md").ParseFS(templates, "templates/report.md"))

// =============================================================================
// FORMATTING
// =============================================================================

// Yen formats an amount as whole yen, e.g. "¥1,234,567".
func Yen(v float64) string {
	return money.New(int64(math.Round(v)), money.JPY).Display()
}

// FormatRatio prints a metric with two decimals, or "n/a" when it has no
// value.
func FormatRatio(r calc.Ratio) string {
	v, ok := r.Float()
	if !ok {
		if r.InsufficientData {
			return "n/a (no prior year)"
		}
		return "n/a"
	}
	s := fmt.Sprintf("%.2f", v)
	if r.Approximate {
		s += "*"
	}
	return s
}

// metricLabels are the display names in report order.
var metricLabels = map[string]string{
	calc.MetricROE:                 "ROE (%)",
	calc.MetricROA:                 "ROA (%)",
	calc.MetricGrossMargin:         "Gross margin (%)",
	calc.MetricOperatingMargin:     "Operating margin (%)",
	calc.MetricOrdinaryMargin:      "Ordinary margin (%)",
	calc.MetricNetMargin:           "Net margin (%)",
	calc.MetricEquityRatio:         "Equity ratio (%)",
	calc.MetricCurrentRatio:        "Current ratio (%)",
	calc.MetricQuickRatio:          "Quick ratio (%)",
	calc.MetricFixedLongTerm:       "Fixed long-term suitability (%)",
	calc.MetricDebtRatio:           "Debt ratio (%)",
	calc.MetricInterestCoverage:    "Interest coverage (x)",
	calc.MetricTotalAssetTurnover:  "Total asset turnover (x)",
	calc.MetricReceivablesTurnover: "Receivables turnover (x)",
	calc.MetricInventoryTurnover:   "Inventory turnover (x)",
	calc.MetricPayablesTurnover:    "Payables turnover (x)",
	calc.MetricFixedAssetTurnover:  "Fixed asset turnover (x)",
	calc.MetricRevenueGrowth:       "Revenue growth (%)",
	calc.MetricOperatingGrowth:     "Operating income growth (%)",
	calc.MetricOrdinaryGrowth:      "Ordinary income growth (%)",
	calc.MetricTotalAssetsGrowth:   "Total assets growth (%)",
	calc.MetricEmployeeGrowth:      "Employee growth (%)",
}

// MetricLabel returns the display name of a metric key.
func MetricLabel(key string) string {
	if l, ok := metricLabels[key]; ok {
		return l
	}
	return key
}

// keyFigures are the headline accounts of the report.
var keyFigures = []string{
	n.AcctRevenue, n.AcctOperatingIncome, n.AcctOrdinaryIncome, n.AcctNetIncome,
	n.AcctTotalAssets, n.AcctNetAssetsTotal,
	n.AcctCFOperating, n.AcctCFInvesting, n.AcctCFFinancing,
}

// =============================================================================
// VIEW
// =============================================================================

type row struct {
	Name   string
	Value  string
	Extra  []string
	Rating string
}

type view struct {
	Company      string
	Industry     string
	Period       string
	QualityScore int
	Figures      []row
	Metrics      []row
	CashFlow     *calc.CashFlowAnalysis
	FreeCashFlow string
	Benchmark    *benchmark.Report
	BenchScore   string
	Anomalies    []row
	Undetermined int
	DigitLevel   string
	DigitMAD     string
	DigitSamples int
	Warnings     []statement.Warning
}

func newView(stmt *statement.ParsedStatement, res *analysis.AnalysisResult) view {
	v := view{
		Company:      res.Company.Name,
		Industry:     res.Company.IndustryName,
		Period:       periodText(res.Period),
		QualityScore: res.QualityScore,
		CashFlow:     res.CashFlowAnalysis,
		Benchmark:    res.Benchmark,
		Undetermined: len(res.Anomalies.PriorPeriod.Undetermined),
		DigitLevel:   res.DigitScreen.Level,
		DigitSamples: res.DigitScreen.Total,
		Warnings:     res.Warnings,
	}
	if v.Company == "" {
		v.Company = "(unnamed company)"
	}
	if res.Company.IndustryCode != "" {
		v.Industry = fmt.Sprintf("%s (%s)", res.Company.IndustryName, res.Company.IndustryCode)
	}

	if stmt != nil {
		figs := stmt.Figures()
		for _, name := range keyFigures {
			if amount, ok := figs.Get(name); ok {
				v.Figures = append(v.Figures, row{Name: name, Value: Yen(amount)})
			}
		}
	}

	rated := map[string]benchmark.Result{}
	if res.Benchmark != nil {
		for _, r := range res.Benchmark.Results {
			rated[r.Metric] = r
		}
		if s := res.Benchmark.Summary.Score; s != nil {
			v.BenchScore = fmt.Sprintf("%.2f / 5 (%s)", *s, res.Benchmark.Summary.Rating)
		}
	}
	values := res.Metrics.Values()
	for _, key := range calc.MetricKeys {
		r := row{Name: MetricLabel(key), Value: FormatRatio(values[key]), Rating: "-"}
		avg := "-"
		if b, ok := rated[key]; ok {
			avg = fmt.Sprintf("%.2f", b.IndustryAverage)
			r.Rating = string(b.Rating)
		}
		r.Extra = []string{avg}
		v.Metrics = append(v.Metrics, r)
	}

	if res.CashFlowAnalysis != nil {
		v.FreeCashFlow = Yen(res.CashFlowAnalysis.FreeCashFlow)
	}

	for _, det := range []struct {
		label string
		list  []anomaly.Anomaly
	}{
		{"prior year", res.Anomalies.PriorPeriod.Anomalies},
		{"industry", res.Anomalies.Peer.Anomalies},
	} {
		for _, a := range det.list {
			v.Anomalies = append(v.Anomalies, row{
				Name:   MetricLabel(a.Metric),
				Value:  fmt.Sprintf("%.2f", a.Current),
				Extra:  []string{det.label, fmt.Sprintf("%.2f", a.Baseline), fmt.Sprintf("%+.1f%%", a.ChangePct)},
				Rating: string(a.Severity),
			})
		}
	}

	if mad := res.DigitScreen.MAD; mad != nil {
		v.DigitMAD = fmt.Sprintf("%.4f", *mad)
	}
	return v
}

func periodText(p statement.FiscalPeriod) string {
	if p.End.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s (%s ~ %s)", p.Label, p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
}

// =============================================================================
// RENDERING
// =============================================================================

// Markdown renders the analysis report. stmt supplies the key figures and
// may be nil.
func Markdown(stmt *statement.ParsedStatement, res *analysis.AnalysisResult) (string, error) {
	if res == nil {
		return "", fmt.Errorf("report: nil analysis result")
	}
	var b strings.Builder
	if err := reportTemplate.Execute(&b, newView(stmt, res)); err != nil {
		return "", fmt.Errorf("report: %w", err)
	}
	return b.String(), nil
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// HTML converts Markdown to an HTML fragment. Tables are supported.
func HTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}
