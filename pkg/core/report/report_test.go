package report

import (
	"strings"
	"testing"

	"finstat/pkg/core/analysis"
	"finstat/pkg/core/benchmark"
	"finstat/pkg/core/calc"
	"finstat/pkg/core/extract"
	"finstat/pkg/core/statement"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func analyzed(t *testing.T) (*statement.ParsedStatement, *analysis.AnalysisResult) {
	t.Helper()
	lines := [][]string{
		{"会社名", "株式会社サンプル"},
		{"会計期間", "2023/4/1～2024/3/31"},
		{"業種コード", "3650"},
		{"資産合計", "200,000,000"},
		{"純資産合計", "80,000,000"},
		{"売上高", "100,000,000"},
		{"営業利益", "10,000,000"},
		{"当期純利益", "6,000,000"},
		{"営業活動によるキャッシュ・フロー", "9,000,000"},
		{"投資活動によるキャッシュ・フロー", "△4,000,000"},
		{"財務活動によるキャッシュ・フロー", "△2,000,000"},
	}
	table := &extract.RawTable{Format: extract.FormatCSV}
	for i, line := range lines {
		row := extract.Row{Index: i}
		for j, text := range line {
			row.Cells = append(row.Cells, extract.Cell{Text: text, Column: j})
		}
		table.Rows = append(table.Rows, row)
	}
	stmt, err := statement.Assemble(table, statement.DefaultOptions())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	industry := &benchmark.IndustryData{
		Code: "3650",
		Name: "電気機器",
		Metrics: map[string]benchmark.Reference{
			calc.MetricOperatingMargin: {Average: 8, TopQuartile: 12},
		},
	}
	res, err := analysis.AnalyzeFinancialData(stmt, nil, industry, analysis.Options{})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	return stmt, res
}

func TestYen(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "¥0"},
		{1234567, "¥1,234,567"},
		{999.6, "¥1,000"},
		{-4000000, "-¥4,000,000"},
	}
	for _, tt := range tests {
		if got := Yen(tt.in); got != tt.want {
			t.Errorf("Yen(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatRatio(t *testing.T) {
	v := 12.345
	tests := []struct {
		name string
		in   calc.Ratio
		want string
	}{
		{"value", calc.Ratio{Value: &v}, "12.35"},
		{"approximate", calc.Ratio{Value: &v, Approximate: true}, "12.35*"},
		{"null", calc.Ratio{}, "n/a"},
		{"no prior", calc.Ratio{InsufficientData: true}, "n/a (no prior year)"},
	}
	for _, tt := range tests {
		if got := FormatRatio(tt.in); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestMarkdown(t *testing.T) {
	stmt, res := analyzed(t)

	md, err := Markdown(stmt, res)
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}

	want := []string{
		"Financial analysis: 株式会社サンプル",
		"Key figures", "Metrics", "Cash flow", "Benchmark", "Anomalies", "Warnings",
	}
	got := headings(md)
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("headings = %q, want %q", got, want)
	}

	for _, s := range []string{
		"| 売上高 | ¥100,000,000 |",
		"| Operating margin (%) | 10.00 | 8.00 | above-average |",
		"Revenue growth (%) | n/a (no prior year)",
		"**healthy growth**",
		"Free cash flow: ¥5,000,000",
		"Compared with 電気機器 (3650).",
	} {
		if !strings.Contains(md, s) {
			t.Errorf("report lacks %q:\n%s", s, md)
		}
	}
}

func TestMarkdownWithoutStatement(t *testing.T) {
	_, res := analyzed(t)
	res.Benchmark = nil
	res.CashFlowAnalysis = nil

	md, err := Markdown(nil, res)
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	for _, s := range []string{"No key figures were reported.", "No industry reference data.", "are not all reported"} {
		if !strings.Contains(md, s) {
			t.Errorf("report lacks %q", s)
		}
	}

	if _, err := Markdown(nil, nil); err == nil {
		t.Error("nil result must fail")
	}
}

func TestHTML(t *testing.T) {
	html, err := HTML("# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	for _, s := range []string{"<h1>Title</h1>", "<table>", "<td>1</td>"} {
		if !strings.Contains(html, s) {
			t.Errorf("html lacks %q:\n%s", s, html)
		}
	}
}

// headings lists the text of every heading in md, in document order.
func headings(md string) []string {
	src := []byte(md)
	root := goldmark.New().Parser().Parse(text.NewReader(src))

	var out []string
	_ = ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := node.(*ast.Heading); ok {
			var b strings.Builder
			for i := 0; i < h.Lines().Len(); i++ {
				line := h.Lines().At(i)
				b.Write(line.Value(src))
			}
			out = append(out, strings.TrimSpace(b.String()))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return out
}
