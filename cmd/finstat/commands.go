package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"finstat/pkg/core/analysis"
	"finstat/pkg/core/pipeline"
	"finstat/pkg/core/report"
	"finstat/pkg/core/statement"
	"finstat/pkg/core/store"

	"github.com/google/subcommands"
)

// =============================================================================
// parse
// =============================================================================

type parseCmd struct{}

func (*parseCmd) Name() string     { return "parse" }
func (*parseCmd) Synopsis() string { return "extract a financial statement as JSON" }
func (*parseCmd) Usage() string {
	return `finstat parse <file>

  Extracts the balance sheet, income statement and cash flow statement
  from a PDF, Excel, CSV or HTML document and prints them as JSON.
  Use "-" to read stdin.
`
}

func (*parseCmd) SetFlags(*flag.FlagSet) {}

func (*parseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	rt, err := openRuntime(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rt.Close()

	doc, err := readDocument(ctx, rt.Pipeline, f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	stmt, err := rt.Pipeline.ParseStatement(ctx, doc.Data, doc.Hint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := printJSON(os.Stdout, stmt); err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// =============================================================================
// analyze
// =============================================================================

type analyzeCmd struct {
	previous string
	id       string
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "compute metrics, benchmarks and anomalies as JSON" }
func (*analyzeCmd) Usage() string {
	return `finstat analyze [-prev <file>] [-id <id>] <file>

  Parses the document and prints the analysis result as JSON. With -prev,
  growth rates and the prior-period anomaly screen use the given prior
  fiscal year. With a configured database the result is stored under -id
  (a random id when empty).
`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.previous, "prev", "", "prior fiscal year document")
	f.StringVar(&c.id, "id", "", "analysis id used for storage")
}

func (c *analyzeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	rt, err := openRuntime(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rt.Close()

	stmt, res, err := analyzeFile(ctx, rt.Pipeline, f.Arg(0), c.previous, c.id)
	if err != nil && res == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if err := printJSON(os.Stdout, map[string]any{"statement": stmt, "result": res}); err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func analyzeFile(ctx context.Context, p *pipeline.Pipeline, current, previous, id string) (*statement.ParsedStatement, *analysis.AnalysisResult, error) {
	doc := loadDocument(ctx, p, current, previous)
	if doc.Err != nil {
		return nil, nil, doc.Err
	}
	if id != "" {
		doc.ID = id
	}
	return p.Analyze(ctx, doc)
}

// =============================================================================
// batch
// =============================================================================

type batchCmd struct {
	strict bool
}

func (*batchCmd) Name() string     { return "batch" }
func (*batchCmd) Synopsis() string { return "analyze many documents concurrently" }
func (*batchCmd) Usage() string {
	return `finstat batch [-strict] <current[,previous]>...

  Analyzes every argument concurrently and prints one result per argument,
  in argument order. A document that fails only fills its own slot. Pair
  a document with its prior year as "fy2023.pdf,fy2022.pdf".
`
}

func (c *batchCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.strict, "strict", false, "exit non-zero when any document fails")
}

func (c *batchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	rt, err := openRuntime(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rt.Close()

	docs := make([]pipeline.Document, 0, f.NArg())
	for _, arg := range f.Args() {
		current, previous, err := parsePair(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		docs = append(docs, loadDocument(ctx, rt.Pipeline, current, previous))
	}

	results := rt.Pipeline.AnalyzeDocuments(ctx, docs)
	if err := printJSON(os.Stdout, map[string]any{"results": results}); err != nil {
		return subcommands.ExitFailure
	}
	if c.strict {
		for _, r := range results {
			if !r.OK() {
				return subcommands.ExitFailure
			}
		}
	}
	return subcommands.ExitSuccess
}

// loadDocument reads a pair; a read failure is kept on the document so
// the batch reports it in place. A prior year that cannot be read only
// drops the prior year.
func loadDocument(ctx context.Context, p *pipeline.Pipeline, current, previous string) pipeline.Document {
	doc, err := readDocument(ctx, p, current)
	if err != nil {
		return pipeline.Document{ID: current, Err: err}
	}
	if previous != "" {
		prev, err := readDocument(ctx, p, previous)
		if err != nil {
			prev = &pipeline.Document{ID: previous, Err: err}
		}
		doc.Previous = prev
	}
	return *doc
}

// =============================================================================
// report
// =============================================================================

type reportCmd struct {
	previous string
	id       string
	format   string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "render an analysis report" }
func (*reportCmd) Usage() string {
	return `finstat report [-format term|md|html] [-prev <file>] <file>
finstat report [-format term|md|html] -id <id>

  Renders the analysis of a document, or of a stored analysis when -id is
  given, as a Markdown report. "term" renders it for the terminal.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.previous, "prev", "", "prior fiscal year document")
	f.StringVar(&c.id, "id", "", "load a stored analysis instead of parsing a file")
	f.StringVar(&c.format, "format", "term", "output format: term, md or html")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if (c.id == "") == (f.NArg() == 0) || f.NArg() > 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	switch c.format {
	case "term", "md", "html":
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}

	rt, err := openRuntime(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rt.Close()

	var (
		stmt *statement.ParsedStatement
		res  *analysis.AnalysisResult
	)
	if c.id != "" {
		stmt, res, err = loadStored(ctx, rt.DB, c.id)
	} else {
		stmt, res, err = analyzeFile(ctx, rt.Pipeline, f.Arg(0), c.previous, "")
		if err != nil && res != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			err = nil
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	md, err := report.Markdown(stmt, res)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	switch c.format {
	case "md":
		fmt.Print(md)
	case "html":
		html, err := report.HTML(md)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Print(html)
	default:
		printMarkdown(md)
	}
	return subcommands.ExitSuccess
}

func loadStored(ctx context.Context, db *sql.DB, id string) (*statement.ParsedStatement, *analysis.AnalysisResult, error) {
	if db == nil {
		return nil, nil, errors.New("-id needs a configured database (FINSTAT_DATABASE_URL)")
	}
	stored, err := store.NewAnalysisRepo(db).Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return stored.Statement, stored.Result, nil
}

// =============================================================================
// history
// =============================================================================

type historyCmd struct{}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list the stored analyses of a company" }
func (*historyCmd) Usage() string {
	return `finstat history <company name>

  Prints the ids of the company's stored analyses, latest fiscal period
  first. Use an id with "finstat report -id". Needs a configured database.
`
}

func (*historyCmd) SetFlags(*flag.FlagSet) {}

func (*historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	rt, err := openRuntime(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rt.Close()

	if err := listHistory(ctx, rt.DB, f.Arg(0), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func listHistory(ctx context.Context, db *sql.DB, company string, w io.Writer) error {
	if db == nil {
		return errors.New("history needs a configured database (FINSTAT_DATABASE_URL)")
	}
	ids, err := store.NewAnalysisRepo(db).ListByCompany(ctx, company)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("no stored analyses for %q", company)
	}
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
	return nil
}
