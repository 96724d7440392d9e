package extract

import (
	"context"
	"fmt"
)

// Options configures the extractors built by NewRegistry.
type Options struct {
	// CSVDelimiter forces the CSV field separator; zero sniffs it.
	CSVDelimiter rune
	// PDFGapFactor is the word gap, in font sizes, that starts a new cell.
	PDFGapFactor float64
}

// Registry maps each Format to its extractor.
type Registry struct {
	extractors map[Format]Extractor
}

func NewRegistry(opts Options) *Registry {
	return &Registry{extractors: map[Format]Extractor{
		FormatPDF:         &PDFExtractor{GapFactor: opts.PDFGapFactor},
		FormatSpreadsheet: &SpreadsheetExtractor{},
		FormatCSV:         &CSVExtractor{Delimiter: opts.CSVDelimiter},
		FormatHTML:        &HTMLExtractor{},
	}}
}

// Register replaces the extractor for a format.
func (r *Registry) Register(f Format, e Extractor) {
	r.extractors[f] = e
}

// Extract detects the format of data and runs the matching extractor.
func (r *Registry) Extract(ctx context.Context, data []byte, hint Hint) (*RawTable, error) {
	format, err := DetectFormat(data, hint)
	if err != nil {
		return nil, err
	}
	e, ok := r.extractors[format]
	if !ok {
		return nil, &UnsupportedFormatError{Hint: hint, Reason: fmt.Sprintf("no extractor registered for %s", format)}
	}
	table, err := e.Extract(ctx, data)
	if err != nil {
		return nil, err
	}
	table.Format = format
	return table, nil
}
