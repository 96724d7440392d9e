// Package extract turns raw document bytes into an intermediate RawTable of
// labeled cell text. Extractors perform no unit or semantic interpretation;
// that is the job of the normalize and statement packages.
package extract

import (
	"context"
	"fmt"
	"strings"
)

// Format tags the extractor variant used for a document.
type Format string

const (
	FormatPDF         Format = "pdf"
	FormatSpreadsheet Format = "spreadsheet"
	FormatCSV         Format = "csv"
	FormatHTML        Format = "html"
)

// Hint is the caller-supplied filename and MIME type of an upload.
type Hint struct {
	Filename string `json:"filename,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
}

func (h Hint) String() string {
	switch {
	case h.Filename != "" && h.MIMEType != "":
		return fmt.Sprintf("%s (%s)", h.Filename, h.MIMEType)
	case h.Filename != "":
		return h.Filename
	default:
		return h.MIMEType
	}
}

// Cell is one text fragment of a row. X is the horizontal position for PDF
// input and zero elsewhere.
type Cell struct {
	Text   string  `json:"text"`
	Column int     `json:"column"`
	X      float64 `json:"x,omitempty"`
}

// Row is an ordered list of cells in reading order.
type Row struct {
	Index int    `json:"index"`
	Sheet string `json:"sheet,omitempty"`
	Cells []Cell `json:"cells"`
}

// Texts returns the non-empty cell texts of the row.
func (r Row) Texts() []string {
	out := make([]string, 0, len(r.Cells))
	for _, c := range r.Cells {
		if t := strings.TrimSpace(c.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// RawTable is the extractor output: rows of cell text, no interpretation.
type RawTable struct {
	Format   Format `json:"format"`
	Encoding string `json:"encoding,omitempty"`
	Pages    int    `json:"pages,omitempty"`
	Rows     []Row  `json:"rows"`
}

// Extractor is implemented once per document format.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (*RawTable, error)
}

// UnsupportedFormatError is returned when no extractor recognizes a document.
type UnsupportedFormatError struct {
	Hint   Hint
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Hint.String() == "" {
		return "unsupported document format: " + e.Reason
	}
	return fmt.Sprintf("unsupported document format for %s: %s", e.Hint, e.Reason)
}

// ExtractionError is returned when an extractor recognized the format but
// could not produce a usable table (e.g. an image-only PDF).
type ExtractionError struct {
	Format Format
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s extraction failed: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s extraction failed: %s", e.Format, e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
