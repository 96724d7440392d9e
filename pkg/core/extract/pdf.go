package extract

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"finstat/pkg/core/normalize"
)

// PDFExtractor rebuilds logical rows and columns from a PDF text layer.
//
// Words on one baseline are merged into a cell until the horizontal gap to
// the next word exceeds GapFactor times the font size. Pages laid out as
// two side-by-side statements (assets left, liabilities right) are split at
// the gutter and emitted one half after the other.
type PDFExtractor struct {
	GapFactor float64
}

type pdfCell struct {
	text     string
	x, end   float64
	fontSize float64
}

type pdfLine []pdfCell

func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (table *RawTable, err error) {
	// The text reader panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			table, err = nil, &ExtractionError{Format: FormatPDF, Reason: fmt.Sprintf("malformed content: %v", r)}
		}
	}()

	// pdfcpu is stricter than the text reader; a preflight failure is only
	// fatal when the text reader rejects the file as well.
	pages, preflightErr := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if preflightErr != nil {
			err = fmt.Errorf("%w (preflight: %v)", err, preflightErr)
		}
		return nil, &ExtractionError{Format: FormatPDF, Reason: "cannot open document", Err: err}
	}
	if preflightErr != nil || pages == 0 {
		pages = r.NumPage()
	}

	table = &RawTable{Format: FormatPDF, Pages: pages}
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return nil, &ExtractionError{Format: FormatPDF, Reason: fmt.Sprintf("cannot read text of page %d", i), Err: err}
		}

		var lines []pdfLine
		for _, row := range rows {
			if line := e.buildLine(row.Content); len(line) > 0 {
				lines = append(lines, line)
			}
		}
		for _, block := range splitColumns(lines) {
			for _, line := range block {
				out := Row{Index: len(table.Rows), Sheet: fmt.Sprintf("page %d", i)}
				for col, c := range line {
					out.Cells = append(out.Cells, Cell{Text: c.text, Column: col, X: c.x})
				}
				table.Rows = append(table.Rows, out)
			}
		}
	}

	if len(table.Rows) == 0 {
		return nil, &ExtractionError{Format: FormatPDF, Reason: "no extractable text layer (scanned image documents are not supported)"}
	}
	return table, nil
}

// buildLine merges glyph runs on one baseline into cells.
func (e *PDFExtractor) buildLine(words pdf.TextHorizontal) pdfLine {
	factor := e.GapFactor
	if factor <= 0 {
		factor = 1.5
	}

	sorted := make([]pdf.Text, 0, len(words))
	for _, w := range words {
		if strings.TrimSpace(w.S) != "" {
			sorted = append(sorted, w)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var line pdfLine
	for _, w := range sorted {
		size := w.FontSize
		if size <= 0 {
			size = 10
		}
		end := w.X + w.W
		if w.W <= 0 {
			end = w.X + size*0.5*float64(len([]rune(w.S)))
		}
		if n := len(line); n > 0 && w.X-line[n-1].end <= factor*size {
			line[n-1].text += w.S
			line[n-1].end = math.Max(line[n-1].end, end)
			continue
		}
		line = append(line, pdfCell{text: w.S, x: w.X, end: end, fontSize: size})
	}
	for i := range line {
		line[i].text = strings.TrimSpace(line[i].text)
	}
	return line
}

// splitColumns detects a two-column page. A boundary qualifies when no cell
// crosses it and, on at least half of the lines touching both sides, each
// side starts with a label followed by a figure. Single-column pages are
// returned unchanged as one block.
func splitColumns(lines []pdfLine) [][]pdfLine {
	if len(lines) < 2 {
		return [][]pdfLine{lines}
	}

	var starts []float64
	for _, line := range lines {
		for _, c := range line[1:] {
			starts = append(starts, c.x)
		}
	}
	sort.Float64s(starts)

	for _, boundary := range starts {
		if crosses(lines, boundary) {
			continue
		}
		both, paired := 0, 0
		for _, line := range lines {
			left, right := splitLine(line, boundary)
			if len(left) == 0 || len(right) == 0 {
				continue
			}
			both++
			if isLabeledSide(left) && isLabeledSide(right) {
				paired++
			}
		}
		if both >= 2 && paired*2 >= both {
			var leftBlock, rightBlock []pdfLine
			for _, line := range lines {
				left, right := splitLine(line, boundary)
				if len(left) > 0 {
					leftBlock = append(leftBlock, left)
				}
				if len(right) > 0 {
					rightBlock = append(rightBlock, right)
				}
			}
			return [][]pdfLine{leftBlock, rightBlock}
		}
	}
	return [][]pdfLine{lines}
}

func crosses(lines []pdfLine, boundary float64) bool {
	for _, line := range lines {
		for _, c := range line {
			if c.x < boundary && c.end > boundary {
				return true
			}
		}
	}
	return false
}

func splitLine(line pdfLine, boundary float64) (left, right pdfLine) {
	for _, c := range line {
		if c.x < boundary {
			left = append(left, c)
		} else {
			right = append(right, c)
		}
	}
	return left, right
}

func isLabeledSide(side pdfLine) bool {
	if len(side) < 2 || normalize.LooksNumeric(side[0].text) {
		return false
	}
	return normalize.LooksNumeric(side[len(side)-1].text)
}
