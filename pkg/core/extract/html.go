package extract

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLExtractor reads the tables of an HTML export (EDINET-style pages).
// Every <tr> becomes a row; captions and short paragraphs carrying a unit
// or period header are emitted as single-cell rows ahead of the tables.
type HTMLExtractor struct{}

func (e *HTMLExtractor) Extract(ctx context.Context, data []byte) (*RawTable, error) {
	text, encoding, err := DecodeText(data)
	if err != nil {
		return nil, &ExtractionError{Format: FormatHTML, Reason: "cannot decode text", Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(text)))
	if err != nil {
		return nil, &ExtractionError{Format: FormatHTML, Reason: "cannot parse markup", Err: err}
	}

	table := &RawTable{Format: FormatHTML, Encoding: encoding}
	addRow := func(sheet string, texts []string) {
		row := Row{Index: len(table.Rows), Sheet: sheet}
		for i, t := range texts {
			row.Cells = append(row.Cells, Cell{Text: t, Column: i})
		}
		if len(row.Texts()) > 0 {
			table.Rows = append(table.Rows, row)
		}
	}

	doc.Find("h1, h2, h3, p, caption").Each(func(_ int, s *goquery.Selection) {
		t := collapse(s.Text())
		if t == "" || len([]rune(t)) > 80 {
			return
		}
		if strings.Contains(t, "単位") || strings.Contains(t, "至") || strings.Contains(t, "会社名") {
			addRow("", []string{t})
		}
	})

	doc.Find("table").Each(func(i int, tbl *goquery.Selection) {
		if ctx.Err() != nil {
			return
		}
		sheet := "table " + strconv.Itoa(i+1)
		tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			var texts []string
			tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				texts = append(texts, collapse(cell.Text()))
			})
			addRow(sheet, texts)
		})
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(table.Rows) == 0 {
		return nil, &ExtractionError{Format: FormatHTML, Reason: "no table rows"}
	}
	return table, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
