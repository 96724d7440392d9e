package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
)

// CSVExtractor tokenizes delimited text. A zero Delimiter means the
// delimiter is sniffed from the first lines among comma, tab and semicolon.
type CSVExtractor struct {
	Delimiter rune
}

func (e *CSVExtractor) Extract(ctx context.Context, data []byte) (*RawTable, error) {
	text, encoding, err := DecodeText(data)
	if err != nil {
		return nil, &ExtractionError{Format: FormatCSV, Reason: "cannot decode text", Err: err}
	}

	delim := e.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(text)
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	table := &RawTable{Format: FormatCSV, Encoding: encoding}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ExtractionError{Format: FormatCSV, Reason: "malformed delimited text", Err: err}
		}
		row := Row{Index: len(table.Rows)}
		for i, field := range record {
			row.Cells = append(row.Cells, Cell{Text: strings.TrimSpace(field), Column: i})
		}
		if len(row.Texts()) == 0 {
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	if len(table.Rows) == 0 {
		return nil, &ExtractionError{Format: FormatCSV, Reason: "no rows"}
	}
	return table, nil
}

// DecodeText detects UTF-8 (with or without BOM) versus Shift-JIS and
// returns the decoded text with the detected encoding name. Japanese
// business software commonly exports Shift-JIS, so anything that is not
// valid UTF-8 is decoded as Shift-JIS.
func DecodeText(data []byte) (string, string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), EncodingUTF8, nil
	}
	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(data)
	if err != nil {
		return "", "", err
	}
	if !utf8.Valid(decoded) || bytes.ContainsRune(decoded, utf8.RuneError) {
		return "", "", errors.New("content is neither utf-8 nor shift_jis")
	}
	return string(decoded), EncodingShiftJIS, nil
}

// sniffDelimiter picks the candidate occurring most often outside quotes in
// the first lines, defaulting to comma.
func sniffDelimiter(text string) rune {
	candidates := []rune{',', '\t', ';'}
	counts := make(map[rune]int, len(candidates))

	lines := strings.SplitN(text, "\n", 11)
	if len(lines) > 10 {
		lines = lines[:10]
	}
	for _, line := range lines {
		inQuotes := false
		for _, r := range line {
			if r == '"' {
				inQuotes = !inQuotes
				continue
			}
			if inQuotes {
				continue
			}
			for _, c := range candidates {
				if r == c {
					counts[c]++
				}
			}
		}
	}

	best, bestCount := ',', 0
	for _, c := range candidates {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}
