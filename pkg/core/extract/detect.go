package extract

import (
	"archive/zip"
	"bytes"
	"path/filepath"
	"strings"
)

var (
	sigPDF  = []byte("%PDF-")
	sigZIP  = []byte("PK\x03\x04")
	sigOLE2 = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DetectFormat chooses an extractor from the byte signature first and the
// filename/MIME hint second. A hint never overrides a contradicting
// signature.
func DetectFormat(data []byte, hint Hint) (Format, error) {
	if len(data) == 0 {
		return "", &UnsupportedFormatError{Hint: hint, Reason: "empty document"}
	}

	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	switch {
	case bytes.Contains(head, sigPDF):
		return FormatPDF, nil
	case bytes.HasPrefix(data, sigZIP):
		if zipHasEntry(data, "xl/workbook.xml") {
			return FormatSpreadsheet, nil
		}
		return "", &UnsupportedFormatError{Hint: hint, Reason: "zip archive is not an xlsx workbook"}
	case bytes.HasPrefix(data, sigOLE2):
		return "", &UnsupportedFormatError{Hint: hint, Reason: "legacy binary .xls workbooks are not supported; save as .xlsx"}
	}

	if isBinary(head) {
		return "", &UnsupportedFormatError{Hint: hint, Reason: "unrecognized binary signature"}
	}
	if looksLikeHTML(head) {
		return FormatHTML, nil
	}

	ext := strings.ToLower(filepath.Ext(hint.Filename))
	mime := strings.ToLower(strings.TrimSpace(strings.Split(hint.MIMEType, ";")[0]))
	switch {
	case ext == ".pdf" || mime == "application/pdf":
		return "", &UnsupportedFormatError{Hint: hint, Reason: "declared pdf but missing %PDF signature"}
	case ext == ".xlsx" || ext == ".xlsm" || strings.Contains(mime, "spreadsheetml"):
		return "", &UnsupportedFormatError{Hint: hint, Reason: "declared xlsx but not a zip archive"}
	case ext == ".html" || ext == ".htm" || mime == "text/html":
		return FormatHTML, nil
	case ext == ".csv" || ext == ".tsv" || ext == ".txt",
		mime == "text/csv", mime == "text/plain", mime == "text/tab-separated-values",
		mime == "application/vnd.ms-excel", mime == "application/csv":
		return FormatCSV, nil
	}

	if looksDelimited(head) {
		return FormatCSV, nil
	}
	return "", &UnsupportedFormatError{Hint: hint, Reason: "no extractor recognizes the content"}
}

func zipHasEntry(data []byte, name string) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == name {
			return true
		}
	}
	return false
}

// isBinary treats NUL bytes as a binary marker; neither UTF-8 nor
// Shift-JIS text contains them.
func isBinary(head []byte) bool {
	return bytes.IndexByte(head, 0) >= 0
}

func looksLikeHTML(head []byte) bool {
	s := strings.ToLower(strings.TrimSpace(string(bytes.TrimPrefix(head, utf8BOM))))
	return strings.HasPrefix(s, "<!doctype html") ||
		strings.HasPrefix(s, "<html") ||
		strings.HasPrefix(s, "<table") ||
		(strings.HasPrefix(s, "<") && strings.Contains(s, "<table"))
}

func looksDelimited(head []byte) bool {
	if !bytes.ContainsAny(head, "\n\r") && len(head) < 1024 {
		return bytes.ContainsAny(head, ",\t;")
	}
	firstLine, _, _ := bytes.Cut(head, []byte("\n"))
	return bytes.ContainsAny(firstLine, ",\t;")
}
