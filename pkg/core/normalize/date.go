package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateParseError reports text that matched none of the supported date forms.
type DateParseError struct {
	Input  string
	Reason string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("cannot parse date %q: %s", e.Input, e.Reason)
}

var (
	kanjiDatePattern   = regexp.MustCompile(`^(\d{4})年(\d{1,2})月(\d{1,2})日$`)
	numericDatePattern = regexp.MustCompile(`^(\d{4})[/\-.](\d{1,2})[/\-.](\d{1,2})$`)
	eraDatePattern     = regexp.MustCompile(`^(明治|大正|昭和|平成|令和)(元|\d{1,2})年(\d{1,2})月(\d{1,2})日$`)
	eraShortPattern    = regexp.MustCompile(`^([MTSHR])(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{1,2})$`)
)

// ParseDate accepts YYYY年MM月DD日, YYYY/MM/DD, YYYY-MM-DD, YYYY.MM.DD and
// Japanese era dates ("令和6年3月31日", "平成元年4月1日", "R6.3.31").
// Dates are returned at midnight UTC.
func ParseDate(text string) (time.Time, error) {
	s := strings.ToUpper(compact(text))
	if s == "" {
		return time.Time{}, &DateParseError{Input: text, Reason: "empty"}
	}

	if m := kanjiDatePattern.FindStringSubmatch(s); m != nil {
		return buildDate(text, atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := numericDatePattern.FindStringSubmatch(s); m != nil {
		return buildDate(text, atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := eraDatePattern.FindStringSubmatch(s); m != nil {
		return eraDate(text, m[1], m[2], m[3], m[4])
	}
	if m := eraShortPattern.FindStringSubmatch(s); m != nil {
		return eraDate(text, eraLetters[m[1]], m[2], m[3], m[4])
	}
	return time.Time{}, &DateParseError{Input: text, Reason: "unrecognized format"}
}

// ParsePeriod parses a fiscal-period range such as
// "自 2023年4月1日 至 2024年3月31日" or "2023/04/01～2024/03/31".
func ParsePeriod(text string) (start, end time.Time, err error) {
	s := compact(text)
	s = strings.TrimPrefix(s, "自")
	s = strings.TrimSuffix(s, "まで")

	var left, right string
	for _, sep := range []string{"至", "~", "〜", "から"} {
		if i := strings.Index(s, sep); i > 0 {
			left, right = s[:i], s[i+len(sep):]
			break
		}
	}
	if left == "" || right == "" {
		return time.Time{}, time.Time{}, &DateParseError{Input: text, Reason: "not a date range"}
	}
	if start, err = ParseDate(left); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end, err = ParseDate(right); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, &DateParseError{Input: text, Reason: "period end is not after start"}
	}
	return start, end, nil
}

func eraDate(input, era, year, month, day string) (time.Time, error) {
	base, ok := eraStartYears[era]
	if !ok {
		return time.Time{}, &DateParseError{Input: input, Reason: "unknown era " + era}
	}
	eraYear := 1
	if year != "元" {
		eraYear = atoi(year)
	}
	if eraYear < 1 {
		return time.Time{}, &DateParseError{Input: input, Reason: "era year must be positive"}
	}
	return buildDate(input, base+eraYear-1, atoi(month), atoi(day))
}

func buildDate(input string, year, month, day int) (time.Time, error) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (2月30日 -> 3月2日); reject instead.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, &DateParseError{Input: input, Reason: "no such calendar day"}
	}
	return t, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
