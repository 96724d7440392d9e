// Package normalize converts raw cell text from financial documents into
// canonical values: amounts with an explicit currency-unit scale, canonical
// account names, Gregorian dates and industry names.
//
// Every function in this package is pure and safe for concurrent use.
package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/width"
)

// Unit is the multiplicative scale attached to a parsed amount.
type Unit string

const (
	UnitYen               Unit = "yen"
	UnitThousandYen       Unit = "thousand_yen"
	UnitMillionYen        Unit = "million_yen"
	UnitHundredMillionYen Unit = "hundred_million_yen"
)

var unitScales = map[Unit]int64{
	UnitYen:               1,
	UnitThousandYen:       1_000,
	UnitMillionYen:        1_000_000,
	UnitHundredMillionYen: 100_000_000,
}

// unitSuffixes is ordered longest first so "百万円" wins over "円".
var unitSuffixes = []struct {
	suffix string
	unit   Unit
}{
	{"百万円", UnitMillionYen},
	{"億円", UnitHundredMillionYen},
	{"千円", UnitThousandYen},
	{"円", UnitYen},
}

// Scale returns the yen multiplier of the unit, or 0 for an unknown unit.
func (u Unit) Scale() int64 {
	return unitScales[u]
}

// Valid reports whether u is one of the four supported units.
func (u Unit) Valid() bool {
	_, ok := unitScales[u]
	return ok
}

// Amount is a parsed number together with the unit it was written in.
type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

// NewAmount builds an Amount from a float, mostly for tests and fixtures.
func NewAmount(v float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(v), Unit: unit}
}

// ToYen converts the amount into base-currency yen.
func ToYen(a Amount) float64 {
	return a.Yen().InexactFloat64()
}

// Yen returns the exact yen value.
func (a Amount) Yen() decimal.Decimal {
	scale := a.Unit.Scale()
	if scale == 0 {
		scale = 1
	}
	return a.Value.Mul(decimal.NewFromInt(scale))
}

func (a Amount) String() string {
	return fmt.Sprintf("%s %s", a.Value.String(), a.Unit)
}

type amountJSON struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// MarshalJSON writes the value as a JSON number rather than decimal's
// default quoted string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(amountJSON{Value: a.Value.InexactFloat64(), Unit: a.Unit})
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var raw amountJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Unit == "" {
		raw.Unit = UnitYen
	}
	if !raw.Unit.Valid() {
		return fmt.Errorf("unknown amount unit %q", raw.Unit)
	}
	a.Value = decimal.NewFromFloat(raw.Value)
	a.Unit = raw.Unit
	return nil
}

// AmountParseError reports text that could not be read as an amount.
type AmountParseError struct {
	Input  string
	Reason string
}

func (e *AmountParseError) Error() string {
	return fmt.Sprintf("cannot parse amount %q: %s", e.Input, e.Reason)
}

var numberPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

// ParseAmount parses amount text; bare numbers are taken as yen.
func ParseAmount(text string) (Amount, error) {
	return ParseAmountDefault(text, UnitYen)
}

// ParseAmountDefault parses amount text, using def as the unit when the
// text carries no unit suffix (e.g. a table headed "単位：千円").
//
// Accepted forms: full- or half-width digits, thousands separators,
// optional ¥ prefix, unit suffixes 円/千円/百万円/億円, negatives written
// with a leading minus, △/▲, or by enclosing the number in parentheses.
func ParseAmountDefault(text string, def Unit) (Amount, error) {
	if !def.Valid() {
		def = UnitYen
	}
	s := compact(text)
	if s == "" {
		return Amount{}, &AmountParseError{Input: text, Reason: "empty"}
	}

	negative := false
	if strings.HasPrefix(s, "(") {
		end := strings.Index(s, ")")
		if end < 0 {
			return Amount{}, &AmountParseError{Input: text, Reason: "unbalanced parenthesis"}
		}
		s = s[1:end] + s[end+1:]
		negative = true
	}

	for _, sign := range []string{"-", "−", "△", "▲", "+"} {
		if strings.HasPrefix(s, sign) {
			if sign != "+" {
				negative = !negative
			}
			s = strings.TrimPrefix(s, sign)
			break
		}
	}
	s = strings.TrimPrefix(s, "¥")
	s = strings.TrimPrefix(s, "\\")

	unit := def
	for _, us := range unitSuffixes {
		if strings.HasSuffix(s, us.suffix) {
			unit = us.unit
			s = strings.TrimSuffix(s, us.suffix)
			break
		}
	}

	s = strings.ReplaceAll(s, ",", "")
	if !numberPattern.MatchString(s) {
		return Amount{}, &AmountParseError{Input: text, Reason: "not a number"}
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, &AmountParseError{Input: text, Reason: err.Error()}
	}
	if negative {
		v = v.Neg()
	}
	return Amount{Value: v, Unit: unit}, nil
}

// IsBlankAmount reports whether a cell marks an intentionally empty figure,
// e.g. "―" or "-" in a comparative column.
func IsBlankAmount(text string) bool {
	switch compact(text) {
	case "", "-", "―", "—", "‐", "ー", "−", "*":
		return true
	}
	return false
}

// LooksNumeric reports whether text is plausibly an amount. It is cheaper
// than ParseAmount and used to tell labels from values.
func LooksNumeric(text string) bool {
	s := compact(text)
	if s == "" {
		return false
	}
	digits := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits > 0 && digits*2 >= len([]rune(s))-4
}

// DetectUnit finds a unit declaration such as "（単位：百万円）" and returns
// the declared unit.
func DetectUnit(text string) (Unit, bool) {
	s := compact(text)
	idx := strings.Index(s, "単位")
	if idx < 0 {
		return "", false
	}
	tail := s[idx:]
	for _, us := range unitSuffixes {
		if strings.Contains(tail, us.suffix) {
			return us.unit, true
		}
	}
	return "", false
}

// compact folds full-width characters to their narrow forms and removes all
// whitespace.
func compact(text string) string {
	folded := width.Fold.String(text)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, folded)
}
