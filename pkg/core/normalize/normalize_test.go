package normalize

import (
	"errors"
	"testing"
	"time"
)

// =============================================================================
// AMOUNT TESTS
// =============================================================================

func TestParseAmount_UnitScales(t *testing.T) {
	tests := []struct {
		suffix string
		scale  float64
		unit   Unit
	}{
		{"円", 1, UnitYen},
		{"千円", 1e3, UnitThousandYen},
		{"百万円", 1e6, UnitMillionYen},
		{"億円", 1e8, UnitHundredMillionYen},
	}
	numbers := []struct {
		text string
		n    float64
	}{
		{"0", 0},
		{"7", 7},
		{"1234", 1234},
		{"1,234,567", 1234567},
		{"12.5", 12.5},
		{"-250", -250},
	}

	for _, tt := range tests {
		for _, num := range numbers {
			input := num.text + tt.suffix
			a, err := ParseAmount(input)
			if err != nil {
				t.Fatalf("ParseAmount(%q) error: %v", input, err)
			}
			if a.Unit != tt.unit {
				t.Errorf("ParseAmount(%q).Unit = %s, want %s", input, a.Unit, tt.unit)
			}
			if got, want := ToYen(a), num.n*tt.scale; got != want {
				t.Errorf("ToYen(ParseAmount(%q)) = %v, want %v", input, got, want)
			}
		}
	}
}

func TestParseAmount_FullWidthInvariant(t *testing.T) {
	pairs := [][2]string{
		{"１２３４円", "1234円"},
		{"１，２３４千円", "1,234千円"},
		{"（５００）百万円", "(500)百万円"},
		{"－９８７", "-987"},
		{"￥１２，０００", "¥12,000"},
	}
	for _, p := range pairs {
		full, err := ParseAmount(p[0])
		if err != nil {
			t.Fatalf("ParseAmount(%q) error: %v", p[0], err)
		}
		half, err := ParseAmount(p[1])
		if err != nil {
			t.Fatalf("ParseAmount(%q) error: %v", p[1], err)
		}
		if !full.Value.Equal(half.Value) || full.Unit != half.Unit {
			t.Errorf("ParseAmount(%q) = %s, ParseAmount(%q) = %s", p[0], full, p[1], half)
		}
	}
}

func TestParseAmount_Negatives(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		unit  Unit
	}{
		{"(1,234)円", -1234, UnitYen},
		{"(1,234円)", -1234, UnitYen},
		{"△500千円", -500, UnitThousandYen},
		{"▲12", -12, UnitYen},
		{"−3,000", -3000, UnitYen},
		{"+42", 42, UnitYen},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			a, err := ParseAmount(tt.input)
			if err != nil {
				t.Fatalf("ParseAmount(%q) error: %v", tt.input, err)
			}
			if a.Value.InexactFloat64() != tt.want || a.Unit != tt.unit {
				t.Errorf("ParseAmount(%q) = %s, want %v %s", tt.input, a, tt.want, tt.unit)
			}
		})
	}
}

func TestParseAmount_ParenthesisScenario(t *testing.T) {
	a, err := ParseAmount("(1,234)円")
	if err != nil {
		t.Fatal(err)
	}
	if a.Value.InexactFloat64() != -1234 {
		t.Errorf("value = %v, want -1234", a.Value)
	}
}

func TestParseAmount_Errors(t *testing.T) {
	for _, input := range []string{"", "abc", "12.3.4", "(123", "12%", "1万円", "円"} {
		_, err := ParseAmount(input)
		var perr *AmountParseError
		if !errors.As(err, &perr) {
			t.Errorf("ParseAmount(%q) error = %v, want *AmountParseError", input, err)
		}
	}
}

func TestParseAmountDefault_UsesDocumentUnit(t *testing.T) {
	a, err := ParseAmountDefault("1,500", UnitMillionYen)
	if err != nil {
		t.Fatal(err)
	}
	if ToYen(a) != 1.5e9 {
		t.Errorf("ToYen = %v, want 1.5e9", ToYen(a))
	}
	// An explicit suffix wins over the document default.
	a, _ = ParseAmountDefault("1,500円", UnitMillionYen)
	if a.Unit != UnitYen {
		t.Errorf("unit = %s, want yen", a.Unit)
	}
}

func TestDetectUnit(t *testing.T) {
	tests := []struct {
		text string
		want Unit
		ok   bool
	}{
		{"（単位：千円）", UnitThousandYen, true},
		{"単位: 百万円", UnitMillionYen, true},
		{"(単位:億円)", UnitHundredMillionYen, true},
		{"単位 円", UnitYen, true},
		{"貸借対照表", "", false},
	}
	for _, tt := range tests {
		got, ok := DetectUnit(tt.text)
		if got != tt.want || ok != tt.ok {
			t.Errorf("DetectUnit(%q) = %q,%v want %q,%v", tt.text, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIsBlankAmount(t *testing.T) {
	for _, s := range []string{"", " ", "-", "―", "－"} {
		if !IsBlankAmount(s) {
			t.Errorf("IsBlankAmount(%q) = false", s)
		}
	}
	if IsBlankAmount("0") {
		t.Error("IsBlankAmount(\"0\") = true")
	}
}

// =============================================================================
// ACCOUNT NAME TESTS
// =============================================================================

func TestNormalizeAccountName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"現金預金", AcctCash},
		{"  現金・預金 ", AcctCash},
		{"売上", AcctRevenue},
		{"販管費", AcctSGA},
		{"現 金 預 金", AcctCash},
		{"1. 売上高", AcctRevenue},
		{"(2) 営業損益", AcctOperatingIncome},
		{"営業ＣＦ", AcctCFOperating},
		{"現金及び現金同等物の増減額（△は減少）", AcctNetChangeInCash},
		{"現金及び現金同等物", AcctCashEnding},
		{"雑収入", "雑収入"},
		{"Other   income", "Other income"},
	}
	for _, tt := range tests {
		if got := NormalizeAccountName(tt.input); got != tt.want {
			t.Errorf("NormalizeAccountName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeAccountName_Idempotent(t *testing.T) {
	inputs := []string{
		"現金預金", "売上高", "  雑  収入 ", "1.2.売上", "(1)", "営業ＣＦ",
		"Ｏｔｈｅｒ　ｅｘｐｅｎｓｅ", "純資産", "資 産 合 計", "",
	}
	for _, in := range inputs {
		once := NormalizeAccountName(in)
		twice := NormalizeAccountName(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
	for raw := range accountSynonyms {
		once := NormalizeAccountName(raw)
		if twice := NormalizeAccountName(once); once != twice {
			t.Errorf("not idempotent for synonym %q: %q then %q", raw, once, twice)
		}
	}
}

// =============================================================================
// DATE TESTS
// =============================================================================

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	for _, input := range []string{
		"2024年3月31日", "2024年03月31日", "2024/03/31", "2024-03-31",
		"2024.3.31", "令和6年3月31日", "R6.3.31", "r6/03/31", "２０２４年３月３１日",
	} {
		got, err := ParseDate(input)
		if err != nil {
			t.Errorf("ParseDate(%q) error: %v", input, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestParseDate_EraEquivalence(t *testing.T) {
	era, err := ParseDate("令和6年3月31日")
	if err != nil {
		t.Fatal(err)
	}
	iso, err := ParseDate("2024-03-31")
	if err != nil {
		t.Fatal(err)
	}
	if !era.Equal(iso) {
		t.Errorf("era %v != iso %v", era, iso)
	}
}

func TestParseDate_Eras(t *testing.T) {
	tests := []struct {
		input string
		year  int
	}{
		{"平成元年4月1日", 1989},
		{"平成31年4月30日", 2019},
		{"令和元年5月1日", 2019},
		{"昭和64年1月7日", 1989},
		{"大正15年12月24日", 1926},
		{"明治45年7月29日", 1912},
		{"H30.3.31", 2018},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.input)
		if err != nil {
			t.Errorf("ParseDate(%q) error: %v", tt.input, err)
			continue
		}
		if got.Year() != tt.year {
			t.Errorf("ParseDate(%q).Year() = %d, want %d", tt.input, got.Year(), tt.year)
		}
	}
}

func TestParseDate_Errors(t *testing.T) {
	for _, input := range []string{"", "yesterday", "2024年2月30日", "2024/13/01", "令和0年1月1日", "X6.3.31"} {
		_, err := ParseDate(input)
		var derr *DateParseError
		if !errors.As(err, &derr) {
			t.Errorf("ParseDate(%q) error = %v, want *DateParseError", input, err)
		}
	}
}

func TestParsePeriod(t *testing.T) {
	for _, input := range []string{
		"自 2023年4月1日 至 2024年3月31日",
		"2023/04/01～2024/03/31",
		"令和5年4月1日〜令和6年3月31日",
	} {
		start, end, err := ParsePeriod(input)
		if err != nil {
			t.Errorf("ParsePeriod(%q) error: %v", input, err)
			continue
		}
		if start.Format("2006-01-02") != "2023-04-01" || end.Format("2006-01-02") != "2024-03-31" {
			t.Errorf("ParsePeriod(%q) = %v..%v", input, start, end)
		}
	}
	if _, _, err := ParsePeriod("2024/03/31～2023/04/01"); err == nil {
		t.Error("expected error for reversed period")
	}
}

// =============================================================================
// INDUSTRY TESTS
// =============================================================================

func TestIndustryName(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"3650", "電気機器"},
		{"５２５０", "情報・通信業"},
		{"50", "水産・農林業"},
		{"9999", UnknownIndustry},
		{"", UnknownIndustry},
	}
	for _, tt := range tests {
		if got := IndustryName(tt.code); got != tt.want {
			t.Errorf("IndustryName(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
	for in, want := range map[string]string{"50": "0050", "５０": "0050", " 3650 ": "3650", "A1": "A1"} {
		if got := IndustryCode(in); got != want {
			t.Errorf("IndustryCode(%q) = %q, want %q", in, got, want)
		}
	}
	if code, ok := IndustryCodeFor("小売業"); !ok || code != "6100" {
		t.Errorf("IndustryCodeFor(小売業) = %q,%v", code, ok)
	}
}
