// Package statement assembles extracted rows into a canonical, validated
// set of financial statements: balance sheet, income statement and
// cash-flow statement, plus company and fiscal-period metadata.
package statement

import (
	"fmt"
	"time"

	"finstat/pkg/core/calc"
	"finstat/pkg/core/normalize"
)

// =============================================================================
// CLASSIFICATION
// =============================================================================

// Kind identifies one of the three statements.
type Kind string

const (
	KindBalanceSheet Kind = "balance_sheet"
	KindIncome       Kind = "income_statement"
	KindCashFlow     Kind = "cash_flow_statement"
)

// Bucket is the coarse classification of an account.
type Bucket string

const (
	BucketAsset     Bucket = "asset"
	BucketLiability Bucket = "liability"
	BucketEquity    Bucket = "equity"
	BucketRevenue   Bucket = "revenue"
	BucketExpense   Bucket = "expense"
	BucketProfit    Bucket = "profit"
	BucketCashFlow  Bucket = "cash_flow_activity"
)

// Section is the group an item is summed into, e.g. current assets.
type Section string

// =============================================================================
// STATEMENT DATA
// =============================================================================

// AccountItem is one labeled line. NormalizedName is never empty; Amount is
// nil when the value text could not be parsed (RawValue keeps it).
type AccountItem struct {
	RawName        string            `json:"raw_name"`
	NormalizedName string            `json:"normalized_name"`
	Amount         *normalize.Amount `json:"amount,omitempty"`
	RawValue       string            `json:"raw_value,omitempty"`
	Yen            *float64          `json:"yen"`
	Section        Section           `json:"section"`
	Bucket         Bucket            `json:"bucket"`
	Subtotal       bool              `json:"subtotal,omitempty"`
	Row            int               `json:"row"`
}

// Total is a reported figure, the figure computed from its parts, or both.
// Value is the reported figure when present, else the computed one.
type Total struct {
	Reported *float64 `json:"reported,omitempty"`
	Computed *float64 `json:"computed,omitempty"`
	Value    float64  `json:"value"`
}

// Statement is an ordered list of classified items with their totals,
// keyed by canonical total account name.
type Statement struct {
	Items  []AccountItem    `json:"items"`
	Totals map[string]Total `json:"totals"`
}

// Empty reports whether the statement has no items.
func (s Statement) Empty() bool { return len(s.Items) == 0 }

// Total returns the value of a total account.
func (s Statement) Total(name string) (float64, bool) {
	t, ok := s.Totals[name]
	return t.Value, ok
}

type BalanceSheet struct{ Statement }
type IncomeStatement struct{ Statement }
type CashFlowStatement struct{ Statement }

// FiscalPeriod is the reporting period; End is after Start.
type FiscalPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

// NewFiscalPeriod validates the range and derives the customary "YYYY年M月期"
// label from the closing month.
func NewFiscalPeriod(start, end time.Time) (FiscalPeriod, error) {
	if !end.After(start) {
		return FiscalPeriod{}, &ValidationError{Field: "period", Reason: fmt.Sprintf("end %s is not after start %s", end.Format("2006-01-02"), start.Format("2006-01-02"))}
	}
	return FiscalPeriod{
		Start: start,
		End:   end,
		Label: fmt.Sprintf("%d年%d月期", end.Year(), int(end.Month())),
	}, nil
}

// CompanyInfo identifies the reporting company.
type CompanyInfo struct {
	Name          string   `json:"name"`
	IndustryCode  string   `json:"industry_code,omitempty"`
	IndustryName  string   `json:"industry_name"`
	EmployeeCount *float64 `json:"employee_count,omitempty"`
}

// Source records how the statement was read.
type Source struct {
	Format   string         `json:"format,omitempty"`
	Encoding string         `json:"encoding,omitempty"`
	Unit     normalize.Unit `json:"unit"`
	Rows     int            `json:"rows"`
}

// ParsedStatement is the canonical output of one ingestion. It is built once
// and treated as read-only by every downstream component.
type ParsedStatement struct {
	Company           CompanyInfo       `json:"company"`
	Period            FiscalPeriod      `json:"period"`
	BalanceSheet      BalanceSheet      `json:"balance_sheet"`
	IncomeStatement   IncomeStatement   `json:"income_statement"`
	CashFlowStatement CashFlowStatement `json:"cash_flow_statement"`
	Warnings          []Warning         `json:"warnings"`
	Source            Source            `json:"source"`
}

// Figures flattens the three statements into canonical name → yen for the
// metric calculators. Items count only under their home statement; totals
// override item sums for the same name.
func (p *ParsedStatement) Figures() calc.Figures {
	f := calc.Figures{}
	for _, st := range []Statement{p.BalanceSheet.Statement, p.IncomeStatement.Statement, p.CashFlowStatement.Statement} {
		for _, item := range st.Items {
			if item.Yen == nil {
				continue
			}
			c, ok := classificationOf(item.NormalizedName)
			if !ok || c.section != item.Section {
				continue
			}
			f[item.NormalizedName] += *item.Yen
		}
	}
	for _, st := range []Statement{p.BalanceSheet.Statement, p.IncomeStatement.Statement, p.CashFlowStatement.Statement} {
		for name, t := range st.Totals {
			f[name] = t.Value
		}
	}
	return f
}

// Validate re-checks the mandatory invariants, for statements that were not
// produced by Assemble (e.g. decoded from JSON).
func (p *ParsedStatement) Validate() error {
	if p == nil {
		return &ValidationError{Field: "statement", Reason: "nil statement"}
	}
	if p.Period.Start.IsZero() || p.Period.End.IsZero() {
		return &ValidationError{Field: "period", Reason: "fiscal period is missing"}
	}
	if !p.Period.End.After(p.Period.Start) {
		return &ValidationError{Field: "period", Reason: "fiscal period end is not after start"}
	}
	if p.IncomeStatement.Empty() {
		return &ValidationError{Field: string(KindIncome), Reason: "income statement not found"}
	}
	for _, st := range []Statement{p.BalanceSheet.Statement, p.IncomeStatement.Statement, p.CashFlowStatement.Statement} {
		for i, item := range st.Items {
			if item.NormalizedName == "" {
				return &ValidationError{Field: fmt.Sprintf("items[%d]", i), Reason: "empty account name"}
			}
			if item.Amount != nil && !item.Amount.Unit.Valid() {
				return &ValidationError{Field: item.NormalizedName, Reason: fmt.Sprintf("unknown unit %q", item.Amount.Unit)}
			}
		}
	}
	return nil
}

// =============================================================================
// WARNINGS AND ERRORS
// =============================================================================

// WarningCode classifies a field-level issue.
type WarningCode string

const (
	WarnAmountParse      WarningCode = "amount_parse"
	WarnDateParse        WarningCode = "date_parse"
	WarnUnclassified     WarningCode = "unclassified_item"
	WarnTotalMismatch    WarningCode = "total_mismatch"
	WarnBalanceMismatch  WarningCode = "balance_mismatch"
	WarnCashFlowMismatch WarningCode = "cash_flow_mismatch"
	WarnCashLinkage      WarningCode = "cash_linkage_mismatch"
	WarnMissingStatement WarningCode = "missing_statement"
	WarnPreviousYear     WarningCode = "previous_year_unavailable"
)

// Warning is a recoverable issue attached to the statement.
type Warning struct {
	Code    WarningCode `json:"code"`
	Field   string      `json:"field,omitempty"`
	Message string      `json:"message"`
}

// ValidationError aborts assembly of one document: a mandatory statement or
// field is missing or inconsistent.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }
