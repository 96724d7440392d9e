package statement

import (
	"strings"

	n "finstat/pkg/core/normalize"
)

// =============================================================================
// SECTIONS
// =============================================================================

const (
	SecCurrentAssets      Section = "current_assets"
	SecFixedAssets        Section = "fixed_assets"
	SecDeferredAssets     Section = "deferred_assets"
	SecCurrentLiabilities Section = "current_liabilities"
	SecFixedLiabilities   Section = "fixed_liabilities"
	SecNetAssets          Section = "net_assets"
	SecBalanceTotals      Section = "balance_totals"

	SecRevenue               Section = "revenue"
	SecCostOfSales           Section = "cost_of_sales"
	SecSGA                   Section = "sga"
	SecNonOperatingIncome    Section = "non_operating_income"
	SecNonOperatingExpenses  Section = "non_operating_expenses"
	SecExtraordinaryIncome   Section = "extraordinary_income"
	SecExtraordinaryLoss     Section = "extraordinary_loss"
	SecIncomeTaxes           Section = "income_taxes"
	SecProfit                Section = "profit"
	SecCashFlowOperating     Section = "cf_operating"
	SecCashFlowInvesting     Section = "cf_investing"
	SecCashFlowFinancing     Section = "cf_financing"
	SecCashSummary           Section = "cash_summary"
	SecUnclassified          Section = "unclassified"
)

type sectionInfo struct {
	kind   Kind
	bucket Bucket
	// total is the canonical account holding the section total, if any.
	total string
}

var sections = map[Section]sectionInfo{
	SecCurrentAssets:      {KindBalanceSheet, BucketAsset, n.AcctCurrentAssetsTotal},
	SecFixedAssets:        {KindBalanceSheet, BucketAsset, n.AcctFixedAssetsTotal},
	SecDeferredAssets:     {KindBalanceSheet, BucketAsset, n.AcctDeferredAssets},
	SecCurrentLiabilities: {KindBalanceSheet, BucketLiability, n.AcctCurrentLiabTotal},
	SecFixedLiabilities:   {KindBalanceSheet, BucketLiability, n.AcctFixedLiabTotal},
	SecNetAssets:          {KindBalanceSheet, BucketEquity, n.AcctNetAssetsTotal},
	SecBalanceTotals:      {KindBalanceSheet, BucketAsset, ""},

	SecRevenue:              {KindIncome, BucketRevenue, n.AcctRevenue},
	SecCostOfSales:          {KindIncome, BucketExpense, n.AcctCostOfSales},
	SecSGA:                  {KindIncome, BucketExpense, n.AcctSGA},
	SecNonOperatingIncome:   {KindIncome, BucketRevenue, n.AcctNonOperatingIncome},
	SecNonOperatingExpenses: {KindIncome, BucketExpense, n.AcctNonOperatingExpenses},
	SecExtraordinaryIncome:  {KindIncome, BucketRevenue, n.AcctExtraordinaryIncome},
	SecExtraordinaryLoss:    {KindIncome, BucketExpense, n.AcctExtraordinaryLoss},
	SecIncomeTaxes:          {KindIncome, BucketExpense, n.AcctIncomeTaxes},
	SecProfit:               {KindIncome, BucketProfit, ""},

	SecCashFlowOperating: {KindCashFlow, BucketCashFlow, n.AcctCFOperating},
	SecCashFlowInvesting: {KindCashFlow, BucketCashFlow, n.AcctCFInvesting},
	SecCashFlowFinancing: {KindCashFlow, BucketCashFlow, n.AcctCFFinancing},
	SecCashSummary:       {KindCashFlow, BucketCashFlow, ""},
}

// Kind returns the statement the section belongs to.
func (s Section) Kind() Kind { return sections[s].kind }

// =============================================================================
// ACCOUNT CLASSIFICATION TABLE
// =============================================================================

type classification struct {
	section Section
	// subtotal lines replace the items listed before them in the section sum.
	subtotal bool
	// flexible accounts follow the surrounding section when it belongs to
	// another statement (depreciation inside SG&A, interest inside the
	// cash-flow adjustments).
	flexible bool
}

var classifications = func() map[string]classification {
	m := map[string]classification{}
	add := func(sec Section, names ...string) {
		for _, name := range names {
			m[name] = classification{section: sec}
		}
	}

	add(SecCurrentAssets, n.AcctCash, n.AcctNotesReceivable, n.AcctAccountsReceivable, n.AcctTradeReceivables,
		n.AcctSecurities, n.AcctInventories, n.AcctMerchandise, n.AcctWorkInProcess, n.AcctRawMaterials,
		n.AcctOtherCurrentAssets, n.AcctCurrentAssetsTotal)
	add(SecFixedAssets, n.AcctFixedAssetsTotal)
	add(SecDeferredAssets, n.AcctDeferredAssets)
	add(SecCurrentLiabilities, n.AcctNotesPayable, n.AcctAccountsPayable, n.AcctTradePayables,
		n.AcctShortTermBorrowings, n.AcctAccruedPayables, n.AcctIncomeTaxesPayable, n.AcctOtherCurrentLiab,
		n.AcctCurrentLiabTotal)
	add(SecFixedLiabilities, n.AcctBonds, n.AcctLongTermBorrowings, n.AcctRetirementBenefitLiab,
		n.AcctOtherFixedLiab, n.AcctFixedLiabTotal)
	add(SecNetAssets, n.AcctCapitalStock, n.AcctCapitalSurplus, n.AcctRetainedEarnings, n.AcctTreasuryStock,
		n.AcctNonControlling, n.AcctNetAssetsTotal)
	add(SecBalanceTotals, n.AcctTotalAssets, n.AcctTotalLiabilities, n.AcctLiabilitiesNetAssets)

	add(SecRevenue, n.AcctRevenue)
	add(SecCostOfSales, n.AcctCostOfSales)
	add(SecSGA, n.AcctSGA)
	add(SecNonOperatingIncome, n.AcctNonOperatingIncome)
	add(SecNonOperatingExpenses, n.AcctNonOperatingExpenses)
	add(SecExtraordinaryIncome, n.AcctExtraordinaryIncome)
	add(SecExtraordinaryLoss, n.AcctExtraordinaryLoss)
	add(SecIncomeTaxes, n.AcctCurrentIncomeTaxes, n.AcctDeferredIncomeTaxes, n.AcctIncomeTaxes)
	add(SecProfit, n.AcctGrossProfit, n.AcctOperatingIncome, n.AcctOrdinaryIncome, n.AcctNetIncome)

	add(SecCashFlowInvesting, n.AcctCapex, n.AcctCFInvesting)
	add(SecCashFlowFinancing, n.AcctDividendsPaid, n.AcctCFFinancing)
	add(SecCashFlowOperating, n.AcctCFOperating)
	add(SecCashSummary, n.AcctFXEffect, n.AcctNetChangeInCash, n.AcctCashBeginning, n.AcctCashEnding)

	for _, name := range []string{n.AcctTangibleFixedAssets, n.AcctIntangibleAssets, n.AcctInvestmentsOther} {
		m[name] = classification{section: SecFixedAssets, subtotal: true}
	}
	for _, name := range []string{n.AcctShareholdersEquity, n.AcctValuationAdjustments} {
		m[name] = classification{section: SecNetAssets, subtotal: true}
	}
	m[n.AcctInterestIncome] = classification{section: SecNonOperatingIncome, flexible: true}
	m[n.AcctDividendIncome] = classification{section: SecNonOperatingIncome, flexible: true}
	m[n.AcctInterestExpense] = classification{section: SecNonOperatingExpenses, flexible: true}
	m[n.AcctIncomeBeforeTax] = classification{section: SecProfit, flexible: true}
	m[n.AcctDepreciation] = classification{section: SecCashFlowOperating, flexible: true}
	return m
}()

func classificationOf(name string) (classification, bool) {
	c, ok := classifications[name]
	return c, ok
}

// isRunningSubtotal reports whether name is a generic running-subtotal row
// of a breakdown, such as "小計" in operating cash flow or "合計" between
// purchases and closing inventory in cost of sales.
func isRunningSubtotal(name string) bool {
	switch name {
	case "小計", "合計", "計":
		return true
	}
	return false
}

// =============================================================================
// HEADERS
// =============================================================================

// headerSections maps value-less label rows to the section they open.
var headerSections = map[string]Section{
	"流動資産":                     SecCurrentAssets,
	"固定資産":                     SecFixedAssets,
	n.AcctTangibleFixedAssets:  SecFixedAssets,
	n.AcctIntangibleAssets:     SecFixedAssets,
	n.AcctInvestmentsOther:     SecFixedAssets,
	n.AcctDeferredAssets:       SecDeferredAssets,
	"流動負債":                     SecCurrentLiabilities,
	"固定負債":                     SecFixedLiabilities,
	"純資産の部":                    SecNetAssets,
	"株主資本":                     SecNetAssets,
	"評価・換算差額等":                 SecNetAssets,
	"その他の包括利益累計額":              SecNetAssets,
	n.AcctRevenue:              SecRevenue,
	n.AcctCostOfSales:          SecCostOfSales,
	n.AcctSGA:                  SecSGA,
	n.AcctNonOperatingIncome:   SecNonOperatingIncome,
	n.AcctNonOperatingExpenses: SecNonOperatingExpenses,
	n.AcctExtraordinaryIncome:  SecExtraordinaryIncome,
	n.AcctExtraordinaryLoss:    SecExtraordinaryLoss,
	n.AcctCFOperating:          SecCashFlowOperating,
	n.AcctCFInvesting:          SecCashFlowInvesting,
	n.AcctCFFinancing:          SecCashFlowFinancing,
}

// titleKinds maps statement titles, and the fragments of sheet names that
// identify them, to the statement kind.
var titleKinds = []struct {
	fragment string
	kind     Kind
}{
	{"貸借対照表", KindBalanceSheet},
	{"資産の部", KindBalanceSheet},
	{"負債の部", KindBalanceSheet},
	{"損益計算書", KindIncome},
	{"キャッシュ・フロー計算書", KindCashFlow},
	{"キャッシュフロー計算書", KindCashFlow},
}

var sheetKinds = []struct {
	fragment string
	kind     Kind
}{
	{"bs", KindBalanceSheet},
	{"b/s", KindBalanceSheet},
	{"pl", KindIncome},
	{"p/l", KindIncome},
	{"cf", KindCashFlow},
	{"c/f", KindCashFlow},
}

func titleKind(label string) (Kind, bool) {
	for _, t := range titleKinds {
		if strings.Contains(label, t.fragment) {
			return t.kind, true
		}
	}
	return "", false
}

func sheetKind(sheet string) (Kind, bool) {
	if k, ok := titleKind(sheet); ok {
		return k, true
	}
	lower := strings.ToLower(strings.TrimSpace(sheet))
	for _, t := range sheetKinds {
		if lower == t.fragment {
			return t.kind, true
		}
	}
	return "", false
}

// costDeductions are cost-of-sales breakdown lines that are subtracted
// (closing inventory, transfers to other accounts).
func isCostDeduction(name string) bool {
	return (strings.Contains(name, "期末") && strings.Contains(name, "棚卸")) || strings.Contains(name, "他勘定振替")
}
