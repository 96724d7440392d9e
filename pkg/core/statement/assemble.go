package statement

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/width"

	"finstat/pkg/core/extract"
	n "finstat/pkg/core/normalize"
	"finstat/pkg/core/validate"
)

// Options tune assembly of one document.
type Options struct {
	// Tolerance bounds the difference allowed between a reported total and
	// the sum of its parts.
	Tolerance validate.Tolerance
	// DefaultUnit applies to bare numbers when the document declares none.
	DefaultUnit n.Unit
	// Period overrides the fiscal period found in the document.
	Period *FiscalPeriod
	// CompanyName is used when the document carries no company name.
	CompanyName string
}

// DefaultOptions returns yen amounts with the default tolerance.
func DefaultOptions() Options {
	return Options{Tolerance: validate.DefaultTolerance, DefaultUnit: n.UnitYen}
}

// Assemble classifies the rows of an extracted table into the three
// statements, attaches metadata, computes section totals and runs the
// arithmetic checks. Recoverable issues become warnings; a missing income
// statement or fiscal period is a *ValidationError.
func Assemble(table *extract.RawTable, opts Options) (*ParsedStatement, error) {
	if table == nil {
		return nil, &ValidationError{Field: "table", Reason: "no rows"}
	}
	if opts.Tolerance == (validate.Tolerance{}) {
		opts.Tolerance = validate.DefaultTolerance
	}
	if !opts.DefaultUnit.Valid() {
		opts.DefaultUnit = n.UnitYen
	}

	a := &assembler{
		opts:  opts,
		unit:  declaredUnit(table.Rows, opts.DefaultUnit),
		items: map[Kind][]AccountItem{},
		stmt: &ParsedStatement{
			Source: Source{Format: string(table.Format), Encoding: table.Encoding, Rows: len(table.Rows)},
		},
	}
	a.stmt.Source.Unit = a.unit
	a.sheet = "\x00"

	for _, row := range table.Rows {
		a.row(row)
	}
	return a.finish()
}

// declaredUnit returns the first unit declaration of the table, or def.
func declaredUnit(rows []extract.Row, def n.Unit) n.Unit {
	for _, row := range rows {
		for _, text := range row.Texts() {
			if u, ok := n.DetectUnit(text); ok {
				return u
			}
		}
	}
	return def
}

// =============================================================================
// ROW WALK
// =============================================================================

type assembler struct {
	opts    Options
	unit    n.Unit
	kind    Kind
	section Section
	sheet   string

	items map[Kind][]AccountItem
	stmt  *ParsedStatement

	periodStart, periodEnd *time.Time
	period                 *FiscalPeriod
	dateErr                error
}

type valueState int

const (
	valueNone valueState = iota
	valueBlank
	valueOK
	valueBad
)

func (a *assembler) row(r extract.Row) {
	if r.Sheet != a.sheet {
		a.sheet = r.Sheet
		a.section = ""
		if k, ok := sheetKind(r.Sheet); ok {
			a.kind = k
		}
	}

	texts := r.Texts()
	if len(texts) == 0 {
		return
	}
	for _, t := range texts {
		if u, ok := n.DetectUnit(t); ok {
			a.unit = u
		}
	}

	labelIdx := -1
	for i, t := range texts {
		if !valueLike(t) {
			labelIdx = i
			break
		}
	}
	if labelIdx < 0 {
		return
	}
	rawLabel := texts[labelIdx]
	rest := texts[labelIdx+1:]

	if len(rest) == 0 {
		if key, val, ok := splitKeyValue(rawLabel); ok && a.meta(n.NormalizeAccountName(key), []string{val}, r.Index) {
			return
		}
	}
	name := n.NormalizeAccountName(rawLabel)
	if a.meta(name, rest, r.Index) {
		return
	}

	amount, raw, state := a.value(rest)
	switch state {
	case valueNone:
		a.periodFromText(strings.Join(texts, " "))
		a.header(name, rawLabel)
		return
	case valueBlank:
		return
	}
	a.addItem(rawLabel, name, amount, raw, r.Index)
}

// valueLike reports whether a cell reads as a figure rather than a label:
// it parses, is a blank marker, or contains no letters at all.
func valueLike(text string) bool {
	if n.IsBlankAmount(text) {
		return true
	}
	if _, err := n.ParseAmount(text); err == nil {
		return true
	}
	for _, r := range text {
		if unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// value scans the cells right of the label from the right, so the current
// period column wins over prior-period or note columns.
func (a *assembler) value(cells []string) (*n.Amount, string, valueState) {
	for i := len(cells) - 1; i >= 0; i-- {
		c := cells[i]
		if n.IsBlankAmount(c) {
			return nil, c, valueBlank
		}
		if amt, err := n.ParseAmountDefault(c, a.unit); err == nil {
			return &amt, c, valueOK
		}
		if isDateText(c) {
			continue
		}
		if hasDigit(c) {
			return nil, c, valueBad
		}
	}
	return nil, "", valueNone
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// isDateText reports whether a cell is a date or fiscal-year caption, as
// found in comparative column headers.
func isDateText(s string) bool {
	if fiscalYearPattern.MatchString(strings.ReplaceAll(width.Fold.String(s), " ", "")) {
		return true
	}
	_, err := n.ParseDate(s)
	return err == nil
}

func splitKeyValue(label string) (string, string, bool) {
	folded := width.Fold.String(label)
	i := strings.Index(folded, ":")
	if i <= 0 || i == len(folded)-1 {
		return "", "", false
	}
	return strings.TrimSpace(folded[:i]), strings.TrimSpace(folded[i+1:]), true
}

// header handles a label row without a figure: section openers, statement
// titles and company banners.
func (a *assembler) header(name, raw string) {
	if sec, ok := headerSections[name]; ok {
		a.section = sec
		a.kind = sec.Kind()
		return
	}
	if k, ok := titleKind(name); ok {
		a.kind = k
		a.section = ""
		return
	}
	if a.stmt.Company.Name == "" && strings.Contains(raw, "株式会社") && len([]rune(raw)) <= 40 {
		a.stmt.Company.Name = strings.TrimSpace(raw)
	}
}

// =============================================================================
// METADATA
// =============================================================================

var fiscalYearPattern = regexp.MustCompile(`(\d{4})年(\d{1,2})月期`)

func (a *assembler) meta(name string, cells []string, row int) bool {
	switch name {
	case n.MetaCompanyName:
		if len(cells) > 0 {
			a.stmt.Company.Name = strings.Join(cells, " ")
		}
	case n.MetaIndustryCode:
		if len(cells) > 0 {
			a.industry(cells[0])
		}
	case n.MetaEmployees:
		if len(cells) > 0 {
			a.employees(cells[0], row)
		}
	case n.MetaPeriodStart, n.MetaPeriodEnd:
		if len(cells) == 0 {
			return true
		}
		d, err := n.ParseDate(cells[0])
		if err != nil {
			a.dateWarning(name, err)
			return true
		}
		if name == n.MetaPeriodStart {
			a.periodStart = &d
		} else {
			a.periodEnd = &d
		}
	case n.MetaPeriod:
		if len(cells) == 0 {
			return true
		}
		start, end, err := n.ParsePeriod(strings.Join(cells, ""))
		if err != nil {
			a.dateWarning(name, err)
			return true
		}
		a.setPeriod(start, end)
	default:
		return false
	}
	return true
}

func (a *assembler) industry(text string) {
	text = strings.TrimSpace(text)
	if name := n.IndustryName(text); name != n.UnknownIndustry {
		a.stmt.Company.IndustryCode = n.IndustryCode(text)
		a.stmt.Company.IndustryName = name
		return
	}
	if code, ok := n.IndustryCodeFor(text); ok {
		a.stmt.Company.IndustryCode = code
		a.stmt.Company.IndustryName = n.IndustryName(code)
		return
	}
	a.stmt.Company.IndustryCode = n.IndustryCode(text)
}

func (a *assembler) employees(text string, row int) {
	cleaned := strings.NewReplacer("人", "", "名", "").Replace(text)
	amt, err := n.ParseAmount(cleaned)
	if err != nil {
		a.warn(WarnAmountParse, n.MetaEmployees, fmt.Sprintf("row %d: employee count %q is not a number", row, text))
		return
	}
	v := amt.Value.InexactFloat64()
	a.stmt.Company.EmployeeCount = &v
}

// periodFromText picks the fiscal period out of free text such as
// "自 2023年4月1日 至 2024年3月31日" or "2024年3月期".
func (a *assembler) periodFromText(text string) {
	if a.period != nil {
		return
	}
	folded := width.Fold.String(text)
	if strings.Contains(folded, "至") || strings.ContainsAny(folded, "~〜") {
		s := folded
		if i := strings.Index(s, "自"); i >= 0 {
			s = s[i:]
		}
		s = strings.TrimRight(s, ")] ")
		if start, end, err := n.ParsePeriod(s); err == nil {
			a.setPeriod(start, end)
			return
		}
	}
	// Comparative headers list the prior year first.
	if all := fiscalYearPattern.FindAllStringSubmatch(strings.ReplaceAll(folded, " ", ""), -1); len(all) > 0 {
		m := all[len(all)-1]
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return
		}
		end := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
		start := time.Date(year-1, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
		if a.periodStart == nil && a.periodEnd == nil {
			a.setPeriod(start, end)
		}
	}
}

func (a *assembler) setPeriod(start, end time.Time) {
	p, err := NewFiscalPeriod(start, end)
	if err != nil {
		a.dateErr = err
		return
	}
	a.period = &p
}

func (a *assembler) dateWarning(field string, err error) {
	a.dateErr = err
	a.warn(WarnDateParse, field, err.Error())
}

func (a *assembler) warn(code WarningCode, field, msg string) {
	a.stmt.Warnings = append(a.stmt.Warnings, Warning{Code: code, Field: field, Message: msg})
}

// =============================================================================
// ITEMS
// =============================================================================

func (a *assembler) addItem(raw, name string, amount *n.Amount, rawValue string, row int) {
	item := AccountItem{RawName: raw, NormalizedName: name, Amount: amount, RawValue: rawValue, Row: row}
	if amount != nil {
		yen := n.ToYen(*amount)
		item.Yen = &yen
	} else {
		a.warn(WarnAmountParse, name, fmt.Sprintf("row %d: %q is not an amount", row, rawValue))
	}

	// IFRS balance sheets print cash as 現金及び現金同等物.
	if name == n.AcctCashEnding && a.section.Kind() == KindBalanceSheet {
		name = n.AcctCash
		item.NormalizedName = name
	}

	c, known := classificationOf(name)
	switch {
	case isRunningSubtotal(name):
		item.Section = a.section
		item.Subtotal = true
	case known && c.flexible && a.section != "" && a.section.Kind() != c.section.Kind():
		item.Section = a.section
	case known:
		item.Section = c.section
		item.Subtotal = c.subtotal
		if name == sections[c.section].total || c.section == SecProfit || c.section == SecBalanceTotals {
			a.section = ""
		} else {
			a.section = c.section
		}
		a.kind = c.section.Kind()
	default:
		item.Section = a.section
	}

	kind := a.kind
	if item.Section == "" {
		item.Section = SecUnclassified
		a.warn(WarnUnclassified, name, fmt.Sprintf("row %d: %q is outside any known section", row, raw))
		if kind == "" {
			return
		}
	} else {
		kind = item.Section.Kind()
	}
	item.Bucket = sections[item.Section].bucket
	if item.Section == SecUnclassified {
		item.Bucket = ""
	}
	a.items[kind] = append(a.items[kind], item)
}

// =============================================================================
// TOTALS AND CHECKS
// =============================================================================

func (a *assembler) finish() (*ParsedStatement, error) {
	p := a.stmt
	p.BalanceSheet.Statement = Statement{Items: a.items[KindBalanceSheet], Totals: map[string]Total{}}
	p.IncomeStatement.Statement = Statement{Items: a.items[KindIncome], Totals: map[string]Total{}}
	p.CashFlowStatement.Statement = Statement{Items: a.items[KindCashFlow], Totals: map[string]Total{}}

	if !hasClassified(p.IncomeStatement.Items) {
		return nil, &ValidationError{Field: string(KindIncome), Reason: "income statement not found"}
	}

	switch {
	case a.opts.Period != nil:
		p.Period = *a.opts.Period
	case a.periodStart != nil && a.periodEnd != nil:
		period, err := NewFiscalPeriod(*a.periodStart, *a.periodEnd)
		if err != nil {
			return nil, err
		}
		p.Period = period
	case a.period != nil:
		p.Period = *a.period
	default:
		return nil, &ValidationError{Field: "period", Reason: "fiscal period not found", Err: a.dateErr}
	}

	if p.Company.Name == "" {
		p.Company.Name = a.opts.CompanyName
	}
	if p.Company.IndustryName == "" {
		p.Company.IndustryName = n.UnknownIndustry
	}

	tol := a.opts.Tolerance
	a.balanceSheet(&p.BalanceSheet.Statement, tol)
	a.incomeStatement(&p.IncomeStatement.Statement, tol)
	a.cashFlow(&p.CashFlowStatement.Statement, tol)
	a.crossChecks(tol)

	if p.BalanceSheet.Empty() {
		a.warn(WarnMissingStatement, string(KindBalanceSheet), "balance sheet not found")
	}
	if p.CashFlowStatement.Empty() {
		a.warn(WarnMissingStatement, string(KindCashFlow), "cash-flow statement not found")
	}
	if p.Warnings == nil {
		p.Warnings = []Warning{}
	}
	return p, nil
}

func hasClassified(items []AccountItem) bool {
	for _, it := range items {
		if it.Section != SecUnclassified {
			return true
		}
	}
	return false
}

// ledger holds per-section member sums and every reported occurrence of a
// total or profit line.
type ledger struct {
	sum      map[Section]float64
	counted  map[Section]bool
	reported map[string][]float64
}

func newLedger(items []AccountItem) ledger {
	l := ledger{sum: map[Section]float64{}, counted: map[Section]bool{}, reported: map[string][]float64{}}
	pending := map[Section]float64{}
	for _, it := range items {
		if it.Yen == nil || it.Section == SecUnclassified {
			continue
		}
		v := *it.Yen
		sec := it.Section
		c, _ := classificationOf(it.NormalizedName)
		switch {
		case it.NormalizedName == sections[sec].total:
			l.reported[it.NormalizedName] = append(l.reported[it.NormalizedName], v)
		case (sec == SecProfit || sec == SecBalanceTotals) && c.section == sec:
			l.reported[it.NormalizedName] = append(l.reported[it.NormalizedName], v)
		case it.Subtotal:
			l.sum[sec] += v - pending[sec]
			pending[sec] = 0
			l.counted[sec] = true
		default:
			if sec == SecCostOfSales && isCostDeduction(it.NormalizedName) {
				v = -math.Abs(v)
			}
			l.sum[sec] += v
			pending[sec] += v
			l.counted[sec] = true
		}
	}
	return l
}

func ptr(v float64) *float64 { return &v }

// settle records a total and warns when reported and computed disagree. A
// line printed more than once is consistent if any occurrence matches.
func (a *assembler) settle(st *Statement, name string, reported []float64, computed *float64, tol validate.Tolerance) {
	var rep *float64
	if len(reported) > 0 {
		rep = ptr(reported[len(reported)-1])
	}
	if rep == nil && computed == nil {
		return
	}
	t := Total{Reported: rep, Computed: computed}
	if rep != nil {
		t.Value = *rep
	} else {
		t.Value = *computed
	}
	st.Totals[name] = t

	if rep == nil || computed == nil {
		return
	}
	var check *validate.TotalCheck
	for _, r := range reported {
		if check = validate.CheckTotal(name, r, *computed, tol); check.IsBalanced {
			return
		}
	}
	a.warn(WarnTotalMismatch, name, fmt.Sprintf("reported %.0f differs from computed %.0f by %.0f (allowed %.0f)",
		check.Reported, check.Computed, check.Difference, check.Allowed))
}

func (a *assembler) sectionTotals(st *Statement, l ledger, secs []Section, tol validate.Tolerance) {
	for _, sec := range secs {
		name := sections[sec].total
		var computed *float64
		if l.counted[sec] {
			computed = ptr(l.sum[sec])
		}
		a.settle(st, name, l.reported[name], computed, tol)
	}
}

func (st *Statement) value(name string) *float64 {
	if t, ok := st.Totals[name]; ok {
		return ptr(t.Value)
	}
	return nil
}

func (a *assembler) balanceSheet(st *Statement, tol validate.Tolerance) {
	l := newLedger(st.Items)
	a.sectionTotals(st, l, []Section{
		SecCurrentAssets, SecFixedAssets, SecDeferredAssets,
		SecCurrentLiabilities, SecFixedLiabilities, SecNetAssets,
	}, tol)

	var assets *float64
	if cur, fixed := st.value(n.AcctCurrentAssetsTotal), st.value(n.AcctFixedAssetsTotal); cur != nil && fixed != nil {
		v := *cur + *fixed
		if d := st.value(n.AcctDeferredAssets); d != nil {
			v += *d
		}
		assets = &v
	}
	a.settle(st, n.AcctTotalAssets, l.reported[n.AcctTotalAssets], assets, tol)

	var liabilities *float64
	if cur := st.value(n.AcctCurrentLiabTotal); cur != nil {
		v := *cur
		if fixed := st.value(n.AcctFixedLiabTotal); fixed != nil {
			v += *fixed
		}
		liabilities = &v
	}
	a.settle(st, n.AcctTotalLiabilities, l.reported[n.AcctTotalLiabilities], liabilities, tol)

	var both *float64
	if liab, na := st.value(n.AcctTotalLiabilities), st.value(n.AcctNetAssetsTotal); liab != nil && na != nil {
		both = ptr(*liab + *na)
	}
	a.settle(st, n.AcctLiabilitiesNetAssets, l.reported[n.AcctLiabilitiesNetAssets], both, tol)

	assetsTotal := st.value(n.AcctTotalAssets)
	if assetsTotal == nil {
		return
	}
	var check *validate.BalanceCheck
	switch liab, na := st.value(n.AcctTotalLiabilities), st.value(n.AcctNetAssetsTotal); {
	case liab != nil && na != nil:
		check = validate.CheckBalanceEquation(*assetsTotal, *liab, *na, tol)
	case st.value(n.AcctLiabilitiesNetAssets) != nil:
		check = validate.CheckBalanceEquation(*assetsTotal, *st.value(n.AcctLiabilitiesNetAssets), 0, tol)
	default:
		return
	}
	if !check.IsBalanced {
		a.warn(WarnBalanceMismatch, n.AcctTotalAssets,
			fmt.Sprintf("total assets %.0f do not equal liabilities plus net assets %.0f", check.TotalAssets, check.ComputedAssets))
	}
}

func (a *assembler) incomeStatement(st *Statement, tol validate.Tolerance) {
	l := newLedger(st.Items)
	a.sectionTotals(st, l, []Section{
		SecRevenue, SecCostOfSales, SecSGA, SecNonOperatingIncome, SecNonOperatingExpenses,
		SecExtraordinaryIncome, SecExtraordinaryLoss, SecIncomeTaxes,
	}, tol)

	get := func(name string) (float64, bool) {
		if v := st.value(name); v != nil {
			return *v, true
		}
		return 0, false
	}

	revenue, hasRevenue := get(n.AcctRevenue)
	cost, hasCost := get(n.AcctCostOfSales)
	var gross *float64
	if hasRevenue && hasCost {
		gross = ptr(revenue - cost)
	}
	a.settle(st, n.AcctGrossProfit, l.reported[n.AcctGrossProfit], gross, tol)

	base, hasBase := get(n.AcctGrossProfit)
	if !hasBase && hasRevenue && !hasCost {
		base, hasBase = revenue, true
	}
	var operating *float64
	if sga, ok := get(n.AcctSGA); ok && hasBase {
		operating = ptr(base - sga)
	}
	a.settle(st, n.AcctOperatingIncome, l.reported[n.AcctOperatingIncome], operating, tol)

	var ordinary *float64
	if op, ok := get(n.AcctOperatingIncome); ok {
		inc, _ := get(n.AcctNonOperatingIncome)
		exp, _ := get(n.AcctNonOperatingExpenses)
		ordinary = ptr(op + inc - exp)
	}
	a.settle(st, n.AcctOrdinaryIncome, l.reported[n.AcctOrdinaryIncome], ordinary, tol)

	var pretax *float64
	if ord, ok := get(n.AcctOrdinaryIncome); ok {
		inc, _ := get(n.AcctExtraordinaryIncome)
		loss, _ := get(n.AcctExtraordinaryLoss)
		pretax = ptr(ord + inc - loss)
	}
	a.settle(st, n.AcctIncomeBeforeTax, l.reported[n.AcctIncomeBeforeTax], pretax, tol)

	var net *float64
	if pt, ok := get(n.AcctIncomeBeforeTax); ok {
		if taxes, ok := get(n.AcctIncomeTaxes); ok {
			net = ptr(pt - taxes)
		}
	}
	a.settle(st, n.AcctNetIncome, l.reported[n.AcctNetIncome], net, tol)
}

func (a *assembler) cashFlow(st *Statement, tol validate.Tolerance) {
	l := newLedger(st.Items)
	a.sectionTotals(st, l, []Section{SecCashFlowOperating, SecCashFlowInvesting, SecCashFlowFinancing}, tol)

	op, inv, fin := st.value(n.AcctCFOperating), st.value(n.AcctCFInvesting), st.value(n.AcctCFFinancing)
	change := lastItem(st.Items, n.AcctNetChangeInCash)
	if op == nil || inv == nil || fin == nil || change == nil {
		return
	}
	fx := 0.0
	if v := lastItem(st.Items, n.AcctFXEffect); v != nil {
		fx = *v
	}
	check := validate.CheckCashFlowEquation(*op, *inv, *fin, fx, *change, tol)
	if !check.IsBalanced {
		a.warn(WarnCashFlowMismatch, n.AcctNetChangeInCash,
			fmt.Sprintf("operating + investing + financing = %.0f, reported net change %.0f", check.ComputedTotal, check.ReportedTotal))
	}
}

// crossChecks ties the cash-flow statement to the balance sheet.
func (a *assembler) crossChecks(tol validate.Tolerance) {
	cf := a.stmt.CashFlowStatement.Items
	begin, change, end := lastItem(cf, n.AcctCashBeginning), lastItem(cf, n.AcctNetChangeInCash), lastItem(cf, n.AcctCashEnding)
	cash := lastItem(a.stmt.BalanceSheet.Items, n.AcctCash)
	if begin == nil || change == nil || end == nil || cash == nil {
		return
	}
	link := validate.CheckCashLinkage(*begin, *change, *end, *cash, tol)
	if !link.IsLinked {
		a.warn(WarnCashLinkage, n.AcctCashEnding,
			fmt.Sprintf("closing cash %.0f, balance sheet cash %.0f, opening %.0f plus change %.0f", link.CFCashEnding, link.BSCash, link.CFCashBeginning, link.CFNetChange))
	}
}

// lastItem returns the last value of an account in its home section.
func lastItem(items []AccountItem, name string) *float64 {
	var out *float64
	for _, it := range items {
		if it.NormalizedName != name || it.Yen == nil {
			continue
		}
		if c, ok := classificationOf(name); ok && c.section != it.Section {
			continue
		}
		out = ptr(*it.Yen)
	}
	return out
}
