package normalize

import (
	"strings"

	"golang.org/x/text/width"
)

// NormalizeAccountName canonicalizes an account label: width folding,
// trimming, collapsing whitespace runs to one space, then synonym lookup.
// Names outside the synonym table are returned in their cleaned form, so
// applying the function twice equals applying it once.
func NormalizeAccountName(text string) string {
	cleaned := strings.Join(strings.Fields(width.Fold.String(text)), " ")
	cleaned = stripListMarker(cleaned)
	if canonical, ok := accountSynonyms[cleaned]; ok {
		return canonical
	}
	// Tables often pad labels for alignment ("現 金 預 金").
	if joined := strings.ReplaceAll(cleaned, " ", ""); joined != cleaned {
		if canonical, ok := accountSynonyms[joined]; ok {
			return canonical
		}
		if IsCanonicalAccount(joined) {
			return joined
		}
	}
	return cleaned
}

// IsCanonicalAccount reports whether name is a canonical label, i.e. a
// synonym target or a name the classifier knows directly.
func IsCanonicalAccount(name string) bool {
	_, ok := canonicalNames[name]
	return ok
}

var canonicalNames = func() map[string]struct{} {
	m := make(map[string]struct{}, len(accountSynonyms))
	for _, v := range accountSynonyms {
		m[v] = struct{}{}
	}
	for _, v := range []string{
		AcctNotesReceivable, AcctAccountsReceivable, AcctSecurities,
		AcctWorkInProcess, AcctDeferredAssets, AcctNotesPayable,
		AcctAccountsPayable, AcctAccruedPayables, AcctIncomeTaxesPayable,
		AcctBonds, AcctRetirementBenefitLiab, AcctCapitalStock,
		AcctCapitalSurplus, AcctRetainedEarnings, AcctTreasuryStock,
		AcctValuationAdjustments, AcctNonControlling, AcctCostOfSales,
		AcctDividendIncome, AcctFXEffect, AcctCurrentIncomeTaxes,
		AcctDeferredIncomeTaxes, MetaPeriod,
	} {
		m[v] = struct{}{}
	}
	return m
}()

// stripListMarker drops leading enumerations such as "1." or "(1)" that
// some exports prefix to account labels.
func stripListMarker(s string) string {
	for {
		next := stripOneMarker(s)
		if next == s {
			return s
		}
		s = next
	}
}

func stripOneMarker(s string) string {
	trimmed := s
	if strings.HasPrefix(trimmed, "(") {
		if end := strings.Index(trimmed, ")"); end > 1 && isDigits(trimmed[1:end]) {
			trimmed = strings.TrimSpace(trimmed[end+1:])
		}
	} else if dot := strings.IndexAny(trimmed, ".、"); dot > 0 && isDigits(trimmed[:dot]) {
		rest := strings.TrimPrefix(trimmed[dot:], ".")
		rest = strings.TrimPrefix(rest, "、")
		trimmed = strings.TrimSpace(rest)
	}
	if trimmed == "" {
		return s
	}
	return trimmed
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
