package normalize

import "strings"

// IndustryName returns the sector name for an industry code, or
// UnknownIndustry when the code is not in the table. Codes may be written
// with full-width digits or without the leading zero ("50" for "0050").
func IndustryName(code string) string {
	if name, ok := industryNames[IndustryCode(code)]; ok {
		return name
	}
	return UnknownIndustry
}

// IndustryCode folds a printed code to ASCII and pads a short numeric code
// to four digits ("５０" becomes "0050").
func IndustryCode(code string) string {
	c := compact(code)
	if len(c) > 0 && len(c) < 4 && isDigits(c) {
		return strings.Repeat("0", 4-len(c)) + c
	}
	return c
}

// IndustryCodeFor resolves a sector name back to its code, which lets
// documents that print the name instead of the code still be benchmarked.
func IndustryCodeFor(name string) (string, bool) {
	n := compact(name)
	for code, v := range industryNames {
		if v == n {
			return code, true
		}
	}
	return "", false
}
