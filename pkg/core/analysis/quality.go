package analysis

import (
	"math"

	"finstat/pkg/core/calc"
	"finstat/pkg/core/statement"
)

// warningPenalty is the score deduction per warning code.
var warningPenalty = map[statement.WarningCode]float64{
	statement.WarnBalanceMismatch:  15,
	statement.WarnCashFlowMismatch: 10,
	statement.WarnMissingStatement: 10,
	statement.WarnTotalMismatch:    5,
	statement.WarnCashLinkage:      5,
	statement.WarnAmountParse:      2,
	statement.WarnDateParse:        2,
	statement.WarnUnclassified:     1,
}

// QualityScore rates from 0 to 100 how much of the analysis the statement
// supports: the share of metrics that carry a value, less a penalty per
// warning. Growth metrics count only when a prior year was supplied.
func QualityScore(stmt *statement.ParsedStatement, m calc.Metrics, hasPrior bool) int {
	var total, valid int
	for key, r := range m.Values() {
		if calc.ClassOf(key) == calc.ClassGrowth && !hasPrior {
			continue
		}
		total++
		if r.Valid() {
			valid++
		}
	}
	if total == 0 {
		return 0
	}
	score := 100 * float64(valid) / float64(total)
	for _, w := range stmt.Warnings {
		score -= warningPenalty[w.Code]
	}
	return int(math.Round(math.Max(0, math.Min(100, score))))
}
