// Package eligibility applies the policy gate that follows scoring: a minimum
// risk band and a maximum installment-to-income ratio.
package eligibility

import (
	"fmt"

	"RiskDesk/internal/domain/models"
)

// bandRank orders bands best to worst; lower rank is better.
var bandRank = map[string]int{"A": 0, "B": 1, "C": 2, "D": 3, "E": 4}

// Evaluate runs both policy rules independently and accumulates every failing
// reason. An installment-to-income ratio exactly at the threshold passes.
func Evaluate(band string, installment, monthlyIncome float64, minBand string, maxIncomeRatio float64) models.EligibilityDecision {
	dec := models.EligibilityDecision{
		Band:           band,
		Installment:    installment,
		MonthlyIncome:  monthlyIncome,
		MinBand:        minBand,
		MaxIncomeRatio: maxIncomeRatio,
		Reasons:        []string{},
	}

	gotRank, ok := bandRank[band]
	if !ok {
		gotRank = bandRank["E"]
	}
	minRank, ok := bandRank[minBand]
	if !ok {
		minRank = bandRank["E"]
	}
	if gotRank > minRank {
		dec.Reasons = append(dec.Reasons, fmt.Sprintf("score_insuficiente(<%s)", minBand))
	}

	if monthlyIncome <= 0 || installment/monthlyIncome > maxIncomeRatio {
		pct := int(maxIncomeRatio * 100)
		dec.Reasons = append(dec.Reasons, fmt.Sprintf("parcela_acima_%dpct_renda", pct))
	}

	dec.Eligible = len(dec.Reasons) == 0
	return dec
}
