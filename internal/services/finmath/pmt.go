// Package finmath implements the PRICE-table and effective-cost arithmetic
// used by the pricing pipeline: fixed installments, amortization schedules and
// the IRR-based CET solver.
package finmath

import (
	"fmt"
	"math"

	"RiskDesk/internal/domain/models"
)

// PMT returns the fixed monthly installment of a PRICE schedule.
// rateMonthly is a decimal (0.025 = 2.5% a.m.).
func PMT(rateMonthly float64, nMonths int, principal float64) (float64, error) {
	if nMonths <= 0 {
		return 0, fmt.Errorf("n_months must be > 0, got %d", nMonths)
	}
	if principal <= 0 {
		return 0, fmt.Errorf("principal must be > 0, got %v", principal)
	}
	if rateMonthly == 0 {
		return principal / float64(nMonths), nil
	}
	r := rateMonthly
	k := (r * math.Pow(1+r, float64(nMonths))) / (math.Pow(1+r, float64(nMonths)) - 1)
	return principal * k, nil
}

// EffAnnualFromMonthly converts a monthly rate to its effective annual
// equivalent: (1+i)^12 - 1.
func EffAnnualFromMonthly(rateMonthly float64) float64 {
	return math.Pow(1+rateMonthly, 12) - 1
}

// AmortizationSchedule builds the full PRICE schedule. The last period's
// principal component is clamped to the remaining balance (and its
// installment adjusted) so the schedule always terminates at zero.
// Row amounts are rounded to cents for presentation.
func AmortizationSchedule(principal, rateMonthly float64, nMonths int) ([]models.Installment, error) {
	pmt, err := PMT(rateMonthly, nMonths, principal)
	if err != nil {
		return nil, err
	}

	rows := make([]models.Installment, 0, nMonths)
	balance := principal
	for t := 1; t <= nMonths; t++ {
		interest := balance * rateMonthly
		amort := pmt - interest
		installment := pmt
		if amort > balance {
			amort = balance
			installment = amort + interest
		}
		closing := balance - amort

		rows = append(rows, models.Installment{
			Period:         t,
			OpeningBalance: round2(balance),
			Interest:       round2(interest),
			Principal:      round2(amort),
			Amount:         round2(installment),
			ClosingBalance: round2(math.Max(closing, 0)),
		})
		balance = closing
	}
	return rows, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
