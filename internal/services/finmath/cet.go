package finmath

import (
	"errors"
	"fmt"
	"math"

	"RiskDesk/internal/domain/models"
)

// ErrNumericDivergence reports an IRR solve that failed to bracket a root
// even after expanding the search interval.
var ErrNumericDivergence = errors.New("irr solver failed to bracket a root")

const (
	irrTolerance     = 1e-10
	newtonMaxIter    = 100
	bisectionMaxIter = 200
	bracketLow       = -0.9999
	bracketHigh      = 1.0
	bracketHighWide  = 3.0
)

// NPV computes the net present value of cashflows at the given periodic rate,
// with cashflows[0] at t=0.
func NPV(rate float64, cashflows []float64) float64 {
	total := 0.0
	for t, cf := range cashflows {
		total += cf / math.Pow(1+rate, float64(t))
	}
	return total
}

// dNPV is the derivative of NPV with respect to the rate.
func dNPV(rate float64, cashflows []float64) float64 {
	s := 0.0
	for t := 1; t < len(cashflows); t++ {
		s -= float64(t) * cashflows[t] / math.Pow(1+rate, float64(t+1))
	}
	return s
}

// IRR solves for the periodic rate that zeroes the NPV of cashflows.
// Newton-Raphson from guess; bisection on (-0.9999, 1.0) when Newton
// diverges, leaves the bracket, or hits a flat derivative. The bracket is
// widened to (-0.9999, 3.0) if it does not change sign.
func IRR(cashflows []float64, guess float64) (float64, error) {
	r := guess
	for i := 0; i < newtonMaxIter; i++ {
		f := NPV(r, cashflows)
		if math.Abs(f) < irrTolerance {
			return r, nil
		}
		df := dNPV(r, cashflows)
		if df == 0 || math.IsInf(df, 0) || math.IsNaN(df) {
			break
		}
		next := r - f/df
		if math.IsInf(next, 0) || math.IsNaN(next) || next <= bracketLow || next >= bracketHigh {
			break
		}
		r = next
	}

	a, b := bracketLow, bracketHigh
	fa, fb := NPV(a, cashflows), NPV(b, cashflows)
	if fa*fb > 0 {
		a, b = bracketLow, bracketHighWide
		fa, fb = NPV(a, cashflows), NPV(b, cashflows)
		if fa*fb > 0 {
			return 0, ErrNumericDivergence
		}
	}

	for i := 0; i < bisectionMaxIter; i++ {
		m := (a + b) / 2
		fm := NPV(m, cashflows)
		if math.Abs(fm) < irrTolerance {
			return m, nil
		}
		if fa*fm <= 0 {
			b = m
		} else {
			a, fa = m, fm
		}
	}
	return (a + b) / 2, nil
}

// CETFromFlows computes the effective total cost of credit, monthly and
// annual, for a PRICE loan with optional fees. The cash-flow model is
// t=0: +net disbursement (principal minus upfront fee and discount),
// t=1..n: -(installment + monthly fee).
func CETFromFlows(principal, rateMonthly float64, nMonths int, fees *models.Fees) (models.CETResult, error) {
	pmt, err := PMT(rateMonthly, nMonths, principal)
	if err != nil {
		return models.CETResult{}, err
	}

	var upfront, monthly, discount float64
	if fees != nil {
		upfront = fees.Upfront
		monthly = fees.Monthly
		discount = fees.DisbursementDiscount
	}

	cashflows := make([]float64, nMonths+1)
	cashflows[0] = principal - upfront - discount
	for t := 1; t <= nMonths; t++ {
		cashflows[t] = -(pmt + monthly)
	}

	cetMonthly, err := IRR(cashflows, rateMonthly)
	if err != nil {
		return models.CETResult{}, fmt.Errorf("cet: %w", err)
	}

	return models.CETResult{
		Monthly: cetMonthly,
		Yearly:  EffAnnualFromMonthly(cetMonthly),
	}, nil
}
