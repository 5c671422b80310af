package finmath

import (
	"math"
	"testing"
)

func TestPMTClosedForm(t *testing.T) {
	got, err := PMT(0.02, 12, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// principal * r(1+r)^n / ((1+r)^n - 1)
	pow := math.Pow(1.02, 12)
	want := 10000 * (0.02 * pow) / (pow - 1)
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPMTZeroRate(t *testing.T) {
	got, err := PMT(0, 12, 1200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
}

func TestPMTInvalidInputs(t *testing.T) {
	if _, err := PMT(0.02, 0, 10000); err == nil {
		t.Fatalf("expected error for zero term")
	}
	if _, err := PMT(0.02, 12, 0); err == nil {
		t.Fatalf("expected error for zero principal")
	}
}

func TestAmortizationScheduleBalances(t *testing.T) {
	rows, err := AmortizationSchedule(10000, 0.02, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 12 {
		t.Fatalf("expected 12 rows, got %d", len(rows))
	}

	sumPrincipal := 0.0
	for _, row := range rows {
		sumPrincipal += row.Principal
	}
	if math.Abs(sumPrincipal-10000) > 0.01 {
		t.Fatalf("principal components sum to %v, expected 10000", sumPrincipal)
	}

	last := rows[len(rows)-1]
	if math.Abs(last.ClosingBalance) > 0.01 {
		t.Fatalf("final closing balance %v, expected 0", last.ClosingBalance)
	}
}

func TestAmortizationScheduleZeroRate(t *testing.T) {
	rows, err := AmortizationSchedule(1200, 0, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, row := range rows {
		if row.Interest != 0 {
			t.Fatalf("period %d: expected zero interest, got %v", row.Period, row.Interest)
		}
		if row.Amount != 100 {
			t.Fatalf("period %d: expected installment 100, got %v", row.Period, row.Amount)
		}
	}
}

func TestEffAnnualFromMonthly(t *testing.T) {
	got := EffAnnualFromMonthly(0.02)
	want := math.Pow(1.02, 12) - 1
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
