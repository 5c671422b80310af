package pricing

import (
	"math"
	"testing"
)

func testArtifact() *Artifact {
	a := &Artifact{}
	a.Poly.Degree = 2
	a.Poly.Coefficients = []float64{0.012, 0.15, 0.10}
	a.Caps.MinRateMonthly = 0.012
	a.Caps.MaxRateMonthly = 0.055
	return a
}

func newTestEngine(t *testing.T, a *Artifact) *Engine {
	t.Helper()
	e, err := NewEngine(a, CostConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return e
}

func TestSuggestRateMonotone(t *testing.T) {
	e := newTestEngine(t, testArtifact())
	prev := -1.0
	for pd := 0.002; pd <= 0.60; pd += 0.01 {
		rate := e.SuggestRate(pd)
		if rate < prev {
			t.Fatalf("rate decreased with pd: pd=%v rate=%v prev=%v", pd, rate, prev)
		}
		prev = rate
	}
}

func TestSuggestRateCaps(t *testing.T) {
	e := newTestEngine(t, testArtifact())
	if got := e.SuggestRate(0.0); got != 0.012 {
		t.Fatalf("expected floor 0.012, got %v", got)
	}
	if got := e.SuggestRate(0.60); got != 0.055 {
		t.Fatalf("expected cap 0.055, got %v", got)
	}
}

func TestIsotonicCorrectionMonotone(t *testing.T) {
	a := testArtifact()
	// A non-monotone raw polynomial superseded by the monotone re-fit.
	a.Poly.Coefficients = []float64{0.05, -0.20, 0.40}
	a.Isotonic = &struct {
		X []float64 `json:"x"`
		Y []float64 `json:"y"`
	}{
		X: []float64{0.01, 0.10, 0.30, 0.60},
		Y: []float64{0.015, 0.020, 0.030, 0.048},
	}
	e := newTestEngine(t, a)

	prev := -1.0
	for pd := 0.002; pd <= 0.60; pd += 0.005 {
		rate := e.SuggestRate(pd)
		if rate < prev {
			t.Fatalf("isotonic output decreased: pd=%v rate=%v prev=%v", pd, rate, prev)
		}
		prev = rate
	}
}

func TestIsotonicClipsOutOfRange(t *testing.T) {
	a := testArtifact()
	a.Isotonic = &struct {
		X []float64 `json:"x"`
		Y []float64 `json:"y"`
	}{
		X: []float64{0.02, 0.04},
		Y: []float64{0.020, 0.040},
	}
	e := newTestEngine(t, a)
	if got := e.isotonicEval(0.001); got != 0.020 {
		t.Fatalf("below range should clip to first y, got %v", got)
	}
	if got := e.isotonicEval(0.9); got != 0.040 {
		t.Fatalf("above range should clip to last y, got %v", got)
	}
}

func TestUnitEconomics(t *testing.T) {
	e := newTestEngine(t, testArtifact())
	ue := e.UnitEconomics(0.10, 12)

	wantEL := 0.10 * 0.45 * 0.5
	if math.Abs(ue.ELOverPrincipal-wantEL) > 1e-12 {
		t.Fatalf("el_over_P: expected %v, got %v", wantEL, ue.ELOverPrincipal)
	}
	if math.Abs(ue.RiskComponentMonthly-wantEL) > 1e-12 {
		t.Fatalf("12-month risk component should equal el, got %v", ue.RiskComponentMonthly)
	}
	wantIMin := 0.008 + 0.003 + wantEL + 0.002
	if math.Abs(ue.IMin-wantIMin) > 1e-12 {
		t.Fatalf("i_min: expected %v, got %v", wantIMin, ue.IMin)
	}
}

func TestUnitEconomicsFloorAtMinCap(t *testing.T) {
	e := newTestEngine(t, testArtifact())
	// Tiny PD drives the computed floor below the minimum rate cap.
	ue := e.UnitEconomics(0.0001, 60)
	if ue.IMin != 0.012 {
		t.Fatalf("i_min should be raised to min cap 0.012, got %v", ue.IMin)
	}
}

func TestUnitEconomicsZeroTermClamped(t *testing.T) {
	e := newTestEngine(t, testArtifact())
	got := e.UnitEconomics(0.10, 0)
	want := e.UnitEconomics(0.10, 1)
	if got.RiskComponentMonthly != want.RiskComponentMonthly {
		t.Fatalf("zero term should behave as one month")
	}
}

func TestArtifactValidation(t *testing.T) {
	a := testArtifact()
	a.Poly.Degree = 3
	if _, err := NewEngine(a, CostConfig{}); err == nil {
		t.Fatalf("expected error for unsupported degree")
	}

	a = testArtifact()
	a.Poly.Coefficients = []float64{0.01}
	if _, err := NewEngine(a, CostConfig{}); err == nil {
		t.Fatalf("expected error for coefficient count mismatch")
	}

	a = testArtifact()
	a.Caps.MaxRateMonthly = a.Caps.MinRateMonthly
	if _, err := NewEngine(a, CostConfig{}); err == nil {
		t.Fatalf("expected error for degenerate caps")
	}
}
