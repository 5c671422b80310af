package eligibility

import "testing"

func TestEligibleAtThresholds(t *testing.T) {
	// Band exactly at the minimum and ratio exactly at the cap both pass.
	dec := Evaluate("D", 350, 1000, "D", 0.35)
	if !dec.Eligible {
		t.Fatalf("expected eligible, got reasons %v", dec.Reasons)
	}
	if len(dec.Reasons) != 0 {
		t.Fatalf("expected no reasons, got %v", dec.Reasons)
	}
}

func TestRejectsBandBelowMinimum(t *testing.T) {
	dec := Evaluate("E", 100, 1000, "D", 0.35)
	if dec.Eligible {
		t.Fatalf("expected ineligible")
	}
	if len(dec.Reasons) != 1 || dec.Reasons[0] != "score_insuficiente(<D)" {
		t.Fatalf("unexpected reasons: %v", dec.Reasons)
	}
}

func TestRejectsInstallmentAboveRatio(t *testing.T) {
	dec := Evaluate("D", 351, 1000, "D", 0.35)
	if dec.Eligible {
		t.Fatalf("expected ineligible")
	}
	if len(dec.Reasons) != 1 || dec.Reasons[0] != "parcela_acima_35pct_renda" {
		t.Fatalf("unexpected reasons: %v", dec.Reasons)
	}
}

func TestAccumulatesAllFailingReasons(t *testing.T) {
	dec := Evaluate("E", 900, 1000, "C", 0.30)
	if dec.Eligible {
		t.Fatalf("expected ineligible")
	}
	if len(dec.Reasons) != 2 {
		t.Fatalf("expected both reasons, got %v", dec.Reasons)
	}
	if dec.Reasons[0] != "score_insuficiente(<C)" || dec.Reasons[1] != "parcela_acima_30pct_renda" {
		t.Fatalf("unexpected reasons: %v", dec.Reasons)
	}
}

func TestBetterBandPasses(t *testing.T) {
	for _, band := range []string{"A", "B", "C"} {
		dec := Evaluate(band, 100, 1000, "C", 0.35)
		if !dec.Eligible {
			t.Fatalf("band %s should pass min C, reasons %v", band, dec.Reasons)
		}
	}
}

func TestZeroIncomeRejected(t *testing.T) {
	dec := Evaluate("A", 100, 0, "E", 0.35)
	if dec.Eligible {
		t.Fatalf("zero income should fail the ratio rule")
	}
}

func TestUnknownBandTreatedAsWorst(t *testing.T) {
	dec := Evaluate("X", 100, 1000, "D", 0.35)
	if dec.Eligible {
		t.Fatalf("unknown band should rank as E and fail min D")
	}
}
