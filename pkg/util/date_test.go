package util

import (
	"testing"
	"time"
)

func TestMonthsBetween(t *testing.T) {
	d0 := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	d1 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if got := MonthsBetween(d0, d1); got != 12 {
		t.Fatalf("expected 12, got %d", got)
	}
}

func TestMonthsBetweenFloorsAtOne(t *testing.T) {
	d := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if got := MonthsBetween(d, d); got != 1 {
		t.Fatalf("expected floor of 1, got %d", got)
	}
}

func TestAgeYearsBeforeBirthday(t *testing.T) {
	birth := time.Date(1990, 12, 25, 0, 0, 0, 0, time.UTC)
	ref := time.Date(2025, 8, 29, 0, 0, 0, 0, time.UTC)
	if got := AgeYears(birth, ref); got != 34 {
		t.Fatalf("expected 34, got %d", got)
	}
}

func TestAgeYearsOnBirthday(t *testing.T) {
	birth := time.Date(1990, 8, 29, 0, 0, 0, 0, time.UTC)
	ref := time.Date(2025, 8, 29, 0, 0, 0, 0, time.UTC)
	if got := AgeYears(birth, ref); got != 35 {
		t.Fatalf("expected 35, got %d", got)
	}
}

func TestLastNMonthsCrossesYear(t *testing.T) {
	ref := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	got := LastNMonths(6, ref)
	want := []string{"2024-09", "2024-10", "2024-11", "2024-12", "2025-01", "2025-02"}
	if len(got) != len(want) {
		t.Fatalf("expected %d months, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("month %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestParseDateInvalid(t *testing.T) {
	if _, err := ParseDate("29/08/2025"); err == nil {
		t.Fatalf("expected error for non YYYY-MM-DD input")
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2025, 8, 29, 0, 0, 0, 0, time.UTC)
	if got := DaysBetween(a, b); got != 28 {
		t.Fatalf("expected 28, got %d", got)
	}
}
