package util

import (
	"fmt"
	"time"
)

// DateLayout is the calendar format used by every upstream provider.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// MonthsBetween returns the number of calendar months from d0 to d1,
// never less than 1.
func MonthsBetween(d0, d1 time.Time) int {
	m := (d1.Year()-d0.Year())*12 + int(d1.Month()) - int(d0.Month())
	if m < 1 {
		return 1
	}
	return m
}

// AgeYears returns full years between birth and ref, decremented by one when
// the birthday has not yet occurred in ref's year.
func AgeYears(birth, ref time.Time) int {
	years := ref.Year() - birth.Year()
	if int(ref.Month()) < int(birth.Month()) ||
		(ref.Month() == birth.Month() && ref.Day() < birth.Day()) {
		years--
	}
	return years
}

// MonthKey formats t as YYYY-MM.
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// LastNMonths returns the YYYY-MM keys of the last n calendar months
// including ref's month, oldest first.
func LastNMonths(n int, ref time.Time) []string {
	out := make([]string, n)
	y, m := ref.Year(), int(ref.Month())
	for i := n - 1; i >= 0; i-- {
		out[i] = fmt.Sprintf("%04d-%02d", y, m)
		m--
		if m == 0 {
			m = 12
			y--
		}
	}
	return out
}

// DaysBetween returns whole days from a to b (negative if b precedes a).
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
