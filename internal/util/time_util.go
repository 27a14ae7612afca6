package util

import (
	"time"
)

const hoursPerYear = 365.25 * 24

func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// YearsBetween measures elapsed calendar time in years, using a
// 365.25-day year.
func YearsBetween(start, end time.Time) float64 {
	return end.Sub(start).Hours() / hoursPerYear
}

// InRange reports whether t falls inside [start, end] inclusive.
func InRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
