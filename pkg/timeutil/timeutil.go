// Package timeutil provides UTC calendar helpers for the reward engine.
// Weekend detection and day arithmetic use the UTC wall-clock date.
// No external dependencies - uses only standard library.
package timeutil

import "time"

// IsWeekend checks if the given time falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	weekday := t.UTC().Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// IsSameDay checks if two times are on the same UTC day.
func IsSameDay(t1, t2 time.Time) bool {
	a, b := t1.UTC(), t2.UTC()
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// IsConsecutiveDay checks if t2 is the day after t1.
func IsConsecutiveDay(t1, t2 time.Time) bool {
	return IsSameDay(t1.UTC().AddDate(0, 0, 1), t2)
}
