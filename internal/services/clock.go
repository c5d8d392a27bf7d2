package services

import "time"

// Clock abstracts "now" so the close engine and scheduler can be tested with
// arbitrary dates. Production code uses SystemClock; tests inject a fixed
// time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns T. Intended for tests and dry runs.
type FixedClock struct{ T time.Time }

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return c.T }

// PriorMonth returns the calendar month immediately preceding now: the month
// the close engine targets. January rolls back to December of the previous
// year.
func PriorMonth(now time.Time) (month, year int) {
	month = int(now.Month()) - 1
	year = now.Year()
	if month == 0 {
		month = 12
		year--
	}
	return month, year
}

// DaysRemaining returns the number of days left in now's calendar month,
// excluding today.
func DaysRemaining(now time.Time) int {
	lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	return lastDay - now.Day()
}
