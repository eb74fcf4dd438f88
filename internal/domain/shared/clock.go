package shared

import "time"

// Clock supplies the current time. Services take a Clock instead of calling
// time.Now so that date arithmetic can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns time.Now()
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ZonedClock reads the wall clock in a fixed location, so calendar
// boundaries (due dates, reporting months) follow the business time zone
type ZonedClock struct {
	Location *time.Location
}

// Now returns time.Now() in the clock's location
func (c ZonedClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// FixedClock always returns the same instant
type FixedClock struct {
	At time.Time
}

// Now returns the fixed instant
func (c FixedClock) Now() time.Time {
	return c.At
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
