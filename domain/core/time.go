package core

import (
	"time"
)

// DateLayout is the calendar date format used for due dates
const DateLayout = "2006-01-02"

// Timestamp represents a point in time with timezone awareness
type Timestamp time.Time

// NewTimestamp creates a new timestamp from time.Time
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t)
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// Clock supplies the current time. Importers take one so tests can pin "today".
type Clock func() time.Time

// SystemClock is the wall clock
var SystemClock Clock = time.Now

// Today returns the clock's current calendar date
func (c Clock) Today() string {
	if c == nil {
		return time.Now().Format(DateLayout)
	}
	return c().Format(DateLayout)
}

// FixedClock returns a clock frozen at t
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// JSON marshaling for Timestamp
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var tm time.Time
	if err := tm.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = Timestamp(tm)
	return nil
}

func (t Timestamp) String() string { return t.Time().Format(time.RFC3339) }
