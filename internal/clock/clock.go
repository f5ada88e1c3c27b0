package clock

import "time"

// WeekKey identifies an ISO week. Saturday and the following Sunday
// always share a key because ISO weeks run Monday through Sunday.
type WeekKey struct {
	Year int
	Week int
}

// Clock is the single calendar reference for the whole engine. Every
// day-boundary comparison (heatmap buckets, streak walking, weekend
// detection) must go through the same Clock instance so that all day
// keys carry the same location.
type Clock interface {
	Now() time.Time
	// StartOfDay normalizes a timestamp to midnight in the clock's location.
	StartOfDay(t time.Time) time.Time
	// AddDays shifts a day key by n calendar days (DST-safe).
	AddDays(day time.Time, n int) time.Time
	// HourOf returns the local hour of day, 0..23.
	HourOf(t time.Time) int
	WeekOf(t time.Time) WeekKey
	// Weekday returns 1..7 with 1=Sunday.
	Weekday(t time.Time) int
	// Location is the calendar's time zone; day keys are anchored to it.
	Location() *time.Location
}

type systemClock struct {
	loc *time.Location
}

// NewSystemClock returns a Clock anchored to the given location.
// A nil location falls back to time.Local.
func NewSystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return &systemClock{loc: loc}
}

func (c *systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *systemClock) StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(c.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc)
}

func (c *systemClock) AddDays(day time.Time, n int) time.Time {
	return day.In(c.loc).AddDate(0, 0, n)
}

func (c *systemClock) HourOf(t time.Time) int {
	return t.In(c.loc).Hour()
}

func (c *systemClock) WeekOf(t time.Time) WeekKey {
	year, week := t.In(c.loc).ISOWeek()
	return WeekKey{Year: year, Week: week}
}

func (c *systemClock) Weekday(t time.Time) int {
	return int(t.In(c.loc).Weekday()) + 1
}

func (c *systemClock) Location() *time.Location {
	return c.loc
}

type fixedClock struct {
	Clock
	now time.Time
}

// NewFixedClock returns a Clock frozen at the given instant, for tests.
// Calendar math uses the instant's location.
func NewFixedClock(now time.Time) Clock {
	return &fixedClock{
		Clock: NewSystemClock(now.Location()),
		now:   now,
	}
}

func (c *fixedClock) Now() time.Time {
	return c.now
}
