package timedataset

import (
	"time"
)

type TimeSlice []time.Time

func (t TimeSlice) StartTime() time.Time {
	var startTime time.Time
	if len(t) < 1 {
		return startTime
	}
	return t[0]
}

func (t TimeSlice) EndTime() time.Time {
	var lastTime time.Time
	if len(t) < 1 {
		return lastTime
	}

	lastTime = t[len(t)-1]
	return lastTime
}

// Future returns n month starts following the last point.
func (t TimeSlice) Future(n int) []time.Time {
	if len(t) == 0 || n <= 0 {
		return nil
	}
	last := MonthStart(t.EndTime())
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[i] = AddMonths(last, i+1)
	}
	return out
}

// MonthStart returns the first day of t's month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths steps calendar months from the month start of t.
func AddMonths(t time.Time, n int) time.Time {
	m := MonthStart(t)
	return time.Date(m.Year(), m.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
}

// MonthsBetween returns the signed number of calendar months from a to b.
func MonthsBetween(a, b time.Time) int {
	a, b = a.UTC(), b.UTC()
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
