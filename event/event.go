// Package event lists the dated economic shocks annotated on inflation charts.
package event

import (
	"errors"
	"slices"
	"time"
)

var (
	ErrStartAfterEnd = errors.New("event start time is after end time")
	ErrUnsetTime     = errors.New("unset event start or end time")
	ErrNoEventName   = errors.New("no event name")
)

// Event is a named time span. Single day shocks start at midnight UTC and end
// at the next midnight.
type Event struct {
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewEvent(name string, start, end time.Time) Event {
	return Event{
		Name:  name,
		Start: start,
		End:   end,
	}
}

// OnDay returns a one day event.
func OnDay(name string, year int, month time.Month, day int) Event {
	start := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return NewEvent(name, start, start.AddDate(0, 0, 1))
}

func (e *Event) Valid() error {
	if e.Start.IsZero() || e.End.IsZero() {
		return ErrUnsetTime
	}
	if e.Start.After(e.End) {
		return ErrStartAfterEnd
	}
	if e.Name == "" {
		return ErrNoEventName
	}
	return nil
}

// Month is the first day of the month the event starts in.
func (e Event) Month() time.Time {
	s := e.Start.UTC()
	return time.Date(s.Year(), s.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Recent marks the analysis window charts.
func Recent() []Event {
	return []Event{
		OnDay("COVID-19", 2020, time.March, 11),
		OnDay("Ukraine-Krieg", 2022, time.February, 24),
		OnDay("Liberation Day", 2025, time.January, 20),
	}
}

// Historical marks the long-run chart since the euro introduction.
func Historical() []Event {
	return []Event{
		OnDay("Finanzkrise", 2008, time.September, 15),
		OnDay("COVID-19", 2020, time.March, 11),
		OnDay("Ukraine-Krieg", 2022, time.February, 24),
	}
}

// Within returns the events overlapping [start, end] in chronological order.
func Within(events []Event, start, end time.Time) []Event {
	var out []Event
	for _, e := range events {
		if e.End.Before(start) || e.Start.After(end) {
			continue
		}
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b Event) int {
		return a.Start.Compare(b.Start)
	})
	return out
}
