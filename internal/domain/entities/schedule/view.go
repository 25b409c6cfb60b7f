package schedule

import (
	"sort"
	"time"
)

// DisplayFilter selects events for the list view.
type DisplayFilter string

const (
	FilterAll       DisplayFilter = "all"
	FilterUpcoming  DisplayFilter = "upcoming"
	FilterPast      DisplayFilter = "past"
	FilterRecurring DisplayFilter = "recurring"
)

// ParseDisplayFilter falls back to FilterAll for unknown values.
func ParseDisplayFilter(v string) DisplayFilter {
	switch DisplayFilter(v) {
	case FilterUpcoming, FilterPast, FilterRecurring:
		return DisplayFilter(v)
	}
	return FilterAll
}

// Apply returns the events matching f, preserving order.
func (f DisplayFilter) Apply(events []Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		switch f {
		case FilterUpcoming:
			if e.Status != StatusUpcoming && e.Status != StatusLive {
				continue
			}
		case FilterPast:
			if e.Status != StatusPast {
				continue
			}
		case FilterRecurring:
			if !e.IsRecurring {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// Day is one cell of a month grid. Date is zero for leading padding cells.
type Day struct {
	Date   time.Time
	Events []Event
}

// Month is a calendar month laid out in weeks starting on Sunday.
type Month struct {
	Year  int
	Month time.Month
	Weeks [][]Day
}

// BuildMonth groups events by day for the given month.
func BuildMonth(year int, month time.Month, events []Event) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	byDay := map[string][]Event{}
	for _, e := range events {
		byDay[e.Date] = append(byDay[e.Date], e)
	}
	for k := range byDay {
		sort.SliceStable(byDay[k], func(i, j int) bool { return byDay[k][i].StartTime < byDay[k][j].StartTime })
	}

	m := Month{Year: year, Month: month}
	week := make([]Day, int(first.Weekday()))
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		week = append(week, Day{Date: d, Events: byDay[d.Format(DateLayout)]})
		if len(week) == 7 {
			m.Weeks = append(m.Weeks, week)
			week = nil
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, Day{})
		}
		m.Weeks = append(m.Weeks, week)
	}
	return m
}
