// Package schedule defines schedule events and their presentation rules.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rajcreationz/livesite/internal/domain/errs"
)

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusLive      Status = "live"
	StatusPast      Status = "past"
	StatusCancelled Status = "cancelled"
)

const (
	DefaultTimezone = "IST (UTC+5:30)"
	DefaultCategory = "Regular Show"
	DefaultLocation = "Online"

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Event is a scheduled broadcast.
type Event struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Date             string    `json:"event_date"`
	StartTime        string    `json:"start_time"`
	EndTime          string    `json:"end_time"`
	Timezone         string    `json:"timezone"`
	Category         string    `json:"category"`
	Status           Status    `json:"status"`
	IsRecurring      bool      `json:"is_recurring"`
	RecurringPattern string    `json:"recurring_pattern,omitempty"`
	Location         string    `json:"location,omitempty"`
	VideoURL         string    `json:"video_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ApplyDefaults fills in timezone, category and status when blank.
func (e *Event) ApplyDefaults() {
	if e.Timezone == "" {
		e.Timezone = DefaultTimezone
	}
	if e.Category == "" {
		e.Category = DefaultCategory
	}
	if e.Status == "" {
		e.Status = StatusUpcoming
	}
}

// Validate checks required fields and formats.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return errs.Invalid("title", "is required")
	}
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return errs.Invalid("event_date", "must be YYYY-MM-DD")
	}
	start, err := time.Parse(TimeLayout, e.StartTime)
	if err != nil {
		return errs.Invalid("start_time", "must be HH:MM")
	}
	end, err := time.Parse(TimeLayout, e.EndTime)
	if err != nil {
		return errs.Invalid("end_time", "must be HH:MM")
	}
	if !end.After(start) {
		return errs.Invalid("end_time", "must be after start_time")
	}
	switch e.Status {
	case StatusUpcoming, StatusLive, StatusPast, StatusCancelled:
	default:
		return errs.Invalid("status", fmt.Sprintf("unknown status %q", e.Status))
	}
	return nil
}

// Filters narrows a store query. Nil fields are ignored.
type Filters struct {
	Status      *Status
	IsRecurring *bool
	Category    *string
}

var offsetPattern = regexp.MustCompile(`UTC\s*([+-])\s*(\d{1,2})(?::?(\d{2}))?`)

// Location resolves a timezone label such as "IST (UTC+5:30)" or an IANA name.
// Unknown labels resolve to UTC.
func Location(label string) *time.Location {
	if m := offsetPattern.FindStringSubmatch(label); m != nil {
		hours, _ := strconv.Atoi(m[2])
		minutes := 0
		if m[3] != "" {
			minutes, _ = strconv.Atoi(m[3])
		}
		offset := hours*3600 + minutes*60
		if m[1] == "-" {
			offset = -offset
		}
		return time.FixedZone(strings.TrimSpace(label), offset)
	}
	if loc, err := time.LoadLocation(strings.TrimSpace(label)); err == nil && label != "" {
		return loc
	}
	return time.UTC
}

// StartsAt returns the event start as an absolute time.
func (e *Event) StartsAt() (time.Time, error) {
	return e.at(e.StartTime)
}

// EndsAt returns the event end as an absolute time. An end clock at or
// before the start clock is taken to be on the following day.
func (e *Event) EndsAt() (time.Time, error) {
	end, err := e.at(e.EndTime)
	if err != nil {
		return time.Time{}, err
	}
	start, err := e.at(e.StartTime)
	if err != nil {
		return time.Time{}, err
	}
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return end, nil
}

func (e *Event) at(clock string) (time.Time, error) {
	tz := e.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, e.Date+" "+clock, Location(tz))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s %s: %w", e.Date, clock, err)
	}
	return t, nil
}

// Format12h converts "18:30" to "6:30 PM". Unparseable input is returned as is.
func Format12h(clock string) string {
	t, err := time.Parse(TimeLayout, clock)
	if err != nil {
		return clock
	}
	return t.Format("3:04 PM")
}

// Badge is the human label shown beside an event.
func (s Status) Badge() string {
	switch s {
	case StatusUpcoming:
		return "🔴 Upcoming"
	case StatusPast:
		return "✅ Completed"
	case StatusLive:
		return "🔴 LIVE NOW"
	case StatusCancelled:
		return "❌ Cancelled"
	}
	return ""
}

// Bucket classifies an event as "past", "live" or "upcoming" relative to now.
func (e *Event) Bucket(now time.Time) string {
	if e.Status == StatusPast {
		return "past"
	}
	if d, err := time.ParseInLocation(DateLayout, e.Date, now.Location()); err == nil && d.AddDate(0, 0, 1).Before(now) {
		return "past"
	}
	if e.Status == StatusLive {
		return "live"
	}
	return "upcoming"
}

// ICSFileName replaces whitespace runs in the title with underscores.
func (e *Event) ICSFileName() string {
	return strings.Join(strings.Fields(e.Title), "_") + ".ics"
}
