// Package calendar renders schedule events as iCalendar files.
package calendar

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/rajcreationz/livesite/internal/domain/entities/schedule"
)

const ProductID = "-//RajCreationz//Schedule//EN"

// Exporter builds .ics documents. Domain is the UID suffix.
type Exporter struct {
	Domain string
	Now    func() time.Time
}

func NewExporter(domain string) *Exporter {
	return &Exporter{Domain: domain, Now: time.Now}
}

// Export renders a single-event calendar with times in UTC.
func (x *Exporter) Export(ev schedule.Event) (string, error) {
	start, err := ev.StartsAt()
	if err != nil {
		return "", err
	}
	end, err := ev.EndsAt()
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetMethod(ics.MethodPublish)

	vevent := cal.AddEvent(fmt.Sprintf("%s@%s", ev.ID, x.Domain))
	vevent.SetDtStampTime(x.Now().UTC())
	vevent.SetStartAt(start)
	vevent.SetEndAt(end)
	vevent.SetSummary(ev.Title)
	if ev.Description != "" {
		vevent.SetDescription(ev.Description)
	}
	location := ev.Location
	if location == "" {
		location = schedule.DefaultLocation
	}
	vevent.SetLocation(location)
	if ev.VideoURL != "" {
		vevent.SetURL(ev.VideoURL)
	}
	vevent.SetStatus(ics.ObjectStatusConfirmed)

	return cal.Serialize(), nil
}
