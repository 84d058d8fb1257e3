// Package ics renders the deputy's schedule as an iCalendar document so
// events can be pulled into external calendar clients.
package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/example/deputy-schedule/internal/schedule"
)

const productID = "-//deputy-schedule//RU"

// Exporter serializes events into a VCALENDAR payload. All timed events
// are interpreted in the exporter's location.
type Exporter struct {
	location *time.Location
}

// NewExporter builds an exporter for the given location. A nil location
// falls back to UTC.
func NewExporter(location *time.Location) *Exporter {
	if location == nil {
		location = time.UTC
	}
	return &Exporter{location: location}
}

// Export renders the events into an iCalendar document. Events with
// malformed dates are skipped rather than failing the whole export.
func (e *Exporter) Export(events []schedule.Event) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, event := range events {
		start, end, allDay, err := eventInterval(event, e.location)
		if err != nil {
			continue
		}

		ve := cal.AddEvent(fmt.Sprintf("%s@deputy-schedule", event.ID))
		ve.SetSummary(event.Title)
		if !event.CreatedAt.IsZero() {
			ve.SetDtStampTime(event.CreatedAt.UTC())
			ve.SetCreatedTime(event.CreatedAt.UTC())
		}
		if allDay {
			ve.SetAllDayStartAt(start)
			ve.SetAllDayEndAt(end)
		} else {
			ve.SetStartAt(start)
			ve.SetEndAt(end)
		}
		if event.Location != "" {
			ve.SetLocation(event.Location)
		}
		if event.RegionName != "" {
			ve.SetLocation(event.RegionName)
		}
		if event.Description != "" {
			ve.SetDescription(event.Description)
		}
		if event.VKSLink != "" {
			ve.SetURL(event.VKSLink)
		}
		if event.Status == schedule.StatusCancelled {
			ve.SetStatus(ical.ObjectStatusCancelled)
		}
	}

	return cal.Serialize(), nil
}

// eventInterval resolves the concrete start and end instants of an event.
// All-day events span whole days with an exclusive end date, following
// RFC 5545 semantics.
func eventInterval(event schedule.Event, loc *time.Location) (start, end time.Time, allDay bool, err error) {
	profile := schedule.ProfileFor(event.Type)
	if profile.AllDay {
		start, err = time.ParseInLocation("2006-01-02", event.Date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false, err
		}
		endDate := event.EndDate
		if endDate == "" {
			endDate = event.Date
		}
		end, err = time.ParseInLocation("2006-01-02", endDate, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false, err
		}
		return start, end.AddDate(0, 0, 1), true, nil
	}

	start, err = time.ParseInLocation("2006-01-02 15:04", event.Date+" "+event.Time, loc)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}

	switch {
	case event.EndTime != "":
		endDate := event.EndDate
		if endDate == "" {
			endDate = event.Date
		}
		end, err = time.ParseInLocation("2006-01-02 15:04", endDate+" "+event.EndTime, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false, err
		}
	default:
		end = start.Add(time.Hour)
	}
	return start, end, false, nil
}
