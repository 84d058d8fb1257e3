package schedule

import (
	"sort"
	"strings"
	"time"
)

// FilterAll is the pass-through value for the type filter.
const FilterAll EventType = "all"

// Filter narrows an event list by free-text search and event type.
type Filter struct {
	Query string
	Type  EventType
}

// Matches reports whether the event passes the filter. The search is
// case-insensitive over title and description; an absent description never
// matches the query. An empty or "all" type passes every event.
func (f Filter) Matches(e Event) bool {
	if f.Type != "" && f.Type != FilterAll && e.Type != f.Type {
		return false
	}
	if f.Query == "" {
		return true
	}
	query := strings.ToLower(f.Query)
	if strings.Contains(strings.ToLower(e.Title), query) {
		return true
	}
	return e.Description != "" && strings.Contains(strings.ToLower(e.Description), query)
}

// Partition splits events into the active and archived views described by
// the main page: active events sorted ascending by date, archived sorted
// descending, both restricted by the filter. Every input event lands in
// exactly one of the two slices or is dropped solely by the filter.
func Partition(events []Event, f Filter) (active, archived []Event) {
	for _, e := range events {
		if !f.Matches(e) {
			continue
		}
		if Terminal(e.Status) {
			archived = append(archived, e)
		} else {
			active = append(active, e)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].Date < active[j].Date })
	sort.SliceStable(archived, func(i, j int) bool { return archived[i].Date > archived[j].Date })
	return active, archived
}

// DayGroup is one bucket of the timeline view: all events sharing a date,
// ordered by start time.
type DayGroup struct {
	Date   string
	Label  string
	Today  bool
	Events []Event
}

// GroupByDay buckets events by exact date string, orders buckets by
// ascending date and events within a bucket by start time, and labels each
// bucket relative to the current calendar day.
func GroupByDay(events []Event, now time.Time) []DayGroup {
	ordered := make([]Event, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Date != ordered[j].Date {
			return ordered[i].Date < ordered[j].Date
		}
		return ordered[i].Time < ordered[j].Time
	})

	var groups []DayGroup
	index := make(map[string]int)
	for _, e := range ordered {
		i, ok := index[e.Date]
		if !ok {
			i = len(groups)
			index[e.Date] = i
			groups = append(groups, DayGroup{
				Date:  e.Date,
				Label: DayLabel(e.Date, now),
				Today: e.Date == DateString(now),
			})
		}
		groups[i].Events = append(groups[i].Events, e)
	}
	return groups
}

// DateString formats t as the ISO day key used throughout the domain.
func DateString(t time.Time) string {
	return t.Format("2006-01-02")
}

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "понедельник",
	time.Tuesday:   "вторник",
	time.Wednesday: "среда",
	time.Thursday:  "четверг",
	time.Friday:    "пятница",
	time.Saturday:  "суббота",
	time.Sunday:    "воскресенье",
}

var monthNames = map[time.Month]string{
	time.January:   "января",
	time.February:  "февраля",
	time.March:     "марта",
	time.April:     "апреля",
	time.May:       "мая",
	time.June:      "июня",
	time.July:      "июля",
	time.August:    "августа",
	time.September: "сентября",
	time.October:   "октября",
	time.November:  "ноября",
	time.December:  "декабря",
}

// DayLabel renders the timeline heading for a date: "Сегодня" or "Завтра"
// when the date is the current or next calendar day in now's zone,
// otherwise the full weekday and date. Comparison is by calendar day, not
// elapsed hours.
func DayLabel(date string, now time.Time) string {
	switch date {
	case DateString(now):
		return "Сегодня"
	case DateString(now.AddDate(0, 0, 1)):
		return "Завтра"
	}
	day, err := time.ParseInLocation("2006-01-02", date, now.Location())
	if err != nil {
		return date
	}
	return weekdayNames[day.Weekday()] + ", " + day.Format("2") + " " + monthNames[day.Month()]
}

// EventsByDate builds the date keyed lookup used by the calendar grid. The
// map is computed once per render and queried per day cell.
func EventsByDate(events []Event) map[string][]Event {
	byDate := make(map[string][]Event, len(events))
	for _, e := range events {
		byDate[e.Date] = append(byDate[e.Date], e)
	}
	return byDate
}
