package schedule

import (
	"testing"
	"time"
)

func sampleEvents() []Event {
	return []Event{
		{ID: "1", Title: "Встреча с избирателями", Type: TypeMeeting, Date: "2025-10-12", Time: "10:00", Status: StatusScheduled},
		{ID: "2", Title: "ВКС с министерством", Type: TypeVKS, Date: "2025-10-10", Time: "09:00", Status: StatusScheduled, Description: "квартальный отчет"},
		{ID: "3", Title: "Слушания", Type: TypeHearing, Date: "2025-10-08", Time: "14:00", Status: StatusCompleted},
		{ID: "4", Title: "Заседание комитета", Type: TypeCommittee, Date: "2025-10-11", Time: "11:00", Status: StatusCancelled},
		{ID: "5", Title: "Прием граждан", Type: TypeReception, Date: "2025-10-09", Time: "16:00", Status: StatusArchived},
		{ID: "6", Title: "Выезд в регион", Type: TypeRegionalTrip, Date: "2025-10-20", Time: "00:00", Status: StatusInProgress},
	}
}

func TestPartition_ExactSplit(t *testing.T) {
	t.Parallel()

	events := sampleEvents()
	active, archived := Partition(events, Filter{})

	if got := len(active) + len(archived); got != len(events) {
		t.Fatalf("partition dropped or duplicated events: %d + %d != %d", len(active), len(archived), len(events))
	}

	seen := make(map[string]int)
	for _, e := range active {
		seen[e.ID]++
		if Terminal(e.Status) {
			t.Errorf("terminal event %s in active view", e.ID)
		}
	}
	for _, e := range archived {
		seen[e.ID]++
		if !Terminal(e.Status) {
			t.Errorf("non-terminal event %s in archive view", e.ID)
		}
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("event %s appeared %d times", id, count)
		}
	}
}

func TestPartition_SortOrder(t *testing.T) {
	t.Parallel()

	active, archived := Partition(sampleEvents(), Filter{})

	for i := 1; i < len(active); i++ {
		if active[i-1].Date > active[i].Date {
			t.Errorf("active not ascending at %d: %s > %s", i, active[i-1].Date, active[i].Date)
		}
	}
	for i := 1; i < len(archived); i++ {
		if archived[i-1].Date < archived[i].Date {
			t.Errorf("archived not descending at %d: %s < %s", i, archived[i-1].Date, archived[i].Date)
		}
	}
}

func TestFilter_Matches(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		filter Filter
		event  Event
		want   bool
	}{
		{
			name:   "matches title case-insensitively",
			filter: Filter{Query: "встреча"},
			event:  Event{Title: "Встреча с избирателями"},
			want:   true,
		},
		{
			name:   "matches description",
			filter: Filter{Query: "отчет"},
			event:  Event{Title: "ВКС", Description: "квартальный отчет"},
			want:   true,
		},
		{
			name:   "empty description does not match query",
			filter: Filter{Query: "отчет"},
			event:  Event{Title: "ВКС"},
			want:   false,
		},
		{
			name:   "type filter excludes other types",
			filter: Filter{Type: TypeVKS},
			event:  Event{Title: "Встреча", Type: TypeMeeting},
			want:   false,
		},
		{
			name:   "all type passes everything",
			filter: Filter{Type: FilterAll},
			event:  Event{Title: "Встреча", Type: TypeMeeting},
			want:   true,
		},
		{
			name:   "query and type must both match",
			filter: Filter{Query: "встреча", Type: TypeMeeting},
			event:  Event{Title: "Встреча", Type: TypeMeeting},
			want:   true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.filter.Matches(tc.event); got != tc.want {
				t.Errorf("Matches() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestGroupByDay(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 10, 10, 12, 0, 0, 0, time.UTC)
	events := []Event{
		{ID: "a", Date: "2025-10-11", Time: "15:00"},
		{ID: "b", Date: "2025-10-10", Time: "09:30"},
		{ID: "c", Date: "2025-10-10", Time: "08:00"},
		{ID: "d", Date: "2025-10-13", Time: "10:00"},
	}

	groups := GroupByDay(events, now)
	if len(groups) != 3 {
		t.Fatalf("expected 3 day groups, got %d", len(groups))
	}

	if groups[0].Date != "2025-10-10" || groups[1].Date != "2025-10-11" || groups[2].Date != "2025-10-13" {
		t.Fatalf("groups not in ascending date order: %s, %s, %s", groups[0].Date, groups[1].Date, groups[2].Date)
	}

	if groups[0].Events[0].ID != "c" || groups[0].Events[1].ID != "b" {
		t.Errorf("events within a day not ordered by time: %s, %s", groups[0].Events[0].ID, groups[0].Events[1].ID)
	}

	if groups[0].Label != "Сегодня" || !groups[0].Today {
		t.Errorf("current day labeled %q, today=%v", groups[0].Label, groups[0].Today)
	}
	if groups[1].Label != "Завтра" {
		t.Errorf("next day labeled %q", groups[1].Label)
	}
	if want := "понедельник, 13 октября"; groups[2].Label != want {
		t.Errorf("weekday label = %q, want %q", groups[2].Label, want)
	}
}

func TestDayLabel_CalendarDayEquality(t *testing.T) {
	t.Parallel()

	// 23:59 on the 10th: the 11th is still "tomorrow" even though fewer
	// than 24 hours away.
	now := time.Date(2025, 10, 10, 23, 59, 0, 0, time.UTC)
	if got := DayLabel("2025-10-11", now); got != "Завтра" {
		t.Errorf(`DayLabel(next calendar day) = %q, want "Завтра"`, got)
	}
	if got := DayLabel("2025-10-10", now); got != "Сегодня" {
		t.Errorf(`DayLabel(same calendar day) = %q, want "Сегодня"`, got)
	}
}

func TestNormalize_RegionalTrip(t *testing.T) {
	t.Parallel()

	e := Normalize(Event{
		Type:    TypeRegionalTrip,
		Date:    "2025-10-09",
		EndDate: "2025-10-11",
		Time:    "10:00",
		EndTime: "18:00",
	})

	if e.Time != "00:00" || e.EndTime != "23:59" {
		t.Errorf("regional trip times not forced: %s - %s", e.Time, e.EndTime)
	}
	if !e.IsMultiDay {
		t.Error("multi-day span not flagged")
	}
}
