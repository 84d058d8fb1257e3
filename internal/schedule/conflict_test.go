package schedule

import "testing"

func TestTripRangeConflicts(t *testing.T) {
	t.Parallel()

	events := []Event{
		{ID: "busy", Date: "2025-10-10", Status: StatusScheduled},
		{ID: "done", Date: "2025-10-10", Status: StatusCompleted},
		{ID: "later", Date: "2025-10-15", Status: StatusScheduled},
	}

	t.Run("inclusive range catches occupied day", func(t *testing.T) {
		t.Parallel()
		conflicts := TripRangeConflicts(events, "2025-10-09", "2025-10-11", "")
		if len(conflicts) != 1 || conflicts[0].ID != "busy" {
			t.Fatalf("expected single conflict with busy, got %v", conflicts)
		}
	})

	t.Run("boundary day conflicts", func(t *testing.T) {
		t.Parallel()
		if got := TripRangeConflicts(events, "2025-10-10", "2025-10-10", ""); len(got) != 1 {
			t.Fatalf("expected conflict on boundary day, got %v", got)
		}
	})

	t.Run("empty end means single day", func(t *testing.T) {
		t.Parallel()
		if got := TripRangeConflicts(events, "2025-10-09", "", ""); len(got) != 0 {
			t.Fatalf("expected no conflicts, got %v", got)
		}
	})

	t.Run("edited event ignores itself", func(t *testing.T) {
		t.Parallel()
		if got := TripRangeConflicts(events, "2025-10-10", "2025-10-10", "busy"); len(got) != 0 {
			t.Fatalf("expected no conflicts when ignoring self, got %v", got)
		}
	})
}

func TestPastDue(t *testing.T) {
	t.Parallel()

	const nowDate, nowTime = "2025-10-10", "12:00"

	cases := []struct {
		name  string
		event Event
		want  bool
	}{
		{"earlier date", Event{Date: "2025-10-09", EndTime: "23:59"}, true},
		{"same date earlier end", Event{Date: "2025-10-10", EndTime: "11:30"}, true},
		{"same date later end", Event{Date: "2025-10-10", EndTime: "18:00"}, false},
		{"future date", Event{Date: "2025-10-11", EndTime: "09:00"}, false},
		{"end date extends event", Event{Date: "2025-10-08", EndDate: "2025-10-12", EndTime: "23:59"}, false},
		{"missing end time defaults to end of day", Event{Date: "2025-10-10"}, false},
		{"missing end time on earlier day", Event{Date: "2025-10-09"}, true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := PastDue(tc.event, nowDate, nowTime); got != tc.want {
				t.Errorf("PastDue() = %v, want %v", got, tc.want)
			}
		})
	}
}
