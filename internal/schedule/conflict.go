package schedule

// TripRangeConflicts returns the events whose day falls inside the
// inclusive [start, end] span of a planned regional trip. An empty end is
// treated as a single-day trip. ISO date strings compare lexicographically,
// so no parsing is needed.
func TripRangeConflicts(events []Event, start, end string, ignoreID string) []Event {
	if end == "" {
		end = start
	}
	var conflicts []Event
	for _, e := range events {
		if e.ID == ignoreID || Terminal(e.Status) {
			continue
		}
		if e.Date >= start && e.Date <= end {
			conflicts = append(conflicts, e)
		}
	}
	return conflicts
}

// PastDue reports whether the event's effective end instant is strictly
// before now: the effective end date is endDate falling back to date, the
// effective end time is endTime falling back to "23:59".
func PastDue(e Event, nowDate, nowTime string) bool {
	endDate := e.EndDate
	if endDate == "" {
		endDate = e.Date
	}
	endTime := e.EndTime
	if endTime == "" {
		endTime = "23:59"
	}
	if endDate < nowDate {
		return true
	}
	return endDate == nowDate && endTime < nowTime
}
