package schedule

import (
	"fmt"
	"time"
)

// maxCellEvents caps how many events a day cell renders before collapsing
// the remainder into an overflow count.
const maxCellEvents = 3

// DaysInMonth returns the number of days in the month. Day zero of the
// following month resolves variable month lengths and leap years.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekdayOffset returns the Monday-start column (0-6) of the first day
// of the month: Go's Sunday index 0 remaps to 6, every other weekday shifts
// down by one.
func FirstWeekdayOffset(year int, month time.Month) int {
	weekday := int(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday())
	if weekday == 0 {
		return 6
	}
	return weekday - 1
}

// DayCell is a single date cell of the month grid.
type DayCell struct {
	Day      int
	Date     string
	Today    bool
	Events   []Event
	Overflow int
}

// MonthGrid is the computed layout for one month of the calendar view.
type MonthGrid struct {
	Year          int
	Month         time.Month
	LeadingBlanks int
	Cells         []DayCell
}

// BuildMonthGrid lays out the given month: leading blank cells up to the
// Monday-start offset, then one cell per day with at most maxCellEvents
// events and an overflow count for the rest.
func BuildMonthGrid(year int, month time.Month, events []Event, now time.Time) MonthGrid {
	byDate := EventsByDate(events)
	today := DateString(now)

	grid := MonthGrid{
		Year:          year,
		Month:         month,
		LeadingBlanks: FirstWeekdayOffset(year, month),
	}

	days := DaysInMonth(year, month)
	grid.Cells = make([]DayCell, 0, days)
	for day := 1; day <= days; day++ {
		date := fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
		dayEvents := byDate[date]

		cell := DayCell{Day: day, Date: date, Today: date == today}
		if len(dayEvents) > maxCellEvents {
			cell.Events = dayEvents[:maxCellEvents]
			cell.Overflow = len(dayEvents) - maxCellEvents
		} else {
			cell.Events = dayEvents
		}
		grid.Cells = append(grid.Cells, cell)
	}
	return grid
}
