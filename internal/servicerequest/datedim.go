package servicerequest

import (
	"fmt"
	"time"
)

// BuildDateDimension emits one row per calendar day between the earliest and latest
// of the given timestamps, inclusive. No timestamps means no rows.
func BuildDateDimension(timestamps []time.Time) []DateDimensionRow {
	if len(timestamps) == 0 {
		return nil
	}

	first, last := DateOf(timestamps[0]), DateOf(timestamps[0])
	for _, ts := range timestamps[1:] {
		d := DateOf(ts)
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}

	var rows []DateDimensionRow
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		rows = append(rows, NewDateDimensionRow(d))
	}
	return rows
}

// NewDateDimensionRow describes a single calendar day.
func NewDateDimensionRow(t time.Time) DateDimensionRow {
	d := DateOf(t)
	month := int(d.Month())
	quarter := (month-1)/3 + 1

	return DateDimensionRow{
		Date:         d,
		MonthName:    d.Month().String(),
		Month:        month,
		Year:         d.Year(),
		Quarter:      fmt.Sprintf("Q%d", quarter),
		WeekStart:    WeekStart(d),
		MonthStart:   time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC),
		QuarterStart: time.Date(d.Year(), time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC),
		YearStart:    time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// WeekStart returns the most recent Saturday on or before t. Weeks start on Saturday.
func WeekStart(t time.Time) time.Time {
	d := DateOf(t)
	back := (int(d.Weekday()) + 1) % 7
	return d.AddDate(0, 0, -back)
}
