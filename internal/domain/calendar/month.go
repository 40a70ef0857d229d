package calendar

import (
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// ParseMonth parses "YYYY-MM" into the first day of that month in UTC.
func ParseMonth(month string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return time.Time{}, ErrInvalidMonth
	}
	return t, nil
}

// MonthRange returns the first and last calendar day of a "YYYY-MM" month.
func MonthRange(month string) (time.Time, time.Time, error) {
	first, err := ParseMonth(month)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	last := first.AddDate(0, 1, -1)
	return first, last, nil
}

// MonthOf formats the month a date belongs to.
func MonthOf(date time.Time) string {
	return date.Format(MonthLayout)
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysIn lists every calendar day in [start, end]. It is empty when end is before start.
func DaysIn(start, end time.Time) []time.Time {
	start, end = DateOnly(start), DateOnly(end)
	if end.Before(start) {
		return nil
	}
	days := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// MonthsIn lists the distinct "YYYY-MM" months touched by the given dates, in first-seen order.
func MonthsIn(dates []time.Time) []string {
	seen := make(map[string]struct{})
	var months []string
	for _, d := range dates {
		m := MonthOf(d)
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		months = append(months, m)
	}
	return months
}
