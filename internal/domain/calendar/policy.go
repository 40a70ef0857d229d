package calendar

import (
	"time"
)

// Policy decides the working status of a calendar date.
type Policy interface {
	IsRestDay(date time.Time) bool
	IsLegalHoliday(date time.Time) bool
	// ExpectedWorkingDays counts the days in [start, end] that are neither
	// rest days nor legal holidays.
	ExpectedWorkingDays(start, end time.Time) int
}

// DayKind classifies a date for overtime bucketing. A date has exactly one kind.
type DayKind string

const (
	DayKindWorkday      DayKind = "workday"
	DayKindRestDay      DayKind = "rest_day"
	DayKindLegalHoliday DayKind = "legal_holiday"
)

// Classify returns the kind of date. Legal holidays win over rest days.
func Classify(p Policy, date time.Time) DayKind {
	switch {
	case p.IsLegalHoliday(date):
		return DayKindLegalHoliday
	case p.IsRestDay(date):
		return DayKindRestDay
	default:
		return DayKindWorkday
	}
}

// TablePolicy is a Policy backed by a fixed-date holiday table and a set of
// weekly rest days.
type TablePolicy struct {
	holidays HolidayTable
	restDays map[time.Weekday]struct{}
}

// NewTablePolicy builds a policy. With no rest days given, Saturday and Sunday are used.
func NewTablePolicy(holidays HolidayTable, restDays ...time.Weekday) *TablePolicy {
	if len(restDays) == 0 {
		restDays = []time.Weekday{time.Saturday, time.Sunday}
	}
	rd := make(map[time.Weekday]struct{}, len(restDays))
	for _, d := range restDays {
		rd[d] = struct{}{}
	}
	return &TablePolicy{holidays: holidays, restDays: rd}
}

// NewDefaultPolicy uses DefaultHolidays and a Saturday/Sunday weekend.
func NewDefaultPolicy() *TablePolicy {
	return NewTablePolicy(DefaultHolidays())
}

func (p *TablePolicy) IsRestDay(date time.Time) bool {
	_, ok := p.restDays[date.Weekday()]
	return ok
}

func (p *TablePolicy) IsLegalHoliday(date time.Time) bool {
	return p.holidays.Contains(date.Month(), date.Day())
}

func (p *TablePolicy) ExpectedWorkingDays(start, end time.Time) int {
	count := 0
	for _, d := range DaysIn(start, end) {
		if !p.IsRestDay(d) && !p.IsLegalHoliday(d) {
			count++
		}
	}
	return count
}
