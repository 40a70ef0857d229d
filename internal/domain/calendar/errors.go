package calendar

import "errors"

var (
	ErrInvalidMonth   = errors.New("month must be in YYYY-MM format")
	ErrInvalidHoliday = errors.New("holiday month/day is out of range")
)
