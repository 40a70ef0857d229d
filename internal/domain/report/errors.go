package report

import "errors"

var (
	ErrDailyReportNotFound    = errors.New("daily report not found")
	ErrMonthlyReportNotFound  = errors.New("monthly report not found")
	ErrReportAlreadyExists    = errors.New("report already exists for this key")
	ErrReportAlreadyConfirmed = errors.New("monthly report already confirmed")
	ErrReportLocked           = errors.New("monthly report is locked")
	ErrInvalidDateRange       = errors.New("end date must not be before start date")
	ErrDateRangeTooLong       = errors.New("date range exceeds the allowed number of days")
	ErrNoEmployeesSelected    = errors.New("no active employees matched the request")
)
