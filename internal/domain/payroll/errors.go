package payroll

import "errors"

var (
	ErrSalaryDetailNotFound      = errors.New("salary detail not found")
	ErrSalaryDetailAlreadyExists = errors.New("salary detail already exists for this period")
	ErrMonthlyReportNotConfirmed = errors.New("no confirmed monthly report for this period")
	ErrInvalidStatusTransition   = errors.New("salary detail status does not allow this transition")
	ErrNoEmployeesSelected       = errors.New("no active employees matched the request")
)
