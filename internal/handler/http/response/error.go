package response

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lrliang/hmf-ehr/internal/domain/auth"
	"github.com/lrliang/hmf-ehr/internal/domain/calendar"
	"github.com/lrliang/hmf-ehr/internal/domain/employee"
	"github.com/lrliang/hmf-ehr/internal/domain/payroll"
	"github.com/lrliang/hmf-ehr/internal/domain/report"
	"github.com/lrliang/hmf-ehr/internal/pkg/keylock"
	"github.com/lrliang/hmf-ehr/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")

	// Calendar
	case errors.Is(err, calendar.ErrInvalidMonth):
		BadRequest(w, "Month must be in YYYY-MM format", nil)

	// Employee
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Reports
	case errors.Is(err, report.ErrDailyReportNotFound):
		NotFound(w, "Daily report not found")
	case errors.Is(err, report.ErrMonthlyReportNotFound):
		NotFound(w, "Monthly report not found")
	case errors.Is(err, report.ErrReportAlreadyConfirmed):
		Conflict(w, "Monthly report already confirmed")
	case errors.Is(err, report.ErrReportLocked):
		Conflict(w, "Monthly report is locked")
	case errors.Is(err, report.ErrReportAlreadyExists):
		Conflict(w, "Report already exists")
	case errors.Is(err, report.ErrInvalidDateRange), errors.Is(err, report.ErrDateRangeTooLong):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, report.ErrNoEmployeesSelected):
		UnprocessableEntity(w, "No active employees matched the request")

	// Payroll
	case errors.Is(err, payroll.ErrSalaryDetailNotFound):
		NotFound(w, "Salary detail not found")
	case errors.Is(err, payroll.ErrSalaryDetailAlreadyExists):
		Conflict(w, "Salary detail already exists for this period")
	case errors.Is(err, payroll.ErrInvalidStatusTransition):
		Conflict(w, "Salary detail status does not allow this transition")
	case errors.Is(err, payroll.ErrMonthlyReportNotConfirmed):
		UnprocessableEntity(w, "No confirmed monthly report for this period")
	case errors.Is(err, payroll.ErrNoEmployeesSelected):
		UnprocessableEntity(w, "No active employees matched the request")

	// Infrastructure
	case errors.Is(err, keylock.ErrLockTimeout):
		ServiceUnavailable(w, "Another calculation holds this record, retry later")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		ServiceUnavailable(w, "Request was cancelled before it finished")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
