package report

import (
	"context"
	"time"
)

// DailyReportRepository owns persistence of daily reports.
// Upsert is last-writer-wins on (employee_id, report_date).
type DailyReportRepository interface {
	GetByID(ctx context.Context, id string) (DailyReport, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (DailyReport, error)
	Upsert(ctx context.Context, report DailyReport) (DailyReport, error)
	ListByEmployeeAndRange(ctx context.Context, employeeID string, start, end time.Time) ([]DailyReport, error)
	List(ctx context.Context, filter DailyReportFilter) ([]DailyReport, int64, error)
}

// MonthlyReportRepository owns persistence of monthly reports and their
// confirmation workflow. Upsert never overwrites confirmation fields of an
// existing row.
type MonthlyReportRepository interface {
	GetByID(ctx context.Context, id string) (MonthlyReport, error)
	GetByEmployeeAndMonth(ctx context.Context, employeeID string, month string) (MonthlyReport, error)
	Upsert(ctx context.Context, report MonthlyReport) (MonthlyReport, error)
	// Confirm moves a report to confirmed. It returns ErrReportAlreadyConfirmed
	// or ErrReportLocked without touching the row when the report is final.
	Confirm(ctx context.Context, id string, confirmedBy *string, remark *string, at time.Time) (MonthlyReport, error)
	List(ctx context.Context, filter MonthlyReportFilter) ([]MonthlyReport, int64, error)
	CountByStatus(ctx context.Context, month string) ([]MonthlyStatusCount, error)
}
