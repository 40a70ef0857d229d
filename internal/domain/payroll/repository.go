package payroll

import (
	"context"
	"time"
)

// SalaryDetailRepository defines data access methods for salary details.
type SalaryDetailRepository interface {
	GetByID(ctx context.Context, id string) (SalaryDetail, error)
	GetByEmployeeAndMonth(ctx context.Context, employeeID string, month string) (SalaryDetail, error)
	// Upsert writes the calculated columns and resets status to calculated.
	Upsert(ctx context.Context, detail SalaryDetail) (SalaryDetail, error)
	// UpdateStatus moves a row from one of `from` to `to`, stamping actor and time.
	// A nil remark keeps the stored one. It returns ErrInvalidStatusTransition
	// when the current status is not in `from`.
	UpdateStatus(ctx context.Context, id string, from []SalaryStatus, to SalaryStatus, actor, remark *string, at time.Time) (SalaryDetail, error)
	List(ctx context.Context, filter SalaryDetailFilter) ([]SalaryDetail, int64, error)
	GetStatistics(ctx context.Context, month string) (SalaryStatistics, error)
}
