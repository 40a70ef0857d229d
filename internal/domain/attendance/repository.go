package attendance

import (
	"context"
	"time"
)

type PunchRepository interface {
	// ListByEmployeeAndDate returns the punches of one employee on one date,
	// ordered by scheduled time.
	ListByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]Punch, error)
}
