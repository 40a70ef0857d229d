package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Days holds the leave taken on one day, per category, in days.
type Days struct {
	Annual      decimal.Decimal `json:"annual_leave_days"`
	Personal    decimal.Decimal `json:"personal_leave_days"`
	Sick        decimal.Decimal `json:"sick_leave_days"`
	Bereavement decimal.Decimal `json:"bereavement_leave_days"`
	Childcare   decimal.Decimal `json:"childcare_leave_days"`
	Maternity   decimal.Decimal `json:"maternity_leave_days"`
	Paternity   decimal.Decimal `json:"paternity_leave_days"`
}

func (d Days) Add(o Days) Days {
	return Days{
		Annual:      d.Annual.Add(o.Annual),
		Personal:    d.Personal.Add(o.Personal),
		Sick:        d.Sick.Add(o.Sick),
		Bereavement: d.Bereavement.Add(o.Bereavement),
		Childcare:   d.Childcare.Add(o.Childcare),
		Maternity:   d.Maternity.Add(o.Maternity),
		Paternity:   d.Paternity.Add(o.Paternity),
	}
}

func (d Days) Total() decimal.Decimal {
	return decimal.Sum(d.Annual, d.Personal, d.Sick, d.Bereavement, d.Childcare, d.Maternity, d.Paternity)
}

// Source supplies approved leave for an employee on a date.
type Source interface {
	DaysFor(ctx context.Context, employeeID string, date time.Time) (Days, error)
}

// NoopSource reports no leave. It stands in until leave requests are
// integrated with the attendance pipeline.
type NoopSource struct{}

func (NoopSource) DaysFor(context.Context, string, time.Time) (Days, error) {
	return Days{}, nil
}
