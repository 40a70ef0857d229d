package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is the read-only view of the employee directory used by the
// report and payroll pipeline.
type Employee struct {
	ID         string
	EmployeeNo string
	Name       string
	BaseSalary decimal.Decimal
	Status     EmploymentStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive   EmploymentStatus = "active"
	EmploymentStatusInactive EmploymentStatus = "inactive"
	EmploymentStatusResigned EmploymentStatus = "resigned"
)

func (e Employee) IsActive() bool {
	return e.Status == EmploymentStatusActive
}
