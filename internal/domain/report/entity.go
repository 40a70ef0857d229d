package report

import (
	"time"

	"github.com/lrliang/hmf-ehr/internal/domain/leave"
	"github.com/shopspring/decimal"
)

// CalculationStatus enum
type CalculationStatus string

const (
	CalculationStatusPending    CalculationStatus = "pending"
	CalculationStatusProcessing CalculationStatus = "processing"
	CalculationStatusSuccess    CalculationStatus = "success"
	CalculationStatusFailed     CalculationStatus = "failed"
)

// DailyStatus is the coarse attendance label of a day.
type DailyStatus string

const (
	DailyStatusNormal            DailyStatus = "normal"
	DailyStatusLate              DailyStatus = "late"
	DailyStatusEarlyLeave        DailyStatus = "early_leave"
	DailyStatusLateAndEarlyLeave DailyStatus = "late_and_early_leave"
	DailyStatusOvertime          DailyStatus = "overtime"
	DailyStatusAbsent            DailyStatus = "absent"
)

// DailyReport - one employee, one day. Unique on (EmployeeID, ReportDate).
type DailyReport struct {
	ID                        string
	EmployeeID                string
	EmployeeNo                string
	EmployeeName              string
	ReportDate                time.Time
	FirstCheckIn              *time.Time
	LastCheckOut              *time.Time
	Status                    DailyStatus
	Leave                     leave.Days
	LegalHolidayDays          decimal.Decimal
	MakeupCount               int
	LateMinutes               int
	EarlyLeaveMinutes         int
	ActualWorkingHours        decimal.Decimal
	WorkdayOvertimeHours      decimal.Decimal
	WeekendOvertimeHours      decimal.Decimal
	LegalHolidayOvertimeHours decimal.Decimal
	BusinessTripHours         decimal.Decimal
	IsAbsent                  bool
	CalculationStatus         CalculationStatus
	CalculationMessage        string
	LastCalculatedAt          *time.Time
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// ConfirmationStatus enum
type ConfirmationStatus string

const (
	ConfirmationStatusDraft     ConfirmationStatus = "draft"
	ConfirmationStatusPending   ConfirmationStatus = "pending"
	ConfirmationStatusConfirmed ConfirmationStatus = "confirmed"
	ConfirmationStatusRejected  ConfirmationStatus = "rejected"
	ConfirmationStatusLocked    ConfirmationStatus = "locked"
)

var ConfirmationStatuses = []ConfirmationStatus{
	ConfirmationStatusDraft,
	ConfirmationStatusPending,
	ConfirmationStatusConfirmed,
	ConfirmationStatusRejected,
	ConfirmationStatusLocked,
}

// IsFinal reports whether machine recalculation must leave the report alone.
func (s ConfirmationStatus) IsFinal() bool {
	return s == ConfirmationStatusConfirmed || s == ConfirmationStatusLocked
}

// MonthlySnapshot is the audit trail stamped on every aggregation.
type MonthlySnapshot struct {
	DailyReportCount int       `json:"daily_report_count"`
	CalculatedAt     time.Time `json:"calculated_at"`
	DailyReportIDs   []string  `json:"daily_report_ids"`
}

// MonthlyReport - one employee, one month. Unique on (EmployeeID, ReportMonth).
type MonthlyReport struct {
	ID                         string
	EmployeeID                 string
	EmployeeNo                 string
	EmployeeName               string
	ReportMonth                string // YYYY-MM
	ExpectedWorkingDays        decimal.Decimal
	ActualWorkingDays          decimal.Decimal
	LegalHolidayDays           decimal.Decimal
	AbsentDays                 int
	Leave                      leave.Days
	TotalLateMinutes           int
	TotalEarlyLeaveMinutes     int
	MakeupCount                int
	WorkdayOvertimeHours       decimal.Decimal
	WeekendOvertimeHours       decimal.Decimal
	LegalHolidayOvertimeHours  decimal.Decimal
	BusinessTripHours          decimal.Decimal
	BusinessTripNightAllowance decimal.Decimal
	WorkingDayDutyAllowance    decimal.Decimal
	CalculationSnapshot        MonthlySnapshot
	ConfirmationStatus         ConfirmationStatus
	ConfirmationInitiatedAt    *time.Time
	ConfirmationCompletedAt    *time.Time
	ConfirmedBy                *string
	Remark                     *string
	LastCalculatedAt           *time.Time
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// MonthlyStatusCount - aggregate from monthly reports grouped by status
type MonthlyStatusCount struct {
	Status ConfirmationStatus
	Count  int
}
