package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalaryStatus enum
type SalaryStatus string

const (
	SalaryStatusDraft      SalaryStatus = "draft"
	SalaryStatusCalculated SalaryStatus = "calculated"
	SalaryStatusConfirmed  SalaryStatus = "confirmed"
	SalaryStatusPaid       SalaryStatus = "paid"
	SalaryStatusCancelled  SalaryStatus = "cancelled"
)

var SalaryStatuses = []SalaryStatus{
	SalaryStatusDraft,
	SalaryStatusCalculated,
	SalaryStatusConfirmed,
	SalaryStatusPaid,
	SalaryStatusCancelled,
}

// CanTransitionTo reports whether a salary detail in status s may move to next.
func (s SalaryStatus) CanTransitionTo(next SalaryStatus) bool {
	switch next {
	case SalaryStatusConfirmed:
		return s == SalaryStatusCalculated
	case SalaryStatusPaid:
		return s == SalaryStatusConfirmed
	case SalaryStatusCancelled:
		return s == SalaryStatusDraft || s == SalaryStatusCalculated || s == SalaryStatusConfirmed
	}
	return false
}

// Breakdown - intermediate values of one payroll calculation
type Breakdown struct {
	BaseSalary             decimal.Decimal `json:"base_salary"`
	DailyWage              decimal.Decimal `json:"daily_wage"`
	HourlyWage             decimal.Decimal `json:"hourly_wage"`
	PayableDays            decimal.Decimal `json:"payable_days"`
	ExpectedWorkingDays    decimal.Decimal `json:"expected_working_days"`
	ActualWorkingDays      decimal.Decimal `json:"actual_working_days"`
	AttendanceRatio        decimal.Decimal `json:"attendance_ratio"`
	NormalAttendanceSalary decimal.Decimal `json:"normal_attendance_salary"`
	PersonalLeaveDeduction decimal.Decimal `json:"personal_leave_deduction"`
	WorkdayOvertimePay     decimal.Decimal `json:"workday_overtime_pay"`
	WeekendOvertimePay     decimal.Decimal `json:"weekend_overtime_pay"`
	HolidayOvertimePay     decimal.Decimal `json:"holiday_overtime_pay"`
	TotalOvertimePay       decimal.Decimal `json:"total_overtime_pay"`
	AllowanceAndBonus      decimal.Decimal `json:"allowance_and_bonus"`
	AttendanceSalary       decimal.Decimal `json:"attendance_salary"`
	GrossSalary            decimal.Decimal `json:"gross_salary"`
	Deductions             Deductions      `json:"deductions"`
	NetSalary              decimal.Decimal `json:"net_salary"`
}

type SnapshotEmployee struct {
	ID         string          `json:"id"`
	EmployeeNo string          `json:"employee_no"`
	Name       string          `json:"name"`
	BaseSalary decimal.Decimal `json:"base_salary"`
}

type SnapshotMonthlyReport struct {
	ID                        string          `json:"id"`
	ExpectedWorkingDays       decimal.Decimal `json:"expected_working_days"`
	ActualWorkingDays         decimal.Decimal `json:"actual_working_days"`
	PersonalLeaveDays         decimal.Decimal `json:"personal_leave_days"`
	WeekendOvertimeHours      decimal.Decimal `json:"weekend_overtime_hours"`
	LegalHolidayOvertimeHours decimal.Decimal `json:"legal_holiday_overtime_hours"`
}

// Snapshot is stored with every salary detail so a payslip can be explained later.
type Snapshot struct {
	Calculation   Breakdown             `json:"calculation"`
	Employee      SnapshotEmployee      `json:"employee"`
	MonthlyReport SnapshotMonthlyReport `json:"monthly_report"`
}

// SalaryDetail - one employee, one month. Unique on (EmployeeID, ReportMonth).
type SalaryDetail struct {
	ID                     string
	EmployeeID             string
	MonthlyReportID        string
	ReportMonth            string
	EmployeeNo             string
	EmployeeName           string
	ExpectedWorkingDays    decimal.Decimal
	ActualWorkingDays      decimal.Decimal
	BaseSalary             decimal.Decimal
	AttendanceSalary       decimal.Decimal
	PersonalLeaveDeduction decimal.Decimal
	OvertimePay            decimal.Decimal
	AllowanceAndBonus      decimal.Decimal
	GrossSalary            decimal.Decimal
	SocialInsurance        decimal.Decimal
	HousingFund            decimal.Decimal
	IncomeTax              decimal.Decimal
	MealFee                decimal.Decimal
	OtherDeductions        decimal.Decimal
	NetSalary              decimal.Decimal
	Status                 SalaryStatus
	CalculatedAt           *time.Time
	ConfirmedAt            *time.Time
	ConfirmedBy            *string
	PaidAt                 *time.Time
	PaidBy                 *string
	Remark                 *string
	CalculationSnapshot    Snapshot
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// TotalDeductions sums the statutory and other deduction columns.
func (d SalaryDetail) TotalDeductions() decimal.Decimal {
	return decimal.Sum(d.SocialInsurance, d.HousingFund, d.IncomeTax, d.MealFee, d.OtherDeductions)
}

// SalaryStatistics - aggregate from salary_details for one month
type SalaryStatistics struct {
	ReportMonth     string
	TotalCount      int
	TotalGross      decimal.Decimal
	TotalNet        decimal.Decimal
	TotalDeductions decimal.Decimal
	StatusCounts    map[SalaryStatus]int
}
