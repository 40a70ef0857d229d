package payroll

import (
	"time"

	"github.com/lrliang/hmf-ehr/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== CALCULATION DTOs ==========

type CalculateSalaryRequest struct {
	ReportMonth      string   `json:"report_month" validate:"required"`
	EmployeeIDs      []string `json:"employee_ids,omitempty" validate:"omitempty,max=500,dive,uuid"` // Empty = all active employees
	ForceRecalculate bool     `json:"force_recalculate"`
}

func (r *CalculateSalaryRequest) Validate() error {
	errs := validator.Struct(r)

	if r.ReportMonth != "" {
		if _, ok := validator.IsValidMonth(r.ReportMonth); !ok {
			errs = append(errs, validator.ValidationError{Field: "report_month", Message: "must be in YYYY-MM format"})
		}
	}

	return errs.OrNil()
}

type BatchCalculateSalaryRequest struct {
	ReportMonths     []string `json:"report_months" validate:"required,min=1,max=24"`
	EmployeeIDs      []string `json:"employee_ids,omitempty" validate:"omitempty,max=500,dive,uuid"`
	ForceRecalculate bool     `json:"force_recalculate"`
}

func (r *BatchCalculateSalaryRequest) Validate() error {
	errs := validator.Struct(r)

	for _, m := range r.ReportMonths {
		if _, ok := validator.IsValidMonth(m); !ok {
			errs = append(errs, validator.ValidationError{Field: "report_months", Message: "each month must be in YYYY-MM format"})
			break
		}
	}

	return errs.OrNil()
}

type SalaryCalculationResult struct {
	EmployeeID     string  `json:"employee_id"`
	EmployeeNo     string  `json:"employee_no"`
	EmployeeName   string  `json:"employee_name"`
	ReportMonth    string  `json:"report_month"`
	Success        bool    `json:"success"`
	Skipped        bool    `json:"skipped,omitempty"`
	Error          *string `json:"error,omitempty"`
	SalaryDetailID *string `json:"salary_detail_id,omitempty"`
}

type CalculateSalaryResponse struct {
	ReportMonth  string                    `json:"report_month"`
	TotalCount   int                       `json:"total_count"`
	SuccessCount int                       `json:"success_count"`
	FailureCount int                       `json:"failure_count"`
	Results      []SalaryCalculationResult `json:"results"`
	ErrorSummary []string                  `json:"error_summary,omitempty"`
}

// ========== STATUS DTOs ==========

type UpdateSalaryStatusRequest struct {
	ID     string  `json:"-"`
	Actor  *string `json:"-"`
	Remark *string `json:"remark,omitempty" validate:"omitempty,max=500"`
}

func (r *UpdateSalaryStatusRequest) Validate() error {
	errs := validator.Struct(r)
	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "must be a valid UUID"})
	}
	return errs.OrNil()
}

// ========== QUERY DTOs ==========

type SalaryDetailFilter struct {
	EmployeeID  *string `json:"employee_id,omitempty"`
	ReportMonth *string `json:"report_month,omitempty"`
	Status      *string `json:"status,omitempty"`
	Page        int     `json:"page"`
	Limit       int     `json:"limit"`
}

func (f *SalaryDetailFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "must be a valid UUID"})
	}
	if f.ReportMonth != nil {
		if _, ok := validator.IsValidMonth(*f.ReportMonth); !ok {
			errs = append(errs, validator.ValidationError{Field: "report_month", Message: "must be in YYYY-MM format"})
		}
	}
	if f.Status != nil {
		valid := false
		for _, s := range SalaryStatuses {
			if string(s) == *f.Status {
				valid = true
				break
			}
		}
		if !valid {
			errs = append(errs, validator.ValidationError{Field: "status", Message: "must be one of: draft, calculated, confirmed, paid, cancelled"})
		}
	}

	return errs.OrNil()
}

type SalaryDetailResponse struct {
	ID                     string          `json:"id"`
	EmployeeID             string          `json:"employee_id"`
	MonthlyReportID        string          `json:"monthly_report_id"`
	ReportMonth            string          `json:"report_month"`
	EmployeeNo             string          `json:"employee_no"`
	EmployeeName           string          `json:"employee_name"`
	ExpectedWorkingDays    decimal.Decimal `json:"expected_working_days"`
	ActualWorkingDays      decimal.Decimal `json:"actual_working_days"`
	BaseSalary             decimal.Decimal `json:"base_salary"`
	AttendanceSalary       decimal.Decimal `json:"attendance_salary"`
	PersonalLeaveDeduction decimal.Decimal `json:"personal_leave_deduction"`
	OvertimePay            decimal.Decimal `json:"overtime_pay"`
	AllowanceAndBonus      decimal.Decimal `json:"allowance_and_bonus"`
	GrossSalary            decimal.Decimal `json:"gross_salary"`
	SocialInsurance        decimal.Decimal `json:"social_insurance"`
	HousingFund            decimal.Decimal `json:"housing_fund"`
	IncomeTax              decimal.Decimal `json:"income_tax"`
	MealFee                decimal.Decimal `json:"meal_fee"`
	OtherDeductions        decimal.Decimal `json:"other_deductions"`
	NetSalary              decimal.Decimal `json:"net_salary"`
	Status                 string          `json:"status"`
	CalculatedAt           *string         `json:"calculated_at,omitempty"`
	ConfirmedAt            *string         `json:"confirmed_at,omitempty"`
	ConfirmedBy            *string         `json:"confirmed_by,omitempty"`
	PaidAt                 *string         `json:"paid_at,omitempty"`
	PaidBy                 *string         `json:"paid_by,omitempty"`
	Remark                 *string         `json:"remark,omitempty"`
	CalculationSnapshot    Snapshot        `json:"calculation_snapshot"`
}

type ListSalaryDetailResponse struct {
	Data       []SalaryDetailResponse `json:"data"`
	TotalCount int64                  `json:"total_count"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
}

type SalaryStatisticsResponse struct {
	ReportMonth        string          `json:"report_month"`
	TotalCount         int             `json:"total_count"`
	TotalGrossSalary   decimal.Decimal `json:"total_gross_salary"`
	TotalNetSalary     decimal.Decimal `json:"total_net_salary"`
	TotalDeductions    decimal.Decimal `json:"total_deductions"`
	AverageGrossSalary decimal.Decimal `json:"average_gross_salary"`
	StatusDistribution map[string]int  `json:"status_distribution"`
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func ToSalaryDetailResponse(d SalaryDetail) SalaryDetailResponse {
	return SalaryDetailResponse{
		ID:                     d.ID,
		EmployeeID:             d.EmployeeID,
		MonthlyReportID:        d.MonthlyReportID,
		ReportMonth:            d.ReportMonth,
		EmployeeNo:             d.EmployeeNo,
		EmployeeName:           d.EmployeeName,
		ExpectedWorkingDays:    d.ExpectedWorkingDays,
		ActualWorkingDays:      d.ActualWorkingDays,
		BaseSalary:             d.BaseSalary,
		AttendanceSalary:       d.AttendanceSalary,
		PersonalLeaveDeduction: d.PersonalLeaveDeduction,
		OvertimePay:            d.OvertimePay,
		AllowanceAndBonus:      d.AllowanceAndBonus,
		GrossSalary:            d.GrossSalary,
		SocialInsurance:        d.SocialInsurance,
		HousingFund:            d.HousingFund,
		IncomeTax:              d.IncomeTax,
		MealFee:                d.MealFee,
		OtherDeductions:        d.OtherDeductions,
		NetSalary:              d.NetSalary,
		Status:                 string(d.Status),
		CalculatedAt:           formatTime(d.CalculatedAt),
		ConfirmedAt:            formatTime(d.ConfirmedAt),
		ConfirmedBy:            d.ConfirmedBy,
		PaidAt:                 formatTime(d.PaidAt),
		PaidBy:                 d.PaidBy,
		Remark:                 d.Remark,
		CalculationSnapshot:    d.CalculationSnapshot,
	}
}
