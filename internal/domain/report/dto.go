package report

import (
	"time"

	"github.com/lrliang/hmf-ehr/internal/domain/leave"
	"github.com/lrliang/hmf-ehr/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// MaxRangeDays bounds one on-demand daily calculation.
const MaxRangeDays = 93

// ========== TRIGGER DTOs ==========

type TriggerDailyCalculationRequest struct {
	EmployeeID       *string `json:"employee_id,omitempty" validate:"omitempty,uuid"`
	StartDate        *string `json:"start_date,omitempty"`
	EndDate          *string `json:"end_date,omitempty"`
	ForceRecalculate bool    `json:"force_recalculate"`
}

func (r *TriggerDailyCalculationRequest) Validate() error {
	errs := validator.Struct(r)

	var start, end time.Time
	var startOK, endOK bool
	if r.StartDate != nil {
		if start, startOK = validator.IsValidDate(*r.StartDate); !startOK {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be in YYYY-MM-DD format"})
		}
	}
	if r.EndDate != nil {
		if end, endOK = validator.IsValidDate(*r.EndDate); !endOK {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be in YYYY-MM-DD format"})
		}
	}
	if startOK && endOK {
		if end.Before(start) {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: ErrInvalidDateRange.Error()})
		} else if int(end.Sub(start).Hours()/24)+1 > MaxRangeDays {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: ErrDateRangeTooLong.Error()})
		}
	}

	return errs.OrNil()
}

// TriggerDateCalculationRequest recalculates one date. No employee IDs means
// every active employee.
type TriggerDateCalculationRequest struct {
	Date        string   `json:"date" validate:"required"`
	EmployeeIDs []string `json:"employee_ids,omitempty" validate:"omitempty,max=500,dive,uuid"`
}

func (r *TriggerDateCalculationRequest) Validate() error {
	errs := validator.Struct(r)

	if r.Date != "" {
		if _, ok := validator.IsValidDate(r.Date); !ok {
			errs = append(errs, validator.ValidationError{Field: "date", Message: "must be in YYYY-MM-DD format"})
		}
	}

	return errs.OrNil()
}

type TriggerMonthlyCalculationRequest struct {
	EmployeeID  *string `json:"employee_id,omitempty" validate:"omitempty,uuid"`
	ReportMonth string  `json:"report_month" validate:"required"`
}

func (r *TriggerMonthlyCalculationRequest) Validate() error {
	errs := validator.Struct(r)

	if r.ReportMonth != "" {
		if _, ok := validator.IsValidMonth(r.ReportMonth); !ok {
			errs = append(errs, validator.ValidationError{Field: "report_month", Message: "must be in YYYY-MM format"})
		}
	}

	return errs.OrNil()
}

type UnitErrorResponse struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date,omitempty"`
	Month      string `json:"month,omitempty"`
	Error      string `json:"error"`
}

type BatchResultResponse struct {
	JobID              string              `json:"job_id"`
	ProcessedCount     int                 `json:"processed_count"`
	SkippedCount       int                 `json:"skipped_count"`
	FailedCount        int                 `json:"failed_count"`
	MonthlyCount       int                 `json:"monthly_count"`
	MonthlyFailedCount int                 `json:"monthly_failed_count"`
	Errors             []UnitErrorResponse `json:"errors,omitempty"`
	StartedAt          string              `json:"started_at"`
	FinishedAt         string              `json:"finished_at"`
}

// ========== DAILY REPORT DTOs ==========

type DailyReportFilter struct {
	EmployeeID        *string `json:"employee_id,omitempty"`
	StartDate         *string `json:"start_date,omitempty"`
	EndDate           *string `json:"end_date,omitempty"`
	CalculationStatus *string `json:"calculation_status,omitempty"`
	Page              int     `json:"page"`
	Limit             int     `json:"limit"`
}

func (f *DailyReportFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "must be a valid UUID"})
	}
	if f.StartDate != nil {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be in YYYY-MM-DD format"})
		}
	}
	if f.EndDate != nil {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be in YYYY-MM-DD format"})
		}
	}
	if f.CalculationStatus != nil {
		switch CalculationStatus(*f.CalculationStatus) {
		case CalculationStatusPending, CalculationStatusProcessing, CalculationStatusSuccess, CalculationStatusFailed:
		default:
			errs = append(errs, validator.ValidationError{Field: "calculation_status", Message: "must be one of: pending, processing, success, failed"})
		}
	}

	return errs.OrNil()
}

type LeaveDaysResponse struct {
	Annual      decimal.Decimal `json:"annual"`
	Personal    decimal.Decimal `json:"personal"`
	Sick        decimal.Decimal `json:"sick"`
	Bereavement decimal.Decimal `json:"bereavement"`
	Childcare   decimal.Decimal `json:"childcare"`
	Maternity   decimal.Decimal `json:"maternity"`
	Paternity   decimal.Decimal `json:"paternity"`
}

type DailyReportResponse struct {
	ID                        string            `json:"id"`
	EmployeeID                string            `json:"employee_id"`
	EmployeeNo                string            `json:"employee_no"`
	EmployeeName              string            `json:"employee_name"`
	ReportDate                string            `json:"report_date"`
	FirstCheckIn              *string           `json:"first_check_in,omitempty"`
	LastCheckOut              *string           `json:"last_check_out,omitempty"`
	Status                    string            `json:"status"`
	LeaveDays                 LeaveDaysResponse `json:"leave_days"`
	LegalHolidayDays          decimal.Decimal   `json:"legal_holiday_days"`
	MakeupCount               int               `json:"makeup_count"`
	LateMinutes               int               `json:"late_minutes"`
	EarlyLeaveMinutes         int               `json:"early_leave_minutes"`
	ActualWorkingHours        decimal.Decimal   `json:"actual_working_hours"`
	WorkdayOvertimeHours      decimal.Decimal   `json:"workday_overtime_hours"`
	WeekendOvertimeHours      decimal.Decimal   `json:"weekend_overtime_hours"`
	LegalHolidayOvertimeHours decimal.Decimal   `json:"legal_holiday_overtime_hours"`
	BusinessTripHours         decimal.Decimal   `json:"business_trip_hours"`
	IsAbsent                  bool              `json:"is_absent"`
	CalculationStatus         string            `json:"calculation_status"`
	CalculationMessage        string            `json:"calculation_message,omitempty"`
	LastCalculatedAt          *string           `json:"last_calculated_at,omitempty"`
}

type ListDailyReportResponse struct {
	Data       []DailyReportResponse `json:"data"`
	TotalCount int64                 `json:"total_count"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
}

// ========== MONTHLY REPORT DTOs ==========

type MonthlyReportFilter struct {
	EmployeeID         *string `json:"employee_id,omitempty"`
	ReportMonth        *string `json:"report_month,omitempty"`
	ConfirmationStatus *string `json:"confirmation_status,omitempty"`
	Page               int     `json:"page"`
	Limit              int     `json:"limit"`
}

func (f *MonthlyReportFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "must be a valid UUID"})
	}
	if f.ReportMonth != nil {
		if _, ok := validator.IsValidMonth(*f.ReportMonth); !ok {
			errs = append(errs, validator.ValidationError{Field: "report_month", Message: "must be in YYYY-MM format"})
		}
	}
	if f.ConfirmationStatus != nil && !isConfirmationStatus(*f.ConfirmationStatus) {
		errs = append(errs, validator.ValidationError{Field: "confirmation_status", Message: "must be one of: draft, pending, confirmed, rejected, locked"})
	}

	return errs.OrNil()
}

func isConfirmationStatus(s string) bool {
	for _, st := range ConfirmationStatuses {
		if string(st) == s {
			return true
		}
	}
	return false
}

type MonthlyReportResponse struct {
	ID                         string            `json:"id"`
	EmployeeID                 string            `json:"employee_id"`
	EmployeeNo                 string            `json:"employee_no"`
	EmployeeName               string            `json:"employee_name"`
	ReportMonth                string            `json:"report_month"`
	ExpectedWorkingDays        decimal.Decimal   `json:"expected_working_days"`
	ActualWorkingDays          decimal.Decimal   `json:"actual_working_days"`
	LegalHolidayDays           decimal.Decimal   `json:"legal_holiday_days"`
	AbsentDays                 int               `json:"absent_days"`
	LeaveDays                  LeaveDaysResponse `json:"leave_days"`
	TotalLateMinutes           int               `json:"total_late_minutes"`
	TotalEarlyLeaveMinutes     int               `json:"total_early_leave_minutes"`
	MakeupCount                int               `json:"makeup_count"`
	WorkdayOvertimeHours       decimal.Decimal   `json:"workday_overtime_hours"`
	WeekendOvertimeHours       decimal.Decimal   `json:"weekend_overtime_hours"`
	LegalHolidayOvertimeHours  decimal.Decimal   `json:"legal_holiday_overtime_hours"`
	BusinessTripHours          decimal.Decimal   `json:"business_trip_hours"`
	BusinessTripNightAllowance decimal.Decimal   `json:"business_trip_night_allowance"`
	WorkingDayDutyAllowance    decimal.Decimal   `json:"working_day_duty_allowance"`
	CalculationSnapshot        MonthlySnapshot   `json:"calculation_snapshot"`
	ConfirmationStatus         string            `json:"confirmation_status"`
	ConfirmationInitiatedAt    *string           `json:"confirmation_initiated_at,omitempty"`
	ConfirmationCompletedAt    *string           `json:"confirmation_completed_at,omitempty"`
	ConfirmedBy                *string           `json:"confirmed_by,omitempty"`
	Remark                     *string           `json:"remark,omitempty"`
	LastCalculatedAt           *string           `json:"last_calculated_at,omitempty"`
}

type ListMonthlyReportResponse struct {
	Data       []MonthlyReportResponse `json:"data"`
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
}

type ConfirmMonthlyReportRequest struct {
	ID          string  `json:"-"`
	ConfirmedBy *string `json:"-"`
	Remark      *string `json:"remark,omitempty" validate:"omitempty,max=500"`
}

func (r *ConfirmMonthlyReportRequest) Validate() error {
	errs := validator.Struct(r)
	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "must be a valid UUID"})
	}
	return errs.OrNil()
}

type BatchConfirmMonthlyReportsRequest struct {
	ReportIDs   []string `json:"report_ids" validate:"required,min=1,max=500,dive,uuid"`
	ConfirmedBy *string  `json:"-"`
	Remark      *string  `json:"remark,omitempty" validate:"omitempty,max=500"`
}

func (r *BatchConfirmMonthlyReportsRequest) Validate() error {
	return validator.Struct(r).OrNil()
}

type BatchConfirmError struct {
	ReportID string `json:"report_id"`
	Error    string `json:"error"`
}

type BatchConfirmResponse struct {
	SuccessCount int                 `json:"success_count"`
	FailedCount  int                 `json:"failed_count"`
	Errors       []BatchConfirmError `json:"errors,omitempty"`
}

type MonthlyStatsResponse struct {
	ReportMonth      string          `json:"report_month"`
	TotalCount       int             `json:"total_count"`
	DraftCount       int             `json:"draft_count"`
	PendingCount     int             `json:"pending_count"`
	ConfirmedCount   int             `json:"confirmed_count"`
	RejectedCount    int             `json:"rejected_count"`
	LockedCount      int             `json:"locked_count"`
	ConfirmationRate decimal.Decimal `json:"confirmation_rate"`
}

// ========== MAPPERS ==========

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func toLeaveDaysResponse(d leave.Days) LeaveDaysResponse {
	return LeaveDaysResponse{
		Annual:      d.Annual,
		Personal:    d.Personal,
		Sick:        d.Sick,
		Bereavement: d.Bereavement,
		Childcare:   d.Childcare,
		Maternity:   d.Maternity,
		Paternity:   d.Paternity,
	}
}

func ToDailyReportResponse(r DailyReport) DailyReportResponse {
	return DailyReportResponse{
		ID:                        r.ID,
		EmployeeID:                r.EmployeeID,
		EmployeeNo:                r.EmployeeNo,
		EmployeeName:              r.EmployeeName,
		ReportDate:                r.ReportDate.Format("2006-01-02"),
		FirstCheckIn:              formatTime(r.FirstCheckIn),
		LastCheckOut:              formatTime(r.LastCheckOut),
		Status:                    string(r.Status),
		LeaveDays:                 toLeaveDaysResponse(r.Leave),
		LegalHolidayDays:          r.LegalHolidayDays,
		MakeupCount:               r.MakeupCount,
		LateMinutes:               r.LateMinutes,
		EarlyLeaveMinutes:         r.EarlyLeaveMinutes,
		ActualWorkingHours:        r.ActualWorkingHours,
		WorkdayOvertimeHours:      r.WorkdayOvertimeHours,
		WeekendOvertimeHours:      r.WeekendOvertimeHours,
		LegalHolidayOvertimeHours: r.LegalHolidayOvertimeHours,
		BusinessTripHours:         r.BusinessTripHours,
		IsAbsent:                  r.IsAbsent,
		CalculationStatus:         string(r.CalculationStatus),
		CalculationMessage:        r.CalculationMessage,
		LastCalculatedAt:          formatTime(r.LastCalculatedAt),
	}
}

func ToMonthlyReportResponse(r MonthlyReport) MonthlyReportResponse {
	return MonthlyReportResponse{
		ID:                         r.ID,
		EmployeeID:                 r.EmployeeID,
		EmployeeNo:                 r.EmployeeNo,
		EmployeeName:               r.EmployeeName,
		ReportMonth:                r.ReportMonth,
		ExpectedWorkingDays:        r.ExpectedWorkingDays,
		ActualWorkingDays:          r.ActualWorkingDays,
		LegalHolidayDays:           r.LegalHolidayDays,
		AbsentDays:                 r.AbsentDays,
		LeaveDays:                  toLeaveDaysResponse(r.Leave),
		TotalLateMinutes:           r.TotalLateMinutes,
		TotalEarlyLeaveMinutes:     r.TotalEarlyLeaveMinutes,
		MakeupCount:                r.MakeupCount,
		WorkdayOvertimeHours:       r.WorkdayOvertimeHours,
		WeekendOvertimeHours:       r.WeekendOvertimeHours,
		LegalHolidayOvertimeHours:  r.LegalHolidayOvertimeHours,
		BusinessTripHours:          r.BusinessTripHours,
		BusinessTripNightAllowance: r.BusinessTripNightAllowance,
		WorkingDayDutyAllowance:    r.WorkingDayDutyAllowance,
		CalculationSnapshot:        r.CalculationSnapshot,
		ConfirmationStatus:         string(r.ConfirmationStatus),
		ConfirmationInitiatedAt:    formatTime(r.ConfirmationInitiatedAt),
		ConfirmationCompletedAt:    formatTime(r.ConfirmationCompletedAt),
		ConfirmedBy:                r.ConfirmedBy,
		Remark:                     r.Remark,
		LastCalculatedAt:           formatTime(r.LastCalculatedAt),
	}
}
