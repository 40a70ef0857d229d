package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lrliang/hmf-ehr/internal/domain/calendar"
	"github.com/lrliang/hmf-ehr/internal/domain/employee"
	"github.com/lrliang/hmf-ehr/internal/domain/payroll"
	"github.com/lrliang/hmf-ehr/internal/domain/report"
	"github.com/lrliang/hmf-ehr/internal/pkg/keylock"
	"github.com/shopspring/decimal"
)

type PayrollServiceImpl struct {
	salaryRepo   payroll.SalaryDetailRepository
	monthlyRepo  report.MonthlyReportRepository
	employeeRepo employee.EmployeeRepository
	calculator   *Calculator
	deductions   payroll.DeductionRules
	locker       keylock.Locker
	now          func() time.Time
}

func NewPayrollService(
	salaryRepo payroll.SalaryDetailRepository,
	monthlyRepo report.MonthlyReportRepository,
	employeeRepo employee.EmployeeRepository,
	calculator *Calculator,
	deductions payroll.DeductionRules,
	locker keylock.Locker,
) payroll.PayrollService {
	if deductions == nil {
		deductions = payroll.NoDeductions{}
	}
	if locker == nil {
		locker = keylock.NewLocalLocker()
	}
	return &PayrollServiceImpl{
		salaryRepo:   salaryRepo,
		monthlyRepo:  monthlyRepo,
		employeeRepo: employeeRepo,
		calculator:   calculator,
		deductions:   deductions,
		locker:       locker,
		now:          time.Now,
	}
}

// ========== CALCULATION ==========

// CalculateSalary derives salary details for one month. Employees without a
// confirmed monthly report come back as failed results; only store errors
// and cancellation abort the run.
func (s *PayrollServiceImpl) CalculateSalary(ctx context.Context, req payroll.CalculateSalaryRequest) (payroll.CalculateSalaryResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.CalculateSalaryResponse{}, err
	}

	employees, err := s.resolveEmployees(ctx, req.EmployeeIDs)
	if err != nil {
		return payroll.CalculateSalaryResponse{}, err
	}

	resp := payroll.CalculateSalaryResponse{
		ReportMonth: req.ReportMonth,
		TotalCount:  len(employees),
		Results:     make([]payroll.SalaryCalculationResult, 0, len(employees)),
	}

	for _, emp := range employees {
		if err := ctx.Err(); err != nil {
			return resp, err
		}

		result, err := s.calculateOne(ctx, emp, req.ReportMonth, req.ForceRecalculate)
		if err != nil {
			slog.Error("Salary calculation aborted", "employee_id", emp.ID, "month", req.ReportMonth, "error", err)
			return resp, err
		}

		resp.Results = append(resp.Results, result)
		if result.Success {
			resp.SuccessCount++
			continue
		}
		resp.FailureCount++
		resp.ErrorSummary = append(resp.ErrorSummary, fmt.Sprintf("%s (%s): %s", emp.EmployeeNo, emp.Name, *result.Error))
	}

	slog.Info("Salary calculation completed",
		"month", req.ReportMonth,
		"total", resp.TotalCount,
		"success", resp.SuccessCount,
		"failed", resp.FailureCount,
	)
	return resp, nil
}

// BatchCalculateSalary runs CalculateSalary for each month. A month that
// fails as a whole is reported as a single failure for that month.
func (s *PayrollServiceImpl) BatchCalculateSalary(ctx context.Context, req payroll.BatchCalculateSalaryRequest) ([]payroll.CalculateSalaryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	responses := make([]payroll.CalculateSalaryResponse, 0, len(req.ReportMonths))
	for _, month := range req.ReportMonths {
		resp, err := s.CalculateSalary(ctx, payroll.CalculateSalaryRequest{
			ReportMonth:      month,
			EmployeeIDs:      req.EmployeeIDs,
			ForceRecalculate: req.ForceRecalculate,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return responses, ctxErr
			}
			slog.Warn("Salary calculation for month failed", "month", month, "error", err)
			responses = append(responses, payroll.CalculateSalaryResponse{
				ReportMonth:  month,
				FailureCount: 1,
				Results:      []payroll.SalaryCalculationResult{},
				ErrorSummary: []string{err.Error()},
			})
			continue
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *PayrollServiceImpl) resolveEmployees(ctx context.Context, ids []string) ([]employee.Employee, error) {
	if len(ids) == 0 {
		employees, err := s.employeeRepo.ListActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list active employees: %w", err)
		}
		return employees, nil
	}

	employees, err := s.employeeRepo.ListActiveByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	if len(employees) == 0 {
		return nil, payroll.ErrNoEmployeesSelected
	}
	return employees, nil
}

// calculateOne returns a failed result for per-employee problems and an
// error only when the store is unusable.
func (s *PayrollServiceImpl) calculateOne(ctx context.Context, emp employee.Employee, month string, force bool) (payroll.SalaryCalculationResult, error) {
	result := payroll.SalaryCalculationResult{
		EmployeeID:   emp.ID,
		EmployeeNo:   emp.EmployeeNo,
		EmployeeName: emp.Name,
		ReportMonth:  month,
	}
	fail := func(err error) (payroll.SalaryCalculationResult, error) {
		msg := err.Error()
		result.Error = &msg
		return result, nil
	}

	unlock, err := s.locker.Lock(ctx, "salary:"+emp.ID+":"+month)
	if err != nil {
		return result, err
	}
	defer unlock()

	existing, err := s.salaryRepo.GetByEmployeeAndMonth(ctx, emp.ID, month)
	switch {
	case err == nil:
		if !force {
			result.Success = true
			result.Skipped = true
			result.SalaryDetailID = &existing.ID
			return result, nil
		}
		if existing.Status == payroll.SalaryStatusConfirmed || existing.Status == payroll.SalaryStatusPaid {
			return fail(fmt.Errorf("salary detail is %s: %w", existing.Status, payroll.ErrInvalidStatusTransition))
		}
	case errors.Is(err, payroll.ErrSalaryDetailNotFound):
	default:
		return result, fmt.Errorf("failed to get salary detail: %w", err)
	}

	monthly, err := s.monthlyRepo.GetByEmployeeAndMonth(ctx, emp.ID, month)
	switch {
	case errors.Is(err, report.ErrMonthlyReportNotFound):
		return fail(payroll.ErrMonthlyReportNotConfirmed)
	case err != nil:
		return result, fmt.Errorf("failed to get monthly report: %w", err)
	case monthly.ConfirmationStatus != report.ConfirmationStatusConfirmed:
		return fail(payroll.ErrMonthlyReportNotConfirmed)
	}

	breakdown := s.calculator.Calculate(emp.BaseSalary, monthly)
	deductions, err := s.deductions.DeductionsFor(ctx, emp.ID, month, breakdown.GrossSalary)
	if err != nil {
		return fail(fmt.Errorf("failed to compute deductions: %w", err))
	}
	breakdown = WithDeductions(breakdown, deductions)

	now := s.now()
	detail := payroll.SalaryDetail{
		EmployeeID:             emp.ID,
		MonthlyReportID:        monthly.ID,
		ReportMonth:            month,
		EmployeeNo:             emp.EmployeeNo,
		EmployeeName:           emp.Name,
		ExpectedWorkingDays:    monthly.ExpectedWorkingDays,
		ActualWorkingDays:      monthly.ActualWorkingDays,
		BaseSalary:             breakdown.BaseSalary,
		AttendanceSalary:       breakdown.AttendanceSalary,
		PersonalLeaveDeduction: breakdown.PersonalLeaveDeduction,
		OvertimePay:            breakdown.TotalOvertimePay,
		AllowanceAndBonus:      breakdown.AllowanceAndBonus,
		GrossSalary:            breakdown.GrossSalary,
		SocialInsurance:        breakdown.Deductions.SocialInsurance,
		HousingFund:            breakdown.Deductions.HousingFund,
		IncomeTax:              breakdown.Deductions.IncomeTax,
		MealFee:                breakdown.Deductions.MealFee,
		OtherDeductions:        breakdown.Deductions.Other,
		NetSalary:              breakdown.NetSalary,
		Status:                 payroll.SalaryStatusCalculated,
		CalculatedAt:           &now,
		CalculationSnapshot: payroll.Snapshot{
			Calculation: breakdown,
			Employee: payroll.SnapshotEmployee{
				ID:         emp.ID,
				EmployeeNo: emp.EmployeeNo,
				Name:       emp.Name,
				BaseSalary: emp.BaseSalary,
			},
			MonthlyReport: payroll.SnapshotMonthlyReport{
				ID:                        monthly.ID,
				ExpectedWorkingDays:       monthly.ExpectedWorkingDays,
				ActualWorkingDays:         monthly.ActualWorkingDays,
				PersonalLeaveDays:         monthly.Leave.Personal,
				WeekendOvertimeHours:      monthly.WeekendOvertimeHours,
				LegalHolidayOvertimeHours: monthly.LegalHolidayOvertimeHours,
			},
		},
	}

	saved, err := s.salaryRepo.Upsert(ctx, detail)
	if err != nil {
		if errors.Is(err, payroll.ErrSalaryDetailAlreadyExists) {
			result.Success = true
			result.Skipped = true
			return result, nil
		}
		return result, fmt.Errorf("failed to save salary detail: %w", err)
	}

	result.Success = true
	result.SalaryDetailID = &saved.ID
	return result, nil
}

// ========== SALARY DETAILS ==========

func (s *PayrollServiceImpl) ListSalaryDetails(ctx context.Context, filter payroll.SalaryDetailFilter) (payroll.ListSalaryDetailResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListSalaryDetailResponse{}, err
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	details, total, err := s.salaryRepo.List(ctx, filter)
	if err != nil {
		return payroll.ListSalaryDetailResponse{}, fmt.Errorf("failed to list salary details: %w", err)
	}

	data := make([]payroll.SalaryDetailResponse, 0, len(details))
	for _, d := range details {
		data = append(data, payroll.ToSalaryDetailResponse(d))
	}

	return payroll.ListSalaryDetailResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *PayrollServiceImpl) GetSalaryDetail(ctx context.Context, id string) (payroll.SalaryDetailResponse, error) {
	d, err := s.salaryRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.SalaryDetailResponse{}, err
	}
	return payroll.ToSalaryDetailResponse(d), nil
}

func (s *PayrollServiceImpl) ConfirmSalaryDetail(ctx context.Context, req payroll.UpdateSalaryStatusRequest) (payroll.SalaryDetailResponse, error) {
	return s.transition(ctx, req, payroll.SalaryStatusConfirmed)
}

func (s *PayrollServiceImpl) PaySalaryDetail(ctx context.Context, req payroll.UpdateSalaryStatusRequest) (payroll.SalaryDetailResponse, error) {
	return s.transition(ctx, req, payroll.SalaryStatusPaid)
}

func (s *PayrollServiceImpl) CancelSalaryDetail(ctx context.Context, req payroll.UpdateSalaryStatusRequest) (payroll.SalaryDetailResponse, error) {
	return s.transition(ctx, req, payroll.SalaryStatusCancelled)
}

func (s *PayrollServiceImpl) transition(ctx context.Context, req payroll.UpdateSalaryStatusRequest, to payroll.SalaryStatus) (payroll.SalaryDetailResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SalaryDetailResponse{}, err
	}

	var from []payroll.SalaryStatus
	for _, st := range payroll.SalaryStatuses {
		if st.CanTransitionTo(to) {
			from = append(from, st)
		}
	}

	d, err := s.salaryRepo.UpdateStatus(ctx, req.ID, from, to, req.Actor, req.Remark, s.now())
	if err != nil {
		if errors.Is(err, payroll.ErrSalaryDetailNotFound) || errors.Is(err, payroll.ErrInvalidStatusTransition) {
			return payroll.SalaryDetailResponse{}, err
		}
		return payroll.SalaryDetailResponse{}, fmt.Errorf("failed to update salary detail status: %w", err)
	}

	slog.Info("Salary detail status updated", "salary_detail_id", d.ID, "status", d.Status)
	return payroll.ToSalaryDetailResponse(d), nil
}

// ========== SUMMARY ==========

func (s *PayrollServiceImpl) GetStatistics(ctx context.Context, month string) (payroll.SalaryStatisticsResponse, error) {
	if _, err := calendar.ParseMonth(month); err != nil {
		return payroll.SalaryStatisticsResponse{}, err
	}

	stats, err := s.salaryRepo.GetStatistics(ctx, month)
	if err != nil {
		return payroll.SalaryStatisticsResponse{}, fmt.Errorf("failed to get salary statistics: %w", err)
	}

	resp := payroll.SalaryStatisticsResponse{
		ReportMonth:        month,
		TotalCount:         stats.TotalCount,
		TotalGrossSalary:   stats.TotalGross,
		TotalNetSalary:     stats.TotalNet,
		TotalDeductions:    stats.TotalDeductions,
		AverageGrossSalary: decimal.Zero,
		StatusDistribution: make(map[string]int, len(payroll.SalaryStatuses)),
	}
	for _, st := range payroll.SalaryStatuses {
		resp.StatusDistribution[string(st)] = stats.StatusCounts[st]
	}
	if stats.TotalCount > 0 {
		resp.AverageGrossSalary = stats.TotalGross.Div(decimal.NewFromInt(int64(stats.TotalCount))).Round(2)
	}
	return resp, nil
}
