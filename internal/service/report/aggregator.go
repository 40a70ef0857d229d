package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lrliang/hmf-ehr/internal/domain/calendar"
	"github.com/lrliang/hmf-ehr/internal/domain/employee"
	"github.com/lrliang/hmf-ehr/internal/domain/report"
	"github.com/shopspring/decimal"
)

type MonthlyAggregator struct {
	dailyRepo   report.DailyReportRepository
	monthlyRepo report.MonthlyReportRepository
	policy      calendar.Policy
	now         func() time.Time
}

func NewMonthlyAggregator(
	dailyRepo report.DailyReportRepository,
	monthlyRepo report.MonthlyReportRepository,
	policy calendar.Policy,
) *MonthlyAggregator {
	return &MonthlyAggregator{
		dailyRepo:   dailyRepo,
		monthlyRepo: monthlyRepo,
		policy:      policy,
		now:         time.Now,
	}
}

// Aggregate rebuilds the monthly report of emp for month from its daily
// reports. A confirmed or locked report comes back unchanged, even when its
// daily reports are gone. Otherwise nil is returned for a month without
// daily reports.
func (a *MonthlyAggregator) Aggregate(ctx context.Context, emp employee.Employee, month string) (*report.MonthlyReport, error) {
	first, last, err := calendar.MonthRange(month)
	if err != nil {
		return nil, err
	}

	existing, err := a.monthlyRepo.GetByEmployeeAndMonth(ctx, emp.ID, month)
	switch {
	case err == nil:
		if existing.ConfirmationStatus.IsFinal() {
			return &existing, nil
		}
	case errors.Is(err, report.ErrMonthlyReportNotFound):
	default:
		return nil, fmt.Errorf("failed to get monthly report: %w", err)
	}

	dailies, err := a.dailyRepo.ListByEmployeeAndRange(ctx, emp.ID, first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily reports: %w", err)
	}
	if len(dailies) == 0 {
		slog.Debug("No daily reports for month, skipping aggregation", "employee_id", emp.ID, "month", month)
		return nil, nil
	}

	summary := Summarize(emp, month, dailies, a.policy, a.now())
	saved, err := a.monthlyRepo.Upsert(ctx, summary)
	if err != nil {
		return nil, fmt.Errorf("failed to save monthly report: %w", err)
	}
	return &saved, nil
}

// Summarize folds the daily reports of one month into a draft monthly report.
// Allowances are zero until a source for them exists.
func Summarize(emp employee.Employee, month string, dailies []report.DailyReport, policy calendar.Policy, at time.Time) report.MonthlyReport {
	m := report.MonthlyReport{
		EmployeeID:                 emp.ID,
		EmployeeNo:                 emp.EmployeeNo,
		EmployeeName:               emp.Name,
		ReportMonth:                month,
		ExpectedWorkingDays:        decimal.Zero,
		ActualWorkingDays:          decimal.Zero,
		LegalHolidayDays:           decimal.Zero,
		Leave:                      zeroLeave(),
		WorkdayOvertimeHours:       decimal.Zero,
		WeekendOvertimeHours:       decimal.Zero,
		LegalHolidayOvertimeHours:  decimal.Zero,
		BusinessTripHours:          decimal.Zero,
		BusinessTripNightAllowance: decimal.Zero,
		WorkingDayDutyAllowance:    decimal.Zero,
		ConfirmationStatus:         report.ConfirmationStatusDraft,
		LastCalculatedAt:           &at,
	}

	if first, last, err := calendar.MonthRange(month); err == nil {
		m.ExpectedWorkingDays = decimal.NewFromInt(int64(policy.ExpectedWorkingDays(first, last)))
	}

	ids := make([]string, 0, len(dailies))
	present := 0
	for _, d := range dailies {
		ids = append(ids, d.ID)
		if d.IsAbsent {
			m.AbsentDays++
		} else {
			present++
		}
		m.LegalHolidayDays = m.LegalHolidayDays.Add(d.LegalHolidayDays)
		m.Leave = m.Leave.Add(d.Leave)
		m.TotalLateMinutes += d.LateMinutes
		m.TotalEarlyLeaveMinutes += d.EarlyLeaveMinutes
		m.MakeupCount += d.MakeupCount
		m.WorkdayOvertimeHours = m.WorkdayOvertimeHours.Add(d.WorkdayOvertimeHours)
		m.WeekendOvertimeHours = m.WeekendOvertimeHours.Add(d.WeekendOvertimeHours)
		m.LegalHolidayOvertimeHours = m.LegalHolidayOvertimeHours.Add(d.LegalHolidayOvertimeHours)
		m.BusinessTripHours = m.BusinessTripHours.Add(d.BusinessTripHours)
	}
	m.ActualWorkingDays = decimal.NewFromInt(int64(present))

	m.CalculationSnapshot = report.MonthlySnapshot{
		DailyReportCount: len(dailies),
		CalculatedAt:     at,
		DailyReportIDs:   ids,
	}
	return m
}
