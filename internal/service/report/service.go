package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lrliang/hmf-ehr/internal/domain/calendar"
	"github.com/lrliang/hmf-ehr/internal/domain/report"
	"github.com/shopspring/decimal"
)

type ReportServiceImpl struct {
	orchestrator *Orchestrator
	dailyRepo    report.DailyReportRepository
	monthlyRepo  report.MonthlyReportRepository
	lookbackDays int
	location     *time.Location
	now          func() time.Time
}

func NewReportService(
	orchestrator *Orchestrator,
	dailyRepo report.DailyReportRepository,
	monthlyRepo report.MonthlyReportRepository,
	lookbackDays int,
	location *time.Location,
) report.ReportService {
	if location == nil {
		location = time.UTC
	}
	return &ReportServiceImpl{
		orchestrator: orchestrator,
		dailyRepo:    dailyRepo,
		monthlyRepo:  monthlyRepo,
		lookbackDays: lookbackDays,
		location:     location,
		now:          time.Now,
	}
}

// ========== CALCULATION TRIGGERS ==========

func (s *ReportServiceImpl) TriggerDailyCalculation(ctx context.Context, req report.TriggerDailyCalculationRequest) (report.BatchResultResponse, error) {
	if err := req.Validate(); err != nil {
		return report.BatchResultResponse{}, err
	}

	today := calendar.DateOnly(s.now().In(s.location))
	start := today.AddDate(0, 0, -s.lookbackDays)
	end := today
	if req.StartDate != nil {
		start, _ = time.Parse(calendar.DateLayout, *req.StartDate)
	}
	if req.EndDate != nil {
		end, _ = time.Parse(calendar.DateLayout, *req.EndDate)
	}
	if end.Before(start) {
		return report.BatchResultResponse{}, report.ErrInvalidDateRange
	}
	if len(calendar.DaysIn(start, end)) > report.MaxRangeDays {
		return report.BatchResultResponse{}, report.ErrDateRangeTooLong
	}

	var ids []string
	if req.EmployeeID != nil {
		ids = []string{*req.EmployeeID}
	}

	res, err := s.orchestrator.RunDaily(ctx, DailyJob{
		EmployeeIDs: ids,
		StartDate:   start,
		EndDate:     end,
		Force:       req.ForceRecalculate,
	})
	if err != nil {
		return report.BatchResultResponse{}, err
	}
	return toBatchResultResponse(res), nil
}

func (s *ReportServiceImpl) TriggerDateCalculation(ctx context.Context, req report.TriggerDateCalculationRequest) (report.BatchResultResponse, error) {
	if err := req.Validate(); err != nil {
		return report.BatchResultResponse{}, err
	}

	date, _ := time.Parse(calendar.DateLayout, req.Date)
	res, err := s.orchestrator.RunForDate(ctx, date, req.EmployeeIDs)
	if err != nil {
		return report.BatchResultResponse{}, err
	}
	return toBatchResultResponse(res), nil
}

func (s *ReportServiceImpl) TriggerMonthlyCalculation(ctx context.Context, req report.TriggerMonthlyCalculationRequest) (report.BatchResultResponse, error) {
	if err := req.Validate(); err != nil {
		return report.BatchResultResponse{}, err
	}

	employeeID := ""
	if req.EmployeeID != nil {
		employeeID = *req.EmployeeID
	}

	res, err := s.orchestrator.RunMonthly(ctx, req.ReportMonth, employeeID)
	if err != nil {
		return report.BatchResultResponse{}, err
	}
	return toBatchResultResponse(res), nil
}

// ========== DAILY REPORTS ==========

func (s *ReportServiceImpl) ListDailyReports(ctx context.Context, filter report.DailyReportFilter) (report.ListDailyReportResponse, error) {
	if err := filter.Validate(); err != nil {
		return report.ListDailyReportResponse{}, err
	}
	normalizePage(&filter.Page, &filter.Limit)

	reports, total, err := s.dailyRepo.List(ctx, filter)
	if err != nil {
		return report.ListDailyReportResponse{}, fmt.Errorf("failed to list daily reports: %w", err)
	}

	data := make([]report.DailyReportResponse, 0, len(reports))
	for _, r := range reports {
		data = append(data, report.ToDailyReportResponse(r))
	}

	return report.ListDailyReportResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *ReportServiceImpl) GetDailyReport(ctx context.Context, id string) (report.DailyReportResponse, error) {
	r, err := s.dailyRepo.GetByID(ctx, id)
	if err != nil {
		return report.DailyReportResponse{}, err
	}
	return report.ToDailyReportResponse(r), nil
}

// ========== MONTHLY REPORTS ==========

func (s *ReportServiceImpl) ListMonthlyReports(ctx context.Context, filter report.MonthlyReportFilter) (report.ListMonthlyReportResponse, error) {
	if err := filter.Validate(); err != nil {
		return report.ListMonthlyReportResponse{}, err
	}
	normalizePage(&filter.Page, &filter.Limit)

	reports, total, err := s.monthlyRepo.List(ctx, filter)
	if err != nil {
		return report.ListMonthlyReportResponse{}, fmt.Errorf("failed to list monthly reports: %w", err)
	}

	data := make([]report.MonthlyReportResponse, 0, len(reports))
	for _, r := range reports {
		data = append(data, report.ToMonthlyReportResponse(r))
	}

	return report.ListMonthlyReportResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *ReportServiceImpl) GetMonthlyReport(ctx context.Context, id string) (report.MonthlyReportResponse, error) {
	r, err := s.monthlyRepo.GetByID(ctx, id)
	if err != nil {
		return report.MonthlyReportResponse{}, err
	}
	return report.ToMonthlyReportResponse(r), nil
}

func (s *ReportServiceImpl) ConfirmMonthlyReport(ctx context.Context, req report.ConfirmMonthlyReportRequest) (report.MonthlyReportResponse, error) {
	if err := req.Validate(); err != nil {
		return report.MonthlyReportResponse{}, err
	}

	confirmed, err := s.confirm(ctx, req.ID, req.ConfirmedBy, req.Remark)
	if err != nil {
		return report.MonthlyReportResponse{}, err
	}
	return report.ToMonthlyReportResponse(confirmed), nil
}

func (s *ReportServiceImpl) BatchConfirmMonthlyReports(ctx context.Context, req report.BatchConfirmMonthlyReportsRequest) (report.BatchConfirmResponse, error) {
	if err := req.Validate(); err != nil {
		return report.BatchConfirmResponse{}, err
	}

	var resp report.BatchConfirmResponse
	for _, id := range req.ReportIDs {
		if err := ctx.Err(); err != nil {
			return resp, err
		}
		if _, err := s.confirm(ctx, id, req.ConfirmedBy, req.Remark); err != nil {
			resp.FailedCount++
			resp.Errors = append(resp.Errors, report.BatchConfirmError{ReportID: id, Error: err.Error()})
			continue
		}
		resp.SuccessCount++
	}

	slog.Info("Monthly reports batch confirmed", "success", resp.SuccessCount, "failed", resp.FailedCount)
	return resp, nil
}

func (s *ReportServiceImpl) confirm(ctx context.Context, id string, by, remark *string) (report.MonthlyReport, error) {
	current, err := s.monthlyRepo.GetByID(ctx, id)
	if err != nil {
		return report.MonthlyReport{}, err
	}
	switch current.ConfirmationStatus {
	case report.ConfirmationStatusConfirmed:
		return report.MonthlyReport{}, report.ErrReportAlreadyConfirmed
	case report.ConfirmationStatusLocked:
		return report.MonthlyReport{}, report.ErrReportLocked
	}

	confirmed, err := s.monthlyRepo.Confirm(ctx, id, by, remark, s.now())
	if err != nil {
		if errors.Is(err, report.ErrReportAlreadyConfirmed) || errors.Is(err, report.ErrReportLocked) {
			return report.MonthlyReport{}, err
		}
		return report.MonthlyReport{}, fmt.Errorf("failed to confirm monthly report: %w", err)
	}
	slog.Info("Monthly report confirmed", "report_id", id, "employee_id", confirmed.EmployeeID, "month", confirmed.ReportMonth)
	return confirmed, nil
}

func (s *ReportServiceImpl) GetMonthlyStats(ctx context.Context, month string) (report.MonthlyStatsResponse, error) {
	if _, err := calendar.ParseMonth(month); err != nil {
		return report.MonthlyStatsResponse{}, err
	}

	counts, err := s.monthlyRepo.CountByStatus(ctx, month)
	if err != nil {
		return report.MonthlyStatsResponse{}, fmt.Errorf("failed to count monthly reports: %w", err)
	}
	return BuildMonthlyStats(month, counts), nil
}

// BuildMonthlyStats turns status counts into the stats response. The
// confirmation rate is confirmed/total as a percentage with 2 decimals.
func BuildMonthlyStats(month string, counts []report.MonthlyStatusCount) report.MonthlyStatsResponse {
	stats := report.MonthlyStatsResponse{ReportMonth: month, ConfirmationRate: decimal.Zero}
	for _, c := range counts {
		stats.TotalCount += c.Count
		switch c.Status {
		case report.ConfirmationStatusDraft:
			stats.DraftCount += c.Count
		case report.ConfirmationStatusPending:
			stats.PendingCount += c.Count
		case report.ConfirmationStatusConfirmed:
			stats.ConfirmedCount += c.Count
		case report.ConfirmationStatusRejected:
			stats.RejectedCount += c.Count
		case report.ConfirmationStatusLocked:
			stats.LockedCount += c.Count
		}
	}
	if stats.TotalCount > 0 {
		stats.ConfirmationRate = decimal.NewFromInt(int64(stats.ConfirmedCount)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(stats.TotalCount))).
			Round(2)
	}
	return stats
}

// ========== HELPERS ==========

func normalizePage(page, limit *int) {
	if *page <= 0 {
		*page = 1
	}
	if *limit <= 0 {
		*limit = 20
	}
	if *limit > 100 {
		*limit = 100
	}
}

func toBatchResultResponse(r BatchResult) report.BatchResultResponse {
	errs := make([]report.UnitErrorResponse, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, report.UnitErrorResponse{
			EmployeeID: e.EmployeeID,
			Date:       e.Date,
			Month:      e.Month,
			Error:      e.Err,
		})
	}
	return report.BatchResultResponse{
		JobID:              r.JobID,
		ProcessedCount:     r.ProcessedCount,
		SkippedCount:       r.SkippedCount,
		FailedCount:        r.FailedCount,
		MonthlyCount:       r.MonthlyCount,
		MonthlyFailedCount: r.MonthlyFailed,
		Errors:             errs,
		StartedAt:          r.StartedAt.Format(time.RFC3339),
		FinishedAt:         r.FinishedAt.Format(time.RFC3339),
	}
}
