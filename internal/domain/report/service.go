package report

import "context"

// ReportService is the administrative surface of the attendance report pipeline.
type ReportService interface {
	// Calculation triggers
	TriggerDailyCalculation(ctx context.Context, req TriggerDailyCalculationRequest) (BatchResultResponse, error)
	TriggerDateCalculation(ctx context.Context, req TriggerDateCalculationRequest) (BatchResultResponse, error)
	TriggerMonthlyCalculation(ctx context.Context, req TriggerMonthlyCalculationRequest) (BatchResultResponse, error)

	// Daily reports
	ListDailyReports(ctx context.Context, filter DailyReportFilter) (ListDailyReportResponse, error)
	GetDailyReport(ctx context.Context, id string) (DailyReportResponse, error)

	// Monthly reports
	ListMonthlyReports(ctx context.Context, filter MonthlyReportFilter) (ListMonthlyReportResponse, error)
	GetMonthlyReport(ctx context.Context, id string) (MonthlyReportResponse, error)
	ConfirmMonthlyReport(ctx context.Context, req ConfirmMonthlyReportRequest) (MonthlyReportResponse, error)
	BatchConfirmMonthlyReports(ctx context.Context, req BatchConfirmMonthlyReportsRequest) (BatchConfirmResponse, error)
	GetMonthlyStats(ctx context.Context, month string) (MonthlyStatsResponse, error)
}
