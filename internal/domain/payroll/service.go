package payroll

import "context"

// PayrollService derives salary details from confirmed monthly reports.
type PayrollService interface {
	// Calculation
	CalculateSalary(ctx context.Context, req CalculateSalaryRequest) (CalculateSalaryResponse, error)
	BatchCalculateSalary(ctx context.Context, req BatchCalculateSalaryRequest) ([]CalculateSalaryResponse, error)

	// Salary details
	ListSalaryDetails(ctx context.Context, filter SalaryDetailFilter) (ListSalaryDetailResponse, error)
	GetSalaryDetail(ctx context.Context, id string) (SalaryDetailResponse, error)
	ConfirmSalaryDetail(ctx context.Context, req UpdateSalaryStatusRequest) (SalaryDetailResponse, error)
	PaySalaryDetail(ctx context.Context, req UpdateSalaryStatusRequest) (SalaryDetailResponse, error)
	CancelSalaryDetail(ctx context.Context, req UpdateSalaryStatusRequest) (SalaryDetailResponse, error)

	// Summary
	GetStatistics(ctx context.Context, month string) (SalaryStatisticsResponse, error)
}
