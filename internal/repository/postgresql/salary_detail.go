package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/lrliang/hmf-ehr/internal/domain/payroll"
	"github.com/lrliang/hmf-ehr/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type salaryDetailRepository struct {
	db *database.DB
}

func NewSalaryDetailRepository(db *database.DB) payroll.SalaryDetailRepository {
	return &salaryDetailRepository{db: db}
}

const salaryDetailColumns = `
	id, employee_id, monthly_report_id, report_month, employee_no, employee_name,
	expected_working_days, actual_working_days, base_salary, attendance_salary,
	personal_leave_deduction, overtime_pay, allowance_and_bonus, gross_salary,
	social_insurance, housing_fund, income_tax, meal_fee, other_deductions, net_salary,
	status, calculated_at, confirmed_at, confirmed_by, paid_at, paid_by, remark,
	calculation_snapshot, created_at, updated_at`

func scanSalaryDetail(row pgx.Row) (payroll.SalaryDetail, error) {
	var d payroll.SalaryDetail
	var snapshot []byte
	err := row.Scan(
		&d.ID, &d.EmployeeID, &d.MonthlyReportID, &d.ReportMonth, &d.EmployeeNo, &d.EmployeeName,
		&d.ExpectedWorkingDays, &d.ActualWorkingDays, &d.BaseSalary, &d.AttendanceSalary,
		&d.PersonalLeaveDeduction, &d.OvertimePay, &d.AllowanceAndBonus, &d.GrossSalary,
		&d.SocialInsurance, &d.HousingFund, &d.IncomeTax, &d.MealFee, &d.OtherDeductions, &d.NetSalary,
		&d.Status, &d.CalculatedAt, &d.ConfirmedAt, &d.ConfirmedBy, &d.PaidAt, &d.PaidBy, &d.Remark,
		&snapshot, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return d, err
	}
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &d.CalculationSnapshot); err != nil {
			return d, fmt.Errorf("failed to decode salary snapshot: %w", err)
		}
	}
	return d, nil
}

func (r *salaryDetailRepository) GetByID(ctx context.Context, id string) (payroll.SalaryDetail, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + salaryDetailColumns + ` FROM salary_details WHERE id = $1`

	d, err := scanSalaryDetail(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.SalaryDetail{}, payroll.ErrSalaryDetailNotFound
		}
		return payroll.SalaryDetail{}, fmt.Errorf("failed to get salary detail: %w", err)
	}
	return d, nil
}

func (r *salaryDetailRepository) GetByEmployeeAndMonth(ctx context.Context, employeeID string, month string) (payroll.SalaryDetail, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + salaryDetailColumns + ` FROM salary_details WHERE employee_id = $1 AND report_month = $2`

	d, err := scanSalaryDetail(q.QueryRow(ctx, query, employeeID, month))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.SalaryDetail{}, payroll.ErrSalaryDetailNotFound
		}
		return payroll.SalaryDetail{}, fmt.Errorf("failed to get salary detail: %w", err)
	}
	return d, nil
}

// Upsert rewrites the amounts of a draft, calculated or cancelled row and
// resets it to calculated. Confirmed and paid rows are refused.
func (r *salaryDetailRepository) Upsert(ctx context.Context, in payroll.SalaryDetail) (payroll.SalaryDetail, error) {
	q := GetQuerier(ctx, r.db)

	snapshot, err := json.Marshal(in.CalculationSnapshot)
	if err != nil {
		return payroll.SalaryDetail{}, fmt.Errorf("failed to encode salary snapshot: %w", err)
	}

	query := `
		INSERT INTO salary_details (
			employee_id, monthly_report_id, report_month, employee_no, employee_name,
			expected_working_days, actual_working_days, base_salary, attendance_salary,
			personal_leave_deduction, overtime_pay, allowance_and_bonus, gross_salary,
			social_insurance, housing_fund, income_tax, meal_fee, other_deductions, net_salary,
			status, calculated_at, remark, calculation_snapshot
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19,
			$20, $21, $22, $23
		)
		ON CONFLICT (employee_id, report_month) DO UPDATE SET
			monthly_report_id = EXCLUDED.monthly_report_id,
			employee_no = EXCLUDED.employee_no,
			employee_name = EXCLUDED.employee_name,
			expected_working_days = EXCLUDED.expected_working_days,
			actual_working_days = EXCLUDED.actual_working_days,
			base_salary = EXCLUDED.base_salary,
			attendance_salary = EXCLUDED.attendance_salary,
			personal_leave_deduction = EXCLUDED.personal_leave_deduction,
			overtime_pay = EXCLUDED.overtime_pay,
			allowance_and_bonus = EXCLUDED.allowance_and_bonus,
			gross_salary = EXCLUDED.gross_salary,
			social_insurance = EXCLUDED.social_insurance,
			housing_fund = EXCLUDED.housing_fund,
			income_tax = EXCLUDED.income_tax,
			meal_fee = EXCLUDED.meal_fee,
			other_deductions = EXCLUDED.other_deductions,
			net_salary = EXCLUDED.net_salary,
			status = EXCLUDED.status,
			calculated_at = EXCLUDED.calculated_at,
			confirmed_at = NULL,
			confirmed_by = NULL,
			paid_at = NULL,
			paid_by = NULL,
			calculation_snapshot = EXCLUDED.calculation_snapshot,
			updated_at = NOW()
		WHERE salary_details.status NOT IN ('confirmed', 'paid')
		RETURNING ` + salaryDetailColumns

	out, err := scanSalaryDetail(q.QueryRow(ctx, query,
		in.EmployeeID, in.MonthlyReportID, in.ReportMonth, in.EmployeeNo, in.EmployeeName,
		in.ExpectedWorkingDays, in.ActualWorkingDays, in.BaseSalary, in.AttendanceSalary,
		in.PersonalLeaveDeduction, in.OvertimePay, in.AllowanceAndBonus, in.GrossSalary,
		in.SocialInsurance, in.HousingFund, in.IncomeTax, in.MealFee, in.OtherDeductions, in.NetSalary,
		payroll.SalaryStatusCalculated, in.CalculatedAt, in.Remark, snapshot,
	))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return payroll.SalaryDetail{}, payroll.ErrInvalidStatusTransition
		case isUniqueViolation(err):
			return payroll.SalaryDetail{}, payroll.ErrSalaryDetailAlreadyExists
		}
		return payroll.SalaryDetail{}, fmt.Errorf("failed to upsert salary detail: %w", err)
	}
	return out, nil
}

func (r *salaryDetailRepository) UpdateStatus(ctx context.Context, id string, from []payroll.SalaryStatus, to payroll.SalaryStatus, actor, remark *string, at time.Time) (payroll.SalaryDetail, error) {
	var updated payroll.SalaryDetail

	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		var current payroll.SalaryStatus
		err := q.QueryRow(ctx, `SELECT status FROM salary_details WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return payroll.ErrSalaryDetailNotFound
			}
			return fmt.Errorf("failed to lock salary detail: %w", err)
		}

		allowed := false
		for _, s := range from {
			if s == current {
				allowed = true
				break
			}
		}
		if !allowed {
			return payroll.ErrInvalidStatusTransition
		}

		set := "status = $2, remark = COALESCE($3, remark), updated_at = NOW()"
		args := []interface{}{id, to, remark}
		switch to {
		case payroll.SalaryStatusConfirmed:
			set += ", confirmed_at = $4, confirmed_by = $5"
			args = append(args, at, actor)
		case payroll.SalaryStatusPaid:
			set += ", paid_at = $4, paid_by = $5"
			args = append(args, at, actor)
		}

		query := `UPDATE salary_details SET ` + set + ` WHERE id = $1 RETURNING ` + salaryDetailColumns

		updated, err = scanSalaryDetail(q.QueryRow(ctx, query, args...))
		if err != nil {
			return fmt.Errorf("failed to update salary status: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.SalaryDetail{}, err
	}
	return updated, nil
}

func (r *salaryDetailRepository) List(ctx context.Context, filter payroll.SalaryDetailFilter) ([]payroll.SalaryDetail, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `FROM salary_details WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil {
		baseQuery += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.ReportMonth != nil {
		baseQuery += fmt.Sprintf(" AND report_month = $%d", argIdx)
		args = append(args, *filter.ReportMonth)
		argIdx++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count salary details: %w", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`
		SELECT %s
		%s
		ORDER BY report_month DESC, employee_no
		LIMIT $%d OFFSET $%d
	`, salaryDetailColumns, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list salary details: %w", err)
	}
	defer rows.Close()

	details := make([]payroll.SalaryDetail, 0)
	for rows.Next() {
		d, err := scanSalaryDetail(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan salary detail: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate salary details: %w", err)
	}

	return details, totalCount, nil
}

func (r *salaryDetailRepository) GetStatistics(ctx context.Context, month string) (payroll.SalaryStatistics, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT status, COUNT(*),
			   COALESCE(SUM(gross_salary), 0),
			   COALESCE(SUM(net_salary), 0),
			   COALESCE(SUM(social_insurance + housing_fund + income_tax + meal_fee + other_deductions), 0)
		FROM salary_details
		WHERE report_month = $1
		GROUP BY status
	`

	rows, err := q.Query(ctx, query, month)
	if err != nil {
		return payroll.SalaryStatistics{}, fmt.Errorf("failed to get salary statistics: %w", err)
	}
	defer rows.Close()

	stats := payroll.SalaryStatistics{
		ReportMonth:     month,
		TotalGross:      decimal.Zero,
		TotalNet:        decimal.Zero,
		TotalDeductions: decimal.Zero,
		StatusCounts:    make(map[payroll.SalaryStatus]int),
	}
	for rows.Next() {
		var (
			status                   payroll.SalaryStatus
			count                    int
			gross, net, deductionSum decimal.Decimal
		)
		if err := rows.Scan(&status, &count, &gross, &net, &deductionSum); err != nil {
			return payroll.SalaryStatistics{}, fmt.Errorf("failed to scan salary statistics: %w", err)
		}
		stats.StatusCounts[status] = count
		stats.TotalCount += count
		stats.TotalGross = stats.TotalGross.Add(gross)
		stats.TotalNet = stats.TotalNet.Add(net)
		stats.TotalDeductions = stats.TotalDeductions.Add(deductionSum)
	}
	if err := rows.Err(); err != nil {
		return payroll.SalaryStatistics{}, fmt.Errorf("failed to iterate salary statistics: %w", err)
	}

	return stats, nil
}
