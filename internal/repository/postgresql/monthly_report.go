package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/lrliang/hmf-ehr/internal/domain/report"
	"github.com/lrliang/hmf-ehr/internal/pkg/database"
)

type monthlyReportRepositoryImpl struct {
	db *database.DB
}

func NewMonthlyReportRepository(db *database.DB) report.MonthlyReportRepository {
	return &monthlyReportRepositoryImpl{db: db}
}

const monthlyReportColumns = `
	id, employee_id, employee_no, employee_name, report_month, expected_working_days,
	actual_working_days, legal_holiday_days, absent_days, annual_leave_days, personal_leave_days,
	sick_leave_days, bereavement_leave_days, childcare_leave_days, maternity_leave_days,
	paternity_leave_days, total_late_minutes, total_early_leave_minutes, makeup_count,
	workday_overtime_hours, weekend_overtime_hours, legal_holiday_overtime_hours,
	business_trip_hours, business_trip_night_allowance, working_day_duty_allowance,
	calculation_snapshot, confirmation_status, confirmation_initiated_at,
	confirmation_completed_at, confirmed_by, remark, last_calculated_at, created_at, updated_at`

func scanMonthlyReport(row pgx.Row) (report.MonthlyReport, error) {
	var m report.MonthlyReport
	var snapshot []byte
	err := row.Scan(
		&m.ID, &m.EmployeeID, &m.EmployeeNo, &m.EmployeeName, &m.ReportMonth, &m.ExpectedWorkingDays,
		&m.ActualWorkingDays, &m.LegalHolidayDays, &m.AbsentDays, &m.Leave.Annual, &m.Leave.Personal,
		&m.Leave.Sick, &m.Leave.Bereavement, &m.Leave.Childcare, &m.Leave.Maternity,
		&m.Leave.Paternity, &m.TotalLateMinutes, &m.TotalEarlyLeaveMinutes, &m.MakeupCount,
		&m.WorkdayOvertimeHours, &m.WeekendOvertimeHours, &m.LegalHolidayOvertimeHours,
		&m.BusinessTripHours, &m.BusinessTripNightAllowance, &m.WorkingDayDutyAllowance,
		&snapshot, &m.ConfirmationStatus, &m.ConfirmationInitiatedAt,
		&m.ConfirmationCompletedAt, &m.ConfirmedBy, &m.Remark, &m.LastCalculatedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return m, err
	}
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &m.CalculationSnapshot); err != nil {
			return m, fmt.Errorf("failed to decode calculation snapshot: %w", err)
		}
	}
	return m, nil
}

func (r *monthlyReportRepositoryImpl) GetByID(ctx context.Context, id string) (report.MonthlyReport, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + monthlyReportColumns + ` FROM monthly_attendance_reports WHERE id = $1`

	m, err := scanMonthlyReport(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return report.MonthlyReport{}, report.ErrMonthlyReportNotFound
		}
		return report.MonthlyReport{}, fmt.Errorf("failed to get monthly report: %w", err)
	}
	return m, nil
}

func (r *monthlyReportRepositoryImpl) GetByEmployeeAndMonth(ctx context.Context, employeeID string, month string) (report.MonthlyReport, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + monthlyReportColumns + ` FROM monthly_attendance_reports WHERE employee_id = $1 AND report_month = $2`

	m, err := scanMonthlyReport(q.QueryRow(ctx, query, employeeID, month))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return report.MonthlyReport{}, report.ErrMonthlyReportNotFound
		}
		return report.MonthlyReport{}, fmt.Errorf("failed to get monthly report: %w", err)
	}
	return m, nil
}

// Upsert writes the aggregated columns. Confirmation columns of an existing
// row are never touched, and a confirmed or locked row is returned as stored.
func (r *monthlyReportRepositoryImpl) Upsert(ctx context.Context, in report.MonthlyReport) (report.MonthlyReport, error) {
	q := GetQuerier(ctx, r.db)

	snapshot, err := json.Marshal(in.CalculationSnapshot)
	if err != nil {
		return report.MonthlyReport{}, fmt.Errorf("failed to encode calculation snapshot: %w", err)
	}
	status := in.ConfirmationStatus
	if status == "" {
		status = report.ConfirmationStatusDraft
	}

	query := `
		INSERT INTO monthly_attendance_reports (
			employee_id, employee_no, employee_name, report_month, expected_working_days,
			actual_working_days, legal_holiday_days, absent_days, annual_leave_days, personal_leave_days,
			sick_leave_days, bereavement_leave_days, childcare_leave_days, maternity_leave_days,
			paternity_leave_days, total_late_minutes, total_early_leave_minutes, makeup_count,
			workday_overtime_hours, weekend_overtime_hours, legal_holiday_overtime_hours,
			business_trip_hours, business_trip_night_allowance, working_day_duty_allowance,
			calculation_snapshot, confirmation_status, last_calculated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $26, $27
		)
		ON CONFLICT (employee_id, report_month) DO UPDATE SET
			employee_no = EXCLUDED.employee_no,
			employee_name = EXCLUDED.employee_name,
			expected_working_days = EXCLUDED.expected_working_days,
			actual_working_days = EXCLUDED.actual_working_days,
			legal_holiday_days = EXCLUDED.legal_holiday_days,
			absent_days = EXCLUDED.absent_days,
			annual_leave_days = EXCLUDED.annual_leave_days,
			personal_leave_days = EXCLUDED.personal_leave_days,
			sick_leave_days = EXCLUDED.sick_leave_days,
			bereavement_leave_days = EXCLUDED.bereavement_leave_days,
			childcare_leave_days = EXCLUDED.childcare_leave_days,
			maternity_leave_days = EXCLUDED.maternity_leave_days,
			paternity_leave_days = EXCLUDED.paternity_leave_days,
			total_late_minutes = EXCLUDED.total_late_minutes,
			total_early_leave_minutes = EXCLUDED.total_early_leave_minutes,
			makeup_count = EXCLUDED.makeup_count,
			workday_overtime_hours = EXCLUDED.workday_overtime_hours,
			weekend_overtime_hours = EXCLUDED.weekend_overtime_hours,
			legal_holiday_overtime_hours = EXCLUDED.legal_holiday_overtime_hours,
			business_trip_hours = EXCLUDED.business_trip_hours,
			business_trip_night_allowance = EXCLUDED.business_trip_night_allowance,
			working_day_duty_allowance = EXCLUDED.working_day_duty_allowance,
			calculation_snapshot = EXCLUDED.calculation_snapshot,
			last_calculated_at = EXCLUDED.last_calculated_at,
			updated_at = NOW()
		WHERE monthly_attendance_reports.confirmation_status NOT IN ('confirmed', 'locked')
		RETURNING ` + monthlyReportColumns

	out, err := scanMonthlyReport(q.QueryRow(ctx, query,
		in.EmployeeID, in.EmployeeNo, in.EmployeeName, in.ReportMonth, in.ExpectedWorkingDays,
		in.ActualWorkingDays, in.LegalHolidayDays, in.AbsentDays, in.Leave.Annual, in.Leave.Personal,
		in.Leave.Sick, in.Leave.Bereavement, in.Leave.Childcare, in.Leave.Maternity,
		in.Leave.Paternity, in.TotalLateMinutes, in.TotalEarlyLeaveMinutes, in.MakeupCount,
		in.WorkdayOvertimeHours, in.WeekendOvertimeHours, in.LegalHolidayOvertimeHours,
		in.BusinessTripHours, in.BusinessTripNightAllowance, in.WorkingDayDutyAllowance,
		snapshot, status, in.LastCalculatedAt,
	))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			// The row exists and is final.
			return r.GetByEmployeeAndMonth(ctx, in.EmployeeID, in.ReportMonth)
		case isUniqueViolation(err):
			return report.MonthlyReport{}, report.ErrReportAlreadyExists
		}
		return report.MonthlyReport{}, fmt.Errorf("failed to upsert monthly report: %w", err)
	}
	return out, nil
}

func (r *monthlyReportRepositoryImpl) Confirm(ctx context.Context, id string, confirmedBy *string, remark *string, at time.Time) (report.MonthlyReport, error) {
	var confirmed report.MonthlyReport

	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		var status report.ConfirmationStatus
		err := q.QueryRow(ctx, `SELECT confirmation_status FROM monthly_attendance_reports WHERE id = $1 FOR UPDATE`, id).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return report.ErrMonthlyReportNotFound
			}
			return fmt.Errorf("failed to lock monthly report: %w", err)
		}
		switch status {
		case report.ConfirmationStatusConfirmed:
			return report.ErrReportAlreadyConfirmed
		case report.ConfirmationStatusLocked:
			return report.ErrReportLocked
		}

		query := `
			UPDATE monthly_attendance_reports
			SET confirmation_status = $2,
				confirmation_initiated_at = COALESCE(confirmation_initiated_at, $3),
				confirmation_completed_at = $3,
				confirmed_by = $4,
				remark = COALESCE($5, remark),
				updated_at = NOW()
			WHERE id = $1
			RETURNING ` + monthlyReportColumns

		confirmed, err = scanMonthlyReport(q.QueryRow(ctx, query, id, report.ConfirmationStatusConfirmed, at, confirmedBy, remark))
		if err != nil {
			return fmt.Errorf("failed to confirm monthly report: %w", err)
		}
		return nil
	})
	if err != nil {
		return report.MonthlyReport{}, err
	}
	return confirmed, nil
}

func (r *monthlyReportRepositoryImpl) List(ctx context.Context, filter report.MonthlyReportFilter) ([]report.MonthlyReport, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `FROM monthly_attendance_reports WHERE 1=1`
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
	if filter.ConfirmationStatus != nil {
		baseQuery += fmt.Sprintf(" AND confirmation_status = $%d", argIdx)
		args = append(args, *filter.ConfirmationStatus)
		argIdx++
	}

	// Count query
	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count monthly reports: %w", err)
	}

	// Pagination
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
	`, monthlyReportColumns, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list monthly reports: %w", err)
	}
	defer rows.Close()

	reports := make([]report.MonthlyReport, 0)
	for rows.Next() {
		m, err := scanMonthlyReport(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan monthly report: %w", err)
		}
		reports = append(reports, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate monthly reports: %w", err)
	}

	return reports, totalCount, nil
}

func (r *monthlyReportRepositoryImpl) CountByStatus(ctx context.Context, month string) ([]report.MonthlyStatusCount, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT confirmation_status, COUNT(*)
		FROM monthly_attendance_reports
		WHERE report_month = $1
		GROUP BY confirmation_status
	`

	rows, err := q.Query(ctx, query, month)
	if err != nil {
		return nil, fmt.Errorf("failed to count monthly reports: %w", err)
	}
	defer rows.Close()

	counts := make([]report.MonthlyStatusCount, 0)
	for rows.Next() {
		var c report.MonthlyStatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
