package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lrliang/hmf-ehr/internal/domain/report"
	"github.com/lrliang/hmf-ehr/internal/pkg/database"
)

type dailyReportRepositoryImpl struct {
	db *database.DB
}

func NewDailyReportRepository(db *database.DB) report.DailyReportRepository {
	return &dailyReportRepositoryImpl{db: db}
}

const dailyReportColumns = `
	id, employee_id, employee_no, employee_name, report_date, first_check_in, last_check_out,
	status, annual_leave_days, personal_leave_days, sick_leave_days, bereavement_leave_days,
	childcare_leave_days, maternity_leave_days, paternity_leave_days, legal_holiday_days,
	makeup_count, late_minutes, early_leave_minutes, actual_working_hours,
	workday_overtime_hours, weekend_overtime_hours, legal_holiday_overtime_hours,
	business_trip_hours, is_absent, calculation_status, calculation_message,
	last_calculated_at, created_at, updated_at`

func scanDailyReport(row pgx.Row) (report.DailyReport, error) {
	var r report.DailyReport
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.EmployeeNo, &r.EmployeeName, &r.ReportDate, &r.FirstCheckIn, &r.LastCheckOut,
		&r.Status, &r.Leave.Annual, &r.Leave.Personal, &r.Leave.Sick, &r.Leave.Bereavement,
		&r.Leave.Childcare, &r.Leave.Maternity, &r.Leave.Paternity, &r.LegalHolidayDays,
		&r.MakeupCount, &r.LateMinutes, &r.EarlyLeaveMinutes, &r.ActualWorkingHours,
		&r.WorkdayOvertimeHours, &r.WeekendOvertimeHours, &r.LegalHolidayOvertimeHours,
		&r.BusinessTripHours, &r.IsAbsent, &r.CalculationStatus, &r.CalculationMessage,
		&r.LastCalculatedAt, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

func (d *dailyReportRepositoryImpl) GetByID(ctx context.Context, id string) (report.DailyReport, error) {
	q := GetQuerier(ctx, d.db)

	query := `SELECT ` + dailyReportColumns + ` FROM daily_attendance_reports WHERE id = $1`

	r, err := scanDailyReport(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return report.DailyReport{}, report.ErrDailyReportNotFound
		}
		return report.DailyReport{}, fmt.Errorf("failed to get daily report: %w", err)
	}
	return r, nil
}

func (d *dailyReportRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (report.DailyReport, error) {
	q := GetQuerier(ctx, d.db)

	query := `SELECT ` + dailyReportColumns + ` FROM daily_attendance_reports WHERE employee_id = $1 AND report_date = $2`

	r, err := scanDailyReport(q.QueryRow(ctx, query, employeeID, date.Format("2006-01-02")))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return report.DailyReport{}, report.ErrDailyReportNotFound
		}
		return report.DailyReport{}, fmt.Errorf("failed to get daily report: %w", err)
	}
	return r, nil
}

// Upsert writes every computed column. The row id and created_at of an
// existing (employee_id, report_date) row are kept.
func (d *dailyReportRepositoryImpl) Upsert(ctx context.Context, in report.DailyReport) (report.DailyReport, error) {
	q := GetQuerier(ctx, d.db)

	query := `
		INSERT INTO daily_attendance_reports (
			employee_id, employee_no, employee_name, report_date, first_check_in, last_check_out,
			status, annual_leave_days, personal_leave_days, sick_leave_days, bereavement_leave_days,
			childcare_leave_days, maternity_leave_days, paternity_leave_days, legal_holiday_days,
			makeup_count, late_minutes, early_leave_minutes, actual_working_hours,
			workday_overtime_hours, weekend_overtime_hours, legal_holiday_overtime_hours,
			business_trip_hours, is_absent, calculation_status, calculation_message, last_calculated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $26, $27
		)
		ON CONFLICT (employee_id, report_date) DO UPDATE SET
			employee_no = EXCLUDED.employee_no,
			employee_name = EXCLUDED.employee_name,
			first_check_in = EXCLUDED.first_check_in,
			last_check_out = EXCLUDED.last_check_out,
			status = EXCLUDED.status,
			annual_leave_days = EXCLUDED.annual_leave_days,
			personal_leave_days = EXCLUDED.personal_leave_days,
			sick_leave_days = EXCLUDED.sick_leave_days,
			bereavement_leave_days = EXCLUDED.bereavement_leave_days,
			childcare_leave_days = EXCLUDED.childcare_leave_days,
			maternity_leave_days = EXCLUDED.maternity_leave_days,
			paternity_leave_days = EXCLUDED.paternity_leave_days,
			legal_holiday_days = EXCLUDED.legal_holiday_days,
			makeup_count = EXCLUDED.makeup_count,
			late_minutes = EXCLUDED.late_minutes,
			early_leave_minutes = EXCLUDED.early_leave_minutes,
			actual_working_hours = EXCLUDED.actual_working_hours,
			workday_overtime_hours = EXCLUDED.workday_overtime_hours,
			weekend_overtime_hours = EXCLUDED.weekend_overtime_hours,
			legal_holiday_overtime_hours = EXCLUDED.legal_holiday_overtime_hours,
			business_trip_hours = EXCLUDED.business_trip_hours,
			is_absent = EXCLUDED.is_absent,
			calculation_status = EXCLUDED.calculation_status,
			calculation_message = EXCLUDED.calculation_message,
			last_calculated_at = EXCLUDED.last_calculated_at,
			updated_at = NOW()
		RETURNING ` + dailyReportColumns

	out, err := scanDailyReport(q.QueryRow(ctx, query,
		in.EmployeeID, in.EmployeeNo, in.EmployeeName, in.ReportDate.Format("2006-01-02"), in.FirstCheckIn, in.LastCheckOut,
		in.Status, in.Leave.Annual, in.Leave.Personal, in.Leave.Sick, in.Leave.Bereavement,
		in.Leave.Childcare, in.Leave.Maternity, in.Leave.Paternity, in.LegalHolidayDays,
		in.MakeupCount, in.LateMinutes, in.EarlyLeaveMinutes, in.ActualWorkingHours,
		in.WorkdayOvertimeHours, in.WeekendOvertimeHours, in.LegalHolidayOvertimeHours,
		in.BusinessTripHours, in.IsAbsent, in.CalculationStatus, in.CalculationMessage, in.LastCalculatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return report.DailyReport{}, report.ErrReportAlreadyExists
		}
		return report.DailyReport{}, fmt.Errorf("failed to upsert daily report: %w", err)
	}
	return out, nil
}

func (d *dailyReportRepositoryImpl) ListByEmployeeAndRange(ctx context.Context, employeeID string, start, end time.Time) ([]report.DailyReport, error) {
	q := GetQuerier(ctx, d.db)

	query := `
		SELECT ` + dailyReportColumns + `
		FROM daily_attendance_reports
		WHERE employee_id = $1 AND report_date BETWEEN $2 AND $3
		ORDER BY report_date
	`

	rows, err := q.Query(ctx, query, employeeID, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to list daily reports: %w", err)
	}
	defer rows.Close()

	reports := make([]report.DailyReport, 0)
	for rows.Next() {
		r, err := scanDailyReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (d *dailyReportRepositoryImpl) List(ctx context.Context, filter report.DailyReportFilter) ([]report.DailyReport, int64, error) {
	q := GetQuerier(ctx, d.db)

	baseQuery := `FROM daily_attendance_reports WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil {
		baseQuery += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.StartDate != nil {
		baseQuery += fmt.Sprintf(" AND report_date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil {
		baseQuery += fmt.Sprintf(" AND report_date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.CalculationStatus != nil {
		baseQuery += fmt.Sprintf(" AND calculation_status = $%d", argIdx)
		args = append(args, *filter.CalculationStatus)
		argIdx++
	}

	// Count query
	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count daily reports: %w", err)
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
		ORDER BY report_date DESC, employee_no
		LIMIT $%d OFFSET $%d
	`, dailyReportColumns, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list daily reports: %w", err)
	}
	defer rows.Close()

	reports := make([]report.DailyReport, 0)
	for rows.Next() {
		r, err := scanDailyReport(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan daily report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate daily reports: %w", err)
	}

	return reports, totalCount, nil
}
