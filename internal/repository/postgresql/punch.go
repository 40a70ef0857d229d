package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/lrliang/hmf-ehr/internal/domain/attendance"
	"github.com/lrliang/hmf-ehr/internal/pkg/database"
)

type punchRepositoryImpl struct {
	db *database.DB
}

func NewPunchRepository(db *database.DB) attendance.PunchRepository {
	return &punchRepositoryImpl{db: db}
}

// ListByEmployeeAndDate implements attendance.PunchRepository.
func (r *punchRepositoryImpl) ListByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]attendance.Punch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, punch_date, scheduled_time, check_time, punch_type,
			   result, remark, exception_reason, is_manual, created_at
		FROM attendance_punches
		WHERE employee_id = $1 AND punch_date = $2
		ORDER BY scheduled_time, check_time NULLS LAST
	`

	rows, err := q.Query(ctx, query, employeeID, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to list punches: %w", err)
	}
	defer rows.Close()

	punches := make([]attendance.Punch, 0)
	for rows.Next() {
		var p attendance.Punch
		if err := rows.Scan(
			&p.ID, &p.EmployeeID, &p.Date, &p.ScheduledTime, &p.CheckTime, &p.Type,
			&p.Result, &p.Remark, &p.ExceptionReason, &p.IsManual, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan punch: %w", err)
		}
		punches = append(punches, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate punches: %w", err)
	}

	return punches, nil
}
