package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/lrliang/hmf-ehr/internal/domain/attendance"
	"github.com/lrliang/hmf-ehr/internal/domain/employee"
	"github.com/lrliang/hmf-ehr/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeeRepository_ListActive(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(setup.DB)

	e2 := setup.CreateEmployee(t, "E002", "Bo", "active", "7000")
	e1 := setup.CreateEmployee(t, "E001", "An", "active", "6525")
	gone := setup.CreateEmployee(t, "E003", "Chen", "resigned", "5000")

	t.Run("orders by employee number", func(t *testing.T) {
		list, err := repo.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, e1, list[0].ID)
		assert.Equal(t, e2, list[1].ID)
		assert.Equal(t, "6525", list[0].BaseSalary.String())
	})

	t.Run("filters ids to active employees", func(t *testing.T) {
		list, err := repo.ListActiveByIDs(ctx, []string{e2, gone})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, e2, list[0].ID)
	})

	t.Run("empty id list", func(t *testing.T) {
		list, err := repo.ListActiveByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("get by id", func(t *testing.T) {
		emp, err := repo.GetByID(ctx, gone)
		require.NoError(t, err)
		assert.Equal(t, employee.EmploymentStatusResigned, emp.Status)

		_, err = repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	})
}

func TestPunchRepository_ListByEmployeeAndDate(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewPunchRepository(setup.DB)

	empID := setup.CreateEmployee(t, "E001", "An", "active", "6525")
	day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	checkIn := time.Date(2024, 3, 11, 1, 2, 0, 0, time.UTC)

	insert := `
		INSERT INTO attendance_punches (employee_id, punch_date, scheduled_time, check_time, punch_type, result)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := setup.DB.Exec(ctx, insert, empID, "2024-03-11", "18:00", nil, attendance.PunchTypeCheckOut, attendance.PunchResultAbsent)
	require.NoError(t, err)
	_, err = setup.DB.Exec(ctx, insert, empID, "2024-03-11", "09:00", checkIn, attendance.PunchTypeCheckIn, attendance.PunchResultOnTime)
	require.NoError(t, err)
	_, err = setup.DB.Exec(ctx, insert, empID, "2024-03-12", "09:00", nil, attendance.PunchTypeCheckIn, attendance.PunchResultAbsent)
	require.NoError(t, err)

	punches, err := repo.ListByEmployeeAndDate(ctx, empID, day)
	require.NoError(t, err)
	require.Len(t, punches, 2)
	assert.Equal(t, "09:00", punches[0].ScheduledTime)
	require.NotNil(t, punches[0].CheckTime)
	assert.True(t, checkIn.Equal(*punches[0].CheckTime))
	assert.Equal(t, "18:00", punches[1].ScheduledTime)
	assert.Nil(t, punches[1].CheckTime)
}
