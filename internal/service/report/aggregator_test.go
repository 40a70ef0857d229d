package report

import (
	"context"
	"testing"
	"time"

	"github.com/lrliang/hmf-ehr/internal/domain/calendar"
	"github.com/lrliang/hmf-ehr/internal/domain/leave"
	"github.com/lrliang/hmf-ehr/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func daily(emp string, date string, absent bool, late int, overtime string) report.DailyReport {
	return report.DailyReport{
		ID:                   emp + "-" + date,
		EmployeeID:           emp,
		ReportDate:           mustDate(date),
		IsAbsent:             absent,
		LateMinutes:          late,
		EarlyLeaveMinutes:    1,
		MakeupCount:          1,
		Leave:                leave.Days{Personal: decimal.NewFromFloat(0.5)},
		LegalHolidayDays:     decimal.Zero,
		WeekendOvertimeHours: decimal.RequireFromString(overtime),
		BusinessTripHours:    decimal.NewFromInt(4),
		CalculationStatus:    report.CalculationStatusSuccess,
	}
}

func TestSummarize_SumsDailyReports(t *testing.T) {
	emp := newEmployee("E001")
	dailies := []report.DailyReport{
		daily(emp.ID, "2024-03-09", false, 5, "2"),
		daily(emp.ID, "2024-03-11", true, 0, "0"),
		daily(emp.ID, "2024-03-12", false, 12, "1.5"),
	}
	calcAt := time.Date(2024, 4, 1, 2, 0, 0, 0, time.UTC)

	m := Summarize(emp, "2024-03", dailies, calendar.NewDefaultPolicy(), calcAt)

	assert.Equal(t, emp.ID, m.EmployeeID)
	assert.Equal(t, emp.EmployeeNo, m.EmployeeNo)
	assert.Equal(t, "2024-03", m.ReportMonth)
	assert.Equal(t, "21", m.ExpectedWorkingDays.String())
	assert.Equal(t, "2", m.ActualWorkingDays.String())
	assert.Equal(t, 1, m.AbsentDays)
	assert.Equal(t, 17, m.TotalLateMinutes)
	assert.Equal(t, 3, m.TotalEarlyLeaveMinutes)
	assert.Equal(t, 3, m.MakeupCount)
	assert.Equal(t, "3.5", m.WeekendOvertimeHours.String())
	assert.Equal(t, "12", m.BusinessTripHours.String())
	assert.Equal(t, "1.5", m.Leave.Personal.String())
	assert.True(t, m.BusinessTripNightAllowance.IsZero())
	assert.True(t, m.WorkingDayDutyAllowance.IsZero())
	assert.Equal(t, report.ConfirmationStatusDraft, m.ConfirmationStatus)

	assert.Equal(t, 3, m.CalculationSnapshot.DailyReportCount)
	assert.Equal(t, calcAt, m.CalculationSnapshot.CalculatedAt)
	assert.ElementsMatch(t, []string{
		emp.ID + "-2024-03-09",
		emp.ID + "-2024-03-11",
		emp.ID + "-2024-03-12",
	}, m.CalculationSnapshot.DailyReportIDs)
}

func TestSummarize_NoDailies(t *testing.T) {
	m := Summarize(newEmployee("E001"), "2024-02", nil, calendar.NewDefaultPolicy(), time.Now())

	assert.Equal(t, "21", m.ExpectedWorkingDays.String())
	assert.True(t, m.ActualWorkingDays.IsZero())
	assert.Equal(t, 0, m.CalculationSnapshot.DailyReportCount)
}

func TestMonthlyAggregator_Aggregate(t *testing.T) {
	ctx := context.Background()
	emp := newEmployee("E001")

	dailyRepo := newFakeDailyRepo()
	monthlyRepo := newFakeMonthlyRepo()
	agg := NewMonthlyAggregator(dailyRepo, monthlyRepo, calendar.NewDefaultPolicy())

	t.Run("no daily reports", func(t *testing.T) {
		m, err := agg.Aggregate(ctx, emp, "2024-03")
		require.NoError(t, err)
		assert.Nil(t, m)
		_, ok := monthlyRepo.get(emp.ID, "2024-03")
		assert.False(t, ok)
	})

	_, err := dailyRepo.Upsert(ctx, daily(emp.ID, "2024-03-11", false, 10, "0"))
	require.NoError(t, err)

	t.Run("creates draft", func(t *testing.T) {
		m, err := agg.Aggregate(ctx, emp, "2024-03")
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.NotEmpty(t, m.ID)
		assert.Equal(t, 10, m.TotalLateMinutes)
		assert.Equal(t, report.ConfirmationStatusDraft, m.ConfirmationStatus)
	})

	t.Run("confirmed report is left alone", func(t *testing.T) {
		stored, _ := monthlyRepo.get(emp.ID, "2024-03")
		_, err := monthlyRepo.Confirm(ctx, stored.ID, strPtr("hr-admin"), nil, time.Now())
		require.NoError(t, err)

		_, err = dailyRepo.Upsert(ctx, daily(emp.ID, "2024-03-12", false, 30, "0"))
		require.NoError(t, err)

		m, err := agg.Aggregate(ctx, emp, "2024-03")
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, 10, m.TotalLateMinutes)
		assert.Equal(t, report.ConfirmationStatusConfirmed, m.ConfirmationStatus)

		after, _ := monthlyRepo.get(emp.ID, "2024-03")
		assert.Equal(t, stored.LastCalculatedAt, after.LastCalculatedAt)
	})

	t.Run("confirmed report survives removal of its daily reports", func(t *testing.T) {
		_, err := dailyRepo.Upsert(ctx, daily(emp.ID, "2024-04-02", false, 7, "0"))
		require.NoError(t, err)
		draft, err := agg.Aggregate(ctx, emp, "2024-04")
		require.NoError(t, err)
		require.NotNil(t, draft)
		confirmed, err := monthlyRepo.Confirm(ctx, draft.ID, strPtr("hr-admin"), nil, time.Now())
		require.NoError(t, err)

		dailyRepo.delete(emp.ID, "2024-04-02")

		m, err := agg.Aggregate(ctx, emp, "2024-04")
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, confirmed.ID, m.ID)
		assert.Equal(t, 7, m.TotalLateMinutes)
		assert.Equal(t, report.ConfirmationStatusConfirmed, m.ConfirmationStatus)
	})

	t.Run("invalid month", func(t *testing.T) {
		_, err := agg.Aggregate(ctx, emp, "2024-13")
		assert.ErrorIs(t, err, calendar.ErrInvalidMonth)
	})

	t.Run("store failure", func(t *testing.T) {
		other := newEmployee("E002")
		_, err := dailyRepo.Upsert(ctx, daily(other.ID, "2024-03-11", false, 0, "0"))
		require.NoError(t, err)
		monthlyRepo.upsertErr = errStoreDown
		defer func() { monthlyRepo.upsertErr = nil }()

		_, err = agg.Aggregate(ctx, other, "2024-03")
		assert.ErrorIs(t, err, errStoreDown)
	})
}
