package report

import (
	"context"
	"testing"
	"time"

	"github.com/lrliang/hmf-ehr/internal/domain/attendance"
	"github.com/lrliang/hmf-ehr/internal/domain/calendar"
	"github.com/lrliang/hmf-ehr/internal/domain/employee"
	"github.com/lrliang/hmf-ehr/internal/domain/leave"
	"github.com/lrliang/hmf-ehr/internal/domain/report"
	"github.com/lrliang/hmf-ehr/internal/pkg/keylock"
	"github.com/lrliang/hmf-ehr/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipeline struct {
	employees *fakeEmployeeRepo
	punches   *fakePunchRepo
	daily     *fakeDailyRepo
	monthly   *fakeMonthlyRepo
	hub       *sse.Hub
	orch      *Orchestrator
}

func newPipeline(employees ...employee.Employee) *pipeline {
	p := &pipeline{
		employees: &fakeEmployeeRepo{employees: employees},
		punches:   newFakePunchRepo(),
		daily:     newFakeDailyRepo(),
		monthly:   newFakeMonthlyRepo(),
		hub:       sse.NewHub(),
	}
	policy := calendar.NewDefaultPolicy()
	calc := NewDailyCalculator(policy, leave.NoopSource{}, DefaultCalculatorConfig())
	agg := NewMonthlyAggregator(p.daily, p.monthly, policy)
	p.orch = NewOrchestrator(p.employees, p.punches, p.daily, calc, agg, keylock.NewLocalLocker(), p.hub, 4)
	return p
}

func workday(date string, inResult attendance.PunchResult, in, out string) []attendance.Punch {
	return []attendance.Punch{
		punch(attendance.PunchTypeCheckIn, inResult, "09:00", at(date, in)),
		punch(attendance.PunchTypeCheckOut, attendance.PunchResultOnTime, "18:00", at(date, out)),
	}
}

func marchJob() DailyJob {
	return DailyJob{StartDate: mustDate("2024-03-11"), EndDate: mustDate("2024-03-13")}
}

func TestOrchestrator_RunDaily_Idempotent(t *testing.T) {
	ctx := context.Background()
	a, b := newEmployee("E001"), newEmployee("E002")
	p := newPipeline(a, b)
	p.punches.set(a.ID, "2024-03-11", workday("2024-03-11", attendance.PunchResultOnTime, "09:00:00", "18:00:00")...)
	p.punches.set(b.ID, "2024-03-12", workday("2024-03-12", attendance.PunchResultLate, "09:10:00", "18:00:00")...)

	first, err := p.orch.RunDaily(ctx, marchJob())
	require.NoError(t, err)
	assert.Equal(t, JobStatusCompleted, first.Status)
	assert.Equal(t, 6, first.ProcessedCount)
	assert.Equal(t, 0, first.SkippedCount)
	assert.Equal(t, 0, first.FailedCount)
	assert.Equal(t, 2, first.MonthlyCount)
	assert.Equal(t, 6, p.daily.count())

	before, err := p.daily.GetByEmployeeAndDate(ctx, b.ID, mustDate("2024-03-12"))
	require.NoError(t, err)
	assert.Equal(t, 10, before.LateMinutes)

	second, err := p.orch.RunDaily(ctx, marchJob())
	require.NoError(t, err)
	assert.Equal(t, 0, second.ProcessedCount)
	assert.Equal(t, 6, second.SkippedCount)
	assert.Equal(t, 6, p.daily.count(), "no duplicate rows")

	after, err := p.daily.GetByEmployeeAndDate(ctx, b.ID, mustDate("2024-03-12"))
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, before.LastCalculatedAt, after.LastCalculatedAt)

	m, ok := p.monthly.get(b.ID, "2024-03")
	require.True(t, ok)
	assert.Equal(t, 10, m.TotalLateMinutes)
	assert.Equal(t, "1", m.ActualWorkingDays.String())
	assert.Equal(t, 2, m.AbsentDays)
}

func TestOrchestrator_RunDaily_ForceRecalculates(t *testing.T) {
	ctx := context.Background()
	a := newEmployee("E001")
	p := newPipeline(a)

	_, err := p.orch.RunDaily(ctx, marchJob())
	require.NoError(t, err)

	p.punches.set(a.ID, "2024-03-11", workday("2024-03-11", attendance.PunchResultLate, "09:25:00", "18:00:00")...)
	job := marchJob()
	job.Force = true
	res, err := p.orch.RunDaily(ctx, job)
	require.NoError(t, err)
	assert.Equal(t, 3, res.ProcessedCount)
	assert.Equal(t, 0, res.SkippedCount)

	r, err := p.daily.GetByEmployeeAndDate(ctx, a.ID, mustDate("2024-03-11"))
	require.NoError(t, err)
	assert.Equal(t, 25, r.LateMinutes)
	assert.False(t, r.IsAbsent)
	assert.Equal(t, 3, p.daily.count())
}

func TestOrchestrator_RunDaily_UnitFailureDoesNotStopBatch(t *testing.T) {
	ctx := context.Background()
	a := newEmployee("E001")
	p := newPipeline(a)
	p.punches.set(a.ID, "2024-03-12",
		punch(attendance.PunchTypeCheckIn, attendance.PunchResultLate, "nine", at("2024-03-12", "09:30:00")))

	res, err := p.orch.RunDaily(ctx, marchJob())
	require.NoError(t, err)
	assert.Equal(t, 3, res.ProcessedCount)
	assert.Equal(t, 1, res.FailedCount)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "2024-03-12", res.Errors[0].Date)

	r, err := p.daily.GetByEmployeeAndDate(ctx, a.ID, mustDate("2024-03-12"))
	require.NoError(t, err)
	assert.Equal(t, report.CalculationStatusFailed, r.CalculationStatus)
	assert.True(t, r.IsAbsent)

	// Failed rows are retried on the next unforced run.
	retry, err := p.orch.RunDaily(ctx, marchJob())
	require.NoError(t, err)
	assert.Equal(t, 2, retry.SkippedCount)
	assert.Equal(t, 1, retry.FailedCount)
}

func TestOrchestrator_RunDaily_ConfirmedMonthIsFrozen(t *testing.T) {
	ctx := context.Background()
	a := newEmployee("E001")
	p := newPipeline(a)
	p.punches.set(a.ID, "2024-03-11", workday("2024-03-11", attendance.PunchResultOnTime, "09:00:00", "18:00:00")...)

	_, err := p.orch.RunDaily(ctx, marchJob())
	require.NoError(t, err)

	m, ok := p.monthly.get(a.ID, "2024-03")
	require.True(t, ok)
	confirmed, err := p.monthly.Confirm(ctx, m.ID, strPtr("hr-admin"), strPtr("ok"), time.Now())
	require.NoError(t, err)

	p.punches.set(a.ID, "2024-03-11", workday("2024-03-11", attendance.PunchResultLate, "09:45:00", "18:00:00")...)
	job := marchJob()
	job.Force = true
	_, err = p.orch.RunDaily(ctx, job)
	require.NoError(t, err)

	r, err := p.daily.GetByEmployeeAndDate(ctx, a.ID, mustDate("2024-03-11"))
	require.NoError(t, err)
	assert.Equal(t, 45, r.LateMinutes, "daily rows are still recalculated")

	after, ok := p.monthly.get(a.ID, "2024-03")
	require.True(t, ok)
	assert.Equal(t, confirmed, after)
	assert.Equal(t, 0, after.TotalLateMinutes)
}

func TestOrchestrator_RunDaily_StoreFailureAborts(t *testing.T) {
	a := newEmployee("E001")
	p := newPipeline(a)
	p.daily.upsertErr = errStoreDown

	res, err := p.orch.RunDaily(context.Background(), marchJob())
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, JobStatusFailed, res.Status)
	assert.Equal(t, 0, res.MonthlyCount)
}

func TestOrchestrator_RunDaily_Cancelled(t *testing.T) {
	a := newEmployee("E001")
	p := newPipeline(a)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := p.orch.RunDaily(ctx, marchJob())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, JobStatusFailed, res.Status)
	assert.Equal(t, 0, p.daily.count())
}

func TestOrchestrator_RunDaily_UnknownEmployees(t *testing.T) {
	p := newPipeline(newEmployee("E001"))
	job := marchJob()
	job.EmployeeIDs = []string{"6f1c1f5e-6a8e-4a43-9d1c-0a4f0a0b8c11"}

	_, err := p.orch.RunDaily(context.Background(), job)
	assert.ErrorIs(t, err, report.ErrNoEmployeesSelected)
}

func TestOrchestrator_RunDaily_InactiveEmployeesIgnored(t *testing.T) {
	active := newEmployee("E001")
	gone := newEmployee("E002")
	gone.Status = employee.EmploymentStatusResigned
	p := newPipeline(active, gone)

	res, err := p.orch.RunDaily(context.Background(), marchJob())
	require.NoError(t, err)
	assert.Equal(t, 3, res.ProcessedCount)
	assert.Equal(t, 1, res.MonthlyCount)
}

func TestOrchestrator_RunDaily_PublishesEvents(t *testing.T) {
	p := newPipeline(newEmployee("E001"))
	events, cleanup := p.hub.Subscribe(sse.TopicReportJobs)
	defer cleanup()

	res, err := p.orch.RunDaily(context.Background(), marchJob())
	require.NoError(t, err)

	started := <-events
	assert.Equal(t, EventJobStarted, started.Event)
	completed := <-events
	assert.Equal(t, EventJobCompleted, completed.Event)

	progress, ok := completed.Data.(JobProgress)
	require.True(t, ok)
	assert.Equal(t, res.JobID, progress.JobID)
	assert.Equal(t, "daily", progress.Kind)
	assert.Equal(t, 3, progress.TotalUnits)
	assert.Equal(t, 3, progress.ProcessedCount)
}

func TestOrchestrator_RunForDate(t *testing.T) {
	ctx := context.Background()
	a, b := newEmployee("E001"), newEmployee("E002")
	p := newPipeline(a, b)

	_, err := p.orch.RunForDate(ctx, mustDate("2024-03-11"), []string{a.ID})
	require.NoError(t, err)
	res, err := p.orch.RunForDate(ctx, mustDate("2024-03-11"), []string{a.ID})
	require.NoError(t, err)

	assert.Equal(t, 1, res.ProcessedCount, "date runs always recalculate")
	assert.Equal(t, 0, res.SkippedCount)
	assert.Equal(t, 1, p.daily.count())
}

func TestOrchestrator_RunMonthly(t *testing.T) {
	ctx := context.Background()
	a, b := newEmployee("E001"), newEmployee("E002")
	p := newPipeline(a, b)
	_, err := p.daily.Upsert(ctx, daily(a.ID, "2024-03-11", false, 7, "0"))
	require.NoError(t, err)

	res, err := p.orch.RunMonthly(ctx, "2024-03", "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.MonthlyCount, "employees without daily reports are skipped")
	assert.Equal(t, 0, res.MonthlyFailed)

	m, ok := p.monthly.get(a.ID, "2024-03")
	require.True(t, ok)
	assert.Equal(t, 7, m.TotalLateMinutes)

	_, err = p.orch.RunMonthly(ctx, "March", "")
	assert.ErrorIs(t, err, calendar.ErrInvalidMonth)

	p.monthly.upsertErr = errStoreDown
	res, err = p.orch.RunMonthly(ctx, "2024-03", a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.MonthlyFailed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "2024-03", res.Errors[0].Month)
}
