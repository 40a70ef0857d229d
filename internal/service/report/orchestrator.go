package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lrliang/hmf-ehr/internal/domain/attendance"
	"github.com/lrliang/hmf-ehr/internal/domain/calendar"
	"github.com/lrliang/hmf-ehr/internal/domain/employee"
	"github.com/lrliang/hmf-ehr/internal/domain/report"
	"github.com/lrliang/hmf-ehr/internal/pkg/keylock"
	"github.com/lrliang/hmf-ehr/internal/pkg/sse"
	"golang.org/x/sync/errgroup"
)

// JobStatus is the lifecycle of one batch job.
type JobStatus string

const (
	JobStatusNotStarted JobStatus = "not_started"
	JobStatusRunning    JobStatus = "running"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

const (
	EventJobStarted   = "job.started"
	EventJobProgress  = "job.progress"
	EventJobCompleted = "job.completed"
	EventJobFailed    = "job.failed"

	progressEvery = 50
)

// UnitError describes one employee-day or employee-month that failed.
type UnitError struct {
	EmployeeID string
	Date       string
	Month      string
	Err        string
}

type BatchResult struct {
	JobID          string
	Status         JobStatus
	ProcessedCount int
	SkippedCount   int
	FailedCount    int
	MonthlyCount   int
	MonthlyFailed  int
	Errors         []UnitError
	StartedAt      time.Time
	FinishedAt     time.Time
}

// JobProgress is the payload of job events on the SSE hub.
type JobProgress struct {
	JobID          string    `json:"job_id"`
	Kind           string    `json:"kind"`
	Status         JobStatus `json:"status"`
	TotalUnits     int       `json:"total_units"`
	ProcessedCount int       `json:"processed_count"`
	SkippedCount   int       `json:"skipped_count"`
	FailedCount    int       `json:"failed_count"`
	MonthlyCount   int       `json:"monthly_count"`
	Error          string    `json:"error,omitempty"`
}

// DailyJob selects the employee-days to calculate. No employee IDs means all active employees.
type DailyJob struct {
	EmployeeIDs []string
	StartDate   time.Time
	EndDate     time.Time
	Force       bool
}

type Orchestrator struct {
	employeeRepo employee.EmployeeRepository
	punchRepo    attendance.PunchRepository
	dailyRepo    report.DailyReportRepository
	calculator   *DailyCalculator
	aggregator   *MonthlyAggregator
	locker       keylock.Locker
	hub          *sse.Hub
	workers      int
}

func NewOrchestrator(
	employeeRepo employee.EmployeeRepository,
	punchRepo attendance.PunchRepository,
	dailyRepo report.DailyReportRepository,
	calculator *DailyCalculator,
	aggregator *MonthlyAggregator,
	locker keylock.Locker,
	hub *sse.Hub,
	workers int,
) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	if locker == nil {
		locker = keylock.NewLocalLocker()
	}
	return &Orchestrator{
		employeeRepo: employeeRepo,
		punchRepo:    punchRepo,
		dailyRepo:    dailyRepo,
		calculator:   calculator,
		aggregator:   aggregator,
		locker:       locker,
		hub:          hub,
		workers:      workers,
	}
}

// batch collects the counters of a running job. Safe for concurrent use.
type batch struct {
	mu       sync.Mutex
	kind     string
	total    int
	result   BatchResult
	hub      *sse.Hub
	progress int
}

func newBatch(kind string, hub *sse.Hub) *batch {
	return &batch{
		kind: kind,
		hub:  hub,
		result: BatchResult{
			JobID:     uuid.NewString(),
			Status:    JobStatusNotStarted,
			StartedAt: time.Now(),
		},
	}
}

func (b *batch) start(total int) {
	b.mu.Lock()
	b.total = total
	b.result.Status = JobStatusRunning
	b.mu.Unlock()
	b.publish(EventJobStarted, "")
}

func (b *batch) record(fn func(r *BatchResult)) {
	b.mu.Lock()
	fn(&b.result)
	b.progress++
	emit := b.progress%progressEvery == 0
	b.mu.Unlock()
	if emit {
		b.publish(EventJobProgress, "")
	}
}

func (b *batch) finish(err error) BatchResult {
	b.mu.Lock()
	b.result.FinishedAt = time.Now()
	if err != nil {
		b.result.Status = JobStatusFailed
	} else {
		b.result.Status = JobStatusCompleted
	}
	res := b.result
	b.mu.Unlock()

	if err != nil {
		b.publish(EventJobFailed, err.Error())
	} else {
		b.publish(EventJobCompleted, "")
	}
	return res
}

func (b *batch) publish(event string, errMsg string) {
	if b.hub == nil {
		return
	}
	b.mu.Lock()
	p := JobProgress{
		JobID:          b.result.JobID,
		Kind:           b.kind,
		Status:         b.result.Status,
		TotalUnits:     b.total,
		ProcessedCount: b.result.ProcessedCount,
		SkippedCount:   b.result.SkippedCount,
		FailedCount:    b.result.FailedCount,
		MonthlyCount:   b.result.MonthlyCount,
		Error:          errMsg,
	}
	b.mu.Unlock()
	b.hub.Publish(sse.Event{Topic: sse.TopicReportJobs, Event: event, Data: p})
}

// RunDaily calculates every selected employee-day, then re-aggregates every
// touched employee-month. A store failure or cancellation aborts the job;
// rows already written stay.
func (o *Orchestrator) RunDaily(ctx context.Context, job DailyJob) (BatchResult, error) {
	b := newBatch("daily", o.hub)

	employees, err := o.resolveEmployees(ctx, job.EmployeeIDs)
	if err != nil {
		return b.finish(err), err
	}
	days := calendar.DaysIn(job.StartDate, job.EndDate)
	b.start(len(employees) * len(days))

	slog.Info("Daily report job started",
		"job_id", b.result.JobID,
		"employees", len(employees),
		"start_date", job.StartDate.Format(calendar.DateLayout),
		"end_date", job.EndDate.Format(calendar.DateLayout),
		"force", job.Force,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

schedule:
	for _, emp := range employees {
		for _, day := range days {
			if gctx.Err() != nil {
				break schedule
			}
			g.Go(func() error {
				return o.runDailyUnit(gctx, b, emp, day, job.Force)
			})
		}
	}

	if err := g.Wait(); err != nil {
		return o.abort(ctx, b, err)
	}
	if err := ctx.Err(); err != nil {
		return o.abort(ctx, b, err)
	}

	if err := o.aggregateMonths(ctx, b, employees, calendar.MonthsIn(days)); err != nil {
		return o.abort(ctx, b, err)
	}

	res := b.finish(nil)
	slog.Info("Daily report job completed",
		"job_id", res.JobID,
		"processed", res.ProcessedCount,
		"skipped", res.SkippedCount,
		"failed", res.FailedCount,
		"monthly", res.MonthlyCount,
		"monthly_failed", res.MonthlyFailed,
		"duration", res.FinishedAt.Sub(res.StartedAt),
	)
	return res, nil
}

// RunForDate recalculates one date for the given employees, ignoring existing rows.
func (o *Orchestrator) RunForDate(ctx context.Context, date time.Time, employeeIDs []string) (BatchResult, error) {
	return o.RunDaily(ctx, DailyJob{
		EmployeeIDs: employeeIDs,
		StartDate:   date,
		EndDate:     date,
		Force:       true,
	})
}

// RunMonthly aggregates month for one employee or, with an empty id, all active employees.
func (o *Orchestrator) RunMonthly(ctx context.Context, month string, employeeID string) (BatchResult, error) {
	b := newBatch("monthly", o.hub)

	if _, err := calendar.ParseMonth(month); err != nil {
		return b.finish(err), err
	}

	var ids []string
	if employeeID != "" {
		ids = []string{employeeID}
	}
	employees, err := o.resolveEmployees(ctx, ids)
	if err != nil {
		return b.finish(err), err
	}
	b.start(len(employees))

	if err := o.aggregateMonths(ctx, b, employees, []string{month}); err != nil {
		return o.abort(ctx, b, err)
	}

	res := b.finish(nil)
	slog.Info("Monthly report job completed",
		"job_id", res.JobID,
		"month", month,
		"monthly", res.MonthlyCount,
		"monthly_failed", res.MonthlyFailed,
	)
	return res, nil
}

func (o *Orchestrator) abort(ctx context.Context, b *batch, err error) (BatchResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil && (errors.Is(err, ctxErr) || errors.Is(err, keylock.ErrLockTimeout)) {
		err = ctxErr
	}
	res := b.finish(err)
	slog.Error("Report job aborted",
		"job_id", res.JobID,
		"processed", res.ProcessedCount,
		"error", err,
	)
	return res, err
}

func (o *Orchestrator) resolveEmployees(ctx context.Context, ids []string) ([]employee.Employee, error) {
	if len(ids) == 0 {
		employees, err := o.employeeRepo.ListActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list active employees: %w", err)
		}
		return employees, nil
	}

	employees, err := o.employeeRepo.ListActiveByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	if len(employees) == 0 {
		return nil, report.ErrNoEmployeesSelected
	}
	return employees, nil
}

func (o *Orchestrator) runDailyUnit(ctx context.Context, b *batch, emp employee.Employee, day time.Time, force bool) error {
	dateStr := day.Format(calendar.DateLayout)

	unlock, err := o.locker.Lock(ctx, "daily:"+emp.ID+":"+dateStr)
	if err != nil {
		return err
	}
	defer unlock()

	var existing *report.DailyReport
	stored, err := o.dailyRepo.GetByEmployeeAndDate(ctx, emp.ID, day)
	switch {
	case err == nil:
		existing = &stored
	case errors.Is(err, report.ErrDailyReportNotFound):
	default:
		return fmt.Errorf("failed to load daily report for %s on %s: %w", emp.ID, dateStr, err)
	}

	var punches []attendance.Punch
	if force || existing == nil || existing.CalculationStatus != report.CalculationStatusSuccess {
		punches, err = o.punchRepo.ListByEmployeeAndDate(ctx, emp.ID, day)
		if err != nil {
			return fmt.Errorf("failed to load punches for %s on %s: %w", emp.ID, dateStr, err)
		}
	}

	result := o.calculator.Calculate(ctx, DailyInput{
		Employee: emp,
		Date:     day,
		Punches:  punches,
		Existing: existing,
		Force:    force,
	})
	if result.Skipped {
		b.record(func(r *BatchResult) { r.SkippedCount++ })
		return nil
	}

	if _, err := o.dailyRepo.Upsert(ctx, result.Report); err != nil {
		if errors.Is(err, report.ErrReportAlreadyExists) {
			b.record(func(r *BatchResult) { r.SkippedCount++ })
			return nil
		}
		return fmt.Errorf("failed to save daily report for %s on %s: %w", emp.ID, dateStr, err)
	}

	if result.Failed() {
		slog.Warn("Daily report calculation failed", "employee_id", emp.ID, "date", dateStr, "error", result.Err)
		b.record(func(r *BatchResult) {
			r.ProcessedCount++
			r.FailedCount++
			r.Errors = append(r.Errors, UnitError{EmployeeID: emp.ID, Date: dateStr, Err: result.Err.Error()})
		})
		return nil
	}

	b.record(func(r *BatchResult) { r.ProcessedCount++ })
	return nil
}

// aggregateMonths runs after every daily write of the batch has committed.
// Individual failures are counted; only cancellation stops it.
func (o *Orchestrator) aggregateMonths(ctx context.Context, b *batch, employees []employee.Employee, months []string) error {
	g := new(errgroup.Group)
	g.SetLimit(o.workers)

	for _, emp := range employees {
		for _, month := range months {
			if err := ctx.Err(); err != nil {
				_ = g.Wait()
				return err
			}
			g.Go(func() error {
				o.aggregateUnit(ctx, b, emp, month)
				return nil
			})
		}
	}
	_ = g.Wait()
	return ctx.Err()
}

func (o *Orchestrator) aggregateUnit(ctx context.Context, b *batch, emp employee.Employee, month string) {
	unlock, err := o.locker.Lock(ctx, "monthly:"+emp.ID+":"+month)
	if err != nil {
		o.recordMonthlyFailure(b, emp, month, err)
		return
	}
	defer unlock()

	m, err := o.aggregator.Aggregate(ctx, emp, month)
	if err != nil {
		o.recordMonthlyFailure(b, emp, month, err)
		return
	}
	if m != nil {
		b.mu.Lock()
		b.result.MonthlyCount++
		b.mu.Unlock()
	}
}

func (o *Orchestrator) recordMonthlyFailure(b *batch, emp employee.Employee, month string, err error) {
	slog.Error("Monthly report aggregation failed", "employee_id", emp.ID, "month", month, "error", err)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.result.MonthlyFailed++
	b.result.Errors = append(b.result.Errors, UnitError{EmployeeID: emp.ID, Month: month, Err: err.Error()})
}
