package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lrliang/hmf-ehr/internal/domain/calendar"
	"github.com/lrliang/hmf-ehr/internal/service/report"
)

// DailyRunner is the part of the report pipeline the nightly job drives.
type DailyRunner interface {
	RunDaily(ctx context.Context, job report.DailyJob) (report.BatchResult, error)
}

type ReportJobs struct {
	runner   DailyRunner
	spec     string
	deadline time.Duration
	location *time.Location
	now      func() time.Time
}

func NewReportJobs(runner DailyRunner, spec string, deadline time.Duration, location *time.Location) *ReportJobs {
	if location == nil {
		location = time.Local
	}
	return &ReportJobs{
		runner:   runner,
		spec:     spec,
		deadline: deadline,
		location: location,
		now:      time.Now,
	}
}

func (j *ReportJobs) RegisterJobs(scheduler *Scheduler) error {
	return scheduler.AddJob("daily_attendance_reports", j.spec, j.deadline, j.CalculateYesterday)
}

// CalculateYesterday builds the previous day's reports for every active
// employee. Rows already calculated are kept.
func (j *ReportJobs) CalculateYesterday(ctx context.Context) error {
	yesterday := calendar.DateOnly(j.now().In(j.location)).AddDate(0, 0, -1)

	res, err := j.runner.RunDaily(ctx, report.DailyJob{
		StartDate: yesterday,
		EndDate:   yesterday,
	})
	if err != nil {
		return fmt.Errorf("daily report job for %s: %w", yesterday.Format(calendar.DateLayout), err)
	}
	if res.FailedCount > 0 || res.MonthlyFailed > 0 {
		slog.Warn("Cron: daily reports finished with failures",
			"date", yesterday.Format(calendar.DateLayout),
			"failed", res.FailedCount,
			"monthly_failed", res.MonthlyFailed,
		)
	}
	return nil
}
