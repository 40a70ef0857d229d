package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lrliang/hmf-ehr/internal/domain/attendance"
	"github.com/lrliang/hmf-ehr/internal/domain/calendar"
	"github.com/lrliang/hmf-ehr/internal/domain/employee"
	"github.com/lrliang/hmf-ehr/internal/domain/leave"
	"github.com/lrliang/hmf-ehr/internal/domain/report"
	"github.com/shopspring/decimal"
)

const noPunchesMessage = "no punches for day"

// CalculatorConfig holds the tunable constants of the daily rules.
type CalculatorConfig struct {
	LunchBreakHours       decimal.Decimal
	OvertimeHoursPerPunch decimal.Decimal
	BusinessTripHours     decimal.Decimal
	BusinessTripMarkers   []string
	// Location interprets a punch's scheduled "HH:MM" on its date.
	Location *time.Location
}

func DefaultCalculatorConfig() CalculatorConfig {
	return CalculatorConfig{
		LunchBreakHours:       decimal.NewFromInt(1),
		OvertimeHoursPerPunch: decimal.NewFromInt(1),
		BusinessTripHours:     decimal.NewFromInt(4),
		BusinessTripMarkers:   []string{"公出", "外出"},
		Location:              time.UTC,
	}
}

// DailyInput is everything needed to compute one employee-day.
type DailyInput struct {
	Employee employee.Employee
	Date     time.Time
	Punches  []attendance.Punch
	// Existing is the stored report for the key, if any.
	Existing *report.DailyReport
	Force    bool
}

// DailyResult is the outcome of one employee-day. Exactly one of three
// shapes: skipped (nothing to write), failed (Report holds the failure row
// and Err the cause), or ok.
type DailyResult struct {
	Report  report.DailyReport
	Err     error
	Skipped bool
}

func (r DailyResult) Ok() bool     { return !r.Skipped && r.Err == nil }
func (r DailyResult) Failed() bool { return r.Err != nil }

type DailyCalculator struct {
	policy calendar.Policy
	leaves leave.Source
	cfg    CalculatorConfig
	now    func() time.Time
}

func NewDailyCalculator(policy calendar.Policy, leaves leave.Source, cfg CalculatorConfig) *DailyCalculator {
	if leaves == nil {
		leaves = leave.NoopSource{}
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &DailyCalculator{
		policy: policy,
		leaves: leaves,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Calculate computes the daily report for in. It never returns a Go error:
// problems with the day's data come back as a failed result.
func (c *DailyCalculator) Calculate(ctx context.Context, in DailyInput) DailyResult {
	date := calendar.DateOnly(in.Date)

	if !in.Force && in.Existing != nil && in.Existing.CalculationStatus == report.CalculationStatusSuccess {
		return DailyResult{Report: *in.Existing, Skipped: true}
	}

	now := c.now()
	base := report.DailyReport{
		EmployeeID:                in.Employee.ID,
		EmployeeNo:                in.Employee.EmployeeNo,
		EmployeeName:              in.Employee.Name,
		ReportDate:                date,
		Leave:                     zeroLeave(),
		LegalHolidayDays:          decimal.Zero,
		ActualWorkingHours:        decimal.Zero,
		WorkdayOvertimeHours:      decimal.Zero,
		WeekendOvertimeHours:      decimal.Zero,
		LegalHolidayOvertimeHours: decimal.Zero,
		BusinessTripHours:         decimal.Zero,
		CalculationStatus:         report.CalculationStatusSuccess,
		LastCalculatedAt:          &now,
	}
	if in.Existing != nil {
		base.ID = in.Existing.ID
	}

	rep, err := c.compute(ctx, base, in.Punches)
	if err != nil {
		return DailyResult{Report: failureReport(base, err), Err: err}
	}
	return DailyResult{Report: rep}
}

func (c *DailyCalculator) compute(ctx context.Context, rep report.DailyReport, punches []attendance.Punch) (report.DailyReport, error) {
	if len(punches) == 0 {
		rep.IsAbsent = true
		rep.Status = report.DailyStatusAbsent
		rep.CalculationMessage = noPunchesMessage
		return rep, nil
	}

	date := rep.ReportDate
	var checkIns, checkOuts []attendance.Punch
	for _, p := range punches {
		switch p.Type {
		case attendance.PunchTypeCheckIn:
			checkIns = append(checkIns, p)
		case attendance.PunchTypeCheckOut:
			checkOuts = append(checkOuts, p)
		}
	}

	rep.FirstCheckIn, rep.LastCheckOut = punchBounds(punches)
	rep.Status = dailyStatus(punches)

	if c.policy.IsLegalHoliday(date) {
		rep.LegalHolidayDays = decimal.NewFromInt(1)
	}

	for _, p := range punches {
		if p.IsManual {
			rep.MakeupCount++
		}
	}

	days, err := c.leaves.DaysFor(ctx, rep.EmployeeID, date)
	if err != nil {
		return rep, fmt.Errorf("load leave days: %w", err)
	}
	rep.Leave = zeroLeave().Add(days)

	overtime := c.cfg.OvertimeHoursPerPunch.Mul(decimal.NewFromInt(int64(countResult(punches, attendance.PunchResultOvertime))))
	switch calendar.Classify(c.policy, date) {
	case calendar.DayKindLegalHoliday:
		rep.LegalHolidayOvertimeHours = overtime
	case calendar.DayKindRestDay:
		rep.WeekendOvertimeHours = overtime
	default:
		rep.WorkdayOvertimeHours = overtime
	}

	for _, p := range checkIns {
		if p.Result != attendance.PunchResultLate {
			continue
		}
		minutes, err := c.offsetMinutes(date, p)
		if err != nil {
			return rep, err
		}
		if minutes > 0 {
			rep.LateMinutes += minutes
		}
	}
	for _, p := range checkOuts {
		if p.Result != attendance.PunchResultEarlyLeave {
			continue
		}
		minutes, err := c.offsetMinutes(date, p)
		if err != nil {
			return rep, err
		}
		if minutes < 0 {
			rep.EarlyLeaveMinutes += -minutes
		}
	}

	rep.ActualWorkingHours = c.workingHours(checkIns, checkOuts)
	rep.BusinessTripHours = c.businessTripHours(punches)
	rep.IsAbsent = countResult(punches, attendance.PunchResultAbsent) > 0 || (len(checkIns) == 0 && len(checkOuts) == 0)

	return rep, nil
}

// offsetMinutes is the whole minutes between the scheduled time and the
// recorded time, positive when the punch is after schedule. Punches without
// a recorded time contribute 0.
func (c *DailyCalculator) offsetMinutes(date time.Time, p attendance.Punch) (int, error) {
	if p.CheckTime == nil {
		return 0, nil
	}
	h, m, err := parseClock(p.ScheduledTime)
	if err != nil {
		return 0, fmt.Errorf("punch %s: %w", p.ID, err)
	}
	scheduled := time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, c.cfg.Location)
	diff := p.CheckTime.Sub(scheduled)
	if diff < 0 {
		return -int((-diff).Minutes()), nil
	}
	return int(diff.Minutes()), nil
}

func (c *DailyCalculator) workingHours(checkIns, checkOuts []attendance.Punch) decimal.Decimal {
	first, _ := punchBounds(checkIns)
	_, last := punchBounds(checkOuts)
	if first == nil || last == nil {
		return decimal.Zero
	}
	seconds := decimal.NewFromInt(int64(last.Sub(*first) / time.Second))
	hours := seconds.Div(decimal.NewFromInt(3600)).Sub(c.cfg.LunchBreakHours)
	if hours.IsNegative() {
		return decimal.Zero
	}
	return hours.Round(2)
}

func (c *DailyCalculator) businessTripHours(punches []attendance.Punch) decimal.Decimal {
	n := 0
	for _, p := range punches {
		if containsAny(p.Remark, c.cfg.BusinessTripMarkers) || containsAny(p.ExceptionReason, c.cfg.BusinessTripMarkers) {
			n++
		}
	}
	return c.cfg.BusinessTripHours.Mul(decimal.NewFromInt(int64(n)))
}

func failureReport(base report.DailyReport, err error) report.DailyReport {
	base.FirstCheckIn = nil
	base.LastCheckOut = nil
	base.Status = report.DailyStatusAbsent
	base.IsAbsent = true
	base.CalculationStatus = report.CalculationStatusFailed
	base.CalculationMessage = err.Error()
	return base
}

// dailyStatus applies absent > late+early > late > early leave > overtime > normal.
func dailyStatus(punches []attendance.Punch) report.DailyStatus {
	late := countResult(punches, attendance.PunchResultLate) > 0
	early := countResult(punches, attendance.PunchResultEarlyLeave) > 0

	switch {
	case countResult(punches, attendance.PunchResultAbsent) > 0:
		return report.DailyStatusAbsent
	case late && early:
		return report.DailyStatusLateAndEarlyLeave
	case late:
		return report.DailyStatusLate
	case early:
		return report.DailyStatusEarlyLeave
	case countResult(punches, attendance.PunchResultOvertime) > 0:
		return report.DailyStatusOvertime
	default:
		return report.DailyStatusNormal
	}
}

func punchBounds(punches []attendance.Punch) (first, last *time.Time) {
	for _, p := range punches {
		if p.CheckTime == nil {
			continue
		}
		t := *p.CheckTime
		if first == nil || t.Before(*first) {
			first = &t
		}
		if last == nil || t.After(*last) {
			last = &t
		}
	}
	return first, last
}

func countResult(punches []attendance.Punch, result attendance.PunchResult) int {
	n := 0
	for _, p := range punches {
		if p.Result == result {
			n++
		}
	}
	return n
}

func containsAny(s *string, markers []string) bool {
	if s == nil {
		return false
	}
	for _, m := range markers {
		if m != "" && strings.Contains(*s, m) {
			return true
		}
	}
	return false
}

// parseClock parses a 24h "HH:MM".
func parseClock(s string) (int, int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", attendance.ErrInvalidScheduledTime, s)
	}
	h, errH := strconv.Atoi(hh)
	m, errM := strconv.Atoi(mm)
	if errH != nil || errM != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("%w: %q", attendance.ErrInvalidScheduledTime, s)
	}
	return h, m, nil
}

func zeroLeave() leave.Days {
	return leave.Days{
		Annual:      decimal.Zero,
		Personal:    decimal.Zero,
		Sick:        decimal.Zero,
		Bereavement: decimal.Zero,
		Childcare:   decimal.Zero,
		Maternity:   decimal.Zero,
		Paternity:   decimal.Zero,
	}
}
