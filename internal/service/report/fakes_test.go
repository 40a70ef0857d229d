package report

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lrliang/hmf-ehr/internal/domain/attendance"
	"github.com/lrliang/hmf-ehr/internal/domain/calendar"
	"github.com/lrliang/hmf-ehr/internal/domain/employee"
	"github.com/lrliang/hmf-ehr/internal/domain/report"
	"github.com/shopspring/decimal"
)

var errStoreDown = errors.New("store unavailable")

func mustDate(s string) time.Time {
	t, err := time.Parse(calendar.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func at(date string, clock string) *time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", date+" "+clock)
	if err != nil {
		panic(err)
	}
	return &t
}

func strPtr(s string) *string { return &s }

func newEmployee(no string) employee.Employee {
	return employee.Employee{
		ID:         uuid.NewString(),
		EmployeeNo: no,
		Name:       "Employee " + no,
		BaseSalary: decimal.NewFromInt(6525),
		Status:     employee.EmploymentStatusActive,
	}
}

// ========== EMPLOYEES ==========

type fakeEmployeeRepo struct {
	employees []employee.Employee
	err       error
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	for _, e := range f.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) ListActive(context.Context) ([]employee.Employee, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []employee.Employee
	for _, e := range f.employees {
		if e.IsActive() {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) ListActiveByIDs(ctx context.Context, ids []string) ([]employee.Employee, error) {
	all, err := f.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []employee.Employee
	for _, e := range all {
		if want[e.ID] {
			out = append(out, e)
		}
	}
	return out, nil
}

// ========== PUNCHES ==========

type fakePunchRepo struct {
	mu      sync.Mutex
	punches map[string][]attendance.Punch
	err     error
}

func newFakePunchRepo() *fakePunchRepo {
	return &fakePunchRepo{punches: make(map[string][]attendance.Punch)}
}

func dayKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format(calendar.DateLayout)
}

func (f *fakePunchRepo) set(employeeID, date string, punches ...attendance.Punch) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.punches[dayKey(employeeID, mustDate(date))] = punches
}

func (f *fakePunchRepo) ListByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) ([]attendance.Punch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.punches[dayKey(employeeID, date)], nil
}

// ========== DAILY REPORTS ==========

type fakeDailyRepo struct {
	mu        sync.Mutex
	rows      map[string]report.DailyReport
	upsertErr error
	upserts   int
}

func newFakeDailyRepo() *fakeDailyRepo {
	return &fakeDailyRepo{rows: make(map[string]report.DailyReport)}
}

func (f *fakeDailyRepo) GetByID(_ context.Context, id string) (report.DailyReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return report.DailyReport{}, report.ErrDailyReportNotFound
}

func (f *fakeDailyRepo) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (report.DailyReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[dayKey(employeeID, date)]
	if !ok {
		return report.DailyReport{}, report.ErrDailyReportNotFound
	}
	return r, nil
}

func (f *fakeDailyRepo) Upsert(_ context.Context, r report.DailyReport) (report.DailyReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return report.DailyReport{}, f.upsertErr
	}
	key := dayKey(r.EmployeeID, r.ReportDate)
	if existing, ok := f.rows[key]; ok {
		r.ID = existing.ID
		r.CreatedAt = existing.CreatedAt
	} else {
		r.ID = uuid.NewString()
		r.CreatedAt = time.Now()
	}
	r.UpdatedAt = time.Now()
	f.rows[key] = r
	f.upserts++
	return r, nil
}

func (f *fakeDailyRepo) ListByEmployeeAndRange(_ context.Context, employeeID string, start, end time.Time) ([]report.DailyReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []report.DailyReport
	for _, r := range f.rows {
		if r.EmployeeID == employeeID && !r.ReportDate.Before(start) && !r.ReportDate.After(end) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReportDate.Before(out[j].ReportDate) })
	return out, nil
}

func (f *fakeDailyRepo) List(_ context.Context, filter report.DailyReportFilter) ([]report.DailyReport, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []report.DailyReport
	for _, r := range f.rows {
		if filter.EmployeeID != nil && r.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.CalculationStatus != nil && string(r.CalculationStatus) != *filter.CalculationStatus {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReportDate.After(out[j].ReportDate) })
	return out, int64(len(out)), nil
}

func (f *fakeDailyRepo) delete(employeeID, date string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, dayKey(employeeID, mustDate(date)))
}

func (f *fakeDailyRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// ========== MONTHLY REPORTS ==========

type fakeMonthlyRepo struct {
	mu        sync.Mutex
	rows      map[string]report.MonthlyReport
	upsertErr error
}

func newFakeMonthlyRepo() *fakeMonthlyRepo {
	return &fakeMonthlyRepo{rows: make(map[string]report.MonthlyReport)}
}

func monthKey(employeeID, month string) string {
	return employeeID + "|" + month
}

func (f *fakeMonthlyRepo) GetByID(_ context.Context, id string) (report.MonthlyReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return report.MonthlyReport{}, report.ErrMonthlyReportNotFound
}

func (f *fakeMonthlyRepo) GetByEmployeeAndMonth(_ context.Context, employeeID string, month string) (report.MonthlyReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[monthKey(employeeID, month)]
	if !ok {
		return report.MonthlyReport{}, report.ErrMonthlyReportNotFound
	}
	return r, nil
}

func (f *fakeMonthlyRepo) Upsert(_ context.Context, r report.MonthlyReport) (report.MonthlyReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return report.MonthlyReport{}, f.upsertErr
	}
	key := monthKey(r.EmployeeID, r.ReportMonth)
	if existing, ok := f.rows[key]; ok {
		r.ID = existing.ID
		r.ConfirmationStatus = existing.ConfirmationStatus
		r.ConfirmationInitiatedAt = existing.ConfirmationInitiatedAt
		r.ConfirmationCompletedAt = existing.ConfirmationCompletedAt
		r.ConfirmedBy = existing.ConfirmedBy
		r.Remark = existing.Remark
	} else {
		r.ID = uuid.NewString()
	}
	f.rows[key] = r
	return r, nil
}

func (f *fakeMonthlyRepo) Confirm(_ context.Context, id string, by *string, remark *string, when time.Time) (report.MonthlyReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, r := range f.rows {
		if r.ID != id {
			continue
		}
		switch r.ConfirmationStatus {
		case report.ConfirmationStatusConfirmed:
			return report.MonthlyReport{}, report.ErrReportAlreadyConfirmed
		case report.ConfirmationStatusLocked:
			return report.MonthlyReport{}, report.ErrReportLocked
		}
		r.ConfirmationStatus = report.ConfirmationStatusConfirmed
		if r.ConfirmationInitiatedAt == nil {
			r.ConfirmationInitiatedAt = &when
		}
		r.ConfirmationCompletedAt = &when
		r.ConfirmedBy = by
		if remark != nil {
			r.Remark = remark
		}
		f.rows[key] = r
		return r, nil
	}
	return report.MonthlyReport{}, report.ErrMonthlyReportNotFound
}

func (f *fakeMonthlyRepo) List(_ context.Context, filter report.MonthlyReportFilter) ([]report.MonthlyReport, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []report.MonthlyReport
	for _, r := range f.rows {
		if filter.ReportMonth != nil && r.ReportMonth != *filter.ReportMonth {
			continue
		}
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeMonthlyRepo) CountByStatus(_ context.Context, month string) ([]report.MonthlyStatusCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[report.ConfirmationStatus]int)
	for _, r := range f.rows {
		if r.ReportMonth == month {
			counts[r.ConfirmationStatus]++
		}
	}
	var out []report.MonthlyStatusCount
	for _, st := range report.ConfirmationStatuses {
		if counts[st] > 0 {
			out = append(out, report.MonthlyStatusCount{Status: st, Count: counts[st]})
		}
	}
	return out, nil
}

func (f *fakeMonthlyRepo) get(employeeID, month string) (report.MonthlyReport, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[monthKey(employeeID, month)]
	return r, ok
}
