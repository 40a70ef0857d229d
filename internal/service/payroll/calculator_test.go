package payroll

import (
	"testing"

	"github.com/lrliang/hmf-ehr/internal/domain/leave"
	"github.com/lrliang/hmf-ehr/internal/domain/payroll"
	"github.com/lrliang/hmf-ehr/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func monthly(expected, actual string) report.MonthlyReport {
	return report.MonthlyReport{
		ExpectedWorkingDays: d(expected),
		ActualWorkingDays:   d(actual),
		ConfirmationStatus:  report.ConfirmationStatusConfirmed,
	}
}

func TestCalculator_FullAttendance(t *testing.T) {
	b := NewCalculator(DefaultRates()).Calculate(d("6525.00"), monthly("21.75", "21.75"))

	assert.Equal(t, "300.00", b.DailyWage.StringFixed(2))
	assert.Equal(t, "37.50", b.HourlyWage.StringFixed(2))
	assert.Equal(t, "1", b.AttendanceRatio.String())
	assert.Equal(t, "6525.00", b.NormalAttendanceSalary.StringFixed(2))
	assert.Equal(t, "6525.00", b.AttendanceSalary.StringFixed(2))
	assert.Equal(t, "6525.00", b.GrossSalary.StringFixed(2))
	assert.Equal(t, "6525.00", b.NetSalary.StringFixed(2))
	assert.True(t, b.Deductions.Total().IsZero())
}

func TestCalculator_PartialAttendance(t *testing.T) {
	b := NewCalculator(DefaultRates()).Calculate(d("6525.00"), monthly("21.75", "19.75"))

	assert.Equal(t, "0.908", b.AttendanceRatio.String())
	assert.Equal(t, "5925.00", b.NormalAttendanceSalary.StringFixed(2))
	assert.Equal(t, "5925.00", b.AttendanceSalary.StringFixed(2))
	assert.Equal(t, "5925.00", b.GrossSalary.StringFixed(2))
}

func TestCalculator_ZeroExpectedDays(t *testing.T) {
	b := NewCalculator(DefaultRates()).Calculate(d("6525.00"), monthly("0", "3"))

	assert.True(t, b.AttendanceRatio.IsZero())
	assert.True(t, b.NormalAttendanceSalary.IsZero())
	assert.True(t, b.GrossSalary.IsZero())
}

func TestCalculator_LeaveOvertimeAndAllowances(t *testing.T) {
	m := monthly("21.75", "21.75")
	m.Leave = leave.Days{Personal: d("1.5")}
	m.WeekendOvertimeHours = d("8")
	m.LegalHolidayOvertimeHours = d("4")
	m.WorkdayOvertimeHours = d("10")
	m.BusinessTripNightAllowance = d("100")
	m.WorkingDayDutyAllowance = d("50.50")

	b := NewCalculator(DefaultRates()).Calculate(d("6525.00"), m)

	// 300 × 1.5 days
	assert.Equal(t, "450.00", b.PersonalLeaveDeduction.StringFixed(2))
	// 300 × 2 × 8/8
	assert.Equal(t, "600.00", b.WeekendOvertimePay.StringFixed(2))
	// 300 × 3 × 4/8
	assert.Equal(t, "450.00", b.HolidayOvertimePay.StringFixed(2))
	assert.True(t, b.WorkdayOvertimePay.IsZero(), "workday overtime is not priced by default")
	assert.Equal(t, "1050.00", b.TotalOvertimePay.StringFixed(2))
	assert.Equal(t, "7125.00", b.AttendanceSalary.StringFixed(2))
	assert.Equal(t, "150.50", b.AllowanceAndBonus.StringFixed(2))
	assert.Equal(t, "7275.50", b.GrossSalary.StringFixed(2))
	assert.Equal(t, b.GrossSalary, b.NetSalary)
}

func TestCalculator_PriceWorkdayOvertime(t *testing.T) {
	rates := DefaultRates()
	rates.PriceWorkdayOvertime = true
	m := monthly("21.75", "21.75")
	m.WorkdayOvertimeHours = d("8")

	b := NewCalculator(rates).Calculate(d("6525.00"), m)

	// 300 × 1.5 × 8/8
	assert.Equal(t, "450.00", b.WorkdayOvertimePay.StringFixed(2))
	assert.Equal(t, "6975.00", b.GrossSalary.StringFixed(2))
}

func TestWithDeductions(t *testing.T) {
	b := NewCalculator(DefaultRates()).Calculate(d("6525.00"), monthly("21.75", "21.75"))
	b = WithDeductions(b, payroll.Deductions{
		SocialInsurance: d("500"),
		HousingFund:     d("300"),
		IncomeTax:       d("120.555"),
		MealFee:         decimal.Zero,
		Other:           decimal.Zero,
	})

	assert.Equal(t, "920.56", b.Deductions.Total().StringFixed(2))
	assert.Equal(t, "5604.44", b.NetSalary.StringFixed(2))
	assert.Equal(t, "6525.00", b.GrossSalary.StringFixed(2))
}
