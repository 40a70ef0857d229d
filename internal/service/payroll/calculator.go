package payroll

import (
	"github.com/lrliang/hmf-ehr/internal/config"
	"github.com/lrliang/hmf-ehr/internal/domain/payroll"
	"github.com/lrliang/hmf-ehr/internal/domain/report"
	"github.com/shopspring/decimal"
)

// Rates are the wage constants of the payroll formula.
type Rates struct {
	StandardMonthlyDays decimal.Decimal
	StandardDailyHours  decimal.Decimal
	WorkdayMultiplier   decimal.Decimal
	RestDayMultiplier   decimal.Decimal
	HolidayMultiplier   decimal.Decimal
	// PriceWorkdayOvertime pays the workday overtime bucket. Off by default:
	// workday overtime is tracked on reports but not paid.
	PriceWorkdayOvertime bool
}

func DefaultRates() Rates {
	return Rates{
		StandardMonthlyDays: decimal.RequireFromString("21.75"),
		StandardDailyHours:  decimal.NewFromInt(8),
		WorkdayMultiplier:   decimal.RequireFromString("1.5"),
		RestDayMultiplier:   decimal.NewFromInt(2),
		HolidayMultiplier:   decimal.NewFromInt(3),
	}
}

func RatesFromConfig(cfg config.PayrollConfig) Rates {
	return Rates{
		StandardMonthlyDays:  cfg.StandardMonthlyDays,
		StandardDailyHours:   cfg.StandardDailyHours,
		WorkdayMultiplier:    cfg.WorkdayMultiplier,
		RestDayMultiplier:    cfg.RestDayMultiplier,
		HolidayMultiplier:    cfg.HolidayMultiplier,
		PriceWorkdayOvertime: cfg.PriceWorkdayOvertime,
	}
}

type Calculator struct {
	rates Rates
}

func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Calculate prices one confirmed monthly report for an employee earning
// baseSalary a month. Deductions are left at zero and net equals gross;
// see WithDeductions. Money is rounded to cents, the ratio to 4 places.
func (c *Calculator) Calculate(baseSalary decimal.Decimal, m report.MonthlyReport) payroll.Breakdown {
	dailyWage := baseSalary.Div(c.rates.StandardMonthlyDays)
	hourlyWage := dailyWage.Div(c.rates.StandardDailyHours)

	ratio := decimal.Zero
	normal := decimal.Zero
	if m.ExpectedWorkingDays.IsPositive() {
		ratio = m.ActualWorkingDays.Div(m.ExpectedWorkingDays)
		normal = baseSalary.Mul(m.ActualWorkingDays).Div(m.ExpectedWorkingDays)
	}

	leaveDeduction := dailyWage.Mul(m.Leave.Personal)

	weekendPay := c.overtimePay(dailyWage, c.rates.RestDayMultiplier, m.WeekendOvertimeHours)
	holidayPay := c.overtimePay(dailyWage, c.rates.HolidayMultiplier, m.LegalHolidayOvertimeHours)
	workdayPay := decimal.Zero
	if c.rates.PriceWorkdayOvertime {
		workdayPay = c.overtimePay(dailyWage, c.rates.WorkdayMultiplier, m.WorkdayOvertimeHours)
	}
	overtime := decimal.Sum(workdayPay, weekendPay, holidayPay)

	attendance := normal.Sub(leaveDeduction).Add(overtime)
	allowance := m.BusinessTripNightAllowance.Add(m.WorkingDayDutyAllowance)
	gross := attendance.Add(allowance)

	b := payroll.Breakdown{
		BaseSalary:             baseSalary.Round(2),
		DailyWage:              dailyWage.Round(2),
		HourlyWage:             hourlyWage.Round(2),
		PayableDays:            c.rates.StandardMonthlyDays,
		ExpectedWorkingDays:    m.ExpectedWorkingDays,
		ActualWorkingDays:      m.ActualWorkingDays,
		AttendanceRatio:        ratio.Round(4),
		NormalAttendanceSalary: normal.Round(2),
		PersonalLeaveDeduction: leaveDeduction.Round(2),
		WorkdayOvertimePay:     workdayPay.Round(2),
		WeekendOvertimePay:     weekendPay.Round(2),
		HolidayOvertimePay:     holidayPay.Round(2),
		TotalOvertimePay:       overtime.Round(2),
		AllowanceAndBonus:      allowance.Round(2),
		AttendanceSalary:       attendance.Round(2),
		GrossSalary:            gross.Round(2),
	}
	return WithDeductions(b, payroll.ZeroDeductions())
}

func (c *Calculator) overtimePay(dailyWage, multiplier, hours decimal.Decimal) decimal.Decimal {
	return dailyWage.Mul(multiplier).Mul(hours.Div(c.rates.StandardDailyHours))
}

// WithDeductions sets the withholdings of b and recomputes net salary.
func WithDeductions(b payroll.Breakdown, d payroll.Deductions) payroll.Breakdown {
	b.Deductions = payroll.Deductions{
		SocialInsurance: d.SocialInsurance.Round(2),
		HousingFund:     d.HousingFund.Round(2),
		IncomeTax:       d.IncomeTax.Round(2),
		MealFee:         d.MealFee.Round(2),
		Other:           d.Other.Round(2),
	}
	b.NetSalary = b.GrossSalary.Sub(b.Deductions.Total())
	return b
}
