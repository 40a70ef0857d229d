package payroll

import (
	"context"

	"github.com/shopspring/decimal"
)

// Deductions are the statutory and other amounts withheld from gross salary.
type Deductions struct {
	SocialInsurance decimal.Decimal `json:"social_insurance"`
	HousingFund     decimal.Decimal `json:"housing_fund"`
	IncomeTax       decimal.Decimal `json:"income_tax"`
	MealFee         decimal.Decimal `json:"meal_fee"`
	Other           decimal.Decimal `json:"other"`
}

func (d Deductions) Total() decimal.Decimal {
	return decimal.Sum(d.SocialInsurance, d.HousingFund, d.IncomeTax, d.MealFee, d.Other)
}

// DeductionRules computes withholdings for an employee's gross salary.
type DeductionRules interface {
	DeductionsFor(ctx context.Context, employeeID string, month string, gross decimal.Decimal) (Deductions, error)
}

// NoDeductions withholds nothing. Net salary equals gross until real rules
// are plugged in.
type NoDeductions struct{}

func (NoDeductions) DeductionsFor(context.Context, string, string, decimal.Decimal) (Deductions, error) {
	return ZeroDeductions(), nil
}

func ZeroDeductions() Deductions {
	return Deductions{
		SocialInsurance: decimal.Zero,
		HousingFund:     decimal.Zero,
		IncomeTax:       decimal.Zero,
		MealFee:         decimal.Zero,
		Other:           decimal.Zero,
	}
}
