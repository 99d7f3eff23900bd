// Package config defines conversion utilities for configuration objects.
package config

import (
	"fmt"
	"time"

	"github.com/iwvelando/loan-planner/pkg/budget"
	"github.com/iwvelando/loan-planner/pkg/constants"
	"github.com/iwvelando/loan-planner/pkg/schedule"
)

// monthlyRate converts a human-entered annual percentage rate into the
// engine's periodic rate.
func monthlyRate(annualPercent float64) float64 {
	return annualPercent / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// ToLoanRequest converts a config Loan into an engine request. Numeric
// parsing, rate-unit conversion, and date parsing are this layer's
// responsibility; the engine only validates domain invariants.
func (loan *Loan) ToLoanRequest() (schedule.LoanRequest, error) {
	var req schedule.LoanRequest

	scheme, err := schedule.ParsePaymentScheme(loan.PaymentType)
	if err != nil {
		return req, fmt.Errorf("loan %s: %w", loan.Name, err)
	}

	rounding, err := schedule.ParseRounding(loan.Rounding)
	if err != nil {
		return req, fmt.Errorf("loan %s: %w", loan.Name, err)
	}

	startDate := time.Now()
	if loan.StartDate != "" {
		startDate, err = time.Parse(DateTimeLayout, loan.StartDate)
		if err != nil {
			return req, fmt.Errorf("loan %s: invalid start date %q: %w", loan.Name, loan.StartDate, err)
		}
	}

	req = schedule.LoanRequest{
		Principal:           loan.Principal,
		TermMonths:          loan.Term,
		MonthlyRate:         monthlyRate(loan.AnnualInterestRate),
		Scheme:              scheme,
		StartDate:           startDate,
		Rounding:            rounding,
		InflationAnnualRate: loan.AnnualInflationRate,
		ReportInflation:     loan.ConsiderInflation,
	}

	if loan.CreditHolidays != nil {
		unit, err := schedule.ParseGraceUnit(loan.CreditHolidays.Unit)
		if err != nil {
			return req, fmt.Errorf("loan %s: %w", loan.Name, err)
		}
		req.Grace = &schedule.GracePeriod{Amount: loan.CreditHolidays.Amount, Unit: unit}
	}

	for _, prepayment := range loan.Prepayments {
		if prepayment.Date == "" {
			return req, fmt.Errorf("loan %s: prepayment requires a date", loan.Name)
		}
		date, err := time.Parse(DateTimeLayout, prepayment.Date)
		if err != nil {
			return req, fmt.Errorf("loan %s: invalid prepayment date %q: %w", loan.Name, prepayment.Date, err)
		}
		count := prepayment.Count
		if count < 1 {
			count = 1
		}
		frequency := prepayment.Frequency
		if frequency < 1 {
			frequency = 1
		}
		req.Prepayments = append(req.Prepayments,
			schedule.ExpandRecurring(date, prepayment.Amount, frequency, count)...)
	}

	if loan.Commission != nil {
		kind, err := schedule.ParseCommissionKind(loan.Commission.Type)
		if err != nil {
			return req, fmt.Errorf("loan %s: %w", loan.Name, err)
		}
		req.Commission = &schedule.Commission{Kind: kind, Amount: loan.Commission.Amount}
	}

	return req, nil
}

// ToOptimizationRequest converts a config Budget into an optimizer request.
func (b *Budget) ToOptimizationRequest() (budget.OptimizationRequest, error) {
	var req budget.OptimizationRequest

	scheme, err := schedule.ParsePaymentScheme(b.PaymentType)
	if err != nil {
		return req, fmt.Errorf("budget %s: %w", b.Name, err)
	}

	priority, err := budget.ParsePriority(b.Priority)
	if err != nil {
		return req, fmt.Errorf("budget %s: %w", b.Name, err)
	}

	return budget.OptimizationRequest{
		Principal:         b.Principal,
		MonthlyRate:       monthlyRate(b.AnnualInterestRate),
		Scheme:            scheme,
		MaxMonthlyPayment: b.MaxMonthlyPayment,
		Priority:          priority,
	}, nil
}
