package schedule

import (
	"math"

	"github.com/iwvelando/loan-planner/pkg/constants"
	"github.com/iwvelando/loan-planner/pkg/datetime"
	"github.com/iwvelando/loan-planner/pkg/mathutil"
	"go.uber.org/zap"
)

// Engine computes amortization schedules. It holds no state beyond the
// logger; Compute is a pure function of its request and safe for concurrent
// use.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates an engine instance.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// AnnuityPayment computes the standard annuity payment for a principal
// amortized over termMonths at the given periodic rate. A zero rate
// degenerates to an even principal split.
func AnnuityPayment(principal, monthlyRate float64, termMonths int) float64 {
	if termMonths < 1 {
		return 0
	}
	if monthlyRate == 0 {
		return principal / float64(termMonths)
	}
	power := math.Pow(1+monthlyRate, float64(termMonths))
	return principal * monthlyRate * power / (power - 1)
}

// DifferentiatedFirstPayment computes the first (largest) payment of a
// differentiated schedule without materializing it.
func DifferentiatedFirstPayment(principal, monthlyRate float64, termMonths int) float64 {
	if termMonths < 1 {
		return 0
	}
	return principal/float64(termMonths) + principal*monthlyRate
}

// Compute produces the full schedule and aggregate totals for the request.
// It fails only on validation; every valid request yields a complete result.
func (e *Engine) Compute(req LoanRequest) (*LoanResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	graceMonths := req.GraceMonths()
	effectiveTerm := req.TermMonths - graceMonths

	// Interest during the holiday accrues additively on the original
	// principal and is capitalized once, when the amortizing phase begins.
	graceInterest := req.Principal * req.MonthlyRate * float64(graceMonths)
	effectivePrincipal := req.Principal + graceInterest

	if graceMonths > 0 {
		e.logger.Debug("applying grace period",
			zap.String("op", "schedule.Compute"),
			zap.Int("graceMonths", graceMonths),
			zap.Int("effectiveTerm", effectiveTerm),
			zap.Float64("effectivePrincipal", effectivePrincipal),
		)
	}

	prepayByMonth := make(map[int]float64, len(req.Prepayments))
	for _, p := range req.Prepayments {
		prepayByMonth[datetime.MonthOffset(req.StartDate, p.Date)] += p.Amount
	}

	var result *LoanResult
	switch req.Scheme {
	case Differentiated:
		result = e.computeDifferentiated(req, effectivePrincipal, effectiveTerm, graceMonths, graceInterest, prepayByMonth)
	default:
		result = e.computeAnnuity(req, effectivePrincipal, effectiveTerm, graceMonths, graceInterest, prepayByMonth)
	}

	result.TotalCommission = commissionTotal(req)
	result.Overpayment = result.TotalPayments + result.TotalCommission - req.Principal
	result.OverpaymentPct = mathutil.CalculatePercentage(result.Overpayment, req.Principal)
	// Simplified total cost of credit: same formula as the overpayment
	// percentage, commission included. Not an APR-style metric.
	result.TotalCostPct = result.OverpaymentPct

	if req.ReportInflation {
		totalAdjusted := 0.0
		for _, entry := range result.Schedule {
			if entry.InflationAdjustedPayment != nil {
				totalAdjusted += *entry.InflationAdjustedPayment
			}
		}
		adjustedOverpayment := totalAdjusted - req.Principal
		result.InflationTotals = &InflationTotals{
			TotalPayments:  totalAdjusted,
			Overpayment:    adjustedOverpayment,
			OverpaymentPct: mathutil.CalculatePercentage(adjustedOverpayment, req.Principal),
		}
	}

	return result, nil
}

func (e *Engine) computeAnnuity(req LoanRequest, effectivePrincipal float64, effectiveTerm, graceMonths int, graceInterest float64, prepayByMonth map[int]float64) *LoanResult {
	payment := applyRounding(AnnuityPayment(effectivePrincipal, req.MonthlyRate, effectiveTerm), req.Rounding)

	result := &LoanResult{Schedule: make([]ScheduleEntry, 0, req.TermMonths)}
	if graceMonths > 0 {
		result.MonthlyPayment = RangePayment(req.Principal*req.MonthlyRate, payment)
	} else {
		result.MonthlyPayment = FixedPayment(payment)
	}

	balance := req.Principal
	for month := 1; month <= req.TermMonths; month++ {
		if month == graceMonths+1 && graceMonths > 0 {
			balance += graceInterest
		}
		inGrace := month <= graceMonths

		interest := balance * req.MonthlyRate
		var principalPortion, pay float64
		switch {
		case inGrace:
			pay = interest
		case balance <= 0:
			// Paid off early by a prepayment; the row stays to keep
			// one entry per month of the nominal term.
			interest = 0
		case month == req.TermMonths || payment-interest >= balance-constants.CurrencyTolerance:
			// Final amortizing month absorbs the rounding drift.
			principalPortion = balance
			pay = principalPortion + interest
		default:
			principalPortion = payment - interest
			pay = payment
		}

		entry := e.settleMonth(req, month, balance, principalPortion, interest, pay, inGrace, prepayByMonth)
		balance = entry.RemainingBalance
		result.Schedule = append(result.Schedule, entry)
		result.TotalPayments += entry.Payment
		result.TotalInterest += entry.InterestPortion
	}

	return result
}

func (e *Engine) computeDifferentiated(req LoanRequest, effectivePrincipal float64, effectiveTerm, graceMonths int, graceInterest float64, prepayByMonth map[int]float64) *LoanResult {
	fixedPortion := effectivePrincipal / float64(effectiveTerm)

	result := &LoanResult{Schedule: make([]ScheduleEntry, 0, req.TermMonths)}

	balance := req.Principal
	for month := 1; month <= req.TermMonths; month++ {
		if month == graceMonths+1 && graceMonths > 0 {
			balance += graceInterest
		}
		inGrace := month <= graceMonths

		interest := balance * req.MonthlyRate
		var principalPortion, pay float64
		switch {
		case inGrace:
			pay = interest
		case balance <= 0:
			interest = 0
		default:
			principalPortion = fixedPortion
			if month == req.TermMonths || principalPortion >= balance-constants.CurrencyTolerance {
				principalPortion = balance
			}
			pay = principalPortion + interest
		}

		entry := e.settleMonth(req, month, balance, principalPortion, interest, pay, inGrace, prepayByMonth)
		balance = entry.RemainingBalance
		result.Schedule = append(result.Schedule, entry)
		result.TotalPayments += entry.Payment
		result.TotalInterest += entry.InterestPortion
	}

	first := result.Schedule[0].Payment
	last := result.Schedule[len(result.Schedule)-1].Payment
	result.MonthlyPayment = RangePayment(first, last)

	return result
}

// settleMonth applies the scheduled principal reduction and any matching
// prepayment, clamps the balance, and builds the schedule row.
func (e *Engine) settleMonth(req LoanRequest, month int, balance, principalPortion, interest, pay float64, inGrace bool, prepayByMonth map[int]float64) ScheduleEntry {
	balance -= principalPortion
	if balance < constants.CurrencyTolerance {
		balance = 0
	}

	var prepaid float64
	if amount, ok := prepayByMonth[month]; ok && balance > 0 {
		prepaid = mathutil.Min(amount, balance)
		balance -= prepaid
		if balance < constants.CurrencyTolerance {
			balance = 0
		}
		pay += prepaid
		principalPortion += prepaid
		e.logger.Debug("applying prepayment",
			zap.String("op", "schedule.Compute"),
			zap.Int("month", month),
			zap.Float64("amount", prepaid),
			zap.Float64("remainingBalance", balance),
		)
	}

	entry := ScheduleEntry{
		Month:            month,
		Date:             datetime.AddMonths(req.StartDate, month),
		Payment:          pay,
		PrincipalPortion: principalPortion,
		InterestPortion:  interest,
		RemainingBalance: balance,
		IsGracePeriod:    inGrace,
	}
	if prepaid > 0 {
		v := prepaid
		entry.PrepaymentApplied = &v
	}
	if req.ReportInflation {
		factor := inflationFactor(req.InflationAnnualRate, month)
		adjustedPayment := pay / factor
		adjustedBalance := balance / factor
		entry.InflationAdjustedPayment = &adjustedPayment
		entry.InflationAdjustedBalance = &adjustedBalance
	}
	return entry
}

// inflationFactor is the discount factor for month k at the given annual
// inflation rate, compounding the equivalent monthly rate.
func inflationFactor(annualRate float64, month int) float64 {
	if annualRate == 0 {
		annualRate = constants.DefaultInflationRate
	}
	monthlyRate := math.Pow(1+annualRate, 1.0/constants.MonthsPerYear) - 1
	return math.Pow(1+monthlyRate, float64(month))
}

func commissionTotal(req LoanRequest) float64 {
	if req.Commission == nil || req.Commission.Amount <= 0 {
		return 0
	}
	switch req.Commission.Kind {
	case CommissionFixed:
		return req.Commission.Amount
	case CommissionPerMonth:
		return req.Commission.Amount * float64(req.TermMonths)
	default:
		return req.Principal * req.Commission.Amount / constants.PercentageMultiplier
	}
}

func applyRounding(payment float64, granularity Rounding) float64 {
	switch granularity {
	case RoundKopecks:
		return math.Round(payment*constants.DecimalPrecision) / constants.DecimalPrecision
	case RoundRubles:
		return math.Round(payment)
	case RoundTens:
		return math.Round(payment/10) * 10
	case RoundHundreds:
		return math.Round(payment/100) * 100
	default:
		return payment
	}
}
