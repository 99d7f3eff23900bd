// Package schedule implements the loan amortization engine: given a loan
// request it deterministically produces a month-by-month payment schedule and
// derived aggregate metrics.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/loan-planner/pkg/constants"
	"github.com/iwvelando/loan-planner/pkg/datetime"
)

// PaymentScheme selects how the monthly payment is structured.
type PaymentScheme int

const (
	// Annuity keeps the total payment constant while the interest/principal
	// split shifts over time.
	Annuity PaymentScheme = iota

	// Differentiated keeps the principal portion constant so the total
	// payment declines over time.
	Differentiated
)

// String returns the canonical configuration name for the scheme.
func (s PaymentScheme) String() string {
	switch s {
	case Differentiated:
		return "differentiated"
	default:
		return "annuity"
	}
}

// ParsePaymentScheme parses a configuration value into a PaymentScheme.
func ParsePaymentScheme(value string) (PaymentScheme, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "annuity":
		return Annuity, nil
	case "differentiated":
		return Differentiated, nil
	default:
		return Annuity, fmt.Errorf("unknown payment scheme %q", value)
	}
}

// GraceUnit is the unit a grace period length is expressed in.
type GraceUnit int

const (
	// GraceMonths expresses the grace period directly in months.
	GraceMonths GraceUnit = iota

	// GraceYears expresses the grace period in years (12 months each).
	GraceYears
)

// ParseGraceUnit parses a configuration value into a GraceUnit.
func ParseGraceUnit(value string) (GraceUnit, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "months":
		return GraceMonths, nil
	case "years":
		return GraceYears, nil
	default:
		return GraceMonths, fmt.Errorf("unknown grace period unit %q", value)
	}
}

// GracePeriod is an interest-only payment holiday at the start of the term.
type GracePeriod struct {
	Amount int
	Unit   GraceUnit
}

// Months returns the grace period length in months.
func (g GracePeriod) Months() int {
	if g.Unit == GraceYears {
		return g.Amount * constants.MonthsPerYear
	}
	return g.Amount
}

// Prepayment is an additional principal payment applied at the schedule month
// its date falls on.
type Prepayment struct {
	Date   time.Time
	Amount float64
}

// ExpandRecurring builds the prepayment list for a recurring extra principal
// payment: count payments of the given amount, frequencyMonths apart,
// starting at first.
func ExpandRecurring(first time.Time, amount float64, frequencyMonths, count int) []Prepayment {
	if count < 1 || frequencyMonths < 1 || amount <= 0 {
		return nil
	}
	prepayments := make([]Prepayment, 0, count)
	date := first
	for i := 0; i < count; i++ {
		prepayments = append(prepayments, Prepayment{Date: date, Amount: amount})
		date = datetime.AddMonths(date, frequencyMonths)
	}
	return prepayments
}

// CommissionKind selects how a loan commission is computed.
type CommissionKind int

const (
	// CommissionPercent charges a percentage of the principal once.
	CommissionPercent CommissionKind = iota

	// CommissionFixed charges a flat amount once.
	CommissionFixed

	// CommissionPerMonth charges a flat amount every month of the term.
	CommissionPerMonth
)

// ParseCommissionKind parses a configuration value into a CommissionKind.
func ParseCommissionKind(value string) (CommissionKind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "percent":
		return CommissionPercent, nil
	case "fixed":
		return CommissionFixed, nil
	case "monthly", "permonth":
		return CommissionPerMonth, nil
	default:
		return CommissionPercent, fmt.Errorf("unknown commission kind %q", value)
	}
}

// Commission is a fee added to the total cost of the loan but not to the
// principal.
type Commission struct {
	Kind   CommissionKind
	Amount float64
}

// Rounding is the granularity the computed annuity payment is rounded to.
// It never applies to intermediate interest/principal splits.
type Rounding int

const (
	// RoundNone leaves the computed payment untouched.
	RoundNone Rounding = iota

	// RoundKopecks rounds to the nearest hundredth.
	RoundKopecks

	// RoundRubles rounds to the nearest whole unit.
	RoundRubles

	// RoundTens rounds to the nearest ten.
	RoundTens

	// RoundHundreds rounds to the nearest hundred.
	RoundHundreds
)

// ParseRounding parses a configuration value into a Rounding granularity.
func ParseRounding(value string) (Rounding, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none":
		return RoundNone, nil
	case "kopecks":
		return RoundKopecks, nil
	case "rubles":
		return RoundRubles, nil
	case "tens":
		return RoundTens, nil
	case "hundreds":
		return RoundHundreds, nil
	default:
		return RoundNone, fmt.Errorf("unknown rounding granularity %q", value)
	}
}

// LoanRequest holds the parameters for one schedule computation. Requests are
// value objects; Compute never mutates them.
type LoanRequest struct {
	Principal   float64
	TermMonths  int
	MonthlyRate float64
	Scheme      PaymentScheme
	StartDate   time.Time

	Grace       *GracePeriod
	Prepayments []Prepayment
	Commission  *Commission
	Rounding    Rounding

	// InflationAnnualRate is only consulted when ReportInflation is set;
	// zero falls back to constants.DefaultInflationRate.
	InflationAnnualRate float64
	ReportInflation     bool
}

// GraceMonths returns the grace period length in months, zero when absent.
func (r LoanRequest) GraceMonths() int {
	if r.Grace == nil {
		return 0
	}
	return r.Grace.Months()
}

// ScheduleEntry is one row of the payment schedule.
type ScheduleEntry struct {
	Month            int
	Date             time.Time
	Payment          float64
	PrincipalPortion float64
	InterestPortion  float64
	RemainingBalance float64

	// Present only when the request asked for inflation-adjusted reporting.
	InflationAdjustedPayment *float64
	InflationAdjustedBalance *float64

	IsGracePeriod     bool
	PrepaymentApplied *float64
}

// PaymentKind tags the two shapes a monthly payment summary can take.
type PaymentKind int

const (
	// PaymentFixed is a single constant payment for every month.
	PaymentFixed PaymentKind = iota

	// PaymentRange is a changing payment reported as its first and last
	// values.
	PaymentRange
)

// PaymentSummary reports the monthly payment either as a single fixed amount
// or as a first/last range when grace-period blending or differentiated
// payments make it vary.
type PaymentSummary struct {
	Kind   PaymentKind
	Amount float64 // set when Kind == PaymentFixed
	First  float64 // set when Kind == PaymentRange
	Last   float64 // set when Kind == PaymentRange
}

// FixedPayment builds a fixed payment summary.
func FixedPayment(amount float64) PaymentSummary {
	return PaymentSummary{Kind: PaymentFixed, Amount: amount}
}

// RangePayment builds a first/last payment summary.
func RangePayment(first, last float64) PaymentSummary {
	return PaymentSummary{Kind: PaymentRange, First: first, Last: last}
}

// Largest returns the biggest scheduled payment the summary describes.
func (p PaymentSummary) Largest() float64 {
	if p.Kind == PaymentFixed {
		return p.Amount
	}
	if p.First > p.Last {
		return p.First
	}
	return p.Last
}

// InflationTotals aggregates the present-value view of the schedule.
type InflationTotals struct {
	TotalPayments  float64
	Overpayment    float64
	OverpaymentPct float64
}

// LoanResult is the complete outcome of one schedule computation.
type LoanResult struct {
	MonthlyPayment PaymentSummary

	TotalPayments   float64
	TotalInterest   float64
	TotalCommission float64
	Overpayment     float64
	OverpaymentPct  float64

	// TotalCostPct intentionally uses the same simplified formula as
	// OverpaymentPct (commission included); it is not an APR-style
	// time-value-of-money metric.
	TotalCostPct float64

	InflationTotals *InflationTotals

	Schedule []ScheduleEntry
}
