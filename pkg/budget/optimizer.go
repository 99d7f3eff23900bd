// Package budget solves the inverse loan problem: given an affordability
// ceiling on the monthly payment, find the best achievable term/payment
// combination under a stated priority.
package budget

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/iwvelando/loan-planner/pkg/constants"
	"github.com/iwvelando/loan-planner/pkg/mathutil"
	"github.com/iwvelando/loan-planner/pkg/schedule"
	"go.uber.org/zap"
)

// Priority selects the objective among feasible term/payment combinations.
type Priority int

const (
	// MinimizeTerm prefers the shortest feasible term.
	MinimizeTerm Priority = iota

	// MinimizePayment prefers the smallest monthly payment seen.
	MinimizePayment

	// MinimizeOverpayment prefers the smallest total overpayment seen.
	MinimizeOverpayment
)

// String returns the canonical configuration name for the priority.
func (p Priority) String() string {
	switch p {
	case MinimizePayment:
		return "minimize-payment"
	case MinimizeOverpayment:
		return "minimize-overpayment"
	default:
		return "minimize-term"
	}
}

// ParsePriority parses a configuration value into a Priority.
func ParsePriority(value string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "minimize-term":
		return MinimizeTerm, nil
	case "minimize-payment":
		return MinimizePayment, nil
	case "minimize-overpayment":
		return MinimizeOverpayment, nil
	default:
		return MinimizeTerm, fmt.Errorf("unknown optimization priority %q", value)
	}
}

// Warning texts carried on best-effort boundary results.
const (
	// WarningBudgetTooSmall means the budget is below the interest-only
	// floor; no finite term keeps the payment within it.
	WarningBudgetTooSmall = "budget too small for this loan"

	// WarningMaxTermReached means the search exhausted the term ceiling
	// without finding a feasible payment.
	WarningMaxTermReached = "maximum term reached"
)

// OptimizationRequest holds the parameters for one optimization.
type OptimizationRequest struct {
	Principal         float64
	MonthlyRate       float64
	Scheme            schedule.PaymentScheme
	MaxMonthlyPayment float64
	Priority          Priority
}

// Details carries search diagnostics alongside the headline result.
type Details struct {
	Algorithm          string
	MinPossiblePayment float64
	AveragePayment     float64
	PaymentVariance    float64
	PaymentRange       float64
}

// OptimizationResult is the outcome of one optimization. Infeasible budgets
// yield a best-effort boundary result with Warning set, never an error.
type OptimizationResult struct {
	TermMonths           int
	MonthlyPayment       schedule.PaymentSummary
	TotalPayments        float64
	Overpayment          float64
	BudgetUtilizationPct float64
	Warning              string
	Details              Details
}

// Optimizer searches for budget-feasible loan terms. It uses closed-form
// payment formulas directly rather than materializing a schedule per
// candidate; safe for concurrent use.
type Optimizer struct {
	logger *zap.Logger
}

// NewOptimizer creates an optimizer instance.
func NewOptimizer(logger *zap.Logger) *Optimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Optimizer{logger: logger}
}

// Optimize finds the best term/payment combination whose monthly payment
// stays within the budget, under the request's priority.
func (o *Optimizer) Optimize(req OptimizationRequest) OptimizationResult {
	if req.Principal <= 0 || req.MaxMonthlyPayment <= 0 || req.MonthlyRate < 0 {
		return OptimizationResult{
			TermMonths:     1,
			MonthlyPayment: schedule.FixedPayment(req.Principal),
			TotalPayments:  req.Principal,
			Warning:        "request parameters must be positive",
		}
	}

	var result OptimizationResult
	if req.Scheme == schedule.Differentiated {
		result = o.optimizeDifferentiated(req)
	} else {
		result = o.optimizeAnnuity(req)
	}

	o.logger.Debug("budget optimization finished",
		zap.String("op", "budget.Optimize"),
		zap.String("priority", req.Priority.String()),
		zap.Int("termMonths", result.TermMonths),
		zap.Float64("budgetUtilizationPct", result.BudgetUtilizationPct),
		zap.String("warning", result.Warning),
	)
	return result
}

// Materialize asks the schedule engine for the full payment schedule of the
// winning term.
func (o *Optimizer) Materialize(engine *schedule.Engine, req OptimizationRequest, result OptimizationResult, startDate time.Time) (*schedule.LoanResult, error) {
	return engine.Compute(schedule.LoanRequest{
		Principal:   req.Principal,
		TermMonths:  result.TermMonths,
		MonthlyRate: req.MonthlyRate,
		Scheme:      req.Scheme,
		StartDate:   startDate,
	})
}

// optimizeAnnuity binary-searches the term. The monthly payment is strictly
// decreasing in term for a fixed rate and principal, so the search isolates
// the feasibility boundary; the priority only decides which feasible probe is
// reported as best.
func (o *Optimizer) optimizeAnnuity(req OptimizationRequest) OptimizationResult {
	if req.MonthlyRate == 0 {
		// Zero rate collapses to an even split of the principal.
		term := int(math.Ceil(req.Principal / req.MaxMonthlyPayment))
		if term < 1 {
			term = 1
		}
		if term > constants.MaxOptimizationTermMonths {
			term = constants.MaxOptimizationTermMonths
			payment := req.Principal / float64(term)
			return OptimizationResult{
				TermMonths:           term,
				MonthlyPayment:       schedule.FixedPayment(payment),
				TotalPayments:        req.Principal,
				BudgetUtilizationPct: mathutil.CalculatePercentage(payment, req.MaxMonthlyPayment),
				Warning:              WarningMaxTermReached,
				Details:              Details{Algorithm: "closed_form"},
			}
		}
		payment := req.Principal / float64(term)
		return OptimizationResult{
			TermMonths:           term,
			MonthlyPayment:       schedule.FixedPayment(payment),
			TotalPayments:        req.Principal,
			BudgetUtilizationPct: mathutil.CalculatePercentage(payment, req.MaxMonthlyPayment),
			Details:              Details{Algorithm: "closed_form"},
		}
	}

	// Payment at an infinite term: the interest-only floor.
	minPossiblePayment := req.Principal * req.MonthlyRate
	if req.MaxMonthlyPayment < minPossiblePayment {
		return OptimizationResult{
			TermMonths:           1,
			MonthlyPayment:       schedule.FixedPayment(minPossiblePayment),
			TotalPayments:        minPossiblePayment,
			BudgetUtilizationPct: mathutil.CalculatePercentage(minPossiblePayment, req.MaxMonthlyPayment),
			Warning:              WarningBudgetTooSmall,
			Details:              Details{Algorithm: "binary_search", MinPossiblePayment: minPossiblePayment},
		}
	}

	left, right := 1, constants.MaxOptimizationTermMonths
	bestTerm := 0
	bestScore := math.Inf(1)
	var bestPayment, bestTotal, bestOverpayment float64

	for left <= right {
		mid := (left + right) / 2
		payment := schedule.AnnuityPayment(req.Principal, req.MonthlyRate, mid)
		if payment <= req.MaxMonthlyPayment {
			totalPayments := payment * float64(mid)
			overpayment := totalPayments - req.Principal

			var score float64
			switch req.Priority {
			case MinimizePayment:
				score = payment
			case MinimizeOverpayment:
				score = overpayment
			default:
				score = float64(mid)
			}
			if score < bestScore {
				bestScore = score
				bestTerm = mid
				bestPayment = payment
				bestTotal = totalPayments
				bestOverpayment = overpayment
			}
			right = mid - 1
		} else {
			left = mid + 1
		}
	}

	if bestTerm == 0 {
		// Even the term ceiling cannot bring the payment within budget.
		term := constants.MaxOptimizationTermMonths
		payment := schedule.AnnuityPayment(req.Principal, req.MonthlyRate, term)
		totalPayments := payment * float64(term)
		return OptimizationResult{
			TermMonths:           term,
			MonthlyPayment:       schedule.FixedPayment(payment),
			TotalPayments:        totalPayments,
			Overpayment:          totalPayments - req.Principal,
			BudgetUtilizationPct: mathutil.CalculatePercentage(payment, req.MaxMonthlyPayment),
			Warning:              WarningMaxTermReached,
			Details:              Details{Algorithm: "binary_search", MinPossiblePayment: minPossiblePayment},
		}
	}

	return OptimizationResult{
		TermMonths:           bestTerm,
		MonthlyPayment:       schedule.FixedPayment(bestPayment),
		TotalPayments:        bestTotal,
		Overpayment:          bestOverpayment,
		BudgetUtilizationPct: mathutil.CalculatePercentage(bestPayment, req.MaxMonthlyPayment),
		Details: Details{
			Algorithm:          "binary_search",
			MinPossiblePayment: minPossiblePayment,
			AveragePayment:     bestPayment,
		},
	}
}

// optimizeDifferentiated linearly grows the term until the first (largest)
// payment fits the budget, then materializes the payment sequence for the
// winning term to report the range and diagnostics.
func (o *Optimizer) optimizeDifferentiated(req OptimizationRequest) OptimizationResult {
	term := 1
	firstPayment := schedule.DifferentiatedFirstPayment(req.Principal, req.MonthlyRate, term)
	for firstPayment > req.MaxMonthlyPayment && term < constants.MaxOptimizationTermMonths {
		term++
		firstPayment = schedule.DifferentiatedFirstPayment(req.Principal, req.MonthlyRate, term)
	}

	payments := differentiatedPayments(req.Principal, req.MonthlyRate, term)
	totalPayments := 0.0
	for _, p := range payments {
		totalPayments += p
	}
	first := payments[0]
	last := payments[len(payments)-1]

	result := OptimizationResult{
		TermMonths:           term,
		MonthlyPayment:       schedule.RangePayment(first, last),
		TotalPayments:        totalPayments,
		Overpayment:          totalPayments - req.Principal,
		BudgetUtilizationPct: mathutil.CalculatePercentage(first, req.MaxMonthlyPayment),
		Details: Details{
			Algorithm:       "linear_search",
			AveragePayment:  totalPayments / float64(term),
			PaymentVariance: mathutil.Variance(payments),
			PaymentRange:    first - last,
		},
	}
	if firstPayment > req.MaxMonthlyPayment {
		result.Warning = WarningMaxTermReached
	}
	return result
}

func differentiatedPayments(principal, monthlyRate float64, term int) []float64 {
	fixedPortion := principal / float64(term)
	payments := make([]float64, 0, term)
	balance := principal
	for month := 1; month <= term; month++ {
		payments = append(payments, fixedPortion+balance*monthlyRate)
		balance -= fixedPortion
	}
	return payments
}
