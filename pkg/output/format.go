// Package output provides utilities for formatting and displaying schedule
// and optimization results.
package output

import (
	"fmt"
	"strings"

	"github.com/iwvelando/loan-planner/pkg/budget"
	"github.com/iwvelando/loan-planner/pkg/datetime"
	"github.com/iwvelando/loan-planner/pkg/format"
	"github.com/iwvelando/loan-planner/pkg/schedule"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PaymentSummary renders a payment summary as a single amount or a
// first/last range.
func PaymentSummary(p schedule.PaymentSummary) string {
	if p.Kind == schedule.PaymentRange {
		return fmt.Sprintf("%s .. %s", format.Currency(p.First), format.Currency(p.Last))
	}
	return format.Currency(p.Amount)
}

// PrettyFormat outputs a human-readable table for one schedule result.
func PrettyFormat(name string, result *schedule.LoanResult) {
	p := message.NewPrinter(language.English)
	fmt.Printf("--- Schedule for loan %s ---\n", name)
	fmt.Printf("Monthly payment: %s\n", PaymentSummary(result.MonthlyPayment))
	_, _ = p.Printf("Total payments: %.2f | interest: %.2f | commission: %.2f\n",
		result.TotalPayments, result.TotalInterest, result.TotalCommission)
	fmt.Printf("Overpayment: %s (%s), total cost %s\n",
		format.Currency(result.Overpayment),
		format.Percent(result.OverpaymentPct),
		format.Percent(result.TotalCostPct))
	if result.InflationTotals != nil {
		fmt.Printf("Inflation-adjusted payments: %s, overpayment %s (%s)\n",
			format.Currency(result.InflationTotals.TotalPayments),
			format.Currency(result.InflationTotals.Overpayment),
			format.Percent(result.InflationTotals.OverpaymentPct))
	}
	fmt.Printf("Month | Date    | Payment       | Principal     | Interest      | Balance\n")
	fmt.Printf("_____ | ____    | _______       | _________     | ________      | _______\n")
	for _, entry := range result.Schedule {
		marker := ""
		if entry.IsGracePeriod {
			marker = " (grace)"
		}
		if entry.PrepaymentApplied != nil {
			marker += fmt.Sprintf(" (+%s prepaid)", format.Currency(*entry.PrepaymentApplied))
		}
		_, _ = p.Printf("%5d | %s | %13.2f | %13.2f | %13.2f | %.2f%s\n",
			entry.Month,
			entry.Date.Format(datetime.DateTimeLayout),
			entry.Payment,
			entry.PrincipalPortion,
			entry.InterestPortion,
			entry.RemainingBalance,
			marker,
		)
	}
	fmt.Printf("\n")
}

// CsvFormat outputs one schedule result in comma-separated value format.
func CsvFormat(name string, result *schedule.LoanResult) {
	fmt.Print(CsvString(name, result))
}

// CsvString renders one schedule result as CSV, including the optional
// inflation-adjusted columns when present.
func CsvString(name string, result *schedule.LoanResult) string {
	var builder strings.Builder
	withInflation := result.InflationTotals != nil

	builder.WriteString(`"loan","month","date","payment","principal","interest","balance","grace","prepayment"`)
	if withInflation {
		builder.WriteString(`,"adjustedPayment","adjustedBalance"`)
	}
	builder.WriteString("\n")

	for _, entry := range result.Schedule {
		prepaid := 0.0
		if entry.PrepaymentApplied != nil {
			prepaid = *entry.PrepaymentApplied
		}
		fmt.Fprintf(&builder, `"%s","%d","%s","%.2f","%.2f","%.2f","%.2f","%t","%.2f"`,
			name,
			entry.Month,
			entry.Date.Format(datetime.DateTimeLayout),
			entry.Payment,
			entry.PrincipalPortion,
			entry.InterestPortion,
			entry.RemainingBalance,
			entry.IsGracePeriod,
			prepaid,
		)
		if withInflation {
			fmt.Fprintf(&builder, `,"%.2f","%.2f"`,
				*entry.InflationAdjustedPayment,
				*entry.InflationAdjustedBalance)
		}
		builder.WriteString("\n")
	}

	return builder.String()
}

// PrettyOptimization outputs a human-readable summary for one optimization
// result.
func PrettyOptimization(name string, result budget.OptimizationResult) {
	fmt.Printf("--- Budget optimization %s ---\n", name)
	fmt.Printf("Term: %d months | payment: %s\n", result.TermMonths, PaymentSummary(result.MonthlyPayment))
	fmt.Printf("Total payments: %s | overpayment: %s | budget used: %s\n",
		format.Currency(result.TotalPayments),
		format.Currency(result.Overpayment),
		format.Percent(result.BudgetUtilizationPct))
	if result.Warning != "" {
		fmt.Printf("Warning: %s\n", result.Warning)
	}
	fmt.Printf("\n")
}
