package schedule

import "fmt"

// InvalidRequestError indicates a loan request that cannot produce a
// well-defined schedule. The computation is rejected before any work begins.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid loan request: %s %s", e.Field, e.Reason)
}

func (r LoanRequest) validate() error {
	if r.Principal <= 0 {
		return &InvalidRequestError{Field: "principal", Reason: "must be positive"}
	}
	if r.TermMonths < 1 {
		return &InvalidRequestError{Field: "termMonths", Reason: "must be at least 1"}
	}
	if r.MonthlyRate < 0 {
		return &InvalidRequestError{Field: "monthlyRate", Reason: "must not be negative"}
	}
	if r.Grace != nil {
		if r.Grace.Amount <= 0 {
			return &InvalidRequestError{Field: "gracePeriod", Reason: "must be positive"}
		}
		if r.GraceMonths() >= r.TermMonths {
			return &InvalidRequestError{Field: "gracePeriod", Reason: "must be shorter than the term"}
		}
	}
	for _, p := range r.Prepayments {
		if p.Amount <= 0 {
			return &InvalidRequestError{Field: "prepayment", Reason: "amount must be positive"}
		}
	}
	return nil
}
