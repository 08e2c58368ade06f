package models

// Loan represents a loan originated against a deposit. A closed loan keeps
// its index with RemainingBalance == 0.
type Loan struct {
	Principal        int64 `json:"principal"`
	Rate             int   `json:"rate"` // whole percent: deposit rate + add-on
	StartTime        int64 `json:"start_time"`
	DurationMonths   int   `json:"duration_months"`
	RemainingBalance int64 `json:"remaining_balance"`
	TotalDue         int64 `json:"total_due"`
}

// Closed reports whether the loan has been fully repaid.
func (l Loan) Closed() bool {
	return l.RemainingBalance == 0
}
