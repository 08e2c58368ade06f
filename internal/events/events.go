// Package events defines the structured records the ledger emits on every
// committed mutation. The core writes records and never reads them back;
// delivery is best-effort and must not affect ledger correctness.
package events

// Record is a structured side-channel event.
type Record interface {
	Kind() string
}

// Emitter consumes records after a transaction commits.
type Emitter interface {
	Emit(rec Record)
}

// Deposited is emitted when a new term deposit is created.
type Deposited struct {
	Account    string `json:"account"`
	Amount     int64  `json:"amount"`
	TermMonths int    `json:"term_months"`
	Rate       int    `json:"rate"`
	StartTime  int64  `json:"start_time"`
}

func (Deposited) Kind() string { return "deposited" }

// Withdrawn is emitted when a deposit slot is paid out and cleared.
type Withdrawn struct {
	Account    string `json:"account"`
	Amount     int64  `json:"amount"`
	TermMonths int    `json:"term_months"`
	Interest   int64  `json:"interest"`
	Total      int64  `json:"total"`
	StartTime  int64  `json:"start_time"`
	EndTime    int64  `json:"end_time"`
}

func (Withdrawn) Kind() string { return "withdrawn" }

// Reinvested is emitted when a matured, unclaimed deposit rolls over in place.
type Reinvested struct {
	Account    string `json:"account"`
	NewAmount  int64  `json:"new_amount"`
	TermMonths int    `json:"term_months"`
	Rate       int    `json:"rate"`
	StartTime  int64  `json:"start_time"`
}

func (Reinvested) Kind() string { return "reinvested" }

// LoanTaken is emitted when a loan is originated against a deposit.
type LoanTaken struct {
	Account        string `json:"account"`
	Principal      int64  `json:"principal"`
	Rate           int    `json:"rate"`
	StartTime      int64  `json:"start_time"`
	DurationMonths int    `json:"duration_months"`
	TotalDue       int64  `json:"total_due"`
}

func (LoanTaken) Kind() string { return "loan_taken" }

// LoanRepaid is emitted on every repayment, including the closing one.
type LoanRepaid struct {
	Account          string `json:"account"`
	Paid             int64  `json:"paid"`
	RemainingBalance int64  `json:"remaining_balance"`
}

func (LoanRepaid) Kind() string { return "loan_repaid" }

// ValidityChecked is emitted by the borrowing-capacity check.
type ValidityChecked struct {
	Account         string `json:"account"`
	MaxLoan         int64  `json:"max_loan"`
	RemainingMonths int    `json:"remaining_months"`
	Options         []int  `json:"options"`
	RateDescription string `json:"rate_description"`
}

func (ValidityChecked) Kind() string { return "validity_checked" }

// StartTimeReported is emitted by the deposit start-date report.
type StartTimeReported struct {
	Account      string `json:"account"`
	DepositIndex int    `json:"deposit_index"`
	Year         int    `json:"year"`
	Month        int    `json:"month"`
	Day          int    `json:"day"`
	Hour         int    `json:"hour"`
	Minute       int    `json:"minute"`
	Second       int    `json:"second"`
}

func (StartTimeReported) Kind() string { return "start_time_reported" }

// MaturityReported is emitted by the deposit maturity report.
type MaturityReported struct {
	Account      string `json:"account"`
	DepositIndex int    `json:"deposit_index"`
	Year         int    `json:"year"`
	Month        int    `json:"month"`
	Day          int    `json:"day"`
	Hour         int    `json:"hour"`
	Minute       int    `json:"minute"`
	Second       int    `json:"second"`
}

func (MaturityReported) Kind() string { return "maturity_reported" }
