package models

// Deposit represents a term deposit slot. A cleared slot keeps its index but
// has Amount == 0 and must never be used as loan collateral again.
type Deposit struct {
	Amount     int64 `json:"amount"`
	StartTime  int64 `json:"start_time"` // seconds since epoch
	TermMonths int   `json:"term_months"`
	Rate       int   `json:"rate"` // whole percent, locked in at creation
}

// Cleared reports whether the slot has been withdrawn.
func (d Deposit) Cleared() bool {
	return d.Amount == 0
}
