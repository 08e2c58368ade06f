// Package ledger implements the savings-and-lending state machine: term
// deposits with tiered rates, maturity and automatic reinvestment, and loans
// originated one-to-one against undrawn deposits.
package ledger

import "errors"

// Domain errors. Every failed operation aborts with no partial state change;
// the HTTP layer maps these to status codes.
var (
	// ErrValidation covers malformed or out-of-policy input: amount below
	// the minimum, unsupported term, loan duration outside the offered
	// options, repayment above the remaining balance.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound covers references to an empty or nonexistent deposit or
	// loan slot.
	ErrNotFound = errors.New("slot not found")

	// ErrConflict means the deposit has already been used as loan
	// collateral; the lock is never released.
	ErrConflict = errors.New("deposit already used as collateral")

	// ErrLimit means the requested loan exceeds the loan-to-value cap.
	ErrLimit = errors.New("loan exceeds collateral limit")

	// ErrBlocked means a withdrawal was attempted while a loan is
	// outstanding on the account.
	ErrBlocked = errors.New("withdrawal blocked by outstanding loan")
)
