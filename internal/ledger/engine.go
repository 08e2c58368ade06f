package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/minhtran-dev/savings-ledger/internal/calendar"
	"github.com/minhtran-dev/savings-ledger/internal/events"
	"github.com/minhtran-dev/savings-ledger/internal/models"
)

// AccountState is the persisted state of one account: its deposit and loan
// arenas, the permanent per-deposit collateral locks, and the cached
// borrow-duration options from the last capacity check.
type AccountState struct {
	Deposits []models.Deposit
	Loans    []models.Loan
	Locks    map[int]bool
	Options  []int
}

// Engine owns all account state. A single mutex serializes every operation,
// so each call is an atomic transaction: it reads the clock once, validates
// fully, and only then mutates. A failed call leaves no partial write.
type Engine struct {
	mu       sync.Mutex
	accounts map[string]*AccountState
	baseRate int
	offset   int64 // reporting offset in seconds, fixed, no DST
	now      func() int64
}

// NewEngine creates an empty engine with the given early-withdrawal base rate
// and local reporting offset.
func NewEngine(baseRate int, offsetSeconds int64) *Engine {
	return &Engine{
		accounts: make(map[string]*AccountState),
		baseRate: baseRate,
		offset:   offsetSeconds,
		now:      func() int64 { return time.Now().Unix() },
	}
}

// SetBaseRate updates the early-withdrawal penalty rate.
func (e *Engine) SetBaseRate(rate int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.baseRate = rate
}

// BaseRate returns the current early-withdrawal penalty rate.
func (e *Engine) BaseRate() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.baseRate
}

func (e *Engine) state(account string) *AccountState {
	st, ok := e.accounts[account]
	if !ok {
		st = &AccountState{Locks: make(map[int]bool)}
		e.accounts[account] = st
	}
	return st
}

// Deposit opens a new term deposit for the account and returns its slot
// index. The rate is locked in from the band/term table at creation.
func (e *Engine) Deposit(account string, amount int64, termMonths int) (int, models.Deposit, events.Record, error) {
	if amount < MinDepositAmount {
		return 0, models.Deposit{}, nil, fmt.Errorf("%w: amount %d below minimum %d", ErrValidation, amount, MinDepositAmount)
	}
	if _, ok := termColumn[termMonths]; !ok {
		return 0, models.Deposit{}, nil, fmt.Errorf("%w: unsupported term %d months", ErrValidation, termMonths)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	d := models.Deposit{
		Amount:     amount,
		StartTime:  e.now(),
		TermMonths: termMonths,
		Rate:       depositRate(amount, termMonths),
	}
	st := e.state(account)
	st.Deposits = append(st.Deposits, d)

	return len(st.Deposits) - 1, d, events.Deposited{
		Account:    account,
		Amount:     d.Amount,
		TermMonths: d.TermMonths,
		Rate:       d.Rate,
		StartTime:  d.StartTime,
	}, nil
}

// WithdrawResult is the outcome of a withdrawal: either a payout of the
// cleared slot, or an in-place reinvestment of a matured deposit.
type WithdrawResult struct {
	Total      int64  `json:"total"`
	Interest   int64  `json:"interest"`
	Reinvested bool   `json:"reinvested"`
	Message    string `json:"message"`
}

// Withdraw settles a deposit slot. Before the term elapses the base penalty
// rate applies instead of the locked-in rate. A deposit left unclaimed past
// 1.25x its hold time does not pay out: it reinvests, principal plus accrued
// interest, at the original rate and term.
func (e *Engine) Withdraw(account string, depositIndex int) (WithdrawResult, events.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.state(account)
	for _, l := range st.Loans {
		if l.RemainingBalance > 0 {
			return WithdrawResult{}, nil, fmt.Errorf("%w: loan balance %d outstanding", ErrBlocked, l.RemainingBalance)
		}
	}
	if depositIndex < 0 || depositIndex >= len(st.Deposits) {
		return WithdrawResult{}, nil, fmt.Errorf("%w: deposit %d", ErrNotFound, depositIndex)
	}
	d := &st.Deposits[depositIndex]
	if d.Cleared() {
		return WithdrawResult{}, nil, fmt.Errorf("%w: deposit %d already withdrawn", ErrNotFound, depositIndex)
	}

	now := e.now()
	timeHeld := now - d.StartTime
	requiredHold := int64(d.TermMonths) * holdSecondsPerMonth

	rate := d.Rate
	if timeHeld < requiredHold {
		rate = e.baseRate
	}
	interest := holdInterest(d.Amount, rate, timeHeld)

	// Grace window elapsed with no withdrawal: roll the deposit over
	// instead of paying out.
	if timeHeld*4 >= requiredHold*5 {
		d.Amount += interest
		d.StartTime = now
		return WithdrawResult{
				Total:      d.Amount,
				Interest:   interest,
				Reinvested: true,
				Message:    fmt.Sprintf("deposit matured unclaimed; reinvested %d at %d%% for %d months", d.Amount, d.Rate, d.TermMonths),
			}, events.Reinvested{
				Account:    account,
				NewAmount:  d.Amount,
				TermMonths: d.TermMonths,
				Rate:       d.Rate,
				StartTime:  d.StartTime,
			}, nil
	}

	total := d.Amount + interest
	rec := events.Withdrawn{
		Account:    account,
		Amount:     d.Amount,
		TermMonths: d.TermMonths,
		Interest:   interest,
		Total:      total,
		StartTime:  d.StartTime,
		EndTime:    now,
	}
	// Tombstone the slot: indices stay stable and a cleared slot can never
	// back a loan again.
	d.Amount = 0
	return WithdrawResult{
		Total:   total,
		Message: fmt.Sprintf("withdrew %d including %d interest", total, interest),
	}, rec, nil
}

// ReportStartTime translates a deposit's start counter into local civil
// fields.
func (e *Engine) ReportStartTime(account string, depositIndex int) (calendar.Civil, events.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := e.depositAt(account, depositIndex)
	if err != nil {
		return calendar.Civil{}, nil, err
	}
	c := calendar.CounterToCivil(calendar.ToLocalOffset(d.StartTime, e.offset))
	return c, events.StartTimeReported{
		Account: account, DepositIndex: depositIndex,
		Year: c.Year, Month: c.Month, Day: c.Day,
		Hour: c.Hour, Minute: c.Minute, Second: c.Second,
	}, nil
}

// ReportMaturity translates a deposit's maturity counter (start plus hold
// time) into local civil fields.
func (e *Engine) ReportMaturity(account string, depositIndex int) (calendar.Civil, events.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := e.depositAt(account, depositIndex)
	if err != nil {
		return calendar.Civil{}, nil, err
	}
	maturity := d.StartTime + int64(d.TermMonths)*holdSecondsPerMonth
	c := calendar.CounterToCivil(calendar.ToLocalOffset(maturity, e.offset))
	return c, events.MaturityReported{
		Account: account, DepositIndex: depositIndex,
		Year: c.Year, Month: c.Month, Day: c.Day,
		Hour: c.Hour, Minute: c.Minute, Second: c.Second,
	}, nil
}

func (e *Engine) depositAt(account string, depositIndex int) (models.Deposit, error) {
	st := e.state(account)
	if depositIndex < 0 || depositIndex >= len(st.Deposits) {
		return models.Deposit{}, fmt.Errorf("%w: deposit %d", ErrNotFound, depositIndex)
	}
	return st.Deposits[depositIndex], nil
}

// DepositList is a snapshot of an account's deposit arena as parallel
// sequences, cleared slots included.
type DepositList struct {
	Amounts    []int64 `json:"amounts"`
	StartTimes []int64 `json:"start_times"`
	Terms      []int   `json:"terms"`
	Rates      []int   `json:"rates"`
}

// ListDeposits returns the account's deposits in storage order.
func (e *Engine) ListDeposits(account string) DepositList {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.state(account)
	out := DepositList{
		Amounts:    make([]int64, 0, len(st.Deposits)),
		StartTimes: make([]int64, 0, len(st.Deposits)),
		Terms:      make([]int, 0, len(st.Deposits)),
		Rates:      make([]int, 0, len(st.Deposits)),
	}
	for _, d := range st.Deposits {
		out.Amounts = append(out.Amounts, d.Amount)
		out.StartTimes = append(out.StartTimes, d.StartTime)
		out.Terms = append(out.Terms, d.TermMonths)
		out.Rates = append(out.Rates, d.Rate)
	}
	return out
}

// Capacity is the result of a borrowing-capacity check.
type Capacity struct {
	MaxLoan         int64  `json:"max_loan"`
	RemainingMonths int    `json:"remaining_months"`
	Options         []int  `json:"options"`
	RateDescription string `json:"rate_description"`
}

// CheckBorrowingCapacity verifies the deposit can still back a loan, caches
// the admissible loan durations for the account, and returns the borrowing
// limit.
func (e *Engine) CheckBorrowingCapacity(account string, depositIndex int) (Capacity, events.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.state(account)
	if depositIndex < 0 || depositIndex >= len(st.Deposits) {
		return Capacity{}, nil, fmt.Errorf("%w: deposit %d", ErrNotFound, depositIndex)
	}
	d := st.Deposits[depositIndex]
	now := e.now()
	maturity := d.StartTime + int64(d.TermMonths)*loanMonthSeconds
	if d.Cleared() || maturity <= now {
		return Capacity{}, nil, fmt.Errorf("%w: deposit %d past term or withdrawn", ErrValidation, depositIndex)
	}

	remainingMonths := int((maturity - now) / loanMonthSeconds)
	options := make([]int, 0, remainingMonths)
	for m := 1; m <= remainingMonths; m++ {
		options = append(options, m)
	}
	st.Options = options

	result := Capacity{
		MaxLoan:         d.Amount * ltvNum / ltvDen,
		RemainingMonths: remainingMonths,
		Options:         options,
		RateDescription: rateDescription(),
	}
	return result, events.ValidityChecked{
		Account:         account,
		MaxLoan:         result.MaxLoan,
		RemainingMonths: result.RemainingMonths,
		Options:         result.Options,
		RateDescription: result.RateDescription,
	}, nil
}

// Borrow originates a loan against a deposit. Each deposit index backs at
// most one loan ever: the collateral lock is set on origination and never
// released, even after full repayment.
func (e *Engine) Borrow(account string, depositIndex int, loanAmount int64, durationMonths int) (int, models.Loan, events.Record, error) {
	if loanAmount <= 0 {
		return 0, models.Loan{}, nil, fmt.Errorf("%w: loan amount must be positive", ErrValidation)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.state(account)
	if depositIndex < 0 || depositIndex >= len(st.Deposits) {
		return 0, models.Loan{}, nil, fmt.Errorf("%w: deposit %d", ErrNotFound, depositIndex)
	}
	if st.Locks[depositIndex] {
		return 0, models.Loan{}, nil, fmt.Errorf("%w: deposit %d", ErrConflict, depositIndex)
	}
	d := st.Deposits[depositIndex]
	if d.Cleared() {
		return 0, models.Loan{}, nil, fmt.Errorf("%w: deposit %d already withdrawn", ErrNotFound, depositIndex)
	}

	maxLoan := d.Amount * ltvNum / ltvDen
	if loanAmount > maxLoan {
		return 0, models.Loan{}, nil, fmt.Errorf("%w: %d exceeds limit %d", ErrLimit, loanAmount, maxLoan)
	}
	if !containsInt(st.Options, durationMonths) {
		return 0, models.Loan{}, nil, fmt.Errorf("%w: duration %d months not among offered options", ErrValidation, durationMonths)
	}

	rate := d.Rate + loanAddOn(loanAmount, maxLoan)
	l := models.Loan{
		Principal:        loanAmount,
		Rate:             rate,
		StartTime:        e.now(),
		DurationMonths:   durationMonths,
		RemainingBalance: loanAmount + loanAmount*int64(rate)*int64(durationMonths)/1200,
	}
	l.TotalDue = l.RemainingBalance
	st.Loans = append(st.Loans, l)
	st.Locks[depositIndex] = true

	return len(st.Loans) - 1, l, events.LoanTaken{
		Account:        account,
		Principal:      l.Principal,
		Rate:           l.Rate,
		StartTime:      l.StartTime,
		DurationMonths: l.DurationMonths,
		TotalDue:       l.TotalDue,
	}, nil
}

// RepayLoan applies a partial or full repayment. The amount is capped by the
// remaining balance, not the original total due, so the balance can never go
// negative. The slot closes when the balance reaches zero.
func (e *Engine) RepayLoan(account string, loanIndex int, amount int64) (int64, events.Record, error) {
	if amount <= 0 {
		return 0, nil, fmt.Errorf("%w: repayment must be positive", ErrValidation)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.state(account)
	if loanIndex < 0 || loanIndex >= len(st.Loans) {
		return 0, nil, fmt.Errorf("%w: loan %d", ErrNotFound, loanIndex)
	}
	l := &st.Loans[loanIndex]
	if l.Closed() {
		return 0, nil, fmt.Errorf("%w: loan %d already repaid", ErrNotFound, loanIndex)
	}
	if amount > l.RemainingBalance {
		return 0, nil, fmt.Errorf("%w: repayment %d exceeds remaining balance %d", ErrValidation, amount, l.RemainingBalance)
	}

	l.RemainingBalance -= amount
	return l.RemainingBalance, events.LoanRepaid{
		Account:          account,
		Paid:             amount,
		RemainingBalance: l.RemainingBalance,
	}, nil
}

// LoanList is a snapshot of an account's loan arena as parallel sequences.
type LoanList struct {
	Principals []int64 `json:"principals"`
	Rates      []int   `json:"rates"`
	StartTimes []int64 `json:"start_times"`
	Durations  []int   `json:"durations"`
}

// ListLoans returns the account's loans in storage order.
func (e *Engine) ListLoans(account string) LoanList {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.state(account)
	out := LoanList{
		Principals: make([]int64, 0, len(st.Loans)),
		Rates:      make([]int, 0, len(st.Loans)),
		StartTimes: make([]int64, 0, len(st.Loans)),
		Durations:  make([]int, 0, len(st.Loans)),
	}
	for _, l := range st.Loans {
		out.Principals = append(out.Principals, l.Principal)
		out.Rates = append(out.Rates, l.Rate)
		out.StartTimes = append(out.StartTimes, l.StartTime)
		out.Durations = append(out.Durations, l.DurationMonths)
	}
	return out
}

// Snapshot exports a deep copy of all account state for persistence.
func (e *Engine) Snapshot() map[string]AccountState {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[string]AccountState, len(e.accounts))
	for acct, st := range e.accounts {
		out[acct] = copyState(st)
	}
	return out
}

// SnapshotAccount exports a deep copy of one account's state.
func (e *Engine) SnapshotAccount(account string) AccountState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyState(e.state(account))
}

// Restore replaces all account state, e.g. from the persistence journal at
// startup.
func (e *Engine) Restore(states map[string]AccountState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.accounts = make(map[string]*AccountState, len(states))
	for acct, st := range states {
		cp := copyState(&st)
		if cp.Locks == nil {
			cp.Locks = make(map[int]bool)
		}
		e.accounts[acct] = &cp
	}
}

func copyState(st *AccountState) AccountState {
	cp := AccountState{
		Deposits: append([]models.Deposit(nil), st.Deposits...),
		Loans:    append([]models.Loan(nil), st.Loans...),
		Options:  append([]int(nil), st.Options...),
		Locks:    make(map[int]bool, len(st.Locks)),
	}
	for k, v := range st.Locks {
		cp.Locks[k] = v
	}
	return cp
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
