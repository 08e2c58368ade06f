package ledger

const (
	// MinDepositAmount is the smallest accepted deposit principal.
	MinDepositAmount = 10_000_000

	// DefaultBaseRate is the early-withdrawal penalty rate applied when a
	// deposit is drawn before its term elapses. It can be refreshed from
	// the central-bank feed at runtime.
	DefaultBaseRate = 5

	// Amount bands of the rate table.
	bandLow  = 100_000_000
	bandMid  = 500_000_000

	// The reference encodes a deposit's required hold time as 60 seconds
	// per term month, and accrues interest per elapsed hour of holding.
	holdSecondsPerMonth = 60
	interestUnitSeconds = 3600

	// Loan maturity and remaining-term arithmetic use 30-day months.
	loanMonthSeconds = 30 * 86400

	// Loan-to-value cap: principal may not exceed 4/5 of the deposit.
	ltvNum = 4
	ltvDen = 5

	// Loan rate add-on in whole percent, on top of the deposit rate.
	addOnSmall = 20 // principal at most half of the borrowing limit
	addOnLarge = 30
)

// rateTable maps (amount band, term) to a locked-in rate in whole percent.
// Rows: <= 100M, <= 500M, > 500M. Columns: 2, 6, 9, 12 months.
var rateTable = [3][4]int{
	{10, 15, 18, 20},
	{15, 20, 25, 28},
	{20, 25, 30, 35},
}

// termColumn maps a supported term to its rate-table column.
var termColumn = map[int]int{2: 0, 6: 1, 9: 2, 12: 3}

// depositRate selects the locked-in rate for a new deposit.
// The term must already be validated.
func depositRate(amount int64, termMonths int) int {
	row := 2
	switch {
	case amount <= bandLow:
		row = 0
	case amount <= bandMid:
		row = 1
	}
	return rateTable[row][termColumn[termMonths]]
}

// loanAddOn returns the rate add-on for a loan of the given principal against
// the given borrowing limit.
func loanAddOn(principal, maxLoan int64) int {
	if principal*2 <= maxLoan {
		return addOnSmall
	}
	return addOnLarge
}

// holdInterest computes accrued interest: principal times rate percent per
// elapsed hour-equivalent unit, applied linearly over the holding time.
func holdInterest(amount int64, rate int, heldSeconds int64) int64 {
	return amount * int64(rate) * heldSeconds / (100 * interestUnitSeconds)
}

// MaturedUnclaimed reports whether an active deposit has passed its grace
// window (1.25x the hold time) without being withdrawn, meaning the next
// withdrawal will reinvest it instead of paying out.
func MaturedUnclaimed(amount, startTime int64, termMonths int, now int64) bool {
	if amount == 0 {
		return false
	}
	requiredHold := int64(termMonths) * holdSecondsPerMonth
	return (now-startTime)*4 >= requiredHold*5
}

// rateDescription is the human-readable add-on policy returned by the
// borrowing-capacity check.
func rateDescription() string {
	return "deposit rate plus 2% for loans up to half of the limit, plus 3% above"
}
