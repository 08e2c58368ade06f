package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/minhtran-dev/savings-ledger/internal/ledger"
	"github.com/minhtran-dev/savings-ledger/internal/models"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the ledger tables if they do not exist yet.
func (r *Repository) EnsureSchema() error {
	const ddl = `
		CREATE SCHEMA IF NOT EXISTS ledger;
		CREATE TABLE IF NOT EXISTS ledger.accounts (
			id            BIGSERIAL PRIMARY KEY,
			username      TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS ledger.deposits (
			account_id  TEXT NOT NULL,
			slot        INT NOT NULL,
			amount      BIGINT NOT NULL,
			start_time  BIGINT NOT NULL,
			term_months INT NOT NULL,
			rate        INT NOT NULL,
			PRIMARY KEY (account_id, slot)
		);
		CREATE TABLE IF NOT EXISTS ledger.loans (
			account_id        TEXT NOT NULL,
			slot              INT NOT NULL,
			principal         BIGINT NOT NULL,
			rate              INT NOT NULL,
			start_time        BIGINT NOT NULL,
			duration_months   INT NOT NULL,
			remaining_balance BIGINT NOT NULL,
			total_due         BIGINT NOT NULL,
			PRIMARY KEY (account_id, slot)
		);
		CREATE TABLE IF NOT EXISTS ledger.collateral_locks (
			account_id   TEXT NOT NULL,
			deposit_slot INT NOT NULL,
			PRIMARY KEY (account_id, deposit_slot)
		);
		CREATE TABLE IF NOT EXISTS ledger.loan_options (
			account_id TEXT PRIMARY KEY,
			months     JSONB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS ledger.events (
			id         BIGSERIAL PRIMARY KEY,
			event_id   TEXT NOT NULL,
			account_id TEXT NOT NULL,
			kind       TEXT NOT NULL,
			payload    JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`
	if _, err := r.db.Exec(ddl); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// CreateAccount creates a new account holder in the database
func (r *Repository) CreateAccount(account *models.Account) error {
	query := `
		INSERT INTO ledger.accounts (username, email, password_hash, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, account.Username, account.Email, account.PasswordHash).
		Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// FindAccountByEmail retrieves an account holder by email
func (r *Repository) FindAccountByEmail(email string) (*models.Account, error) {
	account := &models.Account{}
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM ledger.accounts
		WHERE email = $1`
	err := r.db.QueryRow(query, email).
		Scan(&account.ID, &account.Username, &account.Email, &account.PasswordHash, &account.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("account not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}

// FindAccountByID retrieves an account holder by its numeric ID
func (r *Repository) FindAccountByID(id int64) (*models.Account, error) {
	account := &models.Account{}
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM ledger.accounts
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&account.ID, &account.Username, &account.Email, &account.PasswordHash, &account.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("account not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}

// SaveAccountState journals one account's full ledger state inside a single
// database transaction: the previous rows are replaced wholesale so the
// journal always mirrors the committed in-memory state.
func (r *Repository) SaveAccountState(accountID string, st ledger.AccountState) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"ledger.deposits", "ledger.loans", "ledger.collateral_locks", "ledger.loan_options"} {
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE account_id = $1", table), accountID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for slot, d := range st.Deposits {
		_, err := tx.Exec(`
			INSERT INTO ledger.deposits (account_id, slot, amount, start_time, term_months, rate)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			accountID, slot, d.Amount, d.StartTime, d.TermMonths, d.Rate)
		if err != nil {
			return fmt.Errorf("failed to save deposit %d: %w", slot, err)
		}
	}
	for slot, l := range st.Loans {
		_, err := tx.Exec(`
			INSERT INTO ledger.loans (account_id, slot, principal, rate, start_time, duration_months, remaining_balance, total_due)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			accountID, slot, l.Principal, l.Rate, l.StartTime, l.DurationMonths, l.RemainingBalance, l.TotalDue)
		if err != nil {
			return fmt.Errorf("failed to save loan %d: %w", slot, err)
		}
	}
	for slot, locked := range st.Locks {
		if !locked {
			continue
		}
		_, err := tx.Exec(`
			INSERT INTO ledger.collateral_locks (account_id, deposit_slot)
			VALUES ($1, $2)`, accountID, slot)
		if err != nil {
			return fmt.Errorf("failed to save lock %d: %w", slot, err)
		}
	}
	if len(st.Options) > 0 {
		months, err := json.Marshal(st.Options)
		if err != nil {
			return fmt.Errorf("failed to encode loan options: %w", err)
		}
		if _, err := tx.Exec(`
			INSERT INTO ledger.loan_options (account_id, months)
			VALUES ($1, $2)`, accountID, months); err != nil {
			return fmt.Errorf("failed to save loan options: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit account state: %w", err)
	}
	return nil
}

// LoadAccountStates reads the full journal back, keyed by account identity.
func (r *Repository) LoadAccountStates() (map[string]ledger.AccountState, error) {
	states := make(map[string]ledger.AccountState)
	get := func(id string) ledger.AccountState {
		st, ok := states[id]
		if !ok {
			st = ledger.AccountState{Locks: make(map[int]bool)}
		}
		return st
	}

	rows, err := r.db.Query(`
		SELECT account_id, slot, amount, start_time, term_months, rate
		FROM ledger.deposits ORDER BY account_id, slot`)
	if err != nil {
		return nil, fmt.Errorf("failed to load deposits: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var slot int
		var d models.Deposit
		if err := rows.Scan(&id, &slot, &d.Amount, &d.StartTime, &d.TermMonths, &d.Rate); err != nil {
			return nil, fmt.Errorf("failed to scan deposit: %w", err)
		}
		st := get(id)
		st.Deposits = append(st.Deposits, d)
		states[id] = st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deposits: %w", err)
	}

	loanRows, err := r.db.Query(`
		SELECT account_id, slot, principal, rate, start_time, duration_months, remaining_balance, total_due
		FROM ledger.loans ORDER BY account_id, slot`)
	if err != nil {
		return nil, fmt.Errorf("failed to load loans: %w", err)
	}
	defer loanRows.Close()
	for loanRows.Next() {
		var id string
		var slot int
		var l models.Loan
		if err := loanRows.Scan(&id, &slot, &l.Principal, &l.Rate, &l.StartTime, &l.DurationMonths, &l.RemainingBalance, &l.TotalDue); err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		st := get(id)
		st.Loans = append(st.Loans, l)
		states[id] = st
	}
	if err := loanRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate loans: %w", err)
	}

	lockRows, err := r.db.Query(`SELECT account_id, deposit_slot FROM ledger.collateral_locks`)
	if err != nil {
		return nil, fmt.Errorf("failed to load collateral locks: %w", err)
	}
	defer lockRows.Close()
	for lockRows.Next() {
		var id string
		var slot int
		if err := lockRows.Scan(&id, &slot); err != nil {
			return nil, fmt.Errorf("failed to scan lock: %w", err)
		}
		st := get(id)
		st.Locks[slot] = true
		states[id] = st
	}
	if err := lockRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate locks: %w", err)
	}

	optRows, err := r.db.Query(`SELECT account_id, months FROM ledger.loan_options`)
	if err != nil {
		return nil, fmt.Errorf("failed to load loan options: %w", err)
	}
	defer optRows.Close()
	for optRows.Next() {
		var id string
		var raw []byte
		if err := optRows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan loan options: %w", err)
		}
		st := get(id)
		if err := json.Unmarshal(raw, &st.Options); err != nil {
			return nil, fmt.Errorf("failed to decode loan options: %w", err)
		}
		states[id] = st
	}
	if err := optRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate loan options: %w", err)
	}

	return states, nil
}

// AppendEvent stores an emitted event record in the append-only journal.
func (r *Repository) AppendEvent(eventID, accountID, kind string, payload []byte) error {
	query := `
		INSERT INTO ledger.events (event_id, account_id, kind, payload)
		VALUES ($1, $2, $3, $4)`
	if _, err := r.db.Exec(query, eventID, accountID, kind, payload); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}
