package repository

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhtran-dev/savings-ledger/internal/ledger"
	"github.com/minhtran-dev/savings-ledger/internal/models"
)

func TestCreateAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO ledger.accounts")).
		WithArgs("alice", "alice@example.com", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), "2026-01-02"))

	repo := NewRepository(db)
	account := &models.Account{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.CreateAccount(account))
	assert.Equal(t, int64(7), account.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAccountByEmailNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, username, email").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at"}))

	repo := NewRepository(db)
	_, err = repo.FindAccountByEmail("nobody@example.com")
	assert.EqualError(t, err, "account not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveAccountStateReplacesRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	st := ledger.AccountState{
		Deposits: []models.Deposit{{Amount: 100_000_000, StartTime: 1000, TermMonths: 6, Rate: 15}},
		Loans:    []models.Loan{{Principal: 40_000_000, Rate: 35, StartTime: 1100, DurationMonths: 2, RemainingBalance: 42_000_000, TotalDue: 42_000_000}},
		Locks:    map[int]bool{0: true},
		Options:  []int{1, 2},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM ledger.deposits").WithArgs("7").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM ledger.loans").WithArgs("7").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM ledger.collateral_locks").WithArgs("7").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM ledger.loan_options").WithArgs("7").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ledger.deposits")).
		WithArgs("7", 0, int64(100_000_000), int64(1000), 6, 15).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ledger.loans")).
		WithArgs("7", 0, int64(40_000_000), 35, int64(1100), 2, int64(42_000_000), int64(42_000_000)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ledger.collateral_locks")).
		WithArgs("7", 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ledger.loan_options")).
		WithArgs("7", []byte("[1,2]")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewRepository(db)
	require.NoError(t, repo.SaveAccountState("7", st))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadAccountStates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT account_id, slot, amount").
		WillReturnRows(sqlmock.NewRows([]string{"account_id", "slot", "amount", "start_time", "term_months", "rate"}).
			AddRow("7", 0, int64(100_000_000), int64(1000), 6, 15).
			AddRow("7", 1, int64(0), int64(900), 2, 10))
	mock.ExpectQuery("SELECT account_id, slot, principal").
		WillReturnRows(sqlmock.NewRows([]string{"account_id", "slot", "principal", "rate", "start_time", "duration_months", "remaining_balance", "total_due"}).
			AddRow("7", 0, int64(40_000_000), 35, int64(1100), 2, int64(2_000_000), int64(42_000_000)))
	mock.ExpectQuery("SELECT account_id, deposit_slot").
		WillReturnRows(sqlmock.NewRows([]string{"account_id", "deposit_slot"}).AddRow("7", 0))
	mock.ExpectQuery("SELECT account_id, months").
		WillReturnRows(sqlmock.NewRows([]string{"account_id", "months"}).AddRow("7", []byte("[1,2]")))

	repo := NewRepository(db)
	states, err := repo.LoadAccountStates()
	require.NoError(t, err)
	require.Contains(t, states, "7")

	st := states["7"]
	require.Len(t, st.Deposits, 2)
	assert.Equal(t, int64(100_000_000), st.Deposits[0].Amount)
	assert.True(t, st.Deposits[1].Cleared())
	require.Len(t, st.Loans, 1)
	assert.Equal(t, int64(2_000_000), st.Loans[0].RemainingBalance)
	assert.True(t, st.Locks[0])
	assert.Equal(t, []int{1, 2}, st.Options)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ledger.events")).
		WithArgs("evt-1", "7", "deposited", []byte(`{"amount":1}`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewRepository(db)
	require.NoError(t, repo.AppendEvent("evt-1", "7", "deposited", []byte(`{"amount":1}`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
