package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/minhtran-dev/savings-ledger/internal/calendar"
	"github.com/minhtran-dev/savings-ledger/internal/config"
	"github.com/minhtran-dev/savings-ledger/internal/events"
	"github.com/minhtran-dev/savings-ledger/internal/ledger"
	"github.com/minhtran-dev/savings-ledger/internal/models"
	"github.com/minhtran-dev/savings-ledger/internal/repository"
)

// RateSource supplies the early-withdrawal base rate from an external feed.
type RateSource interface {
	GetKeyRate() (float64, error)
}

// Notifier delivers account-holder emails. Implementations must be safe to
// skip: delivery failures never affect ledger state.
type Notifier interface {
	SendDepositNotice(to, username string, amount int64, termMonths, rate int) error
	SendWithdrawalNotice(to, username string, total, interest int64) error
	SendLoanNotice(to, username string, principal, totalDue int64, durationMonths int) error
	SendMaturityReminder(to, username string, amount int64, termMonths int) error
}

// Service handles business logic
type Service struct {
	repo     *repository.Repository
	engine   *ledger.Engine
	emitter  events.Emitter
	rates    RateSource
	notifier Notifier
	log      *logrus.Logger
	config   *config.Config
}

// NewService initializes a new service. rates and notifier may be nil.
func NewService(repo *repository.Repository, engine *ledger.Engine, emitter events.Emitter,
	rates RateSource, notifier Notifier, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{
		repo:     repo,
		engine:   engine,
		emitter:  emitter,
		rates:    rates,
		notifier: notifier,
		log:      log,
		config:   cfg,
	}
}

// Register creates a new account holder with a hashed password
func (s *Service) Register(username, email, password string) (*models.Account, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.repo.CreateAccount(account); err != nil {
		return nil, err
	}

	s.log.Infof("Account registered: %s", account.Email)
	return account, nil
}

// Login authenticates an account holder and returns a JWT whose subject is
// the account identity consumed by the ledger.
func (s *Service) Login(email, password string) (string, error) {
	account, err := s.repo.FindAccountByEmail(email)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", account.ID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("Account logged in: %s", account.Email)
	return tokenString, nil
}

// commit journals the account's committed state and delivers the event.
// The in-memory engine is authoritative: journal or delivery failures are
// logged and never unwind the transaction.
func (s *Service) commit(accountID string, rec events.Record) {
	if err := s.repo.SaveAccountState(accountID, s.engine.SnapshotAccount(accountID)); err != nil {
		s.log.Errorf("Failed to journal state for account %s: %v", accountID, err)
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		s.log.Errorf("Failed to encode %s event: %v", rec.Kind(), err)
	} else if err := s.repo.AppendEvent(uuid.NewString(), accountID, rec.Kind(), payload); err != nil {
		s.log.Errorf("Failed to append %s event: %v", rec.Kind(), err)
	}
	s.emitter.Emit(rec)
}

// Deposit opens a term deposit for the account.
func (s *Service) Deposit(accountID string, amount int64, termMonths int) (int, models.Deposit, error) {
	idx, d, rec, err := s.engine.Deposit(accountID, amount, termMonths)
	if err != nil {
		return 0, models.Deposit{}, err
	}
	s.commit(accountID, rec)
	s.log.Infof("Deposit %d opened for account %s: %d at %d%% for %d months", idx, accountID, d.Amount, d.Rate, d.TermMonths)

	if holder, err := s.holder(accountID); err == nil {
		s.notify(func(n Notifier) error {
			return n.SendDepositNotice(holder.Email, holder.Username, d.Amount, d.TermMonths, d.Rate)
		})
	}
	return idx, d, nil
}

// Withdraw settles or reinvests a deposit slot.
func (s *Service) Withdraw(accountID string, depositIndex int) (ledger.WithdrawResult, error) {
	res, rec, err := s.engine.Withdraw(accountID, depositIndex)
	if err != nil {
		return ledger.WithdrawResult{}, err
	}
	s.commit(accountID, rec)
	s.log.Infof("Withdrawal on deposit %d for account %s: %s", depositIndex, accountID, res.Message)

	if !res.Reinvested {
		if holder, err := s.holder(accountID); err == nil {
			s.notify(func(n Notifier) error {
				return n.SendWithdrawalNotice(holder.Email, holder.Username, res.Total, res.Interest)
			})
		}
	}
	return res, nil
}

// ReportStartTime returns a deposit's start date in local civil time.
func (s *Service) ReportStartTime(accountID string, depositIndex int) (calendar.Civil, error) {
	c, rec, err := s.engine.ReportStartTime(accountID, depositIndex)
	if err != nil {
		return calendar.Civil{}, err
	}
	s.emitter.Emit(rec)
	return c, nil
}

// ReportMaturity returns a deposit's maturity date in local civil time.
func (s *Service) ReportMaturity(accountID string, depositIndex int) (calendar.Civil, error) {
	c, rec, err := s.engine.ReportMaturity(accountID, depositIndex)
	if err != nil {
		return calendar.Civil{}, err
	}
	s.emitter.Emit(rec)
	return c, nil
}

// ListDeposits returns the account's deposit arena as parallel sequences.
func (s *Service) ListDeposits(accountID string) ledger.DepositList {
	return s.engine.ListDeposits(accountID)
}

// CheckBorrowingCapacity computes and caches the borrowing options for a
// deposit.
func (s *Service) CheckBorrowingCapacity(accountID string, depositIndex int) (ledger.Capacity, error) {
	c, rec, err := s.engine.CheckBorrowingCapacity(accountID, depositIndex)
	if err != nil {
		return ledger.Capacity{}, err
	}
	s.commit(accountID, rec)
	return c, nil
}

// Borrow originates a loan against a deposit.
func (s *Service) Borrow(accountID string, depositIndex int, loanAmount int64, durationMonths int) (int, models.Loan, error) {
	idx, l, rec, err := s.engine.Borrow(accountID, depositIndex, loanAmount, durationMonths)
	if err != nil {
		return 0, models.Loan{}, err
	}
	s.commit(accountID, rec)
	s.log.Infof("Loan %d originated for account %s: %d at %d%% over %d months", idx, accountID, l.Principal, l.Rate, l.DurationMonths)

	if holder, err := s.holder(accountID); err == nil {
		s.notify(func(n Notifier) error {
			return n.SendLoanNotice(holder.Email, holder.Username, l.Principal, l.TotalDue, l.DurationMonths)
		})
	}
	return idx, l, nil
}

// RepayLoan applies a repayment and returns the remaining balance.
func (s *Service) RepayLoan(accountID string, loanIndex int, amount int64) (int64, error) {
	remaining, rec, err := s.engine.RepayLoan(accountID, loanIndex, amount)
	if err != nil {
		return 0, err
	}
	s.commit(accountID, rec)
	s.log.Infof("Repayment of %d on loan %d for account %s, %d remaining", amount, loanIndex, accountID, remaining)
	return remaining, nil
}

// ListLoans returns the account's loan arena as parallel sequences.
func (s *Service) ListLoans(accountID string) ledger.LoanList {
	return s.engine.ListLoans(accountID)
}

// RefreshBaseRate pulls the early-withdrawal penalty rate from the external
// feed. Called at startup and on the cron schedule.
func (s *Service) RefreshBaseRate() error {
	if s.rates == nil {
		return nil
	}
	rate, err := s.rates.GetKeyRate()
	if err != nil {
		return fmt.Errorf("failed to refresh base rate: %w", err)
	}
	rounded := int(rate)
	if rounded <= 0 {
		return fmt.Errorf("refused non-positive base rate %d", rounded)
	}
	s.engine.SetBaseRate(rounded)
	s.log.Infof("Base rate refreshed to %d%%", rounded)
	return nil
}

// SweepMatured emails holders whose deposits passed the grace window without
// a withdrawal; the next withdrawal on those slots reinvests.
func (s *Service) SweepMatured() {
	now := time.Now().Unix()
	for accountID, st := range s.engine.Snapshot() {
		for idx, d := range st.Deposits {
			if !ledger.MaturedUnclaimed(d.Amount, d.StartTime, d.TermMonths, now) {
				continue
			}
			s.log.Infof("Deposit %d for account %s matured unclaimed", idx, accountID)
			if holder, err := s.holder(accountID); err == nil {
				s.notify(func(n Notifier) error {
					return n.SendMaturityReminder(holder.Email, holder.Username, d.Amount, d.TermMonths)
				})
			}
		}
	}
}

// holder resolves the account holder record behind a ledger account identity.
func (s *Service) holder(accountID string) (*models.Account, error) {
	id, err := strconv.ParseInt(accountID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid account ID: %w", err)
	}
	return s.repo.FindAccountByID(id)
}

func (s *Service) notify(send func(Notifier) error) {
	if s.notifier == nil {
		return
	}
	if err := send(s.notifier); err != nil {
		s.log.Errorf("Failed to send notification: %v", err)
	}
}
