package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/minhtran-dev/savings-ledger/internal/calendar"
	"github.com/minhtran-dev/savings-ledger/internal/ledger"
	"github.com/minhtran-dev/savings-ledger/internal/middleware"
	"github.com/minhtran-dev/savings-ledger/internal/service"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register handles account registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	account, err := h.svc.Register(req.Username, req.Email, req.Password)
	if err != nil {
		h.log.Errorf("Registration failed: %v", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

// Login handles authentication and returns a JWT
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// CreateDeposit opens a term deposit for the caller
func (h *Handler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req struct {
		Amount     int64 `json:"amount"`
		TermMonths int   `json:"term_months"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	idx, d, err := h.svc.Deposit(account, req.Amount, req.TermMonths)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"index": idx, "deposit": d})
}

// Withdraw settles or reinvests one of the caller's deposit slots
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	account, idx, ok := h.accountAndIndex(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Withdraw(account, idx)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListDeposits returns the caller's deposits as parallel sequences
func (h *Handler) ListDeposits(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	writeJSON(w, http.StatusOK, h.svc.ListDeposits(account))
}

// ReportStartTime returns a deposit's start date in local civil time
func (h *Handler) ReportStartTime(w http.ResponseWriter, r *http.Request) {
	account, idx, ok := h.accountAndIndex(w, r)
	if !ok {
		return
	}
	c, err := h.svc.ReportStartTime(account, idx)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ReportMaturity returns a deposit's maturity date in local civil time
func (h *Handler) ReportMaturity(w http.ResponseWriter, r *http.Request) {
	account, idx, ok := h.accountAndIndex(w, r)
	if !ok {
		return
	}
	c, err := h.svc.ReportMaturity(account, idx)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CheckCapacity verifies a deposit can back a loan and caches the duration
// options consumed by a subsequent borrow
func (h *Handler) CheckCapacity(w http.ResponseWriter, r *http.Request) {
	account, idx, ok := h.accountAndIndex(w, r)
	if !ok {
		return
	}
	c, err := h.svc.CheckBorrowingCapacity(account, idx)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Borrow originates a loan against one of the caller's deposits
func (h *Handler) Borrow(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req struct {
		DepositIndex   int   `json:"deposit_index"`
		Amount         int64 `json:"amount"`
		DurationMonths int   `json:"duration_months"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	idx, l, err := h.svc.Borrow(account, req.DepositIndex, req.Amount, req.DurationMonths)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"index": idx, "loan": l})
}

// RepayLoan applies a repayment to one of the caller's loans
func (h *Handler) RepayLoan(w http.ResponseWriter, r *http.Request) {
	account, idx, ok := h.accountAndIndex(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	remaining, err := h.svc.RepayLoan(account, idx, req.Amount)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"remaining_balance": remaining})
}

// ListLoans returns the caller's loans as parallel sequences
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	writeJSON(w, http.StatusOK, h.svc.ListLoans(account))
}

// accountAndIndex extracts the caller identity and the {index} path variable.
func (h *Handler) accountAndIndex(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	account, ok := middleware.AccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return "", 0, false
	}
	idx, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid index")
		return "", 0, false
	}
	return account, idx, true
}

// writeDomainError maps ledger and calendar failures to HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrConflict), errors.Is(err, ledger.ErrBlocked):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrLimit):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, calendar.ErrDomain), errors.Is(err, calendar.ErrRange):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Errorf("Unexpected error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
