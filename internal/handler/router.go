package handler

import (
	"github.com/gorilla/mux"

	"github.com/minhtran-dev/savings-ledger/internal/config"
	"github.com/minhtran-dev/savings-ledger/internal/middleware"
)

// NewRouter wires all routes. Restricted ledger operations sit behind the
// operator guard; reads and borrowing are open to any authenticated account.
func NewRouter(h *Handler, cfg *config.Config) *mux.Router {
	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")

	// Authenticated routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/deposits", h.ListDeposits).Methods("GET")
	authRouter.HandleFunc("/deposits/{index}/start-time", h.ReportStartTime).Methods("GET")
	authRouter.HandleFunc("/deposits/{index}/maturity", h.ReportMaturity).Methods("GET")
	authRouter.HandleFunc("/loans", h.Borrow).Methods("POST")
	authRouter.HandleFunc("/loans", h.ListLoans).Methods("GET")

	// Operator-only routes
	opRouter := r.PathPrefix("/").Subrouter()
	opRouter.Use(middleware.AuthMiddleware(cfg), middleware.RequireOperator(cfg))
	opRouter.HandleFunc("/deposits", h.CreateDeposit).Methods("POST")
	opRouter.HandleFunc("/deposits/{index}/withdraw", h.Withdraw).Methods("POST")
	opRouter.HandleFunc("/deposits/{index}/capacity", h.CheckCapacity).Methods("POST")
	opRouter.HandleFunc("/loans/{index}/repay", h.RepayLoan).Methods("POST")

	return r
}
