package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/minibank/minibank-go/internal/domain"
	"github.com/minibank/minibank-go/internal/service"
)

// ============================================================
// Accounts — /v1/accounts
// ============================================================

func createAccountHandler(ledger *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/accounts")
		defer span.End()

		var req domain.CreateAccountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		account, err := ledger.CreateAccount(ctx, req.HolderName, req.Type, req.InitialBalance)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, account)
	}
}

func createBusinessAccountHandler(ledger *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/accounts/business")
		defer span.End()

		var req domain.CreateBusinessAccountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		account, err := ledger.CreateBusinessAccount(ctx, req.HolderName, req.BusinessName, req.TaxID, req.InitialBalance)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, account)
	}
}

func listAccountsHandler(ledger *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/accounts")
		defer span.End()

		writeJSON(w, http.StatusOK, ledger.ListAccounts(ctx))
	}
}

func searchAccountsHandler(ledger *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/accounts/search")
		defer span.End()

		holder := r.URL.Query().Get("holder")
		if holder == "" {
			writeError(w, http.StatusBadRequest, "holder query parameter is required")
			return
		}

		// Exact match; an empty result is a 200 with an empty list.
		writeJSON(w, http.StatusOK, ledger.FindAccountsByHolder(ctx, holder))
	}
}

func getAccountHandler(ledger *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/accounts/{number}")
		defer span.End()

		number := chi.URLParam(r, "number")
		span.SetAttributes(attribute.String("account.number", number))

		account, err := ledger.GetAccount(ctx, number)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, account)
	}
}

func getBalanceHandler(ledger *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/accounts/{number}/balance")
		defer span.End()

		number := chi.URLParam(r, "number")
		account, err := ledger.GetAccount(ctx, number)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, domain.BalanceResponse{
			AccountNumber: account.Number,
			Balance:       account.Balance,
		})
	}
}

func accountTransactionsHandler(ledger *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/accounts/{number}/transactions")
		defer span.End()

		number := chi.URLParam(r, "number")
		transactions, err := ledger.TransactionHistory(ctx, number)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, transactions)
	}
}

// ============================================================
// Ledger-wide views
// ============================================================

func allTransactionsHandler(ledger *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/transactions")
		defer span.End()

		writeJSON(w, http.StatusOK, ledger.AllTransactions(ctx))
	}
}

func statisticsHandler(ledger *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/stats")
		defer span.End()

		writeJSON(w, http.StatusOK, ledger.Statistics(ctx))
	}
}

func bankInfoHandler(ledger *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/bank")
		defer span.End()

		writeJSON(w, http.StatusOK, ledger.Bank())
	}
}
