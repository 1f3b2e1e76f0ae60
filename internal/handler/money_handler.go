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
// Money movement — deposits, withdrawals, transfers
// ============================================================

func depositHandler(ledger *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/accounts/{number}/deposit")
		defer span.End()

		number := chi.URLParam(r, "number")
		span.SetAttributes(attribute.String("account.number", number))

		var req domain.AmountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		balance, err := ledger.Deposit(ctx, number, req.Amount)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, domain.BalanceResponse{
			AccountNumber: number,
			Balance:       balance,
		})
	}
}

func withdrawHandler(ledger *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/accounts/{number}/withdraw")
		defer span.End()

		number := chi.URLParam(r, "number")
		span.SetAttributes(attribute.String("account.number", number))

		var req domain.AmountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		balance, err := ledger.Withdraw(ctx, number, req.Amount)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, domain.BalanceResponse{
			AccountNumber: number,
			Balance:       balance,
		})
	}
}

func transferHandler(ledger *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transfers")
		defer span.End()

		var req domain.TransferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		span.SetAttributes(
			attribute.String("account.from", req.FromAccount),
			attribute.String("account.to", req.ToAccount),
		)

		resp, err := ledger.Transfer(ctx, req.FromAccount, req.ToAccount, req.Amount)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
