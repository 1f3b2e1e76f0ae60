package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/minibank/minibank-go/internal/domain"
	"github.com/minibank/minibank-go/internal/service"
)

// ============================================================
// Admin — user management and ledger-wide runs
// ============================================================

func listUsersHandler(ledger *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/users")
		defer span.End()

		writeJSON(w, http.StatusOK, ledger.Users(ctx))
	}
}

func deleteUserHandler(ledger *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/admin/users/{userId}")
		defer span.End()

		userID := chi.URLParam(r, "userId")
		span.SetAttributes(attribute.String("user.id", userID))

		if err := ledger.DeleteUser(ctx, userID); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "user deleted", ID: userID})
	}
}

func deleteAccountHandler(ledger *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/admin/accounts/{number}")
		defer span.End()

		number := chi.URLParam(r, "number")
		span.SetAttributes(attribute.String("account.number", number))

		if err := ledger.DeleteAccount(ctx, number); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "account deactivated", ID: number})
	}
}

func attachAccountHandler(ledger *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/users/{userId}/accounts/{number}")
		defer span.End()

		userID := chi.URLParam(r, "userId")
		number := chi.URLParam(r, "number")
		span.SetAttributes(
			attribute.String("user.id", userID),
			attribute.String("account.number", number),
		)

		user, err := ledger.AttachAccount(ctx, userID, number)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}

func interestRunHandler(ledger *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/interest/savings")
		defer span.End()

		writeJSON(w, http.StatusOK, ledger.ApplyInterestToAllSavings(ctx))
	}
}

func feeRunHandler(ledger *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/fees/business")
		defer span.End()

		writeJSON(w, http.StatusOK, ledger.ChargeBusinessFees(ctx))
	}
}
