// Package handler wires the HTTP surface: routing, auth middleware and the
// JSON handlers that translate between requests and the service layer.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/minibank/minibank-go/internal/infra/observability"
	"github.com/minibank/minibank-go/internal/service"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(ledger *service.LedgerService, authSvc *service.AuthService, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(ledger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Authentication
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			// Public routes
			r.Post("/register", authRegisterHandler(authSvc, logger))
			r.Post("/login", authLoginHandler(authSvc, logger))
			r.Post("/refresh", authRefreshHandler(authSvc, logger))

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(authSvc, logger))
				r.Get("/me", currentUserHandler(authSvc, logger))
				r.Post("/logout", authLogoutHandler(authSvc, logger))
				r.Put("/password", authChangePasswordHandler(authSvc, logger))
			})
		})

		// =============================================
		// Everything else requires a session token
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(authSvc, logger))

			// Current user
			r.Put("/users/me/profile", updateProfileHandler(authSvc, logger))

			// Accounts
			r.Post("/accounts", createAccountHandler(ledger, logger))
			r.Post("/accounts/business", createBusinessAccountHandler(ledger, logger))
			r.Get("/accounts", listAccountsHandler(ledger, logger))
			r.Get("/accounts/search", searchAccountsHandler(ledger, logger))
			r.Get("/accounts/{number}", getAccountHandler(ledger, logger))
			r.Get("/accounts/{number}/balance", getBalanceHandler(ledger, logger))
			r.Get("/accounts/{number}/transactions", accountTransactionsHandler(ledger, logger))

			// Money movement
			r.Post("/accounts/{number}/deposit", depositHandler(ledger, logger))
			r.Post("/accounts/{number}/withdraw", withdrawHandler(ledger, logger))
			r.Post("/transfers", transferHandler(ledger, logger))

			// Ledger-wide views
			r.Get("/transactions", allTransactionsHandler(ledger, logger))
			r.Get("/stats", statisticsHandler(ledger, logger))
			r.Get("/bank", bankInfoHandler(ledger, logger))

			// Account ownership
			r.Post("/users/{userId}/accounts/{number}", attachAccountHandler(ledger, logger))

			// Admin
			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireAdmin(logger))
				r.Get("/users", listUsersHandler(ledger, logger))
				r.Delete("/users/{userId}", deleteUserHandler(ledger, logger))
				r.Delete("/accounts/{number}", deleteAccountHandler(ledger, logger))
				r.Post("/interest/savings", interestRunHandler(ledger, logger))
				r.Post("/fees/business", feeRunHandler(ledger, logger))
			})
		})
	})

	return r
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(ledger *service.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := ledger.Statistics(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{
			"status":         "healthy",
			"total_accounts": stats.TotalAccounts,
			"total_users":    stats.TotalUsers,
			"checked_at":     time.Now().Format(time.RFC3339),
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
