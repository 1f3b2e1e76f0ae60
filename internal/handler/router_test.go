package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/minibank/minibank-go/internal/domain"
	"github.com/minibank/minibank-go/internal/handler"
	"github.com/minibank/minibank-go/internal/infra/cache"
	"github.com/minibank/minibank-go/internal/infra/memstore"
	"github.com/minibank/minibank-go/internal/infra/observability"
	"github.com/minibank/minibank-go/internal/infra/resilience"
	"github.com/minibank/minibank-go/internal/service"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestRouter() http.Handler {
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	store := memstore.New()

	ledger := service.NewLedgerService(
		store,
		cache.New[domain.Statistics](time.Minute),
		resilience.NewGuard("test-router", 10),
		metrics,
		logger,
		domain.BankInfo{Name: "Minibank", Code: "MB001"},
	)
	authSvc := service.NewAuthService(store, store, ledger, "test-secret", 15*time.Minute, 24*time.Hour, metrics, logger)

	return handler.NewRouter(ledger, authSvc, metrics, logger)
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func loginAs(t *testing.T, router http.Handler, username, role string) *domain.LoginResponse {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/v1/auth/register", "", domain.RegisterRequest{
		Username:  username,
		Password:  "secret123",
		FirstName: "Test",
		LastName:  "User",
		Email:     username + "@example.com",
		Role:      role,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/auth/login", "", domain.LoginRequest{
		Username: username,
		Password: "secret123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp domain.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return &resp
}

func TestHealthz(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/v1/accounts", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/accounts", "not-a-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with garbage token, got %d", rec.Code)
	}
}

func TestAccountLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter()
	session := loginAs(t, router, "john", "")

	rec := doJSON(t, router, http.MethodPost, "/v1/accounts", session.AccessToken, domain.CreateAccountRequest{
		HolderName:     "John Doe",
		Type:           "savings",
		InitialBalance: dec("1000"),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var account domain.Account
	if err := json.Unmarshal(rec.Body.Bytes(), &account); err != nil {
		t.Fatalf("decode account: %v", err)
	}

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/v1/accounts/%s/deposit", account.Number), session.AccessToken, domain.AmountRequest{Amount: dec("500")})
	if rec.Code != http.StatusOK {
		t.Fatalf("deposit: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var balance domain.BalanceResponse
	json.Unmarshal(rec.Body.Bytes(), &balance)
	if !balance.Balance.Equal(dec("1500")) {
		t.Errorf("expected balance 1500, got %s", balance.Balance)
	}

	// Overdrawing a savings account is unprocessable, not a server error.
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/v1/accounts/%s/withdraw", account.Number), session.AccessToken, domain.AmountRequest{Amount: dec("9999")})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/v1/accounts/%s/transactions", account.Number), session.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("transactions: expected 200, got %d", rec.Code)
	}
	var txs []domain.Transaction
	json.Unmarshal(rec.Body.Bytes(), &txs)
	if len(txs) != 1 {
		t.Errorf("expected 1 transaction, got %d", len(txs))
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/accounts/S000000000", session.AccessToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown account, got %d", rec.Code)
	}
}

func TestSearchAccountsByHolder(t *testing.T) {
	router := newTestRouter()
	session := loginAs(t, router, "john", "")

	for _, holder := range []string{"John Doe", "John Doe", "Jane Roe"} {
		rec := doJSON(t, router, http.MethodPost, "/v1/accounts", session.AccessToken, domain.CreateAccountRequest{
			HolderName:     holder,
			Type:           "checking",
			InitialBalance: dec("100"),
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create for %s: expected 201, got %d: %s", holder, rec.Code, rec.Body)
		}
	}

	rec := doJSON(t, router, http.MethodGet, "/v1/accounts/search?holder=John+Doe", session.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var accounts []domain.Account
	json.Unmarshal(rec.Body.Bytes(), &accounts)
	if len(accounts) != 2 {
		t.Errorf("expected 2 accounts for John Doe, got %d", len(accounts))
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/accounts/search", session.AccessToken, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without holder parameter, got %d", rec.Code)
	}
}

func TestCurrentUserEndpoint(t *testing.T) {
	router := newTestRouter()
	session := loginAs(t, router, "john", "")

	rec := doJSON(t, router, http.MethodGet, "/v1/auth/me", session.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var user domain.User
	json.Unmarshal(rec.Body.Bytes(), &user)
	if user.Username != "john" {
		t.Errorf("expected username john, got %q", user.Username)
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	router := newTestRouter()
	customer := loginAs(t, router, "john", "")
	admin := loginAs(t, router, "boss", "admin")

	rec := doJSON(t, router, http.MethodGet, "/v1/admin/users", customer.AccessToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for customer, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/admin/users", admin.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for admin, got %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/admin/interest/savings", admin.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("interest run: expected 200, got %d: %s", rec.Code, rec.Body)
	}
}

func TestBankAndStatsEndpoints(t *testing.T) {
	router := newTestRouter()
	session := loginAs(t, router, "john", "")

	rec := doJSON(t, router, http.MethodGet, "/v1/bank", session.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("bank: expected 200, got %d", rec.Code)
	}
	var bank domain.BankInfo
	json.Unmarshal(rec.Body.Bytes(), &bank)
	if bank.Name != "Minibank" || bank.Code != "MB001" {
		t.Errorf("unexpected bank info: %+v", bank)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/stats", session.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("stats: expected 200, got %d", rec.Code)
	}
}
