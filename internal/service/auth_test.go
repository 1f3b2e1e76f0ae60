package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/minibank/minibank-go/internal/domain"
	"github.com/minibank/minibank-go/internal/infra/cache"
	"github.com/minibank/minibank-go/internal/infra/memstore"
	"github.com/minibank/minibank-go/internal/infra/observability"
	"github.com/minibank/minibank-go/internal/infra/resilience"
)

func newTestAuthWithLedger() (*AuthService, *LedgerService) {
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	store := memstore.New()
	ledger := NewLedgerService(
		store,
		cache.New[domain.Statistics](time.Minute),
		resilience.NewGuard("test-auth", 10),
		metrics,
		logger,
		domain.BankInfo{Name: "Minibank", Code: "MB001"},
	)
	return NewAuthService(store, store, ledger, "test-secret", 15*time.Minute, 24*time.Hour, metrics, logger), ledger
}

func newTestAuth() *AuthService {
	auth, _ := newTestAuthWithLedger()
	return auth
}

func register(t *testing.T, auth *AuthService, username, password string) *domain.RegisterResponse {
	t.Helper()
	resp, err := auth.Register(context.Background(), &domain.RegisterRequest{
		Username:  username,
		Password:  password,
		FirstName: "Test",
		LastName:  "User",
		Email:     username + "@example.com",
	})
	if err != nil {
		t.Fatalf("register %s failed: %v", username, err)
	}
	return resp
}

func TestRegisterValidation(t *testing.T) {
	auth := newTestAuth()
	ctx := context.Background()

	if _, err := auth.Register(ctx, &domain.RegisterRequest{Password: "secret123"}); err == nil {
		t.Error("expected missing username to fail")
	}
	if _, err := auth.Register(ctx, &domain.RegisterRequest{Username: "john", Password: "short"}); err == nil {
		t.Error("expected short password to fail")
	}
	if _, err := auth.Register(ctx, &domain.RegisterRequest{Username: "john", Password: "secret123", Role: "superuser"}); err == nil {
		t.Error("expected unknown role to fail")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	auth := newTestAuth()

	register(t, auth, "john", "secret123")

	_, err := auth.Register(context.Background(), &domain.RegisterRequest{
		Username: "john",
		Password: "another123",
	})
	if _, ok := err.(*domain.ErrDuplicate); !ok {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestRegisterRefreshesStatistics(t *testing.T) {
	auth, ledger := newTestAuthWithLedger()
	ctx := context.Background()

	// Prime the cached snapshot before anyone is registered.
	if stats := ledger.Statistics(ctx); stats.TotalUsers != 0 {
		t.Fatalf("expected 0 users before registration, got %d", stats.TotalUsers)
	}

	register(t, auth, "john", "secret123")

	// The snapshot is refreshed on registration, not left to expire.
	if stats := ledger.Statistics(ctx); stats.TotalUsers != 1 {
		t.Errorf("expected 1 user after registration, got %d", stats.TotalUsers)
	}
}

func TestLoginSuccessAndTokenValidation(t *testing.T) {
	auth := newTestAuth()
	reg := register(t, auth, "john", "secret123")

	resp, err := auth.Login(context.Background(), &domain.LoginRequest{Username: "john", Password: "secret123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.UserID != reg.UserID {
		t.Errorf("expected user %s, got %s", reg.UserID, resp.UserID)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}

	claims, err := auth.ValidateAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("token validation failed: %v", err)
	}
	if claims.Sub != reg.UserID || claims.Role != string(domain.RoleCustomer) {
		t.Errorf("unexpected claims: %+v", claims)
	}

	// A refresh token is not an access token.
	if _, err := auth.ValidateAccessToken(resp.RefreshToken); err == nil {
		t.Error("expected refresh token to fail access validation")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	auth := newTestAuth()
	register(t, auth, "john", "secret123")
	ctx := context.Background()

	_, err := auth.Login(ctx, &domain.LoginRequest{Username: "john", Password: "wrong"})
	if _, ok := err.(*domain.ErrUnauthorized); !ok {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	// Unknown username reads the same.
	_, err = auth.Login(ctx, &domain.LoginRequest{Username: "ghost", Password: "whatever"})
	if _, ok := err.(*domain.ErrUnauthorized); !ok {
		t.Fatalf("expected ErrUnauthorized for unknown user, got %v", err)
	}
}

func TestLoginLockoutAfterMaxAttempts(t *testing.T) {
	auth := newTestAuth()
	register(t, auth, "john", "secret123")
	ctx := context.Background()

	for i := 0; i < maxFailedAttempts; i++ {
		auth.Login(ctx, &domain.LoginRequest{Username: "john", Password: "wrong"})
	}

	// Even the right password is rejected while locked.
	_, err := auth.Login(ctx, &domain.LoginRequest{Username: "john", Password: "secret123"})
	if _, ok := err.(*domain.ErrUnauthorized); !ok {
		t.Fatalf("expected lockout, got %v", err)
	}
}

func TestLoginResetsFailedAttempts(t *testing.T) {
	auth := newTestAuth()
	register(t, auth, "john", "secret123")
	ctx := context.Background()

	for i := 0; i < maxFailedAttempts-1; i++ {
		auth.Login(ctx, &domain.LoginRequest{Username: "john", Password: "wrong"})
	}
	if _, err := auth.Login(ctx, &domain.LoginRequest{Username: "john", Password: "secret123"}); err != nil {
		t.Fatalf("login before lockout failed: %v", err)
	}

	// The counter was reset; one more bad attempt does not lock.
	auth.Login(ctx, &domain.LoginRequest{Username: "john", Password: "wrong"})
	if _, err := auth.Login(ctx, &domain.LoginRequest{Username: "john", Password: "secret123"}); err != nil {
		t.Errorf("login after reset failed: %v", err)
	}
}

func TestRefreshRotation(t *testing.T) {
	auth := newTestAuth()
	register(t, auth, "john", "secret123")
	ctx := context.Background()

	login, err := auth.Login(ctx, &domain.LoginRequest{Username: "john", Password: "secret123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	refreshed, err := auth.Refresh(ctx, &domain.RefreshRequest{RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Error("expected a rotated refresh token")
	}

	// The old token is dead after rotation.
	if _, err := auth.Refresh(ctx, &domain.RefreshRequest{RefreshToken: login.RefreshToken}); err == nil {
		t.Error("expected rotated-out token to be rejected")
	}
	// The new one works.
	if _, err := auth.Refresh(ctx, &domain.RefreshRequest{RefreshToken: refreshed.RefreshToken}); err != nil {
		t.Errorf("refresh with rotated token failed: %v", err)
	}
}

func TestLogoutRevokesRefreshTokens(t *testing.T) {
	auth := newTestAuth()
	reg := register(t, auth, "john", "secret123")
	ctx := context.Background()

	login, _ := auth.Login(ctx, &domain.LoginRequest{Username: "john", Password: "secret123"})

	if err := auth.Logout(ctx, reg.UserID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := auth.Refresh(ctx, &domain.RefreshRequest{RefreshToken: login.RefreshToken}); err == nil {
		t.Error("expected refresh after logout to fail")
	}
}

func TestChangePassword(t *testing.T) {
	auth := newTestAuth()
	reg := register(t, auth, "john", "secret123")
	ctx := context.Background()

	err := auth.ChangePassword(ctx, reg.UserID, &domain.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newsecret123",
	})
	if _, ok := err.(*domain.ErrUnauthorized); !ok {
		t.Fatalf("expected ErrUnauthorized for wrong current password, got %v", err)
	}

	if err := auth.ChangePassword(ctx, reg.UserID, &domain.ChangePasswordRequest{
		CurrentPassword: "secret123",
		NewPassword:     "newsecret123",
	}); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if _, err := auth.Login(ctx, &domain.LoginRequest{Username: "john", Password: "secret123"}); err == nil {
		t.Error("expected old password to stop working")
	}
	if _, err := auth.Login(ctx, &domain.LoginRequest{Username: "john", Password: "newsecret123"}); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	auth := newTestAuth()
	reg := register(t, auth, "john", "secret123")
	ctx := context.Background()

	user, err := auth.UpdateProfile(ctx, reg.UserID, &domain.UpdateProfileRequest{
		Email: "new@example.com",
		Phone: "555-0199",
	})
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if user.Email != "new@example.com" || user.Phone != "555-0199" {
		t.Errorf("profile not updated: %+v", user)
	}
	if user.FirstName != "Test" {
		t.Errorf("untouched field changed: %q", user.FirstName)
	}

	if _, err := auth.UpdateProfile(ctx, reg.UserID, &domain.UpdateProfileRequest{}); err == nil {
		t.Error("expected empty update to fail")
	}
}
