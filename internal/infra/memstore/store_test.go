package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/minibank/minibank-go/internal/domain"
)

func TestAddUserRejectsDuplicateUsername(t *testing.T) {
	s := New()
	ctx := context.Background()

	first := domain.NewUser("john", "John", "Doe", "john@example.com", "", domain.RoleCustomer)
	if err := s.AddUser(ctx, first); err != nil {
		t.Fatalf("first AddUser failed: %v", err)
	}

	second := domain.NewUser("john", "Johnny", "Dole", "j2@example.com", "", domain.RoleCustomer)
	err := s.AddUser(ctx, second)
	if _, ok := err.(*domain.ErrDuplicate); !ok {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	if len(s.Users(ctx)) != 1 {
		t.Errorf("expected 1 user, got %d", len(s.Users(ctx)))
	}
	got, err := s.UserByUsername(ctx, "john")
	if err != nil || got.ID != first.ID {
		t.Errorf("rejected registration must not replace the original user")
	}
}

func TestUsersRegistrationOrder(t *testing.T) {
	s := New()
	ctx := context.Background()

	names := []string{"alice", "bob", "carol"}
	for _, n := range names {
		u := domain.NewUser(n, n, "Test", n+"@example.com", "", domain.RoleCustomer)
		if err := s.AddUser(ctx, u); err != nil {
			t.Fatalf("AddUser(%s) failed: %v", n, err)
		}
	}

	users := s.Users(ctx)
	if len(users) != len(names) {
		t.Fatalf("expected %d users, got %d", len(names), len(users))
	}
	for i, n := range names {
		if users[i].Username != n {
			t.Errorf("position %d: expected %s, got %s", i, n, users[i].Username)
		}
	}
}

func TestRemoveUserPurgesRefreshTokens(t *testing.T) {
	s := New()
	ctx := context.Background()

	u := domain.NewUser("john", "John", "Doe", "john@example.com", "", domain.RoleCustomer)
	if err := s.AddUser(ctx, u); err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}
	if err := s.StoreRefreshToken(ctx, u.ID, "hash-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("StoreRefreshToken failed: %v", err)
	}

	if err := s.RemoveUser(ctx, u.ID); err != nil {
		t.Fatalf("RemoveUser failed: %v", err)
	}

	if _, err := s.UserByID(ctx, u.ID); err == nil {
		t.Error("expected lookup of removed user to fail")
	}
	if _, err := s.UserByUsername(ctx, "john"); err == nil {
		t.Error("expected username lookup of removed user to fail")
	}
	if _, err := s.GetRefreshToken(ctx, "hash-1"); err == nil {
		t.Error("expected removed user's refresh token to be gone")
	}

	// The username is free again.
	again := domain.NewUser("john", "John", "Doe", "john@example.com", "", domain.RoleCustomer)
	if err := s.AddUser(ctx, again); err != nil {
		t.Errorf("re-registering freed username failed: %v", err)
	}
}

func TestRemoveUserNotFound(t *testing.T) {
	s := New()
	err := s.RemoveUser(context.Background(), "USR000000000")
	if _, ok := err.(*domain.ErrNotFound); !ok {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddAccountRegeneratesOnCollision(t *testing.T) {
	s := New()
	ctx := context.Background()

	a := domain.NewSavingsAccount("John Doe", decimal.NewFromInt(100))
	if err := s.AddAccount(ctx, a); err != nil {
		t.Fatalf("AddAccount failed: %v", err)
	}

	// Force a collision by reusing the same number.
	b := domain.NewSavingsAccount("Jane Doe", decimal.NewFromInt(200))
	b.Number = a.Number
	if err := s.AddAccount(ctx, b); err != nil {
		t.Fatalf("AddAccount with colliding number failed: %v", err)
	}
	if b.Number == a.Number {
		t.Error("expected the colliding number to be regenerated")
	}
	if len(s.Accounts(ctx)) != 2 {
		t.Errorf("expected 2 accounts, got %d", len(s.Accounts(ctx)))
	}
}

func TestAccountsByHolder(t *testing.T) {
	s := New()
	ctx := context.Background()

	savings := domain.NewSavingsAccount("John Doe", decimal.NewFromInt(100))
	checking := domain.NewCheckingAccount("John Doe", decimal.NewFromInt(200))
	other := domain.NewSavingsAccount("Jane Doe", decimal.NewFromInt(300))
	for _, a := range []*domain.Account{savings, checking, other} {
		if err := s.AddAccount(ctx, a); err != nil {
			t.Fatalf("AddAccount failed: %v", err)
		}
	}

	got := s.AccountsByHolder(ctx, "John Doe")
	if len(got) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(got))
	}
	if got[0].Number != savings.Number || got[1].Number != checking.Number {
		t.Error("expected registration order within the holder's accounts")
	}
	if len(s.AccountsByHolder(ctx, "Nobody")) != 0 {
		t.Error("expected no accounts for unknown holder")
	}
}

func TestRefreshTokenLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.StoreRefreshToken(ctx, "USR1", "hash-a", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("StoreRefreshToken failed: %v", err)
	}

	tok, err := s.GetRefreshToken(ctx, "hash-a")
	if err != nil {
		t.Fatalf("GetRefreshToken failed: %v", err)
	}
	if tok.UserID != "USR1" {
		t.Errorf("expected user USR1, got %s", tok.UserID)
	}

	if err := s.RevokeRefreshToken(ctx, "hash-a"); err != nil {
		t.Fatalf("RevokeRefreshToken failed: %v", err)
	}
	if _, err := s.GetRefreshToken(ctx, "hash-a"); err == nil {
		t.Error("expected revoked token to be rejected")
	}
}
