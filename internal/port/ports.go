// Package port defines the interfaces (ports) between the service layer and
// its collaborators. The ledger core itself is in-memory; durable storage is
// an external responsibility and would plug in behind the same interfaces.
package port

import (
	"context"
	"time"

	"github.com/minibank/minibank-go/internal/domain"
)

// LedgerStore is the registry of users and accounts. Lookups are by unique
// key or exact attribute match; listing order is registration order.
//
// The store guards its own maps, but it does not serialise business
// operations — the ledger service holds the mutation lock (one mutating
// operation in flight at a time).
type LedgerStore interface {
	// Users
	AddUser(ctx context.Context, u *domain.User) error
	UserByID(ctx context.Context, id string) (*domain.User, error)
	UserByUsername(ctx context.Context, username string) (*domain.User, error)
	Users(ctx context.Context) []*domain.User
	RemoveUser(ctx context.Context, id string) error

	// Accounts
	AddAccount(ctx context.Context, a *domain.Account) error
	AccountByNumber(ctx context.Context, number string) (*domain.Account, error)
	Accounts(ctx context.Context) []*domain.Account
	AccountsByHolder(ctx context.Context, holderName string) []*domain.Account
}

// AuthStore persists refresh-token state for the session system.
type AuthStore interface {
	StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
}

// Cache provides generic caching with TTL. The ledger uses it for the
// derived-statistics snapshot.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
