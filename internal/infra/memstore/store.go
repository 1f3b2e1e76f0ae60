// Package memstore is the in-memory registry backing the ledger core.
// Persistence to disk is deliberately out of scope; a durable implementation
// would satisfy the same port interfaces.
package memstore

import (
	"context"
	"sync"

	"github.com/minibank/minibank-go/internal/domain"
)

// numberRetries bounds the regeneration loop when a freshly generated
// account number collides with an existing one.
const numberRetries = 10

// Store holds users, accounts and refresh tokens in maps, plus
// registration-order slices so listings are deterministic.
type Store struct {
	mu sync.RWMutex

	usersByID       map[string]*domain.User
	usersByUsername map[string]*domain.User
	userOrder       []string

	accountsByNumber map[string]*domain.Account
	accountOrder     []string

	refreshTokens map[string]*domain.RefreshToken // keyed by token hash
}

// New creates an empty store.
func New() *Store {
	return &Store{
		usersByID:        make(map[string]*domain.User),
		usersByUsername:  make(map[string]*domain.User),
		accountsByNumber: make(map[string]*domain.Account),
		refreshTokens:    make(map[string]*domain.RefreshToken),
	}
}

// ============================================================
// Users
// ============================================================

// AddUser registers a user. Usernames are unique; a taken username is
// rejected with ErrDuplicate and nothing changes.
func (s *Store) AddUser(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByUsername[u.Username]; exists {
		return &domain.ErrDuplicate{Field: "username", Value: u.Username}
	}
	s.usersByID[u.ID] = u
	s.usersByUsername[u.Username] = u
	s.userOrder = append(s.userOrder, u.ID)
	return nil
}

// UserByID looks a user up by id.
func (s *Store) UserByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.usersByID[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}
	return u, nil
}

// UserByUsername looks a user up by username.
func (s *Store) UserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.usersByUsername[username]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "user", ID: username}
	}
	return u, nil
}

// Users lists all users in registration order.
func (s *Store) Users(_ context.Context) []*domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		out = append(out, s.usersByID[id])
	}
	return out
}

// RemoveUser hard-deletes a user from the registry. The user's refresh
// tokens are revoked with it so stale sessions cannot outlive the user.
func (s *Store) RemoveUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usersByID[id]
	if !ok {
		return &domain.ErrNotFound{Resource: "user", ID: id}
	}
	delete(s.usersByID, id)
	delete(s.usersByUsername, u.Username)
	for i, uid := range s.userOrder {
		if uid == id {
			s.userOrder = append(s.userOrder[:i], s.userOrder[i+1:]...)
			break
		}
	}
	for hash, tok := range s.refreshTokens {
		if tok.UserID == id {
			delete(s.refreshTokens, hash)
		}
	}
	return nil
}

// ============================================================
// Accounts
// ============================================================

// AddAccount registers an account. The account arrives with a generated
// number; on the unlikely collision the number is regenerated a bounded
// number of times before giving up.
func (s *Store) AddAccount(_ context.Context, a *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < numberRetries; i++ {
		if _, taken := s.accountsByNumber[a.Number]; !taken {
			s.accountsByNumber[a.Number] = a
			s.accountOrder = append(s.accountOrder, a.Number)
			return nil
		}
		a.RegenerateNumber()
	}
	return &domain.ErrDuplicate{Field: "account_number", Value: a.Number}
}

// AccountByNumber resolves an account number.
func (s *Store) AccountByNumber(_ context.Context, number string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accountsByNumber[number]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "account", ID: number}
	}
	return a, nil
}

// Accounts lists all accounts in registration order. Deactivated accounts
// are included; they remain queryable forever.
func (s *Store) Accounts(_ context.Context) []*domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Account, 0, len(s.accountOrder))
	for _, n := range s.accountOrder {
		out = append(out, s.accountsByNumber[n])
	}
	return out
}

// AccountsByHolder returns all accounts whose holder name matches exactly,
// in registration order.
func (s *Store) AccountsByHolder(_ context.Context, holderName string) []*domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Account
	for _, n := range s.accountOrder {
		if a := s.accountsByNumber[n]; a.HolderName == holderName {
			out = append(out, a)
		}
	}
	return out
}
