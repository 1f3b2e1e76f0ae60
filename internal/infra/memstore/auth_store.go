package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/minibank/minibank-go/internal/domain"
)

// ============================================================
// Refresh tokens
// ============================================================

// StoreRefreshToken records a hashed refresh token for a user.
func (s *Store) StoreRefreshToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshTokens[tokenHash] = &domain.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
	}
	return nil
}

// GetRefreshToken looks up a live refresh token by hash. Revoked tokens are
// reported as not found.
func (s *Store) GetRefreshToken(_ context.Context, tokenHash string) (*domain.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tok, ok := s.refreshTokens[tokenHash]
	if !ok || tok.Revoked {
		return nil, &domain.ErrUnauthorized{Message: "unknown refresh token"}
	}
	return tok, nil
}

// RevokeRefreshToken invalidates a single refresh token (rotation).
func (s *Store) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tok, ok := s.refreshTokens[tokenHash]; ok {
		tok.Revoked = true
	}
	return nil
}

// RevokeAllRefreshTokens invalidates every refresh token a user holds
// (logout, password change).
func (s *Store) RevokeAllRefreshTokens(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tok := range s.refreshTokens {
		if tok.UserID == userID {
			tok.Revoked = true
		}
	}
	return nil
}
