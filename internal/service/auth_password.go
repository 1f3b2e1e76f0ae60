package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/minibank/minibank-go/internal/domain"
)

// ============================================================
// ChangePassword — PUT /v1/auth/password
// ============================================================

func (s *AuthService) ChangePassword(ctx context.Context, userID string, req *domain.ChangePasswordRequest) error {
	ctx, span := authTracer.Start(ctx, "AuthService.ChangePassword")
	defer span.End()

	if len(req.NewPassword) < minPasswordLength {
		return &domain.ErrValidation{Field: "new_password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	// Credential state is written under the ledger lock, like the login
	// counters.
	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()

	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return err
	}

	// Verify current password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		s.logger.Warn("password change: wrong current password",
			zap.String("user_id", userID),
		)
		return &domain.ErrUnauthorized{Message: "current password is incorrect"}
	}

	user.PasswordHash = string(hash)
	user.FailedAttempts = 0
	user.LockedUntil = nil

	// Force re-login on other devices.
	_ = s.tokens.RevokeAllRefreshTokens(ctx, userID)

	s.logger.Info("password changed", zap.String("user_id", userID))
	return nil
}

// ============================================================
// UpdateProfile — PUT /v1/users/me/profile
// ============================================================

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req *domain.UpdateProfileRequest) (*domain.User, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.UpdateProfile")
	defer span.End()

	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()

	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	firstName := user.FirstName
	lastName := user.LastName
	email := user.Email
	phone := user.Phone
	changed := false
	if req.FirstName != "" {
		firstName = req.FirstName
		changed = true
	}
	if req.LastName != "" {
		lastName = req.LastName
		changed = true
	}
	if req.Email != "" {
		email = req.Email
		changed = true
	}
	if req.Phone != "" {
		phone = req.Phone
		changed = true
	}
	if !changed {
		return nil, &domain.ErrValidation{Field: "body", Message: "no fields to update"}
	}
	user.UpdateProfile(firstName, lastName, email, phone)

	s.logger.Info("profile updated", zap.String("user_id", userID))
	return user.Snapshot(), nil
}
