package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/minibank/minibank-go/internal/domain"
)

// ============================================================
// Login — POST /v1/auth/login
// ============================================================

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()
	span.SetAttributes(attribute.String("username", req.Username))

	user, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.signAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, refreshHash, err := s.generateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokens.StoreRefreshToken(ctx, user.ID, refreshHash, time.Now().Add(s.refreshTTL)); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	s.metrics.IncrLogin("success")
	s.logger.Info("user logged in", zap.String("user_id", user.ID))

	return &domain.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.accessTTL.Seconds()),
		UserID:       user.ID,
		FullName:     user.FullName(),
		Role:         string(user.Role),
	}, nil
}

// authenticate verifies the credentials and updates the lockout counters.
// The whole check runs under the ledger lock: the attempt counter and lock
// timestamp are written here and read by concurrent logins, so they must
// never be touched unserialised. Returns a snapshot of the user on success.
func (s *AuthService) authenticate(ctx context.Context, req *domain.LoginRequest) (*domain.User, error) {
	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()

	user, err := s.store.UserByUsername(ctx, req.Username)
	if err != nil {
		// Unknown username reads the same as a wrong password.
		s.metrics.IncrLogin("failure")
		return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
	}

	if !user.Active {
		s.logger.Warn("login: user deactivated",
			zap.String("user_id", user.ID),
			zap.String("username", req.Username),
		)
		s.metrics.IncrLogin("failure")
		return nil, &domain.ErrInactive{Resource: "user", ID: user.ID}
	}

	// Check if the user is temporarily locked
	if user.LockedUntil != nil && user.LockedUntil.After(time.Now()) {
		remaining := time.Until(*user.LockedUntil).Minutes()
		s.logger.Warn("login: user temporarily locked",
			zap.String("user_id", user.ID),
			zap.Float64("remaining_minutes", remaining),
		)
		s.metrics.IncrLogin("locked")
		return nil, &domain.ErrUnauthorized{
			Message: fmt.Sprintf("account temporarily locked, try again in %.0f minutes", remaining),
		}
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		user.FailedAttempts++
		if user.FailedAttempts >= maxFailedAttempts {
			lockedUntil := time.Now().Add(lockDuration)
			user.LockedUntil = &lockedUntil
			s.logger.Warn("login: user locked after max attempts",
				zap.String("user_id", user.ID),
				zap.Int("attempts", user.FailedAttempts),
				zap.Duration("lock_duration", lockDuration),
			)
			s.metrics.IncrLogin("locked")
			return nil, &domain.ErrUnauthorized{
				Message: fmt.Sprintf("account locked for %d minutes after %d failed attempts", int(lockDuration.Minutes()), maxFailedAttempts),
			}
		}
		s.logger.Warn("login: failed password attempt",
			zap.String("user_id", user.ID),
			zap.Int("attempts", user.FailedAttempts),
			zap.Int("max", maxFailedAttempts),
		)
		s.metrics.IncrLogin("failure")
		return nil, &domain.ErrUnauthorized{
			Message: fmt.Sprintf("invalid credentials, %d attempt(s) remaining", maxFailedAttempts-user.FailedAttempts),
		}
	}

	// Reset failed attempts on successful login
	user.FailedAttempts = 0
	user.LockedUntil = nil
	user.RecordLogin()

	return user.Snapshot(), nil
}
