// Package service — AuthService handles registration, authentication and
// JWT session management. The access token is the session handle: every
// request identifies its user by the token it carries, so concurrent
// sessions never displace each other.
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/minibank/minibank-go/internal/domain"
	"github.com/minibank/minibank-go/internal/infra/observability"
	"github.com/minibank/minibank-go/internal/port"
)

var authTracer = otel.Tracer("service/auth")

const (
	maxFailedAttempts = 5
	lockDuration      = 30 * time.Minute
	bcryptCost        = 12
	minPasswordLength = 6
)

// AuthService orchestrates authentication flows. User records live in the
// same store the ledger mutates, so all credential-state reads and writes go
// through the ledger's mutex; the user set feeds the ledger's statistics,
// which are refreshed when it changes.
type AuthService struct {
	store      port.LedgerStore
	tokens     port.AuthStore
	ledger     *LedgerService
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewAuthService creates a new auth service sharing the ledger's store.
func NewAuthService(store port.LedgerStore, tokens port.AuthStore, ledger *LedgerService, jwtSecret string, accessTTL, refreshTTL time.Duration, metrics *observability.Metrics, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:      store,
		tokens:     tokens,
		ledger:     ledger,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		metrics:    metrics,
		logger:     logger,
	}
}

// ============================================================
// Register — POST /v1/auth/register
// ============================================================

func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.RegisterResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Register")
	defer span.End()

	if req.Username == "" {
		return nil, &domain.ErrValidation{Field: "username", Message: "required"}
	}
	if len(req.Password) < minPasswordLength {
		return nil, &domain.ErrValidation{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}

	role := domain.RoleCustomer
	switch req.Role {
	case "", string(domain.RoleCustomer):
	case string(domain.RoleAdmin):
		role = domain.RoleAdmin
	default:
		return nil, &domain.ErrValidation{Field: "role", Message: "must be customer or admin"}
	}

	// Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.NewUser(req.Username, req.FirstName, req.LastName, req.Email, req.Phone, role)
	user.PasswordHash = string(hash)

	s.ledger.mu.Lock()
	// AddUser rejects a taken username with ErrDuplicate.
	if err := s.store.AddUser(ctx, user); err != nil {
		s.ledger.mu.Unlock()
		return nil, err
	}
	// The user count feeds the statistics snapshot.
	s.ledger.refreshStatisticsLocked(ctx)
	s.ledger.mu.Unlock()

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", string(role)),
	)

	return &domain.RegisterResponse{
		UserID:   user.ID,
		Username: user.Username,
		Message:  "user registered successfully",
	}, nil
}

// ============================================================
// ValidateAccessToken — used by middleware
// ============================================================

// JWTClaims represents the custom claims in access tokens.
type JWTClaims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

func (s *AuthService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid token"}
	}

	if claims.Type != "access" {
		return nil, &domain.ErrUnauthorized{Message: "invalid token type"}
	}

	return claims, nil
}

// CurrentUser resolves the authenticated user behind a validated token. The
// returned user is a snapshot.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.CurrentUser")
	defer span.End()

	s.ledger.mu.RLock()
	defer s.ledger.mu.RUnlock()
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Snapshot(), nil
}

// ============================================================
// Internal helpers
// ============================================================

func (s *AuthService) signAccessToken(userID string, role domain.UserRole) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Sub:  userID,
		Role: string(role),
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Issuer:    "minibank-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) generateRefreshToken() (raw string, hashed string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(b)
	hashed = hashToken(raw)
	return raw, hashed, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
