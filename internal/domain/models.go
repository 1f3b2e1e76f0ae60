// Package domain defines the core business entities of the minibank ledger:
// accounts, transactions, users and the derived bank statistics. These models
// are independent of the HTTP shell and of any storage backend.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Bank / Statistics
// ============================================================

// BankInfo identifies the ledger instance.
type BankInfo struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Statistics are the ledger's derived aggregates. They are recomputable from
// the account and user sets at any time; the ledger refreshes the cached copy
// after every mutating operation.
type Statistics struct {
	TotalAssets   decimal.Decimal `json:"total_assets"` // sum over active accounts
	TotalAccounts int             `json:"total_accounts"`
	TotalUsers    int             `json:"total_users"`
	RefreshedAt   time.Time       `json:"refreshed_at"`
}

// ============================================================
// Auth — request / response types
// ============================================================

// RegisterRequest is the body for POST /v1/auth/register.
type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role,omitempty"` // defaults to customer
}

// RegisterResponse is the body for 201 from POST /v1/auth/register.
type RegisterResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the session token pair. The access token is the
// explicit session handle: every subsequent call identifies its user by it.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	UserID       string `json:"user_id"`
	FullName     string `json:"full_name"`
	Role         string `json:"role"`
}

// RefreshRequest is the body for POST /v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest is the body for PUT /v1/auth/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UpdateProfileRequest is the body for PUT /v1/users/me/profile.
type UpdateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// RefreshToken is a stored (hashed) refresh token.
type RefreshToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"token_hash"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
}

// ============================================================
// Accounts & money movement — request / response types
// ============================================================

// CreateAccountRequest is the body for POST /v1/accounts.
type CreateAccountRequest struct {
	HolderName     string          `json:"holder_name"`
	Type           string          `json:"type"` // savings | checking | business
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// CreateBusinessAccountRequest is the body for POST /v1/accounts/business.
type CreateBusinessAccountRequest struct {
	HolderName     string          `json:"holder_name"`
	BusinessName   string          `json:"business_name"`
	TaxID          string          `json:"tax_id"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// AmountRequest is the body for deposit and withdraw endpoints.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// TransferRequest is the body for POST /v1/transfers.
type TransferRequest struct {
	FromAccount string          `json:"from_account"`
	ToAccount   string          `json:"to_account"`
	Amount      decimal.Decimal `json:"amount"`
}

// BalanceResponse is returned by money-movement endpoints.
type BalanceResponse struct {
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
}

// TransferResponse reports both post-transfer balances.
type TransferResponse struct {
	FromAccount string          `json:"from_account"`
	ToAccount   string          `json:"to_account"`
	Amount      decimal.Decimal `json:"amount"`
	FromBalance decimal.Decimal `json:"from_balance"`
	ToBalance   decimal.Decimal `json:"to_balance"`
}

// InterestRunResult summarises an admin interest run over savings accounts.
type InterestRunResult struct {
	AccountsCredited int             `json:"accounts_credited"`
	TotalInterest    decimal.Decimal `json:"total_interest"`
}

// FeeRunResult summarises an admin fee run over business accounts.
type FeeRunResult struct {
	AccountsCharged int             `json:"accounts_charged"`
	AccountsSkipped int             `json:"accounts_skipped"`
	TotalFees       decimal.Decimal `json:"total_fees"`
}

// ============================================================
// Generic API response wrappers
// ============================================================

// SuccessResponse wraps a successful single-entity response.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
