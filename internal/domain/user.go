package domain

import "time"

// UserRole separates customers from administrators. Admin-only operations
// (user management, account deletion, interest and fee runs) are gated on it.
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

// User holds credentials, profile data and references to owned accounts.
// Ownership is by account number; an account belongs to at most one user and
// may transiently exist unowned (creation and attachment are separate steps).
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Role        UserRole  `json:"role"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	LastLoginAt time.Time `json:"last_login_at"`

	// Owned accounts, in attachment order.
	AccountNumbers []string `json:"account_numbers"`

	// Credential state, managed by the auth service. Never serialised.
	PasswordHash   string     `json:"-"`
	FailedAttempts int        `json:"-"`
	LockedUntil    *time.Time `json:"-"`
}

// NewUser creates an active user with a fresh "USR" + 9-digit id. The
// password hash is set by the auth service, which owns credential handling.
func NewUser(username, firstName, lastName, email, phone string, role UserRole) *User {
	now := time.Now()
	return &User{
		ID:          "USR" + randomDigits(9),
		Username:    username,
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		Phone:       phone,
		Role:        role,
		Active:      true,
		CreatedAt:   now,
		LastLoginAt: now,
	}
}

// FullName returns "First Last".
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// AddAccount appends an account number to the owned list. It does not verify
// the account is otherwise unowned; single ownership is the ledger's
// convention.
func (u *User) AddAccount(number string) {
	u.AccountNumbers = append(u.AccountNumbers, number)
}

// OwnsAccount reports whether the user owns the given account number.
func (u *User) OwnsAccount(number string) bool {
	for _, n := range u.AccountNumbers {
		if n == number {
			return true
		}
	}
	return false
}

// RecordLogin stamps the last-login time. Called only after successful
// authentication.
func (u *User) RecordLogin() {
	u.LastLoginAt = time.Now()
}

// UpdateProfile replaces the mutable profile fields.
func (u *User) UpdateProfile(firstName, lastName, email, phone string) {
	u.FirstName = firstName
	u.LastName = lastName
	u.Email = email
	u.Phone = phone
}

// Deactivate blocks authentication for the user. Queries still see it.
func (u *User) Deactivate() { u.Active = false }

// Snapshot returns a detached copy of the user, safe to read after the
// service lock is released.
func (u *User) Snapshot() *User {
	out := *u
	out.AccountNumbers = append([]string(nil), u.AccountNumbers...)
	if u.LockedUntil != nil {
		until := *u.LockedUntil
		out.LockedUntil = &until
	}
	return &out
}
