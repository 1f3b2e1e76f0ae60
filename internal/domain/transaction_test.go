package domain

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewTransactionID(t *testing.T) {
	tx := NewTransaction(TransactionDeposit, decimal.NewFromInt(10), "Deposit", "", "S123456789", decimal.NewFromInt(10))

	if !strings.HasPrefix(tx.ID, "TXN") {
		t.Errorf("expected TXN prefix, got %q", tx.ID)
	}
	if len(tx.ID) != 15 {
		t.Errorf("expected 15 chars, got %d (%q)", len(tx.ID), tx.ID)
	}
	for _, c := range tx.ID[3:] {
		if c < '0' || c > '9' {
			t.Errorf("non-digit %q in %q", c, tx.ID)
		}
	}
	if tx.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestNewUserID(t *testing.T) {
	u := NewUser("john", "John", "Doe", "john@example.com", "555-0101", RoleCustomer)

	if !strings.HasPrefix(u.ID, "USR") {
		t.Errorf("expected USR prefix, got %q", u.ID)
	}
	if len(u.ID) != 12 {
		t.Errorf("expected 12 chars, got %d (%q)", len(u.ID), u.ID)
	}
	if u.FullName() != "John Doe" {
		t.Errorf("expected full name 'John Doe', got %q", u.FullName())
	}
	if !u.Active {
		t.Error("new user must be active")
	}
}
