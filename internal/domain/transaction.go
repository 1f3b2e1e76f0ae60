package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger event.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionTransfer   TransactionType = "transfer"
	TransactionInterest   TransactionType = "interest"
	TransactionFee        TransactionType = "fee"
)

// Transaction is an immutable record of one ledger event. Every
// balance-changing account operation creates exactly one Transaction on each
// account it affects; BalanceAfter is that account's balance immediately
// after the operation.
type Transaction struct {
	ID           string          `json:"id"`
	Type         TransactionType `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Timestamp    time.Time       `json:"timestamp"`
	FromAccount  string          `json:"from_account,omitempty"`
	ToAccount    string          `json:"to_account,omitempty"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

// NewTransaction creates a transaction with a fresh "TXN" + 12-digit id.
func NewTransaction(txType TransactionType, amount decimal.Decimal, description, fromAccount, toAccount string, balanceAfter decimal.Decimal) *Transaction {
	return &Transaction{
		ID:           generateTransactionID(),
		Type:         txType,
		Amount:       amount,
		Description:  description,
		Timestamp:    time.Now(),
		FromAccount:  fromAccount,
		ToAccount:    toAccount,
		BalanceAfter: balanceAfter,
	}
}

func generateTransactionID() string {
	return "TXN" + randomDigits(12)
}

// randomDigits returns n random decimal digits from crypto/rand.
func randomDigits(n int) string {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		// crypto/rand only fails if the OS entropy source is broken
		panic("domain: random id generation failed: " + err.Error())
	}
	return fmt.Sprintf("%0*d", n, v)
}
