package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType discriminates the account variants. The withdrawal policy and
// the type-specific attributes are dispatched on it; there is no inheritance.
type AccountType string

const (
	AccountSavings  AccountType = "savings"
	AccountChecking AccountType = "checking"
	AccountBusiness AccountType = "business"
)

// Defaults applied by the account constructors.
var (
	DefaultInterestRate   = decimal.NewFromFloat(0.025) // 2.5% / year
	DefaultOverdraftLimit = decimal.NewFromInt(500)
	DefaultMonthlyFee     = decimal.NewFromInt(25)

	daysPerYear = decimal.NewFromInt(365)
	hoursPerDay = decimal.NewFromInt(24)
)

// Account owns a balance and an append-only list of transactions. Variants
// share the struct; unused type-specific fields stay at their zero value.
// Account methods validate and mutate a single account only — cross-account
// operations (transfers) are orchestrated by the ledger service.
//
// Accounts are not safe for concurrent use; the ledger serialises access.
type Account struct {
	Number     string          `json:"number"`
	HolderName string          `json:"holder_name"`
	Type       AccountType     `json:"type"`
	Balance    decimal.Decimal `json:"balance"`
	Active     bool            `json:"active"`
	CreatedAt  time.Time       `json:"created_at"`

	// Savings
	InterestRate   decimal.Decimal `json:"interest_rate,omitempty"`
	LastInterestAt time.Time       `json:"last_interest_at,omitempty"`

	// Checking
	OverdraftLimit decimal.Decimal `json:"overdraft_limit,omitempty"`

	// Business
	BusinessName string          `json:"business_name,omitempty"`
	TaxID        string          `json:"tax_id,omitempty"`
	MonthlyFee   decimal.Decimal `json:"monthly_fee,omitempty"`

	transactions []*Transaction
}

// NewSavingsAccount creates an active savings account with the default
// interest rate. The interest clock starts at creation time.
func NewSavingsAccount(holderName string, initialBalance decimal.Decimal) *Account {
	a := newAccount(holderName, AccountSavings, initialBalance)
	a.InterestRate = DefaultInterestRate
	a.LastInterestAt = a.CreatedAt
	return a
}

// NewCheckingAccount creates an active checking account with the default
// overdraft limit.
func NewCheckingAccount(holderName string, initialBalance decimal.Decimal) *Account {
	a := newAccount(holderName, AccountChecking, initialBalance)
	a.OverdraftLimit = DefaultOverdraftLimit
	return a
}

// NewBusinessAccount creates an active business account with the default
// monthly fee. The fee is never charged automatically; see the ledger's
// admin fee run.
func NewBusinessAccount(holderName, businessName, taxID string, initialBalance decimal.Decimal) *Account {
	a := newAccount(holderName, AccountBusiness, initialBalance)
	a.BusinessName = businessName
	a.TaxID = taxID
	a.MonthlyFee = DefaultMonthlyFee
	return a
}

func newAccount(holderName string, accType AccountType, initialBalance decimal.Decimal) *Account {
	return &Account{
		Number:     GenerateAccountNumber(accType),
		HolderName: holderName,
		Type:       accType,
		Balance:    initialBalance.Round(2),
		Active:     true,
		CreatedAt:  time.Now(),
	}
}

// GenerateAccountNumber returns a type prefix (S/C/B) followed by 9 random
// digits. Uniqueness is enforced by the store, which regenerates on
// collision.
func GenerateAccountNumber(accType AccountType) string {
	prefix := "X"
	switch accType {
	case AccountSavings:
		prefix = "S"
	case AccountChecking:
		prefix = "C"
	case AccountBusiness:
		prefix = "B"
	}
	return prefix + randomDigits(9)
}

// RegenerateNumber assigns a fresh account number. Only the store calls this,
// before the account is registered, when the generated number collides.
func (a *Account) RegenerateNumber() {
	a.Number = GenerateAccountNumber(a.Type)
}

// withdrawableLimit is the per-variant withdrawal policy: the maximum amount
// a single withdrawal may take. Checking may dip into its overdraft; savings
// and business may not go below zero.
func (a *Account) withdrawableLimit() decimal.Decimal {
	if a.Type == AccountChecking {
		return a.Balance.Add(a.OverdraftLimit)
	}
	return a.Balance
}

// CanWithdraw reports whether a withdrawal of amount would succeed under this
// account's policy, without mutating anything. The ledger uses it to validate
// both sides of a transfer before committing either.
func (a *Account) CanWithdraw(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return &ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if !a.Active {
		return &ErrInactive{Resource: "account", ID: a.Number}
	}
	if amount.GreaterThan(a.withdrawableLimit()) {
		return &ErrInsufficientFunds{Available: a.withdrawableLimit(), Required: amount}
	}
	return nil
}

// CanDeposit mirrors CanWithdraw for the credit side.
func (a *Account) CanDeposit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return &ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if !a.Active {
		return &ErrInactive{Resource: "account", ID: a.Number}
	}
	return nil
}

// Deposit credits amount and records a deposit transaction. There is no
// upper bound on the amount.
func (a *Account) Deposit(amount decimal.Decimal) error {
	amount = amount.Round(2)
	if err := a.CanDeposit(amount); err != nil {
		return err
	}
	a.Balance = a.Balance.Add(amount)
	a.append(NewTransaction(TransactionDeposit, amount, "Deposit", "", a.Number, a.Balance))
	return nil
}

// Withdraw debits amount under this account's withdrawal policy and records
// a withdrawal transaction.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	amount = amount.Round(2)
	if err := a.CanWithdraw(amount); err != nil {
		return err
	}
	a.Balance = a.Balance.Sub(amount)
	a.append(NewTransaction(TransactionWithdrawal, amount, "Withdrawal", a.Number, "", a.Balance))
	return nil
}

// DebitTransfer is the source-side half of a transfer. The caller must have
// validated both sides first; the policy is still re-checked here so a buggy
// caller cannot break the balance invariant.
func (a *Account) DebitTransfer(amount decimal.Decimal, counterparty string) error {
	amount = amount.Round(2)
	if err := a.CanWithdraw(amount); err != nil {
		return err
	}
	a.Balance = a.Balance.Sub(amount)
	a.append(NewTransaction(TransactionTransfer, amount, "Transfer to "+counterparty, a.Number, counterparty, a.Balance))
	return nil
}

// CreditTransfer is the destination-side half of a transfer. Unlike the
// original design it goes through the account's own deposit validation, so a
// deactivated target rejects the credit.
func (a *Account) CreditTransfer(amount decimal.Decimal, counterparty string) error {
	amount = amount.Round(2)
	if err := a.CanDeposit(amount); err != nil {
		return err
	}
	a.Balance = a.Balance.Add(amount)
	a.append(NewTransaction(TransactionTransfer, amount, "Transfer from "+counterparty, counterparty, a.Number, a.Balance))
	return nil
}

// CalculateInterest returns the interest accrued since LastInterestAt as of
// now: balance * (rate/365) * elapsed fractional days. Non-savings accounts
// accrue nothing.
func (a *Account) CalculateInterest(now time.Time) decimal.Decimal {
	if a.Type != AccountSavings {
		return decimal.Zero
	}
	days := decimal.NewFromFloat(now.Sub(a.LastInterestAt).Hours()).Div(hoursPerDay)
	return a.Balance.Mul(a.InterestRate).Div(daysPerYear).Mul(days)
}

// ApplyInterest credits accrued interest (rounded to cents), resets the
// interest clock and records an interest transaction. It is a no-op when the
// accrued interest rounds to zero or the account is inactive, so calling it
// twice back to back cannot double-credit.
func (a *Account) ApplyInterest(now time.Time) decimal.Decimal {
	if !a.Active {
		return decimal.Zero
	}
	interest := a.CalculateInterest(now).Round(2)
	if interest.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	a.Balance = a.Balance.Add(interest)
	a.LastInterestAt = now
	a.append(NewTransaction(TransactionInterest, interest, "Interest earned", "", a.Number, a.Balance))
	return interest
}

// ChargeMonthlyFee debits the business monthly fee and records a fee
// transaction. Business accounts only; fails rather than overdrawing.
func (a *Account) ChargeMonthlyFee() error {
	if a.Type != AccountBusiness {
		return &ErrValidation{Field: "type", Message: "monthly fee applies to business accounts only"}
	}
	if !a.Active {
		return &ErrInactive{Resource: "account", ID: a.Number}
	}
	if a.MonthlyFee.GreaterThan(a.Balance) {
		return &ErrInsufficientFunds{Available: a.Balance, Required: a.MonthlyFee}
	}
	a.Balance = a.Balance.Sub(a.MonthlyFee)
	a.append(NewTransaction(TransactionFee, a.MonthlyFee, "Monthly account fee", a.Number, "", a.Balance))
	return nil
}

// Deactivate soft-deletes the account: mutations are rejected, history stays
// queryable.
func (a *Account) Deactivate() { a.Active = false }

// Activate re-enables a deactivated account. Exists at the type level; the
// ledger's delete flow never calls it.
func (a *Account) Activate() { a.Active = true }

func (a *Account) append(tx *Transaction) {
	a.transactions = append(a.transactions, tx)
}

// Transactions returns the account's history in chronological (insertion)
// order. The returned slice is a copy; the history itself is append-only.
func (a *Account) Transactions() []*Transaction {
	out := make([]*Transaction, len(a.transactions))
	copy(out, a.transactions)
	return out
}

// Snapshot returns a detached copy of the account, safe to read after the
// ledger lock is released. Transaction records are immutable once appended,
// so the copy shares them.
func (a *Account) Snapshot() *Account {
	out := *a
	out.transactions = a.Transactions()
	return &out
}
