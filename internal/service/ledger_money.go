package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/minibank/minibank-go/internal/domain"
)

// Deposit credits amount to an account and returns the new balance.
func (s *LedgerService) Deposit(ctx context.Context, number string, amount decimal.Decimal) (decimal.Decimal, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.Deposit")
	defer span.End()
	span.SetAttributes(attribute.String("account.number", number))

	start := time.Now()
	var balance decimal.Decimal
	err := s.guard.Do(ctx, "deposit", func() error {
		s.mu.Lock()
		defer s.mu.Unlock()

		account, err := s.store.AccountByNumber(ctx, number)
		if err != nil {
			return err
		}
		if err := account.Deposit(amount); err != nil {
			return err
		}
		balance = account.Balance
		s.refreshStatisticsLocked(ctx)
		return nil
	})
	s.metrics.RecordOperationDuration("deposit", time.Since(start))
	if err != nil {
		s.metrics.IncrOperationFailure("deposit", failureReason(err))
		return decimal.Zero, err
	}

	s.metrics.IncrTransaction(domain.TransactionDeposit)
	s.logger.Info("deposit",
		zap.String("account", number),
		zap.String("amount", amount.StringFixed(2)),
	)
	return balance, nil
}

// Withdraw debits amount from an account and returns the new balance. The
// withdrawable limit depends on the account type; a checking account may go
// negative up to its overdraft limit.
func (s *LedgerService) Withdraw(ctx context.Context, number string, amount decimal.Decimal) (decimal.Decimal, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.Withdraw")
	defer span.End()
	span.SetAttributes(attribute.String("account.number", number))

	start := time.Now()
	var balance decimal.Decimal
	err := s.guard.Do(ctx, "withdraw", func() error {
		s.mu.Lock()
		defer s.mu.Unlock()

		account, err := s.store.AccountByNumber(ctx, number)
		if err != nil {
			return err
		}
		if err := account.Withdraw(amount); err != nil {
			return err
		}
		balance = account.Balance
		s.refreshStatisticsLocked(ctx)
		return nil
	})
	s.metrics.RecordOperationDuration("withdraw", time.Since(start))
	if err != nil {
		s.metrics.IncrOperationFailure("withdraw", failureReason(err))
		return decimal.Zero, err
	}

	s.metrics.IncrTransaction(domain.TransactionWithdrawal)
	s.logger.Info("withdrawal",
		zap.String("account", number),
		zap.String("amount", amount.StringFixed(2)),
	)
	return balance, nil
}

// Transfer moves amount between two accounts. Both sides are validated
// before either is touched, and both commits happen inside one critical
// section, so no partial transfer is ever observable. A failed transfer
// leaves both accounts exactly as they were.
func (s *LedgerService) Transfer(ctx context.Context, fromNumber, toNumber string, amount decimal.Decimal) (*domain.TransferResponse, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.Transfer")
	defer span.End()
	span.SetAttributes(
		attribute.String("account.from", fromNumber),
		attribute.String("account.to", toNumber),
	)

	if fromNumber == toNumber {
		return nil, &domain.ErrValidation{Field: "to_account", Message: "cannot transfer to the same account"}
	}

	start := time.Now()
	var resp *domain.TransferResponse
	err := s.guard.Do(ctx, "transfer", func() error {
		s.mu.Lock()
		defer s.mu.Unlock()

		// Resolve the source first: a missing source fails the transfer
		// before the target is even looked at.
		source, err := s.store.AccountByNumber(ctx, fromNumber)
		if err != nil {
			return err
		}
		target, err := s.store.AccountByNumber(ctx, toNumber)
		if err != nil {
			return err
		}

		amount = amount.Round(2)
		if err := source.CanWithdraw(amount); err != nil {
			return err
		}
		if err := target.CanDeposit(amount); err != nil {
			return err
		}

		// Both sides validated under the same lock, so neither commit
		// below can fail.
		if err := source.DebitTransfer(amount, target.Number); err != nil {
			return err
		}
		if err := target.CreditTransfer(amount, source.Number); err != nil {
			return err
		}

		resp = &domain.TransferResponse{
			FromAccount: source.Number,
			ToAccount:   target.Number,
			Amount:      amount,
			FromBalance: source.Balance,
			ToBalance:   target.Balance,
		}
		s.refreshStatisticsLocked(ctx)
		return nil
	})
	s.metrics.RecordOperationDuration("transfer", time.Since(start))
	if err != nil {
		s.metrics.IncrOperationFailure("transfer", failureReason(err))
		return nil, err
	}

	s.metrics.IncrTransaction(domain.TransactionTransfer)
	s.logger.Info("transfer",
		zap.String("from", fromNumber),
		zap.String("to", toNumber),
		zap.String("amount", amount.StringFixed(2)),
	)
	return resp, nil
}

// failureReason buckets an error for the failure counter.
func failureReason(err error) string {
	switch err.(type) {
	case *domain.ErrNotFound:
		return "not_found"
	case *domain.ErrValidation:
		return "validation"
	case *domain.ErrInactive:
		return "inactive"
	case *domain.ErrInsufficientFunds:
		return "insufficient_funds"
	case *domain.ErrCircuitOpen:
		return "circuit_open"
	case *domain.ErrOverloaded:
		return "overloaded"
	default:
		return "internal"
	}
}
