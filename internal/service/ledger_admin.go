package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/minibank/minibank-go/internal/domain"
)

// Users returns a snapshot of every registered user in registration order.
func (s *LedgerService) Users(ctx context.Context) []*domain.User {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.Users")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()
	users := s.store.Users(ctx)
	out := make([]*domain.User, len(users))
	for i, u := range users {
		out[i] = u.Snapshot()
	}
	return out
}

// GetUser resolves a user ID. The returned user is a snapshot.
func (s *LedgerService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.GetUser")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Snapshot(), nil
}

// DeleteUser removes a user record outright and deactivates every account
// the user owned. Account records and their histories survive; only the
// user entry disappears.
func (s *LedgerService) DeleteUser(ctx context.Context, userID string) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.DeleteUser")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return err
	}
	for _, number := range user.AccountNumbers {
		account, err := s.store.AccountByNumber(ctx, number)
		if err != nil {
			continue
		}
		account.Deactivate()
	}
	if err := s.store.RemoveUser(ctx, userID); err != nil {
		return err
	}
	s.refreshStatisticsLocked(ctx)

	s.logger.Info("user deleted",
		zap.String("user", userID),
		zap.Int("accounts_deactivated", len(user.AccountNumbers)),
	)
	return nil
}

// DeleteAccount is a soft delete: the account is deactivated and rejects
// money movement from then on, but stays resolvable with its full history.
func (s *LedgerService) DeleteAccount(ctx context.Context, number string) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.DeleteAccount")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.store.AccountByNumber(ctx, number)
	if err != nil {
		return err
	}
	account.Deactivate()
	s.refreshStatisticsLocked(ctx)

	s.logger.Info("account deactivated", zap.String("account", number))
	return nil
}

// AttachAccount links an existing account to a user. Ownership is a plain
// membership list; the ledger does not check whether another user already
// claims the same number.
func (s *LedgerService) AttachAccount(ctx context.Context, userID, number string) (*domain.User, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.AttachAccount")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.AccountByNumber(ctx, number); err != nil {
		return nil, err
	}
	if user.OwnsAccount(number) {
		return nil, &domain.ErrDuplicate{Field: "account", Value: number}
	}
	user.AddAccount(number)

	s.logger.Info("account attached",
		zap.String("user", userID),
		zap.String("account", number),
	)
	return user.Snapshot(), nil
}

// ApplyInterestToAllSavings runs interest accrual over every active savings
// account. Accounts whose accrued interest rounds to zero are left alone.
func (s *LedgerService) ApplyInterestToAllSavings(ctx context.Context) domain.InterestRunResult {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ApplyInterestToAllSavings")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	result := domain.InterestRunResult{TotalInterest: decimal.Zero}
	for _, account := range s.store.Accounts(ctx) {
		if account.Type != domain.AccountSavings {
			continue
		}
		credited := account.ApplyInterest(now)
		if credited.IsPositive() {
			result.AccountsCredited++
			result.TotalInterest = result.TotalInterest.Add(credited)
			s.metrics.IncrTransaction(domain.TransactionInterest)
		}
	}
	s.refreshStatisticsLocked(ctx)

	s.logger.Info("interest run complete",
		zap.Int("accounts_credited", result.AccountsCredited),
		zap.String("total_interest", result.TotalInterest.StringFixed(2)),
	)
	return result
}

// ChargeBusinessFees charges the monthly fee on every active business
// account. Accounts that cannot cover the fee are skipped, never overdrawn.
func (s *LedgerService) ChargeBusinessFees(ctx context.Context) domain.FeeRunResult {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ChargeBusinessFees")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	result := domain.FeeRunResult{TotalFees: decimal.Zero}
	for _, account := range s.store.Accounts(ctx) {
		if account.Type != domain.AccountBusiness || !account.Active {
			continue
		}
		if err := account.ChargeMonthlyFee(); err != nil {
			result.AccountsSkipped++
			s.logger.Warn("fee skipped",
				zap.String("account", account.Number),
				zap.Error(err),
			)
			continue
		}
		result.AccountsCharged++
		result.TotalFees = result.TotalFees.Add(account.MonthlyFee)
		s.metrics.IncrTransaction(domain.TransactionFee)
	}
	s.refreshStatisticsLocked(ctx)

	s.logger.Info("fee run complete",
		zap.Int("accounts_charged", result.AccountsCharged),
		zap.Int("accounts_skipped", result.AccountsSkipped),
	)
	return result
}
