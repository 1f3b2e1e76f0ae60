// Package service provides the business logic layer. LedgerService is the
// bank: the sole entry point for account creation, money movement,
// cross-account transfers and the keeper of the derived statistics.
package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/minibank/minibank-go/internal/domain"
	"github.com/minibank/minibank-go/internal/infra/observability"
	"github.com/minibank/minibank-go/internal/infra/resilience"
	"github.com/minibank/minibank-go/internal/port"
)

var ledgerTracer = otel.Tracer("service/ledger")

const statsCacheKey = "ledger"

// LedgerService orchestrates all ledger operations. A single RWMutex
// serialises mutations: at most one mutating operation is in flight at a
// time, so a transfer's debit and credit are one observable unit. The auth
// service locks through the same mutex for user credential state, and every
// read path hands out detached snapshots, never live store pointers.
type LedgerService struct {
	mu sync.RWMutex

	store   port.LedgerStore
	stats   port.Cache[domain.Statistics]
	guard   *resilience.Guard
	metrics *observability.Metrics
	logger  *zap.Logger
	bank    domain.BankInfo
}

// NewLedgerService creates the ledger around a store.
func NewLedgerService(store port.LedgerStore, stats port.Cache[domain.Statistics], guard *resilience.Guard, metrics *observability.Metrics, logger *zap.Logger, bank domain.BankInfo) *LedgerService {
	return &LedgerService{
		store:   store,
		stats:   stats,
		guard:   guard,
		metrics: metrics,
		logger:  logger,
		bank:    bank,
	}
}

// Bank returns the ledger's identity.
func (s *LedgerService) Bank() domain.BankInfo {
	return s.bank
}

// ============================================================
// Accounts
// ============================================================

// CreateAccount constructs the account variant for accType and registers it.
// The account is not attached to any user; attachment is a separate call.
// Business accounts created through this generic path get placeholder
// business details — use CreateBusinessAccount for real ones.
func (s *LedgerService) CreateAccount(ctx context.Context, holderName string, accType string, initialBalance decimal.Decimal) (*domain.Account, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.CreateAccount")
	defer span.End()
	span.SetAttributes(attribute.String("account.type", accType))

	if holderName == "" {
		return nil, &domain.ErrValidation{Field: "holder_name", Message: "required"}
	}
	if initialBalance.IsNegative() {
		return nil, &domain.ErrValidation{Field: "initial_balance", Message: "must not be negative"}
	}

	var account *domain.Account
	switch domain.AccountType(accType) {
	case domain.AccountSavings:
		account = domain.NewSavingsAccount(holderName, initialBalance)
	case domain.AccountChecking:
		account = domain.NewCheckingAccount(holderName, initialBalance)
	case domain.AccountBusiness:
		account = domain.NewBusinessAccount(holderName, "Business", "TAX123", initialBalance)
	default:
		return nil, &domain.ErrValidation{Field: "type", Message: "must be savings, checking or business"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.AddAccount(ctx, account); err != nil {
		return nil, err
	}
	s.refreshStatisticsLocked(ctx)

	s.logger.Info("account created",
		zap.String("account", account.Number),
		zap.String("type", accType),
		zap.String("holder", holderName),
	)
	return account.Snapshot(), nil
}

// CreateBusinessAccount constructs a business account with real business
// details and registers it.
func (s *LedgerService) CreateBusinessAccount(ctx context.Context, holderName, businessName, taxID string, initialBalance decimal.Decimal) (*domain.Account, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.CreateBusinessAccount")
	defer span.End()

	if holderName == "" {
		return nil, &domain.ErrValidation{Field: "holder_name", Message: "required"}
	}
	if businessName == "" {
		return nil, &domain.ErrValidation{Field: "business_name", Message: "required"}
	}
	if initialBalance.IsNegative() {
		return nil, &domain.ErrValidation{Field: "initial_balance", Message: "must not be negative"}
	}

	account := domain.NewBusinessAccount(holderName, businessName, taxID, initialBalance)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.AddAccount(ctx, account); err != nil {
		return nil, err
	}
	s.refreshStatisticsLocked(ctx)

	s.logger.Info("business account created",
		zap.String("account", account.Number),
		zap.String("business", businessName),
	)
	return account.Snapshot(), nil
}

// GetAccount resolves an account number. Deactivated accounts resolve too;
// they are queryable forever. The returned account is a snapshot: a mutation
// landing after this call does not show up in it.
func (s *LedgerService) GetAccount(ctx context.Context, number string) (*domain.Account, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.GetAccount")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()
	account, err := s.store.AccountByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return account.Snapshot(), nil
}

// ListAccounts returns a snapshot of every account in registration order.
func (s *LedgerService) ListAccounts(ctx context.Context) []*domain.Account {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListAccounts")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotAccounts(s.store.Accounts(ctx))
}

// FindAccountsByHolder returns the accounts whose holder name matches
// exactly, in registration order.
func (s *LedgerService) FindAccountsByHolder(ctx context.Context, holderName string) []*domain.Account {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.FindAccountsByHolder")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotAccounts(s.store.AccountsByHolder(ctx, holderName))
}

func snapshotAccounts(accounts []*domain.Account) []*domain.Account {
	out := make([]*domain.Account, len(accounts))
	for i, a := range accounts {
		out[i] = a.Snapshot()
	}
	return out
}

// TransactionHistory returns an account's history in chronological order.
func (s *LedgerService) TransactionHistory(ctx context.Context, number string) ([]*domain.Transaction, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.TransactionHistory")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()
	account, err := s.store.AccountByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return account.Transactions(), nil
}

// AllTransactions is the ledger-wide view of history: each account owns its
// own list, and this aggregates them sorted by timestamp. There is no second,
// parallel ledger record per event.
func (s *LedgerService) AllTransactions(ctx context.Context) []*domain.Transaction {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.AllTransactions")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []*domain.Transaction
	for _, account := range s.store.Accounts(ctx) {
		all = append(all, account.Transactions()...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.Before(all[j].Timestamp)
	})
	return all
}

// ============================================================
// Statistics
// ============================================================

// Statistics returns the derived aggregates. The cached snapshot is
// refreshed after every mutating operation; on a cache miss (expiry) it is
// recomputed on the spot.
func (s *LedgerService) Statistics(ctx context.Context) domain.Statistics {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.Statistics")
	defer span.End()

	if stats, ok := s.stats.Get(statsCacheKey); ok {
		return stats
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.computeAndCacheStatistics(ctx)
}

// refreshStatisticsLocked recomputes the aggregates. Callers hold s.mu.
func (s *LedgerService) refreshStatisticsLocked(ctx context.Context) {
	s.computeAndCacheStatistics(ctx)
}

func (s *LedgerService) computeAndCacheStatistics(ctx context.Context) domain.Statistics {
	accounts := s.store.Accounts(ctx)

	totalAssets := decimal.Zero
	for _, a := range accounts {
		if a.Active {
			totalAssets = totalAssets.Add(a.Balance)
		}
	}

	stats := domain.Statistics{
		TotalAssets:   totalAssets,
		TotalAccounts: len(accounts),
		TotalUsers:    len(s.store.Users(ctx)),
		RefreshedAt:   time.Now(),
	}
	s.stats.Set(statsCacheKey, stats)
	s.metrics.SetLedgerStatistics(stats)
	return stats
}
