package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/minibank/minibank-go/internal/domain"
)

// SeedDemoData loads the demo fixture: an administrator and one customer
// with a funded savings and checking account. Intended for local runs and
// demos, gated behind SEED_DEMO_DATA.
func SeedDemoData(ctx context.Context, auth *AuthService, ledger *LedgerService, logger *zap.Logger) error {
	admin, err := auth.Register(ctx, &domain.RegisterRequest{
		Username:  "admin",
		Password:  "admin123",
		FirstName: "Admin",
		LastName:  "User",
		Email:     "admin@minibank.com",
		Phone:     "555-0100",
		Role:      string(domain.RoleAdmin),
	})
	if err != nil {
		return err
	}

	john, err := auth.Register(ctx, &domain.RegisterRequest{
		Username:  "john",
		Password:  "password123",
		FirstName: "John",
		LastName:  "Doe",
		Email:     "john@example.com",
		Phone:     "555-0101",
		Role:      string(domain.RoleCustomer),
	})
	if err != nil {
		return err
	}

	savings, err := ledger.CreateAccount(ctx, "John Doe", string(domain.AccountSavings), decimal.NewFromInt(5000))
	if err != nil {
		return err
	}
	checking, err := ledger.CreateAccount(ctx, "John Doe", string(domain.AccountChecking), decimal.NewFromInt(2500))
	if err != nil {
		return err
	}
	if _, err := ledger.AttachAccount(ctx, john.UserID, savings.Number); err != nil {
		return err
	}
	if _, err := ledger.AttachAccount(ctx, john.UserID, checking.Number); err != nil {
		return err
	}

	logger.Info("demo data seeded",
		zap.String("admin_id", admin.UserID),
		zap.String("customer_id", john.UserID),
		zap.String("savings", savings.Number),
		zap.String("checking", checking.Number),
	)
	return nil
}
