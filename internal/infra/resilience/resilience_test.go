package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/minibank/minibank-go/internal/domain"
	"github.com/minibank/minibank-go/internal/infra/resilience"
)

func TestGuard_PassesThroughSuccess(t *testing.T) {
	g := resilience.NewGuard("test", 2)

	called := false
	err := g.Do(context.Background(), "deposit", func() error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("expected fn to be called")
	}
}

func TestGuard_PropagatesBusinessError(t *testing.T) {
	g := resilience.NewGuard("test", 2)

	want := &domain.ErrInsufficientFunds{}
	err := g.Do(context.Background(), "withdraw", func() error { return want })

	var got *domain.ErrInsufficientFunds
	if !errors.As(err, &got) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestGuard_BusinessErrorsDoNotTripBreaker(t *testing.T) {
	g := resilience.NewGuard("test", 2)

	// Far more rejections than the trip threshold.
	for i := 0; i < 20; i++ {
		_ = g.Do(context.Background(), "withdraw", func() error {
			return &domain.ErrInsufficientFunds{}
		})
	}

	err := g.Do(context.Background(), "withdraw", func() error { return nil })
	if err != nil {
		t.Fatalf("breaker tripped on business errors: %v", err)
	}
}

func TestGuard_ShedsLoadWhenFull(t *testing.T) {
	g := resilience.NewGuard("test", 1)

	block := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = g.Do(context.Background(), "transfer", func() error {
			close(started)
			<-block
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := g.Do(ctx, "transfer", func() error { return nil })
	close(block)

	var overloaded *domain.ErrOverloaded
	if !errors.As(err, &overloaded) {
		t.Fatalf("expected ErrOverloaded, got %v", err)
	}
}
