// Package resilience guards the ledger's money-movement operations with a
// bulkhead (bounded in-flight mutations) and a circuit breaker. The ledger
// itself never retries: a committed operation must run exactly once, so a
// failure is reported to the caller, who alone knows whether retrying is safe.
package resilience

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/semaphore"

	"github.com/minibank/minibank-go/internal/domain"
)

// Guard combines a bulkhead with a circuit breaker. Business rejections
// (insufficient funds, not found, inactive) are successes from the breaker's
// point of view; only infrastructure faults and shed load count as failures.
type Guard struct {
	sem     *semaphore.Weighted
	breaker *gobreaker.CircuitBreaker
}

// NewGuard creates a guard admitting at most maxConcurrency operations.
func NewGuard(name string, maxConcurrency int) *Guard {
	return &Guard{
		sem: semaphore.NewWeighted(int64(maxConcurrency)),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 3,                // half-open: allow 3 requests
			Interval:    30 * time.Second, // closed: reset counters every 30s
			Timeout:     10 * time.Second, // open -> half-open after 10s
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 5 && failureRatio >= 0.6
			},
			IsSuccessful: func(err error) bool {
				return err == nil || domain.IsDomainError(err)
			},
		}),
	}
}

// Do runs fn behind the bulkhead and the breaker. It returns ErrOverloaded
// when no slot frees up before the context deadline, and ErrCircuitOpen when
// the breaker rejects the call.
func (g *Guard) Do(ctx context.Context, operation string, fn func() error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return &domain.ErrOverloaded{Operation: operation}
	}
	defer g.sem.Release(1)

	_, err := g.breaker.Execute(func() (any, error) {
		return nil, fn()
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return &domain.ErrCircuitOpen{Operation: operation}
	}
	return err
}
