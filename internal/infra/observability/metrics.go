package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/minibank/minibank-go/internal/domain"
)

// Metrics holds all Prometheus metrics for the ledger.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	opDuration        *prometheus.HistogramVec
	opFailures        *prometheus.CounterVec
	transactionsTotal *prometheus.CounterVec
	loginsTotal       *prometheus.CounterVec

	totalAssets   prometheus.Gauge
	totalAccounts prometheus.Gauge
	totalUsers    prometheus.Gauge
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		opDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "minibank_operation_duration_seconds",
				Help:    "Duration of ledger operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		opFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minibank_operation_failures_total",
				Help: "Total rejected ledger operations by reason.",
			},
			[]string{"operation", "reason"},
		),
		transactionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minibank_transactions_total",
				Help: "Total committed ledger transactions by type.",
			},
			[]string{"type"},
		),
		loginsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minibank_logins_total",
				Help: "Total login attempts by result.",
			},
			[]string{"result"},
		),
		totalAssets: factory.NewGauge(prometheus.GaugeOpts{
			Name: "minibank_total_assets",
			Help: "Sum of balances over active accounts.",
		}),
		totalAccounts: factory.NewGauge(prometheus.GaugeOpts{
			Name: "minibank_total_accounts",
			Help: "Number of registered accounts, active or not.",
		}),
		totalUsers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "minibank_total_users",
			Help: "Number of registered users.",
		}),
	}
}

// RecordOperationDuration records the duration of a ledger operation.
func (m *Metrics) RecordOperationDuration(operation string, d time.Duration) {
	m.opDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrOperationFailure counts a rejected operation.
func (m *Metrics) IncrOperationFailure(operation, reason string) {
	m.opFailures.WithLabelValues(operation, reason).Inc()
}

// IncrTransaction counts a committed transaction by type.
func (m *Metrics) IncrTransaction(txType domain.TransactionType) {
	m.transactionsTotal.WithLabelValues(string(txType)).Inc()
}

// IncrLogin counts a login attempt: "success", "failure" or "locked".
func (m *Metrics) IncrLogin(result string) {
	m.loginsTotal.WithLabelValues(result).Inc()
}

// SetLedgerStatistics publishes the refreshed derived statistics.
func (m *Metrics) SetLedgerStatistics(stats domain.Statistics) {
	assets, _ := stats.TotalAssets.Float64()
	m.totalAssets.Set(assets)
	m.totalAccounts.Set(float64(stats.TotalAccounts))
	m.totalUsers.Set(float64(stats.TotalUsers))
}
