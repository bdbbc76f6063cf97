package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

type MetricsCollector struct {
	registry             *prometheus.Registry
	confirmations        *prometheus.CounterVec
	confirmationDuration prometheus.Histogram
	balanceConflicts     prometheus.Counter
	accountBalance       *prometheus.GaugeVec
	overduePayments      prometheus.Gauge
	httpRequests         *prometheus.CounterVec
	httpDuration         *prometheus.HistogramVec
}

func NewMetricsCollector() *MetricsCollector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &MetricsCollector{
		registry: registry,
		confirmations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_payment_confirmations_total",
			Help: "Payment confirmations by outcome",
		}, []string{"outcome"}),
		confirmationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_payment_confirmation_duration_seconds",
			Help:    "Time taken to confirm a payment",
			Buckets: prometheus.DefBuckets,
		}),
		balanceConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledger_balance_conflicts_total",
			Help: "Balance compare-and-swap attempts that lost to a concurrent writer",
		}),
		accountBalance: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ledger_account_balance",
			Help: "Account balance after the last change made by this instance",
		}, []string{"account_id"}),
		overduePayments: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_overdue_pending_payments",
			Help: "Pending payments whose payment date has passed, as of the last sweep",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *MetricsCollector) ObserveConfirmation(outcome string, duration time.Duration) {
	m.confirmations.WithLabelValues(outcome).Inc()
	m.confirmationDuration.Observe(duration.Seconds())
}

func (m *MetricsCollector) SetAccountBalance(accountID uuid.UUID, balance decimal.Decimal) {
	m.accountBalance.WithLabelValues(accountID.String()).Set(balance.InexactFloat64())
}

func (m *MetricsCollector) IncBalanceConflict() {
	m.balanceConflicts.Inc()
}

func (m *MetricsCollector) SetOverduePayments(count int) {
	m.overduePayments.Set(float64(count))
}

func (m *MetricsCollector) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *MetricsCollector) GetHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
