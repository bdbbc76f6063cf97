package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCollector(t *testing.T) {
	collector := NewMetricsCollector()
	accountID := uuid.New()

	collector.ObserveConfirmation("confirmed", 20*time.Millisecond)
	collector.ObserveConfirmation("confirmed", 10*time.Millisecond)
	collector.ObserveConfirmation("insufficient_funds", time.Millisecond)
	collector.IncBalanceConflict()
	collector.SetAccountBalance(accountID, decimal.RequireFromString("60.50"))
	collector.SetOverduePayments(3)
	collector.ObserveRequest(http.MethodPost, "/payments/{id}/confirm", http.StatusOK, 5*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(collector.confirmations.WithLabelValues("confirmed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.confirmations.WithLabelValues("insufficient_funds")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.balanceConflicts))
	assert.Equal(t, 60.5, testutil.ToFloat64(collector.accountBalance.WithLabelValues(accountID.String())))
	assert.Equal(t, float64(3), testutil.ToFloat64(collector.overduePayments))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.httpRequests.WithLabelValues("POST", "/payments/{id}/confirm", "200")))

	w := httptest.NewRecorder()
	collector.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ledger_payment_confirmations_total")
	assert.Contains(t, w.Body.String(), "ledger_overdue_pending_payments 3")
}
