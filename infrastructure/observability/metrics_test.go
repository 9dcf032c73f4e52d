package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nebulines/config"
	"nebulines/events"
	"nebulines/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, exporter string) *MetricsProvider {
	cfg := config.NewTestConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.ExporterType = exporter
	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp
}

func scrape(t *testing.T, mp *MetricsProvider) (int, string) {
	srv := httptest.NewServer(mp.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestMetricsProvider_PrometheusExport(t *testing.T) {
	mp := newTestProvider(t, ExporterPrometheus)

	mp.RecordBetPlaced(true, 100)
	mp.RecordEventResolved(true, 200, 100)
	mp.RecordLedgerAudit(2, nil)
	mp.RecordEventPublished("nats", "bet_placed", errors.New("timeout"))
	mp.RecordHTTPRequest(http.MethodPost, "/api/events/{eventID}/resolve", http.StatusOK, 15*time.Millisecond)

	status, body := scrape(t, mp)

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "nebulines_bets_placed")
	assert.Contains(t, body, "nebulines_settlement_paid_out")
	assert.Contains(t, body, "nebulines_ledger_discrepancies")
	assert.Contains(t, body, `outcome="error"`)
	assert.Contains(t, body, "nebulines_http_request_duration")
}

func TestMetricsProvider_Disabled(t *testing.T) {
	mp := newTestProvider(t, ExporterNone)

	// Recording against the no-op meter must not panic
	mp.RecordBetPlaced(false, 10)
	mp.RecordLedgerEntry("deposit")

	status, _ := scrape(t, mp)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMetricsProvider_UninitializedIsSafe(t *testing.T) {
	mp := NewMetricsProvider(config.NewTestConfig())

	assert.NotPanics(t, func() {
		mp.RecordBetPlaced(true, 10)
		mp.RecordLedgerAudit(0, nil)
	})
}

func TestMetricsProvider_UnknownExporter(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.ExporterType = "carrier-pigeon"

	err := NewMetricsProvider(cfg).Initialize(context.Background())

	assert.ErrorContains(t, err, "unknown exporter type")
}

func TestMetricsProvider_SubscribeToBus(t *testing.T) {
	mp := newTestProvider(t, ExporterPrometheus)
	bus := events.NewBus()
	mp.SubscribeToBus(bus)

	bus.Emit(context.Background(), events.BetPlacedEvent{Amount: 40, Prediction: false})
	bus.Emit(context.Background(), events.BalanceChangeEvent{TransactionType: models.TransactionTypeBetPlaced, Amount: 40})
	bus.Wait()

	_, body := scrape(t, mp)
	assert.Contains(t, body, `prediction="false"`)
	assert.Contains(t, body, `type="bet_placed"`)
}
