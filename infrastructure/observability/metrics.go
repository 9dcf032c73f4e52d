package observability

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"nebulines/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// Exporter types
const (
	ExporterPrometheus = "prometheus"
	ExporterConsole    = "console"
	ExporterOTLP       = "otlp"
	ExporterNone       = "none"
)

// MetricsProvider manages OpenTelemetry metrics for the nebulines service
type MetricsProvider struct {
	config        config.MetricsConfig
	environment   string
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	registry      *prometheus.Registry
	initialized   bool
	mu            sync.RWMutex

	// Metric instruments
	betsPlacedCounter       metric.Int64Counter
	betStakeCounter         metric.Int64Counter
	eventsResolvedCounter   metric.Int64Counter
	payoutsCounter          metric.Int64Counter
	houseRemainderCounter   metric.Int64Counter
	ledgerEntriesCounter    metric.Int64Counter
	ledgerDiscrepancyGauge  metric.Int64Gauge
	ledgerAuditRunsCounter  metric.Int64Counter
	eventsPublishedCounter  metric.Int64Counter
	httpRequestsCounter     metric.Int64Counter
	httpRequestDurationHist metric.Float64Histogram
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config:      cfg.Metrics,
		environment: cfg.Environment,
	}
}

// Initialize sets up the OpenTelemetry metrics provider. When metrics are disabled
// the instruments are backed by a no-op meter so callers never need to check.
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	if !mp.config.Enabled || mp.config.ExporterType == ExporterNone {
		log.WithField("exporterType", mp.config.ExporterType).Info("OpenTelemetry metrics disabled")
		mp.meter = noop.NewMeterProvider().Meter(mp.config.ServiceName)
		if err := mp.createInstruments(); err != nil {
			return err
		}
		mp.initialized = true
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.ServiceName),
			attribute.String("environment", mp.environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	var reader sdkmetric.Reader
	switch mp.config.ExporterType {
	case ExporterPrometheus:
		mp.registry = prometheus.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(mp.registry))
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		reader = exporter
		log.Info("Using prometheus metric exporter")

	case ExporterConsole:
		exporter, err := stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(mp.exportInterval()))
		log.Info("Using console metric exporter")

	case ExporterOTLP:
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err := otlpmetricgrpc.New(dialCtx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(mp.exportInterval()))
		log.WithField("endpoint", mp.config.OTLPEndpoint).Info("Using OTLP metric exporter")

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.ExporterType)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp.meterProvider)
	mp.meter = mp.meterProvider.Meter(mp.config.ServiceName)

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

func (mp *MetricsProvider) exportInterval() time.Duration {
	if mp.config.ExportIntervalMs <= 0 {
		return 15 * time.Second
	}
	return time.Duration(mp.config.ExportIntervalMs) * time.Millisecond
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	var err error

	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
		unit        string
	}{
		{&mp.betsPlacedCounter, BetsPlacedTotal, "Total number of admitted bets", "1"},
		{&mp.betStakeCounter, BetStakeTotal, "Total nebulines staked on admitted bets", "{nebuline}"},
		{&mp.eventsResolvedCounter, EventsResolvedTotal, "Total number of resolved events", "1"},
		{&mp.payoutsCounter, PayoutsTotal, "Total nebulines credited to winning bets", "{nebuline}"},
		{&mp.houseRemainderCounter, HouseRemainderTotal, "Total losing stake not paid out to winners", "{nebuline}"},
		{&mp.ledgerEntriesCounter, LedgerEntriesTotal, "Total number of ledger entries written", "1"},
		{&mp.ledgerAuditRunsCounter, LedgerAuditRunsTotal, "Total number of ledger reconciliation runs", "1"},
		{&mp.eventsPublishedCounter, EventsPublishedTotal, "Total number of domain events sent to the external sink", "1"},
		{&mp.httpRequestsCounter, HTTPRequestsTotal, "Total number of HTTP requests served", "1"},
	}
	for _, c := range counters {
		*c.target, err = mp.meter.Int64Counter(c.name,
			metric.WithDescription(c.description),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return fmt.Errorf("failed to create %s counter: %w", c.name, err)
		}
	}

	mp.ledgerDiscrepancyGauge, err = mp.meter.Int64Gauge(
		LedgerDiscrepancies,
		metric.WithDescription("Accounts whose balance differed from the ledger at the last audit"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create ledger discrepancy gauge: %w", err)
	}

	mp.httpRequestDurationHist, err = mp.meter.Float64Histogram(
		HTTPRequestDuration,
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request duration histogram: %w", err)
	}

	return nil
}

// Handler serves the prometheus scrape endpoint. It responds 404 when
// another exporter is configured.
func (mp *MetricsProvider) Handler() http.Handler {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	if mp.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(mp.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordBetPlaced records an admitted bet
func (mp *MetricsProvider) RecordBetPlaced(prediction bool, amount int64) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(attribute.Bool(LabelPrediction, prediction))
	mp.betsPlacedCounter.Add(context.Background(), 1, attrs)
	mp.betStakeCounter.Add(context.Background(), amount, attrs)
}

// RecordEventResolved records a settled event
func (mp *MetricsProvider) RecordEventResolved(result bool, paidOut, houseRemainder int64) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(attribute.Bool(LabelResult, result))
	mp.eventsResolvedCounter.Add(context.Background(), 1, attrs)
	mp.payoutsCounter.Add(context.Background(), paidOut, attrs)
	mp.houseRemainderCounter.Add(context.Background(), houseRemainder, attrs)
}

// RecordLedgerEntry records a ledger entry of the given transaction type
func (mp *MetricsProvider) RecordLedgerEntry(transactionType string) {
	if !mp.isEnabled() {
		return
	}

	mp.ledgerEntriesCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelType, transactionType)),
	)
}

// RecordLedgerAudit records the outcome of a reconciliation run
func (mp *MetricsProvider) RecordLedgerAudit(discrepancies int, err error) {
	if !mp.isEnabled() {
		return
	}

	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	mp.ledgerAuditRunsCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelOutcome, outcome)),
	)
	if err == nil {
		mp.ledgerDiscrepancyGauge.Record(context.Background(), int64(discrepancies))
	}
}

// RecordEventPublished records a domain event handed to an external sink
func (mp *MetricsProvider) RecordEventPublished(sink, eventType string, err error) {
	if !mp.isEnabled() {
		return
	}

	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	mp.eventsPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelSink, sink),
			attribute.String(LabelEventType, eventType),
			attribute.String(LabelOutcome, outcome),
		),
	)
}

// RecordHTTPRequest records a served request with its duration
func (mp *MetricsProvider) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelMethod, method),
		attribute.String(LabelRoute, route),
		attribute.String(LabelStatus, strconv.Itoa(status)),
	)
	mp.httpRequestsCounter.Add(context.Background(), 1, attrs)
	mp.httpRequestDurationHist.Record(context.Background(), duration.Seconds(), attrs)
}

// isEnabled checks if the provider has been initialized
func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized
}
