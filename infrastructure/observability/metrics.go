package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"raffler/config"
	"raffler/domain/entities"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricsProvider manages OpenTelemetry metrics for the raffle service
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	// Metric instruments
	rafflesCreatedCounter        metric.Int64Counter
	ticketsIssuedCounter         metric.Int64Counter
	ticketsClaimedCounter        metric.Int64Counter
	drawsCounter                 metric.Int64Counter
	winnersDrawnCounter          metric.Int64Counter
	verificationsCounter         metric.Int64Counter
	rejectionsCounter            metric.Int64Counter
	operationDurationHist        metric.Float64Histogram
	natsMessagesPublishedCounter metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	var exporter sdkmetric.Exporter
	var err error
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
	)
	if err := mp.initializeWithReader(reader); err != nil {
		return err
	}

	// Set as global meter provider
	otel.SetMeterProvider(mp.meterProvider)

	log.Info("Metrics provider initialized successfully")
	return nil
}

// initializeWithReader builds the meter provider around reader. Callers
// hold mp.mu.
func (mp *MetricsProvider) initializeWithReader(reader sdkmetric.Reader) error {
	res, err := resource.Merge(
		resource.Default(),
		// schemaless so the merge never conflicts with the SDK default schema
		resource.NewSchemaless(
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	mp.meter = mp.meterProvider.Meter("raffler")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	return nil
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	var err error

	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&mp.rafflesCreatedCounter, RafflesCreatedTotal, "Total number of raffles created"},
		{&mp.ticketsIssuedCounter, TicketsIssuedTotal, "Total number of tickets generated"},
		{&mp.ticketsClaimedCounter, TicketsClaimedTotal, "Total number of tickets claimed"},
		{&mp.drawsCounter, DrawsTotal, "Total number of completed drawings"},
		{&mp.winnersDrawnCounter, WinnersDrawnTotal, "Total number of winners drawn"},
		{&mp.verificationsCounter, VerificationsTotal, "Total number of successful ticket verifications"},
		{&mp.rejectionsCounter, RejectionsTotal, "Total number of operations rejected with a business error"},
		{&mp.natsMessagesPublishedCounter, NATSMessagesPublishedTotal, "Total number of NATS messages published"},
	}

	for _, c := range counters {
		*c.target, err = mp.meter.Int64Counter(
			c.name,
			metric.WithDescription(c.description),
			metric.WithUnit("1"),
		)
		if err != nil {
			return fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
	}

	mp.operationDurationHist, err = mp.meter.Float64Histogram(
		OperationDuration,
		metric.WithDescription("Duration of raffle operations in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create operation duration histogram: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordRaffleCreated records a new raffle and the tickets generated for it
func (mp *MetricsProvider) RecordRaffleCreated(totalTickets int64) {
	if !mp.isEnabled() {
		return
	}

	ctx := context.Background()
	mp.rafflesCreatedCounter.Add(ctx, 1)
	mp.ticketsIssuedCounter.Add(ctx, totalTickets)
}

// RecordTicketClaimed records a successful claim
func (mp *MetricsProvider) RecordTicketClaimed() {
	if !mp.isEnabled() {
		return
	}

	mp.ticketsClaimedCounter.Add(context.Background(), 1)
}

// RecordDraw records a completed drawing
func (mp *MetricsProvider) RecordDraw(winnerCount int) {
	if !mp.isEnabled() {
		return
	}

	ctx := context.Background()
	mp.drawsCounter.Add(ctx, 1)
	mp.winnersDrawnCounter.Add(ctx, int64(winnerCount))
}

// RecordVerification records a verification that passed the code check
func (mp *MetricsProvider) RecordVerification(hasWon bool) {
	if !mp.isEnabled() {
		return
	}

	outcome := OutcomeLost
	if hasWon {
		outcome = OutcomeWon
	}
	mp.verificationsCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelOutcome, outcome),
		),
	)
}

// RecordRejection records an operation refused with a business error
func (mp *MetricsProvider) RecordRejection(operation string, code entities.ErrorCode) {
	if !mp.isEnabled() {
		return
	}

	mp.rejectionsCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelOperation, operation),
			attribute.String(LabelErrorCode, string(code)),
		),
	)
}

// RecordNATSMessagePublished records a NATS message being published
func (mp *MetricsProvider) RecordNATSMessagePublished(eventType string) {
	if !mp.isEnabled() {
		return
	}

	mp.natsMessagesPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelEventType, eventType),
		),
	)
}

// RecordOperation records how long an operation took
func (mp *MetricsProvider) RecordOperation(operation string, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	mp.operationDurationHist.Record(context.Background(), duration.Seconds(),
		metric.WithAttributes(
			attribute.String(LabelOperation, operation),
		),
	)
}

// MeasureOperation returns a function to measure operation duration
// Usage:
//
//	defer mp.MeasureOperation("claim_ticket")()
func (mp *MetricsProvider) MeasureOperation(operation string) func() {
	start := time.Now()
	return func() {
		mp.RecordOperation(operation, time.Since(start))
	}
}

// isEnabled checks if metrics are enabled and instruments exist
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.meter != nil
}

// Global metrics provider instance
var (
	globalMetrics *MetricsProvider
	metricsOnce   sync.Once
)

// InitializeGlobalMetrics initializes the global metrics provider
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	var err error
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsProvider(cfg)
		err = globalMetrics.Initialize(ctx)
	})
	return err
}

// GetMetrics returns the global metrics provider
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	if globalMetrics != nil {
		return globalMetrics.Shutdown(ctx)
	}
	return nil
}
