package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"nebulines/config"
	"nebulines/database"
	"nebulines/events"
	"nebulines/infrastructure"
	"nebulines/infrastructure/observability"
	"nebulines/repository"
	"nebulines/server"
	"nebulines/service"
	"nebulines/workers"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ConfigureLogging applies the configured level and picks JSON output outside development
func ConfigureLogging(cfg *config.Config) {
	log.SetOutput(os.Stdout)
	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("logLevel", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg)
	log.WithField("environment", cfg.Environment).Info("Starting nebulines...")

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metrics.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Failed to shut down metrics provider")
		}
	}()

	eventBus := events.NewBus()
	metrics.SubscribeToBus(eventBus)

	closeSinks, err := connectEventSinks(ctx, cfg, eventBus, metrics, repository.NewBetRepository(db))
	if err != nil {
		return err
	}
	// Handlers may still be publishing after the server stops
	defer func() {
		eventBus.Wait()
		closeSinks()
	}()

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	services := server.Services{
		Betting:    service.NewBettingService(uowFactory),
		Settlement: service.NewSettlementService(uowFactory, cfg),
		Events:     service.NewEventService(uowFactory),
		Bank:       service.NewBankService(uowFactory, cfg),
	}
	log.Info("Services initialized successfully")

	auditWorker := workers.NewLedgerAuditWorker(
		service.NewLedgerAuditService(repository.NewLedgerAuditRepository(db)),
		metrics,
	)
	stopAudit, err := auditWorker.Start(ctx, cfg.LedgerAuditSchedule)
	if err != nil {
		return err
	}
	defer stopAudit()

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.New(services, cfg, metrics, db).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", cfg.HTTPAddr).Info("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server exited with error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info("Shutdown completed")
	return err
}

// connectEventSinks wires the optional external fan-out of committed domain events
func connectEventSinks(ctx context.Context, cfg *config.Config, bus *events.Bus, metrics *observability.MetricsProvider, pools infrastructure.PoolReader) (func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.EventSink {
	case config.EventSinkNATS:
		client := infrastructure.NewNATSClient(cfg.NATSServers)
		if err := client.Connect(); err != nil {
			return nil, err
		}
		closers = append(closers, func() {
			if err := client.Close(); err != nil {
				log.WithError(err).Warn("Failed to close NATS connection")
			}
		})
		if err := client.EnsureDomainEventStream(infrastructure.NewEventSubjectMapper().GetAllSubjects()); err != nil {
			closeAll()
			return nil, err
		}
		infrastructure.NewEventForwarder(client, config.EventSinkNATS, metrics).Register(bus)

	case config.EventSinkKafka:
		publisher := infrastructure.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		closers = append(closers, func() {
			if err := publisher.Close(); err != nil {
				log.WithError(err).Warn("Failed to close Kafka writer")
			}
		})
		infrastructure.NewEventForwarder(publisher, config.EventSinkKafka, metrics).Register(bus)
	}

	if cfg.RedisAddr != "" {
		client, err := infrastructure.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			closeAll()
			return nil, err
		}
		closers = append(closers, func() { _ = client.Close() })
		infrastructure.NewRedisPoolBroadcaster(client, pools).Register(bus)
		log.WithField("addr", cfg.RedisAddr).Info("Broadcasting pool updates to Redis")
	}

	return closeAll, nil
}
