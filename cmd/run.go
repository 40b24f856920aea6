package cmd

import (
	"context"
	"fmt"
	"time"

	"raffler/application"
	"raffler/config"
	"raffler/database"
	"raffler/domain/services"
	"raffler/domain/utils"
	"raffler/infrastructure"
	"raffler/infrastructure/observability"
	"raffler/web"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	// Load configuration
	cfg := config.Get()
	if err := ConfigureLogging(cfg); err != nil {
		return err
	}
	log.WithField("environment", cfg.Environment).Info("Starting raffler...")

	// Initialize metrics
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics := observability.GetMetrics()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL(), cfg.StatementTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize event publishing
	var bus infrastructure.MessagePublisher
	var natsClient *infrastructure.NATSClient
	if cfg.NATSEnabled() {
		log.Info("Connecting to NATS...")
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer func() {
			if err := natsClient.Close(); err != nil {
				log.WithError(err).Error("Error closing NATS connection")
			}
		}()
		bus = natsClient
	} else {
		log.Info("NATS_SERVERS not set, events stay in process")
	}

	eventPublisher := infrastructure.NewNATSEventPublisher(bus, infrastructure.NewEventSubjectMapper(), metrics)
	if natsClient != nil {
		if err := eventPublisher.EnsureRaffleEventStream(natsClient); err != nil {
			return fmt.Errorf("failed to ensure event stream: %w", err)
		}
	}

	// Initialize unit of work factory
	uowFactory := infrastructure.NewUnitOfWorkFactory(db, eventPublisher)

	// Discord announcements
	if cfg.DiscordEnabled() {
		announcer, err := infrastructure.NewDiscordAnnouncer(cfg.DiscordToken, cfg.DiscordAnnounceChannelID)
		if err != nil {
			return fmt.Errorf("failed to initialize Discord announcer: %w", err)
		}
		announcer.Register(uowFactory)
		log.WithField("channelID", cfg.DiscordAnnounceChannelID).Info("Discord announcer enabled")
	}

	// Live feed
	hub := web.NewLiveHub()
	hub.SubscribeTo(uowFactory)
	go hub.Run(ctx)

	// Raffle controller
	managers := application.NewIPAllowList(cfg.ManagerIPs)
	if managers.Len() == 0 {
		log.Warn("MANAGER_IPS is empty, nobody can create or draw raffles")
	}
	listCache := web.NewListCache(cfg.ListCacheTTL)
	controller := application.NewRaffleController(
		uowFactory,
		services.NewSecretVault(cfg.SecretHashCost),
		utils.CryptoRandom{},
		managers,
		listCache,
		metrics,
	)

	// HTTP server
	router, err := web.NewRouter(cfg.TrustedProxies, web.NewHandler(controller, listCache, hub, db))
	if err != nil {
		return err
	}
	serveErr := web.NewServer(cfg.HTTPAddr, router).Run(ctx)

	// Cleanup resources
	log.Info("Shutting down raffler...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down metrics")
	}

	return serveErr
}

// ConfigureLogging applies the configured logrus level and format
func ConfigureLogging(cfg *config.Config) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	log.SetLevel(level)

	switch cfg.LogFormat {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
