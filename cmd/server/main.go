package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/homefix/service-booking/internal/application"
	"github.com/homefix/service-booking/internal/bootstrap"
	"github.com/homefix/service-booking/internal/common/database"
	"github.com/homefix/service-booking/internal/common/health"
	"github.com/homefix/service-booking/internal/common/kafka"
	"github.com/homefix/service-booking/internal/common/logger"
	"github.com/homefix/service-booking/internal/common/middleware"
	"github.com/homefix/service-booking/internal/common/tracing"
	"github.com/homefix/service-booking/internal/config"
	bookingDomain "github.com/homefix/service-booking/internal/domain/booking"
	bookingEvents "github.com/homefix/service-booking/internal/events"
	"github.com/homefix/service-booking/internal/handler"
	"github.com/homefix/service-booking/internal/repository"
	"github.com/homefix/service-booking/internal/repository/migrations"
	"go.uber.org/zap"
)

const serviceName = "service-booking"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize tracing
	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Enabled:     cfg.TracingConfig.Enabled,
		Endpoint:    cfg.TracingConfig.Endpoint,
		ServiceName: serviceName,
		Environment: cfg.AppEnv,
	})
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:         cfg.DBConfig.Host,
		Port:         cfg.DBConfig.Port,
		User:         cfg.DBConfig.User,
		Password:     cfg.DBConfig.Password,
		DBName:       cfg.DBConfig.DBName,
		SSLMode:      cfg.DBConfig.SSLMode,
		MaxOpenConns: cfg.DBConfig.MaxOpenConns,
		MaxIdleConns: cfg.DBConfig.MaxIdleConns,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.IsDevelopment() {
		if err := db.AutoMigrate(repository.Models()...); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(dbConfig.DatabaseURL(), migrations.FS, ".", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	st := repository.NewGormStore(db)
	clock := application.NewClock()

	if cfg.SeedOnStart {
		if _, err := bootstrap.Seed(ctx, st, clock, log); err != nil {
			log.Fatal("failed to seed database", zap.Error(err))
		}
	}

	// Initialize Kafka producer
	var publisher kafka.Publisher = kafka.NopPublisher{}
	if cfg.KafkaConfig.Enabled() {
		producer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = producer.Close() }()
		publisher = producer
	} else {
		log.Warn("no Kafka brokers configured, booking events will not be published")
	}

	// Initialize application services
	recorder := application.NewEventRecorder(clock, publisher, log)
	engine := application.NewAssignmentEngine(
		recorder,
		clock,
		application.RandomPicker,
		cfg.BookingConfig.EnforceManualAssignmentChecks,
	)
	bookingService := application.NewBookingService(
		st,
		engine,
		recorder,
		bookingDomain.NewRetryPolicy(cfg.BookingConfig.MaxRetries),
		clock,
		log,
	)
	providerService := application.NewProviderService(st, clock, log)
	customerService := application.NewCustomerService(st, clock, log)
	eventService := application.NewEventService(st)

	// Start provider event consumer in a goroutine
	if cfg.KafkaConfig.Enabled() {
		groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
		providerConsumer := bookingEvents.NewProviderEventConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			providerService,
			log,
		)
		defer func() { _ = providerConsumer.Close() }()

		go func() {
			log.Info("starting provider event consumer")
			if err := providerConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("provider event consumer error", zap.Error(err))
			}
		}()
	}

	// Setup Gin router
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	health.NewHandler(db, serviceName).RegisterRoutes(router)

	// Register routes
	handler.NewBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup)
	handler.NewAdminBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup)
	handler.NewProviderHandler(providerService).RegisterRoutes(&router.RouterGroup)
	handler.NewCustomerHandler(customerService).RegisterRoutes(&router.RouterGroup)
	handler.NewEventHandler(eventService).RegisterRoutes(&router.RouterGroup)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("failed to flush traces", zap.Error(err))
	}

	log.Info("service-booking stopped")
}
