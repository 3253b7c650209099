package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Kilat-Pet-Delivery/service-rental/internal/application"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/cache"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/config"
	bookingDomain "github.com/Kilat-Pet-Delivery/service-rental/internal/domain/booking"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/domain/vehicle"
	rentalEvents "github.com/Kilat-Pet-Delivery/service-rental/internal/events"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/handler"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/metrics"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/auth"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/database"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/health"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/kafka"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/logger"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/middleware"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/repository"
)

const serviceName = "service-rental"

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

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.Bool("persistence", cfg.PersistenceEnabled),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database and run migrations
	var db *gorm.DB
	if cfg.PersistenceEnabled {
		db = openDatabase(cfg, log)
	}

	// Initialize vehicle catalog, optionally behind Redis
	var catalog vehicle.Catalog = repository.NewMemoryVehicleCatalog()
	if db != nil {
		catalog = repository.NewGormVehicleCatalog(db)
	}
	if cfg.RedisConfig.Addr != "" {
		redisClient := cache.NewRedisClient(cfg.RedisConfig)
		defer func() { _ = redisClient.Close() }()
		catalog = cache.NewVehicleCache(catalog, redisClient, cfg.CatalogCacheTTL, log)
		log.Info("vehicle catalog cache enabled", zap.String("addr", cfg.RedisConfig.Addr))
	}

	// Initialize booking store and replay the journal
	var journal bookingDomain.Journal
	if db != nil {
		journal = repository.NewGormBookingJournal(db)
	}
	store := repository.NewMemoryBookingStore(journal, log)
	restored, err := store.Restore(ctx)
	if err != nil {
		log.Fatal("failed to restore bookings", zap.Error(err))
	}
	log.Info("booking store ready", zap.Int("restored", restored))

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		cfg.JWTConfig.AccessTTL,
		cfg.JWTConfig.RefreshTTL,
	)

	// Initialize metrics
	m := metrics.New(prometheus.DefaultRegisterer)

	// Initialize Kafka producer
	var publisher application.EventPublisher
	if len(cfg.KafkaConfig.Brokers) > 0 {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = kafkaProducer.Close() }()
		publisher = kafkaProducer
	}

	// Initialize application services
	bookingService := application.NewBookingService(
		store,
		catalog,
		bookingDomain.NewHourlyPricingStrategy(),
		publisher,
		m,
		log,
	)
	vehicleService := application.NewVehicleService(catalog, log)

	// Initialize and start trip event consumer in a goroutine
	if len(cfg.KafkaConfig.Brokers) > 0 {
		groupID := cfg.KafkaConfig.GroupPrefix + "rental-service"
		tripConsumer := rentalEvents.NewTripEventConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			bookingService,
			m,
			log,
		)
		defer func() { _ = tripConsumer.Close() }()

		go func() {
			log.Info("starting trip event consumer")
			if err := tripConsumer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("trip event consumer error", zap.Error(err))
			}
		}()
	}

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check and metrics routes
	health.NewHandler(db, serviceName).RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Register routes
	handler.NewBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewVehicleHandler(vehicleService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewAdminBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}

func openDatabase(cfg *config.ServiceConfig, log *zap.Logger) *gorm.DB {
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.VehicleModel{}, &repository.BookingModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(dbConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}
	return db
}
