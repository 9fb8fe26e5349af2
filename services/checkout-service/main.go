package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awspkg "github.com/AI-zik/shoe-store-backend/pkg/aws"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/config"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/controllers"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/database"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/kafka"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/repository"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/routes"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/services"
	"github.com/AI-zik/shoe-store-backend/services/common/auth"
	apperrors "github.com/AI-zik/shoe-store-backend/services/common/errors"
	"github.com/AI-zik/shoe-store-backend/services/common/logger"
	commonmw "github.com/AI-zik/shoe-store-backend/services/common/middleware"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const metricsNamespace = "ShoeStore/Checkout"

func main() {
	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	awsCfg, err := awspkg.LoadAWSConfig(ctx)
	if err != nil {
		log.Fatalf("failed to load aws config: %v", err)
	}

	var cwWriter io.Writer
	if cfg.CloudWatchLogGroup != "" {
		cw, err := awspkg.NewCloudWatchLogsClient(ctx, awsCfg, cfg.CloudWatchLogGroup, routes.ServiceName)
		if err != nil {
			log.Printf("cloudwatch logs disabled: %v", err)
		} else {
			cwWriter = cw
		}
	}

	appLogger, err := logger.New(cfg.AppEnv, cwWriter)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()
	zap.ReplaceGlobals(appLogger)

	if cfg.UseSecretsManager {
		if err := cfg.ApplySecrets(ctx, awspkg.NewSecretsClient(awsCfg)); err != nil {
			appLogger.Fatal("Failed to load secrets", zap.Error(err))
		}
	}
	if err := cfg.Validate(); err != nil {
		appLogger.Fatal("Invalid configuration", zap.Error(err))
	}

	// --- Storage ---
	dbOpts := database.Options{Driver: cfg.DBDriver, DSN: cfg.SQLitePath}
	if cfg.DBDriver != "sqlite" {
		dbOpts.DSN = database.PostgresDSN(cfg.PostgresHost, cfg.PostgresUser, cfg.PostgresPassword,
			cfg.PostgresDB, cfg.PostgresPort, cfg.PostgresSSLMode, cfg.PostgresTimeZone)
	}
	db, err := database.Connect(dbOpts, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	store := repository.NewGormStore(db)

	processed := services.NewNoopProcessedEvents()
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			appLogger.Warn("Redis unavailable, duplicate payments are caught by the ledger only", zap.Error(err))
		} else {
			defer redisClient.Close()
			processed = services.NewRedisProcessedEvents(redisClient, services.DefaultProcessedTTL)
		}
	}

	// --- Integrations ---
	var metrics awspkg.MetricsRecorder = awspkg.NewDisabledMetrics()
	if cfg.MetricsEnabled {
		metrics = awspkg.NewMetricsClient(awsCfg, metricsNamespace, true)
	}

	publisher := services.NewNoopOrderPublisher()
	switch cfg.EventBus {
	case config.EventBusSNS:
		publisher = services.NewSNSOrderPublisher(awspkg.NewSNSClient(awsCfg), cfg.OrderEventsTopicARN)
	case config.EventBusKafka:
		producer := kafka.NewOrderEventProducer(cfg.KafkaBrokers, cfg.KafkaOrderTopic, appLogger)
		defer producer.Close()
		publisher = producer
	}
	appLogger.Info("Order events", zap.String("bus", cfg.EventBus))

	stripeSvc := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookKey, nil)
	reconciler := services.NewReconciler(stripeSvc, store, processed, publisher, metrics, appLogger)

	if cfg.PaymentEventsQueueURL != "" {
		poller := awspkg.NewSQSConsumer(awsCfg, cfg.PaymentEventsQueueURL, appLogger)
		consumer := services.NewPaymentEventConsumer(poller, stripeSvc, reconciler, appLogger)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				appLogger.Error("Payment event consumer stopped", zap.Error(err))
			}
		}()
	}

	// --- HTTP ---
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(commonmw.RequestID())
	r.Use(commonmw.RequestLogger(appLogger))
	r.Use(commonmw.SecurityHeaders())
	r.Use(commonmw.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(commonmw.MetricsMiddleware(metrics, routes.ServiceName))
	r.Use(apperrors.ErrorMiddleware())
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	checkoutCfg := services.CheckoutConfig{Currency: cfg.Currency, SuccessURL: cfg.SuccessURL, CancelURL: cfg.CancelURL}
	routes.RegisterRoutes(r, routes.Controllers{
		Checkout: controllers.NewCheckoutController(services.NewCheckoutService(store, stripeSvc, checkoutCfg, metrics, appLogger)),
		Webhook:  controllers.NewWebhookController(reconciler, appLogger),
		Cart:     controllers.NewCartController(services.NewCartService(store, appLogger)),
		Orders:   controllers.NewOrderController(services.NewOrderService(store)),
		Users:    controllers.NewUserController(services.NewUserService(store, stripeSvc, appLogger)),
	}, auth.NewTokenValidator(cfg.JWTSecret))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Checkout service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for an interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down checkout service...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	reconciler.Drain()
	if err := database.Close(db); err != nil {
		appLogger.Error("Failed to close database", zap.Error(err))
	}
	appLogger.Info("Checkout service stopped gracefully")
}
