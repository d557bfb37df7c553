package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront-service/auth"
	"github.com/yashrajoria/storefront-service/config"
	"github.com/yashrajoria/storefront-service/controllers"
	"github.com/yashrajoria/storefront-service/events"
	applogger "github.com/yashrajoria/storefront-service/logger"
	"github.com/yashrajoria/storefront-service/middleware"
	aws_pkg "github.com/yashrajoria/storefront-service/pkg/aws"
	"github.com/yashrajoria/storefront-service/routes"
	"github.com/yashrajoria/storefront-service/services"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	// --- AWS setup ---
	awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}

	var cloudWatchWriter io.Writer
	if cfg.CloudWatchLogsEnabled {
		cw, err := aws_pkg.NewCloudWatchLogsClient(ctx, awsCfg, cfg.CloudWatchLogGroup, routes.ServiceName)
		if err != nil {
			log.Printf("CloudWatch Logs init failed (non-fatal): %v", err)
		} else {
			cloudWatchWriter = cw
		}
	}

	logger, err := applogger.New(cfg.AppEnv, cloudWatchWriter)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	metricsClient := aws_pkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, cfg.CloudWatchEnabled)

	// --- Stores ---
	st, err := openStores(ctx, cfg, awsCfg, metricsClient, logger)
	if err != nil {
		logger.Fatal("Store initialization failed", zap.Error(err))
	}
	defer st.Close(logger)

	publisher := newPublisher(cfg, awsCfg, logger)
	defer publisher.Close()

	var queue services.ReconciliationQueue = services.NewMemoryQueue()
	if cfg.ReconcileQueueURL != "" {
		queue = services.NewSQSQueue(aws_pkg.NewSQSClient(awsCfg, cfg.ReconcileQueueURL))
	}

	var tokens auth.TokenManager
	var sessions middleware.SessionProvider = middleware.HeaderSessionProvider{}
	if cfg.SessionMode == config.SessionJWT {
		tokens, err = auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
		if err != nil {
			logger.Fatal("Token manager init failed", zap.Error(err))
		}
		sessions = middleware.NewJWTSessionProvider(tokens)
	}

	// --- Dependency injection ---
	cartService := services.NewCartService(st.accounts, st.displayCatalog, st.locker, logger)
	checkoutService := services.NewCheckoutService(
		st.accounts, st.orders, st.catalog, st.locker, queue, publisher, metricsClient,
		services.CheckoutOptions{FinalizeAttempts: cfg.CheckoutFinalizeAttempts},
		logger,
	)
	queryService := services.NewOrderQueryService(st.orders, st.accounts, st.displayCatalog, logger)
	productService := services.NewProductService(st.displayCatalog, logger)
	userService := services.NewUserService(st.accounts, tokens, logger)

	reconciler := services.NewReconciler(queue, checkoutService, metricsClient, cfg.ReconcileInterval, logger)
	reconcilerDone := make(chan struct{})
	go func() {
		defer close(reconcilerDone)
		reconciler.Run(ctx)
	}()

	// --- HTTP router ---
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := controllers.RegisterValidators(); err != nil {
		logger.Fatal("Validator registration failed", zap.Error(err))
	}

	rateLimiter := middleware.NewRateLimiter(ctx, cfg.RateLimitPerMinute, cfg.RateLimitBurst, 10*time.Minute)

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		middleware.MetricsMiddleware(metricsClient, routes.ServiceName),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.AllowedOrigins),
		rateLimiter.Middleware(),
		middleware.RequestTimeout(cfg.RequestTimeout),
	)

	routes.RegisterRoutes(r, &routes.Controllers{
		Cart:    controllers.NewCartController(cartService),
		Order:   controllers.NewOrderController(checkoutService, queryService),
		Product: controllers.NewProductController(productService),
		User:    controllers.NewUserController(userService),
	}, sessions)

	// --- HTTP server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(r, routes.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Storefront Service started",
			zap.String("port", cfg.Port),
			zap.String("session_mode", cfg.SessionMode),
			zap.String("events", cfg.EventsBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	<-ctx.Done()
	logger.Info("Initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	select {
	case <-reconcilerDone:
	case <-shutdownCtx.Done():
		logger.Warn("Reconciler did not stop in time")
	}

	logger.Info("Storefront Service stopped gracefully")
}

func newPublisher(cfg *config.Config, awsCfg sdkaws.Config, logger *zap.Logger) events.Publisher {
	switch cfg.EventsBackend {
	case config.EventsSNS:
		logger.Info("Publishing order events to SNS", zap.String("topic", cfg.OrderEventsTopicARN))
		return events.NewSNSPublisher(aws_pkg.NewSNSClient(awsCfg), cfg.OrderEventsTopicARN)
	case config.EventsKafka:
		logger.Info("Publishing order events to Kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaOrderTopic))
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
	default:
		return events.NoopPublisher{}
	}
}
