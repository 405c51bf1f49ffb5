package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/seu-repo/payment-relay/internal/adapter/cache"
	pushAdapter "github.com/seu-repo/payment-relay/internal/adapter/external/notification"
	paymentAdapter "github.com/seu-repo/payment-relay/internal/adapter/external/payment"
	"github.com/seu-repo/payment-relay/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/payment-relay/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/payment-relay/internal/adapter/queue"
	"github.com/seu-repo/payment-relay/internal/adapter/storage/postgres"
	"github.com/seu-repo/payment-relay/internal/adapter/vault"
	"github.com/seu-repo/payment-relay/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/payment-relay/internal/observability/telemetry"
	"github.com/seu-repo/payment-relay/internal/ports"
	"github.com/seu-repo/payment-relay/internal/service/health"
	"github.com/seu-repo/payment-relay/internal/service/notification"
	"github.com/seu-repo/payment-relay/internal/service/payment"
	"github.com/seu-repo/payment-relay/pkg/config"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// 2. Initialize Logger
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer logger.Sync()

	logger.Info("Starting payment relay",
		zap.String("service", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	// 3. Pull secrets from Vault when enabled
	if cfg.Vault.Enabled {
		applyVaultSecrets(cfg, logger)
	}
	if cfg.Payment.Stripe.SecretKey == "" {
		logger.Fatal("STRIPE_SECRET_KEY is not set")
	}

	// 4. Initialize OpenTelemetry (Distributed Tracing)
	endpoint := ""
	if cfg.OpenTelemetry.Enabled {
		endpoint = cfg.OpenTelemetry.Jaeger.Endpoint
	}
	tracerProvider, err := telemetry.InitTracer(cfg.OpenTelemetry.ServiceName, cfg.App.Version, endpoint, cfg.OpenTelemetry.Jaeger.SamplerParam)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		if err := telemetry.Shutdown(context.Background(), tracerProvider); err != nil {
			logger.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	healthService := health.NewService(cfg.App.Version, logger)

	// 5. Initialize PostgreSQL (notification collections)
	db, err := postgres.NewConnection(cfg.Database.URL, postgres.PoolConfig{
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogQueries:      cfg.Database.LogQueries,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()
	healthService.RegisterPing("database", true, sqlDB.PingContext)

	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(db); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// 6. Initialize claim store (Redis, in-memory fallback)
	var claims ports.Cache
	if cfg.Redis.URL != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis.URL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		healthService.RegisterPing("redis", false, func(ctx context.Context) error {
			return redisCache.Client().Ping(ctx).Err()
		})
		claims = redisCache
	} else {
		logger.Warn("REDIS_URL not set, delivery claims are local to this instance")
		claims = cache.NewLocalCache(time.Minute, logger)
	}
	defer claims.Close()

	// 7. Initialize Message Queue
	messageQueue, err := queue.New(queue.Options{
		Driver: cfg.Queue.Driver,
		NATS: queue.NATSOptions{
			URL:           cfg.Queue.NATS.URL,
			Name:          cfg.App.Name,
			QueueGroup:    cfg.Queue.NATS.QueueGroup,
			MaxReconnects: cfg.Queue.NATS.MaxReconnects,
			ReconnectWait: cfg.Queue.NATS.ReconnectWait,
			Timeout:       cfg.Queue.NATS.Timeout,
		},
		AMQP: cfg.Queue.AMQP.URL,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to message queue", zap.Error(err))
	}
	defer messageQueue.Close()
	healthService.RegisterPing("queue", false, func(ctx context.Context) error {
		return messageQueue.Ping()
	})

	// 8. Payment processor
	breakerCfg := breakerConfig(cfg.CircuitBreaker)
	var gateway ports.PaymentGateway = paymentAdapter.NewStripeGateway(cfg.Payment.Stripe.SecretKey, paymentAdapter.Options{
		URL: cfg.Payment.Stripe.APIURL,
	}, logger)
	if cfg.CircuitBreaker.Enabled {
		guarded := circuitbreaker.NewGateway(gateway, breakerCfg, logger)
		healthService.RegisterChecker("payment_processor", func(ctx context.Context) health.CheckResult {
			result := health.CheckResult{Name: "payment_processor", Status: health.StatusHealthy, Timestamp: time.Now()}
			if state := guarded.State(); state != gobreaker.StateClosed {
				result.Status = health.StatusDegraded
				result.Message = "circuit " + state.String()
			}
			return result
		})
		gateway = guarded
	}

	reconciler := payment.NewReconciler(gateway, payment.ReconcilerConfig{
		DefaultRefundReason: cfg.Payment.DefaultRefundReason,
		RemoteTimeout:       cfg.Payment.RemoteTimeout,
	}, logger)
	paymentService := payment.NewService(&payment.Config{
		DefaultCurrency: cfg.Payment.Currency,
		CaptureMethod:   cfg.Payment.CaptureMethod,
		RemoteTimeout:   cfg.Payment.RemoteTimeout,
	}, gateway, logger)

	// 9. Notification relay
	var fcm pushAdapter.MessageSender
	if cfg.Notification.Push.ProjectID != "" {
		client, err := pushAdapter.NewFCMClient(context.Background(), pushAdapter.FCMConfig{
			ProjectID:       cfg.Notification.Push.ProjectID,
			CredentialsFile: cfg.Notification.Push.CredentialsFile,
			CredentialsJSON: []byte(cfg.Notification.Push.CredentialsJSON),
			Endpoint:        cfg.Notification.Push.Endpoint,
		})
		if err != nil {
			logger.Fatal("Failed to initialize FCM client", zap.Error(err))
		}
		fcm = client
	} else {
		logger.Warn("No Firebase project configured, push notifications stay queued")
	}
	var pushSender ports.PushSender = pushAdapter.NewPushAdapter(fcm, cfg.Notification.Push.Timeout, logger)
	if cfg.CircuitBreaker.Enabled {
		pushBreaker := breakerCfg
		pushBreaker.Name = "push-provider"
		guarded := circuitbreaker.NewPushSender(pushSender, pushBreaker, logger)
		healthService.RegisterChecker("push_provider", func(ctx context.Context) health.CheckResult {
			result := health.CheckResult{Name: "push_provider", Status: health.StatusHealthy, Timestamp: time.Now()}
			if state := guarded.State(); state != gobreaker.StateClosed {
				result.Status = health.StatusDegraded
				result.Message = "circuit " + state.String()
			}
			return result
		})
		pushSender = guarded
	}

	relay := notification.NewService(
		postgres.NewNotificationRepository(db, logger),
		messageQueue,
		pushSender,
		claims,
		relayConfig(cfg.Notification.Relay),
		logger,
	)
	if err := relay.Start(); err != nil {
		logger.Fatal("Failed to start notification relay", zap.Error(err))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go relay.Run(ctx)

	// 10. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ServerHeader:          cfg.App.Name,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	if cfg.CORS.Enabled {
		app.Use(middleware.NewCORS(cfg.CORS))
	}

	health.NewFiberHandler(healthService).RegisterRoutes(app)

	if cfg.Prometheus.Enabled {
		metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			metricsHandler(c.Context())
			return nil
		})
	}

	var protected []fiber.Handler
	if cfg.JWT.Secret != "" {
		protected = append(protected, middleware.AuthRequired(middleware.JWTConfig{
			Secret:   cfg.JWT.Secret,
			Issuer:   cfg.JWT.Issuer,
			Audience: cfg.JWT.Audience,
		}))
	} else {
		logger.Warn("JWT secret not set, payment routes are unauthenticated")
	}

	validate := handlers.NewValidator()
	handlers.NewPaymentHandler(reconciler, paymentService, validate, logger).RegisterRoutes(app, protected...)

	notificationRoutes := append([]fiber.Handler{}, protected...)
	if cfg.CircuitBreaker.Enabled {
		storeBreaker := breakerCfg
		storeBreaker.Name = "notification-store"
		notificationRoutes = append(notificationRoutes, middleware.CircuitBreaker(storeBreaker, logger))
	}
	handlers.NewNotificationHandler(relay, validate, logger).RegisterRoutes(app, notificationRoutes...)

	// 11. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 12. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zcfg.Build()
}

func applyVaultSecrets(cfg *config.Config, logger *zap.Logger) {
	sm, err := vault.NewSecretManager(cfg.Vault.Address, cfg.Vault.Token, cfg.Vault.Mount, cfg.Vault.Path)
	if err != nil {
		logger.Fatal("Failed to create Vault client", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	secrets, err := sm.Load(ctx)
	if err != nil {
		logger.Fatal("Failed to read secrets from Vault", zap.Error(err))
	}

	if secrets.StripeSecretKey != "" {
		cfg.Payment.Stripe.SecretKey = secrets.StripeSecretKey
	}
	if secrets.FCMCredentials != "" {
		cfg.Notification.Push.CredentialsJSON = secrets.FCMCredentials
	}
	if secrets.DatabaseURL != "" {
		cfg.Database.URL = secrets.DatabaseURL
	}
	logger.Info("Loaded secrets from Vault", zap.String("path", cfg.Vault.Mount+"/"+cfg.Vault.Path))
}

func breakerConfig(cfg config.CircuitBreakerConfig) circuitbreaker.Config {
	return circuitbreaker.Config{
		Name:             "payment-gateway",
		MaxRequests:      uint32(cfg.MaxRequests),
		Interval:         cfg.Interval,
		Timeout:          cfg.Timeout,
		FailureThreshold: cfg.FailureThreshold,
		MinRequests:      uint32(cfg.MinRequests),
	}
}

func relayConfig(cfg config.RelayConfig) notification.Config {
	out := notification.DefaultConfig()
	if cfg.Subject != "" {
		out.Subject = cfg.Subject
	}
	if cfg.AndroidChannel != "" {
		out.AndroidChannel = cfg.AndroidChannel
	}
	if cfg.AndroidPriority != "" {
		out.AndroidPriority = cfg.AndroidPriority
	}
	if cfg.APNSSound != "" {
		out.APNSSound = cfg.APNSSound
	}
	if cfg.APNSBadge > 0 {
		out.APNSBadge = cfg.APNSBadge
	}
	if cfg.ClaimTTL > 0 {
		out.ClaimTTL = cfg.ClaimTTL
	}
	if cfg.DeliveredTTL > 0 {
		out.DeliveredTTL = cfg.DeliveredTTL
	}
	if cfg.SweepInterval > 0 {
		out.SweepInterval = cfg.SweepInterval
	}
	if cfg.SweepGrace > 0 {
		out.SweepGrace = cfg.SweepGrace
	}
	if cfg.SweepBatch > 0 {
		out.SweepBatch = cfg.SweepBatch
	}
	return out
}
