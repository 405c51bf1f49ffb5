package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.AddConfigPath("/app/configs")

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Allow common env vars without APP_ prefix for Docker/VM deploys
	v.BindEnv("http.port", "PORT", "HTTP_PORT", "APP_HTTP_PORT")
	v.BindEnv("database.url", "DATABASE_URL", "APP_DATABASE_URL")
	v.BindEnv("redis.url", "REDIS_URL", "APP_REDIS_URL")
	v.BindEnv("queue.nats.url", "NATS_URL", "APP_QUEUE_NATS_URL")
	v.BindEnv("queue.amqp.url", "AMQP_URL", "APP_QUEUE_AMQP_URL")
	v.BindEnv("jwt.secret", "JWT_SECRET", "APP_JWT_SECRET")
	v.BindEnv("payment.stripe.secret_key", "STRIPE_SECRET_KEY", "APP_PAYMENT_STRIPE_SECRET_KEY")
	v.BindEnv("notification.push.project_id", "FIREBASE_PROJECT_ID", "APP_NOTIFICATION_PUSH_PROJECT_ID")
	v.BindEnv("notification.push.credentials_file", "GOOGLE_APPLICATION_CREDENTIALS", "APP_NOTIFICATION_PUSH_CREDENTIALS_FILE")
	v.BindEnv("vault.address", "VAULT_ADDR", "APP_VAULT_ADDRESS")
	v.BindEnv("vault.token", "VAULT_TOKEN", "APP_VAULT_TOKEN")
	v.BindEnv("app.environment", "APP_ENVIRONMENT")
	v.BindEnv("logging.level", "LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Payment.Currency = strings.ToLower(cfg.Payment.Currency)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "payment-relay")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")

	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("payment.currency", "myr")
	v.SetDefault("payment.capture_method", "manual")
	v.SetDefault("payment.default_refund_reason", "requested_by_customer")
	v.SetDefault("payment.remote_timeout", 30*time.Second)

	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("queue.driver", "nats")
	v.SetDefault("queue.nats.queue_group", "notification-relay")
	v.SetDefault("queue.nats.max_reconnects", 10)
	v.SetDefault("queue.nats.reconnect_wait", 2*time.Second)
	v.SetDefault("queue.nats.timeout", 5*time.Second)

	v.SetDefault("notification.push.timeout", 10*time.Second)
	v.SetDefault("notification.relay.subject", "notifications.created")
	v.SetDefault("notification.relay.android_channel", "calories_channel")
	v.SetDefault("notification.relay.android_priority", "high")
	v.SetDefault("notification.relay.apns_sound", "default")
	v.SetDefault("notification.relay.apns_badge", 1)
	v.SetDefault("notification.relay.claim_ttl", 5*time.Minute)
	v.SetDefault("notification.relay.delivered_ttl", 24*time.Hour)
	v.SetDefault("notification.relay.sweep_interval", time.Minute)
	v.SetDefault("notification.relay.sweep_grace", 30*time.Second)
	v.SetDefault("notification.relay.sweep_batch", 100)

	v.SetDefault("cors.enabled", true)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"})
	v.SetDefault("cors.max_age", 86400)

	v.SetDefault("circuit_breaker.enabled", true)
	v.SetDefault("circuit_breaker.max_requests", 3)
	v.SetDefault("circuit_breaker.interval", 60*time.Second)
	v.SetDefault("circuit_breaker.timeout", 30*time.Second)
	v.SetDefault("circuit_breaker.failure_threshold", 0.6)
	v.SetDefault("circuit_breaker.min_requests", 5)

	v.SetDefault("opentelemetry.service_name", "payment-relay")
	v.SetDefault("opentelemetry.jaeger.sampler_param", 1.0)

	v.SetDefault("prometheus.enabled", true)
	v.SetDefault("prometheus.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("vault.mount", "secret")
	v.SetDefault("vault.path", "payment-relay")
}
