package payment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/payment-relay/internal/domain"
	"github.com/seu-repo/payment-relay/internal/observability/telemetry"
	"github.com/seu-repo/payment-relay/internal/ports"
)

// Config holds payment service configuration
type Config struct {
	DefaultCurrency string
	// CaptureMethod is passed through to the processor; "manual" authorizes only.
	CaptureMethod string
	RemoteTimeout time.Duration
}

// Service implements PaymentService interface
type Service struct {
	config  *Config
	gateway ports.PaymentGateway
	log     *zap.Logger
}

// NewService creates a new payment service
func NewService(config *Config, gateway ports.PaymentGateway, log *zap.Logger) *Service {
	return &Service{
		config:  config,
		gateway: gateway,
		log:     log,
	}
}

// CreateIntent creates a payment intent for client-side confirmation.
// amount is in the currency's minor unit.
func (s *Service) CreateIntent(ctx context.Context, amount int64, currency, idempotencyKey string) (*domain.PaymentIntent, error) {
	if amount <= 0 {
		return nil, domain.InvalidRequest("amount must be greater than zero")
	}

	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = s.config.DefaultCurrency
	}
	if idempotencyKey == "" {
		idempotencyKey = uuid.New().String()
	}

	ctx, cancel := s.remoteContext(ctx)
	defer cancel()

	start := time.Now()
	intent, err := s.gateway.CreateIntent(ctx, domain.CreateIntentParams{
		Amount:         amount,
		Currency:       currency,
		CaptureMethod:  s.config.CaptureMethod,
		IdempotencyKey: idempotencyKey,
	})
	telemetry.ProcessorLatency.WithLabelValues("create_intent").Observe(time.Since(start).Seconds())
	if err != nil {
		s.log.Error("Failed to create payment intent",
			zap.Int64("amount", amount),
			zap.String("currency", currency),
			zap.Error(err),
		)
		return nil, ensureClassified("create payment intent", err)
	}

	telemetry.PaymentIntentsCreatedTotal.Inc()
	return intent, nil
}

// CaptureIntent settles a previously authorized intent.
func (s *Service) CaptureIntent(ctx context.Context, id, idempotencyKey string) (*domain.PaymentIntent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.InvalidRequest("Payment Intent ID is required")
	}
	if idempotencyKey == "" {
		idempotencyKey = uuid.New().String()
	}

	ctx, cancel := s.remoteContext(ctx)
	defer cancel()

	start := time.Now()
	intent, err := s.gateway.CaptureIntent(ctx, id, idempotencyKey+":capture")
	telemetry.ProcessorLatency.WithLabelValues("capture_intent").Observe(time.Since(start).Seconds())
	if err != nil {
		s.log.Error("Failed to capture payment intent",
			zap.String("payment_intent_id", id),
			zap.Error(err),
		)
		return nil, ensureClassified("capture payment intent", err)
	}

	s.log.Info("Payment intent captured",
		zap.String("payment_intent_id", intent.ID),
		zap.String("status", string(intent.Status)),
	)
	return intent, nil
}

// remoteContext detaches ctx from caller cancellation, bounded by the configured timeout.
func (s *Service) remoteContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if s.config.RemoteTimeout > 0 {
		return context.WithTimeout(ctx, s.config.RemoteTimeout)
	}
	return ctx, func() {}
}
