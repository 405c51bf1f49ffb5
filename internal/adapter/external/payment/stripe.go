package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/seu-repo/payment-relay/internal/domain"
	"github.com/seu-repo/payment-relay/internal/ports"
)

// StripeGateway talks to Stripe through an explicitly constructed client handle.
// It never touches the package-level stripe.Key.
type StripeGateway struct {
	api *client.API
	log *zap.Logger
}

// Options configures the Stripe backends.
type Options struct {
	// URL overrides the API base, for stripe-mock and tests.
	URL string
}

// NewStripeGateway builds a gateway with its own backends. Network retries are
// always disabled: a failed mutating call is reported once and the caller decides.
func NewStripeGateway(secretKey string, opts Options, log *zap.Logger) ports.PaymentGateway {
	return &StripeGateway{
		api: client.New(secretKey, &stripe.Backends{
			API:     newBackend(stripe.APIBackend, opts, log),
			Connect: newBackend(stripe.ConnectBackend, opts, log),
			Uploads: newBackend(stripe.UploadsBackend, opts, log),
		}),
		log: log,
	}
}

func newBackend(backend stripe.SupportedBackend, opts Options, log *zap.Logger) stripe.Backend {
	cfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     log.Named("stripe").Sugar(),
	}
	if opts.URL != "" {
		cfg.URL = stripe.String(opts.URL)
	}
	return stripe.GetBackendWithConfig(backend, cfg)
}

func (s *StripeGateway) FetchIntent(ctx context.Context, id string) (*domain.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.Get(id, params)
	if err != nil {
		s.log.Error("Failed to retrieve payment intent", zap.String("payment_intent_id", id), zap.Error(err))
		return nil, classify("retrieve payment intent", err)
	}

	return toDomainIntent(pi)
}

func (s *StripeGateway) CreateIntent(ctx context.Context, in domain.CreateIntentParams) (*domain.PaymentIntent, error) {
	s.log.Info("Creating payment intent",
		zap.Int64("amount", in.Amount),
		zap.String("currency", in.Currency),
		zap.String("capture_method", in.CaptureMethod),
	)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(in.Amount),
		Currency: stripe.String(in.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if in.CaptureMethod != "" {
		params.CaptureMethod = stripe.String(in.CaptureMethod)
	}
	if in.IdempotencyKey != "" {
		params.SetIdempotencyKey(in.IdempotencyKey)
	}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		s.log.Error("Failed to create payment intent", zap.Error(err))
		return nil, classify("create payment intent", err)
	}

	s.log.Info("Payment intent created",
		zap.String("payment_intent_id", pi.ID),
		zap.String("status", string(pi.Status)),
	)

	return toDomainIntent(pi)
}

func (s *StripeGateway) CaptureIntent(ctx context.Context, id, idempotencyKey string) (*domain.PaymentIntent, error) {
	s.log.Info("Capturing payment intent", zap.String("payment_intent_id", id))

	params := &stripe.PaymentIntentCaptureParams{}
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.Capture(id, params)
	if err != nil {
		s.log.Error("Failed to capture payment intent", zap.String("payment_intent_id", id), zap.Error(err))
		return nil, classify("capture payment intent", err)
	}

	return toDomainIntent(pi)
}

func (s *StripeGateway) CancelIntent(ctx context.Context, id, idempotencyKey string) (*domain.PaymentIntent, error) {
	s.log.Info("Canceling payment intent", zap.String("payment_intent_id", id))

	params := &stripe.PaymentIntentCancelParams{}
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.Cancel(id, params)
	if err != nil {
		s.log.Error("Failed to cancel payment intent", zap.String("payment_intent_id", id), zap.Error(err))
		return nil, classify("cancel payment intent", err)
	}

	s.log.Info("Payment intent canceled",
		zap.String("payment_intent_id", pi.ID),
		zap.String("status", string(pi.Status)),
	)

	return toDomainIntent(pi)
}

func (s *StripeGateway) CreateRefund(ctx context.Context, intentID, reason, idempotencyKey string) (*domain.Refund, error) {
	s.log.Info("Refunding payment", zap.String("payment_intent_id", intentID), zap.String("reason", reason))

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
	}
	if reason != "" {
		params.Reason = stripe.String(reason)
	}
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}
	params.Context = ctx

	r, err := s.api.Refunds.New(params)
	if err != nil {
		s.log.Error("Failed to refund payment", zap.String("payment_intent_id", intentID), zap.Error(err))
		return nil, classify("refund payment", err)
	}

	s.log.Info("Payment refunded",
		zap.String("refund_id", r.ID),
		zap.String("status", string(r.Status)),
	)

	return &domain.Refund{ID: r.ID, Status: string(r.Status)}, nil
}

func toDomainIntent(pi *stripe.PaymentIntent) (*domain.PaymentIntent, error) {
	status, err := domain.ParseIntentStatus(string(pi.Status))
	if err != nil {
		return nil, domain.RemoteFailure("stripe: payment intent "+pi.ID, err)
	}

	return &domain.PaymentIntent{
		ID:           pi.ID,
		Status:       status,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		ClientSecret: pi.ClientSecret,
	}, nil
}

// classify maps Stripe errors onto the domain taxonomy.
func classify(op string, err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) {
		msg := fmt.Sprintf("stripe: %s: %s", op, serr.Msg)
		if serr.Code == stripe.ErrorCodeResourceMissing || serr.HTTPStatusCode == http.StatusNotFound {
			return domain.NotFound(msg, err)
		}
		return domain.RemoteFailure(msg, err)
	}
	return domain.RemoteFailure(fmt.Sprintf("stripe: %s: %v", op, err), err)
}
