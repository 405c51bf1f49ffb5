package circuitbreaker

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/seu-repo/payment-relay/internal/domain"
	"github.com/seu-repo/payment-relay/internal/ports"
)

// Gateway guards a PaymentGateway with a circuit breaker. Only remote failures
// count against the breaker; an unknown intent id is a caller problem.
type Gateway struct {
	next    ports.PaymentGateway
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

func NewGateway(next ports.PaymentGateway, cfg Config, log *zap.Logger) *Gateway {
	if cfg.Name == "" {
		cfg.Name = "payment-gateway"
	}
	return &Gateway{
		next:    next,
		breaker: NewBreaker(cfg, countsAsSuccess, log),
		log:     log,
	}
}

// State reports the breaker state, for readiness checks.
func (g *Gateway) State() gobreaker.State {
	return g.breaker.State()
}

func countsAsSuccess(err error) bool {
	return err == nil || !errors.Is(err, domain.ErrRemoteFailure)
}

func (g *Gateway) FetchIntent(ctx context.Context, id string) (*domain.PaymentIntent, error) {
	res, err := g.execute(func() (interface{}, error) {
		return g.next.FetchIntent(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return res.(*domain.PaymentIntent), nil
}

func (g *Gateway) CreateIntent(ctx context.Context, params domain.CreateIntentParams) (*domain.PaymentIntent, error) {
	res, err := g.execute(func() (interface{}, error) {
		return g.next.CreateIntent(ctx, params)
	})
	if err != nil {
		return nil, err
	}
	return res.(*domain.PaymentIntent), nil
}

func (g *Gateway) CaptureIntent(ctx context.Context, id, idempotencyKey string) (*domain.PaymentIntent, error) {
	res, err := g.execute(func() (interface{}, error) {
		return g.next.CaptureIntent(ctx, id, idempotencyKey)
	})
	if err != nil {
		return nil, err
	}
	return res.(*domain.PaymentIntent), nil
}

func (g *Gateway) CancelIntent(ctx context.Context, id, idempotencyKey string) (*domain.PaymentIntent, error) {
	res, err := g.execute(func() (interface{}, error) {
		return g.next.CancelIntent(ctx, id, idempotencyKey)
	})
	if err != nil {
		return nil, err
	}
	return res.(*domain.PaymentIntent), nil
}

func (g *Gateway) CreateRefund(ctx context.Context, intentID, reason, idempotencyKey string) (*domain.Refund, error) {
	res, err := g.execute(func() (interface{}, error) {
		return g.next.CreateRefund(ctx, intentID, reason, idempotencyKey)
	})
	if err != nil {
		return nil, err
	}
	return res.(*domain.Refund), nil
}

func (g *Gateway) execute(fn func() (interface{}, error)) (interface{}, error) {
	res, err := g.breaker.Execute(fn)
	if IsOpen(err) {
		g.log.Warn("Payment gateway circuit open, call rejected", zap.String("breaker", g.breaker.Name()))
		return nil, domain.RemoteFailure("payment processor unavailable", err)
	}
	return res, err
}
