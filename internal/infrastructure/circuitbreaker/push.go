package circuitbreaker

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/seu-repo/payment-relay/internal/domain"
	"github.com/seu-repo/payment-relay/internal/ports"
)

// PushSender guards a push provider. A message the provider rejects, such as
// one for an unregistered token, does not count against the breaker.
type PushSender struct {
	next    ports.PushSender
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

func NewPushSender(next ports.PushSender, cfg Config, log *zap.Logger) *PushSender {
	if cfg.Name == "" {
		cfg.Name = "push-provider"
	}
	return &PushSender{
		next: next,
		breaker: NewBreaker(cfg, func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrPushRejected)
		}, log),
		log: log,
	}
}

// State reports the breaker state, for readiness checks.
func (p *PushSender) State() gobreaker.State {
	return p.breaker.State()
}

func (p *PushSender) Send(ctx context.Context, msg domain.PushMessage) error {
	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.next.Send(ctx, msg)
	})
	if IsOpen(err) {
		p.log.Warn("Push provider circuit open, send rejected", zap.String("breaker", p.breaker.Name()))
	}
	return err
}
