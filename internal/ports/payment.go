package ports

import (
	"context"

	"github.com/seu-repo/payment-relay/internal/domain"
)

// PaymentGateway is the payment processor capability. Implementations return
// *domain.Error values of kind NotFound or RemoteFailure.
type PaymentGateway interface {
	FetchIntent(ctx context.Context, id string) (*domain.PaymentIntent, error)
	CreateIntent(ctx context.Context, params domain.CreateIntentParams) (*domain.PaymentIntent, error)
	CaptureIntent(ctx context.Context, id, idempotencyKey string) (*domain.PaymentIntent, error)
	CancelIntent(ctx context.Context, id, idempotencyKey string) (*domain.PaymentIntent, error)
	// CreateRefund refunds the full captured amount. An empty reason is sent as no reason.
	CreateRefund(ctx context.Context, intentID, reason, idempotencyKey string) (*domain.Refund, error)
}

// PushSender delivers a push notification to one device.
type PushSender interface {
	Send(ctx context.Context, msg domain.PushMessage) error
}
