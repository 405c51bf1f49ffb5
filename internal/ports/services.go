package ports

import (
	"context"

	"github.com/seu-repo/payment-relay/internal/domain"
)

// Reconciler decides and applies the single safe action for a payment intent.
type Reconciler interface {
	Reconcile(ctx context.Context, req domain.ReconciliationRequest) (*domain.Outcome, error)
}

// PaymentService covers the pass-through intent operations.
type PaymentService interface {
	CreateIntent(ctx context.Context, amount int64, currency, idempotencyKey string) (*domain.PaymentIntent, error)
	CaptureIntent(ctx context.Context, id, idempotencyKey string) (*domain.PaymentIntent, error)
}

// NotificationService writes documents into a collection and relays them to the push provider.
type NotificationService interface {
	Write(ctx context.Context, collection string, doc *domain.NotificationDocument) (*domain.NotificationDocument, error)
	Deliver(ctx context.Context, collection, id string) error
	Sweep(ctx context.Context) (int, error)
}
