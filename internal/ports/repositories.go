package ports

import (
	"context"
	"time"

	"github.com/seu-repo/payment-relay/internal/domain"
)

// NotificationRepository stores pending notification documents.
type NotificationRepository interface {
	Save(ctx context.Context, doc *domain.NotificationDocument) error
	FindByID(ctx context.Context, collection, id string) (*domain.NotificationDocument, error)
	// FindPending returns documents with a device token created before olderThan, oldest first.
	FindPending(ctx context.Context, olderThan time.Time, limit int) ([]domain.NotificationDocument, error)
	Delete(ctx context.Context, collection, id string) error
}

// Cache is a key/value store with expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	// SetNX stores value only when key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}
