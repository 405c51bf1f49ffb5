// Package notification forwards documents written to a notification collection
// to the push provider and removes them once delivered.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/payment-relay/internal/adapter/queue"
	"github.com/seu-repo/payment-relay/internal/domain"
	"github.com/seu-repo/payment-relay/internal/observability/telemetry"
	"github.com/seu-repo/payment-relay/internal/ports"
)

// Config holds relay configuration
type Config struct {
	Subject         string
	AndroidChannel  string
	AndroidPriority string
	APNSSound       string
	APNSBadge       int
	// ClaimTTL is how long a relay instance owns a document it started delivering.
	ClaimTTL time.Duration
	// DeliveredTTL keeps the claim of a sent document whose delete failed, so
	// the sweep only retries the delete.
	DeliveredTTL  time.Duration
	SweepInterval time.Duration
	// SweepGrace skips documents younger than this so the queue path gets the first go.
	SweepGrace time.Duration
	SweepBatch int
}

// DefaultConfig matches the mobile app's notification channel setup.
func DefaultConfig() Config {
	return Config{
		Subject:         "notifications.created",
		AndroidChannel:  "calories_channel",
		AndroidPriority: "high",
		APNSSound:       "default",
		APNSBadge:       1,
		ClaimTTL:        5 * time.Minute,
		DeliveredTTL:    24 * time.Hour,
		SweepInterval:   time.Minute,
		SweepGrace:      30 * time.Second,
		SweepBatch:      100,
	}
}

const (
	claimSending   = "sending"
	claimDelivered = "delivered"
)

type Service struct {
	repo   ports.NotificationRepository
	mq     queue.MessageQueue
	push   ports.PushSender
	claims ports.Cache
	cfg    Config
	log    *zap.Logger
}

func NewService(repo ports.NotificationRepository, mq queue.MessageQueue, push ports.PushSender, claims ports.Cache, cfg Config, log *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		mq:     mq,
		push:   push,
		claims: claims,
		cfg:    cfg,
		log:    log,
	}
}

// Write stores a document in collection and announces it on the queue.
func (s *Service) Write(ctx context.Context, collection string, doc *domain.NotificationDocument) (*domain.NotificationDocument, error) {
	if !domain.KnownCollection(collection) {
		return nil, domain.InvalidRequest("unknown collection: " + collection)
	}

	doc.ID = uuid.New().String()
	doc.Collection = collection
	doc.CreatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("save notification document: %w", err)
	}

	event, err := json.Marshal(domain.DocumentCreatedEvent{ID: doc.ID, Collection: collection})
	if err != nil {
		return nil, fmt.Errorf("marshal document event: %w", err)
	}
	if err := s.mq.Publish(s.cfg.Subject, event); err != nil {
		// the sweep will pick the document up
		s.log.Warn("Failed to publish document event",
			zap.String("collection", collection),
			zap.String("id", doc.ID),
			zap.Error(err),
		)
	}

	return doc, nil
}

// Start subscribes the relay to document events.
func (s *Service) Start() error {
	return s.mq.Subscribe(s.cfg.Subject, s.handleEvent)
}

func (s *Service) handleEvent(data []byte) error {
	var event domain.DocumentCreatedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("decode document event: %w", err)
	}
	return s.Deliver(context.Background(), event.Collection, event.ID)
}

// Deliver sends one document to the push provider and deletes it on success.
// Documents without a token are left in place; failed sends keep the document for the sweep.
func (s *Service) Deliver(ctx context.Context, collection, id string) error {
	claimKey := "notification:claim:" + collection + "/" + id
	claimed, err := s.claims.SetNX(ctx, claimKey, claimSending, s.cfg.ClaimTTL)
	if err != nil {
		s.log.Warn("Claim store unavailable, delivering unclaimed", zap.String("id", id), zap.Error(err))
		claimed = true
	}
	if !claimed {
		if state, err := s.claims.Get(ctx, claimKey); err == nil && state == claimDelivered {
			return s.remove(ctx, collection, id)
		}
		s.log.Debug("Document already claimed", zap.String("collection", collection), zap.String("id", id))
		return nil
	}

	doc, err := s.repo.FindByID(ctx, collection, id)
	if err != nil {
		s.release(ctx, claimKey)
		return fmt.Errorf("load notification document: %w", err)
	}
	if doc == nil {
		return nil
	}

	if strings.TrimSpace(doc.Token) == "" {
		s.log.Error("No FCM token found in notification",
			zap.String("collection", collection),
			zap.String("id", id),
		)
		telemetry.PushNotificationsTotal.WithLabelValues(collection, "missing_token").Inc()
		return nil
	}

	if err := s.push.Send(ctx, s.message(doc)); err != nil {
		s.log.Error("Error sending push notification",
			zap.String("collection", collection),
			zap.String("id", id),
			zap.Error(err),
		)
		telemetry.PushNotificationsTotal.WithLabelValues(collection, "failed").Inc()
		s.release(ctx, claimKey)
		return err
	}

	telemetry.PushNotificationsTotal.WithLabelValues(collection, "sent").Inc()
	s.log.Info("Successfully sent push notification",
		zap.String("collection", collection),
		zap.String("id", id),
		zap.String("title", doc.Title),
	)

	if err := s.remove(ctx, collection, id); err != nil {
		if err := s.claims.Set(ctx, claimKey, claimDelivered, s.cfg.DeliveredTTL); err != nil {
			s.log.Warn("Failed to mark document delivered, it may be sent again",
				zap.String("collection", collection),
				zap.String("id", id),
				zap.Error(err),
			)
		}
		return err
	}
	return nil
}

func (s *Service) remove(ctx context.Context, collection, id string) error {
	if err := s.repo.Delete(ctx, collection, id); err != nil {
		return fmt.Errorf("delete delivered document: %w", err)
	}
	return nil
}

func (s *Service) message(doc *domain.NotificationDocument) domain.PushMessage {
	return domain.PushMessage{
		Token:           doc.Token,
		Title:           doc.Title,
		Body:            doc.Body,
		AndroidChannel:  s.cfg.AndroidChannel,
		AndroidPriority: s.cfg.AndroidPriority,
		APNSSound:       s.cfg.APNSSound,
		APNSBadge:       s.cfg.APNSBadge,
	}
}

func (s *Service) release(ctx context.Context, key string) {
	if err := s.claims.Delete(ctx, key); err != nil {
		s.log.Warn("Failed to release claim", zap.String("key", key), zap.Error(err))
	}
}

// Sweep retries documents that were written but never relayed.
// It returns how many were processed without error.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	docs, err := s.repo.FindPending(ctx, time.Now().UTC().Add(-s.cfg.SweepGrace), s.cfg.SweepBatch)
	if err != nil {
		return 0, fmt.Errorf("find pending notifications: %w", err)
	}

	processed := 0
	for _, doc := range docs {
		if ctx.Err() != nil {
			return processed, ctx.Err()
		}
		if err := s.Deliver(ctx, doc.Collection, doc.ID); err != nil {
			continue
		}
		processed++
	}

	if len(docs) > 0 {
		s.log.Info("Notification sweep finished",
			zap.Int("pending", len(docs)),
			zap.Int("processed", processed),
		)
	}
	return processed, nil
}

// Run sweeps on every tick until ctx is done.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.log.Error("Notification sweep failed", zap.Error(err))
			}
		}
	}
}
