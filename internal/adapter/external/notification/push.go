package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/seu-repo/payment-relay/internal/domain"
	"github.com/seu-repo/payment-relay/internal/ports"
)

// ErrNotConfigured is returned by Send when no FCM client was set up.
var ErrNotConfigured = errors.New("push: FCM not configured")

// MessageSender is the part of *messaging.Client the adapter needs.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMConfig selects the Firebase project and its service account.
type FCMConfig struct {
	ProjectID       string
	CredentialsFile string
	CredentialsJSON []byte
	// Endpoint overrides the FCM API base URL, for emulators.
	Endpoint string
}

// NewFCMClient builds an FCM HTTP v1 client. Without explicit credentials the
// application default credentials are used.
func NewFCMClient(ctx context.Context, cfg FCMConfig) (*messaging.Client, error) {
	var opts []option.ClientOption
	switch {
	case len(cfg.CredentialsJSON) > 0:
		opts = append(opts, option.WithCredentialsJSON(cfg.CredentialsJSON))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("push: init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("push: init messaging client: %w", err)
	}
	return client, nil
}

// PushAdapter sends push notifications through Firebase Cloud Messaging.
type PushAdapter struct {
	client  MessageSender
	timeout time.Duration
	log     *zap.Logger
}

// NewPushAdapter wraps an FCM client. A nil client makes every Send fail with ErrNotConfigured.
func NewPushAdapter(client MessageSender, timeout time.Duration, log *zap.Logger) ports.PushSender {
	return &PushAdapter{
		client:  client,
		timeout: timeout,
		log:     log,
	}
}

// Send delivers msg to a single device token.
func (a *PushAdapter) Send(ctx context.Context, msg domain.PushMessage) error {
	if a.client == nil {
		return ErrNotConfigured
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	id, err := a.client.Send(ctx, buildMessage(msg))
	if err != nil {
		if messaging.IsUnregistered(err) || messaging.IsInvalidArgument(err) || messaging.IsSenderIDMismatch(err) {
			return fmt.Errorf("push: %w: %v", domain.ErrPushRejected, err)
		}
		return fmt.Errorf("push: send: %w", err)
	}

	a.log.Debug("Push notification sent", zap.String("message_id", id))
	return nil
}

func buildMessage(msg domain.PushMessage) *messaging.Message {
	aps := &messaging.Aps{Sound: msg.APNSSound}
	if msg.APNSBadge > 0 {
		badge := msg.APNSBadge
		aps.Badge = &badge
	}

	return &messaging.Message{
		Token: msg.Token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Android: &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{
				ChannelID: msg.AndroidChannel,
				Priority:  notificationPriority(msg.AndroidPriority),
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{Aps: aps},
		},
	}
}

func notificationPriority(p string) messaging.AndroidNotificationPriority {
	switch strings.ToLower(p) {
	case "min":
		return messaging.PriorityMin
	case "low":
		return messaging.PriorityLow
	case "default":
		return messaging.PriorityDefault
	case "high":
		return messaging.PriorityHigh
	case "max":
		return messaging.PriorityMax
	}
	var unspecified messaging.AndroidNotificationPriority
	return unspecified
}
