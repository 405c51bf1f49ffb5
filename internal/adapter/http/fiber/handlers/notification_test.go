package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/payment-relay/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/payment-relay/internal/domain"
	"github.com/seu-repo/payment-relay/internal/mocks"
	"github.com/seu-repo/payment-relay/internal/service/notification"
)

type notificationFixture struct {
	app  *fiber.App
	repo *mocks.MockNotificationRepository
	push *mocks.MockPushSender
}

func newNotificationApp(t *testing.T) *notificationFixture {
	t.Helper()
	log := zap.NewNop()

	f := &notificationFixture{
		repo: mocks.NewMockNotificationRepository(),
		push: &mocks.MockPushSender{},
	}
	svc := notification.NewService(f.repo, mocks.NewMockMessageQueue(), f.push, mocks.NewMockCache(), notification.DefaultConfig(), log)
	if err := svc.Start(); err != nil {
		t.Fatalf("start relay: %v", err)
	}

	f.app = fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(log)})
	NewNotificationHandler(svc, NewValidator(), log).RegisterRoutes(f.app)
	return f
}

func TestWriteNotification_Delivered(t *testing.T) {
	// Arrange
	f := newNotificationApp(t)

	// Act
	resp, body := postJSON(t, f.app, "/notifications/push_notifications", map[string]string{
		"token": "device-token",
		"title": "Goal reached",
		"body":  "2000 kcal today",
	}, nil)

	// Assert
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d %v", resp.StatusCode, body)
	}
	if id, _ := body["id"].(string); id == "" {
		t.Error("expected document id")
	}
	if len(f.push.Sent) != 1 || f.push.Sent[0].Title != "Goal reached" {
		t.Errorf("unexpected pushes %+v", f.push.Sent)
	}
	if f.repo.Len() != 0 {
		t.Errorf("expected delivered document deleted, %d left", f.repo.Len())
	}
}

func TestWriteNotification_WithoutTokenIsKept(t *testing.T) {
	f := newNotificationApp(t)

	resp, _ := postJSON(t, f.app, "/notifications/notifications", map[string]string{"title": "hi"}, nil)

	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if len(f.push.Sent) != 0 {
		t.Error("expected no push without a token")
	}
	if f.repo.Len() != 1 {
		t.Errorf("expected document kept, got %d", f.repo.Len())
	}
}

func TestWriteNotification_UnknownCollection(t *testing.T) {
	f := newNotificationApp(t)

	resp, body := postJSON(t, f.app, "/notifications/orders", map[string]string{"token": "t"}, nil)

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body["kind"] != string(domain.KindInvalidRequest) {
		t.Errorf("unexpected kind %v", body["kind"])
	}
}
