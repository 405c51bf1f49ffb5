package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/payment-relay/internal/domain"
	"github.com/seu-repo/payment-relay/internal/ports"
)

type NotificationHandler struct {
	service  ports.NotificationService
	validate *validator.Validate
	log      *zap.Logger
}

func NewNotificationHandler(service ports.NotificationService, validate *validator.Validate, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		service:  service,
		validate: validate,
		log:      log,
	}
}

// WriteNotificationRequest is a document for a notification collection.
// A missing token is accepted; the relay logs and keeps such documents.
type WriteNotificationRequest struct {
	Token string `json:"token" validate:"max=4096"`
	Title string `json:"title" validate:"max=256"`
	Body  string `json:"body" validate:"max=4096"`
}

func (h *NotificationHandler) RegisterRoutes(router fiber.Router, mw ...fiber.Handler) {
	router.Post("/notifications/:collection", chain(mw, h.Write)...)
}

func (h *NotificationHandler) Write(c *fiber.Ctx) error {
	var req WriteNotificationRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	doc, err := h.service.Write(c.UserContext(), c.Params("collection"), &domain.NotificationDocument{
		Token: req.Token,
		Title: req.Title,
		Body:  req.Body,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": doc.ID})
}
