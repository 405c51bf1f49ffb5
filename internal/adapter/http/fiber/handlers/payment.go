package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/payment-relay/internal/domain"
	"github.com/seu-repo/payment-relay/internal/ports"
)

// IdempotencyKeyHeader lets clients make retries of mutating calls safe.
const IdempotencyKeyHeader = "Idempotency-Key"

type PaymentHandler struct {
	reconciler ports.Reconciler
	payments   ports.PaymentService
	validate   *validator.Validate
	log        *zap.Logger
}

func NewPaymentHandler(reconciler ports.Reconciler, payments ports.PaymentService, validate *validator.Validate, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		reconciler: reconciler,
		payments:   payments,
		validate:   validate,
		log:        log,
	}
}

type CreatePaymentIntentRequest struct {
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"omitempty,alpha,len=3"`
}

type CreatePaymentIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

type PaymentIntentRequest struct {
	PaymentIntentID string `json:"paymentIntentId" validate:"required"`
}

type CapturePaymentIntentResponse struct {
	Success       bool                  `json:"success"`
	PaymentIntent *domain.PaymentIntent `json:"paymentIntent"`
}

type RefundPaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentId" validate:"required"`
	Reason          string `json:"reason" validate:"omitempty,oneof=duplicate fraudulent requested_by_customer"`
}

type ReconcilePaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentId" validate:"required"`
	Action          string `json:"action" validate:"omitempty,oneof=cancel_or_refund refund"`
	Reason          string `json:"reason" validate:"omitempty,oneof=duplicate fraudulent requested_by_customer"`
}

// RegisterRoutes mounts the payment routes. Handlers in mw run before the
// mutating routes only.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router, mw ...fiber.Handler) {
	router.Get("/", h.Status)
	router.Post("/create-payment-intent", chain(mw, h.CreateIntent)...)
	router.Post("/capture-payment-intent", chain(mw, h.CaptureIntent)...)
	router.Post("/cancel-payment-intent", chain(mw, h.CancelIntent)...)
	router.Post("/refund-payment", chain(mw, h.Refund)...)
	router.Post("/reconcile-payment", chain(mw, h.Reconcile)...)
}

// Status answers GET / so load balancers and the app can see the server is up.
func (h *PaymentHandler) Status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "Server is running"})
}

func (h *PaymentHandler) CreateIntent(c *fiber.Ctx) error {
	var req CreatePaymentIntentRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	intent, err := h.payments.CreateIntent(c.UserContext(), req.Amount, req.Currency, c.Get(IdempotencyKeyHeader))
	if err != nil {
		return err
	}

	return c.JSON(CreatePaymentIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	})
}

func (h *PaymentHandler) CaptureIntent(c *fiber.Ctx) error {
	var req PaymentIntentRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	intent, err := h.payments.CaptureIntent(c.UserContext(), req.PaymentIntentID, c.Get(IdempotencyKeyHeader))
	if err != nil {
		return err
	}

	return c.JSON(CapturePaymentIntentResponse{Success: true, PaymentIntent: intent})
}

// CancelIntent cancels an uncaptured intent or refunds a captured one.
func (h *PaymentHandler) CancelIntent(c *fiber.Ctx) error {
	var req PaymentIntentRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	return h.reconcile(c, domain.ReconciliationRequest{
		PaymentIntentID: req.PaymentIntentID,
		Action:          domain.ActionCancelOrRefund,
	})
}

func (h *PaymentHandler) Refund(c *fiber.Ctx) error {
	var req RefundPaymentRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	return h.reconcile(c, domain.ReconciliationRequest{
		PaymentIntentID: req.PaymentIntentID,
		Action:          domain.ActionRefund,
		Reason:          req.Reason,
	})
}

// Reconcile is the generic entry point; action defaults to refund.
func (h *PaymentHandler) Reconcile(c *fiber.Ctx) error {
	var req ReconcilePaymentRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	action := domain.ReconcileAction(req.Action)
	if action == "" {
		action = domain.ActionRefund
	}

	return h.reconcile(c, domain.ReconciliationRequest{
		PaymentIntentID: req.PaymentIntentID,
		Action:          action,
		Reason:          req.Reason,
	})
}

func (h *PaymentHandler) reconcile(c *fiber.Ctx, req domain.ReconciliationRequest) error {
	req.IdempotencyKey = c.Get(IdempotencyKeyHeader)

	outcome, err := h.reconciler.Reconcile(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(outcome)
}
