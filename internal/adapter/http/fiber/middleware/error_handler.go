package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/payment-relay/internal/domain"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidRequest, domain.KindRejectedState:
		return fiber.StatusBadRequest
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindRemoteFailure:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var de *domain.Error
		if errors.As(err, &de) {
			code := StatusFor(de.Kind)
			if code >= fiber.StatusInternalServerError {
				log.Error("Payment processor call failed",
					zap.Error(err),
					zap.String("path", c.Path()),
				)
			}
			return c.Status(code).JSON(ErrorResponse{
				Kind:    string(de.Kind),
				Message: publicMessage(de),
				Status:  string(de.Status),
			})
		}

		code := fiber.StatusInternalServerError
		kind := "internal"
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			kind = "http"
		}

		if code == fiber.StatusInternalServerError {
			log.Error("Internal Server Error", zap.Error(err), zap.String("path", c.Path()))
		}

		return c.Status(code).JSON(ErrorResponse{
			Kind:    kind,
			Message: err.Error(),
		})
	}
}

// publicMessage returns the message of the innermost classified error,
// which carries the processor's own wording.
func publicMessage(e *domain.Error) string {
	for e.Err != nil {
		var inner *domain.Error
		if !errors.As(e.Err, &inner) {
			break
		}
		e = inner
	}
	return e.Message
}
