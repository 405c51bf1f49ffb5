package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/payment-relay/internal/domain"
	"github.com/seu-repo/payment-relay/internal/infrastructure/circuitbreaker"
)

var errServerFailure = errors.New("handler responded with a server error")

// CircuitBreaker sheds requests once too many of them end in a 5xx. Client
// errors never count against the breaker.
func CircuitBreaker(cfg circuitbreaker.Config, log *zap.Logger) fiber.Handler {
	cb := circuitbreaker.NewBreaker(cfg, nil, log)

	return func(c *fiber.Ctx) error {
		var handlerErr error
		_, err := cb.Execute(func() (interface{}, error) {
			handlerErr = c.Next()
			if responseStatus(c, handlerErr) >= fiber.StatusInternalServerError {
				return nil, errServerFailure
			}
			return nil, nil
		})

		if circuitbreaker.IsOpen(err) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
				Kind:    "unavailable",
				Message: "Service temporarily unavailable",
			})
		}

		return handlerErr
	}
}

// responseStatus predicts the status the error handler will write for err.
func responseStatus(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return StatusFor(domain.KindOf(err))
}
