package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.RegisteredClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func newAuthApp() *fiber.App {
	app := fiber.New()
	app.Use(AuthRequired(JWTConfig{Secret: testSecret, Issuer: "payment-relay"}))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("subject").(string))
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	valid := signToken(t, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "payment-relay",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}, testSecret)
	expired := signToken(t, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "payment-relay",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}, testSecret)
	wrongKey := signToken(t, jwt.RegisteredClaims{Subject: "user-1", Issuer: "payment-relay"}, "other")
	wrongIssuer := signToken(t, jwt.RegisteredClaims{Subject: "user-1", Issuer: "someone-else"}, testSecret)

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"valid token", "Bearer " + valid, fiber.StatusOK},
		{"missing header", "", fiber.StatusUnauthorized},
		{"bad scheme", "Basic " + valid, fiber.StatusUnauthorized},
		{"expired", "Bearer " + expired, fiber.StatusUnauthorized},
		{"wrong key", "Bearer " + wrongKey, fiber.StatusUnauthorized},
		{"wrong issuer", "Bearer " + wrongIssuer, fiber.StatusUnauthorized},
	}

	app := newAuthApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.code {
				t.Errorf("expected %d, got %d", tt.code, resp.StatusCode)
			}
		})
	}
}
