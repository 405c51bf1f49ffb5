package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/seu-repo/payment-relay/internal/domain"
	"github.com/seu-repo/payment-relay/internal/mocks"
)

func TestGateway_OpensAfterRemoteFailures(t *testing.T) {
	calls := 0
	next := &mocks.MockPaymentGateway{
		FetchIntentFunc: func(ctx context.Context, id string) (*domain.PaymentIntent, error) {
			calls++
			return nil, domain.RemoteFailure("stripe: retrieve payment intent", errors.New("boom"))
		},
	}

	gw := NewGateway(next, Config{MinRequests: 3, FailureThreshold: 0.5, Timeout: time.Hour}, zap.NewNop())

	for i := 0; i < 3; i++ {
		if _, err := gw.FetchIntent(context.Background(), "pi_1"); !errors.Is(err, domain.ErrRemoteFailure) {
			t.Fatalf("call %d: expected RemoteFailure, got %v", i, err)
		}
	}

	_, err := gw.FetchIntent(context.Background(), "pi_1")
	if !errors.Is(err, domain.ErrRemoteFailure) {
		t.Fatalf("expected RemoteFailure from open breaker, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls to reach the gateway, got %d", calls)
	}
}

func TestGateway_NotFoundDoesNotTrip(t *testing.T) {
	calls := 0
	next := &mocks.MockPaymentGateway{
		FetchIntentFunc: func(ctx context.Context, id string) (*domain.PaymentIntent, error) {
			calls++
			return nil, domain.NotFound("stripe: retrieve payment intent", errors.New("404"))
		},
	}

	gw := NewGateway(next, Config{MinRequests: 2, FailureThreshold: 0.5, Timeout: time.Hour}, zap.NewNop())

	for i := 0; i < 5; i++ {
		if _, err := gw.FetchIntent(context.Background(), "pi_missing"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("call %d: expected NotFound, got %v", i, err)
		}
	}
	if calls != 5 {
		t.Errorf("expected every call to reach the gateway, got %d", calls)
	}
}

func TestGateway_PassesThroughResult(t *testing.T) {
	next := &mocks.MockPaymentGateway{
		CreateRefundFunc: func(ctx context.Context, intentID, reason, key string) (*domain.Refund, error) {
			return &domain.Refund{ID: "re_1", Status: "succeeded"}, nil
		},
	}

	gw := NewGateway(next, Config{}, zap.NewNop())

	r, err := gw.CreateRefund(context.Background(), "pi_1", "", "k")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if r.ID != "re_1" {
		t.Errorf("expected re_1, got %s", r.ID)
	}
}

func TestGateway_StateReportsOpen(t *testing.T) {
	next := &mocks.MockPaymentGateway{
		CancelIntentFunc: func(ctx context.Context, id, key string) (*domain.PaymentIntent, error) {
			return nil, domain.RemoteFailure("stripe: cancel payment intent", errors.New("boom"))
		},
	}

	gw := NewGateway(next, Config{MinRequests: 1, FailureThreshold: 0.5, Timeout: time.Hour}, zap.NewNop())
	if gw.State() != gobreaker.StateClosed {
		t.Fatalf("expected closed breaker, got %s", gw.State())
	}

	gw.CancelIntent(context.Background(), "pi_1", "k")

	if gw.State() != gobreaker.StateOpen {
		t.Errorf("expected open breaker, got %s", gw.State())
	}
}
