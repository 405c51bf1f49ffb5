package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/payment-relay/internal/domain"
	"github.com/seu-repo/payment-relay/internal/mocks"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func newTestReconciler(gw *mocks.MockPaymentGateway) *Reconciler {
	return NewReconciler(gw, ReconcilerConfig{}, newTestLogger())
}

var nonActionableStatuses = []domain.IntentStatus{
	domain.IntentStatusRequiresPaymentMethod,
	domain.IntentStatusRequiresConfirmation,
	domain.IntentStatusRequiresAction,
	domain.IntentStatusProcessing,
	domain.IntentStatusCanceled,
}

func TestDecide_Table(t *testing.T) {
	tests := []struct {
		action domain.ReconcileAction
		status domain.IntentStatus
		want   Decision
	}{
		{domain.ActionCancelOrRefund, domain.IntentStatusRequiresCapture, DecisionCancel},
		{domain.ActionCancelOrRefund, domain.IntentStatusSucceeded, DecisionRefund},
		{domain.ActionCancelOrRefund, domain.IntentStatusProcessing, DecisionNone},
		{domain.ActionRefund, domain.IntentStatusSucceeded, DecisionRefund},
		{domain.ActionRefund, domain.IntentStatusRequiresCapture, DecisionCancel},
		{domain.ActionRefund, domain.IntentStatusCanceled, DecisionReject},
	}

	for _, tt := range tests {
		t.Run(string(tt.action)+"/"+string(tt.status), func(t *testing.T) {
			if got := Decide(tt.action, tt.status); got != tt.want {
				t.Errorf("Decide(%s, %s) = %s, want %s", tt.action, tt.status, got, tt.want)
			}
		})
	}
}

func TestReconcile_RefundSucceeded(t *testing.T) {
	// Arrange
	gw := mocks.NewIntentGateway(domain.IntentStatusSucceeded)
	var gotReason string
	gw.CreateRefundFunc = func(ctx context.Context, intentID, reason, key string) (*domain.Refund, error) {
		gotReason = reason
		return &domain.Refund{ID: "re_123", Status: "succeeded"}, nil
	}
	r := newTestReconciler(gw)

	// Act
	out, err := r.Reconcile(context.Background(), domain.ReconciliationRequest{
		PaymentIntentID: "pi_123",
		Action:          domain.ActionRefund,
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gw.CallCount("CreateRefund") != 1 {
		t.Errorf("expected 1 refund call, got %d", gw.CallCount("CreateRefund"))
	}
	if gw.CallCount("CancelIntent") != 0 {
		t.Errorf("expected no cancel call, got %d", gw.CallCount("CancelIntent"))
	}
	if !out.Success || out.RefundID != "re_123" || out.Status != "succeeded" {
		t.Errorf("unexpected outcome %+v", out)
	}
	if gotReason != domain.DefaultRefundReason {
		t.Errorf("expected default reason %q, got %q", domain.DefaultRefundReason, gotReason)
	}
}

func TestReconcile_RefundUsesSuppliedReason(t *testing.T) {
	gw := mocks.NewIntentGateway(domain.IntentStatusSucceeded)
	var gotReason string
	gw.CreateRefundFunc = func(ctx context.Context, intentID, reason, key string) (*domain.Refund, error) {
		gotReason = reason
		return &domain.Refund{ID: "re_1", Status: "pending"}, nil
	}
	r := newTestReconciler(gw)

	_, err := r.Reconcile(context.Background(), domain.ReconciliationRequest{
		PaymentIntentID: "pi_123",
		Action:          domain.ActionRefund,
		Reason:          "duplicate",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotReason != "duplicate" {
		t.Errorf("expected reason duplicate, got %q", gotReason)
	}
}

func TestReconcile_RefundRequiresCaptureCancels(t *testing.T) {
	gw := mocks.NewIntentGateway(domain.IntentStatusRequiresCapture)
	r := newTestReconciler(gw)

	out, err := r.Reconcile(context.Background(), domain.ReconciliationRequest{
		PaymentIntentID: "pi_123",
		Action:          domain.ActionRefund,
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gw.CallCount("CancelIntent") != 1 {
		t.Errorf("expected 1 cancel call, got %d", gw.CallCount("CancelIntent"))
	}
	if gw.CallCount("CreateRefund") != 0 {
		t.Errorf("expected no refund call, got %d", gw.CallCount("CreateRefund"))
	}
	if !out.Success || out.Status != string(domain.IntentStatusCanceled) {
		t.Errorf("unexpected outcome %+v", out)
	}
}

func TestReconcile_RefundRejectedStates(t *testing.T) {
	for _, status := range nonActionableStatuses {
		t.Run(string(status), func(t *testing.T) {
			gw := mocks.NewIntentGateway(status)
			r := newTestReconciler(gw)

			out, err := r.Reconcile(context.Background(), domain.ReconciliationRequest{
				PaymentIntentID: "pi_123",
				Action:          domain.ActionRefund,
			})

			if !errors.Is(err, domain.ErrRejectedState) {
				t.Fatalf("expected RejectedState, got %v", err)
			}
			var derr *domain.Error
			if errors.As(err, &derr) && derr.Status != status {
				t.Errorf("expected status %s on error, got %s", status, derr.Status)
			}
			if out != nil {
				t.Errorf("expected nil outcome, got %+v", out)
			}
			if gw.MutatingCalls() != 0 {
				t.Errorf("expected no mutating calls, got %d", gw.MutatingCalls())
			}
		})
	}
}

func TestReconcile_CancelOrRefundRequiresCapture(t *testing.T) {
	gw := mocks.NewIntentGateway(domain.IntentStatusRequiresCapture)
	r := newTestReconciler(gw)

	out, err := r.Reconcile(context.Background(), domain.ReconciliationRequest{
		PaymentIntentID: "pi_123",
		Action:          domain.ActionCancelOrRefund,
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gw.CallCount("CancelIntent") != 1 || gw.MutatingCalls() != 1 {
		t.Errorf("expected exactly one cancel call, got %v", gw.Calls())
	}
	if !out.Success || !out.Cancelled {
		t.Errorf("expected cancelled outcome, got %+v", out)
	}
}

func TestReconcile_CancelOrRefundSucceeded(t *testing.T) {
	gw := mocks.NewIntentGateway(domain.IntentStatusSucceeded)
	var gotReason = "unset"
	gw.CreateRefundFunc = func(ctx context.Context, intentID, reason, key string) (*domain.Refund, error) {
		gotReason = reason
		return &domain.Refund{ID: "re_1", Status: "succeeded"}, nil
	}
	r := newTestReconciler(gw)

	out, err := r.Reconcile(context.Background(), domain.ReconciliationRequest{
		PaymentIntentID: "pi_123",
		Action:          domain.ActionCancelOrRefund,
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gw.CallCount("CreateRefund") != 1 || gw.MutatingCalls() != 1 {
		t.Errorf("expected exactly one refund call, got %v", gw.Calls())
	}
	if !out.Success || !out.Refunded {
		t.Errorf("expected refunded outcome, got %+v", out)
	}
	if gotReason != "" {
		t.Errorf("expected no reason on cancel_or_refund, got %q", gotReason)
	}
}

func TestReconcile_CancelOrRefundNothingToDo(t *testing.T) {
	for _, status := range nonActionableStatuses {
		t.Run(string(status), func(t *testing.T) {
			gw := mocks.NewIntentGateway(status)
			r := newTestReconciler(gw)

			out, err := r.Reconcile(context.Background(), domain.ReconciliationRequest{
				PaymentIntentID: "pi_123",
				Action:          domain.ActionCancelOrRefund,
			})

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if out.Success {
				t.Error("expected success=false")
			}
			if out.Message != NothingToCancelMessage {
				t.Errorf("expected message %q, got %q", NothingToCancelMessage, out.Message)
			}
			if gw.MutatingCalls() != 0 {
				t.Errorf("expected no mutating calls, got %d", gw.MutatingCalls())
			}
		})
	}
}

func TestReconcile_EmptyID(t *testing.T) {
	gw := mocks.NewIntentGateway(domain.IntentStatusSucceeded)
	r := newTestReconciler(gw)

	for _, id := range []string{"", "   "} {
		_, err := r.Reconcile(context.Background(), domain.ReconciliationRequest{
			PaymentIntentID: id,
			Action:          domain.ActionRefund,
		})
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("expected InvalidRequest for %q, got %v", id, err)
		}
	}

	if len(gw.Calls()) != 0 {
		t.Errorf("expected zero remote calls, got %v", gw.Calls())
	}
}

func TestReconcile_UnknownAction(t *testing.T) {
	gw := mocks.NewIntentGateway(domain.IntentStatusSucceeded)
	r := newTestReconciler(gw)

	_, err := r.Reconcile(context.Background(), domain.ReconciliationRequest{
		PaymentIntentID: "pi_123",
		Action:          "capture",
	})

	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected InvalidRequest, got %v", err)
	}
	if len(gw.Calls()) != 0 {
		t.Errorf("expected zero remote calls, got %v", gw.Calls())
	}
}

func TestReconcile_NotFound(t *testing.T) {
	gw := &mocks.MockPaymentGateway{
		FetchIntentFunc: func(ctx context.Context, id string) (*domain.PaymentIntent, error) {
			return nil, domain.NotFound("stripe: retrieve payment intent", errors.New("resource_missing"))
		},
	}
	r := newTestReconciler(gw)

	_, err := r.Reconcile(context.Background(), domain.ReconciliationRequest{
		PaymentIntentID: "pi_missing",
		Action:          domain.ActionRefund,
	})

	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if gw.MutatingCalls() != 0 {
		t.Errorf("expected no mutating calls, got %d", gw.MutatingCalls())
	}
}

func TestReconcile_UnclassifiedFetchErrorIsRemoteFailure(t *testing.T) {
	gw := &mocks.MockPaymentGateway{
		FetchIntentFunc: func(ctx context.Context, id string) (*domain.PaymentIntent, error) {
			return nil, errors.New("connection reset")
		},
	}
	r := newTestReconciler(gw)

	_, err := r.Reconcile(context.Background(), domain.ReconciliationRequest{
		PaymentIntentID: "pi_123",
		Action:          domain.ActionRefund,
	})

	if !errors.Is(err, domain.ErrRemoteFailure) {
		t.Fatalf("expected RemoteFailure, got %v", err)
	}
}

func TestReconcile_MutatingCallFailureNotRetried(t *testing.T) {
	gw := mocks.NewIntentGateway(domain.IntentStatusSucceeded)
	gw.CreateRefundFunc = func(ctx context.Context, intentID, reason, key string) (*domain.Refund, error) {
		return nil, domain.NotFound("stripe: refund payment", errors.New("charge missing"))
	}
	r := newTestReconciler(gw)

	_, err := r.Reconcile(context.Background(), domain.ReconciliationRequest{
		PaymentIntentID: "pi_123",
		Action:          domain.ActionRefund,
	})

	if !errors.Is(err, domain.ErrRemoteFailure) {
		t.Fatalf("expected RemoteFailure, got %v", err)
	}
	if gw.CallCount("CreateRefund") != 1 {
		t.Errorf("expected a single refund attempt, got %d", gw.CallCount("CreateRefund"))
	}
}

func TestReconcile_AlreadyCanceledIsIdempotent(t *testing.T) {
	gw := mocks.NewIntentGateway(domain.IntentStatusCanceled)
	r := newTestReconciler(gw)
	req := domain.ReconciliationRequest{PaymentIntentID: "pi_123", Action: domain.ActionRefund}

	for i := 0; i < 2; i++ {
		if _, err := r.Reconcile(context.Background(), req); !errors.Is(err, domain.ErrRejectedState) {
			t.Fatalf("call %d: expected RejectedState, got %v", i, err)
		}
	}

	if gw.MutatingCalls() != 0 {
		t.Errorf("expected no mutating calls, got %d", gw.MutatingCalls())
	}
	if gw.CallCount("FetchIntent") != 2 {
		t.Errorf("expected status fetched on every call, got %d", gw.CallCount("FetchIntent"))
	}
}

func TestReconcile_FetchesBeforeActing(t *testing.T) {
	gw := mocks.NewIntentGateway(domain.IntentStatusRequiresCapture)
	r := newTestReconciler(gw)

	_, err := r.Reconcile(context.Background(), domain.ReconciliationRequest{
		PaymentIntentID: "pi_123",
		Action:          domain.ActionCancelOrRefund,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := gw.Calls()
	if len(calls) != 2 || calls[0] != "FetchIntent" || calls[1] != "CancelIntent" {
		t.Errorf("expected [FetchIntent CancelIntent], got %v", calls)
	}
}

func TestReconcile_CallerCancellationDoesNotAbortRemoteCall(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	gw := mocks.NewIntentGateway(domain.IntentStatusRequiresCapture)
	gw.FetchIntentFunc = func(c context.Context, id string) (*domain.PaymentIntent, error) {
		// the caller goes away while the fetch is in flight
		cancel()
		return &domain.PaymentIntent{ID: id, Status: domain.IntentStatusRequiresCapture}, nil
	}
	var cancelCtxErr error
	gw.CancelIntentFunc = func(c context.Context, id, key string) (*domain.PaymentIntent, error) {
		cancelCtxErr = c.Err()
		return &domain.PaymentIntent{ID: id, Status: domain.IntentStatusCanceled}, nil
	}
	r := newTestReconciler(gw)

	out, err := r.Reconcile(ctx, domain.ReconciliationRequest{
		PaymentIntentID: "pi_123",
		Action:          domain.ActionCancelOrRefund,
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !out.Cancelled {
		t.Errorf("expected cancelled outcome, got %+v", out)
	}
	if cancelCtxErr != nil {
		t.Errorf("expected remote context to survive caller cancellation, got %v", cancelCtxErr)
	}
}

func TestReconcile_IdempotencyKeyDerivedFromRequest(t *testing.T) {
	gw := mocks.NewIntentGateway(domain.IntentStatusSucceeded)
	var gotKey string
	gw.CreateRefundFunc = func(ctx context.Context, intentID, reason, key string) (*domain.Refund, error) {
		gotKey = key
		return &domain.Refund{ID: "re_1", Status: "succeeded"}, nil
	}
	r := NewReconciler(gw, ReconcilerConfig{RemoteTimeout: time.Second}, newTestLogger())

	_, err := r.Reconcile(context.Background(), domain.ReconciliationRequest{
		PaymentIntentID: "pi_123",
		Action:          domain.ActionRefund,
		IdempotencyKey:  "req-42",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotKey != "req-42:refund:refund" {
		t.Errorf("expected key req-42:refund:refund, got %q", gotKey)
	}
}

func TestReconcile_RefundKeysDifferByAction(t *testing.T) {
	gw := mocks.NewIntentGateway(domain.IntentStatusSucceeded)
	var keys []string
	gw.CreateRefundFunc = func(ctx context.Context, intentID, reason, key string) (*domain.Refund, error) {
		keys = append(keys, key)
		return &domain.Refund{ID: "re_1", Status: "succeeded"}, nil
	}
	r := NewReconciler(gw, ReconcilerConfig{RemoteTimeout: time.Second}, newTestLogger())

	for _, action := range []domain.ReconcileAction{domain.ActionCancelOrRefund, domain.ActionRefund} {
		_, err := r.Reconcile(context.Background(), domain.ReconciliationRequest{
			PaymentIntentID: "pi_123",
			Action:          action,
			IdempotencyKey:  "shared-key",
		})
		if err != nil {
			t.Fatalf("%s: expected no error, got %v", action, err)
		}
	}

	if len(keys) != 2 {
		t.Fatalf("expected 2 refund calls, got %d", len(keys))
	}
	if keys[0] == keys[1] {
		t.Errorf("expected distinct keys per action, both were %q", keys[0])
	}
}
