package mocks

import (
	"context"
	"sync"

	"github.com/seu-repo/payment-relay/internal/domain"
)

// MockPaymentGateway is a mock implementation of PaymentGateway interface.
// Every call is recorded by method name.
type MockPaymentGateway struct {
	FetchIntentFunc   func(ctx context.Context, id string) (*domain.PaymentIntent, error)
	CreateIntentFunc  func(ctx context.Context, params domain.CreateIntentParams) (*domain.PaymentIntent, error)
	CaptureIntentFunc func(ctx context.Context, id, idempotencyKey string) (*domain.PaymentIntent, error)
	CancelIntentFunc  func(ctx context.Context, id, idempotencyKey string) (*domain.PaymentIntent, error)
	CreateRefundFunc  func(ctx context.Context, intentID, reason, idempotencyKey string) (*domain.Refund, error)

	mu    sync.Mutex
	calls []string
}

// NewIntentGateway returns a mock whose FetchIntent reports the given status
// and whose mutating calls succeed.
func NewIntentGateway(status domain.IntentStatus) *MockPaymentGateway {
	return &MockPaymentGateway{
		FetchIntentFunc: func(ctx context.Context, id string) (*domain.PaymentIntent, error) {
			return &domain.PaymentIntent{ID: id, Status: status, Amount: 1000, Currency: "myr"}, nil
		},
		CancelIntentFunc: func(ctx context.Context, id, key string) (*domain.PaymentIntent, error) {
			return &domain.PaymentIntent{ID: id, Status: domain.IntentStatusCanceled}, nil
		},
		CreateRefundFunc: func(ctx context.Context, intentID, reason, key string) (*domain.Refund, error) {
			return &domain.Refund{ID: "re_" + intentID, Status: "succeeded"}, nil
		},
	}
}

func (m *MockPaymentGateway) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

// Calls returns the method names invoked so far, in order.
func (m *MockPaymentGateway) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times the named method was invoked.
func (m *MockPaymentGateway) CallCount(name string) int {
	n := 0
	for _, c := range m.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

// MutatingCalls counts capture, cancel and refund calls.
func (m *MockPaymentGateway) MutatingCalls() int {
	return m.CallCount("CaptureIntent") + m.CallCount("CancelIntent") + m.CallCount("CreateRefund")
}

func (m *MockPaymentGateway) FetchIntent(ctx context.Context, id string) (*domain.PaymentIntent, error) {
	m.record("FetchIntent")
	if m.FetchIntentFunc != nil {
		return m.FetchIntentFunc(ctx, id)
	}
	return nil, domain.NotFound("mock: no intent", nil)
}

func (m *MockPaymentGateway) CreateIntent(ctx context.Context, params domain.CreateIntentParams) (*domain.PaymentIntent, error) {
	m.record("CreateIntent")
	if m.CreateIntentFunc != nil {
		return m.CreateIntentFunc(ctx, params)
	}
	return &domain.PaymentIntent{ID: "pi_mock", ClientSecret: "pi_mock_secret", Amount: params.Amount, Currency: params.Currency}, nil
}

func (m *MockPaymentGateway) CaptureIntent(ctx context.Context, id, idempotencyKey string) (*domain.PaymentIntent, error) {
	m.record("CaptureIntent")
	if m.CaptureIntentFunc != nil {
		return m.CaptureIntentFunc(ctx, id, idempotencyKey)
	}
	return &domain.PaymentIntent{ID: id, Status: domain.IntentStatusSucceeded}, nil
}

func (m *MockPaymentGateway) CancelIntent(ctx context.Context, id, idempotencyKey string) (*domain.PaymentIntent, error) {
	m.record("CancelIntent")
	if m.CancelIntentFunc != nil {
		return m.CancelIntentFunc(ctx, id, idempotencyKey)
	}
	return &domain.PaymentIntent{ID: id, Status: domain.IntentStatusCanceled}, nil
}

func (m *MockPaymentGateway) CreateRefund(ctx context.Context, intentID, reason, idempotencyKey string) (*domain.Refund, error) {
	m.record("CreateRefund")
	if m.CreateRefundFunc != nil {
		return m.CreateRefundFunc(ctx, intentID, reason, idempotencyKey)
	}
	return &domain.Refund{ID: "re_mock", Status: "succeeded"}, nil
}

// MockPushSender is a mock implementation of PushSender interface
type MockPushSender struct {
	SendFunc func(ctx context.Context, msg domain.PushMessage) error

	mu   sync.Mutex
	Sent []domain.PushMessage
}

func (m *MockPushSender) Send(ctx context.Context, msg domain.PushMessage) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(ctx, msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.Sent = append(m.Sent, msg)
	m.mu.Unlock()
	return nil
}
