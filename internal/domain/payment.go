package domain

import (
	"fmt"
)

// IntentStatus is the lifecycle state of a payment intent as reported by the processor.
type IntentStatus string

const (
	IntentStatusRequiresPaymentMethod IntentStatus = "requires_payment_method"
	IntentStatusRequiresConfirmation  IntentStatus = "requires_confirmation"
	IntentStatusRequiresAction        IntentStatus = "requires_action"
	IntentStatusProcessing            IntentStatus = "processing"
	IntentStatusRequiresCapture       IntentStatus = "requires_capture"
	IntentStatusCanceled              IntentStatus = "canceled"
	IntentStatusSucceeded             IntentStatus = "succeeded"
)

// ParseIntentStatus converts a raw processor status into an IntentStatus.
// Unknown values are rejected so a new remote status never slips through the decision table.
func ParseIntentStatus(raw string) (IntentStatus, error) {
	switch s := IntentStatus(raw); s {
	case IntentStatusRequiresPaymentMethod,
		IntentStatusRequiresConfirmation,
		IntentStatusRequiresAction,
		IntentStatusProcessing,
		IntentStatusRequiresCapture,
		IntentStatusCanceled,
		IntentStatusSucceeded:
		return s, nil
	default:
		return "", fmt.Errorf("unrecognized payment intent status %q", raw)
	}
}

// ReconcileAction is the action a caller asks the reconciler to perform.
type ReconcileAction string

const (
	ActionCancelOrRefund ReconcileAction = "cancel_or_refund"
	ActionRefund         ReconcileAction = "refund"
)

// Valid reports whether the action is one the reconciler understands.
func (a ReconcileAction) Valid() bool {
	switch a {
	case ActionCancelOrRefund, ActionRefund:
		return true
	}
	return false
}

// DefaultRefundReason is sent to the processor when the caller gives none.
const DefaultRefundReason = "requested_by_customer"

// PaymentIntent is a transient read-through view of the processor's intent.
type PaymentIntent struct {
	ID           string       `json:"id"`
	Status       IntentStatus `json:"status"`
	Amount       int64        `json:"amount"`
	Currency     string       `json:"currency"`
	ClientSecret string       `json:"client_secret,omitempty"`
}

// Refund is the processor's answer to a refund request.
type Refund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ReconciliationRequest is built per API call and never persisted.
type ReconciliationRequest struct {
	PaymentIntentID string
	Action          ReconcileAction
	Reason          string
	// IdempotencyKey prefixes the keys sent with mutating calls. Generated when empty.
	IdempotencyKey string
}

// Outcome is the result of a reconciliation that did not fail.
type Outcome struct {
	Success   bool   `json:"success"`
	Cancelled bool   `json:"cancelled,omitempty"`
	Refunded  bool   `json:"refunded,omitempty"`
	RefundID  string `json:"refundId,omitempty"`
	// Status is the refund status after a refund, or the intent status after a cancel.
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// CreateIntentParams describes a new payment intent.
type CreateIntentParams struct {
	Amount         int64
	Currency       string
	CaptureMethod  string
	IdempotencyKey string
}
