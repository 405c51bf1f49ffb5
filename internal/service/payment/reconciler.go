package payment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/seu-repo/payment-relay/internal/domain"
	"github.com/seu-repo/payment-relay/internal/observability/telemetry"
	"github.com/seu-repo/payment-relay/internal/ports"
)

// Decision is the effect the reconciler will apply for an (action, status) pair.
type Decision int

const (
	DecisionNone Decision = iota
	DecisionCancel
	DecisionRefund
	DecisionReject
)

func (d Decision) String() string {
	switch d {
	case DecisionCancel:
		return "cancel"
	case DecisionRefund:
		return "refund"
	case DecisionReject:
		return "reject"
	default:
		return "none"
	}
}

// Decide is the reconciliation decision table. It is a pure function of its inputs.
// An intent awaiting capture is canceled because funds were never settled;
// a succeeded intent is refunded. Anything else is a no-op for cancel_or_refund
// and a rejection for refund.
func Decide(action domain.ReconcileAction, status domain.IntentStatus) Decision {
	switch status {
	case domain.IntentStatusRequiresCapture:
		return DecisionCancel
	case domain.IntentStatusSucceeded:
		return DecisionRefund
	case domain.IntentStatusRequiresPaymentMethod,
		domain.IntentStatusRequiresConfirmation,
		domain.IntentStatusRequiresAction,
		domain.IntentStatusProcessing,
		domain.IntentStatusCanceled:
		// not actionable
	}

	if action == domain.ActionRefund {
		return DecisionReject
	}
	return DecisionNone
}

// NothingToCancelMessage is returned when cancel_or_refund finds nothing to do.
const NothingToCancelMessage = "Nothing to cancel or refund."

// Reconciler applies Decide against the processor. It keeps no state between calls.
type Reconciler struct {
	gateway       ports.PaymentGateway
	defaultReason string
	remoteTimeout time.Duration
	log           *zap.Logger
}

// ReconcilerConfig holds reconciler settings.
type ReconcilerConfig struct {
	// DefaultRefundReason is used for refund requests without a reason.
	DefaultRefundReason string
	// RemoteTimeout bounds the remote calls of one reconciliation. Zero means no bound.
	RemoteTimeout time.Duration
}

func NewReconciler(gateway ports.PaymentGateway, cfg ReconcilerConfig, log *zap.Logger) *Reconciler {
	if cfg.DefaultRefundReason == "" {
		cfg.DefaultRefundReason = domain.DefaultRefundReason
	}
	return &Reconciler{
		gateway:       gateway,
		defaultReason: cfg.DefaultRefundReason,
		remoteTimeout: cfg.RemoteTimeout,
		log:           log,
	}
}

// Reconcile fetches the intent's current status and issues at most one mutating call.
func (r *Reconciler) Reconcile(ctx context.Context, req domain.ReconciliationRequest) (*domain.Outcome, error) {
	id := strings.TrimSpace(req.PaymentIntentID)
	if id == "" {
		return nil, domain.InvalidRequest("Payment Intent ID is required")
	}
	if !req.Action.Valid() {
		return nil, domain.InvalidRequest("unknown action: " + string(req.Action))
	}

	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, "payment.reconcile")
	defer span.End()
	span.SetAttributes(
		attribute.String("payment_intent.id", id),
		attribute.String("reconcile.action", string(req.Action)),
	)

	// A caller hanging up must not abandon a remote call half way.
	remoteCtx := context.WithoutCancel(ctx)
	if r.remoteTimeout > 0 {
		var cancel context.CancelFunc
		remoteCtx, cancel = context.WithTimeout(remoteCtx, r.remoteTimeout)
		defer cancel()
	}

	outcome, err := r.reconcile(remoteCtx, id, req)

	label := outcomeLabel(outcome, err)
	telemetry.ReconciliationsTotal.WithLabelValues(string(req.Action), label).Inc()
	span.SetAttributes(attribute.String("reconcile.outcome", label))
	if err != nil && !errors.Is(err, domain.ErrRejectedState) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return outcome, err
}

func (r *Reconciler) reconcile(ctx context.Context, id string, req domain.ReconciliationRequest) (*domain.Outcome, error) {
	pi, err := r.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	decision := Decide(req.Action, pi.Status)
	r.log.Info("Reconciling payment intent",
		zap.String("payment_intent_id", id),
		zap.String("action", string(req.Action)),
		zap.String("status", string(pi.Status)),
		zap.String("decision", decision.String()),
	)

	// Keys are scoped by action: the two actions send different refund params,
	// and the processor rejects a reused key whose params changed.
	keyPrefix := req.IdempotencyKey
	if keyPrefix == "" {
		keyPrefix = uuid.New().String()
	}
	keyPrefix += ":" + string(req.Action)

	switch decision {
	case DecisionCancel:
		canceled, err := r.cancel(ctx, id, keyPrefix+":cancel")
		if err != nil {
			return nil, err
		}
		if req.Action == domain.ActionCancelOrRefund {
			return &domain.Outcome{Success: true, Cancelled: true}, nil
		}
		return &domain.Outcome{Success: true, Status: string(canceled.Status)}, nil

	case DecisionRefund:
		if req.Action == domain.ActionCancelOrRefund {
			if _, err := r.refund(ctx, id, "", keyPrefix+":refund"); err != nil {
				return nil, err
			}
			return &domain.Outcome{Success: true, Refunded: true}, nil
		}

		reason := strings.TrimSpace(req.Reason)
		if reason == "" {
			reason = r.defaultReason
		}
		refund, err := r.refund(ctx, id, reason, keyPrefix+":refund")
		if err != nil {
			return nil, err
		}
		return &domain.Outcome{Success: true, RefundID: refund.ID, Status: refund.Status}, nil

	case DecisionReject:
		r.log.Info("Payment intent not in a refundable state",
			zap.String("payment_intent_id", id),
			zap.String("status", string(pi.Status)),
		)
		return nil, domain.RejectedState(pi.Status)

	default:
		return &domain.Outcome{Success: false, Message: NothingToCancelMessage}, nil
	}
}

func (r *Reconciler) fetch(ctx context.Context, id string) (*domain.PaymentIntent, error) {
	start := time.Now()
	pi, err := r.gateway.FetchIntent(ctx, id)
	telemetry.ProcessorLatency.WithLabelValues("fetch_intent").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, ensureClassified("retrieve payment intent", err)
	}
	return pi, nil
}

func (r *Reconciler) cancel(ctx context.Context, id, key string) (*domain.PaymentIntent, error) {
	start := time.Now()
	pi, err := r.gateway.CancelIntent(ctx, id, key)
	telemetry.ProcessorLatency.WithLabelValues("cancel_intent").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, remoteFailure("cancel payment intent", err)
	}
	return pi, nil
}

func (r *Reconciler) refund(ctx context.Context, id, reason, key string) (*domain.Refund, error) {
	start := time.Now()
	refund, err := r.gateway.CreateRefund(ctx, id, reason, key)
	telemetry.ProcessorLatency.WithLabelValues("create_refund").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, remoteFailure("refund payment", err)
	}
	return refund, nil
}

// ensureClassified keeps domain errors as they are and wraps anything else as a remote failure.
func ensureClassified(op string, err error) error {
	if domain.KindOf(err) != "" {
		return err
	}
	return domain.RemoteFailure(op, err)
}

// remoteFailure reports a rejected mutating call. Once the intent was found,
// any failure of the follow-up call is the processor refusing it.
func remoteFailure(op string, err error) error {
	if errors.Is(err, domain.ErrRemoteFailure) {
		return err
	}
	return domain.RemoteFailure(op, err)
}

func outcomeLabel(o *domain.Outcome, err error) string {
	switch {
	case err != nil:
		return string(domain.KindOf(err))
	case o.Cancelled:
		return "cancelled"
	case o.Refunded || o.RefundID != "":
		return "refunded"
	case o.Success:
		return "cancelled"
	default:
		return "noop"
	}
}
