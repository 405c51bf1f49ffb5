package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Payment metrics
	ReconciliationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payrelay_reconciliations_total",
		Help: "Reconciliations by requested action and outcome",
	}, []string{"action", "outcome"})

	PaymentIntentsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payrelay_payment_intents_created_total",
		Help: "Payment intents created",
	})

	ProcessorLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payrelay_processor_latency_seconds",
		Help:    "Latency of payment processor calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// Notification metrics
	PushNotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payrelay_push_notifications_total",
		Help: "Relayed push notifications by collection and result",
	}, []string{"collection", "result"})
)
