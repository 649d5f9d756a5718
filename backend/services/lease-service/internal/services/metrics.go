package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lease_transitions_total",
			Help: "Committed lifecycle transitions by entity and target status",
		},
		[]string{"entity", "status"},
	)

	transitionRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lease_transition_rejections_total",
			Help: "Lifecycle operations refused by a business rule or a lost race",
		},
		[]string{"operation", "code"},
	)

	notificationDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lease_notification_deliveries_total",
			Help: "Outbox delivery attempts by channel and result",
		},
		[]string{"channel", "result"},
	)

	outboxBacklog = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lease_notification_outbox_backlog",
			Help: "Pending outbox rows seen by the last dispatcher pass",
		},
	)
)

func recordTransition(entity string, status string) {
	transitionsTotal.WithLabelValues(entity, status).Inc()
}

func recordRejection(operation string, code string) {
	transitionRejectionsTotal.WithLabelValues(operation, code).Inc()
}
