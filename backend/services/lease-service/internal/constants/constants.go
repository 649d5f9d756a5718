package constants

import "time"

// Visit scheduling
const (
	// DefaultVisitDuration is the visit window added to the requested time.
	// Overridable with VISIT_DURATION.
	DefaultVisitDuration = time.Minute
)

// Notification outbox
const (
	OutboxBatchSize          = 50
	OutboxMaxAttempts        = 5
	OutboxSweepSchedule      = "@every 30s"
	OutboxDeliveryTimeout    = 20 * time.Second
	NotificationInboxLimit   = 100
	NotificationEventsStream = "LEASE_EVENTS"
	NotificationSubjectRoot  = "lease.notification"
)

// OutboxClaimLease must outlast a full batch of timed-out deliveries.
const OutboxClaimLease = OutboxBatchSize * OutboxDeliveryTimeout

// Payments
const (
	SimulatedReceiptPattern = "simulated_receipt_%d.pdf"
)

const ShutdownGracePeriod = 10 * time.Second
