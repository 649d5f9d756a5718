package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/constants"
	"github.com/arrienda/mono-repo/backend/shared/go-models"
	"github.com/arrienda/mono-repo/backend/shared/go-repositories"
	"github.com/arrienda/mono-repo/backend/shared/go-utils"
)

// OutboxKicker wakes the dispatcher after a transition commits.
type OutboxKicker interface {
	Kick()
}

// NotificationDispatcher delivers committed outbox rows. It runs on its own
// goroutine and from the cron sweep, possibly on several replicas; each
// pass only sees rows it claimed. Failures are recorded on the row and
// never reach the caller of the transition.
type NotificationDispatcher struct {
	notifRepo   repositories.NotificationRepository
	userRepo    repositories.UserRepository
	channels    []DeliveryChannel
	batchSize   int
	maxAttempts int
	claimLease  time.Duration

	kick chan struct{}
}

func NewNotificationDispatcher(
	notifRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	channels []DeliveryChannel,
) *NotificationDispatcher {
	return &NotificationDispatcher{
		notifRepo:   notifRepo,
		userRepo:    userRepo,
		channels:    channels,
		batchSize:   constants.OutboxBatchSize,
		maxAttempts: constants.OutboxMaxAttempts,
		claimLease:  constants.OutboxClaimLease,
		kick:        make(chan struct{}, 1),
	}
}

// Kick never blocks; a pending kick already covers new rows.
func (d *NotificationDispatcher) Kick() {
	select {
	case d.kick <- struct{}{}:
	default:
	}
}

// Run drains the outbox on every kick until ctx is done.
func (d *NotificationDispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.kick:
			d.DrainOnce(ctx)
		}
	}
}

// DrainOnce delivers one batch and returns how many rows it delivered.
func (d *NotificationDispatcher) DrainOnce(ctx context.Context) int {
	pending, err := d.notifRepo.ClaimPending(ctx, d.batchSize, d.claimLease)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to read notification outbox")
		return 0
	}
	outboxBacklog.Set(float64(len(pending)))

	delivered := 0
	for _, n := range pending {
		if ctx.Err() != nil {
			break
		}
		if d.deliver(ctx, n) {
			delivered++
		}
	}
	return delivered
}

func (d *NotificationDispatcher) deliver(ctx context.Context, n *models.Notification) bool {
	log := utils.Logger.WithFields(logrus.Fields{
		"notification_id": n.ID,
		"type":            n.Type,
		"user_id":         n.UserID,
	})

	dctx, cancel := context.WithTimeout(ctx, constants.OutboxDeliveryTimeout)
	defer cancel()

	var failures []string
	if len(d.channels) > 0 {
		user, err := d.userRepo.GetByID(dctx, n.UserID)
		switch {
		case err != nil:
			failures = append(failures, "load user: "+err.Error())
		case user == nil:
			failures = append(failures, "load user: "+errRecipientMissing.Error())
		default:
			for _, ch := range d.channels {
				if err := ch.Deliver(dctx, user, n); err != nil {
					notificationDeliveriesTotal.WithLabelValues(ch.Name(), "failed").Inc()
					log.WithError(err).Warnf("Notification delivery via %s failed", ch.Name())
					failures = append(failures, ch.Name()+": "+err.Error())
					continue
				}
				notificationDeliveriesTotal.WithLabelValues(ch.Name(), "sent").Inc()
			}
		}
	}

	if len(failures) > 0 {
		if err := d.notifRepo.MarkDeliveryFailed(ctx, n.ID, strings.Join(failures, "; "), d.maxAttempts); err != nil {
			log.WithError(err).Error("Failed to record notification delivery failure")
		}
		return false
	}
	if err := d.notifRepo.MarkDelivered(ctx, n.ID); err != nil {
		log.WithError(err).Error("Failed to mark notification delivered")
		return false
	}
	return true
}

var errRecipientMissing = errors.New("recipient no longer exists")
