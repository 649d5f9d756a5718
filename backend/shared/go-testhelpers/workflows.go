package testhelpers

import (
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/arrienda/mono-repo/backend/shared/go-models"
)

// WaitForNotification polls the user's inbox until a notification of the
// given type appears.
func (h *TestHelper) WaitForNotification(userID uuid.UUID, typ models.NotificationType, maxWait time.Duration) *models.Notification {
	deadline := time.Now().Add(maxWait)
	for time.Now().Before(deadline) {
		ns, err := h.NotificationRepo.ListByUser(h.Ctx, userID, false, 50)
		require.NoError(h.T, err)
		for _, n := range ns {
			if n.Type == typ {
				return n
			}
		}
		time.Sleep(200 * time.Millisecond)
	}
	h.T.Fatalf("User %s did not receive a %s notification within %v", userID, typ, maxWait)
	return nil
}

// WaitForDelivery polls until the dispatcher has marked the notification
// delivered.
func (h *TestHelper) WaitForDelivery(userID, notificationID uuid.UUID, maxWait time.Duration) {
	deadline := time.Now().Add(maxWait)
	for time.Now().Before(deadline) {
		ns, err := h.NotificationRepo.ListByUser(h.Ctx, userID, false, 50)
		require.NoError(h.T, err)
		for _, n := range ns {
			if n.ID == notificationID && n.DeliveryStatus == models.DeliverySent {
				return
			}
		}
		time.Sleep(200 * time.Millisecond)
	}
	h.T.Fatalf("Notification %s was not delivered within %v", notificationID, maxWait)
}

// PropertyStatus reads the current status of a property.
func (h *TestHelper) PropertyStatus(propertyID uuid.UUID) models.PropertyStatus {
	p, err := h.PropertyRepo.GetByID(h.Ctx, propertyID)
	require.NoError(h.T, err)
	require.NotNil(h.T, p)
	return p.Status
}
