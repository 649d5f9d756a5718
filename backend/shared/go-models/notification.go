package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationRentalRequest        NotificationType = "rental_request"
	NotificationRequestAccepted      NotificationType = "request_accepted"
	NotificationRequestRejected      NotificationType = "request_rejected"
	NotificationRequestCancelled     NotificationType = "request_cancelled"
	NotificationCounterProposal      NotificationType = "counter_proposal"
	NotificationCounterAccepted      NotificationType = "counter_accepted"
	NotificationCounterRejected      NotificationType = "counter_rejected"
	NotificationContractSent         NotificationType = "contract_sent"
	NotificationContractAccepted     NotificationType = "contract_accepted"
	NotificationContractRejected     NotificationType = "contract_rejected"
	NotificationContractValidated    NotificationType = "contract_validated"
	NotificationContractCancelled    NotificationType = "contract_cancelled"
	NotificationPaymentRecorded      NotificationType = "payment_recorded"
	NotificationPaymentStatusChanged NotificationType = "payment_status_changed"
)

type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "PENDING"
	DeliverySent    DeliveryStatus = "SENT"
	DeliveryFailed  DeliveryStatus = "FAILED"
)

// Notification is both the user's inbox entry and the outbox row the
// dispatcher delivers after the owning transition commits.
type Notification struct {
	ID               uuid.UUID        `json:"id"`
	UserID           uuid.UUID        `json:"user_id"`
	Type             NotificationType `json:"type"`
	Title            string           `json:"title"`
	Message          string           `json:"message"`
	Data             json.RawMessage  `json:"data,omitempty"`
	ReadAt           *time.Time       `json:"read_at,omitempty"`
	DeliveryStatus   DeliveryStatus   `json:"delivery_status"`
	DeliveryAttempts int              `json:"delivery_attempts"`
	LastError        *string          `json:"-"`
	DeliveredAt      *time.Time       `json:"delivered_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// NewNotification builds a pending outbox row. data is marshalled as-is;
// a marshalling failure leaves Data empty rather than dropping the row.
func NewNotification(userID uuid.UUID, typ NotificationType, title, message string, data map[string]any) *Notification {
	n := &Notification{
		ID:             uuid.New(),
		UserID:         userID,
		Type:           typ,
		Title:          title,
		Message:        message,
		DeliveryStatus: DeliveryPending,
		CreatedAt:      time.Now().UTC(),
	}
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			n.Data = raw
		}
	}
	return n
}
