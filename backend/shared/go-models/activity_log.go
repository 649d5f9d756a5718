package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ActivityAction string

const (
	ActivityContractCreated      ActivityAction = "contract_created"
	ActivityContractCancelled    ActivityAction = "contract_cancelled"
	ActivityContractValidated    ActivityAction = "contract_validated"
	ActivityPaymentReceived      ActivityAction = "payment_received"
	ActivityPaymentStatusChanged ActivityAction = "payment_status_changed"
)

type ActivityTargetType string

const (
	TargetRentalRequest ActivityTargetType = "RENTAL_REQUEST"
	TargetContract      ActivityTargetType = "CONTRACT"
	TargetPayment       ActivityTargetType = "PAYMENT"
)

type ActivityLog struct {
	ID         uuid.UUID          `json:"id"`
	ActorID    uuid.UUID          `json:"actor_id"`
	Action     ActivityAction     `json:"action"`
	TargetID   uuid.UUID          `json:"target_id"`
	TargetType ActivityTargetType `json:"target_type"`
	Details    *json.RawMessage   `json:"details,omitempty"` // JSONB snapshot of the transition
	CreatedAt  time.Time          `json:"created_at"`
}
