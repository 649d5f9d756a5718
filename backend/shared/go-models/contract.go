package models

import (
	"time"

	"github.com/google/uuid"
)

type ContractStatus string

const (
	ContractPending   ContractStatus = "pending"
	ContractActive    ContractStatus = "active"
	ContractInactive  ContractStatus = "inactive"
	ContractExpired   ContractStatus = "expired"
	ContractRejected  ContractStatus = "rejected"
	ContractCancelled ContractStatus = "cancelled"
)

var contractTransitions = map[ContractStatus][]ContractStatus{
	ContractPending: {ContractActive, ContractRejected, ContractCancelled},
	ContractActive:  {ContractCancelled, ContractExpired},
}

// CanTransition reports whether a contract may move from one status to
// another. Expiry is only reachable from active.
func (s ContractStatus) CanTransition(to ContractStatus) bool {
	for _, next := range contractTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s ContractStatus) IsTerminal() bool {
	return len(contractTransitions[s]) == 0
}

// AcceptsPayments reports whether a tenant may record a payment against a
// contract in this status. The simulated path also allows pending.
func (s ContractStatus) AcceptsPayments(simulated bool) bool {
	if s == ContractActive {
		return true
	}
	return simulated && s == ContractPending
}

type Contract struct {
	Versioned

	ID              uuid.UUID      `json:"id"`
	PropertyID      uuid.UUID      `json:"property_id"`
	LandlordID      uuid.UUID      `json:"landlord_id"`
	TenantID        uuid.UUID      `json:"tenant_id"`
	RentalRequestID *uuid.UUID     `json:"rental_request_id,omitempty"`
	StartDate       time.Time      `json:"start_date"`
	EndDate         time.Time      `json:"end_date"`
	Terms           ContractTerms  `json:"terms"`
	Status          ContractStatus `json:"status"`

	AcceptedByTenant      bool       `json:"accepted_by_tenant"`
	TenantAcceptanceDate  *time.Time `json:"tenant_acceptance_date,omitempty"`
	ValidatedBySupport    bool       `json:"validated_by_support"`
	SupportValidationDate *time.Time `json:"support_validation_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Contract) GetID() string {
	return c.ID.String()
}

func (c *Contract) IsParty(userID uuid.UUID) bool {
	return userID == c.TenantID || userID == c.LandlordID
}
