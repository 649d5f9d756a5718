package services

import (
	"github.com/google/uuid"

	"github.com/arrienda/mono-repo/backend/shared/go-models"
)

// Actor is the authenticated caller of a lifecycle operation.
type Actor struct {
	ID   uuid.UUID
	Role models.Role
}

// Capabilities are the role-derived permissions that sit above the
// per-record party checks. Party acts (accepting, paying, issuing) are
// never granted by a capability; only the named party performs them.
type Capabilities struct {
	// BypassAll lets the caller read any request, contract or payment.
	BypassAll              bool
	CanAdministerContracts bool
	CanConfirmAnyPayment   bool
}

type Authorizer struct{}

func NewAuthorizer() *Authorizer {
	return &Authorizer{}
}

func (a *Authorizer) CapabilitiesFor(role models.Role) Capabilities {
	switch role {
	case models.RoleAdmin, models.RoleSupport:
		return Capabilities{
			BypassAll:              true,
			CanAdministerContracts: true,
			CanConfirmAnyPayment:   true,
		}
	default:
		return Capabilities{}
	}
}

// Gate passes when the actor is one of parties or its role carries the
// capability selected by need. A nil need checks parties only.
func (a *Authorizer) Gate(actor Actor, need func(Capabilities) bool, parties ...uuid.UUID) bool {
	if need != nil && need(a.CapabilitiesFor(actor.Role)) {
		return true
	}
	return isOneOf(actor.ID, parties...)
}

// CanView is the read gate: a party to the record or a caller with the
// bypass capability.
func (a *Authorizer) CanView(actor Actor, parties ...uuid.UUID) bool {
	return a.Gate(actor, bypassAll, parties...)
}

func bypassAll(c Capabilities) bool              { return c.BypassAll }
func canAdministerContracts(c Capabilities) bool { return c.CanAdministerContracts }
func canConfirmAnyPayment(c Capabilities) bool   { return c.CanConfirmAnyPayment }

func isOneOf(id uuid.UUID, candidates ...uuid.UUID) bool {
	for _, c := range candidates {
		if id == c {
			return true
		}
	}
	return false
}
