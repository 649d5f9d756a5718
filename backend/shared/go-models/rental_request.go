package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type RentalRequestStatus string

const (
	RentalRequestPending         RentalRequestStatus = "pending"
	RentalRequestAccepted        RentalRequestStatus = "accepted"
	RentalRequestRejected        RentalRequestStatus = "rejected"
	RentalRequestCounterProposed RentalRequestStatus = "counter_proposed"
	RentalRequestVisitCompleted  RentalRequestStatus = "visit_completed"
	RentalRequestContractSent    RentalRequestStatus = "contract_sent"
)

// VisitTimeLayout is the wire and storage format of requested/counter times.
const VisitTimeLayout = "15:04"

// VisitDateLayout is the wire format of requested/counter dates.
const VisitDateLayout = "2006-01-02"

var rentalRequestTransitions = map[RentalRequestStatus][]RentalRequestStatus{
	RentalRequestPending: {
		RentalRequestAccepted,
		RentalRequestRejected,
		RentalRequestCounterProposed,
	},
	RentalRequestCounterProposed: {
		RentalRequestAccepted,
		RentalRequestRejected,
		RentalRequestCounterProposed,
	},
	RentalRequestAccepted: {
		RentalRequestRejected,
		RentalRequestVisitCompleted,
		RentalRequestContractSent,
	},
	RentalRequestVisitCompleted: {
		RentalRequestRejected,
		RentalRequestContractSent,
	},
}

// CanTransition reports whether a rental request may move from one status
// to another. Terminal statuses have no outgoing edges.
func (s RentalRequestStatus) CanTransition(to RentalRequestStatus) bool {
	for _, next := range rentalRequestTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsActive reports whether the status counts toward the one-open-request
// per (property, tenant) rule.
func (s RentalRequestStatus) IsActive() bool {
	for _, a := range ActiveRentalRequestStatuses {
		if s == a {
			return true
		}
	}
	return false
}

func (s RentalRequestStatus) IsTerminal() bool {
	return len(rentalRequestTransitions[s]) == 0
}

func (s RentalRequestStatus) Valid() bool {
	switch s {
	case RentalRequestPending, RentalRequestAccepted, RentalRequestRejected,
		RentalRequestCounterProposed, RentalRequestVisitCompleted, RentalRequestContractSent:
		return true
	}
	return false
}

var ActiveRentalRequestStatuses = []RentalRequestStatus{
	RentalRequestPending,
	RentalRequestAccepted,
	RentalRequestCounterProposed,
}

type RentalRequest struct {
	Versioned

	ID            uuid.UUID           `json:"id"`
	PropertyID    uuid.UUID           `json:"property_id"`
	TenantID      uuid.UUID           `json:"tenant_id"`
	OwnerID       uuid.UUID           `json:"owner_id"`
	RequestedDate time.Time           `json:"requested_date"`
	RequestedTime string              `json:"requested_time"`
	CounterDate   *time.Time          `json:"counter_date,omitempty"`
	CounterTime   *string             `json:"counter_time,omitempty"`
	VisitEndTime  *time.Time          `json:"visit_end_time,omitempty"`
	Message       *string             `json:"message,omitempty"`
	Status        RentalRequestStatus `json:"status"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func (r *RentalRequest) GetID() string {
	return r.ID.String()
}

// IsParty reports whether the user is the tenant or the owner on the request.
func (r *RentalRequest) IsParty(userID uuid.UUID) bool {
	return userID == r.TenantID || userID == r.OwnerID
}

// Counterpart returns the other party of the request.
func (r *RentalRequest) Counterpart(userID uuid.UUID) uuid.UUID {
	if userID == r.OwnerID {
		return r.TenantID
	}
	return r.OwnerID
}

// RequestedAt combines the requested date and time in loc.
func (r *RentalRequest) RequestedAt(loc *time.Location) (time.Time, error) {
	return CombineVisitDateTime(r.RequestedDate, r.RequestedTime, loc)
}

// ScheduleVisit stamps the end of the visit window for the current
// requested date and time.
func (r *RentalRequest) ScheduleVisit(loc *time.Location, duration time.Duration) error {
	start, err := r.RequestedAt(loc)
	if err != nil {
		return err
	}
	end := start.Add(duration)
	r.VisitEndTime = &end
	return nil
}

// PromoteCounter moves the counter-proposal into the requested fields and
// clears it.
func (r *RentalRequest) PromoteCounter() error {
	if r.CounterDate == nil || r.CounterTime == nil {
		return fmt.Errorf("rental request %s has no counter-proposal", r.ID)
	}
	r.RequestedDate = *r.CounterDate
	r.RequestedTime = *r.CounterTime
	r.ClearCounter()
	return nil
}

func (r *RentalRequest) ClearCounter() {
	r.CounterDate = nil
	r.CounterTime = nil
}

// CombineVisitDateTime interprets the calendar day of d and an "HH:MM"
// clock value as a wall-clock instant in loc.
func CombineVisitDateTime(d time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	clock, err := time.Parse(VisitTimeLayout, hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid visit time %q: %w", hhmm, err)
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, clock.Hour(), clock.Minute(), 0, 0, loc), nil
}
