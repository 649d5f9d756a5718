package dtos

import (
	"time"

	"github.com/google/uuid"

	"github.com/arrienda/mono-repo/backend/shared/go-models"
)

type CreateRentalRequestRequest struct {
	PropertyID    string `json:"property_id" validate:"required,uuid"`
	RequestedDate string `json:"requested_date" validate:"required,datetime=2006-01-02"`
	RequestedTime string `json:"requested_time" validate:"required,datetime=15:04"`
	Message       string `json:"message,omitempty" validate:"omitempty,max=1000"`
}

type CounterProposalRequest struct {
	CounterDate string `json:"counter_date" validate:"required,datetime=2006-01-02"`
	CounterTime string `json:"counter_time" validate:"required,datetime=15:04"`
}

// OwnerAction is the landlord's answer to a pending request.
type OwnerAction string

const (
	OwnerAccept  OwnerAction = "accept"
	OwnerReject  OwnerAction = "reject"
	OwnerCounter OwnerAction = "counter"
)

type RentalRequestDTO struct {
	ID            uuid.UUID  `json:"id"`
	PropertyID    uuid.UUID  `json:"property_id"`
	TenantID      uuid.UUID  `json:"tenant_id"`
	OwnerID       uuid.UUID  `json:"owner_id"`
	RequestedDate string     `json:"requested_date"`
	RequestedTime string     `json:"requested_time"`
	CounterDate   *string    `json:"counter_date"`
	CounterTime   *string    `json:"counter_time"`
	VisitEndTime  *time.Time `json:"visit_end_time,omitempty"`
	Message       *string    `json:"message,omitempty"`
	Status        string     `json:"status"`
	RowVersion    int64      `json:"row_version"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func NewRentalRequestDTO(r *models.RentalRequest) RentalRequestDTO {
	dto := RentalRequestDTO{
		ID:            r.ID,
		PropertyID:    r.PropertyID,
		TenantID:      r.TenantID,
		OwnerID:       r.OwnerID,
		RequestedDate: r.RequestedDate.Format(models.VisitDateLayout),
		RequestedTime: r.RequestedTime,
		CounterTime:   r.CounterTime,
		VisitEndTime:  r.VisitEndTime,
		Message:       r.Message,
		Status:        string(r.Status),
		RowVersion:    r.RowVersion,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.CounterDate != nil {
		d := r.CounterDate.Format(models.VisitDateLayout)
		dto.CounterDate = &d
	}
	return dto
}

// VisitStatusDTO answers whether the landlord may move on to the contract.
type VisitStatusDTO struct {
	CanContinue      bool       `json:"can_continue"`
	VisitEndTime     *time.Time `json:"visit_end_time"`
	CurrentTime      time.Time  `json:"current_time"`
	TimeRemaining    *string    `json:"time_remaining,omitempty"`
	MinutesRemaining *int       `json:"minutes_remaining,omitempty"`
	PropertyTimeZone string     `json:"property_time_zone,omitempty"`
}
