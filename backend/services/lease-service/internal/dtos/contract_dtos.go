package dtos

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arrienda/mono-repo/backend/shared/go-models"
)

// SendContractRequest is the landlord's offer after a completed visit.
// Amounts are pointers so a missing field is told apart from zero.
type SendContractRequest struct {
	RentalRequestID   string           `json:"rental_request_id" validate:"required,uuid"`
	StartDate         string           `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate           string           `json:"end_date" validate:"required,datetime=2006-01-02"`
	MonthlyPrice      *decimal.Decimal `json:"monthly_price" validate:"required"`
	Deposit           *decimal.Decimal `json:"deposit" validate:"required"`
	Clauses           []string         `json:"clauses" validate:"required,min=1,dive,required"`
	PaymentDay        int              `json:"payment_day" validate:"required,min=1,max=31"`
	LateFee           *decimal.Decimal `json:"late_fee,omitempty"`
	UtilitiesIncluded []string         `json:"utilities_included,omitempty"`
	SpecialConditions string           `json:"special_conditions,omitempty" validate:"omitempty,max=2000"`
}

type ValidateContractRequest struct {
	Validated *bool `json:"validated" validate:"required"`
}

type CancelContractRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type ContractDTO struct {
	ID                    uuid.UUID            `json:"id"`
	PropertyID            uuid.UUID            `json:"property_id"`
	LandlordID            uuid.UUID            `json:"landlord_id"`
	TenantID              uuid.UUID            `json:"tenant_id"`
	RentalRequestID       *uuid.UUID           `json:"rental_request_id,omitempty"`
	StartDate             string               `json:"start_date"`
	EndDate               string               `json:"end_date"`
	Terms                 models.ContractTerms `json:"terms"`
	Status                string               `json:"status"`
	AcceptedByTenant      bool                 `json:"accepted_by_tenant"`
	TenantAcceptanceDate  *time.Time           `json:"tenant_acceptance_date,omitempty"`
	ValidatedBySupport    bool                 `json:"validated_by_support"`
	SupportValidationDate *time.Time           `json:"support_validation_date,omitempty"`
	NextPaymentDue        *string              `json:"next_payment_due,omitempty"`
	RowVersion            int64                `json:"row_version"`
	CreatedAt             time.Time            `json:"created_at"`
	UpdatedAt             time.Time            `json:"updated_at"`
}

func NewContractDTO(c *models.Contract) ContractDTO {
	return ContractDTO{
		ID:                    c.ID,
		PropertyID:            c.PropertyID,
		LandlordID:            c.LandlordID,
		TenantID:              c.TenantID,
		RentalRequestID:       c.RentalRequestID,
		StartDate:             c.StartDate.Format(models.VisitDateLayout),
		EndDate:               c.EndDate.Format(models.VisitDateLayout),
		Terms:                 c.Terms,
		Status:                string(c.Status),
		AcceptedByTenant:      c.AcceptedByTenant,
		TenantAcceptanceDate:  c.TenantAcceptanceDate,
		ValidatedBySupport:    c.ValidatedBySupport,
		SupportValidationDate: c.SupportValidationDate,
		RowVersion:            c.RowVersion,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
	}
}

// AdminCancelResult reports the status the contract left, which decides
// whether the property went back on the market.
type AdminCancelResult struct {
	Contract         ContractDTO `json:"contract"`
	PreviousStatus   string      `json:"previous_status"`
	PropertyReleased bool        `json:"property_released"`
}
