package dtos

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arrienda/mono-repo/backend/shared/go-models"
)

type CreatePaymentRequest struct {
	ContractID    string           `json:"contract_id" validate:"required,uuid"`
	Amount        *decimal.Decimal `json:"amount" validate:"required"`
	PaymentMethod string           `json:"payment_method" validate:"required,oneof=transfer cash card pse"`
	PaymentDate   string           `json:"payment_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes         string           `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type SimulatePaymentRequest struct {
	ContractID    string           `json:"contract_id" validate:"required,uuid"`
	Amount        *decimal.Decimal `json:"amount" validate:"required"`
	PaymentMethod string           `json:"payment_method" validate:"required,oneof=transfer cash card pse"`
}

type UpdatePaymentStatusRequest struct {
	Status      string `json:"status" validate:"required,oneof=paid rejected"`
	ReceiptPath string `json:"receipt_path,omitempty" validate:"omitempty,max=255"`
	Notes       string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type PaymentDTO struct {
	ID            uuid.UUID       `json:"id"`
	ContractID    uuid.UUID       `json:"contract_id"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   string          `json:"payment_date"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	ReceiptPath   *string         `json:"receipt_path,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	RowVersion    int64           `json:"row_version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func NewPaymentDTO(p *models.Payment) PaymentDTO {
	return PaymentDTO{
		ID:            p.ID,
		ContractID:    p.ContractID,
		TenantID:      p.TenantID,
		Amount:        p.Amount,
		PaymentDate:   p.PaymentDate.Format(models.VisitDateLayout),
		PaymentMethod: string(p.Method),
		Status:        string(p.Status),
		ReceiptPath:   p.ReceiptPath,
		Notes:         p.Notes,
		RowVersion:    p.RowVersion,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
