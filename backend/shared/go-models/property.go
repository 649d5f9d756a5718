package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PropertyStatus string

const (
	PropertyStatusAvailable   PropertyStatus = "available"
	PropertyStatusRented      PropertyStatus = "rented"
	PropertyStatusMaintenance PropertyStatus = "maintenance"
)

type Property struct {
	Versioned

	ID           uuid.UUID       `json:"id"`
	OwnerID      uuid.UUID       `json:"owner_id"`
	Title        string          `json:"title"`
	Address      string          `json:"address"`
	City         string          `json:"city"`
	TimeZone     string          `json:"timezone"`
	Latitude     float64         `json:"latitude"`
	Longitude    float64         `json:"longitude"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
	Status       PropertyStatus  `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (p *Property) GetID() string {
	return p.ID.String()
}

// PropertyFlip describes a guarded property status change applied in the
// same transaction as a contract transition.
type PropertyFlip struct {
	PropertyID uuid.UUID
	From       PropertyStatus
	To         PropertyStatus
}
