package seeding

import (
	"context"
	"fmt"

	"github.com/bradfitz/latlong"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arrienda/mono-repo/backend/shared/go-models"
	"github.com/arrienda/mono-repo/backend/shared/go-repositories"
	"github.com/arrienda/mono-repo/backend/shared/go-utils"
)

var (
	SeedPropertyChapineroID = uuid.MustParse("22222222-3333-4444-5555-000000000001")
	SeedPropertyPobladoID   = uuid.MustParse("22222222-3333-4444-5555-000000000002")
)

func defaultProperties() []*models.Property {
	return []*models.Property{
		{
			ID:           SeedPropertyChapineroID,
			OwnerID:      SeedLandlordID,
			Title:        "Apartamento en Chapinero",
			Address:      "Calle 57 # 9-30",
			City:         "Bogotá",
			Latitude:     4.6451,
			Longitude:    -74.0628,
			MonthlyPrice: decimal.NewFromInt(2_500_000),
			Status:       models.PropertyStatusAvailable,
		},
		{
			ID:           SeedPropertyPobladoID,
			OwnerID:      SeedLandlordID,
			Title:        "Estudio en El Poblado",
			Address:      "Carrera 43A # 7-50",
			City:         "Medellín",
			Latitude:     6.2087,
			Longitude:    -75.5671,
			MonthlyPrice: decimal.NewFromInt(1_800_000),
			Status:       models.PropertyStatusAvailable,
		},
	}
}

// SeedDefaultProperties lists a few available properties for the seeded
// landlord. The zone is derived from the coordinates.
func SeedDefaultProperties(ctx context.Context, propertyRepo repositories.PropertyRepository) error {
	for _, p := range defaultProperties() {
		existing, err := propertyRepo.GetByID(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("error checking for existing property %s: %w", p.ID, err)
		}
		if existing != nil {
			continue
		}
		p.TimeZone = latlong.LookupZoneName(p.Latitude, p.Longitude)
		if err := propertyRepo.Create(ctx, p); err != nil {
			return fmt.Errorf("failed to insert seed property %q: %w", p.Title, err)
		}
		utils.Logger.Infof("Seeded property %q (ID=%s, tz=%s).", p.Title, p.ID, p.TimeZone)
	}
	return nil
}

// SeedAll seeds users first so property owners exist.
func SeedAll(ctx context.Context, userRepo repositories.UserRepository, propertyRepo repositories.PropertyRepository) error {
	if err := SeedDefaultUsers(ctx, userRepo); err != nil {
		return err
	}
	return SeedDefaultProperties(ctx, propertyRepo)
}
