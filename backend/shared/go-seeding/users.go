package seeding

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/arrienda/mono-repo/backend/shared/go-models"
	"github.com/arrienda/mono-repo/backend/shared/go-repositories"
	"github.com/arrienda/mono-repo/backend/shared/go-utils"
)

// Fixed ids so dev tokens can be minted for the seeded accounts.
var (
	SeedLandlordID = uuid.MustParse("11111111-2222-3333-4444-000000000001")
	SeedTenantID   = uuid.MustParse("11111111-2222-3333-4444-000000000002")
	SeedAdminID    = uuid.MustParse("11111111-2222-3333-4444-000000000003")
	SeedSupportID  = uuid.MustParse("11111111-2222-3333-4444-000000000004")
)

func defaultUsers() []*models.User {
	return []*models.User{
		{ID: SeedLandlordID, Name: "Laura Gómez", Email: "landlord@arrienda.test", PhoneNumber: utils.Ptr("+573001112233"), Role: models.RoleLandlord},
		{ID: SeedTenantID, Name: "Tomás Rivera", Email: "tenant@arrienda.test", PhoneNumber: utils.Ptr("+573004445566"), Role: models.RoleTenant},
		{ID: SeedAdminID, Name: "Admin", Email: "admin@arrienda.test", Role: models.RoleAdmin},
		{ID: SeedSupportID, Name: "Soporte", Email: "support@arrienda.test", Role: models.RoleSupport},
	}
}

// SeedDefaultUsers inserts one account per role. Existing ids are skipped.
func SeedDefaultUsers(ctx context.Context, userRepo repositories.UserRepository) error {
	for _, u := range defaultUsers() {
		existing, err := userRepo.GetByID(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("error checking for existing user %s: %w", u.ID, err)
		}
		if existing != nil {
			utils.Logger.Infof("Seed user %s already exists; skipping.", u.Email)
			continue
		}
		if err := userRepo.Create(ctx, u); err != nil {
			return fmt.Errorf("failed to insert seed user %s: %w", u.Email, err)
		}
		utils.Logger.Infof("Seeded %s user (ID=%s, email=%s).", u.Role, u.ID, u.Email)
	}
	return nil
}
