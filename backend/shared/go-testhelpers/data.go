// backend/shared/go-testhelpers/data.go

package testhelpers

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/arrienda/mono-repo/backend/shared/go-models"
	"github.com/arrienda/mono-repo/backend/shared/go-utils"
)

// UniquePhone generates a unique phone number for testing.
func UniquePhone() string {
	return fmt.Sprintf("+57300%07d", rand.New(rand.NewSource(time.Now().UnixNano())).Int31n(1e7))
}

// UniqueEmail generates a unique email for testing.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d%s", prefix, time.Now().UnixNano(), utils.TestEmailSuffix)
}

// CreateTestUser creates and persists a user with the given role.
func (h *TestHelper) CreateTestUser(ctx context.Context, role models.Role, emailPrefix string) *models.User {
	u := &models.User{
		ID:          uuid.New(),
		Name:        "Test " + string(role),
		Email:       UniqueEmail(emailPrefix),
		PhoneNumber: utils.Ptr(UniquePhone()),
		Role:        role,
	}
	require.NoError(h.T, h.UserRepo.Create(ctx, u), "Failed to create test user")

	created, err := h.UserRepo.GetByID(ctx, u.ID)
	require.NoError(h.T, err)
	require.NotNil(h.T, created, "Failed to fetch user immediately after creation")
	return created
}

// CreateTestProperty lists an available property in Bogotá for ownerID.
func (h *TestHelper) CreateTestProperty(ctx context.Context, ownerID uuid.UUID) *models.Property {
	p := &models.Property{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Title:        "Test property " + uuid.NewString()[:8],
		Address:      "Calle 100 # 10-10",
		City:         "Bogotá",
		TimeZone:     utils.DefaultReferenceTimeZone,
		Latitude:     4.6867,
		Longitude:    -74.0481,
		MonthlyPrice: decimal.NewFromInt(2_000_000),
		Status:       models.PropertyStatusAvailable,
	}
	require.NoError(h.T, h.PropertyRepo.Create(ctx, p), "Failed to create test property")

	created, err := h.PropertyRepo.GetByID(ctx, p.ID)
	require.NoError(h.T, err)
	require.NotNil(h.T, created, "Failed to fetch property immediately after creation")
	return created
}
