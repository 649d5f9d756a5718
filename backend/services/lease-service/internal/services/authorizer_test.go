package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/arrienda/mono-repo/backend/shared/go-models"
)

func TestCapabilitiesFor(t *testing.T) {
	a := NewAuthorizer()

	for _, role := range []models.Role{models.RoleAdmin, models.RoleSupport} {
		caps := a.CapabilitiesFor(role)
		assert.True(t, caps.BypassAll, role)
		assert.True(t, caps.CanAdministerContracts, role)
		assert.True(t, caps.CanConfirmAnyPayment, role)
	}
	for _, role := range []models.Role{models.RoleTenant, models.RoleLandlord, models.Role("")} {
		assert.Equal(t, Capabilities{}, a.CapabilitiesFor(role), role)
	}
}

func TestGate(t *testing.T) {
	a := NewAuthorizer()
	tenant := Actor{ID: uuid.New(), Role: models.RoleTenant}
	landlord := Actor{ID: uuid.New(), Role: models.RoleLandlord}
	support := Actor{ID: uuid.New(), Role: models.RoleSupport}

	assert.True(t, a.Gate(tenant, nil, tenant.ID))
	assert.False(t, a.Gate(landlord, nil, tenant.ID))
	assert.False(t, a.Gate(support, nil, tenant.ID))

	assert.True(t, a.Gate(support, canConfirmAnyPayment, landlord.ID))
	assert.True(t, a.Gate(landlord, canConfirmAnyPayment, landlord.ID))
	assert.False(t, a.Gate(tenant, canConfirmAnyPayment, landlord.ID))

	assert.True(t, a.Gate(support, canAdministerContracts))
	assert.False(t, a.Gate(landlord, canAdministerContracts))
}

func TestCanView(t *testing.T) {
	a := NewAuthorizer()
	tenantID, landlordID := uuid.New(), uuid.New()

	assert.True(t, a.CanView(Actor{ID: tenantID, Role: models.RoleTenant}, tenantID, landlordID))
	assert.True(t, a.CanView(Actor{ID: landlordID, Role: models.RoleLandlord}, tenantID, landlordID))
	assert.True(t, a.CanView(Actor{ID: uuid.New(), Role: models.RoleAdmin}, tenantID, landlordID))
	assert.False(t, a.CanView(Actor{ID: uuid.New(), Role: models.RoleLandlord}, tenantID, landlordID))
}
