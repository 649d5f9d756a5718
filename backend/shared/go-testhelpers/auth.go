package testhelpers

import (
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/arrienda/mono-repo/backend/shared/go-middleware"
	"github.com/arrienda/mono-repo/backend/shared/go-models"
)

// CreateJWT signs a 15-minute access token for the user and role.
func (h *TestHelper) CreateJWT(userID uuid.UUID, role models.Role) string {
	signed, err := middleware.SignToken(h.PrivateKey, userID.String(), string(role), 15*time.Minute)
	require.NoError(h.T, err, "Failed to sign test JWT")
	return signed
}
