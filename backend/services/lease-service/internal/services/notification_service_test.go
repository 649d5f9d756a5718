package services

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrienda/mono-repo/backend/shared/go-utils"
)

func TestNotificationInbox(t *testing.T) {
	env := newTestEnv(t)
	env.acceptedRequest()

	inbox, err := env.notifications.List(env.ctx, env.tenant, false)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Nil(t, inbox[0].ReadAt)

	// Somebody else's notification looks missing.
	err = env.notifications.MarkRead(env.ctx, env.landlord, inbox[0].ID)
	env.requireAppError(err, http.StatusNotFound, utils.ErrCodeNotFound)

	require.NoError(t, env.notifications.MarkRead(env.ctx, env.tenant, inbox[0].ID))
	require.NoError(t, env.notifications.MarkRead(env.ctx, env.tenant, inbox[0].ID))

	unread, err := env.notifications.List(env.ctx, env.tenant, true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	all, err := env.notifications.List(env.ctx, env.tenant, false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.NotNil(t, all[0].ReadAt)

	err = env.notifications.MarkRead(env.ctx, env.tenant, uuid.New())
	env.requireAppError(err, http.StatusNotFound, utils.ErrCodeNotFound)
}
