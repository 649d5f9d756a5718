package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrienda/mono-repo/backend/shared/go-models"
	"github.com/arrienda/mono-repo/backend/shared/go-utils"
)

func TestWithRetrySucceedsAfterLosingOnce(t *testing.T) {
	id := uuid.New()
	attempts := 0
	get := func(context.Context, string) (*models.Contract, error) {
		return &models.Contract{ID: id}, nil
	}
	update := func(context.Context, *models.Contract, int64) (pgconn.CommandTag, error) {
		attempts++
		if attempts == 1 {
			return pgconn.CommandTag("UPDATE 0"), nil
		}
		return pgconn.CommandTag("UPDATE 1"), nil
	}

	err := WithRetry[*models.Contract](context.Background(), 3, id.String(), get, update, func(*models.Contract) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestWithRetryReportsRowVersionConflict(t *testing.T) {
	id := uuid.New()
	get := func(context.Context, string) (*models.Contract, error) {
		return &models.Contract{ID: id}, nil
	}
	update := func(context.Context, *models.Contract, int64) (pgconn.CommandTag, error) {
		return pgconn.CommandTag("UPDATE 0"), nil
	}

	err := WithRetry[*models.Contract](context.Background(), 3, id.String(), get, update, func(*models.Contract) error { return nil })
	assert.True(t, errors.Is(err, utils.ErrRowVersionConflict))
}

func TestWithRetryMissingRow(t *testing.T) {
	get := func(context.Context, string) (*models.Contract, error) { return nil, nil }
	update := func(context.Context, *models.Contract, int64) (pgconn.CommandTag, error) {
		t.Fatal("update must not run for a missing row")
		return nil, nil
	}

	err := WithRetry[*models.Contract](context.Background(), 3, "missing", get, update, func(*models.Contract) error { return nil })
	assert.True(t, errors.Is(err, pgx.ErrNoRows))
}
