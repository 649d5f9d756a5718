package repositories

import (
	"context"

	"github.com/arrienda/mono-repo/backend/shared/go-models"
)

type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
}

type activityLogRepo struct {
	db DB
}

func NewActivityLogRepository(db DB) ActivityLogRepository {
	return &activityLogRepo{db: db}
}

func (r *activityLogRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	q := `
        INSERT INTO activity_logs (
            id, actor_id, action, target_id, target_type, details, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, NOW())
    `
	var details any
	if entry.Details != nil {
		details = string(*entry.Details)
	}
	_, err := r.db.Exec(ctx, q,
		entry.ID,
		entry.ActorID,
		entry.Action,
		entry.TargetID,
		entry.TargetType,
		details,
	)
	return err
}
