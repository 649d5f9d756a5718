package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/arrienda/mono-repo/backend/shared/go-models"
	"github.com/arrienda/mono-repo/backend/shared/go-repositories"
	"github.com/arrienda/mono-repo/backend/shared/go-utils"
)

// ActivityService appends to the activity log after a transition has
// committed. A failed append is logged and swallowed.
type ActivityService struct {
	repo repositories.ActivityLogRepository
}

func NewActivityService(repo repositories.ActivityLogRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

func (s *ActivityService) Record(
	ctx context.Context,
	actorID uuid.UUID,
	action models.ActivityAction,
	targetType models.ActivityTargetType,
	targetID uuid.UUID,
	details map[string]any,
) {
	entry := &models.ActivityLog{
		ID:         uuid.New(),
		ActorID:    actorID,
		Action:     action,
		TargetID:   targetID,
		TargetType: targetType,
		CreatedAt:  time.Now().UTC(),
	}
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			msg := json.RawMessage(raw)
			entry.Details = &msg
		}
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		utils.Logger.WithError(err).WithFields(logrus.Fields{
			"action":    action,
			"target_id": targetID,
		}).Warn("Failed to write activity log")
	}
}
