package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/constants"
	"github.com/arrienda/mono-repo/backend/shared/go-models"
	"github.com/arrienda/mono-repo/backend/shared/go-repositories"
)

// NotificationService is the user's in-app inbox over the outbox table.
type NotificationService struct {
	repo repositories.NotificationRepository
}

func NewNotificationService(repo repositories.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) List(ctx context.Context, actor Actor, unreadOnly bool) ([]*models.Notification, error) {
	ns, err := s.repo.ListByUser(ctx, actor.ID, unreadOnly, constants.NotificationInboxLimit)
	if err != nil {
		return nil, internalError("Failed to load notifications", err)
	}
	return ns, nil
}

// MarkRead only touches the caller's own rows; anything else looks missing.
func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, id uuid.UUID) error {
	ok, err := s.repo.MarkRead(ctx, id, actor.ID)
	if err != nil {
		return internalError("Failed to update notification", err)
	}
	if !ok {
		return notFound("Notification not found")
	}
	return nil
}
