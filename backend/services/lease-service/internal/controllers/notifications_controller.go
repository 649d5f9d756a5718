package controllers

import (
	"net/http"
	"strconv"

	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/dtos"
	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/services"
	"github.com/arrienda/mono-repo/backend/shared/go-utils"
)

type NotificationsController struct {
	notificationService *services.NotificationService
}

func NewNotificationsController(s *services.NotificationService) *NotificationsController {
	return &NotificationsController{notificationService: s}
}

// GET /api/v1/notifications?unread=true
func (c *NotificationsController) ListHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))

	ns, err := c.notificationService.List(r.Context(), actor, unreadOnly)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, "Notifications retrieved", dtos.NewNotificationDTOs(ns))
}

// PUT /api/v1/notifications/{id}/read
func (c *NotificationsController) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndID(w, r)
	if !ok {
		return
	}
	if err := c.notificationService.MarkRead(r.Context(), actor, id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, "Notification marked as read", nil)
}
