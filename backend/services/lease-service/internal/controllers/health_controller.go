package controllers

import (
	"net/http"

	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/app"
	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/dtos"
	"github.com/arrienda/mono-repo/backend/shared/go-utils"
)

// HealthController checks DB connectivity.
type HealthController struct {
	app *app.App
}

func NewHealthController(app *app.App) *HealthController {
	return &HealthController{app}
}

// HealthCheckHandler => GET /health
func (c *HealthController) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := c.app.DB.Ping(r.Context()); err != nil {
		utils.RespondErrorWithCode(w, http.StatusServiceUnavailable, utils.ErrCodeInternal, "Database unreachable", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.HealthCheckResponse{Status: "OK", App: c.app.Config.AppName})
}
