package controllers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/dtos"
	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/services"
	"github.com/arrienda/mono-repo/backend/shared/go-utils"
)

type RentalRequestsController struct {
	requestService *services.RentalRequestService
	validate       *validator.Validate
}

func NewRentalRequestsController(s *services.RentalRequestService) *RentalRequestsController {
	return &RentalRequestsController{
		requestService: s,
		validate:       newValidator(),
	}
}

// POST /api/v1/rental-requests
func (c *RentalRequestsController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "CreateRentalRequestHandler")

	actor, err := actorFromRequest(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.CreateRentalRequestRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	rr, err := c.requestService.CreateRequest(r.Context(), actor, req)
	if err != nil {
		logger.WithError(err).WithField("tenant_id", actor.ID).Debug("Create rental request refused")
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusCreated, "Rental request created", dtos.NewRentalRequestDTO(rr))
}

// GET /api/v1/rental-requests/{id}
func (c *RentalRequestsController) GetHandler(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndID(w, r)
	if !ok {
		return
	}
	rr, err := c.requestService.Get(r.Context(), actor, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, "Rental request retrieved", dtos.NewRentalRequestDTO(rr))
}

// DELETE /api/v1/rental-requests/{id}
func (c *RentalRequestsController) CancelHandler(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndID(w, r)
	if !ok {
		return
	}
	if err := c.requestService.Cancel(r.Context(), actor, id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, "Rental request cancelled", nil)
}

// PUT /api/v1/rental-requests/{id}/accept
func (c *RentalRequestsController) AcceptHandler(w http.ResponseWriter, r *http.Request) {
	c.ownerRespond(w, r, dtos.OwnerAccept, nil, "Rental request accepted")
}

// PUT /api/v1/rental-requests/{id}/reject
func (c *RentalRequestsController) RejectHandler(w http.ResponseWriter, r *http.Request) {
	c.ownerRespond(w, r, dtos.OwnerReject, nil, "Rental request rejected")
}

// PUT /api/v1/rental-requests/{id}/counter
func (c *RentalRequestsController) CounterHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CounterProposalRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}
	c.ownerRespond(w, r, dtos.OwnerCounter, &req, "Counter-proposal sent")
}

// PUT /api/v1/rental-requests/{id}/accept-counter
func (c *RentalRequestsController) AcceptCounterHandler(w http.ResponseWriter, r *http.Request) {
	c.tenantRespond(w, r, true, "Counter-proposal accepted")
}

// PUT /api/v1/rental-requests/{id}/reject-counter
func (c *RentalRequestsController) RejectCounterHandler(w http.ResponseWriter, r *http.Request) {
	c.tenantRespond(w, r, false, "Counter-proposal rejected")
}

// GET /api/v1/rental-requests/{id}/visit-status
func (c *RentalRequestsController) VisitStatusHandler(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndID(w, r)
	if !ok {
		return
	}
	status, err := c.requestService.CheckVisitStatus(r.Context(), actor, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, "Visit status retrieved", status)
}

func (c *RentalRequestsController) ownerRespond(
	w http.ResponseWriter,
	r *http.Request,
	action dtos.OwnerAction,
	counter *dtos.CounterProposalRequest,
	message string,
) {
	actor, id, ok := actorAndID(w, r)
	if !ok {
		return
	}
	rr, err := c.requestService.OwnerRespond(r.Context(), actor, id, action, counter)
	if err != nil {
		utils.Logger.WithError(err).WithFields(logrus.Fields{
			"rental_request_id": id,
			"action":            action,
		}).Debug("Owner response refused")
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, message, dtos.NewRentalRequestDTO(rr))
}

func (c *RentalRequestsController) tenantRespond(w http.ResponseWriter, r *http.Request, accept bool, message string) {
	actor, id, ok := actorAndID(w, r)
	if !ok {
		return
	}
	rr, err := c.requestService.TenantRespondToCounter(r.Context(), actor, id, accept)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, message, dtos.NewRentalRequestDTO(rr))
}
