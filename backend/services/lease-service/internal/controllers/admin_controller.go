package controllers

import (
	"bytes"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/dtos"
	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/services"
	"github.com/arrienda/mono-repo/backend/shared/go-models"
	"github.com/arrienda/mono-repo/backend/shared/go-utils"
)

// AdminController serves the admin/support routes. RequireRoles guards the
// subrouter; the services re-check capabilities.
type AdminController struct {
	contractService *services.ContractService
	paymentService  *services.PaymentService
	validate        *validator.Validate
}

func NewAdminController(cs *services.ContractService, ps *services.PaymentService) *AdminController {
	return &AdminController{
		contractService: cs,
		paymentService:  ps,
		validate:        newValidator(),
	}
}

// PUT /api/v1/admin/contracts/{id}/cancel
func (c *AdminController) CancelContractHandler(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndID(w, r)
	if !ok {
		return
	}

	// The body is optional; an empty one cancels without a reason.
	var req dtos.CancelContractRequest
	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		r.Body = io.NopCloser(bytes.NewReader(body))
		if !decodeAndValidate(w, r, c.validate, &req) {
			return
		}
	}

	contract, previous, err := c.contractService.AdminCancel(r.Context(), actor, id, req.Reason)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.Logger.WithFields(logrus.Fields{
		"contract_id":     id,
		"admin_id":        actor.ID,
		"previous_status": previous,
	}).Info("Contract cancelled by administrator")

	utils.RespondSuccess(w, http.StatusOK, "Contract cancelled", dtos.AdminCancelResult{
		Contract:         dtos.NewContractDTO(contract),
		PreviousStatus:   string(previous),
		PropertyReleased: previous == models.ContractActive,
	})
}

// PUT /api/v1/admin/contracts/{id}/validate
func (c *AdminController) ValidateContractHandler(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndID(w, r)
	if !ok {
		return
	}
	var req dtos.ValidateContractRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	contract, err := c.contractService.AdminValidate(r.Context(), actor, id, *req.Validated)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, "Contract validation updated", dtos.NewContractDTO(contract))
}

// PUT /api/v1/admin/payments/{id}/status
func (c *AdminController) UpdatePaymentStatusHandler(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndID(w, r)
	if !ok {
		return
	}
	var req dtos.UpdatePaymentStatusRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	payment, err := c.paymentService.UpdatePaymentStatus(r.Context(), actor, id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, "Payment status updated", dtos.NewPaymentDTO(payment))
}
