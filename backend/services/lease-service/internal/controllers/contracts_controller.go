package controllers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/dtos"
	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/services"
	"github.com/arrienda/mono-repo/backend/shared/go-models"
	"github.com/arrienda/mono-repo/backend/shared/go-utils"
)

type ContractsController struct {
	contractService *services.ContractService
	validate        *validator.Validate
}

func NewContractsController(s *services.ContractService) *ContractsController {
	return &ContractsController{
		contractService: s,
		validate:        newValidator(),
	}
}

// POST /api/v1/rental-requests/send-contract
func (c *ContractsController) SendContractHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "SendContractHandler")

	actor, err := actorFromRequest(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.SendContractRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	contract, err := c.contractService.IssueContract(r.Context(), actor, req)
	if err != nil {
		logger.WithError(err).WithField("rental_request_id", req.RentalRequestID).Debug("Contract issue refused")
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusCreated, "Contract sent to tenant", dtos.NewContractDTO(contract))
}

// GET /api/v1/contracts/{id}
func (c *ContractsController) GetHandler(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndID(w, r)
	if !ok {
		return
	}
	contract, err := c.contractService.Get(r.Context(), actor, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, "Contract retrieved", c.contractDTO(contract))
}

// PUT /api/v1/contracts/{id}/accept
func (c *ContractsController) AcceptHandler(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndID(w, r)
	if !ok {
		return
	}
	contract, err := c.contractService.TenantAccept(r.Context(), actor, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, "Contract accepted", c.contractDTO(contract))
}

// PUT /api/v1/contracts/{id}/reject
func (c *ContractsController) RejectHandler(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndID(w, r)
	if !ok {
		return
	}
	contract, err := c.contractService.TenantReject(r.Context(), actor, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, "Contract rejected", dtos.NewContractDTO(contract))
}

func (c *ContractsController) contractDTO(contract *models.Contract) dtos.ContractDTO {
	dto := dtos.NewContractDTO(contract)
	if due := c.contractService.NextPaymentDue(contract); due != nil {
		dto.NextPaymentDue = utils.Ptr(due.Format(models.VisitDateLayout))
	}
	return dto
}
