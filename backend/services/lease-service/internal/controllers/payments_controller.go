package controllers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/dtos"
	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/services"
	"github.com/arrienda/mono-repo/backend/shared/go-utils"
)

type PaymentsController struct {
	paymentService *services.PaymentService
	validate       *validator.Validate
}

func NewPaymentsController(s *services.PaymentService) *PaymentsController {
	return &PaymentsController{
		paymentService: s,
		validate:       newValidator(),
	}
}

// POST /api/v1/payments
func (c *PaymentsController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.CreatePaymentRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	payment, err := c.paymentService.RecordPayment(r.Context(), actor, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusCreated, "Payment recorded", dtos.NewPaymentDTO(payment))
}

// POST /api/v1/payments/simulate
func (c *PaymentsController) SimulateHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.SimulatePaymentRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	payment, err := c.paymentService.SimulatePayment(r.Context(), actor, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusCreated, "Payment processed", dtos.NewPaymentDTO(payment))
}

// GET /api/v1/payments/{id}
func (c *PaymentsController) GetHandler(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndID(w, r)
	if !ok {
		return
	}
	payment, err := c.paymentService.Get(r.Context(), actor, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, "Payment retrieved", dtos.NewPaymentDTO(payment))
}

// PUT /api/v1/payments/{id}
func (c *PaymentsController) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
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

// DELETE /api/v1/payments/{id}
func (c *PaymentsController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndID(w, r)
	if !ok {
		return
	}
	if err := c.paymentService.DeletePayment(r.Context(), actor, id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, "Payment deleted", nil)
}
