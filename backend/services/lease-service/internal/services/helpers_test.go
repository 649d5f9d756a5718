package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/dtos"
	"github.com/arrienda/mono-repo/backend/shared/go-models"
	"github.com/arrienda/mono-repo/backend/shared/go-utils"
)

func (e *testEnv) requireAppError(err error, status int, code string) *utils.AppError {
	e.t.Helper()
	require.Error(e.t, err)
	var appErr *utils.AppError
	require.True(e.t, errors.As(err, &appErr), "expected *utils.AppError, got %T: %v", err, err)
	require.Equal(e.t, status, appErr.StatusCode, "status for %q", appErr.Message)
	require.Equal(e.t, code, appErr.Code)
	return appErr
}

// createRequest files a visit request for date/clock as the env tenant.
func (e *testEnv) createRequest(date, clock string) *models.RentalRequest {
	e.t.Helper()
	rr, err := e.requests.CreateRequest(e.ctx, e.tenant, dtos.CreateRentalRequestRequest{
		PropertyID:    e.property.ID.String(),
		RequestedDate: date,
		RequestedTime: clock,
		Message:       "Me interesa el apartamento",
	})
	require.NoError(e.t, err)
	return rr
}

// acceptedRequest returns a request the owner accepted for 2025-06-02 14:00.
func (e *testEnv) acceptedRequest() *models.RentalRequest {
	e.t.Helper()
	rr := e.createRequest("2025-06-02", "14:00")
	rr, err := e.requests.OwnerRespond(e.ctx, e.landlord, rr.ID, dtos.OwnerAccept, nil)
	require.NoError(e.t, err)
	return rr
}

func (e *testEnv) contractOffer(requestID uuid.UUID) dtos.SendContractRequest {
	return dtos.SendContractRequest{
		RentalRequestID:   requestID.String(),
		StartDate:         "2025-07-01",
		EndDate:           "2026-06-30",
		MonthlyPrice:      utils.Ptr(decimal.NewFromInt(2500000)),
		Deposit:           utils.Ptr(decimal.NewFromInt(2500000)),
		Clauses:           []string{"No se permiten mascotas", "Pago los primeros cinco dias del mes"},
		PaymentDay:        5,
		UtilitiesIncluded: []string{"agua"},
	}
}

// pendingContract runs the negotiation through a finished visit and issues
// a contract.
func (e *testEnv) pendingContract() *models.Contract {
	e.t.Helper()
	rr := e.acceptedRequest()
	e.clock.Set(time.Date(2025, 6, 2, 14, 2, 0, 0, e.loc))
	c, err := e.contracts.IssueContract(e.ctx, e.landlord, e.contractOffer(rr.ID))
	require.NoError(e.t, err)
	return c
}

func (e *testEnv) activeContract() *models.Contract {
	e.t.Helper()
	return e.activeContractFrom(e.pendingContract())
}

func (e *testEnv) activeContractFrom(pending *models.Contract) *models.Contract {
	e.t.Helper()
	c, err := e.contracts.TenantAccept(e.ctx, e.tenant, pending.ID)
	require.NoError(e.t, err)
	return c
}

func lastNotification(ns []*models.Notification) *models.Notification {
	if len(ns) == 0 {
		return nil
	}
	return ns[len(ns)-1]
}
