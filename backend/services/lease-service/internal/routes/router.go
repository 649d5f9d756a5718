package routes

import (
	"crypto/rsa"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/controllers"
	"github.com/arrienda/mono-repo/backend/shared/go-middleware"
	"github.com/arrienda/mono-repo/backend/shared/go-models"
)

// Controllers groups every handler the router mounts.
type Controllers struct {
	Health        *controllers.HealthController
	RentalRequest *controllers.RentalRequestsController
	Contract      *controllers.ContractsController
	Payment       *controllers.PaymentsController
	Notification  *controllers.NotificationsController
	Admin         *controllers.AdminController
}

// NewRouter mounts the public, authenticated and admin routes.
func NewRouter(pub *rsa.PublicKey, c Controllers) *mux.Router {
	router := mux.NewRouter()

	// Public
	if c.Health != nil {
		router.HandleFunc(Health, c.Health.HealthCheckHandler).Methods(http.MethodGet)
	}
	router.Handle(Metrics, promhttp.Handler()).Methods(http.MethodGet)

	// Admin (registered before the party routes so the prefix wins)
	admin := router.NewRoute().Subrouter()
	admin.Use(
		middleware.AuthMiddleware(pub),
		middleware.RequireRoles(string(models.RoleAdmin), string(models.RoleSupport)),
	)
	admin.HandleFunc(AdminContractCancel, c.Admin.CancelContractHandler).Methods(http.MethodPut)
	admin.HandleFunc(AdminContractValidate, c.Admin.ValidateContractHandler).Methods(http.MethodPut)
	admin.HandleFunc(AdminPaymentStatus, c.Admin.UpdatePaymentStatusHandler).Methods(http.MethodPut)

	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(pub))

	rr := c.RentalRequest
	secured.HandleFunc(RentalRequests, rr.CreateHandler).Methods(http.MethodPost)
	secured.HandleFunc(RentalRequestSendContract, c.Contract.SendContractHandler).Methods(http.MethodPost)
	secured.HandleFunc(RentalRequestByID, rr.GetHandler).Methods(http.MethodGet)
	secured.HandleFunc(RentalRequestByID, rr.CancelHandler).Methods(http.MethodDelete)
	secured.HandleFunc(RentalRequestAccept, rr.AcceptHandler).Methods(http.MethodPut)
	secured.HandleFunc(RentalRequestReject, rr.RejectHandler).Methods(http.MethodPut)
	secured.HandleFunc(RentalRequestCounter, rr.CounterHandler).Methods(http.MethodPut)
	secured.HandleFunc(RentalRequestAcceptCounter, rr.AcceptCounterHandler).Methods(http.MethodPut)
	secured.HandleFunc(RentalRequestRejectCounter, rr.RejectCounterHandler).Methods(http.MethodPut)
	secured.HandleFunc(RentalRequestVisitStatus, rr.VisitStatusHandler).Methods(http.MethodGet)

	secured.HandleFunc(ContractByID, c.Contract.GetHandler).Methods(http.MethodGet)
	secured.HandleFunc(ContractAccept, c.Contract.AcceptHandler).Methods(http.MethodPut)
	secured.HandleFunc(ContractReject, c.Contract.RejectHandler).Methods(http.MethodPut)

	secured.HandleFunc(Payments, c.Payment.CreateHandler).Methods(http.MethodPost)
	secured.HandleFunc(PaymentsSimulate, c.Payment.SimulateHandler).Methods(http.MethodPost)
	secured.HandleFunc(PaymentByID, c.Payment.GetHandler).Methods(http.MethodGet)
	secured.HandleFunc(PaymentByID, c.Payment.UpdateStatusHandler).Methods(http.MethodPut)
	secured.HandleFunc(PaymentByID, c.Payment.DeleteHandler).Methods(http.MethodDelete)

	secured.HandleFunc(Notifications, c.Notification.ListHandler).Methods(http.MethodGet)
	secured.HandleFunc(NotificationMarkRead, c.Notification.MarkReadHandler).Methods(http.MethodPut)

	return router
}
