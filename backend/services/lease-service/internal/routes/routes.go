package routes

const (
	// Health
	Health  = "/health"
	Metrics = "/metrics"

	// Rental requests
	RentalRequests             = "/api/v1/rental-requests"
	RentalRequestByID          = "/api/v1/rental-requests/{id}"
	RentalRequestAccept        = "/api/v1/rental-requests/{id}/accept"
	RentalRequestReject        = "/api/v1/rental-requests/{id}/reject"
	RentalRequestCounter       = "/api/v1/rental-requests/{id}/counter"
	RentalRequestAcceptCounter = "/api/v1/rental-requests/{id}/accept-counter"
	RentalRequestRejectCounter = "/api/v1/rental-requests/{id}/reject-counter"
	RentalRequestVisitStatus   = "/api/v1/rental-requests/{id}/visit-status"
	RentalRequestSendContract  = "/api/v1/rental-requests/send-contract"

	// Contracts
	ContractByID   = "/api/v1/contracts/{id}"
	ContractAccept = "/api/v1/contracts/{id}/accept"
	ContractReject = "/api/v1/contracts/{id}/reject"

	// Payments
	Payments         = "/api/v1/payments"
	PaymentsSimulate = "/api/v1/payments/simulate"
	PaymentByID      = "/api/v1/payments/{id}"

	// Notifications
	Notifications        = "/api/v1/notifications"
	NotificationMarkRead = "/api/v1/notifications/{id}/read"

	// Admin / support
	AdminContractCancel   = "/api/v1/admin/contracts/{id}/cancel"
	AdminContractValidate = "/api/v1/admin/contracts/{id}/validate"
	AdminPaymentStatus    = "/api/v1/admin/payments/{id}/status"
)
