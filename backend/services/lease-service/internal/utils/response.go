package utils

// Error codes specific to lease-service only.
const (
	ErrCodePropertyUnavailable          = "property_unavailable"
	ErrCodeDuplicateActiveRequest       = "duplicate_active_request"
	ErrCodeVisitNotCompleted            = "visit_not_completed"
	ErrCodeInvalidStateTransition       = "invalid_state_transition"
	ErrCodeCannotDeleteConfirmedPayment = "cannot_delete_confirmed_payment"
	ErrCodeOwnPropertyRequest           = "own_property_request"
)
