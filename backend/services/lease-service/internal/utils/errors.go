package utils

import "errors"

/*
Sentinel errors for lease-service business rules. Services wrap them in
a *utils.AppError; callers can still do errors.Is(err, ErrXYZ).
*/
var (
	ErrPropertyUnavailable          = errors.New("property_unavailable")
	ErrDuplicateActiveRequest       = errors.New("duplicate_active_request")
	ErrVisitNotCompleted            = errors.New("visit_not_completed")
	ErrInvalidStateTransition       = errors.New("invalid_state_transition")
	ErrCannotDeleteConfirmedPayment = errors.New("cannot_delete_confirmed_payment")
	ErrOwnPropertyRequest           = errors.New("own_property_request")
)
