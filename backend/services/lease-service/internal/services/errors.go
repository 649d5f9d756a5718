package services

import (
	"net/http"

	internal_utils "github.com/arrienda/mono-repo/backend/services/lease-service/internal/utils"
	"github.com/arrienda/mono-repo/backend/shared/go-utils"
)

func businessRuleError(code string, message string, cause error) *utils.AppError {
	return &utils.AppError{StatusCode: http.StatusBadRequest, Code: code, Message: message, Err: cause}
}

func invalidTransition(message string) *utils.AppError {
	return businessRuleError(
		internal_utils.ErrCodeInvalidStateTransition, message, internal_utils.ErrInvalidStateTransition,
	)
}

func forbidden(message string) *utils.AppError {
	return &utils.AppError{StatusCode: http.StatusForbidden, Code: utils.ErrCodeForbidden, Message: message}
}

func notFound(message string) *utils.AppError {
	return &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: message}
}

func validationError(message string, fields map[string]string) *utils.AppError {
	var details any
	if len(fields) > 0 {
		details = fields
	}
	return &utils.AppError{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       utils.ErrCodeValidation,
		Message:    message,
		Details:    details,
	}
}

func conflictError(message string, err error) *utils.AppError {
	return &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeRowVersionConflict, Message: message, Err: err}
}

func internalError(message string, err error) *utils.AppError {
	return &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: message, Err: err}
}
