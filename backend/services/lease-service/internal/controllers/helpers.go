package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/services"
	"github.com/arrienda/mono-repo/backend/shared/go-middleware"
	"github.com/arrienda/mono-repo/backend/shared/go-models"
	"github.com/arrienda/mono-repo/backend/shared/go-utils"
)

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// formatValidationErrors converts validator errors into a field → message map.
func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, err := range errs {
		field := err.Field()
		var message string
		switch err.Tag() {
		case "required":
			message = "is required"
		case "uuid":
			message = "must be a UUID"
		case "datetime":
			message = fmt.Sprintf("must match the %s layout", err.Param())
		case "min":
			message = fmt.Sprintf("must be at least %s", err.Param())
		case "max":
			message = fmt.Sprintf("must not exceed %s", err.Param())
		case "oneof":
			message = fmt.Sprintf("must be one of [%s]", err.Param())
		default:
			message = fmt.Sprintf("failed on the '%s' rule", err.Tag())
		}
		out[field] = message
	}
	return out
}

// decodeAndValidate reads the JSON body into dst and runs struct
// validation. It writes the error response itself and returns false on
// failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return false
	}
	if err := v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			utils.RespondErrorWithCode(w, http.StatusUnprocessableEntity, utils.ErrCodeValidation,
				"Validation failed", formatValidationErrors(verrs))
		} else {
			utils.RespondErrorWithCode(w, http.StatusUnprocessableEntity, utils.ErrCodeValidation,
				"Validation failed", nil, err)
		}
		return false
	}
	return true
}

// actorFromRequest builds the caller from the claims AuthMiddleware stored.
func actorFromRequest(r *http.Request) (services.Actor, error) {
	userID, role, ok := middleware.Principal(r.Context())
	if !ok {
		return services.Actor{}, &utils.AppError{
			StatusCode: http.StatusUnauthorized,
			Code:       utils.ErrCodeUnauthorized,
			Message:    "Missing user in context",
		}
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return services.Actor{}, &utils.AppError{
			StatusCode: http.StatusUnauthorized,
			Code:       utils.ErrCodeUnauthorized,
			Message:    "Invalid user id in token",
			Err:        err,
		}
	}
	return services.Actor{ID: id, Role: models.Role(role)}, nil
}

// pathID parses the {id} route variable.
func pathID(r *http.Request) (uuid.UUID, error) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &utils.AppError{
			StatusCode: http.StatusUnprocessableEntity,
			Code:       utils.ErrCodeValidation,
			Message:    "Invalid id in path",
			Details:    map[string]string{"id": "must be a UUID"},
			Err:        err,
		}
	}
	return id, nil
}

// actorAndID extracts the caller and the {id} path variable, writing the
// error response when either is missing.
func actorAndID(w http.ResponseWriter, r *http.Request) (services.Actor, uuid.UUID, bool) {
	actor, err := actorFromRequest(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return services.Actor{}, uuid.Nil, false
	}
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return services.Actor{}, uuid.Nil, false
	}
	return actor, id, true
}
