package repositories

import (
	"errors"

	"github.com/jackc/pgconn"
)

var (
	// ErrStatusMismatch means a guarded write found the row in another
	// status (or row_version) than the caller observed.
	ErrStatusMismatch = errors.New("status_mismatch")

	ErrDuplicateActiveRequest = errors.New("duplicate_active_request")
	ErrPropertyUnavailable    = errors.New("property_unavailable")
)

const (
	pgUniqueViolation = "23505"

	constraintOneActiveRequest  = "rental_requests_one_active_idx"
	constraintOneActiveContract = "contracts_one_active_per_property_idx"
)

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == constraint
}
