package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/arrienda/mono-repo/backend/shared/go-models"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type RentalRequestRepository interface {
	// Create re-checks the property under a share lock and relies on the
	// partial unique index for the one-active-request rule.
	Create(ctx context.Context, r *models.RentalRequest, outbox []*models.Notification) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.RentalRequest, error)
	FindActive(ctx context.Context, propertyID, tenantID uuid.UUID) (*models.RentalRequest, error)

	// UpdateIfStatus writes r only if the stored row still has the expected
	// status and r's row_version. It reports false when the guard fails.
	UpdateIfStatus(
		ctx context.Context,
		r *models.RentalRequest,
		expected models.RentalRequestStatus,
		outbox []*models.Notification,
	) (bool, error)

	// DeleteIfNotSuperseded removes the request unless a contract has
	// already been issued from it.
	DeleteIfNotSuperseded(
		ctx context.Context,
		id uuid.UUID,
		expectedVersion int64,
		outbox []*models.Notification,
	) (bool, error)
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type rentalRequestRepo struct {
	*BaseVersionedRepo[*models.RentalRequest]
	db DB
}

func NewRentalRequestRepository(db DB) RentalRequestRepository {
	r := &rentalRequestRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectRentalRequest()+" WHERE id=$1", scanRentalRequest)
	return r
}

func (r *rentalRequestRepo) Create(ctx context.Context, req *models.RentalRequest, outbox []*models.Notification) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		status, err := lockPropertyStatus(ctx, tx, req.PropertyID)
		if err != nil {
			return err
		}
		if status != models.PropertyStatusAvailable {
			return ErrPropertyUnavailable
		}

		_, err = tx.Exec(ctx, `
            INSERT INTO rental_requests (
                id, property_id, tenant_id, owner_id,
                requested_date, requested_time, message, status,
                created_at, updated_at, row_version
            ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8, NOW(), NOW(), 1)
        `,
			req.ID,
			req.PropertyID,
			req.TenantID,
			req.OwnerID,
			req.RequestedDate,
			req.RequestedTime,
			req.Message,
			req.Status,
		)
		if err != nil {
			if isUniqueViolation(err, constraintOneActiveRequest) {
				return ErrDuplicateActiveRequest
			}
			return err
		}
		req.RowVersion = 1
		return insertNotifications(ctx, tx, outbox)
	})
}

func (r *rentalRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.RentalRequest, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *rentalRequestRepo) FindActive(ctx context.Context, propertyID, tenantID uuid.UUID) (*models.RentalRequest, error) {
	row := r.db.QueryRow(ctx,
		baseSelectRentalRequest()+` WHERE property_id=$1 AND tenant_id=$2 AND status = ANY($3) LIMIT 1`,
		propertyID, tenantID, activeStatusNames(),
	)
	return scanRentalRequest(row)
}

func (r *rentalRequestRepo) UpdateIfStatus(
	ctx context.Context,
	req *models.RentalRequest,
	expected models.RentalRequestStatus,
	outbox []*models.Notification,
) (bool, error) {
	applied := false
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
            UPDATE rental_requests SET
                requested_date=$1, requested_time=$2,
                counter_date=$3, counter_time=$4,
                visit_end_time=$5, status=$6,
                row_version=row_version+1, updated_at=NOW()
            WHERE id=$7 AND status=$8 AND row_version=$9
        `,
			req.RequestedDate, req.RequestedTime,
			req.CounterDate, req.CounterTime,
			req.VisitEndTime, req.Status,
			req.ID, expected, req.RowVersion,
		)
		if err != nil {
			if isUniqueViolation(err, constraintOneActiveRequest) {
				return ErrDuplicateActiveRequest
			}
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrStatusMismatch
		}
		applied = true
		return insertNotifications(ctx, tx, outbox)
	})
	if err == ErrStatusMismatch {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if applied {
		req.RowVersion++
	}
	return applied, nil
}

func (r *rentalRequestRepo) DeleteIfNotSuperseded(
	ctx context.Context,
	id uuid.UUID,
	expectedVersion int64,
	outbox []*models.Notification,
) (bool, error) {
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
            DELETE FROM rental_requests
            WHERE id=$1 AND row_version=$2 AND status <> $3
        `, id, expectedVersion, models.RentalRequestContractSent)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrStatusMismatch
		}
		return insertNotifications(ctx, tx, outbox)
	})
	if err == ErrStatusMismatch {
		return false, nil
	}
	return err == nil, err
}

// markContractSent is the request half of contract issuance; it runs on
// the contract repository's transaction.
func markContractSent(ctx context.Context, tx pgx.Tx, requestID uuid.UUID, expectedVersion int64) error {
	tag, err := tx.Exec(ctx, `
        UPDATE rental_requests
        SET status=$1, row_version=row_version+1, updated_at=NOW()
        WHERE id=$2 AND status=$3 AND row_version=$4
    `, models.RentalRequestContractSent, requestID, models.RentalRequestAccepted, expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rental request %s: %w", requestID, ErrStatusMismatch)
	}
	return nil
}

func activeStatusNames() []string {
	out := make([]string, len(models.ActiveRentalRequestStatuses))
	for i, s := range models.ActiveRentalRequestStatuses {
		out[i] = string(s)
	}
	return out
}

func baseSelectRentalRequest() string {
	return `
        SELECT
            id, property_id, tenant_id, owner_id,
            requested_date, requested_time, counter_date, counter_time,
            visit_end_time, message, status,
            created_at, updated_at, row_version
        FROM rental_requests
    `
}

func scanRentalRequest(row pgx.Row) (*models.RentalRequest, error) {
	var r models.RentalRequest
	err := row.Scan(
		&r.ID,
		&r.PropertyID,
		&r.TenantID,
		&r.OwnerID,
		&r.RequestedDate,
		&r.RequestedTime,
		&r.CounterDate,
		&r.CounterTime,
		&r.VisitEndTime,
		&r.Message,
		&r.Status,
		&r.CreatedAt,
		&r.UpdatedAt,
		&r.RowVersion,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}
