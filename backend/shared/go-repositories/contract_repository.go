package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/arrienda/mono-repo/backend/shared/go-models"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type ContractRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)

	// IssueFromRequest inserts c and advances the originating request from
	// accepted to contract_sent in one transaction. The property must still
	// be available.
	IssueFromRequest(
		ctx context.Context,
		c *models.Contract,
		requestID uuid.UUID,
		expectedRequestVersion int64,
		outbox []*models.Notification,
	) error

	// UpdateIfStatus writes c when the stored row still has the expected
	// status and c's row_version. A non-nil flip changes the property's
	// status on the same transaction; a failed flip aborts everything.
	UpdateIfStatus(
		ctx context.Context,
		c *models.Contract,
		expected models.ContractStatus,
		flip *models.PropertyFlip,
		outbox []*models.Notification,
	) (bool, error)

	// UpdateWithRetry is for status-preserving edits (support validation)
	// that should win over unrelated concurrent writes.
	UpdateWithRetry(
		ctx context.Context,
		id uuid.UUID,
		mutate func(*models.Contract) error,
		outbox []*models.Notification,
	) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type contractRepo struct {
	*BaseVersionedRepo[*models.Contract]
	db DB
}

func NewContractRepository(db DB) ContractRepository {
	r := &contractRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectContract()+" WHERE id=$1", scanContract)
	return r
}

func (r *contractRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *contractRepo) IssueFromRequest(
	ctx context.Context,
	c *models.Contract,
	requestID uuid.UUID,
	expectedRequestVersion int64,
	outbox []*models.Notification,
) error {
	terms, err := models.MarshalTerms(c.Terms)
	if err != nil {
		return err
	}

	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		status, err := lockPropertyStatus(ctx, tx, c.PropertyID)
		if err != nil {
			return err
		}
		if status != models.PropertyStatusAvailable {
			return ErrPropertyUnavailable
		}

		if err := markContractSent(ctx, tx, requestID, expectedRequestVersion); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
            INSERT INTO contracts (
                id, property_id, landlord_id, tenant_id, rental_request_id,
                start_date, end_date, deposit, terms, status,
                accepted_by_tenant, validated_by_support,
                created_at, updated_at, row_version
            ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9::jsonb,$10, FALSE, FALSE, NOW(), NOW(), 1)
        `,
			c.ID,
			c.PropertyID,
			c.LandlordID,
			c.TenantID,
			c.RentalRequestID,
			c.StartDate,
			c.EndDate,
			c.Terms.Deposit,
			string(terms),
			c.Status,
		)
		if err != nil {
			return err
		}
		c.RowVersion = 1
		return insertNotifications(ctx, tx, outbox)
	})
}

func (r *contractRepo) UpdateIfStatus(
	ctx context.Context,
	c *models.Contract,
	expected models.ContractStatus,
	flip *models.PropertyFlip,
	outbox []*models.Notification,
) (bool, error) {
	applied := false
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := r.update(ctx, tx, c, &expected, c.RowVersion)
		if err != nil {
			if isUniqueViolation(err, constraintOneActiveContract) {
				return ErrPropertyUnavailable
			}
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrStatusMismatch
		}
		if flip != nil {
			if err := applyPropertyFlip(ctx, tx, flip); err != nil {
				return err
			}
		}
		applied = true
		return insertNotifications(ctx, tx, outbox)
	})
	if errors.Is(err, ErrStatusMismatch) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if applied {
		c.RowVersion++
	}
	return true, nil
}

func (r *contractRepo) UpdateWithRetry(
	ctx context.Context,
	id uuid.UUID,
	mutate func(*models.Contract) error,
	outbox []*models.Notification,
) error {
	updateIfVersion := func(ctx context.Context, c *models.Contract, expected int64) (pgconn.CommandTag, error) {
		var tag pgconn.CommandTag
		err := inTx(ctx, r.db, func(tx pgx.Tx) error {
			var err error
			tag, err = r.update(ctx, tx, c, nil, expected)
			if err != nil || tag.RowsAffected() == 0 {
				return err
			}
			return insertNotifications(ctx, tx, outbox)
		})
		if err == nil && tag.RowsAffected() == 1 {
			c.RowVersion = expected + 1
		}
		return tag, err
	}
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, updateIfVersion)
}

func (r *contractRepo) update(
	ctx context.Context,
	tx pgx.Tx,
	c *models.Contract,
	expectedStatus *models.ContractStatus,
	expectedVersion int64,
) (pgconn.CommandTag, error) {
	sql := `
        UPDATE contracts SET
            status=$1,
            accepted_by_tenant=$2, tenant_acceptance_date=$3,
            validated_by_support=$4, support_validation_date=$5,
            row_version=row_version+1, updated_at=NOW()
        WHERE id=$6 AND row_version=$7
    `
	args := []any{
		c.Status,
		c.AcceptedByTenant, c.TenantAcceptanceDate,
		c.ValidatedBySupport, c.SupportValidationDate,
		c.ID, expectedVersion,
	}
	if expectedStatus != nil {
		sql += ` AND status=$8`
		args = append(args, *expectedStatus)
	}
	return tx.Exec(ctx, sql, args...)
}

func baseSelectContract() string {
	return `
        SELECT
            id, property_id, landlord_id, tenant_id, rental_request_id,
            start_date, end_date, terms, status,
            accepted_by_tenant, tenant_acceptance_date,
            validated_by_support, support_validation_date,
            created_at, updated_at, row_version
        FROM contracts
    `
}

func scanContract(row pgx.Row) (*models.Contract, error) {
	var (
		c     models.Contract
		terms []byte
	)
	err := row.Scan(
		&c.ID,
		&c.PropertyID,
		&c.LandlordID,
		&c.TenantID,
		&c.RentalRequestID,
		&c.StartDate,
		&c.EndDate,
		&terms,
		&c.Status,
		&c.AcceptedByTenant,
		&c.TenantAcceptanceDate,
		&c.ValidatedBySupport,
		&c.SupportValidationDate,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.RowVersion,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if c.Terms, err = models.UnmarshalTerms(terms); err != nil {
		return nil, err
	}
	return &c, nil
}
