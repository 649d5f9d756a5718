package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/arrienda/mono-repo/backend/shared/go-models"
)

type PaymentRepository interface {
	// Create re-reads the contract under a share lock and refuses the insert
	// unless its status still accepts payments.
	Create(ctx context.Context, p *models.Payment, simulated bool, outbox []*models.Notification) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)

	UpdateIfStatus(
		ctx context.Context,
		p *models.Payment,
		expected models.PaymentStatus,
		outbox []*models.Notification,
	) (bool, error)

	// DeleteIfDeletable removes the payment unless it is paid or has moved
	// on since the caller read it.
	DeleteIfDeletable(ctx context.Context, id uuid.UUID, expectedVersion int64) (bool, error)
}

type paymentRepo struct {
	*BaseVersionedRepo[*models.Payment]
	db DB
}

func NewPaymentRepository(db DB) PaymentRepository {
	r := &paymentRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectPayment()+" WHERE id=$1", scanPayment)
	return r
}

func (r *paymentRepo) Create(ctx context.Context, p *models.Payment, simulated bool, outbox []*models.Notification) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		var status models.ContractStatus
		err := tx.QueryRow(ctx, `SELECT status FROM contracts WHERE id=$1 FOR SHARE`, p.ContractID).Scan(&status)
		if err != nil {
			return err
		}
		if !status.AcceptsPayments(simulated) {
			return ErrStatusMismatch
		}

		_, err = tx.Exec(ctx, `
            INSERT INTO payments (
                id, contract_id, tenant_id, amount, payment_date,
                payment_method, status, receipt_path, notes,
                created_at, updated_at, row_version
            ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, NOW(), NOW(), 1)
        `,
			p.ID,
			p.ContractID,
			p.TenantID,
			p.Amount,
			p.PaymentDate,
			p.Method,
			p.Status,
			p.ReceiptPath,
			p.Notes,
		)
		if err != nil {
			return err
		}
		p.RowVersion = 1
		return insertNotifications(ctx, tx, outbox)
	})
}

func (r *paymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *paymentRepo) UpdateIfStatus(
	ctx context.Context,
	p *models.Payment,
	expected models.PaymentStatus,
	outbox []*models.Notification,
) (bool, error) {
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
            UPDATE payments SET
                status=$1, receipt_path=$2, notes=$3,
                row_version=row_version+1, updated_at=NOW()
            WHERE id=$4 AND status=$5 AND row_version=$6
        `, p.Status, p.ReceiptPath, p.Notes, p.ID, expected, p.RowVersion)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrStatusMismatch
		}
		return insertNotifications(ctx, tx, outbox)
	})
	if errors.Is(err, ErrStatusMismatch) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	p.RowVersion++
	return true, nil
}

func (r *paymentRepo) DeleteIfDeletable(ctx context.Context, id uuid.UUID, expectedVersion int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
        DELETE FROM payments
        WHERE id=$1 AND row_version=$2 AND status <> $3
    `, id, expectedVersion, models.PaymentPaid)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func baseSelectPayment() string {
	return `
        SELECT
            id, contract_id, tenant_id, amount, payment_date,
            payment_method, status, receipt_path, notes,
            created_at, updated_at, row_version
        FROM payments
    `
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(
		&p.ID,
		&p.ContractID,
		&p.TenantID,
		&p.Amount,
		&p.PaymentDate,
		&p.Method,
		&p.Status,
		&p.ReceiptPath,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.RowVersion,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
