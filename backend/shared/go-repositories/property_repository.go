package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/arrienda/mono-repo/backend/shared/go-models"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

// PropertyRepository is read-mostly: the lease workflow never edits
// listing details, and status flips happen inside contract transactions.
type PropertyRepository interface {
	Create(ctx context.Context, p *models.Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type propertyRepo struct {
	*BaseVersionedRepo[*models.Property]
	db DB
}

func NewPropertyRepository(db DB) PropertyRepository {
	r := &propertyRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectProperty()+" WHERE id=$1", scanProperty)
	return r
}

func (r *propertyRepo) Create(ctx context.Context, p *models.Property) error {
	if p.Status == "" {
		p.Status = models.PropertyStatusAvailable
	}
	_, err := r.db.Exec(ctx, `
        INSERT INTO properties (
            id, owner_id, title, address, city, time_zone,
            latitude, longitude, monthly_price, status,
            created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10, NOW(), NOW(), 1)
        ON CONFLICT (id) DO NOTHING
    `,
		p.ID,
		p.OwnerID,
		p.Title,
		p.Address,
		p.City,
		p.TimeZone,
		p.Latitude,
		p.Longitude,
		p.MonthlyPrice,
		p.Status,
	)
	return err
}

func (r *propertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func baseSelectProperty() string {
	return `
        SELECT
            id, owner_id, title, address, city, time_zone,
            latitude, longitude, monthly_price, status,
            created_at, updated_at, row_version
        FROM properties
    `
}

func scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Title,
		&p.Address,
		&p.City,
		&p.TimeZone,
		&p.Latitude,
		&p.Longitude,
		&p.MonthlyPrice,
		&p.Status,
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

// lockPropertyStatus reads a property's status under a share lock so a
// concurrent contract transition cannot flip it before the caller commits.
func lockPropertyStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID) (models.PropertyStatus, error) {
	var status models.PropertyStatus
	err := tx.QueryRow(ctx, `SELECT status FROM properties WHERE id=$1 FOR SHARE`, id).Scan(&status)
	return status, err
}

// applyPropertyFlip performs a guarded status change. An empty From makes
// the change unconditional.
func applyPropertyFlip(ctx context.Context, tx pgx.Tx, flip *models.PropertyFlip) error {
	sql := `UPDATE properties SET status=$2, row_version=row_version+1, updated_at=NOW() WHERE id=$1`
	args := []any{flip.PropertyID, flip.To}
	if flip.From != "" {
		sql += ` AND status=$3`
		args = append(args, flip.From)
	}
	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPropertyUnavailable
	}
	return nil
}
