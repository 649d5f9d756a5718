package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/arrienda/mono-repo/backend/shared/go-models"
)

// NotificationRepository serves both the delivery dispatcher (outbox side)
// and the user inbox endpoints.
type NotificationRepository interface {
	ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]*models.Notification, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) error
	MarkDeliveryFailed(ctx context.Context, id uuid.UUID, reason string, maxAttempts int) error

	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

type notificationRepo struct {
	db DB
}

func NewNotificationRepository(db DB) NotificationRepository {
	return &notificationRepo{db: db}
}

// ClaimPending leases up to limit PENDING rows to the caller. Rows locked
// or leased by another dispatcher are skipped; an expired lease makes the
// row claimable again.
func (r *notificationRepo) ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]*models.Notification, error) {
	rows, err := r.db.Query(ctx, `
        UPDATE notifications
        SET claimed_until = NOW() + $2::float8 * INTERVAL '1 second'
        WHERE id IN (
            SELECT id FROM notifications
            WHERE delivery_status='PENDING'
              AND (claimed_until IS NULL OR claimed_until < NOW())
            ORDER BY created_at
            LIMIT $1
            FOR UPDATE SKIP LOCKED
        )
        RETURNING `+notificationColumns,
		limit, lease.Seconds(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNotifications(rows)
}

func (r *notificationRepo) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
        UPDATE notifications
        SET delivery_status='SENT',
            delivery_attempts=delivery_attempts+1,
            delivered_at=NOW(),
            last_error=NULL,
            claimed_until=NULL
        WHERE id=$1
    `, id)
	return err
}

func (r *notificationRepo) MarkDeliveryFailed(ctx context.Context, id uuid.UUID, reason string, maxAttempts int) error {
	_, err := r.db.Exec(ctx, `
        UPDATE notifications
        SET delivery_attempts=delivery_attempts+1,
            last_error=$2,
            claimed_until=NULL,
            delivery_status = CASE WHEN delivery_attempts+1 >= $3 THEN 'FAILED' ELSE 'PENDING' END
        WHERE id=$1
    `, id, reason, maxAttempts)
	return err
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*models.Notification, error) {
	sql := baseSelectNotification() + ` WHERE user_id=$1`
	if unreadOnly {
		sql += ` AND read_at IS NULL`
	}
	sql += ` ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.Query(ctx, sql, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNotifications(rows)
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET read_at=COALESCE(read_at, NOW()) WHERE id=$1 AND user_id=$2`,
		id, userID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// insertNotifications writes outbox rows on the caller's transaction so
// they become visible only if the owning transition commits.
func insertNotifications(ctx context.Context, tx pgx.Tx, ns []*models.Notification) error {
	for _, n := range ns {
		if n == nil {
			continue
		}
		var data any
		if len(n.Data) > 0 {
			data = string(n.Data)
		}
		_, err := tx.Exec(ctx, `
            INSERT INTO notifications (
                id, user_id, type, title, message, data,
                delivery_status, delivery_attempts, created_at
            ) VALUES ($1,$2,$3,$4,$5,$6::jsonb,'PENDING',0, NOW())
        `, n.ID, n.UserID, n.Type, n.Title, n.Message, data)
		if err != nil {
			return err
		}
	}
	return nil
}

const notificationColumns = `
        id, user_id, type, title, message, data,
        read_at, delivery_status, delivery_attempts, last_error,
        delivered_at, created_at
    `

func baseSelectNotification() string {
	return `SELECT ` + notificationColumns + ` FROM notifications`
}

func collectNotifications(rows pgx.Rows) ([]*models.Notification, error) {
	var out []*models.Notification
	for rows.Next() {
		var (
			n    models.Notification
			data []byte
		)
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &data,
			&n.ReadAt, &n.DeliveryStatus, &n.DeliveryAttempts, &n.LastError,
			&n.DeliveredAt, &n.CreatedAt,
		); err != nil {
			return nil, err
		}
		n.Data = data
		out = append(out, &n)
	}
	return out, rows.Err()
}
