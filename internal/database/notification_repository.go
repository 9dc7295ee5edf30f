package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cyberpapiii/yipyap-sub000/internal/domain"
)

// notificationColumns must match the Scan order in scanNotification.
const notificationColumns = `id, recipient_id, type, post_id, comment_id, actor_id, actor_line, preview, read_at, deleted_at, created_at`

// NotificationRepo implements domain.NotificationRepository backed by PostgreSQL.
type NotificationRepo struct {
	pool *pgxpool.Pool
}

var _ domain.NotificationRepository = (*NotificationRepo)(nil)

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(
		&n.ID, &n.RecipientID, &n.Type, &n.PostID, &n.CommentID,
		&n.ActorID, &n.ActorLine, &n.Preview,
		&n.ReadAt, &n.DeletedAt, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.Read = n.ReadAt != nil
	return &n, nil
}

// insertNotification writes a notification row inside the caller's transaction
// and fills in the generated ID and timestamp.
func insertNotification(ctx context.Context, tx pgx.Tx, n *domain.Notification) error {
	return tx.QueryRow(ctx, `
		INSERT INTO notifications (recipient_id, type, post_id, comment_id, actor_id, actor_line, preview)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, n.RecipientID, n.Type, n.PostID, n.CommentID, n.ActorID, n.ActorLine, n.Preview).Scan(&n.ID, &n.CreatedAt)
}

// insertMilestoneNotification writes a milestone row, deduplicated against the
// partial unique index on (post_id, type). Returns false when the milestone
// was already recorded by an earlier crossing.
func insertMilestoneNotification(ctx context.Context, tx pgx.Tx, n *domain.Notification) (bool, error) {
	err := tx.QueryRow(ctx, `
		INSERT INTO notifications (recipient_id, type, post_id, actor_line, preview)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (post_id, type) WHERE type LIKE 'milestone_%' DO NOTHING
		RETURNING id, created_at
	`, n.RecipientID, n.Type, n.PostID, n.ActorLine, n.Preview).Scan(&n.ID, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *NotificationRepo) List(ctx context.Context, recipientID uuid.UUID, limit, offset int, unreadOnly bool) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications
		WHERE recipient_id = $1 AND deleted_at IS NULL`
	if unreadOnly {
		query += ` AND read_at IS NULL`
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, recipientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read notification rows: %w", err)
	}
	return notifications, nil
}

// MarkRead is idempotent: re-reading keeps the original read_at. The recipient
// check doubles as the ownership check.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND recipient_id = $2 AND deleted_at IS NULL
	`, id, recipientID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET read_at = NOW()
		WHERE recipient_id = $1 AND read_at IS NULL AND deleted_at IS NULL
	`, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *NotificationRepo) SoftDelete(ctx context.Context, id, recipientID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET deleted_at = NOW()
		WHERE id = $1 AND recipient_id = $2 AND deleted_at IS NULL
	`, id, recipientID)
	if err != nil {
		return fmt.Errorf("failed to soft delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

// PurgeRead hard-deletes read or dismissed notifications older than the
// cutoff. Unread notifications are kept regardless of age.
func (r *NotificationRepo) PurgeRead(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM notifications
		WHERE created_at < $1 AND (read_at IS NOT NULL OR deleted_at IS NOT NULL)
	`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to purge notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}
