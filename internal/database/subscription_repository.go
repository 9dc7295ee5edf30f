package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cyberpapiii/yipyap-sub000/internal/domain"
)

// subscriptionColumns must match the Scan order in scanSubscription.
const subscriptionColumns = `id, actor_id, device_id, endpoint, p256dh, auth, enabled, created_at, updated_at`

// SubscriptionRepo implements domain.SubscriptionRepository backed by PostgreSQL.
type SubscriptionRepo struct {
	pool *pgxpool.Pool
}

var _ domain.SubscriptionRepository = (*SubscriptionRepo)(nil)

func NewSubscriptionRepo(pool *pgxpool.Pool) *SubscriptionRepo {
	return &SubscriptionRepo{pool: pool}
}

func scanSubscription(row pgx.Row) (*domain.PushSubscription, error) {
	var sub domain.PushSubscription
	err := row.Scan(
		&sub.ID, &sub.ActorID, &sub.DeviceID, &sub.Endpoint,
		&sub.P256dh, &sub.Auth, &sub.Enabled,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Save upserts on (actor, device). Re-registering refreshes the keys and
// re-enables a subscription that was disabled or superseded.
func (r *SubscriptionRepo) Save(ctx context.Context, params domain.SaveSubscriptionParams) (*domain.PushSubscription, error) {
	sub, err := scanSubscription(r.pool.QueryRow(ctx, `
		INSERT INTO push_subscriptions (actor_id, device_id, endpoint, p256dh, auth)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (actor_id, device_id) DO UPDATE SET
			endpoint = EXCLUDED.endpoint,
			p256dh = EXCLUDED.p256dh,
			auth = EXCLUDED.auth,
			enabled = TRUE,
			updated_at = NOW()
		RETURNING `+subscriptionColumns+`
	`, params.ActorID, params.DeviceID, params.Endpoint, params.P256dh, params.Auth))
	if err != nil {
		return nil, fmt.Errorf("failed to save push subscription: %w", err)
	}
	return sub, nil
}

func (r *SubscriptionRepo) ListEnabled(ctx context.Context, actorID uuid.UUID) ([]domain.PushSubscription, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+subscriptionColumns+` FROM push_subscriptions WHERE actor_id = $1 AND enabled`, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []domain.PushSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan push subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read push subscription rows: %w", err)
	}
	return subs, nil
}

func (r *SubscriptionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM push_subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubscriptionNotFound
	}
	return nil
}

func (r *SubscriptionRepo) AppendDeliveryLog(ctx context.Context, entry domain.DeliveryLogEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO push_delivery_log (notification_id, subscription_id, success, error)
		VALUES ($1, $2, $3, $4)
	`, entry.NotificationID, entry.SubscriptionID, entry.Success, entry.Error)
	if err != nil {
		return fmt.Errorf("failed to append delivery log: %w", err)
	}
	return nil
}
