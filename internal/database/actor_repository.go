package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cyberpapiii/yipyap-sub000/internal/domain"
)

// actorColumns must match the Scan order in scanActor.
const actorColumns = `id, device_token, line, last_seen_at, created_at`

// ActorRepo implements domain.ActorRepository backed by PostgreSQL.
type ActorRepo struct {
	pool *pgxpool.Pool
}

var _ domain.ActorRepository = (*ActorRepo)(nil)

func NewActorRepo(pool *pgxpool.Pool) *ActorRepo {
	return &ActorRepo{pool: pool}
}

func scanActor(row pgx.Row) (*domain.Actor, error) {
	var actor domain.Actor
	err := row.Scan(&actor.ID, &actor.DeviceToken, &actor.Line, &actor.LastSeenAt, &actor.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &actor, nil
}

// Bootstrap inserts the actor on first contact and touches last_seen_at on
// every later call. The line label sticks from the first insert; conflicting
// calls never reassign it.
func (r *ActorRepo) Bootstrap(ctx context.Context, deviceToken string, line domain.Line) (*domain.Actor, error) {
	actor, err := scanActor(r.pool.QueryRow(ctx, `
		INSERT INTO actors (device_token, line)
		VALUES ($1, $2)
		ON CONFLICT (device_token) DO UPDATE SET last_seen_at = NOW()
		RETURNING `+actorColumns+`
	`, deviceToken, line))
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap actor: %w", err)
	}
	return actor, nil
}

func (r *ActorRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Actor, error) {
	actor, err := scanActor(r.pool.QueryRow(ctx,
		`SELECT `+actorColumns+` FROM actors WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrActorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get actor by ID: %w", err)
	}
	return actor, nil
}

// TouchLastSeen stamps last_seen_at. The write path calls this after each
// accepted post, comment, or vote; a vanished actor is not an error.
func (r *ActorRepo) TouchLastSeen(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE actors SET last_seen_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to touch actor last_seen_at: %w", err)
	}
	return nil
}

// GetByDeviceToken resolves the actor behind a device token. Used by the
// request middleware on every authenticated call.
func (r *ActorRepo) GetByDeviceToken(ctx context.Context, deviceToken string) (*domain.Actor, error) {
	actor, err := scanActor(r.pool.QueryRow(ctx,
		`SELECT `+actorColumns+` FROM actors WHERE device_token = $1`, deviceToken))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrActorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get actor by device token: %w", err)
	}
	return actor, nil
}
