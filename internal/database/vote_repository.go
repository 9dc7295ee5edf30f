package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cyberpapiii/yipyap-sub000/internal/domain"
	"github.com/cyberpapiii/yipyap-sub000/internal/metrics"
)

// VoteRepo implements domain.VoteRepository backed by PostgreSQL. A vote write
// settles everything downstream of it in one transaction: the ledger row, the
// recomputed aggregate, the moderation gate, and any milestone notifications.
type VoteRepo struct {
	pool *pgxpool.Pool
}

var _ domain.VoteRepository = (*VoteRepo)(nil)

func NewVoteRepo(pool *pgxpool.Pool) *VoteRepo {
	return &VoteRepo{pool: pool}
}

// Cast upserts (value ±1) or retracts (value 0) the actor's vote on the
// target. The target row is locked for the whole transaction, so concurrent
// votes on the same target serialize and each one sees a settled aggregate.
func (r *VoteRepo) Cast(ctx context.Context, actorID uuid.UUID, targetType domain.TargetType, targetID uuid.UUID, value int) (*domain.VoteOutcome, error) {
	if value < -1 || value > 1 {
		return nil, fmt.Errorf("invalid vote value %d", value)
	}
	if !targetType.Valid() {
		return nil, fmt.Errorf("invalid vote target type %q", targetType)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	target, err := lockTarget(ctx, tx, targetType, targetID)
	if err != nil {
		return nil, err
	}
	if target.deleted {
		return nil, domain.ErrTargetDeleted
	}

	if value == 0 {
		// Retraction of an absent vote is a no-op, not an error
		_, err = tx.Exec(ctx, `
			DELETE FROM votes WHERE actor_id = $1 AND target_type = $2 AND target_id = $3
		`, actorID, targetType, targetID)
		if err != nil {
			return nil, fmt.Errorf("failed to retract vote: %w", err)
		}
	} else {
		_, err = tx.Exec(ctx, `
			INSERT INTO votes (actor_id, target_type, target_id, value)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (actor_id, target_type, target_id)
			DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		`, actorID, targetType, targetID, value)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert vote: %w", err)
		}
	}

	// Full recompute from the ledger. Never incremental: the ledger is the
	// source of truth and the aggregate must match it exactly.
	var newScore, voteCount int
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(value), 0), COUNT(*)
		FROM votes WHERE target_type = $1 AND target_id = $2
	`, targetType, targetID).Scan(&newScore, &voteCount)
	if err != nil {
		return nil, fmt.Errorf("failed to recompute score: %w", err)
	}

	outcome := &domain.VoteOutcome{
		Score:     newScore,
		VoteCount: voteCount,
		ActorVote: value,
	}

	table := targetTable(targetType)
	if _, err := tx.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET score = $1, vote_count = $2 WHERE id = $3`, table),
		newScore, voteCount, targetID); err != nil {
		return nil, fmt.Errorf("failed to update aggregate: %w", err)
	}

	// Moderation gate: one-directional. Crossing the threshold deletes;
	// climbing back above it never undeletes.
	if newScore <= domain.DeletionThreshold {
		if _, err := tx.Exec(ctx,
			fmt.Sprintf(`UPDATE %s SET deleted_at = NOW(), deletion_reason = $1 WHERE id = $2`, table),
			domain.DeletionAutoLowScore, targetID); err != nil {
			return nil, fmt.Errorf("failed to apply moderation gate: %w", err)
		}
		outcome.AutoDeleted = true
	}

	// Milestones only fire for posts and only on upward crossings.
	if targetType == domain.TargetPost {
		for _, typ := range domain.MilestonesCrossed(target.score, newScore) {
			n := domain.NewMilestoneNotification(target.authorID, targetID, typ, target.content)
			inserted, err := insertMilestoneNotification(ctx, tx, n)
			if err != nil {
				return nil, fmt.Errorf("failed to insert milestone notification: %w", err)
			}
			if inserted {
				outcome.Milestones = append(outcome.Milestones, *n)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if outcome.AutoDeleted {
		metrics.ModerationDeletions.WithLabelValues(string(targetType)).Inc()
	}
	for _, n := range outcome.Milestones {
		metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()
	}

	return outcome, nil
}

type lockedTarget struct {
	authorID uuid.UUID
	score    int
	content  string
	deleted  bool
}

func lockTarget(ctx context.Context, tx pgx.Tx, targetType domain.TargetType, targetID uuid.UUID) (*lockedTarget, error) {
	var t lockedTarget
	err := tx.QueryRow(ctx,
		fmt.Sprintf(`SELECT author_id, score, content, deleted_at IS NOT NULL FROM %s WHERE id = $1 FOR UPDATE`, targetTable(targetType)),
		targetID).Scan(&t.authorID, &t.score, &t.content, &t.deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		if targetType == domain.TargetPost {
			return nil, domain.ErrPostNotFound
		}
		return nil, domain.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock vote target: %w", err)
	}
	return &t, nil
}

func targetTable(targetType domain.TargetType) string {
	if targetType == domain.TargetComment {
		return "comments"
	}
	return "posts"
}
