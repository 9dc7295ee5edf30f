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

// commentColumns must match the Scan order in scanComment.
const commentColumns = `id, post_id, parent_id, depth, author_id, author_line, content, score, vote_count, reply_count, created_at, deleted_at, deletion_reason`

// CommentRepo implements domain.CommentRepository backed by PostgreSQL.
type CommentRepo struct {
	pool *pgxpool.Pool
}

var _ domain.CommentRepository = (*CommentRepo)(nil)

func NewCommentRepo(pool *pgxpool.Pool) *CommentRepo {
	return &CommentRepo{pool: pool}
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var comment domain.Comment
	err := row.Scan(
		&comment.ID, &comment.PostID, &comment.ParentID, &comment.Depth,
		&comment.AuthorID, &comment.AuthorLine, &comment.Content,
		&comment.Score, &comment.VoteCount, &comment.ReplyCount,
		&comment.CreatedAt, &comment.DeletedAt, &comment.DeletionReason,
	)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Create inserts the comment and settles everything that must move with it in
// one transaction: the post's comment counter, the parent's reply counter, and
// the reply notification row. The post row is locked first so a concurrent
// soft-delete cannot race the insert.
func (r *CommentRepo) Create(ctx context.Context, params domain.CreateCommentParams) (*domain.Comment, *domain.Notification, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var postAuthorID uuid.UUID
	var postDeleted bool
	err = tx.QueryRow(ctx, `
		SELECT author_id, deleted_at IS NOT NULL
		FROM posts WHERE id = $1
		FOR UPDATE
	`, params.PostID).Scan(&postAuthorID, &postDeleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock post: %w", err)
	}
	if postDeleted {
		return nil, nil, domain.ErrTargetDeleted
	}

	depth := 0
	recipientID := postAuthorID
	if params.ParentID != nil {
		var parentPostID, parentAuthorID uuid.UUID
		var parentDepth int
		var parentDeleted bool
		err = tx.QueryRow(ctx, `
			SELECT post_id, author_id, depth, deleted_at IS NOT NULL
			FROM comments WHERE id = $1
			FOR UPDATE
		`, *params.ParentID).Scan(&parentPostID, &parentAuthorID, &parentDepth, &parentDeleted)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, domain.ErrCommentNotFound
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to lock parent comment: %w", err)
		}
		if parentPostID != params.PostID {
			return nil, nil, domain.ErrCommentNotFound
		}
		if parentDeleted {
			return nil, nil, domain.ErrTargetDeleted
		}
		depth = parentDepth + 1
		if depth > domain.MaxCommentDepth {
			return nil, nil, domain.ErrMaxDepthExceeded
		}
		recipientID = parentAuthorID
	}

	comment, err := scanComment(tx.QueryRow(ctx, `
		INSERT INTO comments (post_id, parent_id, depth, author_id, author_line, content)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+commentColumns+`
	`, params.PostID, params.ParentID, depth, params.AuthorID, params.AuthorLine, params.Content))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to insert comment: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE posts SET comment_count = comment_count + 1 WHERE id = $1`, params.PostID); err != nil {
		return nil, nil, fmt.Errorf("failed to bump post comment count: %w", err)
	}
	if params.ParentID != nil {
		if _, err := tx.Exec(ctx, `UPDATE comments SET reply_count = reply_count + 1 WHERE id = $1`, *params.ParentID); err != nil {
			return nil, nil, fmt.Errorf("failed to bump parent reply count: %w", err)
		}
	}

	notification := domain.NewReplyNotification(recipientID, comment)
	if notification != nil {
		if err := insertNotification(ctx, tx, notification); err != nil {
			return nil, nil, fmt.Errorf("failed to insert reply notification: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return comment, notification, nil
}

func (r *CommentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	comment, err := scanComment(r.pool.QueryRow(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment by ID: %w", err)
	}
	return comment, nil
}

// ListByPost returns all comments of a post in creation order, including
// soft-deleted ones. Deleted comments keep their place in the thread; the
// handler masks their content.
func (r *CommentRepo) ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE post_id = $1 ORDER BY created_at, id`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, *comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read comment rows: %w", err)
	}
	return comments, nil
}

func (r *CommentRepo) SoftDelete(ctx context.Context, id uuid.UUID, reason domain.DeletionReason) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE comments
		SET deleted_at = NOW(), deletion_reason = $2
		WHERE id = $1 AND deleted_at IS NULL
	`, id, reason)
	if err != nil {
		return fmt.Errorf("failed to soft delete comment: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM comments WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check comment existence: %w", err)
	}
	if !exists {
		return domain.ErrCommentNotFound
	}
	return nil
}
