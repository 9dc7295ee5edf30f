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

// postColumns must match the Scan order in scanPost.
const postColumns = `id, author_id, author_line, content, score, vote_count, comment_count, created_at, deleted_at, deletion_reason`

// PostRepo implements domain.PostRepository backed by PostgreSQL.
type PostRepo struct {
	pool *pgxpool.Pool
}

var _ domain.PostRepository = (*PostRepo)(nil)

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var post domain.Post
	err := row.Scan(
		&post.ID, &post.AuthorID, &post.AuthorLine, &post.Content,
		&post.Score, &post.VoteCount, &post.CommentCount,
		&post.CreatedAt, &post.DeletedAt, &post.DeletionReason,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepo) Create(ctx context.Context, params domain.CreatePostParams) (*domain.Post, error) {
	post, err := scanPost(r.pool.QueryRow(ctx, `
		INSERT INTO posts (author_id, author_line, content)
		VALUES ($1, $2, $3)
		RETURNING `+postColumns+`
	`, params.AuthorID, params.AuthorLine, params.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

func (r *PostRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	post, err := scanPost(r.pool.QueryRow(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post by ID: %w", err)
	}
	return post, nil
}

// SoftDelete marks the post deleted. A post that is already deleted keeps its
// original deleted_at and reason, so the first deletion wins.
func (r *PostRepo) SoftDelete(ctx context.Context, id uuid.UUID, reason domain.DeletionReason) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE posts
		SET deleted_at = NOW(), deletion_reason = $2
		WHERE id = $1 AND deleted_at IS NULL
	`, id, reason)
	if err != nil {
		return fmt.Errorf("failed to soft delete post: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check post existence: %w", err)
	}
	if !exists {
		return domain.ErrPostNotFound
	}
	return nil
}
