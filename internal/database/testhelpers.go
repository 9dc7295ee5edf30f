package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/cyberpapiii/yipyap-sub000/internal/domain"
)

// CreateTestActor creates an actor with a line derived from the device token.
func CreateTestActor(t *testing.T, pool *pgxpool.Pool, deviceToken string) *domain.Actor {
	t.Helper()

	repo := NewActorRepo(pool)
	actor, err := repo.Bootstrap(context.Background(), deviceToken, domain.AssignLine(deviceToken))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, actor.ID)

	return actor
}

// CreateTestPost creates a post authored by the given actor.
func CreateTestPost(t *testing.T, pool *pgxpool.Pool, author *domain.Actor, content string) *domain.Post {
	t.Helper()

	repo := NewPostRepo(pool)
	post, err := repo.Create(context.Background(), domain.CreatePostParams{
		AuthorID:   author.ID,
		AuthorLine: author.Line,
		Content:    content,
	})
	require.NoError(t, err)

	return post
}

// CreateTestComment creates a top-level comment on the post.
func CreateTestComment(t *testing.T, pool *pgxpool.Pool, post *domain.Post, author *domain.Actor, content string) *domain.Comment {
	t.Helper()

	repo := NewCommentRepo(pool)
	comment, _, err := repo.Create(context.Background(), domain.CreateCommentParams{
		PostID:     post.ID,
		AuthorID:   author.ID,
		AuthorLine: author.Line,
		Content:    content,
	})
	require.NoError(t, err)

	return comment
}
