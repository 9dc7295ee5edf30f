package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/cyberpapiii/yipyap-sub000/internal/domain"
	"github.com/cyberpapiii/yipyap-sub000/internal/metrics"
	"github.com/cyberpapiii/yipyap-sub000/internal/rank"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

// FeedRepo implements domain.FeedRepository. The hot feed is a live query over
// the stored aggregate within a recency window; the decayed hot score is
// computed per row for display only so the pagination cursor stays stable
// while time passes between pages.
type FeedRepo struct {
	pool      *pgxpool.Pool
	clock     clockwork.Clock
	hotWindow time.Duration
}

var _ domain.FeedRepository = (*FeedRepo)(nil)

func NewFeedRepo(pool *pgxpool.Pool, clock clockwork.Clock, hotWindow time.Duration) *FeedRepo {
	return &FeedRepo{
		pool:      pool,
		clock:     clock,
		hotWindow: hotWindow,
	}
}

func (r *FeedRepo) Feed(ctx context.Context, query domain.FeedQuery) (*domain.FeedPage, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	sql, args := buildFeedQuery(query, limit, r.clock.Now(), r.hotWindow)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed: %w", err)
	}
	defer rows.Close()

	now := r.clock.Now()
	var items []domain.FeedItem
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed post: %w", err)
		}
		items = append(items, domain.FeedItem{
			Post:     *post,
			HotScore: rank.HotScore(post.Score, post.CreatedAt, now),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feed rows: %w", err)
	}

	metrics.FeedQueries.WithLabelValues(string(query.Kind)).Inc()

	// One extra row was fetched to detect whether a next page exists.
	page := &domain.FeedPage{}
	if len(items) > limit {
		items = items[:limit]
		last := items[len(items)-1].Post
		page.NextCursor = &domain.FeedCursor{Score: last.Score, CreatedAt: last.CreatedAt}
	}
	page.Items = items
	return page, nil
}

func buildFeedQuery(query domain.FeedQuery, limit int, now time.Time, hotWindow time.Duration) (string, []any) {
	sql := `SELECT ` + postColumns + ` FROM posts WHERE deleted_at IS NULL`
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if query.Kind == domain.FeedHot {
		sql += ` AND created_at > ` + arg(now.Add(-hotWindow))
	}

	if len(query.Lines) > 0 {
		lines := make([]string, len(query.Lines))
		for i, l := range query.Lines {
			lines[i] = string(l)
		}
		sql += ` AND author_line = ANY(` + arg(lines) + `)`
	}

	if c := query.Cursor; c != nil {
		if query.Kind == domain.FeedHot {
			// Composite row comparison continues the (score DESC, created_at DESC) order
			sql += ` AND (score, created_at) < (` + arg(c.Score) + `, ` + arg(c.CreatedAt) + `)`
		} else {
			sql += ` AND created_at < ` + arg(c.CreatedAt)
		}
	}

	if query.Kind == domain.FeedHot {
		sql += ` ORDER BY score DESC, created_at DESC`
	} else {
		sql += ` ORDER BY created_at DESC`
	}
	sql += ` LIMIT ` + arg(limit+1)

	return sql, args
}
