package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/cyberpapiii/yipyap-sub000/internal/domain"
	"github.com/cyberpapiii/yipyap-sub000/internal/metrics"
)

// slidingWindowScript prunes entries older than the window, counts what is
// left, and records the new action only if the ceiling has room. Check and
// record are a single atomic step.
// ARGV: [1]=now_ms, [2]=window_ms, [3]=limit, [4]=member
var slidingWindowScript = goredis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', tonumber(ARGV[1]) - tonumber(ARGV[2]))
local count = redis.call('ZCARD', KEYS[1])
if count >= tonumber(ARGV[3]) then
	return 0
end
redis.call('ZADD', KEYS[1], ARGV[1], ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return 1
`)

// Limiter implements sliding-window rate limiting per actor and action kind.
type Limiter struct {
	rdb      *goredis.Client
	clock    clockwork.Clock
	window   time.Duration
	ceilings map[domain.ActionKind]int
}

var _ domain.RateLimiter = (*Limiter)(nil)

// NewLimiter creates a rate limiter. Kinds without a positive ceiling are
// not limited.
func NewLimiter(rdb *goredis.Client, clock clockwork.Clock, window time.Duration, ceilings map[domain.ActionKind]int) *Limiter {
	return &Limiter{
		rdb:      rdb,
		clock:    clock,
		window:   window,
		ceilings: ceilings,
	}
}

// Allow checks whether the actor may perform another action of the given kind
// and, if so, records it. Fails open: when Redis is unreachable the write is
// allowed rather than blocking all traffic on a limiter outage.
func (l *Limiter) Allow(ctx context.Context, actorID uuid.UUID, kind domain.ActionKind) (bool, error) {
	limit, ok := l.ceilings[kind]
	if !ok || limit <= 0 {
		return true, nil
	}

	key := fmt.Sprintf("rate_limit:%s:%s", kind, actorID)
	nowMs := l.clock.Now().UnixMilli()
	member := fmt.Sprintf("%d-%s", nowMs, uuid.NewString())

	result, err := slidingWindowScript.Run(ctx, l.rdb, []string{key},
		nowMs,
		l.window.Milliseconds(),
		limit,
		member,
	).Int()
	if err != nil {
		slog.Warn("Rate limit check failed, allowing request",
			"kind", string(kind),
			"actor_id", actorID.String(),
			"error", err,
		)
		metrics.RedisOpsTotal.WithLabelValues("rate_limit", "error").Inc()
		return true, nil
	}

	if result != 1 {
		metrics.RateLimitRejections.WithLabelValues(string(kind)).Inc()
		return false, nil
	}
	return true, nil
}
