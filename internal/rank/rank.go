// Package rank computes the time-decayed hot score and encodes feed cursors.
//
// Pagination deliberately orders the hot feed by the raw (score, created_at)
// pair rather than the continuously decaying hot score: a live-decaying sort
// key would shift items between pages while a client paginates. The hot score
// is computed per returned row for display only.
package rank

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cyberpapiii/yipyap-sub000/internal/domain"
)

// ErrInvalidCursor marks a cursor that cannot be decoded. Malformed cursors
// are rejected, never silently clamped.
var ErrInvalidCursor = errors.New("invalid feed cursor")

const (
	decayExponent = 1.5
	cursorSep     = "|"
)

// HotScore returns max(|score|, 1) * max(hoursSinceCreation, 1)^-1.5.
// Items younger than one hour decay as if one hour old, so brand-new posts
// don't divide by a vanishing age.
func HotScore(score int, createdAt, now time.Time) float64 {
	magnitude := math.Max(math.Abs(float64(score)), 1)
	hours := math.Max(now.Sub(createdAt).Hours(), 1)
	return magnitude * math.Pow(hours, -decayExponent)
}

// EncodeCursor serializes a feed cursor for the given feed kind. The new feed
// keys on created_at only; the hot feed keys on the (score, created_at) pair.
func EncodeCursor(kind domain.FeedKind, c domain.FeedCursor) string {
	var raw string
	switch kind {
	case domain.FeedHot:
		raw = strconv.Itoa(c.Score) + cursorSep + c.CreatedAt.UTC().Format(time.RFC3339Nano)
	default:
		raw = c.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a cursor string previously produced by EncodeCursor.
// An empty string decodes to nil (first page).
func DecodeCursor(kind domain.FeedKind, s string) (*domain.FeedCursor, error) {
	if s == "" {
		return nil, nil
	}

	decoded, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	raw := string(decoded)

	switch kind {
	case domain.FeedHot:
		score, createdAt, err := splitHotCursor(raw)
		if err != nil {
			return nil, err
		}
		return &domain.FeedCursor{Score: score, CreatedAt: createdAt}, nil
	case domain.FeedNew:
		createdAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: bad timestamp", ErrInvalidCursor)
		}
		return &domain.FeedCursor{CreatedAt: createdAt}, nil
	default:
		return nil, fmt.Errorf("%w: unknown feed kind %q", ErrInvalidCursor, kind)
	}
}

func splitHotCursor(raw string) (int, time.Time, error) {
	parts := strings.SplitN(raw, cursorSep, 2)
	if len(parts) != 2 {
		return 0, time.Time{}, fmt.Errorf("%w: missing separator", ErrInvalidCursor)
	}

	score, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: bad score", ErrInvalidCursor)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, parts[1])
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: bad timestamp", ErrInvalidCursor)
	}

	return score, createdAt, nil
}
