package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// --- Enumerations ---

// Line is the immutable categorical label assigned to an actor at creation.
// Content items carry a denormalized copy taken at write time; the copy is
// never updated afterwards.
type Line string

const (
	LineCrimson Line = "crimson"
	LineAmber   Line = "amber"
	LineJade    Line = "jade"
	LineCobalt  Line = "cobalt"
	LineViolet  Line = "violet"
	LineSlate   Line = "slate"
)

// Lines is the closed set of valid line labels, in assignment order.
var Lines = []Line{LineCrimson, LineAmber, LineJade, LineCobalt, LineViolet, LineSlate}

// Valid reports whether l is a member of the closed label set.
func (l Line) Valid() bool {
	for _, known := range Lines {
		if l == known {
			return true
		}
	}
	return false
}

// TargetType identifies what kind of content item a vote points at.
type TargetType string

const (
	TargetPost    TargetType = "post"
	TargetComment TargetType = "comment"
)

func (t TargetType) Valid() bool {
	return t == TargetPost || t == TargetComment
}

// ActionKind is a rate-limited write action category.
type ActionKind string

const (
	ActionPost    ActionKind = "post"
	ActionComment ActionKind = "comment"
	ActionVote    ActionKind = "vote"
)

// DeletionReason records why a content item was soft-deleted.
type DeletionReason string

const (
	DeletionAutoLowScore DeletionReason = "auto_low_score"
	DeletionByUser       DeletionReason = "user_deleted"
	DeletionByAdmin      DeletionReason = "admin_deleted"
)

// FeedKind selects the feed ordering.
type FeedKind string

const (
	FeedHot FeedKind = "hot"
	FeedNew FeedKind = "new"
)

// --- Board rules ---

const (
	// ContentMaxLen is the maximum content length in runes for posts and comments.
	ContentMaxLen = 500
	// PreviewMaxLen is the maximum notification preview length in runes.
	PreviewMaxLen = 100
	// MaxCommentDepth is the deepest allowed reply level (0 = top-level).
	MaxCommentDepth = 1
	// DeletionThreshold is the score at or below which content is auto-deleted.
	DeletionThreshold = -5
	// MaxPageSize is the largest page a list operation accepts.
	MaxPageSize = 100
)

// Milestones are the fixed upward score thresholds that trigger a one-time
// notification per (recipient, post, milestone).
var Milestones = []int{5, 10, 25}

// --- Model types ---

type Actor struct {
	ID          uuid.UUID
	DeviceToken string
	Line        Line
	LastSeenAt  time.Time
	CreatedAt   time.Time
}

type Post struct {
	ID             uuid.UUID
	AuthorID       uuid.UUID
	AuthorLine     Line
	Content        string
	Score          int
	VoteCount      int
	CommentCount   int
	CreatedAt      time.Time
	DeletedAt      *time.Time
	DeletionReason DeletionReason
}

// Deleted reports whether the post has been soft-deleted.
func (p *Post) Deleted() bool { return p.DeletedAt != nil }

type Comment struct {
	ID             uuid.UUID
	PostID         uuid.UUID
	ParentID       *uuid.UUID
	Depth          int
	AuthorID       uuid.UUID
	AuthorLine     Line
	Content        string
	Score          int
	VoteCount      int
	ReplyCount     int
	CreatedAt      time.Time
	DeletedAt      *time.Time
	DeletionReason DeletionReason
}

func (c *Comment) Deleted() bool { return c.DeletedAt != nil }

type Vote struct {
	ActorID    uuid.UUID
	TargetType TargetType
	TargetID   uuid.UUID
	Value      int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type NotificationType string

const (
	NotificationReplyToPost    NotificationType = "reply_to_post"
	NotificationReplyToComment NotificationType = "reply_to_comment"
	NotificationMilestone5     NotificationType = "milestone_5"
	NotificationMilestone10    NotificationType = "milestone_10"
	NotificationMilestone25    NotificationType = "milestone_25"
)

type Notification struct {
	ID          uuid.UUID
	RecipientID uuid.UUID
	Type        NotificationType
	PostID      uuid.UUID
	CommentID   *uuid.UUID
	ActorID     *uuid.UUID
	// ActorLine and Preview are snapshots taken when the notification is
	// created; they are never synced with later changes to the source rows.
	ActorLine Line
	Preview   string
	Read      bool
	CreatedAt time.Time
	ReadAt    *time.Time
	DeletedAt *time.Time
}

type PushSubscription struct {
	ID        uuid.UUID
	ActorID   uuid.UUID
	DeviceID  string
	Endpoint  string
	P256dh    string
	Auth      string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeliveryLogEntry is the append-only record of one push delivery attempt.
type DeliveryLogEntry struct {
	ID             uuid.UUID
	NotificationID uuid.UUID
	SubscriptionID uuid.UUID
	Success        bool
	Error          string
	CreatedAt      time.Time
}

// DeliveryResult summarizes a fan-out to all of a recipient's subscriptions.
// Partial success is normal: one device may succeed while another is stale.
type DeliveryResult struct {
	Sent   int
	Failed int
	Total  int
}

// --- Shared value types ---

// VoteOutcome is the settled state after a vote write.
type VoteOutcome struct {
	Score     int
	VoteCount int
	// ActorVote is the actor's stored vote after the write: -1, 0 (retracted), or +1.
	ActorVote int
	// AutoDeleted is set when this write pushed the target across the
	// deletion threshold and the moderation gate fired.
	AutoDeleted bool
	// Milestones holds the milestone notifications created by this write,
	// already persisted in the same transaction.
	Milestones []Notification
}

// FeedCursor is the decoded composite pagination key. The hot feed orders by
// (score, created_at); the new feed uses created_at only and ignores Score.
type FeedCursor struct {
	Score     int
	CreatedAt time.Time
}

type FeedQuery struct {
	Kind   FeedKind
	Lines  []Line
	Limit  int
	Cursor *FeedCursor
}

// FeedItem is a post plus its display-only decayed hot score.
type FeedItem struct {
	Post     Post
	HotScore float64
}

type FeedPage struct {
	Items      []FeedItem
	NextCursor *FeedCursor
}

// --- Repository interfaces ---

type CreatePostParams struct {
	AuthorID   uuid.UUID
	AuthorLine Line
	Content    string
}

type CreateCommentParams struct {
	PostID     uuid.UUID
	ParentID   *uuid.UUID
	AuthorID   uuid.UUID
	AuthorLine Line
	Content    string
}

type SaveSubscriptionParams struct {
	ActorID  uuid.UUID
	DeviceID string
	Endpoint string
	P256dh   string
	Auth     string
}

// ActorRepository persists anonymous device-bound identities.
type ActorRepository interface {
	// Bootstrap creates the actor for deviceToken if absent and touches
	// last_seen_at. The line label is only used on first creation.
	Bootstrap(ctx context.Context, deviceToken string, line Line) (*Actor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Actor, error)
	GetByDeviceToken(ctx context.Context, deviceToken string) (*Actor, error)
	// TouchLastSeen stamps last_seen_at. Called after every accepted write.
	TouchLastSeen(ctx context.Context, id uuid.UUID) error
}

type PostRepository interface {
	Create(ctx context.Context, params CreatePostParams) (*Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	// SoftDelete marks the post deleted with the given reason. It succeeds
	// regardless of score and is a no-op if the post is already deleted.
	SoftDelete(ctx context.Context, id uuid.UUID, reason DeletionReason) error
}

type CommentRepository interface {
	// Create inserts the comment, bumps the denormalized counters on the post
	// (and parent comment), and writes the reply notification — all in one
	// transaction. The returned notification is nil when the reply targets
	// the author's own content.
	Create(ctx context.Context, params CreateCommentParams) (*Comment, *Notification, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Comment, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]Comment, error)
	SoftDelete(ctx context.Context, id uuid.UUID, reason DeletionReason) error
}

// VoteRepository is the vote ledger plus its transactional side effects:
// score recomputation, the moderation gate, and milestone notifications.
type VoteRepository interface {
	// Cast upserts (value ±1) or retracts (value 0) the actor's vote and
	// settles the target's aggregate state in the same transaction.
	Cast(ctx context.Context, actorID uuid.UUID, targetType TargetType, targetID uuid.UUID, value int) (*VoteOutcome, error)
}

type FeedRepository interface {
	Feed(ctx context.Context, query FeedQuery) (*FeedPage, error)
}

type NotificationRepository interface {
	List(ctx context.Context, recipientID uuid.UUID, limit, offset int, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	SoftDelete(ctx context.Context, id, recipientID uuid.UUID) error
	// PurgeRead hard-deletes notifications that are read or soft-deleted and
	// older than the cutoff. Used by the maintenance job.
	PurgeRead(ctx context.Context, olderThan time.Time) (int64, error)
}

type SubscriptionRepository interface {
	// Save upserts the subscription for (actor, device); refreshing an
	// existing registration is idempotent.
	Save(ctx context.Context, params SaveSubscriptionParams) (*PushSubscription, error)
	ListEnabled(ctx context.Context, actorID uuid.UUID) ([]PushSubscription, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AppendDeliveryLog(ctx context.Context, entry DeliveryLogEntry) error
}

// --- Service interfaces ---

// RateLimiter enforces the per-actor sliding-window ceilings. Allow both
// checks and records the action atomically, so an allowed action is already
// counted against the window.
type RateLimiter interface {
	Allow(ctx context.Context, actorID uuid.UUID, kind ActionKind) (bool, error)
}

// NotificationPublisher emits notification-created events for asynchronous
// push delivery. Publishing must never fail the triggering write.
type NotificationPublisher interface {
	PublishNotificationCreated(n Notification)
}
