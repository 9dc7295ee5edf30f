package board

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/cyberpapiii/yipyap-sub000/internal/domain"
	"github.com/cyberpapiii/yipyap-sub000/internal/errors"
	"github.com/cyberpapiii/yipyap-sub000/internal/metrics"
)

const maxDeviceTokenLen = 128

// Service orchestrates all board use cases.
type Service struct {
	actors        domain.ActorRepository
	posts         domain.PostRepository
	comments      domain.CommentRepository
	votes         domain.VoteRepository
	feed          domain.FeedRepository
	notifications domain.NotificationRepository
	subscriptions domain.SubscriptionRepository
	limiter       domain.RateLimiter
	publisher     domain.NotificationPublisher

	bootstrapGroup singleflight.Group
	clock          clockwork.Clock
}

type ServiceParams struct {
	Actors        domain.ActorRepository
	Posts         domain.PostRepository
	Comments      domain.CommentRepository
	Votes         domain.VoteRepository
	Feed          domain.FeedRepository
	Notifications domain.NotificationRepository
	Subscriptions domain.SubscriptionRepository
	Limiter       domain.RateLimiter
	Publisher     domain.NotificationPublisher
	Clock         clockwork.Clock
}

func NewService(p ServiceParams) *Service {
	return &Service{
		actors:        p.Actors,
		posts:         p.Posts,
		comments:      p.Comments,
		votes:         p.Votes,
		feed:          p.Feed,
		notifications: p.Notifications,
		subscriptions: p.Subscriptions,
		limiter:       p.Limiter,
		publisher:     p.Publisher,
		clock:         p.Clock,
	}
}

// mapDomainError translates repository sentinels into structured errors with
// the right HTTP semantics. Unknown errors pass through and surface as 500s.
func mapDomainError(err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, domain.ErrActorNotFound):
		return errors.NotFoundError("actor not found")
	case stderrors.Is(err, domain.ErrPostNotFound):
		return errors.NotFoundError("post not found")
	case stderrors.Is(err, domain.ErrCommentNotFound):
		return errors.NotFoundError("comment not found")
	case stderrors.Is(err, domain.ErrNotificationNotFound):
		return errors.NotFoundError("notification not found")
	case stderrors.Is(err, domain.ErrSubscriptionNotFound):
		return errors.NotFoundError("push subscription not found")
	case stderrors.Is(err, domain.ErrTargetDeleted):
		return errors.ConflictError("content has been deleted")
	case stderrors.Is(err, domain.ErrMaxDepthExceeded):
		return errors.ValidationError("replies cannot be nested deeper than one level")
	case stderrors.Is(err, domain.ErrNotOwner):
		return errors.ForbiddenError("not the author of this content")
	default:
		return err
	}
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errors.ValidationError("content must not be empty")
	}
	if utf8.RuneCountInString(content) > domain.ContentMaxLen {
		return "", errors.ValidationError("content exceeds maximum length").
			WithContext("max_length", domain.ContentMaxLen)
	}
	return content, nil
}

// touchActor stamps the actor's last_seen_at after an accepted write. Best
// effort: the write has already committed, so a failed touch only warns.
func (s *Service) touchActor(ctx context.Context, actorID uuid.UUID) {
	if err := s.actors.TouchLastSeen(ctx, actorID); err != nil {
		slog.WarnContext(ctx, "Failed to touch actor last_seen_at",
			"actor_id", actorID.String(), "error", err)
	}
}

func (s *Service) checkRateLimit(ctx context.Context, actorID uuid.UUID, kind domain.ActionKind) error {
	allowed, err := s.limiter.Allow(ctx, actorID, kind)
	if err != nil {
		return errors.InternalError("rate limit check failed", err)
	}
	if !allowed {
		return errors.RateLimitedError("too many " + string(kind) + "s, try again later").
			WithContext("kind", string(kind))
	}
	return nil
}

// --- Identity ---

// Bootstrap creates or refreshes the anonymous identity behind a device
// token. Concurrent calls for the same token collapse into one database
// round trip.
func (s *Service) Bootstrap(ctx context.Context, deviceToken string) (*domain.Actor, error) {
	deviceToken = strings.TrimSpace(deviceToken)
	if deviceToken == "" {
		return nil, errors.ValidationError("device token must not be empty")
	}
	if len(deviceToken) > maxDeviceTokenLen {
		return nil, errors.ValidationError("device token too long").
			WithContext("max_length", maxDeviceTokenLen)
	}

	result, err, _ := s.bootstrapGroup.Do(deviceToken, func() (any, error) {
		return s.actors.Bootstrap(ctx, deviceToken, domain.AssignLine(deviceToken))
	})
	if err != nil {
		return nil, mapDomainError(err)
	}
	return result.(*domain.Actor), nil
}

// ResolveActor looks up the actor behind a device token for request
// authentication.
func (s *Service) ResolveActor(ctx context.Context, deviceToken string) (*domain.Actor, error) {
	actor, err := s.actors.GetByDeviceToken(ctx, deviceToken)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return actor, nil
}

// --- Posts and comments ---

func (s *Service) CreatePost(ctx context.Context, actor *domain.Actor, content string) (*domain.Post, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}
	if err := s.checkRateLimit(ctx, actor.ID, domain.ActionPost); err != nil {
		return nil, err
	}

	post, err := s.posts.Create(ctx, domain.CreatePostParams{
		AuthorID:   actor.ID,
		AuthorLine: actor.Line,
		Content:    content,
	})
	if err != nil {
		return nil, mapDomainError(err)
	}

	metrics.WritesTotal.WithLabelValues(string(domain.ActionPost)).Inc()
	s.touchActor(ctx, actor.ID)
	return post, nil
}

func (s *Service) GetPost(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return post, nil
}

func (s *Service) CreateComment(ctx context.Context, actor *domain.Actor, postID uuid.UUID, parentID *uuid.UUID, content string) (*domain.Comment, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}
	if err := s.checkRateLimit(ctx, actor.ID, domain.ActionComment); err != nil {
		return nil, err
	}

	comment, notification, err := s.comments.Create(ctx, domain.CreateCommentParams{
		PostID:     postID,
		ParentID:   parentID,
		AuthorID:   actor.ID,
		AuthorLine: actor.Line,
		Content:    content,
	})
	if err != nil {
		return nil, mapDomainError(err)
	}

	metrics.WritesTotal.WithLabelValues(string(domain.ActionComment)).Inc()
	s.touchActor(ctx, actor.ID)
	if notification != nil {
		metrics.NotificationsCreated.WithLabelValues(string(notification.Type)).Inc()
		s.publisher.PublishNotificationCreated(*notification)
	}
	return comment, nil
}

func (s *Service) ListComments(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error) {
	// The post must exist even when it has no comments yet
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, mapDomainError(err)
	}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return comments, nil
}

// --- Votes ---

// CastVote records the actor's vote and publishes any milestone
// notifications created by the crossing after the transaction has settled.
func (s *Service) CastVote(ctx context.Context, actor *domain.Actor, targetType domain.TargetType, targetID uuid.UUID, value int) (*domain.VoteOutcome, error) {
	if !targetType.Valid() {
		return nil, errors.ValidationError("target type must be post or comment")
	}
	if value < -1 || value > 1 {
		return nil, errors.ValidationError("vote value must be -1, 0, or 1")
	}
	if err := s.checkRateLimit(ctx, actor.ID, domain.ActionVote); err != nil {
		return nil, err
	}

	outcome, err := s.votes.Cast(ctx, actor.ID, targetType, targetID, value)
	if err != nil {
		return nil, mapDomainError(err)
	}

	metrics.WritesTotal.WithLabelValues(string(domain.ActionVote)).Inc()
	s.touchActor(ctx, actor.ID)
	for _, n := range outcome.Milestones {
		s.publisher.PublishNotificationCreated(n)
	}
	return outcome, nil
}

// --- Deletion ---

// DeletePost soft-deletes a post. Only the author may delete their own
// content; admins may delete anything.
func (s *Service) DeletePost(ctx context.Context, actor *domain.Actor, postID uuid.UUID, asAdmin bool) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return mapDomainError(err)
	}

	reason := domain.DeletionByUser
	if asAdmin {
		reason = domain.DeletionByAdmin
	} else if post.AuthorID != actor.ID {
		return mapDomainError(domain.ErrNotOwner)
	}

	if err := s.posts.SoftDelete(ctx, postID, reason); err != nil {
		return mapDomainError(err)
	}
	return nil
}

func (s *Service) DeleteComment(ctx context.Context, actor *domain.Actor, commentID uuid.UUID, asAdmin bool) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return mapDomainError(err)
	}

	reason := domain.DeletionByUser
	if asAdmin {
		reason = domain.DeletionByAdmin
	} else if comment.AuthorID != actor.ID {
		return mapDomainError(domain.ErrNotOwner)
	}

	if err := s.comments.SoftDelete(ctx, commentID, reason); err != nil {
		return mapDomainError(err)
	}
	return nil
}

// --- Feed ---

func (s *Service) GetFeed(ctx context.Context, query domain.FeedQuery) (*domain.FeedPage, error) {
	// Zero means the repository default; anything else must be in range
	if query.Limit < 0 || query.Limit > domain.MaxPageSize {
		return nil, errors.ValidationError("limit out of range").
			WithContext("limit", query.Limit).
			WithContext("max", domain.MaxPageSize)
	}
	for _, line := range query.Lines {
		if !line.Valid() {
			return nil, errors.ValidationError("unknown line label").
				WithContext("line", string(line))
		}
	}

	page, err := s.feed.Feed(ctx, query)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return page, nil
}

// --- Notifications ---

func (s *Service) ListNotifications(ctx context.Context, actor *domain.Actor, limit, offset int, unreadOnly bool) ([]domain.Notification, error) {
	if limit < 0 || limit > domain.MaxPageSize {
		return nil, errors.ValidationError("limit out of range").
			WithContext("limit", limit).
			WithContext("max", domain.MaxPageSize)
	}
	if offset < 0 {
		return nil, errors.ValidationError("offset must not be negative").
			WithContext("offset", offset)
	}

	notifications, err := s.notifications.List(ctx, actor.ID, limit, offset, unreadOnly)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return notifications, nil
}

func (s *Service) MarkNotificationRead(ctx context.Context, actor *domain.Actor, id uuid.UUID) error {
	return mapDomainError(s.notifications.MarkRead(ctx, id, actor.ID))
}

func (s *Service) MarkAllNotificationsRead(ctx context.Context, actor *domain.Actor) (int64, error) {
	count, err := s.notifications.MarkAllRead(ctx, actor.ID)
	if err != nil {
		return 0, mapDomainError(err)
	}
	return count, nil
}

func (s *Service) DismissNotification(ctx context.Context, actor *domain.Actor, id uuid.UUID) error {
	return mapDomainError(s.notifications.SoftDelete(ctx, id, actor.ID))
}

// --- Push subscriptions ---

func (s *Service) SavePushSubscription(ctx context.Context, actor *domain.Actor, deviceID, endpoint, p256dh, auth string) (*domain.PushSubscription, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.ValidationError("endpoint must not be empty")
	}
	if p256dh == "" || auth == "" {
		return nil, errors.ValidationError("subscription keys must not be empty")
	}
	if deviceID == "" {
		deviceID = endpoint
	}

	sub, err := s.subscriptions.Save(ctx, domain.SaveSubscriptionParams{
		ActorID:  actor.ID,
		DeviceID: deviceID,
		Endpoint: endpoint,
		P256dh:   p256dh,
		Auth:     auth,
	})
	if err != nil {
		return nil, mapDomainError(err)
	}
	return sub, nil
}
