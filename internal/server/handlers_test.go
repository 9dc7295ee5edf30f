package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberpapiii/yipyap-sub000/internal/config"
	"github.com/cyberpapiii/yipyap-sub000/internal/domain"
	apperrors "github.com/cyberpapiii/yipyap-sub000/internal/errors"
)

// --- Mock board service ---

type mockBoardService struct {
	bootstrapFn            func(ctx context.Context, deviceToken string) (*domain.Actor, error)
	resolveActorFn         func(ctx context.Context, deviceToken string) (*domain.Actor, error)
	createPostFn           func(ctx context.Context, actor *domain.Actor, content string) (*domain.Post, error)
	getPostFn              func(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	createCommentFn        func(ctx context.Context, actor *domain.Actor, postID uuid.UUID, parentID *uuid.UUID, content string) (*domain.Comment, error)
	listCommentsFn         func(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error)
	castVoteFn             func(ctx context.Context, actor *domain.Actor, targetType domain.TargetType, targetID uuid.UUID, value int) (*domain.VoteOutcome, error)
	deletePostFn           func(ctx context.Context, actor *domain.Actor, postID uuid.UUID, asAdmin bool) error
	deleteCommentFn        func(ctx context.Context, actor *domain.Actor, commentID uuid.UUID, asAdmin bool) error
	getFeedFn              func(ctx context.Context, query domain.FeedQuery) (*domain.FeedPage, error)
	listNotificationsFn    func(ctx context.Context, actor *domain.Actor, limit, offset int, unreadOnly bool) ([]domain.Notification, error)
	markNotificationReadFn func(ctx context.Context, actor *domain.Actor, id uuid.UUID) error
	markAllReadFn          func(ctx context.Context, actor *domain.Actor) (int64, error)
	dismissNotificationFn  func(ctx context.Context, actor *domain.Actor, id uuid.UUID) error
	savePushSubscriptionFn func(ctx context.Context, actor *domain.Actor, deviceID, endpoint, p256dh, auth string) (*domain.PushSubscription, error)
}

func (m *mockBoardService) Bootstrap(ctx context.Context, deviceToken string) (*domain.Actor, error) {
	if m.bootstrapFn != nil {
		return m.bootstrapFn(ctx, deviceToken)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockBoardService) ResolveActor(ctx context.Context, deviceToken string) (*domain.Actor, error) {
	if m.resolveActorFn != nil {
		return m.resolveActorFn(ctx, deviceToken)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockBoardService) CreatePost(ctx context.Context, actor *domain.Actor, content string) (*domain.Post, error) {
	if m.createPostFn != nil {
		return m.createPostFn(ctx, actor, content)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockBoardService) GetPost(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	if m.getPostFn != nil {
		return m.getPostFn(ctx, id)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockBoardService) CreateComment(ctx context.Context, actor *domain.Actor, postID uuid.UUID, parentID *uuid.UUID, content string) (*domain.Comment, error) {
	if m.createCommentFn != nil {
		return m.createCommentFn(ctx, actor, postID, parentID, content)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockBoardService) ListComments(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error) {
	if m.listCommentsFn != nil {
		return m.listCommentsFn(ctx, postID)
	}
	return nil, nil
}

func (m *mockBoardService) CastVote(ctx context.Context, actor *domain.Actor, targetType domain.TargetType, targetID uuid.UUID, value int) (*domain.VoteOutcome, error) {
	if m.castVoteFn != nil {
		return m.castVoteFn(ctx, actor, targetType, targetID, value)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockBoardService) DeletePost(ctx context.Context, actor *domain.Actor, postID uuid.UUID, asAdmin bool) error {
	if m.deletePostFn != nil {
		return m.deletePostFn(ctx, actor, postID, asAdmin)
	}
	return nil
}

func (m *mockBoardService) DeleteComment(ctx context.Context, actor *domain.Actor, commentID uuid.UUID, asAdmin bool) error {
	if m.deleteCommentFn != nil {
		return m.deleteCommentFn(ctx, actor, commentID, asAdmin)
	}
	return nil
}

func (m *mockBoardService) GetFeed(ctx context.Context, query domain.FeedQuery) (*domain.FeedPage, error) {
	if m.getFeedFn != nil {
		return m.getFeedFn(ctx, query)
	}
	return &domain.FeedPage{}, nil
}

func (m *mockBoardService) ListNotifications(ctx context.Context, actor *domain.Actor, limit, offset int, unreadOnly bool) ([]domain.Notification, error) {
	if m.listNotificationsFn != nil {
		return m.listNotificationsFn(ctx, actor, limit, offset, unreadOnly)
	}
	return nil, nil
}

func (m *mockBoardService) MarkNotificationRead(ctx context.Context, actor *domain.Actor, id uuid.UUID) error {
	if m.markNotificationReadFn != nil {
		return m.markNotificationReadFn(ctx, actor, id)
	}
	return nil
}

func (m *mockBoardService) MarkAllNotificationsRead(ctx context.Context, actor *domain.Actor) (int64, error) {
	if m.markAllReadFn != nil {
		return m.markAllReadFn(ctx, actor)
	}
	return 0, nil
}

func (m *mockBoardService) DismissNotification(ctx context.Context, actor *domain.Actor, id uuid.UUID) error {
	if m.dismissNotificationFn != nil {
		return m.dismissNotificationFn(ctx, actor, id)
	}
	return nil
}

func (m *mockBoardService) SavePushSubscription(ctx context.Context, actor *domain.Actor, deviceID, endpoint, p256dh, auth string) (*domain.PushSubscription, error) {
	if m.savePushSubscriptionFn != nil {
		return m.savePushSubscriptionFn(ctx, actor, deviceID, endpoint, p256dh, auth)
	}
	return nil, fmt.Errorf("not implemented")
}

// --- Test helpers ---

func newTestServer(t *testing.T, board boardService) *Server {
	t.Helper()

	e := echo.New()
	// Install error middleware for tests to match production behavior
	e.Use(apperrors.Middleware())

	return &Server{
		echo:      e,
		config:    &config.Config{Port: "8080", AdminKey: "test-admin-key"},
		board:     board,
		startTime: time.Now(),
	}
}

func callHandler(handler echo.HandlerFunc, c echo.Context) error {
	return apperrors.Middleware()(handler)(c)
}

func jsonRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return req
}

func withActor(c echo.Context) *domain.Actor {
	actor := &domain.Actor{ID: uuid.New(), DeviceToken: "device-1", Line: domain.LineAmber}
	c.Set(actorContextKey, actor)
	return actor
}

// --- Bootstrap ---

func TestHandleBootstrap(t *testing.T) {
	board := &mockBoardService{
		bootstrapFn: func(_ context.Context, deviceToken string) (*domain.Actor, error) {
			assert.Equal(t, "device-xyz", deviceToken)
			return &domain.Actor{ID: uuid.New(), DeviceToken: deviceToken, Line: domain.LineViolet}, nil
		},
	}
	srv := newTestServer(t, board)

	req := jsonRequest(http.MethodPost, "/api/actors/bootstrap", `{"device_token":"device-xyz"}`)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	require.NoError(t, srv.handleBootstrap(c))
	assert.Equal(t, 200, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "violet", resp["line"])
	assert.NotEmpty(t, resp["actor_id"])
}

func TestHandleBootstrap_FallsBackToHeader(t *testing.T) {
	var gotToken string
	board := &mockBoardService{
		bootstrapFn: func(_ context.Context, deviceToken string) (*domain.Actor, error) {
			gotToken = deviceToken
			return &domain.Actor{ID: uuid.New(), Line: domain.LineSlate}, nil
		},
	}
	srv := newTestServer(t, board)

	req := jsonRequest(http.MethodPost, "/api/actors/bootstrap", `{}`)
	req.Header.Set(headerDeviceToken, "header-token")
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	require.NoError(t, srv.handleBootstrap(c))
	assert.Equal(t, "header-token", gotToken)
}

// --- requireActor middleware ---

func TestRequireActor_MissingToken(t *testing.T) {
	srv := newTestServer(t, &mockBoardService{})

	req := jsonRequest(http.MethodPost, "/api/posts", `{"content":"x"}`)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	err := srv.requireActor(func(echo.Context) error { return nil })(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestRequireActor_ResolvesKnownActor(t *testing.T) {
	actor := &domain.Actor{ID: uuid.New(), DeviceToken: "known", Line: domain.LineJade}
	board := &mockBoardService{
		resolveActorFn: func(_ context.Context, deviceToken string) (*domain.Actor, error) {
			assert.Equal(t, "known", deviceToken)
			return actor, nil
		},
	}
	srv := newTestServer(t, board)

	req := jsonRequest(http.MethodGet, "/api/notifications", "")
	req.Header.Set(headerDeviceToken, "known")
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	var handlerRan bool
	err := srv.requireActor(func(c echo.Context) error {
		handlerRan = true
		got, err := currentActor(c)
		require.NoError(t, err)
		assert.Equal(t, actor.ID, got.ID)
		return nil
	})(c)
	require.NoError(t, err)
	assert.True(t, handlerRan)
}

func TestRequireActor_BootstrapsOnFirstContact(t *testing.T) {
	board := &mockBoardService{
		resolveActorFn: func(context.Context, string) (*domain.Actor, error) {
			return nil, apperrors.NotFoundError("actor not found")
		},
		bootstrapFn: func(_ context.Context, deviceToken string) (*domain.Actor, error) {
			return &domain.Actor{ID: uuid.New(), DeviceToken: deviceToken, Line: domain.LineCrimson}, nil
		},
	}
	srv := newTestServer(t, board)

	req := jsonRequest(http.MethodPost, "/api/posts", `{"content":"hi"}`)
	req.Header.Set(headerDeviceToken, "fresh-device")
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	err := srv.requireActor(func(c echo.Context) error {
		actor, err := currentActor(c)
		require.NoError(t, err)
		assert.Equal(t, "fresh-device", actor.DeviceToken)
		return nil
	})(c)
	require.NoError(t, err)
}

// --- Posts ---

func TestHandleCreatePost(t *testing.T) {
	board := &mockBoardService{
		createPostFn: func(_ context.Context, actor *domain.Actor, content string) (*domain.Post, error) {
			return &domain.Post{ID: uuid.New(), AuthorID: actor.ID, AuthorLine: actor.Line, Content: content}, nil
		},
	}
	srv := newTestServer(t, board)

	req := jsonRequest(http.MethodPost, "/api/posts", `{"content":"first post"}`)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)
	withActor(c)

	require.NoError(t, srv.handleCreatePost(c))
	assert.Equal(t, 201, rec.Code)

	var view postView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "first post", view.Content)
	assert.Equal(t, domain.LineAmber, view.AuthorLine)
}

func TestHandleCreatePost_RateLimited(t *testing.T) {
	board := &mockBoardService{
		createPostFn: func(context.Context, *domain.Actor, string) (*domain.Post, error) {
			return nil, apperrors.RateLimitedError("too many posts")
		},
	}
	srv := newTestServer(t, board)

	req := jsonRequest(http.MethodPost, "/api/posts", `{"content":"spam"}`)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)
	withActor(c)

	_ = callHandler(srv.handleCreatePost, c)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestHandleThread_MasksDeletedContent(t *testing.T) {
	postID := uuid.New()
	now := time.Now()
	board := &mockBoardService{
		getPostFn: func(context.Context, uuid.UUID) (*domain.Post, error) {
			return &domain.Post{ID: postID, Content: "visible", CreatedAt: now}, nil
		},
		listCommentsFn: func(context.Context, uuid.UUID) ([]domain.Comment, error) {
			deletedAt := now
			return []domain.Comment{
				{ID: uuid.New(), PostID: postID, Content: "kept"},
				{ID: uuid.New(), PostID: postID, Content: "secret", DeletedAt: &deletedAt},
			}, nil
		},
	}
	srv := newTestServer(t, board)

	req := jsonRequest(http.MethodGet, "/api/posts/"+postID.String()+"/comments", "")
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(postID.String())

	require.NoError(t, srv.handleThread(c))
	assert.Equal(t, 200, rec.Code)

	var resp struct {
		Post     postView      `json:"post"`
		Comments []commentView `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Comments, 2)
	assert.Equal(t, "kept", resp.Comments[0].Content)
	// Deleted comments stay as placeholders with masked content
	assert.True(t, resp.Comments[1].Deleted)
	assert.Empty(t, resp.Comments[1].Content)
}

func TestHandleThread_BadUUID(t *testing.T) {
	srv := newTestServer(t, &mockBoardService{})

	req := jsonRequest(http.MethodGet, "/api/posts/not-a-uuid/comments", "")
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	_ = callHandler(srv.handleThread, c)
	assert.Equal(t, 400, rec.Code)
}

// --- Votes ---

func TestHandleCastVote(t *testing.T) {
	targetID := uuid.New()
	board := &mockBoardService{
		castVoteFn: func(_ context.Context, _ *domain.Actor, targetType domain.TargetType, id uuid.UUID, value int) (*domain.VoteOutcome, error) {
			assert.Equal(t, domain.TargetPost, targetType)
			assert.Equal(t, targetID, id)
			assert.Equal(t, -1, value)
			return &domain.VoteOutcome{Score: -5, VoteCount: 5, ActorVote: -1, AutoDeleted: true}, nil
		},
	}
	srv := newTestServer(t, board)

	body := fmt.Sprintf(`{"target_type":"post","target_id":"%s","value":-1}`, targetID)
	req := jsonRequest(http.MethodPost, "/api/votes", body)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)
	withActor(c)

	require.NoError(t, srv.handleCastVote(c))
	assert.Equal(t, 200, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(-5), resp["score"])
	assert.Equal(t, true, resp["auto_deleted"])
}

// --- Deletion ---

func TestHandleDeletePost_Forbidden(t *testing.T) {
	board := &mockBoardService{
		deletePostFn: func(context.Context, *domain.Actor, uuid.UUID, bool) error {
			return apperrors.ForbiddenError("not the author of this content")
		},
	}
	srv := newTestServer(t, board)

	postID := uuid.New()
	req := jsonRequest(http.MethodDelete, "/api/posts/"+postID.String(), "")
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(postID.String())
	withActor(c)

	_ = callHandler(srv.handleDeletePost, c)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleDeletePost_AdminKeyGrantsAdmin(t *testing.T) {
	var gotAdmin bool
	board := &mockBoardService{
		deletePostFn: func(_ context.Context, _ *domain.Actor, _ uuid.UUID, asAdmin bool) error {
			gotAdmin = asAdmin
			return nil
		},
	}
	srv := newTestServer(t, board)

	postID := uuid.New()
	req := jsonRequest(http.MethodDelete, "/api/posts/"+postID.String(), "")
	req.Header.Set(headerAdminKey, "test-admin-key")
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(postID.String())
	withActor(c)

	require.NoError(t, srv.handleDeletePost(c))
	assert.True(t, gotAdmin)
}

func TestHandleDeletePost_WrongAdminKeyIsNotAdmin(t *testing.T) {
	var gotAdmin bool
	board := &mockBoardService{
		deletePostFn: func(_ context.Context, _ *domain.Actor, _ uuid.UUID, asAdmin bool) error {
			gotAdmin = asAdmin
			return nil
		},
	}
	srv := newTestServer(t, board)

	postID := uuid.New()
	req := jsonRequest(http.MethodDelete, "/api/posts/"+postID.String(), "")
	req.Header.Set(headerAdminKey, "wrong-key")
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(postID.String())
	withActor(c)

	require.NoError(t, srv.handleDeletePost(c))
	assert.False(t, gotAdmin)
}

// --- Feed ---

func TestHandleFeed(t *testing.T) {
	var gotQuery domain.FeedQuery
	board := &mockBoardService{
		getFeedFn: func(_ context.Context, query domain.FeedQuery) (*domain.FeedPage, error) {
			gotQuery = query
			return &domain.FeedPage{
				Items: []domain.FeedItem{
					{Post: domain.Post{ID: uuid.New(), Content: "hot one", Score: 7}, HotScore: 3.5},
				},
				NextCursor: &domain.FeedCursor{Score: 7, CreatedAt: time.Now()},
			}, nil
		},
	}
	srv := newTestServer(t, board)

	req := jsonRequest(http.MethodGet, "/api/feed?kind=hot&lines=jade,amber&limit=10", "")
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	require.NoError(t, srv.handleFeed(c))
	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, domain.FeedHot, gotQuery.Kind)
	assert.Equal(t, []domain.Line{domain.LineJade, domain.LineAmber}, gotQuery.Lines)
	assert.Equal(t, 10, gotQuery.Limit)

	var resp struct {
		Items      []feedItemView `json:"items"`
		NextCursor string         `json:"next_cursor"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.InDelta(t, 3.5, resp.Items[0].HotScore, 0.001)
	assert.NotEmpty(t, resp.NextCursor)
}

func TestHandleFeed_DefaultsToHot(t *testing.T) {
	var gotKind domain.FeedKind
	board := &mockBoardService{
		getFeedFn: func(_ context.Context, query domain.FeedQuery) (*domain.FeedPage, error) {
			gotKind = query.Kind
			return &domain.FeedPage{}, nil
		},
	}
	srv := newTestServer(t, board)

	req := jsonRequest(http.MethodGet, "/api/feed", "")
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	require.NoError(t, srv.handleFeed(c))
	assert.Equal(t, domain.FeedHot, gotKind)
}

func TestHandleFeed_InvalidKind(t *testing.T) {
	srv := newTestServer(t, &mockBoardService{})

	req := jsonRequest(http.MethodGet, "/api/feed?kind=spicy", "")
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	_ = callHandler(srv.handleFeed, c)
	assert.Equal(t, 400, rec.Code)
}

func TestHandleFeed_InvalidCursor(t *testing.T) {
	srv := newTestServer(t, &mockBoardService{})

	req := jsonRequest(http.MethodGet, "/api/feed?cursor=%25%25not-base64", "")
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	_ = callHandler(srv.handleFeed, c)
	assert.Equal(t, 400, rec.Code)
}

// --- Notifications ---

func TestHandleListNotifications(t *testing.T) {
	board := &mockBoardService{
		listNotificationsFn: func(_ context.Context, actor *domain.Actor, limit, offset int, unreadOnly bool) ([]domain.Notification, error) {
			assert.Equal(t, 5, limit)
			assert.True(t, unreadOnly)
			return []domain.Notification{
				{ID: uuid.New(), RecipientID: actor.ID, Type: domain.NotificationReplyToPost, Preview: "hey"},
			}, nil
		},
	}
	srv := newTestServer(t, board)

	req := jsonRequest(http.MethodGet, "/api/notifications?limit=5&unread=true", "")
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)
	withActor(c)

	require.NoError(t, srv.handleListNotifications(c))
	assert.Equal(t, 200, rec.Code)

	var resp struct {
		Notifications []notificationView `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, "hey", resp.Notifications[0].Preview)
}

func TestHandleMarkAllNotificationsRead(t *testing.T) {
	board := &mockBoardService{
		markAllReadFn: func(context.Context, *domain.Actor) (int64, error) {
			return 4, nil
		},
	}
	srv := newTestServer(t, board)

	req := jsonRequest(http.MethodPost, "/api/notifications/read-all", "")
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)
	withActor(c)

	require.NoError(t, srv.handleMarkAllNotificationsRead(c))
	assert.Equal(t, 200, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(4), resp["marked"])
}

func TestHandleMarkNotificationRead_NotFound(t *testing.T) {
	board := &mockBoardService{
		markNotificationReadFn: func(context.Context, *domain.Actor, uuid.UUID) error {
			return apperrors.NotFoundError("notification not found")
		},
	}
	srv := newTestServer(t, board)

	id := uuid.New()
	req := jsonRequest(http.MethodPost, "/api/notifications/"+id.String()+"/read", "")
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id.String())
	withActor(c)

	_ = callHandler(srv.handleMarkNotificationRead, c)
	assert.Equal(t, 404, rec.Code)
}

// --- Push subscriptions ---

func TestHandleSavePushSubscription(t *testing.T) {
	board := &mockBoardService{
		savePushSubscriptionFn: func(_ context.Context, actor *domain.Actor, deviceID, endpoint, p256dh, auth string) (*domain.PushSubscription, error) {
			assert.Equal(t, "dev-1", deviceID)
			assert.Equal(t, "https://push.example/ep", endpoint)
			assert.Equal(t, "pkey", p256dh)
			assert.Equal(t, "akey", auth)
			return &domain.PushSubscription{ID: uuid.New(), ActorID: actor.ID}, nil
		},
	}
	srv := newTestServer(t, board)

	body := `{"device_id":"dev-1","endpoint":"https://push.example/ep","keys":{"p256dh":"pkey","auth":"akey"}}`
	req := jsonRequest(http.MethodPost, "/api/push/subscriptions", body)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)
	withActor(c)

	require.NoError(t, srv.handleSavePushSubscription(c))
	assert.Equal(t, 201, rec.Code)
}

// --- Health ---

func TestHandleLiveness(t *testing.T) {
	srv := newTestServer(t, &mockBoardService{})

	req := jsonRequest(http.MethodGet, "/health/live", "")
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	require.NoError(t, srv.handleLiveness(c))
	assert.Equal(t, 200, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}
