package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/cyberpapiii/yipyap-sub000/internal/config"
	"github.com/cyberpapiii/yipyap-sub000/internal/domain"
	"github.com/cyberpapiii/yipyap-sub000/internal/errors"
)

// boardService is the application-layer surface the HTTP adapter depends on.
type boardService interface {
	Bootstrap(ctx context.Context, deviceToken string) (*domain.Actor, error)
	ResolveActor(ctx context.Context, deviceToken string) (*domain.Actor, error)

	CreatePost(ctx context.Context, actor *domain.Actor, content string) (*domain.Post, error)
	GetPost(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	CreateComment(ctx context.Context, actor *domain.Actor, postID uuid.UUID, parentID *uuid.UUID, content string) (*domain.Comment, error)
	ListComments(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error)
	CastVote(ctx context.Context, actor *domain.Actor, targetType domain.TargetType, targetID uuid.UUID, value int) (*domain.VoteOutcome, error)
	DeletePost(ctx context.Context, actor *domain.Actor, postID uuid.UUID, asAdmin bool) error
	DeleteComment(ctx context.Context, actor *domain.Actor, commentID uuid.UUID, asAdmin bool) error
	GetFeed(ctx context.Context, query domain.FeedQuery) (*domain.FeedPage, error)

	ListNotifications(ctx context.Context, actor *domain.Actor, limit, offset int, unreadOnly bool) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, actor *domain.Actor, id uuid.UUID) error
	MarkAllNotificationsRead(ctx context.Context, actor *domain.Actor) (int64, error)
	DismissNotification(ctx context.Context, actor *domain.Actor, id uuid.UUID) error
	SavePushSubscription(ctx context.Context, actor *domain.Actor, deviceID, endpoint, p256dh, auth string) (*domain.PushSubscription, error)
}

// postgresHealthChecker is a minimal interface for PostgreSQL health checks
type postgresHealthChecker interface {
	Ping(ctx context.Context) error
}

// redisHealthChecker is a minimal interface for Redis health checks
type redisHealthChecker interface {
	Ping(ctx context.Context) *goredis.StatusCmd
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	board     boardService
	db        postgresHealthChecker
	redis     redisHealthChecker
	startTime time.Time
}

func NewServer(cfg *config.Config, board boardService, db *pgxpool.Pool, redisClient *goredis.Client) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(correlationMiddleware)
	e.Use(requestLogger)
	e.Use(errors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		board:     board,
		db:        db,
		redis:     redisClient,
		startTime: time.Now(),
	}

	// Register routes
	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
