package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/cyberpapiii/yipyap-sub000/internal/board"
	"github.com/cyberpapiii/yipyap-sub000/internal/config"
	"github.com/cyberpapiii/yipyap-sub000/internal/database"
	"github.com/cyberpapiii/yipyap-sub000/internal/domain"
	"github.com/cyberpapiii/yipyap-sub000/internal/events"
	"github.com/cyberpapiii/yipyap-sub000/internal/logging"
	"github.com/cyberpapiii/yipyap-sub000/internal/notify"
	"github.com/cyberpapiii/yipyap-sub000/internal/ratelimit"
	"github.com/cyberpapiii/yipyap-sub000/internal/redis"
	"github.com/cyberpapiii/yipyap-sub000/internal/server"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func setupPushWorker(cfg *config.Config, subs domain.SubscriptionRepository, bus *events.Bus) {
	if !cfg.PushEnabled() {
		slog.Info("Web Push disabled: no VAPID keys configured")
		return
	}

	sender := notify.NewWebPushSender(notify.VAPIDConfig{
		PublicKey:  cfg.VAPIDPublicKey,
		PrivateKey: cfg.VAPIDPrivateKey,
		Subscriber: cfg.VAPIDSubscriber,
	})
	worker := notify.NewWorker(subs, sender, cfg.PushConcurrency, cfg.PushTimeout)

	if err := bus.SubscribeNotificationCreated(worker.HandleNotificationCreated); err != nil {
		slog.Error("Failed to subscribe push worker", "error", err)
		os.Exit(1)
	}
}

func runGracefulShutdown(srv *server.Server, bus *events.Bus) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		// Let in-flight push fan-outs finish before the pools close
		bus.Wait()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(context.Background(), cfg)
	defer func() { _ = redisClient.Close() }()

	// Repositories
	actorRepo := database.NewActorRepo(pool)
	postRepo := database.NewPostRepo(pool)
	commentRepo := database.NewCommentRepo(pool)
	voteRepo := database.NewVoteRepo(pool)
	feedRepo := database.NewFeedRepo(pool, clock, cfg.HotFeedWindow)
	notificationRepo := database.NewNotificationRepo(pool)
	subscriptionRepo := database.NewSubscriptionRepo(pool)

	limiter := ratelimit.NewLimiter(redisClient, clock, cfg.RateLimitWindow, map[domain.ActionKind]int{
		domain.ActionPost:    cfg.PostLimit,
		domain.ActionComment: cfg.CommentLimit,
		domain.ActionVote:    cfg.VoteLimit,
	})

	bus := events.NewBus()
	setupPushWorker(cfg, subscriptionRepo, bus)

	svc := board.NewService(board.ServiceParams{
		Actors:        actorRepo,
		Posts:         postRepo,
		Comments:      commentRepo,
		Votes:         voteRepo,
		Feed:          feedRepo,
		Notifications: notificationRepo,
		Subscriptions: subscriptionRepo,
		Limiter:       limiter,
		Publisher:     bus,
		Clock:         clock,
	})

	srv := server.NewServer(cfg, svc, pool, redisClient)

	done := runGracefulShutdown(srv, bus)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
