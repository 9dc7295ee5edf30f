package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth, no rate limit)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api", s.ipRateLimiter())

	// Identity
	api.POST("/actors/bootstrap", s.handleBootstrap)

	// Reading (device token not required)
	api.GET("/feed", s.handleFeed)
	api.GET("/posts/:id/comments", s.handleThread)

	// Writing (actor resolved from device token)
	api.POST("/posts", s.handleCreatePost, s.requireActor)
	api.POST("/posts/:id/comments", s.handleCreateComment, s.requireActor)
	api.POST("/votes", s.handleCastVote, s.requireActor)
	api.DELETE("/posts/:id", s.handleDeletePost, s.requireActor)
	api.DELETE("/comments/:id", s.handleDeleteComment, s.requireActor)

	// Notifications
	api.GET("/notifications", s.handleListNotifications, s.requireActor)
	api.POST("/notifications/:id/read", s.handleMarkNotificationRead, s.requireActor)
	api.POST("/notifications/read-all", s.handleMarkAllNotificationsRead, s.requireActor)
	api.DELETE("/notifications/:id", s.handleDismissNotification, s.requireActor)

	// Push subscriptions
	api.POST("/push/subscriptions", s.handleSavePushSubscription, s.requireActor)
}
