package server

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/cyberpapiii/yipyap-sub000/internal/domain"
	apperrors "github.com/cyberpapiii/yipyap-sub000/internal/errors"
	"github.com/cyberpapiii/yipyap-sub000/internal/platform/correlation"
)

const (
	headerDeviceToken   = "X-Device-Token"
	headerAdminKey      = "X-Admin-Key"
	headerCorrelationID = "X-Correlation-ID"

	actorContextKey = "actor"
)

// correlationMiddleware attaches a correlation ID to the request context and
// echoes it back in the response. Client-supplied IDs are kept so a caller
// can trace a request across systems.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(headerCorrelationID)
		if id == "" {
			id = correlation.NewID()
		}

		ctx := correlation.WithID(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set(headerCorrelationID, id)
		return next(c)
	}
}

func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		slog.InfoContext(c.Request().Context(), "Request",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", c.Response().Status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return err
	}
}

// requireActor resolves the device token to an actor and stores it in the
// echo context. An unknown token bootstraps a fresh identity on the spot, so
// first contact needs no explicit registration call.
func (s *Server) requireActor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := c.Request().Header.Get(headerDeviceToken)
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing device token")
		}

		ctx := c.Request().Context()
		actor, err := s.board.ResolveActor(ctx, token)
		if err != nil {
			structured := apperrors.AsStructuredError(err)
			if structured.Type != apperrors.TypeNotFound {
				return err
			}
			actor, err = s.board.Bootstrap(ctx, token)
			if err != nil {
				return err
			}
		}

		c.Set(actorContextKey, actor)
		c.Set("actorID", actor.ID.String())
		return next(c)
	}
}

// currentActor returns the actor placed in the context by requireActor.
func currentActor(c echo.Context) (*domain.Actor, error) {
	actor, ok := c.Get(actorContextKey).(*domain.Actor)
	if !ok || actor == nil {
		return nil, apperrors.InternalError("no actor in request context", stderrors.New("requireActor middleware missing"))
	}
	return actor, nil
}

// isAdmin reports whether the request carries the configured admin key. An
// empty configured key disables admin operations entirely.
func (s *Server) isAdmin(c echo.Context) bool {
	return s.config.AdminKey != "" && c.Request().Header.Get(headerAdminKey) == s.config.AdminKey
}

// ipRateLimiter bounds request rates per client IP, independent of the
// per-actor domain limiter.
func (s *Server) ipRateLimiter() echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(s.config.HTTPRateLimit),
			Burst:     s.config.HTTPRateBurst,
			ExpiresIn: 3 * time.Minute,
		}),
	})
}
