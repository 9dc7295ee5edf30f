package server

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "github.com/cyberpapiii/yipyap-sub000/internal/errors"
)

func (s *Server) handleListNotifications(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return err
	}
	unreadOnly := c.QueryParam("unread") == "true"

	notifications, err := s.board.ListNotifications(c.Request().Context(), actor, limit, offset, unreadOnly)
	if err != nil {
		return err
	}

	views := make([]notificationView, 0, len(notifications))
	for i := range notifications {
		views = append(views, toNotificationView(&notifications[i]))
	}

	if err := c.JSON(200, map[string]any{"notifications": views}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleMarkNotificationRead(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	if err := s.board.MarkNotificationRead(c.Request().Context(), actor, id); err != nil {
		return err
	}

	if err := c.JSON(200, map[string]string{"status": "ok"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleMarkAllNotificationsRead(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	count, err := s.board.MarkAllNotificationsRead(c.Request().Context(), actor)
	if err != nil {
		return err
	}

	if err := c.JSON(200, map[string]any{"status": "ok", "marked": count}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleDismissNotification(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	if err := s.board.DismissNotification(c.Request().Context(), actor, id); err != nil {
		return err
	}

	if err := c.JSON(200, map[string]string{"status": "dismissed"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func queryInt(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.ValidationError(name + " must be an integer").WithField(name, raw)
	}
	return parsed, nil
}
