package server

import (
	"fmt"

	"github.com/labstack/echo/v4"

	apperrors "github.com/cyberpapiii/yipyap-sub000/internal/errors"
)

type bootstrapRequest struct {
	DeviceToken string `json:"device_token"`
}

func (s *Server) handleBootstrap(c echo.Context) error {
	var req bootstrapRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.DeviceToken == "" {
		req.DeviceToken = c.Request().Header.Get(headerDeviceToken)
	}

	actor, err := s.board.Bootstrap(c.Request().Context(), req.DeviceToken)
	if err != nil {
		return err
	}

	if err := c.JSON(200, map[string]any{
		"actor_id": actor.ID.String(),
		"line":     actor.Line,
	}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
