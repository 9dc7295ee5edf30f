package server

import (
	"fmt"

	"github.com/labstack/echo/v4"

	apperrors "github.com/cyberpapiii/yipyap-sub000/internal/errors"
)

// savePushSubscriptionRequest mirrors the browser PushSubscription JSON shape
// plus an optional stable device identifier.
type savePushSubscriptionRequest struct {
	DeviceID string `json:"device_id"`
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

func (s *Server) handleSavePushSubscription(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	var req savePushSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	sub, err := s.board.SavePushSubscription(c.Request().Context(), actor,
		req.DeviceID, req.Endpoint, req.Keys.P256dh, req.Keys.Auth)
	if err != nil {
		return err
	}

	if err := c.JSON(201, map[string]string{"id": sub.ID.String()}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
