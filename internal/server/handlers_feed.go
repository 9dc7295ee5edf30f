package server

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cyberpapiii/yipyap-sub000/internal/domain"
	apperrors "github.com/cyberpapiii/yipyap-sub000/internal/errors"
	"github.com/cyberpapiii/yipyap-sub000/internal/rank"
)

func (s *Server) handleFeed(c echo.Context) error {
	kind := domain.FeedKind(c.QueryParam("kind"))
	if kind == "" {
		kind = domain.FeedHot
	}
	if kind != domain.FeedHot && kind != domain.FeedNew {
		return apperrors.ValidationError("feed kind must be hot or new").WithField("kind", string(kind))
	}

	var lines []domain.Line
	if raw := c.QueryParam("lines"); raw != "" {
		for _, label := range strings.Split(raw, ",") {
			lines = append(lines, domain.Line(strings.TrimSpace(label)))
		}
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return apperrors.ValidationError("limit must be an integer").WithField("limit", raw)
		}
		limit = parsed
	}

	cursor, err := rank.DecodeCursor(kind, c.QueryParam("cursor"))
	if err != nil {
		return apperrors.ValidationError("invalid feed cursor")
	}

	page, err := s.board.GetFeed(c.Request().Context(), domain.FeedQuery{
		Kind:   kind,
		Lines:  lines,
		Limit:  limit,
		Cursor: cursor,
	})
	if err != nil {
		return err
	}

	items := make([]feedItemView, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, feedItemView{
			Post:     toPostView(&page.Items[i].Post),
			HotScore: page.Items[i].HotScore,
		})
	}

	response := map[string]any{"items": items}
	if page.NextCursor != nil {
		response["next_cursor"] = rank.EncodeCursor(kind, *page.NextCursor)
	}

	if err := c.JSON(200, response); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
