package server

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cyberpapiii/yipyap-sub000/internal/domain"
	apperrors "github.com/cyberpapiii/yipyap-sub000/internal/errors"
)

type createPostRequest struct {
	Content string `json:"content"`
}

type createCommentRequest struct {
	Content  string     `json:"content"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

type castVoteRequest struct {
	TargetType domain.TargetType `json:"target_type"`
	TargetID   uuid.UUID         `json:"target_id"`
	Value      int               `json:"value"`
}

func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.ValidationError("invalid UUID format").WithField(name, c.Param(name))
	}
	return id, nil
}

func (s *Server) handleCreatePost(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	post, err := s.board.CreatePost(c.Request().Context(), actor, req.Content)
	if err != nil {
		return err
	}

	if err := c.JSON(201, toPostView(post)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleThread(c echo.Context) error {
	postID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	post, err := s.board.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	comments, err := s.board.ListComments(ctx, postID)
	if err != nil {
		return err
	}

	commentViews := make([]commentView, 0, len(comments))
	for i := range comments {
		commentViews = append(commentViews, toCommentView(&comments[i]))
	}

	if err := c.JSON(200, map[string]any{
		"post":     toPostView(post),
		"comments": commentViews,
	}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleCreateComment(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	postID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var req createCommentRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	comment, err := s.board.CreateComment(c.Request().Context(), actor, postID, req.ParentID, req.Content)
	if err != nil {
		return err
	}

	if err := c.JSON(201, toCommentView(comment)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleCastVote(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	var req castVoteRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	outcome, err := s.board.CastVote(c.Request().Context(), actor, req.TargetType, req.TargetID, req.Value)
	if err != nil {
		return err
	}

	if err := c.JSON(200, map[string]any{
		"score":        outcome.Score,
		"vote_count":   outcome.VoteCount,
		"actor_vote":   outcome.ActorVote,
		"auto_deleted": outcome.AutoDeleted,
	}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleDeletePost(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	postID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	if err := s.board.DeletePost(c.Request().Context(), actor, postID, s.isAdmin(c)); err != nil {
		return err
	}

	if err := c.JSON(200, map[string]string{"status": "deleted"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleDeleteComment(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	commentID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	if err := s.board.DeleteComment(c.Request().Context(), actor, commentID, s.isAdmin(c)); err != nil {
		return err
	}

	if err := c.JSON(200, map[string]string{"status": "deleted"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
