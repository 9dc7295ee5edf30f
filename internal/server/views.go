package server

import (
	"time"

	"github.com/google/uuid"

	"github.com/cyberpapiii/yipyap-sub000/internal/domain"
)

// postView is the JSON shape of a post. Soft-deleted posts keep their
// aggregate counters but have their content masked.
type postView struct {
	ID           uuid.UUID   `json:"id"`
	AuthorLine   domain.Line `json:"author_line"`
	Content      string      `json:"content"`
	Score        int         `json:"score"`
	VoteCount    int         `json:"vote_count"`
	CommentCount int         `json:"comment_count"`
	CreatedAt    time.Time   `json:"created_at"`
	Deleted      bool        `json:"deleted"`
}

type commentView struct {
	ID         uuid.UUID   `json:"id"`
	PostID     uuid.UUID   `json:"post_id"`
	ParentID   *uuid.UUID  `json:"parent_id,omitempty"`
	Depth      int         `json:"depth"`
	AuthorLine domain.Line `json:"author_line"`
	Content    string      `json:"content"`
	Score      int         `json:"score"`
	VoteCount  int         `json:"vote_count"`
	ReplyCount int         `json:"reply_count"`
	CreatedAt  time.Time   `json:"created_at"`
	Deleted    bool        `json:"deleted"`
}

type feedItemView struct {
	Post     postView `json:"post"`
	HotScore float64  `json:"hot_score"`
}

type notificationView struct {
	ID        uuid.UUID               `json:"id"`
	Type      domain.NotificationType `json:"type"`
	PostID    uuid.UUID               `json:"post_id"`
	CommentID *uuid.UUID              `json:"comment_id,omitempty"`
	ActorLine domain.Line             `json:"actor_line,omitempty"`
	Preview   string                  `json:"preview"`
	Read      bool                    `json:"read"`
	CreatedAt time.Time               `json:"created_at"`
}

func toPostView(p *domain.Post) postView {
	view := postView{
		ID:           p.ID,
		AuthorLine:   p.AuthorLine,
		Content:      p.Content,
		Score:        p.Score,
		VoteCount:    p.VoteCount,
		CommentCount: p.CommentCount,
		CreatedAt:    p.CreatedAt,
		Deleted:      p.Deleted(),
	}
	if view.Deleted {
		view.Content = ""
	}
	return view
}

func toCommentView(c *domain.Comment) commentView {
	view := commentView{
		ID:         c.ID,
		PostID:     c.PostID,
		ParentID:   c.ParentID,
		Depth:      c.Depth,
		AuthorLine: c.AuthorLine,
		Content:    c.Content,
		Score:      c.Score,
		VoteCount:  c.VoteCount,
		ReplyCount: c.ReplyCount,
		CreatedAt:  c.CreatedAt,
		Deleted:    c.Deleted(),
	}
	if view.Deleted {
		view.Content = ""
	}
	return view
}

func toNotificationView(n *domain.Notification) notificationView {
	return notificationView{
		ID:        n.ID,
		Type:      n.Type,
		PostID:    n.PostID,
		CommentID: n.CommentID,
		ActorLine: n.ActorLine,
		Preview:   n.Preview,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
