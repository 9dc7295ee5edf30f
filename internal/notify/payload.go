package notify

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/cyberpapiii/yipyap-sub000/internal/domain"
)

// Payload is the JSON document sent to the push endpoint. The client uses
// PostID to deep-link into the thread.
type Payload struct {
	NotificationID uuid.UUID               `json:"notification_id"`
	Type           domain.NotificationType `json:"type"`
	Title          string                  `json:"title"`
	Body           string                  `json:"body"`
	PostID         uuid.UUID               `json:"post_id"`
	CommentID      *uuid.UUID              `json:"comment_id,omitempty"`
}

// BuildPayload renders the push payload for a notification.
func BuildPayload(n domain.Notification) ([]byte, error) {
	p := Payload{
		NotificationID: n.ID,
		Type:           n.Type,
		PostID:         n.PostID,
		CommentID:      n.CommentID,
	}

	switch n.Type {
	case domain.NotificationReplyToPost:
		p.Title = "New reply to your post"
		p.Body = fmt.Sprintf("%s line: %s", n.ActorLine, n.Preview)
	case domain.NotificationReplyToComment:
		p.Title = "New reply to your comment"
		p.Body = fmt.Sprintf("%s line: %s", n.ActorLine, n.Preview)
	case domain.NotificationMilestone5:
		p.Title = "Your post hit +5"
		p.Body = n.Preview
	case domain.NotificationMilestone10:
		p.Title = "Your post hit +10"
		p.Body = n.Preview
	case domain.NotificationMilestone25:
		p.Title = "Your post hit +25"
		p.Body = n.Preview
	default:
		return nil, fmt.Errorf("unknown notification type %q", n.Type)
	}

	return json.Marshal(p)
}
