package domain

import (
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"
)

// TruncatePreview cuts content down to PreviewMaxLen runes for the
// denormalized notification preview.
func TruncatePreview(content string) string {
	runes := []rune(content)
	if len(runes) <= PreviewMaxLen {
		return content
	}
	return string(runes[:PreviewMaxLen])
}

// NewReplyNotification builds the notification row for a freshly inserted
// comment. recipientID is the author of the parent content item. The replying
// actor's line and a content preview are snapshotted here; the row never
// changes if the actor or comment changes later. Returns nil when the actor
// replied to their own content.
func NewReplyNotification(recipientID uuid.UUID, comment *Comment) *Notification {
	if recipientID == comment.AuthorID {
		return nil
	}

	typ := NotificationReplyToPost
	if comment.ParentID != nil {
		typ = NotificationReplyToComment
	}

	actorID := comment.AuthorID
	commentID := comment.ID
	return &Notification{
		RecipientID: recipientID,
		Type:        typ,
		PostID:      comment.PostID,
		CommentID:   &commentID,
		ActorID:     &actorID,
		ActorLine:   comment.AuthorLine,
		Preview:     TruncatePreview(comment.Content),
	}
}

// MilestonesCrossed returns the milestone notification types for thresholds
// crossed upward by a score change. Downward moves never produce milestones;
// re-crossing the same threshold is deduplicated by the storage layer.
func MilestonesCrossed(oldScore, newScore int) []NotificationType {
	if newScore <= oldScore {
		return nil
	}

	var crossed []NotificationType
	for _, m := range Milestones {
		if oldScore < m && newScore >= m {
			crossed = append(crossed, MilestoneType(m))
		}
	}
	return crossed
}

// MilestoneType maps a threshold value to its notification type.
func MilestoneType(milestone int) NotificationType {
	return NotificationType(fmt.Sprintf("milestone_%d", milestone))
}

// NewMilestoneNotification builds the notification row for a post whose score
// crossed a milestone. Milestones carry no acting-user snapshot: many voters
// contribute to a crossing, so the actor fields stay empty.
func NewMilestoneNotification(recipientID, postID uuid.UUID, typ NotificationType, preview string) *Notification {
	return &Notification{
		RecipientID: recipientID,
		Type:        typ,
		PostID:      postID,
		Preview:     TruncatePreview(preview),
	}
}

// AssignLine deterministically picks a line label for a new device. The hash
// keeps assignment stable across retried bootstrap calls without coordination.
func AssignLine(deviceToken string) Line {
	h := fnv.New32a()
	_, _ = h.Write([]byte(deviceToken))
	return Lines[h.Sum32()%uint32(len(Lines))]
}
