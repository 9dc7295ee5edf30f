package domain

import "errors"

var (
	ErrActorNotFound        = errors.New("actor not found")
	ErrPostNotFound         = errors.New("post not found")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrTargetDeleted        = errors.New("target is deleted")
	ErrMaxDepthExceeded     = errors.New("max comment depth exceeded")
	ErrNotOwner             = errors.New("actor does not own this content")
)
