package domain

import (
	"context"
	"time"
)

// Event types emitted after a successful write.
const (
	EventPostCreated    = "post.created"
	EventPostUpdated    = "post.updated"
	EventPostDeleted    = "post.deleted"
	EventPostLiked      = "post.liked"
	EventPostUnliked    = "post.unliked"
	EventCommentCreated = "comment.created"
	EventCommentUpdated = "comment.updated"
	EventCommentDeleted = "comment.deleted"
)

// Event describes a change to a post or comment.
type Event struct {
	Type       string    `json:"type"`
	PostID     int64     `json:"postId"`
	CommentID  int64     `json:"commentId,omitempty"`
	UserID     int64     `json:"userId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// EventPublisher is the port for announcing domain events.
type EventPublisher interface {
	Publish(ctx context.Context, ev Event) error
}
