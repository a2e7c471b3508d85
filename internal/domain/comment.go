package domain

import (
	"context"
	"time"
)

// Comment is a reply attached to a post. PostID never changes after creation.
type Comment struct {
	ID        int64     `json:"_id"`
	Content   string    `json:"content"`
	PostID    int64     `json:"post"`
	AuthorID  int64     `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommentView is a comment with its author resolved.
type CommentView struct {
	Comment
	Author *Author `json:"author"`
}

// CommentRepository is the port for comment persistence. GetComment returns
// (nil, nil) when the comment does not exist.
type CommentRepository interface {
	CreateComment(ctx context.Context, c Comment) (*Comment, error)
	GetComment(ctx context.Context, id int64) (*Comment, error)
	// UpdateComment stores content and updatedAt of c.
	UpdateComment(ctx context.Context, c Comment) (*Comment, error)
	DeleteComment(ctx context.Context, id int64) (bool, error)
	// ListCommentsByPost returns the post's comments newest first.
	ListCommentsByPost(ctx context.Context, postID int64) ([]CommentView, error)
}
