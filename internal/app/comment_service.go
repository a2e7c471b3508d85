package app

import (
	"context"
	"strings"
	"time"

	"blog/internal/domain"
)

// CommentService encapsulates comment use cases.
type CommentService struct {
	comments domain.CommentRepository
	posts    domain.PostRepository
	users    domain.UserRepository
	events   domain.EventPublisher
}

// NewCommentService creates a CommentService. events may be nil.
func NewCommentService(comments domain.CommentRepository, posts domain.PostRepository, users domain.UserRepository, events domain.EventPublisher) *CommentService {
	return &CommentService{comments: comments, posts: posts, users: users, events: events}
}

// ListByPost returns the comments of a post, newest first.
func (s *CommentService) ListByPost(ctx context.Context, postID int64) ([]domain.CommentView, error) {
	return s.comments.ListCommentsByPost(ctx, postID)
}

// Create adds a comment by authorID to an existing post.
func (s *CommentService) Create(ctx context.Context, authorID, postID int64, content string) (*domain.CommentView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("content is required")
	}
	if postID <= 0 {
		return nil, invalid("post is required")
	}
	post, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}

	now := time.Now().UTC()
	c, err := s.comments.CreateComment(ctx, domain.Comment{
		Content:   content,
		PostID:    postID,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, domain.Event{Type: domain.EventCommentCreated, PostID: postID, CommentID: c.ID, UserID: authorID})
	return s.view(ctx, c)
}

// Update changes the content of a comment owned by requesterID. A nil
// content leaves the comment unchanged.
func (s *CommentService) Update(ctx context.Context, requesterID, id int64, content *string) (*domain.CommentView, error) {
	c, err := requireOwner(ctx, s.comments.GetComment, commentOwner, id, requesterID)
	if err != nil {
		return nil, err
	}
	if content != nil {
		if c.Content = strings.TrimSpace(*content); c.Content == "" {
			return nil, invalid("content is required")
		}
	}

	c.UpdatedAt = time.Now().UTC()
	updated, err := s.comments.UpdateComment(ctx, *c)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	publish(ctx, s.events, domain.Event{Type: domain.EventCommentUpdated, PostID: updated.PostID, CommentID: updated.ID, UserID: requesterID})
	return s.view(ctx, updated)
}

// Delete removes a comment owned by requesterID and returns it.
func (s *CommentService) Delete(ctx context.Context, requesterID, id int64) (*domain.Comment, error) {
	c, err := requireOwner(ctx, s.comments.GetComment, commentOwner, id, requesterID)
	if err != nil {
		return nil, err
	}
	deleted, err := s.comments.DeleteComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, ErrNotFound
	}

	publish(ctx, s.events, domain.Event{Type: domain.EventCommentDeleted, PostID: c.PostID, CommentID: c.ID, UserID: requesterID})
	return c, nil
}

func (s *CommentService) view(ctx context.Context, c *domain.Comment) (*domain.CommentView, error) {
	author, err := s.users.GetByID(ctx, c.AuthorID)
	if err != nil {
		return nil, err
	}
	return &domain.CommentView{Comment: *c, Author: domain.AuthorOf(author)}, nil
}

func commentOwner(c *domain.Comment) int64 { return c.AuthorID }
