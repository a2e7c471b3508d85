package domain

import (
	"context"
	"strings"
	"time"
)

// Post is a published article. AuthorID never changes after creation and
// Likes holds each liking user id at most once, in the order they liked.
type Post struct {
	ID        int64     `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     string    `json:"image,omitempty"`
	Tags      []string  `json:"tags"`
	Likes     []int64   `json:"likes"`
	AuthorID  int64     `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasLike reports whether userID is among the post's likes.
func (p *Post) HasLike(userID int64) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// FeedEntry is the read-only projection of a post shown on the landing view.
type FeedEntry struct {
	Post
	Author       Author `json:"author"`
	CommentCount int    `json:"commentCount"`
}

// PostView is a post with its author and likers resolved to usernames.
// Author is nil when the author record no longer exists.
type PostView struct {
	Post
	Author *Author  `json:"author"`
	Likes  []Author `json:"likes"`
}

// PostRepository is the port for post persistence. GetPost returns
// (nil, nil) when the post does not exist.
type PostRepository interface {
	CreatePost(ctx context.Context, p Post) (*Post, error)
	GetPost(ctx context.Context, id int64) (*Post, error)
	// UpdatePost stores title, content, image, tags and updatedAt of p.
	UpdatePost(ctx context.Context, p Post) (*Post, error)
	// DeletePost removes the post and its comments and likes.
	DeletePost(ctx context.Context, id int64) (bool, error)
	// AddLike is a no-op when the user already likes the post.
	AddLike(ctx context.Context, postID, userID int64) error
	RemoveLike(ctx context.Context, postID, userID int64) error
	// ListFeed returns every post whose author exists, newest first; posts
	// created at the same instant keep insertion order.
	ListFeed(ctx context.Context) ([]FeedEntry, error)
}

// ParseTags splits a comma separated tag list, trimming blanks and
// dropping empty entries.
func ParseTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// CleanTags trims each tag and drops empty ones.
func CleanTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
