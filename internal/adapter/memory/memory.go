// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"blog/internal/domain"
)

// DB implements an in-memory database storage. Slices keep insertion order.
type DB struct {
	mu       sync.Mutex
	users    []*domain.User
	posts    []*domain.Post
	comments []*domain.Comment

	userIDCounter    int64
	postIDCounter    int64
	commentIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.PostRepository = (*DB)(nil)
var _ domain.CommentRepository = (*DB)(nil)

// --- UserRepository ---

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if u := db.userLocked(id); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

// GetByEmail retrieves a user by email.
func (db *DB) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, u := range db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, u := range db.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// ListByIDs returns the users that exist among ids.
func (db *DB) ListByIDs(ctx context.Context, ids []int64) ([]domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		if u := db.userLocked(id); u != nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, email, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username || u.Email == email {
			return nil, domain.ErrDuplicate
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	cp := *u
	return &cp, nil
}

// DeleteUser removes a user record without touching their posts. The HTTP
// API never deletes users; tests use it to produce orphaned posts.
func (db *DB) DeleteUser(ctx context.Context, id int64) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for i, u := range db.users {
		if u.ID == id {
			db.users = append(db.users[:i], db.users[i+1:]...)
			return
		}
	}
}

func (db *DB) userLocked(id int64) *domain.User {
	for _, u := range db.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// --- PostRepository ---

// CreatePost stores a new post.
func (db *DB) CreatePost(ctx context.Context, p domain.Post) (*domain.Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.postIDCounter++
	p.ID = db.postIDCounter
	p.Tags = append([]string{}, p.Tags...)
	p.Likes = []int64{}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	db.posts = append(db.posts, &p)
	return copyPost(&p), nil
}

// GetPost retrieves a post by ID.
func (db *DB) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if p := db.postLocked(id); p != nil {
		return copyPost(p), nil
	}
	return nil, nil
}

// UpdatePost stores the mutable fields of p.
func (db *DB) UpdatePost(ctx context.Context, p domain.Post) (*domain.Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored := db.postLocked(p.ID)
	if stored == nil {
		return nil, nil
	}
	stored.Title = p.Title
	stored.Content = p.Content
	stored.Image = p.Image
	stored.Tags = append([]string{}, p.Tags...)
	stored.UpdatedAt = p.UpdatedAt.UTC()
	return copyPost(stored), nil
}

// DeletePost removes a post with its comments.
func (db *DB) DeletePost(ctx context.Context, id int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, p := range db.posts {
		if p.ID != id {
			continue
		}
		db.posts = append(db.posts[:i], db.posts[i+1:]...)
		kept := db.comments[:0]
		for _, c := range db.comments {
			if c.PostID != id {
				kept = append(kept, c)
			}
		}
		db.comments = kept
		return true, nil
	}
	return false, nil
}

// AddLike appends userID to the post's likes unless already present.
func (db *DB) AddLike(ctx context.Context, postID, userID int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	p := db.postLocked(postID)
	if p == nil || p.HasLike(userID) {
		return nil
	}
	p.Likes = append(p.Likes, userID)
	return nil
}

// RemoveLike drops userID from the post's likes.
func (db *DB) RemoveLike(ctx context.Context, postID, userID int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	p := db.postLocked(postID)
	if p == nil {
		return nil
	}
	likes := make([]int64, 0, len(p.Likes))
	for _, id := range p.Likes {
		if id != userID {
			likes = append(likes, id)
		}
	}
	p.Likes = likes
	return nil
}

// ListFeed returns posts with author and comment count, newest first.
// Posts whose author no longer exists are left out.
func (db *DB) ListFeed(ctx context.Context) ([]domain.FeedEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	counts := make(map[int64]int, len(db.posts))
	for _, c := range db.comments {
		counts[c.PostID]++
	}

	out := make([]domain.FeedEntry, 0, len(db.posts))
	for _, p := range db.posts {
		u := db.userLocked(p.AuthorID)
		if u == nil {
			continue
		}
		out = append(out, domain.FeedEntry{
			Post:         *copyPost(p),
			Author:       domain.Author{ID: u.ID, Username: u.Username},
			CommentCount: counts[p.ID],
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (db *DB) postLocked(id int64) *domain.Post {
	for _, p := range db.posts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func copyPost(p *domain.Post) *domain.Post {
	cp := *p
	cp.Tags = append([]string{}, p.Tags...)
	cp.Likes = append([]int64{}, p.Likes...)
	return &cp
}

// --- CommentRepository ---

// CreateComment stores a new comment.
func (db *DB) CreateComment(ctx context.Context, c domain.Comment) (*domain.Comment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.commentIDCounter++
	c.ID = db.commentIDCounter
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	db.comments = append(db.comments, &c)
	cp := c
	return &cp, nil
}

// GetComment retrieves a comment by ID.
func (db *DB) GetComment(ctx context.Context, id int64) (*domain.Comment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, c := range db.comments {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

// UpdateComment stores the content of c.
func (db *DB) UpdateComment(ctx context.Context, c domain.Comment) (*domain.Comment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, stored := range db.comments {
		if stored.ID == c.ID {
			stored.Content = c.Content
			stored.UpdatedAt = c.UpdatedAt.UTC()
			cp := *stored
			return &cp, nil
		}
	}
	return nil, nil
}

// DeleteComment removes a comment by ID.
func (db *DB) DeleteComment(ctx context.Context, id int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for i, c := range db.comments {
		if c.ID == id {
			db.comments = append(db.comments[:i], db.comments[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// ListCommentsByPost returns a post's comments with authors, newest first.
func (db *DB) ListCommentsByPost(ctx context.Context, postID int64) ([]domain.CommentView, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.CommentView, 0)
	for _, c := range db.comments {
		if c.PostID != postID {
			continue
		}
		out = append(out, domain.CommentView{Comment: *c, Author: domain.AuthorOf(db.userLocked(c.AuthorID))})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
