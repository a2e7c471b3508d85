package app

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"blog/internal/domain"

	"github.com/google/uuid"
)

// DefaultMaxImageBytes bounds uploaded post images.
const DefaultMaxImageBytes = 5 << 20

var imageTypes = regexp.MustCompile(`jpeg|jpg|png|gif`)

// Upload is an image file received with a post form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// PostInput carries the fields of a new post.
type PostInput struct {
	Title   string
	Content string
	Tags    []string
	Image   *Upload
}

// PostPatch carries a partial post update; nil fields are left unchanged.
// Image set to "" removes the current image; a new file arrives as Upload.
type PostPatch struct {
	Title   *string
	Content *string
	Tags    *[]string
	Image   *string
	Upload  *Upload
}

// PostService encapsulates post use cases: feed, detail, authoring and likes.
type PostService struct {
	posts         domain.PostRepository
	users         domain.UserRepository
	images        domain.ImageStore
	events        domain.EventPublisher
	maxImageBytes int64
}

// NewPostService creates a PostService. events may be nil.
func NewPostService(posts domain.PostRepository, users domain.UserRepository, images domain.ImageStore, events domain.EventPublisher, maxImageBytes int64) *PostService {
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &PostService{posts: posts, users: users, images: images, events: events, maxImageBytes: maxImageBytes}
}

// Feed returns every post with its author username and comment count,
// newest first.
func (s *PostService) Feed(ctx context.Context) ([]domain.FeedEntry, error) {
	return s.posts.ListFeed(ctx)
}

// Get returns a single post with its author and likers resolved.
func (s *PostService) Get(ctx context.Context, id int64) (*domain.PostView, error) {
	post, err := s.posts.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	return s.view(ctx, post)
}

// Create validates and stores a new post owned by authorID.
func (s *PostService) Create(ctx context.Context, authorID int64, in PostInput) (*domain.PostView, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" {
		return nil, invalid("title is required")
	}
	if content == "" {
		return nil, invalid("content is required")
	}

	var image string
	if in.Image != nil {
		name, err := s.storeImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		image = name
	}

	now := time.Now().UTC()
	post, err := s.posts.CreatePost(ctx, domain.Post{
		Title:     title,
		Content:   content,
		Image:     image,
		Tags:      domain.CleanTags(in.Tags),
		Likes:     []int64{},
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.discardImage(ctx, image)
		return nil, err
	}

	publish(ctx, s.events, domain.Event{Type: domain.EventPostCreated, PostID: post.ID, UserID: authorID})
	return s.view(ctx, post)
}

// Update applies patch to a post owned by requesterID.
func (s *PostService) Update(ctx context.Context, requesterID, id int64, patch PostPatch) (*domain.PostView, error) {
	post, err := requireOwner(ctx, s.posts.GetPost, postOwner, id, requesterID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		if post.Title = strings.TrimSpace(*patch.Title); post.Title == "" {
			return nil, invalid("title is required")
		}
	}
	if patch.Content != nil {
		if post.Content = strings.TrimSpace(*patch.Content); post.Content == "" {
			return nil, invalid("content is required")
		}
	}
	if patch.Tags != nil {
		post.Tags = domain.CleanTags(*patch.Tags)
	}

	oldImage := post.Image
	if patch.Image != nil {
		if *patch.Image != "" && *patch.Image != post.Image {
			return nil, invalid("image must be uploaded as a file")
		}
		post.Image = *patch.Image
	}
	if patch.Upload != nil {
		name, err := s.storeImage(ctx, patch.Upload)
		if err != nil {
			return nil, err
		}
		post.Image = name
	}

	post.UpdatedAt = time.Now().UTC()
	updated, err := s.posts.UpdatePost(ctx, *post)
	if err != nil {
		if post.Image != oldImage {
			s.discardImage(ctx, post.Image)
		}
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	if updated.Image != oldImage {
		s.discardImage(ctx, oldImage)
	}

	publish(ctx, s.events, domain.Event{Type: domain.EventPostUpdated, PostID: updated.ID, UserID: requesterID})
	return s.view(ctx, updated)
}

// Delete removes a post owned by requesterID together with its comments
// and returns the deleted post.
func (s *PostService) Delete(ctx context.Context, requesterID, id int64) (*domain.Post, error) {
	post, err := requireOwner(ctx, s.posts.GetPost, postOwner, id, requesterID)
	if err != nil {
		return nil, err
	}
	deleted, err := s.posts.DeletePost(ctx, id)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, ErrNotFound
	}
	s.discardImage(ctx, post.Image)

	publish(ctx, s.events, domain.Event{Type: domain.EventPostDeleted, PostID: id, UserID: requesterID})
	return post, nil
}

// ToggleLike adds userID to the post's likes, or removes it when already
// present. The read and the write are separate store round trips.
func (s *PostService) ToggleLike(ctx context.Context, userID, id int64) (*domain.PostView, error) {
	post, err := s.posts.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}

	evType := domain.EventPostLiked
	if post.HasLike(userID) {
		if err := s.posts.RemoveLike(ctx, id, userID); err != nil {
			return nil, err
		}
		likes := make([]int64, 0, len(post.Likes))
		for _, l := range post.Likes {
			if l != userID {
				likes = append(likes, l)
			}
		}
		post.Likes = likes
		evType = domain.EventPostUnliked
	} else {
		if err := s.posts.AddLike(ctx, id, userID); err != nil {
			return nil, err
		}
		post.Likes = append(post.Likes, userID)
	}

	publish(ctx, s.events, domain.Event{Type: evType, PostID: id, UserID: userID})
	return s.view(ctx, post)
}

func (s *PostService) view(ctx context.Context, post *domain.Post) (*domain.PostView, error) {
	author, err := s.users.GetByID(ctx, post.AuthorID)
	if err != nil {
		return nil, err
	}

	likers := []domain.Author{}
	if len(post.Likes) > 0 {
		users, err := s.users.ListByIDs(ctx, post.Likes)
		if err != nil {
			return nil, err
		}
		byID := make(map[int64]string, len(users))
		for _, u := range users {
			byID[u.ID] = u.Username
		}
		for _, id := range post.Likes {
			if name, ok := byID[id]; ok {
				likers = append(likers, domain.Author{ID: id, Username: name})
			}
		}
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	return &domain.PostView{Post: *post, Author: domain.AuthorOf(author), Likes: likers}, nil
}

func (s *PostService) storeImage(ctx context.Context, up *Upload) (string, error) {
	if up.Size > s.maxImageBytes {
		return "", invalid("image exceeds %d bytes", s.maxImageBytes)
	}
	ext := strings.ToLower(filepath.Ext(up.Filename))
	if !imageTypes.MatchString(ext) || !imageTypes.MatchString(strings.ToLower(up.ContentType)) {
		return "", invalid("images only")
	}
	if s.images == nil {
		return "", invalid("image uploads are disabled")
	}

	name := uuid.NewString() + ext
	if err := s.images.Save(ctx, name, up.ContentType, up.Body, up.Size); err != nil {
		return "", err
	}
	return name, nil
}

func (s *PostService) discardImage(ctx context.Context, name string) {
	if name == "" || s.images == nil {
		return
	}
	if err := s.images.Remove(ctx, name); err != nil {
		log.Printf("remove image %s: %v", name, err)
	}
}

func postOwner(p *domain.Post) int64 { return p.AuthorID }
