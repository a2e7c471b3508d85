package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"blog/internal/domain"
)

func TestUserRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	u, err := db.Create(ctx, "bob", "bob@x.com", "hash")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Username != "bob" {
		t.Errorf("expected bob, got %s", u.Username)
	}

	u2, err := db.GetByEmail(ctx, "bob@x.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if u2 == nil || u2.ID != u.ID {
		t.Error("failed to retrieve user by email")
	}

	missing, err := db.GetByUsername(ctx, "alice")
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for unknown user; got %v, %v", missing, err)
	}

	if _, err := db.Create(ctx, "bob", "other@x.com", "hash"); !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate for username, got %v", err)
	}
	if _, err := db.Create(ctx, "robert", "bob@x.com", "hash"); !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate for email, got %v", err)
	}

	users, _ := db.ListByIDs(ctx, []int64{u.ID, 999})
	if len(users) != 1 {
		t.Errorf("expected 1 user, got %d", len(users))
	}
}

func TestPostRepository(t *testing.T) {
	db := New()
	ctx := context.Background()
	author, _ := db.Create(ctx, "a", "a@x.com", "hash")

	now := time.Now()
	p, err := db.CreatePost(ctx, domain.Post{Title: "T", Content: "C", Tags: []string{"x"}, AuthorID: author.ID, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if p.ID == 0 {
		t.Error("expected non-zero ID")
	}

	// Likes are a set.
	_ = db.AddLike(ctx, p.ID, 7)
	_ = db.AddLike(ctx, p.ID, 7)
	_ = db.AddLike(ctx, p.ID, 8)
	got, _ := db.GetPost(ctx, p.ID)
	if len(got.Likes) != 2 || got.Likes[0] != 7 || got.Likes[1] != 8 {
		t.Errorf("expected likes [7 8], got %v", got.Likes)
	}
	_ = db.RemoveLike(ctx, p.ID, 7)
	got, _ = db.GetPost(ctx, p.ID)
	if len(got.Likes) != 1 || got.Likes[0] != 8 {
		t.Errorf("expected likes [8], got %v", got.Likes)
	}

	// Returned posts are copies.
	got.Tags[0] = "mutated"
	again, _ := db.GetPost(ctx, p.ID)
	if again.Tags[0] != "x" {
		t.Error("stored post was mutated through a returned copy")
	}

	got.Title = "T2"
	updated, err := db.UpdatePost(ctx, *got)
	if err != nil || updated.Title != "T2" {
		t.Fatalf("UpdatePost: %v, %+v", err, updated)
	}

	_, _ = db.CreateComment(ctx, domain.Comment{Content: "c", PostID: p.ID, AuthorID: author.ID, CreatedAt: now})
	ok, err := db.DeletePost(ctx, p.ID)
	if err != nil || !ok {
		t.Fatalf("DeletePost: %v, %v", ok, err)
	}
	comments, _ := db.ListCommentsByPost(ctx, p.ID)
	if len(comments) != 0 {
		t.Errorf("expected comments to be deleted with the post, got %d", len(comments))
	}
	if gone, _ := db.GetPost(ctx, p.ID); gone != nil {
		t.Error("expected nil (deleted)")
	}
	if ok, _ := db.DeletePost(ctx, p.ID); ok {
		t.Error("expected second delete to report false")
	}
}

func TestListFeed(t *testing.T) {
	db := New()
	ctx := context.Background()
	alice, _ := db.Create(ctx, "alice", "alice@x.com", "hash")
	bob, _ := db.Create(ctx, "bob", "bob@x.com", "hash")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p1, _ := db.CreatePost(ctx, domain.Post{Title: "one", AuthorID: alice.ID, CreatedAt: base})
	p2, _ := db.CreatePost(ctx, domain.Post{Title: "two", AuthorID: bob.ID, CreatedAt: base.Add(time.Minute)})
	p3, _ := db.CreatePost(ctx, domain.Post{Title: "three", AuthorID: alice.ID, CreatedAt: base.Add(2 * time.Minute)})
	tie, _ := db.CreatePost(ctx, domain.Post{Title: "tie", AuthorID: bob.ID, CreatedAt: base.Add(2 * time.Minute)})

	for i := 0; i < 3; i++ {
		_, _ = db.CreateComment(ctx, domain.Comment{Content: "c", PostID: p2.ID, AuthorID: alice.ID, CreatedAt: base})
	}
	_, _ = db.CreateComment(ctx, domain.Comment{Content: "c", PostID: p1.ID, AuthorID: bob.ID, CreatedAt: base})

	feed, err := db.ListFeed(ctx)
	if err != nil {
		t.Fatalf("ListFeed: %v", err)
	}
	wantOrder := []int64{p3.ID, tie.ID, p2.ID, p1.ID}
	if len(feed) != len(wantOrder) {
		t.Fatalf("expected %d entries, got %d", len(wantOrder), len(feed))
	}
	for i, id := range wantOrder {
		if feed[i].ID != id {
			t.Errorf("feed[%d] = post %d; want %d", i, feed[i].ID, id)
		}
	}

	counts := map[int64]int{p1.ID: 1, p2.ID: 3, p3.ID: 0, tie.ID: 0}
	for _, e := range feed {
		if e.CommentCount != counts[e.ID] {
			t.Errorf("post %d: commentCount = %d; want %d", e.ID, e.CommentCount, counts[e.ID])
		}
	}
	if feed[0].Author.Username != "alice" {
		t.Errorf("expected author alice, got %q", feed[0].Author.Username)
	}

	// Posts by a vanished author are left out.
	db.DeleteUser(ctx, bob.ID)
	feed, _ = db.ListFeed(ctx)
	if len(feed) != 2 {
		t.Errorf("expected 2 entries after orphaning bob's posts, got %d", len(feed))
	}
}

func TestCommentRepository(t *testing.T) {
	db := New()
	ctx := context.Background()
	u, _ := db.Create(ctx, "a", "a@x.com", "hash")

	base := time.Now()
	c1, _ := db.CreateComment(ctx, domain.Comment{Content: "first", PostID: 1, AuthorID: u.ID, CreatedAt: base})
	c2, _ := db.CreateComment(ctx, domain.Comment{Content: "second", PostID: 1, AuthorID: u.ID, CreatedAt: base.Add(time.Second)})
	_, _ = db.CreateComment(ctx, domain.Comment{Content: "other", PostID: 2, AuthorID: u.ID, CreatedAt: base})

	list, err := db.ListCommentsByPost(ctx, 1)
	if err != nil {
		t.Fatalf("ListCommentsByPost: %v", err)
	}
	if len(list) != 2 || list[0].ID != c2.ID || list[1].ID != c1.ID {
		t.Fatalf("expected [c2 c1], got %+v", list)
	}
	if list[0].Author == nil || list[0].Author.Username != "a" {
		t.Errorf("expected author a, got %+v", list[0].Author)
	}

	c1.Content = "edited"
	updated, _ := db.UpdateComment(ctx, *c1)
	if updated.Content != "edited" || updated.PostID != 1 {
		t.Errorf("unexpected update result %+v", updated)
	}

	if ok, _ := db.DeleteComment(ctx, c1.ID); !ok {
		t.Error("expected delete to succeed")
	}
	if got, _ := db.GetComment(ctx, c1.ID); got != nil {
		t.Error("expected nil (deleted)")
	}
}
