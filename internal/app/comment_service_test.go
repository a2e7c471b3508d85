package app

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"blog/internal/domain"
)

func TestCommentService(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	svc := NewCommentService(f.db, f.db, f.db, f.events)

	post, _ := f.svc.Create(ctx, f.alice.ID, PostInput{Title: "T", Content: "C"})

	c, err := svc.Create(ctx, f.bob.ID, post.ID, " nice ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.Content != "nice" || c.PostID != post.ID || c.Author == nil || c.Author.Username != "bob" {
		t.Fatalf("unexpected comment %+v", c)
	}

	t.Run("validation", func(t *testing.T) {
		if _, err := svc.Create(ctx, f.bob.ID, post.ID, "  "); !errors.Is(err, ErrValidation) {
			t.Errorf("empty content: expected ErrValidation, got %v", err)
		}
		if _, err := svc.Create(ctx, f.bob.ID, 0, "x"); !errors.Is(err, ErrValidation) {
			t.Errorf("missing post: expected ErrValidation, got %v", err)
		}
		if _, err := svc.Create(ctx, f.bob.ID, 999, "x"); !errors.Is(err, ErrNotFound) {
			t.Errorf("unknown post: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ownership", func(t *testing.T) {
		if _, err := svc.Update(ctx, f.alice.ID, c.ID, strPtr("edited")); !errors.Is(err, ErrNotFound) {
			t.Errorf("foreign update: expected ErrNotFound, got %v", err)
		}
		if _, err := svc.Delete(ctx, f.alice.ID, c.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("foreign delete: expected ErrNotFound, got %v", err)
		}
		if _, err := svc.Update(ctx, f.bob.ID, 999, strPtr("edited")); !errors.Is(err, ErrNotFound) {
			t.Errorf("missing update: expected ErrNotFound, got %v", err)
		}
	})

	updated, err := svc.Update(ctx, f.bob.ID, c.ID, strPtr("edited"))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Content != "edited" || updated.PostID != post.ID {
		t.Fatalf("unexpected update %+v", updated)
	}
	if _, err := svc.Update(ctx, f.bob.ID, c.ID, strPtr("")); !errors.Is(err, ErrValidation) {
		t.Errorf("empty content: expected ErrValidation, got %v", err)
	}

	list, err := svc.ListByPost(ctx, post.ID)
	if err != nil || len(list) != 1 || list[0].Content != "edited" {
		t.Fatalf("unexpected list %+v %v", list, err)
	}

	deleted, err := svc.Delete(ctx, f.bob.ID, c.ID)
	if err != nil || deleted.ID != c.ID {
		t.Fatalf("Delete: %+v %v", deleted, err)
	}
	if list, _ := svc.ListByPost(ctx, post.ID); len(list) != 0 {
		t.Fatalf("expected no comments after delete, got %d", len(list))
	}

	want := []string{domain.EventPostCreated, domain.EventCommentCreated, domain.EventCommentUpdated, domain.EventCommentDeleted}
	if !reflect.DeepEqual(f.events.types(), want) {
		t.Fatalf("expected events %v, got %v", want, f.events.types())
	}
}

func TestRequireOwner(t *testing.T) {
	type doc struct{ owner int64 }
	docs := map[int64]*doc{1: {owner: 10}}
	storeErr := errors.New("db down")
	load := func(_ context.Context, id int64) (*doc, error) {
		if id == 5 {
			return nil, storeErr
		}
		return docs[id], nil
	}
	ownerOf := func(d *doc) int64 { return d.owner }

	tests := []struct {
		name      string
		id, actor int64
		wantErr   error
	}{
		{"owner", 1, 10, nil},
		{"other user", 1, 11, ErrNotFound},
		{"missing", 2, 10, ErrNotFound},
		{"store error", 5, 10, storeErr},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := requireOwner(context.Background(), load, ownerOf, tc.id, tc.actor)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if tc.wantErr == nil && got != docs[tc.id] {
				t.Fatalf("expected loaded doc, got %v", got)
			}
		})
	}
}
