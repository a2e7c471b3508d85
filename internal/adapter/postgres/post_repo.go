package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"blog/internal/domain"

	"github.com/lib/pq"
)

// likesSubquery aggregates a post's likers in the order they liked it.
const likesSubquery = "COALESCE((SELECT array_agg(l.user_id ORDER BY l.created_at, l.user_id) FROM post_likes l WHERE l.post_id = p.id), '{}')"

const postColumns = "p.id, p.title, p.content, p.image, p.tags, p.author_id, p.created_at, p.updated_at, " + likesSubquery

func postDest(p *domain.Post) []any {
	return []any{&p.ID, &p.Title, &p.Content, &p.Image, pq.Array(&p.Tags), &p.AuthorID, &p.CreatedAt, &p.UpdatedAt, pq.Array(&p.Likes)}
}

func normalizePost(p *domain.Post) {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Likes == nil {
		p.Likes = []int64{}
	}
}

// CreatePost inserts a new post.
func (d *DB) CreatePost(ctx context.Context, p domain.Post) (*domain.Post, error) {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	err := d.sql.QueryRowContext(ctx,
		"INSERT INTO posts (title, content, image, tags, author_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id;",
		p.Title, p.Content, p.Image, pq.Array(tags), p.AuthorID, p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	).Scan(&p.ID)
	if err != nil {
		return nil, err
	}
	p.Tags = tags
	p.Likes = []int64{}
	return &p, nil
}

// GetPost retrieves a post with its likes.
func (d *DB) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	var p domain.Post
	err := d.sql.QueryRowContext(ctx,
		"SELECT "+postColumns+" FROM posts p WHERE p.id = $1;", id,
	).Scan(postDest(&p)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	normalizePost(&p)
	return &p, nil
}

// UpdatePost stores the mutable fields of p.
func (d *DB) UpdatePost(ctx context.Context, p domain.Post) (*domain.Post, error) {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	res, err := d.sql.ExecContext(ctx,
		"UPDATE posts SET title=$1, content=$2, image=$3, tags=$4, updated_at=$5 WHERE id=$6;",
		p.Title, p.Content, p.Image, pq.Array(tags), p.UpdatedAt.UTC(), p.ID,
	)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return nil, err
	}
	return d.GetPost(ctx, p.ID)
}

// DeletePost removes a post; comments and likes go with it via ON DELETE CASCADE.
func (d *DB) DeletePost(ctx context.Context, id int64) (bool, error) {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM posts WHERE id=$1;", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// AddLike records userID as liking the post; repeated likes are ignored.
func (d *DB) AddLike(ctx context.Context, postID, userID int64) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO post_likes (post_id, user_id, created_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING;",
		postID, userID, time.Now().UTC(),
	)
	return err
}

// RemoveLike deletes userID's like on the post.
func (d *DB) RemoveLike(ctx context.Context, postID, userID int64) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM post_likes WHERE post_id=$1 AND user_id=$2;", postID, userID)
	return err
}

// ListFeed returns posts joined with author username and comment count,
// newest first. The inner join leaves out posts without an author.
func (d *DB) ListFeed(ctx context.Context) ([]domain.FeedEntry, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+postColumns+", u.username, (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) "+
			"FROM posts p JOIN users u ON u.id = p.author_id "+
			"ORDER BY p.created_at DESC, p.id ASC;")
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.FeedEntry, 0)
	for rows.Next() {
		var e domain.FeedEntry
		dest := append(postDest(&e.Post), &e.Author.Username, &e.CommentCount)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		normalizePost(&e.Post)
		e.Author.ID = e.AuthorID
		out = append(out, e)
	}
	return out, rows.Err()
}
