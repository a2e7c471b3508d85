package postgres

import (
	"context"
	"database/sql"
	"errors"

	"blog/internal/domain"
)

const commentColumns = "id, content, post_id, author_id, created_at, updated_at"

func scanComment(row interface{ Scan(...any) error }) (*domain.Comment, error) {
	var c domain.Comment
	if err := row.Scan(&c.ID, &c.Content, &c.PostID, &c.AuthorID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateComment inserts a new comment.
func (d *DB) CreateComment(ctx context.Context, c domain.Comment) (*domain.Comment, error) {
	return scanComment(d.sql.QueryRowContext(ctx,
		"INSERT INTO comments (content, post_id, author_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING "+commentColumns,
		c.Content, c.PostID, c.AuthorID, c.CreatedAt.UTC(), c.UpdatedAt.UTC(),
	))
}

// GetComment retrieves a comment by ID.
func (d *DB) GetComment(ctx context.Context, id int64) (*domain.Comment, error) {
	c, err := scanComment(d.sql.QueryRowContext(ctx,
		"SELECT "+commentColumns+" FROM comments WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// UpdateComment stores the content of c. The post reference is never written.
func (d *DB) UpdateComment(ctx context.Context, c domain.Comment) (*domain.Comment, error) {
	updated, err := scanComment(d.sql.QueryRowContext(ctx,
		"UPDATE comments SET content=$1, updated_at=$2 WHERE id=$3 RETURNING "+commentColumns,
		c.Content, c.UpdatedAt.UTC(), c.ID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return updated, err
}

// DeleteComment removes a comment by ID.
func (d *DB) DeleteComment(ctx context.Context, id int64) (bool, error) {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM comments WHERE id=$1;", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListCommentsByPost returns a post's comments with authors, newest first.
func (d *DB) ListCommentsByPost(ctx context.Context, postID int64) ([]domain.CommentView, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT c.id, c.content, c.post_id, c.author_id, c.created_at, c.updated_at, u.username "+
			"FROM comments c LEFT JOIN users u ON u.id = c.author_id "+
			"WHERE c.post_id = $1 ORDER BY c.created_at DESC, c.id ASC;", postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.CommentView, 0)
	for rows.Next() {
		var (
			v        domain.CommentView
			username sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.Content, &v.PostID, &v.AuthorID, &v.CreatedAt, &v.UpdatedAt, &username); err != nil {
			return nil, err
		}
		if username.Valid {
			v.Author = &domain.Author{ID: v.AuthorID, Username: username.String}
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
