package domain

import (
	"context"
	"io"
)

// ImageStore persists uploaded post images under a generated file name.
type ImageStore interface {
	Save(ctx context.Context, name, contentType string, r io.Reader, size int64) error
	Remove(ctx context.Context, name string) error
}
