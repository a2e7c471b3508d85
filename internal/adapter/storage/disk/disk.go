// Package disk stores uploaded images in a local directory.
package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"blog/internal/domain"
)

// Store saves images under dir and serves them back over HTTP.
type Store struct {
	dir   string
	files http.Handler
}

var _ domain.ImageStore = (*Store)(nil)

// New creates dir if needed and returns a Store rooted at it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, files: http.FileServer(http.Dir(dir))}, nil
}

func (s *Store) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid image name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

// Save writes r to a new file called name.
func (s *Store) Save(_ context.Context, name, _ string, r io.Reader, size int64) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && size >= 0 && n != size {
		err = fmt.Errorf("short write: %d of %d bytes", n, size)
	}
	if err != nil {
		_ = os.Remove(p)
		return err
	}
	return nil
}

// Remove deletes the file called name. A missing file is not an error.
func (s *Store) Remove(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// ServeHTTP serves a stored image. The request path must be the bare file
// name, so mount it behind http.StripPrefix.
func (s *Store) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, err := s.path(strings.TrimPrefix(r.URL.Path, "/")); err != nil {
		http.NotFound(w, r)
		return
	}
	s.files.ServeHTTP(w, r)
}
