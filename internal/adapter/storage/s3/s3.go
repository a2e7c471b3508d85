// Package s3 stores uploaded images in an S3 compatible bucket.
package s3

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"blog/internal/domain"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds the bucket connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// Store keeps images as objects and redirects reads to presigned URLs.
type Store struct {
	cfg        Config
	client     *minio.Client
	presignTTL time.Duration
}

var _ domain.ImageStore = (*Store)(nil)

// New connects to the endpoint and creates the bucket when it is missing.
func New(ctx context.Context, cfg Config) (*Store, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://")
	cl, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	s := &Store{cfg: cfg, client: cl, presignTTL: 15 * time.Minute}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return err
	}
	if !exists {
		return s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{})
	}
	return nil
}

// Save uploads r as object name.
func (s *Store) Save(ctx context.Context, name, contentType string, r io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, s.cfg.Bucket, name, r, size,
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

// Remove deletes object name.
func (s *Store) Remove(ctx context.Context, name string) error {
	return s.client.RemoveObject(ctx, s.cfg.Bucket, name, minio.RemoveObjectOptions{})
}

// ServeHTTP redirects to a short-lived presigned GET for the object named
// by the request path.
func (s *Store) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/")
	if name == "" || strings.Contains(name, "/") {
		http.NotFound(w, r)
		return
	}
	u, err := s.client.PresignedGetObject(r.Context(), s.cfg.Bucket, name, s.presignTTL, nil)
	if err != nil {
		log.Printf("presign %s: %v", name, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, u.String(), http.StatusFound)
}
