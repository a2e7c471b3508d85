package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "blog/internal/adapter/http"
	"blog/internal/adapter/kafka"
	"blog/internal/adapter/memory"
	"blog/internal/adapter/postgres"
	"blog/internal/adapter/ratelimit"
	"blog/internal/adapter/storage/disk"
	"blog/internal/adapter/storage/s3"
	"blog/internal/adapter/token"
	"blog/internal/app"
	"blog/internal/config"
	"blog/internal/domain"
	"blog/internal/telemetry"

	"github.com/redis/go-redis/v9"
)

type repositories interface {
	domain.UserRepository
	domain.PostRepository
	domain.CommentRepository
}

type imageStore interface {
	domain.ImageStore
	http.Handler
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.TraceSampleRate)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(c)
	}()

	var repos repositories
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db open: %v", err)
		}
		defer func() { _ = db.Close() }()
		repos = db
	} else {
		log.Printf("DATABASE_URL not set, using in-memory store")
		repos = memory.New()
	}

	var images imageStore
	if cfg.S3.Endpoint != "" {
		images, err = s3.New(ctx, s3.Config{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
			Bucket:    cfg.S3.Bucket,
		})
	} else {
		images, err = disk.New(cfg.UploadDir)
	}
	if err != nil {
		log.Fatalf("image store: %v", err)
	}

	var events domain.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		pub := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() { _ = pub.Close() }()
		events = pub
	}

	tokens, err := token.New(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}

	authSvc := app.NewAuthService(repos, tokens)
	postSvc := app.NewPostService(repos, repos, images, events, cfg.MaxUploadBytes)
	commentSvc := app.NewCommentService(repos, repos, repos, events)

	srv := adapthttp.New(authSvc, postSvc, commentSvc, images, cfg.WebDir).
		WithMaxUploadBytes(cfg.MaxUploadBytes).
		WithCORS(cfg.CORSOrigin)

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = rdb.Close() }()
		srv.WithRateLimit(ratelimit.New(rdb, cfg.AuthRateLimit, cfg.AuthRateWindow))
	}

	if cfg.OIDC.Enabled() {
		sso, err := adapthttp.NewSSO(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID, cfg.OIDC.ClientSecret, cfg.OIDC.RedirectURL, cfg.OIDC.SuccessURL)
		if err != nil {
			log.Fatalf("oidc: %v", err)
		}
		srv.WithSSO(sso)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(c)
	}()

	log.Printf("listening on %s", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
