package adapthttp

import (
	"context"
	"net/http"

	"blog/internal/app"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Limiter decides whether another request for key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth     *app.AuthService
	posts    *app.PostService
	comments *app.CommentService
	images   http.Handler
	webDir   string

	limiter        Limiter
	sso            *SSO
	corsOrigin     string
	maxUploadBytes int64
	metrics        *metrics
}

// New creates a Server wired to the given application services. images
// serves stored uploads by bare file name and may be nil.
func New(auth *app.AuthService, posts *app.PostService, comments *app.CommentService, images http.Handler, webDir string) *Server {
	return &Server{
		auth:           auth,
		posts:          posts,
		comments:       comments,
		images:         images,
		webDir:         webDir,
		maxUploadBytes: app.DefaultMaxImageBytes,
		metrics:        newMetrics(),
	}
}

// WithRateLimit throttles the login and register endpoints per client IP.
func (s *Server) WithRateLimit(l Limiter) *Server {
	s.limiter = l
	return s
}

// WithSSO enables the OIDC login endpoints.
func (s *Server) WithSSO(sso *SSO) *Server {
	s.sso = sso
	return s
}

// WithCORS allows browser requests from origin.
func (s *Server) WithCORS(origin string) *Server {
	s.corsOrigin = origin
	return s
}

// WithMaxUploadBytes bounds the size of an uploaded image.
func (s *Server) WithMaxUploadBytes(n int64) *Server {
	if n > 0 {
		s.maxUploadBytes = n
	}
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	s.route(api, "GET /health", "health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}))

	s.route(api, "POST /auth/register", "auth.register", s.rateLimited(http.HandlerFunc(s.handleRegister)))
	s.route(api, "POST /auth/login", "auth.login", s.rateLimited(http.HandlerFunc(s.handleLogin)))
	s.route(api, "GET /auth/me", "auth.me", s.authMiddleware(http.HandlerFunc(s.handleMe)))
	s.route(api, "GET /auth/config", "auth.config", http.HandlerFunc(s.handleConfig))
	s.route(api, "GET /auth/sso/login", "auth.sso.login", http.HandlerFunc(s.handleSSOLogin))
	s.route(api, "GET /auth/sso/callback", "auth.sso.callback", http.HandlerFunc(s.handleSSOCallback))

	s.route(api, "GET /posts", "posts.feed", http.HandlerFunc(s.handleFeed))
	s.route(api, "GET /posts/{id}", "posts.get", http.HandlerFunc(s.handleGetPost))
	s.route(api, "POST /posts", "posts.create", s.authMiddleware(http.HandlerFunc(s.handleCreatePost)))
	s.route(api, "PATCH /posts/{id}", "posts.update", s.authMiddleware(http.HandlerFunc(s.handleUpdatePost)))
	s.route(api, "DELETE /posts/{id}", "posts.delete", s.authMiddleware(http.HandlerFunc(s.handleDeletePost)))
	s.route(api, "POST /posts/{id}/like", "posts.like", s.authMiddleware(http.HandlerFunc(s.handleToggleLike)))

	s.route(api, "GET /comments/post/{postId}", "comments.list", http.HandlerFunc(s.handleListComments))
	s.route(api, "POST /comments", "comments.create", s.authMiddleware(http.HandlerFunc(s.handleCreateComment)))
	s.route(api, "PATCH /comments/{id}", "comments.update", s.authMiddleware(http.HandlerFunc(s.handleUpdateComment)))
	s.route(api, "DELETE /comments/{id}", "comments.delete", s.authMiddleware(http.HandlerFunc(s.handleDeleteComment)))

	root := http.NewServeMux()
	root.Handle("/api/", withNoCache(s.cors(http.StripPrefix("/api", api))))
	if s.images != nil {
		root.Handle("GET /uploads/", http.StripPrefix("/uploads", s.images))
	}
	root.Handle("GET /metrics", s.metrics.handler())
	root.Handle("/", withNoCache(spaFromDisk(s.webDir)))

	return s.loggingMiddleware(root)
}

// route registers h under pattern with tracing and request metrics
// labelled by name.
func (s *Server) route(mux *http.ServeMux, pattern, name string, h http.Handler) {
	mux.Handle(pattern, otelhttp.NewHandler(s.metrics.instrument(name, h), name))
}
