// Package api provides the HTTP API server and handlers for the Quill application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/quillhq/quill-server/internal/http/response"
	"github.com/quillhq/quill-server/internal/ratelimit"
	"github.com/quillhq/quill-server/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	authService    *service.AuthService
	noteService    *service.NoteService
	sharingService *service.SharingService
	tagService     *service.TagService
	publicLimiter  *ratelimit.KeyedRateLimiter
	router         *chi.Mux
	logger         *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(authService *service.AuthService, noteService *service.NoteService, sharingService *service.SharingService, tagService *service.TagService, publicLimiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *Server {
	s := &Server{
		authService:    authService,
		noteService:    noteService,
		sharingService: sharingService,
		tagService:     tagService,
		publicLimiter:  publicLimiter,
		router:         chi.NewRouter(),
		logger:         logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints (public).
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
		})

		// Protected user endpoints.
		r.Route("/users", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/me", s.handleGetCurrentUser)
		})

		// Notes (require auth).
		r.Route("/notes", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleCreateNote)
			r.Get("/", s.handleListNotes)
			r.Get("/search", s.handleSearchNotes)
			r.Get("/shared-with-me", s.handleListSharedWithMe)
			r.Get("/{id}", s.handleGetNote)
			r.Patch("/{id}", s.handleUpdateNote)
			r.Delete("/{id}", s.handleDeleteNote)

			// Grants on a note.
			r.Post("/{id}/shares", s.handleShareNote)
			r.Get("/{id}/shares", s.handleListShares)
			r.Delete("/{id}/shares/{granteeEmail}", s.handleUnshareNote)

			// Public link lifecycle.
			r.Post("/{id}/public-link", s.handleCreatePublicLink)
			r.Delete("/{id}/public-link", s.handleRevokePublicLink)
		})

		// Tags (require auth).
		r.Route("/tags", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleListTags)
			r.Get("/popular", s.handlePopularTags)
		})

		// Anonymous public-link resolution, rate limited per client IP.
		r.Group(func(r chi.Router) {
			r.Use(RateLimitMiddleware(s.publicLimiter, s.logger))
			r.Get("/public/notes/{token}", s.handleGetPublicNote)
		})
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
