package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/quillhq/quill-server/internal/api"
	"github.com/quillhq/quill-server/internal/config"
	"github.com/quillhq/quill-server/internal/logger"
	"github.com/quillhq/quill-server/internal/ratelimit"
	"github.com/quillhq/quill-server/internal/service"
)

// PublicRateLimiter wraps the keyed rate limiter with shutdown capability.
type PublicRateLimiter struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (l *PublicRateLimiter) Shutdown() error {
	l.Stop()
	return nil
}

// ProvidePublicRateLimiter provides the per-IP limiter for anonymous
// public-note requests.
func ProvidePublicRateLimiter(i do.Injector) (*PublicRateLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)

	limiter := ratelimit.New(cfg.RateLimit.PublicRPS, cfg.RateLimit.PublicBurst)
	return &PublicRateLimiter{KeyedRateLimiter: limiter}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	authService := do.MustInvoke[*service.AuthService](i)
	noteService := do.MustInvoke[*service.NoteService](i)
	sharingService := do.MustInvoke[*service.SharingService](i)
	tagService := do.MustInvoke[*service.TagService](i)
	limiter := do.MustInvoke[*PublicRateLimiter](i)

	handler := api.NewServer(authService, noteService, sharingService, tagService, limiter.KeyedRateLimiter, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
