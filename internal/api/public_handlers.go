package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quillhq/quill-server/internal/http/response"
)

// handleCreatePublicLink publishes a note and returns it with its token.
func (s *Server) handleCreatePublicLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	noteID := chi.URLParam(r, "id")

	note, err := s.sharingService.CreatePublicLink(ctx, userID, noteID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	// Only the owner reaches this handler, so the token stays in the payload.
	response.Success(w, note, s.logger)
}

// handleRevokePublicLink removes a note's public link.
func (s *Server) handleRevokePublicLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	noteID := chi.URLParam(r, "id")

	if err := s.sharingService.RevokePublicLink(ctx, userID, noteID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleGetPublicNote resolves a public token to its note. No authentication.
func (s *Server) handleGetPublicNote(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	note, err := s.sharingService.ResolvePublicNote(r.Context(), token)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, noteForCaller("", note), s.logger)
}
