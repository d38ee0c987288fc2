package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quillhq/quill-server/internal/http/response"
	"github.com/quillhq/quill-server/internal/service"
)

// handleShareNote grants another user access to a note.
func (s *Server) handleShareNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	noteID := chi.URLParam(r, "id")

	var req service.ShareRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	grant, err := s.sharingService.Share(ctx, userID, noteID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, grant, s.logger)
}

// handleUnshareNote revokes a user's grant on a note.
func (s *Server) handleUnshareNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	noteID := chi.URLParam(r, "id")
	granteeEmail := chi.URLParam(r, "granteeEmail")

	if err := s.sharingService.Unshare(ctx, userID, noteID, granteeEmail); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleListShares returns all grants on a note.
func (s *Server) handleListShares(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	noteID := chi.URLParam(r, "id")

	grants, err := s.sharingService.ListShares(ctx, userID, noteID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, grants, s.logger)
}

// handleListSharedWithMe returns notes other users have shared with the caller.
func (s *Server) handleListSharedWithMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	notes, err := s.sharingService.ListSharedWithMe(ctx, userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, notesForCaller(userID, notes), s.logger)
}
