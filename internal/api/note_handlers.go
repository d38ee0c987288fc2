package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/quillhq/quill-server/internal/domain"
	"github.com/quillhq/quill-server/internal/http/response"
	"github.com/quillhq/quill-server/internal/service"
)

// noteForCaller returns a copy of the note safe to show the given caller.
// The public token is owner-only; grantees and anonymous readers must not
// learn it from note payloads.
func noteForCaller(callerID string, note *domain.Note) *domain.Note {
	if note.IsOwnedBy(callerID) {
		return note
	}
	sanitized := *note
	sanitized.PublicToken = ""
	return &sanitized
}

func notesForCaller(callerID string, notes []*domain.Note) []*domain.Note {
	out := make([]*domain.Note, len(notes))
	for i, note := range notes {
		out[i] = noteForCaller(callerID, note)
	}
	return out
}

// handleCreateNote creates a new note owned by the caller.
func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	var req service.CreateNoteRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	note, err := s.noteService.Create(ctx, userID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, note, s.logger)
}

// handleListNotes returns the caller's own notes, optionally filtered by
// visibility or tag query parameters.
func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	var notes []*domain.Note
	var err error

	switch {
	case r.URL.Query().Get("visibility") != "":
		notes, err = s.noteService.FilterByVisibility(ctx, userID, r.URL.Query().Get("visibility"))
	case r.URL.Query().Get("tag") != "":
		notes, err = s.noteService.FilterByTag(ctx, userID, r.URL.Query().Get("tag"))
	default:
		notes, err = s.noteService.ListOwn(ctx, userID)
	}
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, notes, s.logger)
}

// handleGetNote returns a single note if the caller may read it.
func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	note, err := s.noteService.Get(ctx, userID, id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, noteForCaller(userID, note), s.logger)
}

// handleUpdateNote applies partial changes to a note.
func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	var req service.UpdateNoteRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	note, err := s.noteService.Update(ctx, userID, id, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, noteForCaller(userID, note), s.logger)
}

// handleDeleteNote removes a note.
func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	if err := s.noteService.Delete(ctx, userID, id); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleSearchNotes runs a full-text query over the caller's own notes.
func (s *Server) handleSearchNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	q := r.URL.Query()

	req := service.SearchRequest{
		Query:      q.Get("q"),
		Visibility: q.Get("visibility"),
	}
	if tag := q.Get("tag"); tag != "" {
		req.Tags = []string{tag}
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			req.Limit = limit
		}
	}
	if offsetStr := q.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			req.Offset = offset
		}
	}

	result, err := s.noteService.Search(ctx, userID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}
