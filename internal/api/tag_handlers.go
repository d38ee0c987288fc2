package api

import (
	"net/http"
	"strconv"

	"github.com/quillhq/quill-server/internal/http/response"
)

// handleListTags returns every known tag with its note count.
func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.tagService.ListTags(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, tags, s.logger)
}

// handlePopularTags returns the caller's most used tags.
func (s *Server) handlePopularTags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			response.BadRequest(w, "Invalid limit parameter", s.logger)
			return
		}
		limit = parsed
	}

	tags, err := s.tagService.PopularTags(ctx, userID, limit)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, tags, s.logger)
}
