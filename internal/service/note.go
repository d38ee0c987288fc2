package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quillhq/quill-server/internal/domain"
	domainerrors "github.com/quillhq/quill-server/internal/errors"
	"github.com/quillhq/quill-server/internal/id"
	"github.com/quillhq/quill-server/internal/search"
	"github.com/quillhq/quill-server/internal/store"
)

// NoteService is the single entry point for note access. Every operation
// takes the caller's identity explicitly and enforces access control before
// touching note content. Callers never reach the store directly.
type NoteService struct {
	store  store.Store
	index  *search.NoteIndex
	logger *slog.Logger
}

// NewNoteService creates a new note service.
func NewNoteService(store store.Store, index *search.NoteIndex, logger *slog.Logger) *NoteService {
	return &NoteService{
		store:  store,
		index:  index,
		logger: logger,
	}
}

// CreateNoteRequest contains the data for a new note.
type CreateNoteRequest struct {
	Title      string   `json:"title" validate:"required,max=500"`
	Content    string   `json:"content"`
	Visibility string   `json:"visibility" validate:"omitempty,oneof=private shared"`
	Tags       []string `json:"tags" validate:"max=32,dive,max=100"`
}

// UpdateNoteRequest contains partial updates for a note.
// Nil fields are left unchanged.
type UpdateNoteRequest struct {
	Title      *string   `json:"title" validate:"omitempty,max=500"`
	Content    *string   `json:"content"`
	Visibility *string   `json:"visibility" validate:"omitempty,oneof=private shared"`
	Tags       *[]string `json:"tags" validate:"omitempty,max=32,dive,max=100"`
}

// Create creates a new note owned by the caller.
func (s *NoteService) Create(ctx context.Context, callerID string, req CreateNoteRequest) (*domain.Note, error) {
	if callerID == "" {
		return nil, domainerrors.Unauthorized("authentication required")
	}
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	visibility := domain.VisibilityPrivate
	if req.Visibility != "" {
		visibility, _ = domain.ParseVisibility(req.Visibility)
	}

	noteID, err := id.Generate("note")
	if err != nil {
		return nil, fmt.Errorf("generate note ID: %w", err)
	}

	now := time.Now()
	note := &domain.Note{
		ID:         noteID,
		OwnerID:    callerID,
		Title:      req.Title,
		Content:    req.Content,
		Visibility: visibility,
		Tags:       []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := note.Validate(); err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	if err := s.store.CreateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}

	if len(req.Tags) > 0 {
		if err := s.applyTags(ctx, note, req.Tags); err != nil {
			return nil, err
		}
	}

	s.logger.Info("note created", "note_id", noteID, "owner_id", callerID)

	return note, nil
}

// Get returns a note if the caller may read it.
// Inaccessible and nonexistent notes are indistinguishable: both
// return a not-found error.
func (s *NoteService) Get(ctx context.Context, callerID, noteID string) (*domain.Note, error) {
	return s.loadReadable(ctx, callerID, noteID)
}

// ListOwn returns all notes owned by the caller.
func (s *NoteService) ListOwn(ctx context.Context, callerID string) ([]*domain.Note, error) {
	if callerID == "" {
		return nil, domainerrors.Unauthorized("authentication required")
	}
	notes, err := s.store.ListNotesByOwner(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// FilterByVisibility returns the caller's own notes with the given visibility.
func (s *NoteService) FilterByVisibility(ctx context.Context, callerID, visibility string) ([]*domain.Note, error) {
	if callerID == "" {
		return nil, domainerrors.Unauthorized("authentication required")
	}
	vis, ok := domain.ParseVisibility(visibility)
	if !ok {
		return nil, domainerrors.Validationf("unknown visibility %q", visibility)
	}
	notes, err := s.store.ListNotesByVisibility(ctx, callerID, vis)
	if err != nil {
		return nil, fmt.Errorf("list notes by visibility: %w", err)
	}
	return notes, nil
}

// FilterByTag returns the caller's own notes carrying the given tag.
func (s *NoteService) FilterByTag(ctx context.Context, callerID, tag string) ([]*domain.Note, error) {
	if callerID == "" {
		return nil, domainerrors.Unauthorized("authentication required")
	}
	slug := domain.Slugify(tag)
	if slug == "" {
		return nil, domainerrors.Validationf("invalid tag %q", tag)
	}
	notes, err := s.store.ListNotesByTag(ctx, callerID, slug)
	if err != nil {
		return nil, fmt.Errorf("list notes by tag: %w", err)
	}
	return notes, nil
}

// SearchRequest configures a full-text search over the caller's own notes.
type SearchRequest struct {
	Query      string   `json:"query"`
	Visibility string   `json:"visibility" validate:"omitempty,oneof=private shared public"`
	Tags       []string `json:"tags" validate:"max=32,dive,max=100"`
	Limit      int      `json:"limit" validate:"omitempty,min=1,max=100"`
	Offset     int      `json:"offset" validate:"omitempty,min=0"`
}

// Search runs a full-text query scoped to the caller's own notes.
func (s *NoteService) Search(ctx context.Context, callerID string, req SearchRequest) (*search.Result, error) {
	if callerID == "" {
		return nil, domainerrors.Unauthorized("authentication required")
	}
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	params := search.DefaultParams(callerID)
	params.Query = req.Query
	params.Visibility = req.Visibility
	for _, tag := range req.Tags {
		if slug := domain.Slugify(tag); slug != "" {
			params.Tags = append(params.Tags, slug)
		}
	}
	if req.Limit > 0 {
		params.Limit = req.Limit
	}
	params.Offset = req.Offset

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	return result, nil
}

// Update applies partial changes to a note. The caller must be the owner
// or hold an edit grant. Visibility changes are owner-only and cannot
// enter or leave the public state; that goes through public links.
func (s *NoteService) Update(ctx context.Context, callerID, noteID string, req UpdateNoteRequest) (*domain.Note, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	note, err := s.loadReadable(ctx, callerID, noteID)
	if err != nil {
		return nil, err
	}

	grant, err := s.loadGrant(ctx, noteID, callerID)
	if err != nil {
		return nil, err
	}
	if !domain.Evaluate(callerID, note, grant, domain.ActionEdit).Allowed() {
		return nil, domainerrors.Forbidden("you do not have edit access to this note")
	}

	if req.Visibility != nil {
		if !note.IsOwnedBy(callerID) {
			return nil, domainerrors.Forbidden("only the owner can change visibility")
		}
		if note.IsPublic() {
			return nil, domainerrors.Validation("note has a public link; revoke it before changing visibility")
		}
		vis, _ := domain.ParseVisibility(*req.Visibility)
		note.Visibility = vis
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, domainerrors.Validation("title cannot be empty")
		}
		note.Title = *req.Title
	}
	if req.Content != nil {
		note.Content = *req.Content
	}

	note.Touch()
	if err := note.Validate(); err != nil {
		return nil, domainerrors.Validation(err.Error())
	}
	if err := s.store.UpdateNote(ctx, note); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("note not found")
		}
		return nil, fmt.Errorf("update note: %w", err)
	}

	if req.Tags != nil {
		if err := s.applyTags(ctx, note, *req.Tags); err != nil {
			return nil, err
		}
	}

	s.logger.Info("note updated", "note_id", noteID, "caller_id", callerID)

	return note, nil
}

// Delete removes a note. Owner only; grantees with edit access cannot delete.
func (s *NoteService) Delete(ctx context.Context, callerID, noteID string) error {
	note, err := s.loadReadable(ctx, callerID, noteID)
	if err != nil {
		return err
	}

	if !domain.Evaluate(callerID, note, nil, domain.ActionDelete).Allowed() {
		return domainerrors.Forbidden("only the owner can delete a note")
	}

	if err := s.store.DeleteNote(ctx, noteID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("note not found")
		}
		return fmt.Errorf("delete note: %w", err)
	}

	s.logger.Info("note deleted", "note_id", noteID, "owner_id", callerID)

	return nil
}

// loadReadable fetches a note and verifies read access.
// Denied and missing notes produce the same not-found error so callers
// cannot probe for the existence of other users' notes.
func (s *NoteService) loadReadable(ctx context.Context, callerID, noteID string) (*domain.Note, error) {
	note, err := s.store.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("note not found")
		}
		return nil, fmt.Errorf("get note: %w", err)
	}

	grant, err := s.loadGrant(ctx, noteID, callerID)
	if err != nil {
		return nil, err
	}

	if !domain.Evaluate(callerID, note, grant, domain.ActionRead).Allowed() {
		return nil, domainerrors.NotFound("note not found")
	}

	return note, nil
}

// loadGrant fetches the caller's grant for a note, or nil if none exists.
func (s *NoteService) loadGrant(ctx context.Context, noteID, callerID string) (*domain.ShareGrant, error) {
	if callerID == "" {
		return nil, nil
	}
	grant, err := s.store.GetShare(ctx, noteID, callerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get share: %w", err)
	}
	return grant, nil
}

// applyTags normalizes raw tag names, creates missing tags, and replaces
// the note's tag set.
func (s *NoteService) applyTags(ctx context.Context, note *domain.Note, rawTags []string) error {
	seen := make(map[string]bool, len(rawTags))
	tagIDs := make([]string, 0, len(rawTags))
	slugs := make([]string, 0, len(rawTags))

	for _, raw := range rawTags {
		slug := domain.Slugify(raw)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true

		tag, _, err := s.store.FindOrCreateTagBySlug(ctx, slug)
		if err != nil {
			return fmt.Errorf("find or create tag %q: %w", slug, err)
		}
		tagIDs = append(tagIDs, tag.ID)
		slugs = append(slugs, slug)
	}

	if err := s.store.SetNoteTags(ctx, note.ID, tagIDs); err != nil {
		return fmt.Errorf("set note tags: %w", err)
	}
	note.Tags = slugs

	return nil
}
