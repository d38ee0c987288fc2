package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quillhq/quill-server/internal/domain"
	domainerrors "github.com/quillhq/quill-server/internal/errors"
	"github.com/quillhq/quill-server/internal/store"
)

const defaultPopularTagLimit = 10

// TagService exposes the tag catalog. Tags are created implicitly when
// notes are tagged, so there are no create or delete operations here.
type TagService struct {
	store  store.Store
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store store.Store, logger *slog.Logger) *TagService {
	return &TagService{
		store:  store,
		logger: logger,
	}
}

// ListTags returns every known tag with its note count, ordered by slug.
func (s *TagService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// PopularTags returns the caller's most used tags, most used first.
// A limit of zero applies the default; negative limits are rejected.
func (s *TagService) PopularTags(ctx context.Context, callerID string, limit int) ([]*domain.Tag, error) {
	if callerID == "" {
		return nil, domainerrors.Unauthorized("authentication required")
	}
	if limit < 0 {
		return nil, domainerrors.Validation("limit must not be negative")
	}
	if limit == 0 {
		limit = defaultPopularTagLimit
	}

	tags, err := s.store.PopularTags(ctx, callerID, limit)
	if err != nil {
		return nil, fmt.Errorf("popular tags: %w", err)
	}
	return tags, nil
}
