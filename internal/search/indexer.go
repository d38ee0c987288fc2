package search

import (
	"context"

	"github.com/quillhq/quill-server/internal/domain"
)

// IndexAdapter bridges the store's indexing hook to the bleve index.
type IndexAdapter struct {
	index *NoteIndex
}

// NewIndexAdapter wraps a note index for use as a store indexer.
func NewIndexAdapter(index *NoteIndex) *IndexAdapter {
	return &IndexAdapter{index: index}
}

// IndexNote indexes a note's searchable fields.
func (a *IndexAdapter) IndexNote(_ context.Context, note *domain.Note) error {
	return a.index.IndexDocument(NoteToDocument(note))
}

// DeleteNote removes a note from the index.
func (a *IndexAdapter) DeleteNote(_ context.Context, noteID string) error {
	return a.index.DeleteDocument(noteID)
}
