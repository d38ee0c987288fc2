// Package search provides full-text search over notes using Bleve.
// Queries are always scoped to a single owner so search never leaks
// notes the caller does not own.
package search

import (
	"github.com/quillhq/quill-server/internal/domain"
)

// NoteDocument is the document structure for the Bleve index.
type NoteDocument struct {
	ID         string   `json:"id"`
	OwnerID    string   `json:"owner_id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Visibility string   `json:"visibility"`
	Tags       []string `json:"tags,omitempty"`
	CreatedAt  int64    `json:"created_at"` // Unix millis
	UpdatedAt  int64    `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *NoteDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"owner_id":   d.OwnerID,
		"title":      d.Title,
		"visibility": d.Visibility,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.Content != "" {
		m["content"] = d.Content
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}

	return m
}

// NoteToDocument converts a domain Note to a NoteDocument.
func NoteToDocument(note *domain.Note) *NoteDocument {
	return &NoteDocument{
		ID:         note.ID,
		OwnerID:    note.OwnerID,
		Title:      note.Title,
		Content:    note.Content,
		Visibility: string(note.Visibility),
		Tags:       note.Tags,
		CreatedAt:  note.CreatedAt.UnixMilli(),
		UpdatedAt:  note.UpdatedAt.UnixMilli(),
	}
}
