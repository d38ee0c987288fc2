// Package store defines the persistence contract for the Quill server.
// The canonical implementation lives in store/sqlite.
package store

import (
	"context"

	"github.com/quillhq/quill-server/internal/domain"
)

// SearchIndexer is the interface for keeping the full-text index in sync
// with note mutations. The store calls it after successful writes so search
// never depends on callers remembering to index.
type SearchIndexer interface {
	IndexNote(ctx context.Context, note *domain.Note) error
	DeleteNote(ctx context.Context, noteID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexNote is a no-op.
func (NoopSearchIndexer) IndexNote(context.Context, *domain.Note) error { return nil }

// DeleteNote is a no-op.
func (NoopSearchIndexer) DeleteNote(context.Context, string) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}

// Store is the persistence interface the service layer depends on.
//
// Implementations must guarantee:
//   - CreateShare performs its duplicate check and insert atomically; two
//     concurrent calls for the same (note, grantee) pair never both succeed.
//   - PublishNote and UnpublishNote are single atomic check-and-write
//     operations on the note row.
//   - DeleteUser and DeleteNote cascade: removing a user removes all owned
//     notes and every grant referencing them or the user; removing a note
//     removes its grants and tag links.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id string) error

	// Notes
	CreateNote(ctx context.Context, note *domain.Note) error
	GetNote(ctx context.Context, id string) (*domain.Note, error)
	GetNoteByPublicToken(ctx context.Context, token string) (*domain.Note, error)
	ListNotesByOwner(ctx context.Context, ownerID string) ([]*domain.Note, error)
	ListAllNotes(ctx context.Context) ([]*domain.Note, error)
	ListNotesSharedWith(ctx context.Context, userID string) ([]*domain.Note, error)
	ListNotesByVisibility(ctx context.Context, ownerID string, visibility domain.Visibility) ([]*domain.Note, error)
	ListNotesByTag(ctx context.Context, ownerID, slug string) ([]*domain.Note, error)
	UpdateNote(ctx context.Context, note *domain.Note) error
	DeleteNote(ctx context.Context, id string) error
	PublishNote(ctx context.Context, noteID, token string) (*domain.Note, error)
	UnpublishNote(ctx context.Context, noteID string) error

	// Tags
	FindOrCreateTagBySlug(ctx context.Context, slug string) (*domain.Tag, bool, error)
	GetTagBySlug(ctx context.Context, slug string) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	PopularTags(ctx context.Context, ownerID string, limit int) ([]*domain.Tag, error)
	SetNoteTags(ctx context.Context, noteID string, tagIDs []string) error

	// Share grants
	CreateShare(ctx context.Context, grant *domain.ShareGrant) error
	GetShare(ctx context.Context, noteID, granteeID string) (*domain.ShareGrant, error)
	ListSharesForNote(ctx context.Context, noteID string) ([]*domain.ShareGrant, error)
	DeleteShare(ctx context.Context, noteID, granteeID string) error

	// Lifecycle
	SetSearchIndexer(indexer SearchIndexer)
	Close() error
}
