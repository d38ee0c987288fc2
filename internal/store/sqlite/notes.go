package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/quillhq/quill-server/internal/domain"
	"github.com/quillhq/quill-server/internal/store"
)

// noteColumns is the ordered list of columns selected in note queries.
// Must match the scan order in scanNote.
const noteColumns = `id, owner_id, title, content, visibility, public_token, created_at, updated_at`

// scanNote scans a sql.Row (or sql.Rows via its Scan method) into a domain.Note.
// Tags are left empty; loadNoteTags fills them.
func scanNote(scanner interface{ Scan(dest ...any) error }) (*domain.Note, error) {
	var n domain.Note

	var (
		visibility  string
		publicToken sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := scanner.Scan(
		&n.ID,
		&n.OwnerID,
		&n.Title,
		&n.Content,
		&visibility,
		&publicToken,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.Visibility = domain.Visibility(visibility)
	if publicToken.Valid {
		n.PublicToken = publicToken.String
	}

	n.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	n.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &n, nil
}

// loadNoteTags fills a note's Tags slice with its tag slugs, sorted.
func (s *Store) loadNoteTags(ctx context.Context, note *domain.Note) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.slug FROM tags t
		JOIN note_tags nt ON nt.tag_id = t.id
		WHERE nt.note_id = ?
		ORDER BY t.slug ASC`, note.ID)
	if err != nil {
		return fmt.Errorf("query note tags: %w", err)
	}
	defer rows.Close()

	note.Tags = []string{}
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return err
		}
		note.Tags = append(note.Tags, slug)
	}
	return rows.Err()
}

// CreateNote inserts a new note into the database and indexes it for search.
// Returns store.ErrAlreadyExists on duplicate ID or public token.
func (s *Store) CreateNote(ctx context.Context, note *domain.Note) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (id, owner_id, title, content, visibility, public_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		note.ID,
		note.OwnerID,
		note.Title,
		note.Content,
		string(note.Visibility),
		nullString(note.PublicToken),
		formatTime(note.CreatedAt),
		formatTime(note.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	if err := s.searchIndexer.IndexNote(ctx, note); err != nil {
		s.logger.Warn("failed to index note", "note_id", note.ID, "error", err)
	}

	return nil
}

// GetNote retrieves a note by ID with its tags.
// Returns store.ErrNotFound if the note does not exist.
func (s *Store) GetNote(ctx context.Context, id string) (*domain.Note, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)

	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadNoteTags(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// GetNoteByPublicToken retrieves a note by its public token.
// Visibility is re-checked in the query itself: a token left over on a note
// that is no longer public never resolves.
// Returns store.ErrNotFound if no public note carries the token.
func (s *Store) GetNoteByPublicToken(ctx context.Context, token string) (*domain.Note, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE public_token = ? AND visibility = 'public'`, token)

	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadNoteTags(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// queryNotes runs a query returning note rows and hydrates tags for each.
func (s *Store) queryNotes(ctx context.Context, query string, args ...any) ([]*domain.Note, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*domain.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, n := range notes {
		if err := s.loadNoteTags(ctx, n); err != nil {
			return nil, err
		}
	}

	if notes == nil {
		notes = []*domain.Note{}
	}
	return notes, nil
}

// ListNotesByOwner returns all notes owned by a user, most recently updated first.
func (s *Store) ListNotesByOwner(ctx context.Context, ownerID string) ([]*domain.Note, error) {
	return s.queryNotes(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE owner_id = ? ORDER BY updated_at DESC`, ownerID)
}

// ListAllNotes returns every note in the store. Used for search reindexing.
func (s *Store) ListAllNotes(ctx context.Context) ([]*domain.Note, error) {
	return s.queryNotes(ctx,
		`SELECT `+noteColumns+` FROM notes ORDER BY created_at ASC`)
}

// ListNotesSharedWith returns all notes shared with a user via active grants,
// most recently updated first.
func (s *Store) ListNotesSharedWith(ctx context.Context, userID string) ([]*domain.Note, error) {
	return s.queryNotes(ctx, `
		SELECT `+noteColumnsPrefixed("n")+` FROM notes n
		JOIN share_grants sg ON sg.note_id = n.id
		WHERE sg.grantee_id = ?
		ORDER BY n.updated_at DESC`, userID)
}

// ListNotesByVisibility returns a user's own notes filtered by visibility.
func (s *Store) ListNotesByVisibility(ctx context.Context, ownerID string, visibility domain.Visibility) ([]*domain.Note, error) {
	return s.queryNotes(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE owner_id = ? AND visibility = ? ORDER BY updated_at DESC`,
		ownerID, string(visibility))
}

// ListNotesByTag returns a user's own notes carrying the given tag slug.
func (s *Store) ListNotesByTag(ctx context.Context, ownerID, slug string) ([]*domain.Note, error) {
	return s.queryNotes(ctx, `
		SELECT `+noteColumnsPrefixed("n")+` FROM notes n
		JOIN note_tags nt ON nt.note_id = n.id
		JOIN tags t ON t.id = nt.tag_id
		WHERE n.owner_id = ? AND t.slug = ?
		ORDER BY n.updated_at DESC`, ownerID, slug)
}

// UpdateNote performs a full row update on an existing note and re-indexes it.
// OwnerID and CreatedAt are deliberately not part of the update: ownership is
// immutable after creation.
// Returns store.ErrNotFound if the note does not exist.
func (s *Store) UpdateNote(ctx context.Context, note *domain.Note) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notes SET
			title = ?,
			content = ?,
			visibility = ?,
			public_token = ?,
			updated_at = ?
		WHERE id = ?`,
		note.Title,
		note.Content,
		string(note.Visibility),
		nullString(note.PublicToken),
		formatTime(note.UpdatedAt),
		note.ID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}

	if err := s.searchIndexer.IndexNote(ctx, note); err != nil {
		s.logger.Warn("failed to re-index note", "note_id", note.ID, "error", err)
	}

	return nil
}

// DeleteNote removes a note permanently. Foreign keys cascade the delete to
// its share grants and tag links.
// Returns store.ErrNotFound if the note does not exist.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}

	if err := s.searchIndexer.DeleteNote(ctx, id); err != nil {
		s.logger.Warn("failed to remove note from search index", "note_id", id, "error", err)
	}

	return nil
}

// PublishNote makes a note public in a single atomic write. If the note
// already has a token it is preserved; otherwise the supplied token is
// stored. The updated note is returned, so callers see whichever token won.
// Returns store.ErrNotFound if the note does not exist.
func (s *Store) PublishNote(ctx context.Context, noteID, token string) (*domain.Note, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notes SET
			public_token = COALESCE(public_token, ?),
			visibility = 'public',
			updated_at = ?
		WHERE id = ?`,
		token,
		formatTime(nowUTC()),
		noteID,
	)
	if err != nil {
		return nil, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, store.ErrNotFound
	}

	note, err := s.GetNote(ctx, noteID)
	if err != nil {
		return nil, err
	}

	if err := s.searchIndexer.IndexNote(ctx, note); err != nil {
		s.logger.Warn("failed to re-index note", "note_id", note.ID, "error", err)
	}

	return note, nil
}

// UnpublishNote clears a note's token and sets visibility to private in a
// single atomic write. The WHERE clause carries the state check, so a
// concurrent revoke loses cleanly.
// Returns store.ErrNotFound if the note does not exist or is not public.
func (s *Store) UnpublishNote(ctx context.Context, noteID string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notes SET
			public_token = NULL,
			visibility = 'private',
			updated_at = ?
		WHERE id = ? AND visibility = 'public' AND public_token IS NOT NULL`,
		formatTime(nowUTC()),
		noteID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}

	return nil
}

// noteColumnsPrefixed returns noteColumns with each column qualified by a
// table alias, for joined queries.
func noteColumnsPrefixed(alias string) string {
	cols := strings.Split(noteColumns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}
