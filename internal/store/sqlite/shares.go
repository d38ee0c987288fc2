package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/quillhq/quill-server/internal/domain"
	"github.com/quillhq/quill-server/internal/store"
)

// shareColumns is the ordered list of columns selected in share grant queries.
// Must match the scan order in scanShare.
const shareColumns = `id, note_id, granter_id, grantee_id, permission, created_at`

// scanShare scans a sql.Row (or sql.Rows via its Scan method) into a domain.ShareGrant.
func scanShare(scanner interface{ Scan(dest ...any) error }) (*domain.ShareGrant, error) {
	var g domain.ShareGrant

	var (
		permission string
		createdAt  string
	)

	err := scanner.Scan(
		&g.ID,
		&g.NoteID,
		&g.GranterID,
		&g.GranteeID,
		&permission,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	g.Permission, _ = domain.ParseSharePermission(permission)

	g.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &g, nil
}

// CreateShare inserts a new share grant. The UNIQUE(note_id, grantee_id)
// constraint makes the duplicate check and the insert a single atomic
// operation: of two racing calls, exactly one succeeds.
// Returns store.ErrAlreadyExists if a grant for (note, grantee) exists.
func (s *Store) CreateShare(ctx context.Context, grant *domain.ShareGrant) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO share_grants (id, note_id, granter_id, grantee_id, permission, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		grant.ID,
		grant.NoteID,
		grant.GranterID,
		grant.GranteeID,
		grant.Permission.String(),
		formatTime(grant.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetShare retrieves the active grant for a (note, grantee) pair.
// Returns store.ErrNotFound if no grant exists.
func (s *Store) GetShare(ctx context.Context, noteID, granteeID string) (*domain.ShareGrant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shareColumns+` FROM share_grants WHERE note_id = ? AND grantee_id = ?`,
		noteID, granteeID)

	g, err := scanShare(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ListSharesForNote returns all active grants for a note, oldest first.
func (s *Store) ListSharesForNote(ctx context.Context, noteID string) ([]*domain.ShareGrant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+shareColumns+` FROM share_grants WHERE note_id = ? ORDER BY created_at ASC`,
		noteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []*domain.ShareGrant
	for rows.Next() {
		g, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if grants == nil {
		grants = []*domain.ShareGrant{}
	}

	return grants, nil
}

// DeleteShare removes the grant for a (note, grantee) pair.
// Returns store.ErrNotFound if no matching grant exists.
func (s *Store) DeleteShare(ctx context.Context, noteID, granteeID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM share_grants WHERE note_id = ? AND grantee_id = ?`,
		noteID, granteeID)
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
