package sqlite

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/quillhq/quill-server/internal/domain"
	"github.com/quillhq/quill-server/internal/id"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.DiscardHandler)
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// makeTestUser creates a domain.User with sensible defaults for testing.
func makeTestUser(userID, email string) *domain.User {
	now := time.Now()
	return &domain.User{
		ID:           userID,
		Email:        email,
		PasswordHash: "$argon2id$fakehashfortest",
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// makeTestNote creates a private domain.Note owned by the given user.
func makeTestNote(noteID, ownerID, title string) *domain.Note {
	now := time.Now()
	return &domain.Note{
		ID:         noteID,
		OwnerID:    ownerID,
		Title:      title,
		Content:    "some content",
		Visibility: domain.VisibilityPrivate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// mustCreateUser inserts a user or fails the test.
func mustCreateUser(t *testing.T, s *Store, email string) *domain.User {
	t.Helper()
	u := makeTestUser(id.MustGenerate("user"), email)
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return u
}

// mustCreateNote inserts a note or fails the test.
func mustCreateNote(t *testing.T, s *Store, ownerID, title string) *domain.Note {
	t.Helper()
	n := makeTestNote(id.MustGenerate("note"), ownerID, title)
	if err := s.CreateNote(context.Background(), n); err != nil {
		t.Fatalf("CreateNote(%s): %v", title, err)
	}
	return n
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	// Verify WAL mode is set.
	var journalMode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	// Verify foreign keys are enabled.
	var fk int
	err = s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Error("expected foreign_keys=1")
	}
}

func TestOpen_SchemaIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	// Re-applying the schema must not fail or clobber data.
	u := mustCreateUser(t, s, "idempotent@test.com")

	if _, err := s.db.Exec(schemaSQL); err != nil {
		t.Fatalf("re-exec schema: %v", err)
	}

	got, err := s.GetUser(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetUser after schema re-run: %v", err)
	}
	if got.Email != u.Email {
		t.Errorf("Email: got %q, want %q", got.Email, u.Email)
	}
}
