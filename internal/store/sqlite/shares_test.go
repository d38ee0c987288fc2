package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quillhq/quill-server/internal/domain"
	"github.com/quillhq/quill-server/internal/store"
)

func makeTestGrant(id, noteID, granterID, granteeID string, perm domain.SharePermission) *domain.ShareGrant {
	return &domain.ShareGrant{
		ID:         id,
		NoteID:     noteID,
		GranterID:  granterID,
		GranteeID:  granteeID,
		Permission: perm,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestCreateAndGetShare(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := mustCreateUser(t, s, "owner@test.com")
	grantee := mustCreateUser(t, s, "grantee@test.com")
	note := mustCreateNote(t, s, owner.ID, "to share")

	grant := makeTestGrant("share-1", note.ID, owner.ID, grantee.ID, domain.PermissionEdit)
	if err := s.CreateShare(ctx, grant); err != nil {
		t.Fatalf("CreateShare: %v", err)
	}

	got, err := s.GetShare(ctx, note.ID, grantee.ID)
	if err != nil {
		t.Fatalf("GetShare: %v", err)
	}
	if got.Permission != domain.PermissionEdit {
		t.Errorf("Permission: got %v, want edit", got.Permission)
	}
	if got.GranterID != owner.ID {
		t.Errorf("GranterID: got %q, want %q", got.GranterID, owner.ID)
	}
}

func TestCreateShare_Duplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := mustCreateUser(t, s, "dup@test.com")
	grantee := mustCreateUser(t, s, "dupgrantee@test.com")
	note := mustCreateNote(t, s, owner.ID, "shared once")

	first := makeTestGrant("share-1", note.ID, owner.ID, grantee.ID, domain.PermissionRead)
	if err := s.CreateShare(ctx, first); err != nil {
		t.Fatalf("CreateShare: %v", err)
	}

	// Same (note, grantee) pair under a different ID must be rejected.
	second := makeTestGrant("share-2", note.ID, owner.ID, grantee.ID, domain.PermissionEdit)
	if err := s.CreateShare(ctx, second); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	// The original grant must be untouched.
	got, err := s.GetShare(ctx, note.ID, grantee.ID)
	if err != nil {
		t.Fatalf("GetShare: %v", err)
	}
	if got.Permission != domain.PermissionRead {
		t.Errorf("Permission changed by rejected duplicate: %v", got.Permission)
	}

	grants, err := s.ListSharesForNote(ctx, note.ID)
	if err != nil {
		t.Fatalf("ListSharesForNote: %v", err)
	}
	if len(grants) != 1 {
		t.Errorf("expected 1 grant, got %d", len(grants))
	}
}

func TestGetShare_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetShare(context.Background(), "note-x", "user-y")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListSharesForNote_OldestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := mustCreateUser(t, s, "list@test.com")
	first := mustCreateUser(t, s, "first@test.com")
	second := mustCreateUser(t, s, "second@test.com")
	note := mustCreateNote(t, s, owner.ID, "twice shared")

	base := time.Now().UTC()
	g1 := makeTestGrant("share-1", note.ID, owner.ID, first.ID, domain.PermissionRead)
	g1.CreatedAt = base
	g2 := makeTestGrant("share-2", note.ID, owner.ID, second.ID, domain.PermissionEdit)
	g2.CreatedAt = base.Add(time.Second)

	if err := s.CreateShare(ctx, g1); err != nil {
		t.Fatalf("CreateShare: %v", err)
	}
	if err := s.CreateShare(ctx, g2); err != nil {
		t.Fatalf("CreateShare: %v", err)
	}

	grants, err := s.ListSharesForNote(ctx, note.ID)
	if err != nil {
		t.Fatalf("ListSharesForNote: %v", err)
	}
	if len(grants) != 2 {
		t.Fatalf("expected 2 grants, got %d", len(grants))
	}
	if grants[0].GranteeID != first.ID || grants[1].GranteeID != second.ID {
		t.Errorf("wrong order: %s, %s", grants[0].GranteeID, grants[1].GranteeID)
	}
}

func TestDeleteShare(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := mustCreateUser(t, s, "del2@test.com")
	grantee := mustCreateUser(t, s, "del2grantee@test.com")
	note := mustCreateNote(t, s, owner.ID, "revocable")

	grant := makeTestGrant("share-1", note.ID, owner.ID, grantee.ID, domain.PermissionRead)
	if err := s.CreateShare(ctx, grant); err != nil {
		t.Fatalf("CreateShare: %v", err)
	}

	if err := s.DeleteShare(ctx, note.ID, grantee.ID); err != nil {
		t.Fatalf("DeleteShare: %v", err)
	}
	if _, err := s.GetShare(ctx, note.ID, grantee.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting again reports the grant as missing.
	if err := s.DeleteShare(ctx, note.ID, grantee.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
