package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/quillhq/quill-server/internal/store"
)

func TestFindOrCreateTagBySlug(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tag, created, err := s.FindOrCreateTagBySlug(ctx, "work")
	if err != nil {
		t.Fatalf("FindOrCreateTagBySlug: %v", err)
	}
	if !created {
		t.Error("expected created=true on first call")
	}
	if tag.Slug != "work" {
		t.Errorf("Slug: got %q, want work", tag.Slug)
	}

	again, created, err := s.FindOrCreateTagBySlug(ctx, "work")
	if err != nil {
		t.Fatalf("FindOrCreateTagBySlug (second): %v", err)
	}
	if created {
		t.Error("expected created=false on second call")
	}
	if again.ID != tag.ID {
		t.Errorf("expected same tag, got %q vs %q", again.ID, tag.ID)
	}
}

func TestGetTagBySlug_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetTagBySlug(context.Background(), "nope")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListTags_CountsNotes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := mustCreateUser(t, s, "tags@test.com")
	n1 := mustCreateNote(t, s, owner.ID, "first")
	n2 := mustCreateNote(t, s, owner.ID, "second")

	work, _, err := s.FindOrCreateTagBySlug(ctx, "work")
	if err != nil {
		t.Fatalf("FindOrCreateTagBySlug: %v", err)
	}
	idle, _, err := s.FindOrCreateTagBySlug(ctx, "idle")
	if err != nil {
		t.Fatalf("FindOrCreateTagBySlug: %v", err)
	}

	if err := s.SetNoteTags(ctx, n1.ID, []string{work.ID}); err != nil {
		t.Fatalf("SetNoteTags: %v", err)
	}
	if err := s.SetNoteTags(ctx, n2.ID, []string{work.ID, idle.ID}); err != nil {
		t.Fatalf("SetNoteTags: %v", err)
	}

	tags, err := s.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}

	counts := map[string]int{}
	for _, tag := range tags {
		counts[tag.Slug] = tag.NoteCount
	}
	if counts["work"] != 2 {
		t.Errorf("work count: got %d, want 2", counts["work"])
	}
	if counts["idle"] != 1 {
		t.Errorf("idle count: got %d, want 1", counts["idle"])
	}
}

func TestPopularTags_ScopedToOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alicetags@test.com")
	bob := mustCreateUser(t, s, "bobtags@test.com")

	a1 := mustCreateNote(t, s, alice.ID, "a1")
	a2 := mustCreateNote(t, s, alice.ID, "a2")
	b1 := mustCreateNote(t, s, bob.ID, "b1")

	shared, _, err := s.FindOrCreateTagBySlug(ctx, "shared-slug")
	if err != nil {
		t.Fatalf("FindOrCreateTagBySlug: %v", err)
	}
	rare, _, err := s.FindOrCreateTagBySlug(ctx, "rare")
	if err != nil {
		t.Fatalf("FindOrCreateTagBySlug: %v", err)
	}

	if err := s.SetNoteTags(ctx, a1.ID, []string{shared.ID}); err != nil {
		t.Fatalf("SetNoteTags: %v", err)
	}
	if err := s.SetNoteTags(ctx, a2.ID, []string{shared.ID, rare.ID}); err != nil {
		t.Fatalf("SetNoteTags: %v", err)
	}
	if err := s.SetNoteTags(ctx, b1.ID, []string{rare.ID}); err != nil {
		t.Fatalf("SetNoteTags: %v", err)
	}

	tags, err := s.PopularTags(ctx, alice.ID, 10)
	if err != nil {
		t.Fatalf("PopularTags: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(tags))
	}
	if tags[0].Slug != "shared-slug" || tags[0].NoteCount != 2 {
		t.Errorf("top tag: got %s/%d, want shared-slug/2", tags[0].Slug, tags[0].NoteCount)
	}
	// Bob's usage must not inflate Alice's counts.
	if tags[1].Slug != "rare" || tags[1].NoteCount != 1 {
		t.Errorf("second tag: got %s/%d, want rare/1", tags[1].Slug, tags[1].NoteCount)
	}
}

func TestPopularTags_RespectsLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := mustCreateUser(t, s, "limit@test.com")
	note := mustCreateNote(t, s, owner.ID, "crowded")

	var ids []string
	for _, slug := range []string{"one", "two", "three"} {
		tag, _, err := s.FindOrCreateTagBySlug(ctx, slug)
		if err != nil {
			t.Fatalf("FindOrCreateTagBySlug: %v", err)
		}
		ids = append(ids, tag.ID)
	}
	if err := s.SetNoteTags(ctx, note.ID, ids); err != nil {
		t.Fatalf("SetNoteTags: %v", err)
	}

	tags, err := s.PopularTags(ctx, owner.ID, 2)
	if err != nil {
		t.Fatalf("PopularTags: %v", err)
	}
	if len(tags) != 2 {
		t.Errorf("expected 2 tags, got %d", len(tags))
	}
}

func TestSetNoteTags_ReplacesSet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := mustCreateUser(t, s, "replace@test.com")
	note := mustCreateNote(t, s, owner.ID, "retagged")

	first, _, err := s.FindOrCreateTagBySlug(ctx, "first")
	if err != nil {
		t.Fatalf("FindOrCreateTagBySlug: %v", err)
	}
	second, _, err := s.FindOrCreateTagBySlug(ctx, "second")
	if err != nil {
		t.Fatalf("FindOrCreateTagBySlug: %v", err)
	}

	if err := s.SetNoteTags(ctx, note.ID, []string{first.ID}); err != nil {
		t.Fatalf("SetNoteTags: %v", err)
	}
	if err := s.SetNoteTags(ctx, note.ID, []string{second.ID}); err != nil {
		t.Fatalf("SetNoteTags (replace): %v", err)
	}

	got, err := s.GetNote(ctx, note.ID)
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "second" {
		t.Errorf("Tags: got %v, want [second]", got.Tags)
	}
}
