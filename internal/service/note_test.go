package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhq/quill-server/internal/domain"
	domainerrors "github.com/quillhq/quill-server/internal/errors"
)

func strPtr(s string) *string { return &s }

func TestCreateNote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice@example.com")

	note, err := env.notes.Create(ctx, alice.ID, CreateNoteRequest{
		Title:   "Meeting Notes",
		Content: "Discuss roadmap",
		Tags:    []string{"Work", "work", "Q3 Planning"},
	})
	require.NoError(t, err)

	assert.Equal(t, alice.ID, note.OwnerID)
	assert.Equal(t, domain.VisibilityPrivate, note.Visibility)
	assert.Empty(t, note.PublicToken)
	// Tags are slugified and deduplicated.
	assert.Equal(t, []string{"work", "q3-planning"}, note.Tags)
}

func TestCreateNote_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice@example.com")

	_, err := env.notes.Create(ctx, alice.ID, CreateNoteRequest{Title: ""})
	assertCode(t, err, domainerrors.CodeValidation)

	_, err = env.notes.Create(ctx, "", CreateNoteRequest{Title: "No caller"})
	assertCode(t, err, domainerrors.CodeUnauthorized)
}

func TestGetNote_Owner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice@example.com")
	note := env.createNote(t, alice.ID, "Private Thoughts")

	got, err := env.notes.Get(ctx, alice.ID, note.ID)
	require.NoError(t, err)
	assert.Equal(t, note.ID, got.ID)
}

func TestGetNote_HidesInaccessibleNotes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice@example.com")
	bob := env.registerUser(t, "bob@example.com")
	note := env.createNote(t, alice.ID, "Private Thoughts")

	// A note bob cannot read must look exactly like a note that
	// does not exist.
	_, errDenied := env.notes.Get(ctx, bob.ID, note.ID)
	_, errMissing := env.notes.Get(ctx, bob.ID, "note-does-not-exist")

	assertCode(t, errDenied, domainerrors.CodeNotFound)
	assertCode(t, errMissing, domainerrors.CodeNotFound)

	var denied, missing *domainerrors.Error
	require.ErrorAs(t, errDenied, &denied)
	require.ErrorAs(t, errMissing, &missing)
	assert.Equal(t, missing.Message, denied.Message)
}

func TestGetNote_ReadGrant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice@example.com")
	bob := env.registerUser(t, "bob@example.com")
	note := env.createNote(t, alice.ID, "Shared Doc")
	env.shareNote(t, alice.ID, note.ID, "bob@example.com", "read")

	got, err := env.notes.Get(ctx, bob.ID, note.ID)
	require.NoError(t, err)
	assert.Equal(t, note.ID, got.ID)

	// A grant for bob does nothing for anyone else.
	carol := env.registerUser(t, "carol@example.com")
	_, err = env.notes.Get(ctx, carol.ID, note.ID)
	assertCode(t, err, domainerrors.CodeNotFound)
}

func TestGetNote_PublicReadableByAnyone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice@example.com")
	bob := env.registerUser(t, "bob@example.com")
	note := env.createNote(t, alice.ID, "Published Post")

	_, err := env.sharing.CreatePublicLink(ctx, alice.ID, note.ID)
	require.NoError(t, err)

	got, err := env.notes.Get(ctx, bob.ID, note.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VisibilityPublic, got.Visibility)

	// Even without any identity at all.
	_, err = env.notes.Get(ctx, "", note.ID)
	require.NoError(t, err)
}

func TestListOwnNotes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice@example.com")
	bob := env.registerUser(t, "bob@example.com")
	env.createNote(t, alice.ID, "First")
	env.createNote(t, alice.ID, "Second")
	env.createNote(t, bob.ID, "Not Alice's")

	notes, err := env.notes.ListOwn(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 2)
	for _, n := range notes {
		assert.Equal(t, alice.ID, n.OwnerID)
	}
}

func TestFilterByVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice@example.com")
	env.createNote(t, alice.ID, "Private One")
	shared, err := env.notes.Create(ctx, alice.ID, CreateNoteRequest{
		Title:      "Shared One",
		Visibility: "shared",
	})
	require.NoError(t, err)

	notes, err := env.notes.FilterByVisibility(ctx, alice.ID, "shared")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, shared.ID, notes[0].ID)

	_, err = env.notes.FilterByVisibility(ctx, alice.ID, "bogus")
	assertCode(t, err, domainerrors.CodeValidation)
}

func TestFilterByTag(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice@example.com")

	tagged, err := env.notes.Create(ctx, alice.ID, CreateNoteRequest{
		Title: "Recipe",
		Tags:  []string{"Cooking"},
	})
	require.NoError(t, err)
	env.createNote(t, alice.ID, "Untagged")

	// Raw tag input is normalized before matching.
	notes, err := env.notes.FilterByTag(ctx, alice.ID, "  Cooking  ")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, tagged.ID, notes[0].ID)

	_, err = env.notes.FilterByTag(ctx, alice.ID, "!!!")
	assertCode(t, err, domainerrors.CodeValidation)
}

func TestSearchNotes_ScopedToCaller(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice@example.com")
	bob := env.registerUser(t, "bob@example.com")

	env.createNote(t, alice.ID, "Kubernetes cluster upgrade")
	env.createNote(t, bob.ID, "Kubernetes for beginners")

	result, err := env.notes.Search(ctx, alice.ID, SearchRequest{Query: "kubernetes"})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "Kubernetes cluster upgrade", result.Hits[0].Title)
}

func TestUpdateNote_Owner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice@example.com")
	note := env.createNote(t, alice.ID, "Draft")

	updated, err := env.notes.Update(ctx, alice.ID, note.ID, UpdateNoteRequest{
		Title:   strPtr("Final"),
		Content: strPtr("Done."),
	})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, "Done.", updated.Content)

	got, err := env.notes.Get(ctx, alice.ID, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Title)
}

func TestUpdateNote_EditGrant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice@example.com")
	bob := env.registerUser(t, "bob@example.com")
	note := env.createNote(t, alice.ID, "Collab Doc")
	env.shareNote(t, alice.ID, note.ID, "bob@example.com", "edit")

	updated, err := env.notes.Update(ctx, bob.ID, note.ID, UpdateNoteRequest{
		Content: strPtr("Bob was here."),
	})
	require.NoError(t, err)
	assert.Equal(t, "Bob was here.", updated.Content)
}

func TestUpdateNote_ReadGrantForbidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice@example.com")
	bob := env.registerUser(t, "bob@example.com")
	note := env.createNote(t, alice.ID, "Read Only")
	env.shareNote(t, alice.ID, note.ID, "bob@example.com", "read")

	// Bob can see the note exists, so he gets forbidden, not not-found.
	_, err := env.notes.Update(ctx, bob.ID, note.ID, UpdateNoteRequest{
		Content: strPtr("sneaky edit"),
	})
	assertCode(t, err, domainerrors.CodeForbidden)
}

func TestUpdateNote_VisibilityOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice@example.com")
	bob := env.registerUser(t, "bob@example.com")
	note := env.createNote(t, alice.ID, "Collab Doc")
	env.shareNote(t, alice.ID, note.ID, "bob@example.com", "edit")

	// Edit access covers content, never visibility.
	_, err := env.notes.Update(ctx, bob.ID, note.ID, UpdateNoteRequest{
		Visibility: strPtr("shared"),
	})
	assertCode(t, err, domainerrors.CodeForbidden)

	updated, err := env.notes.Update(ctx, alice.ID, note.ID, UpdateNoteRequest{
		Visibility: strPtr("shared"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.VisibilityShared, updated.Visibility)
}

func TestUpdateNote_PublicVisibilityLocked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice@example.com")
	note := env.createNote(t, alice.ID, "Published")

	_, err := env.sharing.CreatePublicLink(ctx, alice.ID, note.ID)
	require.NoError(t, err)

	// Leaving the public state goes through RevokePublicLink, not Update.
	_, err = env.notes.Update(ctx, alice.ID, note.ID, UpdateNoteRequest{
		Visibility: strPtr("private"),
	})
	assertCode(t, err, domainerrors.CodeValidation)

	// Entering it through Update is rejected outright by validation.
	other := env.createNote(t, alice.ID, "Unpublished")
	_, err = env.notes.Update(ctx, alice.ID, other.ID, UpdateNoteRequest{
		Visibility: strPtr("public"),
	})
	assertCode(t, err, domainerrors.CodeValidation)
}

func TestUpdateNote_ReplacesTags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice@example.com")

	note, err := env.notes.Create(ctx, alice.ID, CreateNoteRequest{
		Title: "Tagged",
		Tags:  []string{"old"},
	})
	require.NoError(t, err)

	newTags := []string{"Fresh", "Ideas"}
	updated, err := env.notes.Update(ctx, alice.ID, note.ID, UpdateNoteRequest{
		Tags: &newTags,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh", "ideas"}, updated.Tags)
}

func TestDeleteNote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice@example.com")
	note := env.createNote(t, alice.ID, "Doomed")

	require.NoError(t, env.notes.Delete(ctx, alice.ID, note.ID))

	_, err := env.notes.Get(ctx, alice.ID, note.ID)
	assertCode(t, err, domainerrors.CodeNotFound)
}

func TestDeleteNote_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice@example.com")
	bob := env.registerUser(t, "bob@example.com")
	note := env.createNote(t, alice.ID, "Protected")
	env.shareNote(t, alice.ID, note.ID, "bob@example.com", "edit")

	err := env.notes.Delete(ctx, bob.ID, note.ID)
	assertCode(t, err, domainerrors.CodeForbidden)

	// Still there for the owner.
	_, err = env.notes.Get(ctx, alice.ID, note.ID)
	require.NoError(t, err)
}
