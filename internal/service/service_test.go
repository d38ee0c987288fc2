package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quillhq/quill-server/internal/auth"
	"github.com/quillhq/quill-server/internal/domain"
	domainerrors "github.com/quillhq/quill-server/internal/errors"
	"github.com/quillhq/quill-server/internal/search"
	"github.com/quillhq/quill-server/internal/store"
	"github.com/quillhq/quill-server/internal/store/sqlite"
)

type testEnv struct {
	store   store.Store
	index   *search.NoteIndex
	auth    *AuthService
	notes   *NoteService
	sharing *SharingService
	tags    *TagService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	dir := t.TempDir()

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)

	index, err := search.NewNoteIndex(search.Options{DataPath: dir, Logger: logger})
	require.NoError(t, err)
	st.SetSearchIndexer(search.NewIndexAdapter(index))

	t.Cleanup(func() {
		_ = st.Close()
		_ = index.Close()
	})

	tokens, err := auth.NewTokenService(strings.Repeat("ab", 32), 15*time.Minute)
	require.NoError(t, err)

	return &testEnv{
		store:   st,
		index:   index,
		auth:    NewAuthService(st, tokens, logger),
		notes:   NewNoteService(st, index, logger),
		sharing: NewSharingService(st, logger),
		tags:    NewTagService(st, logger),
	}
}

func (e *testEnv) registerUser(t *testing.T, email string) *domain.User {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), RegisterRequest{
		Email:    email,
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	return resp.User
}

func (e *testEnv) createNote(t *testing.T, ownerID, title string) *domain.Note {
	t.Helper()
	note, err := e.notes.Create(context.Background(), ownerID, CreateNoteRequest{
		Title:   title,
		Content: "some content",
	})
	require.NoError(t, err)
	return note
}

func (e *testEnv) shareNote(t *testing.T, ownerID, noteID, granteeEmail, permission string) *domain.ShareGrant {
	t.Helper()
	grant, err := e.sharing.Share(context.Background(), ownerID, noteID, ShareRequest{
		GranteeEmail: granteeEmail,
		Permission:   permission,
	})
	require.NoError(t, err)
	return grant
}

func assertCode(t *testing.T, err error, code domainerrors.Code) {
	t.Helper()
	var appErr *domainerrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code)
}
