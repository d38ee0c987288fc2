package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/quillhq/quill-server/internal/domain"
	domainerrors "github.com/quillhq/quill-server/internal/errors"
	"github.com/quillhq/quill-server/internal/id"
	"github.com/quillhq/quill-server/internal/store"
)

// SharingService orchestrates share grants and public links.
// Only a note's owner can grant, revoke, or inspect access to it.
type SharingService struct {
	store  store.Store
	logger *slog.Logger
}

// NewSharingService creates a new sharing service.
func NewSharingService(store store.Store, logger *slog.Logger) *SharingService {
	return &SharingService{
		store:  store,
		logger: logger,
	}
}

// ShareRequest identifies the grantee and the permission to grant.
type ShareRequest struct {
	GranteeEmail string `json:"grantee_email" validate:"required,email"`
	Permission   string `json:"permission" validate:"required,oneof=read edit"`
}

// Share grants another user access to a note. The caller must own the note.
// Sharing with a user who already holds a grant is rejected; use Unshare
// first to change a permission.
func (s *SharingService) Share(ctx context.Context, callerID, noteID string, req ShareRequest) (*domain.ShareGrant, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}
	permission, _ := domain.ParseSharePermission(req.Permission)

	note, err := s.requireOwned(ctx, callerID, noteID, domain.ActionShare)
	if err != nil {
		return nil, err
	}

	grantee, err := s.store.GetUserByEmail(ctx, req.GranteeEmail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("lookup grantee: %w", err)
	}

	if grantee.ID == callerID {
		return nil, domainerrors.Validation("cannot share a note with yourself")
	}

	grantID, err := id.Generate("share")
	if err != nil {
		return nil, fmt.Errorf("generate share ID: %w", err)
	}

	grant := &domain.ShareGrant{
		ID:         grantID,
		NoteID:     note.ID,
		GranterID:  callerID,
		GranteeID:  grantee.ID,
		Permission: permission,
		CreatedAt:  time.Now(),
	}

	if err := s.store.CreateShare(ctx, grant); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Validation("note is already shared with this user")
		}
		return nil, fmt.Errorf("create share: %w", err)
	}

	s.logger.Info("note shared",
		"note_id", noteID,
		"granter_id", callerID,
		"grantee_id", grantee.ID,
		"permission", permission.String(),
	)

	return grant, nil
}

// Unshare revokes a user's grant on a note, identified by the grantee's
// email. The caller must own the note.
func (s *SharingService) Unshare(ctx context.Context, callerID, noteID, granteeEmail string) error {
	if _, err := s.requireOwned(ctx, callerID, noteID, domain.ActionShare); err != nil {
		return err
	}

	grantee, err := s.store.GetUserByEmail(ctx, granteeEmail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("user not found")
		}
		return fmt.Errorf("lookup grantee: %w", err)
	}

	if err := s.store.DeleteShare(ctx, noteID, grantee.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("share not found")
		}
		return fmt.Errorf("delete share: %w", err)
	}

	s.logger.Info("note unshared",
		"note_id", noteID,
		"granter_id", callerID,
		"grantee_id", grantee.ID,
	)

	return nil
}

// ListShares returns all grants on a note, oldest first.
// The caller must own the note.
func (s *SharingService) ListShares(ctx context.Context, callerID, noteID string) ([]*domain.ShareGrant, error) {
	if _, err := s.requireOwned(ctx, callerID, noteID, domain.ActionShare); err != nil {
		return nil, err
	}

	grants, err := s.store.ListSharesForNote(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	return grants, nil
}

// ListSharedWithMe returns the notes other users have shared with the caller.
func (s *SharingService) ListSharedWithMe(ctx context.Context, callerID string) ([]*domain.Note, error) {
	if callerID == "" {
		return nil, domainerrors.Unauthorized("authentication required")
	}
	notes, err := s.store.ListNotesSharedWith(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list shared notes: %w", err)
	}
	return notes, nil
}

// CreatePublicLink publishes a note and returns it with its public token.
// Calling it again on an already public note returns the existing token
// rather than rotating it.
func (s *SharingService) CreatePublicLink(ctx context.Context, callerID, noteID string) (*domain.Note, error) {
	if _, err := s.requireOwned(ctx, callerID, noteID, domain.ActionShare); err != nil {
		return nil, err
	}

	token, err := id.GeneratePublicToken()
	if err != nil {
		return nil, fmt.Errorf("generate public token: %w", err)
	}

	note, err := s.store.PublishNote(ctx, noteID, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("note not found")
		}
		return nil, fmt.Errorf("publish note: %w", err)
	}

	s.logger.Info("public link created", "note_id", noteID, "owner_id", callerID)

	return note, nil
}

// RevokePublicLink removes a note's public link, making the token
// permanently invalid. Revoking a note that has no public link is an error.
func (s *SharingService) RevokePublicLink(ctx context.Context, callerID, noteID string) error {
	if _, err := s.requireOwned(ctx, callerID, noteID, domain.ActionShare); err != nil {
		return err
	}

	if err := s.store.UnpublishNote(ctx, noteID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// The note exists (ownership was just verified); it has no link.
			return domainerrors.Validation("note has no public link")
		}
		return fmt.Errorf("unpublish note: %w", err)
	}

	s.logger.Info("public link revoked", "note_id", noteID, "owner_id", callerID)

	return nil
}

// ResolvePublicNote returns the note behind a public token, without any
// authentication. Revoked and unknown tokens are indistinguishable.
func (s *SharingService) ResolvePublicNote(ctx context.Context, token string) (*domain.Note, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domainerrors.Validation("token is required")
	}

	note, err := s.store.GetNoteByPublicToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("note not found")
		}
		return nil, fmt.Errorf("resolve public note: %w", err)
	}

	return note, nil
}

// requireOwned fetches a note and verifies the caller may perform the
// given owner-only action. Notes the caller cannot read at all surface
// as not found; readable but non-owned notes surface as forbidden.
func (s *SharingService) requireOwned(ctx context.Context, callerID, noteID string, action domain.Action) (*domain.Note, error) {
	note, err := s.store.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("note not found")
		}
		return nil, fmt.Errorf("get note: %w", err)
	}

	grant, err := s.loadGrant(ctx, noteID, callerID)
	if err != nil {
		return nil, err
	}

	if !domain.Evaluate(callerID, note, grant, domain.ActionRead).Allowed() {
		return nil, domainerrors.NotFound("note not found")
	}
	if !domain.Evaluate(callerID, note, grant, action).Allowed() {
		return nil, domainerrors.Forbidden("only the owner can manage sharing")
	}

	return note, nil
}

func (s *SharingService) loadGrant(ctx context.Context, noteID, callerID string) (*domain.ShareGrant, error) {
	if callerID == "" {
		return nil, nil
	}
	grant, err := s.store.GetShare(ctx, noteID, callerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get share: %w", err)
	}
	return grant, nil
}
