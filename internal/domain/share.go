package domain

import (
	"fmt"
	"strings"
	"time"
)

// ShareGrant is a directed edge authorizing one user (the grantee) to access
// another user's note. The granter must be the note's owner at grant time,
// the grantee is never the granter, and at most one active grant exists per
// (note, grantee) pair; re-sharing requires an explicit unshare first.
type ShareGrant struct {
	ID         string          `json:"id"`
	NoteID     string          `json:"note_id"`
	GranterID  string          `json:"granter_id"`
	GranteeID  string          `json:"grantee_id"`
	Permission SharePermission `json:"permission"`
	CreatedAt  time.Time       `json:"created_at"`
}

// SharePermission defines the level of access a grant confers.
// Permission is monotonic: edit implies read. Neither level ever implies
// delete or share; those stay with the owner.
type SharePermission int

const (
	// PermissionRead allows viewing the note.
	PermissionRead SharePermission = iota
	// PermissionEdit allows viewing and modifying the note.
	PermissionEdit
)

// String returns the string representation of the permission level.
func (sp SharePermission) String() string {
	switch sp {
	case PermissionRead:
		return "read"
	case PermissionEdit:
		return "edit"
	default:
		return "unknown"
	}
}

// ParseSharePermission converts a string to SharePermission.
func ParseSharePermission(s string) (SharePermission, bool) {
	switch s {
	case "read":
		return PermissionRead, true
	case "edit":
		return PermissionEdit, true
	default:
		return PermissionRead, false
	}
}

// MarshalJSON serializes the permission as its string form.
func (sp SharePermission) MarshalJSON() ([]byte, error) {
	return []byte(`"` + sp.String() + `"`), nil
}

// UnmarshalJSON parses a permission from its string form.
func (sp *SharePermission) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, ok := ParseSharePermission(s)
	if !ok {
		return fmt.Errorf("unknown share permission %q", s)
	}
	*sp = parsed
	return nil
}

// CanRead returns true if the permission allows reading.
func (sp SharePermission) CanRead() bool {
	return sp == PermissionRead || sp == PermissionEdit
}

// CanEdit returns true if the permission allows editing.
func (sp SharePermission) CanEdit() bool {
	return sp == PermissionEdit
}
