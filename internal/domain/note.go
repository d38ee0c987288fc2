package domain

import (
	"fmt"
	"time"
)

// Visibility controls who can see a note beyond its owner.
type Visibility string

const (
	// VisibilityPrivate means only the owner (and direct grantees) can see the note.
	VisibilityPrivate Visibility = "private"
	// VisibilityShared means the note has at least one direct share grant.
	VisibilityShared Visibility = "shared"
	// VisibilityPublic means the note is readable by anyone holding its token.
	VisibilityPublic Visibility = "public"
)

// ParseVisibility converts a string to a Visibility.
func ParseVisibility(s string) (Visibility, bool) {
	switch Visibility(s) {
	case VisibilityPrivate, VisibilityShared, VisibilityPublic:
		return Visibility(s), true
	default:
		return VisibilityPrivate, false
	}
}

// Note is a user-owned document. OwnerID is set at creation and never
// changes; ownership is non-transferable.
//
// Invariant: PublicToken is non-empty if and only if Visibility is public.
// Every mutation that touches either field must preserve this.
type Note struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Visibility  Visibility `json:"visibility"`
	PublicToken string     `json:"public_token,omitempty"`
	Tags        []string   `json:"tags"` // Normalized tag slugs, order-irrelevant
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsOwnedBy returns true if the given user owns this note.
func (n *Note) IsOwnedBy(userID string) bool {
	return n.OwnerID == userID
}

// IsPublic returns true if the note is publicly visible.
func (n *Note) IsPublic() bool {
	return n.Visibility == VisibilityPublic
}

// Touch updates the UpdatedAt timestamp to the current time.
func (n *Note) Touch() {
	n.UpdatedAt = time.Now()
}

// Validate checks the note's internal consistency.
func (n *Note) Validate() error {
	if n.OwnerID == "" {
		return fmt.Errorf("note %s has no owner", n.ID)
	}
	if _, ok := ParseVisibility(string(n.Visibility)); !ok {
		return fmt.Errorf("note %s has unknown visibility %q", n.ID, n.Visibility)
	}
	if (n.PublicToken != "") != (n.Visibility == VisibilityPublic) {
		return fmt.Errorf("note %s: public token and visibility disagree", n.ID)
	}
	return nil
}
