package domain

// Action is an operation a caller wants to perform on a note.
type Action int

const (
	// ActionRead is viewing a note's content.
	ActionRead Action = iota
	// ActionEdit is modifying a note's title, content, tags, or visibility.
	ActionEdit
	// ActionDelete is removing a note entirely.
	ActionDelete
	// ActionShare is granting or revoking access for other users.
	ActionShare
)

// String returns the string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionRead:
		return "read"
	case ActionEdit:
		return "edit"
	case ActionDelete:
		return "delete"
	case ActionShare:
		return "share"
	default:
		return "unknown"
	}
}

// Decision is the outcome of an access check.
type Decision int

const (
	// Deny rejects the action.
	Deny Decision = iota
	// Allow permits the action.
	Allow
)

// Allowed returns true if the decision permits the action.
func (d Decision) Allowed() bool {
	return d == Allow
}

// Evaluate decides whether a caller may perform an action on a note.
//
// grant is the caller's active share grant for this note, or nil if none
// exists. The function is pure: it inspects only its arguments, so callers
// must re-invoke it on every operation rather than caching decisions,
// since access can be revoked between calls.
//
// Rules, first match wins:
//   - delete, share: owner only. Ownership is non-transferable and
//     non-delegable; a grantee can never delete or re-share.
//   - edit: owner, or an active grant with edit permission.
//   - read: owner, or any active grant (edit implies read), or a public
//     note. The anonymous token path never reaches this function.
func Evaluate(callerID string, note *Note, grant *ShareGrant, action Action) Decision {
	if note == nil {
		return Deny
	}

	isOwner := callerID != "" && note.IsOwnedBy(callerID)

	// Ignore grants that don't actually bind this caller to this note.
	if grant != nil && (grant.NoteID != note.ID || grant.GranteeID != callerID) {
		grant = nil
	}

	switch action {
	case ActionDelete, ActionShare:
		if isOwner {
			return Allow
		}
		return Deny

	case ActionEdit:
		if isOwner {
			return Allow
		}
		if grant != nil && grant.Permission.CanEdit() {
			return Allow
		}
		return Deny

	case ActionRead:
		if isOwner {
			return Allow
		}
		if grant != nil && grant.Permission.CanRead() {
			return Allow
		}
		if note.IsPublic() {
			return Allow
		}
		return Deny

	default:
		return Deny
	}
}
