package domain

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Tag is a global label for categorizing notes.
// Tags are shared across all users with no ownership model. They are created
// lazily the first time any note uses them, deduplicated by slug.
// Slug is the source of truth; clients transform it for display.
type Tag struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`       // Canonical form: lowercase, hyphenated
	NoteCount int       `json:"note_count"` // Denormalized count of notes with this tag
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now()
}

// NoteTag represents the many-to-many relationship between notes and tags.
// Note-level, not user-scoped: all users see the same tags on a note.
type NoteTag struct {
	NoteID    string    `json:"note_id"`
	TagID     string    `json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	// Matches any non-alphanumeric character.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	// Matches multiple hyphens.
	multipleHyphens = regexp.MustCompile(`-+`)
)

// Slugify converts a tag name to its canonical slug.
// "Go Lang" -> "go-lang".
// "  Reading List  " -> "reading-list".
// "Café" -> "cafe".
func Slugify(s string) string {
	// Normalize unicode (decompose accented characters).
	s = norm.NFKD.String(s)

	// Remove non-ASCII characters.
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	// Lowercase.
	s = strings.ToLower(s)

	// Replace non-alphanumeric with hyphens.
	s = nonAlphanumeric.ReplaceAllString(s, "-")

	// Collapse multiple hyphens.
	s = multipleHyphens.ReplaceAllString(s, "-")

	// Trim leading/trailing hyphens.
	s = strings.Trim(s, "-")

	return s
}
