package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNote_Validate_TokenInvariant(t *testing.T) {
	tests := []struct {
		name    string
		note    Note
		wantErr bool
	}{
		{"private without token", Note{ID: "n1", OwnerID: "u1", Visibility: VisibilityPrivate}, false},
		{"shared without token", Note{ID: "n1", OwnerID: "u1", Visibility: VisibilityShared}, false},
		{"public with token", Note{ID: "n1", OwnerID: "u1", Visibility: VisibilityPublic, PublicToken: "tok"}, false},
		{"public without token", Note{ID: "n1", OwnerID: "u1", Visibility: VisibilityPublic}, true},
		{"private with token", Note{ID: "n1", OwnerID: "u1", Visibility: VisibilityPrivate, PublicToken: "tok"}, true},
		{"no owner", Note{ID: "n1", Visibility: VisibilityPrivate}, true},
		{"unknown visibility", Note{ID: "n1", OwnerID: "u1", Visibility: "secret"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.note.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseVisibility(t *testing.T) {
	for _, valid := range []string{"private", "shared", "public"} {
		v, ok := ParseVisibility(valid)
		assert.True(t, ok)
		assert.Equal(t, Visibility(valid), v)
	}

	_, ok := ParseVisibility("prive")
	assert.False(t, ok)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Go Lang", "go-lang"},
		{"  Reading List  ", "reading-list"},
		{"Café", "cafe"},
		{"already-a-slug", "already-a-slug"},
		{"Sci-Fi/Fantasy", "sci-fi-fantasy"},
		{"UPPER", "upper"},
		{"a  b   c", "a-b-c"},
		{"", ""},
		{"---", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}
