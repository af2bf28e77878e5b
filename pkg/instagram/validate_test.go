package instagram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	igerrors "igauth/pkg/errors"
)

func TestValidateComment(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"plain", "Nice shot!", false},
		{"empty", "", false},
		{"exactly 300 characters", strings.Repeat("a", 300), false},
		{"300 multibyte characters", strings.Repeat("é", 300), false},
		{"301 characters", strings.Repeat("a", 301), true},
		{"four hashtags", "#a #b #c #d", false},
		{"five hashtags", "#a #b #c #d #e", true},
		{"one url", "see http://example.com", false},
		{"two urls", "http://a.com and http://b.com", true},
		{"https is not counted", "https://a.com https://b.com", false},
		{"all capitals", "HELLO WORLD", true},
		{"mixed case", "Hello #world", false},
		{"digits only", "12345", false},
		{"punctuation only", "!!! ???", false},
		{"capitals with digits", "GO 2024", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateComment(tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, igerrors.ErrInvalidParameter)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRelationshipActionValid(t *testing.T) {
	for _, a := range []RelationshipAction{ActionFollow, ActionUnfollow, ActionApprove, ActionIgnore} {
		assert.True(t, a.Valid(), string(a))
	}
	assert.False(t, RelationshipAction("block").Valid())
	assert.False(t, RelationshipAction("").Valid())
}
