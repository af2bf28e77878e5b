package instagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name     string
		template string
		values   []string
		expected string
	}{
		{
			name:     "no placeholders",
			template: "users/self",
			expected: "https://api.instagram.com/v1/users/self?access_token=tok",
		},
		{
			name:     "path value",
			template: "users/%s/media/recent",
			values:   []string{"123"},
			expected: "https://api.instagram.com/v1/users/123/media/recent?access_token=tok",
		},
		{
			name:     "path value is path escaped",
			template: "tags/%s",
			values:   []string{"a b/c"},
			expected: "https://api.instagram.com/v1/tags/a%20b%2Fc?access_token=tok",
		},
		{
			name:     "query value is query escaped",
			template: "users/search?q=%s",
			values:   []string{"jack & jill"},
			expected: "https://api.instagram.com/v1/users/search?q=jack+%26+jill&access_token=tok",
		},
		{
			name:     "two values",
			template: "media/search?lat=%s&lng=%s",
			values:   []string{"48.85", "2.35"},
			expected: "https://api.instagram.com/v1/media/search?lat=48.85&lng=2.35&access_token=tok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveURL("https://api.instagram.com/", "v1", tt.template, "tok", tt.values...)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveURLIsDeterministic(t *testing.T) {
	a := ResolveURL("https://api.instagram.com", "v1", "media/%s/comments/%s", "t", "1", "2")
	b := ResolveURL("https://api.instagram.com", "v1", "media/%s/comments/%s", "t", "1", "2")
	assert.Equal(t, a, b)
}

func TestResolveURLEscapesToken(t *testing.T) {
	got := ResolveURL("https://api.instagram.com", "v1", "users/self", "a+b=c")
	assert.Equal(t, "https://api.instagram.com/v1/users/self?access_token=a%2Bb%3Dc", got)
}

func TestResolveURLPanicsOnCountMismatch(t *testing.T) {
	assert.Panics(t, func() {
		ResolveURL("https://api.instagram.com", "v1", "users/%s", "tok")
	})
	assert.Panics(t, func() {
		ResolveURL("https://api.instagram.com", "v1", "users/self", "tok", "extra")
	})
}

func TestAppendQuery(t *testing.T) {
	params := map[string]string{"b": "x y", "a": "1"}

	t.Run("legacy", func(t *testing.T) {
		got := AppendQuery("https://h/p?access_token=t", "&", params, EncodingLegacy)
		assert.Equal(t, "https://h/p?access_token=t&a=1&b=x+y", got)
	})

	t.Run("rfc3986", func(t *testing.T) {
		got := AppendQuery("https://h/p", "?", params, EncodingRFC3986)
		assert.Equal(t, "https://h/p?a=1&b=x%20y", got)
	})

	t.Run("empty params", func(t *testing.T) {
		assert.Equal(t, "https://h/p", AppendQuery("https://h/p", "?", nil, EncodingLegacy))
	})
}
