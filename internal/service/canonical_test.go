package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalPosterURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"/api/poster/abc-123/image", "/api/poster/image/abc-123"},
		{"/api/poster/image/abc-123", "/api/poster/image/abc-123"},
		{"https://cdn.example/x.png", "https://cdn.example/x.png"},
		{PlaceholderPosterURL, PlaceholderPosterURL},
		{"/api/poster/a/b/image", "/api/poster/a/b/image"},
		{"/api/poster//image", "/api/poster//image"},
		{"/api/poster/image/image", "/api/poster/image/image"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanonicalPosterURL(tc.in), "in=%q", tc.in)
	}
}

func TestCanonicalPosterURL_Idempotent(t *testing.T) {
	inputs := []string{
		"/api/poster/abc-123/image",
		"/api/poster/image/abc-123",
		"/api/poster/image/image",
		"/api/poster/x/image/y/image",
		"https://via.placeholder.com/800x1200",
		"relative/path",
		"/api/poster/%2F/image",
		"",
	}
	for _, u := range inputs {
		once := CanonicalPosterURL(u)
		assert.Equal(t, once, CanonicalPosterURL(once), "u=%q", u)
	}
}
