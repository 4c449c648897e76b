package consent

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateReturnTarget(t *testing.T) {
	tests := []struct {
		name string
		next string
		want string
	}{
		{name: "relative path kept", next: "/upload", want: "/upload"},
		{name: "nested path kept", next: "/document/abc-123", want: "/document/abc-123"},
		{name: "path with query kept", next: "/billing?tab=invoices", want: "/billing?tab=invoices"},
		{name: "empty falls back", next: "", want: "/"},
		{name: "absolute URL rejected", next: "https://evil.example/phish", want: "/"},
		{name: "scheme-relative URL rejected", next: "//evil.example", want: "/"},
		{name: "backslash host rejected", next: "/\\evil.example", want: "/"},
		{name: "bare word rejected", next: "dashboard", want: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ValidateReturnTarget(tt.next))
		})
	}
}

func TestIsPublicPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{path: "/", want: true},
		{path: "/login", want: true},
		{path: "/pricing", want: true},
		{path: "/sign/abc-123", want: true},
		{path: "/auth/callback", want: true},
		{path: "/dashboard", want: false},
		{path: "/document/abc", want: false},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, IsPublicPath(tt.path), "path %s", tt.path)
	}
}

func TestIsProtectedPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{path: "/dashboard", want: true},
		{path: "/billing", want: true},
		{path: "/document/abc-123", want: true},
		{path: "/sign/abc-123", want: false},
		{path: "/", want: false},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, IsProtectedPath(tt.path), "path %s", tt.path)
	}
}

func TestConsentExempt(t *testing.T) {
	require.True(t, consentExempt("/consent"))
	require.True(t, consentExempt("/consent/accept"))
	require.True(t, consentExempt("/auth/logout"))
	require.True(t, consentExempt("/api/webhook/route"))
	require.False(t, consentExempt("/dashboard"))
	require.False(t, consentExempt("/"))
}
