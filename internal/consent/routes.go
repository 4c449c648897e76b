package consent

import "strings"

const (
	DashboardPath = "/dashboard"
	LoginPath     = "/login"
	ConsentPath   = "/consent"
)

// publicPaths are reachable without authentication.
var publicPaths = map[string]bool{
	"/":                  true,
	"/login":             true,
	"/signup":            true,
	"/pricing":           true,
	"/health":            true,
	"/api/webhook/route": true,
}

// publicOnlyPaths make no sense for a signed-in user; they bounce to the
// dashboard instead.
var publicOnlyPaths = map[string]bool{
	"/login":  true,
	"/signup": true,
}

var protectedPaths = map[string]bool{
	"/dashboard": true,
	"/upload":    true,
	"/settings":  true,
	"/billing":   true,
}

// IsPublicPath reports whether the path is reachable anonymously. Signing
// pages are public by design: signers follow an emailed link and have no
// account.
func IsPublicPath(path string) bool {
	if publicPaths[path] {
		return true
	}
	return strings.HasPrefix(path, "/sign/") || strings.HasPrefix(path, "/auth/")
}

func IsPublicOnlyPath(path string) bool {
	return publicOnlyPaths[path]
}

func IsProtectedPath(path string) bool {
	if protectedPaths[path] {
		return true
	}
	return strings.HasPrefix(path, "/document/")
}

// consentExempt paths stay reachable while consent is pending, otherwise the
// gate would lock users out of the consent flow itself.
func consentExempt(path string) bool {
	if path == ConsentPath || strings.HasPrefix(path, ConsentPath+"/") {
		return true
	}
	return strings.HasPrefix(path, "/auth/") || path == "/health" || path == "/api/webhook/route"
}

// ValidateReturnTarget keeps post-consent redirects on this site. Anything
// that is not a plain relative path falls back to the root.
func ValidateReturnTarget(next string) string {
	if next == "" {
		return "/"
	}
	if !strings.HasPrefix(next, "/") {
		return "/"
	}
	// "//host" and "/\host" are treated as absolute URLs by browsers.
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
