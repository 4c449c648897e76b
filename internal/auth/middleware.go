package auth

import (
	"context"
	"net/http"
	"strings"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
	unauthorizedMessage = "Unauthorized"
	invalidTokenMessage = "Invalid token"
)

type Middleware struct {
	verifier *JWTVerifier
}

func NewMiddleware(verifier *JWTVerifier) *Middleware {
	return &Middleware{
		verifier: verifier,
	}
}

// tokenFromRequest prefers the Authorization header and falls back to the
// session cookie set by the auth callback, so both API clients and the web
// app authenticate the same way.
func tokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get(authorizationHeader)
	if strings.HasPrefix(authHeader, bearerPrefix) {
		return strings.TrimPrefix(authHeader, bearerPrefix)
	}
	if cookie, err := r.Cookie(AccessTokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// WithUser attaches the verified user to the context when a valid token is
// present, and passes the request through either way. Route classification
// decides what anonymous requests may reach.
func (m *Middleware) WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := tokenFromRequest(r)
		if tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.verifier.VerifyToken(tokenString)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects requests without a valid token.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := tokenFromRequest(r)
		if tokenString == "" {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", unauthorizedMessage)
			return
		}

		user, err := m.verifier.VerifyToken(tokenString)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "invalid_token", invalidTokenMessage)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
