package auth

import (
	"context"
	"net/http"
)

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Provider  string `json:"provider"`
}

// RequiresConsent reports whether this user's identity provider requires the
// legal-consent gate.
func (u *User) RequiresConsent() bool {
	return u.Provider == ProviderKakao
}

type contextKey string

const UserContextKey contextKey = "user"

func GetUserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(UserContextKey).(*User)
	return user, ok
}

func GetUserFromRequest(r *http.Request) (*User, bool) {
	return GetUserFromContext(r.Context())
}
