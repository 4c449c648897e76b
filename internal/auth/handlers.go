package auth

import (
	"log"
	"net/http"

	"github.com/workos/workos-go/v6/pkg/usermanagement"
)

// Handlers serves the hosted-auth login flow. Configuration is injected at
// construction instead of read from process globals.
type Handlers struct {
	clientID    string
	redirectURL string
	siteBaseURL string
}

func NewHandlers(clientID, redirectURL, siteBaseURL string) *Handlers {
	return &Handlers{
		clientID:    clientID,
		redirectURL: redirectURL,
		siteBaseURL: siteBaseURL,
	}
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	authorizationURL, err := usermanagement.GetAuthorizationURL(
		usermanagement.GetAuthorizationURLOpts{
			ClientID:    h.clientID,
			Provider:    "authkit",
			RedirectURI: h.redirectURL,
		},
	)
	if err != nil {
		log.Printf("Failed to build authorization URL: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "auth_url_failed", "Could not start login")
		return
	}

	http.Redirect(w, r, authorizationURL.String(), http.StatusSeeOther)
}

func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSONError(w, http.StatusBadRequest, "missing_code", "Missing authorization code")
		return
	}

	resp, err := usermanagement.AuthenticateWithCode(r.Context(), usermanagement.AuthenticateWithCodeOpts{
		ClientID: h.clientID,
		Code:     code,
	})
	if err != nil {
		log.Printf("Authentication failed: %v", err)
		writeJSONError(w, http.StatusUnauthorized, "auth_failed", "Authentication failed")
		return
	}

	setSessionCookie(w, AccessTokenCookieName, resp.AccessToken)
	setSessionCookie(w, RefreshTokenCookieName, resp.RefreshToken)

	http.Redirect(w, r, h.siteBaseURL, http.StatusSeeOther)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	SignOut(w)
	http.Redirect(w, r, h.siteBaseURL, http.StatusSeeOther)
}

// SignOut clears the session cookies. Also used by the consent gate when a
// user declines the current legal terms.
func SignOut(w http.ResponseWriter) {
	clearSessionCookie(w, AccessTokenCookieName)
	clearSessionCookie(w, RefreshTokenCookieName)
}

func setSessionCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
