package consent

import (
	"log"
	"net/http"
	"net/url"

	"github.com/signlyhq/signly/internal/auth"
	"github.com/signlyhq/signly/internal/models"
	"github.com/signlyhq/signly/internal/user"
)

type State string

const (
	StateUnauthenticated   State = "unauthenticated"
	StateNoConsentRequired State = "authenticated_no_consent_required"
	StateConsentPending    State = "authenticated_consent_pending"
	StateConsentGiven      State = "authenticated_consent_given"
)

// StateFor classifies a request's position in the consent flow.
func StateFor(authUser *auth.User, dbUser *models.User, legalVersion string) State {
	if authUser == nil {
		return StateUnauthenticated
	}
	if !authUser.RequiresConsent() {
		return StateNoConsentRequired
	}
	if dbUser != nil && dbUser.HasValidConsent(legalVersion) {
		return StateConsentGiven
	}
	return StateConsentPending
}

// Gate enforces legal consent ahead of the public/protected route
// classification, so consent is collected even on paths that authenticated
// users may otherwise reach freely.
type Gate struct {
	users        user.Service
	legalVersion string
}

func NewGate(users user.Service, legalVersion string) *Gate {
	return &Gate{
		users:        users,
		legalVersion: legalVersion,
	}
}

func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authUser, authenticated := auth.GetUserFromRequest(r)
		path := r.URL.Path

		// Consent check runs first.
		if authenticated && authUser.RequiresConsent() && !consentExempt(path) {
			dbUser, err := g.users.GetOrCreate(
				r.Context(),
				authUser.ID,
				authUser.Email,
				authUser.FirstName,
				authUser.LastName,
				authUser.Provider,
			)
			if err != nil {
				log.Printf("Consent gate failed to load user %s: %v", authUser.ID, err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			if StateFor(authUser, dbUser, g.legalVersion) == StateConsentPending {
				target := ConsentPath + "?next=" + url.QueryEscape(path)
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
		}

		// Generic route classification.
		if IsProtectedPath(path) && !authenticated {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		if IsPublicOnlyPath(path) && authenticated {
			http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}
