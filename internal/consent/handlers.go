package consent

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/signlyhq/signly/internal/auth"
	"github.com/signlyhq/signly/internal/user"
)

type Handlers struct {
	users        user.Service
	legalVersion string
}

func NewHandlers(users user.Service, legalVersion string) *Handlers {
	return &Handlers{
		users:        users,
		legalVersion: legalVersion,
	}
}

type stateResponse struct {
	State        State  `json:"state"`
	LegalVersion string `json:"legal_version"`
	Next         string `json:"next"`
}

// Show reports the requester's consent state and the return target the accept
// form should carry.
func (h *Handlers) Show(w http.ResponseWriter, r *http.Request) {
	authUser, _ := auth.GetUserFromRequest(r)

	var state State = StateUnauthenticated
	if authUser != nil {
		dbUser, err := h.users.GetOrCreate(r.Context(), authUser.ID, authUser.Email, authUser.FirstName, authUser.LastName, authUser.Provider)
		if err != nil {
			log.Printf("Failed to load user %s: %v", authUser.ID, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		state = StateFor(authUser, dbUser, h.legalVersion)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stateResponse{
		State:        state,
		LegalVersion: h.legalVersion,
		Next:         ValidateReturnTarget(r.URL.Query().Get("next")),
	}); err != nil {
		log.Printf("Failed to encode consent state: %v", err)
	}
}

// Accept stamps both legal documents at the current version and returns the
// user to where they were headed.
func (h *Handlers) Accept(w http.ResponseWriter, r *http.Request) {
	authUser, ok := auth.GetUserFromRequest(r)
	if !ok {
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	if err := h.users.AcceptConsent(r.Context(), authUser.ID, h.legalVersion); err != nil {
		log.Printf("Failed to record consent for %s: %v", authUser.ID, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	target := ValidateReturnTarget(r.FormValue("next"))
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Decline ends the session. Access without consent is not an option.
func (h *Handlers) Decline(w http.ResponseWriter, r *http.Request) {
	auth.SignOut(w)
	http.Redirect(w, r, LoginPath+"?error=consent_required", http.StatusSeeOther)
}
