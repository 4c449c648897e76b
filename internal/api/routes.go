package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/signlyhq/signly/internal/auth"
	"github.com/signlyhq/signly/internal/consent"
	"github.com/signlyhq/signly/internal/user"
)

// Handlers bundles the HTTP handlers the router wires up.
type Handlers struct {
	Auth      *auth.Handlers
	Consent   *consent.Handlers
	Webhook   *WebhookHandler
	Billing   *BillingHandler
	Documents *DocumentHandler
	Health    *HealthHandler
}

func SetupRoutes(
	authMW *auth.Middleware,
	gate *consent.Gate,
	userService user.Service,
	h Handlers,
	allowedOrigin string,
) *mux.Router {
	r := mux.NewRouter()

	r.Use(CORSMiddleware(allowedOrigin))
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)
	r.Use(authMW.WithUser)
	r.Use(gate.Middleware)

	r.HandleFunc("/health", h.Health.Check).Methods(http.MethodGet)

	// Provider-signed; never behind session auth.
	r.HandleFunc("/api/webhook/route", h.Webhook.HandleWebhook).Methods(http.MethodPost)

	r.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodGet)
	r.HandleFunc("/auth/callback", h.Auth.Callback).Methods(http.MethodGet)
	r.HandleFunc("/auth/logout", h.Auth.Logout).Methods(http.MethodGet, http.MethodPost)

	r.HandleFunc("/consent", h.Consent.Show).Methods(http.MethodGet)
	r.HandleFunc("/consent/accept", h.Consent.Accept).Methods(http.MethodPost)
	r.HandleFunc("/consent/decline", h.Consent.Decline).Methods(http.MethodPost)

	r.HandleFunc("/api/billing/plans", h.Billing.ListPlans).Methods(http.MethodGet)

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(authMW.RequireAuth)
	protected.Use(user.UserMiddleware(userService))

	protected.HandleFunc("/billing/checkout", h.Billing.CreateCheckout).Methods(http.MethodPost)
	protected.HandleFunc("/billing/subscription", h.Billing.GetSubscriptionStatus).Methods(http.MethodGet)
	protected.HandleFunc("/billing/subscription/cancel", h.Billing.CancelSubscription).Methods(http.MethodPost)

	protected.HandleFunc("/documents", h.Documents.Create).Methods(http.MethodPost)
	protected.HandleFunc("/documents", h.Documents.List).Methods(http.MethodGet)
	protected.HandleFunc("/documents/{documentID}", h.Documents.Get).Methods(http.MethodGet)
	protected.HandleFunc("/documents/{documentID}/publish", h.Documents.Publish).Methods(http.MethodPost)
	protected.HandleFunc("/documents/{documentID}/complete", h.Documents.Complete).Methods(http.MethodPost)
	protected.HandleFunc("/documents/{documentID}/void", h.Documents.Void).Methods(http.MethodPost)
	protected.HandleFunc("/documents/{documentID}/download", h.Documents.Download).Methods(http.MethodGet)

	return r
}
