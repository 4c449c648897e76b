package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/signlyhq/signly/internal/billing"
	"github.com/signlyhq/signly/internal/models"
	"github.com/signlyhq/signly/internal/user"
)

type BillingHandler struct {
	users       user.Service
	provider    billing.ProviderClient
	resolver    *billing.CustomerResolver
	store       billing.Store
	gate        *billing.UsageGate
	cancels     *billing.CancellationService
	siteBaseURL string
	log         *slog.Logger
}

func NewBillingHandler(
	users user.Service,
	provider billing.ProviderClient,
	resolver *billing.CustomerResolver,
	store billing.Store,
	gate *billing.UsageGate,
	cancels *billing.CancellationService,
	siteBaseURL string,
	log *slog.Logger,
) *BillingHandler {
	return &BillingHandler{
		users:       users,
		provider:    provider,
		resolver:    resolver,
		store:       store,
		gate:        gate,
		cancels:     cancels,
		siteBaseURL: siteBaseURL,
		log:         log,
	}
}

// ListPlans is public; the pricing page renders from it.
func (h *BillingHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans := make([]*billing.Plan, 0, len(billing.PlanOrder))
	for _, id := range billing.PlanOrder {
		plans = append(plans, billing.GetPlan(id))
	}
	writeJSON(w, map[string]any{"plans": plans})
}

type checkoutRequest struct {
	PlanID     string `json:"plan_id"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

// returnURL pins checkout return targets to this site. Relative paths are
// resolved against the configured base URL; anything else falls back.
func (h *BillingHandler) returnURL(requested, fallback string) string {
	if requested == "" || !strings.HasPrefix(requested, "/") || strings.HasPrefix(requested, "//") {
		return h.siteBaseURL + fallback
	}
	return h.siteBaseURL + requested
}

func (h *BillingHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		writeJSONStatus(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	customerID, err := h.users.EnsureCustomer(r.Context(), dbUser)
	if err != nil {
		h.log.Error("failed to ensure payments customer", "user_id", dbUser.ID, "error", err)
		writeJSONStatus(w, http.StatusInternalServerError, map[string]string{"error": "Could not start checkout"})
		return
	}

	session, err := h.provider.CreateSubscriptionCheckout(
		r.Context(),
		customerID,
		req.PlanID,
		h.returnURL(req.SuccessURL, "/billing?checkout=success"),
		h.returnURL(req.CancelURL, "/pricing"),
	)
	if err != nil {
		h.log.Error("failed to create checkout session", "user_id", dbUser.ID, "plan_id", req.PlanID, "error", err)
		writeJSONStatus(w, http.StatusInternalServerError, map[string]string{"error": "Could not start checkout"})
		return
	}

	writeJSON(w, map[string]string{
		"checkout_url": session.URL,
		"session_id":   session.ID,
	})
}

type subscriptionStatusResponse struct {
	PlanID          string                    `json:"plan_id"`
	Status          models.SubscriptionStatus `json:"status,omitempty"`
	SubscriptionID  string                    `json:"subscription_id,omitempty"`
	ScheduledChange bool                      `json:"scheduled_change"`
	EffectiveAt     *time.Time                `json:"effective_at,omitempty"`
	Usage           *billing.LimitCheck       `json:"usage"`
}

// GetSubscriptionStatus reports the caller's current plan, any scheduled
// cancellation, and the usage snapshot. Reads the local projection only.
func (h *BillingHandler) GetSubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		writeJSONStatus(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	limits, err := h.gate.CheckLimits(r.Context(), dbUser.ID)
	if err != nil {
		h.log.Error("failed to check limits", "user_id", dbUser.ID, "error", err)
		writeJSONStatus(w, http.StatusInternalServerError, map[string]string{"error": "Could not load subscription"})
		return
	}

	resp := subscriptionStatusResponse{
		PlanID: limits.PlanID,
		Usage:  limits,
	}

	customerID, err := h.resolver.GetCustomerID(r.Context(), dbUser.Email)
	if err != nil {
		h.log.Error("failed to resolve customer", "user_id", dbUser.ID, "error", err)
		writeJSONStatus(w, http.StatusInternalServerError, map[string]string{"error": "Could not load subscription"})
		return
	}
	if customerID != "" {
		sub, err := h.store.GetSubscriptionByCustomerID(r.Context(), customerID)
		if err != nil {
			h.log.Error("failed to load subscription projection", "user_id", dbUser.ID, "error", err)
			writeJSONStatus(w, http.StatusInternalServerError, map[string]string{"error": "Could not load subscription"})
			return
		}
		if sub != nil {
			resp.Status = sub.Status
			resp.SubscriptionID = sub.ID
			resp.ScheduledChange = sub.CancelAtPeriodEnd
			if sub.CancelAtPeriodEnd && !sub.CurrentPeriodEnd.IsZero() {
				effective := sub.CurrentPeriodEnd
				resp.EffectiveAt = &effective
			}
		}
	}

	writeJSON(w, resp)
}

type cancelRequest struct {
	SubscriptionID string `json:"subscription_id"`
	EffectiveFrom  string `json:"effective_from"`
}

func (h *BillingHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		writeJSONStatus(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "Unauthorized"})
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SubscriptionID == "" {
		writeJSONStatus(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "Missing subscription_id"})
		return
	}

	effectiveFrom := billing.EffectiveImmediately
	if req.EffectiveFrom == string(billing.EffectiveNextBillingPeriod) {
		effectiveFrom = billing.EffectiveNextBillingPeriod
	}

	result, err := h.cancels.CancelSubscription(r.Context(), dbUser.Email, req.SubscriptionID, effectiveFrom)
	if err != nil {
		if errors.Is(err, billing.ErrUnauthorized) {
			writeJSONStatus(w, http.StatusForbidden, map[string]any{"ok": false, "error": "Unauthorized"})
			return
		}
		h.log.Error("cancellation failed", "user_id", dbUser.ID, "error", err)
		writeJSONStatus(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "Cancellation failed"})
		return
	}

	writeJSON(w, map[string]any{
		"ok":     true,
		"result": result,
	})
}
