package billing

// Unlimited disables a limit entirely. A limit of 0 always denies; only -1
// short-circuits to allow.
const Unlimited = -1

// DefaultPlanID is the entitlement for users with no customer mapping or no
// live subscription. Absence of paid history is a normal state, not an error.
const DefaultPlanID = "free"

// Plan defines a subscription plan's entitlements.
type Plan struct {
	ID                   string   `json:"id"`
	DisplayName          string   `json:"display_name"`
	MonthlyPriceCents    int64    `json:"monthly_price_cents"`
	MonthlyDocumentLimit int      `json:"monthly_document_limit"`
	ActiveDocumentLimit  int      `json:"active_document_limit"`
	Features             []string `json:"features"`
	StripePriceID        string   `json:"stripe_price_id,omitempty"`
}

// Plans holds all available plans keyed by plan ID.
var Plans = map[string]*Plan{
	"free": {
		ID:                   "free",
		DisplayName:          "Free",
		MonthlyPriceCents:    0,
		MonthlyDocumentLimit: 3,
		ActiveDocumentLimit:  1,
		Features:             []string{"email_signers"},
	},
	"growth": {
		ID:                   "growth",
		DisplayName:          "Growth",
		MonthlyPriceCents:    1900,
		MonthlyDocumentLimit: 50,
		ActiveDocumentLimit:  10,
		Features:             []string{"email_signers", "templates", "reminders"},
		StripePriceID:        "price_signly_growth_monthly",
	},
	"business": {
		ID:                   "business",
		DisplayName:          "Business",
		MonthlyPriceCents:    4900,
		MonthlyDocumentLimit: Unlimited,
		ActiveDocumentLimit:  Unlimited,
		Features:             []string{"email_signers", "templates", "reminders", "audit_trail", "bulk_send"},
		StripePriceID:        "price_signly_business_monthly",
	},
}

// PlanOrder defines the display ordering of plans.
var PlanOrder = []string{"free", "growth", "business"}

// GetPlan returns a plan by its ID.
func GetPlan(id string) *Plan {
	return Plans[id]
}

// GetPlanByPriceID finds a plan by its Stripe price ID.
func GetPlanByPriceID(priceID string) *Plan {
	if priceID == "" {
		return nil
	}
	for _, p := range Plans {
		if p.StripePriceID == priceID {
			return p
		}
	}
	return nil
}

// withinLimit applies the shared limit semantics: -1 is unconditionally
// unlimited, anything else (including 0) is a hard ceiling.
func withinLimit(current, limit int) bool {
	if limit == Unlimited {
		return true
	}
	return current < limit
}
