package models

import "time"

type User struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	AuthProvider      string     `json:"auth_provider"`
	StripeCustomerID  *string    `json:"stripe_customer_id,omitempty"`
	TermsAcceptedAt   *time.Time `json:"terms_accepted_at,omitempty"`
	TermsVersion      string     `json:"terms_version,omitempty"`
	PrivacyAcceptedAt *time.Time `json:"privacy_accepted_at,omitempty"`
	PrivacyVersion    string     `json:"privacy_version,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// HasValidConsent reports whether both legal documents were accepted at the
// given version. A version bump invalidates earlier acceptances.
func (u *User) HasValidConsent(legalVersion string) bool {
	if u.TermsAcceptedAt == nil || u.PrivacyAcceptedAt == nil {
		return false
	}
	return u.TermsVersion == legalVersion && u.PrivacyVersion == legalVersion
}
