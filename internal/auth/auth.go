package auth

import "github.com/workos/workos-go/v6/pkg/usermanagement"

// Configure wires the WorkOS SDK with the API key from config. Called once
// from process startup.
func Configure(apiKey string) {
	usermanagement.SetAPIKey(apiKey)
}
