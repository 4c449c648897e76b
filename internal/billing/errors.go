package billing

import "errors"

var (
	// ErrInvalidSignature means the webhook payload failed signature
	// verification. Retrying the same delivery cannot succeed.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrConfiguration means a required secret or key is unset.
	ErrConfiguration = errors.New("billing configuration error")

	// ErrUpstreamProvider wraps transient failures talking to the payments
	// provider. Safe to retry.
	ErrUpstreamProvider = errors.New("payments provider request failed")

	// ErrUnauthorized is returned when a caller targets a subscription owned
	// by a different customer. The response never reveals whether the target
	// subscription exists.
	ErrUnauthorized = errors.New("unauthorized")
)
