package auth

import "errors"

var (
	// ErrNotConfigured is returned synchronously when no OAuth client ID is
	// set, before any network attempt.
	ErrNotConfigured = errors.New("oauth client ID is not configured")

	// ErrProviderUnavailable is returned when the identity provider does not
	// become ready within the readiness timeout.
	ErrProviderUnavailable = errors.New("identity provider is not available")
)

// AuthError reports a failed token acquisition: consent denied, popup
// blocked, or a provider-side error. Any cached token is cleared before it
// is returned.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "authorization failed: " + e.Reason
}
