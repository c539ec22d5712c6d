package social

import (
	"errors"
	"fmt"
)

// ErrSocial is the root of every failure raised by this package's own checks:
// bad configuration, unknown providers, malformed callbacks and state mismatches.
// Every contract sentinel below wraps it.
var ErrSocial = errors.New("social")

var (
	// ErrInvalidConfiguration indicates a configuration value has the wrong shape.
	ErrInvalidConfiguration = fmt.Errorf("%w: invalid configuration", ErrSocial)

	// ErrProviderNotExist indicates a provider name is malformed, unregistered, or not configured.
	ErrProviderNotExist = fmt.Errorf("%w: provider does not exist", ErrSocial)

	// ErrRequiredKeys indicates the credential keys differ from the provider's required set.
	ErrRequiredKeys = fmt.Errorf("%w: required keys mismatch", ErrSocial)

	// ErrInvalidCredential indicates a credential value is not a string.
	ErrInvalidCredential = fmt.Errorf("%w: invalid credential value", ErrSocial)

	// ErrMissingParameter indicates a required callback query parameter is absent.
	ErrMissingParameter = fmt.Errorf("%w: missing query parameter", ErrSocial)

	// ErrInvalidState indicates the callback state does not match the expected state.
	ErrInvalidState = fmt.Errorf("%w: the state parameter is invalid", ErrSocial)

	// ErrNoSuchAttribute indicates a lookup of an attribute outside the User attribute set.
	ErrNoSuchAttribute = fmt.Errorf("%w: no such attribute", ErrSocial)

	// ErrCannotMapAttribute indicates a User.Map key outside the User attribute set.
	ErrCannotMapAttribute = fmt.Errorf("%w: cannot map attribute", ErrSocial)
)

// ErrProviderFailure is matched by every *ProviderError.
var ErrProviderFailure = errors.New("social: provider reported an error")

// ProviderError is returned when a vendor response reports failure, either
// through its status code, an error field in the body, or a body that does
// not have the documented shape.
type ProviderError struct {
	// Provider is the name of the provider that made the request.
	Provider string

	// StatusCode is the HTTP status of the failing response.
	StatusCode int

	// Message is the vendor's own error text when it sent one.
	Message string
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("social: %s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("social: %s: %s", e.Provider, e.Message)
}

// Is lets errors.Is(err, ErrProviderFailure) match any ProviderError.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProviderFailure
}
