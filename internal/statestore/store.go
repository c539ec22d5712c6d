// Package statestore keeps the CSRF state tokens issued by the demo server
// until the matching callback arrives. Each state can be consumed once.
package statestore

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL is how long an issued state stays valid.
const DefaultTTL = 10 * time.Minute

// ErrNotFound is returned when a state was never issued, has expired, or was
// already consumed.
var ErrNotFound = errors.New("statestore: state not found")

// Store holds issued states together with the provider they were issued for.
type Store interface {
	// Put records state for provider. It expires after ttl.
	Put(ctx context.Context, state, provider string, ttl time.Duration) error

	// Consume removes state and returns the provider it was issued for.
	// A second Consume of the same state returns ErrNotFound.
	Consume(ctx context.Context, state string) (string, error)
}
