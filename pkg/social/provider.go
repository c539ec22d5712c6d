package social

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jeremyhahn/go-social/pkg/query"
)

// Provider is the contract every vendor integration satisfies.
//
// Implementations are immutable after construction and safe for concurrent use.
type Provider interface {
	// Name returns the provider's identifier, e.g. "github".
	Name() string

	// AuthURL returns the vendor authorization URL the user should be redirected to.
	// It performs no I/O and returns the same URL for the same state.
	AuthURL(state string) string

	// GetUser validates the callback uri against state, exchanges the
	// authorization code and returns the normalized user.
	GetUser(ctx context.Context, uri, state string, opts ...CallbackOption) (*User, error)
}

// Factory constructs a Provider from validated credentials.
type Factory func(creds Credentials, opts ...Option) (Provider, error)

// Endpoints holds the vendor URLs a provider talks to. Empty fields keep the
// provider's defaults.
type Endpoints struct {
	// AuthURL is the authorization page users are redirected to.
	AuthURL string

	// TokenURL exchanges an authorization code for an access token.
	TokenURL string

	// APIURL is the base of the vendor's profile API.
	APIURL string

	// JWKSURL serves the keys that sign ID tokens (Google only).
	JWKSURL string
}

func (e Endpoints) merge(override Endpoints) Endpoints {
	if override.AuthURL != "" {
		e.AuthURL = override.AuthURL
	}
	if override.TokenURL != "" {
		e.TokenURL = override.TokenURL
	}
	if override.APIURL != "" {
		e.APIURL = strings.TrimRight(override.APIURL, "/")
	}
	if override.JWKSURL != "" {
		e.JWKSURL = override.JWKSURL
	}
	return e
}

// Option configures a Manager or a Provider.
type Option func(*options)

type options struct {
	httpClient HTTPClient
	logger     *zap.Logger
	endpoints  map[string]Endpoints
	factories  map[string]Registration
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.httpClient == nil {
		o.httpClient = newDefaultHTTPClient()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// WithHTTPClient sets the client used for every vendor request.
func WithHTTPClient(c HTTPClient) Option {
	return func(o *options) { o.httpClient = c }
}

// WithLogger sets the logger. Only debug-level events are emitted and they
// never include secrets, codes or tokens.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithEndpoints overrides the URLs used by the named provider.
func WithEndpoints(provider string, e Endpoints) Option {
	return func(o *options) {
		if o.endpoints == nil {
			o.endpoints = make(map[string]Endpoints)
		}
		o.endpoints[provider] = e
	}
}

// CallbackOption adjusts a single GetUser call.
type CallbackOption func(*callbackOptions)

type callbackOptions struct {
	skipStateCheck bool
}

// InsecureSkipStateCheck disables the CSRF state comparison for one GetUser
// call. Only use it when the callback was not produced by a browser redirect
// this application started.
func InsecureSkipStateCheck() CallbackOption {
	return func(o *callbackOptions) { o.skipStateCheck = true }
}

// Base carries what every provider shares: its name, validated credentials,
// endpoints and transport. Vendor implementations embed it.
type Base struct {
	name       string
	config     Credentials
	endpoints  Endpoints
	httpClient HTTPClient
	logger     *zap.Logger
}

// NewBase validates creds against the required key set and returns the shared
// provider state. The key set must match exactly: no missing and no extra keys.
func NewBase(name string, required []string, defaults Endpoints, creds Credentials, opts ...Option) (*Base, error) {
	if len(required) == 0 {
		return nil, fmt.Errorf("%w: the %s provider declares no required keys", ErrInvalidConfiguration, name)
	}
	if !sameKeys(creds, required) {
		return nil, fmt.Errorf("%w: the %s provider requires the following keys: %s",
			ErrRequiredKeys, name, strings.Join(required, ", "))
	}

	o := newOptions(opts)
	b := &Base{
		name:       name,
		config:     creds.clone(),
		endpoints:  defaults.merge(o.endpoints[name]),
		httpClient: o.httpClient,
		logger:     o.logger.With(zap.String("provider", name)),
	}
	b.logger.Debug("provider constructed")
	return b, nil
}

// Name returns the provider's identifier.
func (b *Base) Name() string {
	return b.name
}

// Config returns the credential value for key.
func (b *Base) Config(key string) string {
	return b.config[key]
}

// Endpoints returns the URLs in effect for this provider.
func (b *Base) Endpoints() Endpoints {
	return b.endpoints
}

// ParseURI decodes the query string of uri and checks that every required
// parameter is present.
func (b *Base) ParseURI(uri string, required ...string) (query.Params, error) {
	params := query.Decode(uri)
	for _, name := range required {
		if !params.Has(name) {
			return nil, fmt.Errorf("%w: required query parameter %q is not present", ErrMissingParameter, name)
		}
	}
	return params, nil
}

// SerializeURL appends the encoded params to base.
func (b *Base) SerializeURL(base string, params map[string]string) string {
	return base + "?" + query.Encode(params)
}

// CheckState compares the callback's state parameter with the expected state.
// A state key given without a value never matches.
func (b *Base) CheckState(params query.Params, expected string, opts ...CallbackOption) error {
	var o callbackOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.skipStateCheck {
		b.logger.Debug("state check skipped by caller")
		return nil
	}
	got, ok := params.Get("state")
	if !ok || got != expected {
		return ErrInvalidState
	}
	return nil
}

// parseCallback is the local validation phase shared by every provider: it
// requires code and state and enforces the state rule. It returns the code.
func (b *Base) parseCallback(uri, state string, opts []CallbackOption) (string, error) {
	params, err := b.ParseURI(uri, "code", "state")
	if err != nil {
		return "", err
	}
	if err := b.CheckState(params, state, opts...); err != nil {
		return "", err
	}
	code, _ := params.Get("code")
	return code, nil
}

func sameKeys(creds Credentials, required []string) bool {
	if len(creds) != len(required) {
		return false
	}
	for _, k := range required {
		if _, ok := creds[k]; !ok {
			return false
		}
	}
	return true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
