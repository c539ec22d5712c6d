package social

import (
	"fmt"
	"regexp"
	"sort"

	"go.uber.org/zap"
)

// providerPattern: lowercase letters and underscores, at least three
// characters, starting and ending with a letter.
var providerPattern = regexp.MustCompile(`^[a-z][a-z_]+[a-z]$`)

// Registration describes a supported vendor.
type Registration struct {
	// Keys are the credential keys the vendor requires, in display order.
	Keys []string

	// New constructs the provider.
	New Factory
}

// registry is the static table of supported vendors.
var registry = map[string]Registration{
	GitHubName:   {Keys: githubKeys, New: NewGitHub},
	GoogleName:   {Keys: googleKeys, New: NewGoogle},
	FacebookName: {Keys: facebookKeys, New: NewFacebook},
}

// Registered returns the names of the built-in vendors, sorted.
func Registered() []string {
	return sortedKeys(registry)
}

// RequiredKeys returns the credential keys the named built-in vendor requires.
func RequiredKeys(name string) ([]string, bool) {
	reg, ok := registry[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), reg.Keys...), true
}

// WithFactory registers an additional vendor, or replaces a built-in one, for
// a single Manager.
func WithFactory(name string, reg Registration) Option {
	return func(o *options) {
		if o.factories == nil {
			o.factories = make(map[string]Registration)
		}
		o.factories[name] = reg
	}
}

// Manager holds one constructed Provider per configured name.
// It is immutable after construction and safe for concurrent use.
type Manager struct {
	providers map[string]Provider
}

// NewManager validates cfg and constructs every configured provider.
// Construction is all or nothing: the first invalid entry fails the call and
// no Manager is returned. Entries are processed in name order.
func NewManager(cfg Config, opts ...Option) (*Manager, error) {
	o := newOptions(opts)

	lookup := func(name string) (Registration, bool) {
		if reg, ok := o.factories[name]; ok {
			return reg, true
		}
		reg, ok := registry[name]
		return reg, ok
	}

	providers := make(map[string]Provider, len(cfg))
	for _, name := range sortedKeys(cfg) {
		if !providerPattern.MatchString(name) {
			return nil, notExist(name)
		}
		reg, ok := lookup(name)
		if !ok || reg.New == nil {
			return nil, notExist(name)
		}
		p, err := reg.New(cfg[name], opts...)
		if err != nil {
			return nil, err
		}
		providers[name] = p
	}

	o.logger.Debug("manager constructed", zap.Strings("providers", sortedKeys(providers)))
	return &Manager{providers: providers}, nil
}

// Provider returns the provider configured under name.
func (m *Manager) Provider(name string) (Provider, error) {
	p, ok := m.providers[name]
	if !ok {
		return nil, notExist(name)
	}
	return p, nil
}

// Names returns the configured provider names, sorted.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func notExist(name string) error {
	return fmt.Errorf("%w: the provider %s does not exist", ErrProviderNotExist, name)
}
