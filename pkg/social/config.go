package social

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Credentials maps a provider's configuration keys to their values.
type Credentials map[string]string

func (c Credentials) clone() Credentials {
	out := make(Credentials, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Config maps provider names to their credentials.
//
// Example (YAML):
//
//	providers:
//	  github:
//	    client_id: "..."
//	    client_secret: "..."
//	    redirect_uri: "https://app.example.com/auth/github/callback"
type Config map[string]Credentials

// EnvPrefix is the prefix of the environment variables read by LoadEnv.
const EnvPrefix = "SOCIAL"

// DecodeConfig converts untyped configuration, such as a decoded YAML or JSON
// document, into a Config. It checks shapes only; key sets are checked when
// providers are constructed.
func DecodeConfig(raw any) (Config, error) {
	switch v := raw.(type) {
	case Config:
		return v, nil
	case map[string]Credentials:
		return Config(v), nil
	case map[string]map[string]string:
		cfg := make(Config, len(v))
		for name, creds := range v {
			cfg[name] = Credentials(creds)
		}
		return cfg, nil
	case map[string]any:
		cfg := make(Config, len(v))
		for _, name := range sortedKeys(v) {
			creds, err := decodeCredentials(name, v[name])
			if err != nil {
				return nil, err
			}
			cfg[name] = creds
		}
		return cfg, nil
	default:
		return nil, fmt.Errorf("%w: the configuration must be a mapping", ErrInvalidConfiguration)
	}
}

func decodeCredentials(provider string, raw any) (Credentials, error) {
	switch v := raw.(type) {
	case Credentials:
		return v, nil
	case map[string]string:
		return Credentials(v), nil
	case map[string]any:
		creds := make(Credentials, len(v))
		for _, key := range sortedKeys(v) {
			s, ok := v[key].(string)
			if !ok {
				return nil, fmt.Errorf("%w: the %q must be a string", ErrInvalidCredential, key)
			}
			creds[key] = s
		}
		return creds, nil
	default:
		return nil, fmt.Errorf("%w: the configuration for %s must be a mapping", ErrInvalidConfiguration, provider)
	}
}

// LoadConfig reads a YAML file whose "providers" key holds the Config.
// A file without a "providers" key yields an empty Config.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses a YAML document like the one read by LoadConfig.
func ParseConfig(data []byte) (Config, error) {
	var doc struct {
		Providers any `yaml:"providers"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if doc.Providers == nil {
		return Config{}, nil
	}
	return DecodeConfig(doc.Providers)
}

// LoadEnv builds a Config from variables named SOCIAL_<PROVIDER>_<KEY>, for
// example SOCIAL_GITHUB_CLIENT_ID. Values are read from the given dotenv files
// first; the process environment overrides them. A registered provider is
// included as soon as one of its keys is set, so a partial set is reported
// by NewManager rather than silently dropped.
func LoadEnv(files ...string) (Config, error) {
	env := map[string]string{}
	if len(files) > 0 {
		fromFiles, err := godotenv.Read(files...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
		}
		for k, v := range fromFiles {
			env[k] = v
		}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, EnvPrefix+"_") {
			env[k] = v
		}
	}

	cfg := Config{}
	for _, name := range Registered() {
		reg := registry[name]
		for _, key := range reg.Keys {
			v, ok := env[envName(name, key)]
			if !ok {
				continue
			}
			if cfg[name] == nil {
				cfg[name] = Credentials{}
			}
			cfg[name][key] = v
		}
	}
	return cfg, nil
}

func envName(provider, key string) string {
	return EnvPrefix + "_" + strings.ToUpper(provider) + "_" + strings.ToUpper(key)
}

// Merge returns a new Config holding every entry of c, with entries from other
// replacing whole providers of the same name.
func (c Config) Merge(other Config) Config {
	out := make(Config, len(c)+len(other))
	for name, creds := range c {
		out[name] = creds.clone()
	}
	for name, creds := range other {
		out[name] = creds.clone()
	}
	return out
}
