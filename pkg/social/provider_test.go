package social

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jeremyhahn/go-social/pkg/query"
)

func TestNewBaseKeyValidation(t *testing.T) {
	required := []string{"client_id", "client_secret", "redirect_uri"}

	tests := []struct {
		name    string
		creds   Credentials
		wantErr error
	}{
		{name: "exact keys", creds: testCredentials()},
		{
			name:    "missing key",
			creds:   Credentials{"client_id": "a", "client_secret": "b"},
			wantErr: ErrRequiredKeys,
		},
		{
			name:    "extra key",
			creds:   Credentials{"client_id": "a", "client_secret": "b", "redirect_uri": "c", "scope": "d"},
			wantErr: ErrRequiredKeys,
		},
		{
			name:    "renamed key",
			creds:   Credentials{"client_id": "a", "client_secret": "b", "0redirect_uri": "c"},
			wantErr: ErrRequiredKeys,
		},
		{
			name:    "nil credentials",
			wantErr: ErrRequiredKeys,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, err := NewBase("github", required, GitHubEndpoints, tt.creds)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("NewBase() failed: %v", err)
				}
				if base.Name() != "github" {
					t.Errorf("Expected name 'github', got %s", base.Name())
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			want := "the github provider requires the following keys: client_id, client_secret, redirect_uri"
			if !strings.Contains(err.Error(), want) {
				t.Errorf("Expected error to contain %q, got %q", want, err.Error())
			}
		})
	}
}

func TestNewBaseRequiresKeySet(t *testing.T) {
	_, err := NewBase("custom", nil, Endpoints{}, Credentials{})
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestNewBaseCopiesCredentials(t *testing.T) {
	creds := testCredentials()
	base, err := NewBase("github", githubKeys, GitHubEndpoints, creds)
	if err != nil {
		t.Fatal(err)
	}

	creds["client_id"] = "changed"
	if base.Config("client_id") != "test-client" {
		t.Errorf("Provider credentials changed with the caller's map: %s", base.Config("client_id"))
	}
}

func TestNewBaseEndpointOverride(t *testing.T) {
	base, err := NewBase("github", githubKeys, GitHubEndpoints, testCredentials(),
		WithEndpoints("github", Endpoints{APIURL: "https://ghe.example.com/api/v3/"}),
		WithEndpoints("google", Endpoints{APIURL: "https://ignored.example.com"}),
	)
	if err != nil {
		t.Fatal(err)
	}

	got := base.Endpoints()
	if got.APIURL != "https://ghe.example.com/api/v3" {
		t.Errorf("Expected overridden API URL, got %s", got.APIURL)
	}
	if got.AuthURL != GitHubEndpoints.AuthURL {
		t.Errorf("Expected default auth URL, got %s", got.AuthURL)
	}
}

func TestParseURI(t *testing.T) {
	base, err := NewBase("github", githubKeys, GitHubEndpoints, testCredentials())
	if err != nil {
		t.Fatal(err)
	}

	params, err := base.ParseURI("https://x/cb?code=123&state=abc", "code", "state")
	if err != nil {
		t.Fatalf("ParseURI() failed: %v", err)
	}
	if code, _ := params.Get("code"); code != "123" {
		t.Errorf("Expected code '123', got %s", code)
	}

	_, err = base.ParseURI("https://x/cb?state=abc", "code", "state")
	if !errors.Is(err, ErrMissingParameter) {
		t.Fatalf("Expected ErrMissingParameter, got %v", err)
	}
	if !strings.Contains(err.Error(), `"code"`) {
		t.Errorf("Expected error to name the parameter, got %v", err)
	}

	// A valueless key is present.
	if _, err := base.ParseURI("https://x/cb?code&state", "code", "state"); err != nil {
		t.Errorf("Expected valueless keys to satisfy presence, got %v", err)
	}
}

func TestCheckState(t *testing.T) {
	base, err := NewBase("github", githubKeys, GitHubEndpoints, testCredentials())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		uri      string
		expected string
		opts     []CallbackOption
		wantErr  bool
	}{
		{name: "match", uri: "https://x/cb?state=abc", expected: "abc"},
		{name: "mismatch", uri: "https://x/cb?state=abc", expected: "zzz", wantErr: true},
		{name: "empty expected still enforced", uri: "https://x/cb?state=abc", expected: "", wantErr: true},
		{name: "empty both", uri: "https://x/cb?state=", expected: ""},
		{name: "valueless state", uri: "https://x/cb?state", expected: "", wantErr: true},
		{name: "missing state", uri: "https://x/cb?code=1", expected: "abc", wantErr: true},
		{
			name:     "explicit skip",
			uri:      "https://x/cb?state=abc",
			expected: "zzz",
			opts:     []CallbackOption{InsecureSkipStateCheck()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := base.CheckState(query.Decode(tt.uri), tt.expected, tt.opts...)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidState) {
					t.Errorf("Expected ErrInvalidState, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("CheckState() failed: %v", err)
			}
		})
	}
}

func TestAuthURLs(t *testing.T) {
	tests := []struct {
		name    string
		factory Factory
		prefix  string
		want    map[string]string
	}{
		{
			name:    "github",
			factory: NewGitHub,
			prefix:  "https://github.com/login/oauth/authorize?",
			want: map[string]string{
				"client_id":     "test-client",
				"redirect_uri":  "http://localhost:8080/callback",
				"scope":         "user:email",
				"state":         "xyz",
				"allow_signup":  "true",
				"response_type": "code",
			},
		},
		{
			name:    "google",
			factory: NewGoogle,
			prefix:  "https://accounts.google.com/o/oauth2/v2/auth?",
			want: map[string]string{
				"client_id":     "test-client",
				"redirect_uri":  "http://localhost:8080/callback",
				"scope":         "https://www.googleapis.com/auth/userinfo.email https://www.googleapis.com/auth/userinfo.profile",
				"state":         "xyz",
				"access_type":   "online",
				"response_type": "code",
			},
		},
		{
			name:    "facebook",
			factory: NewFacebook,
			prefix:  "https://www.facebook.com/v2.9/dialog/oauth?",
			want: map[string]string{
				"client_id":     "test-client",
				"redirect_uri":  "http://localhost:8080/callback",
				"scope":         "public_profile,email",
				"state":         "xyz",
				"response_type": "code",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.factory(testCredentials(), WithHTTPClient(failingClient{}))
			if err != nil {
				t.Fatal(err)
			}
			if p.Name() != tt.name {
				t.Errorf("Expected name %q, got %q", tt.name, p.Name())
			}

			authURL := p.AuthURL("xyz")
			if !strings.HasPrefix(authURL, tt.prefix) {
				t.Errorf("Expected prefix %q, got %q", tt.prefix, authURL)
			}
			if again := p.AuthURL("xyz"); again != authURL {
				t.Errorf("AuthURL is not deterministic: %q != %q", authURL, again)
			}

			got := query.Decode(authURL).Strings()
			if len(got) != len(tt.want) {
				t.Errorf("Expected %d params, got %v", len(tt.want), got)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("Expected %s=%q, got %q", k, v, got[k])
				}
			}
		})
	}
}

func TestGetUserLocalValidation(t *testing.T) {
	// No request may reach the transport when local validation fails.
	factories := map[string]Factory{"github": NewGitHub, "google": NewGoogle, "facebook": NewFacebook}

	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			p, err := factory(testCredentials(), WithHTTPClient(failingClient{}))
			if err != nil {
				t.Fatal(err)
			}

			_, err = p.GetUser(context.Background(), "https://x/cb?code=123&state=abc", "zzz")
			if !errors.Is(err, ErrInvalidState) {
				t.Errorf("Expected ErrInvalidState, got %v", err)
			}

			_, err = p.GetUser(context.Background(), "https://x/cb?state=abc", "abc")
			if !errors.Is(err, ErrMissingParameter) {
				t.Errorf("Expected ErrMissingParameter, got %v", err)
			}

			_, err = p.GetUser(context.Background(), "https://x/cb", "abc")
			if !errors.Is(err, ErrMissingParameter) {
				t.Errorf("Expected ErrMissingParameter, got %v", err)
			}
		})
	}
}

func TestGetUserTransportErrorUnwrapped(t *testing.T) {
	factories := map[string]Factory{"github": NewGitHub, "google": NewGoogle, "facebook": NewFacebook}

	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			p, err := factory(testCredentials(), WithHTTPClient(failingClient{}))
			if err != nil {
				t.Fatal(err)
			}

			_, err = p.GetUser(context.Background(), "https://x/cb?code=123&state=abc", "abc")
			if err != errTransport {
				t.Errorf("Expected the transport error unchanged, got %v", err)
			}
		})
	}
}
