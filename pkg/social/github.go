package social

import (
	"context"
	"encoding/json"

	"golang.org/x/oauth2/endpoints"
)

// GitHubName is the registry name of the GitHub provider.
const GitHubName = "github"

var githubKeys = []string{"client_id", "client_secret", "redirect_uri"}

// GitHubEndpoints are the default github.com URLs.
var GitHubEndpoints = Endpoints{
	AuthURL:  endpoints.GitHub.AuthURL,
	TokenURL: endpoints.GitHub.TokenURL,
	APIURL:   "https://api.github.com",
}

// GitHub signs users in with github.com.
type GitHub struct {
	*Base
}

// NewGitHub constructs the GitHub provider. It requires client_id,
// client_secret and redirect_uri.
func NewGitHub(creds Credentials, opts ...Option) (Provider, error) {
	base, err := NewBase(GitHubName, githubKeys, GitHubEndpoints, creds, opts...)
	if err != nil {
		return nil, err
	}
	return &GitHub{Base: base}, nil
}

// AuthURL returns the github.com authorization URL for state.
func (g *GitHub) AuthURL(state string) string {
	return g.SerializeURL(g.endpoints.AuthURL, map[string]string{
		"client_id":     g.Config("client_id"),
		"redirect_uri":  g.Config("redirect_uri"),
		"scope":         "user:email",
		"state":         state,
		"allow_signup":  "true",
		"response_type": "code",
	})
}

type githubProfile struct {
	ID        json.Number `json:"id"`
	Login     string      `json:"login"`
	Name      *string     `json:"name"`
	AvatarURL *string     `json:"avatar_url"`
}

type githubEmail struct {
	Email   string `json:"email"`
	Primary bool   `json:"primary"`
}

// GetUser exchanges the callback code and reads the profile and the primary
// email address.
func (g *GitHub) GetUser(ctx context.Context, uri, state string, opts ...CallbackOption) (*User, error) {
	code, err := g.parseCallback(uri, state, opts)
	if err != nil {
		return nil, err
	}

	token, err := g.exchangeCode(ctx, map[string]string{
		"client_id":     g.Config("client_id"),
		"client_secret": g.Config("client_secret"),
		"redirect_uri":  g.Config("redirect_uri"),
		"code":          code,
		"state":         state,
	}, githubFailure)
	if err != nil {
		return nil, err
	}
	auth := "token " + token.AccessToken

	var (
		profile githubProfile
		raw     map[string]any
	)
	if err := g.getJSON(ctx, "user", g.endpoints.APIURL+"/user", auth, githubFailure, &profile, &raw); err != nil {
		return nil, err
	}
	if profile.ID == "" {
		return nil, g.vendorError(0, "user response has no id")
	}
	if profile.Login == "" {
		return nil, g.vendorError(0, "user response has no login")
	}

	var emails []githubEmail
	if err := g.getJSON(ctx, "emails", g.endpoints.APIURL+"/user/emails", auth, githubFailure, &emails); err != nil {
		return nil, err
	}

	user := &User{
		ID:       stringPtr(profile.ID.String()),
		Name:     profile.Name,
		Nickname: stringPtr(profile.Login),
		Avatar:   profile.AvatarURL,
	}
	user.set(AttrEmail, primaryEmail(emails))
	user.SetRaw(raw)
	return user, nil
}

// primaryEmail returns the first address flagged primary, or nil when none is.
func primaryEmail(emails []githubEmail) *string {
	for _, e := range emails {
		if e.Primary {
			return stringPtr(e.Email)
		}
	}
	return nil
}

// githubFailure reads GitHub's two error shapes: a non-2xx status with a
// "message", and a 2xx body with "error" (token endpoint).
func githubFailure(status int, body []byte) (string, bool) {
	var e struct {
		Message          string `json:"message"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	// The emails endpoint returns a JSON array; a decode error just means no
	// error object.
	_ = json.Unmarshal(body, &e)

	if !isSuccess(status) {
		if e.Message != "" {
			return e.Message, true
		}
		return fallbackMessage(status, body), true
	}
	if e.Error != "" {
		if e.ErrorDescription != "" {
			return e.ErrorDescription, true
		}
		return e.Error, true
	}
	return "", false
}
