package social

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
)

// FacebookName is the registry name of the Facebook provider.
const FacebookName = "facebook"

// FacebookAPIVersion is the Graph API version the default endpoints target.
const FacebookAPIVersion = "v2.9"

var facebookKeys = []string{"client_id", "client_secret", "redirect_uri"}

var facebookScopes = []string{"public_profile", "email"}

// FacebookEndpoints are the default Graph API URLs.
var FacebookEndpoints = Endpoints{
	AuthURL:  "https://www.facebook.com/" + FacebookAPIVersion + "/dialog/oauth",
	TokenURL: "https://graph.facebook.com/" + FacebookAPIVersion + "/oauth/access_token",
	APIURL:   "https://graph.facebook.com/" + FacebookAPIVersion,
}

// Facebook signs users in with a Facebook account.
type Facebook struct {
	*Base
}

// NewFacebook constructs the Facebook provider. It requires client_id,
// client_secret and redirect_uri.
func NewFacebook(creds Credentials, opts ...Option) (Provider, error) {
	base, err := NewBase(FacebookName, facebookKeys, FacebookEndpoints, creds, opts...)
	if err != nil {
		return nil, err
	}
	return &Facebook{Base: base}, nil
}

// AuthURL returns the Facebook login dialog URL for state.
func (f *Facebook) AuthURL(state string) string {
	return f.SerializeURL(f.endpoints.AuthURL, map[string]string{
		"client_id":     f.Config("client_id"),
		"redirect_uri":  f.Config("redirect_uri"),
		"state":         state,
		"scope":         strings.Join(facebookScopes, ","),
		"response_type": "code",
	})
}

type facebookProfile struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// GetUser exchanges the callback code, resolves the user's id through /me and
// then reads the full profile.
func (f *Facebook) GetUser(ctx context.Context, uri, state string, opts ...CallbackOption) (*User, error) {
	code, err := f.parseCallback(uri, state, opts)
	if err != nil {
		return nil, err
	}

	token, err := f.exchangeCode(ctx, map[string]string{
		"client_id":     f.Config("client_id"),
		"client_secret": f.Config("client_secret"),
		"redirect_uri":  f.Config("redirect_uri"),
		"code":          code,
		"grant_type":    "authorization_code",
	}, facebookFailure)
	if err != nil {
		return nil, err
	}
	auth := "OAuth " + token.AccessToken

	var me facebookProfile
	if err := f.getJSON(ctx, "me", f.endpoints.APIURL+"/me", auth, facebookFailure, &me); err != nil {
		return nil, err
	}
	if me.ID == "" {
		return nil, f.vendorError(0, "me response has no id")
	}

	profileURL := f.endpoints.APIURL + "/" + url.PathEscape(me.ID)
	var (
		profile facebookProfile
		raw     map[string]any
	)
	if err := f.getJSON(ctx, "profile", profileURL, auth, facebookFailure, &profile, &raw); err != nil {
		return nil, err
	}
	if profile.ID == "" {
		return nil, f.vendorError(0, "profile response has no id")
	}

	user := &User{
		ID:     stringPtr(profile.ID),
		Name:   profile.Name,
		Email:  profile.Email,
		Avatar: stringPtr(profileURL + "/picture"),
	}
	user.SetRaw(raw)
	return user, nil
}

// facebookFailure reads the Graph API error shape {"error": {"message"}}.
func facebookFailure(status int, body []byte) (string, bool) {
	var e struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &e)

	if e.Error != nil && e.Error.Message != "" {
		return e.Error.Message, true
	}
	if !isSuccess(status) || e.Error != nil {
		return fallbackMessage(status, body), true
	}
	return "", false
}
