package social

import (
	"context"
	"encoding/json"
	"strings"

	"golang.org/x/oauth2/endpoints"
)

// GoogleName is the registry name of the Google provider.
const GoogleName = "google"

var googleKeys = []string{"client_id", "client_secret", "redirect_uri"}

var googleScopes = []string{
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

// GoogleEndpoints are the default Google URLs. APIURL is the OpenID Connect
// userinfo endpoint.
var GoogleEndpoints = Endpoints{
	AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
	TokenURL: endpoints.Google.TokenURL,
	APIURL:   "https://openidconnect.googleapis.com/v1/userinfo",
	JWKSURL:  "https://www.googleapis.com/oauth2/v3/certs",
}

// Google signs users in with a Google account.
type Google struct {
	*Base
}

// NewGoogle constructs the Google provider. It requires client_id,
// client_secret and redirect_uri.
func NewGoogle(creds Credentials, opts ...Option) (Provider, error) {
	base, err := NewBase(GoogleName, googleKeys, GoogleEndpoints, creds, opts...)
	if err != nil {
		return nil, err
	}
	return &Google{Base: base}, nil
}

// AuthURL returns the Google consent page URL for state.
func (g *Google) AuthURL(state string) string {
	return g.SerializeURL(g.endpoints.AuthURL, map[string]string{
		"client_id":     g.Config("client_id"),
		"redirect_uri":  g.Config("redirect_uri"),
		"scope":         strings.Join(googleScopes, " "),
		"state":         state,
		"access_type":   "online",
		"response_type": "code",
	})
}

type googleProfile struct {
	Sub     string  `json:"sub"`
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Picture *string `json:"picture"`
}

// GetUser exchanges the callback code and reads the userinfo endpoint. When
// the token response carries an id_token it is verified and must name the
// same subject as the userinfo response.
func (g *Google) GetUser(ctx context.Context, uri, state string, opts ...CallbackOption) (*User, error) {
	code, err := g.parseCallback(uri, state, opts)
	if err != nil {
		return nil, err
	}

	token, err := g.exchangeCode(ctx, map[string]string{
		"client_id":     g.Config("client_id"),
		"client_secret": g.Config("client_secret"),
		"redirect_uri":  g.Config("redirect_uri"),
		"code":          code,
		"grant_type":    "authorization_code",
	}, googleFailure)
	if err != nil {
		return nil, err
	}

	var subject string
	if idToken, _ := token.Extra("id_token").(string); idToken != "" {
		claims, err := g.verifyIDToken(ctx, idToken)
		if err != nil {
			return nil, err
		}
		subject = claims.Subject
	}

	var (
		profile googleProfile
		raw     map[string]any
	)
	err = g.getJSON(ctx, "userinfo", g.endpoints.APIURL, token.Type()+" "+token.AccessToken, googleFailure, &profile, &raw)
	if err != nil {
		return nil, err
	}
	if profile.Sub == "" {
		return nil, g.vendorError(0, "userinfo response has no sub")
	}
	if subject != "" && subject != profile.Sub {
		return nil, g.vendorError(0, "id_token subject does not match userinfo subject")
	}

	user := &User{
		ID:     stringPtr(profile.Sub),
		Name:   profile.Name,
		Email:  profile.Email,
		Avatar: profile.Picture,
	}
	user.SetRaw(raw)
	return user, nil
}

// googleFailure reads the OAuth error shape ("error" and
// "error_description") and the Google API shape ({"error": {"message"}}).
func googleFailure(status int, body []byte) (string, bool) {
	var e struct {
		Error            json.RawMessage `json:"error"`
		ErrorDescription string          `json:"error_description"`
	}
	_ = json.Unmarshal(body, &e)

	msg := e.ErrorDescription
	if msg == "" && len(e.Error) > 0 {
		var s string
		var obj struct {
			Message string `json:"message"`
		}
		switch {
		case json.Unmarshal(e.Error, &s) == nil:
			msg = s
		case json.Unmarshal(e.Error, &obj) == nil:
			msg = obj.Message
		}
	}

	if !isSuccess(status) {
		if msg == "" {
			msg = fallbackMessage(status, body)
		}
		return msg, true
	}
	if msg != "" {
		return msg, true
	}
	return "", false
}
