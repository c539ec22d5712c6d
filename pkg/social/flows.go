package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/jeremyhahn/go-social/pkg/query"
)

// failureFunc inspects a vendor response and reports the vendor's own error
// message when the response signals a failure.
type failureFunc func(status int, body []byte) (message string, failed bool)

// tokenResponse is the token endpoint payload shared by every vendor.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
	IDToken      string `json:"id_token"`
}

// exchangeCode posts form to the token endpoint and returns the access token.
// The id_token and scope, when present, are carried as token extras.
func (b *Base) exchangeCode(ctx context.Context, form map[string]string, failed failureFunc) (*oauth2.Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoints.TokenURL, strings.NewReader(query.Encode(form)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var resp tokenResponse
	if err := b.roundTrip(req, "token", failed, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, b.vendorError(0, "token response has no access_token")
	}

	token := &oauth2.Token{
		AccessToken:  resp.AccessToken,
		TokenType:    resp.TokenType,
		RefreshToken: resp.RefreshToken,
	}
	if resp.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	extra := map[string]any{}
	if resp.IDToken != "" {
		extra["id_token"] = resp.IDToken
	}
	if resp.Scope != "" {
		extra["scope"] = resp.Scope
	}
	return token.WithExtra(extra), nil
}

// getJSON fetches url with the given Authorization header and decodes the
// response into outs.
func (b *Base) getJSON(ctx context.Context, endpoint, url, authorization string, failed failureFunc, outs ...any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	return b.roundTrip(req, endpoint, failed, outs...)
}

// roundTrip sends req and decodes the body into each of outs. Transport
// errors are returned as is. A failure reported by the vendor, or a body that
// does not decode into outs, becomes a *ProviderError.
func (b *Base) roundTrip(req *http.Request, endpoint string, failed failureFunc, outs ...any) error {
	log := b.logger.With(zap.String("endpoint", endpoint))
	log.Debug("vendor request started", zap.String("method", req.Method))

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	log.Debug("vendor request finished", zap.Int("status", resp.StatusCode))

	if msg, bad := failed(resp.StatusCode, body); bad {
		return b.vendorError(resp.StatusCode, msg)
	}
	for _, out := range outs {
		if err := json.Unmarshal(body, out); err != nil {
			return b.vendorError(resp.StatusCode, fmt.Sprintf("malformed %s response: %v", endpoint, err))
		}
	}
	return nil
}

func (b *Base) vendorError(status int, message string) *ProviderError {
	return &ProviderError{Provider: b.name, StatusCode: status, Message: message}
}

// fallbackMessage is used when a failed response carries no readable message.
func fallbackMessage(status int, body []byte) string {
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("unexpected status %d", status)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
