package social

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// googleIssuers are the issuer values Google puts in ID tokens.
var googleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

// idTokenLeeway absorbs clock skew between this host and Google.
const idTokenLeeway = time.Minute

// verifyIDToken checks the signature, issuer, audience and expiry of a Google
// ID token. The key set is fetched for every call through the provider's
// HTTPClient; nothing is cached between calls.
func (g *Google) verifyIDToken(ctx context.Context, idToken string) (*jwt.RegisteredClaims, error) {
	var keys json.RawMessage
	if err := g.getJSON(ctx, "jwks", g.endpoints.JWKSURL, "", googleFailure, &keys); err != nil {
		return nil, err
	}

	jwks, err := keyfunc.NewJWKSetJSON(keys)
	if err != nil {
		return nil, g.vendorError(0, fmt.Sprintf("invalid signing keys: %v", err))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(idToken, claims, jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(g.Config("client_id")),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(idTokenLeeway),
	)
	if err != nil {
		return nil, g.vendorError(0, fmt.Sprintf("invalid id_token: %v", err))
	}
	if !token.Valid {
		return nil, g.vendorError(0, "invalid id_token")
	}
	if !slices.Contains(googleIssuers, claims.Issuer) {
		return nil, g.vendorError(0, fmt.Sprintf("invalid id_token issuer %q", claims.Issuer))
	}

	g.logger.Debug("id_token verified")
	return claims, nil
}
