// Package social signs users in through third-party identity vendors using the
// OAuth 2.0 authorization code flow, and returns a normalized User regardless
// of which vendor was used.
//
// # Providers
//
// A Manager is built once from a Config that maps provider names to
// credentials. Supported names are "github", "google" and "facebook"; each
// requires exactly the keys client_id, client_secret and redirect_uri.
//
//	manager, err := social.NewManager(social.Config{
//	    "github": {
//	        "client_id":     "your-client-id",
//	        "client_secret": "your-client-secret",
//	        "redirect_uri":  "https://app.example.com/auth/github/callback",
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	github, err := manager.Provider("github")
//
// # Authorization Code Flow
//
// The caller generates a random state, keeps it (for example in the session),
// and redirects the browser to AuthURL. When the vendor redirects back, the
// full callback URI and the kept state go to GetUser:
//
//	http.Redirect(w, r, github.AuthURL(state), http.StatusFound)
//
//	// in the callback handler
//	user, err := github.GetUser(r.Context(), r.URL.String(), state)
//	if err != nil {
//	    log.Printf("Sign-in failed: %v", err)
//	    return
//	}
//	fmt.Printf("Signed in: %s\n", *user.ID)
//
// GetUser rejects a callback whose state differs from the expected one before
// any request is made. InsecureSkipStateCheck disables the comparison for a
// single call.
//
// # Errors
//
// Failures detected by this package (configuration, unknown provider, missing
// callback parameters, state mismatch, unknown User attributes) match
// ErrSocial and a more specific sentinel via errors.Is. Failures reported by a
// vendor are *ProviderError values and match ErrProviderFailure. Transport
// errors from the HTTPClient are returned unchanged.
//
// # Transport
//
// Every vendor request goes through an HTTPClient. The package sets no
// timeouts and never retries; supply a client with the policy you need via
// WithHTTPClient, and use the context passed to GetUser for deadlines.
package social
