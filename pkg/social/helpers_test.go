package social

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testCredentials() Credentials {
	return Credentials{
		"client_id":     "test-client",
		"client_secret": "test-secret",
		"redirect_uri":  "http://localhost:8080/callback",
	}
}

// newVendorServer starts an httptest server with the given handlers mounted
// on a fresh mux.
func newVendorServer(t *testing.T, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.HandleFunc(pattern, h)
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errTransport is returned by failingClient for every request.
var errTransport = errors.New("connection refused")

type failingClient struct{}

func (failingClient) Do(*http.Request) (*http.Response, error) {
	return nil, errTransport
}

func assertProviderError(t *testing.T, err error, provider, message string) *ProviderError {
	t.Helper()

	if err == nil {
		t.Fatal("Expected provider error, got nil")
	}
	if !errors.Is(err, ErrProviderFailure) {
		t.Fatalf("Expected ErrProviderFailure, got %v", err)
	}
	if errors.Is(err, ErrSocial) {
		t.Fatalf("Provider error must not match ErrSocial: %v", err)
	}
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ProviderError, got %T", err)
	}
	if perr.Provider != provider {
		t.Errorf("Expected provider %q, got %q", provider, perr.Provider)
	}
	if message != "" && perr.Message != message {
		t.Errorf("Expected message %q, got %q", message, perr.Message)
	}
	return perr
}

func assertContractError(t *testing.T, err, sentinel error) {
	t.Helper()

	if !errors.Is(err, sentinel) {
		t.Fatalf("Expected %v, got %v", sentinel, err)
	}
	if !errors.Is(err, ErrSocial) {
		t.Errorf("Expected ErrSocial, got %v", err)
	}
	if errors.Is(err, ErrProviderFailure) {
		t.Errorf("Contract error must not match ErrProviderFailure: %v", err)
	}
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}
