package social

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// HTTPClient defines the interface for making HTTP requests.
// This abstraction lets callers supply their own transport, timeout and retry
// policy; this package adds none of its own.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// newDefaultHTTPClient creates the client used when no HTTPClient is supplied.
// It enforces TLS 1.2+ and sets no overall request timeout; deadlines come from
// the caller's context.
func newDefaultHTTPClient() HTTPClient {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{Transport: transport}
}
