// Package metrics defines the Prometheus metrics of the demo callback server.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Callback results.
const (
	ResultOK            = "ok"
	ResultInvalidState  = "invalid_state"
	ResultContractError = "contract_error"
	ResultVendorError   = "vendor_error"
	ResultTransport     = "transport_error"
)

// Metrics groups the server's collectors.
type Metrics struct {
	AuthRedirects    *prometheus.CounterVec
	Callbacks        *prometheus.CounterVec
	CallbackDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg (or the default
// registerer if nil). Collectors already registered are reused.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		AuthRedirects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "social_auth_redirects_total",
			Help: "Authorization redirects issued, by provider",
		}, []string{"provider"}),

		Callbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "social_callbacks_total",
			Help: "Callbacks handled, by provider and result",
		}, []string{"provider", "result"}),

		CallbackDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "social_callback_duration_seconds",
			Help:    "Time spent redeeming a callback with the vendor",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
	}

	var err error
	if m.AuthRedirects, err = register(reg, m.AuthRedirects); err != nil {
		return nil, err
	}
	if m.Callbacks, err = register(reg, m.Callbacks); err != nil {
		return nil, err
	}
	if m.CallbackDuration, err = register(reg, m.CallbackDuration); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveCallback records one callback outcome.
func (m *Metrics) ObserveCallback(provider, result string, took time.Duration) {
	m.Callbacks.WithLabelValues(provider, result).Inc()
	m.CallbackDuration.WithLabelValues(provider).Observe(took.Seconds())
}
