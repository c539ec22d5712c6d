package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.AuthRedirects.WithLabelValues("github").Inc()
	m.ObserveCallback("github", ResultOK, 120*time.Millisecond)
	m.ObserveCallback("github", ResultVendorError, 80*time.Millisecond)
	m.ObserveCallback("github", ResultOK, 50*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthRedirects.WithLabelValues("github")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Callbacks.WithLabelValues("github", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Callbacks.WithLabelValues("github", ResultVendorError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CallbackDuration))
}

func TestNewReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := New(reg)
	require.NoError(t, err)
	second, err := New(reg)
	require.NoError(t, err)

	first.AuthRedirects.WithLabelValues("google").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(second.AuthRedirects.WithLabelValues("google")))
}
