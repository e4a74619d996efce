package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveRegistration("success")
	m.ObserveRegistration("success")
	m.ObserveLogin("email", "invalid_credentials")
	m.ObserveTokenVerification("expired")
	m.ObserveCache("user", true)
	m.ObserveCache("user", false)
	m.ObservePublished("auth_events")
	m.ObserveEventProcessed("user.registered", "success")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RegistrationsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginsTotal.WithLabelValues("email", "invalid_credentials")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokenVerificationsTotal.WithLabelValues("expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("user")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("user")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueueMessagesPublished.WithLabelValues("auth_events")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsProcessedTotal.WithLabelValues("user.registered", "success")))
}

func TestMetrics_NilReceiverIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRegistration("success")
		m.ObserveLogin("username", "success")
		m.ObserveTokenVerification("valid")
		m.ObserveStoreOperation("file", "create", 0.01)
		m.ObserveCache("user", true)
		m.ObservePublished("auth_events")
		m.ObserveConsumed("auth_events")
		m.ObserveEventProcessed("user.logged_in", "success")
	})
}
