package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersAll(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CartMutations.WithLabelValues("add").Inc()
	m.OrdersPlaced.Inc()
	m.OrderTotal.Observe(20)
	m.Logins.WithLabelValues("success").Inc()
	m.Registrations.WithLabelValues("duplicate_email").Inc()
	m.OutboxEvents.WithLabelValues("published").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 6)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CartMutations.WithLabelValues("add")))
}

func TestNew_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	assert.Panics(t, func() { New(reg) })
}
