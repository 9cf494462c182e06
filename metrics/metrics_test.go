package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-io/reactorcore/metrics"
)

func TestCollectorsObserveDispatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.New("reactorcore", "test")
	c.MustRegister(reg)

	c.ObserveDispatch("receiver", 5*time.Millisecond)
	c.ObserveDispatch("receiver", 10*time.Millisecond)
	c.SetManaged(3)

	families, err := reg.Gather()
	require.NoError(t, err)

	var sawCounter, sawGauge bool
	for _, f := range families {
		switch f.GetName() {
		case "reactorcore_test_events_dispatched_total":
			sawCounter = true
			require.Len(t, f.Metric, 1)
			assert.Equal(t, float64(2), f.Metric[0].GetCounter().GetValue())
		case "reactorcore_test_managed_providers":
			sawGauge = true
			assert.Equal(t, float64(3), f.Metric[0].GetGauge().GetValue())
		}
	}
	assert.True(t, sawCounter)
	assert.True(t, sawGauge)
}
