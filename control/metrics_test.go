package control

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	m.Received()
	m.Received()
	m.Sent()
	m.Queued()
	m.Queued()
	m.Dequeued(1)
	m.Dropped(DropSendFailed)
	m.Ping()
	m.SessionAdded()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.received))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sent))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.queued))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.backlog))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dropped.WithLabelValues(DropSendFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pings))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessions))
}

func TestMetricsShareRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewMetrics(reg)
	require.NoError(t, err)
	b, err := NewMetrics(reg)
	require.NoError(t, err)

	a.Sent()
	b.Sent()
	assert.Equal(t, 2.0, testutil.ToFloat64(a.sent))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Received()
		m.Sent()
		m.Queued()
		m.Dequeued(3)
		m.Dropped(DropUnknownTarget)
		m.Action()
		m.Ping()
		m.DecodeError()
		m.SessionAdded()
	})
}
