// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics for the IRC reactor, exported through Prometheus.

package control

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "hioload_irc"

// Drop reasons used as the "reason" label of dropped_total.
const (
	DropSendFailed    = "send_failed"
	DropUnknownTarget = "unknown_session"
)

// Metrics holds the reactor collectors. All methods are safe on a nil receiver.
type Metrics struct {
	received     prometheus.Counter
	sent         prometheus.Counter
	queued       prometheus.Counter
	dropped      *prometheus.CounterVec
	actions      prometheus.Counter
	pings        prometheus.Counter
	decodeErrors prometheus.Counter
	sessions     prometheus.Gauge
	backlog      prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg. A collector
// that is already registered is reused, so several reactors can share reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace, Name: name, Help: help,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace, Name: name, Help: help,
		})
	}

	m := &Metrics{
		received:     counter("received_total", "Messages received from servers."),
		sent:         counter("sent_total", "Messages accepted by a connection."),
		queued:       counter("queued_total", "Messages deferred to an output queue because the socket pushed back."),
		actions:      counter("actions_total", "Actions drained from the cross-goroutine queue."),
		pings:        counter("pings_total", "PING messages answered automatically."),
		decodeErrors: counter("decode_errors_total", "Received lines the codec rejected."),
		sessions:     gauge("sessions", "Sessions owned by reactors."),
		backlog:      gauge("output_queue_length", "Messages waiting in output queues."),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Name: "dropped_total",
			Help: "Outgoing messages or actions abandoned.",
		}, []string{"reason"}),
	}
	if reg == nil {
		return m, nil
	}

	collectors := []prometheus.Collector{
		m.received, m.sent, m.queued, m.dropped, m.actions,
		m.pings, m.decodeErrors, m.sessions, m.backlog,
	}
	for i, c := range collectors {
		reused, err := register(reg, c)
		if err != nil {
			return nil, fmt.Errorf("register metric %d: %w", i, err)
		}
		collectors[i] = reused
	}
	m.received = collectors[0].(prometheus.Counter)
	m.sent = collectors[1].(prometheus.Counter)
	m.queued = collectors[2].(prometheus.Counter)
	m.dropped = collectors[3].(*prometheus.CounterVec)
	m.actions = collectors[4].(prometheus.Counter)
	m.pings = collectors[5].(prometheus.Counter)
	m.decodeErrors = collectors[6].(prometheus.Counter)
	m.sessions = collectors[7].(prometheus.Gauge)
	m.backlog = collectors[8].(prometheus.Gauge)
	return m, nil
}

func register(reg prometheus.Registerer, c prometheus.Collector) (prometheus.Collector, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		return are.ExistingCollector, nil
	}
	return nil, err
}

func (m *Metrics) Received() {
	if m != nil {
		m.received.Inc()
	}
}

func (m *Metrics) Sent() {
	if m != nil {
		m.sent.Inc()
	}
}

// Queued records a deferred message and grows the backlog gauge.
func (m *Metrics) Queued() {
	if m != nil {
		m.queued.Inc()
		m.backlog.Inc()
	}
}

// Dequeued shrinks the backlog gauge by n.
func (m *Metrics) Dequeued(n int) {
	if m != nil && n > 0 {
		m.backlog.Sub(float64(n))
	}
}

func (m *Metrics) Dropped(reason string) {
	if m != nil {
		m.dropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) Action() {
	if m != nil {
		m.actions.Inc()
	}
}

func (m *Metrics) Ping() {
	if m != nil {
		m.pings.Inc()
	}
}

func (m *Metrics) DecodeError() {
	if m != nil {
		m.decodeErrors.Inc()
	}
}

func (m *Metrics) SessionAdded() {
	if m != nil {
		m.sessions.Inc()
	}
}
