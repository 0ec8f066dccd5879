// File: client/reactor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reactor construction, session registration and the event loop.

package client

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/momentics/hioload-irc/api"
	"github.com/momentics/hioload-irc/codec"
	"github.com/momentics/hioload-irc/control"
	"github.com/momentics/hioload-irc/internal/concurrency"
	"github.com/momentics/hioload-irc/reactor"
	"github.com/momentics/hioload-irc/session"
)

const (
	// DefaultQueueCapacity bounds the action queue of a reactor.
	DefaultQueueCapacity = 1024
	// DefaultEventCapacity is the number of events fetched per wait.
	DefaultEventCapacity = 512
)

// Option customizes a Reactor.
type Option func(*Reactor)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reactor) {
		if l != nil {
			r.log = l
		}
	}
}

// WithQueueCapacity bounds the cross-goroutine action queue. The capacity
// is rounded up to a power of two.
func WithQueueCapacity(n int) Option {
	return func(r *Reactor) {
		if n > 0 {
			r.queueCapacity = n
		}
	}
}

// WithMaxSessions caps AddSession. 0 leaves only the token space limit.
func WithMaxSessions(n int) Option {
	return func(r *Reactor) {
		if n >= 0 {
			r.maxSessions = n
		}
	}
}

// WithEventCapacity sets how many readiness events one wait may return.
func WithEventCapacity(n int) Option {
	return func(r *Reactor) {
		if n > 0 {
			r.eventCapacity = n
		}
	}
}

// WithCPU pins the goroutine that calls Run to cpu.
func WithCPU(cpu int) Option {
	return func(r *Reactor) {
		r.cpu = cpu
		r.pin = true
	}
}

// WithMetrics records reactor activity on m.
func WithMetrics(m *control.Metrics) Option {
	return func(r *Reactor) { r.metrics = m }
}

// WithCodec sets the codec used to turn PING into PONG. It should match the
// codec of the connections.
func WithCodec(c api.Codec) Option {
	return func(r *Reactor) {
		if c != nil {
			r.codec = c
		}
	}
}

// sessionEntry is reactor-owned state of one session.
type sessionEntry struct {
	id       SessionID
	sess     *session.Session
	out      *outQueue
	writable bool
	log      *zap.Logger
}

// Reactor multiplexes IRC sessions on the goroutine that calls Run.
type Reactor struct {
	id            uuid.UUID
	log           *zap.Logger
	metrics       *control.Metrics
	codec         api.Codec
	queueCapacity int
	maxSessions   int
	eventCapacity int
	cpu           int
	pin           bool

	queue   *concurrency.LockFreeQueue[Action]
	waker   reactor.Waker
	pending atomic.Bool
	started atomic.Bool

	sessions []*sessionEntry
	handler  Handler
	handle   Handle
}

// New creates a reactor with no sessions.
func New(opts ...Option) (*Reactor, error) {
	r := &Reactor{
		id:            uuid.New(),
		log:           zap.NewNop(),
		codec:         codec.IRC{},
		queueCapacity: DefaultQueueCapacity,
		eventCapacity: DefaultEventCapacity,
	}
	for _, opt := range opts {
		opt(r)
	}

	waker, err := reactor.NewWaker()
	if err != nil {
		return nil, fmt.Errorf("client: create waker: %w", err)
	}
	r.waker = waker
	r.queue = concurrency.NewLockFreeQueue[Action](r.queueCapacity)
	r.handle = Handle{owner: r.id, queue: r.queue, waker: r.waker, pending: &r.pending}
	r.log = r.log.With(zap.Stringer("reactor", r.id))
	return r, nil
}

// ID identifies the reactor in SessionIDs and logs.
func (r *Reactor) ID() uuid.UUID { return r.id }

// Handle returns the cross-goroutine handle of r.
func (r *Reactor) Handle() Handle { return r.handle }

// Len returns the number of sessions.
func (r *Reactor) Len() int { return len(r.sessions) }

// AddSession hands s to the reactor. Must be called before Run from the
// goroutine that owns r. Handshake lines s could not send yet are queued
// ahead of anything else.
func (r *Reactor) AddSession(s *session.Session) (SessionID, error) {
	if s == nil {
		return SessionID{}, fmt.Errorf("%w: nil session", api.ErrInvalidArgument)
	}
	if r.started.Load() {
		return SessionID{}, ErrReactorStarted
	}
	index := len(r.sessions)
	if r.maxSessions > 0 && index >= r.maxSessions {
		return SessionID{}, fmt.Errorf("%w: limit is %d", ErrTooManySessions, r.maxSessions)
	}
	id := SessionID{index: index, owner: r.id}
	if _, err := SessionContext(id).Token(); err != nil {
		return SessionID{}, err
	}

	e := &sessionEntry{
		id:   id,
		sess: s,
		out:  newOutQueue(),
		log:  r.log.With(zap.Int("session", index)),
	}
	if addr, err := s.PeerAddr(); err == nil {
		e.log = e.log.With(zap.Stringer("peer", addr))
	}
	for _, msg := range s.TakeBacklog() {
		e.out.push(msg)
		r.metrics.Queued()
	}
	r.sessions = append(r.sessions, e)
	r.metrics.SessionAdded()
	e.log.Debug("session added", zap.String("nickname", s.Nickname()), zap.Int("backlog", e.out.len()))
	return id, nil
}

// AddSessionBuilder starts b and adds the resulting session.
func (r *Reactor) AddSessionBuilder(b *session.Builder) (SessionID, error) {
	if r.started.Load() {
		return SessionID{}, ErrReactorStarted
	}
	s, err := b.Start()
	if err != nil {
		return SessionID{}, err
	}
	return r.AddSession(s)
}

// Run registers every session and blocks dispatching events to h.
// It returns only when the poller fails.
func (r *Reactor) Run(h Handler) error {
	if !r.started.CompareAndSwap(false, true) {
		return ErrReactorStarted
	}
	r.handler = h

	if r.pin {
		if err := concurrency.PinCurrentThread(r.cpu); err != nil {
			return fmt.Errorf("client: %w", err)
		}
		defer func() { _ = concurrency.UnpinCurrentThread() }()
	}

	poller, err := reactor.NewReactor()
	if err != nil {
		return fmt.Errorf("client: create poller: %w", err)
	}
	defer poller.Close()

	for _, e := range r.sessions {
		if err := r.register(poller, e); err != nil {
			return err
		}
	}
	if err := poller.Register(r.waker.Fd(), controlToken, reactor.Readable); err != nil {
		return fmt.Errorf("client: register waker: %w", err)
	}
	r.log.Info("reactor running", zap.Int("sessions", len(r.sessions)))

	// actions queued before Run
	r.drainActions()

	events := make([]reactor.Event, r.eventCapacity)
	for {
		n, err := poller.Wait(events)
		if err != nil {
			return fmt.Errorf("client: wait: %w", err)
		}
		for i := range events[:n] {
			r.handleEvent(events[i])
		}
	}
}

func (r *Reactor) register(poller reactor.EventReactor, e *sessionEntry) error {
	tok, err := SessionContext(e.id).Token()
	if err != nil {
		return err
	}
	fd, err := e.sess.Fd()
	if err != nil {
		return fmt.Errorf("client: session %d: %w", e.id.index, err)
	}
	if err := poller.Register(fd, tok, reactor.Readable|reactor.Writable); err != nil {
		return fmt.Errorf("client: register session %d: %w", e.id.index, err)
	}
	return nil
}

func (r *Reactor) handleEvent(ev reactor.Event) {
	ctx, ok := contextFromToken(ev.Token, r.id)
	if !ok {
		r.log.Warn("event for unknown token", zap.Uint64("token", uint64(ev.Token)))
		return
	}
	if ctx.IsControl() {
		r.drainActions()
		return
	}
	id, _ := ctx.Session()
	e := r.entry(id)
	if e == nil {
		r.log.Warn("event for unknown session", zap.Int("session", id.index))
		return
	}
	if ev.Writable {
		e.writable = true
	}
	if e.writable {
		r.flush(e)
	}
	if ev.Readable || ev.Closed {
		r.receive(e)
	}
}

func (r *Reactor) entry(id SessionID) *sessionEntry {
	if id.owner != r.id || id.index < 0 || id.index >= len(r.sessions) {
		return nil
	}
	return r.sessions[id.index]
}

// drainActions consumes every queued action. The wake flag is cleared
// before draining so an action enqueued meanwhile raises a new wake-up.
func (r *Reactor) drainActions() {
	if err := r.waker.Reset(); err != nil {
		r.log.Warn("reset waker", zap.Error(err))
	}
	r.pending.Store(false)
	for {
		a, ok := r.queue.Dequeue()
		if !ok {
			return
		}
		r.metrics.Action()
		r.apply(a)
	}
}

func (r *Reactor) apply(a Action) {
	switch v := a.(type) {
	case SendRawAction:
		e := r.entry(v.Session)
		if e == nil {
			r.log.Warn("dropping action for unknown session", zap.Stringer("target", v.Session))
			r.metrics.Dropped(control.DropUnknownTarget)
			return
		}
		r.send(e, v.Msg)
	default:
		r.log.Warn("dropping unknown action", zap.String("type", fmt.Sprintf("%T", a)))
	}
}
