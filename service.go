package hookpoint

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/zoobzio/clockz"
)

// Option configures a Hooks service during creation.
type Option func(*config)

// config holds internal configuration for service creation.
type config struct {
	clock     clockz.Clock // Time abstraction for deterministic testing
	logger    zerolog.Logger
	store     Store
	workers   int
	queueSize int
	maxWait   time.Duration
}

// WithWorkers sets the number of worker goroutines for async dispatch.
// Default is 4 workers.
func WithWorkers(count int) Option {
	return func(c *config) {
		c.workers = count
	}
}

// WithQueueSize sets the async dispatch queue size.
// Default is 0, which auto-calculates as workers * 2.
func WithQueueSize(size int) Option {
	return func(c *config) {
		c.queueSize = size
	}
}

// WithClock sets the clock implementation for time operations.
// Default is clockz.RealClock for production use.
// Use clockz.FakeClock for deterministic testing.
func WithClock(clock clockz.Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithLogger sets the logger used to report unexpected registrar messages
// and async dispatch panics. Default is a no-op logger; reporting never
// blocks or fails the caller either way.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithStore sets the table backing the registry. Default is an in-process
// sync.Map-backed store. See the Store contract for the guarantees a
// replacement must provide.
func WithStore(store Store) Option {
	return func(c *config) {
		c.store = store
	}
}

// WithBackpressure makes RunAsync wait up to maxWait for queue space before
// rejecting with ErrQueueFull, smoothing out brief traffic spikes. Default
// is no waiting (immediate rejection).
func WithBackpressure(maxWait time.Duration) Option {
	return func(c *config) {
		c.maxWait = maxWait
	}
}

// EntryOption configures a single registration in Add. Plain registration
// means no filter and priority 0.
type EntryOption func(*Entry)

// WithFilter attaches a filter action evaluated before each invocation.
// A truthy filter result (anything other than nil or false) suppresses the
// action for that dispatch.
func WithFilter(f Action) EntryOption {
	return func(e *Entry) {
		e.Filter = f
	}
}

// WithFilterFunc is shorthand for WithFilter(Func(fn)).
func WithFilterFunc(fn Callback) EntryOption {
	return func(e *Entry) {
		e.Filter = Func(fn)
	}
}

// WithPriority sets the entry's priority. Lower values run earlier;
// equal-priority entries run in registration order.
func WithPriority(p int) EntryOption {
	return func(e *Entry) {
		e.Priority = p
	}
}

// Resource limits prevent memory exhaustion from unbounded registration.
// These limits are enforced by the registrar.
const (
	maxCallbacksPerPoint = 100   // Prevents a single hook point from dominating memory
	maxTotalCallbacks    = 10000 // Prevents unlimited registration across all hook points
)

// Registrar request messages. Every store mutation travels through the
// registrar mailbox, so writes are serialized and duplicate checks are
// race-free.
type addReq struct {
	point Key
	entry Entry
	reply chan error
}

type delReq struct {
	point  Key
	action Action
	reply  chan struct{}
}

type clearReq struct {
	point Key
	all   bool
	reply chan int
}

// call is the generic synchronous envelope. The registrar answers payloads
// it does not recognize with Ignored instead of crashing or stalling.
type call struct {
	msg   any
	reply chan any
}

// Hooks is the hook-point registry and dispatcher.
//
// This struct provides:
//   - Callback registration serialized through a registrar goroutine
//   - Priority-ordered callback storage with atomic snapshot publication
//   - Synchronous Run/Fold dispatch that never contends with registration
//   - A worker pool for async dispatch
//   - Resource limits and service lifecycle
//
// Thread Safety:
// All methods are safe for concurrent use. Mutations are linearized by the
// registrar; dispatch and Lookup read published snapshots without blocking.
//
// Usage Pattern:
// Embed Hooks as a private field and expose it where extension is wanted:
//
//	type Broker struct {
//	    hooks *hookpoint.Hooks
//	}
//
//	func (b *Broker) Hooks() *hookpoint.Hooks {
//	    return b.hooks
//	}
type Hooks struct {
	clock    clockz.Clock
	logger   zerolog.Logger
	store    Store
	requests chan any
	done     chan struct{} // closed when the registrar loop exits
	workers  *workerPool
	mu       sync.RWMutex
	closed   bool

	// Metrics field - zero initialization provides safe defaults
	metrics Metrics
}

// New creates a new hook-point service with the specified options.
//
// Default configuration:
//   - 4 worker goroutines for async dispatch
//   - Auto-calculated queue size (workers * 2)
//   - No-op logger, real clock, in-process store
//
// Example:
//
//	service := hookpoint.New(
//	    hookpoint.WithWorkers(8),
//	    hookpoint.WithLogger(logger),
//	)
//	defer service.Close()
func New(opts ...Option) *Hooks {
	cfg := config{
		clock:   clockz.RealClock,
		logger:  zerolog.Nop(),
		workers: 4,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.queueSize == 0 {
		cfg.queueSize = cfg.workers * 2
	}
	if cfg.store == nil {
		cfg.store = newSyncStore()
	}

	h := &Hooks{
		clock:    cfg.clock,
		logger:   cfg.logger,
		store:    cfg.store,
		requests: make(chan any),
		done:     make(chan struct{}),
	}

	h.workers = newWorkerPool(cfg, &h.metrics, h.executeTask)
	go h.registrar()
	return h
}

// Add registers an action at a hook point. Plain registration uses no
// filter and priority 0; WithFilter, WithFilterFunc and WithPriority adjust
// the entry.
//
// The returned Hook handle unregisters the entry via Unhook. Registration
// fails with ErrAlreadyExists when an action with the same identity is
// already present at the hook point; the existing registration is left
// unchanged.
func (h *Hooks) Add(point Key, action Action, opts ...EntryOption) (Hook, error) {
	if !action.valid() {
		return Hook{}, ErrInvalidAction
	}

	entry := Entry{
		ID:     uuid.NewString(),
		Action: action,
	}
	for _, opt := range opts {
		opt(&entry)
	}

	reply := make(chan error, 1)
	if !h.send(addReq{point: point, entry: entry, reply: reply}) {
		return Hook{}, ErrServiceClosed
	}
	if err := <-reply; err != nil {
		return Hook{}, err
	}

	return Hook{
		unhook: func() error {
			return h.Delete(point, action)
		},
	}, nil
}

// Delete unregisters the entry matching the action's identity from the hook
// point. Deleting an absent action or an unknown hook point is a no-op; the
// only possible error is ErrServiceClosed.
func (h *Hooks) Delete(point Key, action Action) error {
	reply := make(chan struct{}, 1)
	if !h.send(delReq{point: point, action: action, reply: reply}) {
		return ErrServiceClosed
	}
	<-reply
	return nil
}

// Clear removes all callbacks for the hook point and returns how many were
// removed. Returns 0 on a closed service.
func (h *Hooks) Clear(point Key) int {
	reply := make(chan int, 1)
	if !h.send(clearReq{point: point, reply: reply}) {
		return 0
	}
	return <-reply
}

// ClearAll removes all callbacks for all hook points and returns how many
// were removed. Returns 0 on a closed service.
func (h *Hooks) ClearAll() int {
	reply := make(chan int, 1)
	if !h.send(clearReq{all: true, reply: reply}) {
		return 0
	}
	return <-reply
}

// Lookup returns the current callback list for the hook point in dispatch
// order. The result is a copy; mutating it has no effect on the registry.
// An unknown hook point yields an empty list, never an error. Lookup never
// blocks on registration traffic.
func (h *Hooks) Lookup(point Key) []Entry {
	entries, ok := h.store.Get(point)
	if !ok {
		return nil
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Call sends a synchronous request to the registrar and returns its reply.
// Requests outside the registrar's protocol are reported to the logger and
// answered with Ignored; the registrar itself is unaffected. Returns
// ErrServiceClosed after Close.
func (h *Hooks) Call(msg any) any {
	reply := make(chan any, 1)
	if !h.send(call{msg: msg, reply: reply}) {
		return ErrServiceClosed
	}
	return <-reply
}

// Cast sends a fire-and-forget message to the registrar. Unrecognized
// messages are reported to the logger and dropped. Casts to a closed
// service are silently discarded.
func (h *Hooks) Cast(msg any) {
	h.send(msg)
}

// send delivers a message to the registrar mailbox unless the service is
// closed. The read lock spans the channel send so Close cannot close the
// mailbox between the state check and the send.
func (h *Hooks) send(msg any) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return false
	}
	h.requests <- msg
	return true
}

// Metrics returns current service metrics with thread-safe access.
func (h *Hooks) Metrics() Metrics {
	return Metrics{
		QueueDepth:          atomic.LoadInt64(&h.metrics.QueueDepth),
		QueueCapacity:       int64(cap(h.workers.tasks)),
		TasksProcessed:      atomic.LoadInt64(&h.metrics.TasksProcessed),
		TasksRejected:       atomic.LoadInt64(&h.metrics.TasksRejected),
		TasksFailed:         atomic.LoadInt64(&h.metrics.TasksFailed),
		TasksExpired:        atomic.LoadInt64(&h.metrics.TasksExpired),
		RegisteredCallbacks: atomic.LoadInt64(&h.metrics.RegisteredCallbacks),
		DuplicateRejections: atomic.LoadInt64(&h.metrics.DuplicateRejections),
		RunsCompleted:       atomic.LoadInt64(&h.metrics.RunsCompleted),
		CallbacksStopped:    atomic.LoadInt64(&h.metrics.CallbacksStopped),
		CallbacksFiltered:   atomic.LoadInt64(&h.metrics.CallbacksFiltered),
		UnexpectedMessages:  atomic.LoadInt64(&h.metrics.UnexpectedMessages),
	}
}

// Close shuts down the service gracefully: the registrar drains its
// mailbox, then the worker pool finishes queued async dispatches.
func (h *Hooks) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrAlreadyClosed
	}
	h.closed = true
	close(h.requests)
	h.mu.Unlock()

	// Wait for the registrar to finish in-flight mutations.
	<-h.done

	// Shutdown worker pool - this drains queued dispatches, so QueueDepth
	// reaches zero without further accounting here.
	h.workers.close()

	return nil
}

// registrar is the single logical writer. It applies mutations one at a
// time in arrival order, so adds and deletes are linearizable and no reader
// ever observes a partially-updated list.
func (h *Hooks) registrar() {
	defer close(h.done)

	for msg := range h.requests {
		switch req := msg.(type) {
		case addReq:
			req.reply <- h.applyAdd(req.point, req.entry)
		case delReq:
			h.applyDelete(req.point, req.action)
			req.reply <- struct{}{}
		case clearReq:
			req.reply <- h.applyClear(req.point, req.all)
		case call:
			h.reportUnexpected("call", req.msg)
			req.reply <- Ignored
		default:
			h.reportUnexpected("cast", msg)
		}
	}
}

// applyAdd performs the duplicate check, limit checks and stable insertion,
// then publishes the new list. Runs on the registrar goroutine only.
func (h *Hooks) applyAdd(point Key, entry Entry) error {
	entries, _ := h.store.Get(point)

	if containsAction(entries, entry.Action) {
		atomic.AddInt64(&h.metrics.DuplicateRejections, 1)
		return ErrAlreadyExists
	}
	if len(entries) >= maxCallbacksPerPoint {
		return ErrTooManyCallbacks
	}
	if atomic.LoadInt64(&h.metrics.RegisteredCallbacks) >= maxTotalCallbacks {
		return ErrTooManyCallbacks
	}

	h.store.Put(point, insertEntry(entries, entry))
	atomic.AddInt64(&h.metrics.RegisteredCallbacks, 1)

	h.logger.Debug().
		Str("hook_point", point).
		Str("entry_id", entry.ID).
		Int("priority", entry.Priority).
		Msg("callback registered")
	return nil
}

// applyDelete removes the matching entry and deletes the hook point when
// its list empties. Runs on the registrar goroutine only.
func (h *Hooks) applyDelete(point Key, action Action) {
	entries, ok := h.store.Get(point)
	if !ok {
		return
	}

	next, found := removeEntry(entries, action)
	if !found {
		return
	}

	// Empty hook points are removed entirely, indistinguishable from
	// never-registered ones.
	if len(next) == 0 {
		h.store.Delete(point)
	} else {
		h.store.Put(point, next)
	}
	atomic.AddInt64(&h.metrics.RegisteredCallbacks, -1)
}

// applyClear removes one hook point's callbacks, or every hook point's.
// Runs on the registrar goroutine only.
func (h *Hooks) applyClear(point Key, all bool) int {
	if !all {
		entries, ok := h.store.Get(point)
		if !ok {
			return 0
		}
		h.store.Delete(point)
		atomic.AddInt64(&h.metrics.RegisteredCallbacks, -int64(len(entries)))
		return len(entries)
	}

	count := 0
	h.store.Range(func(key Key, entries []Entry) bool {
		count += len(entries)
		h.store.Delete(key)
		return true
	})
	atomic.AddInt64(&h.metrics.RegisteredCallbacks, -int64(count))
	return count
}

// reportUnexpected logs an unrecognized registrar message. Fire-and-forget:
// it never blocks the registrar or fails the sender.
func (h *Hooks) reportUnexpected(category string, payload any) {
	atomic.AddInt64(&h.metrics.UnexpectedMessages, 1)
	h.logger.Warn().
		Str("category", category).
		Interface("payload", payload).
		Msg("unexpected registrar message")
}
