package hookpoint

// Metrics provides observability data for service monitoring. All counter
// fields use atomic operations for thread safety. Capacity fields are static
// and don't require atomics.
type Metrics struct {
	// Async Dispatch Queue
	QueueDepth    int64 // Current tasks in the dispatch queue (atomic)
	QueueCapacity int64 // Dispatch queue capacity (static)

	// Async Throughput Counters (atomic operations required)
	TasksProcessed int64 // Async dispatches completed
	TasksRejected  int64 // Async dispatches rejected due to full queue
	TasksFailed    int64 // Async dispatches that panicked
	TasksExpired   int64 // Async dispatches abandoned on context cancellation

	// Registration Counters
	RegisteredCallbacks int64 // Currently registered callbacks (atomic)
	DuplicateRejections int64 // Adds rejected for duplicate action identity

	// Dispatch Counters
	RunsCompleted     int64 // Run and Fold calls that finished
	CallbacksStopped  int64 // Dispatches halted by a Stop verdict
	CallbacksFiltered int64 // Actions suppressed by a truthy filter

	// Registrar
	UnexpectedMessages int64 // Unrecognized registrar requests logged
}
