package directobj

import (
	"github.com/hupe1980/directobj/resource"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	resource         *resource.Controller
	memoryLimit      int64
	chunkSize        int
}

// Option configures a Heap.
type Option func(*options)

// WithLogger sets the structured logger used for pass warnings and
// allocation failures.
//
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics sink.
//
// If nil is passed, NoopMetricsCollector is used.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithResourceController shares a resource controller between the heap and
// other components (e.g. segment writers), so memory and IO budgets are
// enforced globally.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resource = rc
	}
}

// WithMemoryLimit caps the off-heap memory the heap may reserve from the OS.
// Allocations beyond the limit fail with ErrAllocationFailed.
//
// Ignored when WithResourceController is also given.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithChunkSize sets the size of the mappings small blocks are carved from.
// It is rounded up to a power of two and never smaller than 64 KiB.
func WithChunkSize(size int) Option {
	return func(o *options) {
		o.chunkSize = size
	}
}
