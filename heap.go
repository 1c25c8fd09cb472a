package directobj

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/directobj/internal/arena"
	"github.com/hupe1980/directobj/resource"
)

// Heap owns the off-heap memory blocks are allocated from.
//
// A Heap is safe for concurrent use. Blocks are not: each Block must be
// used by one goroutine at a time.
type Heap struct {
	arena    *arena.Arena
	logger   *Logger
	metrics  MetricsCollector
	resource *resource.Controller
	closed   atomic.Bool
}

// NewHeap creates a heap. No memory is reserved until the first allocation.
func NewHeap(optFns ...Option) *Heap {
	opts := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	rc := opts.resource
	if rc == nil && opts.memoryLimit > 0 {
		rc = resource.NewController(resource.Config{MemoryLimitBytes: opts.memoryLimit})
	}

	var arenaOpts []arena.Option
	if opts.chunkSize > 0 {
		arenaOpts = append(arenaOpts, arena.WithChunkSize(opts.chunkSize))
	}
	if rc != nil {
		arenaOpts = append(arenaOpts, arena.WithMemoryAcquirer(rc))
	}

	return &Heap{
		arena:    arena.New(arenaOpts...),
		logger:   opts.logger,
		metrics:  opts.metricsCollector,
		resource: rc,
	}
}

var defaultHeap = sync.OnceValue(func() *Heap {
	return NewHeap(WithLogger(NewLogger(nil)))
})

// DefaultHeap returns the process-wide heap used by the package-level
// constructors. It logs to stderr at info level and is never closed.
func DefaultHeap() *Heap {
	return defaultHeap()
}

// Allocate reserves a zeroed block with an n-byte payload on the default heap.
func Allocate(n int) (*Block, error) {
	return DefaultHeap().Allocate(n)
}

// Allocate reserves a zeroed block with an n-byte payload.
func (h *Heap) Allocate(n int) (*Block, error) {
	if n < 0 || n > MaxPayloadLen {
		err := fmt.Errorf("%w: %d", ErrInvalidLength, n)
		h.metrics.RecordAlloc(n, err)
		return nil, err
	}

	mem, err := h.arena.Alloc(HeaderSize + n)
	if err != nil {
		err = translateError(err)
		h.logger.LogAllocFailure(n, err)
		h.metrics.RecordAlloc(n, err)
		return nil, err
	}

	b := &Block{heap: h, mem: mem}
	b.setLen(n)
	h.metrics.RecordAlloc(n, nil)
	return b, nil
}

// Logger returns the heap's logger.
func (h *Heap) Logger() *Logger { return h.logger }

// ResourceController returns the controller enforcing the heap's memory
// limit, or nil if the heap is unlimited.
func (h *Heap) ResourceController() *resource.Controller { return h.resource }

// HeapStats is a snapshot of heap memory usage.
type HeapStats struct {
	LiveBlocks    uint64
	TotalBlocks   uint64
	BytesReserved uint64 // mapped from the OS
	BytesUsed     uint64 // headers plus payloads of live blocks
}

// Stats returns a snapshot of heap memory usage.
func (h *Heap) Stats() HeapStats {
	s := h.arena.Stats()
	return HeapStats{
		LiveBlocks:    s.LiveAllocs,
		TotalBlocks:   s.TotalAllocs,
		BytesReserved: s.BytesReserved,
		BytesUsed:     s.BytesUsed,
	}
}

func (h *Heap) String() string {
	return h.arena.String()
}

// Close releases all memory at once. Blocks still alive become unbound and
// report ErrFreed. Close is idempotent.
func (h *Heap) Close() error {
	if h.closed.Swap(true) {
		return nil
	}
	live := h.arena.Stats().LiveAllocs
	err := h.arena.Close()
	h.logger.LogHeapClose(live, err)
	return err
}

// MaxPayloadLen is the largest payload a block can hold. The length header
// is a 32-bit value read back as a signed length.
const MaxPayloadLen = math.MaxInt32 - HeaderSize
