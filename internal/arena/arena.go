package arena

import (
	"errors"
	"fmt"
	"math/bits"
	"os"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/hupe1980/directobj/internal/conv"
	"github.com/hupe1980/directobj/mmap"
)

// MemoryAcquirer reserves memory before the arena maps it from the OS.
type MemoryAcquirer interface {
	AcquireMemory(amount int64) error
	ReleaseMemory(amount int64)
}

var (
	// ErrAllocationFailed is returned when memory cannot be obtained.
	ErrAllocationFailed = errors.New("arena: allocation failed")
	// ErrClosed is returned when allocating from a closed arena.
	ErrClosed = errors.New("arena: closed")
	// ErrInvalidSize is returned for negative allocation sizes.
	ErrInvalidSize = errors.New("arena: invalid size")
)

const (
	// DefaultChunkSize is the default size of a chunk (1MB).
	DefaultChunkSize = 1024 * 1024
	// Alignment is the alignment of every returned slice.
	Alignment = 8
	// MaxClassSize is the largest size class served from chunks, header included.
	MaxClassSize = 64 * 1024

	headerSize    = 8
	minClassShift = 4 // 16 bytes: header + free-list link
	maxClassShift = 16
	numClasses    = maxClassShift - minClassShift + 1

	largeClass uint32 = 0xFF
	liveMagic  uint32 = 0xB10CA11C
	freeMagic  uint32 = 0xF4EEB10C
)

// Stats tracks arena memory usage metrics.
//
//   - BytesReserved: memory currently mapped from the OS
//   - BytesUsed: bytes requested by live allocations
//   - BytesWasted: chunk tails too small for the next slot
type Stats struct {
	ChunksAllocated uint64 // Historical: total chunks ever mapped
	LargeMappings   uint64 // Current: dedicated mappings for large requests
	BytesReserved   uint64
	BytesUsed       uint64
	BytesWasted     uint64
	LiveAllocs      uint64
	TotalAllocs     uint64 // Historical
	TotalFrees      uint64 // Historical
}

type atomicStats struct {
	ChunksAllocated atomic.Uint64
	LargeMappings   atomic.Uint64
	BytesReserved   atomic.Uint64
	BytesUsed       atomic.Uint64
	BytesWasted     atomic.Uint64
	LiveAllocs      atomic.Uint64
	TotalAllocs     atomic.Uint64
	TotalFrees      atomic.Uint64
}

// Arena is a size-class allocator over anonymous mappings.
// All methods are safe for concurrent use.
type Arena struct {
	mu        sync.Mutex
	chunkSize int
	chunks    []*mmap.Mapping
	current   []byte // unused tail of the newest chunk
	free      [numClasses]unsafe.Pointer
	large     map[unsafe.Pointer]*mmap.Mapping
	acquirer  MemoryAcquirer
	closed    bool
	stats     atomicStats
}

// Option is a configuration option for Arena.
type Option func(*Arena)

// WithChunkSize sets the chunk size. It is rounded up to a power of two and
// never smaller than MaxClassSize.
func WithChunkSize(size int) Option {
	return func(a *Arena) {
		a.chunkSize = size
	}
}

// WithMemoryAcquirer sets the memory acquirer for the arena.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(a *Arena) {
		a.acquirer = acquirer
	}
}

// New creates a new Arena. No memory is mapped until the first allocation.
func New(opts ...Option) *Arena {
	a := &Arena{
		chunkSize: DefaultChunkSize,
		large:     make(map[unsafe.Pointer]*mmap.Mapping),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.chunkSize < MaxClassSize {
		a.chunkSize = MaxClassSize
	}
	a.chunkSize = 1 << bits.Len(uint(a.chunkSize-1)) //nolint:gosec // chunkSize > 0

	return a
}

// Alloc returns a zeroed slice of exactly n bytes of off-heap memory.
// Alloc(0) returns nil.
func (a *Arena) Alloc(n int) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocLocked(n)
}

// Realloc resizes b to n bytes, preserving min(len(b), n) bytes of content.
// The memory is reused in place when the size class still fits; otherwise it
// moves and b must no longer be used.
func (a *Arena) Realloc(b []byte, n int) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(b) == 0 {
		return a.allocLocked(n)
	}
	if n <= 0 {
		a.freeLocked(b)
		return nil, nil
	}
	if a.closed {
		return nil, ErrClosed
	}

	data := unsafe.Pointer(unsafe.SliceData(b))
	slot := unsafe.Add(data, -headerSize)
	hdr := header(slot)
	if hdr[1] != liveMagic {
		panic("arena: realloc of unknown or freed memory")
	}

	if n <= a.capacity(slot, hdr[0]) {
		grown := unsafe.Slice((*byte)(data), n)
		if n > len(b) {
			clear(grown[len(b):])
		}
		a.addUsed(n - len(b))
		return grown, nil
	}

	nb, err := a.allocLocked(n)
	if err != nil {
		return nil, err
	}
	copy(nb, b)
	a.freeLocked(b)
	return nb, nil
}

// Free returns b to the arena. Freeing nil or an empty slice is a no-op, as
// is any Free after Close. Freeing the same memory twice panics.
func (a *Arena) Free(b []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.freeLocked(b)
}

func (a *Arena) allocLocked(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrInvalidSize
	}
	if n == 0 {
		return nil, nil
	}
	if a.closed {
		return nil, ErrClosed
	}

	need := n + headerSize

	var (
		slot  unsafe.Pointer
		class uint32
		err   error
	)
	if need > MaxClassSize {
		slot, err = a.mapLarge(need)
		class = largeClass
	} else {
		class = classFor(need)
		slot = a.free[class]
		if slot != nil {
			a.free[class] = *(*unsafe.Pointer)(unsafe.Add(slot, headerSize))
		} else {
			slot, err = a.carve(classSize(class))
		}
	}
	if err != nil {
		return nil, err
	}

	hdr := header(slot)
	hdr[0], hdr[1] = class, liveMagic

	b := unsafe.Slice((*byte)(unsafe.Add(slot, headerSize)), n)
	clear(b)

	a.addUsed(n)
	a.stats.LiveAllocs.Add(1)
	a.stats.TotalAllocs.Add(1)
	return b, nil
}

func (a *Arena) freeLocked(b []byte) {
	if len(b) == 0 || a.closed {
		return
	}

	slot := unsafe.Add(unsafe.Pointer(unsafe.SliceData(b)), -headerSize)
	hdr := header(slot)
	if hdr[1] != liveMagic {
		panic("arena: free of unknown or already freed memory")
	}
	hdr[1] = freeMagic

	a.addUsed(-len(b))
	a.stats.LiveAllocs.Add(^uint64(0))
	a.stats.TotalFrees.Add(1)

	if hdr[0] == largeClass {
		m := a.large[slot]
		delete(a.large, slot)
		a.unmap(m)
		a.stats.LargeMappings.Add(^uint64(0))
		return
	}

	*(*unsafe.Pointer)(unsafe.Add(slot, headerSize)) = a.free[hdr[0]]
	a.free[hdr[0]] = slot
}

// carve takes size bytes from the current chunk, mapping a new chunk when the
// tail is too small.
func (a *Arena) carve(size int) (unsafe.Pointer, error) {
	if len(a.current) < size {
		if err := a.mapChunk(); err != nil {
			return nil, err
		}
	}
	slot := unsafe.Pointer(unsafe.SliceData(a.current))
	a.current = a.current[size:]
	return slot, nil
}

func (a *Arena) mapChunk() error {
	m, err := a.mapOS(a.chunkSize)
	if err != nil {
		return err
	}

	if tail := len(a.current); tail > 0 {
		a.stats.BytesWasted.Add(uint64(tail))
	}

	a.chunks = append(a.chunks, m)
	a.current = m.Bytes()
	a.stats.ChunksAllocated.Add(1)
	return nil
}

func (a *Arena) mapLarge(need int) (unsafe.Pointer, error) {
	page := os.Getpagesize()
	size := (need + page - 1) / page * page

	m, err := a.mapOS(size)
	if err != nil {
		return nil, err
	}

	slot := unsafe.Pointer(unsafe.SliceData(m.Bytes()))
	a.large[slot] = m
	a.stats.LargeMappings.Add(1)
	return slot, nil
}

func (a *Arena) mapOS(size int) (*mmap.Mapping, error) {
	if a.acquirer != nil {
		if err := a.acquirer.AcquireMemory(int64(size)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAllocationFailed, err)
		}
	}

	m, err := mmap.MapAnon(size)
	if err != nil {
		if a.acquirer != nil {
			a.acquirer.ReleaseMemory(int64(size))
		}
		return nil, fmt.Errorf("%w: map %d bytes: %w", ErrAllocationFailed, size, err)
	}

	sizeU64, _ := conv.IntToUint64(size)
	a.stats.BytesReserved.Add(sizeU64)
	return m, nil
}

func (a *Arena) unmap(m *mmap.Mapping) {
	size := m.Size()
	_ = m.Close()
	if a.acquirer != nil {
		a.acquirer.ReleaseMemory(int64(size))
	}
	sizeU64, _ := conv.IntToUint64(size)
	a.stats.BytesReserved.Add(-sizeU64)
}

func (a *Arena) capacity(slot unsafe.Pointer, class uint32) int {
	if class == largeClass {
		return a.large[slot].Size() - headerSize
	}
	return classSize(class) - headerSize
}

func (a *Arena) addUsed(delta int) {
	a.stats.BytesUsed.Add(uint64(int64(delta))) //nolint:gosec // two's complement add
}

// Stats returns the current arena statistics.
func (a *Arena) Stats() Stats {
	return Stats{
		ChunksAllocated: a.stats.ChunksAllocated.Load(),
		LargeMappings:   a.stats.LargeMappings.Load(),
		BytesReserved:   a.stats.BytesReserved.Load(),
		BytesUsed:       a.stats.BytesUsed.Load(),
		BytesWasted:     a.stats.BytesWasted.Load(),
		LiveAllocs:      a.stats.LiveAllocs.Load(),
		TotalAllocs:     a.stats.TotalAllocs.Load(),
		TotalFrees:      a.stats.TotalFrees.Load(),
	}
}

// Close unmaps every chunk and large mapping. All slices handed out become
// invalid. Close is idempotent.
func (a *Arena) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	for _, m := range a.chunks {
		a.unmap(m)
	}
	for slot, m := range a.large {
		a.unmap(m)
		delete(a.large, slot)
	}
	a.chunks = nil
	a.current = nil
	a.free = [numClasses]unsafe.Pointer{}

	a.stats.LargeMappings.Store(0)
	a.stats.BytesUsed.Store(0)
	a.stats.LiveAllocs.Store(0)
	return nil
}

func (a *Arena) String() string {
	stats := a.Stats()
	return fmt.Sprintf(
		"Arena{chunks: %d, large: %d, reserved: %.2f MB, used: %.2f MB, wasted: %.2f KB, live: %d}",
		stats.ChunksAllocated,
		stats.LargeMappings,
		float64(stats.BytesReserved)/(1024*1024),
		float64(stats.BytesUsed)/(1024*1024),
		float64(stats.BytesWasted)/1024,
		stats.LiveAllocs,
	)
}

func header(slot unsafe.Pointer) *[2]uint32 {
	return (*[2]uint32)(slot)
}

// classFor returns the smallest class whose size is >= need.
func classFor(need int) uint32 {
	shift := bits.Len(uint(need - 1)) //nolint:gosec // need > 0
	if shift < minClassShift {
		shift = minClassShift
	}
	return uint32(shift - minClassShift) //nolint:gosec // shift <= maxClassShift
}

func classSize(class uint32) int {
	return 1 << (int(class) + minClassShift)
}
