package directmap

import (
	"errors"
	"iter"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/directobj"
)

// ErrClosed is returned by operations on a closed Map.
var ErrClosed = errors.New("directmap: closed")

// Map maps keys to records serialized into off-heap blocks.
type Map[K comparable] struct {
	heap    *directobj.Heap
	index   map[K]uint32
	keys    []K
	slots   []*directobj.Block
	free    *roaring.Bitmap // vacated slot ids below len(slots)
	cursor  directobj.Cursor
	inPlace bool
	logger  *directobj.Logger
	closed  bool
}

// Stats describes the slot table of a Map.
type Stats struct {
	Len          int
	Slots        int
	FreeSlots    int
	PayloadBytes int64
}

// New creates a Map that allocates its blocks on h. A nil h uses the
// default heap.
func New[K comparable](h *directobj.Heap, optFns ...Option) *Map[K] {
	if h == nil {
		h = directobj.DefaultHeap()
	}

	var opts options
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Map[K]{
		heap:    h,
		index:   make(map[K]uint32, opts.capacity),
		keys:    make([]K, 0, opts.capacity),
		slots:   make([]*directobj.Block, 0, opts.capacity),
		free:    roaring.New(),
		inPlace: opts.inPlace,
		logger:  h.Logger().WithComponent("directmap"),
	}
}

// Heap returns the heap the map allocates on.
func (m *Map[K]) Heap() *directobj.Heap { return m.heap }

// Len returns the number of entries.
func (m *Map[K]) Len() int { return len(m.index) }

// Put stores r under k. An existing entry is replaced by a fresh block,
// or rewritten in place with WithInPlaceUpdate. If serialization fails the
// previous value is left untouched.
func (m *Map[K]) Put(k K, r directobj.Record) error {
	if m.closed {
		return ErrClosed
	}

	id, ok := m.index[k]
	if ok && m.inPlace {
		return m.slots[id].Update(r, &m.cursor)
	}

	b, err := m.heap.FromRecord(r, &m.cursor)
	if err != nil {
		return err
	}
	m.set(k, b)
	return nil
}

// set makes b the value of k, freeing any block it replaces.
func (m *Map[K]) set(k K, b *directobj.Block) {
	if id, ok := m.index[k]; ok {
		m.slots[id].Free()
		m.slots[id] = b
		return
	}

	id := m.allocSlot()
	m.slots[id] = b
	m.keys[id] = k
	m.index[k] = id
}

func (m *Map[K]) allocSlot() uint32 {
	if !m.free.IsEmpty() {
		id := m.free.Minimum()
		m.free.Remove(id)
		return id
	}

	var zero K
	m.slots = append(m.slots, nil)
	m.keys = append(m.keys, zero)
	return uint32(len(m.slots) - 1) //nolint:gosec // slot count is bounded by the index size
}

// Get repopulates r from the value stored under k. It reports false and
// leaves r untouched when k is absent.
func (m *Map[K]) Get(k K, r directobj.Record) (bool, error) {
	if m.closed {
		return false, ErrClosed
	}

	id, ok := m.index[k]
	if !ok {
		return false, nil
	}
	return true, m.slots[id].Populate(r, &m.cursor)
}

// Contains reports whether k has an entry.
func (m *Map[K]) Contains(k K) bool {
	_, ok := m.index[k]
	return ok
}

// Remove frees the value stored under k and deletes the entry.
func (m *Map[K]) Remove(k K) bool {
	id, ok := m.index[k]
	if !ok {
		return false
	}

	m.slots[id].Free()
	m.slots[id] = nil
	var zero K
	m.keys[id] = zero
	delete(m.index, k)
	m.free.Add(id)
	m.trimTail()
	return true
}

// trimTail drops vacated slots at the end of the table.
func (m *Map[K]) trimTail() {
	for n := len(m.slots); n > 0 && m.slots[n-1] == nil; n-- {
		m.free.Remove(uint32(n - 1)) //nolint:gosec // n <= len(slots)
		m.slots = m.slots[:n-1]
		m.keys = m.keys[:n-1]
	}
}

// Clear frees every value and empties the map.
func (m *Map[K]) Clear() {
	for i, b := range m.slots {
		if b != nil {
			b.Free()
		}
		m.slots[i] = nil
	}

	clear(m.index)
	clear(m.keys)
	m.slots = m.slots[:0]
	m.keys = m.keys[:0]
	m.free.Clear()
}

// Close frees every value. Later operations return ErrClosed; Close itself
// is idempotent.
func (m *Map[K]) Close() error {
	if m.closed {
		return nil
	}
	n := m.Len()
	m.Clear()
	m.closed = true
	m.logger.Debug("map closed", "freed", n)
	return nil
}

// Keys returns an iterator over the keys in slot order. The map must not be
// modified during iteration.
func (m *Map[K]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for id, b := range m.slots {
			if b == nil {
				continue
			}
			if !yield(m.keys[id]) {
				return
			}
		}
	}
}

// entries yields every key with its block in slot order.
func (m *Map[K]) entries() iter.Seq2[K, *directobj.Block] {
	return func(yield func(K, *directobj.Block) bool) {
		for id, b := range m.slots {
			if b == nil {
				continue
			}
			if !yield(m.keys[id], b) {
				return
			}
		}
	}
}

// Stats returns a snapshot of the slot table.
func (m *Map[K]) Stats() Stats {
	s := Stats{
		Len:       m.Len(),
		Slots:     len(m.slots),
		FreeSlots: int(m.free.GetCardinality()), //nolint:gosec // bounded by len(slots)
	}
	for _, b := range m.entries() {
		s.PayloadBytes += int64(b.Len())
	}
	return s
}
