package directmap

import (
	"iter"
	"slices"
	"sync"

	"github.com/hupe1980/directobj"
	"github.com/hupe1980/directobj/segment"
)

// Synchronized guards a Map with a mutex. Get takes the write lock because
// a read pass reuses the map's cursor.
type Synchronized[K comparable] struct {
	mu sync.RWMutex
	m  *Map[K]
}

// NewSynchronized wraps m. m must not be used directly afterwards.
func NewSynchronized[K comparable](m *Map[K]) *Synchronized[K] {
	return &Synchronized[K]{m: m}
}

func (s *Synchronized[K]) Put(k K, r directobj.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Put(k, r)
}

func (s *Synchronized[K]) Get(k K, r directobj.Record) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Get(k, r)
}

func (s *Synchronized[K]) Contains(k K) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m.Contains(k)
}

func (s *Synchronized[K]) Remove(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Remove(k)
}

func (s *Synchronized[K]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.Clear()
}

func (s *Synchronized[K]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m.Len()
}

func (s *Synchronized[K]) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m.Stats()
}

// Keys iterates a snapshot of the keys taken when iteration starts.
func (s *Synchronized[K]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		s.mu.RLock()
		keys := slices.Collect(s.m.Keys())
		s.mu.RUnlock()

		for _, k := range keys {
			if !yield(k) {
				return
			}
		}
	}
}

func (s *Synchronized[K]) SaveTo(w *segment.Writer, codec KeyCodec[K]) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m.SaveTo(w, codec)
}

func (s *Synchronized[K]) LoadFrom(r *segment.Reader, codec KeyCodec[K]) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.LoadFrom(r, codec)
}

func (s *Synchronized[K]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Close()
}
