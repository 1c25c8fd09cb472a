package directobj

import "sync"

// Scope frees every block it tracks when closed. It replaces finalizer
// based release with a deterministic one:
//
//	s := directobj.NewScope()
//	defer s.Close()
//	b, err := heap.NewBuilder().FromRecord(r).WithAutoRelease(s).Build()
//
// A Scope is safe for concurrent use.
type Scope struct {
	mu     sync.Mutex
	blocks []*Block
	closed bool
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{}
}

// Track registers b for release and returns it. Tracking on a closed scope
// frees b immediately.
func (s *Scope) Track(b *Block) *Block {
	if b == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		b.Free()
		return b
	}
	s.blocks = append(s.blocks, b)
	return b
}

// Len returns the number of tracked blocks.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blocks)
}

// Close frees tracked blocks in reverse order of tracking. Blocks freed
// explicitly in the meantime are skipped. Close is idempotent.
func (s *Scope) Close() error {
	s.mu.Lock()
	blocks := s.blocks
	s.blocks = nil
	s.closed = true
	s.mu.Unlock()

	for i := len(blocks) - 1; i >= 0; i-- {
		blocks[i].Free()
	}
	return nil
}
