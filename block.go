package directobj

import (
	"encoding/binary"
	"fmt"
	"unsafe"
)

// HeaderSize is the size of the length header preceding every payload.
const HeaderSize = 4

// Block is a contiguous off-heap memory region laid out as
//
//	[len u32, native byte order][payload: len bytes]
//
// The Go garbage collector never scans or moves the memory. A Block must be
// released explicitly with Free (or Close, or a Scope); a Block that is
// dropped without being freed leaks its memory until the heap is closed.
//
// A Block is not safe for concurrent use.
type Block struct {
	heap *Heap
	mem  []byte // header + payload; nil once freed
}

func (b *Block) live() bool {
	return b != nil && b.mem != nil && !b.heap.closed.Load()
}

func (b *Block) setLen(n int) {
	binary.NativeEndian.PutUint32(b.mem, uint32(n)) //nolint:gosec // n <= MaxPayloadLen
}

// Len returns the payload length stored in the header, or 0 for a freed block.
func (b *Block) Len() int {
	if !b.live() {
		return 0
	}
	return int(binary.NativeEndian.Uint32(b.mem))
}

// Addr returns the address of the header, or 0 for a freed block. The address
// changes when Realloc moves the block.
func (b *Block) Addr() uintptr {
	if !b.live() {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(b.mem)))
}

// Freed reports whether the block no longer owns memory.
func (b *Block) Freed() bool { return !b.live() }

// Heap returns the heap the block was allocated from.
func (b *Block) Heap() *Heap { return b.heap }

// payload returns the bytes after the header. The slice aliases off-heap
// memory and must not outlive the block.
func (b *Block) payload() []byte {
	return b.mem[HeaderSize:]
}

// Bytes returns a Go-heap copy of the payload (header excluded).
// It returns nil for a freed block.
func (b *Block) Bytes() []byte {
	if !b.live() {
		return nil
	}
	out := make([]byte, b.Len())
	copy(out, b.payload())
	return out
}

// View calls fn with the block's memory, length header included, without
// copying. The slice is only valid during fn and must not be retained or
// resized through.
func (b *Block) View(fn func(mem []byte) error) error {
	if !b.live() {
		return ErrFreed
	}
	return fn(b.mem)
}

// Realloc resizes the payload to n bytes, preserving min(Len(), n) bytes of
// content. Growing zeroes the new tail. The block may move; Addr reflects the
// new location. On error the block is unchanged.
func (b *Block) Realloc(n int) error {
	if !b.live() {
		return ErrFreed
	}
	if n < 0 || n > MaxPayloadLen {
		return fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}

	oldLen := b.Len()
	oldAddr := b.Addr()

	mem, err := b.heap.arena.Realloc(b.mem, HeaderSize+n)
	if err != nil {
		err = translateError(err)
		b.heap.logger.LogRealloc(oldLen, n, false, err)
		return err
	}

	b.mem = mem
	b.setLen(n)
	b.heap.logger.LogRealloc(oldLen, n, b.Addr() != oldAddr, nil)
	return nil
}

// Free releases the block's memory. Freeing an already freed block is a
// no-op. The header is not consulted, so a corrupted length cannot make Free
// release the wrong amount.
func (b *Block) Free() {
	if b == nil || b.mem == nil {
		return
	}
	n := len(b.mem) - HeaderSize
	b.heap.arena.Free(b.mem) // no-op once the heap is closed
	b.mem = nil
	b.heap.metrics.RecordFree(n)
}

// Close frees the block. It implements io.Closer.
func (b *Block) Close() error {
	b.Free()
	return nil
}

// Update re-serializes r into the block, resizing it first if the record's
// size changed. Update never replaces b, so handles to the block stay valid.
// If c is nil a temporary cursor is used.
func (b *Block) Update(r Record, c *Cursor) error {
	if !b.live() {
		return ErrFreed
	}

	var s Sizer
	n := r.SerializedSize(&s)
	if n != b.Len() {
		if err := b.Realloc(n); err != nil {
			return err
		}
	}

	return writeRecord(b, r, c)
}

// Populate reads the record's fields from the block. Strings are decoded
// into fresh Go memory, so r does not alias the block afterwards.
// If c is nil a temporary cursor is used.
func (b *Block) Populate(r Record, c *Cursor) error {
	if !b.live() {
		return ErrFreed
	}
	if c == nil {
		c = new(Cursor)
	}
	if err := c.begin(b, PassRead); err != nil {
		return err
	}
	r.Unserialize(c)
	return c.Finish()
}

func (b *Block) String() string {
	if !b.live() {
		return "Block{freed}"
	}
	return fmt.Sprintf("Block{addr: %#x, len: %d}", b.Addr(), b.Len())
}

// FromRecord allocates a block sized by r.SerializedSize and serializes r
// into it. If c is nil a temporary cursor is used.
func (h *Heap) FromRecord(r Record, c *Cursor) (*Block, error) {
	var s Sizer
	b, err := h.Allocate(r.SerializedSize(&s))
	if err != nil {
		return nil, err
	}
	if err := writeRecord(b, r, c); err != nil {
		b.Free()
		return nil, err
	}
	return b, nil
}

// FromRecord serializes r into a new block on the default heap.
func FromRecord(r Record) (*Block, error) {
	return DefaultHeap().FromRecord(r, nil)
}

func writeRecord(b *Block, r Record, c *Cursor) error {
	if c == nil {
		c = new(Cursor)
	}
	if err := c.begin(b, PassWrite); err != nil {
		return err
	}
	r.Serialize(c)
	return c.Finish()
}
