package directobj

import (
	"encoding/binary"
	"math"
)

// Cursor reads and writes typed values at a moving offset inside a block's
// payload. One Cursor serves one pass at a time but can be reused across
// blocks to avoid allocation.
//
// Offsets are relative to the payload start, so alignment computed by a
// Sizer during sizing matches the alignment applied while writing.
//
// A put past the end of the payload is dropped and a get past the end
// returns the zero value; either way the cursor keeps counting and Finish
// reports the overshoot as a *BoundsError.
type Cursor struct {
	block *Block
	buf   []byte
	pos   int
	kind  PassKind
	units []uint16 // decode scratch
}

// NewCursor returns an unbound cursor.
func NewCursor() *Cursor {
	return &Cursor{}
}

// Begin binds the cursor to b for a write pass and moves it to the payload
// start.
func (c *Cursor) Begin(b *Block) error {
	return c.begin(b, PassWrite)
}

// BeginRead is like Begin but starts a read pass, so Finish logs and counts
// the pass as a read.
func (c *Cursor) BeginRead(b *Block) error {
	return c.begin(b, PassRead)
}

func (c *Cursor) begin(b *Block, kind PassKind) error {
	if !b.live() {
		return ErrFreed
	}
	c.block = b
	c.buf = b.payload()
	c.pos = 0
	c.kind = kind
	return nil
}

// Finish ends the pass and unbinds the cursor. It returns a *BoundsError if
// the cursor went past the payload end. Stopping short is not an error but
// is logged as unused space.
func (c *Cursor) Finish() error {
	b := c.block
	if b == nil {
		return nil
	}
	declared, used := len(c.buf), c.pos
	c.block, c.buf = nil, nil

	h := b.heap
	switch {
	case used > declared:
		err := &BoundsError{Declared: declared, Used: used, Op: c.kind.String()}
		h.logger.LogBoundsViolation(c.kind.String(), declared, used)
		h.metrics.RecordPass(c.kind, used, err)
		return err
	case used < declared:
		h.logger.LogUnusedSpace(c.kind.String(), declared, used)
		h.metrics.RecordUnusedSpace(declared - used)
	}
	h.metrics.RecordPass(c.kind, used, nil)
	return nil
}

// Block returns the block of the current pass, or nil between passes.
func (c *Cursor) Block() *Block { return c.block }

// Pos returns the offset from the payload start.
func (c *Cursor) Pos() int { return c.pos }

// Remaining returns the payload bytes left before the end; negative after
// an overshoot.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// Overflowed reports whether the cursor has gone past the payload end.
func (c *Cursor) Overflowed() bool { return c.pos > len(c.buf) }

// span advances the cursor by n and returns the covered bytes, or false if
// they are not all inside the payload.
func (c *Cursor) span(n int) ([]byte, bool) {
	start := c.pos
	c.pos += n
	if c.pos > len(c.buf) {
		return nil, false
	}
	return c.buf[start:c.pos], true
}

// fail pushes the cursor past the payload end so Finish reports the pass.
func (c *Cursor) fail() {
	if c.pos <= len(c.buf) {
		c.pos = len(c.buf) + 1
	}
}

// Skip advances the cursor by n bytes without touching them. Negative n is
// ignored.
func (c *Cursor) Skip(n int) {
	if n > 0 {
		c.pos += n
	}
}

// AlignInt advances the cursor to the next multiple of 4.
func (c *Cursor) AlignInt() { c.pos = AlignPositionInt(c.pos) }

// AlignLong advances the cursor to the next multiple of 8.
func (c *Cursor) AlignLong() { c.pos = AlignPositionLong(c.pos) }

// AlignPositionInt rounds pos up to a multiple of 4.
func AlignPositionInt(pos int) int { return (pos + 3) &^ 3 }

// AlignPositionLong rounds pos up to a multiple of 8.
func AlignPositionLong(pos int) int { return (pos + 7) &^ 7 }

func (c *Cursor) PutByte(v int8) {
	if p, ok := c.span(1); ok {
		p[0] = byte(v)
	}
}

func (c *Cursor) GetByte() int8 {
	if p, ok := c.span(1); ok {
		return int8(p[0])
	}
	return 0
}

func (c *Cursor) PutUnsignedByte(v uint8) {
	if p, ok := c.span(1); ok {
		p[0] = v
	}
}

func (c *Cursor) GetUnsignedByte() uint8 {
	if p, ok := c.span(1); ok {
		return p[0]
	}
	return 0
}

// PutBool stores v as a single byte, 1 or 0.
func (c *Cursor) PutBool(v bool) {
	var b uint8
	if v {
		b = 1
	}
	c.PutUnsignedByte(b)
}

// GetBool reads a byte and reports whether it is non-zero.
func (c *Cursor) GetBool() bool { return c.GetUnsignedByte() != 0 }

// PutChar stores a UTF-16 code unit.
func (c *Cursor) PutChar(v uint16) {
	if p, ok := c.span(2); ok {
		binary.NativeEndian.PutUint16(p, v)
	}
}

func (c *Cursor) GetChar() uint16 {
	if p, ok := c.span(2); ok {
		return binary.NativeEndian.Uint16(p)
	}
	return 0
}

func (c *Cursor) PutShort(v int16) { c.PutChar(uint16(v)) }

func (c *Cursor) GetShort() int16 { return int16(c.GetChar()) }

func (c *Cursor) PutInt(v int32) {
	if p, ok := c.span(4); ok {
		binary.NativeEndian.PutUint32(p, uint32(v))
	}
}

func (c *Cursor) GetInt() int32 {
	if p, ok := c.span(4); ok {
		return int32(binary.NativeEndian.Uint32(p))
	}
	return 0
}

func (c *Cursor) PutLong(v int64) {
	if p, ok := c.span(8); ok {
		binary.NativeEndian.PutUint64(p, uint64(v))
	}
}

func (c *Cursor) GetLong() int64 {
	if p, ok := c.span(8); ok {
		return int64(binary.NativeEndian.Uint64(p))
	}
	return 0
}

// PutFloat32 stores the IEEE 754 bits of v.
func (c *Cursor) PutFloat32(v float32) {
	c.PutInt(int32(math.Float32bits(v)))
}

func (c *Cursor) GetFloat32() float32 {
	return math.Float32frombits(uint32(c.GetInt()))
}

// PutFloat64 stores the IEEE 754 bits of v.
func (c *Cursor) PutFloat64(v float64) {
	c.PutLong(int64(math.Float64bits(v)))
}

func (c *Cursor) GetFloat64() float64 {
	return math.Float64frombits(uint64(c.GetLong()))
}

// PutBytes copies src into the payload. Nothing is written unless all of
// src fits.
func (c *Cursor) PutBytes(src []byte) {
	if p, ok := c.span(len(src)); ok {
		copy(p, src)
	}
}

// GetBytes fills dst from the payload. dst is zeroed if the payload does not
// hold len(dst) more bytes.
func (c *Cursor) GetBytes(dst []byte) {
	if p, ok := c.span(len(dst)); ok {
		copy(dst, p)
		return
	}
	clear(dst)
}
