package directobj

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/directobj/mmap"
)

// FromBytes allocates a block whose payload is a copy of buf.
func (h *Heap) FromBytes(buf []byte) (*Block, error) {
	b, err := h.Allocate(len(buf))
	if err != nil {
		return nil, err
	}
	copy(b.payload(), buf)
	return b, nil
}

// FromBytesRange allocates a block whose payload is a copy of buf[off:off+n].
func (h *Heap) FromBytesRange(buf []byte, off, n int) (*Block, error) {
	if off < 0 || n < 0 || off > len(buf) || n > len(buf)-off {
		return nil, fmt.Errorf("%w: range [%d, %d+%d) outside %d-byte buffer",
			ErrInvalidArguments, off, off, n, len(buf))
	}
	return h.FromBytes(buf[off : off+n])
}

// FromBytes copies buf into a new block on the default heap.
func FromBytes(buf []byte) (*Block, error) {
	return DefaultHeap().FromBytes(buf)
}

// readChunk bounds how far ReadPayload allocates ahead of the bytes it has
// actually received.
const readChunk = 64 * 1024

// ReadPayload allocates an n-byte block and fills it from r. Exactly n bytes
// are consumed on success. On a short read the block is freed and the error
// wraps io.ErrUnexpectedEOF (or io.EOF if r was already exhausted).
//
// Payloads larger than 64 KiB are read into a block that grows as data
// arrives, so a corrupt length fails on the short read and not on an
// allocation sized by that length.
func (h *Heap) ReadPayload(r io.Reader, n int) (*Block, error) {
	if n < 0 || n > MaxPayloadLen {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}

	b, err := h.Allocate(min(n, readChunk))
	if err != nil {
		return nil, err
	}

	filled := 0
	for {
		m, err := io.ReadFull(r, b.payload()[filled:])
		filled += m
		if err != nil {
			b.Free()
			if errors.Is(err, io.EOF) && filled > 0 {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("directobj: read payload: %w", err)
		}
		if filled == n {
			return b, nil
		}
		if err := b.Realloc(min(2*filled, n)); err != nil {
			b.Free()
			return nil, err
		}
	}
}

// ReadRecord reads one length-prefixed block, as written by Block.WriteTo.
// It returns io.EOF, unwrapped, when r is exhausted before the header, so it
// can drive a read loop.
func (h *Heap) ReadRecord(r io.Reader) (*Block, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("directobj: read header: %w", err)
	}
	n, err := decodeLen(hdr[:])
	if err != nil {
		return nil, err
	}
	return h.ReadPayload(r, n)
}

// FromRegion copies the next n bytes of rg into a new block.
func (h *Heap) FromRegion(rg *mmap.Region, n int) (*Block, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}
	src, err := rg.Next(n)
	if err != nil {
		return nil, fmt.Errorf("directobj: read region: %w", err)
	}
	return h.FromBytes(src)
}

// ReadRegionRecord copies the next length-prefixed block out of rg. It
// returns io.EOF when rg has no bytes left. On any other error the region
// position is left where it was.
func (h *Heap) ReadRegionRecord(rg *mmap.Region) (*Block, error) {
	start := rg.Position()

	hdr, err := rg.Next(HeaderSize)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("directobj: read header: %w", err)
	}

	n, err := decodeLen(hdr)
	if err == nil {
		var b *Block
		if b, err = h.FromRegion(rg, n); err == nil {
			return b, nil
		}
	}

	_ = rg.SetPosition(start)
	return nil, err
}

func decodeLen(hdr []byte) (int, error) {
	n := binary.NativeEndian.Uint32(hdr)
	if n > MaxPayloadLen {
		return 0, fmt.Errorf("%w: header %d", ErrInvalidLength, n)
	}
	return int(n), nil
}

// WriteTo writes the block in its persisted form, header included, so
// ReadRecord can read it back. It implements io.WriterTo.
func (b *Block) WriteTo(w io.Writer) (int64, error) {
	if !b.live() {
		return 0, ErrFreed
	}
	n, err := w.Write(b.mem)
	if err != nil {
		return int64(n), fmt.Errorf("directobj: write: %w", err)
	}
	return int64(n), nil
}

// WriteRegion copies the block, header included, into a writable region at
// its current position.
func (b *Block) WriteRegion(rg *mmap.Region) error {
	if !b.live() {
		return ErrFreed
	}
	if _, err := rg.Write(b.mem); err != nil {
		return fmt.Errorf("directobj: write region: %w", err)
	}
	return nil
}

// PersistedLen returns the size of the block's persisted form.
func (b *Block) PersistedLen() int {
	return HeaderSize + b.Len()
}
