package directobj

import (
	"fmt"
	"io"

	"github.com/hupe1980/directobj/mmap"
)

// Builder is an immutable fluent builder for blocks. Each method returns a
// new builder with the updated configuration.
//
// Exactly one source must be set. Reader and region sources also need the
// payload length, either declared with WithLength or read from the source
// with LengthPrefixed.
//
// Example:
//
//	b, err := directobj.NewBuilder().
//		FromReader(f).
//		LengthPrefixed().
//		WithAutoRelease(scope).
//		Build()
type Builder struct {
	heap      *Heap
	record    Record
	bytes     []byte
	hasBytes  bool
	reader    io.Reader
	region    *mmap.Region
	length    int
	hasLength bool
	prefixed  bool
	cursor    *Cursor
	scope     *Scope
}

// NewBuilder returns a builder allocating from the default heap.
func NewBuilder() Builder {
	return DefaultHeap().NewBuilder()
}

// NewBuilder returns a builder allocating from h.
func (h *Heap) NewBuilder() Builder {
	return Builder{heap: h}
}

// FromRecord serializes r into the new block.
func (b Builder) FromRecord(r Record) Builder {
	b.record = r
	return b
}

// FromBytes copies buf into the new block. Combined with LengthPrefixed,
// buf holds a persisted block and its header selects the payload.
func (b Builder) FromBytes(buf []byte) Builder {
	b.bytes = buf
	b.hasBytes = true
	return b
}

// FromReader fills the new block from r.
func (b Builder) FromReader(r io.Reader) Builder {
	b.reader = r
	return b
}

// FromRegion fills the new block from rg at its current position.
func (b Builder) FromRegion(rg *mmap.Region) Builder {
	b.region = rg
	return b
}

// WithLength declares the payload length of a reader or region source.
func (b Builder) WithLength(n int) Builder {
	b.length = n
	b.hasLength = true
	return b
}

// LengthPrefixed reads the payload length from a header at the start of the
// source.
func (b Builder) LengthPrefixed() Builder {
	b.prefixed = true
	return b
}

// WithCursor reuses c for a record source.
func (b Builder) WithCursor(c *Cursor) Builder {
	b.cursor = c
	return b
}

// WithAutoRelease registers the new block with s, which frees it on Close.
func (b Builder) WithAutoRelease(s *Scope) Builder {
	b.scope = s
	return b
}

func (b Builder) validate() error {
	sources := 0
	for _, set := range []bool{b.record != nil, b.hasBytes, b.reader != nil, b.region != nil} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return fmt.Errorf("%w: exactly one of FromRecord, FromBytes, FromReader or FromRegion is required, got %d",
			ErrInvalidArguments, sources)
	}

	if b.hasLength && b.prefixed {
		return fmt.Errorf("%w: WithLength and LengthPrefixed are exclusive", ErrInvalidArguments)
	}
	if b.hasLength && b.length < 0 {
		return fmt.Errorf("%w: negative length %d", ErrInvalidArguments, b.length)
	}

	switch {
	case b.record != nil:
		if b.hasLength || b.prefixed {
			return fmt.Errorf("%w: a record source is sized by the record", ErrInvalidArguments)
		}
	case b.hasBytes:
		if b.hasLength {
			return fmt.Errorf("%w: a byte source is sized by the slice", ErrInvalidArguments)
		}
	default:
		if !b.hasLength && !b.prefixed {
			return fmt.Errorf("%w: a reader or region source needs WithLength or LengthPrefixed", ErrInvalidArguments)
		}
	}
	return nil
}

// Build validates the configuration and creates the block. Nothing is
// allocated when validation fails.
func (b Builder) Build() (*Block, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	h := b.heap
	if h == nil {
		h = DefaultHeap()
	}

	var (
		blk *Block
		err error
	)
	switch {
	case b.record != nil:
		blk, err = h.FromRecord(b.record, b.cursor)
	case b.hasBytes && b.prefixed:
		blk, err = fromPersisted(h, b.bytes)
	case b.hasBytes:
		blk, err = h.FromBytes(b.bytes)
	case b.reader != nil && b.prefixed:
		blk, err = h.ReadRecord(b.reader)
	case b.reader != nil:
		blk, err = h.ReadPayload(b.reader, b.length)
	case b.prefixed:
		blk, err = h.ReadRegionRecord(b.region)
	default:
		blk, err = h.FromRegion(b.region, b.length)
	}
	if err != nil {
		return nil, err
	}

	if b.scope != nil {
		b.scope.Track(blk)
	}
	return blk, nil
}

func fromPersisted(h *Heap, buf []byte) (*Block, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes cannot hold a header", ErrInvalidArguments, len(buf))
	}
	n, err := decodeLen(buf)
	if err != nil {
		return nil, err
	}
	return h.FromBytesRange(buf, HeaderSize, n)
}
