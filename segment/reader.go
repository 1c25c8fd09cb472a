package segment

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"io"
	"iter"

	"github.com/hupe1980/directobj"
	ihash "github.com/hupe1980/directobj/internal/hash"
	"github.com/hupe1980/directobj/mmap"
	"github.com/hupe1980/directobj/resource"
)

// Reader iterates the blocks of a segment. It is not safe for concurrent use.
type Reader struct {
	heap    *directobj.Heap
	src     io.Reader    // decompressed record stream; nil in region mode
	body    io.Reader    // src teed into crc
	region  *mmap.Region // zero-copy source for uncompressed mapped segments
	release func()
	owned   io.Closer
	crc     hash.Hash32
	header  Header
	records int
	err     error // sticky: io.EOF after the trailer, or the first failure
}

// NewReader reads the segment header from r. Blocks returned by Next are
// allocated on h.
func NewReader(h *directobj.Heap, r io.Reader, optFns ...Option) (*Reader, error) {
	opts := applyOptions(optFns)

	if opts.resource != nil {
		r = resource.NewRateLimitedReader(opts.ctx, r, opts.resource)
	}

	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("segment: read header: %w", err)
	}
	header, err := decodeHeader(hdr[:])
	if err != nil {
		return nil, err
	}

	return newStreamReader(h, r, header)
}

func newStreamReader(h *directobj.Heap, r io.Reader, header Header) (*Reader, error) {
	src, release, err := decompressor(r, header.Compression)
	if err != nil {
		return nil, fmt.Errorf("segment: init %s: %w", header.Compression, err)
	}

	crc := ihash.NewCRC32C()
	return &Reader{
		heap:    h,
		src:     src,
		body:    io.TeeReader(src, crc),
		release: release,
		crc:     crc,
		header:  header,
	}, nil
}

// OpenRegion reads a segment out of a mapped region. Uncompressed records
// are copied straight from the mapping into their blocks; compressed
// segments are decoded as a stream over the region.
func OpenRegion(h *directobj.Heap, rg *mmap.Region) (*Reader, error) {
	hdr, err := rg.Next(HeaderSize)
	if err != nil {
		return nil, fmt.Errorf("segment: read header: %w", err)
	}
	header, err := decodeHeader(hdr)
	if err != nil {
		return nil, err
	}

	if header.Compression != CompressionNone {
		return newStreamReader(h, rg, header)
	}

	return &Reader{
		heap:    h,
		region:  rg,
		release: func() {},
		crc:     ihash.NewCRC32C(),
		header:  header,
	}, nil
}

// Header returns the segment header.
func (r *Reader) Header() Header { return r.header }

// Records returns the number of blocks returned so far.
func (r *Reader) Records() int { return r.records }

// Next returns the next block. The caller owns it and must free it.
//
// After the last record Next verifies the trailer and returns io.EOF, or
// ErrChecksum if the records do not match it. A stream that ends without a
// trailer yields ErrTruncated.
func (r *Reader) Next() (*directobj.Block, error) {
	if r.err != nil {
		return nil, r.err
	}

	var (
		b   *directobj.Block
		err error
	)
	if r.region != nil {
		b, err = r.nextRegion()
	} else {
		b, err = r.nextStream()
	}
	if err != nil {
		r.err = err
		return nil, err
	}
	r.records++
	return b, nil
}

func (r *Reader) nextStream() (*directobj.Block, error) {
	var hdr [directobj.HeaderSize]byte
	if _, err := io.ReadFull(r.src, hdr[:]); err != nil {
		return nil, truncated(err)
	}

	n := binary.NativeEndian.Uint32(hdr[:])
	if n == trailerMarker {
		var sum [4]byte
		if _, err := io.ReadFull(r.src, sum[:]); err != nil {
			return nil, truncated(err)
		}
		return nil, r.verify(binary.NativeEndian.Uint32(sum[:]))
	}
	_, _ = r.crc.Write(hdr[:])

	b, err := r.heap.ReadPayload(r.body, int(n))
	if err != nil {
		return nil, truncated(err)
	}
	return b, nil
}

func (r *Reader) nextRegion() (*directobj.Block, error) {
	hdr, err := r.region.Next(directobj.HeaderSize)
	if err != nil {
		return nil, truncated(err)
	}

	n := binary.NativeEndian.Uint32(hdr)
	if n == trailerMarker {
		sum, err := r.region.Next(4)
		if err != nil {
			return nil, truncated(err)
		}
		return nil, r.verify(binary.NativeEndian.Uint32(sum))
	}
	_, _ = r.crc.Write(hdr)

	payload, err := r.region.Next(int(n))
	if err != nil {
		return nil, truncated(err)
	}
	_, _ = r.crc.Write(payload)
	return r.heap.FromBytes(payload)
}

func (r *Reader) verify(want uint32) error {
	if got := r.crc.Sum32(); got != want {
		return fmt.Errorf("%w: stored %#08x, computed %#08x", ErrChecksum, want, got)
	}
	return io.EOF
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	return err
}

// All returns an iterator over the remaining blocks. Iteration stops at the
// end of the segment or at the first error, which is yielded with a nil
// block. Each yielded block is owned by the caller.
func (r *Reader) All() iter.Seq2[*directobj.Block, error] {
	return func(yield func(*directobj.Block, error) bool) {
		for {
			b, err := r.Next()
			if err == io.EOF { //nolint:errorlint // ErrTruncated wraps io.EOF; only the bare value ends iteration
				return
			}
			if !yield(b, err) || err != nil {
				return
			}
		}
	}
}

// Close releases codec state and, for readers created by Open, the blob.
// Blocks already returned stay valid.
func (r *Reader) Close() error {
	if r.release != nil {
		r.release()
		r.release = nil
	}
	if r.err == nil {
		r.err = ErrClosed
	}
	if r.owned != nil {
		err := r.owned.Close()
		r.owned = nil
		return err
	}
	return nil
}
