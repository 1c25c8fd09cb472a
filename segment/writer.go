package segment

import (
	"encoding/binary"
	"fmt"
	"hash"
	"io"

	"github.com/hupe1980/directobj"
	ihash "github.com/hupe1980/directobj/internal/hash"
	"github.com/hupe1980/directobj/resource"
)

// Writer appends blocks to a segment. It is not safe for concurrent use.
type Writer struct {
	body    io.Writer // records go here, through the codec if any
	finish  func() error
	crc     hash.Hash32
	owned   io.Closer // closed by Close when the writer created it
	header  Header
	records int
	bytes   int64
	closed  bool
}

// NewWriter writes a segment header to w and returns a writer for records.
// Close writes the trailer; it does not close w.
func NewWriter(w io.Writer, optFns ...Option) (*Writer, error) {
	opts := applyOptions(optFns)

	if opts.resource != nil {
		w = resource.NewRateLimitedWriter(opts.ctx, w, opts.resource)
	}

	h := Header{Version: Version, Compression: opts.compression}
	if h.Compression > CompressionZSTD {
		return nil, fmt.Errorf("segment: unknown compression %d", h.Compression)
	}

	hdr := h.encode()
	if _, err := w.Write(hdr[:]); err != nil {
		return nil, fmt.Errorf("segment: write header: %w", err)
	}

	body, finish, err := compressor(w, h.Compression)
	if err != nil {
		return nil, fmt.Errorf("segment: init %s: %w", h.Compression, err)
	}

	return &Writer{
		body:   body,
		finish: finish,
		crc:    ihash.NewCRC32C(),
		header: h,
	}, nil
}

// Append writes b in its persisted form.
func (w *Writer) Append(b *directobj.Block) error {
	if w.closed {
		return ErrClosed
	}
	return b.View(func(mem []byte) error {
		return w.write(mem)
	})
}

// AppendRecord serializes r through a temporary block on h and appends it.
func (w *Writer) AppendRecord(h *directobj.Heap, r directobj.Record) error {
	if w.closed {
		return ErrClosed
	}
	b, err := h.FromRecord(r, nil)
	if err != nil {
		return err
	}
	defer b.Free()
	return w.Append(b)
}

func (w *Writer) write(p []byte) error {
	if _, err := w.body.Write(p); err != nil {
		return fmt.Errorf("segment: write record: %w", err)
	}
	_, _ = w.crc.Write(p)
	w.records++
	w.bytes += int64(len(p))
	return nil
}

// Records returns the number of records appended.
func (w *Writer) Records() int { return w.records }

// Size returns the uncompressed size of the records appended.
func (w *Writer) Size() int64 { return w.bytes }

// Header returns the header written to the segment.
func (w *Writer) Header() Header { return w.header }

// Close writes the trailer and flushes the codec. When the writer was
// created by Create, the blob is committed as well. Close is idempotent.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var trailer [trailerSize]byte
	binary.NativeEndian.PutUint32(trailer[0:], trailerMarker)
	binary.NativeEndian.PutUint32(trailer[4:], w.crc.Sum32())

	var err error
	if _, werr := w.body.Write(trailer[:]); werr != nil {
		err = fmt.Errorf("segment: write trailer: %w", werr)
	}
	if ferr := w.finish(); ferr != nil && err == nil {
		err = fmt.Errorf("segment: flush: %w", ferr)
	}
	if w.owned != nil {
		if err != nil {
			if a, ok := w.owned.(aborter); ok {
				_ = a.Abort()
				return err
			}
		}
		if cerr := w.owned.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("segment: commit: %w", cerr)
		}
	}
	return err
}
