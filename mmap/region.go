package mmap

import "io"

// Region represents a subsection of a memory mapping with its own position.
// It does not own the memory; the parent Mapping does.
//
// The position is distinct from any file offset: reading or writing through
// a Region never moves the backing file's cursor, and two Regions over the
// same Mapping advance independently.
type Region struct {
	parent *Mapping
	offset int
	size   int
	pos    int
}

// Region creates a new view into the mapping, positioned at its start.
func (m *Mapping) Region(offset, size int) (*Region, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if offset < 0 || size < 0 || offset+size > m.size {
		return nil, ErrOutOfBounds
	}
	return &Region{
		parent: m,
		offset: offset,
		size:   size,
	}, nil
}

// Bytes returns the byte slice for this region.
// Warning: The slice is valid only until the parent Mapping is closed.
func (r *Region) Bytes() []byte {
	if r.parent.closed.Load() {
		return nil
	}
	return r.parent.data[r.offset : r.offset+r.size]
}

// Size returns the region size in bytes.
func (r *Region) Size() int {
	return r.size
}

// Position returns the current position relative to the region start.
func (r *Region) Position() int {
	return r.pos
}

// Remaining returns the number of bytes between the position and the region end.
func (r *Region) Remaining() int {
	return r.size - r.pos
}

// SetPosition moves the position. pos may equal Size().
func (r *Region) SetPosition(pos int) error {
	if pos < 0 || pos > r.size {
		return ErrOutOfBounds
	}
	r.pos = pos
	return nil
}

// Next returns the next n bytes as a zero-copy slice and advances the position.
// It returns io.EOF at the end of the region and io.ErrUnexpectedEOF when fewer
// than n bytes remain; the position is left unchanged on error.
func (r *Region) Next(n int) ([]byte, error) {
	if r.parent.closed.Load() {
		return nil, ErrClosed
	}
	if n < 0 {
		return nil, ErrOutOfBounds
	}
	if r.pos == r.size && n > 0 {
		return nil, io.EOF
	}
	if n > r.size-r.pos {
		return nil, io.ErrUnexpectedEOF
	}
	start := r.offset + r.pos
	r.pos += n
	return r.parent.data[start : start+n : start+n], nil
}

// Read implements io.Reader.
func (r *Region) Read(p []byte) (int, error) {
	if r.parent.closed.Load() {
		return 0, ErrClosed
	}
	if r.pos >= r.size {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	start := r.offset + r.pos
	n := copy(p, r.parent.data[start:r.offset+r.size])
	r.pos += n
	return n, nil
}

// Write implements io.Writer on writable mappings. A write that does not fit
// copies nothing and returns io.ErrShortWrite.
func (r *Region) Write(p []byte) (int, error) {
	if r.parent.closed.Load() {
		return 0, ErrClosed
	}
	if !r.parent.writable {
		return 0, ErrReadOnly
	}
	if len(p) > r.size-r.pos {
		return 0, io.ErrShortWrite
	}
	start := r.offset + r.pos
	n := copy(r.parent.data[start:], p)
	r.pos += n
	return n, nil
}

// Advise provides hints to the kernel about how this region will be accessed.
func (r *Region) Advise(pattern AccessPattern) error {
	if r.parent.closed.Load() {
		return ErrClosed
	}
	data := r.parent.data[r.offset : r.offset+r.size]
	return osAdvise(data, pattern)
}
