package directmap

import (
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/directobj"
	"github.com/hupe1980/directobj/segment"
)

// ErrMissingValue is returned by LoadFrom when a segment ends after a key.
var ErrMissingValue = errors.New("directmap: key without value")

// SaveTo appends every entry to w as a key record followed by the value
// block, in slot order. It does not close w.
func (m *Map[K]) SaveTo(w *segment.Writer, codec KeyCodec[K]) error {
	if m.closed {
		return ErrClosed
	}

	kr := keyRecord[K]{codec: codec}
	for k, b := range m.entries() {
		kr.key = k
		if err := w.AppendRecord(m.heap, &kr); err != nil {
			return fmt.Errorf("directmap: save key: %w", err)
		}
		if err := w.Append(b); err != nil {
			return fmt.Errorf("directmap: save value: %w", err)
		}
	}
	return nil
}

// LoadFrom reads key/value pairs written by SaveTo until the end of the
// segment. Loaded entries replace existing ones. Value blocks already on the
// map's heap are adopted as is; others are copied.
func (m *Map[K]) LoadFrom(r *segment.Reader, codec KeyCodec[K]) (int, error) {
	if m.closed {
		return 0, ErrClosed
	}

	kr := keyRecord[K]{codec: codec}
	n := 0
	for {
		kb, err := r.Next()
		if err == io.EOF { //nolint:errorlint // segment.Reader returns the bare value at the end
			return n, nil
		}
		if err != nil {
			return n, err
		}

		err = kb.Populate(&kr, &m.cursor)
		kb.Free()
		if err != nil {
			return n, fmt.Errorf("directmap: load key: %w", err)
		}

		vb, err := r.Next()
		if err == io.EOF { //nolint:errorlint // see above
			return n, ErrMissingValue
		}
		if err != nil {
			return n, err
		}

		if vb, err = m.adopt(vb); err != nil {
			return n, err
		}
		m.set(kr.key, vb)
		n++
	}
}

func (m *Map[K]) adopt(b *directobj.Block) (*directobj.Block, error) {
	if b.Heap() == m.heap {
		return b, nil
	}
	defer b.Free()
	return m.heap.FromBytes(b.Bytes())
}
