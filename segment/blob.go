package segment

import (
	"context"
	"fmt"

	"github.com/hupe1980/directobj"
	"github.com/hupe1980/directobj/blobstore"
)

// aborter is implemented by writable blobs that can discard an unfinished
// upload instead of committing it.
type aborter interface {
	Abort() error
}

// Create starts a segment blob called name in store. Closing the Writer
// writes the trailer and commits the blob; if the segment cannot be
// finished the blob is aborted where the store supports it.
func Create(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Writer, error) {
	blob, err := store.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("segment: create %s: %w", name, err)
	}

	w, err := NewWriter(blob, append([]Option{WithContext(ctx)}, optFns...)...)
	if err != nil {
		discard(blob)
		return nil, err
	}
	w.owned = blob
	return w, nil
}

// Open reads the segment blob called name from store. Mapped blobs from a
// LocalStore are read through their region; other stores are streamed.
// Closing the Reader closes the blob.
func Open(ctx context.Context, h *directobj.Heap, store blobstore.BlobStore, name string, optFns ...Option) (*Reader, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("segment: open %s: %w", name, err)
	}

	var r *Reader
	if m, ok := blob.(blobstore.Mappable); ok {
		rg, rerr := m.Region()
		if rerr != nil {
			_ = blob.Close()
			return nil, rerr
		}
		r, err = OpenRegion(h, rg)
	} else {
		r, err = NewReader(h, blobstore.NewReader(ctx, blob), append([]Option{WithContext(ctx)}, optFns...)...)
	}
	if err != nil {
		_ = blob.Close()
		return nil, err
	}
	r.owned = blob
	return r, nil
}

func discard(blob blobstore.WritableBlob) {
	if a, ok := blob.(aborter); ok {
		_ = a.Abort()
		return
	}
	_ = blob.Close()
}
