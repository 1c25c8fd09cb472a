package directobj

import (
	"errors"
	"fmt"

	"github.com/hupe1980/directobj/internal/arena"
)

var (
	// ErrAllocationFailed is returned when the heap cannot reserve memory,
	// either because the operating system refused a mapping or because the
	// configured memory limit is exhausted.
	ErrAllocationFailed = errors.New("directobj: allocation failed")

	// ErrBoundsViolation is returned when a serialization pass wrote or read
	// past the declared payload length.
	ErrBoundsViolation = errors.New("directobj: read or write exceeded object size, risk of memory corruption")

	// ErrInvalidArguments is returned for inconsistent constructor arguments.
	ErrInvalidArguments = errors.New("directobj: invalid arguments")

	// ErrInvalidLength is returned for negative or oversized payload lengths.
	ErrInvalidLength = errors.New("directobj: invalid payload length")

	// ErrFreed is returned when an operation needs memory but the block was freed.
	ErrFreed = errors.New("directobj: block is freed")

	// ErrDetached is returned by Attachment.Load when no block is attached.
	ErrDetached = errors.New("directobj: no block attached")

	// ErrHeapClosed is returned when allocating from a closed heap.
	ErrHeapClosed = errors.New("directobj: heap is closed")
)

// BoundsError reports a serialization pass whose cursor did not stay within
// the payload. Used is the offset the cursor reached, which is larger than
// Declared.
//
// BoundsError matches ErrBoundsViolation with errors.Is.
type BoundsError struct {
	Declared int
	Used     int
	Op       string
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("directobj: %s exceeded object size (declared %d, used %d), risk of memory corruption",
		e.Op, e.Declared, e.Used)
}

func (e *BoundsError) Is(target error) bool { return target == ErrBoundsViolation }

// translateError maps allocator errors onto the public sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, arena.ErrClosed):
		return fmt.Errorf("%w: %w", ErrHeapClosed, err)
	case errors.Is(err, arena.ErrInvalidSize):
		return fmt.Errorf("%w: %w", ErrInvalidLength, err)
	case errors.Is(err, arena.ErrAllocationFailed):
		return fmt.Errorf("%w: %w", ErrAllocationFailed, err)
	}

	return err
}
