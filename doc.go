// Package directobj stores Go records as compact byte images in off-heap
// memory.
//
// Records live in blocks the Go garbage collector never scans, which keeps
// large caches of small values from inflating GC work. Each record type
// describes its own binary layout by implementing Record; a Cursor writes and
// reads the fields and a Sizer computes the exact payload size up front.
//
// # Quick Start
//
//	heap := directobj.NewHeap(directobj.WithMemoryLimit(256 << 20))
//	defer heap.Close()
//
//	b, _ := heap.FromRecord(&bean, nil)  // allocate + serialize
//	defer b.Free()
//
//	var out Bean
//	_ = b.Populate(&out, nil)            // unserialize into fresh Go memory
//
// # Block Layout
//
// A block is a 4-byte native-order payload length followed by the payload:
//
//	[len u32][payload: len bytes]
//
// Block.WriteTo and Heap.ReadRecord move this exact form to and from files
// and streams. Package segment adds a framed, checksummed file format on top.
//
// # Strings
//
// Strings are written as UTF-16 code units in one of three encodings:
//
//   - Compact: 1 byte for ASCII, 2 below U+4000, 3 otherwise
//   - Fast: 2 bytes per unit
//   - ASCII: 1 byte per unit, low byte only
//
// A nil *string round-trips as nil. The Chars variants take raw []uint16 and
// preserve unpaired surrogates, which Go strings cannot hold.
//
// # Memory Management
//
// Blocks are freed explicitly (Free, Close), by a Scope, or all at once by
// Heap.Close. Passes that write or read past the payload end fail with
// ErrBoundsViolation; passes that stop short log an "unused space" warning.
//
// # Key Features
//
//   - Size-class allocator over anonymous mmap, no GC pressure
//   - Reusable cursors, zero-allocation writes
//   - Field-list records that size, write and read from one definition
//   - Keyed store with slot reuse (package directmap)
//   - Compressed, checksummed segments on local disk, S3 or MinIO
package directobj
