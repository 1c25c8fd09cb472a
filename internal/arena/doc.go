// Package arena provides the off-heap raw memory allocator behind directobj blocks.
//
// The allocator eliminates GC pressure by serving every allocation from
// mmap-backed memory the Go runtime never scans.
//
// # Layout
//
//   - Requests up to MaxClassSize (including an 8-byte hidden header) are
//     rounded to a power-of-two size class and carved from 1 MiB chunks.
//   - Freed slots are pushed onto an intrusive per-class free list; the link
//     lives inside the freed slot, so the free lists cost no Go heap memory.
//   - Larger requests get a dedicated anonymous mapping that is unmapped on Free.
//
// The hidden header records the size class and a live marker. Free and
// Realloc therefore take only the slice returned by Alloc, and a double free
// is detected instead of silently corrupting a free list.
//
// # Safety
//
// Slices returned by Alloc/Realloc must not be used after Free, Realloc or
// Close. Passing memory that did not come from the same Arena to Free or
// Realloc is undefined behavior.
package arena
