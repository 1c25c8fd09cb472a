// Package mmap provides memory-mapped file access and anonymous off-heap mappings.
//
// # Overview
//
// Memory mapping gives direct access to file contents without copying data
// through kernel buffers. directobj uses it in two places:
//
//   - MapAnon backs the off-heap allocator with read-write anonymous memory
//     that the Go garbage collector never scans.
//   - Open/OpenWritable/Create map segment files so that length-prefixed
//     records can be copied straight from the mapping into a block.
//
// # Usage
//
//	m, err := mmap.Open("records.seg")
//	if err != nil { ... }
//	defer m.Close()
//
//	// A region carries its own read/write position, independent of any
//	// file offset.
//	rg, _ := m.Region(0, m.Size())
//	hdr, _ := rg.Next(4)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2), msync(2) and madvise(2)
//   - Windows: CreateFileMapping/MapViewOfFile and VirtualAlloc (advice is a no-op)
//
// # Thread Safety
//
// Mapping is safe for concurrent read access and Close is idempotent.
// A Region's position is not synchronized; use one Region per goroutine.
package mmap
