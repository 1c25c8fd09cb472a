// Package segment persists sequences of blocks as a framed, checksummed
// stream.
//
// # Format
//
//	[header: 16 bytes]
//	[len u32][payload]   repeated, optionally inside an LZ4 or ZSTD stream
//	[0xFFFFFFFF][crc32c u32]
//
// The header is
//
//	[magic u32][version u16][compression u8][flags u8][reserved: 8 bytes]
//
// Every integer is in native byte order, like the block header itself. A
// segment written on a machine of the other endianness is rejected with
// ErrByteOrder instead of being misread.
//
// The trailer checksum is CRC32-C over all record bytes, headers included,
// before compression. Readers verify it before reporting io.EOF.
//
// Uncompressed segments on local disk can be read straight out of a memory
// mapping (OpenRegion, or Open on a blob store whose blobs are Mappable).
package segment
