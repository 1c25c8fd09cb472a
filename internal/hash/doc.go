// Package hash provides the CRC32-Castagnoli checksum used by segment trailers
// and blob uploads.
//
// CRC32C is hardware accelerated on x86 (SSE4.2) and ARM (CRC extension) and
// detects all burst errors up to 32 bits.
//
// One-shot:
//
//	checksum := hash.CRC32C(data)
//
// Incremental, as a segment writer appends records:
//
//	var crc uint32
//	crc = hash.UpdateCRC32C(crc, header)
//	crc = hash.UpdateCRC32C(crc, payload)
package hash
