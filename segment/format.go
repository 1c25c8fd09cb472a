package segment

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
)

const (
	// Magic identifies a segment ("DOBJ" on little-endian machines).
	Magic uint32 = 0x4A424F44

	// Version is the current format version.
	Version uint16 = 1

	// HeaderSize is the size of the segment header.
	HeaderSize = 16

	trailerMarker uint32 = 0xFFFFFFFF
	trailerSize          = 8
)

var (
	// ErrByteOrder is returned for a segment written with the other byte order.
	ErrByteOrder = errors.New("segment: written with a different byte order")
	// ErrBadMagic is returned when the stream is not a segment.
	ErrBadMagic = errors.New("segment: bad magic")
	// ErrUnsupportedVersion is returned for a newer format version.
	ErrUnsupportedVersion = errors.New("segment: unsupported version")
	// ErrChecksum is returned when the trailer checksum does not match.
	ErrChecksum = errors.New("segment: checksum mismatch")
	// ErrTruncated is returned when the stream ends before the trailer.
	ErrTruncated = errors.New("segment: truncated")
	// ErrClosed is returned when using a closed writer or reader.
	ErrClosed = errors.New("segment: closed")
)

// Compression selects the stream codec for records.
type Compression uint8

const (
	// CompressionNone stores records as is. Only uncompressed segments can be
	// read zero-copy from a mapping.
	CompressionNone Compression = 0
	// CompressionLZ4 uses an LZ4 frame (fast, good for hot data).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses a ZSTD stream (better ratio, good for cold data).
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// Header is the decoded segment header.
type Header struct {
	Version     uint16
	Compression Compression
	Flags       uint8
}

func (h Header) encode() [HeaderSize]byte {
	var buf [HeaderSize]byte
	binary.NativeEndian.PutUint32(buf[0:], Magic)
	binary.NativeEndian.PutUint16(buf[4:], h.Version)
	buf[6] = byte(h.Compression)
	buf[7] = h.Flags
	return buf
}

func decodeHeader(buf []byte) (Header, error) {
	switch magic := binary.NativeEndian.Uint32(buf); magic {
	case Magic:
	case bits.ReverseBytes32(Magic):
		return Header{}, ErrByteOrder
	default:
		return Header{}, fmt.Errorf("%w: %#x", ErrBadMagic, magic)
	}

	h := Header{
		Version:     binary.NativeEndian.Uint16(buf[4:]),
		Compression: Compression(buf[6]),
		Flags:       buf[7],
	}
	if h.Version == 0 || h.Version > Version {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.Compression > CompressionZSTD {
		return Header{}, fmt.Errorf("segment: unknown compression %d", h.Compression)
	}
	return h, nil
}
