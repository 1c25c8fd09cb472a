package segment

import (
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder(w io.Writer) (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		enc := v.(*zstd.Encoder)
		enc.Reset(w)
		return enc, nil
	}
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func putZstdEncoder(enc *zstd.Encoder) {
	enc.Reset(nil)
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder(r io.Reader) (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		dec := v.(*zstd.Decoder)
		if err := dec.Reset(r); err != nil {
			return nil, err
		}
		return dec, nil
	}
	// Synchronous decoding: records are consumed one by one.
	return zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
}

func putZstdDecoder(dec *zstd.Decoder) {
	_ = dec.Reset(nil)
	zstdDecoderPool.Put(dec)
}

// compressor wraps dst in the stream codec for c. finish flushes the codec
// without closing dst.
func compressor(dst io.Writer, c Compression) (w io.Writer, finish func() error, err error) {
	switch c {
	case CompressionLZ4:
		zw := lz4.NewWriter(dst)
		return zw, zw.Close, nil
	case CompressionZSTD:
		enc, err := getZstdEncoder(dst)
		if err != nil {
			return nil, nil, err
		}
		return enc, func() error {
			err := enc.Close()
			putZstdEncoder(enc)
			return err
		}, nil
	default:
		return dst, func() error { return nil }, nil
	}
}

// decompressor wraps src in the stream codec for c. release returns pooled
// state.
func decompressor(src io.Reader, c Compression) (r io.Reader, release func(), err error) {
	switch c {
	case CompressionLZ4:
		return lz4.NewReader(src), func() {}, nil
	case CompressionZSTD:
		dec, err := getZstdDecoder(src)
		if err != nil {
			return nil, nil, err
		}
		return dec, func() { putZstdDecoder(dec) }, nil
	default:
		return src, func() {}, nil
	}
}
