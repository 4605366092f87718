// Package transport wraps ubjson's Sink/Source byte abstractions with
// whole-block compression. Codec implementations are swappable and the
// wire framing (a flagged, length-prefixed block) is identical across all
// of them.
package transport

import "fmt"

// Compressor compresses one complete block of encoded UBJSON bytes.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses Compressor.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

// Kind names a built-in Codec for CreateCodec.
type Kind string

const (
	KindNone Kind = "none"
	KindLZ4  Kind = "lz4"
	KindZstd Kind = "zstd"
)

// CreateCodec returns the built-in Codec for kind.
func CreateCodec(kind Kind) (Codec, error) {
	switch kind {
	case KindNone, "":
		return NewNoOpCodec(), nil
	case KindLZ4:
		return NewLZ4Codec(), nil
	case KindZstd:
		return NewZstdCodec(), nil
	default:
		return nil, fmt.Errorf("transport: unknown codec kind %q", kind)
	}
}
