package transport

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/OpenJData/ubjson-go"
)

// Block framing: one flag byte (blockRaw or blockCompressed) followed by
// an 8-byte big-endian payload length and the payload itself. The raw
// fallback exists because LZ4's block compressor reports incompressible
// input by producing zero output, and small UBJSON documents are often
// incompressible.
const (
	blockRaw        = 0x00
	blockCompressed = 0x01
)

// WrapSink returns a Sink that buffers every write, compresses the whole
// block with codec on Flush, and forwards one framed block to inner. One
// EncodeToStream call therefore produces exactly one block.
func WrapSink(inner ubjson.Sink, codec Codec) ubjson.Sink {
	return &compressingSink{inner: inner, codec: codec}
}

type compressingSink struct {
	inner ubjson.Sink
	codec Codec
	buf   bytes.Buffer
}

func (s *compressingSink) Write(b []byte) error {
	_, err := s.buf.Write(b)
	return err
}

func (s *compressingSink) WriteByte(b byte) error {
	return s.buf.WriteByte(b)
}

func (s *compressingSink) Flush() error {
	plain := s.buf.Bytes()
	payload, flag := plain, byte(blockRaw)
	compressed, err := s.codec.Compress(plain)
	if err != nil {
		return err
	}
	if len(compressed) > 0 && len(compressed) < len(plain) {
		payload, flag = compressed, blockCompressed
	}
	if err := s.inner.WriteByte(flag); err != nil {
		return err
	}
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(payload)))
	if err := s.inner.Write(lenBuf[:]); err != nil {
		return err
	}
	if err := s.inner.Write(payload); err != nil {
		return err
	}
	return s.inner.Flush()
}

// WrapSource reads one framed block from inner, decompresses it with
// codec when the flag byte says to, and returns a Source over the
// plaintext. Unlike the uncompressed Sources, this necessarily reads the
// whole block eagerly: a compressed stream has no way to honor the
// "never read past the demanded bytes" property at the individual-value
// granularity.
func WrapSource(inner ubjson.Source, codec Codec) (ubjson.Source, error) {
	flag, err := inner.ReadByte()
	if err != nil {
		return nil, err
	}
	if flag != blockRaw && flag != blockCompressed {
		return nil, fmt.Errorf("transport: unknown block flag 0x%02x", flag)
	}
	lenBytes, err := inner.ReadExact(8)
	if err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint64(lenBytes)
	payload, err := inner.ReadExact(int(n))
	if err != nil {
		return nil, err
	}
	plain := payload
	if flag == blockCompressed {
		plain, err = codec.Decompress(payload)
		if err != nil {
			return nil, err
		}
	} else {
		plain = append([]byte(nil), payload...)
	}
	return ubjson.NewSliceSource(plain), nil
}
