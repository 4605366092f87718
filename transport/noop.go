package transport

// NoOpCodec passes blocks through unchanged. Useful as the KindNone
// baseline and in tests that want the transport framing without the cost
// of real compression.
type NoOpCodec struct{}

var _ Codec = NoOpCodec{}

func NewNoOpCodec() NoOpCodec { return NoOpCodec{} }

func (NoOpCodec) Compress(data []byte) ([]byte, error)   { return data, nil }
func (NoOpCodec) Decompress(data []byte) ([]byte, error) { return data, nil }
