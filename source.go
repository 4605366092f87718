package ubjson

import (
	"io"
)

// Source is the pull-style byte abstraction the decoder drives. ReadExact
// returns exactly n bytes or fails with a TRUNCATED DecoderFailure;
// ReadByte is a convenience for the common single-byte case (markers).
// Offset reports the number of bytes consumed so far, surfaced on every
// decode error.
//
// A Source must never consume bytes from its underlying transport beyond
// the last byte demanded by ReadExact/ReadByte: this is what lets a
// decode operation stop exactly after the root value and leave any
// trailing bytes observable (see DecodeFromBytes/DecodeFromStream in
// decoder.go).
type Source interface {
	ReadExact(n int) ([]byte, error)
	ReadByte() (byte, error)
	Offset() int64
}

// sliceSource reads from an in-memory byte slice. decode_from_bytes uses
// this so that bytes past the root value remain inspectable on the
// original slice after decoding returns.
type sliceSource struct {
	buf []byte
	pos int
}

// NewSliceSource returns a Source over buf. The returned Source does not
// copy buf.
func NewSliceSource(buf []byte) Source {
	return &sliceSource{buf: buf}
}

func (s *sliceSource) ReadExact(n int) ([]byte, error) {
	if n < 0 {
		return nil, newDecoderFailure(CodeNegativeLength, "NEGATIVE_LENGTH", s.Offset(),
			"negative read length requested")
	}
	if len(s.buf)-s.pos < n {
		// The failure point is where the input ran out, not where the
		// demand began: consume what is left so Offset reports the end of
		// the truncated document.
		s.pos = len(s.buf)
		return nil, newDecoderFailure(CodeTruncated, "TRUNCATED", s.Offset(),
			"source exhausted before demanded bytes were available")
	}
	b := s.buf[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

func (s *sliceSource) ReadByte() (byte, error) {
	if s.pos >= len(s.buf) {
		return 0, newDecoderFailure(CodeTruncated, "TRUNCATED", s.Offset(),
			"source exhausted reading a single byte")
	}
	b := s.buf[s.pos]
	s.pos++
	return b, nil
}

func (s *sliceSource) Offset() int64 { return int64(s.pos) }

// Remaining returns the bytes not yet consumed. DecodeFromBytes does not
// use it: it reports the "bytes consumed" count from Offset.
func (s *sliceSource) Remaining() []byte { return s.buf[s.pos:] }

// readerSource reads from an io.Reader, one demand at a time, via
// io.ReadFull. It never reads ahead of what was asked, unlike a
// bufio.Reader would. That is the property decode_from_stream needs to
// "stop exactly after the root value" on a live stream such as a pipe or
// socket.
type readerSource struct {
	r   io.Reader
	pos int64
}

// NewReaderSource returns a Source over r.
func NewReaderSource(r io.Reader) Source {
	return &readerSource{r: r}
}

func (s *readerSource) ReadExact(n int) ([]byte, error) {
	if n < 0 {
		return nil, newDecoderFailure(CodeNegativeLength, "NEGATIVE_LENGTH", s.Offset(),
			"negative read length requested")
	}
	if n == 0 {
		return nil, nil
	}
	b := make([]byte, n)
	got, err := io.ReadFull(s.r, b)
	s.pos += int64(got)
	if err != nil {
		return nil, newDecoderFailure(CodeTruncated, "TRUNCATED", s.Offset(),
			"stream exhausted before demanded bytes were available: "+err.Error())
	}
	return b, nil
}

func (s *readerSource) ReadByte() (byte, error) {
	b, err := s.ReadExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (s *readerSource) Offset() int64 { return s.pos }
