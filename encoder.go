package ubjson

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"unicode/utf8"
)

// maxDefaultHandlerAttempts bounds how many times EncodeConfig.DefaultHandler
// may be consulted for the same value before encoding gives up with
// RECURSION_VIA_DEFAULT. A handler that keeps returning another
// not-yet-encodable value (rather than converging on a Value) after this
// many tries is almost certainly looping.
const maxDefaultHandlerAttempts = 8

// encFrameKind distinguishes the two container shapes the non-recursive
// engine tracks on its explicit work stack.
type encFrameKind int

const (
	encFrameArray encFrameKind = iota
	encFrameObject
)

// encFrame is one level of the encoder's explicit stack: heap-allocated
// state standing in for what a recursive encoder would keep in its call
// frames, so control-stack depth stays O(1) regardless of document depth.
type encFrame struct {
	kind     encFrameKind
	path     string
	identity uintptr
	items    []interface{}
	members  []objectItem
	idx      int
}

type encoder struct {
	sink   Sink
	cfg    EncodeConfig
	active map[uintptr]bool
	stack  []*encFrame
}

// EncodeToBytes encodes value per cfg and returns the complete wire
// representation.
func EncodeToBytes(value interface{}, cfg EncodeConfig) ([]byte, error) {
	sink := newBufferSink()
	defer sink.release()
	if err := encodeValue(value, cfg, sink); err != nil {
		return nil, err
	}
	if err := sink.Flush(); err != nil {
		return nil, err
	}
	return sink.Bytes(), nil
}

// EncodeToStream encodes value per cfg, writing through sink and flushing
// it exactly once on successful return. A failed encode returns without
// flushing sink.
func EncodeToStream(value interface{}, cfg EncodeConfig, sink Sink) error {
	if err := encodeValue(value, cfg, sink); err != nil {
		return err
	}
	return sink.Flush()
}

func encodeValue(value interface{}, cfg EncodeConfig, sink Sink) error {
	e := &encoder{sink: sink, cfg: cfg, active: make(map[uintptr]bool)}
	return e.run(value)
}

// run drives the whole encode: resolve the root, then (if it's a
// container) pump the explicit work stack until empty. Every push/pop here
// replaces what would otherwise be a recursive call.
func (e *encoder) run(root interface{}) error {
	r, err := e.resolve(root, "")
	if err != nil {
		return err
	}
	switch r.kind {
	case resolvedScalar:
		return e.writeScalar(r.scalar, "")
	case resolvedBytes:
		return e.writeBytesValue(r.bytes, "")
	default:
		if err := e.pushContainer(r, ""); err != nil {
			return err
		}
	}

	for len(e.stack) > 0 {
		top := e.stack[len(e.stack)-1]
		var hasMore bool
		switch top.kind {
		case encFrameArray:
			hasMore = top.idx < len(top.items)
		case encFrameObject:
			hasMore = top.idx < len(top.members)
		}
		if !hasMore {
			if err := e.closeFrame(top); err != nil {
				return err
			}
			e.stack = e.stack[:len(e.stack)-1]
			if top.identity != 0 {
				delete(e.active, top.identity)
			}
			continue
		}

		switch top.kind {
		case encFrameArray:
			child := top.items[top.idx]
			childPath := indexPath(top.path, top.idx)
			top.idx++
			if err := e.emitChild(child, childPath); err != nil {
				return err
			}
		case encFrameObject:
			m := top.members[top.idx]
			top.idx++
			if !utf8.ValidString(m.key) {
				return newEncoderFailure(CodeStringNotUTF8, "STRING_NOT_UTF8", catpath(top.path, m.key),
					"object key is not valid UTF-8")
			}
			if err := e.writeRawString(m.key); err != nil {
				return err
			}
			if err := e.emitChild(m.val, catpath(top.path, m.key)); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolve reduces v to a resolved description, consulting
// cfg.DefaultHandler for values classify does not recognize directly.
func (e *encoder) resolve(v interface{}, path string) (resolved, error) {
	cur := v
	attempts := 0
	for {
		r, ok := classify(cur)
		if ok {
			if e.cfg.DisableHugeIntFallback && r.kind == resolvedScalar {
				if hi, isHuge := r.scalar.(HugeInt); r.overflowHugeInt || (isHuge && hi.Int != nil && !fitsInt64(hi.Int)) {
					return resolved{}, newEncoderFailure(CodeIntegerOutOfRange, "INTEGER_OUT_OF_RANGE", path,
						"integer exceeds the signed 64-bit range and HugeInt fallback is disabled")
				}
			}
			return r, nil
		}
		if e.cfg.DefaultHandler == nil {
			return resolved{}, newEncoderFailure(CodeUnsupportedType, "UNSUPPORTED_TYPE", path,
				fmt.Sprintf("unsupported type %T", cur))
		}
		attempts++
		if attempts > maxDefaultHandlerAttempts {
			return resolved{}, newEncoderFailure(CodeRecursionViaHandler, "RECURSION_VIA_DEFAULT", path,
				"default handler did not converge to an encodable value")
		}
		next, err := e.cfg.DefaultHandler(cur)
		if err != nil {
			return resolved{}, newEncoderFailure(CodeUnsupportedType, "UNSUPPORTED_TYPE", path, err.Error())
		}
		cur = next
	}
}

func (e *encoder) emitChild(v interface{}, path string) error {
	r, err := e.resolve(v, path)
	if err != nil {
		return err
	}
	switch r.kind {
	case resolvedScalar:
		return e.writeScalar(r.scalar, path)
	case resolvedBytes:
		return e.writeBytesValue(r.bytes, path)
	default:
		return e.pushContainer(r, path)
	}
}

// pushContainer registers r's identity for cycle detection, writes its
// opening marker (plus count header if ContainerCount is set), and pushes
// a new frame for run's loop to drain.
func (e *encoder) pushContainer(r resolved, path string) error {
	if r.identity != 0 {
		if e.active[r.identity] {
			return newEncoderFailure(CodeUnsupportedType, "UNSUPPORTED_TYPE", path,
				"value references an ancestor container, forming a cycle")
		}
		e.active[r.identity] = true
	}

	frame := &encFrame{path: path, identity: r.identity}
	var openMarker Marker
	var count int
	switch r.kind {
	case resolvedArray:
		frame.kind = encFrameArray
		frame.items = r.items
		openMarker = MarkerArrayStart
		count = len(r.items)
	case resolvedObject:
		frame.kind = encFrameObject
		members := r.members
		if e.cfg.SortKeys {
			members = append([]objectItem(nil), members...)
			sort.Slice(members, func(i, j int) bool { return members[i].key < members[j].key })
		}
		frame.members = members
		openMarker = MarkerObjectStart
		count = len(members)
	}

	if err := e.sink.WriteByte(byte(openMarker)); err != nil {
		return err
	}
	if e.cfg.ContainerCount {
		if err := e.sink.WriteByte(byte(MarkerCount)); err != nil {
			return err
		}
		if err := e.writeOptimalInt(int64(count)); err != nil {
			return err
		}
	}
	e.stack = append(e.stack, frame)
	return nil
}

func (e *encoder) closeFrame(f *encFrame) error {
	if e.cfg.ContainerCount {
		return nil // counted containers have no terminator
	}
	switch f.kind {
	case encFrameArray:
		return e.sink.WriteByte(byte(MarkerArrayEnd))
	default:
		return e.sink.WriteByte(byte(MarkerObjectEnd))
	}
}

func (e *encoder) writeScalar(v Value, path string) error {
	switch t := v.(type) {
	case Null:
		return e.sink.WriteByte(byte(MarkerNull))
	case Bool:
		if t {
			return e.sink.WriteByte(byte(MarkerTrue))
		}
		return e.sink.WriteByte(byte(MarkerFalse))
	case Int:
		return e.writeIntValue(int64(t))
	case HugeInt:
		return e.writeHugeInt(t)
	case Float:
		return e.writeFloatValue(float64(t))
	case HighPrec:
		return e.writeHighPrec(string(t))
	case Char:
		return e.writeChar(rune(t), path)
	case String:
		return e.writeStringValue(string(t), path)
	default:
		return newEncoderFailure(CodeUnsupportedType, "UNSUPPORTED_TYPE", path,
			fmt.Sprintf("unrecognized Value variant %T", v))
	}
}

func (e *encoder) writeIntValue(v int64) error {
	m := classifyInt(v)
	if err := e.sink.WriteByte(byte(m)); err != nil {
		return err
	}
	switch m {
	case MarkerInt8:
		return e.sink.WriteByte(byte(int8(v)))
	case MarkerUint8:
		return e.sink.WriteByte(byte(uint8(v)))
	case MarkerInt16:
		return e.writeBigEndian(uint16(int16(v)), 2)
	case MarkerInt32:
		return e.writeBigEndian(uint32(int32(v)), 4)
	default:
		return e.writeBigEndian(uint64(v), 8)
	}
}

// writeOptimalInt is writeIntValue without a Value wrapper: it writes
// string/container lengths and counts in the same narrowed-marker form as
// any other integer.
func (e *encoder) writeOptimalInt(v int64) error {
	return e.writeIntValue(v)
}

func (e *encoder) writeBigEndian(v interface{}, size int) error {
	buf := make([]byte, size)
	switch size {
	case 2:
		binary.BigEndian.PutUint16(buf, v.(uint16))
	case 4:
		binary.BigEndian.PutUint32(buf, v.(uint32))
	case 8:
		binary.BigEndian.PutUint64(buf, v.(uint64))
	}
	return e.sink.Write(buf)
}

func (e *encoder) writeHugeInt(h HugeInt) error {
	if h.Int == nil {
		return e.sink.WriteByte(byte(MarkerNull))
	}
	return e.writeHighPrec(h.Int.String())
}

func (e *encoder) writeFloatValue(f float64) error {
	m, nonFinite := classifyFloat(f, e.cfg.NoFloat32)
	if nonFinite {
		return e.sink.WriteByte(byte(MarkerNull))
	}
	if err := e.sink.WriteByte(byte(m)); err != nil {
		return err
	}
	if m == MarkerFloat32 {
		return e.writeBigEndian(math.Float32bits(float32(f)), 4)
	}
	return e.writeBigEndian(math.Float64bits(f), 8)
}

func (e *encoder) writeHighPrec(s string) error {
	if err := e.sink.WriteByte(byte(MarkerHighPrec)); err != nil {
		return err
	}
	return e.writeRawString(s)
}

func (e *encoder) writeChar(c rune, path string) error {
	if c < 0 || c > 127 {
		return newEncoderFailure(CodeStringNotUTF8, "STRING_NOT_UTF8", path,
			"Char value is outside the single-byte ASCII range")
	}
	if err := e.sink.WriteByte(byte(MarkerChar)); err != nil {
		return err
	}
	return e.sink.WriteByte(byte(c))
}

func (e *encoder) writeStringValue(s string, path string) error {
	if !utf8.ValidString(s) {
		return newEncoderFailure(CodeStringNotUTF8, "STRING_NOT_UTF8", path, "string is not valid UTF-8")
	}
	if err := e.sink.WriteByte(byte(MarkerString)); err != nil {
		return err
	}
	return e.writeRawString(s)
}

// writeRawString writes a length-prefixed string payload with no leading
// type marker, the form used both for the 'S' scalar's payload and for
// object keys (which are always strings and never carry their own marker).
func (e *encoder) writeRawString(s string) error {
	if err := e.writeOptimalInt(int64(len(s))); err != nil {
		return err
	}
	return e.sink.Write([]byte(s))
}

// writeBytesValue emits b as the one strongly-typed container this
// encoder produces: a uint8-typed, counted array.
func (e *encoder) writeBytesValue(b []byte, path string) error {
	if err := e.sink.WriteByte(byte(MarkerArrayStart)); err != nil {
		return err
	}
	if err := e.sink.WriteByte(byte(MarkerType)); err != nil {
		return err
	}
	if err := e.sink.WriteByte(byte(MarkerUint8)); err != nil {
		return err
	}
	if err := e.sink.WriteByte(byte(MarkerCount)); err != nil {
		return err
	}
	if err := e.writeOptimalInt(int64(len(b))); err != nil {
		return err
	}
	return e.sink.Write(b)
}
