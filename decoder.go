package ubjson

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// decFrameKind distinguishes the two container shapes the non-recursive
// parser tracks on its explicit stack, mirroring encFrameKind on the
// encode side.
type decFrameKind int

const (
	decFrameArray decFrameKind = iota
	decFrameObject
)

// decFrame is one level of the decoder's explicit stack. It replaces what
// would otherwise be a recursive decodeArray/decodeObject call frame, so
// control-stack depth stays O(1) regardless of document depth; only this
// heap-allocated stack grows with nesting.
type decFrame struct {
	kind    decFrameKind
	typed   bool
	elem    Marker
	counted bool
	remain  int64 // only meaningful when counted

	items   []Value
	members []Member

	pendingKey     string
	havePendingKey bool

	pendingFirst     byte
	havePendingFirst bool
}

type containerHeader struct {
	typed   bool
	elem    Marker
	counted bool
	count   int64

	pendingFirst     byte
	havePendingFirst bool
}

type decoder struct {
	src      Source
	cfg      DecodeConfig
	interner *keyInterner
	stack    []*decFrame
}

func newDecoder(src Source, cfg DecodeConfig) *decoder {
	d := &decoder{src: src, cfg: cfg}
	if cfg.InternObjectKeys {
		d.interner = newKeyInterner()
	}
	return d
}

// DecodeFromBytes decodes exactly one value from the front of buf and
// returns it along with the number of bytes consumed. Bytes past that
// point are left untouched in buf for the caller to inspect.
func DecodeFromBytes(buf []byte, cfg DecodeConfig) (Value, int, error) {
	src := &sliceSource{buf: buf}
	d := newDecoder(src, cfg)
	v, err := d.run()
	if err != nil {
		return nil, int(src.Offset()), err
	}
	return v, int(src.Offset()), nil
}

// DecodeFromStream decodes exactly one value from source, reading no
// further than the bytes that make up that value.
func DecodeFromStream(source Source, cfg DecodeConfig) (Value, error) {
	d := newDecoder(source, cfg)
	return d.run()
}

// run drives the whole decode non-recursively: read the root slot, then
// (if it opened a container) pump the explicit frame stack, attaching each
// completed child into its parent, until the stack drains back to empty.
func (d *decoder) run() (Value, error) {
	v, isContainer, kind, err := d.readRootSlot()
	if err != nil {
		return nil, err
	}
	if !isContainer {
		return v, nil
	}

	frame, bytesFast, bytesVal, err := d.openContainer(kind)
	if err != nil {
		return nil, err
	}
	if bytesFast {
		return bytesVal, nil
	}
	d.stack = append(d.stack, frame)

	var pending Value
	havePending := false

	for len(d.stack) > 0 {
		top := d.stack[len(d.stack)-1]

		if havePending {
			d.attach(top, pending)
			havePending = false
			pending = nil
			if d.frameExhausted(top) {
				completed, err := d.finishFrame(top)
				if err != nil {
					return nil, err
				}
				d.stack = d.stack[:len(d.stack)-1]
				pending = completed
				havePending = true
			}
			continue
		}

		switch top.kind {
		case decFrameObject:
			if !top.havePendingKey {
				done, err := d.beginObjectSlot(top)
				if err != nil {
					return nil, err
				}
				if done {
					completed, err := d.finishFrame(top)
					if err != nil {
						return nil, err
					}
					d.stack = d.stack[:len(d.stack)-1]
					pending = completed
					havePending = true
					continue
				}
			}
			v, isC, childKind, done, err := d.readSlot(top)
			if err != nil {
				return nil, err
			}
			if done {
				completed, err := d.finishFrame(top)
				if err != nil {
					return nil, err
				}
				d.stack = d.stack[:len(d.stack)-1]
				pending = completed
				havePending = true
				continue
			}
			if isC {
				childFrame, bytesFast, bytesVal, err := d.openContainer(childKind)
				if err != nil {
					return nil, err
				}
				if bytesFast {
					pending = bytesVal
					havePending = true
					continue
				}
				if err := d.checkDepth(); err != nil {
					return nil, err
				}
				d.stack = append(d.stack, childFrame)
				continue
			}
			pending = v
			havePending = true
		case decFrameArray:
			v, isC, childKind, done, err := d.readSlot(top)
			if err != nil {
				return nil, err
			}
			if done {
				completed, err := d.finishFrame(top)
				if err != nil {
					return nil, err
				}
				d.stack = d.stack[:len(d.stack)-1]
				pending = completed
				havePending = true
				continue
			}
			if isC {
				childFrame, bytesFast, bytesVal, err := d.openContainer(childKind)
				if err != nil {
					return nil, err
				}
				if bytesFast {
					pending = bytesVal
					havePending = true
					continue
				}
				if err := d.checkDepth(); err != nil {
					return nil, err
				}
				d.stack = append(d.stack, childFrame)
				continue
			}
			pending = v
			havePending = true
		}
	}
	return pending, nil
}

// checkDepth reports whether pushing one more frame onto the stack would
// bring nesting past MaxDepth. Called before the push, so it compares the
// depth the stack is about to reach, not the depth it is currently at.
func (d *decoder) checkDepth() error {
	if len(d.stack)+1 > d.cfg.effectiveMaxDepth() {
		return newDecoderFailure(CodeDepthExceeded, "DEPTH_EXCEEDED", d.src.Offset(), "container nesting exceeds MaxDepth")
	}
	return nil
}

// attach appends a completed child value to its parent frame's accumulator
// and, for counted frames, decrements the remaining slot count.
func (d *decoder) attach(frame *decFrame, v Value) {
	switch frame.kind {
	case decFrameArray:
		frame.items = append(frame.items, v)
	case decFrameObject:
		frame.members = append(frame.members, Member{Key: frame.pendingKey, Val: v})
		frame.pendingKey = ""
		frame.havePendingKey = false
	}
	if frame.counted {
		frame.remain--
	}
}

func (d *decoder) frameExhausted(frame *decFrame) bool {
	return frame.counted && frame.remain == 0
}

// finishFrame reduces a drained frame's accumulator into the Value it
// represents: an Array as-is, or an Object after duplicate-key resolution
// and any configured hook.
func (d *decoder) finishFrame(frame *decFrame) (Value, error) {
	if frame.kind == decFrameArray {
		return Array(frame.items), nil
	}

	if d.cfg.ObjectPairsHook != nil {
		v, err := d.cfg.ObjectPairsHook(frame.members)
		if err != nil {
			return nil, wrapHookFailure(err, d.src.Offset())
		}
		return v, nil
	}

	obj := resolveDuplicateKeys(frame.members)
	if d.cfg.ObjectHook != nil {
		v, err := d.cfg.ObjectHook(obj)
		if err != nil {
			return nil, wrapHookFailure(err, d.src.Offset())
		}
		return v, nil
	}
	return obj, nil
}

// resolveDuplicateKeys keeps the position of each key's first occurrence
// but the value of its last, the same last-write-wins rule a Go map
// literal with repeated keys would apply.
func resolveDuplicateKeys(members []Member) Object {
	index := make(map[string]int, len(members))
	result := make([]Member, 0, len(members))
	for _, m := range members {
		if i, ok := index[m.Key]; ok {
			result[i].Val = m.Val
			continue
		}
		index[m.Key] = len(result)
		result = append(result, m)
	}
	return Object(result)
}

// nextRawByte returns a frame's already-consumed lookahead byte (from
// header parsing) if one is pending, otherwise reads a fresh byte.
func (d *decoder) nextRawByte(frame *decFrame) (byte, error) {
	if frame.havePendingFirst {
		b := frame.pendingFirst
		frame.havePendingFirst = false
		return b, nil
	}
	return d.src.ReadByte()
}

// readSlot reads one element/value slot for frame: for a counted frame
// this is governed by the remaining count, for a terminator-delimited
// frame by reading a byte and checking whether it is the closing marker.
// NoOp markers are transparently skipped without being counted.
func (d *decoder) readSlot(frame *decFrame) (v Value, isContainer bool, kind decFrameKind, done bool, err error) {
	if frame.typed {
		if frame.counted && frame.remain == 0 {
			return nil, false, 0, true, nil
		}
		v, isContainer, kind, err = d.dispatchMarker(frame.elem)
		return v, isContainer, kind, false, err
	}

	if frame.counted {
		if frame.remain == 0 {
			return nil, false, 0, true, nil
		}
		for {
			b, rerr := d.nextRawByte(frame)
			if rerr != nil {
				return nil, false, 0, false, rerr
			}
			m := Marker(b)
			if m == MarkerNoOp {
				continue
			}
			v, isContainer, kind, err = d.dispatchMarker(m)
			return v, isContainer, kind, false, err
		}
	}

	closeMarker, otherClose := MarkerArrayEnd, MarkerObjectEnd
	if frame.kind == decFrameObject {
		closeMarker, otherClose = MarkerObjectEnd, MarkerArrayEnd
	}
	for {
		b, rerr := d.nextRawByte(frame)
		if rerr != nil {
			return nil, false, 0, false, rerr
		}
		m := Marker(b)
		if m == closeMarker {
			return nil, false, 0, true, nil
		}
		if m == otherClose {
			return nil, false, 0, false, newDecoderFailure(CodeContainerMismatch, "CONTAINER_MISMATCH", d.src.Offset()-1,
				"closing marker does not match the container it would close")
		}
		if m == MarkerNoOp {
			continue
		}
		v, isContainer, kind, err = d.dispatchMarker(m)
		return v, isContainer, kind, false, err
	}
}

// beginObjectSlot reads (or detects the end of) the next key for an
// object frame whose value has not yet been read. Keys never carry the
// NoOp marker or a type marker: they are always a bare length-prefixed
// string.
func (d *decoder) beginObjectSlot(frame *decFrame) (done bool, err error) {
	if frame.counted {
		if frame.remain == 0 {
			return true, nil
		}
		key, err := d.readRawString()
		if err != nil {
			return false, err
		}
		frame.pendingKey = d.maybeIntern(key)
		frame.havePendingKey = true
		return false, nil
	}

	b, err := d.nextRawByte(frame)
	if err != nil {
		return false, err
	}
	if Marker(b) == MarkerObjectEnd {
		return true, nil
	}
	if Marker(b) == MarkerNoOp {
		return false, newDecoderFailure(CodeUnknownMarker, "UNKNOWN_MARKER", d.src.Offset()-1,
			"NoOp is not valid in object key position")
	}
	key, err := d.readRawStringGivenMarker(Marker(b))
	if err != nil {
		return false, err
	}
	frame.pendingKey = d.maybeIntern(key)
	frame.havePendingKey = true
	return false, nil
}

func (d *decoder) maybeIntern(key string) string {
	if d.interner == nil {
		return key
	}
	return d.interner.intern(key)
}

// readRootSlot reads the single top-level value, skipping any leading
// NoOp markers exactly as an array/object element position would.
func (d *decoder) readRootSlot() (v Value, isContainer bool, kind decFrameKind, err error) {
	for {
		b, rerr := d.src.ReadByte()
		if rerr != nil {
			return nil, false, 0, rerr
		}
		m := Marker(b)
		if m == MarkerNoOp {
			continue
		}
		return d.dispatchMarker(m)
	}
}

// dispatchMarker reads the payload (if any) that follows an already-
// consumed marker byte and reports what it decoded. ArrayStart/ObjectStart
// report isContainer=true without consuming anything further; the caller
// is responsible for then parsing the container header.
func (d *decoder) dispatchMarker(m Marker) (v Value, isContainer bool, kind decFrameKind, err error) {
	switch m {
	case MarkerNull:
		return Null{}, false, 0, nil
	case MarkerTrue:
		return Bool(true), false, 0, nil
	case MarkerFalse:
		return Bool(false), false, 0, nil
	case MarkerInt8, MarkerUint8, MarkerInt16, MarkerInt32, MarkerInt64:
		n, err := d.readIntPayloadGivenMarker(m)
		if err != nil {
			return nil, false, 0, err
		}
		return Int(n), false, 0, nil
	case MarkerFloat32:
		b, err := d.src.ReadExact(4)
		if err != nil {
			return nil, false, 0, err
		}
		return Float(math.Float32frombits(binary.BigEndian.Uint32(b))), false, 0, nil
	case MarkerFloat64:
		b, err := d.src.ReadExact(8)
		if err != nil {
			return nil, false, 0, err
		}
		return Float(math.Float64frombits(binary.BigEndian.Uint64(b))), false, 0, nil
	case MarkerHighPrec:
		s, err := d.readRawString()
		if err != nil {
			return nil, false, 0, err
		}
		return classifyHighPrecString(s), false, 0, nil
	case MarkerChar:
		b, err := d.src.ReadExact(1)
		if err != nil {
			return nil, false, 0, err
		}
		if b[0] > 0x7F {
			return nil, false, 0, newDecoderFailure(CodeBadUTF8, "BAD_UTF8", d.src.Offset()-1,
				"char payload is outside the single-byte ASCII range")
		}
		return Char(rune(b[0])), false, 0, nil
	case MarkerString:
		s, err := d.readRawString()
		if err != nil {
			return nil, false, 0, err
		}
		if !utf8.ValidString(s) {
			return nil, false, 0, newDecoderFailure(CodeBadUTF8, "BAD_UTF8", d.src.Offset(), "string is not valid UTF-8")
		}
		return String(s), false, 0, nil
	case MarkerArrayStart:
		return nil, true, decFrameArray, nil
	case MarkerObjectStart:
		return nil, true, decFrameObject, nil
	default:
		return nil, false, 0, newDecoderFailure(CodeUnknownMarker, "UNKNOWN_MARKER", d.src.Offset()-1,
			fmt.Sprintf("unrecognized marker byte %q", byte(m)))
	}
}

// openContainer parses a just-opened container's header ($type and/or
// #count) and either produces a ready frame, or (for a counted uint8-
// typed array, the Bytes fast path) reads the whole payload in one shot
// and returns a completed value with no frame at all.
func (d *decoder) openContainer(kind decFrameKind) (frame *decFrame, bytesFast bool, bytesVal Value, err error) {
	header, err := d.parseContainerHeader()
	if err != nil {
		return nil, false, nil, err
	}

	if kind == decFrameArray && header.typed && header.elem == MarkerUint8 && header.counted && !d.cfg.NoBytes {
		b, err := d.src.ReadExact(int(header.count))
		if err != nil {
			return nil, false, nil, err
		}
		// Copy: a sliceSource hands back a window into the caller's own
		// buffer, and the returned Value must not alias it.
		return nil, true, Bytes(append([]byte(nil), b...)), nil
	}

	frame = &decFrame{
		kind:             kind,
		typed:            header.typed,
		elem:             header.elem,
		counted:          header.counted,
		remain:           header.count,
		pendingFirst:     header.pendingFirst,
		havePendingFirst: header.havePendingFirst,
	}
	return frame, false, nil, nil
}

func (d *decoder) parseContainerHeader() (containerHeader, error) {
	b, err := d.src.ReadByte()
	if err != nil {
		return containerHeader{}, err
	}

	if Marker(b) == MarkerType {
		tmB, err := d.src.ReadByte()
		if err != nil {
			return containerHeader{}, err
		}
		tm := Marker(tmB)
		if !isScalarMarker(tm) || tm == MarkerNoOp {
			return containerHeader{}, newDecoderFailure(CodeInvalidTypedContainer, "INVALID_TYPED_CONTAINER", d.src.Offset()-1,
				fmt.Sprintf("declared element type %q cannot be used as a container's element type", tmB))
		}
		cB, err := d.src.ReadByte()
		if err != nil {
			return containerHeader{}, err
		}
		if Marker(cB) != MarkerCount {
			return containerHeader{}, newDecoderFailure(CodeInvalidTypedContainer, "INVALID_TYPED_CONTAINER", d.src.Offset()-1,
				"a typed container must be followed by a count")
		}
		count, err := d.readLengthValue()
		if err != nil {
			return containerHeader{}, err
		}
		if d.cfg.MaxContainerLen > 0 && count > d.cfg.MaxContainerLen {
			return containerHeader{}, newDecoderFailure(CodeLengthExceeded, "LENGTH_EXCEEDED", d.src.Offset(),
				"declared container length exceeds MaxContainerLen")
		}
		return containerHeader{typed: true, elem: tm, counted: true, count: count}, nil
	}

	if Marker(b) == MarkerCount {
		count, err := d.readLengthValue()
		if err != nil {
			return containerHeader{}, err
		}
		if d.cfg.MaxContainerLen > 0 && count > d.cfg.MaxContainerLen {
			return containerHeader{}, newDecoderFailure(CodeLengthExceeded, "LENGTH_EXCEEDED", d.src.Offset(),
				"declared container length exceeds MaxContainerLen")
		}
		return containerHeader{counted: true, count: count}, nil
	}

	return containerHeader{pendingFirst: b, havePendingFirst: true}, nil
}

func (d *decoder) readIntPayloadGivenMarker(m Marker) (int64, error) {
	switch m {
	case MarkerInt8:
		b, err := d.src.ReadExact(1)
		if err != nil {
			return 0, err
		}
		return int64(int8(b[0])), nil
	case MarkerUint8:
		b, err := d.src.ReadExact(1)
		if err != nil {
			return 0, err
		}
		return int64(b[0]), nil
	case MarkerInt16:
		b, err := d.src.ReadExact(2)
		if err != nil {
			return 0, err
		}
		return int64(int16(binary.BigEndian.Uint16(b))), nil
	case MarkerInt32:
		b, err := d.src.ReadExact(4)
		if err != nil {
			return 0, err
		}
		return int64(int32(binary.BigEndian.Uint32(b))), nil
	case MarkerInt64:
		b, err := d.src.ReadExact(8)
		if err != nil {
			return 0, err
		}
		return int64(binary.BigEndian.Uint64(b)), nil
	default:
		return 0, newDecoderFailure(CodeUnknownMarker, "UNKNOWN_MARKER", d.src.Offset()-1,
			fmt.Sprintf("expected an integer marker for a length prefix, got %q", byte(m)))
	}
}

func (d *decoder) readLengthValue() (int64, error) {
	b, err := d.src.ReadByte()
	if err != nil {
		return 0, err
	}
	n, err := d.readIntPayloadGivenMarker(Marker(b))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, newDecoderFailure(CodeNegativeLength, "NEGATIVE_LENGTH", d.src.Offset(), "length prefix is negative")
	}
	return n, nil
}

func (d *decoder) readRawStringGivenMarker(m Marker) (string, error) {
	n, err := d.readIntPayloadGivenMarker(m)
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", newDecoderFailure(CodeNegativeLength, "NEGATIVE_LENGTH", d.src.Offset(), "length prefix is negative")
	}
	b, err := d.src.ReadExact(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *decoder) readRawString() (string, error) {
	b, err := d.src.ReadByte()
	if err != nil {
		return "", err
	}
	return d.readRawStringGivenMarker(Marker(b))
}
