package ubjson

import (
	"math"
	"math/big"
	"reflect"
	"strings"
)

// objectItem is a pending (key, host-value) pair awaiting classification,
// the coercion-layer equivalent of Member.
type objectItem struct {
	key string
	val interface{}
}

type resolvedKind int

const (
	resolvedScalar resolvedKind = iota
	resolvedBytes
	resolvedArray
	resolvedObject
)

// resolved is the outcome of classifying one host value: either a leaf
// Value, a Bytes payload, or the immediate (unexpanded) children of an
// Array/Object. Children are classified lazily, one level at a time, by
// the encoder's work stack; classify never recurses into grandchildren.
type resolved struct {
	kind     resolvedKind
	scalar   Value
	bytes    []byte
	items    []interface{}
	members  []objectItem
	identity uintptr // 0 if this value cannot participate in a cycle

	// overflowHugeInt is true only when an unsigned scalar wider than
	// math.MaxInt64 was implicitly widened to HugeInt; EncodeConfig.
	// DisableHugeIntFallback rejects exactly this case.
	overflowHugeInt bool
}

// classify maps a host value (either one of this package's own Value
// types, or an arbitrary Go value presenting as a sequence, a mapping, or
// a bag of bytes) to a resolved description. ok is false when v's type is
// not recognized at all, in which case the caller falls back to
// EncodeConfig.DefaultHandler.
//
// Well-known concrete types are tried first; reflect.Kind handles
// derived/named types, structs, slices, and maps.
func classify(v interface{}) (resolved, bool) {
	if v == nil {
		return resolved{kind: resolvedScalar, scalar: Null{}}, true
	}

	switch t := v.(type) {
	case Value:
		return classifyOwnValue(t)
	case bool:
		return resolved{kind: resolvedScalar, scalar: Bool(t)}, true
	case int:
		return resolved{kind: resolvedScalar, scalar: Int(t)}, true
	case int8:
		return resolved{kind: resolvedScalar, scalar: Int(t)}, true
	case int16:
		return resolved{kind: resolvedScalar, scalar: Int(t)}, true
	case int32:
		return resolved{kind: resolvedScalar, scalar: Int(t)}, true
	case int64:
		return resolved{kind: resolvedScalar, scalar: Int(t)}, true
	case uint:
		return classifyUint64(uint64(t))
	case uint8:
		return resolved{kind: resolvedScalar, scalar: Int(t)}, true
	case uint16:
		return resolved{kind: resolvedScalar, scalar: Int(t)}, true
	case uint32:
		return resolved{kind: resolvedScalar, scalar: Int(t)}, true
	case uint64:
		return classifyUint64(t)
	case float32:
		return resolved{kind: resolvedScalar, scalar: Float(t)}, true
	case float64:
		return resolved{kind: resolvedScalar, scalar: Float(t)}, true
	case string:
		return resolved{kind: resolvedScalar, scalar: String(t)}, true
	case []byte:
		return resolved{kind: resolvedBytes, bytes: t, identity: identityOf(reflect.ValueOf(t))}, true
	case *big.Int:
		if t == nil {
			return resolved{kind: resolvedScalar, scalar: Null{}}, true
		}
		return resolved{kind: resolvedScalar, scalar: HugeInt{t}}, true
	}

	rv := reflect.ValueOf(v)
	return classifyReflect(rv)
}

func classifyUint64(u uint64) (resolved, bool) {
	if u <= math.MaxInt64 {
		return resolved{kind: resolvedScalar, scalar: Int(int64(u))}, true
	}
	return resolved{kind: resolvedScalar, scalar: HugeInt{new(big.Int).SetUint64(u)}, overflowHugeInt: true}, true
}

// classifyOwnValue dispatches the closed Value variant. NoOp is the one
// decode-only case: the encoder refuses to place it, the same way it
// refuses any other unrecognized type.
func classifyOwnValue(v Value) (resolved, bool) {
	switch t := v.(type) {
	case Null:
		return resolved{kind: resolvedScalar, scalar: t}, true
	case NoOp:
		return resolved{}, false
	case Bool:
		return resolved{kind: resolvedScalar, scalar: t}, true
	case Int:
		return resolved{kind: resolvedScalar, scalar: t}, true
	case HugeInt:
		return resolved{kind: resolvedScalar, scalar: t}, true
	case Float:
		return resolved{kind: resolvedScalar, scalar: t}, true
	case HighPrec:
		return resolved{kind: resolvedScalar, scalar: t}, true
	case Char:
		return resolved{kind: resolvedScalar, scalar: t}, true
	case String:
		return resolved{kind: resolvedScalar, scalar: t}, true
	case Bytes:
		return resolved{kind: resolvedBytes, bytes: []byte(t), identity: identityOf(reflect.ValueOf([]byte(t)))}, true
	case Array:
		items := make([]interface{}, len(t))
		for i, e := range t {
			items[i] = e
		}
		return resolved{kind: resolvedArray, items: items, identity: identityOf(reflect.ValueOf(t))}, true
	case Object:
		members := make([]objectItem, len(t))
		for i, m := range t {
			members[i] = objectItem{key: m.Key, val: m.Val}
		}
		return resolved{kind: resolvedObject, members: members, identity: identityOf(reflect.ValueOf(t))}, true
	}
	return resolved{}, false
}

// classifyReflect is the "fall back to reflect" half of classify:
// named/derived scalar kinds, slices/arrays, maps with string keys,
// structs, and pointers/interfaces.
func classifyReflect(rv reflect.Value) (resolved, bool) {
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return resolved{kind: resolvedScalar, scalar: Null{}}, true
		}
		// A struct has no identity of its own, so a cycle formed through a
		// pointer field (linked list, parent back-pointer) is only visible
		// via the pointer. Carry the pointer's identity into the unwrapped
		// result unless the pointee brought its own (slice, map).
		ident := identityOf(rv)
		r, ok := classify(rv.Elem().Interface())
		if ok && r.identity == 0 {
			r.identity = ident
		}
		return r, ok
	case reflect.Bool:
		return resolved{kind: resolvedScalar, scalar: Bool(rv.Bool())}, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return resolved{kind: resolvedScalar, scalar: Int(rv.Int())}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return classifyUint64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return resolved{kind: resolvedScalar, scalar: Float(rv.Float())}, true
	case reflect.String:
		return resolved{kind: resolvedScalar, scalar: String(rv.String())}, true
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			identity := uintptr(0)
			if rv.Kind() == reflect.Slice {
				identity = identityOf(rv)
			}
			return resolved{kind: resolvedBytes, bytes: b, identity: identity}, true
		}
		items := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = rv.Index(i).Interface()
		}
		identity := uintptr(0)
		if rv.Kind() == reflect.Slice {
			identity = identityOf(rv)
		}
		return resolved{kind: resolvedArray, items: items, identity: identity}, true
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return resolved{}, false
		}
		keys := rv.MapKeys()
		members := make([]objectItem, 0, len(keys))
		for _, k := range keys {
			members = append(members, objectItem{key: k.String(), val: rv.MapIndex(k).Interface()})
		}
		return resolved{kind: resolvedObject, members: members, identity: identityOf(rv)}, true
	case reflect.Struct:
		return classifyStruct(rv)
	}
	return resolved{}, false
}

// structFieldTag is the parsed form of a `ubjson:"name,omitempty"` tag,
// following encoding/json's two-token tag grammar.
type structFieldTag struct {
	name      string
	omitempty bool
	skip      bool
}

func parseStructFieldTag(field reflect.StructField) structFieldTag {
	raw, ok := field.Tag.Lookup("ubjson")
	if !ok {
		return structFieldTag{name: field.Name}
	}
	if raw == "-" {
		return structFieldTag{skip: true}
	}
	parts := strings.Split(raw, ",")
	tag := structFieldTag{name: parts[0]}
	if tag.name == "" {
		tag.name = field.Name
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			tag.omitempty = true
		}
	}
	return tag
}

// classifyStruct reduces an exported struct's fields to an Object,
// honoring `ubjson:"name,omitempty"` tags and skipping unexported fields.
func classifyStruct(rv reflect.Value) (resolved, bool) {
	t := rv.Type()
	members := make([]objectItem, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}
		tag := parseStructFieldTag(field)
		if tag.skip {
			continue
		}
		fv := rv.Field(i)
		if tag.omitempty && isEmptyValue(fv) {
			continue
		}
		members = append(members, objectItem{key: tag.name, val: fv.Interface()})
	}
	return resolved{kind: resolvedObject, members: members}, true
}
