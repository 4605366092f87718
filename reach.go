package ubjson

import "strconv"

// Reach walks dot-separated path segments through a decoded document. Each
// segment selects an Object member by key or an Array element by its
// decimal index; Reach stops and reports ok=false the moment a segment
// cannot be applied (wrong container kind, missing key, or an
// out-of-range index), rather than panicking.
//
// Reach returns the matched Value itself rather than coercing into a
// caller-supplied destination: Value is already a closed, typed tree, so
// there is no dynamic destination type to coerce into.
func Reach(v Value, dot ...string) (Value, bool) {
	cur := v
	for _, name := range dot {
		switch t := cur.(type) {
		case Object:
			next, ok := t.Get(name)
			if !ok {
				return nil, false
			}
			cur = next
		case Array:
			idx, err := strconv.Atoi(name)
			if err != nil || idx < 0 || idx >= len(t) {
				return nil, false
			}
			cur = t[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}
