package ubjson

import (
	"reflect"
	"strconv"
	"strings"
)

// catpath concatenates name onto path for EncoderFailure.Path reporting.
func catpath(path, name string) string {
	if path == "" {
		return name
	}
	return strings.Join([]string{path, name}, ".")
}

// indexPath is catpath specialized for array elements.
func indexPath(path string, idx int) string {
	return catpath(path, strconv.Itoa(idx))
}

// isEmptyValue reports whether val is the Go-kind-generic "empty value"
// (zero number, empty string/slice/map, nil pointer/interface, false),
// matching what encoding/json treats as empty for `omitempty`.
func isEmptyValue(val reflect.Value) bool {
	switch val.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return val.Len() == 0
	case reflect.Bool:
		return !val.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return val.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return val.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return val.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return val.IsNil()
	}
	return false
}

// identityOf returns a stable identity for reference-like reflect values
// (slice/map/pointer), used for cycle detection during encoding. It
// returns 0 for value kinds that cannot participate in a cycle.
func identityOf(rv reflect.Value) uintptr {
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Ptr:
		return rv.Pointer()
	default:
		return 0
	}
}
