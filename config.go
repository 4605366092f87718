package ubjson

// DefaultHandler is consulted for host values the encoder's coercion layer
// does not recognize. It must return a Value (or a value the coercion
// layer can further reduce to one); if it returns an error, encoding
// fails with UNSUPPORTED_TYPE carrying that error's message (the error
// itself is not kept on the unwrap chain).
type DefaultHandler func(v interface{}) (Value, error)

// EncodeConfig controls EncodeToBytes/EncodeToStream. The zero value is
// the default configuration: insertion-order objects, binary32 narrowing
// enabled, terminator-delimited containers, Bytes emitted as a typed
// uint8 array, and UNSUPPORTED_TYPE on any value the coercion layer
// cannot place.
type EncodeConfig struct {
	// DefaultHandler is consulted for otherwise-unencodable values.
	DefaultHandler DefaultHandler
	// SortKeys writes object members in ascending key order instead of
	// insertion order.
	SortKeys bool
	// NoFloat32 suppresses binary32 narrowing; every finite float is
	// written as 'D'.
	NoFloat32 bool
	// ContainerCount emits count-prefixed ('#') containers with no
	// terminator, instead of terminator-delimited ones.
	ContainerCount bool
	// Uint8Bytes emits Bytes as a typed '$U#' array. This is the only
	// supported Bytes representation; the field exists so the zero value
	// documents the behavior rather than hiding it.
	Uint8Bytes bool
	// DisableHugeIntFallback rejects integers outside the signed 64-bit
	// range with INTEGER_OUT_OF_RANGE instead of falling back to the 'H'
	// marker.
	DisableHugeIntFallback bool
}

// WithDefaultHandler returns a copy of c with DefaultHandler set.
func (c EncodeConfig) WithDefaultHandler(h DefaultHandler) EncodeConfig {
	c.DefaultHandler = h
	return c
}

// WithSortKeys returns a copy of c with SortKeys set.
func (c EncodeConfig) WithSortKeys(v bool) EncodeConfig {
	c.SortKeys = v
	return c
}

// WithNoFloat32 returns a copy of c with NoFloat32 set.
func (c EncodeConfig) WithNoFloat32(v bool) EncodeConfig {
	c.NoFloat32 = v
	return c
}

// WithContainerCount returns a copy of c with ContainerCount set.
func (c EncodeConfig) WithContainerCount(v bool) EncodeConfig {
	c.ContainerCount = v
	return c
}

// ObjectHook is applied to each complete Object as it is produced; its
// result replaces the Object in the parent container (or becomes the
// decoded root). Mutually exclusive with ObjectPairsHook.
type ObjectHook func(o Object) (Value, error)

// ObjectPairsHook is applied to the ordered Member sequence of each
// completed object, before duplicate-key resolution. Mutually exclusive
// with ObjectHook.
type ObjectPairsHook func(pairs []Member) (Value, error)

const defaultMaxDepth = 256

// DecodeConfig controls DecodeFromBytes/DecodeFromStream. The zero value
// decodes exactly like the default configuration, since a zero MaxDepth
// means 256; NewDecodeConfig returns the defaults with MaxDepth set to
// 256 explicitly.
type DecodeConfig struct {
	ObjectHook      ObjectHook
	ObjectPairsHook ObjectPairsHook
	// InternObjectKeys deduplicates equal object keys to a single
	// canonical string per document (see intern.go).
	InternObjectKeys bool
	// NoBytes decodes '[$U#...]' as a sequence of Int rather than a
	// single Bytes allocation.
	NoBytes bool
	// MaxDepth rejects documents nested deeper than this. Zero means
	// "use NewDecodeConfig's default of 256"; to genuinely lift the
	// check, set a very large positive value.
	MaxDepth int
	// MaxContainerLen rejects count-prefixed containers whose declared
	// count exceeds this. Zero means unlimited.
	MaxContainerLen int64
}

// NewDecodeConfig returns the default DecodeConfig: no hooks, no key
// interning, Bytes fast path enabled, MaxDepth 256, MaxContainerLen
// unlimited.
func NewDecodeConfig() DecodeConfig {
	return DecodeConfig{MaxDepth: defaultMaxDepth}
}

func (c DecodeConfig) effectiveMaxDepth() int {
	if c.MaxDepth <= 0 {
		return defaultMaxDepth
	}
	return c.MaxDepth
}

// WithObjectHook returns a copy of c with ObjectHook set (and
// ObjectPairsHook cleared, since the two are mutually exclusive).
func (c DecodeConfig) WithObjectHook(h ObjectHook) DecodeConfig {
	c.ObjectHook = h
	c.ObjectPairsHook = nil
	return c
}

// WithObjectPairsHook returns a copy of c with ObjectPairsHook set (and
// ObjectHook cleared).
func (c DecodeConfig) WithObjectPairsHook(h ObjectPairsHook) DecodeConfig {
	c.ObjectPairsHook = h
	c.ObjectHook = nil
	return c
}

// WithInternObjectKeys returns a copy of c with InternObjectKeys set.
func (c DecodeConfig) WithInternObjectKeys(v bool) DecodeConfig {
	c.InternObjectKeys = v
	return c
}

// WithNoBytes returns a copy of c with NoBytes set.
func (c DecodeConfig) WithNoBytes(v bool) DecodeConfig {
	c.NoBytes = v
	return c
}

// WithMaxDepth returns a copy of c with MaxDepth set.
func (c DecodeConfig) WithMaxDepth(n int) DecodeConfig {
	c.MaxDepth = n
	return c
}

// WithMaxContainerLen returns a copy of c with MaxContainerLen set.
func (c DecodeConfig) WithMaxContainerLen(n int64) DecodeConfig {
	c.MaxContainerLen = n
	return c
}
