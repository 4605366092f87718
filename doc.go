/*
Package ubjson implements Universal Binary JSON, Draft 12.

	 Basic Types:
	 The following basic types are terminals in the grammar below. Multi-byte
	 numeric payloads are big-endian.

	 marker   1 byte  (ASCII type tag)
	 int8     1 byte  (signed)
	 uint8    1 byte  (unsigned)
	 int16    2 bytes (signed, big-endian)
	 int32    4 bytes (signed, big-endian)
	 int64    8 bytes (signed, big-endian)
	 float32  4 bytes (IEEE 754 binary32, big-endian)
	 float64  8 bytes (IEEE 754 binary64, big-endian)

	 Grammar:
	 value      ::= "Z" | "N" | "T" | "F"
	              | "i" int8 | "U" uint8 | "I" int16 | "l" int32 | "L" int64
	              | "d" float32 | "D" float64 | "H" length bytes
	              | "C" byte | "S" length bytes
	              | array | object
	 length     ::= value                       any integer-marker value
	 array      ::= "[" value* "]"
	              | "[" "#" length value*        counted, no terminator
	              | "[" header value*            typed, counted, no terminator
	 object     ::= "{" member* "}"
	              | "{" "#" length member*        counted, no terminator
	              | "{" header member*            typed, counted, no terminator
	 member     ::= length bytes value           key (bare length-prefixed
	                                              string, no "S" marker) then
	                                              value
	 header     ::= "$" marker "#" length        every element/member value is
	                                              of the declared marker type and
	                                              is written without its own
	                                              marker

	 Examples:
	 {"hello":"world"}
	 "{i\x05hello" "Si\x05world" "}"  (spacing added for readability)

	 null, true and false decode and round-trip through this package's Value
	 tree. Non-finite floats (NaN, +/-Inf) are encoded as null ("Z") and
	 decode back as Null. See Value in value.go for the full type list (Null,
	 NoOp, Bool, Int, HugeInt, Float, HighPrec, Char, String, Bytes, Array,
	 Object).

	 Encoding Coercions:
	 EncodeToBytes/EncodeToStream accept any Go value, not just this package's
	 own Value types. Recognized inputs (types not listed fall back to
	 EncodeConfig.DefaultHandler, or UNSUPPORTED_TYPE if none is set):
		nil                  -> Null
		bool                 -> Bool
		int, int8..int64      -> Int
		uint, uint8..uint64   -> Int, or HugeInt if it overflows int64
		float32, float64      -> Float
		string                -> String
		[]byte                -> Bytes
		*big.Int              -> HugeInt
		slice/array of byte   -> Bytes
		other slice/array     -> Array
		map[string]T           -> Object (iteration order not guaranteed;
		                                   use Object/Array directly, or
		                                   EncodeConfig.SortKeys, when wire
		                                   order matters)
		struct                -> Object, honoring `ubjson:"name,omitempty"`
		                          tags the same way encoding/json does

	 Bytes is always encoded as the single supported strongly-typed
	 container, a counted uint8 array ("[$U#" length bytes); this package does
	 not emit any other typed-array shape.

	 Struct Tags:
		Field int `ubjson:"-"`                 // Skipped entirely.
		Field int `ubjson:"myName"`            // Encoded with key "myName".
		Field int `ubjson:"myName,omitempty"`  // Key "myName"; skip if empty.
		Field int `ubjson:",omitempty"`        // Skip if empty (note the comma).

	 Reach:
		Deeply nested lookups have the same boilerplate here that they do
		after unmarshaling any tree-shaped format. Reach walks a dot-separated
		path through a decoded Value without a type assertion at every level:

		root, _, err := DecodeFromBytes(wire, NewDecodeConfig())
		if err != nil {
			return err
		}
		if v, ok := Reach(root, "foo", "bar"); ok {
			fmt.Println(v)
		}
*/
package ubjson
