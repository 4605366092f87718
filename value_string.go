package ubjson

import (
	"bytes"
	"fmt"
)

// String pretty-prints the value for debugging. Not used by the wire
// codec itself.
func (n Null) String() string     { return "Null()" }
func (n NoOp) String() string     { return "NoOp()" }
func (b Bool) String() string     { return fmt.Sprintf("Bool(%v)", bool(b)) }
func (i Int) String() string      { return fmt.Sprintf("Int(%v)", int64(i)) }
func (f Float) String() string    { return fmt.Sprintf("Float(%v)", float64(f)) }
func (h HighPrec) String() string { return fmt.Sprintf("HighPrec(%v)", string(h)) }
func (c Char) String() string     { return fmt.Sprintf("Char(%c)", rune(c)) }
func (s String) String() string   { return fmt.Sprintf("String(%v)", string(s)) }
func (b Bytes) String() string    { return fmt.Sprintf("Bytes(%d bytes)", len(b)) }

func (h HugeInt) String() string {
	if h.Int == nil {
		return "HugeInt(nil)"
	}
	return fmt.Sprintf("HugeInt(%v)", h.Int.String())
}

func (a Array) String() string {
	wr := bytes.NewBuffer(nil)
	fmt.Fprint(wr, "Array([")
	for i, v := range a {
		fmt.Fprint(wr, printValue(v))
		if i != len(a)-1 {
			fmt.Fprint(wr, " ")
		}
	}
	fmt.Fprint(wr, "])")
	return wr.String()
}

func (o Object) String() string {
	wr := bytes.NewBuffer(nil)
	fmt.Fprint(wr, "Object[")
	for i, m := range o {
		fmt.Fprintf(wr, "%v: %v", m.Key, printValue(m.Val))
		if i != len(o)-1 {
			fmt.Fprint(wr, " ")
		}
	}
	fmt.Fprint(wr, "]")
	return wr.String()
}

// printValue renders any Value, including one whose concrete type is not
// one of this package's own (e.g. a raw host value that reached here
// before coercion). Unrecognized values fall back to fmt's default.
func printValue(v Value) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}
