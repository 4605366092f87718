package ubjson

import "testing"

func TestObjectGet(t *testing.T) {
	o := Object{
		{Key: "a", Val: Int(1)},
		{Key: "b", Val: String("two")},
	}
	if v, ok := o.Get("b"); !ok || v != String("two") {
		t.Fatalf("Get(b) = %v, %v; want String(two), true", v, ok)
	}
	if _, ok := o.Get("missing"); ok {
		t.Fatalf("Get(missing) should report ok=false")
	}
}

func TestReach(t *testing.T) {
	doc := Object{
		{Key: "foo", Val: Object{
			{Key: "bar", Val: Bool(true)},
			{Key: "list", Val: Array{Int(1), Int(2), Int(3)}},
		}},
	}

	if v, ok := Reach(doc, "foo", "bar"); !ok || v != Bool(true) {
		t.Fatalf("Reach(foo,bar) = %v, %v; want Bool(true), true", v, ok)
	}
	if v, ok := Reach(doc, "foo", "list", "1"); !ok || v != Int(2) {
		t.Fatalf("Reach(foo,list,1) = %v, %v; want Int(2), true", v, ok)
	}
	if _, ok := Reach(doc, "foo", "missing"); ok {
		t.Fatalf("Reach(foo,missing) should report ok=false")
	}
	if _, ok := Reach(doc, "foo", "list", "99"); ok {
		t.Fatalf("Reach with out-of-range index should report ok=false")
	}
	if _, ok := Reach(doc, "foo", "bar", "deeper"); ok {
		t.Fatalf("Reach through a scalar should report ok=false")
	}
}
