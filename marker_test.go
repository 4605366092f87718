package ubjson

import (
	"math"
	"testing"
)

func TestClassifyInt(t *testing.T) {
	tests := []struct {
		v    int64
		want Marker
	}{
		{0, MarkerInt8},
		{127, MarkerInt8},
		{-128, MarkerInt8},
		{128, MarkerUint8},
		{255, MarkerUint8},
		{256, MarkerInt16},
		{-129, MarkerInt16},
		{32767, MarkerInt16},
		{32768, MarkerInt32},
		{-32769, MarkerInt32},
		{1 << 31, MarkerInt64},
		{-(1 << 31) - 1, MarkerInt64},
	}
	for _, tt := range tests {
		if got := classifyInt(tt.v); got != tt.want {
			t.Errorf("classifyInt(%d) = %q, want %q", tt.v, byte(got), byte(tt.want))
		}
	}
}

func TestClassifyFloatNarrowing(t *testing.T) {
	m, nonFinite := classifyFloat(1.5, false)
	if nonFinite || m != MarkerFloat32 {
		t.Errorf("1.5 should narrow to float32, got marker=%q nonFinite=%v", byte(m), nonFinite)
	}

	m, nonFinite = classifyFloat(1.5, true)
	if nonFinite || m != MarkerFloat64 {
		t.Errorf("no_float32 should force float64, got marker=%q nonFinite=%v", byte(m), nonFinite)
	}

	// 0.1 cannot round-trip through float32 without losing bits.
	m, nonFinite = classifyFloat(0.1, false)
	if nonFinite || m != MarkerFloat64 {
		t.Errorf("0.1 should not narrow to float32, got marker=%q nonFinite=%v", byte(m), nonFinite)
	}
}

func TestClassifyFloatNonFinite(t *testing.T) {
	for _, f := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		_, nonFinite := classifyFloat(f, false)
		if !nonFinite {
			t.Errorf("classifyFloat(%v) should report non-finite", f)
		}
	}
}
