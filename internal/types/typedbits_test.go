package types

import (
	"strings"
	"testing"
)

func mustUint(t *testing.T, kind Kind, v uint64) TypedBits {
	t.Helper()
	tb, err := FromUint(kind, v)
	if err != nil {
		t.Fatalf("FromUint(%s, %d): %v", kind, v, err)
	}
	return tb
}

func mustInt(t *testing.T, kind Kind, v int64) TypedBits {
	t.Helper()
	tb, err := FromInt(kind, v)
	if err != nil {
		t.Fatalf("FromInt(%s, %d): %v", kind, v, err)
	}
	return tb
}

func TestFromUintRange(t *testing.T) {
	if _, err := FromUint(MakeBits(8), 255); err != nil {
		t.Fatalf("255 should fit b8: %v", err)
	}
	if _, err := FromUint(MakeBits(8), 256); err == nil {
		t.Fatalf("256 must not fit b8")
	}
	if _, err := FromUint(MakeSigned(8), 127); err != nil {
		t.Fatalf("127 should fit s8: %v", err)
	}
	if _, err := FromUint(MakeSigned(8), 128); err == nil {
		t.Fatalf("128 must not fit s8")
	}
	if _, err := FromInt(MakeSigned(8), -128); err != nil {
		t.Fatalf("-128 should fit s8: %v", err)
	}
	if _, err := FromInt(MakeSigned(8), -129); err == nil {
		t.Fatalf("-129 must not fit s8")
	}
	if _, err := FromInt(MakeBits(8), -1); err == nil {
		t.Fatalf("-1 must not fit b8")
	}
}

func TestRoundTrips(t *testing.T) {
	tests := []int64{0, 1, -1, 42, -42, 127, -128}
	for _, v := range tests {
		tb := mustInt(t, MakeSigned(8), v)
		got, err := tb.Int64()
		if err != nil {
			t.Fatalf("Int64(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("round trip %d = %d", v, got)
		}
	}
	tb := mustUint(t, MakeBits(128), 0xdeadbeef)
	got, err := tb.Uint64()
	if err != nil {
		t.Fatalf("Uint64: %v", err)
	}
	if got != 0xdeadbeef {
		t.Fatalf("wide round trip = %#x", got)
	}
}

func TestArithmetic(t *testing.T) {
	b8 := MakeBits(8)
	tests := []struct {
		name string
		op   func(a, b TypedBits) (TypedBits, error)
		a, b uint64
		want uint64
	}{
		{"add", TypedBits.Add, 200, 100, 44}, // wraps mod 256
		{"sub", TypedBits.Sub, 5, 10, 251},
		{"mul", TypedBits.Mul, 20, 13, 4}, // 260 mod 256
		{"and", TypedBits.And, 0xf0, 0x3c, 0x30},
		{"or", TypedBits.Or, 0xf0, 0x0c, 0xfc},
		{"xor", TypedBits.Xor, 0xff, 0x0f, 0xf0},
		{"shl", TypedBits.Shl, 0x01, 3, 0x08},
		{"shr", TypedBits.Shr, 0x80, 3, 0x10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.op(mustUint(t, b8, tt.a), mustUint(t, b8, tt.b))
			if err != nil {
				t.Fatalf("%s: %v", tt.name, err)
			}
			v, err := got.Uint64()
			if err != nil {
				t.Fatalf("Uint64: %v", err)
			}
			if v != tt.want {
				t.Fatalf("%s(%#x, %#x) = %#x, want %#x", tt.name, tt.a, tt.b, v, tt.want)
			}
		})
	}
}

func TestSignedShiftAndNeg(t *testing.T) {
	s8 := MakeSigned(8)
	v := mustInt(t, s8, -64)
	shifted, err := v.Shr(mustUint(t, MakeBits(3), 2))
	if err != nil {
		t.Fatalf("Shr: %v", err)
	}
	got, _ := shifted.Int64()
	if got != -16 {
		t.Fatalf("-64 >> 2 = %d, want -16", got)
	}

	n, err := mustInt(t, s8, 42).Neg()
	if err != nil {
		t.Fatalf("Neg: %v", err)
	}
	got, _ = n.Int64()
	if got != -42 {
		t.Fatalf("Neg(42) = %d", got)
	}
}

func TestComparisons(t *testing.T) {
	b8 := MakeBits(8)
	s8 := MakeSigned(8)

	lt, err := mustUint(t, b8, 3).CmpLt(mustUint(t, b8, 200))
	if err != nil || !lt.AnySet() {
		t.Fatalf("3 < 200 unsigned: %v %v", lt, err)
	}
	// -1 sign-compares below 1 even though its bit pattern is larger
	lt, err = mustInt(t, s8, -1).CmpLt(mustInt(t, s8, 1))
	if err != nil || !lt.AnySet() {
		t.Fatalf("-1 < 1 signed: %v %v", lt, err)
	}
	eq, err := mustUint(t, b8, 7).CmpEq(mustUint(t, b8, 7))
	if err != nil || !eq.AnySet() {
		t.Fatalf("7 == 7: %v %v", eq, err)
	}
	le, err := mustUint(t, b8, 7).CmpLe(mustUint(t, b8, 7))
	if err != nil || !le.AnySet() {
		t.Fatalf("7 <= 7: %v %v", le, err)
	}
	if _, err = mustUint(t, b8, 1).CmpEq(mustUint(t, MakeBits(4), 1)); err == nil {
		t.Fatalf("width mismatch must fail")
	}
}

func TestReductions(t *testing.T) {
	b4 := MakeBits(4)
	all, _ := mustUint(t, b4, 0xf).ReduceAll()
	if !all.AnySet() {
		t.Fatalf("ReduceAll(0xf) false")
	}
	all, _ = mustUint(t, b4, 0xe).ReduceAll()
	if all.AnySet() {
		t.Fatalf("ReduceAll(0xe) true")
	}
	any, _ := mustUint(t, b4, 0x2).ReduceAny()
	if !any.AnySet() {
		t.Fatalf("ReduceAny(0x2) false")
	}
	parity, _ := mustUint(t, b4, 0x7).ReduceXor()
	if !parity.AnySet() {
		t.Fatalf("ReduceXor(0x7) even")
	}
}

func TestCasts(t *testing.T) {
	b8 := MakeBits(8)

	widened, err := mustUint(t, b8, 42).AsBits(12)
	if err != nil {
		t.Fatalf("AsBits(12): %v", err)
	}
	if v, _ := widened.Uint64(); v != 42 || !widened.Kind.Equal(MakeBits(12)) {
		t.Fatalf("AsBits(12) = %s", widened)
	}

	if _, err = mustUint(t, b8, 200).AsBits(4); err == nil {
		t.Fatalf("lossy AsBits must fail")
	}
	narrowed, err := mustUint(t, b8, 9).AsBits(4)
	if err != nil {
		t.Fatalf("AsBits(4) of 9: %v", err)
	}
	if v, _ := narrowed.Uint64(); v != 9 {
		t.Fatalf("AsBits(4) = %d", v)
	}

	neg, err := mustInt(t, MakeSigned(8), -3).AsSigned(12)
	if err != nil {
		t.Fatalf("AsSigned(12): %v", err)
	}
	if v, _ := neg.Int64(); v != -3 {
		t.Fatalf("AsSigned widen = %d", v)
	}
	if _, err = mustUint(t, b8, 200).AsSigned(8); err == nil {
		t.Fatalf("reinterpreting 200 as s8 must fail")
	}
	if _, err = mustInt(t, MakeSigned(8), 100).AsSigned(4); err == nil {
		t.Fatalf("lossy AsSigned must fail")
	}
}

func TestExtractSplice(t *testing.T) {
	pair := MakeTuple(MakeBits(8), MakeBits(8))
	v := Zero(pair)
	hi := mustUint(t, MakeBits(8), 0xab)

	spliced, err := v.Splice(8, 16, hi)
	if err != nil {
		t.Fatalf("Splice: %v", err)
	}
	back, err := spliced.Extract(8, 16, MakeBits(8))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !back.Equal(hi) {
		t.Fatalf("Extract = %s, want %s", back, hi)
	}
	low, err := spliced.Extract(0, 8, MakeBits(8))
	if err != nil {
		t.Fatalf("Extract low: %v", err)
	}
	if low.AnySet() {
		t.Fatalf("low half disturbed: %s", low)
	}
	if _, err = v.Extract(10, 20, MakeBits(10)); err == nil {
		t.Fatalf("out-of-bounds Extract must fail")
	}
}

func TestRendering(t *testing.T) {
	tb := mustUint(t, MakeBits(8), 0x2a)
	if got := tb.String(); got != "b8(0x2a)" {
		t.Fatalf("String() = %q", got)
	}
	if got := tb.BinaryString(); got != "00101010" {
		t.Fatalf("BinaryString() = %q", got)
	}
	if got := Zero(MakeEmpty()).String(); got != "()" {
		t.Fatalf("empty String() = %q", got)
	}
	if !strings.HasPrefix(mustUint(t, MakeBits(7), 1).String(), "b7(0x") {
		t.Fatalf("odd width renders hex: %s", mustUint(t, MakeBits(7), 1))
	}
}
