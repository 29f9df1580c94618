package layout

import (
	"errors"
	"testing"

	"silica/internal/types"
)

func baseStruct() types.Kind {
	return types.MakeStruct("base",
		types.Field{Name: "a", Kind: types.MakeBits(8)},
		types.Field{Name: "b", Kind: types.MakeArray(types.MakeBits(8), 3)},
	)
}

func outerStruct() types.Kind {
	return types.MakeStruct("foo",
		types.Field{Name: "c", Kind: baseStruct()},
		types.Field{Name: "d", Kind: types.MakeArray(baseStruct(), 4)},
	)
}

func signalEnum(align types.DiscriminantAlignment) types.Kind {
	return types.MakeEnum("Signal", []types.Variant{
		{Name: "Idle", Discr: 0, Payload: types.MakeEmpty()},
		{Name: "Data", Discr: 1, Payload: types.MakeBits(8)},
		{Name: "Addr", Discr: 2, Payload: types.MakeTuple(types.MakeBits(4), types.MakeBits(4))},
	}, types.DiscriminantLayout{Width: 2, Alignment: align, Type: types.DiscUnsigned})
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		kind      types.Kind
		path      Path
		wantRange BitRange
		wantKind  types.Kind
	}{
		{
			"empty path is the whole value",
			types.MakeBits(8), Path{},
			BitRange{0, 8}, types.MakeBits(8),
		},
		{
			"array element inside struct",
			baseStruct(), Path{}.Fld("b").Idx(1),
			BitRange{16, 24}, types.MakeBits(8),
		},
		{
			"field offset is the sum of preceding widths",
			baseStruct(), Path{}.Fld("b"),
			BitRange{8, 32}, types.MakeArray(types.MakeBits(8), 3),
		},
		{
			"positional index on struct",
			baseStruct(), Path{}.Idx(1),
			BitRange{8, 32}, types.MakeArray(types.MakeBits(8), 3),
		},
		{
			"tuple position",
			types.MakeTuple(types.MakeBits(8), types.MakeBits(4)), Path{}.Idx(1),
			BitRange{8, 12}, types.MakeBits(4),
		},
		{
			"nested struct through array",
			outerStruct(), Path{}.Fld("d").Idx(2).Fld("b").Idx(1),
			// c: 0..32, d starts at 32; element 2 starts at 32+64=96;
			// b within it starts at +8, element 1 at +8
			BitRange{112, 120}, types.MakeBits(8),
		},
		{
			"discriminant low bits",
			signalEnum(types.AlignLowBits), Path{}.Disc(),
			BitRange{0, 2}, types.MakeBits(2),
		},
		{
			"discriminant high bits",
			signalEnum(types.AlignHighBits), Path{}.Disc(),
			BitRange{8, 10}, types.MakeBits(2),
		},
		{
			"payload by name under low discriminant",
			signalEnum(types.AlignLowBits), Path{}.Payload("Data"),
			BitRange{2, 10}, types.MakeBits(8),
		},
		{
			"payload by name under high discriminant",
			signalEnum(types.AlignHighBits), Path{}.Payload("Data"),
			BitRange{0, 8}, types.MakeBits(8),
		},
		{
			"payload by discriminant value",
			signalEnum(types.AlignLowBits), Path{}.PayloadByValue(2),
			BitRange{2, 10}, types.MakeTuple(types.MakeBits(4), types.MakeBits(4)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, k, err := Resolve(tt.kind, tt.path)
			if err != nil {
				t.Fatalf("Resolve(%s, %s): %v", tt.kind, tt.path, err)
			}
			if r != tt.wantRange {
				t.Fatalf("range = %s, want %s", r, tt.wantRange)
			}
			if !k.Equal(tt.wantKind) {
				t.Fatalf("kind = %s, want %s", k, tt.wantKind)
			}
			// derived invariants: the range covers exactly the resolved
			// kind and stays inside the root
			if r.Len() != k.Bits() {
				t.Fatalf("range %s does not cover %s (%d bits)", r, k, k.Bits())
			}
			if r.Start < 0 || r.End > tt.kind.Bits() {
				t.Fatalf("range %s escapes 0..%d", r, tt.kind.Bits())
			}
		})
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		kind types.Kind
		path Path
		want PathErrKind
	}{
		{"array index out of bounds", baseStruct(), Path{}.Fld("b").Idx(3), ErrOutOfBounds},
		{"struct index out of bounds", baseStruct(), Path{}.Idx(2), ErrOutOfBounds},
		{"tuple index out of bounds", types.MakeTuple(types.MakeBits(1)), Path{}.Idx(1), ErrOutOfBounds},
		{"missing field", baseStruct(), Path{}.Fld("z"), ErrFieldNotFound},
		{"field on bits", types.MakeBits(8), Path{}.Fld("a"), ErrInvalidOperation},
		{"index on bits", types.MakeBits(8), Path{}.Idx(0), ErrInvalidOperation},
		{"discriminant on struct", baseStruct(), Path{}.Disc(), ErrInvalidOperation},
		{"payload on bits", types.MakeBits(8), Path{}.Payload("Data"), ErrInvalidOperation},
		{"missing variant", signalEnum(types.AlignLowBits), Path{}.Payload("Halt"), ErrVariantNotFound},
		{"missing discriminant value", signalEnum(types.AlignLowBits), Path{}.PayloadByValue(9), ErrVariantNotFound},
		{"dynamic index unresolved", baseStruct(), Path{}.Fld("b").Dyn(Reg(0)), ErrUnresolvedDynamicIndex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Resolve(tt.kind, tt.path)
			if err == nil {
				t.Fatalf("Resolve(%s, %s) succeeded", tt.kind, tt.path)
			}
			var pe *PathError
			if !errors.As(err, &pe) {
				t.Fatalf("error is %T, want *PathError", err)
			}
			if pe.Kind != tt.want {
				t.Fatalf("error kind = %s, want %s", pe.Kind, tt.want)
			}
		})
	}
}

func TestSubKind(t *testing.T) {
	k, err := SubKind(outerStruct(), Path{}.Fld("d").Idx(0))
	if err != nil {
		t.Fatalf("SubKind: %v", err)
	}
	if !k.Equal(baseStruct()) {
		t.Fatalf("SubKind = %s", k)
	}
}
