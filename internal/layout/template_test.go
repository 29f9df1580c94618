package layout

import (
	"errors"
	"testing"

	"silica/internal/types"
)

func TestEnumTemplate(t *testing.T) {
	tests := []struct {
		name    string
		kind    types.Kind
		variant string
		want    func(types.Kind) types.TypedBits
	}{
		{
			"zero discriminant is the zero value",
			signalEnum(types.AlignLowBits), "Idle",
			func(k types.Kind) types.TypedBits { return types.Zero(k) },
		},
		{
			"low-aligned discriminant lands in the low bits",
			signalEnum(types.AlignLowBits), "Data",
			func(k types.Kind) types.TypedBits {
				tb := types.Zero(k)
				tb.Bits[0] = true
				return tb
			},
		},
		{
			"high-aligned discriminant lands in the high bits",
			signalEnum(types.AlignHighBits), "Addr",
			func(k types.Kind) types.TypedBits {
				tb := types.Zero(k)
				tb.Bits[9] = true
				return tb
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EnumTemplate(tt.kind, tt.variant)
			if err != nil {
				t.Fatalf("EnumTemplate(%s, %s): %v", tt.kind, tt.variant, err)
			}
			want := tt.want(tt.kind)
			if !got.Equal(want) {
				t.Fatalf("template = %s, want %s", got, want)
			}
		})
	}
}

func TestEnumTemplateErrors(t *testing.T) {
	tests := []struct {
		name    string
		kind    types.Kind
		variant string
		want    PathErrKind
	}{
		{"non-enum kind", types.MakeBits(8), "Data", ErrInvalidOperation},
		{"missing variant", signalEnum(types.AlignLowBits), "Halt", ErrVariantNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EnumTemplate(tt.kind, tt.variant)
			if err == nil {
				t.Fatalf("EnumTemplate(%s, %s) succeeded", tt.kind, tt.variant)
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
