package layout

import "silica/internal/types"

// EnumTemplate returns the zero value of an enum kind with the named
// variant's discriminant stamped into the tag bits. Lowering emits one
// template literal per constructed variant; packing overlays the payload
// bits on top of it.
func EnumTemplate(kind types.Kind, variant string) (types.TypedBits, error) {
	if kind.Tag != types.KindEnum {
		return types.TypedBits{}, &PathError{Kind: ErrInvalidOperation, Element: "#" + variant, OnKind: kind.String()}
	}
	v, ok := kind.VariantByName(variant)
	if !ok {
		return types.TypedBits{}, &PathError{Kind: ErrVariantNotFound, Element: variant, OnKind: kind.String()}
	}
	r, discKind, err := Resolve(kind, Path{}.Disc())
	if err != nil {
		return types.TypedBits{}, err
	}
	disc, err := types.FromInt(discKind, v.Discr)
	if err != nil {
		return types.TypedBits{}, err
	}
	out := types.Zero(kind)
	copy(out.Bits[r.Start:r.End], disc.Bits)
	return out, nil
}
