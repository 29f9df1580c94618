package layout

import (
	"fmt"

	"silica/internal/types"
)

// BitRange is a half-open absolute bit range [Start, End) within a value.
type BitRange struct {
	Start int
	End   int
}

func (r BitRange) Len() int {
	return r.End - r.Start
}

func (r BitRange) String() string {
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// Resolve walks path through kind, narrowing a running (range, kind) pair
// that starts at (0..kind.Bits(), kind), and returns the absolute bit range
// and kind of the addressed sub-value. Paths containing dynamic steps cannot
// be resolved; expand them with PathStar first.
func Resolve(kind types.Kind, path Path) (BitRange, types.Kind, error) {
	r := BitRange{Start: 0, End: kind.Bits()}
	k := kind
	for _, elem := range path.Elements {
		var err error
		r, k, err = step(r, k, elem)
		if err != nil {
			if pe, ok := err.(*PathError); ok && pe.Path == "" {
				pe.Path = path.String()
			}
			return BitRange{}, types.Kind{}, err
		}
	}
	return r, k, nil
}

// SubKind returns the kind a concrete path addresses within kind.
func SubKind(kind types.Kind, path Path) (types.Kind, error) {
	_, k, err := Resolve(kind, path)
	return k, err
}

func step(r BitRange, k types.Kind, elem PathElement) (BitRange, types.Kind, error) {
	switch elem.Tag {
	case ElemIndex:
		return stepIndex(r, k, elem.Index)
	case ElemField:
		if k.Tag != types.KindStruct {
			return r, k, &PathError{Kind: ErrInvalidOperation, Element: "." + elem.Name, OnKind: k.String()}
		}
		offset := 0
		for _, f := range k.Fields {
			if f.Name == elem.Name {
				size := f.Kind.Bits()
				return BitRange{Start: r.Start + offset, End: r.Start + offset + size}, f.Kind, nil
			}
			offset += f.Kind.Bits()
		}
		return r, k, &PathError{Kind: ErrFieldNotFound, Element: elem.Name, OnKind: k.String()}
	case ElemDiscriminant:
		if k.Tag != types.KindEnum {
			return r, k, &PathError{Kind: ErrInvalidOperation, Element: "#", OnKind: k.String()}
		}
		w := k.Disc.Width
		var dr BitRange
		if k.Disc.Alignment == types.AlignHighBits {
			dr = BitRange{Start: r.End - w, End: r.End}
		} else {
			dr = BitRange{Start: r.Start, End: r.Start + w}
		}
		return dr, k.DiscriminantKind(), nil
	case ElemPayload:
		if k.Tag != types.KindEnum {
			return r, k, &PathError{Kind: ErrInvalidOperation, Element: "#" + elem.Name, OnKind: k.String()}
		}
		v, ok := k.VariantByName(elem.Name)
		if !ok {
			return r, k, &PathError{Kind: ErrVariantNotFound, Element: elem.Name, OnKind: k.String()}
		}
		return payloadRange(r, k, v)
	case ElemPayloadByValue:
		if k.Tag != types.KindEnum {
			return r, k, &PathError{Kind: ErrInvalidOperation, Element: fmt.Sprintf("#(%d)", elem.Discr), OnKind: k.String()}
		}
		v, ok := k.VariantByDiscr(elem.Discr)
		if !ok {
			return r, k, &PathError{Kind: ErrVariantNotFound, Element: fmt.Sprintf("#(%d)", elem.Discr), OnKind: k.String()}
		}
		return payloadRange(r, k, v)
	case ElemDynamic:
		return r, k, &PathError{Kind: ErrUnresolvedDynamicIndex, Element: fmt.Sprintf("[[%s]]", elem.Slot)}
	}
	return r, k, &PathError{Kind: ErrInvalidOperation, Element: "?", OnKind: k.String()}
}

func stepIndex(r BitRange, k types.Kind, i int) (BitRange, types.Kind, error) {
	switch k.Tag {
	case types.KindArray:
		if i < 0 || i >= k.Len {
			return r, k, &PathError{Kind: ErrOutOfBounds, Element: fmt.Sprintf("[%d]", i), OnKind: k.String()}
		}
		w := k.Elem.Bits()
		return BitRange{Start: r.Start + i*w, End: r.Start + (i+1)*w}, *k.Elem, nil
	case types.KindTuple:
		if i < 0 || i >= len(k.Elems) {
			return r, k, &PathError{Kind: ErrOutOfBounds, Element: fmt.Sprintf("[%d]", i), OnKind: k.String()}
		}
		offset := 0
		for _, e := range k.Elems[:i] {
			offset += e.Bits()
		}
		size := k.Elems[i].Bits()
		return BitRange{Start: r.Start + offset, End: r.Start + offset + size}, k.Elems[i], nil
	case types.KindStruct:
		if i < 0 || i >= len(k.Fields) {
			return r, k, &PathError{Kind: ErrOutOfBounds, Element: fmt.Sprintf("[%d]", i), OnKind: k.String()}
		}
		offset := 0
		for _, f := range k.Fields[:i] {
			offset += f.Kind.Bits()
		}
		size := k.Fields[i].Kind.Bits()
		return BitRange{Start: r.Start + offset, End: r.Start + offset + size}, k.Fields[i].Kind, nil
	default:
		return r, k, &PathError{Kind: ErrInvalidOperation, Element: fmt.Sprintf("[%d]", i), OnKind: k.String()}
	}
}

func payloadRange(r BitRange, k types.Kind, v types.Variant) (BitRange, types.Kind, error) {
	w := k.Disc.Width
	size := v.Payload.Bits()
	var pr BitRange
	if k.Disc.Alignment == types.AlignHighBits {
		// discriminant occupies the high bits; payload sits below it
		pr = BitRange{Start: r.Start, End: r.Start + size}
	} else {
		pr = BitRange{Start: r.Start + w, End: r.Start + w + size}
	}
	return pr, v.Payload, nil
}
