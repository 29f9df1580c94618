package layout

import (
	"silica/internal/types"
)

// PathStar expands every dynamic step in path into the full set of concrete
// index values it may take, producing the cartesian product across all
// dynamic positions. Expansion is ordered: indices ascend, outer dynamic
// steps vary slowest, so the same input always yields the same output order.
// Every returned path is fully concrete and has the same number of steps as
// the input.
func PathStar(kind types.Kind, path Path) ([]Path, error) {
	if !path.AnyDynamic() {
		return []Path{path}, nil
	}
	head := path.Elements[0]
	if head.Tag == ElemDynamic {
		if kind.Tag != types.KindArray {
			return nil, &PathError{
				Kind:    ErrInvalidOperation,
				Path:    path.String(),
				Element: head.Slot.String(),
				OnKind:  kind.String(),
				Ctx:     "dynamic index needs an array",
			}
		}
		var out []Path
		for i := 0; i < kind.Len; i++ {
			concrete := append([]PathElement(nil), path.Elements...)
			concrete[0] = PathElement{Tag: ElemIndex, Index: i}
			expanded, err := PathStar(kind, Path{Elements: concrete})
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
		}
		return out, nil
	}

	prefix := Path{Elements: []PathElement{head}}
	prefixKind, err := SubKind(kind, prefix)
	if err != nil {
		return nil, err
	}
	suffix, err := path.StripPrefix(prefix)
	if err != nil {
		return nil, err
	}
	suffixStar, err := PathStar(prefixKind, suffix)
	if err != nil {
		return nil, err
	}
	out := make([]Path, 0, len(suffixStar))
	for _, s := range suffixStar {
		out = append(out, prefix.Join(s))
	}
	return out, nil
}
