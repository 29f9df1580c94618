package infer

import (
	"fmt"

	"silica/internal/ast"
)

// apply substitutes solved variables into t, recursively. Chains of
// variable-to-variable bindings are followed to their end.
func (cx *context) apply(t Ty) Ty {
	switch t := t.(type) {
	case Var:
		if bound, ok := cx.subst[t.ID]; ok {
			return cx.apply(bound)
		}
		return t
	case Const:
		return t
	case Ref:
		return Ref{Elem: cx.apply(t.Elem)}
	case Tuple:
		elems := make([]Ty, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = cx.apply(e)
		}
		return Tuple{Elems: elems}
	case Array:
		return Array{Elem: cx.apply(t.Elem), Len: t.Len}
	case Struct:
		fields := make([]Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = Field{Name: f.Name, Ty: cx.apply(f.Ty)}
		}
		return Struct{Name: t.Name, Fields: fields}
	case Enum:
		variants := make([]Variant, len(t.Variants))
		for i, v := range t.Variants {
			variants[i] = Variant{Name: v.Name, Discr: v.Discr, Payload: cx.apply(v.Payload)}
		}
		return Enum{Name: t.Name, Variants: variants, Disc: t.Disc}
	default:
		return t
	}
}

func occursIn(id TypeID, t Ty) bool {
	switch t := t.(type) {
	case Var:
		return t.ID == id
	case Ref:
		return occursIn(id, t.Elem)
	case Tuple:
		for _, e := range t.Elems {
			if occursIn(id, e) {
				return true
			}
		}
	case Array:
		return occursIn(id, t.Elem)
	case Struct:
		for _, f := range t.Fields {
			if occursIn(id, f.Ty) {
				return true
			}
		}
	case Enum:
		for _, v := range t.Variants {
			if occursIn(id, v.Payload) {
				return true
			}
		}
	}
	return false
}

func (cx *context) bind(v Var, t Ty, node ast.NodeID) error {
	if tv, ok := t.(Var); ok && tv.ID == v.ID {
		return nil
	}
	if occursIn(v.ID, t) {
		return &TypeError{Kind: ErrOccursCheck, Node: node, Left: v, Right: t}
	}
	cx.subst[v.ID] = t
	return nil
}

// unify makes x and y equal under the substitution, binding variables
// as needed. Both sides are fully applied first, so structural cases
// only see resolved heads.
func (cx *context) unify(x, y Ty, node ast.NodeID) error {
	x = cx.apply(x)
	y = cx.apply(y)
	if tyEqual(x, y) {
		return nil
	}
	if xv, ok := x.(Var); ok {
		return cx.bind(xv, y, node)
	}
	if yv, ok := y.(Var); ok {
		return cx.bind(yv, x, node)
	}
	switch x := x.(type) {
	case Ref:
		if y, ok := y.(Ref); ok {
			return cx.unify(x.Elem, y.Elem, node)
		}
	case Tuple:
		if y, ok := y.(Tuple); ok && len(x.Elems) == len(y.Elems) {
			for i := range x.Elems {
				if err := cx.unify(x.Elems[i], y.Elems[i], node); err != nil {
					return err
				}
			}
			return nil
		}
	case Array:
		if y, ok := y.(Array); ok && x.Len == y.Len {
			return cx.unify(x.Elem, y.Elem, node)
		}
	case Struct:
		if y, ok := y.(Struct); ok && x.Name == y.Name && len(x.Fields) == len(y.Fields) {
			for i := range x.Fields {
				if x.Fields[i].Name != y.Fields[i].Name {
					return &TypeError{Kind: ErrMismatch, Node: node, Left: x, Right: y}
				}
				if err := cx.unify(x.Fields[i].Ty, y.Fields[i].Ty, node); err != nil {
					return err
				}
			}
			return nil
		}
	case Enum:
		if y, ok := y.(Enum); ok && x.Name == y.Name && len(x.Variants) == len(y.Variants) && x.Disc == y.Disc {
			for i := range x.Variants {
				if x.Variants[i].Name != y.Variants[i].Name || x.Variants[i].Discr != y.Variants[i].Discr {
					return &TypeError{Kind: ErrMismatch, Node: node, Left: x, Right: y}
				}
				if err := cx.unify(x.Variants[i].Payload, y.Variants[i].Payload, node); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return &TypeError{Kind: ErrMismatch, Node: node, Left: x, Right: y}
}

// discharge resolves deferred projection constraints whose container
// has become concrete, feeding the results back into unification, and
// repeats until nothing moves.
func (cx *context) discharge() error {
	for {
		progressed := false
		var remaining []projection
		for _, p := range cx.projs {
			container := cx.apply(p.container)
			if r, ok := container.(Ref); ok {
				container = r.Elem
			}
			if _, ok := container.(Var); ok {
				remaining = append(remaining, p)
				continue
			}
			projected, err := projectTy(container, p)
			if err != nil {
				return err
			}
			if err := cx.unify(p.result, projected, p.node); err != nil {
				return err
			}
			progressed = true
		}
		cx.projs = remaining
		if !progressed {
			return nil
		}
	}
}

// projectTy extracts the constraint's component from a concrete
// container.
func projectTy(container Ty, p projection) (Ty, error) {
	if r, ok := container.(Ref); ok {
		container = r.Elem
	}
	switch p.op {
	case projField:
		s, ok := container.(Struct)
		if !ok {
			return nil, &TypeError{Kind: ErrBadProjection, Node: p.node, Left: container, Name: "." + p.name}
		}
		for _, f := range s.Fields {
			if f.Name == p.name {
				return f.Ty, nil
			}
		}
		return nil, &TypeError{Kind: ErrBadProjection, Node: p.node, Left: container, Name: "." + p.name}
	case projIndex:
		switch c := container.(type) {
		case Array:
			if p.index < 0 || p.index >= c.Len {
				return nil, &TypeError{Kind: ErrBadProjection, Node: p.node, Left: container, Name: fmt.Sprintf("[%d]", p.index)}
			}
			return c.Elem, nil
		case Tuple:
			if p.index < 0 || p.index >= len(c.Elems) {
				return nil, &TypeError{Kind: ErrBadProjection, Node: p.node, Left: container, Name: fmt.Sprintf("[%d]", p.index)}
			}
			return c.Elems[p.index], nil
		case Struct:
			if p.index < 0 || p.index >= len(c.Fields) {
				return nil, &TypeError{Kind: ErrBadProjection, Node: p.node, Left: container, Name: fmt.Sprintf("[%d]", p.index)}
			}
			return c.Fields[p.index].Ty, nil
		default:
			return nil, &TypeError{Kind: ErrBadProjection, Node: p.node, Left: container, Name: fmt.Sprintf("[%d]", p.index)}
		}
	case projElem:
		c, ok := container.(Array)
		if !ok {
			return nil, &TypeError{Kind: ErrBadProjection, Node: p.node, Left: container, Name: "dynamic index"}
		}
		return c.Elem, nil
	case projPayload:
		e, ok := container.(Enum)
		if !ok {
			return nil, &TypeError{Kind: ErrBadProjection, Node: p.node, Left: container, Name: "#" + p.name}
		}
		for _, v := range e.Variants {
			if v.Name == p.name {
				return v.Payload, nil
			}
		}
		return nil, &TypeError{Kind: ErrBadProjection, Node: p.node, Left: container, Name: "#" + p.name}
	default:
		return nil, fmt.Errorf("infer: unknown projection op %d", p.op)
	}
}
