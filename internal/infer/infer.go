package infer

import (
	"errors"
	"fmt"

	"silica/internal/ast"
	"silica/internal/types"
)

// Infer computes a concrete Kind for every node of k. It fails with a
// TypeError when constraints conflict, when a projection lands on a
// type that cannot supply it, or when any node is left unresolved.
func Infer(k *ast.Kernel) (map[ast.NodeID]types.Kind, error) {
	cx := newContext()
	if err := cx.kernel(k); err != nil {
		return nil, err
	}
	for _, eq := range cx.eqs {
		if err := cx.unify(eq.left, eq.right, eq.node); err != nil {
			return nil, err
		}
	}
	if err := cx.discharge(); err != nil {
		return nil, err
	}
	if len(cx.projs) > 0 {
		p := cx.projs[0]
		return nil, &TypeError{Kind: ErrUnresolved, Node: p.node, Left: cx.apply(p.container)}
	}
	return cx.resolveAll(k)
}

type equation struct {
	left  Ty
	right Ty
	node  ast.NodeID
}

type projOp uint8

const (
	projField projOp = iota + 1
	projIndex
	projElem
	projPayload
)

// projection defers a component access until its container resolves to
// a concrete composite.
type projection struct {
	container Ty
	op        projOp
	name      string
	index     int
	result    Ty
	node      ast.NodeID
}

type scope struct {
	parent *scope
	names  map[string]Ty
}

func (s *scope) lookup(name string) (Ty, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.names[name]; ok {
			return t, true
		}
	}
	return nil, false
}

type context struct {
	nextVar TypeID
	eqs     []equation
	projs   []projection
	nodes   map[ast.NodeID]Ty
	env     *scope
	subst   map[TypeID]Ty
}

func newContext() *context {
	return &context{
		nodes: make(map[ast.NodeID]Ty),
		subst: make(map[TypeID]Ty),
	}
}

func (cx *context) fresh() Var {
	cx.nextVar++
	return Var{ID: cx.nextVar}
}

func (cx *context) equate(left, right Ty, node ast.NodeID) {
	cx.eqs = append(cx.eqs, equation{left: left, right: right, node: node})
}

func (cx *context) project(container Ty, op projOp, name string, index int, node ast.NodeID) Ty {
	result := cx.fresh()
	cx.projs = append(cx.projs, projection{
		container: container,
		op:        op,
		name:      name,
		index:     index,
		result:    result,
		node:      node,
	})
	return result
}

func (cx *context) push() {
	cx.env = &scope{parent: cx.env, names: make(map[string]Ty)}
}

func (cx *context) pop() {
	cx.env = cx.env.parent
}

func (cx *context) set(n ast.Node, t Ty) Ty {
	cx.nodes[n.Node()] = t
	return t
}

func (cx *context) kernel(k *ast.Kernel) error {
	cx.push()
	defer cx.pop()
	for _, p := range k.Params {
		t := FromKind(p.Kind)
		cx.env.names[p.Name] = t
		cx.set(p, t)
	}
	bodyTy, err := cx.block(k.Body)
	if err != nil {
		return err
	}
	cx.equate(bodyTy, FromKind(k.Ret), k.Body.Node())
	cx.set(k, FromKind(k.Ret))
	return nil
}

func (cx *context) block(b *ast.Block) (Ty, error) {
	cx.push()
	defer cx.pop()
	for _, s := range b.Stmts {
		if err := cx.stmt(s); err != nil {
			return nil, err
		}
	}
	if b.Result == nil {
		return cx.set(b, Const{Kind: types.MakeEmpty()}), nil
	}
	t, err := cx.expr(b.Result)
	if err != nil {
		return nil, err
	}
	return cx.set(b, t), nil
}

func (cx *context) stmt(s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.Let:
		t, err := cx.expr(s.Init)
		if err != nil {
			return err
		}
		if s.Typed {
			cx.equate(t, FromKind(s.Kind), s.Node())
		}
		cx.env.names[s.Name] = t
		cx.set(s, t)
		return nil
	case *ast.Assign:
		rhs, err := cx.expr(s.Rhs)
		if err != nil {
			return err
		}
		lhs, err := cx.lvalue(s.Lhs)
		if err != nil {
			return err
		}
		cx.equate(lhs, Ref{Elem: rhs}, s.Node())
		cx.set(s, Const{Kind: types.MakeEmpty()})
		return nil
	case *ast.ExprStmt:
		if _, err := cx.expr(s.X); err != nil {
			return err
		}
		cx.set(s, Const{Kind: types.MakeEmpty()})
		return nil
	default:
		return fmt.Errorf("infer: unknown statement %T", s)
	}
}

// lvalue types an assignment target, wrapping the addressed component
// in a Ref. The target must be a name or a field/index chain over one.
func (cx *context) lvalue(e ast.Expr) (Ty, error) {
	switch e := e.(type) {
	case *ast.Ident:
		t, ok := cx.env.lookup(e.Name)
		if !ok {
			return nil, &TypeError{Kind: ErrUnbound, Node: e.Node(), Name: e.Name}
		}
		cx.set(e, t)
		return Ref{Elem: t}, nil
	case *ast.FieldAccess:
		base, err := cx.lvalue(e.Base)
		if err != nil {
			return nil, err
		}
		t := cx.project(base, projField, e.Name, 0, e.Node())
		cx.set(e, t)
		return Ref{Elem: t}, nil
	case *ast.IndexAccess:
		base, err := cx.lvalue(e.Base)
		if err != nil {
			return nil, err
		}
		var t Ty
		if e.IsDynamic() {
			if _, err := cx.expr(e.Dyn); err != nil {
				return nil, err
			}
			t = cx.project(base, projElem, "", 0, e.Node())
		} else {
			t = cx.project(base, projIndex, "", e.Index, e.Node())
		}
		cx.set(e, t)
		return Ref{Elem: t}, nil
	default:
		return nil, &TypeError{Kind: ErrMismatch, Node: e.Node(), Msg: "assignment target must be a name or a field/index chain"}
	}
}

func (cx *context) expr(e ast.Expr) (Ty, error) {
	switch e := e.(type) {
	case *ast.Lit:
		if e.Typed {
			return cx.set(e, FromKind(e.Kind)), nil
		}
		return cx.set(e, cx.fresh()), nil

	case *ast.Ident:
		t, ok := cx.env.lookup(e.Name)
		if !ok {
			return nil, &TypeError{Kind: ErrUnbound, Node: e.Node(), Name: e.Name}
		}
		return cx.set(e, t), nil

	case *ast.Binary:
		l, err := cx.expr(e.Lhs)
		if err != nil {
			return nil, err
		}
		r, err := cx.expr(e.Rhs)
		if err != nil {
			return nil, err
		}
		switch {
		case e.Op.IsCompare():
			cx.equate(l, r, e.Node())
			return cx.set(e, Const{Kind: types.MakeBits(1)}), nil
		case e.Op.IsShift():
			// a bare literal shift amount takes the operand's width
			if lit, ok := e.Rhs.(*ast.Lit); ok && !lit.Typed {
				cx.equate(r, l, e.Node())
			}
			return cx.set(e, l), nil
		default:
			cx.equate(l, r, e.Node())
			return cx.set(e, l), nil
		}

	case *ast.Unary:
		x, err := cx.expr(e.X)
		if err != nil {
			return nil, err
		}
		if e.Op.IsReduce() {
			return cx.set(e, Const{Kind: types.MakeBits(1)}), nil
		}
		return cx.set(e, x), nil

	case *ast.If:
		c, err := cx.expr(e.Cond)
		if err != nil {
			return nil, err
		}
		cx.equate(c, Const{Kind: types.MakeBits(1)}, e.Cond.Node())
		thenTy, err := cx.block(e.Then)
		if err != nil {
			return nil, err
		}
		elseTy, err := cx.block(e.Else)
		if err != nil {
			return nil, err
		}
		cx.equate(thenTy, elseTy, e.Node())
		return cx.set(e, thenTy), nil

	case *ast.Match:
		if len(e.Arms) == 0 {
			return nil, &TypeError{Kind: ErrMismatch, Node: e.Node(), Msg: "match needs at least one arm"}
		}
		scrut, err := cx.expr(e.Scrut)
		if err != nil {
			return nil, err
		}
		result := cx.fresh()
		for _, arm := range e.Arms {
			cx.push()
			if pat, ok := arm.Pat.(*ast.VariantPat); ok && pat.Bind != "" {
				cx.env.names[pat.Bind] = cx.project(scrut, projPayload, pat.Variant, 0, arm.Body.Node())
			}
			bodyTy, err := cx.block(arm.Body)
			cx.pop()
			if err != nil {
				return nil, err
			}
			cx.equate(bodyTy, result, arm.Body.Node())
		}
		return cx.set(e, result), nil

	case *ast.TupleExpr:
		elems := make([]Ty, len(e.Items))
		for i, it := range e.Items {
			t, err := cx.expr(it)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return cx.set(e, Tuple{Elems: elems}), nil

	case *ast.ArrayExpr:
		elem := Ty(cx.fresh())
		for _, it := range e.Items {
			t, err := cx.expr(it)
			if err != nil {
				return nil, err
			}
			cx.equate(t, elem, it.Node())
		}
		return cx.set(e, Array{Elem: elem, Len: len(e.Items)}), nil

	case *ast.Repeat:
		v, err := cx.expr(e.Value)
		if err != nil {
			return nil, err
		}
		return cx.set(e, Array{Elem: v, Len: e.Len}), nil

	case *ast.StructExpr:
		if e.Kind.Tag != types.KindStruct {
			return nil, &TypeError{Kind: ErrBadProjection, Node: e.Node(), Left: FromKind(e.Kind), Name: "struct literal"}
		}
		seen := make(map[string]bool, len(e.Fields))
		for _, f := range e.Fields {
			if seen[f.Name] {
				return nil, &TypeError{Kind: ErrMismatch, Node: e.Node(), Msg: fmt.Sprintf("field %s initialized twice", f.Name)}
			}
			seen[f.Name] = true
			fk, ok := e.Kind.Field(f.Name)
			if !ok {
				return nil, &TypeError{Kind: ErrBadProjection, Node: e.Node(), Left: FromKind(e.Kind), Name: "." + f.Name}
			}
			t, err := cx.expr(f.Value)
			if err != nil {
				return nil, err
			}
			cx.equate(t, FromKind(fk.Kind), f.Value.Node())
		}
		if e.Rest != nil {
			t, err := cx.expr(e.Rest)
			if err != nil {
				return nil, err
			}
			cx.equate(t, FromKind(e.Kind), e.Rest.Node())
		} else {
			for _, f := range e.Kind.Fields {
				if !seen[f.Name] {
					return nil, &TypeError{Kind: ErrMismatch, Node: e.Node(), Msg: fmt.Sprintf("field %s not initialized", f.Name)}
				}
			}
		}
		return cx.set(e, FromKind(e.Kind)), nil

	case *ast.EnumExpr:
		if e.Kind.Tag != types.KindEnum {
			return nil, &TypeError{Kind: ErrBadProjection, Node: e.Node(), Left: FromKind(e.Kind), Name: "enum literal"}
		}
		v, ok := e.Kind.VariantByName(e.Variant)
		if !ok {
			return nil, &TypeError{Kind: ErrBadProjection, Node: e.Node(), Left: FromKind(e.Kind), Name: "#" + e.Variant}
		}
		payloadTy := Ty(Const{Kind: types.MakeEmpty()})
		if e.Payload != nil {
			t, err := cx.expr(e.Payload)
			if err != nil {
				return nil, err
			}
			payloadTy = t
		}
		cx.equate(payloadTy, FromKind(v.Payload), e.Node())
		return cx.set(e, FromKind(e.Kind)), nil

	case *ast.FieldAccess:
		base, err := cx.expr(e.Base)
		if err != nil {
			return nil, err
		}
		return cx.set(e, cx.project(base, projField, e.Name, 0, e.Node())), nil

	case *ast.IndexAccess:
		base, err := cx.expr(e.Base)
		if err != nil {
			return nil, err
		}
		if e.IsDynamic() {
			if _, err := cx.expr(e.Dyn); err != nil {
				return nil, err
			}
			return cx.set(e, cx.project(base, projElem, "", 0, e.Node())), nil
		}
		return cx.set(e, cx.project(base, projIndex, "", e.Index, e.Node())), nil

	case *ast.Call:
		params, ret := calleeSignature(e)
		if len(e.Args) != len(params) {
			return nil, &TypeError{
				Kind: ErrMismatch, Node: e.Node(),
				Msg: fmt.Sprintf("wrong number of arguments for %s: want %d, got %d", e.CalleeName(), len(params), len(e.Args)),
			}
		}
		for i, a := range e.Args {
			t, err := cx.expr(a)
			if err != nil {
				return nil, err
			}
			cx.equate(t, FromKind(params[i].Kind), a.Node())
		}
		return cx.set(e, FromKind(ret)), nil

	case *ast.AsBits:
		x, err := cx.expr(e.X)
		if err != nil {
			return nil, err
		}
		target := Const{Kind: types.MakeBits(e.Width)}
		if lit, ok := e.X.(*ast.Lit); ok && !lit.Typed {
			cx.equate(x, target, e.Node())
		}
		return cx.set(e, target), nil

	case *ast.AsSigned:
		x, err := cx.expr(e.X)
		if err != nil {
			return nil, err
		}
		target := Const{Kind: types.MakeSigned(e.Width)}
		if lit, ok := e.X.(*ast.Lit); ok && !lit.Typed {
			cx.equate(x, target, e.Node())
		}
		return cx.set(e, target), nil

	default:
		return nil, fmt.Errorf("infer: unknown expression %T", e)
	}
}

func calleeSignature(e *ast.Call) ([]ast.Param, types.Kind) {
	if e.Kernel != nil {
		return e.Kernel.Params, e.Kernel.Ret
	}
	return e.Extern.Params, e.Extern.Ret
}

// resolveAll turns every recorded node type into a concrete Kind,
// failing on the first node whose type still contains a variable.
func (cx *context) resolveAll(k *ast.Kernel) (map[ast.NodeID]types.Kind, error) {
	kinds := make(map[ast.NodeID]types.Kind, len(cx.nodes))
	var firstErr error
	ast.Walk(k, func(n ast.Node) bool {
		t, ok := cx.nodes[n.Node()]
		if !ok {
			firstErr = fmt.Errorf("infer: node %d was never typed", n.Node())
			return false
		}
		resolved, err := ResolveKind(cx.apply(t))
		if err != nil {
			var te *TypeError
			if errors.As(err, &te) {
				te.Node = n.Node()
			}
			firstErr = err
			return false
		}
		kinds[n.Node()] = resolved
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return kinds, nil
}
