package compiler

import (
	"fmt"
	"slices"

	"silica/internal/ast"
	"silica/internal/layout"
	"silica/internal/rif"
	"silica/internal/types"
)

// kernelLowerer translates one typed kernel body into a register object.
// Registers are written once: every op allocates a fresh destination, and
// rebinding a name points the scope at the new slot. Branches lower into
// child scopes; writes to outer names are merged back with selects (if) or
// case tables (match) keyed on the branch condition.
type kernelLowerer struct {
	obj     *rif.Object
	kinds   map[ast.NodeID]types.Kind
	nextReg rif.RegID
	lits    map[string]rif.LitID
	env     *scope
}

// scope tracks name bindings during lowering. names holds bindings
// introduced here (params, lets); rebinds holds writes to names owned by an
// enclosing scope, kept separate so the enclosing branch can merge them.
type scope struct {
	parent  *scope
	names   map[string]rif.Slot
	rebinds map[string]rif.Slot
}

func newScope(parent *scope) *scope {
	return &scope{
		parent:  parent,
		names:   make(map[string]rif.Slot),
		rebinds: make(map[string]rif.Slot),
	}
}

func (s *scope) lookup(name string) (rif.Slot, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if slot, ok := cur.names[name]; ok {
			return slot, true
		}
		if slot, ok := cur.rebinds[name]; ok {
			return slot, true
		}
	}
	return rif.Empty(), false
}

func (s *scope) define(name string, slot rif.Slot) {
	s.names[name] = slot
}

// assign rebinds name to slot. A name defined in this scope updates in
// place; a name owned by an ancestor is recorded for the merge point.
// Returns false when the name is bound nowhere.
func (s *scope) assign(name string, slot rif.Slot) bool {
	if _, ok := s.names[name]; ok {
		s.names[name] = slot
		return true
	}
	if _, ok := s.lookup(name); !ok {
		return false
	}
	s.rebinds[name] = slot
	return true
}

// rebindNames returns the union of names the given scopes rebound, sorted
// for deterministic merge order.
func rebindNames(scopes ...*scope) []string {
	seen := make(map[string]bool)
	var names []string
	for _, s := range scopes {
		for name := range s.rebinds {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	slices.Sort(names)
	return names
}

// lower translates a kernel with fully resolved node kinds into an object.
func lower(k *ast.Kernel, kinds map[ast.NodeID]types.Kind) (*rif.Object, error) {
	l := &kernelLowerer{
		obj: &rif.Object{
			Name:      k.Name,
			Fn:        k.Fn,
			Kinds:     make(map[rif.RegID]types.Kind),
			Literals:  make(map[rif.LitID]types.TypedBits),
			Externals: make(map[ast.FuncID]*rif.ExternalFunction),
		},
		kinds: kinds,
		lits:  make(map[string]rif.LitID),
		env:   newScope(nil),
	}
	for _, p := range k.Params {
		reg := l.newReg(p.Kind)
		id, _ := rif.AsReg(reg)
		l.obj.Arguments = append(l.obj.Arguments, id)
		l.env.define(p.Name, reg)
	}
	ret, err := l.lowerBlock(k.Body)
	if err != nil {
		return nil, err
	}
	l.obj.Return = ret
	return l.obj, nil
}

func (l *kernelLowerer) newReg(kind types.Kind) rif.Slot {
	id := l.nextReg
	l.nextReg++
	l.obj.Kinds[id] = kind
	return rif.Reg(id)
}

func (l *kernelLowerer) emit(op rif.Op) {
	l.obj.Ops = append(l.obj.Ops, op)
}

func (l *kernelLowerer) kindOf(n ast.Node) (types.Kind, error) {
	k, ok := l.kinds[n.Node()]
	if !ok {
		return types.Kind{}, &LoweringError{Node: n.Node(), Msg: "node has no inferred kind"}
	}
	return k, nil
}

// literal interns a value into the object's literal table, reusing an
// existing entry with the same kind and bits.
func (l *kernelLowerer) literal(tb types.TypedBits) rif.Slot {
	key := tb.Kind.String() + ":" + tb.BinaryString()
	if id, ok := l.lits[key]; ok && l.obj.Literals[id].Equal(tb) {
		return rif.Lit(id)
	}
	id := l.obj.AddLiteral(tb)
	l.lits[key] = id
	return rif.Lit(id)
}

func (l *kernelLowerer) lowerBlock(b *ast.Block) (rif.Slot, error) {
	for _, s := range b.Stmts {
		if err := l.lowerStmt(s); err != nil {
			return rif.Empty(), err
		}
	}
	if b.Result == nil {
		return rif.Empty(), nil
	}
	return l.lowerExpr(b.Result)
}

func (l *kernelLowerer) lowerStmt(s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.Let:
		slot, err := l.lowerExpr(s.Init)
		if err != nil {
			return err
		}
		l.env.define(s.Name, slot)
		return nil

	case *ast.Assign:
		return l.lowerAssign(s)

	case *ast.ExprStmt:
		_, err := l.lowerExpr(s.X)
		return err

	default:
		return &LoweringError{Node: s.Node(), Msg: fmt.Sprintf("unexpected statement %T", s)}
	}
}

func (l *kernelLowerer) lowerAssign(s *ast.Assign) error {
	value, err := l.lowerExpr(s.Rhs)
	if err != nil {
		return err
	}
	root, path, err := l.lowerPlace(s.Lhs)
	if err != nil {
		return err
	}
	if path.Len() == 0 {
		if !l.env.assign(root.Name, value) {
			return &LoweringError{Node: root.Node(), Msg: fmt.Sprintf("assignment to unbound name %s", root.Name)}
		}
		return nil
	}
	orig, ok := l.env.lookup(root.Name)
	if !ok {
		return &LoweringError{Node: root.Node(), Msg: fmt.Sprintf("assignment to unbound name %s", root.Name)}
	}
	rootKind, err := l.kindOf(root)
	if err != nil {
		return err
	}
	dst := l.newReg(rootKind)
	l.emit(rif.Op{Kind: rif.OpSplice, Node: s.Node(), Splice: rif.SpliceOp{
		Dst:   dst,
		Orig:  orig,
		Path:  path,
		Value: value,
	}})
	l.env.assign(root.Name, dst)
	return nil
}

// lowerPlace flattens an assignment target into its root name and the path
// from the root down to the addressed component. Dynamic index expressions
// lower to slots inside the path.
func (l *kernelLowerer) lowerPlace(e ast.Expr) (*ast.Ident, rif.Path, error) {
	switch e := e.(type) {
	case *ast.Ident:
		return e, rif.Path{}, nil

	case *ast.FieldAccess:
		root, path, err := l.lowerPlace(e.Base)
		if err != nil {
			return nil, rif.Path{}, err
		}
		return root, path.Fld(e.Name), nil

	case *ast.IndexAccess:
		root, path, err := l.lowerPlace(e.Base)
		if err != nil {
			return nil, rif.Path{}, err
		}
		if e.IsDynamic() {
			idx, err := l.lowerExpr(e.Dyn)
			if err != nil {
				return nil, rif.Path{}, err
			}
			return root, path.Dyn(idx), nil
		}
		return root, path.Idx(e.Index), nil

	default:
		return nil, rif.Path{}, &LoweringError{Node: e.Node(), Msg: "assignment target must be a name or a field/index chain"}
	}
}

func (l *kernelLowerer) lowerExpr(e ast.Expr) (rif.Slot, error) {
	switch e := e.(type) {
	case *ast.Lit:
		k, err := l.kindOf(e)
		if err != nil {
			return rif.Empty(), err
		}
		tb, err := types.FromInt(k, e.Value)
		if err != nil {
			return rif.Empty(), &LoweringError{Node: e.Node(), Msg: err.Error()}
		}
		return l.literal(tb), nil

	case *ast.Ident:
		slot, ok := l.env.lookup(e.Name)
		if !ok {
			return rif.Empty(), &LoweringError{Node: e.Node(), Msg: fmt.Sprintf("unbound name %s", e.Name)}
		}
		return slot, nil

	case *ast.Binary:
		left, err := l.lowerExpr(e.Lhs)
		if err != nil {
			return rif.Empty(), err
		}
		right, err := l.lowerExpr(e.Rhs)
		if err != nil {
			return rif.Empty(), err
		}
		k, err := l.kindOf(e)
		if err != nil {
			return rif.Empty(), err
		}
		dst := l.newReg(k)
		l.emit(rif.Op{Kind: rif.OpBinary, Node: e.Node(), Binary: rif.BinaryOp{
			Op:    e.Op,
			Dst:   dst,
			Left:  left,
			Right: right,
		}})
		return dst, nil

	case *ast.Unary:
		x, err := l.lowerExpr(e.X)
		if err != nil {
			return rif.Empty(), err
		}
		k, err := l.kindOf(e)
		if err != nil {
			return rif.Empty(), err
		}
		dst := l.newReg(k)
		l.emit(rif.Op{Kind: rif.OpUnary, Node: e.Node(), Unary: rif.UnaryOp{Op: e.Op, Dst: dst, X: x}})
		return dst, nil

	case *ast.If:
		return l.lowerIf(e)

	case *ast.Match:
		return l.lowerMatch(e)

	case *ast.TupleExpr:
		elems, err := l.lowerAll(e.Items)
		if err != nil {
			return rif.Empty(), err
		}
		k, err := l.kindOf(e)
		if err != nil {
			return rif.Empty(), err
		}
		dst := l.newReg(k)
		l.emit(rif.Op{Kind: rif.OpTuple, Node: e.Node(), Tuple: rif.TupleOp{Dst: dst, Elems: elems}})
		return dst, nil

	case *ast.ArrayExpr:
		elems, err := l.lowerAll(e.Items)
		if err != nil {
			return rif.Empty(), err
		}
		k, err := l.kindOf(e)
		if err != nil {
			return rif.Empty(), err
		}
		dst := l.newReg(k)
		l.emit(rif.Op{Kind: rif.OpArray, Node: e.Node(), Array: rif.ArrayOp{Dst: dst, Elems: elems}})
		return dst, nil

	case *ast.Repeat:
		value, err := l.lowerExpr(e.Value)
		if err != nil {
			return rif.Empty(), err
		}
		k, err := l.kindOf(e)
		if err != nil {
			return rif.Empty(), err
		}
		dst := l.newReg(k)
		l.emit(rif.Op{Kind: rif.OpRepeat, Node: e.Node(), Repeat: rif.RepeatOp{Dst: dst, Value: value, Len: e.Len}})
		return dst, nil

	case *ast.StructExpr:
		fields := make([]rif.FieldValue, len(e.Fields))
		for i, f := range e.Fields {
			slot, err := l.lowerExpr(f.Value)
			if err != nil {
				return rif.Empty(), err
			}
			fields[i] = rif.FieldValue{Name: f.Name, Value: slot}
		}
		rest := rif.Empty()
		if e.Rest != nil {
			var err error
			rest, err = l.lowerExpr(e.Rest)
			if err != nil {
				return rif.Empty(), err
			}
		}
		dst := l.newReg(e.Kind)
		l.emit(rif.Op{Kind: rif.OpStruct, Node: e.Node(), Struct: rif.StructOp{Dst: dst, Fields: fields, Rest: rest}})
		return dst, nil

	case *ast.EnumExpr:
		tmpl, err := layout.EnumTemplate(e.Kind, e.Variant)
		if err != nil {
			return rif.Empty(), &LoweringError{Node: e.Node(), Msg: err.Error()}
		}
		tslot := l.literal(tmpl)
		template, _ := rif.AsLit(tslot)
		payload := rif.Empty()
		if e.Payload != nil {
			payload, err = l.lowerExpr(e.Payload)
			if err != nil {
				return rif.Empty(), err
			}
		}
		dst := l.newReg(e.Kind)
		l.emit(rif.Op{Kind: rif.OpEnum, Node: e.Node(), Enum: rif.EnumOp{
			Dst:      dst,
			Template: template,
			Variant:  e.Variant,
			Payload:  payload,
		}})
		return dst, nil

	case *ast.FieldAccess, *ast.IndexAccess:
		base, path, err := l.accessPath(e)
		if err != nil {
			return rif.Empty(), err
		}
		k, err := l.kindOf(e)
		if err != nil {
			return rif.Empty(), err
		}
		dst := l.newReg(k)
		l.emit(rif.Op{Kind: rif.OpIndex, Node: e.Node(), Index: rif.IndexOp{Dst: dst, Base: base, Path: path}})
		return dst, nil

	case *ast.Call:
		args, err := l.lowerAll(e.Args)
		if err != nil {
			return rif.Empty(), err
		}
		l.external(e)
		k, err := l.kindOf(e)
		if err != nil {
			return rif.Empty(), err
		}
		dst := l.newReg(k)
		l.emit(rif.Op{Kind: rif.OpExec, Node: e.Node(), Exec: rif.ExecOp{Dst: dst, Fn: e.Fn(), Args: args}})
		return dst, nil

	case *ast.AsBits:
		x, err := l.lowerExpr(e.X)
		if err != nil {
			return rif.Empty(), err
		}
		k, err := l.kindOf(e)
		if err != nil {
			return rif.Empty(), err
		}
		dst := l.newReg(k)
		l.emit(rif.Op{Kind: rif.OpAsBits, Node: e.Node(), Cast: rif.CastOp{Dst: dst, X: x, Width: e.Width}})
		return dst, nil

	case *ast.AsSigned:
		x, err := l.lowerExpr(e.X)
		if err != nil {
			return rif.Empty(), err
		}
		k, err := l.kindOf(e)
		if err != nil {
			return rif.Empty(), err
		}
		dst := l.newReg(k)
		l.emit(rif.Op{Kind: rif.OpAsSigned, Node: e.Node(), Cast: rif.CastOp{Dst: dst, X: x, Width: e.Width}})
		return dst, nil

	default:
		return rif.Empty(), &LoweringError{Node: e.Node(), Msg: fmt.Sprintf("unexpected expression %T", e)}
	}
}

func (l *kernelLowerer) lowerAll(items []ast.Expr) ([]rif.Slot, error) {
	out := make([]rif.Slot, len(items))
	for i, it := range items {
		slot, err := l.lowerExpr(it)
		if err != nil {
			return nil, err
		}
		out[i] = slot
	}
	return out, nil
}

// accessPath folds a field/index chain into the lowered base value and the
// path from it to the accessed component. The base lowers first, then
// dynamic index expressions in chain order.
func (l *kernelLowerer) accessPath(e ast.Expr) (rif.Slot, rif.Path, error) {
	switch e := e.(type) {
	case *ast.FieldAccess:
		base, path, err := l.accessPath(e.Base)
		if err != nil {
			return rif.Empty(), rif.Path{}, err
		}
		return base, path.Fld(e.Name), nil

	case *ast.IndexAccess:
		base, path, err := l.accessPath(e.Base)
		if err != nil {
			return rif.Empty(), rif.Path{}, err
		}
		if e.IsDynamic() {
			idx, err := l.lowerExpr(e.Dyn)
			if err != nil {
				return rif.Empty(), rif.Path{}, err
			}
			return base, path.Dyn(idx), nil
		}
		return base, path.Idx(e.Index), nil

	default:
		slot, err := l.lowerExpr(e)
		return slot, rif.Path{}, err
	}
}

func (l *kernelLowerer) lowerIf(e *ast.If) (rif.Slot, error) {
	cond, err := l.lowerExpr(e.Cond)
	if err != nil {
		return rif.Empty(), err
	}
	outer := l.env

	l.env = newScope(outer)
	thenSlot, err := l.lowerBlock(e.Then)
	thenScope := l.env
	l.env = outer
	if err != nil {
		return rif.Empty(), err
	}

	l.env = newScope(outer)
	elseSlot, err := l.lowerBlock(e.Else)
	elseScope := l.env
	l.env = outer
	if err != nil {
		return rif.Empty(), err
	}

	k, err := l.kindOf(e)
	if err != nil {
		return rif.Empty(), err
	}
	dst := l.newReg(k)
	l.emit(rif.Op{Kind: rif.OpSelect, Node: e.Node(), Select: rif.SelectOp{
		Dst:   dst,
		Cond:  cond,
		True:  thenSlot,
		False: elseSlot,
	}})

	// names rebound in either branch mux between the branch value and the
	// incoming one
	for _, name := range rebindNames(thenScope, elseScope) {
		incoming, ok := l.env.lookup(name)
		if !ok {
			continue
		}
		t, ok := thenScope.rebinds[name]
		if !ok {
			t = incoming
		}
		f, ok := elseScope.rebinds[name]
		if !ok {
			f = incoming
		}
		mk, ok := l.obj.Kind(incoming)
		if !ok {
			return rif.Empty(), &LoweringError{Node: e.Node(), Msg: fmt.Sprintf("rebound name %s has no kind", name)}
		}
		merged := l.newReg(mk)
		l.emit(rif.Op{Kind: rif.OpSelect, Node: e.Node(), Select: rif.SelectOp{
			Dst:   merged,
			Cond:  cond,
			True:  t,
			False: f,
		}})
		l.env.assign(name, merged)
	}
	return dst, nil
}

func (l *kernelLowerer) lowerMatch(e *ast.Match) (rif.Slot, error) {
	scrut, err := l.lowerExpr(e.Scrut)
	if err != nil {
		return rif.Empty(), err
	}
	scrutKind, err := l.kindOf(e.Scrut)
	if err != nil {
		return rif.Empty(), err
	}

	discr := scrut
	switch scrutKind.Tag {
	case types.KindEnum:
		d := l.newReg(scrutKind.DiscriminantKind())
		l.emit(rif.Op{Kind: rif.OpIndex, Node: e.Scrut.Node(), Index: rif.IndexOp{
			Dst:  d,
			Base: scrut,
			Path: rif.Path{}.Disc(),
		}})
		discr = d
	case types.KindBits, types.KindSigned:
	default:
		return rif.Empty(), &LoweringError{Node: e.Node(), Msg: fmt.Sprintf("match scrutinee must be an enum or a vector, got %s", scrutKind)}
	}

	if err := checkExhaustive(e, scrutKind); err != nil {
		return rif.Empty(), err
	}

	outer := l.env
	args := make([]rif.CaseArg, len(e.Arms))
	values := make([]rif.Slot, len(e.Arms))
	scopes := make([]*scope, len(e.Arms))
	for i, arm := range e.Arms {
		arg, err := l.caseArg(e, scrutKind, arm.Pat)
		if err != nil {
			return rif.Empty(), err
		}
		args[i] = arg

		l.env = newScope(outer)
		if pat, ok := arm.Pat.(*ast.VariantPat); ok && pat.Bind != "" {
			v, _ := scrutKind.VariantByName(pat.Variant)
			payload := l.newReg(v.Payload)
			l.emit(rif.Op{Kind: rif.OpIndex, Node: arm.Body.Node(), Index: rif.IndexOp{
				Dst:  payload,
				Base: scrut,
				Path: rif.Path{}.Payload(pat.Variant),
			}})
			l.env.define(pat.Bind, payload)
		}
		slot, err := l.lowerBlock(arm.Body)
		scopes[i] = l.env
		l.env = outer
		if err != nil {
			return rif.Empty(), err
		}
		values[i] = slot
	}

	k, err := l.kindOf(e)
	if err != nil {
		return rif.Empty(), err
	}
	dst := l.newReg(k)
	table := make([]rif.CaseEntry, len(e.Arms))
	for i := range e.Arms {
		table[i] = rif.CaseEntry{Arg: args[i], Value: values[i]}
	}
	l.emit(rif.Op{Kind: rif.OpCase, Node: e.Node(), Case: rif.CaseOp{Dst: dst, Discr: discr, Table: table}})

	// names rebound in any arm merge through a case over the same table
	for _, name := range rebindNames(scopes...) {
		incoming, ok := l.env.lookup(name)
		if !ok {
			continue
		}
		mk, ok := l.obj.Kind(incoming)
		if !ok {
			return rif.Empty(), &LoweringError{Node: e.Node(), Msg: fmt.Sprintf("rebound name %s has no kind", name)}
		}
		merged := l.newReg(mk)
		mtable := make([]rif.CaseEntry, len(e.Arms))
		for i := range e.Arms {
			slot, ok := scopes[i].rebinds[name]
			if !ok {
				slot = incoming
			}
			mtable[i] = rif.CaseEntry{Arg: args[i], Value: slot}
		}
		l.emit(rif.Op{Kind: rif.OpCase, Node: e.Node(), Case: rif.CaseOp{Dst: merged, Discr: discr, Table: mtable}})
		l.env.assign(name, merged)
	}
	return dst, nil
}

// caseArg lowers one arm pattern into a case-table entry. Variant and
// literal patterns become discriminant-kind literals.
func (l *kernelLowerer) caseArg(e *ast.Match, scrutKind types.Kind, pat ast.Pattern) (rif.CaseArg, error) {
	switch pat := pat.(type) {
	case *ast.WildPat:
		return rif.CaseArg{Wild: true}, nil

	case *ast.LitPat:
		k := scrutKind
		if scrutKind.Tag == types.KindEnum {
			k = scrutKind.DiscriminantKind()
		}
		tb, err := types.FromInt(k, pat.Value)
		if err != nil {
			return rif.CaseArg{}, &LoweringError{Node: e.Node(), Msg: err.Error()}
		}
		id, _ := rif.AsLit(l.literal(tb))
		return rif.CaseArg{Lit: id}, nil

	case *ast.VariantPat:
		if scrutKind.Tag != types.KindEnum {
			return rif.CaseArg{}, &LoweringError{Node: e.Node(), Msg: fmt.Sprintf("variant pattern %s needs an enum scrutinee, got %s", pat.Variant, scrutKind)}
		}
		v, ok := scrutKind.VariantByName(pat.Variant)
		if !ok {
			return rif.CaseArg{}, &LoweringError{Node: e.Node(), Msg: fmt.Sprintf("%s has no variant %q", scrutKind, pat.Variant)}
		}
		tb, err := types.FromInt(scrutKind.DiscriminantKind(), v.Discr)
		if err != nil {
			return rif.CaseArg{}, &LoweringError{Node: e.Node(), Msg: err.Error()}
		}
		id, _ := rif.AsLit(l.literal(tb))
		return rif.CaseArg{Lit: id}, nil

	default:
		return rif.CaseArg{}, &LoweringError{Node: e.Node(), Msg: fmt.Sprintf("unexpected pattern %T", pat)}
	}
}

// checkExhaustive verifies the arms cover the scrutinee. A wildcard covers
// everything; an enum is covered when every discriminant appears; a vector
// scrutinee always needs a wildcard.
func checkExhaustive(e *ast.Match, scrutKind types.Kind) error {
	for i, arm := range e.Arms {
		if _, ok := arm.Pat.(*ast.WildPat); ok {
			if i != len(e.Arms)-1 {
				return &LoweringError{Node: arm.Body.Node(), Msg: "wildcard arm must be last"}
			}
			return nil
		}
	}
	if scrutKind.Tag != types.KindEnum {
		return &LoweringError{Node: e.Node(), Msg: "match over a vector needs a wildcard arm"}
	}
	covered := make(map[int64]bool, len(e.Arms))
	for _, arm := range e.Arms {
		switch pat := arm.Pat.(type) {
		case *ast.VariantPat:
			if v, ok := scrutKind.VariantByName(pat.Variant); ok {
				covered[v.Discr] = true
			}
		case *ast.LitPat:
			covered[pat.Value] = true
		}
	}
	for _, v := range scrutKind.Variants {
		if !covered[v.Discr] {
			return &LoweringError{Node: e.Node(), Msg: fmt.Sprintf("match does not cover variant %s", v.Name)}
		}
	}
	return nil
}

// external records the callee of a call in the object's external table.
func (l *kernelLowerer) external(e *ast.Call) {
	fn := e.Fn()
	if _, ok := l.obj.Externals[fn]; ok {
		return
	}
	if e.Kernel != nil {
		l.obj.Externals[fn] = rif.ExternalKernel(e.Kernel)
		return
	}
	l.obj.Externals[fn] = rif.ExternalStub(e.Extern)
}
