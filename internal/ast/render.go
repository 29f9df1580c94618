package ast

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"silica/internal/source"
)

// Rendered is deterministic pseudo-source for one kernel plus the byte
// span of every node in it. Spans carry no file; Bind stamps them once
// the text is registered in a FileSet.
type Rendered struct {
	Text  string
	Spans map[NodeID]source.Span
}

// Bind returns the span table with every span pointing into f.
func (r Rendered) Bind(f source.FileID) map[NodeID]source.Span {
	out := make(map[NodeID]source.Span, len(r.Spans))
	for id, sp := range r.Spans {
		sp.File = f
		out[id] = sp
	}
	return out
}

// Render prints a kernel as pseudo-source. The same tree always
// renders to the same text, so node spans stay valid across artifact
// round trips.
func Render(k *Kernel) Rendered {
	r := &renderer{spans: make(map[NodeID]source.Span)}
	r.kernel(k)
	return Rendered{Text: r.sb.String(), Spans: r.spans}
}

// RenderExtern prints the declared signature of an opaque primitive,
// followed by its pre-rendered body when it has one.
func RenderExtern(d *ExternDecl) string {
	var sb strings.Builder
	sb.WriteString("extern kernel ")
	sb.WriteString(d.Name)
	sb.WriteString("(")
	for i, p := range d.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Name)
		sb.WriteString(": ")
		sb.WriteString(p.Kind.String())
	}
	sb.WriteString(") -> ")
	sb.WriteString(d.Ret.String())
	sb.WriteString(";\n")
	if d.Body != "" {
		sb.WriteString(d.Body)
		if !strings.HasSuffix(d.Body, "\n") {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

type renderer struct {
	sb    strings.Builder
	depth int
	spans map[NodeID]source.Span
}

func (r *renderer) mark() uint32 {
	off, err := safecast.Conv[uint32](r.sb.Len())
	if err != nil {
		panic(fmt.Sprintf("ast: rendered source too large: %v", err))
	}
	return off
}

func (r *renderer) close(n Node, start uint32) {
	r.spans[n.Node()] = source.Span{Start: start, End: r.mark()}
}

func (r *renderer) pad() {
	for i := 0; i < r.depth; i++ {
		r.sb.WriteString("    ")
	}
}

func (r *renderer) kernel(k *Kernel) {
	start := r.mark()
	r.sb.WriteString("kernel ")
	r.sb.WriteString(k.Name)
	r.sb.WriteString("(")
	for i, p := range k.Params {
		if i > 0 {
			r.sb.WriteString(", ")
		}
		ps := r.mark()
		r.sb.WriteString(p.Name)
		r.sb.WriteString(": ")
		r.sb.WriteString(p.Kind.String())
		r.close(p, ps)
	}
	r.sb.WriteString(") -> ")
	r.sb.WriteString(k.Ret.String())
	r.sb.WriteString(" ")
	r.block(k.Body)
	r.sb.WriteString("\n")
	r.close(k, start)
}

func (r *renderer) block(b *Block) {
	start := r.mark()
	r.sb.WriteString("{\n")
	r.depth++
	for _, s := range b.Stmts {
		r.pad()
		r.stmt(s)
		r.sb.WriteString("\n")
	}
	if b.Result != nil {
		r.pad()
		r.expr(b.Result)
		r.sb.WriteString("\n")
	}
	r.depth--
	r.pad()
	r.sb.WriteString("}")
	r.close(b, start)
}

func (r *renderer) stmt(s Stmt) {
	start := r.mark()
	switch s := s.(type) {
	case *Let:
		r.sb.WriteString("let ")
		r.sb.WriteString(s.Name)
		if s.Typed {
			r.sb.WriteString(": ")
			r.sb.WriteString(s.Kind.String())
		}
		r.sb.WriteString(" = ")
		r.expr(s.Init)
		r.sb.WriteString(";")
	case *Assign:
		r.expr(s.Lhs)
		r.sb.WriteString(" = ")
		r.expr(s.Rhs)
		r.sb.WriteString(";")
	case *ExprStmt:
		r.expr(s.X)
		r.sb.WriteString(";")
	}
	r.close(s, start)
}

func (r *renderer) expr(e Expr) {
	start := r.mark()
	switch e := e.(type) {
	case *Lit:
		r.sb.WriteString(strconv.FormatInt(e.Value, 10))
		if e.Typed {
			r.sb.WriteString("_")
			r.sb.WriteString(e.Kind.String())
		}
	case *Ident:
		r.sb.WriteString(e.Name)
	case *Binary:
		r.sb.WriteString("(")
		r.expr(e.Lhs)
		r.sb.WriteString(" ")
		r.sb.WriteString(e.Op.String())
		r.sb.WriteString(" ")
		r.expr(e.Rhs)
		r.sb.WriteString(")")
	case *Unary:
		if e.Op.IsReduce() {
			r.expr(e.X)
			r.sb.WriteString(e.Op.String())
		} else {
			r.sb.WriteString(e.Op.String())
			r.expr(e.X)
		}
	case *If:
		r.sb.WriteString("if ")
		r.expr(e.Cond)
		r.sb.WriteString(" ")
		r.block(e.Then)
		r.sb.WriteString(" else ")
		r.block(e.Else)
	case *Match:
		r.sb.WriteString("match ")
		r.expr(e.Scrut)
		r.sb.WriteString(" {\n")
		r.depth++
		for _, arm := range e.Arms {
			r.pad()
			r.pattern(arm.Pat)
			r.sb.WriteString(" => ")
			r.block(arm.Body)
			r.sb.WriteString("\n")
		}
		r.depth--
		r.pad()
		r.sb.WriteString("}")
	case *TupleExpr:
		r.sb.WriteString("(")
		for i, it := range e.Items {
			if i > 0 {
				r.sb.WriteString(", ")
			}
			r.expr(it)
		}
		if len(e.Items) == 1 {
			r.sb.WriteString(",")
		}
		r.sb.WriteString(")")
	case *ArrayExpr:
		r.sb.WriteString("[")
		for i, it := range e.Items {
			if i > 0 {
				r.sb.WriteString(", ")
			}
			r.expr(it)
		}
		r.sb.WriteString("]")
	case *Repeat:
		r.sb.WriteString("[")
		r.expr(e.Value)
		r.sb.WriteString("; ")
		r.sb.WriteString(strconv.Itoa(e.Len))
		r.sb.WriteString("]")
	case *StructExpr:
		r.sb.WriteString(e.Kind.String())
		r.sb.WriteString(" { ")
		for i, f := range e.Fields {
			if i > 0 {
				r.sb.WriteString(", ")
			}
			r.sb.WriteString(f.Name)
			r.sb.WriteString(": ")
			r.expr(f.Value)
		}
		if e.Rest != nil {
			if len(e.Fields) > 0 {
				r.sb.WriteString(", ")
			}
			r.sb.WriteString("..")
			r.expr(e.Rest)
		}
		r.sb.WriteString(" }")
	case *EnumExpr:
		r.sb.WriteString(e.Kind.String())
		r.sb.WriteString("::")
		r.sb.WriteString(e.Variant)
		if e.Payload != nil {
			r.sb.WriteString("(")
			r.expr(e.Payload)
			r.sb.WriteString(")")
		}
	case *FieldAccess:
		r.expr(e.Base)
		r.sb.WriteString(".")
		r.sb.WriteString(e.Name)
	case *IndexAccess:
		r.expr(e.Base)
		r.sb.WriteString("[")
		if e.IsDynamic() {
			r.expr(e.Dyn)
		} else {
			r.sb.WriteString(strconv.Itoa(e.Index))
		}
		r.sb.WriteString("]")
	case *Call:
		r.sb.WriteString(e.CalleeName())
		r.sb.WriteString("(")
		for i, a := range e.Args {
			if i > 0 {
				r.sb.WriteString(", ")
			}
			r.expr(a)
		}
		r.sb.WriteString(")")
	case *AsBits:
		r.sb.WriteString("(")
		r.expr(e.X)
		r.sb.WriteString(" as b")
		r.sb.WriteString(strconv.Itoa(e.Width))
		r.sb.WriteString(")")
	case *AsSigned:
		r.sb.WriteString("(")
		r.expr(e.X)
		r.sb.WriteString(" as s")
		r.sb.WriteString(strconv.Itoa(e.Width))
		r.sb.WriteString(")")
	}
	r.close(e, start)
}

func (r *renderer) pattern(p Pattern) {
	switch p := p.(type) {
	case *VariantPat:
		r.sb.WriteString(p.Variant)
		if p.Bind != "" {
			r.sb.WriteString("(")
			r.sb.WriteString(p.Bind)
			r.sb.WriteString(")")
		}
	case *LitPat:
		r.sb.WriteString(strconv.FormatInt(p.Value, 10))
	case *WildPat:
		r.sb.WriteString("_")
	}
}
