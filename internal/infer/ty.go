// Package infer assigns a concrete Kind to every node of a kernel
// using unification over inference types. The model is the classic
// equation/substitution solver: constraint generation walks the tree
// producing equations and deferred projection constraints, and the
// solver unifies to a fixpoint with an occurs check.
package infer

import (
	"fmt"
	"strconv"
	"strings"

	"silica/internal/types"
)

// TypeID numbers one inference variable within a solving context.
type TypeID uint32

// Ty is an inference-time type. Unlike Kind it may contain unresolved
// variables; inference must eliminate every Var before lowering runs.
type Ty interface {
	isTy()
	String() string
}

// Var is an unresolved type variable.
type Var struct {
	ID TypeID
}

// Const is an atomic concrete type: Bits, Signed or Empty.
type Const struct {
	Kind types.Kind
}

// Ref marks the type of an assignment target. Only generated for
// lvalues; unification descends through matching Refs.
type Ref struct {
	Elem Ty
}

// Tuple is a positional composite.
type Tuple struct {
	Elems []Ty
}

// Array is a homogeneous composite of known length.
type Array struct {
	Elem Ty
	Len  int
}

// Field is one struct field at inference time.
type Field struct {
	Name string
	Ty   Ty
}

// Struct is a named field composite.
type Struct struct {
	Name   string
	Fields []Field
}

// Variant is one enum variant at inference time.
type Variant struct {
	Name    string
	Discr   int64
	Payload Ty
}

// Enum is a named tagged union with a concrete discriminant layout.
type Enum struct {
	Name     string
	Variants []Variant
	Disc     types.DiscriminantLayout
}

func (Var) isTy()    {}
func (Const) isTy()  {}
func (Ref) isTy()    {}
func (Tuple) isTy()  {}
func (Array) isTy()  {}
func (Struct) isTy() {}
func (Enum) isTy()   {}

func (t Var) String() string {
	return "V" + strconv.FormatUint(uint64(t.ID), 10)
}

func (t Const) String() string {
	return t.Kind.String()
}

func (t Ref) String() string {
	return "&" + t.Elem.String()
}

func (t Tuple) String() string {
	var sb strings.Builder
	sb.WriteString("(")
	for i, e := range t.Elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.String())
	}
	sb.WriteString(")")
	return sb.String()
}

func (t Array) String() string {
	return fmt.Sprintf("[%s; %d]", t.Elem, t.Len)
}

func (t Struct) String() string {
	var sb strings.Builder
	sb.WriteString(t.Name)
	sb.WriteString(" {")
	for i, f := range t.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Name)
		sb.WriteString(": ")
		sb.WriteString(f.Ty.String())
	}
	sb.WriteString("}")
	return sb.String()
}

func (t Enum) String() string {
	var sb strings.Builder
	sb.WriteString(t.Name)
	sb.WriteString(" {")
	for i, v := range t.Variants {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.Name)
		sb.WriteString(": ")
		sb.WriteString(v.Payload.String())
	}
	sb.WriteString("}")
	return sb.String()
}

// FromKind embeds a concrete Kind as an inference type with no
// variables.
func FromKind(k types.Kind) Ty {
	switch k.Tag {
	case types.KindTuple:
		elems := make([]Ty, len(k.Elems))
		for i, e := range k.Elems {
			elems[i] = FromKind(e)
		}
		return Tuple{Elems: elems}
	case types.KindArray:
		return Array{Elem: FromKind(*k.Elem), Len: k.Len}
	case types.KindStruct:
		fields := make([]Field, len(k.Fields))
		for i, f := range k.Fields {
			fields[i] = Field{Name: f.Name, Ty: FromKind(f.Kind)}
		}
		return Struct{Name: k.Name, Fields: fields}
	case types.KindEnum:
		variants := make([]Variant, len(k.Variants))
		for i, v := range k.Variants {
			variants[i] = Variant{Name: v.Name, Discr: v.Discr, Payload: FromKind(v.Payload)}
		}
		return Enum{Name: k.Name, Variants: variants, Disc: k.Disc}
	default:
		return Const{Kind: k}
	}
}

// ResolveKind recovers a concrete Kind from a fully solved type. A
// remaining variable is reported as unresolved; a Ref resolves to its
// element.
func ResolveKind(t Ty) (types.Kind, error) {
	switch t := t.(type) {
	case Var:
		return types.Kind{}, &TypeError{Kind: ErrUnresolved, Left: t}
	case Const:
		return t.Kind, nil
	case Ref:
		return ResolveKind(t.Elem)
	case Tuple:
		elems := make([]types.Kind, len(t.Elems))
		for i, e := range t.Elems {
			k, err := ResolveKind(e)
			if err != nil {
				return types.Kind{}, err
			}
			elems[i] = k
		}
		return types.MakeTuple(elems...), nil
	case Array:
		elem, err := ResolveKind(t.Elem)
		if err != nil {
			return types.Kind{}, err
		}
		return types.MakeArray(elem, t.Len), nil
	case Struct:
		fields := make([]types.Field, len(t.Fields))
		for i, f := range t.Fields {
			k, err := ResolveKind(f.Ty)
			if err != nil {
				return types.Kind{}, err
			}
			fields[i] = types.Field{Name: f.Name, Kind: k}
		}
		return types.MakeStruct(t.Name, fields...), nil
	case Enum:
		variants := make([]types.Variant, len(t.Variants))
		for i, v := range t.Variants {
			k, err := ResolveKind(v.Payload)
			if err != nil {
				return types.Kind{}, err
			}
			variants[i] = types.Variant{Name: v.Name, Discr: v.Discr, Payload: k}
		}
		return types.MakeEnum(t.Name, variants, t.Disc), nil
	default:
		return types.Kind{}, fmt.Errorf("infer: unknown type form %T", t)
	}
}

func tyEqual(x, y Ty) bool {
	switch x := x.(type) {
	case Var:
		y, ok := y.(Var)
		return ok && x.ID == y.ID
	case Const:
		y, ok := y.(Const)
		return ok && x.Kind.Equal(y.Kind)
	case Ref:
		y, ok := y.(Ref)
		return ok && tyEqual(x.Elem, y.Elem)
	case Tuple:
		y, ok := y.(Tuple)
		if !ok || len(x.Elems) != len(y.Elems) {
			return false
		}
		for i := range x.Elems {
			if !tyEqual(x.Elems[i], y.Elems[i]) {
				return false
			}
		}
		return true
	case Array:
		y, ok := y.(Array)
		return ok && x.Len == y.Len && tyEqual(x.Elem, y.Elem)
	case Struct:
		y, ok := y.(Struct)
		if !ok || x.Name != y.Name || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if x.Fields[i].Name != y.Fields[i].Name || !tyEqual(x.Fields[i].Ty, y.Fields[i].Ty) {
				return false
			}
		}
		return true
	case Enum:
		y, ok := y.(Enum)
		if !ok || x.Name != y.Name || len(x.Variants) != len(y.Variants) || x.Disc != y.Disc {
			return false
		}
		for i := range x.Variants {
			if x.Variants[i].Name != y.Variants[i].Name ||
				x.Variants[i].Discr != y.Variants[i].Discr ||
				!tyEqual(x.Variants[i].Payload, y.Variants[i].Payload) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
