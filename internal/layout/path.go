// Package layout resolves symbolic paths into nested hardware values down to
// absolute bit ranges. It is the addressing engine behind field and index
// lowering, dynamic-index expansion, and instruction verification.
package layout

import (
	"fmt"
	"strings"
)

// SlotTag discriminates the value references an instruction stream works
// with. The layout engine needs them because a dynamic path step names the
// slot holding its runtime index; the IR aliases this type for its operands.
type SlotTag uint8

const (
	// SlotEmpty is the zero-width non-reference.
	SlotEmpty SlotTag = iota
	// SlotReg references a virtual register.
	SlotReg
	// SlotLit references an entry in an object's literal table.
	SlotLit
)

// Slot is a tagged reference to a register, a literal, or nothing.
type Slot struct {
	Tag SlotTag `msgpack:"tag"`
	ID  uint32  `msgpack:"id"`
}

// Reg returns a register slot.
func Reg(id uint32) Slot {
	return Slot{Tag: SlotReg, ID: id}
}

// Lit returns a literal slot.
func Lit(id uint32) Slot {
	return Slot{Tag: SlotLit, ID: id}
}

// Empty returns the empty slot.
func Empty() Slot {
	return Slot{Tag: SlotEmpty}
}

// IsReg reports whether the slot references a register.
func (s Slot) IsReg() bool {
	return s.Tag == SlotReg
}

// IsLit reports whether the slot references a literal.
func (s Slot) IsLit() bool {
	return s.Tag == SlotLit
}

// IsEmpty reports whether the slot references nothing.
func (s Slot) IsEmpty() bool {
	return s.Tag == SlotEmpty
}

func (s Slot) String() string {
	switch s.Tag {
	case SlotReg:
		return fmt.Sprintf("r%d", s.ID)
	case SlotLit:
		return fmt.Sprintf("l%d", s.ID)
	default:
		return "()"
	}
}

// ElementTag discriminates the navigation steps a path can take.
type ElementTag uint8

const (
	// ElemIndex addresses one array element, tuple position, or struct
	// field by position.
	ElemIndex ElementTag = iota
	// ElemField addresses a struct field by name.
	ElemField
	// ElemDiscriminant addresses an enum's tag bits.
	ElemDiscriminant
	// ElemPayload addresses an enum variant's payload by variant name.
	ElemPayload
	// ElemPayloadByValue addresses an enum variant's payload by
	// discriminant value.
	ElemPayloadByValue
	// ElemDynamic addresses an array element whose index is a runtime
	// value held in a slot; it must be expanded by PathStar before a bit
	// range can be computed.
	ElemDynamic
)

// PathElement is one navigation step. Exactly the fields belonging to Tag
// are meaningful.
type PathElement struct {
	Tag   ElementTag `msgpack:"tag"`
	Index int        `msgpack:"index,omitempty"` // ElemIndex
	Name  string     `msgpack:"name,omitempty"`  // ElemField, ElemPayload
	Discr int64      `msgpack:"discr,omitempty"` // ElemPayloadByValue
	Slot  Slot       `msgpack:"slot,omitempty"`  // ElemDynamic
}

// Path is an ordered sequence of navigation steps from a root value down to
// a sub-value. It carries no type information; widths are resolved against a
// Kind by BitRange.
type Path struct {
	Elements []PathElement `msgpack:"elements"`
}

// Idx appends a concrete positional step.
func (p Path) Idx(i int) Path {
	return p.push(PathElement{Tag: ElemIndex, Index: i})
}

// Fld appends a named struct-field step.
func (p Path) Fld(name string) Path {
	return p.push(PathElement{Tag: ElemField, Name: name})
}

// Disc appends an enum-discriminant step.
func (p Path) Disc() Path {
	return p.push(PathElement{Tag: ElemDiscriminant})
}

// Payload appends an enum-payload step by variant name.
func (p Path) Payload(name string) Path {
	return p.push(PathElement{Tag: ElemPayload, Name: name})
}

// PayloadByValue appends an enum-payload step by discriminant value.
func (p Path) PayloadByValue(discr int64) Path {
	return p.push(PathElement{Tag: ElemPayloadByValue, Discr: discr})
}

// Dyn appends a dynamic index step resolved from slot at run time.
func (p Path) Dyn(slot Slot) Path {
	return p.push(PathElement{Tag: ElemDynamic, Slot: slot})
}

func (p Path) push(e PathElement) Path {
	elements := make([]PathElement, 0, len(p.Elements)+1)
	elements = append(elements, p.Elements...)
	elements = append(elements, e)
	return Path{Elements: elements}
}

// Clone returns a copy with its own element storage.
func (p Path) Clone() Path {
	return Path{Elements: append([]PathElement(nil), p.Elements...)}
}

// Join concatenates two paths.
func (p Path) Join(other Path) Path {
	elements := make([]PathElement, 0, len(p.Elements)+len(other.Elements))
	elements = append(elements, p.Elements...)
	elements = append(elements, other.Elements...)
	return Path{Elements: elements}
}

// Len returns the number of steps.
func (p Path) Len() int {
	return len(p.Elements)
}

// AnyDynamic reports whether any step is a dynamic index.
func (p Path) AnyDynamic() bool {
	for _, e := range p.Elements {
		if e.Tag == ElemDynamic {
			return true
		}
	}
	return false
}

// DynamicSlots returns the slots referenced by dynamic steps, in path order.
func (p Path) DynamicSlots() []Slot {
	var out []Slot
	for _, e := range p.Elements {
		if e.Tag == ElemDynamic {
			out = append(out, e.Slot)
		}
	}
	return out
}

// RemapSlots rewrites the slot of every dynamic step through f.
func (p Path) RemapSlots(f func(Slot) Slot) Path {
	elements := append([]PathElement(nil), p.Elements...)
	for i := range elements {
		if elements[i].Tag == ElemDynamic {
			elements[i].Slot = f(elements[i].Slot)
		}
	}
	return Path{Elements: elements}
}

// ResolveDynamic replaces every dynamic step with the concrete index
// produced by lookup. The evaluator uses it to turn runtime slot values into
// addressable paths.
func (p Path) ResolveDynamic(lookup func(Slot) (int, error)) (Path, error) {
	elements := append([]PathElement(nil), p.Elements...)
	for i := range elements {
		if elements[i].Tag != ElemDynamic {
			continue
		}
		idx, err := lookup(elements[i].Slot)
		if err != nil {
			return Path{}, err
		}
		elements[i] = PathElement{Tag: ElemIndex, Index: idx}
	}
	return Path{Elements: elements}, nil
}

// IsPrefixOf reports whether every step of p matches the start of other.
func (p Path) IsPrefixOf(other Path) bool {
	if len(p.Elements) > len(other.Elements) {
		return false
	}
	for i, e := range p.Elements {
		if e != other.Elements[i] {
			return false
		}
	}
	return true
}

// StripPrefix removes prefix from the front of p. Fails unless prefix is a
// true prefix.
func (p Path) StripPrefix(prefix Path) (Path, error) {
	if !prefix.IsPrefixOf(p) {
		return Path{}, &PathError{
			Kind: ErrInvalidOperation,
			Path: p.String(),
			Ctx:  fmt.Sprintf("%s is not a prefix", prefix),
		}
	}
	rest := append([]PathElement(nil), p.Elements[len(prefix.Elements):]...)
	return Path{Elements: rest}, nil
}

// Equal compares two paths step by step.
func (p Path) Equal(other Path) bool {
	if len(p.Elements) != len(other.Elements) {
		return false
	}
	for i := range p.Elements {
		if p.Elements[i] != other.Elements[i] {
			return false
		}
	}
	return true
}

// String renders the path compactly: [2] for indices, .name for fields,
// # for the discriminant, #Name and #(value) for payloads, [[slot]] for
// dynamic indices.
func (p Path) String() string {
	var sb strings.Builder
	for _, e := range p.Elements {
		switch e.Tag {
		case ElemIndex:
			fmt.Fprintf(&sb, "[%d]", e.Index)
		case ElemField:
			sb.WriteByte('.')
			sb.WriteString(e.Name)
		case ElemDiscriminant:
			sb.WriteByte('#')
		case ElemPayload:
			sb.WriteByte('#')
			sb.WriteString(e.Name)
		case ElemPayloadByValue:
			fmt.Fprintf(&sb, "#(%d)", e.Discr)
		case ElemDynamic:
			fmt.Fprintf(&sb, "[[%s]]", e.Slot)
		}
	}
	return sb.String()
}
