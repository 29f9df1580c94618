package rif

import "silica/internal/layout"

// Slot aliases the layout package's slot type so instruction operands and
// dynamic path indices share one reference representation.
type Slot = layout.Slot

// Path aliases the layout package's path type; index and splice ops carry
// paths directly.
type Path = layout.Path

// RegID identifies a virtual register within one Object.
type RegID uint32

// LitID identifies an entry in an Object's literal table.
type LitID uint32

// Reg returns a slot referencing the given register.
func Reg(id RegID) Slot {
	return layout.Reg(uint32(id))
}

// Lit returns a slot referencing the given literal-table entry.
func Lit(id LitID) Slot {
	return layout.Lit(uint32(id))
}

// Empty returns the empty slot.
func Empty() Slot {
	return layout.Empty()
}

// AsReg extracts the register a slot references.
func AsReg(s Slot) (RegID, bool) {
	if !s.IsReg() {
		return 0, false
	}
	return RegID(s.ID), true
}

// AsLit extracts the literal a slot references.
func AsLit(s Slot) (LitID, bool) {
	if !s.IsLit() {
		return 0, false
	}
	return LitID(s.ID), true
}
