package types

import (
	"fmt"
	"strings"
)

// KindTag discriminates the shapes a hardware value can take.
type KindTag uint8

const (
	// KindEmpty is the zero-width value.
	KindEmpty KindTag = iota
	// KindBits is an unsigned bit-vector of fixed width.
	KindBits
	// KindSigned is a two's-complement bit-vector of fixed width.
	KindSigned
	// KindTuple is an ordered, positionally-indexed aggregate.
	KindTuple
	// KindArray is a fixed-length repetition of one element shape.
	KindArray
	// KindStruct is a named record with ordered named fields.
	KindStruct
	// KindEnum is a tagged union with an explicit discriminant layout.
	KindEnum
)

func (t KindTag) String() string {
	switch t {
	case KindEmpty:
		return "empty"
	case KindBits:
		return "bits"
	case KindSigned:
		return "signed"
	case KindTuple:
		return "tuple"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	}
	return "unknown"
}

// DiscriminantAlignment places an enum's discriminant at the low or the high
// end of the value's bit range.
type DiscriminantAlignment uint8

const (
	AlignLowBits DiscriminantAlignment = iota
	AlignHighBits
)

func (a DiscriminantAlignment) String() string {
	if a == AlignHighBits {
		return "msb"
	}
	return "lsb"
}

// DiscriminantType is the signedness of the discriminant bits.
type DiscriminantType uint8

const (
	DiscUnsigned DiscriminantType = iota
	DiscSigned
)

// DiscriminantLayout describes where and how an enum stores its tag.
type DiscriminantLayout struct {
	Width     int                   `msgpack:"width"`
	Alignment DiscriminantAlignment `msgpack:"alignment"`
	Type      DiscriminantType      `msgpack:"type"`
}

// Field is one named member of a struct kind.
type Field struct {
	Name string `msgpack:"name"`
	Kind Kind   `msgpack:"kind"`
}

// Variant is one alternative of an enum kind.
type Variant struct {
	Name    string `msgpack:"name"`
	Discr   int64  `msgpack:"discr"`
	Payload Kind   `msgpack:"payload"`
}

// Kind is the concrete, statically-sized shape of a hardware value. It is a
// closed tagged union: only the fields belonging to Tag are populated, and
// every consumer dispatches on Tag exhaustively.
type Kind struct {
	Tag KindTag `msgpack:"tag"`

	Width int `msgpack:"width,omitempty"` // Bits, Signed

	Elems []Kind `msgpack:"elems,omitempty"` // Tuple

	Elem *Kind `msgpack:"elem,omitempty"` // Array
	Len  int   `msgpack:"len,omitempty"`  // Array

	Name     string             `msgpack:"name,omitempty"`     // Struct, Enum
	Fields   []Field            `msgpack:"fields,omitempty"`   // Struct
	Variants []Variant          `msgpack:"variants,omitempty"` // Enum
	Disc     DiscriminantLayout `msgpack:"disc,omitempty"`     // Enum
}

// MakeEmpty returns the zero-width kind.
func MakeEmpty() Kind {
	return Kind{Tag: KindEmpty}
}

// MakeBits returns an unsigned bit-vector kind of the given width.
func MakeBits(width int) Kind {
	return Kind{Tag: KindBits, Width: width}
}

// MakeSigned returns a signed bit-vector kind of the given width.
func MakeSigned(width int) Kind {
	return Kind{Tag: KindSigned, Width: width}
}

// MakeTuple returns a tuple kind over the given element kinds.
func MakeTuple(elems ...Kind) Kind {
	return Kind{Tag: KindTuple, Elems: elems}
}

// MakeArray returns an array kind of length n over elem.
func MakeArray(elem Kind, n int) Kind {
	e := elem
	return Kind{Tag: KindArray, Elem: &e, Len: n}
}

// MakeStruct returns a struct kind with the given name and ordered fields.
func MakeStruct(name string, fields ...Field) Kind {
	return Kind{Tag: KindStruct, Name: name, Fields: fields}
}

// MakeEnum returns an enum kind with the given variants and discriminant
// layout. Variant order is the declaration order and is significant for
// positional operations.
func MakeEnum(name string, variants []Variant, disc DiscriminantLayout) Kind {
	return Kind{Tag: KindEnum, Name: name, Variants: variants, Disc: disc}
}

// Bits returns the total bit width of the kind. Arrays multiply, aggregates
// sum, enums take the discriminant plus the widest payload.
func (k Kind) Bits() int {
	switch k.Tag {
	case KindEmpty:
		return 0
	case KindBits, KindSigned:
		return k.Width
	case KindTuple:
		total := 0
		for _, e := range k.Elems {
			total += e.Bits()
		}
		return total
	case KindArray:
		return k.Len * k.Elem.Bits()
	case KindStruct:
		total := 0
		for _, f := range k.Fields {
			total += f.Kind.Bits()
		}
		return total
	case KindEnum:
		widest := 0
		for _, v := range k.Variants {
			if w := v.Payload.Bits(); w > widest {
				widest = w
			}
		}
		return k.Disc.Width + widest
	}
	return 0
}

// IsEmpty reports whether the kind occupies zero bits structurally
// (KindEmpty itself, not merely a zero-width aggregate).
func (k Kind) IsEmpty() bool {
	return k.Tag == KindEmpty
}

// IsComposite reports whether the kind can be navigated into by a path.
func (k Kind) IsComposite() bool {
	switch k.Tag {
	case KindTuple, KindArray, KindStruct, KindEnum:
		return true
	}
	return false
}

// IsSigned reports whether the kind compares and negates as two's complement.
func (k Kind) IsSigned() bool {
	return k.Tag == KindSigned
}

// Field returns the struct field with the given name.
func (k Kind) Field(name string) (Field, bool) {
	for _, f := range k.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// VariantByName returns the enum variant with the given name.
func (k Kind) VariantByName(name string) (Variant, bool) {
	for _, v := range k.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// VariantByDiscr returns the enum variant carrying the given discriminant
// value.
func (k Kind) VariantByDiscr(d int64) (Variant, bool) {
	for _, v := range k.Variants {
		if v.Discr == d {
			return v, true
		}
	}
	return Variant{}, false
}

// DiscriminantKind returns the kind of the enum's tag bits per its layout.
func (k Kind) DiscriminantKind() Kind {
	if k.Disc.Type == DiscSigned {
		return MakeSigned(k.Disc.Width)
	}
	return MakeBits(k.Disc.Width)
}

// Equal is structural equality. Struct and enum kinds also compare by name,
// matching the nominal identity the front end assigns them.
func (k Kind) Equal(other Kind) bool {
	if k.Tag != other.Tag {
		return false
	}
	switch k.Tag {
	case KindEmpty:
		return true
	case KindBits, KindSigned:
		return k.Width == other.Width
	case KindTuple:
		if len(k.Elems) != len(other.Elems) {
			return false
		}
		for i := range k.Elems {
			if !k.Elems[i].Equal(other.Elems[i]) {
				return false
			}
		}
		return true
	case KindArray:
		return k.Len == other.Len && k.Elem.Equal(*other.Elem)
	case KindStruct:
		if k.Name != other.Name || len(k.Fields) != len(other.Fields) {
			return false
		}
		for i := range k.Fields {
			if k.Fields[i].Name != other.Fields[i].Name {
				return false
			}
			if !k.Fields[i].Kind.Equal(other.Fields[i].Kind) {
				return false
			}
		}
		return true
	case KindEnum:
		if k.Name != other.Name || k.Disc != other.Disc {
			return false
		}
		if len(k.Variants) != len(other.Variants) {
			return false
		}
		for i := range k.Variants {
			a, b := k.Variants[i], other.Variants[i]
			if a.Name != b.Name || a.Discr != b.Discr || !a.Payload.Equal(b.Payload) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders kinds compactly: b8, s4, (), (b8, b4), [b8; 3], struct and
// enum kinds by name.
func (k Kind) String() string {
	switch k.Tag {
	case KindEmpty:
		return "()"
	case KindBits:
		return fmt.Sprintf("b%d", k.Width)
	case KindSigned:
		return fmt.Sprintf("s%d", k.Width)
	case KindTuple:
		parts := make([]string, len(k.Elems))
		for i, e := range k.Elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindArray:
		return fmt.Sprintf("[%s; %d]", k.Elem, k.Len)
	case KindStruct, KindEnum:
		return k.Name
	}
	return "<invalid>"
}
