package types

import (
	"fmt"
	"strings"
)

// MaxBits caps the width of any value that materializes as a literal or
// simulated register. Wider shapes can be described by a Kind but never hold
// a concrete value.
const MaxBits = 128

// TypedBits is a concrete bit pattern paired with its Kind. Bits are stored
// LSB first; len(Bits) always equals Kind.Bits().
type TypedBits struct {
	Bits []bool `msgpack:"bits"`
	Kind Kind   `msgpack:"kind"`
}

// Zero returns the all-zero value of the given kind.
func Zero(kind Kind) TypedBits {
	return TypedBits{Bits: make([]bool, kind.Bits()), Kind: kind}
}

// FromUint builds a value of kind (Bits or Signed) from an unsigned integer.
// Fails if the value does not fit the width.
func FromUint(kind Kind, v uint64) (TypedBits, error) {
	w := kind.Bits()
	if kind.Tag != KindBits && kind.Tag != KindSigned {
		return TypedBits{}, fmt.Errorf("cannot build %s from integer %d", kind, v)
	}
	if w > MaxBits {
		return TypedBits{}, fmt.Errorf("%s exceeds the %d-bit limit", kind, MaxBits)
	}
	if w < 64 && v >= 1<<uint(w) {
		return TypedBits{}, fmt.Errorf("value %d does not fit %s", v, kind)
	}
	if kind.Tag == KindSigned && w <= 64 && v >= 1<<uint(w-1) {
		return TypedBits{}, fmt.Errorf("value %d does not fit %s", v, kind)
	}
	out := Zero(kind)
	for i := 0; i < w && i < 64; i++ {
		out.Bits[i] = v&(1<<uint(i)) != 0
	}
	return out, nil
}

// FromInt builds a signed or unsigned value from a signed integer, sign
// extending across the full width. Negative values require a Signed kind.
func FromInt(kind Kind, v int64) (TypedBits, error) {
	if v >= 0 {
		return FromUint(kind, uint64(v))
	}
	if kind.Tag != KindSigned {
		return TypedBits{}, fmt.Errorf("value %d does not fit %s", v, kind)
	}
	w := kind.Bits()
	if w > MaxBits {
		return TypedBits{}, fmt.Errorf("%s exceeds the %d-bit limit", kind, MaxBits)
	}
	if w < 64 && v < -(1<<uint(w-1)) {
		return TypedBits{}, fmt.Errorf("value %d does not fit %s", v, kind)
	}
	out := Zero(kind)
	for i := 0; i < w; i++ {
		if i < 64 {
			out.Bits[i] = uint64(v)&(1<<uint(i)) != 0
		} else {
			out.Bits[i] = true // sign extension
		}
	}
	return out, nil
}

// MakeBool returns the b1 encoding of a boolean.
func MakeBool(b bool) TypedBits {
	out := Zero(MakeBits(1))
	out.Bits[0] = b
	return out
}

// Uint64 reads the value as an unsigned integer. Fails if any bit above 63
// is set.
func (t TypedBits) Uint64() (uint64, error) {
	var v uint64
	for i, b := range t.Bits {
		if !b {
			continue
		}
		if i > 63 {
			return 0, fmt.Errorf("value of %s does not fit in 64 bits", t.Kind)
		}
		v |= 1 << uint(i)
	}
	return v, nil
}

// Int64 reads the value as a signed integer, honoring the kind's signedness.
// Fails if the value is not representable.
func (t TypedBits) Int64() (int64, error) {
	w := len(t.Bits)
	if w == 0 {
		return 0, nil
	}
	sign := t.Kind.IsSigned() && t.Bits[w-1]
	var v uint64
	if sign {
		v = ^uint64(0)
	}
	for i := 0; i < w; i++ {
		if i >= 63 {
			// bit 63 is the int64 sign; it and everything above must
			// match the sign extension
			if t.Bits[i] != sign {
				return 0, fmt.Errorf("value of %s does not fit in 64 bits", t.Kind)
			}
			continue
		}
		if t.Bits[i] {
			v |= 1 << uint(i)
		} else {
			v &^= 1 << uint(i)
		}
	}
	return int64(v), nil
}

// AnySet reports whether any bit is set; the b1 truth test.
func (t TypedBits) AnySet() bool {
	for _, b := range t.Bits {
		if b {
			return true
		}
	}
	return false
}

// Equal compares kind and bit pattern.
func (t TypedBits) Equal(other TypedBits) bool {
	if !t.Kind.Equal(other.Kind) || len(t.Bits) != len(other.Bits) {
		return false
	}
	for i := range t.Bits {
		if t.Bits[i] != other.Bits[i] {
			return false
		}
	}
	return true
}

// Extract copies the bit range [start, end) and attaches the given kind,
// whose width must match the range.
func (t TypedBits) Extract(start, end int, kind Kind) (TypedBits, error) {
	if start < 0 || end < start || end > len(t.Bits) {
		return TypedBits{}, fmt.Errorf("bit range %d..%d out of bounds for %s", start, end, t.Kind)
	}
	if kind.Bits() != end-start {
		return TypedBits{}, fmt.Errorf("bit range %d..%d does not match %s", start, end, kind)
	}
	out := Zero(kind)
	copy(out.Bits, t.Bits[start:end])
	return out, nil
}

// Splice returns a copy with the bit range [start, end) replaced by sub.
func (t TypedBits) Splice(start, end int, sub TypedBits) (TypedBits, error) {
	if start < 0 || end < start || end > len(t.Bits) {
		return TypedBits{}, fmt.Errorf("bit range %d..%d out of bounds for %s", start, end, t.Kind)
	}
	if len(sub.Bits) != end-start {
		return TypedBits{}, fmt.Errorf("cannot splice %s into bit range %d..%d", sub.Kind, start, end)
	}
	out := TypedBits{Bits: append([]bool(nil), t.Bits...), Kind: t.Kind}
	copy(out.Bits[start:end], sub.Bits)
	return out, nil
}

func (t TypedBits) bitlike() error {
	if t.Kind.Tag != KindBits && t.Kind.Tag != KindSigned {
		return fmt.Errorf("arithmetic needs a bit-vector, got %s", t.Kind)
	}
	return nil
}

func (t TypedBits) matchWidth(other TypedBits) error {
	if err := t.bitlike(); err != nil {
		return err
	}
	if err := other.bitlike(); err != nil {
		return err
	}
	if len(t.Bits) != len(other.Bits) {
		return fmt.Errorf("width mismatch: %s vs %s", t.Kind, other.Kind)
	}
	return nil
}

// Add is wrapping two's-complement addition.
func (t TypedBits) Add(other TypedBits) (TypedBits, error) {
	if err := t.matchWidth(other); err != nil {
		return TypedBits{}, err
	}
	out := Zero(t.Kind)
	carry := false
	for i := range t.Bits {
		a, b := t.Bits[i], other.Bits[i]
		out.Bits[i] = a != b != carry
		carry = (a && b) || (carry && (a != b))
	}
	return out, nil
}

// Sub is wrapping two's-complement subtraction.
func (t TypedBits) Sub(other TypedBits) (TypedBits, error) {
	neg, err := other.Neg()
	if err != nil {
		return TypedBits{}, err
	}
	return t.Add(neg)
}

// Mul is wrapping multiplication at the operand width.
func (t TypedBits) Mul(other TypedBits) (TypedBits, error) {
	if err := t.matchWidth(other); err != nil {
		return TypedBits{}, err
	}
	out := Zero(t.Kind)
	acc := TypedBits{Bits: append([]bool(nil), t.Bits...), Kind: t.Kind}
	for i := range other.Bits {
		if other.Bits[i] {
			shifted := shiftLeft(acc.Bits, i)
			sum, err := out.Add(TypedBits{Bits: shifted, Kind: t.Kind})
			if err != nil {
				return TypedBits{}, err
			}
			out = sum
		}
	}
	return out, nil
}

// Neg is two's-complement negation at the same width.
func (t TypedBits) Neg() (TypedBits, error) {
	inv, err := t.Not()
	if err != nil {
		return TypedBits{}, err
	}
	one := Zero(t.Kind)
	if len(one.Bits) > 0 {
		one.Bits[0] = true
	}
	return inv.Add(one)
}

// Not inverts every bit.
func (t TypedBits) Not() (TypedBits, error) {
	if err := t.bitlike(); err != nil {
		return TypedBits{}, err
	}
	out := Zero(t.Kind)
	for i, b := range t.Bits {
		out.Bits[i] = !b
	}
	return out, nil
}

// And, Or, Xor are bitwise at matching width.
func (t TypedBits) And(other TypedBits) (TypedBits, error) {
	return t.bitwise(other, func(a, b bool) bool { return a && b })
}

func (t TypedBits) Or(other TypedBits) (TypedBits, error) {
	return t.bitwise(other, func(a, b bool) bool { return a || b })
}

func (t TypedBits) Xor(other TypedBits) (TypedBits, error) {
	return t.bitwise(other, func(a, b bool) bool { return a != b })
}

func (t TypedBits) bitwise(other TypedBits, f func(a, b bool) bool) (TypedBits, error) {
	if err := t.matchWidth(other); err != nil {
		return TypedBits{}, err
	}
	out := Zero(t.Kind)
	for i := range t.Bits {
		out.Bits[i] = f(t.Bits[i], other.Bits[i])
	}
	return out, nil
}

// Shl shifts left by the unsigned value of amount, filling with zeros.
func (t TypedBits) Shl(amount TypedBits) (TypedBits, error) {
	if err := t.bitlike(); err != nil {
		return TypedBits{}, err
	}
	n, err := amount.Uint64()
	if err != nil {
		return TypedBits{}, err
	}
	if n > uint64(len(t.Bits)) {
		n = uint64(len(t.Bits))
	}
	return TypedBits{Bits: shiftLeft(t.Bits, int(n)), Kind: t.Kind}, nil
}

// Shr shifts right by the unsigned value of amount; arithmetic when the
// operand kind is signed, logical otherwise.
func (t TypedBits) Shr(amount TypedBits) (TypedBits, error) {
	if err := t.bitlike(); err != nil {
		return TypedBits{}, err
	}
	n, err := amount.Uint64()
	if err != nil {
		return TypedBits{}, err
	}
	w := len(t.Bits)
	if n > uint64(w) {
		n = uint64(w)
	}
	fill := t.Kind.IsSigned() && w > 0 && t.Bits[w-1]
	out := Zero(t.Kind)
	for i := 0; i < w; i++ {
		if i+int(n) < w {
			out.Bits[i] = t.Bits[i+int(n)]
		} else {
			out.Bits[i] = fill
		}
	}
	return out, nil
}

// CmpEq and friends compare at matching width and yield a b1 result.
// Ordering honors the operands' signedness.
func (t TypedBits) CmpEq(other TypedBits) (TypedBits, error) {
	if err := t.matchWidth(other); err != nil {
		return TypedBits{}, err
	}
	eq := true
	for i := range t.Bits {
		if t.Bits[i] != other.Bits[i] {
			eq = false
			break
		}
	}
	return MakeBool(eq), nil
}

func (t TypedBits) CmpLt(other TypedBits) (TypedBits, error) {
	if err := t.matchWidth(other); err != nil {
		return TypedBits{}, err
	}
	return MakeBool(lessThan(t, other)), nil
}

func (t TypedBits) CmpLe(other TypedBits) (TypedBits, error) {
	gt, err := other.CmpLt(t)
	if err != nil {
		return TypedBits{}, err
	}
	return MakeBool(!gt.AnySet()), nil
}

func lessThan(a, b TypedBits) bool {
	w := len(a.Bits)
	if w == 0 {
		return false
	}
	if a.Kind.IsSigned() {
		sa, sb := a.Bits[w-1], b.Bits[w-1]
		if sa != sb {
			return sa
		}
	}
	for i := w - 1; i >= 0; i-- {
		if a.Bits[i] != b.Bits[i] {
			return b.Bits[i]
		}
	}
	return false
}

// ReduceAll yields b1(1) when every bit is set.
func (t TypedBits) ReduceAll() (TypedBits, error) {
	if err := t.bitlike(); err != nil {
		return TypedBits{}, err
	}
	for _, b := range t.Bits {
		if !b {
			return MakeBool(false), nil
		}
	}
	return MakeBool(true), nil
}

// ReduceAny yields b1(1) when any bit is set.
func (t TypedBits) ReduceAny() (TypedBits, error) {
	if err := t.bitlike(); err != nil {
		return TypedBits{}, err
	}
	return MakeBool(t.AnySet()), nil
}

// ReduceXor yields the parity of the value.
func (t TypedBits) ReduceXor() (TypedBits, error) {
	if err := t.bitlike(); err != nil {
		return TypedBits{}, err
	}
	parity := false
	for _, b := range t.Bits {
		parity = parity != b
	}
	return MakeBool(parity), nil
}

// AsBits reinterprets the value as an unsigned vector of width n. Extension
// pads with zeros; truncation is allowed only when the dropped bits are all
// zero, so the cast never silently changes the value.
func (t TypedBits) AsBits(n int) (TypedBits, error) {
	if err := t.bitlike(); err != nil {
		return TypedBits{}, err
	}
	if n > MaxBits {
		return TypedBits{}, fmt.Errorf("b%d exceeds the %d-bit limit", n, MaxBits)
	}
	out := Zero(MakeBits(n))
	for i := 0; i < n && i < len(t.Bits); i++ {
		out.Bits[i] = t.Bits[i]
	}
	for i := n; i < len(t.Bits); i++ {
		if t.Bits[i] {
			return TypedBits{}, fmt.Errorf("cast of %s to b%d drops set bits", t.Kind, n)
		}
	}
	return out, nil
}

// AsSigned reinterprets the value as a signed vector of width n, sign
// extending on growth. Truncation is allowed only when the dropped bits all
// equal the new sign bit.
func (t TypedBits) AsSigned(n int) (TypedBits, error) {
	if err := t.bitlike(); err != nil {
		return TypedBits{}, err
	}
	if n > MaxBits {
		return TypedBits{}, fmt.Errorf("s%d exceeds the %d-bit limit", n, MaxBits)
	}
	if n == 0 {
		return TypedBits{}, fmt.Errorf("cannot cast %s to a zero-width signed vector", t.Kind)
	}
	w := len(t.Bits)
	srcSign := t.Kind.IsSigned() && w > 0 && t.Bits[w-1]
	out := Zero(MakeSigned(n))
	for i := 0; i < n; i++ {
		if i < w {
			out.Bits[i] = t.Bits[i]
		} else {
			out.Bits[i] = srcSign
		}
	}
	newSign := out.Bits[n-1]
	if !t.Kind.IsSigned() && newSign && n <= w {
		// a non-negative value must not flip negative
		return TypedBits{}, fmt.Errorf("cast of %s to s%d changes the value", t.Kind, n)
	}
	for i := n; i < w; i++ {
		if t.Bits[i] != newSign {
			return TypedBits{}, fmt.Errorf("cast of %s to s%d changes the value", t.Kind, n)
		}
	}
	return out, nil
}

// BinaryString renders the bits MSB first.
func (t TypedBits) BinaryString() string {
	var sb strings.Builder
	for i := len(t.Bits) - 1; i >= 0; i-- {
		if t.Bits[i] {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// String renders the value as kind(0x…); the zero-width value renders as ().
func (t TypedBits) String() string {
	if len(t.Bits) == 0 {
		return "()"
	}
	nibbles := (len(t.Bits) + 3) / 4
	var sb strings.Builder
	for n := nibbles - 1; n >= 0; n-- {
		v := 0
		for i := 0; i < 4; i++ {
			idx := n*4 + i
			if idx < len(t.Bits) && t.Bits[idx] {
				v |= 1 << uint(i)
			}
		}
		fmt.Fprintf(&sb, "%x", v)
	}
	return fmt.Sprintf("%s(0x%s)", t.Kind, sb.String())
}

func shiftLeft(bits []bool, n int) []bool {
	out := make([]bool, len(bits))
	for i := len(bits) - 1; i >= n; i-- {
		out[i] = bits[i-n]
	}
	return out
}
