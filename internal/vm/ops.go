package vm

import (
	"fmt"

	"silica/internal/ast"
	"silica/internal/types"
)

// applyBinary evaluates one binary op. The comparisons the value algebra
// does not provide directly are composed from the ones it does: a != b is
// !(a == b), a > b is b < a, a >= b is b <= a.
func applyBinary(op ast.BinOp, left, right types.TypedBits) (types.TypedBits, error) {
	switch op {
	case ast.BinAdd:
		return left.Add(right)
	case ast.BinSub:
		return left.Sub(right)
	case ast.BinMul:
		return left.Mul(right)
	case ast.BinAnd:
		return left.And(right)
	case ast.BinOr:
		return left.Or(right)
	case ast.BinXor:
		return left.Xor(right)
	case ast.BinShl:
		return left.Shl(right)
	case ast.BinShr:
		return left.Shr(right)
	case ast.BinEq:
		return left.CmpEq(right)
	case ast.BinNe:
		eq, err := left.CmpEq(right)
		if err != nil {
			return types.TypedBits{}, err
		}
		return eq.Not()
	case ast.BinLt:
		return left.CmpLt(right)
	case ast.BinLe:
		return left.CmpLe(right)
	case ast.BinGt:
		return right.CmpLt(left)
	case ast.BinGe:
		return right.CmpLe(left)
	default:
		return types.TypedBits{}, fmt.Errorf("unknown binary operator %d", op)
	}
}

func applyUnary(op ast.UnOp, x types.TypedBits) (types.TypedBits, error) {
	switch op {
	case ast.UnNeg:
		return x.Neg()
	case ast.UnNot:
		return x.Not()
	case ast.UnAll:
		return x.ReduceAll()
	case ast.UnAny:
		return x.ReduceAny()
	case ast.UnXor:
		return x.ReduceXor()
	default:
		return types.TypedBits{}, fmt.Errorf("unknown unary operator %d", op)
	}
}
