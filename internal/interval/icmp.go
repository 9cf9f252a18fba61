package interval

import "eesi/internal/ir"

// AbstractICmp abstracts a compare instruction into the pair of intervals
// that hold on its true and false successors. It requires exactly one of
// the two operands to be an integer constant or null; otherwise both
// results are Top.
func AbstractICmp(cmp *ir.ICmpInst) (trueInterval, falseInterval Interval) {
	num, _, ok := constOperand(cmp.Left, cmp.Right)
	if !ok {
		return Top, Top
	}

	if num == 0 {
		// The predicate is read as-is regardless of which operand held the
		// constant; operand order is never swapped.
		switch cmp.Pred {
		case ir.SLE:
			return Lez, Gtz
		case ir.SLT:
			return Ltz, Gez
		case ir.SGT:
			return Gtz, Lez
		case ir.SGE:
			return Gez, Ltz
		case ir.EQ:
			return Zero, Ntz
		case ir.NE:
			return Ntz, Zero
		default:
			return Top, Top
		}
	}

	if num < 0 {
		// The negation of a single negative constant may still be
		// negative, so the false branch carries no information.
		return Ltz, Top
	}
	return Gtz, Top
}

// constOperand finds the single constant-integer-or-null operand among a
// compare's two operands. ok is false when neither or both operands are
// constant.
func constOperand(left, right ir.Value) (val int64, wasLeft bool, ok bool) {
	lv, lok := asConst(left)
	rv, rok := asConst(right)
	switch {
	case lok && !rok:
		return lv, true, true
	case rok && !lok:
		return rv, false, true
	default:
		return 0, false, false
	}
}

func asConst(v ir.Value) (int64, bool) {
	switch c := v.(type) {
	case *ir.ConstInt:
		return c.Val, true
	case *ir.ConstNull:
		return 0, true
	default:
		return 0, false
	}
}
