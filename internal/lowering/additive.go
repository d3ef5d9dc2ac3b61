package lowering

import (
	"hc/internal/ast"
	"hc/internal/token"
)

// lowerAdditive implements spec.md §4.1's additive rules for Add, Subtract,
// and the pseudo Difference node, including the open question on which
// operand gets hoisted when both sides carry side effects (see DESIGN.md:
// lower left first, then unconditionally swap, then hoist whatever ends up
// on the right if it still isn't addable — matching the original's
// Add.validate loop).
func (lw *Lowerer) lowerAdditive(op ast.BinaryOp, leftRaw, rightRaw ast.Expr, pos token.Position) (ast.Expr, []ast.Stmt) {
	left, linj := lw.LowerValue(leftRaw)
	right, rinj := lw.LowerValue(rightRaw)
	injected := append(append([]ast.Stmt{}, linj...), rinj...)

	expr, more := lw.reduceAdditive(op, left, right, pos)
	return expr, append(injected, more...)
}

// reduceAdditive assumes left and right are already fully value-lowered
// (LowerValue has run) and applies folding, rotation, commutative swap, and
// hoisting until the result satisfies the post-lowering shape invariant.
func (lw *Lowerer) reduceAdditive(op ast.BinaryOp, left, right ast.Expr, pos token.Position) (ast.Expr, []ast.Stmt) {
	// 2. constant fold
	if nl, ok := isNumber(left); ok {
		if nr, ok2 := isNumber(right); ok2 {
			return &ast.Number{Position: pos, Value: foldAdditive(op, nl.Value, nr.Value)}, nil
		}
	}

	// 3. right is zero: x op 0 -> x  (also true for Difference: |x-0| = x
	// is not generally true for negative x, but Difference only ever feeds
	// a zero-comparison so sign is irrelevant to its caller)
	if nr, ok := isNumber(right); ok && nr.Value == 0 {
		return left, nil
	}
	// 4. left is zero, op commutative (Add, Difference): 0 op x -> x
	if op != ast.OpSubtract {
		if nl, ok := isNumber(left); ok && nl.Value == 0 {
			return right, nil
		}
	}

	// 6. rotate right-associative chains to the left (Add/Subtract only)
	if op != ast.OpDifference {
		for {
			rb, ok := right.(*ast.Binary)
			if !ok || (rb.Op != ast.OpAdd && rb.Op != ast.OpSubtract) {
				break
			}
			newOp, newOp2 := rotateOps(op, rb.Op)
			newLeft, extra1 := lw.reduceAdditive(newOp, left, rb.Left, pos)
			combined, extra2 := lw.reduceAdditive(newOp2, newLeft, rb.Right, pos)
			if len(extra1) == 0 && len(extra2) == 0 {
				if nb, ok := combined.(*ast.Binary); ok {
					left, right, op = nb.Left, nb.Right, nb.Op
					// re-run fold/zero checks on the new pair before
					// continuing the rotation loop
					if nl, ok := isNumber(left); ok {
						if nr, ok2 := isNumber(right); ok2 {
							return &ast.Number{Position: pos, Value: foldAdditive(op, nl.Value, nr.Value)}, nil
						}
					}
					continue
				}
				return combined, nil
			}
			return combined, append(extra1, extra2...)
		}
	}

	// 7. left already a VariableRef and op commutative: swap so right holds it
	if op == ast.OpAdd || op == ast.OpDifference {
		if _, ok := isVar(left); ok {
			if _, ok2 := isVar(right); !ok2 {
				left, right = right, left
			}
		}
	}

	if op != ast.OpDifference {
		// 5 / done: right already a VariableRef
		if _, ok := isVar(right); ok {
			return &ast.Binary{Position: pos, Op: op, Left: left, Right: right}, nil
		}

		// 8. hoist. If both sides have a side effect and the op cannot be
		// commuted (Subtract), the left side must be captured into a
		// temporary first so its effect precedes the temporary created for
		// the right side (which is injected ahead of the whole statement).
		var injected []ast.Stmt
		if op == ast.OpSubtract && HasSideEffects(left) && HasSideEffects(right) {
			var leftStmt ast.Stmt
			var leftRef *ast.VariableRef
			leftRef, leftStmt = lw.hoist(left, pos)
			left = leftRef
			injected = append(injected, leftStmt)
		}
		rightRef, rightStmt := lw.hoist(right, pos)
		injected = append(injected, rightStmt)
		return &ast.Binary{Position: pos, Op: op, Left: left, Right: rightRef}, injected
	}

	// Difference: both operands must become VariableRef or Number (the
	// dataflow pass can LoadConstant a Number); orientation is irrelevant so
	// no shape beyond "simple operand" is enforced here.
	var injected []ast.Stmt
	if !isSimple(left) {
		ref, stmt := lw.hoist(left, pos)
		injected = append(injected, stmt)
		left = ref
	}
	if !isSimple(right) {
		ref, stmt := lw.hoist(right, pos)
		injected = append(injected, stmt)
		right = ref
	}
	return &ast.Binary{Position: pos, Op: ast.OpDifference, Left: left, Right: right}, injected
}

func isSimple(e ast.Expr) bool {
	if _, ok := isVar(e); ok {
		return true
	}
	if _, ok := isNumber(e); ok {
		return true
	}
	return false
}

func foldAdditive(op ast.BinaryOp, l, r int) int {
	switch op {
	case ast.OpAdd:
		return l + r
	case ast.OpSubtract:
		return l - r
	case ast.OpDifference:
		d := l - r
		if d < 0 {
			d = -d
		}
		return d
	default:
		return 0
	}
}

// rotateOps implements the re-association identities:
//
//	a + (b + c) -> (a + b) + c
//	a + (b - c) -> (a + b) - c
//	a - (b + c) -> (a - b) - c
//	a - (b - c) -> (a - b) + c
func rotateOps(outer, inner ast.BinaryOp) (newOp, newOp2 ast.BinaryOp) {
	switch {
	case outer == ast.OpAdd && inner == ast.OpAdd:
		return ast.OpAdd, ast.OpAdd
	case outer == ast.OpAdd && inner == ast.OpSubtract:
		return ast.OpAdd, ast.OpSubtract
	case outer == ast.OpSubtract && inner == ast.OpAdd:
		return ast.OpSubtract, ast.OpSubtract
	default: // outer == Subtract && inner == Subtract
		return ast.OpSubtract, ast.OpAdd
	}
}
