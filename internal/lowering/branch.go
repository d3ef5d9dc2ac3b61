package lowering

import (
	"hc/internal/ast"
	"hc/internal/token"
)

// LowerBranch rewrites e for use as an if/while condition, returning a
// branchable form: *ast.Boolean, *ast.Compare (against a Number(0) on the
// right), *ast.LogicalNot, *ast.Logical, or an *ast.InlineStatementExpr
// wrapping one of those. Any helper statements needed unconditionally
// (i.e. that must run regardless of which branch is taken) are returned
// separately; statements that must run only along the right operand's
// short-circuit path are wrapped inline instead.
func (lw *Lowerer) LowerBranch(e ast.Expr) (ast.Expr, []ast.Stmt) {
	switch v := e.(type) {
	case *ast.Boolean:
		return e, nil
	case *ast.Compare:
		return lw.lowerCompareBranch(v)
	case *ast.LogicalNot:
		operand, inj := lw.LowerBranch(v.Operand)
		return &ast.LogicalNot{Position: v.Position, Operand: operand}, inj
	case *ast.Logical:
		left, linj := lw.LowerBranch(v.Left)
		right, rinj := lw.LowerBranch(v.Right)
		if len(rinj) > 0 {
			right = &ast.InlineStatementExpr{Position: v.Position, Stmts: rinj, Result: right}
		}
		return &ast.Logical{Position: v.Position, Kind_: v.Kind_, Left: left, Right: right}, linj
	case *ast.InlineStatementExpr:
		result, inj := lw.LowerBranch(v.Result)
		return &ast.InlineStatementExpr{Position: v.Position, Stmts: append(append([]ast.Stmt{}, v.Stmts...), inj...), Result: result}, nil
	default:
		// A plain integer-kind expression used as a condition is treated as
		// an implicit "!= 0" test.
		return lw.lowerCompareBranch(&ast.Compare{Position: e.Pos(), Op: ast.CmpNe, Left: e, Right: &ast.Number{Position: e.Pos(), Value: 0}})
	}
}

// lowerCompareBranch implements spec.md §4.1's equality/inequality rules:
// lower both sides, constant-fold if possible, otherwise reduce to
// "expr op 0" — putting a zero operand on the right directly, or combining
// two non-zero operands with Subtract (ordered, for relational operators)
// or Difference (orientation-free, for equality operators, when both sides
// are already variables).
func (lw *Lowerer) lowerCompareBranch(c *ast.Compare) (ast.Expr, []ast.Stmt) {
	pos := c.Position

	// Equality/inequality over two boolean-kind operands has no integer
	// representation to difference against zero — it denotes XNOR/XOR, and
	// compiles by composing the left's branch block with two copies of the
	// right's branch block, one for each truth value of the left. Expressing
	// that composition as a Logical tree ((a&&r1)||(!a&&r2)) lets the
	// existing Logical/LogicalNot branch-building machinery in
	// ir.Builder.CreateBranchBlock build those two copies for free.
	if (c.Op == ast.CmpEq || c.Op == ast.CmpNe) && c.Left.Kind() == ast.KindBoolean && c.Right.Kind() == ast.KindBoolean {
		return lw.LowerBranch(lw.composeBooleanEquality(c.Op, c.Left, c.Right, pos))
	}

	left, linj := lw.LowerValue(c.Left)
	right, rinj := lw.LowerValue(c.Right)
	injected := append(append([]ast.Stmt{}, linj...), rinj...)

	if nl, ok := isNumber(left); ok {
		if nr, ok2 := isNumber(right); ok2 {
			return &ast.Boolean{Position: pos, Value: foldCompare(c.Op, nl.Value, nr.Value)}, injected
		}
	}

	if nr, ok := isNumber(right); ok && nr.Value == 0 {
		expr, more := lw.reduceCompareOperand(c.Op, left, pos)
		return expr, append(injected, more...)
	}
	if nl, ok := isNumber(left); ok && nl.Value == 0 {
		op := flipCompare(c.Op)
		expr, more := lw.reduceCompareOperand(op, right, pos)
		return expr, append(injected, more...)
	}

	var diff ast.Expr
	var more []ast.Stmt
	if c.Op == ast.CmpEq || c.Op == ast.CmpNe {
		if _, lok := isVar(left); lok {
			if _, rok := isVar(right); rok {
				diff, more = lw.reduceAdditive(ast.OpDifference, left, right, pos)
			}
		}
	}
	if diff == nil {
		diff, more = lw.reduceAdditive(ast.OpSubtract, left, right, pos)
	}
	expr, more2 := lw.reduceCompareOperand(c.Op, diff, pos)
	return expr, append(injected, append(more, more2...)...)
}

// composeBooleanEquality builds (a && r1) || (!a && r2), choosing r1/r2 from
// b or !b depending on whether op is the XNOR (CmpEq) or XOR (CmpNe) test.
// a and b are reused verbatim (unlowered) in both arms; each arm lowers its
// own copy independently via the caller's subsequent LowerBranch call.
func (lw *Lowerer) composeBooleanEquality(op ast.CompareOp, a, b ast.Expr, pos token.Position) ast.Expr {
	notA := &ast.LogicalNot{Position: pos, Operand: a}
	notB := &ast.LogicalNot{Position: pos, Operand: b}

	rWhenATrue, rWhenAFalse := b, notB
	if op == ast.CmpNe {
		rWhenATrue, rWhenAFalse = notB, b
	}

	return &ast.Logical{
		Position: pos,
		Kind_:    ast.LogicalOrKind,
		Left:     &ast.Logical{Position: pos, Kind_: ast.LogicalAndKind, Left: a, Right: rWhenATrue},
		Right:    &ast.Logical{Position: pos, Kind_: ast.LogicalAndKind, Left: notA, Right: rWhenAFalse},
	}
}

// reduceCompareOperand ensures operand (already reduced to something
// comparable against zero) ends up as a VariableRef, hoisting it into a
// fresh temporary otherwise, and returns the final Compare node.
func (lw *Lowerer) reduceCompareOperand(op ast.CompareOp, operand ast.Expr, pos token.Position) (ast.Expr, []ast.Stmt) {
	if isSimple(operand) {
		return &ast.Compare{Position: pos, Op: op, Left: operand, Right: &ast.Number{Position: pos, Value: 0}}, nil
	}
	ref, stmt := lw.hoist(operand, pos)
	return &ast.Compare{Position: pos, Op: op, Left: ref, Right: &ast.Number{Position: pos, Value: 0}}, []ast.Stmt{stmt}
}

func foldCompare(op ast.CompareOp, l, r int) bool {
	switch op {
	case ast.CmpEq:
		return l == r
	case ast.CmpNe:
		return l != r
	case ast.CmpLt:
		return l < r
	case ast.CmpLe:
		return l <= r
	case ast.CmpGt:
		return l > r
	case ast.CmpGe:
		return l >= r
	default:
		return false
	}
}

// flipCompare returns the operator for (b flipCompare(op) a) given the
// original test was (a op b), used when a zero literal is swapped from the
// left to the right side.
func flipCompare(op ast.CompareOp) ast.CompareOp {
	switch op {
	case ast.CmpLt:
		return ast.CmpGt
	case ast.CmpLe:
		return ast.CmpGe
	case ast.CmpGt:
		return ast.CmpLt
	case ast.CmpGe:
		return ast.CmpLe
	default:
		return op // Eq/Ne are symmetric
	}
}
