// Package lowering rewrites HC expressions into the emission-ready form the
// IR builder requires: every binary operation has exactly one operand that
// is a bare VariableRef (or, for Difference, both operands reduced to
// VariableRef/Number), multiplication is expanded into additions, and
// short-circuit boolean/comparison expressions are reduced to a small
// branchable vocabulary. Lowering runs in one of two dispatch modes, mirroring
// the original implementation's `validate`/`validate_branchable` split.
package lowering

import (
	"fmt"

	"hc/internal/ast"
	"hc/internal/errors"
	"hc/internal/namespace"
	"hc/internal/token"
)

// Lowerer holds the namespace fresh names are minted from and accumulates
// semantic errors encountered while rewriting (invalid multiplication,
// in particular).
type Lowerer struct {
	ns   *namespace.Namespace
	errs []errors.CompilerError
}

func New(ns *namespace.Namespace) *Lowerer {
	return &Lowerer{ns: ns}
}

func (lw *Lowerer) Errors() []errors.CompilerError { return lw.errs }

func (lw *Lowerer) errorf(pos token.Position, code, format string, args ...interface{}) {
	lw.errs = append(lw.errs, errors.CompilerError{
		Level:    errors.Error,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Position: pos,
	})
}

func (lw *Lowerer) freshVar(pos token.Position) (*ast.VariableRef, string) {
	name := lw.ns.GetUniqueName()
	return &ast.VariableRef{Position: pos, Name: name}, name
}

// hoist injects `name = value` ahead of the enclosing statement and returns
// a VariableRef to the fresh name.
func (lw *Lowerer) hoist(value ast.Expr, pos token.Position) (*ast.VariableRef, ast.Stmt) {
	ref, name := lw.freshVar(pos)
	stmt := &ast.ExprLine{Position: pos, Expr: &ast.Assignment{Position: pos, Name: name, Expr: value}}
	return ref, stmt
}

// HasSideEffects reports whether evaluating e can have an observable effect
// (reading input, writing a variable) beyond producing its result value.
func HasSideEffects(e ast.Expr) bool {
	switch v := e.(type) {
	case *ast.Input:
		return true
	case *ast.Assignment:
		return true
	case *ast.Number, *ast.Boolean, *ast.VariableRef:
		return false
	case *ast.Binary:
		return HasSideEffects(v.Left) || HasSideEffects(v.Right)
	case *ast.Compare:
		return HasSideEffects(v.Left) || HasSideEffects(v.Right)
	case *ast.Logical:
		return HasSideEffects(v.Left) || HasSideEffects(v.Right)
	case *ast.LogicalNot:
		return HasSideEffects(v.Operand)
	case *ast.Negate:
		return HasSideEffects(v.Operand)
	case *ast.InlineStatementExpr:
		return len(v.Stmts) > 0 || HasSideEffects(v.Result)
	default:
		return false
	}
}

// isVar reports whether e is already a bare VariableRef.
func isVar(e ast.Expr) (*ast.VariableRef, bool) {
	v, ok := e.(*ast.VariableRef)
	return v, ok
}

func isNumber(e ast.Expr) (*ast.Number, bool) {
	n, ok := e.(*ast.Number)
	return n, ok
}

// LowerValue rewrites e for use as an r-value, returning the replacement
// expression and any statements that must be injected ahead of the
// enclosing statement to preserve evaluation order and side effects.
func (lw *Lowerer) LowerValue(e ast.Expr) (ast.Expr, []ast.Stmt) {
	switch v := e.(type) {
	case *ast.VariableRef, *ast.Number, *ast.Boolean:
		return e, nil
	case *ast.Input:
		return e, nil
	case *ast.Negate:
		// Desugar -E to (0 - E) so the additive machinery folds constants
		// and otherwise treats it exactly like a written Subtract.
		return lw.lowerAdditive(ast.OpSubtract, &ast.Number{Position: v.Position, Value: 0}, v.Operand, v.Position)
	case *ast.Assignment:
		rhs, inj := lw.LowerValue(v.Expr)
		return &ast.Assignment{Position: v.Position, Name: v.Name, Expr: rhs}, inj
	case *ast.Binary:
		switch v.Op {
		case ast.OpAdd, ast.OpSubtract, ast.OpDifference:
			return lw.lowerAdditive(v.Op, v.Left, v.Right, v.Position)
		case ast.OpMultiply:
			return lw.lowerMultiply(v.Left, v.Right, v.Position)
		}
		return e, nil
	case *ast.InlineStatementExpr:
		result, inj := lw.LowerValue(v.Result)
		return &ast.InlineStatementExpr{Position: v.Position, Stmts: v.Stmts, Result: result}, inj
	case *ast.Compare, *ast.Logical, *ast.LogicalNot:
		// Boolean-kind expressions reaching value position have no
		// representation on the accumulator machine; callers are expected
		// to route these through LowerBranch instead. Defensive fallback:
		// lower as a branch and materialize 1/0 via an inline statement.
		branch, inj := lw.LowerBranch(e)
		return lw.materializeBoolean(branch, e.Pos()), inj
	default:
		return e, nil
	}
}

// materializeBoolean is a defensive fallback: HC's grammar never stores a
// boolean, but if a comparison ends up needed as a value we represent it as
// an if/else assignment into a fresh temp, to keep the lowerer total.
func (lw *Lowerer) materializeBoolean(branch ast.Expr, pos token.Position) ast.Expr {
	ref, name := lw.freshVar(pos)
	_ = ref
	// Represent `tmp = branch ? 1 : 0` as an InlineStatementExpr whose
	// statements are an If/Else assigning the temp, and whose result is the
	// temp itself. This never occurs for grammar-legal HC programs; it
	// exists only so boolean misuse degrades gracefully instead of panicking.
	ifStmt := &ast.If{
		Position: pos,
		Cond:     branch,
		Then:     &ast.StatementList{Stmts: []ast.Stmt{&ast.ExprLine{Position: pos, Expr: &ast.Assignment{Position: pos, Name: name, Expr: &ast.Number{Position: pos, Value: 1}}}}},
		Else:     &ast.StatementList{Stmts: []ast.Stmt{&ast.ExprLine{Position: pos, Expr: &ast.Assignment{Position: pos, Name: name, Expr: &ast.Number{Position: pos, Value: 0}}}}},
	}
	return &ast.InlineStatementExpr{Position: pos, Stmts: []ast.Stmt{ifStmt}, Result: &ast.VariableRef{Position: pos, Name: name}}
}

// LowerStatementList lowers every statement in list in place, threading
// injected helper statements ahead of the statement that produced them.
func (lw *Lowerer) LowerStatementList(list *ast.StatementList) *ast.StatementList {
	out := &ast.StatementList{}
	for _, stmt := range list.Stmts {
		out.Stmts = append(out.Stmts, lw.lowerStmt(stmt)...)
	}
	return out
}

func (lw *Lowerer) lowerStmt(stmt ast.Stmt) []ast.Stmt {
	switch s := stmt.(type) {
	case *ast.InitialValueDeclaration:
		return []ast.Stmt{s}
	case *ast.ExprLine:
		e, inj := lw.LowerValue(s.Expr)
		return append(inj, &ast.ExprLine{Position: s.Position, Expr: e})
	case *ast.Output:
		e, inj := lw.LowerValue(s.Expr)
		return append(inj, &ast.Output{Position: s.Position, Expr: e})
	case *ast.Forever:
		return []ast.Stmt{&ast.Forever{Position: s.Position, Body: lw.LowerStatementList(s.Body)}}
	case *ast.While:
		cond, inj := lw.LowerBranch(s.Cond)
		body := lw.LowerStatementList(s.Body)
		// Unlike If, a while condition is re-evaluated every iteration: any
		// statements its lowering needed to inject (hoisting a difference
		// into a temp, say) must be re-run each pass through the loop, not
		// hoisted once ahead of it. Folding them into an InlineStatementExpr
		// around cond keeps them inside the condition's own branch block.
		if len(inj) > 0 {
			cond = &ast.InlineStatementExpr{Position: s.Position, Stmts: inj, Result: cond}
		}
		return []ast.Stmt{&ast.While{Position: s.Position, Cond: cond, Body: body}}
	case *ast.If:
		cond, inj := lw.LowerBranch(s.Cond)
		then := lw.LowerStatementList(s.Then)
		var els *ast.StatementList
		if s.Else != nil {
			els = lw.LowerStatementList(s.Else)
		}
		return append(inj, &ast.If{Position: s.Position, Cond: cond, Then: then, Else: els})
	default:
		return []ast.Stmt{stmt}
	}
}
