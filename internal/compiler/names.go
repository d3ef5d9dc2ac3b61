package compiler

import (
	"hc/internal/ast"
	"hc/internal/namespace"
)

// collectNames walks the raw AST registering every variable name already in
// use, so the lowerer's fresh-name generator never collides with a name the
// programmer wrote.
func collectNames(list *ast.StatementList, ns *namespace.Namespace) {
	if list == nil {
		return
	}
	for _, stmt := range list.Stmts {
		collectStmtNames(stmt, ns)
	}
}

func collectStmtNames(stmt ast.Stmt, ns *namespace.Namespace) {
	switch s := stmt.(type) {
	case *ast.InitialValueDeclaration:
		ns.AddName(s.Name)
	case *ast.ExprLine:
		collectExprNames(s.Expr, ns)
	case *ast.Output:
		collectExprNames(s.Expr, ns)
	case *ast.Forever:
		collectNames(s.Body, ns)
	case *ast.While:
		collectExprNames(s.Cond, ns)
		collectNames(s.Body, ns)
	case *ast.If:
		collectExprNames(s.Cond, ns)
		collectNames(s.Then, ns)
		collectNames(s.Else, ns)
	}
}

func collectExprNames(e ast.Expr, ns *namespace.Namespace) {
	switch v := e.(type) {
	case *ast.VariableRef:
		ns.AddName(v.Name)
	case *ast.Assignment:
		ns.AddName(v.Name)
		collectExprNames(v.Expr, ns)
	case *ast.Binary:
		collectExprNames(v.Left, ns)
		collectExprNames(v.Right, ns)
	case *ast.Compare:
		collectExprNames(v.Left, ns)
		collectExprNames(v.Right, ns)
	case *ast.Logical:
		collectExprNames(v.Left, ns)
		collectExprNames(v.Right, ns)
	case *ast.LogicalNot:
		collectExprNames(v.Operand, ns)
	case *ast.Negate:
		collectExprNames(v.Operand, ns)
	case *ast.InlineStatementExpr:
		for _, stmt := range v.Stmts {
			collectStmtNames(stmt, ns)
		}
		collectExprNames(v.Result, ns)
	}
}
