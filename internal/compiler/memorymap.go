package compiler

import (
	"fmt"

	"hc/internal/ast"
	"hc/internal/errors"
)

// extractMemoryMap scans the raw (pre-lowering) statement list for `init
// NAME @ ADDR` declarations, building the fixed name→address map and the
// textual-order name list memory assignment binds first (spec.md §4.9,
// §5's ordering guarantee). Duplicate names or addresses are semantic
// errors (spec.md §7).
func extractMemoryMap(list *ast.StatementList) (map[string]int, []string, []errors.CompilerError) {
	memory := map[string]int{}
	addrOwner := map[int]string{}
	var order []string
	var errs []errors.CompilerError

	var walk func(*ast.StatementList)
	walk = func(l *ast.StatementList) {
		if l == nil {
			return
		}
		for _, stmt := range l.Stmts {
			switch s := stmt.(type) {
			case *ast.InitialValueDeclaration:
				if _, dup := memory[s.Name]; dup {
					errs = append(errs, errors.CompilerError{
						Level:    errors.Error,
						Code:     errors.ErrorDuplicateVariable,
						Message:  fmt.Sprintf("Variable '%s' declared twice on line %d", s.Name, s.Position.Line),
						Position: s.Position,
					})
					continue
				}
				if owner, dup := addrOwner[s.Address]; dup {
					errs = append(errs, errors.CompilerError{
						Level:    errors.Error,
						Code:     errors.ErrorDuplicateAddress,
						Message:  fmt.Sprintf("Multiple variables declared at floor address %d on line %d", s.Address, s.Position.Line),
						Position: s.Position,
					})
					_ = owner
					continue
				}
				memory[s.Name] = s.Address
				addrOwner[s.Address] = s.Name
				order = append(order, s.Name)
			case *ast.Forever:
				walk(s.Body)
			case *ast.While:
				walk(s.Body)
			case *ast.If:
				walk(s.Then)
				walk(s.Else)
			}
		}
	}
	walk(list)

	return memory, order, errs
}
