package ir

import (
	"strings"

	"hc/internal/ast"
	"hc/internal/errors"
)

// Builder walks a fully-lowered AST and links the Block/CompoundBlock graph
// described in spec.md §4.2-§4.4. It assumes lowering has already run: every
// expression it encounters is in emission-ready form.
type Builder struct {
	nextID int
}

func NewBuilder() *Builder { return &Builder{} }

func (bld *Builder) newBlock(lineno int) *Block {
	b := NewBlock(bld.nextID, lineno)
	bld.nextID++
	return b
}

// EmitStatementList walks a statement list, chaining each statement's block
// to the next via AssignNext, and returns a BlockRef spanning the whole
// list. An empty list synthesizes a single empty block, and
// InitialValueDeclaration statements (handled separately by the memory-map
// stage) contribute no block of their own.
func (bld *Builder) EmitStatementList(list *ast.StatementList) BlockRef {
	var firstRef BlockRef
	var prevExits []*Block

	for _, stmt := range list.Stmts {
		ref := bld.emitStmt(stmt)
		if ref == nil {
			continue
		}
		if firstRef == nil {
			firstRef = ref
		}
		for _, pe := range prevExits {
			pe.AssignNext(ref)
		}
		prevExits = ref.ExitBlocks()
	}

	if firstRef == nil {
		blk := bld.newBlock(list.Pos().Line)
		return blk
	}
	return NewCompoundBlock(firstRef, prevExits)
}

func (bld *Builder) emitStmt(stmt ast.Stmt) BlockRef {
	switch s := stmt.(type) {
	case *ast.InitialValueDeclaration:
		return nil

	case *ast.ExprLine:
		blk := bld.newBlock(s.Position.Line)
		bld.emitValue(blk, s.Expr)
		return blk

	case *ast.Output:
		blk := bld.newBlock(s.Position.Line)
		bld.emitValue(blk, s.Expr)
		blk.AddInstruction(NewOutput())
		return blk

	case *ast.Forever:
		bodyRef := bld.EmitStatementList(s.Body)
		entry := bodyRef.EntryBlock()
		for _, exit := range bodyRef.ExitBlocks() {
			exit.AssignNext(entry)
		}
		return NewForeverBlock(bodyRef)

	case *ast.If:
		thenRef := bld.EmitStatementList(s.Then)
		var elseRef BlockRef
		if s.Else != nil {
			elseRef = bld.EmitStatementList(s.Else)
		} else {
			elseRef = bld.newBlock(s.Position.Line)
		}
		condRef := bld.CreateBranchBlock(s.Cond, thenRef, elseRef, s.Position.Line)
		exits := append(append([]*Block{}, thenRef.ExitBlocks()...), elseRef.ExitBlocks()...)
		return NewCompoundBlock(condRef, exits)

	case *ast.While:
		bodyRef := bld.EmitStatementList(s.Body)
		exitBlk := bld.newBlock(s.Position.Line)
		condRef := bld.CreateBranchBlock(s.Cond, bodyRef, exitBlk, s.Position.Line)
		for _, exit := range bodyRef.ExitBlocks() {
			exit.AssignNext(condRef.EntryBlock())
		}
		return NewCompoundBlock(condRef, []*Block{exitBlk})

	default:
		panic(internalErrorf(errors.ErrorInvalidOperandShape, "unrecognized statement reached block emission"))
	}
}

// CreateBranchBlock implements spec.md §4.3: every branchable expression
// compiles to a compound whose entry tests the condition and jumps into
// thenRef or elseRef.
func (bld *Builder) CreateBranchBlock(cond ast.Expr, thenRef, elseRef BlockRef, lineno int) BlockRef {
	switch c := cond.(type) {
	case *ast.Boolean:
		if c.Value {
			return thenRef
		}
		return elseRef

	case *ast.Compare:
		return bld.createCompareBranch(c, thenRef, elseRef, lineno)

	case *ast.LogicalNot:
		return bld.CreateBranchBlock(c.Operand, elseRef, thenRef, lineno)

	case *ast.Logical:
		if c.Kind_ == ast.LogicalAndKind {
			rBlock := bld.CreateBranchBlock(c.Right, thenRef, elseRef, lineno)
			return bld.CreateBranchBlock(c.Left, rBlock, elseRef, lineno)
		}
		rBlock := bld.CreateBranchBlock(c.Right, thenRef, elseRef, lineno)
		return bld.CreateBranchBlock(c.Left, thenRef, rBlock, lineno)

	case *ast.InlineStatementExpr:
		bodyRef := bld.EmitStatementList(&ast.StatementList{Stmts: c.Stmts})
		resultBranch := bld.CreateBranchBlock(c.Result, thenRef, elseRef, lineno)
		entry := resultBranch.EntryBlock()
		for _, exit := range bodyRef.ExitBlocks() {
			exit.AssignNext(entry)
		}
		return NewCompoundBlock(bodyRef, resultBranch.ExitBlocks())

	default:
		panic(internalErrorf(errors.ErrorInvalidOperandShape, "unbranchable expression reached block emission"))
	}
}

// createCompareBranch handles the six comparison operators against zero.
// Lt/Ge need a single JUMPN test; Le/Gt need a second block with a JUMPZ
// test for the includes-zero case (spec.md §4.3).
func (bld *Builder) createCompareBranch(c *ast.Compare, thenRef, elseRef BlockRef, lineno int) BlockRef {
	blk := bld.newBlock(lineno)
	bld.emitValue(blk, c.Left)

	switch c.Op {
	case ast.CmpEq:
		blk.AssignJumpZero(thenRef)
		blk.AssignNext(elseRef)
	case ast.CmpNe:
		blk.AssignJumpZero(elseRef)
		blk.AssignNext(thenRef)
	case ast.CmpLt:
		blk.AssignJumpNegative(thenRef)
		blk.AssignNext(elseRef)
	case ast.CmpGe:
		blk.AssignJumpNegative(elseRef)
		blk.AssignNext(thenRef)
	case ast.CmpLe:
		blk.AssignJumpNegative(thenRef)
		blk2 := bld.newBlock(lineno)
		blk.AssignNext(blk2)
		blk2.AssignJumpZero(thenRef)
		blk2.AssignNext(elseRef)
	case ast.CmpGt:
		blk.AssignJumpNegative(elseRef)
		blk2 := bld.newBlock(lineno)
		blk.AssignNext(blk2)
		blk2.AssignJumpZero(elseRef)
		blk2.AssignNext(thenRef)
	}
	return blk
}

// emitValue walks e, emitting instructions into blk that leave e's value in
// the accumulator. It assumes e is already in lowered, emission-ready form.
func (bld *Builder) emitValue(blk *Block, e ast.Expr) {
	switch v := e.(type) {
	case *ast.Number:
		blk.AddInstruction(NewLoadConstant(v.Value))

	case *ast.VariableRef:
		blk.AddInstruction(NewLoad(v.Name))

	case *ast.Input:
		blk.AddInstruction(NewInput())

	case *ast.Assignment:
		bld.emitValue(blk, v.Expr)
		blk.AddInstruction(NewSave(v.Name))

	case *ast.Binary:
		switch v.Op {
		case ast.OpAdd, ast.OpSubtract:
			right, ok := v.Right.(*ast.VariableRef)
			if !ok {
				panic(internalErrorf(errors.ErrorInvalidOperandShape,
					"%s right operand is not a variable reference", v.Op))
			}
			bld.emitValue(blk, v.Left)
			if v.Op == ast.OpAdd {
				blk.AddInstruction(NewAdd(right.Name))
			} else {
				blk.AddInstruction(NewSubtract(right.Name))
			}

		case ast.OpDifference:
			blk.AddInstruction(NewDifference(toOperand(v.Left), toOperand(v.Right)))

		case ast.OpMultiply:
			panic(internalErrorf(errors.ErrorInvalidOperandShape,
				"Multiply survived to block emission unexpanded"))
		}

	case *ast.InlineStatementExpr:
		for _, stmt := range v.Stmts {
			if el, ok := stmt.(*ast.ExprLine); ok {
				bld.emitValue(blk, el.Expr)
			}
		}
		bld.emitValue(blk, v.Result)

	default:
		panic(internalErrorf(errors.ErrorInvalidOperandShape, "unrecognized value-mode expression reached block emission"))
	}
}

func toOperand(e ast.Expr) Operand {
	switch v := e.(type) {
	case *ast.VariableRef:
		return VarOperand(v.Name)
	case *ast.Number:
		return ConstOperand(v.Value)
	default:
		panic(internalErrorf(errors.ErrorInvalidOperandShape, "Difference operand is neither a variable nor a constant"))
	}
}

// blockLabel produces a base-26 lowercase label (a, b, ..., z, aa, ab, ...),
// matching the namespace package's fresh-name scheme but kept independent
// here to avoid coupling block layout to variable naming.
func blockLabel(idx int) string {
	if idx < 26 {
		return string(rune('a' + idx))
	}
	var sb strings.Builder
	n := idx
	for n >= 0 {
		sb.WriteByte(byte('a' + n%26))
		n = n/26 - 1
	}
	s := []byte(sb.String())
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
	return string(s)
}

// ExtractBlocks flattens the program's CompoundBlock structure into an
// ordered block list (spec.md §4.4): depth-first from the entry block,
// following both unconditional and conditional jumps, deduplicating, with a
// dedicated end block appended and guaranteed to sort last.
func (bld *Builder) ExtractBlocks(program BlockRef) []*Block {
	entry := program.EntryBlock()

	var endBlock *Block
	if exits := program.ExitBlocks(); len(exits) > 0 {
		endBlock = bld.newBlock(0)
		for _, exit := range exits {
			exit.AssignNext(endBlock)
		}
	}

	visited := map[*Block]bool{}
	var order []*Block
	var walk func(b *Block)
	walk = func(b *Block) {
		if visited[b] {
			return
		}
		visited[b] = true
		order = append(order, b)
		if b.Next != nil {
			walk(b.Next.Dest)
		}
		if b.Conditional != nil {
			walk(b.Conditional.Dest)
		}
	}
	walk(entry)

	if endBlock != nil {
		for i, b := range order {
			if b == endBlock {
				order = append(order[:i], order[i+1:]...)
				break
			}
		}
		order = append(order, endBlock)
	}

	for i, b := range order {
		b.Label = blockLabel(i)
	}
	return order
}

// Emit renders blocks (already laid out by ExtractBlocks, in final order)
// into the flat HRM assembly text spec.md §4.10 describes: a fixed header
// followed by each block's label (when needed), instructions, and
// terminating jump.
func Emit(blocks []*Block, nameToAddr func(string) int) string {
	var sb strings.Builder
	sb.WriteString("-- HUMAN RESOURCE MACHINE PROGRAM --\n\n")

	for _, b := range blocks {
		if b.NeedsLabel() {
			sb.WriteString(b.Label)
			sb.WriteString(":\n")
		}
		for _, instr := range b.Instructions {
			sb.WriteString(instr.ToAsm(nameToAddr))
			sb.WriteString("\n")
		}
		if b.Conditional != nil {
			sb.WriteString(b.Conditional.ToAsm())
			sb.WriteString("\n")
		}
		if b.Next != nil && !b.Next.Implicit {
			sb.WriteString(b.Next.ToAsm())
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
