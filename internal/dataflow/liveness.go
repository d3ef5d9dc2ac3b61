package dataflow

import (
	"fmt"

	"hc/internal/errors"
	"hc/internal/ir"
	"hc/internal/token"
)

// Liveness implements spec.md §4.5: for each variable-reading instruction,
// walk backwards marking variables_used, stopping at a defining write or a
// fixpoint; if a walk reaches the program entry with no definition on every
// incoming path, that is a use-before-init source error. After propagation,
// any Save whose own variables_used set does not (still) contain its own
// name is dead and is deleted.
type Liveness struct {
	initialized map[string]bool
	errs        []errors.CompilerError
}

func (lv *Liveness) Name() string { return "liveness" }
func (lv *Liveness) Description() string {
	return "propagates variable use backwards and removes dead stores"
}

// Errors returns the use-before-init diagnostics collected by the most
// recent Apply call.
func (lv *Liveness) Errors() []errors.CompilerError { return lv.errs }

func (lv *Liveness) Apply(program *ir.Program) bool {
	lv.errs = nil
	if lv.initialized == nil {
		lv.initialized = map[string]bool{}
		for name := range program.InitialMemory {
			lv.initialized[name] = true
		}
	}

	for _, b := range program.Blocks {
		for i, instr := range b.Instructions {
			if instr.ReadsVariable() {
				lv.propagate(b, i, instr.Name)
			}
			if instr.Kind == ir.KindDifference {
				if !instr.DiffLeft.IsConst {
					lv.propagate(b, i, instr.DiffLeft.Name)
				}
				if !instr.DiffRight.IsConst {
					lv.propagate(b, i, instr.DiffRight.Name)
				}
			}
		}
	}

	return lv.deleteDeadStores(program)
}

// propagate walks backwards from instruction index i (inclusive) in b,
// marking name into every preceding instruction's VariablesUsed, until it
// hits a fixpoint (an instruction that already has name), a definition of
// name, or block start — in which case it recurses into predecessors.
func (lv *Liveness) propagate(b *ir.Block, i int, name string) {
	lv.walkBack(b, i, name, map[*ir.Block]bool{})
}

func (lv *Liveness) walkBack(b *ir.Block, i int, name string, onStack map[*ir.Block]bool) {
	for j := i; j >= 0; j-- {
		instr := b.Instructions[j]
		if instr.VariablesUsed[name] {
			return // fixpoint: already propagated past this point
		}
		instr.VariablesUsed[name] = true
		if instr.WritesVariable() && instr.Name == name {
			return // definition found
		}
	}

	if lv.initialized[name] {
		return
	}

	if len(b.JumpsIn) == 0 {
		lv.errs = append(lv.errs, errors.CompilerError{
			Level:    errors.Error,
			Code:     errors.ErrorUseBeforeInit,
			Message:  fmt.Sprintf("Variable '%s' referenced before assignment on line %d", name, b.LineNo),
			Position: token.Position{Line: b.LineNo},
		})
		return
	}

	if onStack[b] {
		return // loop back-edge; the non-looping entry path decides this
	}
	onStack[b] = true
	for _, j := range b.JumpsIn {
		lv.walkBack(j.Src, len(j.Src.Instructions)-1, name, onStack)
	}
	delete(onStack, b)
}

// deleteDeadStores removes any Save instruction whose own variables_used
// set ended up without its own name — meaning nothing downstream ever reads
// the value it wrote.
func (lv *Liveness) deleteDeadStores(program *ir.Program) bool {
	changed := false
	for _, b := range program.Blocks {
		kept := b.Instructions[:0]
		for _, instr := range b.Instructions {
			if instr.Kind == ir.KindSave && !instr.VariablesUsed[instr.Name] {
				changed = true
				continue
			}
			kept = append(kept, instr)
		}
		b.Instructions = kept
	}
	return changed
}
