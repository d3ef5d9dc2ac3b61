package dataflow

import (
	"fmt"

	"hc/internal/errors"
	"hc/internal/ir"
)

// AccumulatorState implements spec.md §4.7: a forward monotone fixpoint
// abstract interpretation over ir.OfficeState, whose join is set
// intersection. Once every block's entry state has converged, a second
// pass rewrites instructions using those states: redundant Load/Save
// instructions are deleted, and the LoadConstant/Difference pseudo
// instructions are expanded into real machine instructions.
type AccumulatorState struct {
	errs []errors.CompilerError
}

func (as *AccumulatorState) Name() string { return "accumulator-state" }
func (as *AccumulatorState) Description() string {
	return "tracks accumulator/cell constraints and expands pseudo-instructions"
}

// Errors returns unrepresentable-constant diagnostics from the most recent
// Apply call.
func (as *AccumulatorState) Errors() []errors.CompilerError { return as.errs }

func (as *AccumulatorState) Apply(program *ir.Program) bool {
	as.errs = nil
	as.runFixpoint(program)
	return as.rewrite(program)
}

// runFixpoint iterates block entry states to convergence. Entry state for
// the program's first block is EmptyHands; every other block's entry state
// is the worst_case join of every predecessor's state as of the end of its
// last instruction.
func (as *AccumulatorState) runFixpoint(program *ir.Program) {
	if len(program.Blocks) == 0 {
		return
	}
	entry := program.Blocks[0]

	for _, b := range program.Blocks {
		b.StateAtStart = nil
	}
	start := ir.NewOfficeState()
	start.AddConstraint(ir.EmptyHands{})
	entry.StateAtStart = start

	for {
		changed := false
		for _, b := range program.Blocks {
			var join *ir.OfficeState
			if b == entry {
				join = start
			} else if len(b.JumpsIn) == 0 {
				join = ir.NewOfficeState() // unreachable except via entry; no facts hold
			}
			for _, j := range b.JumpsIn {
				predOut := as.stateAfter(j.Src).Clone()
				if j == j.Src.Conditional && j.Kind == ir.JumpZero {
					predOut.AddConstraint(ir.ValueInHands{Value: 0})
				} else if j == j.Src.Next && j.Src.Conditional != nil && j.Src.Conditional.Kind == ir.JumpZero {
					predOut.AddConstraint(ir.ValueNotInHands{Value: 0})
				}
				join = join.WorstCase(predOut)
			}
			if b.StateAtStart == nil || !b.StateAtStart.Equal(join) {
				b.StateAtStart = join
				changed = true
			}
		}
		if !changed {
			break
		}
	}
}

// stateAfter computes the OfficeState at the end of b's instruction list,
// starting from b's (already converged, or current best guess) entry state.
func (as *AccumulatorState) stateAfter(b *ir.Block) *ir.OfficeState {
	state := b.StateAtStart
	if state == nil {
		state = ir.NewOfficeState()
	}
	state = state.Clone()
	for _, instr := range b.Instructions {
		as.transfer(state, instr)
	}
	return state
}

func (as *AccumulatorState) transfer(state *ir.OfficeState, instr *ir.Instruction) {
	switch instr.Kind {
	case ir.KindInput:
		state.ClearHandConstraints()
	case ir.KindOutput:
		state.ClearHandConstraints()
		state.AddConstraint(ir.EmptyHands{})
	case ir.KindLoad:
		if !state.HasConstraint(ir.VariableInHands{Name: instr.Name}) {
			state.ClearHandConstraints()
		}
		state.AddConstraint(ir.VariableInHands{Name: instr.Name})
		if v, ok := state.GetVariableValue(instr.Name); ok {
			state.AddConstraint(ir.ValueInHands{Value: v})
		}
	case ir.KindSave:
		state.ClearVariableConstraints(instr.Name)
		state.AddConstraint(ir.VariableInHands{Name: instr.Name})
		if v, ok := state.GetValueInHands(); ok {
			state.AddConstraint(ir.VariableHasValue{Name: instr.Name, Value: v})
		}
	case ir.KindAdd, ir.KindSubtract:
		state.ClearHandConstraints()
	case ir.KindBumpUp, ir.KindBumpDown:
		state.ClearHandConstraints()
		state.ClearVariableConstraints(instr.Name)
		state.AddConstraint(ir.VariableInHands{Name: instr.Name})
	case ir.KindLoadConstant:
		state.ClearHandConstraints()
		state.AddConstraint(ir.ValueInHands{Value: instr.Value})
	case ir.KindDifference:
		state.ClearHandConstraints()
	}
}

// rewrite walks every block a second time with its (now converged) entry
// state, deleting redundant loads/saves and expanding pseudo-instructions.
func (as *AccumulatorState) rewrite(program *ir.Program) bool {
	changed := false
	for _, b := range program.Blocks {
		state := b.StateAtStart
		if state == nil {
			state = ir.NewOfficeState()
		}
		state = state.Clone()

		var kept []*ir.Instruction
		for _, instr := range b.Instructions {
			replacement := as.rewriteOne(state, instr)
			if len(replacement) != 1 || replacement[0] != instr {
				changed = true
			}
			kept = append(kept, replacement...)
			as.transfer(state, instr)
		}
		b.Instructions = kept
	}
	return changed
}

// rewriteOne returns the instructions instr should be replaced with: nil to
// delete it, a single-element slice containing instr itself to leave it
// alone, or one/two fresh instructions when a pseudo-instruction expands.
func (as *AccumulatorState) rewriteOne(state *ir.OfficeState, instr *ir.Instruction) []*ir.Instruction {
	switch instr.Kind {
	case ir.KindLoad:
		if state.HasConstraint(ir.VariableInHands{Name: instr.Name}) {
			return nil
		}
		return []*ir.Instruction{instr}

	case ir.KindSave:
		if state.HasConstraint(ir.VariableInHands{Name: instr.Name}) {
			return nil
		}
		return []*ir.Instruction{instr}

	case ir.KindLoadConstant:
		if state.HasConstraint(ir.ValueInHands{Value: instr.Value}) {
			return nil
		}
		if name, ok := state.FindVariableWithValue(instr.Value); ok {
			return []*ir.Instruction{ir.NewLoad(name)}
		}
		if instr.Value == 0 {
			if m, ok := state.GetVariableInHands(); ok {
				return []*ir.Instruction{ir.NewSubtract(m)}
			}
		}
		as.errs = append(as.errs, errors.CompilerError{
			Level:   errors.Error,
			Code:    errors.ErrorUnrepresentableConstant,
			Message: fmt.Sprintf("The literal %d cannot be produced on this machine: no floor cell holds it and the accumulator offers no route to it", instr.Value),
		})
		return []*ir.Instruction{instr}

	case ir.KindDifference:
		aInHands := !instr.DiffLeft.IsConst && state.HasConstraint(ir.VariableInHands{Name: instr.DiffLeft.Name})
		bInHands := !instr.DiffRight.IsConst && state.HasConstraint(ir.VariableInHands{Name: instr.DiffRight.Name})
		switch {
		case aInHands && !instr.DiffRight.IsConst:
			return []*ir.Instruction{ir.NewSubtract(instr.DiffRight.Name)}
		case bInHands && !instr.DiffLeft.IsConst:
			return []*ir.Instruction{ir.NewSubtract(instr.DiffLeft.Name)}
		case !instr.DiffLeft.IsConst && !instr.DiffRight.IsConst:
			return []*ir.Instruction{ir.NewLoad(instr.DiffLeft.Name), ir.NewSubtract(instr.DiffRight.Name)}
		default:
			return []*ir.Instruction{instr}
		}
	}
	return []*ir.Instruction{instr}
}
