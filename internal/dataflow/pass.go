// Package dataflow runs the two coupled analyses spec.md §4.5-§4.9
// describes over a built ir.Program: liveness (variable-use) propagation,
// accumulator-state abstract interpretation, variable merging, block
// cleanup, and final memory assignment. Passes run in a fixed pipeline,
// mirroring the teacher's OptimizationPass/OptimizationPipeline shape.
package dataflow

import (
	"hc/internal/config"
	"hc/internal/ir"
)

// Pass is a single transformation over a built program. Apply reports
// whether it changed anything, so Pipeline.Run can iterate to a fixpoint.
type Pass interface {
	Name() string
	Description() string
	Apply(program *ir.Program) bool
}

// Pipeline runs passes in order, repeating the whole sequence until none of
// them report a change.
type Pipeline struct {
	passes    []Pass
	liveness  *Liveness
	accum     *AccumulatorState
	memory    *MemoryAssignment
}

// NewPipeline builds the default pass sequence: liveness first (it both
// marks variable uses and deletes dead stores), then variable merging
// (shrinks the interference graph before memory assignment), then
// accumulator-state analysis (expands pseudo-instructions and strips
// redundant loads/saves), then block cleanup (collapses empty redirects and
// elides fall-through jumps), and finally memory assignment.
func NewPipeline() *Pipeline {
	return NewPipelineWithConfig(config.Default().Passes)
}

// NewPipelineWithConfig builds the pass sequence honoring an hc.yaml's
// toggles. Disabling variable-merge or block-cleanup only costs code
// quality (no coalescing, no dead-redirect collapse). Disabling liveness or
// accumulator-state is a diagnostic-only knob — normal compiles need both
// (the former catches use-before-init, the latter expands every
// LoadConstant/Difference pseudo-instruction before emission) — useful for
// inspecting intermediate, not-yet-lowered block output while debugging the
// pipeline itself.
func NewPipelineWithConfig(passes config.Passes) *Pipeline {
	p := &Pipeline{
		liveness: &Liveness{},
		accum:    &AccumulatorState{},
		memory:   &MemoryAssignment{},
	}
	if passes.Liveness {
		p.passes = append(p.passes, p.liveness)
	}
	if passes.VariableMerge {
		p.passes = append(p.passes, &VariableMerge{})
	}
	if passes.AccumulatorState {
		p.passes = append(p.passes, p.accum)
	}
	if passes.BlockCleanup {
		p.passes = append(p.passes, &BlockCleanup{})
	}
	p.passes = append(p.passes, p.memory)
	return p
}

func (p *Pipeline) AddPass(pass Pass) { p.passes = append(p.passes, pass) }

// Run executes every pass once in order, then repeats the fixpoint-sensitive
// middle passes (merge/accumulator/cleanup) until none of them change
// anything. Liveness and memory assignment are idempotent and cheap to
// rerun, so they stay in the loop rather than being special-cased out.
func (p *Pipeline) Run(program *ir.Program) {
	for {
		changed := false
		for _, pass := range p.passes {
			if pass.Apply(program) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
}

// Liveness returns the liveness pass instance so callers can read back its
// accumulated use-before-init errors after Run.
func (p *Pipeline) Liveness() *Liveness { return p.liveness }

// AccumulatorState returns the accumulator-state pass instance so callers
// can read back its unrepresentable-constant errors after Run.
func (p *Pipeline) AccumulatorState() *AccumulatorState { return p.accum }

// MemoryAssignment returns the memory-assignment pass instance so callers
// can read back the final name→address map after Run.
func (p *Pipeline) MemoryAssignment() *MemoryAssignment { return p.memory }
