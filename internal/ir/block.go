// Package ir models the control-flow graph the HC compiler emits assembly
// from: basic blocks of linear instructions linked by explicit jumps, plus
// compound pseudo-blocks that let loop/if-else construction expose a single
// entry and a set of exits without flattening early. Dataflow analyses and
// final textual emission (internal/dataflow, internal/compiler) operate on
// this graph.
package ir

import "fmt"

// JumpKind distinguishes the three jump mnemonics HRM assembly supports.
type JumpKind int

const (
	JumpUnconditional JumpKind = iota
	JumpZero
	JumpNegative
)

// Jump is a directed edge from Src to Dest. Implicit jumps are elided
// during textual emission because layout already places Dest immediately
// after Src.
type Jump struct {
	Kind     JumpKind
	Src      *Block
	Dest     *Block
	Implicit bool
}

func (j *Jump) mnemonic() string {
	switch j.Kind {
	case JumpZero:
		return "JUMPZ"
	case JumpNegative:
		return "JUMPN"
	default:
		return "JUMP"
	}
}

// unlink removes j from its destination's back-edge set.
func (j *Jump) unlink() {
	j.Dest.unregisterJumpIn(j)
}

// redirect points j at a new destination, updating both endpoints' back-edge
// bookkeeping transactionally (spec.md §5's single shared-resource
// invariant).
func (j *Jump) redirect(newDest *Block) {
	j.unlink()
	j.Dest = newDest
	newDest.registerJumpIn(j)
}

// Redirect is the exported form of redirect, used by internal/dataflow's
// block-cleanup pass to retarget a jump after collapsing an empty block.
func (j *Jump) Redirect(newDest *Block) { j.redirect(newDest) }

// Block is a basic block: a straight-line instruction list terminated by an
// optional conditional jump and an optional unconditional "next" jump.
type Block struct {
	ID           int
	Label        string
	Instructions []*Instruction
	Conditional  *Jump
	Next         *Jump
	JumpsIn      []*Jump
	LineNo       int

	// StateAtStart is the accumulator-state analysis's converged entry state
	// for this block, populated by internal/dataflow.
	StateAtStart *OfficeState
}

// NewBlock allocates an empty block. Callers are expected to assign IDs via
// a shared counter (see Builder).
func NewBlock(id, lineNo int) *Block {
	return &Block{ID: id, LineNo: lineNo}
}

func (b *Block) AddInstruction(instr *Instruction) {
	b.Instructions = append(b.Instructions, instr)
}

// NeedsLabel reports whether any live (non-implicit) incoming jump requires
// this block to carry a textual label.
func (b *Block) NeedsLabel() bool {
	for _, j := range b.JumpsIn {
		if !(j.Kind == JumpUnconditional && j.Implicit) {
			return true
		}
	}
	return false
}

// AssignNext links b to next via an unconditional jump. Panics (an internal
// error in the caller) if b.Next is already set — mirrors the original
// implementation's HRMIInternalError on double-assignment.
func (b *Block) AssignNext(next BlockRef) {
	if b.Next != nil {
		panic("ir: block already has a next jump assigned")
	}
	dest := next.EntryBlock()
	j := &Jump{Kind: JumpUnconditional, Src: b, Dest: dest}
	b.Next = j
	dest.registerJumpIn(j)
}

func (b *Block) assignConditional(kind JumpKind, dest *Block) *Jump {
	if b.Conditional != nil {
		panic("ir: block already has a conditional jump assigned")
	}
	j := &Jump{Kind: kind, Src: b, Dest: dest}
	b.Conditional = j
	dest.registerJumpIn(j)
	return j
}

func (b *Block) AssignJumpZero(dest BlockRef) *Jump {
	return b.assignConditional(JumpZero, dest.EntryBlock())
}

func (b *Block) AssignJumpNegative(dest BlockRef) *Jump {
	return b.assignConditional(JumpNegative, dest.EntryBlock())
}

func (b *Block) UnlinkConditional() {
	if b.Conditional == nil {
		return
	}
	b.Conditional.unlink()
	b.Conditional = nil
}

// UnlinkNext tears down b's unconditional jump, used by block cleanup once
// every incoming jump into b has been redirected elsewhere and b itself is
// about to be dropped from the layout.
func (b *Block) UnlinkNext() {
	if b.Next == nil {
		return
	}
	b.Next.unlink()
	b.Next = nil
}

func (b *Block) registerJumpIn(j *Jump) {
	b.JumpsIn = append(b.JumpsIn, j)
}

func (b *Block) unregisterJumpIn(j *Jump) {
	for i, existing := range b.JumpsIn {
		if existing == j {
			b.JumpsIn = append(b.JumpsIn[:i], b.JumpsIn[i+1:]...)
			return
		}
	}
	panic("ir: unregisterJumpIn called with a jump that was not registered")
}

func (b *Block) EntryBlock() *Block   { return b }
func (b *Block) ExitBlocks() []*Block { return []*Block{b} }

// IsEmptyRedirect reports whether b has no instructions, no conditional
// jump, and a single unconditional next — the shape block cleanup collapses.
func (b *Block) IsEmptyRedirect() bool {
	return len(b.Instructions) == 0 && b.Conditional == nil && b.Next != nil
}

func (b *Block) String() string {
	return fmt.Sprintf("Block#%d(%s)", b.ID, b.Label)
}

// BlockRef is implemented by both *Block and *CompoundBlock, giving callers
// a single entry point and a single way to extend control flow without
// caring whether the underlying region is a plain block or a composite
// control structure (spec.md §9's BlockRef sum type).
type BlockRef interface {
	EntryBlock() *Block
	ExitBlocks() []*Block
	AssignNext(next BlockRef)
}

// CompoundBlock composes a control structure (loop, if/else, inlined
// statement list) behind a single entry and a set of exit blocks.
type CompoundBlock struct {
	entry BlockRef
	exits []*Block
}

func NewCompoundBlock(entry BlockRef, exits []*Block) *CompoundBlock {
	return &CompoundBlock{entry: entry, exits: exits}
}

func (c *CompoundBlock) EntryBlock() *Block   { return c.entry.EntryBlock() }
func (c *CompoundBlock) ExitBlocks() []*Block { return c.exits }

func (c *CompoundBlock) AssignNext(next BlockRef) {
	for _, exit := range c.exits {
		exit.AssignNext(next)
	}
}

// ForeverBlock is a CompoundBlock with no exits: control never falls out of
// it, so AssignNext is a no-op (there is nothing to wire forward from).
func NewForeverBlock(entry BlockRef) *CompoundBlock {
	return &CompoundBlock{entry: entry, exits: nil}
}
