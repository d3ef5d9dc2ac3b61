package dataflow

import "hc/internal/ir"

// BlockCleanup implements spec.md §4.8: repeatedly collapse empty-redirect
// blocks (no instructions, no conditional, a single next), then — once the
// layout has settled — mark every fall-through jump implicit so final
// emission skips it.
type BlockCleanup struct{}

func (bc *BlockCleanup) Name() string        { return "block-cleanup" }
func (bc *BlockCleanup) Description() string { return "collapses empty redirects and elides fall-through jumps" }

func (bc *BlockCleanup) Apply(program *ir.Program) bool {
	changed := bc.collapseEmptyBlocks(program)
	bc.markImplicitJumps(program)
	return changed
}

func (bc *BlockCleanup) collapseEmptyBlocks(program *ir.Program) bool {
	changed := false
	for {
		removedThisPass := false
		var kept []*ir.Block
		for _, b := range program.Blocks {
			entry := program.Blocks[0]
			if b == entry || !b.IsEmptyRedirect() {
				kept = append(kept, b)
				continue
			}
			target := b.Next.Dest
			if target == b {
				kept = append(kept, b) // self-loop empty block: nothing to collapse into
				continue
			}
			incoming := append([]*ir.Jump(nil), b.JumpsIn...)
			for _, in := range incoming {
				in.Redirect(target)
			}
			b.UnlinkNext()
			removedThisPass = true
			changed = true
		}
		program.Blocks = kept
		if !removedThisPass {
			break
		}
	}
	return changed
}

// markImplicitJumps marks b.Next implicit whenever b's successor in layout
// order is exactly b.Next.Dest — textual emission then omits it, since
// falling off the end of b's instructions already reaches the right place.
func (bc *BlockCleanup) markImplicitJumps(program *ir.Program) {
	for i, b := range program.Blocks {
		if b.Next == nil {
			continue
		}
		b.Next.Implicit = i+1 < len(program.Blocks) && program.Blocks[i+1] == b.Next.Dest
	}
}
