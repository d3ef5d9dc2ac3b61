package dataflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hc/internal/ir"
)

func TestVariableMergeFoldsNonInterferingNameIntoPinnedSlot(t *testing.T) {
	loadY := ir.NewLoad("y")
	loadY.VariablesUsed = map[string]bool{"y": true}
	loadX := ir.NewLoad("x")
	loadX.VariablesUsed = map[string]bool{"x": true}

	block := ir.NewBlock(0, 1)
	block.AddInstruction(loadY)
	block.AddInstruction(loadX)

	program := ir.NewProgram([]*ir.Block{block}, map[string]int{"x": 0}, nil)

	vm := &VariableMerge{}
	changed := vm.Apply(program)

	require.True(t, changed)
	assert.Equal(t, "x", loadY.Name)
	assert.True(t, loadY.VariablesUsed["x"])
	assert.False(t, loadY.VariablesUsed["y"])
}

func TestVariableMergeLeavesInterferingNamesAlone(t *testing.T) {
	loadY := ir.NewLoad("y")
	loadY.VariablesUsed = map[string]bool{"y": true}

	// both is alive at once here, recording an interference edge between x
	// and y even though the instruction's own operand is just "x".
	both := ir.NewSave("x")
	both.VariablesUsed = map[string]bool{"x": true, "y": true}

	block := ir.NewBlock(0, 1)
	block.AddInstruction(loadY)
	block.AddInstruction(both)

	program := ir.NewProgram([]*ir.Block{block}, map[string]int{"x": 0}, nil)

	vm := &VariableMerge{}
	changed := vm.Apply(program)

	assert.False(t, changed)
	assert.Equal(t, "y", loadY.Name)
}

// TestVariableMergeDoesNotTransitivelyCollapseThroughANonInterferingHop
// reproduces p-q and q-r interfering (but not p-r, not q-s, not r-s): a
// merge decision loop that forgets to propagate a retired name's
// interference edges onto its replacement can end up aliasing both p and q
// onto the same final name even though p and q interfere directly.
func TestVariableMergeDoesNotTransitivelyCollapseThroughANonInterferingHop(t *testing.T) {
	instrP := ir.NewLoad("p")
	instrP.VariablesUsed = map[string]bool{"p": true, "q": true}
	instrQ := ir.NewLoad("q")
	instrQ.VariablesUsed = map[string]bool{"q": true, "r": true}
	instrR := ir.NewLoad("r")
	instrR.VariablesUsed = map[string]bool{"r": true}
	instrS := ir.NewLoad("s")
	instrS.VariablesUsed = map[string]bool{"s": true}

	block := ir.NewBlock(0, 1)
	block.AddInstruction(instrP)
	block.AddInstruction(instrQ)
	block.AddInstruction(instrR)
	block.AddInstruction(instrS)

	program := ir.NewProgram([]*ir.Block{block}, nil, nil)

	vm := &VariableMerge{}
	vm.Apply(program)

	assert.NotEqual(t, instrP.Name, instrQ.Name,
		"p and q interfere directly and must never end up sharing a floor cell")
}

func TestVariableMergeNeverMergesTwoPinnedNames(t *testing.T) {
	loadY := ir.NewLoad("y")
	loadY.VariablesUsed = map[string]bool{"y": true}
	loadX := ir.NewLoad("x")
	loadX.VariablesUsed = map[string]bool{"x": true}

	block := ir.NewBlock(0, 1)
	block.AddInstruction(loadY)
	block.AddInstruction(loadX)

	program := ir.NewProgram([]*ir.Block{block}, map[string]int{"x": 0, "y": 1}, []string{"y", "x"})

	vm := &VariableMerge{}
	changed := vm.Apply(program)

	assert.False(t, changed)
	assert.Equal(t, "y", loadY.Name)
	assert.Equal(t, "x", loadX.Name)
}
