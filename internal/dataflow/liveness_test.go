package dataflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hc/internal/ir"
)

func TestLivenessPropagatesThroughLoadBackToSave(t *testing.T) {
	save := ir.NewSave("x")
	load := ir.NewLoad("x")

	block := ir.NewBlock(0, 1)
	block.AddInstruction(save)
	block.AddInstruction(load)

	program := ir.NewProgram([]*ir.Block{block}, map[string]int{}, nil)

	lv := &Liveness{}
	lv.Apply(program)

	assert.Empty(t, lv.Errors())
	assert.True(t, save.VariablesUsed["x"])
}

func TestLivenessDeletesDeadStore(t *testing.T) {
	save := ir.NewSave("x")
	output := ir.NewOutput()

	block := ir.NewBlock(0, 1)
	block.AddInstruction(save)
	block.AddInstruction(output) // never reads x

	program := ir.NewProgram([]*ir.Block{block}, map[string]int{}, nil)

	lv := &Liveness{}
	changed := lv.Apply(program)

	require.True(t, changed)
	assert.Len(t, block.Instructions, 1)
	assert.Equal(t, output, block.Instructions[0])
}

func TestLivenessReportsUseBeforeInit(t *testing.T) {
	load := ir.NewLoad("foo")

	block := ir.NewBlock(0, 1)
	block.AddInstruction(load)

	program := ir.NewProgram([]*ir.Block{block}, map[string]int{}, nil)

	lv := &Liveness{}
	lv.Apply(program)

	require.Len(t, lv.Errors(), 1)
	assert.Equal(t, "Variable 'foo' referenced before assignment on line 1", lv.Errors()[0].Message)
}

func TestLivenessTreatsInitDeclaredNamesAsAlreadyInitialized(t *testing.T) {
	load := ir.NewLoad("x")

	block := ir.NewBlock(0, 1)
	block.AddInstruction(load)

	program := ir.NewProgram([]*ir.Block{block}, map[string]int{"x": 0}, nil)

	lv := &Liveness{}
	lv.Apply(program)

	assert.Empty(t, lv.Errors())
}
