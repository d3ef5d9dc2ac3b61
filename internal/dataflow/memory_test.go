package dataflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hc/internal/ir"
)

func TestMemoryAssignmentHonorsInitDeclaredAddress(t *testing.T) {
	block := ir.NewBlock(0, 1)
	block.AddInstruction(ir.NewLoad("x"))

	program := ir.NewProgram([]*ir.Block{block}, map[string]int{"x": 5}, []string{"x"})

	ma := &MemoryAssignment{}
	changed := ma.Apply(program)

	require.True(t, changed)
	assert.Equal(t, 5, ma.Addresses["x"])
}

func TestMemoryAssignmentSkipsOccupiedAddresses(t *testing.T) {
	block := ir.NewBlock(0, 1)
	block.AddInstruction(ir.NewLoad("x"))
	block.AddInstruction(ir.NewSave("y"))
	block.AddInstruction(ir.NewSave("z"))

	// x is pinned to address 0, so the first free slot for y is 1, then z is 2.
	program := ir.NewProgram([]*ir.Block{block}, map[string]int{"x": 0}, []string{"x"})

	ma := &MemoryAssignment{}
	ma.Apply(program)

	assert.Equal(t, 0, ma.Addresses["x"])
	assert.Equal(t, 1, ma.Addresses["y"])
	assert.Equal(t, 2, ma.Addresses["z"])
}

func TestMemoryAssignmentIsIdempotentOnReapply(t *testing.T) {
	block := ir.NewBlock(0, 1)
	block.AddInstruction(ir.NewSave("y"))

	program := ir.NewProgram([]*ir.Block{block}, map[string]int{}, nil)

	ma := &MemoryAssignment{}
	first := ma.Apply(program)
	second := ma.Apply(program)

	assert.True(t, first)
	assert.False(t, second)
}

func TestMemoryAssignmentNameToAddr(t *testing.T) {
	ma := &MemoryAssignment{Addresses: map[string]int{"x": 7}}
	assert.Equal(t, 7, ma.NameToAddr("x"))
}
