package hasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAsm = `-- HUMAN RESOURCE MACHINE PROGRAM --

a:
INBOX
COPYTO 0
COPYFROM 0
OUTBOX
JUMP a
`

func TestParseLabelsAndInstructions(t *testing.T) {
	program, err := Parse(sampleAsm)
	require.NoError(t, err)

	labels := program.Labels()
	idx, ok := labels["a"]
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	require.Len(t, program.Lines, 5)
	assert.Equal(t, "INBOX", program.Lines[0].Instruction.Mnemonic)
	assert.Equal(t, "COPYTO", program.Lines[1].Instruction.Mnemonic)
	assert.Equal(t, "0", program.Lines[1].Instruction.Operand)
	assert.Equal(t, "JUMP", program.Lines[4].Instruction.Mnemonic)
	assert.Equal(t, "a", program.Lines[4].Instruction.Operand)
}

func TestVerifyRoundTripAccepts(t *testing.T) {
	assert.NoError(t, VerifyRoundTrip(sampleAsm))
}

func TestVerifyRoundTripRejectsUndefinedLabel(t *testing.T) {
	asm := "-- HUMAN RESOURCE MACHINE PROGRAM --\n\nINBOX\nJUMP nowhere\n"
	err := VerifyRoundTrip(asm)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined label")
}

func TestVerifyRoundTripRejectsMissingOperand(t *testing.T) {
	asm := "-- HUMAN RESOURCE MACHINE PROGRAM --\n\nCOPYTO\n"
	err := VerifyRoundTrip(asm)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a floor address")
}

func TestVerifyRoundTripRejectsUnexpectedOperand(t *testing.T) {
	asm := "-- HUMAN RESOURCE MACHINE PROGRAM --\n\nINBOX 0\n"
	err := VerifyRoundTrip(asm)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "takes no operand")
}

func TestParseAcceptsLabelOnlyTrailingLine(t *testing.T) {
	asm := "-- HUMAN RESOURCE MACHINE PROGRAM --\n\nINBOX\nJUMPZ z\nOUTBOX\nz:\n"
	program, err := Parse(asm)
	require.NoError(t, err)

	last := program.Lines[len(program.Lines)-1]
	assert.Equal(t, "z", last.Label)
	assert.Nil(t, last.Instruction)

	assert.NoError(t, VerifyRoundTrip(asm))
}

func TestVerifyRoundTripRejectsUnknownMnemonic(t *testing.T) {
	asm := "-- HUMAN RESOURCE MACHINE PROGRAM --\n\nFROBNICATE 1\n"
	err := VerifyRoundTrip(asm)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized mnemonic")
}
