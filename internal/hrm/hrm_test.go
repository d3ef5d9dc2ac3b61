package hrm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRejectsMissingHeader(t *testing.T) {
	_, err := Load("COPYFROM 0\n")
	assert.Error(t, err)
}

func TestLoadRejectsUndefinedLabel(t *testing.T) {
	_, err := Load("-- HUMAN RESOURCE MACHINE PROGRAM --\n\nJUMP nowhere\n")
	assert.Error(t, err)
}

func TestRunEchoesInboxToOutbox(t *testing.T) {
	asm := "-- HUMAN RESOURCE MACHINE PROGRAM --\n\n" +
		"a:\nINBOX\nOUTBOX\nJUMP a\n"
	office, err := Load(asm)
	require.NoError(t, err)
	office.MaxSteps = 1000

	out, err := office.Run([]int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)
}

func TestRunCopyToAndFromFloor(t *testing.T) {
	asm := "-- HUMAN RESOURCE MACHINE PROGRAM --\n\n" +
		"INBOX\nCOPYTO 0\nCOPYFROM 0\nOUTBOX\n"
	office, err := Load(asm)
	require.NoError(t, err)

	out, err := office.Run([]int{42})
	require.NoError(t, err)
	assert.Equal(t, []int{42}, out)
}

func TestRunAddAndSubtract(t *testing.T) {
	asm := "-- HUMAN RESOURCE MACHINE PROGRAM --\n\n" +
		"INBOX\nCOPYTO 0\nINBOX\nADD 0\nOUTBOX\nINBOX\nSUB 0\nOUTBOX\n"
	office, err := Load(asm)
	require.NoError(t, err)

	out, err := office.Run([]int{5, 10, 1})
	require.NoError(t, err)
	assert.Equal(t, []int{15, -4}, out)
}

func TestRunBumpUpAndDown(t *testing.T) {
	asm := "-- HUMAN RESOURCE MACHINE PROGRAM --\n\n" +
		"INBOX\nCOPYTO 0\nBUMPUP 0\nOUTBOX\nBUMPDN 0\nBUMPDN 0\nOUTBOX\n"
	office, err := Load(asm)
	require.NoError(t, err)

	out, err := office.Run([]int{5})
	require.NoError(t, err)
	assert.Equal(t, []int{6, 4}, out)
}

func TestRunJumpZeroAndJumpNegative(t *testing.T) {
	asm := "-- HUMAN RESOURCE MACHINE PROGRAM --\n\n" +
		"INBOX\nJUMPZ zero\nJUMPN neg\nOUTBOX\nJUMP done\n" +
		"zero:\nINBOX\nOUTBOX\nJUMP done\n" +
		"neg:\nINBOX\nOUTBOX\nJUMP done\n" +
		"done:\n"
	office, err := Load(asm)
	require.NoError(t, err)
	office.MaxSteps = 1000

	out, err := office.Run([]int{5, 99})
	require.NoError(t, err)
	assert.Equal(t, []int{5}, out)

	out, err = office.Run([]int{0, 7})
	require.NoError(t, err)
	assert.Equal(t, []int{7}, out)

	out, err = office.Run([]int{-3, 8})
	require.NoError(t, err)
	assert.Equal(t, []int{8}, out)
}

func TestRunStopsWhenInboxExhausted(t *testing.T) {
	asm := "-- HUMAN RESOURCE MACHINE PROGRAM --\n\n" +
		"a:\nINBOX\nOUTBOX\nJUMP a\n"
	office, err := Load(asm)
	require.NoError(t, err)
	office.MaxSteps = 1000

	out, err := office.Run([]int{1})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, out)
}

func TestRunErrorsOnOutboxWithEmptyHands(t *testing.T) {
	asm := "-- HUMAN RESOURCE MACHINE PROGRAM --\n\nOUTBOX\n"
	office, err := Load(asm)
	require.NoError(t, err)

	_, err = office.Run(nil)
	assert.Error(t, err)
}

func TestRunDetectsInfiniteLoop(t *testing.T) {
	asm := "-- HUMAN RESOURCE MACHINE PROGRAM --\n\n" +
		"a:\nJUMP a\n"
	office, err := Load(asm)
	require.NoError(t, err)
	office.MaxSteps = 50

	_, err = office.Run(nil)
	assert.Error(t, err)
}

func TestFloorCellsStartAtZero(t *testing.T) {
	asm := "-- HUMAN RESOURCE MACHINE PROGRAM --\n\nCOPYFROM 0\nOUTBOX\n"
	office, err := Load(asm)
	require.NoError(t, err)

	out, err := office.Run(nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, out)
}
