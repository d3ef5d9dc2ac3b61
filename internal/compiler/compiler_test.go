package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hc/internal/hrm"
)

func compileAndRun(t *testing.T, source string, inbox []int) []int {
	t.Helper()
	asm, err := Compile("<test>", source)
	require.NoError(t, err)

	office, err := hrm.Load(asm)
	require.NoError(t, err)
	office.MaxSteps = 100000

	out, err := office.Run(inbox)
	require.NoError(t, err)
	return out
}

func TestEcho(t *testing.T) {
	source := "forever\n\tinput_val = input\n\toutput input_val\n"
	out := compileAndRun(t, source, []int{1, 2, 3})
	assert.Equal(t, []int{1, 2, 3}, out)
}

func TestTripler(t *testing.T) {
	source := "forever\n\tx = input\n\toutput x * 3\n"
	out := compileAndRun(t, source, []int{6, -1, 7, 0})
	assert.Equal(t, []int{18, -3, 21, 0}, out)
}

func TestOctoplier(t *testing.T) {
	source := "forever\n\tx = input\n\toutput x * 8\n"
	out := compileAndRun(t, source, []int{3, -2, 6, 0})
	assert.Equal(t, []int{24, -16, 48, 0}, out)
}

// TestEqualityXNOR reads a pair and only emits it when both values agree in
// sign (both non-negative or both negative) — is_xor composed from two
// copies of the right operand's branch block.
func TestEqualityXNOR(t *testing.T) {
	source := strings.Join([]string{
		"forever",
		"\ta = input",
		"\tb = input",
		"\tif (a < 0) == (b < 0)",
		"\t\toutput a",
		"\t\toutput b",
	}, "\n") + "\n"
	out := compileAndRun(t, source, []int{3, -4, 2, 13, -9, -14})
	assert.Equal(t, []int{2, 13, -9, -14}, out)
}

func TestUseBeforeInit(t *testing.T) {
	_, err := Compile("<test>", "output foo\n")
	require.Error(t, err)
	se, ok := err.(*SourceError)
	require.True(t, ok, "expected a *SourceError, got %T: %v", err, err)
	assert.Contains(t, se.Error(), "Variable 'foo' referenced before assignment on line 1")
}

func TestDuplicateAddress(t *testing.T) {
	source := "init a @ 0\ninit b @ 0\n"
	_, err := Compile("<test>", source)
	require.Error(t, err)
	se, ok := err.(*SourceError)
	require.True(t, ok, "expected a *SourceError, got %T: %v", err, err)
	assert.Contains(t, se.Error(), "Multiple variables declared at floor address 0 on line 2")
}

func TestEmptyProgram(t *testing.T) {
	asm, err := Compile("<test>", "")
	require.NoError(t, err)
	assert.Equal(t, "-- HUMAN RESOURCE MACHINE PROGRAM --\n\n", asm)
}

func TestForeverNoOpBody(t *testing.T) {
	// The surface grammar requires a non-empty indented block, so this
	// exercises the nearest reachable boundary case: a loop body whose only
	// statement reassigns a variable to itself and never outputs anything.
	source := "init x @ 0\nforever\n\tx = x\n"
	asm, err := Compile("<test>", source)
	require.NoError(t, err)
	assert.Contains(t, asm, "JUMP")
}

func TestWhileFalse(t *testing.T) {
	source := "while 0 == 1\n\toutput input\n"
	asm, err := Compile("<test>", source)
	require.NoError(t, err)
	office, err := hrm.Load(asm)
	require.NoError(t, err)
	office.MaxSteps = 1000
	out, err := office.Run([]int{1, 2, 3})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestAdditiveIdentityFolding(t *testing.T) {
	source := "forever\n\tx = input\n\toutput x + 0\n"
	out := compileAndRun(t, source, []int{5, -3, 0})
	assert.Equal(t, []int{5, -3, 0}, out)
}

func TestMultiplyByOneIsIdentity(t *testing.T) {
	source := "forever\n\tx = input\n\toutput x * 1\n"
	out := compileAndRun(t, source, []int{5, -3, 0})
	assert.Equal(t, []int{5, -3, 0}, out)
}

func TestMultiplyByZeroFoldsButKeepsSideEffect(t *testing.T) {
	source := "forever\n\tx = input * 0\n\toutput x\n"
	out := compileAndRun(t, source, []int{5, -3, 7})
	assert.Equal(t, []int{0, 0, 0}, out)
}

func TestWhileLoop(t *testing.T) {
	source := strings.Join([]string{
		"init n @ 0",
		"n = input",
		"while n > 0",
		"\toutput n",
		"\tn = n - 1",
	}, "\n") + "\n"
	out := compileAndRun(t, source, []int{3})
	assert.Equal(t, []int{3, 2, 1}, out)
}

func TestSelfAddDoubling(t *testing.T) {
	source := "forever\n\tx = input\n\ty = x + x\n\toutput y\n"
	out := compileAndRun(t, source, []int{1, 2, 3})
	assert.Equal(t, []int{2, 4, 6}, out)
}
