package lowering

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hc/internal/ast"
)

func TestFoldCompare(t *testing.T) {
	assert.True(t, foldCompare(ast.CmpEq, 3, 3))
	assert.False(t, foldCompare(ast.CmpEq, 3, 4))
	assert.True(t, foldCompare(ast.CmpNe, 3, 4))
	assert.True(t, foldCompare(ast.CmpLt, 2, 3))
	assert.True(t, foldCompare(ast.CmpLe, 3, 3))
	assert.True(t, foldCompare(ast.CmpGt, 4, 3))
	assert.True(t, foldCompare(ast.CmpGe, 3, 3))
}

func TestFlipCompareInvertsOrderingButKeepsEquality(t *testing.T) {
	assert.Equal(t, ast.CmpGt, flipCompare(ast.CmpLt))
	assert.Equal(t, ast.CmpGe, flipCompare(ast.CmpLe))
	assert.Equal(t, ast.CmpLt, flipCompare(ast.CmpGt))
	assert.Equal(t, ast.CmpLe, flipCompare(ast.CmpGe))
	assert.Equal(t, ast.CmpEq, flipCompare(ast.CmpEq))
	assert.Equal(t, ast.CmpNe, flipCompare(ast.CmpNe))
}
