package lowering

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hc/internal/ast"
)

func TestFoldAdditive(t *testing.T) {
	assert.Equal(t, 7, foldAdditive(ast.OpAdd, 3, 4))
	assert.Equal(t, -1, foldAdditive(ast.OpSubtract, 3, 4))
	assert.Equal(t, 1, foldAdditive(ast.OpDifference, 3, 4))
	assert.Equal(t, 1, foldAdditive(ast.OpDifference, 4, 3))
}

func TestRotateOps(t *testing.T) {
	cases := []struct {
		outer, inner ast.BinaryOp
		wantOp       ast.BinaryOp
		wantOp2      ast.BinaryOp
	}{
		{ast.OpAdd, ast.OpAdd, ast.OpAdd, ast.OpAdd},
		{ast.OpAdd, ast.OpSubtract, ast.OpAdd, ast.OpSubtract},
		{ast.OpSubtract, ast.OpAdd, ast.OpSubtract, ast.OpSubtract},
		{ast.OpSubtract, ast.OpSubtract, ast.OpSubtract, ast.OpAdd},
	}
	for _, c := range cases {
		gotOp, gotOp2 := rotateOps(c.outer, c.inner)
		assert.Equal(t, c.wantOp, gotOp)
		assert.Equal(t, c.wantOp2, gotOp2)
	}
}

func TestIsSimple(t *testing.T) {
	assert.True(t, isSimple(&ast.Number{Value: 3}))
	assert.True(t, isSimple(&ast.VariableRef{Name: "x"}))
	assert.False(t, isSimple(&ast.Binary{Op: ast.OpAdd, Left: &ast.Number{Value: 1}, Right: &ast.Number{Value: 2}}))
}
