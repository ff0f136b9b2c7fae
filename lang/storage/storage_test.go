package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turkce-yazilim-konati/karamel/lang/ast"
	"github.com/turkce-yazilim-konati/karamel/lang/storage"
	"github.com/turkce-yazilim-konati/karamel/lang/value"
)

func numLit(f float64) *ast.Primative { return &ast.Primative{Value: value.Number(f)} }

func sym(name string) *ast.Symbol { return &ast.Symbol{Name: name} }

// TestConstantDedup checks invariant 4: |storage.constants| equals the
// number of distinct primitive literals in scope, even when the same
// literal value appears in more than one statement.
func TestConstantDedup(t *testing.T) {
	root := &ast.Block{Statements: []ast.Node{
		&ast.Assignment{Target: sym("a"), Op: ast.AssignSet, Expression: numLit(1)},
		&ast.Assignment{Target: sym("b"), Op: ast.AssignSet, Expression: numLit(1)}, // same constant
		&ast.Assignment{Target: sym("c"), Op: ast.AssignSet, Expression: numLit(2)}, // distinct
	}}

	b := storage.NewBuilder(value.NewArena())
	_, err := b.Build(root)
	require.NoError(t, err)

	require.Len(t, b.Storages, 1)
	assert.Equal(t, 2, b.Storages[0].ConstantSize())
	assert.Equal(t, 3, b.Storages[0].VariableSize())
}

// TestSlotBoundsAfterBuild checks invariant 5: every slot a Storage hands
// out (constant or variable) is within Memory's bounds once Build runs.
func TestSlotBoundsAfterBuild(t *testing.T) {
	root := &ast.Block{Statements: []ast.Node{
		&ast.Assignment{Target: sym("a"), Op: ast.AssignSet, Expression: numLit(1)},
		&ast.Assignment{Target: sym("b"), Op: ast.AssignSet, Expression: numLit(2)},
	}}

	b := storage.NewBuilder(value.NewArena())
	_, err := b.Build(root)
	require.NoError(t, err)

	st := b.Storages[0]
	require.True(t, st.Built())

	varSlotA, ok := st.GetVariableSlot("a")
	require.True(t, ok)
	varSlotB, ok := st.GetVariableSlot("b")
	require.True(t, ok)

	assert.Less(t, varSlotA, len(st.Memory))
	assert.Less(t, varSlotB, len(st.Memory))
	assert.GreaterOrEqual(t, varSlotA, st.ConstantSize())
}

// TestFunctionDefinationGetsChildStorageWithParent confirms each function
// body gets its own Storage whose Parent points back to the enclosing one.
func TestFunctionDefinationGetsChildStorageWithParent(t *testing.T) {
	root := &ast.Block{Statements: []ast.Node{
		&ast.FunctionDefination{
			Name:      "add",
			Arguments: []string{"a", "b"},
			Body: &ast.Block{Statements: []ast.Node{
				&ast.Return{Expression: &ast.Binary{Left: sym("a"), Op: 0, Right: sym("b")}},
			}},
		},
	}}

	b := storage.NewBuilder(value.NewArena())
	_, err := b.Build(root)
	require.NoError(t, err)

	require.Len(t, b.Storages, 2)
	assert.Equal(t, -1, b.Storages[0].Parent)
	assert.Equal(t, 0, b.Storages[1].Parent)
	assert.Equal(t, 2, b.Storages[1].VariableSize())
}
