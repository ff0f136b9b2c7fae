package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turkce-yazilim-konati/karamel/lang/ast"
	"github.com/turkce-yazilim-konati/karamel/lang/class"
	"github.com/turkce-yazilim-konati/karamel/lang/compiler"
	"github.com/turkce-yazilim-konati/karamel/lang/storage"
	"github.com/turkce-yazilim-konati/karamel/lang/value"
)

func numLit(f float64) *ast.Primative { return &ast.Primative{Value: value.Number(f)} }

func sym(name string) *ast.Symbol { return &ast.Symbol{Name: name} }

// TestAssignmentBytecode is scenario S1: `erhan = 2020` compiles to
// `Load c0; Store v0; Halt`.
func TestAssignmentBytecode(t *testing.T) {
	root := &ast.Block{Statements: []ast.Node{
		&ast.Assignment{Target: sym("erhan"), Op: ast.AssignSet, Expression: numLit(2020)},
	}}

	b := storage.NewBuilder(value.NewArena())
	_, err := b.Build(root)
	require.NoError(t, err)

	prog, err := compiler.New(b.Storages, nil).Compile(root)
	require.NoError(t, err)

	assert.Equal(t, "0000 Load 0\n0002 Store 1\n0004 Halt\n", compiler.Disassemble(prog.Code))
}

// TestEndlessLoopWithBreakBytecode is scenario S3:
//
//	sonsuz:
//	    erhan = 123
//	    print(1)
//	    kır
//
// compiles to a backward Jump to the loop start and a forward Jump (the
// break) past it, to the Halt that follows the loop.
func TestEndlessLoopWithBreakBytecode(t *testing.T) {
	root := &ast.Block{Statements: []ast.Node{
		&ast.EndlessLoop{Body: &ast.Block{Statements: []ast.Node{
			&ast.Assignment{Target: sym("erhan"), Op: ast.AssignSet, Expression: numLit(123)},
			&ast.FuncCall{Callee: sym("print"), Arguments: []ast.Node{numLit(1)}},
			&ast.Break{},
		}}},
	}}

	b := storage.NewBuilder(value.NewArena())
	_, err := b.Build(root)
	require.NoError(t, err)

	modules := class.NewEmptyModuleCollection()
	modules.Register(&class.Module{Methods: map[string]*value.FunctionReference{
		"print": {Name: "print", CallKind: value.FuncNative, ArgCount: 1},
	}})

	prog, err := compiler.New(b.Storages, modules).Compile(root)
	require.NoError(t, err)

	want := "0000 Load 0\n" + // push 123
		"0002 Store 2\n" + // erhan = 123
		"0004 Load 1\n" + // push 1
		"0006 NativeCall 5 1\n" + // print(1), function reference resolved to a late constant
		"0009 Jump 3\n" + // kır: forward past the back-edge, to Halt
		"0012 Jump 65521\n" + // back edge to loop start (relative -15)
		"0015 Halt\n"
	assert.Equal(t, want, compiler.Disassemble(prog.Code))
}

// TestSymbolToSymbolAssignmentFusesToFastStore covers `erhan = 2020` followed
// by `diger = erhan`: the second assignment's RHS is a bare symbol already
// holding a value, so the compiler fuses the load and store into a single
// FastStore instead of a Load/Store pair.
func TestSymbolToSymbolAssignmentFusesToFastStore(t *testing.T) {
	root := &ast.Block{Statements: []ast.Node{
		&ast.Assignment{Target: sym("erhan"), Op: ast.AssignSet, Expression: numLit(2020)},
		&ast.Assignment{Target: sym("diger"), Op: ast.AssignSet, Expression: sym("erhan")},
	}}

	b := storage.NewBuilder(value.NewArena())
	_, err := b.Build(root)
	require.NoError(t, err)

	prog, err := compiler.New(b.Storages, nil).Compile(root)
	require.NoError(t, err)

	want := "0000 Load 0\n" + // push 2020
		"0002 Store 1\n" + // erhan = 2020
		"0004 FastStore 2 1\n" + // diger = erhan, fused
		"0007 Halt\n"
	assert.Equal(t, want, compiler.Disassemble(prog.Code))
}

// TestSuffixChainStashesIntermediateCallToTemp covers a chained call
// followed by an index, object.method(1)[0]: the parser marks the
// object.method(1) AccessorFuncCall assign_to_temp since the outer [0]
// consumes it rather than returning it directly (see parser_test.go's
// TestSuffixChain), so its result must land in a temp slot before the
// Indexer picks it back up off the stack.
func TestSuffixChainStashesIntermediateCallToTemp(t *testing.T) {
	root := &ast.Block{Statements: []ast.Node{
		&ast.Indexer{
			Body: &ast.AccessorFuncCall{
				Source: sym("object"),
				Indexer: &ast.FuncCall{
					Callee:    sym("method"),
					Arguments: []ast.Node{numLit(1)},
				},
				AssignToTemp: true,
			},
			IndexExpr: numLit(0),
		},
	}}

	b := storage.NewBuilder(value.NewArena())
	_, err := b.Build(root)
	require.NoError(t, err)

	modules := class.NewEmptyModuleCollection()
	modules.Register(&class.Module{Path: []string{"object"}, Methods: map[string]*value.FunctionReference{
		"method": {Name: "method", CallKind: value.FuncNative, ArgCount: 1},
	}})

	prog, err := compiler.New(b.Storages, modules).Compile(root)
	require.NoError(t, err)

	want := "0000 Load 2\n" + // push object
		"0002 Load 0\n" + // push argument 1
		"0004 NativeCall 5 1\n" + // object.method(1)
		"0007 CopyToStore 4\n" + // stash the result before [0] consumes it
		"0009 Load 1\n" + // push index 0
		"0011 GetItem\n" +
		"0012 Halt\n"
	assert.Equal(t, want, compiler.Disassemble(prog.Code))
}

// TestSlotBoundsAfterLateConstant covers invariant 5 for the native-call
// path specifically: resolving print's FunctionReference after Build has
// already run must not invalidate the erhan variable's already-assigned
// slot, and the grown Memory must still cover every slot the emitted
// bytecode references (including the late constant's own slot).
func TestSlotBoundsAfterLateConstant(t *testing.T) {
	root := &ast.Block{Statements: []ast.Node{
		&ast.Assignment{Target: sym("erhan"), Op: ast.AssignSet, Expression: numLit(1)},
		&ast.FuncCall{Callee: sym("print"), Arguments: []ast.Node{sym("erhan")}},
	}}

	b := storage.NewBuilder(value.NewArena())
	_, err := b.Build(root)
	require.NoError(t, err)
	st := b.Storages[0]
	preCompileMemLen := len(st.Memory)

	modules := class.NewEmptyModuleCollection()
	modules.Register(&class.Module{Methods: map[string]*value.FunctionReference{
		"print": {Name: "print", CallKind: value.FuncNative, ArgCount: 1},
	}})

	_, err = compiler.New(b.Storages, modules).Compile(root)
	require.NoError(t, err)

	erhanSlot, ok := st.GetVariableSlot("erhan")
	require.True(t, ok)
	assert.Less(t, erhanSlot, preCompileMemLen, "erhan's slot must still fall inside the pre-compile memory block")
	assert.Greater(t, len(st.Memory), preCompileMemLen, "the late print constant must have grown Memory")
	assert.Less(t, preCompileMemLen, len(st.Memory), "the late constant's own slot must be within the grown Memory")
}
