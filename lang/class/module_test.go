package class_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turkce-yazilim-konati/karamel/lang/class"
	"github.com/turkce-yazilim-konati/karamel/lang/value"
)

func TestFindMethodBaseModule(t *testing.T) {
	mc := class.NewEmptyModuleCollection()
	mc.Register(&class.Module{Methods: map[string]*value.FunctionReference{
		"print": {Name: "print", CallKind: value.FuncNative, ArgCount: 1},
	}})

	fn, ok := mc.FindMethod(nil, "print")
	require.True(t, ok)
	assert.Equal(t, "print", fn.Name)
	assert.Equal(t, 1, fn.ArgCount)

	_, ok = mc.FindMethod(nil, "missing")
	assert.False(t, ok)
}

func TestFindMethodByPath(t *testing.T) {
	mc := class.NewEmptyModuleCollection()
	mc.Register(&class.Module{Path: []string{"io"}, Methods: map[string]*value.FunctionReference{
		"write": {Name: "write", ModulePath: []string{"io"}, CallKind: value.FuncNative, ArgCount: 1},
	}})

	fn, ok := mc.FindMethod([]string{"io"}, "write")
	require.True(t, ok)
	assert.Equal(t, "write", fn.Name)

	_, ok = mc.FindMethod(nil, "write")
	assert.False(t, ok, "a method under io shouldn't resolve against the base module")

	_, ok = mc.FindMethod([]string{"numeric"}, "write")
	assert.False(t, ok, "a different module path must not match")
}

func TestRegisterReplacesExistingPath(t *testing.T) {
	mc := class.NewEmptyModuleCollection()
	mc.Register(&class.Module{Path: []string{"io"}, Methods: map[string]*value.FunctionReference{
		"read": {Name: "read", ArgCount: 0},
	}})
	mc.Register(&class.Module{Path: []string{"io"}, Methods: map[string]*value.FunctionReference{
		"read": {Name: "read", ArgCount: 2},
	}})

	fn, ok := mc.FindMethod([]string{"io"}, "read")
	require.True(t, ok)
	assert.Equal(t, 2, fn.ArgCount, "the second Register call should have replaced the first module at the same path")
}

func TestLoadBuiltinManifest(t *testing.T) {
	mc, err := class.LoadBuiltinManifest()
	require.NoError(t, err)

	print, ok := mc.FindMethod(nil, "print")
	require.True(t, ok)
	assert.Equal(t, 1, print.ArgCount)
	assert.Equal(t, value.FuncNative, print.CallKind)

	yazdir, ok := mc.FindMethod(nil, "yazdır")
	require.True(t, ok)
	assert.Equal(t, 1, yazdir.ArgCount)

	write, ok := mc.FindMethod([]string{"io"}, "write")
	require.True(t, ok)
	assert.Equal(t, 1, write.ArgCount)

	read, ok := mc.FindMethod([]string{"io"}, "read")
	require.True(t, ok)
	assert.Equal(t, 0, read.ArgCount)

	dump, ok := mc.FindMethod([]string{"debug"}, "dump")
	require.True(t, ok)
	assert.Equal(t, 1, dump.ArgCount)

	_, ok = mc.FindMethod([]string{"nonexistent"}, "anything")
	assert.False(t, ok)
}
