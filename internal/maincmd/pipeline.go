package maincmd

import (
	"fmt"
	"os"

	"github.com/turkce-yazilim-konati/karamel/lang/ast"
	"github.com/turkce-yazilim-konati/karamel/lang/class"
	"github.com/turkce-yazilim-konati/karamel/lang/compiler"
	"github.com/turkce-yazilim-konati/karamel/lang/parser"
	"github.com/turkce-yazilim-konati/karamel/lang/storage"
	"github.com/turkce-yazilim-konati/karamel/lang/token"
	"github.com/turkce-yazilim-konati/karamel/lang/value"
)

// parseFile reads path as token-fixture notation and parses it into a
// root Block.
func parseFile(path string) (*ast.Block, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	toks, err := token.ParseFixture(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	root, err := parser.Parse(toks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

// buildStorage parses path and runs the storage builder over the result.
func buildStorage(path string) (*ast.Block, *storage.Builder, error) {
	root, err := parseFile(path)
	if err != nil {
		return nil, nil, err
	}
	arena := value.NewArena()
	b := storage.NewBuilder(arena)
	if _, err := b.Build(root); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, b, nil
}

// compileFile parses, builds storage, and compiles path against modules.
func compileFile(path string, modules compiler.ModuleCollection) (*compiler.Program, error) {
	root, b, err := buildStorage(path)
	if err != nil {
		return nil, err
	}
	c := compiler.New(b.Storages, modules)
	prog, err := c.Compile(root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

// loadModules builds the built-in module surface from the embedded
// manifest, the same set the compiler's NativeCall resolution dispatches
// against.
func loadModules() (*class.ModuleCollection, error) {
	return class.LoadBuiltinManifest()
}
