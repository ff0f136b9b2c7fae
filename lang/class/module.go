package class

import (
	_ "embed"

	"gopkg.in/yaml.v3"

	"github.com/turkce-yazilim-konati/karamel/lang/value"
)

// Module exposes one built-in module's callable surface, per the external
// module contract in spec.md §6: a dotted path plus a flat set of methods.
type Module struct {
	Path    []string
	Methods map[string]*value.FunctionReference
}

// ModuleCollection is the compiler-wide, read-only registry of built-in
// modules the compiler's FuncCall/AccessorFuncCall codegen consults to
// resolve native calls (see lang/compiler.ModuleCollection).
type ModuleCollection struct {
	modules []*Module
}

// FindMethod implements compiler.ModuleCollection: it looks up name within
// the module addressed by modulePath (nil/empty path matches the base,
// path-less module).
func (mc *ModuleCollection) FindMethod(modulePath []string, name string) (*value.FunctionReference, bool) {
	for _, m := range mc.modules {
		if pathEqual(m.Path, modulePath) {
			if fn, ok := m.Methods[name]; ok {
				return fn, true
			}
		}
	}
	return nil, false
}

func pathEqual(a, b []string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// manifestEntry is one module's declared capability surface: name and
// arity only. Native bodies are an external collaborator's concern and are
// never described here.
type manifestEntry struct {
	Path    []string `yaml:"path"`
	Methods []struct {
		Name string `yaml:"name"`
		Argc int    `yaml:"argc"`
	} `yaml:"methods"`
}

//go:embed builtin_modules.yaml
var builtinManifestYAML []byte

// LoadBuiltinManifest parses the embedded built-in module capability
// manifest (base/io/numeric/debug, per spec.md §6) and returns a
// ModuleCollection whose FunctionReferences have no Native implementation
// attached — callers that need to actually execute a native call must
// populate Native themselves; this manifest only fixes names and arities
// so the compiler's function-linking tests have a stable fixture.
func LoadBuiltinManifest() (*ModuleCollection, error) {
	var entries []manifestEntry
	if err := yaml.Unmarshal(builtinManifestYAML, &entries); err != nil {
		return nil, err
	}

	mc := &ModuleCollection{}
	for _, e := range entries {
		m := &Module{Path: e.Path, Methods: make(map[string]*value.FunctionReference)}
		for _, meth := range e.Methods {
			m.Methods[meth.Name] = &value.FunctionReference{
				Name:       meth.Name,
				ModulePath: e.Path,
				CallKind:   value.FuncNative,
				ArgCount:   meth.Argc,
			}
		}
		mc.modules = append(mc.modules, m)
	}
	return mc, nil
}

// NewEmptyModuleCollection returns a ModuleCollection with no modules
// registered, useful for tests that stub individual FindMethod results.
func NewEmptyModuleCollection() *ModuleCollection { return &ModuleCollection{} }

// Register adds m to the collection, replacing any existing module at the
// same path.
func (mc *ModuleCollection) Register(m *Module) {
	for i, existing := range mc.modules {
		if pathEqual(existing.Path, m.Path) {
			mc.modules[i] = m
			return
		}
	}
	mc.modules = append(mc.modules, m)
}
