// Package value implements the closed Primative union and the NaN-boxed
// VmObject encoding the compiler's constant pool and the (out of scope) VM
// operate on. Bit patterns are kept identical to
// original_source/karamellib/src/types.rs's VmObject/QNAN/POINTER_FLAG
// constants.
package value

import "math"

// Kind is the Primative discriminant, a small stable integer (0..=9) so
// that it can index a parallel per-kind table. Package class does not
// define such a table.
type Kind uint8

const ( //nolint:revive
	KindNumber Kind = iota
	KindText
	KindBool
	KindEmpty
	KindList
	KindDict
	KindFunctionReference
	KindClass
	kindReserved8
	kindReserved9
)

func (k Kind) String() string { return kindNames[k] }

var kindNames = [...]string{
	KindNumber:            "number",
	KindText:              "text",
	KindBool:              "bool",
	KindEmpty:             "empty",
	KindList:              "list",
	KindDict:              "dict",
	KindFunctionReference: "function_reference",
	KindClass:             "class",
	kindReserved8:         "reserved8",
	kindReserved9:         "reserved9",
}

// Primative is the closed union of runtime values: Number, Text, Bool,
// Empty, List, Dict, FunctionReference, Class.
type Primative interface {
	Kind() Kind
	// Equal reports structural equality, used by the storage builder to
	// dedupe constants. Two heap-allocated Primatives (List/Dict) are equal
	// only by identity (pointer equality), matching the original's
	// Rc-pointer semantics for mutable containers; Text/Number/Bool/Empty
	// compare by value.
	Equal(other Primative) bool
}

// Number is a double-precision float value.
type Number float64

func (Number) Kind() Kind { return KindNumber }
func (n Number) Equal(other Primative) bool {
	o, ok := other.(Number)
	return ok && math.Float64bits(float64(n)) == math.Float64bits(float64(o))
}

// Text is a shared, immutable string value.
type Text struct{ Value string }

func (*Text) Kind() Kind { return KindText }
func (t *Text) Equal(other Primative) bool {
	o, ok := other.(*Text)
	return ok && t.Value == o.Value
}

// Bool is a boolean value.
type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (b Bool) Equal(other Primative) bool {
	o, ok := other.(Bool)
	return ok && b == o
}

// Empty is the language's null/empty value.
type Empty struct{}

func (Empty) Kind() Kind { return KindEmpty }
func (Empty) Equal(other Primative) bool {
	_, ok := other.(Empty)
	return ok
}

// List is a shared, mutable vector of VmObjects.
type List struct{ Items []VmObject }

func (*List) Kind() Kind { return KindList }
func (l *List) Equal(other Primative) bool {
	o, ok := other.(*List)
	return ok && l == o
}

// FuncKind distinguishes a native (host-provided) function reference from
// one compiled to bytecode.
type FuncKind uint8

const (
	FuncNative FuncKind = iota
	FuncOpcode
)

// NativeFunc is the shape of a host-provided callable. Native function
// bodies (the standard-library modules) are an external collaborator and
// are not implemented by this module; this type only pins down the
// contract the compiler links against.
type NativeFunc func(args []VmObject) (VmObject, error)

// FunctionReference identifies a callable, either native or compiled. It
// implements Primative directly (Kind() always reports KindFunctionReference,
// CallKind distinguishes native from compiled).
type FunctionReference struct {
	Name       string
	ModulePath []string
	CallKind   FuncKind

	// Native is set when CallKind == FuncNative.
	Native NativeFunc

	// BytecodeOffset and DefinedStorageIndex are set when CallKind ==
	// FuncOpcode; ArgCount is set for both kinds.
	BytecodeOffset      uint32
	DefinedStorageIndex int
	ArgCount            int
}

func (*FunctionReference) Kind() Kind { return KindFunctionReference }
func (f *FunctionReference) Equal(other Primative) bool {
	o, ok := other.(*FunctionReference)
	return ok && f == o
}

// ClassInstance is the minimal capability value package class's Class
// implementations satisfy; kept as an interface here (rather than importing
// package class) to avoid an import cycle, since package class needs
// Primative for its ClassProperty.Field payload.
type ClassInstance interface {
	ClassName() string
}

// Class wraps a ClassInstance as a Primative.
type Class struct{ Instance ClassInstance }

func (Class) Kind() Kind { return KindClass }
func (c Class) Equal(other Primative) bool {
	o, ok := other.(Class)
	return ok && c.Instance == o.Instance
}

// Dict is a shared, mutable string-keyed map of VmObjects, backed by a
// swiss-table map (see dict.go).
