// Package class implements the capability-set polymorphism the compiler
// and (out of scope) runtime consult for method/property dispatch and
// built-in module lookup, grounded on
// original_source/karamellib/src/buildin/class/baseclass.rs and
// original_source/karamellib/src/compiler/context.rs.
package class

import "github.com/turkce-yazilim-konati/karamel/lang/value"

// ClassProperty is either a shared data field or a method, matching the
// original's ClassProperty enum.
type ClassProperty struct {
	Field    value.Primative          // set when this property is a data field
	Function *value.FunctionReference // set when this property is a method
}

// IsFunction reports whether this property is a method rather than a field.
func (p ClassProperty) IsFunction() bool { return p.Function != nil }

// IndexerGetCall resolves obj[key] for a class that supports indexing.
type IndexerGetCall func(obj value.VmObject, key value.VmObject) (value.VmObject, error)

// IndexerSetCall resolves obj[key] = val for a class that supports
// indexed assignment.
type IndexerSetCall func(obj value.VmObject, key, val value.VmObject) error

// ClassConfig is a class's complete, queryable capability description.
type ClassConfig struct {
	Name       string
	Properties map[string]ClassProperty
	Getter     IndexerGetCall
	Setter     IndexerSetCall
}

// Class is the capability set every Primative class implementation
// (built-in or user-defined) must satisfy.
type Class interface {
	SetClassConfig(cfg ClassConfig)
	ClassName() string
	HasElement(obj *value.VmObject, name string) bool
	GetElement(obj *value.VmObject, name string) (ClassProperty, bool)
	Properties() map[string]ClassProperty
	PropertyCount() int
	AddMethod(name string, fn value.NativeFunc)
	AddProperty(name string, p value.Primative)
	SetGetter(fn IndexerGetCall)
	GetGetter() (IndexerGetCall, bool)
	SetSetter(fn IndexerSetCall)
	GetSetter() (IndexerSetCall, bool)
}

// BasicInnerClass is the default, config-driven Class implementation used
// by every built-in class (numbers, text, list, dict) and by user-defined
// classes alike; it owns nothing beyond its ClassConfig.
type BasicInnerClass struct {
	config ClassConfig
}

// NewBasicInnerClass returns an empty, unnamed class shell.
func NewBasicInnerClass() *BasicInnerClass {
	return &BasicInnerClass{config: ClassConfig{Properties: make(map[string]ClassProperty)}}
}

func (c *BasicInnerClass) SetClassConfig(cfg ClassConfig) {
	if cfg.Properties == nil {
		cfg.Properties = make(map[string]ClassProperty)
	}
	c.config = cfg
}

func (c *BasicInnerClass) ClassName() string { return c.config.Name }

// SetName sets the class's name once, if it hasn't been set already.
func (c *BasicInnerClass) SetName(name string) {
	if c.config.Name == "" {
		c.config.Name = name
	}
}

func (c *BasicInnerClass) HasElement(_ *value.VmObject, name string) bool {
	_, ok := c.config.Properties[name]
	return ok
}

func (c *BasicInnerClass) GetElement(_ *value.VmObject, name string) (ClassProperty, bool) {
	p, ok := c.config.Properties[name]
	return p, ok
}

func (c *BasicInnerClass) Properties() map[string]ClassProperty { return c.config.Properties }

func (c *BasicInnerClass) PropertyCount() int { return len(c.config.Properties) }

func (c *BasicInnerClass) AddMethod(name string, fn value.NativeFunc) {
	if c.config.Properties == nil {
		c.config.Properties = make(map[string]ClassProperty)
	}
	c.config.Properties[name] = ClassProperty{
		Function: &value.FunctionReference{Name: name, CallKind: value.FuncNative, Native: fn},
	}
}

func (c *BasicInnerClass) AddProperty(name string, p value.Primative) {
	if c.config.Properties == nil {
		c.config.Properties = make(map[string]ClassProperty)
	}
	c.config.Properties[name] = ClassProperty{Field: p}
}

func (c *BasicInnerClass) SetGetter(fn IndexerGetCall) { c.config.Getter = fn }
func (c *BasicInnerClass) GetGetter() (IndexerGetCall, bool) {
	return c.config.Getter, c.config.Getter != nil
}
func (c *BasicInnerClass) SetSetter(fn IndexerSetCall) { c.config.Setter = fn }
func (c *BasicInnerClass) GetSetter() (IndexerSetCall, bool) {
	return c.config.Setter, c.config.Setter != nil
}

// ClassName lets BasicInnerClass satisfy value.ClassInstance, so a Class
// can be wrapped directly in a value.Class primitive.
var _ value.ClassInstance = (*BasicInnerClass)(nil)
