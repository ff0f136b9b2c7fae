package value

import (
	"fmt"

	"github.com/dolthub/swiss"
)

// Dict is a shared, mutable string-keyed map of VmObjects. Backed by
// dolthub/swiss, the same swiss-table map the teacher repository uses for
// its own runtime Map value.
type Dict struct {
	m *swiss.Map[string, VmObject]
}

// NewDict returns a Dict with initial capacity for at least size entries.
func NewDict(size int) *Dict {
	return &Dict{m: swiss.NewMap[string, VmObject](uint32(size))}
}

func (*Dict) Kind() Kind { return KindDict }

// Equal compares Dicts by identity: two distinct Dict values are never
// structurally equal, matching the original's Rc-pointer equality for
// mutable containers.
func (d *Dict) Equal(other Primative) bool {
	o, ok := other.(*Dict)
	return ok && d == o
}

func (d *Dict) Get(key string) (VmObject, bool) { return d.m.Get(key) }
func (d *Dict) Set(key string, v VmObject)       { d.m.Put(key, v) }
func (d *Dict) Delete(key string) bool           { return d.m.Delete(key) }
func (d *Dict) Len() int                         { return d.m.Count() }

// Each calls fn for every key/value pair currently in the dict.
func (d *Dict) Each(fn func(key string, v VmObject) bool) {
	d.m.Iter(fn)
}

func (d *Dict) String() string { return fmt.Sprintf("dict(%p)", d) }
