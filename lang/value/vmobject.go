package value

import "math"

// Bit patterns, kept identical to
// original_source/karamellib/src/types.rs's VmObject encoding.
const (
	tagEmpty = 0
	tagFalse = 1
	tagTrue  = 2

	qnan        uint64 = 0x7ffc_0000_0000_0000
	pointerFlag uint64 = 0x8000_0000_0000_0000
	pointerMask uint64 = 0x0000_ffff_ffff_ffff
)

// VmObject is an opaque NaN-boxed 64-bit machine word: a finite double
// holds itself, anything else holds a QNaN payload encoding a boolean,
// empty, or a heap handle into an Arena.
type VmObject uint64

// Arena owns heap-allocated Primatives (Text/List/Dict/FunctionReference/
// Class) referenced by VmObjects, indexed by a 48-bit handle that round
// -trips exactly through the NaN-box's low bits.
type Arena struct {
	objs []Primative
	free []uint64
}

// NewArena returns an empty Arena.
func NewArena() *Arena { return &Arena{} }

// Alloc stores p in the arena and returns its handle.
func (a *Arena) Alloc(p Primative) uint64 {
	if n := len(a.free); n > 0 {
		h := a.free[n-1]
		a.free = a.free[:n-1]
		a.objs[h] = p
		return h
	}
	h := uint64(len(a.objs))
	a.objs = append(a.objs, p)
	return h
}

// Get returns the Primative stored at handle.
func (a *Arena) Get(handle uint64) Primative {
	return a.objs[handle]
}

// Free releases a handle for reuse. The caller must ensure nothing still
// references it (the arena itself performs no reference counting or GC).
func (a *Arena) Free(handle uint64) {
	a.objs[handle] = nil
	a.free = append(a.free, handle)
}

// Encode converts a Primative to its NaN-boxed VmObject, allocating a heap
// slot in arena for any variant that isn't inline (everything but Number,
// Bool and Empty).
func Encode(p Primative, arena *Arena) VmObject {
	switch v := p.(type) {
	case Number:
		return VmObject(math.Float64bits(float64(v)))
	case Bool:
		if v {
			return VmObject(qnan | tagTrue)
		}
		return VmObject(qnan | tagFalse)
	case Empty:
		return VmObject(qnan | tagEmpty)
	default:
		handle := arena.Alloc(p)
		return VmObject(qnan | pointerFlag | (handle & pointerMask))
	}
}

// Decode converts a NaN-boxed VmObject back to its Primative.
func Decode(v VmObject, arena *Arena) Primative {
	bits := uint64(v)
	if bits&qnan != qnan {
		return Number(math.Float64frombits(bits))
	}
	if bits&pointerFlag != 0 {
		return arena.Get(bits & pointerMask)
	}
	switch bits & 0x3 {
	case tagTrue:
		return Bool(true)
	case tagFalse:
		return Bool(false)
	default:
		return Empty{}
	}
}

// IsNumber reports whether v decodes to a finite-double Number without
// needing an Arena.
func (v VmObject) IsNumber() bool {
	return uint64(v)&qnan != qnan
}

// Float64 returns the number encoded in v. Only valid when IsNumber is true.
func (v VmObject) Float64() float64 {
	return math.Float64frombits(uint64(v))
}
