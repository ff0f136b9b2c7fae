// Package storage implements the pre-codegen tree walk that allocates each
// function body (including the implicit top level) its own constant/
// variable/temp memory frame, grounded on
// original_source/src/compiler/dynamic_storage.rs and
// original_source/karamellib/src/compiler/context.rs.
package storage

import (
	"golang.org/x/exp/slices"

	"github.com/turkce-yazilim-konati/karamel/lang/errs"
	"github.com/turkce-yazilim-konati/karamel/lang/value"
)

// maxSlots is the hard per-storage cap: slot indices are encoded as a
// single byte by the compiler.
const maxSlots = 256

// Storage is one function body's (or the top level's) memory frame. After
// Build, Memory is laid out [constants | variables | temps] and every slot
// holds value.Empty{} except the constants, which hold their final value.
type Storage struct {
	Constants      []value.VmObject // deduped, in first-seen order
	constantValues []value.Primative

	Variables map[string]int // name -> slot index, relative to variable block start
	varOrder  []string

	TempSize    int
	TempCounter int

	Parent int // index into Builder.Storages, or -1 for the top level

	Memory []value.VmObject

	// lateConstantValues/lateConstantSlots record constants registered via
	// AddLateConstant, after Build already fixed the variable/temp block
	// offsets (native function references, resolved only once the compiler
	// sees the call site). Kept separate from Constants/constantValues so
	// ConstantSize() — which every variable/temp slot is computed relative
	// to — never changes after Build.
	lateConstantValues []value.Primative
	lateConstantSlots  []int

	built bool
	arena *value.Arena
}

// New returns an empty Storage with the given parent (-1 for none).
func New(parent int, arena *value.Arena) *Storage {
	return &Storage{
		Variables: make(map[string]int),
		Parent:    parent,
		arena:     arena,
	}
}

// ConstantSize returns the number of constant slots.
func (s *Storage) ConstantSize() int { return len(s.Constants) }

// VariableSize returns the number of variable slots.
func (s *Storage) VariableSize() int { return len(s.Variables) }

// AddConstant deduplicates p by structural equality against the constants
// already recorded and returns its slot index, appending a new slot only
// when no equal constant exists yet. Once Build has run, a new constant is
// placed through AddLateConstant instead, so ConstantSize() stays fixed.
func (s *Storage) AddConstant(p value.Primative) (int, error) {
	if idx := slices.IndexFunc(s.constantValues, func(existing value.Primative) bool {
		return existing.Equal(p)
	}); idx >= 0 {
		return idx, nil
	}
	if s.built {
		return s.AddLateConstant(p)
	}
	if s.totalSlots() >= maxSlots {
		return 0, errs.New(errs.StorageOverflow, 0, 0)
	}
	idx := len(s.constantValues)
	s.constantValues = append(s.constantValues, p)
	s.Constants = append(s.Constants, value.Encode(p, s.arena))
	return idx, nil
}

// AddVariable registers name if not already present and returns its slot
// index (relative to the variable block, i.e. added to ConstantSize() to
// get the absolute memory slot once Build has run).
func (s *Storage) AddVariable(name string) (int, error) {
	if idx, ok := s.Variables[name]; ok {
		return idx, nil
	}
	if s.totalSlots() >= maxSlots {
		return 0, errs.New(errs.StorageOverflow, 0, 0)
	}
	idx := len(s.varOrder)
	s.Variables[name] = idx
	s.varOrder = append(s.varOrder, name)
	return idx, nil
}

// GetVariableSlot returns the absolute memory slot for name, or false if
// name was never registered. Valid only after Build.
func (s *Storage) GetVariableSlot(name string) (int, bool) {
	idx, ok := s.Variables[name]
	if !ok {
		return 0, false
	}
	return s.ConstantSize() + idx, true
}

// GetFreeTempSlot allocates the next temporary slot for the current
// expression and returns its absolute memory slot. TempCounter is reset by
// the caller (the compiler) at each statement boundary.
func (s *Storage) GetFreeTempSlot() int {
	idx := s.TempCounter
	s.TempCounter++
	if s.TempCounter > s.TempSize {
		s.TempSize = s.TempCounter
	}
	return s.ConstantSize() + s.VariableSize() + idx
}

// ResetTempCounter starts a fresh temp-slot generation; called by the
// compiler between independent statements so temp slots are reused rather
// than growing unbounded.
func (s *Storage) ResetTempCounter() { s.TempCounter = 0 }

func (s *Storage) totalSlots() int {
	return s.ConstantSize() + len(s.varOrder) + s.TempSize
}

// Build finalizes the frame: it fixes ConstantSize, extends Memory to
// cover every constant/variable/temp slot (filling new slots with
// value.Empty{}), and is idempotent.
func (s *Storage) Build() error {
	if s.built {
		return nil
	}
	total := s.ConstantSize() + s.VariableSize() + s.TempSize
	if total > maxSlots {
		return errs.New(errs.StorageOverflow, 0, 0)
	}

	mem := make([]value.VmObject, total)
	copy(mem, s.Constants)
	empty := value.Encode(value.Empty{}, s.arena)
	for i := len(s.Constants); i < total; i++ {
		mem[i] = empty
	}
	s.Memory = mem
	s.built = true
	return nil
}

// Built reports whether Build has run.
func (s *Storage) Built() bool { return s.built }

// AddLateConstant registers a constant discovered after Build (a resolved
// native function reference, known only once the compiler reaches its call
// site), deduplicating against constants already added this way. It appends
// past the current end of Memory rather than growing the constant block,
// since shifting that block would invalidate every variable/temp slot
// already computed relative to ConstantSize(). Valid only after Build.
func (s *Storage) AddLateConstant(p value.Primative) (int, error) {
	if idx := slices.IndexFunc(s.lateConstantValues, func(existing value.Primative) bool {
		return existing.Equal(p)
	}); idx >= 0 {
		return s.lateConstantSlots[idx], nil
	}
	slot := len(s.Memory)
	if slot >= maxSlots {
		return 0, errs.New(errs.StorageOverflow, 0, 0)
	}
	s.lateConstantValues = append(s.lateConstantValues, p)
	s.lateConstantSlots = append(s.lateConstantSlots, slot)
	s.Memory = append(s.Memory, value.Encode(p, s.arena))
	return slot, nil
}
