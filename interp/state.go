package interp

import "github.com/isatk/isagen/isa"

// RegisterValue is the host-owned storage for one register: either a single
// Scalar, or a Lanes slice for a file (Register.Count entries, each
// Register.Width bits) or a vector register (Register.Count lanes, each
// Register.LaneWidth bits).
type RegisterValue struct {
	Scalar uint64
	Lanes  []uint64 // non-nil for files and vector registers
}

// State is the mutable register+memory state an Execute call reads and
// mutates. It is host-owned: the interpreter holds only a borrowed
// reference for the duration of one Execute call.
type State struct {
	ISA       *isa.Spec
	Registers map[string]*RegisterValue
	// Memory is sparse: addresses never written are not materialized and
	// read as zero.
	Memory map[uint64]byte
}

// NewState builds a zeroed State for spec: every register is present with
// its storage shaped to its kind (scalar, file, or vector), and memory
// starts empty.
func NewState(spec *isa.Spec) *State {
	s := &State{
		ISA:       spec,
		Registers: make(map[string]*RegisterValue, len(spec.Registers)),
		Memory:    make(map[uint64]byte),
	}
	for i := range spec.Registers {
		reg := &spec.Registers[i]
		if reg.IsFile() || reg.IsVector() {
			s.Registers[reg.Name] = &RegisterValue{Lanes: make([]uint64, reg.Count)}
		} else {
			s.Registers[reg.Name] = &RegisterValue{}
		}
	}
	return s
}

// ReadMemory reads size bytes at byte address addr in the ISA's
// endianness, as a single integer. Addresses never written read as zero.
// Address arithmetic wraps modulo 2^word_size.
func (s *State) ReadMemory(addr uint64, size int) uint64 {
	addr = s.wrapAddress(addr)
	var value uint64
	if s.ISA.Properties.Endianness == "big" {
		for i := 0; i < size; i++ {
			value = value<<8 | uint64(s.Memory[s.wrapAddress(addr+uint64(i))])
		}
	} else {
		for i := size - 1; i >= 0; i-- {
			value = value<<8 | uint64(s.Memory[s.wrapAddress(addr+uint64(i))])
		}
	}
	return value
}

// WriteMemory writes the low size bytes of value to byte address addr in
// the ISA's endianness.
func (s *State) WriteMemory(addr uint64, size int, value uint64) {
	addr = s.wrapAddress(addr)
	if s.ISA.Properties.Endianness == "big" {
		for i := 0; i < size; i++ {
			shift := uint(size-1-i) * 8
			s.Memory[s.wrapAddress(addr+uint64(i))] = byte(value >> shift)
		}
	} else {
		for i := 0; i < size; i++ {
			shift := uint(i) * 8
			s.Memory[s.wrapAddress(addr+uint64(i))] = byte(value >> shift)
		}
	}
}

func (s *State) wrapAddress(addr uint64) uint64 {
	wordSize := s.ISA.Properties.WordSize
	if wordSize <= 0 || wordSize >= 64 {
		return addr
	}
	return addr & (1<<uint(wordSize) - 1)
}
