// Package isa is the in-memory algebraic description of an ISA: registers,
// instruction formats, instructions with their RTL behavior, and the
// auxiliary constructs (virtual registers, aliases, VLIW bundles) that sit
// on top of them. A Spec is immutable once built; all cross-references
// between its collections are by name, resolved through the lookup tables
// built in New.
package isa

// Properties carries free-form ISA-wide settings. WordSize is in bits;
// Endianness is "little" or "big".
type Properties struct {
	WordSize   int
	Endianness string
}

// Spec is the top-level ISA aggregate: a name, its properties, and seven
// ordered collections. Names within each collection are unique; names
// across the three register-like collections (Registers, VirtualRegisters,
// RegisterAliases) share one namespace.
type Spec struct {
	Name       string
	Properties Properties

	Registers        []Register
	VirtualRegisters []VirtualRegister
	RegisterAliases  []RegisterAlias
	Formats          []Format
	BundleFormats    []BundleFormat
	Instructions     []Instruction
	InstructionAliases []InstructionAlias

	registerIndex  map[string]*Register
	virtualIndex   map[string]*VirtualRegister
	aliasIndex     map[string]*RegisterAlias
	formatIndex    map[string]*Format
	bundleIndex    map[string]*BundleFormat
	instrIndex     map[string]*Instruction
	instrAliasIndex map[string]*InstructionAlias
}

// New builds a Spec from its collections and pre-resolves every name-based
// lookup table. The returned Spec is safe to share across any number of
// concurrent readers.
func New(name string, props Properties,
	registers []Register, virtuals []VirtualRegister, aliases []RegisterAlias,
	formats []Format, bundles []BundleFormat,
	instructions []Instruction, instrAliases []InstructionAlias) *Spec {

	s := &Spec{
		Name:               name,
		Properties:         props,
		Registers:          registers,
		VirtualRegisters:   virtuals,
		RegisterAliases:    aliases,
		Formats:            formats,
		BundleFormats:      bundles,
		Instructions:       instructions,
		InstructionAliases: instrAliases,
	}

	s.registerIndex = make(map[string]*Register, len(registers))
	for i := range s.Registers {
		s.registerIndex[s.Registers[i].Name] = &s.Registers[i]
	}
	s.virtualIndex = make(map[string]*VirtualRegister, len(virtuals))
	for i := range s.VirtualRegisters {
		s.virtualIndex[s.VirtualRegisters[i].Name] = &s.VirtualRegisters[i]
	}
	s.aliasIndex = make(map[string]*RegisterAlias, len(aliases))
	for i := range s.RegisterAliases {
		s.aliasIndex[s.RegisterAliases[i].Name] = &s.RegisterAliases[i]
	}
	s.formatIndex = make(map[string]*Format, len(formats))
	for i := range s.Formats {
		s.formatIndex[s.Formats[i].Name] = &s.Formats[i]
	}
	s.bundleIndex = make(map[string]*BundleFormat, len(bundles))
	for i := range s.BundleFormats {
		s.bundleIndex[s.BundleFormats[i].Name] = &s.BundleFormats[i]
	}
	s.instrIndex = make(map[string]*Instruction, len(instructions))
	for i := range s.Instructions {
		s.instrIndex[s.Instructions[i].Mnemonic] = &s.Instructions[i]
	}
	s.instrAliasIndex = make(map[string]*InstructionAlias, len(instrAliases))
	for i := range s.InstructionAliases {
		s.instrAliasIndex[s.InstructionAliases[i].Name] = &s.InstructionAliases[i]
	}

	return s
}

func (s *Spec) GetRegister(name string) *Register       { return s.registerIndex[name] }
func (s *Spec) GetVirtualRegister(name string) *VirtualRegister { return s.virtualIndex[name] }
func (s *Spec) GetAlias(name string) *RegisterAlias      { return s.aliasIndex[name] }
func (s *Spec) GetFormat(name string) *Format            { return s.formatIndex[name] }
func (s *Spec) GetBundleFormat(name string) *BundleFormat { return s.bundleIndex[name] }
func (s *Spec) GetInstruction(mnemonic string) *Instruction { return s.instrIndex[mnemonic] }
func (s *Spec) GetInstructionAlias(name string) *InstructionAlias { return s.instrAliasIndex[name] }

// Resolved identifies the concrete storage an alias/virtual-register chain
// or register file index bottoms out at.
type Resolved struct {
	Register *Register
	Index    int // -1 for "whole register"
}

// Resolve follows alias and single-component virtual-register chains
// starting at name to a concrete register (and, for indexed
// aliases/virtuals, a concrete index). It tolerates cycles: the walk is
// bounded by a visited set sized to the number of aliases in the spec, so a
// circular chain fails with ok=false instead of recursing forever.
//
// A multi-component virtual register (one that aggregates more than one
// underlying register) has no single concrete register to resolve to; for
// those, use GetVirtualRegister directly and read/write each component.
func (s *Spec) Resolve(name string) (Resolved, bool) {
	visited := make(map[string]bool, len(s.RegisterAliases)+1)
	index := -1

	for {
		if visited[name] {
			return Resolved{}, false
		}
		visited[name] = true

		if reg := s.GetRegister(name); reg != nil {
			return Resolved{Register: reg, Index: index}, true
		}

		if alias := s.GetAlias(name); alias != nil {
			if alias.Indexed() {
				index = alias.Index
			}
			name = alias.Target
			continue
		}

		if vreg := s.GetVirtualRegister(name); vreg != nil {
			if len(vreg.Components) != 1 {
				return Resolved{}, false
			}
			comp := vreg.Components[0]
			if comp.Indexed() {
				index = comp.Index
			}
			name = comp.Register
			continue
		}

		return Resolved{}, false
	}
}
