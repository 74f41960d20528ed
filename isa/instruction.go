package isa

import "github.com/isatk/isagen/isa/rtl"

// OperandSpec is the structured form of an operand declaration, used when
// an instruction needs more than a bare field name (e.g. a display name
// distinct from the format field it binds to). Plain Instructions usually
// only need OperandNames.
type OperandSpec struct {
	Name  string
	Field string // format field this operand binds to; an empty Field is not defaulted to Name
}

// Encoding maps a format field name to the fixed integer value an
// instruction requires for it. Fields not mentioned here, and not the
// instruction's operands, read as the format field's own constant (or
// zero).
type Encoding map[string]uint64

// Instruction is one mnemonic: a format, its operands, the fixed-bit
// encoding that selects it within that format, and its RTL behavior.
type Instruction struct {
	Mnemonic    string
	Format      string // format name
	OperandNames []string
	OperandSpecs []OperandSpec // used instead of OperandNames when set
	Encoding    Encoding
	Behavior    rtl.Block

	ExternalBehavior bool // behavior is implemented outside this system
	IsBundle         bool

	// Bundle-only fields.
	BundleFormat string
	Slots        []BundleSlotRef
}

// BundleSlotRef names the sub-instruction placed in one slot of a bundle
// instruction's bundle format.
type BundleSlotRef struct {
	Slot       string
	Instruction string
}

// Operands returns the operand names in declaration order, whichever of
// OperandNames/OperandSpecs was used to declare them.
func (i *Instruction) Operands() []string {
	if len(i.OperandSpecs) > 0 {
		names := make([]string, len(i.OperandSpecs))
		for idx, spec := range i.OperandSpecs {
			names[idx] = spec.Name
		}
		return names
	}
	return i.OperandNames
}

// HasBehavior reports whether the instruction's behavior block has any
// statements.
func (i *Instruction) HasBehavior() bool {
	return len(i.Behavior.Stmts) > 0
}

// InstructionAlias is a secondary mnemonic that desugars, at assembly time,
// to a target mnemonic. Transparent to the interpreter; the validator only
// checks that Name does not collide with a real mnemonic and that Target
// exists.
type InstructionAlias struct {
	Name   string
	Target string
}
