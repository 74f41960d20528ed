// Package encode turns an instruction plus operand values into a format
// word, and back. It generalizes the mask-shift-OR idiom a fixed
// REX-prefix/ModR/M byte layout would use into arbitrary named msb:lsb
// fields driven by an isa.Format.
package encode

import (
	"errors"
	"fmt"

	"github.com/isatk/isagen/isa"
)

// ErrOperandOverflow is returned by Encode in strict mode when an operand
// value does not fit in its field's width. In non-strict mode the value is
// silently truncated instead, matching this generator's historical
// lenient-encode behavior.
var ErrOperandOverflow = errors.New("encode: operand value overflows its field width")

// Options configures Encode's handling of the silent-truncation open
// question.
type Options struct {
	// Strict, when true, makes Encode fail with ErrOperandOverflow instead
	// of silently truncating an operand value that doesn't fit its field.
	Strict bool
}

func fieldMask(width int) uint64 {
	if width <= 0 {
		return 0
	}
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(width)) - 1
}

// Encode produces a format.Width-bit word for instr, given a
// {operand-name -> value} map. For each format field: the instruction's
// fixed encoding wins if present, else the operand value if the field is
// an operand, else the field's own constant, else zero. Every placed value
// is masked to its field's width before being shifted into place.
func Encode(spec *isa.Spec, instr *isa.Instruction, operands map[string]uint64, opts Options) (uint64, error) {
	format := spec.GetFormat(instr.Format)
	if format == nil {
		return 0, fmt.Errorf("encode: instruction %s: format %q does not exist", instr.Mnemonic, instr.Format)
	}

	fieldForOperand := make(map[string]string, len(instr.Operands()))
	if len(instr.OperandSpecs) > 0 {
		for _, spec := range instr.OperandSpecs {
			fieldForOperand[spec.Field] = spec.Name
		}
	} else {
		for _, name := range instr.OperandNames {
			fieldForOperand[name] = name
		}
	}

	var word uint64
	for _, f := range format.Fields {
		var value uint64
		if fixed, ok := instr.Encoding[f.Name]; ok {
			value = fixed
		} else if operandName := fieldForOperand[f.Name]; operandName != "" {
			v, ok := operands[operandName]
			if !ok {
				return 0, fmt.Errorf("encode: instruction %s: missing value for operand %q", instr.Mnemonic, operandName)
			}
			value = v
		} else if f.HasConstant {
			value = f.ConstantValue
		}

		if opts.Strict && value > fieldMask(f.Width()) {
			return 0, fmt.Errorf("%w: instruction %s field %s value %d", ErrOperandOverflow, instr.Mnemonic, f.Name, value)
		}
		word |= (value & fieldMask(f.Width())) << uint(f.LSB)
	}
	return word, nil
}

// Decode extracts every format field of instr from word as
// {operand-name -> value}; non-operand fields (constants and fixed
// encoding bits) are omitted.
func Decode(spec *isa.Spec, instr *isa.Instruction, word uint64) (map[string]uint64, error) {
	format := spec.GetFormat(instr.Format)
	if format == nil {
		return nil, fmt.Errorf("decode: instruction %s: format %q does not exist", instr.Mnemonic, instr.Format)
	}

	fieldForOperand := make(map[string]string, len(instr.Operands()))
	if len(instr.OperandSpecs) > 0 {
		for _, spec := range instr.OperandSpecs {
			fieldForOperand[spec.Field] = spec.Name
		}
	} else {
		for _, name := range instr.OperandNames {
			fieldForOperand[name] = name
		}
	}

	out := make(map[string]uint64, len(fieldForOperand))
	for _, f := range format.Fields {
		name, isOperand := fieldForOperand[f.Name]
		if !isOperand {
			continue
		}
		out[name] = (word >> uint(f.LSB)) & fieldMask(f.Width())
	}
	return out, nil
}

// Matches reports whether word could have been produced by instr: every
// field fixed by instr's encoding, and every constant field of its format,
// must equal the value extracted from word.
func Matches(spec *isa.Spec, instr *isa.Instruction, word uint64) bool {
	format := spec.GetFormat(instr.Format)
	if format == nil {
		return false
	}
	for _, f := range format.Fields {
		extracted := (word >> uint(f.LSB)) & fieldMask(f.Width())
		if fixed, ok := instr.Encoding[f.Name]; ok {
			if extracted != fixed&fieldMask(f.Width()) {
				return false
			}
			continue
		}
		if f.HasConstant && extracted != f.ConstantValue&fieldMask(f.Width()) {
			return false
		}
	}
	return true
}

// EncodeBundle places each slot word into its slot of a bundle format and
// ORs them together, then ORs in each discriminator field (the bundle
// format's own constant fields) at its own position. Slots and
// discriminators are assumed disjoint; the validator reports an overlap
// through isa.BundleFormat.SlotsOverlap.
func EncodeBundle(bundle *isa.BundleFormat, slotWords map[string]uint64) (uint64, error) {
	var word uint64
	for _, slot := range bundle.Slots {
		v, ok := slotWords[slot.Name]
		if !ok {
			return 0, fmt.Errorf("encode bundle %s: missing word for slot %q", bundle.Name, slot.Name)
		}
		word |= (v & fieldMask(slot.Width())) << uint(slot.LSB)
	}
	for _, disc := range bundle.Discriminators {
		word |= (disc.ConstantValue & fieldMask(disc.Width())) << uint(disc.LSB)
	}
	return word, nil
}

// ExtractSlot pulls one slot's sub-instruction word out of a bundle word.
func ExtractSlot(bundle *isa.BundleFormat, slotName string, word uint64) (uint64, error) {
	slot := bundle.GetSlot(slotName)
	if slot == nil {
		return 0, fmt.Errorf("extract slot: bundle %s has no slot %q", bundle.Name, slotName)
	}
	return (word >> uint(slot.LSB)) & fieldMask(slot.Width()), nil
}
