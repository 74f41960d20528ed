package interp

import (
	"github.com/isatk/isagen/isa"
	"github.com/isatk/isagen/isa/rtl"
)

// operandWidth returns the declared field width backing operand name, or
// 64 if the instruction's format doesn't resolve it (e.g. a synthetic
// operand with no format field, or the format itself is missing —
// already reported elsewhere as a validator diagnostic).
func (in *interpreter) operandWidth(name string) int {
	fmtDef := in.spec.GetFormat(in.instr.Format)
	if fmtDef == nil {
		return 64
	}
	if f := fmtDef.GetField(name); f != nil {
		return f.Width()
	}
	return 64
}

// readRegAccess implements reading a rtl.RegAccess node, following the
// operand-name fallback chain from the operand contract: the {name ->
// value} map first, then a same-named register, then a same-named field
// of an implicit instruction-context register (not modeled here beyond
// the register fallback, since this repo's Instruction carries no single
// "context register" distinct from its operands).
func (in *interpreter) readRegAccess(acc *rtl.RegAccess) (uint64, int, *Error) {
	if acc.Index == nil && acc.Lane == nil {
		if v, ok := in.operands[acc.Reg]; ok {
			return mask(v, in.operandWidth(acc.Reg)), in.operandWidth(acc.Reg), nil
		}
	}

	if vreg := in.spec.GetVirtualRegister(acc.Reg); vreg != nil && len(vreg.Components) > 1 {
		return in.readVirtualRegister(vreg)
	}

	regName, fixedIndex, err := in.resolveRegisterName(acc.Reg)
	if err != nil {
		return 0, 0, err
	}
	reg := in.spec.GetRegister(regName)
	rv := in.state.Registers[regName]
	if reg == nil || rv == nil {
		return 0, 0, errUnknown(acc.Reg, "unknown register")
	}

	switch {
	case reg.IsFile():
		idx, err := in.indexFor(acc, fixedIndex)
		if err != nil {
			return 0, 0, err
		}
		if idx < 0 || idx >= reg.Count {
			return 0, 0, errRange(acc.Reg, "file index %d out of range [0,%d)", idx, reg.Count)
		}
		return rv.Lanes[idx], reg.Width, nil

	case reg.IsVector():
		if acc.Lane != nil {
			lane, _, err := in.eval(acc.Lane)
			if err != nil {
				return 0, 0, err
			}
			if int(lane) < 0 || int(lane) >= reg.Count {
				return 0, 0, errRange(acc.Reg, "lane %d out of range [0,%d)", lane, reg.Count)
			}
			return rv.Lanes[lane], reg.LaneWidth(), nil
		}
		// Whole-vector read: concatenate lanes, lane 0 least significant.
		var value uint64
		lw := reg.LaneWidth()
		for i := reg.Count - 1; i >= 0; i-- {
			value = value<<uint(lw) | mask(rv.Lanes[i], lw)
		}
		return value, reg.Width, nil

	default: // scalar
		return rv.Scalar, reg.Width, nil
	}
}

// writeRegAccess mirrors readRegAccess for the write side, truncating the
// incoming value to the destination's own width.
func (in *interpreter) writeRegAccess(acc *rtl.RegAccess, value uint64) *Error {
	if vreg := in.spec.GetVirtualRegister(acc.Reg); vreg != nil && len(vreg.Components) > 1 {
		return in.writeVirtualRegister(vreg, value)
	}

	regName, fixedIndex, err := in.resolveRegisterName(acc.Reg)
	if err != nil {
		return err
	}
	reg := in.spec.GetRegister(regName)
	rv := in.state.Registers[regName]
	if reg == nil || rv == nil {
		return errUnknown(acc.Reg, "unknown register")
	}

	switch {
	case reg.IsFile():
		idx, err := in.indexFor(acc, fixedIndex)
		if err != nil {
			return err
		}
		if idx < 0 || idx >= reg.Count {
			return errRange(acc.Reg, "file index %d out of range [0,%d)", idx, reg.Count)
		}
		rv.Lanes[idx] = mask(value, reg.Width)
		return nil

	case reg.IsVector():
		if acc.Lane != nil {
			lane, _, err := in.eval(acc.Lane)
			if err != nil {
				return err
			}
			if int(lane) < 0 || int(lane) >= reg.Count {
				return errRange(acc.Reg, "lane %d out of range [0,%d)", lane, reg.Count)
			}
			rv.Lanes[lane] = mask(value, reg.LaneWidth())
			return nil
		}
		lw := reg.LaneWidth()
		for i := 0; i < reg.Count; i++ {
			rv.Lanes[i] = mask(value>>uint(i*lw), lw)
		}
		return nil

	default: // scalar
		rv.Scalar = mask(value, reg.Width)
		return nil
	}
}

// indexFor resolves the index to use for a file access: a fixed index
// carried in from an indexed alias/virtual register takes precedence over
// an explicit index expression on the access itself (they should never
// both be set for a well-formed spec).
func (in *interpreter) indexFor(acc *rtl.RegAccess, fixedIndex int) (int, *Error) {
	if fixedIndex >= 0 {
		return fixedIndex, nil
	}
	if acc.Index == nil {
		return 0, errType(acc.Reg, "register file access requires an index")
	}
	idx, _, err := in.eval(acc.Index)
	if err != nil {
		return 0, err
	}
	return int(idx), nil
}

// resolveRegisterName follows alias and single-component virtual-register
// chains down to a concrete register name, using the spec's bounded
// visited-set walk so a circular alias chain fails cleanly instead of
// recursing forever.
func (in *interpreter) resolveRegisterName(name string) (string, int, *Error) {
	resolved, ok := in.spec.Resolve(name)
	if !ok {
		return "", -1, errUnknown(name, "unresolvable register reference (unknown name or alias cycle)")
	}
	return resolved.Register.Name, resolved.Index, nil
}

// readVirtualRegister concatenates a multi-component virtual register's
// components, first component most significant, into one value of the
// virtual register's declared width.
func (in *interpreter) readVirtualRegister(vreg *isa.VirtualRegister) (uint64, int, *Error) {
	var value uint64
	for _, comp := range vreg.Components {
		reg := in.spec.GetRegister(comp.Register)
		rv := in.state.Registers[comp.Register]
		if reg == nil || rv == nil {
			return 0, 0, errUnknown(comp.Register, "unknown virtual register component")
		}
		var compValue uint64
		if comp.Indexed() {
			if comp.Index < 0 || comp.Index >= reg.Count {
				return 0, 0, errRange(comp.Register, "component index %d out of range", comp.Index)
			}
			compValue = rv.Lanes[comp.Index]
		} else {
			compValue = rv.Scalar
		}
		value = value<<uint(reg.Width) | mask(compValue, reg.Width)
	}
	return value, vreg.Width, nil
}

// writeVirtualRegister splits value across a multi-component virtual
// register's components in the same most-significant-first order used by
// readVirtualRegister.
func (in *interpreter) writeVirtualRegister(vreg *isa.VirtualRegister, value uint64) *Error {
	totalWidth := 0
	for _, comp := range vreg.Components {
		reg := in.spec.GetRegister(comp.Register)
		if reg == nil {
			return errUnknown(comp.Register, "unknown virtual register component")
		}
		totalWidth += reg.Width
	}
	shift := totalWidth
	for _, comp := range vreg.Components {
		reg := in.spec.GetRegister(comp.Register)
		rv := in.state.Registers[comp.Register]
		shift -= reg.Width
		compValue := mask(value>>uint(shift), reg.Width)
		if comp.Indexed() {
			if comp.Index < 0 || comp.Index >= reg.Count {
				return errRange(comp.Register, "component index %d out of range", comp.Index)
			}
			rv.Lanes[comp.Index] = compValue
		} else {
			rv.Scalar = compValue
		}
	}
	return nil
}

// readFieldAccess reads a register's named field, following the same
// alias/virtual-register resolution as a plain register access before
// looking up the field on the resolved register.
func (in *interpreter) readFieldAccess(acc *rtl.FieldAccess) (uint64, int, *Error) {
	regName, _, err := in.resolveRegisterName(acc.Reg)
	if err != nil {
		return 0, 0, err
	}
	reg := in.spec.GetRegister(regName)
	rv := in.state.Registers[regName]
	if reg == nil || rv == nil {
		return 0, 0, errUnknown(acc.Reg, "unknown register")
	}
	field := reg.GetField(acc.Field)
	if field == nil {
		return 0, 0, errUnknown(acc.Field, "no such field on register %s", acc.Reg)
	}
	return (rv.Scalar >> uint(field.LSB)) & maskBits(field.Width()), field.Width(), nil
}

// writeFieldAccess writes a register's named field in place, masking the
// new bits into the field's range while preserving the rest of the
// register (a read-modify-write).
func (in *interpreter) writeFieldAccess(acc *rtl.FieldAccess, value uint64) *Error {
	regName, _, err := in.resolveRegisterName(acc.Reg)
	if err != nil {
		return err
	}
	reg := in.spec.GetRegister(regName)
	rv := in.state.Registers[regName]
	if reg == nil || rv == nil {
		return errUnknown(acc.Reg, "unknown register")
	}
	field := reg.GetField(acc.Field)
	if field == nil {
		return errUnknown(acc.Field, "no such field on register %s", acc.Reg)
	}
	fieldMask := maskBits(field.Width()) << uint(field.LSB)
	rv.Scalar = mask(rv.Scalar&^fieldMask|(mask(value, field.Width())<<uint(field.LSB)), reg.Width)
	return nil
}

// writeBitfieldAccess writes lv.Base[msb:lsb] <- value: it masks the new
// bits into the named range of the current value of Base and recursively
// assigns the whole updated value back to Base, since Base may itself be
// any lvalue (a plain register, a field, or another bitfield).
func (in *interpreter) writeBitfieldAccess(lv *rtl.BitfieldAccess, value uint64) *Error {
	base, baseWidth, err := in.eval(lv.Base)
	if err != nil {
		return err
	}
	msb, _, err := in.eval(lv.MSB)
	if err != nil {
		return err
	}
	lsb, _, err := in.eval(lv.LSB)
	if err != nil {
		return err
	}
	if lsb > msb {
		return errRange("", "bitfield msb %d < lsb %d", msb, lsb)
	}
	w := int(msb-lsb) + 1
	fieldMask := maskBits(w) << uint(lsb)
	updated := mask(base&^fieldMask|(mask(value, w)<<uint(lsb)), baseWidth)
	return in.assign(lv.Base, updated, baseWidth)
}
