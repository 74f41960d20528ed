package isa

// FormatField is a named bit range within an instruction Format. A field
// with HasConstant set is a fixed opcode/subopcode bit pattern shared by
// every instruction that uses the format; it can never be overridden by an
// instruction's encoding or used as an operand.
type FormatField struct {
	Name         string
	MSB          int
	LSB          int
	HasConstant  bool
	ConstantValue uint64
}

// Width returns the bit width of the field.
func (f FormatField) Width() int {
	return f.MSB - f.LSB + 1
}

// Format is a named bit-layout shared by a family of instructions.
type Format struct {
	Name   string
	Width  int
	Fields []FormatField
}

// GetField returns the named field, or nil.
func (f *Format) GetField(name string) *FormatField {
	for i := range f.Fields {
		if f.Fields[i].Name == name {
			return &f.Fields[i]
		}
	}
	return nil
}

// FieldsOverlap reports whether any two fields overlap or any field lies
// outside [0, Width).
func (f *Format) FieldsOverlap() bool {
	ranges := make([]bitRange, len(f.Fields))
	for i, fld := range f.Fields {
		ranges[i] = bitRange{lsb: fld.LSB, msb: fld.MSB}
	}
	return rangesInvalid(ranges, f.Width)
}

// TotalFieldWidth sums the width of every field in the format.
func (f *Format) TotalFieldWidth() int {
	total := 0
	for _, fld := range f.Fields {
		total += fld.Width()
	}
	return total
}

// NonConstantFieldNames returns the names of every field without a fixed
// constant value — the only fields eligible to be operands.
func (f *Format) NonConstantFieldNames() map[string]bool {
	names := make(map[string]bool, len(f.Fields))
	for _, fld := range f.Fields {
		if !fld.HasConstant {
			names[fld.Name] = true
		}
	}
	return names
}
