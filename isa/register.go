package isa

// Kind classifies what a register is used for. The set is open-ended in
// the source ISA files but general-purpose/special-function/vector are the
// kinds the rest of this package treats specially.
type Kind string

const (
	GeneralPurpose  Kind = "general-purpose"
	SpecialFunction Kind = "special-function"
	Vector          Kind = "vector"
)

// Field is a named, contiguous bit range within a register's width.
type Field struct {
	Name string
	MSB  int
	LSB  int
}

// Width returns the bit width of the field.
func (f Field) Width() int {
	return f.MSB - f.LSB + 1
}

// Register describes one architectural register: a scalar, a vector, or a
// file of Count equal-width entries, depending on Count and Kind.
type Register struct {
	Name   string
	Kind   Kind
	Width  int
	Count  int // >0 means this register is a file of Count entries
	Fields []Field
}

// IsFile reports whether the register is a file of indexed entries.
func (r *Register) IsFile() bool {
	return r.Count > 0
}

// IsVector reports whether the register's kind is vector.
func (r *Register) IsVector() bool {
	return r.Kind == Vector
}

// IsScalar reports whether the register is a single, unindexed value.
func (r *Register) IsScalar() bool {
	return !r.IsFile() && !r.IsVector()
}

// GetField returns the named field, or nil if the register has no such
// field.
func (r *Register) GetField(name string) *Field {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			return &r.Fields[i]
		}
	}
	return nil
}

// FieldsOverlap reports whether any two fields of the register share a bit,
// or any field lies outside [0, Width).
func (r *Register) FieldsOverlap() bool {
	return rangesInvalid(fieldRanges(r.Fields), r.Width)
}

func fieldRanges(fields []Field) []bitRange {
	ranges := make([]bitRange, len(fields))
	for i, f := range fields {
		ranges[i] = bitRange{lsb: f.LSB, msb: f.MSB}
	}
	return ranges
}

// bitRange is a half-open-free [lsb, msb] inclusive bit range shared by the
// overlap/bounds checks used for register fields, format fields, and bundle
// slots — all three are "named bit ranges within a fixed width" in the data
// model, so they share one validity check.
type bitRange struct {
	lsb, msb int
}

// rangesInvalid reports whether any range in rs lies outside [0, width) or
// overlaps another range in rs.
func rangesInvalid(rs []bitRange, width int) bool {
	for i, a := range rs {
		if a.lsb < 0 || a.msb >= width || a.lsb > a.msb {
			return true
		}
		for j := i + 1; j < len(rs); j++ {
			b := rs[j]
			if a.lsb <= b.msb && b.lsb <= a.msb {
				return true
			}
		}
	}
	return false
}
