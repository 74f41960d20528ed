// Package validate runs the static checks a Spec must pass before an
// encoder, decoder, or interpreter can be trusted against it: structural
// well-formedness, cross-reference resolution, encoding disjointness, and
// an RTL interpretability dry-run.
package validate

import (
	"fmt"

	"github.com/isatk/isagen/diag"
	"github.com/isatk/isagen/interp"
	"github.com/isatk/isagen/isa"
	"github.com/isatk/isagen/isa/rtl"
)

// Validator walks a *isa.Spec and accumulates diagnostics. A Validator
// value is single-use: construct one with New, call Run once.
type Validator struct {
	spec *isa.Spec
	sink *diag.Sink
}

// New returns a Validator ready to check spec.
func New(spec *isa.Spec) *Validator {
	return &Validator{spec: spec, sink: diag.New()}
}

// Run executes every check group in turn and returns the accumulated
// diagnostics. An empty result means spec is acceptable. Checks after a
// failing one still run — Run never short-circuits, since diagnostics
// from independent checks are all useful to a caller at once.
func (v *Validator) Run() []diag.Diagnostic {
	v.checkFormats()
	v.checkBundleFormats()
	v.checkInstructions()
	v.checkEncodingDisjointness()
	v.checkVirtualRegisters()
	v.checkAliases()
	v.checkAliasCycles()
	v.checkInstructionAliases()
	v.checkRTLStatic()
	v.checkRTLInterpretability()
	return v.sink.Diagnostics()
}

func (v *Validator) addf(kind diag.Kind, location, format string, args ...any) {
	v.sink.Addf(kind, location, format, args...)
}

// checkFormats validates every Format's field layout: ranges within
// [0, width), no overlaps, widths fit, non-negative constants.
func (v *Validator) checkFormats() {
	for _, f := range v.spec.Formats {
		loc := fmt.Sprintf("format %s", f.Name)
		if f.FieldsOverlap() {
			v.addf(diag.Structural, loc, "field bit-ranges overlap or lie outside [0,%d)", f.Width)
		}
		if f.TotalFieldWidth() > f.Width {
			v.addf(diag.Shape, loc, "sum of field widths (%d) exceeds format width (%d)", f.TotalFieldWidth(), f.Width)
		}
		for _, fld := range f.Fields {
			if fld.HasConstant {
				maxV := uint64(1)<<uint(fld.Width()) - 1
				if fld.Width() < 64 && fld.ConstantValue > maxV {
					v.addf(diag.Structural, loc, "field %s constant %d does not fit in %d bits", fld.Name, fld.ConstantValue, fld.Width())
				}
			}
		}
	}
}

// checkBundleFormats validates every BundleFormat's slot/discriminator
// layout: ranges within [0, width), no overlaps between slots or against
// discriminators.
func (v *Validator) checkBundleFormats() {
	for _, b := range v.spec.BundleFormats {
		if b.SlotsOverlap() {
			v.addf(diag.Structural, fmt.Sprintf("bundle format %s", b.Name),
				"slot or discriminator bit-ranges overlap or lie outside [0,%d)", b.Width)
		}
	}
}

// checkInstructions validates each instruction's format reference, operand
// names, encoding assignments, and behavior-block presence. Bundle
// instructions are checked against their bundle format and slot
// sub-instructions instead of the RTL/operand rules that apply to plain
// instructions.
func (v *Validator) checkInstructions() {
	for _, instr := range v.spec.Instructions {
		loc := fmt.Sprintf("instruction %s", instr.Mnemonic)

		if instr.IsBundle {
			v.checkBundleInstruction(&instr, loc)
			continue
		}

		fmtDef := v.spec.GetFormat(instr.Format)
		if fmtDef == nil {
			v.addf(diag.Reference, loc, "format %q does not exist", instr.Format)
			continue
		}
		nonConstant := fmtDef.NonConstantFieldNames()

		for _, name := range instr.Operands() {
			field := name
			for _, spec := range instr.OperandSpecs {
				if spec.Name == name {
					field = spec.Field
				}
			}
			if !nonConstant[field] {
				if fmtDef.GetField(field) != nil {
					v.addf(diag.Conflict, loc, "operand %q binds to constant field %q", name, field)
				} else {
					v.addf(diag.Reference, loc, "operand %q does not name a field of format %q", name, instr.Format)
				}
			}
		}

		for fieldName := range instr.Encoding {
			fld := fmtDef.GetField(fieldName)
			if fld == nil {
				v.addf(diag.Reference, loc, "encoding assignment names unknown field %q", fieldName)
				continue
			}
			if fld.HasConstant {
				v.addf(diag.Conflict, loc, "encoding assignment overrides constant field %q", fieldName)
			}
		}

		if !instr.ExternalBehavior && !instr.HasBehavior() {
			v.addf(diag.Semantic, loc, "non-bundle, non-external instruction has no RTL behavior")
		}
	}
}

// checkBundleInstruction validates a bundle instruction's format reference
// and each slot's sub-instruction reference.
func (v *Validator) checkBundleInstruction(instr *isa.Instruction, loc string) {
	bundle := v.spec.GetBundleFormat(instr.BundleFormat)
	if bundle == nil {
		v.addf(diag.Reference, loc, "bundle format %q does not exist", instr.BundleFormat)
		return
	}
	for _, ref := range instr.Slots {
		if bundle.GetSlot(ref.Slot) == nil {
			v.addf(diag.Reference, loc, "bundle format %q has no slot %q", instr.BundleFormat, ref.Slot)
		}
		if v.spec.GetInstruction(ref.Instruction) == nil {
			v.addf(diag.Reference, loc, "slot %q references unknown instruction %q", ref.Slot, ref.Instruction)
		}
	}
}

// checkEncodingDisjointness reports every pair of instructions sharing a
// format whose fixed-bit subsets agree on every field present in both. This
// is deliberately pairwise rather than bucketed by the field-subset key:
// two instructions with different sets of fixed fields can still conflict
// on their shared subset, which a single group-by-subset pass would miss.
func (v *Validator) checkEncodingDisjointness() {
	byFormat := make(map[string][]*isa.Instruction)
	for i := range v.spec.Instructions {
		instr := &v.spec.Instructions[i]
		if instr.IsBundle {
			continue
		}
		byFormat[instr.Format] = append(byFormat[instr.Format], instr)
	}
	for _, instrs := range byFormat {
		for i := 0; i < len(instrs); i++ {
			for j := i + 1; j < len(instrs); j++ {
				if fixedBitsConflict(instrs[i], instrs[j]) {
					v.addf(diag.Conflict, fmt.Sprintf("instructions %s, %s", instrs[i].Mnemonic, instrs[j].Mnemonic),
						"encodings overlap in format %q", instrs[i].Format)
				}
			}
		}
	}
}

// fixedBitsConflict reports whether a and b's fixed-field encodings agree
// on every field both of them constrain.
func fixedBitsConflict(a, b *isa.Instruction) bool {
	for field, av := range a.Encoding {
		if bv, ok := b.Encoding[field]; ok && av != bv {
			return false
		}
	}
	return true
}

// checkVirtualRegisters validates virtual-register name collisions,
// component references, and width accounting.
func (v *Validator) checkVirtualRegisters() {
	for _, vr := range v.spec.VirtualRegisters {
		loc := fmt.Sprintf("virtual register %s", vr.Name)
		if v.spec.GetRegister(vr.Name) != nil {
			v.addf(diag.Conflict, loc, "name collides with a register")
		}
		total := 0
		for _, comp := range vr.Components {
			reg := v.spec.GetRegister(comp.Register)
			if reg == nil {
				v.addf(diag.Reference, loc, "component %q does not name an existing register", comp.Register)
				continue
			}
			if comp.Indexed() {
				if !reg.IsFile() {
					v.addf(diag.Shape, loc, "component %q is indexed but is not a register file", comp.Register)
				} else if comp.Index < 0 || comp.Index >= reg.Count {
					v.addf(diag.Shape, loc, "component %q index %d out of range [0,%d)", comp.Register, comp.Index, reg.Count)
				}
			}
			total += reg.Width
		}
		if total != vr.Width && len(vr.Components) > 0 {
			v.addf(diag.Shape, loc, "sum of component widths (%d) does not equal declared width (%d)", total, vr.Width)
		}
	}
}

// checkAliases validates register-alias name collisions and targets.
func (v *Validator) checkAliases() {
	for _, al := range v.spec.RegisterAliases {
		loc := fmt.Sprintf("alias %s", al.Name)
		if v.spec.GetRegister(al.Name) != nil || v.spec.GetVirtualRegister(al.Name) != nil {
			v.addf(diag.Conflict, loc, "name collides with a register or virtual register")
		}
		reg := v.spec.GetRegister(al.Target)
		if reg == nil {
			v.addf(diag.Reference, loc, "target %q does not name an existing register", al.Target)
			continue
		}
		if al.Indexed() {
			if !reg.IsFile() {
				v.addf(diag.Shape, loc, "alias is indexed but target %q is not a register file", al.Target)
			} else if al.Index < 0 || al.Index >= reg.Count {
				v.addf(diag.Shape, loc, "index %d out of range [0,%d)", al.Index, reg.Count)
			}
		}
	}
}

// checkAliasCycles follows each alias's Target chain through other aliases
// (not through registers or virtual registers, since only register aliases
// can form this particular cycle) with a visited set bounded by the number
// of aliases in the spec. A chain that revisits any name it already passed
// through (whether the starting alias is itself on the cycle or only leads
// into one) is reported once for that starting alias, as an alias-cycle
// diagnostic — distinct from the plain
// reference failure checkAliases reports for a target that simply doesn't
// exist.
func (v *Validator) checkAliasCycles() {
	for _, start := range v.spec.RegisterAliases {
		visited := make(map[string]bool, len(v.spec.RegisterAliases)+1)
		name := start.Name
		for {
			if visited[name] {
				v.addf(diag.AliasCycle, fmt.Sprintf("alias %s", start.Name), "alias chain revisits %q", name)
				break
			}
			visited[name] = true
			al := v.spec.GetAlias(name)
			if al == nil {
				break // chain bottoms out at a register, a virtual register, or an unknown name
			}
			name = al.Target
		}
	}
}

// checkInstructionAliases validates instruction-alias name collisions and
// targets.
func (v *Validator) checkInstructionAliases() {
	for _, al := range v.spec.InstructionAliases {
		loc := fmt.Sprintf("instruction alias %s", al.Name)
		if v.spec.GetInstruction(al.Name) != nil {
			v.addf(diag.Conflict, loc, "name collides with a real mnemonic")
		}
		if v.spec.GetInstruction(al.Target) == nil {
			v.addf(diag.Reference, loc, "target mnemonic %q does not exist", al.Target)
		}
	}
}

// checkRTLStatic walks every instruction's RTL and validates every
// register/field access without executing anything.
func (v *Validator) checkRTLStatic() {
	for i := range v.spec.Instructions {
		instr := &v.spec.Instructions[i]
		if instr.IsBundle || instr.ExternalBehavior {
			continue
		}
		loc := fmt.Sprintf("instruction %s", instr.Mnemonic)
		w := &rtlWalker{spec: v.spec, sink: v.sink, loc: loc, operands: operandSet(instr)}
		for _, stmt := range instr.Behavior.Stmts {
			w.walkStmt(stmt)
		}
	}
}

func operandSet(instr *isa.Instruction) map[string]bool {
	names := make(map[string]bool, len(instr.Operands()))
	for _, n := range instr.Operands() {
		names[n] = true
	}
	return names
}

// rtlWalker recursively visits an RTL tree reporting structural problems a
// dry-run execution can't reach on its own (since the dry-run only
// exercises the taken branch of an If, and never visits dead code).
type rtlWalker struct {
	spec     *isa.Spec
	sink     *diag.Sink
	loc      string
	operands map[string]bool
}

func (w *rtlWalker) addf(kind diag.Kind, format string, args ...any) {
	w.sink.Addf(kind, w.loc, format, args...)
}

func (w *rtlWalker) walkStmt(stmt rtl.Stmt) {
	switch s := stmt.(type) {
	case *rtl.Assign:
		if !rtl.IsLValue(s.LValue) {
			w.addf(diag.Shape, "assignment target is not a valid lvalue")
		}
		w.walkExpr(s.LValue)
		w.walkExpr(s.Value)
	case *rtl.If:
		w.walkExpr(s.Cond)
		for _, st := range s.Then.Stmts {
			w.walkStmt(st)
		}
		for _, st := range s.Else.Stmts {
			w.walkStmt(st)
		}
	case *rtl.MemRead:
		if !rtl.IsLValue(s.Target) {
			w.addf(diag.Shape, "memory read target is not a valid lvalue")
		}
		w.walkExpr(s.Target)
		w.walkExpr(s.Addr)
		w.walkExpr(s.Size)
	case *rtl.MemWrite:
		w.walkExpr(s.Addr)
		w.walkExpr(s.Size)
		w.walkExpr(s.Value)
	case *rtl.ForLoop:
		w.addf(diag.Interpretability, "for-loops are not supported")
	default:
		w.addf(diag.Structural, "unrecognized statement node %T", stmt)
	}
}

func (w *rtlWalker) walkExpr(expr rtl.Expr) {
	switch e := expr.(type) {
	case *rtl.IntLit:
	case *rtl.RegAccess:
		w.checkRegAccess(e)
		if e.Index != nil {
			w.walkExpr(e.Index)
		}
		if e.Lane != nil {
			w.walkExpr(e.Lane)
		}
	case *rtl.FieldAccess:
		w.checkFieldAccess(e)
	case *rtl.BitfieldAccess:
		w.walkExpr(e.Base)
		w.walkExpr(e.MSB)
		w.walkExpr(e.LSB)
	case *rtl.UnaryOp:
		w.walkExpr(e.X)
	case *rtl.BinaryOp:
		w.walkExpr(e.X)
		w.walkExpr(e.Y)
	case *rtl.Ternary:
		w.walkExpr(e.Cond)
		w.walkExpr(e.Then)
		w.walkExpr(e.Else)
	case *rtl.Call:
		// Names outside the closed built-in set are permitted here —
		// reserved for external behaviors — and only flagged at
		// execution time (interp.Unsupported) if actually invoked.
		for _, a := range e.Args {
			w.walkExpr(a)
		}
	default:
		w.addf(diag.Structural, "unrecognized expression node %T", expr)
	}
}

// checkRegAccess resolves e.Reg against the operand map, then the register
// namespace (registers/aliases/virtual registers), flagging an unresolved
// name and any index/lane shape mismatch.
func (w *rtlWalker) checkRegAccess(e *rtl.RegAccess) {
	if w.operands[e.Reg] {
		return
	}
	if vreg := w.spec.GetVirtualRegister(e.Reg); vreg != nil && len(vreg.Components) > 1 {
		if e.Index != nil || e.Lane != nil {
			w.addf(diag.Shape, "virtual register %q is not indexable", e.Reg)
		}
		return
	}
	resolved, ok := w.spec.Resolve(e.Reg)
	if !ok {
		w.addf(diag.Reference, "register access %q does not resolve to a register", e.Reg)
		return
	}
	reg := resolved.Register
	switch {
	case reg.IsFile():
		if e.Index == nil && resolved.Index < 0 {
			w.addf(diag.Shape, "register file %q accessed without an index", e.Reg)
		}
	case reg.IsVector():
		// Lane access is optional (a whole-vector read/write is valid).
	default:
		if e.Index != nil || e.Lane != nil {
			w.addf(diag.Shape, "scalar register %q accessed with an index or lane", e.Reg)
		}
	}
}

// checkFieldAccess resolves e.Reg and validates e.Field names an existing
// field of the resolved register.
func (w *rtlWalker) checkFieldAccess(e *rtl.FieldAccess) {
	resolved, ok := w.spec.Resolve(e.Reg)
	if !ok {
		w.addf(diag.Reference, "field access %q.%q: register does not resolve", e.Reg, e.Field)
		return
	}
	if resolved.Register.GetField(e.Field) == nil {
		w.addf(diag.Reference, "field access %q.%q: no such field", e.Reg, e.Field)
	}
}

// checkRTLInterpretability runs every non-bundle, non-external
// instruction's behavior against a synthetic zero state with every
// operand zeroed. Any execution failure is reported as a diagnostic
// attributed to the instruction — this is the bridge between "the AST is
// well-formed" and "the AST is executable".
func (v *Validator) checkRTLInterpretability() {
	for i := range v.spec.Instructions {
		instr := &v.spec.Instructions[i]
		if instr.IsBundle || instr.ExternalBehavior || !instr.HasBehavior() {
			continue
		}
		state := interp.NewState(v.spec)
		operands := make(map[string]uint64, len(instr.Operands()))
		for _, name := range instr.Operands() {
			operands[name] = 0
		}
		if err := interp.Execute(v.spec, instr, operands, state); err != nil {
			v.addf(diag.Interpretability, fmt.Sprintf("instruction %s", instr.Mnemonic),
				"RTL dry-run failed: %v", err)
		}
	}
}
