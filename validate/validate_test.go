package validate

import (
	"testing"

	"github.com/isatk/isagen/diag"
	"github.com/isatk/isagen/isa"
	"github.com/isatk/isagen/isa/rtl"
)

func hasKind(ds []diag.Diagnostic, kind diag.Kind) bool {
	for _, d := range ds {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

func TestValidSpecHasNoDiagnostics(t *testing.T) {
	spec := isa.New(
		"clean",
		isa.Properties{WordSize: 32, Endianness: "little"},
		[]isa.Register{{Name: "r0", Kind: isa.GeneralPurpose, Width: 32}},
		nil, nil,
		[]isa.Format{{Name: "R", Width: 8, Fields: []isa.FormatField{
			{Name: "op", MSB: 7, LSB: 4},
			{Name: "rd", MSB: 3, LSB: 0},
		}}},
		nil,
		[]isa.Instruction{{
			Mnemonic:     "nop",
			Format:       "R",
			OperandNames: []string{"rd"},
			Encoding:     isa.Encoding{"op": 1},
			Behavior: rtl.Block{Stmts: []rtl.Stmt{
				&rtl.Assign{LValue: &rtl.RegAccess{Reg: "r0"}, Value: &rtl.IntLit{Value: 0}},
			}},
		}},
		nil,
	)
	ds := New(spec).Run()
	if len(ds) != 0 {
		t.Fatalf("expected no diagnostics, got %v", ds)
	}
}

func TestEncodingConflictDetected(t *testing.T) {
	format := isa.Format{Name: "R", Width: 8, Fields: []isa.FormatField{
		{Name: "op", MSB: 7, LSB: 4},
		{Name: "rd", MSB: 3, LSB: 0},
	}}
	spec := isa.New(
		"conflict",
		isa.Properties{WordSize: 32, Endianness: "little"},
		[]isa.Register{{Name: "r0", Kind: isa.GeneralPurpose, Width: 32}},
		nil, nil,
		[]isa.Format{format},
		nil,
		[]isa.Instruction{
			{
				Mnemonic: "a",
				Format:   "R",
				Encoding: isa.Encoding{"op": 1},
				Behavior: rtl.Block{Stmts: []rtl.Stmt{&rtl.Assign{LValue: &rtl.RegAccess{Reg: "r0"}, Value: &rtl.IntLit{Value: 0}}}},
			},
			{
				Mnemonic: "b",
				Format:   "R",
				Encoding: isa.Encoding{"op": 1},
				Behavior: rtl.Block{Stmts: []rtl.Stmt{&rtl.Assign{LValue: &rtl.RegAccess{Reg: "r0"}, Value: &rtl.IntLit{Value: 1}}}},
			},
		},
		nil,
	)
	ds := New(spec).Run()
	if !hasKind(ds, diag.Conflict) {
		t.Fatalf("expected a Conflict diagnostic, got %v", ds)
	}
}

func TestNonOverlappingEncodingsDoNotConflict(t *testing.T) {
	format := isa.Format{Name: "R", Width: 8, Fields: []isa.FormatField{
		{Name: "op", MSB: 7, LSB: 4},
		{Name: "rd", MSB: 3, LSB: 0},
	}}
	spec := isa.New(
		"no-conflict",
		isa.Properties{WordSize: 32, Endianness: "little"},
		[]isa.Register{{Name: "r0", Kind: isa.GeneralPurpose, Width: 32}},
		nil, nil,
		[]isa.Format{format},
		nil,
		[]isa.Instruction{
			{
				Mnemonic: "a",
				Format:   "R",
				Encoding: isa.Encoding{"op": 1},
				Behavior: rtl.Block{Stmts: []rtl.Stmt{&rtl.Assign{LValue: &rtl.RegAccess{Reg: "r0"}, Value: &rtl.IntLit{Value: 0}}}},
			},
			{
				Mnemonic: "b",
				Format:   "R",
				Encoding: isa.Encoding{"op": 2},
				Behavior: rtl.Block{Stmts: []rtl.Stmt{&rtl.Assign{LValue: &rtl.RegAccess{Reg: "r0"}, Value: &rtl.IntLit{Value: 1}}}},
			},
		},
		nil,
	)
	ds := New(spec).Run()
	if hasKind(ds, diag.Conflict) {
		t.Fatalf("expected no Conflict diagnostic, got %v", ds)
	}
}

func TestMissingBehaviorDiagnostic(t *testing.T) {
	spec := isa.New(
		"no-behavior",
		isa.Properties{WordSize: 32, Endianness: "little"},
		[]isa.Register{{Name: "r0", Kind: isa.GeneralPurpose, Width: 32}},
		nil, nil,
		[]isa.Format{{Name: "R", Width: 8}},
		nil,
		[]isa.Instruction{{Mnemonic: "empty", Format: "R"}},
		nil,
	)
	ds := New(spec).Run()
	if !hasKind(ds, diag.Semantic) {
		t.Fatalf("expected a Semantic diagnostic for missing behavior, got %v", ds)
	}
}

func TestFormatFieldOverlapDiagnostic(t *testing.T) {
	spec := isa.New(
		"overlap",
		isa.Properties{WordSize: 32, Endianness: "little"},
		nil, nil, nil,
		[]isa.Format{{Name: "R", Width: 8, Fields: []isa.FormatField{
			{Name: "a", MSB: 7, LSB: 4},
			{Name: "b", MSB: 5, LSB: 2},
		}}},
		nil, nil, nil,
	)
	ds := New(spec).Run()
	if !hasKind(ds, diag.Structural) {
		t.Fatalf("expected a Structural diagnostic for overlapping fields, got %v", ds)
	}
}

func TestRTLInterpretabilityFailureDiagnostic(t *testing.T) {
	spec := isa.New(
		"bad-rtl",
		isa.Properties{WordSize: 32, Endianness: "little"},
		[]isa.Register{{Name: "r0", Kind: isa.GeneralPurpose, Width: 32}},
		nil, nil,
		[]isa.Format{{Name: "R", Width: 8}},
		nil,
		[]isa.Instruction{{
			Mnemonic: "bad",
			Format:   "R",
			Behavior: rtl.Block{Stmts: []rtl.Stmt{
				&rtl.Assign{LValue: &rtl.RegAccess{Reg: "r0"}, Value: &rtl.RegAccess{Reg: "nonexistent"}},
			}},
		}},
		nil,
	)
	ds := New(spec).Run()
	if !hasKind(ds, diag.Interpretability) {
		t.Fatalf("expected an Interpretability diagnostic, got %v", ds)
	}
}

func TestAliasCycleDiagnostic(t *testing.T) {
	spec := isa.New(
		"cycle",
		isa.Properties{WordSize: 32, Endianness: "little"},
		nil, nil,
		[]isa.RegisterAlias{
			{Name: "a", Target: "b", Index: -1},
			{Name: "b", Target: "a", Index: -1},
		},
		nil, nil, nil, nil,
	)
	ds := New(spec).Run()
	if !hasKind(ds, diag.AliasCycle) {
		t.Fatalf("expected an AliasCycle diagnostic, got %v", ds)
	}
}

func TestVirtualRegisterWidthMismatch(t *testing.T) {
	spec := isa.New(
		"vreg-mismatch",
		isa.Properties{WordSize: 32, Endianness: "little"},
		[]isa.Register{
			{Name: "lo", Kind: isa.GeneralPurpose, Width: 16},
			{Name: "hi", Kind: isa.GeneralPurpose, Width: 16},
		},
		[]isa.VirtualRegister{{
			Name:  "wide",
			Width: 64,
			Components: []isa.VirtualRegisterComponent{
				{Register: "hi", Index: -1},
				{Register: "lo", Index: -1},
			},
		}},
		nil, nil, nil, nil, nil,
	)
	ds := New(spec).Run()
	if !hasKind(ds, diag.Shape) {
		t.Fatalf("expected a Shape diagnostic for width mismatch (32 != 64), got %v", ds)
	}
}

func TestInstructionAliasUnknownTarget(t *testing.T) {
	spec := isa.New(
		"ialias",
		isa.Properties{WordSize: 32, Endianness: "little"},
		nil, nil, nil, nil, nil, nil,
		[]isa.InstructionAlias{{Name: "nop", Target: "does-not-exist"}},
	)
	ds := New(spec).Run()
	if !hasKind(ds, diag.Reference) {
		t.Fatalf("expected a Reference diagnostic, got %v", ds)
	}
}
