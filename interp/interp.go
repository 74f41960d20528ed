// Package interp evaluates an instruction's RTL behavior block against a
// mutable register+memory State. It implements the fixed-width integer
// semantics described in the spec's RTL Interpreter component and the
// closed set of built-in intrinsics in builtins.go.
package interp

import (
	"github.com/isatk/isagen/isa"
	"github.com/isatk/isagen/isa/rtl"
)

// interpreter holds the borrowed references for the duration of one
// Execute call: the owning spec (for name resolution), the mutable state,
// and the operand values supplied by the host.
type interpreter struct {
	spec     *isa.Spec
	instr    *isa.Instruction
	state    *State
	operands map[string]uint64
}

// Execute runs instr's behavior block against state, using operands to
// supply operand field values. It runs to completion or fails outright;
// on failure state may already be partially mutated — callers that need
// rollback must snapshot state themselves before calling Execute.
func Execute(spec *isa.Spec, instr *isa.Instruction, operands map[string]uint64, state *State) error {
	in := &interpreter{spec: spec, instr: instr, state: state, operands: operands}
	for _, stmt := range instr.Behavior.Stmts {
		if err := in.execStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (in *interpreter) execStmt(stmt rtl.Stmt) *Error {
	switch s := stmt.(type) {
	case *rtl.Assign:
		value, width, err := in.eval(s.Value)
		if err != nil {
			return err
		}
		return in.assign(s.LValue, value, width)

	case *rtl.If:
		cond, _, err := in.eval(s.Cond)
		if err != nil {
			return err
		}
		block := s.Else
		if cond != 0 {
			block = s.Then
		}
		for _, st := range block.Stmts {
			if err := in.execStmt(st); err != nil {
				return err
			}
		}
		return nil

	case *rtl.MemRead:
		addr, _, err := in.eval(s.Addr)
		if err != nil {
			return err
		}
		size, _, err := in.eval(s.Size)
		if err != nil {
			return err
		}
		value := in.state.ReadMemory(addr, int(size))
		return in.assign(s.Target, value, int(size)*8)

	case *rtl.MemWrite:
		addr, _, err := in.eval(s.Addr)
		if err != nil {
			return err
		}
		size, _, err := in.eval(s.Size)
		if err != nil {
			return err
		}
		value, _, err := in.eval(s.Value)
		if err != nil {
			return err
		}
		in.state.WriteMemory(addr, int(size), value)
		return nil

	case *rtl.ForLoop:
		return errUnsupported("for-loop", "for-loops are not supported by the interpreter")

	default:
		return errUnsupported("", "unrecognized statement node %T", stmt)
	}
}

// eval evaluates expr and returns its value together with its "natural"
// width: the declared width of the register/field/literal it ultimately
// came from, used as the enclosing context width for binary operators and
// for the width-dependent builtins.
func (in *interpreter) eval(expr rtl.Expr) (uint64, int, *Error) {
	switch e := expr.(type) {
	case *rtl.IntLit:
		return e.Value, 64, nil

	case *rtl.RegAccess:
		return in.readRegAccess(e)

	case *rtl.FieldAccess:
		return in.readFieldAccess(e)

	case *rtl.BitfieldAccess:
		base, _, err := in.eval(e.Base)
		if err != nil {
			return 0, 0, err
		}
		msb, _, err := in.eval(e.MSB)
		if err != nil {
			return 0, 0, err
		}
		lsb, _, err := in.eval(e.LSB)
		if err != nil {
			return 0, 0, err
		}
		if lsb > msb {
			return 0, 0, errRange("", "bitfield msb %d < lsb %d", msb, lsb)
		}
		w := int(msb-lsb) + 1
		return (base >> uint(lsb)) & maskBits(w), w, nil

	case *rtl.UnaryOp:
		return in.evalUnary(e)

	case *rtl.BinaryOp:
		return in.evalBinary(e)

	case *rtl.Ternary:
		cond, _, err := in.eval(e.Cond)
		if err != nil {
			return 0, 0, err
		}
		if cond != 0 {
			return in.eval(e.Then)
		}
		return in.eval(e.Else)

	case *rtl.Call:
		return in.evalCall(e)

	default:
		return 0, 0, errUnsupported("", "unrecognized expression node %T", expr)
	}
}

func (in *interpreter) evalUnary(e *rtl.UnaryOp) (uint64, int, *Error) {
	x, w, err := in.eval(e.X)
	if err != nil {
		return 0, 0, err
	}
	switch e.Op {
	case rtl.Neg:
		return mask(uint64(-int64(x)), w), w, nil
	case rtl.BitNot:
		return mask(^x, w), w, nil
	case rtl.LogNot:
		if x == 0 {
			return 1, 1, nil
		}
		return 0, 1, nil
	default:
		return 0, 0, errUnsupported("", "unrecognized unary operator %v", e.Op)
	}
}

func (in *interpreter) evalBinary(e *rtl.BinaryOp) (uint64, int, *Error) {
	x, xw, err := in.eval(e.X)
	if err != nil {
		return 0, 0, err
	}
	y, yw, err := in.eval(e.Y)
	if err != nil {
		return 0, 0, err
	}
	w := xw
	if yw > w {
		w = yw
	}

	switch e.Op {
	case rtl.Add:
		return mask(x+y, w), w, nil
	case rtl.Sub:
		return mask(x-y, w), w, nil
	case rtl.Mul:
		return mask(x*y, w), w, nil
	case rtl.Div:
		if y == 0 {
			return 0, 0, errTrap("", "division by zero")
		}
		return mask(x/y, w), w, nil
	case rtl.Mod:
		if y == 0 {
			return 0, 0, errTrap("", "modulo by zero")
		}
		return mask(x%y, w), w, nil
	case rtl.And:
		return mask(x&y, w), w, nil
	case rtl.Or:
		return mask(x|y, w), w, nil
	case rtl.Xor:
		return mask(x^y, w), w, nil
	case rtl.Shl:
		return mask(x<<uint(y), w), w, nil
	case rtl.Shr:
		return mask(x>>uint(y), w), w, nil
	case rtl.AShr:
		signed := int64(signExtend(x, xw, 64))
		return mask(uint64(signed>>uint(y)), w), w, nil
	case rtl.Concat:
		return mask(x<<uint(yw)|mask(y, yw), xw+yw), xw + yw, nil
	case rtl.Eq:
		return boolVal(x == y), 1, nil
	case rtl.Ne:
		return boolVal(x != y), 1, nil
	case rtl.Lt:
		return boolVal(x < y), 1, nil
	case rtl.Le:
		return boolVal(x <= y), 1, nil
	case rtl.Gt:
		return boolVal(x > y), 1, nil
	case rtl.Ge:
		return boolVal(x >= y), 1, nil
	case rtl.LogAnd:
		return boolVal(x != 0 && y != 0), 1, nil
	case rtl.LogOr:
		return boolVal(x != 0 || y != 0), 1, nil
	default:
		return 0, 0, errUnsupported("", "unrecognized binary operator %v", e.Op)
	}
}

func boolVal(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func (in *interpreter) evalCall(e *rtl.Call) (uint64, int, *Error) {
	if !isKnownBuiltin(e.Name) {
		return 0, 0, errUnsupported(e.Name, "unknown intrinsic")
	}
	argv := make([]uint64, len(e.Args))
	argw := make([]int, len(e.Args))
	for i, a := range e.Args {
		v, w, err := in.eval(a)
		if err != nil {
			return 0, 0, err
		}
		argv[i] = v
		argw[i] = w
	}
	v, w, err := builtin(e.Name, argv, argw)
	if err != nil {
		return 0, 0, err
	}
	return v, w, nil
}

// assign implements `lvalue <- value` with assignment truncation: the
// incoming value is masked to the target's own width before being stored,
// regardless of the width it was computed at.
func (in *interpreter) assign(lvalue rtl.Expr, value uint64, width int) *Error {
	switch lv := lvalue.(type) {
	case *rtl.RegAccess:
		return in.writeRegAccess(lv, value)
	case *rtl.FieldAccess:
		return in.writeFieldAccess(lv, value)
	case *rtl.BitfieldAccess:
		return in.writeBitfieldAccess(lv, value)
	default:
		return errType("", "invalid lvalue %T", lvalue)
	}
}
