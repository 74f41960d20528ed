package isaio

import (
	"fmt"

	"github.com/isatk/isagen/isa/rtl"
)

// exprDoc and stmtDoc mirror rtl's closed sums as tagged unions: a "kind"
// discriminator plus whichever of the optional fields that kind uses.
// JSON has no closed-sum type of its own, so the tag is the wire-level
// stand-in for the unexported exprNode/stmtNode marker methods.
type exprDoc struct {
	Kind string `json:"kind"`

	Value uint64 `json:"value,omitempty"` // int_lit

	Reg   string   `json:"reg,omitempty"`   // reg_access, field_access
	Index *exprDoc `json:"index,omitempty"` // reg_access
	Lane  *exprDoc `json:"lane,omitempty"`  // reg_access
	Field string   `json:"field,omitempty"` // field_access

	Base *exprDoc `json:"base,omitempty"` // bitfield_access
	MSB  *exprDoc `json:"msb,omitempty"`  // bitfield_access
	LSB  *exprDoc `json:"lsb,omitempty"`  // bitfield_access

	Op string   `json:"op,omitempty"` // unary_op, binary_op
	X  *exprDoc `json:"x,omitempty"`  // unary_op, binary_op; ternary's else branch
	Y  *exprDoc `json:"y,omitempty"`  // binary_op

	Cond *exprDoc `json:"cond,omitempty"` // ternary
	Then *exprDoc `json:"then,omitempty"` // ternary

	Name string    `json:"name,omitempty"` // call
	Args []exprDoc `json:"args,omitempty"` // call
}

type stmtDoc struct {
	Kind string `json:"kind"`

	LValue *exprDoc `json:"lvalue,omitempty"` // assign
	Value  *exprDoc `json:"value,omitempty"`  // assign, mem_write

	Cond     *exprDoc     `json:"cond,omitempty"`      // if
	ThenStmt *rtlBlockDoc `json:"then_stmt,omitempty"` // if
	ElseStmt *rtlBlockDoc `json:"else_stmt,omitempty"` // if

	Target *exprDoc `json:"target,omitempty"` // mem_read
	Addr   *exprDoc `json:"addr,omitempty"`   // mem_read, mem_write
	Size   *exprDoc `json:"size,omitempty"`   // mem_read, mem_write

	Var  string       `json:"var,omitempty"`  // for_loop
	From *exprDoc     `json:"from,omitempty"` // for_loop
	To   *exprDoc     `json:"to,omitempty"`   // for_loop
	Body *rtlBlockDoc `json:"body,omitempty"` // for_loop
}

type rtlBlockDoc struct {
	Stmts []stmtDoc `json:"stmts,omitempty"`
}

var unaryOpNames = map[rtl.UnaryOperator]string{
	rtl.Neg:    "neg",
	rtl.BitNot: "bitnot",
	rtl.LogNot: "lognot",
}

var unaryOpValues = invertStrings(unaryOpNames)

var binaryOpNames = map[rtl.BinaryOperator]string{
	rtl.Add: "add", rtl.Sub: "sub", rtl.Mul: "mul", rtl.Div: "div", rtl.Mod: "mod",
	rtl.And: "and", rtl.Or: "or", rtl.Xor: "xor",
	rtl.Shl: "shl", rtl.Shr: "shr", rtl.AShr: "ashr", rtl.Concat: "concat",
	rtl.Eq: "eq", rtl.Ne: "ne", rtl.Lt: "lt", rtl.Le: "le", rtl.Gt: "gt", rtl.Ge: "ge",
	rtl.LogAnd: "logand", rtl.LogOr: "logor",
}

var binaryOpValues = invertBinary(binaryOpNames)

func invertStrings(m map[rtl.UnaryOperator]string) map[string]rtl.UnaryOperator {
	out := make(map[string]rtl.UnaryOperator, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

func invertBinary(m map[rtl.BinaryOperator]string) map[string]rtl.BinaryOperator {
	out := make(map[string]rtl.BinaryOperator, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

func toExprDoc(e rtl.Expr) *exprDoc {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *rtl.IntLit:
		return &exprDoc{Kind: "int_lit", Value: n.Value}
	case *rtl.RegAccess:
		return &exprDoc{Kind: "reg_access", Reg: n.Reg, Index: toExprDoc(n.Index), Lane: toExprDoc(n.Lane)}
	case *rtl.FieldAccess:
		return &exprDoc{Kind: "field_access", Reg: n.Reg, Field: n.Field}
	case *rtl.BitfieldAccess:
		return &exprDoc{Kind: "bitfield_access", Base: toExprDoc(n.Base), MSB: toExprDoc(n.MSB), LSB: toExprDoc(n.LSB)}
	case *rtl.UnaryOp:
		return &exprDoc{Kind: "unary_op", Op: unaryOpNames[n.Op], X: toExprDoc(n.X)}
	case *rtl.BinaryOp:
		return &exprDoc{Kind: "binary_op", Op: binaryOpNames[n.Op], X: toExprDoc(n.X), Y: toExprDoc(n.Y)}
	case *rtl.Ternary:
		return &exprDoc{Kind: "ternary", Cond: toExprDoc(n.Cond), Then: toExprDoc(n.Then), X: toExprDoc(n.Else)}
	case *rtl.Call:
		args := make([]exprDoc, len(n.Args))
		for i, a := range n.Args {
			args[i] = *toExprDoc(a)
		}
		return &exprDoc{Kind: "call", Name: n.Name, Args: args}
	default:
		return nil
	}
}

func fromExprDoc(d *exprDoc) (rtl.Expr, error) {
	if d == nil {
		return nil, nil
	}
	switch d.Kind {
	case "int_lit":
		return &rtl.IntLit{Value: d.Value}, nil
	case "reg_access":
		index, err := fromExprDoc(d.Index)
		if err != nil {
			return nil, err
		}
		lane, err := fromExprDoc(d.Lane)
		if err != nil {
			return nil, err
		}
		return &rtl.RegAccess{Reg: d.Reg, Index: index, Lane: lane}, nil
	case "field_access":
		return &rtl.FieldAccess{Reg: d.Reg, Field: d.Field}, nil
	case "bitfield_access":
		base, err := fromExprDoc(d.Base)
		if err != nil {
			return nil, err
		}
		msb, err := fromExprDoc(d.MSB)
		if err != nil {
			return nil, err
		}
		lsb, err := fromExprDoc(d.LSB)
		if err != nil {
			return nil, err
		}
		return &rtl.BitfieldAccess{Base: base, MSB: msb, LSB: lsb}, nil
	case "unary_op":
		op, ok := unaryOpValues[d.Op]
		if !ok {
			return nil, fmt.Errorf("unknown unary operator %q", d.Op)
		}
		x, err := fromExprDoc(d.X)
		if err != nil {
			return nil, err
		}
		return &rtl.UnaryOp{Op: op, X: x}, nil
	case "binary_op":
		op, ok := binaryOpValues[d.Op]
		if !ok {
			return nil, fmt.Errorf("unknown binary operator %q", d.Op)
		}
		x, err := fromExprDoc(d.X)
		if err != nil {
			return nil, err
		}
		y, err := fromExprDoc(d.Y)
		if err != nil {
			return nil, err
		}
		return &rtl.BinaryOp{Op: op, X: x, Y: y}, nil
	case "ternary":
		cond, err := fromExprDoc(d.Cond)
		if err != nil {
			return nil, err
		}
		then, err := fromExprDoc(d.Then)
		if err != nil {
			return nil, err
		}
		els, err := fromExprDoc(d.X)
		if err != nil {
			return nil, err
		}
		return &rtl.Ternary{Cond: cond, Then: then, Else: els}, nil
	case "call":
		args := make([]rtl.Expr, len(d.Args))
		for i := range d.Args {
			a, err := fromExprDoc(&d.Args[i])
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		return &rtl.Call{Name: d.Name, Args: args}, nil
	default:
		return nil, fmt.Errorf("unknown expression kind %q", d.Kind)
	}
}

func toStmtDoc(s rtl.Stmt) stmtDoc {
	switch n := s.(type) {
	case *rtl.Assign:
		return stmtDoc{Kind: "assign", LValue: toExprDoc(n.LValue), Value: toExprDoc(n.Value)}
	case *rtl.If:
		then := toRTLBlock(n.Then)
		els := toRTLBlock(n.Else)
		return stmtDoc{Kind: "if", Cond: toExprDoc(n.Cond), ThenStmt: &then, ElseStmt: &els}
	case *rtl.MemRead:
		return stmtDoc{Kind: "mem_read", Target: toExprDoc(n.Target), Addr: toExprDoc(n.Addr), Size: toExprDoc(n.Size)}
	case *rtl.MemWrite:
		return stmtDoc{Kind: "mem_write", Addr: toExprDoc(n.Addr), Size: toExprDoc(n.Size), Value: toExprDoc(n.Value)}
	case *rtl.ForLoop:
		body := toRTLBlock(n.Body)
		return stmtDoc{Kind: "for_loop", Var: n.Var, From: toExprDoc(n.From), To: toExprDoc(n.To), Body: &body}
	default:
		return stmtDoc{}
	}
}

func fromStmtDoc(d stmtDoc) (rtl.Stmt, error) {
	switch d.Kind {
	case "assign":
		lv, err := fromExprDoc(d.LValue)
		if err != nil {
			return nil, err
		}
		v, err := fromExprDoc(d.Value)
		if err != nil {
			return nil, err
		}
		return &rtl.Assign{LValue: lv, Value: v}, nil
	case "if":
		cond, err := fromExprDoc(d.Cond)
		if err != nil {
			return nil, err
		}
		var then, els rtl.Block
		if d.ThenStmt != nil {
			then, err = fromRTLBlock(*d.ThenStmt)
			if err != nil {
				return nil, err
			}
		}
		if d.ElseStmt != nil {
			els, err = fromRTLBlock(*d.ElseStmt)
			if err != nil {
				return nil, err
			}
		}
		return &rtl.If{Cond: cond, Then: then, Else: els}, nil
	case "mem_read":
		target, err := fromExprDoc(d.Target)
		if err != nil {
			return nil, err
		}
		addr, err := fromExprDoc(d.Addr)
		if err != nil {
			return nil, err
		}
		size, err := fromExprDoc(d.Size)
		if err != nil {
			return nil, err
		}
		return &rtl.MemRead{Target: target, Addr: addr, Size: size}, nil
	case "mem_write":
		addr, err := fromExprDoc(d.Addr)
		if err != nil {
			return nil, err
		}
		size, err := fromExprDoc(d.Size)
		if err != nil {
			return nil, err
		}
		value, err := fromExprDoc(d.Value)
		if err != nil {
			return nil, err
		}
		return &rtl.MemWrite{Addr: addr, Size: size, Value: value}, nil
	case "for_loop":
		from, err := fromExprDoc(d.From)
		if err != nil {
			return nil, err
		}
		to, err := fromExprDoc(d.To)
		if err != nil {
			return nil, err
		}
		var body rtl.Block
		if d.Body != nil {
			body, err = fromRTLBlock(*d.Body)
			if err != nil {
				return nil, err
			}
		}
		return &rtl.ForLoop{Var: d.Var, From: from, To: to, Body: body}, nil
	default:
		return nil, fmt.Errorf("unknown statement kind %q", d.Kind)
	}
}

func toRTLBlock(b rtl.Block) rtlBlockDoc {
	stmts := make([]stmtDoc, len(b.Stmts))
	for i, s := range b.Stmts {
		stmts[i] = toStmtDoc(s)
	}
	return rtlBlockDoc{Stmts: stmts}
}

func fromRTLBlock(d rtlBlockDoc) (rtl.Block, error) {
	stmts := make([]rtl.Stmt, len(d.Stmts))
	for i, s := range d.Stmts {
		st, err := fromStmtDoc(s)
		if err != nil {
			return rtl.Block{}, err
		}
		stmts[i] = st
	}
	return rtl.Block{Stmts: stmts}, nil
}
