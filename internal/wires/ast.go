package wires

import "strconv"

// Statement binds the expression on the right of "->" to a wire.
type Statement struct {
	Line int
	Wire string
	Expr Expr
}

// Operand is either a literal or a reference to another wire.
type Operand struct {
	Ref   string
	Value uint16
}

// Literal returns an operand holding a fixed value.
func Literal(v uint16) Operand { return Operand{Value: v} }

// Ref returns an operand reading the value of wire name.
func Ref(name string) Operand { return Operand{Ref: name} }

func (o Operand) IsRef() bool { return o.Ref != "" }

func (o Operand) String() string {
	if o.IsRef() {
		return o.Ref
	}
	return strconv.FormatUint(uint64(o.Value), 10)
}

// Op is a two-input gate.
type Op int

const (
	OpAnd Op = iota
	OpOr
	OpLShift
	OpRShift
)

func (op Op) String() string {
	switch op {
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	case OpLShift:
		return "LSHIFT"
	case OpRShift:
		return "RSHIFT"
	default:
		return "Op(" + strconv.Itoa(int(op)) + ")"
	}
}

func (op Op) apply(a, b uint16) uint16 {
	switch op {
	case OpAnd:
		return a & b
	case OpOr:
		return a | b
	case OpLShift:
		return a << b
	case OpRShift:
		return a >> b
	}
	panic("wires: unknown op " + op.String())
}

// Expr AST

type Expr interface {
	isExpr()
	operands() []Operand
}

type ExprValue struct{ X Operand }

func (ExprValue) isExpr()               {}
func (e ExprValue) operands() []Operand { return []Operand{e.X} }
func (e ExprValue) String() string      { return e.X.String() }

type ExprNot struct{ X Operand }

func (ExprNot) isExpr()               {}
func (e ExprNot) operands() []Operand { return []Operand{e.X} }
func (e ExprNot) String() string      { return "NOT " + e.X.String() }

type ExprBinary struct {
	Op   Op
	A, B Operand
}

func (ExprBinary) isExpr()               {}
func (e ExprBinary) operands() []Operand { return []Operand{e.A, e.B} }
func (e ExprBinary) String() string {
	return e.A.String() + " " + e.Op.String() + " " + e.B.String()
}

// Deps returns the distinct wires e reads, in operand order.
func Deps(e Expr) []string {
	var out []string
next:
	for _, o := range e.operands() {
		if !o.IsRef() {
			continue
		}
		for _, seen := range out {
			if seen == o.Ref {
				continue next
			}
		}
		out = append(out, o.Ref)
	}
	return out
}
