// Package ast defines the expression tree produced by the parser (spec §4.1,
// grammar in §6), in the teacher's visitor-dispatched Expr shape
// (internal/parser/ast.go's Expr/Accept pattern), specialized to relation
// expressions instead of a general-purpose scripting language.
package ast

// Expr is any node of the relation expression tree. Every node records the
// byte offset in the source text it was parsed from, for error reporting
// (spec §4.1's ParseError{offset, expected}).
type Expr interface {
	Accept(v Visitor) interface{}
	Pos() int
}

type Base struct{ Offset int }

func (b Base) Pos() int { return b.Offset }

// Number is a numeric literal.
type Number struct {
	Base
	Value float64
}

func (n *Number) Accept(v Visitor) interface{} { return v.VisitNumber(n) }

// Ident is a bare identifier: x, y, r, theta/θ, e, pi/π, gamma/γ, or a
// function name used without a call (a TypeError at compile time).
type Ident struct {
	Base
	Name string
}

func (i *Ident) Accept(v Visitor) interface{} { return v.VisitIdent(i) }

// BinOp names the binary arithmetic/implicit-multiply operators.
type BinOp string

const (
	OpAdd    BinOp = "+"
	OpSub    BinOp = "-"
	OpMul    BinOp = "*"
	OpDiv    BinOp = "/"
	OpPow    BinOp = "^"
	OpImplicit BinOp = "" // implicit multiplication, e.g. "2x"
)

// Binary is a binary arithmetic expression.
type Binary struct {
	Base
	Op          BinOp
	Left, Right Expr
}

func (b *Binary) Accept(v Visitor) interface{} { return v.VisitBinary(b) }

// Unary is unary negation, "-x".
type Unary struct {
	Base
	Operand Expr
}

func (u *Unary) Accept(v Visitor) interface{} { return v.VisitUnary(u) }

// Call is a function application, name(args...).
type Call struct {
	Base
	Name string
	Args []Expr
}

func (c *Call) Accept(v Visitor) interface{} { return v.VisitCall(c) }

// Abs is |expr|.
type Abs struct {
	Base
	Operand Expr
}

func (a *Abs) Accept(v Visitor) interface{} { return v.VisitAbs(a) }

// Floor is ⌊expr⌋.
type Floor struct {
	Base
	Operand Expr
}

func (f *Floor) Accept(v Visitor) interface{} { return v.VisitFloor(f) }

// Ceil is ⌈expr⌉.
type Ceil struct {
	Base
	Operand Expr
}

func (c *Ceil) Accept(v Visitor) interface{} { return v.VisitCeil(c) }

// CompareOp names the five relational operators.
type CompareOp string

const (
	CmpEq CompareOp = "="
	CmpLt CompareOp = "<"
	CmpLe CompareOp = "<="
	CmpGt CompareOp = ">"
	CmpGe CompareOp = ">="
)

// Compare is a single pairwise comparison, f(x,y) ⋈ g(x,y). Chained
// comparisons (a < b < c) are expanded by the parser into a conjunction of
// these (spec §4.1).
type Compare struct {
	Base
	Op          CompareOp
	Left, Right Expr
}

func (c *Compare) Accept(v Visitor) interface{} { return v.VisitCompare(c) }

// LogicalOp names the two Boolean connectives.
type LogicalOp string

const (
	OpAnd LogicalOp = "&&"
	OpOr  LogicalOp = "||"
)

// Logical is a Boolean conjunction/disjunction.
type Logical struct {
	Base
	Op          LogicalOp
	Left, Right Expr
}

func (l *Logical) Accept(v Visitor) interface{} { return v.VisitLogical(l) }

// Not is Boolean negation, !expr.
type Not struct {
	Base
	Operand Expr
}

func (n *Not) Accept(v Visitor) interface{} { return v.VisitNot(n) }

// List is a bracketed list literal, "[a, b, c]" (spec §6 grammar; used for
// multi-argument domain lists such as ranked_min/ranked_max).
type List struct {
	Base
	Elements []Expr
}

func (l *List) Accept(v Visitor) interface{} { return v.VisitList(l) }

// Visitor dispatches over every Expr variant, the teacher's ExprVisitor
// pattern (internal/parser/ast.go) specialized to relation nodes.
type Visitor interface {
	VisitNumber(*Number) interface{}
	VisitIdent(*Ident) interface{}
	VisitBinary(*Binary) interface{}
	VisitUnary(*Unary) interface{}
	VisitCall(*Call) interface{}
	VisitAbs(*Abs) interface{}
	VisitFloor(*Floor) interface{}
	VisitCeil(*Ceil) interface{}
	VisitCompare(*Compare) interface{}
	VisitLogical(*Logical) interface{}
	VisitNot(*Not) interface{}
	VisitList(*List) interface{}
}
