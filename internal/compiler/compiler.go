// Package compiler implements the normalizer of spec §4.2: it walks the
// parser's AST, type-checks scalar/boolean usage, folds constant
// subexpressions, de-duplicates syntactically equal ones (CSE, handled by
// program.Builder), canonicalizes a few operator forms, and emits a
// program.Program.
package compiler

import (
	"math"
	"strings"

	"graphest/internal/ast"
	engerrors "graphest/internal/errors"
	"graphest/internal/evaluator"
	"graphest/internal/interval"
	"graphest/internal/parser"
	"graphest/internal/program"
)

// eulerMascheroni is the γ constant bound to the bare identifier "gamma"/"γ"
// (spec §6: "Identifiers: x y r theta θ e pi π gamma γ"). The capitalized
// Gamma *function* Γ is reached only through call syntax, gamma(x), which
// the parser produces as a distinct ast.Call node, so the two never
// collide despite sharing a spelling.
const eulerMascheroni = 0.5772156649015328606065120900824024310421593359399235988

// Compile parses and normalizes source text into a relation program (spec
// §4.2's full pipeline entry point).
func Compile(source string) (*program.Program, error) {
	p, err := parser.New(source)
	if err != nil {
		return nil, err
	}
	expr, err := p.Parse()
	if err != nil {
		return nil, err
	}
	c := &compiler{b: program.NewBuilder(), constVal: make(map[int]interval.Set)}
	reg, kind, err := c.compile(expr)
	if err != nil {
		return nil, err
	}
	if kind != program.RegBoolean {
		return nil, engerrors.Type(expr.Pos(), "relation must be a comparison or logical combination, not a bare scalar expression")
	}
	if c.sawCartesian && c.sawPolar {
		return nil, engerrors.Type(expr.Pos(), "relation mixes Cartesian variables (x, y) with polar variables (r, theta)")
	}
	mode := program.ModeCartesian
	if c.sawPolar {
		mode = program.ModePolar
	}
	return c.b.Build(reg, mode)
}

type compiler struct {
	b            *program.Builder
	sawCartesian bool
	sawPolar     bool
	// constVal records, for every register known to be free of x/y/r/theta,
	// the folded interval set it evaluates to (spec §4.2's constant
	// folding). Absence means the register depends on an input variable.
	constVal map[int]interval.Set
}

// compile dispatches on the AST node's concrete type. It returns the
// register holding the node's result and whether that register is a
// scalar-set or a ternary/boolean value.
func (c *compiler) compile(e ast.Expr) (int, program.RegKind, error) {
	switch n := e.(type) {
	case *ast.Number:
		return c.emitLiteral(interval.SetOf(interval.Point(n.Value), interval.Com)), program.RegScalar, nil
	case *ast.Ident:
		return c.compileIdent(n)
	case *ast.Binary:
		return c.compileBinary(n)
	case *ast.Unary:
		reg, kind, err := c.compile(n.Operand)
		if err != nil {
			return 0, 0, err
		}
		if kind != program.RegScalar {
			return 0, 0, engerrors.Type(n.Pos(), "unary minus requires a scalar operand")
		}
		out, err := c.emitScalar(program.OpNeg, false, 0, 0, 0, reg)
		return out, program.RegScalar, err
	case *ast.Abs:
		reg, kind, err := c.compile(n.Operand)
		if err != nil {
			return 0, 0, err
		}
		if kind != program.RegScalar {
			return 0, 0, engerrors.Type(n.Pos(), "|...| requires a scalar operand")
		}
		out, err := c.emitScalar(program.OpAbs, false, 0, 0, 0, reg)
		return out, program.RegScalar, err
	case *ast.Floor:
		return c.compileUnaryScalarOp(n.Operand, n.Pos(), program.OpFloor, false)
	case *ast.Ceil:
		return c.compileUnaryScalarOp(n.Operand, n.Pos(), program.OpCeil, false)
	case *ast.Call:
		return c.compileCall(n)
	case *ast.Compare:
		return c.compileCompare(n)
	case *ast.Logical:
		return c.compileLogical(n)
	case *ast.Not:
		reg, kind, err := c.compile(n.Operand)
		if err != nil {
			return 0, 0, err
		}
		if kind != program.RegBoolean {
			return 0, 0, engerrors.Type(n.Pos(), "! requires a boolean operand")
		}
		idx := c.b.Emit(program.Instruction{Op: program.OpNot, Operands: []int{reg}, Out: program.RegBoolean})
		return idx, program.RegBoolean, nil
	case *ast.List:
		return 0, 0, engerrors.Type(n.Pos(), "a list literal is only valid as a function argument")
	default:
		return 0, 0, engerrors.Internal(nil, "compiler: unhandled ast node")
	}
}

func (c *compiler) compileUnaryScalarOp(operand ast.Expr, pos int, op program.Opcode, restricted bool) (int, program.RegKind, error) {
	reg, kind, err := c.compile(operand)
	if err != nil {
		return 0, 0, err
	}
	if kind != program.RegScalar {
		return 0, 0, engerrors.Type(pos, op.String()+" requires a scalar operand")
	}
	out, err := c.emitScalar(op, restricted, 0, 0, 0, reg)
	return out, program.RegScalar, err
}

func (c *compiler) compileIdent(n *ast.Ident) (int, program.RegKind, error) {
	switch strings.ToLower(n.Name) {
	case "x":
		c.sawCartesian = true
		return c.b.Emit(program.Instruction{Op: program.OpInputX, Out: program.RegScalar}), program.RegScalar, nil
	case "y":
		c.sawCartesian = true
		return c.b.Emit(program.Instruction{Op: program.OpInputY, Out: program.RegScalar}), program.RegScalar, nil
	case "r":
		c.sawPolar = true
		return c.b.Emit(program.Instruction{Op: program.OpInputR, Out: program.RegScalar}), program.RegScalar, nil
	case "theta", "θ":
		c.sawPolar = true
		return c.b.Emit(program.Instruction{Op: program.OpInputTheta, Out: program.RegScalar}), program.RegScalar, nil
	case "e":
		return c.emitLiteral(irrationalConst(math.E)), program.RegScalar, nil
	case "pi", "π":
		return c.emitLiteral(irrationalConst(math.Pi)), program.RegScalar, nil
	case "gamma", "γ":
		return c.emitLiteral(irrationalConst(eulerMascheroni)), program.RegScalar, nil
	default:
		return 0, 0, engerrors.Type(n.Pos(), "unknown identifier "+n.Name)
	}
}

// irrationalConst builds the tightest outward-rounded enclosure of a
// mathematical constant known only to float64 precision: one ULP on each
// side of the closest representable value, the same nudge
// internal/interval's own roundDown/roundUp apply.
func irrationalConst(v float64) interval.Set {
	return interval.SetOf(interval.Interval{
		Lo: math.Nextafter(v, math.Inf(-1)),
		Hi: math.Nextafter(v, math.Inf(1)),
	}, interval.Com)
}

// emitScalar appends (or constant-folds) a scalar instruction. When every
// operand is itself a folded constant, the instruction is evaluated
// immediately via evaluator.ApplyScalar — the same dispatch table the
// runtime evaluator uses — and an OpLiteral is emitted in its place (spec
// §4.2's constant folding), instead of a second hand-written evaluator.
func (c *compiler) emitScalar(op program.Opcode, restricted bool, intParam, intParam2 int, floatParam float64, operands ...int) (int, error) {
	instr := program.Instruction{
		Op: op, Operands: operands, Out: program.RegScalar, Restricted: restricted,
		IntParam: intParam, IntParam2: intParam2, FloatParam: floatParam,
	}
	operandSets := make([]interval.Set, len(operands))
	allConst := true
	for i, o := range operands {
		s, ok := c.constVal[o]
		if !ok {
			allConst = false
			break
		}
		operandSets[i] = s
	}
	if allConst {
		folded, err := evaluator.ApplyScalar(instr, operandSets)
		if err != nil {
			return 0, err
		}
		return c.emitLiteral(folded), nil
	}
	return c.b.Emit(instr), nil
}

func (c *compiler) emitLiteral(s interval.Set) int {
	idx := c.b.Emit(program.Instruction{Op: program.OpLiteral, Out: program.RegScalar, Literal: s})
	c.constVal[idx] = s
	return idx
}

func (c *compiler) constIntAt(reg int) (int, bool) {
	s, ok := c.constVal[reg]
	if !ok || len(s.Components) != 1 {
		return 0, false
	}
	v := s.Components[0]
	if v.Lo != v.Hi {
		return 0, false
	}
	n := math.Round(v.Lo)
	if math.Abs(v.Lo-n) > 1e-9 {
		return 0, false
	}
	return int(n), true
}

func (c *compiler) constFloatAt(reg int) (float64, bool) {
	s, ok := c.constVal[reg]
	if !ok || len(s.Components) != 1 {
		return 0, false
	}
	v := s.Components[0]
	return v.Lo + (v.Hi-v.Lo)/2, true
}

// literalInt recognizes an unevaluated numeric (possibly unary-minus)
// literal directly in the AST, used to spot a rational exponent "x^(m/n)"
// before the division is constant-folded into a rounded float (spec §4.2:
// "x^(m/n) with explicit rational exponent is lowered to root_n ∘ pow_m").
// A folded Div result can't be used for this since 1/3 is never an exact
// float64 point value; the reduced-form rational must be read off the
// syntax itself.
func literalInt(e ast.Expr) (int, bool) {
	switch v := e.(type) {
	case *ast.Number:
		if v.Value == math.Trunc(v.Value) {
			return int(v.Value), true
		}
	case *ast.Unary:
		if n, ok := literalInt(v.Operand); ok {
			return -n, true
		}
	}
	return 0, false
}

func gcdInt(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func (c *compiler) compileBinary(n *ast.Binary) (int, program.RegKind, error) {
	if n.Op == ast.OpPow {
		return c.compilePow(n.Left, n.Right, n.Pos())
	}

	leftReg, leftKind, err := c.compile(n.Left)
	if err != nil {
		return 0, 0, err
	}
	rightReg, rightKind, err := c.compile(n.Right)
	if err != nil {
		return 0, 0, err
	}
	if leftKind != program.RegScalar || rightKind != program.RegScalar {
		return 0, 0, engerrors.Type(n.Pos(), "arithmetic operator "+string(n.Op)+" requires scalar operands")
	}

	switch n.Op {
	case ast.OpAdd:
		out, err := c.emitScalar(program.OpAdd, false, 0, 0, 0, leftReg, rightReg)
		return out, program.RegScalar, err
	case ast.OpSub:
		// Canonicalization (spec §4.2): x - y ⇒ x + (-y).
		negReg, err := c.emitScalar(program.OpNeg, false, 0, 0, 0, rightReg)
		if err != nil {
			return 0, 0, err
		}
		out, err := c.emitScalar(program.OpAdd, false, 0, 0, 0, leftReg, negReg)
		return out, program.RegScalar, err
	case ast.OpMul, ast.OpImplicit:
		out, err := c.emitScalar(program.OpMul, false, 0, 0, 0, leftReg, rightReg)
		return out, program.RegScalar, err
	case ast.OpDiv:
		// Kept as division, not x · y⁻¹, so the division-by-zero
		// decoration is preserved (spec §4.2).
		out, err := c.emitScalar(program.OpDiv, true, 0, 0, 0, leftReg, rightReg)
		return out, program.RegScalar, err
	default:
		return 0, 0, engerrors.Internal(nil, "compiler: unhandled binary operator "+string(n.Op))
	}
}

// compilePow implements the exponent canonicalization of spec §4.2:
// integer exponents expand to a single outward-rounded pow_int primitive;
// an explicit reduced-form rational exponent m/n lowers to root_n ∘ pow_m
// (encoded as one OpPowRational instruction, since internal/interval's
// PowRational already implements that composition internally); anything
// else is a static DomainError, since the engine has no generic
// real-exponent primitive (spec §4.3 only lists integer and rational pow).
func (c *compiler) compilePow(left, right ast.Expr, pos int) (int, program.RegKind, error) {
	leftReg, leftKind, err := c.compile(left)
	if err != nil {
		return 0, 0, err
	}
	if leftKind != program.RegScalar {
		return 0, 0, engerrors.Type(pos, "^ requires a scalar base")
	}

	if div, ok := right.(*ast.Binary); ok && div.Op == ast.OpDiv {
		if m, mok := literalInt(div.Left); mok {
			if q, qok := literalInt(div.Right); qok && q != 0 {
				if q < 0 {
					m, q = -m, -q
				}
				g := gcdInt(m, q)
				m, q = m/g, q/g
				out, err := c.emitScalar(program.OpPowRational, true, m, q, 0, leftReg)
				return out, program.RegScalar, err
			}
		}
	}
	if m, ok := literalInt(right); ok {
		out, err := c.emitScalar(program.OpPowInt, false, m, 0, 0, leftReg)
		return out, program.RegScalar, err
	}

	return 0, 0, engerrors.Domain(pos, "exponent must be a constant integer or a reduced rational literal (e.g. 3, -2, 1/3)")
}

// unaryFuncs maps call-syntax function names (spec §4.3) to the opcode
// applying them, for every primitive whose compile-time shape is a single
// scalar operand with no extra constant parameter.
var unaryFuncs = map[string]program.Opcode{
	"abs": program.OpAbs, "sign": program.OpSign, "floor": program.OpFloor, "ceil": program.OpCeil,
	"sqrt": program.OpSqrt, "exp": program.OpExp, "ln": program.OpLn, "log10": program.OpLog10,
	"sin": program.OpSin, "cos": program.OpCos, "tan": program.OpTan,
	"asin": program.OpAsin, "acos": program.OpAcos, "atan": program.OpAtan,
	"sinh": program.OpSinh, "cosh": program.OpCosh, "tanh": program.OpTanh,
	"asinh": program.OpAsinh, "acosh": program.OpAcosh, "atanh": program.OpAtanh,
	"digamma": program.OpDigamma, "psi": program.OpDigamma,
	"erf": program.OpErf, "erfc": program.OpErfc, "erfi": program.OpErfi,
	"ei": program.OpEi, "li": program.OpLi, "si": program.OpSi, "ci": program.OpCi,
	"shi": program.OpShi, "chi": program.OpChi,
	"fresnel_s": program.OpFresnelS, "fresnel_c": program.OpFresnelC,
	"s": program.OpFresnelS, "c": program.OpFresnelC,
	"airy_ai": program.OpAiryAi, "airy_bi": program.OpAiryBi,
	"airy_ai_prime": program.OpAiryAiPrime, "airy_bi_prime": program.OpAiryBiPrime,
	"elliptic_k": program.OpEllipticK, "elliptic_e": program.OpEllipticE,
	"k": program.OpEllipticK, "e": program.OpEllipticE,
	"gamma": program.OpGamma,
}

// restrictedUnary marks the unaryFuncs entries that are statically partial
// (spec §4.2's domain annotation).
var restrictedUnary = map[program.Opcode]bool{
	program.OpSqrt: true, program.OpLn: true, program.OpLog10: true, program.OpTan: true,
	program.OpAsin: true, program.OpAcos: true, program.OpAcosh: true, program.OpAtanh: true,
}

// binaryFuncs maps call-syntax names to their opcode for ordinary
// two-scalar-operand primitives.
var binaryFuncs = map[string]program.Opcode{
	"min": program.OpMin, "max": program.OpMax, "mod": program.OpMod,
	"gcd": program.OpGCD, "lcm": program.OpLCM, "atan2": program.OpAtan2,
}

var restrictedBinary = map[program.Opcode]bool{
	program.OpMod: true, program.OpGCD: true, program.OpLCM: true,
}

func (c *compiler) compileCall(n *ast.Call) (int, program.RegKind, error) {
	name := strings.ToLower(n.Name)

	switch name {
	case "ranked_min", "ranked_max":
		return c.compileRanked(n, name == "ranked_min")
	case "bessel_j", "bessel_y", "bessel_i", "bessel_k":
		return c.compileBessel(n, name)
	case "log", "log_b":
		return c.compileLogB(n)
	}

	if name == "gamma" && len(n.Args) == 2 {
		return c.compileUpperGamma(n)
	}

	if op, ok := unaryFuncs[name]; ok {
		if len(n.Args) != 1 {
			return 0, 0, engerrors.Type(n.Pos(), name+" takes exactly one argument")
		}
		reg, kind, err := c.compile(n.Args[0])
		if err != nil {
			return 0, 0, err
		}
		if kind != program.RegScalar {
			return 0, 0, engerrors.Type(n.Pos(), name+" requires a scalar argument")
		}
		out, err := c.emitScalar(op, restrictedUnary[op], 0, 0, 0, reg)
		return out, program.RegScalar, err
	}

	if op, ok := binaryFuncs[name]; ok {
		if len(n.Args) != 2 {
			return 0, 0, engerrors.Type(n.Pos(), name+" takes exactly two arguments")
		}
		aReg, aKind, err := c.compile(n.Args[0])
		if err != nil {
			return 0, 0, err
		}
		bReg, bKind, err := c.compile(n.Args[1])
		if err != nil {
			return 0, 0, err
		}
		if aKind != program.RegScalar || bKind != program.RegScalar {
			return 0, 0, engerrors.Type(n.Pos(), name+" requires scalar arguments")
		}
		out, err := c.emitScalar(op, restrictedBinary[op], 0, 0, 0, aReg, bReg)
		return out, program.RegScalar, err
	}

	if name == "pow" && len(n.Args) == 2 {
		return c.compilePow(n.Args[0], n.Args[1], n.Pos())
	}

	return 0, 0, engerrors.Type(n.Pos(), "unknown function "+n.Name)
}

func (c *compiler) compileLogB(n *ast.Call) (int, program.RegKind, error) {
	if len(n.Args) != 2 {
		return 0, 0, engerrors.Type(n.Pos(), "log/log_b takes (base, x)")
	}
	baseReg, baseKind, err := c.compile(n.Args[0])
	if err != nil {
		return 0, 0, err
	}
	xReg, xKind, err := c.compile(n.Args[1])
	if err != nil {
		return 0, 0, err
	}
	if baseKind != program.RegScalar || xKind != program.RegScalar {
		return 0, 0, engerrors.Type(n.Pos(), "log/log_b requires scalar arguments")
	}
	base, ok := c.constFloatAt(baseReg)
	if !ok {
		return 0, 0, engerrors.Domain(n.Pos(), "log/log_b's base must be a compile-time constant")
	}
	out, err := c.emitScalar(program.OpLogB, true, 0, 0, base, xReg)
	return out, program.RegScalar, err
}

func (c *compiler) compileUpperGamma(n *ast.Call) (int, program.RegKind, error) {
	aReg, aKind, err := c.compile(n.Args[0])
	if err != nil {
		return 0, 0, err
	}
	xReg, xKind, err := c.compile(n.Args[1])
	if err != nil {
		return 0, 0, err
	}
	if aKind != program.RegScalar || xKind != program.RegScalar {
		return 0, 0, engerrors.Type(n.Pos(), "gamma(a, x) requires scalar arguments")
	}
	a, ok := c.constFloatAt(aReg)
	if ok {
		v := c.constVal[aReg].Components[0]
		ok = v.Lo == v.Hi
	}
	if !ok {
		return 0, 0, engerrors.Domain(n.Pos(), "gamma(a, x)'s shape parameter a must be an exact compile-time constant")
	}
	out, err := c.emitScalar(program.OpUpperGamma, true, 0, 0, a, xReg)
	return out, program.RegScalar, err
}

var besselOps = map[string]program.Opcode{
	"bessel_j": program.OpBesselJ, "bessel_y": program.OpBesselY,
	"bessel_i": program.OpBesselI, "bessel_k": program.OpBesselK,
}

func (c *compiler) compileBessel(n *ast.Call, name string) (int, program.RegKind, error) {
	if len(n.Args) != 2 {
		return 0, 0, engerrors.Type(n.Pos(), name+"(n, x) takes exactly two arguments")
	}
	nReg, nKind, err := c.compile(n.Args[0])
	if err != nil {
		return 0, 0, err
	}
	xReg, xKind, err := c.compile(n.Args[1])
	if err != nil {
		return 0, 0, err
	}
	if nKind != program.RegScalar || xKind != program.RegScalar {
		return 0, 0, engerrors.Type(n.Pos(), name+" requires scalar arguments")
	}
	order, ok := c.constIntAt(nReg)
	if !ok {
		return 0, 0, engerrors.Domain(n.Pos(), name+"'s order n must be a non-half-integer-restricted, exact compile-time integer")
	}
	op := besselOps[name]
	out, err := c.emitScalar(op, true, order, 0, 0, xReg)
	return out, program.RegScalar, err
}

func (c *compiler) compileRanked(n *ast.Call, isMin bool) (int, program.RegKind, error) {
	if len(n.Args) != 2 {
		return 0, 0, engerrors.Type(n.Pos(), "ranked_min/ranked_max take (rank, [list])")
	}
	kReg, kKind, err := c.compile(n.Args[0])
	if err != nil {
		return 0, 0, err
	}
	if kKind != program.RegScalar {
		return 0, 0, engerrors.Type(n.Pos(), "ranked_min/ranked_max's rank must be a scalar")
	}
	rank, ok := c.constIntAt(kReg)
	if !ok {
		return 0, 0, engerrors.Domain(n.Pos(), "ranked_min/ranked_max's rank must be a compile-time constant integer")
	}
	list, ok := n.Args[1].(*ast.List)
	if !ok {
		return 0, 0, engerrors.Type(n.Pos(), "ranked_min/ranked_max's second argument must be a list literal")
	}
	operands := make([]int, len(list.Elements))
	for i, elem := range list.Elements {
		reg, kind, err := c.compile(elem)
		if err != nil {
			return 0, 0, err
		}
		if kind != program.RegScalar {
			return 0, 0, engerrors.Type(elem.Pos(), "ranked_min/ranked_max's list elements must be scalars")
		}
		operands[i] = reg
	}
	op := program.OpRankedMax
	if isMin {
		op = program.OpRankedMin
	}
	out, err := c.emitScalar(op, false, rank, 0, 0, operands...)
	return out, program.RegScalar, err
}

var cmpOps = map[ast.CompareOp]program.Opcode{
	ast.CmpEq: program.OpCompareEq, ast.CmpLt: program.OpCompareLt, ast.CmpLe: program.OpCompareLe,
	ast.CmpGt: program.OpCompareGt, ast.CmpGe: program.OpCompareGe,
}

func (c *compiler) compileCompare(n *ast.Compare) (int, program.RegKind, error) {
	leftReg, leftKind, err := c.compile(n.Left)
	if err != nil {
		return 0, 0, err
	}
	rightReg, rightKind, err := c.compile(n.Right)
	if err != nil {
		return 0, 0, err
	}
	if leftKind != program.RegScalar || rightKind != program.RegScalar {
		return 0, 0, engerrors.Type(n.Pos(), "comparison requires scalar operands")
	}
	negReg, err := c.emitScalar(program.OpNeg, false, 0, 0, 0, rightReg)
	if err != nil {
		return 0, 0, err
	}
	diffReg, err := c.emitScalar(program.OpAdd, false, 0, 0, 0, leftReg, negReg)
	if err != nil {
		return 0, 0, err
	}
	op, ok := cmpOps[n.Op]
	if !ok {
		return 0, 0, engerrors.Internal(nil, "compiler: unhandled comparison operator "+string(n.Op))
	}
	idx := c.b.Emit(program.Instruction{Op: op, Operands: []int{diffReg}, Out: program.RegBoolean})
	return idx, program.RegBoolean, nil
}

func (c *compiler) compileLogical(n *ast.Logical) (int, program.RegKind, error) {
	leftReg, leftKind, err := c.compile(n.Left)
	if err != nil {
		return 0, 0, err
	}
	rightReg, rightKind, err := c.compile(n.Right)
	if err != nil {
		return 0, 0, err
	}
	if leftKind != program.RegBoolean || rightKind != program.RegBoolean {
		return 0, 0, engerrors.Type(n.Pos(), "&&/|| require boolean operands")
	}
	op := program.OpAnd
	if n.Op == ast.OpOr {
		op = program.OpOr
	}
	idx := c.b.Emit(program.Instruction{Op: op, Operands: []int{leftReg, rightReg}, Out: program.RegBoolean})
	return idx, program.RegBoolean, nil
}
