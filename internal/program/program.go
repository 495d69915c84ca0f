// Package program defines the relation program (spec §3, §4.2): the
// immutable, register-addressed instruction sequence the compiler emits and
// the evaluator interprets. It is the teacher's bytecode.Chunk/OpCode shape
// (a flat instruction slice addressed by integer index) turned register-based
// instead of stack-based, since every instruction here refers to earlier
// results by index rather than popping an operand stack.
package program

import (
	"fmt"
	"strings"

	"graphest/internal/interval"
)

// Mode selects which pair of input registers a program reads (spec §4.2's
// "descriptor listing which input registers are read").
type Mode uint8

const (
	ModeCartesian Mode = iota
	ModePolar
)

func (m Mode) String() string {
	if m == ModePolar {
		return "polar"
	}
	return "cartesian"
}

// RegKind tags an instruction's output register file: the scalar set-value
// file or the ternary/boolean file (spec §3 "two register files").
type RegKind uint8

const (
	RegScalar RegKind = iota
	RegBoolean
)

// Opcode names one relation-program operation. Scalar opcodes correspond
// 1:1 with the primitive interval library of spec §4.3; the final eight are
// the comparison/logical opcodes of spec §4.4 that produce RegBoolean
// output.
type Opcode uint8

const (
	OpLiteral Opcode = iota
	OpInputX
	OpInputY
	OpInputR
	OpInputTheta

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpNeg
	OpAbs
	OpMin
	OpMax
	OpRankedMin
	OpRankedMax
	OpFloor
	OpCeil
	OpSign
	OpMod
	OpGCD
	OpLCM

	OpSqrt
	OpExp
	OpLn
	OpLog10
	OpLogB
	OpNthRoot
	OpPowInt
	OpPowRational

	OpSin
	OpCos
	OpTan
	OpAsin
	OpAcos
	OpAtan
	OpAtan2
	OpSinh
	OpCosh
	OpTanh
	OpAsinh
	OpAcosh
	OpAtanh

	OpGamma
	OpUpperGamma
	OpDigamma
	OpErf
	OpErfc
	OpErfi
	OpEi
	OpLi
	OpSi
	OpCi
	OpShi
	OpChi
	OpFresnelS
	OpFresnelC
	OpBesselJ
	OpBesselY
	OpBesselI
	OpBesselK
	OpAiryAi
	OpAiryBi
	OpAiryAiPrime
	OpAiryBiPrime
	OpEllipticK
	OpEllipticE

	OpCompareEq
	OpCompareLt
	OpCompareLe
	OpCompareGt
	OpCompareGe

	OpAnd
	OpOr
	OpNot
)

var opcodeNames = map[Opcode]string{
	OpLiteral: "literal", OpInputX: "x", OpInputY: "y", OpInputR: "r", OpInputTheta: "theta",
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div", OpNeg: "neg",
	OpAbs: "abs", OpMin: "min", OpMax: "max", OpRankedMin: "ranked_min", OpRankedMax: "ranked_max",
	OpFloor: "floor", OpCeil: "ceil", OpSign: "sign", OpMod: "mod", OpGCD: "gcd", OpLCM: "lcm",
	OpSqrt: "sqrt", OpExp: "exp", OpLn: "ln", OpLog10: "log10", OpLogB: "log_b",
	OpNthRoot: "nth_root", OpPowInt: "pow_int", OpPowRational: "pow_rational",
	OpSin: "sin", OpCos: "cos", OpTan: "tan", OpAsin: "asin", OpAcos: "acos", OpAtan: "atan",
	OpAtan2: "atan2", OpSinh: "sinh", OpCosh: "cosh", OpTanh: "tanh",
	OpAsinh: "asinh", OpAcosh: "acosh", OpAtanh: "atanh",
	OpGamma: "gamma", OpUpperGamma: "upper_gamma", OpDigamma: "digamma",
	OpErf: "erf", OpErfc: "erfc", OpErfi: "erfi", OpEi: "ei", OpLi: "li",
	OpSi: "si", OpCi: "ci", OpShi: "shi", OpChi: "chi",
	OpFresnelS: "fresnel_s", OpFresnelC: "fresnel_c",
	OpBesselJ: "bessel_j", OpBesselY: "bessel_y", OpBesselI: "bessel_i", OpBesselK: "bessel_k",
	OpAiryAi: "airy_ai", OpAiryBi: "airy_bi", OpAiryAiPrime: "airy_ai_prime", OpAiryBiPrime: "airy_bi_prime",
	OpEllipticK: "elliptic_k", OpEllipticE: "elliptic_e",
	OpCompareEq: "cmp_eq", OpCompareLt: "cmp_lt", OpCompareLe: "cmp_le",
	OpCompareGt: "cmp_gt", OpCompareGe: "cmp_ge",
	OpAnd: "and", OpOr: "or", OpNot: "not",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("opcode(%d)", op)
}

// Instruction is one entry of the relation program. Operands are indices
// into the program's own instruction slice (earlier results only — the
// program is a DAG rendered as a topologically sorted list by the
// compiler's CSE pass).
type Instruction struct {
	Op       Opcode
	Operands []int
	Out      RegKind

	// Literal holds the constant set for OpLiteral instructions, produced by
	// the compiler's constant-folding pass (spec §4.2).
	Literal interval.Set

	// IntParam carries an opcode-specific integer: the exponent for
	// OpPowInt, the numerator for OpPowRational (denominator in IntParam2),
	// the root degree for OpNthRoot, the rank for OpRankedMin/OpRankedMax,
	// the order n for the Bessel family.
	IntParam  int
	IntParam2 int

	// FloatParam carries an opcode-specific compile-time-constant float:
	// the base for OpLogB, the shape parameter a for OpUpperGamma (spec
	// §4.3: Γ(a,·) requires an exact, non-interval a).
	FloatParam float64

	// Restricted marks a statically partial operation (spec §4.2's domain
	// annotation: sqrt, log, non-integer pow, tan, division, mod, ...). The
	// search consults this to choose between two-valued and three-valued
	// decisions at a pixel boundary.
	Restricted bool
}

// Program is the compiler's immutable output: a linear, topologically
// sorted instruction sequence plus the descriptor of which input registers
// it reads (spec §4.2's "Output" bullet). It is read-only for the lifetime
// of the session that compiled it (spec §3's Lifecycles invariant).
type Program struct {
	Instructions []Instruction
	Result       int // index of the final RegBoolean instruction
	Mode         Mode
}

// Len reports the instruction count.
func (p *Program) Len() int { return len(p.Instructions) }

// At returns the instruction at index i.
func (p *Program) At(i int) Instruction { return p.Instructions[i] }

// Disassemble renders a human-readable listing, one instruction per line,
// in the register = op(operands) shape, for --debug output and golden
// tests (spec §6's round-trip/idempotence requirement is easiest to check
// against a stable text form).
func (p *Program) Disassemble() string {
	var b strings.Builder
	fmt.Fprintf(&b, "; mode=%s result=r%d\n", p.Mode, p.Result)
	for i, instr := range p.Instructions {
		reg := "s"
		if instr.Out == RegBoolean {
			reg = "b"
		}
		fmt.Fprintf(&b, "r%d:%s = %s", i, reg, instr.Op)
		if instr.Op == OpLiteral {
			fmt.Fprintf(&b, " %v", instr.Literal)
		} else if len(instr.Operands) > 0 {
			parts := make([]string, len(instr.Operands))
			for j, o := range instr.Operands {
				parts[j] = fmt.Sprintf("r%d", o)
			}
			fmt.Fprintf(&b, "(%s)", strings.Join(parts, ", "))
		}
		if instr.IntParam != 0 {
			fmt.Fprintf(&b, " #%d", instr.IntParam)
		}
		if instr.Restricted {
			b.WriteString(" ; restricted")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Builder accumulates instructions and de-duplicates syntactically equal
// ones (spec §4.2's CSE pass), returning the register index to reuse for a
// repeated emission.
type Builder struct {
	instructions []Instruction
	cseKey       map[string]int
}

func NewBuilder() *Builder {
	return &Builder{cseKey: make(map[string]int)}
}

// Emit appends instr unless an operationally identical instruction was
// already emitted, in which case its index is returned instead (CSE).
func (b *Builder) Emit(instr Instruction) int {
	key := cseKeyOf(instr)
	if key != "" {
		if idx, ok := b.cseKey[key]; ok {
			return idx
		}
	}
	idx := len(b.instructions)
	b.instructions = append(b.instructions, instr)
	if key != "" {
		b.cseKey[key] = idx
	}
	return idx
}

// cseKeyOf builds a string key identifying instr's operation and operands
// for syntactic equality. OpLiteral is keyed by its formatted value since
// two equal constants may be produced by unrelated subtrees.
func cseKeyOf(instr Instruction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|%d|%d|%v|", instr.Op, instr.IntParam, instr.IntParam2, instr.FloatParam)
	for _, o := range instr.Operands {
		fmt.Fprintf(&b, "%d,", o)
	}
	if instr.Op == OpLiteral {
		fmt.Fprintf(&b, "|%v", instr.Literal)
	}
	return b.String()
}

// Build finalizes the program. result must be the index of the last
// emitted instruction, which must have RegBoolean output (spec §3:
// "terminating in a single boolean result").
func (b *Builder) Build(result int, mode Mode) (*Program, error) {
	if result < 0 || result >= len(b.instructions) {
		return nil, fmt.Errorf("program: result index %d out of range", result)
	}
	if b.instructions[result].Out != RegBoolean {
		return nil, fmt.Errorf("program: result register r%d is not boolean", result)
	}
	return &Program{Instructions: b.instructions, Result: result, Mode: mode}, nil
}
