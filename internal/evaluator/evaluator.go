// Package evaluator interprets a compiled relation program over a box
// (spec §4.4). It holds the one dispatch table mapping each program.Opcode
// to the outward-rounded primitive in internal/interval that implements
// it; the compiler's constant folder reuses the same table so a literal
// subtree is evaluated with exactly the runtime semantics, never a second
// hand-written copy of it.
package evaluator

import (
	engerrors "graphest/internal/errors"
	"graphest/internal/interval"
	"graphest/internal/program"
	"graphest/internal/ternary"

	"graphest/internal/box"
)

// Inputs seeds the program's input registers. A program reads exactly one
// of the two pairs (spec §4.2's Cartesian/polar descriptor); the unused
// pair is simply never referenced by any instruction.
type Inputs struct {
	X, Y, R, Theta interval.Set
}

// ApplyScalar executes one scalar instruction given its already-evaluated
// operand sets. Exported so the compiler's constant-folding pass (spec
// §4.2) can evaluate a free-variable-less subtree with the same primitive
// dispatch the runtime evaluator uses, instead of a parallel hand-rolled
// evaluator.
func ApplyScalar(instr program.Instruction, operands []interval.Set) (interval.Set, error) {
	switch instr.Op {
	case program.OpLiteral:
		return instr.Literal, nil
	case program.OpRankedMin, program.OpRankedMax:
		return applyRanked(instr, operands)
	}

	unary, isUnary := unaryTable[instr.Op]
	if isUnary {
		if len(operands) != 1 {
			return interval.Set{}, engerrors.Internal(nil, "evaluator: wrong arity for "+instr.Op.String())
		}
		return operands[0].Map(unary(instr)), nil
	}

	binary, isBinary := binaryTable[instr.Op]
	if isBinary {
		if len(operands) != 2 {
			return interval.Set{}, engerrors.Internal(nil, "evaluator: wrong arity for "+instr.Op.String())
		}
		return interval.CartesianMap(operands[0], operands[1], binary), nil
	}

	return interval.Set{}, engerrors.Internal(nil, "evaluator: unknown scalar opcode "+instr.Op.String())
}

func applyRanked(instr program.Instruction, operands []interval.Set) (interval.Set, error) {
	if len(operands) == 0 {
		return interval.Set{}, engerrors.Internal(nil, "evaluator: ranked_min/max needs at least one operand")
	}
	dec := interval.Com
	xs := make([]interval.Interval, len(operands))
	for i, s := range operands {
		dec = interval.MinDecoration(dec, s.Dec)
		xs[i] = s.Hull()
	}
	lo, hi := interval.RankedMinMax(xs, instr.IntParam)
	if instr.Op == program.OpRankedMin {
		return interval.SetOf(lo, dec), nil
	}
	return interval.SetOf(hi, dec), nil
}

// --- dispatch tables ---
//
// A unary/binary table entry closes over an instruction's compile-time
// parameters (IntParam/IntParam2/FloatParam) and returns the Map/
// CartesianMap-shaped function spec §4.4 step 2 calls for: apply the
// primitive to every branch of the operand set(s), letting Set.Map /
// interval.CartesianMap re-union the (possibly multi-valued) results into
// a new ≤k-bounded set.

type unaryFn func(interval.Interval) ([]interval.Interval, interval.Decoration)
type binaryFn func(x, y interval.Interval) ([]interval.Interval, interval.Decoration)

func plain1(f func(interval.Interval) interval.Interval) func(program.Instruction) unaryFn {
	return func(program.Instruction) unaryFn {
		return func(x interval.Interval) ([]interval.Interval, interval.Decoration) {
			return []interval.Interval{f(x)}, interval.Com
		}
	}
}

func dec1(f func(interval.Interval) (interval.Interval, interval.Decoration)) func(program.Instruction) unaryFn {
	return func(program.Instruction) unaryFn {
		return func(x interval.Interval) ([]interval.Interval, interval.Decoration) {
			r, d := f(x)
			return []interval.Interval{r}, d
		}
	}
}

func plain2(f func(a, b interval.Interval) interval.Interval) func(program.Instruction) binaryFn {
	return func(program.Instruction) binaryFn {
		return func(a, b interval.Interval) ([]interval.Interval, interval.Decoration) {
			return []interval.Interval{f(a, b)}, interval.Com
		}
	}
}

func dec2(f func(a, b interval.Interval) (interval.Interval, interval.Decoration)) func(program.Instruction) binaryFn {
	return func(program.Instruction) binaryFn {
		return func(a, b interval.Interval) ([]interval.Interval, interval.Decoration) {
			r, d := f(a, b)
			return []interval.Interval{r}, d
		}
	}
}

var unaryTable = map[program.Opcode]func(program.Instruction) unaryFn{
	program.OpNeg:   plain1(interval.Neg),
	program.OpAbs:   plain1(interval.Abs),
	program.OpFloor: plain1(interval.Floor),
	program.OpCeil:  plain1(interval.Ceil),
	program.OpSign:  plain1(interval.Sign),

	program.OpSqrt:  dec1(interval.Sqrt),
	program.OpExp:   plain1(interval.Exp),
	program.OpLn:    dec1(interval.Ln),
	program.OpLog10: dec1(interval.Log10),
	program.OpLogB: func(instr program.Instruction) unaryFn {
		base := instr.FloatParam
		return func(x interval.Interval) ([]interval.Interval, interval.Decoration) {
			r, d := interval.LogB(x, base)
			return []interval.Interval{r}, d
		}
	},
	program.OpNthRoot: func(instr program.Instruction) unaryFn {
		n := instr.IntParam
		return func(x interval.Interval) ([]interval.Interval, interval.Decoration) {
			r, d := interval.NthRoot(x, n)
			return []interval.Interval{r}, d
		}
	},
	program.OpPowInt: func(instr program.Instruction) unaryFn {
		n := instr.IntParam
		return func(x interval.Interval) ([]interval.Interval, interval.Decoration) {
			r, d := interval.IntPow(x, n)
			return []interval.Interval{r}, d
		}
	},
	program.OpPowRational: func(instr program.Instruction) unaryFn {
		m, n := instr.IntParam, instr.IntParam2
		return func(x interval.Interval) ([]interval.Interval, interval.Decoration) {
			r, d := interval.PowRational(x, m, n)
			return []interval.Interval{r}, d
		}
	},

	program.OpSin:    plain1(interval.Sin),
	program.OpCos:    plain1(interval.Cos),
	program.OpTan:    dec1(interval.Tan),
	program.OpAsin:   dec1(interval.Asin),
	program.OpAcos:   dec1(interval.Acos),
	program.OpAtan:   plain1(interval.Atan),
	program.OpSinh:   plain1(interval.Sinh),
	program.OpCosh:   plain1(interval.Cosh),
	program.OpTanh:   plain1(interval.Tanh),
	program.OpAsinh:  plain1(interval.Asinh),
	program.OpAcosh:  dec1(interval.Acosh),
	program.OpAtanh:  dec1(interval.Atanh),

	program.OpGamma:   dec1(interval.Gamma),
	program.OpDigamma: dec1(interval.Digamma),
	program.OpErf:     plain1(interval.Erf),
	program.OpErfc:    plain1(interval.Erfc),
	program.OpErfi:    plain1(interval.Erfi),
	program.OpEi:      dec1(interval.Ei),
	program.OpLi:      dec1(interval.Li),
	program.OpSi:      plain1(interval.Si),
	program.OpCi:      dec1(interval.Ci),
	program.OpShi:     plain1(interval.Shi),
	program.OpChi:     dec1(interval.Chi),
	program.OpFresnelS: plain1(interval.S),
	program.OpFresnelC: plain1(interval.C),
	program.OpAiryAi:      plain1(interval.Ai),
	program.OpAiryBi:      plain1(interval.Bi),
	program.OpAiryAiPrime: plain1(interval.AiPrime),
	program.OpAiryBiPrime: plain1(interval.BiPrime),
	program.OpEllipticK:   dec1(interval.K),
	program.OpEllipticE:   dec1(interval.E),
	program.OpUpperGamma: func(instr program.Instruction) unaryFn {
		a := instr.FloatParam
		return func(x interval.Interval) ([]interval.Interval, interval.Decoration) {
			r, d := interval.UpperIncompleteGamma(a, x)
			return []interval.Interval{r}, d
		}
	},
	program.OpBesselJ: func(instr program.Instruction) unaryFn {
		n := instr.IntParam
		return func(x interval.Interval) ([]interval.Interval, interval.Decoration) {
			return []interval.Interval{interval.Jn(n, x)}, interval.Com
		}
	},
	program.OpBesselY: func(instr program.Instruction) unaryFn {
		n := instr.IntParam
		return func(x interval.Interval) ([]interval.Interval, interval.Decoration) {
			r, d := interval.Yn(n, x)
			return []interval.Interval{r}, d
		}
	},
	program.OpBesselI: func(instr program.Instruction) unaryFn {
		n := instr.IntParam
		return func(x interval.Interval) ([]interval.Interval, interval.Decoration) {
			return []interval.Interval{interval.In(n, x)}, interval.Com
		}
	},
	program.OpBesselK: func(instr program.Instruction) unaryFn {
		n := instr.IntParam
		return func(x interval.Interval) ([]interval.Interval, interval.Decoration) {
			r, d := interval.Kn(n, x)
			return []interval.Interval{r}, d
		}
	},
}

var binaryTable = map[program.Opcode]func(program.Instruction) binaryFn{
	program.OpAdd: plain2(interval.Add),
	program.OpSub: plain2(interval.Sub),
	program.OpMul: plain2(interval.Mul),
	program.OpDiv: dec2(interval.Div),
	program.OpMin: plain2(interval.Min),
	program.OpMax: plain2(interval.Max),
	program.OpMod: dec2(interval.Mod),
	program.OpGCD: dec2(interval.GCD),
	program.OpLCM: dec2(interval.LCM),
	program.OpAtan2: func(program.Instruction) binaryFn {
		return func(y, x interval.Interval) ([]interval.Interval, interval.Decoration) {
			return interval.Atan2(y, x)
		}
	},
}

// --- ternary evaluation ---

// run executes every instruction of p in order, seeding the input
// registers from in, and returns the fully populated scalar and ternary
// register files (spec §4.4 steps 1-2).
func run(p *program.Program, in Inputs) ([]interval.Set, []ternary.T, error) {
	scalars := make([]interval.Set, p.Len())
	booleans := make([]ternary.T, p.Len())

	for i, instr := range p.Instructions {
		switch instr.Op {
		case program.OpInputX:
			scalars[i] = in.X
			continue
		case program.OpInputY:
			scalars[i] = in.Y
			continue
		case program.OpInputR:
			scalars[i] = in.R
			continue
		case program.OpInputTheta:
			scalars[i] = in.Theta
			continue
		}

		if instr.Out == program.RegBoolean {
			t, err := applyBoolean(instr, scalars, booleans)
			if err != nil {
				return nil, nil, err
			}
			booleans[i] = t
			continue
		}

		operands := make([]interval.Set, len(instr.Operands))
		for j, o := range instr.Operands {
			operands[j] = scalars[o]
		}
		s, err := ApplyScalar(instr, operands)
		if err != nil {
			return nil, nil, err
		}
		scalars[i] = s
	}
	return scalars, booleans, nil
}

func applyBoolean(instr program.Instruction, scalars []interval.Set, booleans []ternary.T) (ternary.T, error) {
	switch instr.Op {
	case program.OpAnd:
		return ternary.And(booleans[instr.Operands[0]], booleans[instr.Operands[1]]), nil
	case program.OpOr:
		return ternary.Or(booleans[instr.Operands[0]], booleans[instr.Operands[1]]), nil
	case program.OpNot:
		return ternary.Not(booleans[instr.Operands[0]]), nil
	case program.OpCompareEq, program.OpCompareLt, program.OpCompareLe, program.OpCompareGt, program.OpCompareGe:
		diff := scalars[instr.Operands[0]]
		return decideCompare(instr.Op, diff), nil
	default:
		return ternary.UU, engerrors.Internal(nil, "evaluator: unknown boolean opcode "+instr.Op.String())
	}
}

// decideCompare implements spec §4.4's "decision rule for f(x,y) ⋈ 0",
// where diff is the already-evaluated set for f(x,y) (the compiler
// canonicalizes every comparison to a difference against zero).
func decideCompare(op program.Opcode, diff interval.Set) ternary.T {
	if diff.IsEmpty() {
		// f is undefined everywhere on the box: the relation can't be
		// witnessed as true anywhere, so the box contributes no solution.
		return ternary.FF
	}
	hull := diff.Hull()
	switch op {
	case program.OpCompareLt:
		if hull.Hi < 0 {
			return ternary.TT
		}
		if hull.Lo >= 0 {
			return ternary.FF
		}
		return ternary.UU
	case program.OpCompareLe:
		if hull.Hi <= 0 {
			return ternary.TT
		}
		if hull.Lo > 0 {
			return ternary.FF
		}
		return ternary.UU
	case program.OpCompareGt:
		if hull.Lo > 0 {
			return ternary.TT
		}
		if hull.Hi <= 0 {
			return ternary.FF
		}
		return ternary.UU
	case program.OpCompareGe:
		if hull.Lo >= 0 {
			return ternary.TT
		}
		if hull.Hi < 0 {
			return ternary.FF
		}
		return ternary.UU
	case program.OpCompareEq:
		if !hull.ContainsZero() {
			return ternary.FF
		}
		return ternary.UU // upgraded to TF by upgradeByIVT's corner-sign check
	default:
		return ternary.UU
	}
}

// EvalCartesian evaluates p over a Cartesian box, applying the
// intermediate-value upgrade from UU to TF on equality instructions whose
// decoration proves continuity and whose corners witness a sign change
// (spec §4.4: "solution proved by intermediate-value only if f is proved
// continuous on B via its decoration and two corners of B yield
// opposite-sign point values").
func EvalCartesian(p *program.Program, b box.Box) (ternary.T, error) {
	xSet := interval.SetOf(b.X, interval.Com)
	ySet := interval.SetOf(b.Y, interval.Com)
	scalars, booleans, err := run(p, Inputs{X: xSet, Y: ySet})
	if err != nil {
		return ternary.UU, err
	}
	return upgradeByIVT(p, b, scalars, booleans, func(x, y float64) Inputs {
		return Inputs{X: interval.SetOf(interval.Point(x), interval.Com), Y: interval.SetOf(interval.Point(y), interval.Com)}
	})
}

// EvalPolar evaluates p over the Cartesian box b by enclosing its polar
// pre-image and ternary-ORing over every branch Atan2 returns for the
// box's angular extent (spec §4.4's "Polar mode" paragraph). Atan2 already
// carries the branch-cut-aware multi-interval logic (spec §4.3), so no
// separate winding-number loop is needed: each returned branch is a sound
// enclosure of one angular strip the box could occupy.
func EvalPolar(p *program.Program, b box.Box) (ternary.T, error) {
	r2 := interval.Add(interval.Mul(b.X, b.X), interval.Mul(b.Y, b.Y))
	rHull, _ := interval.Sqrt(r2)
	branches, _ := interval.Atan2(b.Y, b.X)

	result := ternary.FF
	for _, theta := range branches {
		rSet := interval.SetOf(rHull, interval.Com)
		thetaSet := interval.SetOf(theta, interval.Com)
		_, booleans, err := run(p, Inputs{R: rSet, Theta: thetaSet})
		if err != nil {
			return ternary.UU, err
		}
		t := booleans[p.Result]
		if t == ternary.TF {
			t = ternary.TT // existence is proved; treat as a terminal Solution witness like Cartesian mode
		}
		result = ternary.Or(result, t)
		if result == ternary.TT {
			break
		}
	}
	return result, nil
}

// Eval dispatches on the program's declared mode (spec §4.2's Cartesian/
// polar descriptor).
func Eval(p *program.Program, b box.Box) (ternary.T, error) {
	if p.Mode == program.ModePolar {
		return EvalPolar(p, b)
	}
	return EvalCartesian(p, b)
}

// upgradeByIVT walks every OpCompareEq instruction that evaluated to UU and
// attempts the corner-sign argument on each; every leaf upgraded to TF is
// fed back through the already-computed boolean wiring (and-ing/or-ing is
// re-run with the upgraded leaves) to give the box's final ternary.
func upgradeByIVT(p *program.Program, b box.Box, scalars []interval.Set, booleans []ternary.T, seedAt func(x, y float64) Inputs) (ternary.T, error) {
	dirty := false
	for i, instr := range p.Instructions {
		if instr.Op != program.OpCompareEq || booleans[i] != ternary.UU {
			continue
		}
		diffReg := instr.Operands[0]
		if scalars[diffReg].Dec < interval.Dac {
			continue
		}
		if signChanges(p, b, diffReg, seedAt) {
			booleans[i] = ternary.TF
			dirty = true
		}
	}
	if !dirty {
		return resultOf(booleans[p.Result]), nil
	}
	if err := rewalkBooleans(p, scalars, booleans); err != nil {
		return ternary.UU, err
	}
	return resultOf(booleans[p.Result]), nil
}

// resultOf treats TF identically to TT at the top level: a relation that
// is true somewhere in the box and false elsewhere still proves a solution
// point exists inside the box (spec §4.5 marks such a pixel Solution).
func resultOf(t ternary.T) ternary.T {
	if t == ternary.TF {
		return ternary.TT
	}
	return t
}

// rewalkBooleans re-applies every boolean instruction after one or more
// leaves were upgraded by the IVT argument, without re-evaluating scalar
// instructions (their sets are unchanged).
func rewalkBooleans(p *program.Program, scalars []interval.Set, booleans []ternary.T) error {
	for i, instr := range p.Instructions {
		if instr.Out != program.RegBoolean {
			continue
		}
		switch instr.Op {
		case program.OpAnd:
			booleans[i] = ternary.And(booleans[instr.Operands[0]], booleans[instr.Operands[1]])
		case program.OpOr:
			booleans[i] = ternary.Or(booleans[instr.Operands[0]], booleans[instr.Operands[1]])
		case program.OpNot:
			booleans[i] = ternary.Not(booleans[instr.Operands[0]])
		}
	}
	return nil
}

// signChanges evaluates register diffReg at each of the box's four corners
// at point precision and reports whether two corners disagree in sign,
// the witness spec §4.4 demands before accepting an equality's TF via IVT.
func signChanges(p *program.Program, b box.Box, diffReg int, seedAt func(x, y float64) Inputs) bool {
	sawNeg, sawPos := false, false
	for _, c := range b.Corners() {
		scalars, _, err := run(p, seedAt(c[0], c[1]))
		if err != nil {
			continue
		}
		v := scalars[diffReg]
		if v.IsEmpty() {
			continue
		}
		h := v.Hull()
		if h.Hi < 0 || (h.Hi == 0 && h.Lo < 0) {
			sawNeg = true
		}
		if h.Lo > 0 || (h.Lo == 0 && h.Hi > 0) {
			sawPos = true
		}
		if h.Lo <= 0 && h.Hi >= 0 && h.Lo != h.Hi {
			// straddles zero even at point evaluation (shouldn't normally
			// happen for a true point box, but guards against NaN-width
			// degenerate results)
			continue
		}
	}
	return sawNeg && sawPos
}
