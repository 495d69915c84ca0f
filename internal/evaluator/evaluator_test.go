package evaluator

import (
	"testing"

	"graphest/internal/box"
	"graphest/internal/interval"
	"graphest/internal/program"
	"graphest/internal/ternary"
)

// buildCompareX builds the trivial one-instruction-deep program x ⋈ 0 using
// op directly on the x input register (standing in for the compiler's
// diff = a + (-b) canonicalization, spec §4.4).
func buildCompareX(t *testing.T, op program.Opcode) *program.Program {
	t.Helper()
	b := program.NewBuilder()
	x := b.Emit(program.Instruction{Op: program.OpInputX, Out: program.RegScalar})
	cmp := b.Emit(program.Instruction{Op: op, Operands: []int{x}, Out: program.RegBoolean})
	p, err := b.Build(cmp, program.ModeCartesian)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return p
}

func TestEvalCartesianDecidesStrictInequality(t *testing.T) {
	p := buildCompareX(t, program.OpCompareLt)

	cases := []struct {
		name string
		x    interval.Interval
		want ternary.T
	}{
		{"entirely negative", interval.Interval{Lo: -2, Hi: -1}, ternary.TT},
		{"entirely non-negative", interval.Interval{Lo: 1, Hi: 2}, ternary.FF},
		{"straddles zero", interval.Interval{Lo: -1, Hi: 1}, ternary.UU},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := box.Box{X: c.x, Y: interval.Interval{Lo: 0, Hi: 0}}
			got, err := EvalCartesian(p, b)
			if err != nil {
				t.Fatalf("EvalCartesian: %v", err)
			}
			if got != c.want {
				t.Errorf("got %v, want %v", got, c.want)
			}
		})
	}
}

func TestEvalCartesianUpgradesEqualityByIVT(t *testing.T) {
	p := buildCompareX(t, program.OpCompareEq)

	// x ranges over [-1, 1]: the hull contains zero, so a naive equality
	// check is UU, but the box's corners disagree in sign (x=-1 at one
	// corner, x=+1 at another) with Com decoration, so the IVT argument
	// proves a solution exists and the result is upgraded to TT.
	b := box.Box{X: interval.Interval{Lo: -1, Hi: 1}, Y: interval.Interval{Lo: 0, Hi: 0}}
	got, err := EvalCartesian(p, b)
	if err != nil {
		t.Fatalf("EvalCartesian: %v", err)
	}
	if got != ternary.TT {
		t.Errorf("got %v, want TT via IVT upgrade", got)
	}
}

func TestEvalCartesianEqualityFalseWhenHullMissesZero(t *testing.T) {
	p := buildCompareX(t, program.OpCompareEq)
	b := box.Box{X: interval.Interval{Lo: 2, Hi: 3}, Y: interval.Interval{Lo: 0, Hi: 0}}
	got, err := EvalCartesian(p, b)
	if err != nil {
		t.Fatalf("EvalCartesian: %v", err)
	}
	if got != ternary.FF {
		t.Errorf("got %v, want FF", got)
	}
}

func TestApplyScalarDispatchesArithmetic(t *testing.T) {
	lhs := interval.SetOf(interval.Interval{Lo: 2, Hi: 3}, interval.Com)
	rhs := interval.SetOf(interval.Interval{Lo: 1, Hi: 1}, interval.Com)
	instr := program.Instruction{Op: program.OpAdd}
	got, err := ApplyScalar(instr, []interval.Set{lhs, rhs})
	if err != nil {
		t.Fatalf("ApplyScalar: %v", err)
	}
	hull := got.Hull()
	if hull.Lo != 3 || hull.Hi != 4 {
		t.Errorf("2..3 + 1 = %v, want [3,4]", hull)
	}
}

func TestEvalPolarOrsAcrossBranches(t *testing.T) {
	// r = 1 over a box that straddles the origin in both axes: regardless
	// of which angular branch Atan2 returns, r's own range always excludes
	// any r-hull that can't reach 1, so this just exercises that EvalPolar
	// dispatches through every returned branch without erroring.
	b := program.NewBuilder()
	r := b.Emit(program.Instruction{Op: program.OpInputR, Out: program.RegScalar})
	one := b.Emit(program.Instruction{Op: program.OpLiteral, Out: program.RegScalar, Literal: interval.SetOf(interval.Interval{Lo: 1, Hi: 1}, interval.Com)})
	negOne := b.Emit(program.Instruction{Op: program.OpNeg, Operands: []int{one}, Out: program.RegScalar})
	diff := b.Emit(program.Instruction{Op: program.OpAdd, Operands: []int{r, negOne}, Out: program.RegScalar})
	cmp := b.Emit(program.Instruction{Op: program.OpCompareEq, Operands: []int{diff}, Out: program.RegBoolean})
	p, err := b.Build(cmp, program.ModePolar)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	bx := box.Box{X: interval.Interval{Lo: -2, Hi: 2}, Y: interval.Interval{Lo: -2, Hi: 2}}
	if _, err := Eval(p, bx); err != nil {
		t.Fatalf("Eval: %v", err)
	}
}
