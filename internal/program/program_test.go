package program

import (
	"strings"
	"testing"

	"graphest/internal/interval"
)

func TestBuilderEmitDeduplicatesIdenticalInstructions(t *testing.T) {
	b := NewBuilder()
	x := b.Emit(Instruction{Op: OpInputX, Out: RegScalar})
	y := b.Emit(Instruction{Op: OpInputY, Out: RegScalar})

	sum1 := b.Emit(Instruction{Op: OpAdd, Operands: []int{x, y}, Out: RegScalar})
	sum2 := b.Emit(Instruction{Op: OpAdd, Operands: []int{x, y}, Out: RegScalar})
	if sum1 != sum2 {
		t.Fatalf("expected CSE to reuse register, got %d and %d", sum1, sum2)
	}

	diffReg := b.Emit(Instruction{Op: OpSub, Operands: []int{x, y}, Out: RegScalar})
	if diffReg == sum1 {
		t.Fatalf("different operations must not be merged")
	}
}

func TestBuilderEmitDistinguishesLiteralsByValue(t *testing.T) {
	b := NewBuilder()
	one := b.Emit(Instruction{Op: OpLiteral, Out: RegScalar, Literal: interval.SetOf(interval.Interval{Lo: 1, Hi: 1}, interval.Com)})
	two := b.Emit(Instruction{Op: OpLiteral, Out: RegScalar, Literal: interval.SetOf(interval.Interval{Lo: 2, Hi: 2}, interval.Com)})
	if one == two {
		t.Fatalf("distinct literal constants must not be merged")
	}
	oneAgain := b.Emit(Instruction{Op: OpLiteral, Out: RegScalar, Literal: interval.SetOf(interval.Interval{Lo: 1, Hi: 1}, interval.Com)})
	if one != oneAgain {
		t.Fatalf("equal literal constants should be merged")
	}
}

func TestBuildRejectsNonBooleanResult(t *testing.T) {
	b := NewBuilder()
	x := b.Emit(Instruction{Op: OpInputX, Out: RegScalar})
	if _, err := b.Build(x, ModeCartesian); err == nil {
		t.Fatalf("expected Build to reject a scalar result register")
	}
}

func TestBuildRejectsOutOfRangeResult(t *testing.T) {
	b := NewBuilder()
	b.Emit(Instruction{Op: OpInputX, Out: RegScalar})
	if _, err := b.Build(5, ModeCartesian); err == nil {
		t.Fatalf("expected Build to reject an out-of-range result index")
	}
}

func TestDisassembleIncludesModeAndOperations(t *testing.T) {
	b := NewBuilder()
	x := b.Emit(Instruction{Op: OpInputX, Out: RegScalar})
	cmp := b.Emit(Instruction{Op: OpCompareEq, Operands: []int{x}, Out: RegBoolean})
	p, err := b.Build(cmp, ModeCartesian)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	text := p.Disassemble()
	if !strings.Contains(text, "mode=cartesian") {
		t.Fatalf("disassembly missing mode header: %s", text)
	}
	if !strings.Contains(text, "cmp_eq") {
		t.Fatalf("disassembly missing cmp_eq instruction: %s", text)
	}
}
