package compiler

import (
	"strings"
	"testing"

	"graphest/internal/program"
)

func assertCompiles(t *testing.T, source string) *program.Program {
	t.Helper()
	p, err := Compile(source)
	if err != nil {
		t.Fatalf("Compile(%q): %v", source, err)
	}
	return p
}

func assertCompileError(t *testing.T, source string) {
	t.Helper()
	if _, err := Compile(source); err == nil {
		t.Fatalf("Compile(%q): expected an error", source)
	}
}

func TestCompileValidRelations(t *testing.T) {
	tests := []string{
		"y = sin(x)",
		"x^2 + y^2 = 1",
		"y < x + 1",
		"floor(x)^2 + floor(y)^2 = 25",
		"r = 1",
		"y = x || y = x + 0.0001",
		"(x^2+y^2) = 1 || y = -cos(x)",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			p := assertCompiles(t, src)
			if p.Len() == 0 {
				t.Errorf("expected at least one instruction")
			}
			if p.Instructions[p.Result].Out != program.RegBoolean {
				t.Errorf("result register must be boolean")
			}
		})
	}
}

func TestCompileRejectsMixedCartesianPolar(t *testing.T) {
	assertCompileError(t, "x = r")
}

func TestCompileRejectsBareScalar(t *testing.T) {
	assertCompileError(t, "x + y")
}

func TestCompileInfersMode(t *testing.T) {
	cart := assertCompiles(t, "y = x")
	if cart.Mode != program.ModeCartesian {
		t.Errorf("expected cartesian mode, got %v", cart.Mode)
	}
	polar := assertCompiles(t, "r = theta")
	if polar.Mode != program.ModePolar {
		t.Errorf("expected polar mode, got %v", polar.Mode)
	}
}

func TestCompileFoldsConstants(t *testing.T) {
	// "y = 1 + 1" should fold the right-hand side to a single literal
	// rather than emitting a live OpAdd at runtime; the only OpAdd left is
	// the comparison's own difference y + (-2).
	p := assertCompiles(t, "y = 1 + 1")
	adds := 0
	for _, instr := range p.Instructions {
		if instr.Op == program.OpAdd {
			adds++
		}
	}
	if adds != 1 {
		t.Errorf("expected constant folding to leave only the comparison's OpAdd, found %d:\n%s", adds, p.Disassemble())
	}
}

func TestCompileCanonicalizesIntegerExponent(t *testing.T) {
	p := assertCompiles(t, "y = x^3")
	found := false
	for _, instr := range p.Instructions {
		if instr.Op == program.OpPowInt && instr.IntParam == 3 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected x^3 to canonicalize to OpPowInt(3):\n%s", p.Disassemble())
	}
}

func TestCompileCanonicalizesRationalExponent(t *testing.T) {
	p := assertCompiles(t, "y = x^(1/3)")
	found := false
	for _, instr := range p.Instructions {
		if instr.Op == program.OpPowRational && instr.IntParam == 1 && instr.IntParam2 == 3 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected x^(1/3) to canonicalize to OpPowRational(1,3):\n%s", p.Disassemble())
	}
}

func TestCompileRejectsNonExactUpperGammaShapeParameter(t *testing.T) {
	assertCompileError(t, "y = gamma(x, x)")
}

func TestCompileCanonicalizesComparisonToDiffAgainstZero(t *testing.T) {
	p := assertCompiles(t, "y = x + 1")
	text := p.Disassemble()
	if !strings.Contains(text, "cmp_eq") {
		t.Errorf("expected a cmp_eq instruction:\n%s", text)
	}
}
