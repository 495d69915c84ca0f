package session

import (
	"testing"
)

func TestPlotDrivesASessionToCompletion(t *testing.T) {
	prog, err := Compile("y = x")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	cfg := Config{
		Bounds:   Bounds{X0: -2, X1: 2, Y0: -2, Y1: 2},
		Width:    4,
		Height:   4,
		MaxLevel: 6,
		Workers:  2,
	}
	sess := Plot(prog, cfg)

	var last Progress
	for i := 0; i < 1000 && !sess.Done(); i++ {
		last, err = sess.Step(16)
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if !sess.Done() {
		t.Fatalf("session did not complete within the iteration budget")
	}
	if last.DonePixels != last.TotalPixels {
		t.Errorf("final progress %d/%d, want done == total once drained", last.DonePixels, last.TotalPixels)
	}
	if last.TotalPixels != cfg.Width*cfg.Height {
		t.Errorf("TotalPixels = %d, want %d", last.TotalPixels, cfg.Width*cfg.Height)
	}
}

func TestCompileRejectsInvalidRelation(t *testing.T) {
	if _, err := Compile("x +"); err == nil {
		t.Fatalf("expected a parse error for malformed input")
	}
}

func TestSessionCancelStopsFurtherProgress(t *testing.T) {
	prog, err := Compile("y = sin(1/x)")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	cfg := Config{
		Bounds:   Bounds{X0: -1, X1: 1, Y0: -1, Y1: 1},
		Width:    2,
		Height:   2,
		MaxLevel: 15,
		Workers:  2,
	}
	sess := Plot(prog, cfg)
	sess.Cancel()

	progress, err := sess.Step(1_000_000)
	if err != nil {
		t.Fatalf("Step after Cancel returned an error instead of nil: %v", err)
	}
	if progress.DonePixels != 0 {
		t.Errorf("Step after Cancel decided %d pixels, want 0", progress.DonePixels)
	}
	if progress.DonePixels == progress.TotalPixels {
		t.Skip("relation happened to fully resolve before cancellation took effect")
	}
}

func TestSessionImageReflectsProgressBetweenSteps(t *testing.T) {
	prog, err := Compile("y = x")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	cfg := Config{
		Bounds:   Bounds{X0: -2, X1: 2, Y0: -2, Y1: 2},
		Width:    4,
		Height:   4,
		MaxLevel: 6,
		Workers:  1,
	}
	sess := Plot(prog, cfg)
	for i := 0; i < 1000 && !sess.Done(); i++ {
		if _, err := sess.Step(16); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	png, err := sess.Image().EncodePNG()
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if len(png) == 0 {
		t.Errorf("expected non-empty PNG output")
	}
}
