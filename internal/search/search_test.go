package search

import (
	"context"
	"testing"
	"time"

	"graphest/internal/box"
	"graphest/internal/compiler"
	"graphest/internal/image"
)

func TestSearcherDrainsASmallGridToCompletion(t *testing.T) {
	prog, err := compiler.Compile("y = x")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	grid := box.Grid{X0: -2, X1: 2, Y0: -2, Y1: 2, W: 4, H: 4}
	img := image.New(grid.W, grid.H)
	s := New(prog, grid, img, Config{MaxLevel: 6, Workers: 2})

	ctx := context.Background()
	for i := 0; i < 1000 && !s.Drained(); i++ {
		if _, err := s.Step(ctx, 16); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if !s.Drained() {
		t.Fatalf("search did not drain within the iteration budget")
	}

	sol, empty, undecided := img.Counts()
	if sol+empty+undecided != grid.W*grid.H {
		t.Fatalf("counts %d/%d/%d do not sum to %d pixels", sol, empty, undecided, grid.W*grid.H)
	}
	if sol == 0 {
		t.Errorf("expected at least one Solution pixel for the line y=x crossing this grid")
	}
}

func TestSearcherRespectsDeadline(t *testing.T) {
	prog, err := compiler.Compile("y = sin(1/x)")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	// a window straddling x=0 forces maximal subdivision for this relation,
	// so a near-past deadline must stop the worker loop promptly rather
	// than draining the queue.
	grid := box.Grid{X0: -1, X1: 1, Y0: -1, Y1: 1, W: 2, H: 2}
	img := image.New(grid.W, grid.H)
	s := New(prog, grid, img, Config{MaxLevel: 15, Workers: 2, Deadline: time.Now().Add(-time.Second)})

	processed, err := s.Step(context.Background(), 1_000_000)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if processed > 0 {
		t.Errorf("processed %d items past an already-expired deadline", processed)
	}
}

func TestSearcherStepHonorsContextCancellation(t *testing.T) {
	prog, err := compiler.Compile("y = sin(1/x)")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	grid := box.Grid{X0: -1, X1: 1, Y0: -1, Y1: 1, W: 2, H: 2}
	img := image.New(grid.W, grid.H)
	s := New(prog, grid, img, Config{MaxLevel: 15, Workers: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Step(ctx, 1_000_000); err != nil {
		t.Fatalf("Step with a pre-cancelled context returned an error instead of nil: %v", err)
	}
}
