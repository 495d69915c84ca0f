package box

import (
	"testing"

	"graphest/internal/interval"
)

func TestBisectCoversParent(t *testing.T) {
	b := Box{X: interval.Interval{Lo: -1, Hi: 1}, Y: interval.Interval{Lo: -2, Hi: 2}, Level: 3}
	children := b.Bisect()

	if len(children) != 4 {
		t.Fatalf("expected 4 children, got %d", len(children))
	}
	for _, c := range children {
		if c.Level != b.Level+1 {
			t.Errorf("child level = %d, want %d", c.Level, b.Level+1)
		}
		if c.X.Lo < b.X.Lo || c.X.Hi > b.X.Hi {
			t.Errorf("child X %v escapes parent %v", c.X, b.X)
		}
		if c.Y.Lo < b.Y.Lo || c.Y.Hi > b.Y.Hi {
			t.Errorf("child Y %v escapes parent %v", c.Y, b.Y)
		}
	}

	// every parent corner must be a corner of at least one child (the
	// quadrants jointly cover the parent with no gap).
	for _, corner := range b.Corners() {
		found := false
		for _, c := range children {
			for _, cc := range c.Corners() {
				if cc[0] == corner[0] && cc[1] == corner[1] {
					found = true
				}
			}
		}
		if !found {
			t.Errorf("parent corner %v not reproduced by any child", corner)
		}
	}
}

func TestGridPixelBoxTilesTheWindow(t *testing.T) {
	g := Grid{X0: 0, X1: 10, Y0: 0, Y1: 10, W: 10, H: 10}
	b := g.PixelBox(3, 7)
	if b.X.Lo != 3 || b.X.Hi != 4 {
		t.Errorf("pixel box X = %v, want [3,4]", b.X)
	}
	if b.Y.Lo != 7 || b.Y.Hi != 8 {
		t.Errorf("pixel box Y = %v, want [7,8]", b.Y)
	}
	if b.Level != 0 {
		t.Errorf("pixel box level = %d, want 0", b.Level)
	}
}

func TestGridOwnsUpperEdgeOnlyAtBoundary(t *testing.T) {
	g := Grid{X0: 0, X1: 1, Y0: 0, Y1: 1, W: 4, H: 4}
	if g.OwnsUpperX(0) || g.OwnsUpperX(2) {
		t.Errorf("interior columns must not own their upper edge")
	}
	if !g.OwnsUpperX(3) {
		t.Errorf("last column must own its upper edge")
	}
	if !g.OwnsUpperY(3) {
		t.Errorf("last row must own its upper edge")
	}
}
