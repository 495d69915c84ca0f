// Package box implements the pixel/subpixel rectangle the evaluator and
// search operate over (spec §3 "Pixel box", §4.5 "Subdivision search"):
// the axis-aligned product of two machine intervals with directed-rounding
// bisection into quadrants.
package box

import "graphest/internal/interval"

// Box is one search work item's geometry: a Cartesian rectangle in world
// coordinates at a given refinement level (spec §3's Pixel box, §4.5's
// "Level semantics": level 0 is one subpixel per image pixel, each level
// increases linear resolution by 2).
type Box struct {
	X, Y  interval.Interval
	Level int
}

// Bisect splits b into its four quadrants, bisecting each axis at its
// midpoint with outward-rounded bounds so the children jointly cover the
// parent (spec §4.5: "split it into four children (bisect each axis at the
// midpoint, computed with directed rounding so children cover the
// parent)"). Order is (bottom-left, bottom-right, top-left, top-right).
func (b Box) Bisect() [4]Box {
	xl, xr := b.X.Bisect()
	yl, yr := b.Y.Bisect()
	next := b.Level + 1
	return [4]Box{
		{X: xl, Y: yl, Level: next},
		{X: xr, Y: yl, Level: next},
		{X: xl, Y: yr, Level: next},
		{X: xr, Y: yr, Level: next},
	}
}

// Corners returns the box's four corner points, used by the evaluator's
// intermediate-value argument (spec §4.4: "two corners of B yield
// opposite-sign point values").
func (b Box) Corners() [4][2]float64 {
	return [4][2]float64{
		{b.X.Lo, b.Y.Lo},
		{b.X.Hi, b.Y.Lo},
		{b.X.Lo, b.Y.Hi},
		{b.X.Hi, b.Y.Hi},
	}
}

// Grid maps an image's pixel coordinate system onto world coordinates
// (spec §6's Config.bounds/pixels).
type Grid struct {
	X0, X1, Y0, Y1 float64
	W, H           int
}

// PixelBox returns the level-0 box for pixel (col, row), honoring the
// half-open meshing convention of spec §4.5: a box owns its lower edges
// and not its upper edges, except at the right/top image boundary where it
// owns both. Since Box stores a closed mathematical interval (arithmetic
// needs the true closed rectangle to stay sound), the half-open rule is
// bookkeeping the search applies when deciding which pixel a boundary
// point belongs to, not a change to the interval's endpoints themselves.
func (g Grid) PixelBox(col, row int) Box {
	dx := (g.X1 - g.X0) / float64(g.W)
	dy := (g.Y1 - g.Y0) / float64(g.H)
	return Box{
		X:     interval.Interval{Lo: g.X0 + float64(col)*dx, Hi: g.X0 + float64(col+1)*dx},
		Y:     interval.Interval{Lo: g.Y0 + float64(row)*dy, Hi: g.Y0 + float64(row+1)*dy},
		Level: 0,
	}
}

// OwnsUpperX reports whether column col is the last column of the grid,
// i.e. its box owns its upper X edge as well as its lower one.
func (g Grid) OwnsUpperX(col int) bool { return col == g.W-1 }

// OwnsUpperY reports whether row is the last row of the grid.
func (g Grid) OwnsUpperY(row int) bool { return row == g.H-1 }
