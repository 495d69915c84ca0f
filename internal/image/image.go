// Package image implements the three-state raster buffer of spec §3/§6:
// Image3, its atomic pixel-state transitions (spec §5's invariant I3), and
// PNG encoding (Solution→black, Empty→white, Undecided→blue).
package image

import (
	"bytes"
	goimage "image"
	"image/color"
	"image/png"
	"sync/atomic"
)

// State is one pixel's classification.
type State uint32

const (
	Undecided State = iota
	Solution
	Empty
	Processing // transient, UI-only; never persisted (spec §6)
)

// cell tracks one pixel's terminal state plus the bookkeeping needed to
// decide when every subpixel has been accounted for. Spec §3 describes the
// per-pixel undecided area as "a bitmap... which subpixel quadrants remain
// undecided"; a fixed-width bitmap only works if recursion stops at one
// fixed depth, but spec §4.5's subdivision runs to a configurable L_max
// (~15 levels, i.e. up to 4^15 subpixels), so this implementation tracks
// the same information as a live outstanding-work counter instead: pending
// starts at 1 (the whole pixel is one work item) and a UU split replaces
// one pending unit with four (net +3); an FF leaf removes one; a UU leaf
// stuck at L_max removes one but sets permanentlyUndecided. The pixel
// reaches Empty only if pending hits zero with no permanently-undecided
// leaf ever recorded; otherwise it stays Undecided forever once its work is
// exhausted. This reproduces the same externally observable state machine
// (Undecided → {Solution, Empty}, sticky per I3) without a depth-bounded
// bitmap.
type cell struct {
	state                uint32
	pending              int32
	permanentlyUndecided uint32
}

// Image3 is a W×H buffer of atomically updated three-state pixels, the
// only shared mutable resource on the search's hot path (spec §5).
type Image3 struct {
	W, H  int
	cells []cell
}

// New allocates a W×H buffer with every pixel Undecided and one
// outstanding work unit (its own level-0 box).
func New(w, h int) *Image3 {
	cells := make([]cell, w*h)
	for i := range cells {
		cells[i] = cell{state: uint32(Undecided), pending: 1}
	}
	return &Image3{W: w, H: h, cells: cells}
}

func (img *Image3) index(col, row int) int { return row*img.W + col }

// State returns a pixel's current classification (sequentially consistent
// with any transition that precedes this call in program order, spec §5).
func (img *Image3) State(col, row int) State {
	return State(atomic.LoadUint32(&img.cells[img.index(col, row)].state))
}

// MarkSolution transitions a pixel to Solution. A terminal state never
// regresses (spec §3's I3): once Solution or Empty, further calls are
// no-ops.
func (img *Image3) MarkSolution(col, row int) {
	c := &img.cells[img.index(col, row)]
	for {
		old := atomic.LoadUint32(&c.state)
		if State(old) == Solution || State(old) == Empty {
			return
		}
		if atomic.CompareAndSwapUint32(&c.state, old, uint32(Solution)) {
			return
		}
	}
}

// ResolveLeaf records that one work item covering part of this pixel
// reached a terminal per-item verdict (TT or FF; spec §4.5 steps 3-4).
// When every outstanding unit has been accounted for and none was left
// permanently undecided, the pixel transitions to Empty — unless MarkSolution
// already made it Solution, in which case this is a no-op.
func (img *Image3) ResolveLeaf(col, row int) {
	img.finishUnits(col, row, 1)
}

// Split records that one work item split into four children (spec §4.5
// step 5): it nets +3 outstanding units (remove the parent, add 4 kids).
func (img *Image3) Split(col, row int) {
	c := &img.cells[img.index(col, row)]
	atomic.AddInt32(&c.pending, 3)
}

// ResolveUndecidedLeaf records that one work item hit L_max still UU and
// will never be refined further: it is permanently undecided, and the
// pixel can never become Empty.
func (img *Image3) ResolveUndecidedLeaf(col, row int) {
	c := &img.cells[img.index(col, row)]
	atomic.StoreUint32(&c.permanentlyUndecided, 1)
	img.finishUnits(col, row, 1)
}

func (img *Image3) finishUnits(col, row int, n int32) {
	c := &img.cells[img.index(col, row)]
	remaining := atomic.AddInt32(&c.pending, -n)
	if remaining > 0 {
		return
	}
	if atomic.LoadUint32(&c.permanentlyUndecided) == 1 {
		return // some area could never be decided; stays Undecided forever
	}
	for {
		old := atomic.LoadUint32(&c.state)
		if State(old) == Solution || State(old) == Empty {
			return
		}
		if atomic.CompareAndSwapUint32(&c.state, old, uint32(Empty)) {
			return
		}
	}
}

// Counts tallies pixels by terminal state, for Session.step()'s
// Progress{done_pixels, total_pixels} (spec §6).
func (img *Image3) Counts() (solution, empty, undecided int) {
	for col := 0; col < img.W; col++ {
		for row := 0; row < img.H; row++ {
			switch img.State(col, row) {
			case Solution:
				solution++
			case Empty:
				empty++
			default:
				undecided++
			}
		}
	}
	return
}

var (
	solutionColor  = color.RGBA{0, 0, 0, 255}
	emptyColor     = color.RGBA{255, 255, 255, 255}
	undecidedColor = color.RGBA{0, 0, 255, 255}
)

// EncodePNG renders the buffer to PNG bytes with the canonical three-color
// palette (spec §6's Image3 encoding). Processing is rendered as
// Undecided since it is a transient, non-persisted state.
func (img *Image3) EncodePNG() ([]byte, error) {
	out := goimage.NewRGBA(goimage.Rect(0, 0, img.W, img.H))
	for col := 0; col < img.W; col++ {
		for row := 0; row < img.H; row++ {
			var c color.RGBA
			switch img.State(col, row) {
			case Solution:
				c = solutionColor
			case Empty:
				c = emptyColor
			default:
				c = undecidedColor
			}
			out.SetRGBA(col, row, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
