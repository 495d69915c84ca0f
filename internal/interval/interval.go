// Package interval implements the outward-rounded interval and interval-set
// arithmetic the evaluator (spec §4.4) rests on: §3's Interval, Interval set
// and Decoration data model, plus the primitive library of §4.3.
//
// Go has no portable way to flip the FPU rounding mode, so outward rounding
// is obtained the way software interval libraries without hardware rounding
// control do it: compute in round-to-nearest, then nudge the lower bound
// down and the upper bound up by one ULP with math.Nextafter. That keeps
// every computed interval a superset of the true image at the cost of one
// extra ULP of width per operation — soundness is preserved, tightness is
// not claimed to the last bit.
package interval

import "math"

// Interval is a closed, outward-rounded subset of the extended reals (spec
// §3, I1). Lo may be -Inf, Hi may be +Inf. Empty is the distinguished empty
// interval.
type Interval struct {
	Lo, Hi float64
}

// Empty is the distinguished empty interval (spec §3).
var Empty = Interval{Lo: math.NaN(), Hi: math.NaN()}

// Whole is the enclosure of the entire real line, the sound fallback result
// for primitives that cannot bound their output any tighter.
var Whole = Interval{Lo: math.Inf(-1), Hi: math.Inf(1)}

// Point returns the degenerate interval [x, x].
func Point(x float64) Interval { return Interval{Lo: x, Hi: x} }

// IsEmpty reports whether i is the empty interval.
func (i Interval) IsEmpty() bool { return math.IsNaN(i.Lo) || math.IsNaN(i.Hi) }

// Contains reports whether x lies within i.
func (i Interval) Contains(x float64) bool {
	if i.IsEmpty() {
		return false
	}
	return i.Lo <= x && x <= i.Hi
}

// ContainsZero reports whether 0 lies within i.
func (i Interval) ContainsZero() bool { return i.Contains(0) }

// StrictlyContainsZero reports whether 0 lies in the interior of i.
func (i Interval) StrictlyContainsZero() bool {
	return !i.IsEmpty() && i.Lo < 0 && i.Hi > 0
}

// Overlaps reports whether i and j share at least one point.
func (i Interval) Overlaps(j Interval) bool {
	if i.IsEmpty() || j.IsEmpty() {
		return false
	}
	return i.Lo <= j.Hi && j.Lo <= i.Hi
}

// Hull returns the smallest interval containing both i and j (treats an
// empty operand as the identity).
func Hull(i, j Interval) Interval {
	if i.IsEmpty() {
		return j
	}
	if j.IsEmpty() {
		return i
	}
	return Interval{Lo: math.Min(i.Lo, j.Lo), Hi: math.Max(i.Hi, j.Hi)}
}

// Width returns Hi - Lo (+Inf for an unbounded interval), or 0 for the
// empty interval.
func (i Interval) Width() float64 {
	if i.IsEmpty() {
		return 0
	}
	return i.Hi - i.Lo
}

// Mid returns the interval's midpoint, clamped to finite representable
// values when one endpoint is infinite.
func (i Interval) Mid() float64 {
	if math.IsInf(i.Lo, -1) && math.IsInf(i.Hi, 1) {
		return 0
	}
	if math.IsInf(i.Lo, -1) {
		return -math.MaxFloat64
	}
	if math.IsInf(i.Hi, 1) {
		return math.MaxFloat64
	}
	return i.Lo + (i.Hi-i.Lo)/2
}

// roundDown returns the next representable value at or below x: the
// outward-rounding step for a lower bound.
func roundDown(x float64) float64 {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return x
	}
	return math.Nextafter(x, math.Inf(-1))
}

// roundUp returns the next representable value at or above x: the
// outward-rounding step for an upper bound.
func roundUp(x float64) float64 {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return x
	}
	return math.Nextafter(x, math.Inf(1))
}

// enclose builds the outward-rounded interval [lo, hi], nudging each bound
// away from the center by one ULP.
func enclose(lo, hi float64) Interval {
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return Empty
	}
	return Interval{Lo: roundDown(lo), Hi: roundUp(hi)}
}

// Bisect splits i at its midpoint into two closed halves that together
// cover i, per spec §4.5's directed-rounding requirement that children
// cover the parent. The shared boundary point belongs to both halves;
// callers needing the half-open meshing convention of §4.5 apply it
// themselves when deciding ownership.
func (i Interval) Bisect() (left, right Interval) {
	m := i.Mid()
	return Interval{Lo: i.Lo, Hi: m}, Interval{Lo: m, Hi: i.Hi}
}
