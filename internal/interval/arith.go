package interval

import "math"

// Add returns the outward-rounded sum x + y (spec §4.3 arithmetic class).
func Add(x, y Interval) Interval {
	if x.IsEmpty() || y.IsEmpty() {
		return Empty
	}
	return enclose(x.Lo+y.Lo, x.Hi+y.Hi)
}

// Sub returns the outward-rounded difference x - y.
func Sub(x, y Interval) Interval {
	if x.IsEmpty() || y.IsEmpty() {
		return Empty
	}
	return enclose(x.Lo-y.Hi, x.Hi-y.Lo)
}

// Neg returns -x.
func Neg(x Interval) Interval {
	if x.IsEmpty() {
		return Empty
	}
	return Interval{Lo: -x.Hi, Hi: -x.Lo}
}

// Mul returns the outward-rounded product x * y.
func Mul(x, y Interval) Interval {
	if x.IsEmpty() || y.IsEmpty() {
		return Empty
	}
	a, b, c, d := x.Lo*y.Lo, x.Lo*y.Hi, x.Hi*y.Lo, x.Hi*y.Hi
	lo := math.Min(math.Min(a, b), math.Min(c, d))
	hi := math.Max(math.Max(a, b), math.Max(c, d))
	return enclose(lo, hi)
}

// Div returns the outward-rounded quotient x / y, and the decoration ceiling
// implied by dividing by an interval that may contain zero (spec §4.3, §4.2
// restricted-domain: division is partial).
func Div(x, y Interval) (Interval, Decoration) {
	if x.IsEmpty() || y.IsEmpty() {
		return Empty, Com
	}
	if y.Lo == 0 && y.Hi == 0 {
		return Empty, Trv
	}
	if !y.ContainsZero() {
		a, b, c, d := x.Lo/y.Lo, x.Lo/y.Hi, x.Hi/y.Lo, x.Hi/y.Hi
		lo := math.Min(math.Min(a, b), math.Min(c, d))
		hi := math.Max(math.Max(a, b), math.Max(c, d))
		return enclose(lo, hi), Com
	}
	// y straddles (or touches) zero: division is unbounded on at least one
	// side. We return the sound (if loose) whole-line enclosure rather than
	// splitting into the two unbounded branches a tighter implementation
	// would track separately.
	return Whole, Trv
}

// Abs returns |x|.
func Abs(x Interval) Interval {
	if x.IsEmpty() {
		return Empty
	}
	if x.Lo >= 0 {
		return x
	}
	if x.Hi <= 0 {
		return Interval{Lo: -x.Hi, Hi: -x.Lo}
	}
	return Interval{Lo: 0, Hi: math.Max(-x.Lo, x.Hi)}
}

// Min returns the interval enclosure of min(x, y) taken pointwise.
func Min(x, y Interval) Interval {
	if x.IsEmpty() || y.IsEmpty() {
		return Empty
	}
	return Interval{Lo: math.Min(x.Lo, y.Lo), Hi: math.Min(x.Hi, y.Hi)}
}

// Max returns the interval enclosure of max(x, y) taken pointwise.
func Max(x, y Interval) Interval {
	if x.IsEmpty() || y.IsEmpty() {
		return Empty
	}
	return Interval{Lo: math.Max(x.Lo, y.Lo), Hi: math.Max(x.Hi, y.Hi)}
}

// RankedMinMax returns the k-th smallest and k-th largest bound enclosures
// across xs, for the ranked_min/ranked_max primitives of spec §4.3.
func RankedMinMax(xs []Interval, k int) (Interval, Interval) {
	los := make([]float64, 0, len(xs))
	his := make([]float64, 0, len(xs))
	for _, x := range xs {
		if x.IsEmpty() {
			continue
		}
		los = append(los, x.Lo)
		his = append(his, x.Hi)
	}
	sortFloats(los)
	sortFloats(his)
	clamp := func(i, n int) int {
		if i < 0 {
			return 0
		}
		if i >= n {
			return n - 1
		}
		return i
	}
	if len(los) == 0 {
		return Empty, Empty
	}
	i := clamp(k-1, len(los))
	j := clamp(len(los)-k, len(los))
	return Interval{Lo: los[i], Hi: his[i]}, Interval{Lo: los[j], Hi: his[j]}
}

func sortFloats(xs []float64) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

// Floor returns the outward-rounded enclosure of floor(x).
func Floor(x Interval) Interval {
	if x.IsEmpty() {
		return Empty
	}
	return Interval{Lo: math.Floor(x.Lo), Hi: math.Floor(x.Hi)}
}

// Ceil returns the outward-rounded enclosure of ceil(x).
func Ceil(x Interval) Interval {
	if x.IsEmpty() {
		return Empty
	}
	return Interval{Lo: math.Ceil(x.Lo), Hi: math.Ceil(x.Hi)}
}

// Sign returns the enclosure of sign(x) in {-1, 0, 1}.
func Sign(x Interval) Interval {
	if x.IsEmpty() {
		return Empty
	}
	lo, hi := 0.0, 0.0
	switch {
	case x.Hi < 0:
		lo, hi = -1, -1
	case x.Lo > 0:
		lo, hi = 1, 1
	default:
		lo = -1
		if x.Lo >= 0 {
			lo = 0
		}
		hi = 1
		if x.Hi <= 0 {
			hi = 0
		}
	}
	return Interval{Lo: lo, Hi: hi}
}

// Mod returns the enclosure of x mod y, result convention [0, |y|) (spec
// §4.3). Deliberately conservative rather than tracking the branch cut at
// y == 0 tightly: always sound, never sharper than [0, sup|y|)] unless y is
// a point away from zero, in which case the exact single-interval result is
// computed via the floor identity x - y*floor(x/y).
func Mod(x, y Interval) (Interval, Decoration) {
	if x.IsEmpty() || y.IsEmpty() {
		return Empty, Com
	}
	if y.Lo == 0 && y.Hi == 0 {
		return Empty, Trv
	}
	if y.Lo == y.Hi {
		q, dec := Div(x, y)
		_ = dec
		qf := Floor(q)
		r := Sub(x, Mul(y, qf))
		absY := Abs(y)
		r = enclose(math.Max(0, r.Lo), math.Min(absY.Hi, r.Hi))
		if r.Lo > r.Hi {
			r = Interval{Lo: 0, Hi: absY.Hi}
		}
		dec2 := Com
		if y.ContainsZero() {
			dec2 = Trv
		}
		return r, dec2
	}
	absY := Abs(y)
	dec := Def
	if y.ContainsZero() {
		dec = Trv
	}
	return Interval{Lo: 0, Hi: absY.Hi}, dec
}

// GCD returns the enclosure of gcd(x, y) for exact-integer point intervals;
// any other input yields Whole with Trv (spec §4.3, §9's open question (b)
// resolved here as: per-box Trv rather than a static DomainError, matching
// the rest of the primitive library's policy of degrading to UU rather than
// aborting).
func GCD(x, y Interval) (Interval, Decoration) {
	if x.Lo != x.Hi || y.Lo != y.Hi || x.Lo != math.Trunc(x.Lo) || y.Lo != math.Trunc(y.Lo) {
		return Whole, Trv
	}
	a, b := int64(math.Abs(x.Lo)), int64(math.Abs(y.Lo))
	for b != 0 {
		a, b = b, a%b
	}
	return Point(float64(a)), Com
}

// LCM returns the enclosure of lcm(x, y) under the same exactness
// restriction as GCD.
func LCM(x, y Interval) (Interval, Decoration) {
	g, dec := GCD(x, y)
	if dec == Trv || g.Lo == 0 {
		return Whole, Trv
	}
	l := math.Abs(x.Lo*y.Lo) / g.Lo
	return Point(l), Com
}
