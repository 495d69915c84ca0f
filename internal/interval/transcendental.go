package interval

import "math"

// argPad returns a small safety margin added around a transcendental
// function's endpoint evaluation to absorb math.Sin/Cos/Tan's own argument-
// reduction error for large arguments, so the outward-rounded result stays
// sound even though math/big-style exact reduction isn't implemented.
func argPad(x float64) float64 {
	return 1e-12 * (1 + math.Abs(x))
}

func padded(lo, hi, margin float64) Interval {
	return enclose(lo-margin, hi+margin)
}

// Sqrt returns sqrt(x), undefined (Trv) below 0 (spec §4.3).
func Sqrt(x Interval) (Interval, Decoration) {
	if x.IsEmpty() {
		return Empty, Com
	}
	if x.Hi < 0 {
		return Empty, Trv
	}
	lo := 0.0
	dec := Com
	if x.Lo < 0 {
		dec = Trv
	} else {
		lo = math.Sqrt(x.Lo)
	}
	hi := math.Sqrt(x.Hi)
	return enclose(lo, hi), dec
}

// Exp returns exp(x): entire, monotonically increasing.
func Exp(x Interval) Interval {
	if x.IsEmpty() {
		return Empty
	}
	return enclose(math.Exp(x.Lo), math.Exp(x.Hi))
}

// Ln returns ln(x), undefined (Trv) at or below 0.
func Ln(x Interval) (Interval, Decoration) {
	if x.IsEmpty() {
		return Empty, Com
	}
	if x.Hi <= 0 {
		return Empty, Trv
	}
	dec := Com
	lo := math.Inf(-1)
	if x.Lo <= 0 {
		dec = Trv
	} else {
		lo = math.Log(x.Lo)
	}
	hi := math.Log(x.Hi)
	return enclose(lo, hi), dec
}

// Log10 returns log10(x), same domain as Ln.
func Log10(x Interval) (Interval, Decoration) {
	l, dec := Ln(x)
	if l.IsEmpty() {
		return l, dec
	}
	return enclose(l.Lo/math.Ln10, l.Hi/math.Ln10), dec
}

// LogB returns log base b of x (b a positive point != 1), via ln(x)/ln(b).
func LogB(x Interval, base float64) (Interval, Decoration) {
	if base <= 0 || base == 1 {
		return Empty, Trv
	}
	l, dec := Ln(x)
	if l.IsEmpty() {
		return l, dec
	}
	lb := math.Log(base)
	if lb > 0 {
		return enclose(l.Lo/lb, l.Hi/lb), dec
	}
	return enclose(l.Hi/lb, l.Lo/lb), dec
}

// IntPow raises x to an integer power n (n may be negative; n == 0 yields
// {1} everywhere, including at x == 0, per spec's 0^0 = 1).
func IntPow(x Interval, n int) (Interval, Decoration) {
	if x.IsEmpty() {
		return Empty, Com
	}
	if n == 0 {
		return Point(1), Com
	}
	if n < 0 {
		p, dec := IntPow(x, -n)
		q, d2 := Div(Point(1), p)
		return q, MinDecoration(dec, d2)
	}
	if n%2 == 0 {
		a := math.Pow(x.Lo, float64(n))
		b := math.Pow(x.Hi, float64(n))
		lo := math.Min(a, b)
		hi := math.Max(a, b)
		if x.ContainsZero() {
			lo = 0
		}
		return enclose(lo, hi), Com
	}
	return enclose(math.Pow(x.Lo, float64(n)), math.Pow(x.Hi, float64(n))), Com
}

// NthRoot returns the real n-th root of x (spec's root_n, used to lower
// x^(m/n) per §4.2's canonicalization rule). For odd n every real has a
// unique real root (negative x yields a negative root). For even n only
// x >= 0 is defined.
func NthRoot(x Interval, n int) (Interval, Decoration) {
	if x.IsEmpty() {
		return Empty, Com
	}
	signedRoot := func(v float64) float64 {
		if v < 0 {
			return -math.Pow(-v, 1/float64(n))
		}
		return math.Pow(v, 1/float64(n))
	}
	if n%2 != 0 {
		return enclose(signedRoot(x.Lo), signedRoot(x.Hi)), Com
	}
	if x.Hi < 0 {
		return Empty, Trv
	}
	dec := Com
	lo := 0.0
	if x.Lo < 0 {
		dec = Trv
	} else {
		lo = signedRoot(x.Lo)
	}
	hi := signedRoot(x.Hi)
	return enclose(lo, hi), dec
}

// PowRational computes x^(m/n) for reduced coprime m, n (n > 0), by the
// canonicalizer's root_n ∘ pow_m lowering (spec §4.2), giving correct
// negative-base semantics: (-1)^(1/3) = -1, and (-1)^(2/6) (reducing to
// (-1)^(1/3)) matches (-1)^(1/3) rather than ((-1)^2)^(1/6) = 1.
func PowRational(x Interval, m, n int) (Interval, Decoration) {
	if n == 1 {
		return IntPow(x, m)
	}
	y, dec1 := IntPow(x, m)
	r, dec2 := NthRoot(y, n)
	return r, MinDecoration(dec1, dec2)
}

// --- Trigonometric ---

// sinEnclose computes sin([lo,hi]) by checking endpoint values and any
// extrema (odd multiples of pi/2) that fall within the interval.
func sinEnclose(lo, hi float64) Interval {
	if hi-lo >= 2*math.Pi {
		return Interval{Lo: -1, Hi: 1}
	}
	vlo, vhi := math.Sin(lo), math.Sin(hi)
	resLo, resHi := math.Min(vlo, vhi), math.Max(vlo, vhi)
	// extrema of sin at pi/2 + k*pi
	kStart := math.Floor((lo - math.Pi/2) / math.Pi)
	for k := kStart; ; k++ {
		c := math.Pi/2 + k*math.Pi
		if c > hi+1e-9 {
			break
		}
		if c >= lo-1e-9 && c <= hi+1e-9 {
			v := math.Sin(c)
			resLo, resHi = math.Min(resLo, v), math.Max(resHi, v)
			resHi = math.Max(resHi, v)
		}
	}
	margin := argPad(math.Max(math.Abs(lo), math.Abs(hi)))
	return padded(resLo, resHi, margin)
}

// Sin returns sin(x), entire and continuous everywhere.
func Sin(x Interval) Interval {
	if x.IsEmpty() {
		return Empty
	}
	return sinEnclose(x.Lo, x.Hi)
}

// Cos returns cos(x) = sin(x + pi/2).
func Cos(x Interval) Interval {
	if x.IsEmpty() {
		return Empty
	}
	return sinEnclose(x.Lo+math.Pi/2, x.Hi+math.Pi/2)
}

// Tan returns tan(x), undefined (Trv) wherever the box straddles an
// asymptote at pi/2 + k*pi.
func Tan(x Interval) (Interval, Decoration) {
	if x.IsEmpty() {
		return Empty, Com
	}
	if x.Hi-x.Lo >= math.Pi {
		return Whole, Trv
	}
	kStart := math.Floor((x.Lo - math.Pi/2) / math.Pi)
	for k := kStart; ; k++ {
		asym := math.Pi/2 + k*math.Pi
		if asym > x.Hi+1e-9 {
			break
		}
		if asym > x.Lo-1e-9 && asym < x.Hi+1e-9 {
			return Whole, Trv
		}
	}
	margin := argPad(math.Max(math.Abs(x.Lo), math.Abs(x.Hi)))
	return padded(math.Tan(x.Lo), math.Tan(x.Hi), margin), Com
}

// Asin returns asin(x), undefined (Trv) outside [-1, 1].
func Asin(x Interval) (Interval, Decoration) {
	if x.IsEmpty() {
		return Empty, Com
	}
	if x.Hi < -1 || x.Lo > 1 {
		return Empty, Trv
	}
	dec := Com
	lo, hi := x.Lo, x.Hi
	if lo < -1 {
		lo = -1
		dec = Trv
	}
	if hi > 1 {
		hi = 1
		dec = Trv
	}
	return enclose(math.Asin(lo), math.Asin(hi)), dec
}

// Acos returns acos(x), undefined (Trv) outside [-1, 1]; monotonically
// decreasing so endpoints swap.
func Acos(x Interval) (Interval, Decoration) {
	if x.IsEmpty() {
		return Empty, Com
	}
	if x.Hi < -1 || x.Lo > 1 {
		return Empty, Trv
	}
	dec := Com
	lo, hi := x.Lo, x.Hi
	if lo < -1 {
		lo = -1
		dec = Trv
	}
	if hi > 1 {
		hi = 1
		dec = Trv
	}
	return enclose(math.Acos(hi), math.Acos(lo)), dec
}

// Atan returns atan(x), entire.
func Atan(x Interval) Interval {
	if x.IsEmpty() {
		return Empty
	}
	return enclose(math.Atan(x.Lo), math.Atan(x.Hi))
}

// Atan2 returns the enclosure of atan2(y, x), returned as a Set because the
// branch cut along the negative x-axis/origin makes it intrinsically
// multi-valued as a set function when the box straddles it (spec §4.3).
// atan2(0, 0) is undefined (Trv).
func Atan2(y, x Interval) ([]Interval, Decoration) {
	if x.IsEmpty() || y.IsEmpty() {
		return nil, Com
	}
	if x.Lo == 0 && x.Hi == 0 && y.Lo == 0 && y.Hi == 0 {
		return nil, Trv
	}
	straddlesCut := x.Lo < 0 && y.ContainsZero()
	originInside := x.ContainsZero() && y.ContainsZero()
	if !straddlesCut {
		corners := []float64{
			math.Atan2(y.Lo, x.Lo), math.Atan2(y.Lo, x.Hi),
			math.Atan2(y.Hi, x.Lo), math.Atan2(y.Hi, x.Hi),
		}
		lo, hi := corners[0], corners[0]
		for _, c := range corners[1:] {
			lo, hi = math.Min(lo, c), math.Max(hi, c)
		}
		dec := Com
		if originInside {
			dec = Trv
		}
		return []Interval{padded(lo, hi, 1e-12)}, dec
	}
	if originInside {
		// The box surrounds the origin, so every angle occurs.
		return []Interval{{Lo: -math.Pi, Hi: 0}, {Lo: 0, Hi: math.Pi}}, Trv
	}
	// Straddling the branch cut: report both the (-pi, -pi/2]-ish lower
	// branch and the [pi/2, pi) upper branch rather than a hull across the
	// discontinuity, per spec §9's multi-branch requirement.
	upper := Interval{Lo: math.Pi / 2, Hi: math.Pi}
	lower := Interval{Lo: -math.Pi, Hi: -math.Pi / 2}
	return []Interval{lower, upper}, Trv
}

// --- Hyperbolic ---

func Sinh(x Interval) Interval {
	if x.IsEmpty() {
		return Empty
	}
	return enclose(math.Sinh(x.Lo), math.Sinh(x.Hi))
}

func Cosh(x Interval) Interval {
	if x.IsEmpty() {
		return Empty
	}
	if x.Lo >= 0 {
		return enclose(math.Cosh(x.Lo), math.Cosh(x.Hi))
	}
	if x.Hi <= 0 {
		return enclose(math.Cosh(x.Hi), math.Cosh(x.Lo))
	}
	hi := math.Max(math.Cosh(x.Lo), math.Cosh(x.Hi))
	return enclose(1, hi)
}

func Tanh(x Interval) Interval {
	if x.IsEmpty() {
		return Empty
	}
	return enclose(math.Tanh(x.Lo), math.Tanh(x.Hi))
}

func Asinh(x Interval) Interval {
	if x.IsEmpty() {
		return Empty
	}
	return enclose(math.Asinh(x.Lo), math.Asinh(x.Hi))
}

// Acosh returns acosh(x), undefined (Trv) below 1.
func Acosh(x Interval) (Interval, Decoration) {
	if x.IsEmpty() {
		return Empty, Com
	}
	if x.Hi < 1 {
		return Empty, Trv
	}
	dec := Com
	lo := 0.0
	if x.Lo < 1 {
		dec = Trv
	} else {
		lo = math.Acosh(x.Lo)
	}
	return enclose(lo, math.Acosh(x.Hi)), dec
}

// Atanh returns atanh(x), undefined (Trv) outside (-1, 1).
func Atanh(x Interval) (Interval, Decoration) {
	if x.IsEmpty() {
		return Empty, Com
	}
	if x.Hi <= -1 || x.Lo >= 1 {
		return Empty, Trv
	}
	dec := Com
	lo, hi := x.Lo, x.Hi
	if lo <= -1 {
		lo = -1 + 1e-300
		dec = Trv
	}
	if hi >= 1 {
		hi = 1 - 1e-300
		dec = Trv
	}
	return enclose(math.Atanh(lo), math.Atanh(hi)), dec
}
