package interval

// Decoration is the IEEE-1788-style lattice of spec §3: Trv < Def < Dac < Com.
// It records how well-defined a computation was on its input box.
type Decoration uint8

const (
	// Trv: possibly undefined anywhere on the input.
	Trv Decoration = iota
	// Def: defined everywhere on the input, possibly discontinuous.
	Def
	// Dac: defined and continuous on the input almost everywhere.
	Dac
	// Com: defined and continuous everywhere on the input.
	Com
)

func (d Decoration) String() string {
	switch d {
	case Trv:
		return "Trv"
	case Def:
		return "Def"
	case Dac:
		return "Dac"
	case Com:
		return "Com"
	default:
		return "?"
	}
}

// MinDecoration returns the weaker (lower in the lattice) of two decorations: the
// result of composing operations is never better-decorated than its worst
// input (spec §3).
func MinDecoration(a, b Decoration) Decoration {
	if a < b {
		return a
	}
	return b
}

// Downgrade caps d at the given ceiling, used when a partial primitive
// (sqrt, log, tan, ...) is applied: the result can never be decorated
// better than the primitive's own guarantee over the sub-box where it is
// evaluated (spec §4.2's restricted-domain annotation feeds this).
func Downgrade(d, ceiling Decoration) Decoration {
	return MinDecoration(d, ceiling)
}
