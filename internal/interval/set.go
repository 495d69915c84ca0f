package interval

import (
	"math"
	"sort"
)

// MaxComponents is k, the maximum number of disjoint intervals an interval
// set may carry before the two closest components are merged (spec §3, I2).
const MaxComponents = 8

// Set is a finite union of at most MaxComponents pairwise-disjoint,
// outward-rounded intervals sorted by lower endpoint (spec §3's "interval
// set"), paired with the decoration of the expression that produced it.
// This is the content of one scalar-set register (spec §3's "relation
// program... two register files").
type Set struct {
	Components []Interval
	Dec        Decoration
}

// EmptySet is the scalar-set value with no components: the relation has no
// solution over this operand.
func EmptySet() Set { return Set{Dec: Com} }

// SetOf builds a single-component set.
func SetOf(i Interval, dec Decoration) Set {
	if i.IsEmpty() {
		return Set{Dec: dec}
	}
	return Set{Components: []Interval{i}, Dec: dec}
}

// IsEmpty reports whether the set has no components.
func (s Set) IsEmpty() bool { return len(s.Components) == 0 }

// Hull returns the smallest single interval containing every component.
func (s Set) Hull() Interval {
	h := Empty
	for _, c := range s.Components {
		h = Hull(h, c)
	}
	return h
}

// mergeOverlaps sorts components by lower bound and merges any that
// overlap or touch, per spec §3, I2 (pairwise-disjoint components).
func mergeOverlaps(cs []Interval) []Interval {
	if len(cs) == 0 {
		return cs
	}
	sort.Slice(cs, func(i, j int) bool { return cs[i].Lo < cs[j].Lo })
	out := make([]Interval, 0, len(cs))
	cur := cs[0]
	for _, c := range cs[1:] {
		if c.Lo <= cur.Hi {
			cur = Hull(cur, c)
		} else {
			out = append(out, cur)
			cur = c
		}
	}
	out = append(out, cur)
	return out
}

// shrinkToK merges the two closest components (by gap between consecutive
// intervals) until at most MaxComponents remain.
func shrinkToK(cs []Interval) []Interval {
	for len(cs) > MaxComponents {
		bestIdx := 0
		bestGap := math.Inf(1)
		for i := 0; i+1 < len(cs); i++ {
			gap := cs[i+1].Lo - cs[i].Hi
			if gap < bestGap {
				bestGap = gap
				bestIdx = i
			}
		}
		merged := Hull(cs[bestIdx], cs[bestIdx+1])
		cs = append(cs[:bestIdx], append([]Interval{merged}, cs[bestIdx+2:]...)...)
	}
	return cs
}

// Union combines two sets' components into one normalized, ≤k-bounded set.
// The decoration of the union is the weaker of the two inputs.
func Union(a, b Set) Set {
	all := make([]Interval, 0, len(a.Components)+len(b.Components))
	all = append(all, a.Components...)
	all = append(all, b.Components...)
	all = mergeOverlaps(all)
	all = shrinkToK(all)
	return Set{Components: all, Dec: MinDecoration(a.Dec, b.Dec)}
}

// UnionAll folds Union across every set in ss.
func UnionAll(ss ...Set) Set {
	acc := EmptySet()
	for _, s := range ss {
		acc = Union(acc, s)
	}
	return acc
}

// Map applies f to every component and unions the (possibly multi-valued)
// results back into a single ≤k-bounded set, per spec §4.4 step 2's "apply
// the primitive to the operand sets ... then union the results back to ≤k
// branches". f's returned decoration is combined with the set's own via
// MinDecoration.
func (s Set) Map(f func(Interval) ([]Interval, Decoration)) Set {
	out := Set{Dec: s.Dec}
	for _, c := range s.Components {
		rs, dec := f(c)
		out.Dec = MinDecoration(out.Dec, dec)
		for _, r := range rs {
			out = Union(out, SetOf(r, out.Dec))
		}
	}
	return out
}

// CartesianMap applies f to every pair of components drawn from a and b (the
// Cartesian product of their branches) and unions the results, per spec
// §4.4 step 2.
func CartesianMap(a, b Set, f func(x, y Interval) ([]Interval, Decoration)) Set {
	dec := MinDecoration(a.Dec, b.Dec)
	out := Set{Dec: dec}
	if a.IsEmpty() || b.IsEmpty() {
		return out
	}
	for _, x := range a.Components {
		for _, y := range b.Components {
			rs, d := f(x, y)
			out.Dec = MinDecoration(out.Dec, d)
			for _, r := range rs {
				out = Union(out, SetOf(r, out.Dec))
			}
		}
	}
	return out
}
