// Package resources implements the typed four-resource algebra: lumber,
// clay, iron and crop, and the arithmetic the planner needs over them.
// Values are immutable — every operation returns a new Set.
package resources

import "math"

// Kind identifies one of the four resource types. Declared order is the
// tie-break order used throughout the planner (LUMBER < CLAY < IRON < CROP).
type Kind int

const (
	Lumber Kind = iota + 1
	Clay
	Iron
	Crop
)

// Kinds lists all resource kinds in their declared tie-break order.
var Kinds = [4]Kind{Lumber, Clay, Iron, Crop}

func (k Kind) String() string {
	switch k {
	case Lumber:
		return "lumber"
	case Clay:
		return "clay"
	case Iron:
		return "iron"
	case Crop:
		return "crop"
	default:
		return "unknown"
	}
}

// Set is an immutable (lumber, clay, iron, crop) 4-tuple. Non-negative by
// convention; callers that need signed deltas use Sub directly and check
// the sign themselves.
type Set struct {
	Lumber int
	Clay   int
	Iron   int
	Crop   int
}

// Zero is the additive identity.
var Zero = Set{}

// Get returns the component for kind k.
func (s Set) Get(k Kind) int {
	switch k {
	case Lumber:
		return s.Lumber
	case Clay:
		return s.Clay
	case Iron:
		return s.Iron
	case Crop:
		return s.Crop
	default:
		return 0
	}
}

// With returns a copy of s with kind k set to v.
func (s Set) With(k Kind, v int) Set {
	switch k {
	case Lumber:
		s.Lumber = v
	case Clay:
		s.Clay = v
	case Iron:
		s.Iron = v
	case Crop:
		s.Crop = v
	}
	return s
}

// Add returns the component-wise sum.
func (s Set) Add(o Set) Set {
	return Set{
		Lumber: s.Lumber + o.Lumber,
		Clay:   s.Clay + o.Clay,
		Iron:   s.Iron + o.Iron,
		Crop:   s.Crop + o.Crop,
	}
}

// Sub returns the component-wise, signed difference (no floor at zero).
func (s Set) Sub(o Set) Set {
	return Set{
		Lumber: s.Lumber - o.Lumber,
		Clay:   s.Clay - o.Clay,
		Iron:   s.Iron - o.Iron,
		Crop:   s.Crop - o.Crop,
	}
}

// SubFloored returns the component-wise difference, floored at zero per
// component — the "shortage" reading used by the planner.
func (s Set) SubFloored(o Set) Set {
	d := s.Sub(o)
	return d.clampMin(0)
}

func (s Set) clampMin(min int) Set {
	return Set{
		Lumber: maxInt(s.Lumber, min),
		Clay:   maxInt(s.Clay, min),
		Iron:   maxInt(s.Iron, min),
		Crop:   maxInt(s.Crop, min),
	}
}

// Mul scales every component by k.
func (s Set) Mul(k int) Set {
	return Set{
		Lumber: s.Lumber * k,
		Clay:   s.Clay * k,
		Iron:   s.Iron * k,
		Crop:   s.Crop * k,
	}
}

// Min returns the component-wise minimum of s and o.
func Min(s, o Set) Set {
	return Set{
		Lumber: minInt(s.Lumber, o.Lumber),
		Clay:   minInt(s.Clay, o.Clay),
		Iron:   minInt(s.Iron, o.Iron),
		Crop:   minInt(s.Crop, o.Crop),
	}
}

// Max returns the component-wise maximum of s and o.
func Max(s, o Set) Set {
	return Set{
		Lumber: maxInt(s.Lumber, o.Lumber),
		Clay:   maxInt(s.Clay, o.Clay),
		Iron:   maxInt(s.Iron, o.Iron),
		Crop:   maxInt(s.Crop, o.Crop),
	}
}

// IsZero reports whether every component is zero.
func (s Set) IsZero() bool {
	return s.Lumber == 0 && s.Clay == 0 && s.Iron == 0 && s.Crop == 0
}

// Dominates reports whether s >= o component-wise (s can fully cover o).
func (s Set) Dominates(o Set) bool {
	return s.Lumber >= o.Lumber && s.Clay >= o.Clay && s.Iron >= o.Iron && s.Crop >= o.Crop
}

// IsDisjoint reports whether no kind has both a and b positive.
func IsDisjoint(a, b Set) bool {
	for _, k := range Kinds {
		if a.Get(k) > 0 && b.Get(k) > 0 {
			return false
		}
	}
	return true
}

// ProvideUpTo returns the component-wise min of available and requested —
// the largest subset of request that available can pay in full.
func ProvideUpTo(available, request Set) Set {
	return Min(available, request)
}

// Fits returns how many whole copies of need fit inside have: the minimum
// over kinds k with need_k>0 of floor(have_k/need_k). A need component of
// zero is ignored. If every need component is zero, Fits returns
// math.MaxInt — callers must special-case a genuinely zero cost rather
// than rely on this value feeding arithmetic.
func Fits(need, have Set) int {
	best := math.MaxInt
	any := false
	for _, k := range Kinds {
		n := need.Get(k)
		if n <= 0 {
			continue
		}
		any = true
		h := have.Get(k)
		if h < n {
			return 0
		}
		count := h / n
		if count < best {
			best = count
		}
	}
	if !any {
		return math.MaxInt
	}
	return best
}

// MinType returns the Kind with the smallest component, breaking ties by
// declared order (Lumber < Clay < Iron < Crop).
func (s Set) MinType() Kind {
	best := Kinds[0]
	bestVal := s.Get(best)
	for _, k := range Kinds[1:] {
		if v := s.Get(k); v < bestVal {
			best = k
			bestVal = v
		}
	}
	return best
}

// MaxType returns the Kind with the largest component, ties broken by
// declared order.
func (s Set) MaxType() Kind {
	best := Kinds[0]
	bestVal := s.Get(best)
	for _, k := range Kinds[1:] {
		if v := s.Get(k); v > bestVal {
			best = k
			bestVal = v
		}
	}
	return best
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// HoursToCover computes how many hours of hourlyProduction are needed to
// close shortage, component-wise:
//
//	delay = max_k( remainingShortage_k / hourlyProduction_k )
//
// skipping kinds whose shortage is already <= 0. A kind with positive
// shortage and zero production is capped at ceilingHours rather than
// producing +Inf — callers are responsible for guarding against zero
// production. feasible is false only when ceilingHours itself is
// non-positive and a real shortage remains uncovered.
func HoursToCover(shortage, hourlyProduction Set, ceilingHours float64) (hours float64, feasible bool) {
	feasible = true
	for _, k := range Kinds {
		need := shortage.Get(k)
		if need <= 0 {
			continue
		}
		rate := hourlyProduction.Get(k)
		var h float64
		if rate <= 0 {
			if ceilingHours <= 0 {
				feasible = false
				continue
			}
			h = ceilingHours
		} else {
			h = float64(need) / float64(rate)
			if h > ceilingHours && ceilingHours > 0 {
				h = ceilingHours
			}
		}
		if h > hours {
			hours = h
		}
	}
	return hours, feasible
}
