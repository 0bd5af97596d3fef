package icdata

import (
	"fmt"
	"math"
	"sort"
)

// IntervalStructure describes the Turnbull innermost intervals of a dataset:
// the maximal intersections of the censoring intervals, which are the only
// places where a nonparametric maximum likelihood estimate can put mass.
// The intervals are disjoint, ordered, and use the (lower, upper] half-open
// convention of the data.  The last interval may be right unbounded, in
// which case it carries the defect mass beyond the largest finite support
// point.
type IntervalStructure struct {
	ds *Dataset

	// Endpoints of the innermost intervals, (lower[i], upper[i]].
	lower []float64
	upper []float64

	// first[k] and last[k] bound the contiguous range of innermost
	// intervals that observation k is compatible with.
	first []int
	last  []int

	// Number of bounded innermost intervals.  Equal to len(lower) unless
	// the structure is unbounded, in which case it is len(lower)-1.
	nfinite int
}

// NewIntervalStructure derives the innermost intervals of the dataset and
// maps each observation to the intervals it is compatible with.
func NewIntervalStructure(ds *Dataset) (*IntervalStructure, error) {

	s := &IntervalStructure{ds: ds}
	s.findIntervals()

	if s.nfinite == 0 {
		return nil, &InfeasibleConfigurationError{
			Msg: "every observation is right unbounded; no finite support point is identified",
		}
	}

	s.findRanges()

	return s, nil
}

// findIntervals scans the sorted distinct endpoints and emits an innermost
// interval (l, r] whenever a left-type endpoint l is followed by a
// right-type endpoint r with no other endpoint in between.  A value that is
// both a right and a left endpoint closes one interval before opening the
// next.
func (s *IntervalStructure) findIntervals() {

	isL := make(map[float64]bool)
	isR := make(map[float64]bool)
	unbounded := false

	for i, l := range s.ds.left {
		isL[l] = true
		r := s.ds.right[i]
		if math.IsInf(r, 1) {
			unbounded = true
		} else {
			isR[r] = true
		}
	}

	points := make([]float64, 0, len(isL)+len(isR))
	seen := make(map[float64]bool)
	for v := range isL {
		if !seen[v] {
			points = append(points, v)
			seen[v] = true
		}
	}
	for v := range isR {
		if !seen[v] {
			points = append(points, v)
			seen[v] = true
		}
	}
	sort.Float64s(points)

	lastL := math.NaN()
	for _, v := range points {
		if isR[v] && !math.IsNaN(lastL) {
			s.lower = append(s.lower, lastL)
			s.upper = append(s.upper, v)
			lastL = math.NaN()
		}
		if isL[v] {
			lastL = v
		}
	}

	s.nfinite = len(s.lower)

	// A trailing left endpoint with only unbounded observations beyond it
	// opens a right-unbounded innermost interval.
	if unbounded && !math.IsNaN(lastL) {
		s.lower = append(s.lower, lastL)
		s.upper = append(s.upper, math.Inf(1))
	}
}

// findRanges locates, for every observation, the contiguous block of
// innermost intervals contained in its censoring interval.
func (s *IntervalStructure) findRanges() {

	n := s.ds.NumObs()
	s.first = make([]int, n)
	s.last = make([]int, n)

	for k := 0; k < n; k++ {
		l := s.ds.left[k]
		r := s.ds.right[k]

		// First interval with lower >= l.
		a := sort.SearchFloat64s(s.lower, l)

		// Last interval with upper <= r.
		b := sort.SearchFloat64s(s.upper, r)
		if b == len(s.upper) || s.upper[b] != r {
			b--
		}

		if a > b {
			msg := fmt.Sprintf("icdata: observation %d (%v, %v] contains no innermost interval",
				k, l, r)
			panic(msg)
		}

		s.first[k] = a
		s.last[k] = b
	}
}

// NumIntervals returns the number of innermost intervals, counting a
// right-unbounded interval if present.
func (s *IntervalStructure) NumIntervals() int {
	return len(s.lower)
}

// NumSupport returns the number of bounded innermost intervals, whose right
// endpoints form the finite support of the estimated distribution.
func (s *IntervalStructure) NumSupport() int {
	return s.nfinite
}

// Unbounded reports whether the last innermost interval extends to +Inf.
func (s *IntervalStructure) Unbounded() bool {
	return s.nfinite < len(s.lower)
}

// Lower returns the lower endpoints of the innermost intervals.
func (s *IntervalStructure) Lower() []float64 {
	return s.lower
}

// Upper returns the upper endpoints of the innermost intervals.
func (s *IntervalStructure) Upper() []float64 {
	return s.upper
}

// Support returns the right endpoints of the bounded innermost intervals.
func (s *IntervalStructure) Support() []float64 {
	return s.upper[0:s.nfinite]
}

// Range returns the inclusive index range of innermost intervals that
// observation k is compatible with.
func (s *IntervalStructure) Range(k int) (int, int) {
	return s.first[k], s.last[k]
}

// Data returns the dataset from which the structure was built.
func (s *IntervalStructure) Data() *Dataset {
	return s.ds
}
