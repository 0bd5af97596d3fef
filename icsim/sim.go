// Package icsim generates synthetic mixed-case interval-censored samples for
// simulation studies and tests.
package icsim

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ChaoyuYuan/iclogcondist/icdata"
)

// CurrentStatus draws n subjects whose event times follow the event
// distribution and are inspected once, at a time drawn from the inspect
// distribution.  A subject inspected after the event yields (0, c]; a
// subject inspected before the event yields (c, +Inf).
func CurrentStatus(n int, event, inspect distuv.Rander) *icdata.Dataset {

	left := make([]float64, n)
	right := make([]float64, n)

	for i := 0; i < n; i++ {
		t := event.Rand()
		c := inspect.Rand()
		if t <= c {
			left[i] = 0
			right[i] = c
		} else {
			left[i] = c
			right[i] = math.Inf(1)
		}
	}

	ds, err := icdata.NewDataset(left, right)
	if err != nil {
		panic(err)
	}

	return ds
}

// MixedCase draws n subjects whose event times follow the event
// distribution.  Each subject is inspected between 1 and maxk times, with
// positive gaps between inspections drawn from the gap distribution, and the
// event time is bracketed by the adjacent inspection times.  Events before
// the first inspection yield (0, c1]; events after the last yield
// (ck, +Inf).
func MixedCase(n, maxk int, event, gap distuv.Rander, src rand.Source) *icdata.Dataset {

	if maxk < 1 {
		panic("icsim: maxk must be at least 1")
	}

	rng := rand.New(src)

	left := make([]float64, n)
	right := make([]float64, n)

	for i := 0; i < n; i++ {
		t := event.Rand()
		k := 1 + rng.Intn(maxk)

		l := 0.0
		r := math.Inf(1)
		var c float64
		for j := 0; j < k; j++ {
			g := gap.Rand()
			if g <= 0 {
				g = 1e-8
			}
			c += g
			if c < t {
				l = c
			} else {
				r = c
				break
			}
		}

		left[i] = l
		right[i] = r
	}

	ds, err := icdata.NewDataset(left, right)
	if err != nil {
		panic(err)
	}

	return ds
}
