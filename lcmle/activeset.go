package lcmle

import (
	"gonum.org/v1/gonum/mat"
)

// activeSet tracks which log-concavity constraints are currently tight.
// knot[j] is true when the fitted log distribution function is free to bend
// at support index j; a maximal run of non-knot indices between two knots is
// a pooled block on which log F is forced to be linear in time.  The first
// and last indices are always knots.
type activeSet struct {
	m    int
	knot []bool
}

func newActiveSet(m int) *activeSet {
	ap := &activeSet{m: m, knot: make([]bool, m)}
	ap.reset()
	return ap
}

// reset marks every support index as a knot, making all constraints slack.
func (ap *activeSet) reset() {
	for j := range ap.knot {
		ap.knot[j] = true
	}
}

// numBlocks returns the number of pooled blocks in the partition.
func (ap *activeSet) numBlocks() int {
	n := 0
	for _, k := range ap.knot {
		if k {
			n++
		}
	}
	return n - 1
}

// snapshot returns a copy of the knot configuration.
func (ap *activeSet) snapshot() []bool {
	s := make([]bool, len(ap.knot))
	copy(s, ap.knot)
	return s
}

// changed reports whether the knot configuration differs from a snapshot.
func (ap *activeSet) changed(prev []bool) bool {
	for j, k := range ap.knot {
		if k != prev[j] {
			return true
		}
	}
	return false
}

// knotList returns the indices of the current knots in increasing order.
func (ap *activeSet) knotList() []int {
	var ks []int
	for j, k := range ap.knot {
		if k {
			ks = append(ks, j)
		}
	}
	return ks
}

// solveKnots computes the weighted least squares fit of y by a function of t
// that is linear between consecutive knots, free to bend only at the knots.
// The normal equations in the piecewise-linear hat basis are tridiagonal;
// they are assembled densely and solved the same way the moment equations of
// an IRLS step are.  When fixLast is true the value at the last support
// point is pinned to zero.  Returns the fitted values and the weighted sum
// of squared residuals.
func (ap *activeSet) solveKnots(t, y, w []float64, fixLast bool) ([]float64, float64) {

	ks := ap.knotList()
	nk := len(ks)
	m := ap.m

	mm := make([]float64, nk*nk)
	rr := make([]float64, nk)

	// basis[j] and the adjacent hat value 1-basis[j] give the weights of
	// the two surrounding knots at support index j.
	for b := 0; b+1 < nk; b++ {
		j0 := ks[b]
		j1 := ks[b+1]
		dt := t[j1] - t[j0]
		for j := j0; j <= j1; j++ {
			// Skip interior duplicates of shared knots.
			if j == j1 && b+2 < nk {
				continue
			}
			u := (t[j] - t[j0]) / dt
			f0 := 1 - u
			f1 := u
			mm[b*nk+b] += w[j] * f0 * f0
			mm[b*nk+b+1] += w[j] * f0 * f1
			mm[(b+1)*nk+b] += w[j] * f0 * f1
			mm[(b+1)*nk+b+1] += w[j] * f1 * f1
			rr[b] += w[j] * f0 * y[j]
			rr[b+1] += w[j] * f1 * y[j]
		}
	}

	theta := make([]float64, nk)

	if fixLast {
		theta[nk-1] = 0
		if nk > 1 {
			nr := nk - 1
			mred := make([]float64, nr*nr)
			for a := 0; a < nr; a++ {
				for c := 0; c < nr; c++ {
					mred[a*nr+c] = mm[a*nk+c]
				}
			}
			var sol mat.VecDense
			err := sol.SolveVec(mat.NewDense(nr, nr, mred), mat.NewVecDense(nr, rr[0:nr]))
			if err != nil {
				panic(err)
			}
			copy(theta, sol.RawVector().Data)
		}
	} else {
		var sol mat.VecDense
		err := sol.SolveVec(mat.NewDense(nk, nk, mm), mat.NewVecDense(nk, rr))
		if err != nil {
			panic(err)
		}
		copy(theta, sol.RawVector().Data)
	}

	// Reconstruct the fitted values by interpolation between knots.
	x := make([]float64, m)
	for b := 0; b+1 < nk; b++ {
		j0 := ks[b]
		j1 := ks[b+1]
		dt := t[j1] - t[j0]
		for j := j0; j <= j1; j++ {
			u := (t[j] - t[j0]) / dt
			x[j] = (1-u)*theta[b] + u*theta[b+1]
		}
	}

	var obj float64
	for j := 0; j < m; j++ {
		d := x[j] - y[j]
		obj += w[j] * d * d
	}

	return x, obj
}

// worstViolation locates the knot where the fitted slopes bend upward the
// most.  It returns the knot index and the size of the violation in slope
// units; a violation of -1 means the fit is concave.
func (ap *activeSet) worstViolation(t, x []float64, tol float64) (int, float64) {

	ks := ap.knotList()

	jbad := -1
	vbad := -1.0
	for b := 1; b+1 < len(ks); b++ {
		sl := (x[ks[b]] - x[ks[b-1]]) / (t[ks[b]] - t[ks[b-1]])
		sr := (x[ks[b+1]] - x[ks[b]]) / (t[ks[b+1]] - t[ks[b]])
		v := sr - sl
		if v > tol && v > vbad {
			jbad = ks[b]
			vbad = v
		}
	}

	return jbad, vbad
}

// multipliers recovers the Lagrange multipliers of the concavity constraints
// from the stationarity conditions of the fit, by forward substitution.  The
// multiplier of a slack constraint comes out as zero; a negative multiplier
// on a tight constraint indicates that releasing it would improve the fit.
func (ap *activeSet) multipliers(t, x, y, w []float64) []float64 {

	m := ap.m
	lam := make([]float64, m)

	for i := 0; i+1 <= m-2; i++ {
		dt1 := t[i+1] - t[i]
		v := -w[i] * (x[i] - y[i])
		if i > 0 {
			dt0 := t[i] - t[i-1]
			v += lam[i]*(1/dt0+1/dt1) - lam[i-1]/dt0
		}
		lam[i+1] = dt1 * v
	}

	return lam
}

// project computes the weighted least squares projection of y onto the cone
// of sequences concave with respect to the time grid t, warm started from
// the current partition.  Knots are merged away while the fitted slopes
// violate concavity beyond tol, and restored where a recovered multiplier
// shows the pooled constraint is no longer binding.  Every split must
// strictly decrease the objective, so the loop cannot cycle; a pass budget
// bounds the work regardless.
func (ap *activeSet) project(t, y, w []float64, fixLast bool, tol float64) []float64 {

	m := ap.m

	if m == 1 {
		x := []float64{y[0]}
		if fixLast {
			x[0] = 0
		}
		return x
	}

	x, obj := ap.solveKnots(t, y, w, fixLast)

	for pass := 0; pass < 10*m; pass++ {

		// Merge while the fit bends upward anywhere.
		for {
			j, _ := ap.worstViolation(t, x, tol)
			if j < 0 {
				break
			}
			ap.knot[j] = false
			x, obj = ap.solveKnots(t, y, w, fixLast)
		}

		// Split where a tight constraint has a negative multiplier.
		lam := ap.multipliers(t, x, y, w)
		jneg := -1
		vneg := -tol
		for j := 1; j <= m-2; j++ {
			if !ap.knot[j] && lam[j] < vneg {
				jneg = j
				vneg = lam[j]
			}
		}
		if jneg < 0 {
			break
		}

		ap.knot[jneg] = true
		xnew, objnew := ap.solveKnots(t, y, w, fixLast)
		if objnew >= obj {
			// No measurable progress; revert the split and stop.
			ap.knot[jneg] = false
			x, obj = ap.solveKnots(t, y, w, fixLast)
			break
		}
		x, obj = xnew, objnew
	}

	return x
}
