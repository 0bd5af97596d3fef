package lcmle

import (
	"math"
)

// fitState tracks the phase of the outer fitting loop.
type fitState int

const (
	seeding fitState = iota
	iterating
	converged
	exhausted
)

// curvFloor bounds the diagonal curvature weights away from zero so that the
// ICM target is always defined.
const curvFloor = 1e-10

// psiFromMass converts an unconstrained mass vector into log cumulative
// probabilities at the finite support points.  Masses are floored so that
// the logs are finite and the cumulative values strictly increase.  When the
// structure carries no defect mass the values are normalized so that the
// last one is exactly zero.
func (lc *LCDist) psiFromMass(mass []float64) []float64 {

	m := lc.NumSupport()
	floor := lc.config.PFloor

	psi := make([]float64, m)
	var c float64
	for j := 0; j < m; j++ {
		x := mass[j]
		if x < floor {
			x = floor
		}
		c += x
		psi[j] = c
	}

	if !lc.str.Unbounded() {
		for j := range psi {
			psi[j] /= c
		}
	}

	for j := range psi {
		v := math.Log(psi[j])
		if v > 0 {
			v = 0
		}
		psi[j] = v
	}

	return psi
}

// clampSub caps psi at zero so that the distribution function never exceeds
// one.  The cap of a concave sequence at a constant is still concave.
func clampSub(psi []float64) {
	for j, v := range psi {
		if v > 0 {
			psi[j] = 0
		}
	}
}

// feasible reports whether psi is the log of a valid sub-distribution
// function: nondecreasing and at most zero.
func feasible(psi []float64) bool {

	if psi[len(psi)-1] > 0 {
		return false
	}
	for j := 1; j < len(psi); j++ {
		if psi[j] < psi[j-1] {
			return false
		}
	}

	return true
}

// maxViolation returns the largest upward bend of psi in slope units, or
// zero for a concave sequence.
func (lc *LCDist) maxViolation(psi []float64) float64 {

	var v float64
	for j := 1; j+1 < len(psi); j++ {
		sl := (psi[j] - psi[j-1]) / (lc.tau[j] - lc.tau[j-1])
		sr := (psi[j+1] - psi[j]) / (lc.tau[j+1] - lc.tau[j])
		if sr-sl > v {
			v = sr - sl
		}
	}

	return v
}

// lineSearch moves from psi toward prop by step halving until the
// log-likelihood does not decrease and the candidate remains a valid
// sub-distribution function.  It returns the accepted point, its
// log-likelihood, and whether any step was accepted.
func (lc *LCDist) lineSearch(psi, prop []float64, ll float64) ([]float64, float64, bool) {

	cand := lc.cand

	s := 1.0
	for h := 0; h < 40; h++ {
		for j := range cand {
			cand[j] = psi[j] + s*(prop[j]-psi[j])
		}
		if feasible(cand) {
			cll := lc.logLike(cand)
			if !math.IsInf(cll, -1) && cll >= ll {
				out := make([]float64, len(cand))
				copy(out, cand)
				return out, cll, true
			}
		}
		s /= 2
	}

	return nil, ll, false
}

// Fit computes the log-concave distribution function MLE.  The fit is
// seeded from the unconstrained NPMLE, projected onto the log-concave cone,
// and then refined by ICM steps interleaved with active set updates until
// the likelihood is stationary, the constraints hold to tolerance, and the
// partition is stable.  If the iteration budget runs out first, the best
// feasible point found is returned with the convergence flag unset.
func (lc *LCDist) Fit() (*Results, error) {

	if lc.NumSupport() == 1 {
		return lc.fitOnePoint(), nil
	}

	// Seeding
	solver := lc.config.Start
	if solver == nil {
		solver = &Turnbull{}
	}
	mass, err := solver.Solve(lc.str)
	if err != nil {
		return nil, err
	}

	m := lc.NumSupport()
	fixLast := !lc.str.Unbounded()
	ctol := lc.config.CTol

	ones := make([]float64, m)
	for j := range ones {
		ones[j] = 1
	}

	ap := newActiveSet(m)
	psi := ap.project(lc.tau, lc.psiFromMass(mass), ones, fixLast, ctol)
	clampSub(psi)
	ll := lc.logLike(psi)

	state := iterating
	iter := 0

	for state == iterating {
		iter++
		prev := ap.snapshot()

		lc.score(psi, lc.grad)
		lc.curvature(psi, lc.curv)
		for j := 0; j < m; j++ {
			w := -lc.curv[j]
			if w < curvFloor {
				w = curvFloor
			}
			lc.wgt[j] = w
			lc.target[j] = psi[j] + lc.grad[j]/w
		}

		prop := ap.project(lc.tau, lc.target, lc.wgt, fixLast, ctol)
		clampSub(prop)

		newpsi, newll, ok := lc.lineSearch(psi, prop, ll)
		var gain float64
		if ok {
			gain = newll - ll
			psi, ll = newpsi, newll
		}

		if lc.config.Log != nil {
			lc.config.Log.Printf("Iteration %d: loglike=%.10f gain=%.3e blocks=%d\n",
				iter, ll, gain, ap.numBlocks())
		}

		switch {
		case lc.maxViolation(psi) <= ctol && gain < lc.config.LTol && !ap.changed(prev):
			state = converged
		case iter >= lc.config.MaxIter:
			state = exhausted
		}
	}

	if lc.config.Log != nil {
		if state == converged {
			lc.config.Log.Print("ICM converged\n")
		} else {
			lc.config.Log.Print("ICM iteration budget exhausted\n")
		}
	}

	return lc.newResults(psi, ll, iter, state == converged, ap.numBlocks()), nil
}

// fitOnePoint handles the degenerate case of a single finite support point,
// where the estimate has a closed form and no concavity constraint exists.
func (lc *LCDist) fitOnePoint() *Results {

	ds := lc.str.Data()

	f := 1.0
	if lc.str.Unbounded() {
		// Weight of observations requiring mass at the support point,
		// and of those requiring mass beyond it.
		var wa, wb float64
		for k := 0; k < ds.NumObs(); k++ {
			a, b := lc.str.Range(k)
			switch {
			case a == 0 && b == 0:
				wa += ds.Weight(k)
			case a == 1:
				wb += ds.Weight(k)
			}
		}
		if wa+wb > 0 {
			f = wa / (wa + wb)
		}
	}

	ll := lc.logLike([]float64{math.Log(f)})

	return lc.newResults([]float64{math.Log(f)}, ll, 0, true, 0)
}

// newResults converts the working state into an immutable results value.
func (lc *LCDist) newResults(psi []float64, ll float64, iter int, conv bool, blocks int) *Results {

	m := len(psi)

	support := make([]float64, m)
	copy(support, lc.tau)

	cumprob := make([]float64, m)
	mass := make([]float64, m)
	var prev float64
	for j, v := range psi {
		cumprob[j] = math.Exp(v)
		d := cumprob[j] - prev
		if d < 0 {
			d = 0
		}
		mass[j] = d
		prev = cumprob[j]
	}

	var defect float64
	if lc.str.Unbounded() {
		defect = 1 - cumprob[m-1]
	}

	return &Results{
		support:   support,
		mass:      mass,
		cumprob:   cumprob,
		defect:    defect,
		loglike:   ll,
		iter:      iter,
		converged: conv,
		blocks:    blocks,
		nobs:      lc.NumObs(),
	}
}
