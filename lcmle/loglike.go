package lcmle

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ChaoyuYuan/iclogcondist/icdata"
)

// LogLikeMass returns the observed-data log-likelihood of the mass vector p,
// which assigns one probability to each innermost interval of str.  The
// return value is -Inf when some observation's compatible intervals carry no
// mass, which signals an infeasible configuration rather than an error.
func LogLikeMass(str *icdata.IntervalStructure, p []float64) float64 {

	ds := str.Data()
	ni := str.NumIntervals()

	cum := floats.CumSum(make([]float64, ni), p)

	var ll float64
	for k := 0; k < ds.NumObs(); k++ {
		a, b := str.Range(k)
		pk := cum[b]
		if a > 0 {
			pk -= cum[a-1]
		}
		if pk <= 0 {
			return math.Inf(-1)
		}
		ll += ds.Weight(k) * math.Log(pk)
	}

	return ll
}

// ScoreMass computes the gradient of LogLikeMass with respect to p, storing
// the result in grad.
func ScoreMass(str *icdata.IntervalStructure, p, grad []float64) {

	ds := str.Data()
	ni := str.NumIntervals()

	cum := floats.CumSum(make([]float64, ni), p)

	for i := range grad {
		grad[i] = 0
	}

	for k := 0; k < ds.NumObs(); k++ {
		a, b := str.Range(k)
		pk := cum[b]
		if a > 0 {
			pk -= cum[a-1]
		}
		if pk <= 0 {
			continue
		}
		w := ds.Weight(k) / pk
		for i := a; i <= b; i++ {
			grad[i] += w
		}
	}
}

// obsProb returns the probability of observation k under the cumulative
// values cdf at the finite support points.  Right-unbounded compatibility
// ranges use a total mass of 1.
func (lc *LCDist) obsProb(cdf []float64, k int) float64 {

	m := len(cdf)
	a, b := lc.str.Range(k)

	hi := 1.0
	if b < m {
		hi = cdf[b]
	}
	if a > 0 {
		hi -= cdf[a-1]
	}

	return hi
}

// logLike returns the log-likelihood at psi, the log of the distribution
// function at the finite support points.
func (lc *LCDist) logLike(psi []float64) float64 {

	ds := lc.str.Data()
	floor := lc.config.PFloor

	cdf := lc.cdf
	for j, v := range psi {
		cdf[j] = math.Exp(v)
	}

	var ll float64
	for k := 0; k < ds.NumObs(); k++ {
		pk := lc.obsProb(cdf, k)
		if pk <= 0 {
			return math.Inf(-1)
		}
		if pk < floor {
			pk = floor
		}
		ll += ds.Weight(k) * math.Log(pk)
	}

	return ll
}

// score computes the gradient of the log-likelihood with respect to psi,
// storing the result in g.
func (lc *LCDist) score(psi, g []float64) {

	ds := lc.str.Data()
	m := len(psi)
	floor := lc.config.PFloor

	cdf := lc.cdf
	for j, v := range psi {
		cdf[j] = math.Exp(v)
	}

	for j := range g {
		g[j] = 0
	}

	for k := 0; k < ds.NumObs(); k++ {
		pk := lc.obsProb(cdf, k)
		if pk < floor {
			pk = floor
		}
		w := ds.Weight(k)
		a, b := lc.str.Range(k)
		if b < m {
			g[b] += w * cdf[b] / pk
		}
		if a > 0 {
			g[a-1] -= w * cdf[a-1] / pk
		}
	}
}

// curvature computes the diagonal of the Hessian of the log-likelihood with
// respect to psi, storing the result in h.
func (lc *LCDist) curvature(psi, h []float64) {

	ds := lc.str.Data()
	m := len(psi)
	floor := lc.config.PFloor

	cdf := lc.cdf
	for j, v := range psi {
		cdf[j] = math.Exp(v)
	}

	for j := range h {
		h[j] = 0
	}

	for k := 0; k < ds.NumObs(); k++ {
		pk := lc.obsProb(cdf, k)
		if pk < floor {
			pk = floor
		}
		w := ds.Weight(k)
		a, b := lc.str.Range(k)
		if b < m {
			r := cdf[b] / pk
			h[b] += w * (r - r*r)
		}
		if a > 0 {
			r := cdf[a-1] / pk
			h[a-1] += w * (-r - r*r)
		}
	}
}
