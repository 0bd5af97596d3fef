package lcmle

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ChaoyuYuan/iclogcondist/icdata"
)

// MassSolver computes an unconstrained NPMLE mass vector over the innermost
// intervals of a structure.  Implementations are interchangeable; the fit
// only uses the returned masses as a warm start.
type MassSolver interface {
	Solve(str *icdata.IntervalStructure) ([]float64, error)
}

// Turnbull computes the unconstrained NPMLE by self-consistency iteration.
// The zero value uses default settings.
type Turnbull struct {

	// MaxIter is the iteration budget, 1000 if zero.
	MaxIter int

	// Tol stops the iteration when no mass changes by more than this
	// amount in one pass, 1e-10 if zero.
	Tol float64
}

// Solve runs the self-consistency iteration to convergence and returns the
// mass vector.
func (tb *Turnbull) Solve(str *icdata.IntervalStructure) ([]float64, error) {

	maxiter := tb.MaxIter
	if maxiter == 0 {
		maxiter = 1000
	}
	tol := tb.Tol
	if tol == 0 {
		tol = 1e-10
	}

	ds := str.Data()
	ni := str.NumIntervals()
	wtot := ds.TotalWeight()

	p := make([]float64, ni)
	for i := range p {
		p[i] = 1 / float64(ni)
	}

	q := make([]float64, ni)
	cum := make([]float64, ni)

	for iter := 0; iter < maxiter; iter++ {

		floats.CumSum(cum, p)

		for i := range q {
			q[i] = 0
		}

		for k := 0; k < ds.NumObs(); k++ {
			a, b := str.Range(k)
			pk := cum[b]
			if a > 0 {
				pk -= cum[a-1]
			}
			if pk <= 0 {
				return nil, &icdata.InfeasibleConfigurationError{
					Msg: "self-consistency iteration reached a configuration with zero mass on an observation",
				}
			}
			w := ds.Weight(k) / pk
			for i := a; i <= b; i++ {
				q[i] += w * p[i]
			}
		}

		var de float64
		for i := range q {
			q[i] /= wtot
			d := math.Abs(q[i] - p[i])
			if d > de {
				de = d
			}
			p[i] = q[i]
		}

		if de < tol {
			break
		}
	}

	return p, nil
}
