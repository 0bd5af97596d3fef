package lcmle

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/ChaoyuYuan/iclogcondist/icdata"
)

// Results describes a fitted distribution function.  It is an immutable
// snapshot of the estimate and its diagnostics; all accessors are read-only
// and the returned slices must not be modified.
type Results struct {
	support   []float64
	mass      []float64
	cumprob   []float64
	defect    float64
	loglike   float64
	iter      int
	converged bool
	blocks    int
	nobs      int
}

// Support returns the finite support points of the estimate, sorted.
func (rslt *Results) Support() []float64 {
	return rslt.support
}

// Mass returns the probability mass placed at each support point.
func (rslt *Results) Mass() []float64 {
	return rslt.mass
}

// CumProb returns the estimated distribution function at each support point.
func (rslt *Results) CumProb() []float64 {
	return rslt.cumprob
}

// Defect returns the probability mass beyond the largest finite support
// point, which is nonzero only when the data contain right-unbounded
// intervals.
func (rslt *Results) Defect() float64 {
	return rslt.defect
}

// LogLike returns the log-likelihood of the fitted distribution.
func (rslt *Results) LogLike() float64 {
	return rslt.loglike
}

// NumIter returns the number of outer iterations performed by the fit.
func (rslt *Results) NumIter() int {
	return rslt.iter
}

// Converged reports whether the fit met its tolerances within the iteration
// budget.  A false value flags a best-effort estimate, not a failure.
func (rslt *Results) Converged() bool {
	return rslt.converged
}

// NumBlocks returns the number of linear segments of the fitted log
// distribution function.
func (rslt *Results) NumBlocks() int {
	return rslt.blocks
}

// Eval returns the fitted distribution function at the query points, using
// the right-continuous step convention: zero below the first support point
// and the total finite mass at and above the last one.
func (rslt *Results) Eval(x []float64) []float64 {

	v := make([]float64, len(x))
	for i, xi := range x {
		j := sort.SearchFloat64s(rslt.support, xi)
		switch {
		case j < len(rslt.support) && rslt.support[j] == xi:
			v[i] = rslt.cumprob[j]
		case j == 0:
			v[i] = 0
		default:
			v[i] = rslt.cumprob[j-1]
		}
	}

	return v
}

// MaxAbsDiff returns the largest absolute difference between two fitted
// distribution functions over the whole time axis.  Both functions are step
// functions, so the supremum is attained at a support point of one of them.
func MaxAbsDiff(a, b *Results) float64 {

	pts := make([]float64, 0, len(a.support)+len(b.support))
	pts = append(pts, a.support...)
	pts = append(pts, b.support...)
	sort.Float64s(pts)

	fa := a.Eval(pts)
	fb := b.Eval(pts)

	var mx float64
	for i := range pts {
		d := fa[i] - fb[i]
		if d < 0 {
			d = -d
		}
		if d > mx {
			mx = d
		}
	}

	return mx
}

// Summary returns a text summary of the fitted distribution.
func (rslt *Results) Summary() string {

	conv := "yes"
	if !rslt.converged {
		conv = "no"
	}

	s := &icdata.SummaryTable{
		Title:    "Log-concave distribution function MLE",
		ColNames: []string{"Time", "Mass", "CumProb"},
		ColFmt: []icdata.Fmter{
			icdata.FloatFmt("%.4f"),
			icdata.FloatFmt("%.6f"),
			icdata.FloatFmt("%.6f"),
		},
		Cols: []interface{}{rslt.support, rslt.mass, rslt.cumprob},
		Top: []string{
			"Observations:", fmt.Sprintf("%d", rslt.nobs),
			"Support points:", fmt.Sprintf("%d", len(rslt.support)),
			"Log-likelihood:", fmt.Sprintf("%.6f", rslt.loglike),
			"Iterations:", fmt.Sprintf("%d", rslt.iter),
			"Converged:", conv,
		},
	}

	if rslt.defect > 0 {
		s.Msg = append(s.Msg,
			fmt.Sprintf("%.6f of the mass lies beyond the largest support point.", rslt.defect))
	}

	return s.String()
}

// FitUnconstrained computes the unconstrained NPMLE for the model's dataset
// using the configured mass solver, with no shape restriction.  It is the
// natural reference point for the constrained fit.
func (lc *LCDist) FitUnconstrained() (*Results, error) {

	solver := lc.config.Start
	if solver == nil {
		solver = &Turnbull{}
	}

	mass, err := solver.Solve(lc.str)
	if err != nil {
		return nil, err
	}

	m := lc.NumSupport()

	support := make([]float64, m)
	copy(support, lc.tau)

	pm := make([]float64, m)
	copy(pm, mass)
	cumprob := floats.CumSum(make([]float64, m), pm)

	var defect float64
	if lc.str.Unbounded() {
		defect = mass[m]
	}

	return &Results{
		support:   support,
		mass:      pm,
		cumprob:   cumprob,
		defect:    defect,
		loglike:   LogLikeMass(lc.str, mass),
		iter:      0,
		converged: true,
		blocks:    0,
		nobs:      lc.NumObs(),
	}, nil
}
