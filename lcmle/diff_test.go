// Test the log-likelihood evaluator using numeric derivatives.  The tests
// confirm that the analytic score functions agree with numeric derivatives
// of the log-likelihood, both in mass space and in log-CDF space.

package lcmle

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"

	"github.com/ChaoyuYuan/iclogcondist/icdata"
)

const (
	tol = 1e-5
)

func data1() *icdata.Dataset {

	left := []float64{0, 1, 0, 2, 1}
	right := []float64{1, 2, 2, 3, 3}

	ds, err := icdata.NewDataset(left, right)
	if err != nil {
		panic(err)
	}

	return ds
}

func data2() *icdata.Dataset {

	inf := math.Inf(1)
	left := []float64{0, 0, 1, 2, 3, 0, 2}
	right := []float64{1, 2, inf, 3, inf, 3, inf}

	ds, err := icdata.NewDataset(left, right)
	if err != nil {
		panic(err)
	}

	return ds
}

func data3() *icdata.Dataset {

	left := []float64{0, 0.5, 1.5, 0, 2.5}
	right := []float64{1, 2, 3, 3, 4}

	ds, err := icdata.NewDataset(left, right)
	if err != nil {
		panic(err)
	}

	return ds
}

func TestScoreMass(t *testing.T) {

	for _, ds := range []*icdata.Dataset{data1(), data2(), data3()} {

		str, err := icdata.NewIntervalStructure(ds)
		if err != nil {
			t.Fatal(err)
		}

		ni := str.NumIntervals()

		masses := [][]float64{
			uniformMass(ni),
			rampMass(ni),
		}

		loglike := func(p []float64) float64 {
			return LogLikeMass(str, p)
		}

		fdset := &fd.Settings{
			Formula: fd.Forward,
			Step:    1e-7,
		}

		ngrad := make([]float64, ni)
		score := make([]float64, ni)

		for _, p := range masses {
			fd.Gradient(ngrad, loglike, p, fdset)
			ScoreMass(str, p, score)
			if !floats.EqualApprox(score, ngrad, tol) {
				t.Errorf("mass score: analytic %v, numeric %v", score, ngrad)
			}
		}
	}
}

func TestScorePsi(t *testing.T) {

	for _, ds := range []*icdata.Dataset{data1(), data2(), data3()} {

		lc, err := NewLCDist(ds, nil)
		if err != nil {
			t.Fatal(err)
		}

		m := lc.NumSupport()

		// A strictly increasing log sub-distribution function.
		psi := make([]float64, m)
		for j := 0; j < m; j++ {
			psi[j] = math.Log(0.8 * float64(j+1) / float64(m))
		}

		loglike := func(x []float64) float64 {
			return lc.logLike(x)
		}

		fdset := &fd.Settings{
			Formula: fd.Forward,
			Step:    1e-7,
		}

		ngrad := make([]float64, m)
		score := make([]float64, m)

		fd.Gradient(ngrad, loglike, psi, fdset)
		lc.score(psi, score)
		if !floats.EqualApprox(score, ngrad, tol) {
			t.Errorf("psi score: analytic %v, numeric %v", score, ngrad)
		}
	}
}

func TestCurvature(t *testing.T) {

	for _, ds := range []*icdata.Dataset{data1(), data2(), data3()} {

		lc, err := NewLCDist(ds, nil)
		if err != nil {
			t.Fatal(err)
		}

		m := lc.NumSupport()

		psi := make([]float64, m)
		for j := 0; j < m; j++ {
			psi[j] = math.Log(0.9 * float64(j+1) / float64(m))
		}

		fdset := &fd.Settings{
			Formula: fd.Central,
			Step:    1e-5,
		}

		score := make([]float64, m)
		curv := make([]float64, m)
		lc.curvature(psi, curv)

		// The diagonal of the Hessian is the derivative of each score
		// coordinate in its own direction.
		for j := 0; j < m; j++ {
			jj := j
			dj := func(x []float64) float64 {
				lc.score(x, score)
				return score[jj]
			}
			nd := fd.Derivative(func(v float64) float64 {
				z := make([]float64, m)
				copy(z, psi)
				z[jj] = v
				return dj(z)
			}, psi[jj], fdset)
			if math.Abs(nd-curv[j]) > 1e-4*(1+math.Abs(nd)) {
				t.Errorf("curvature %d: analytic %v, numeric %v", j, curv[j], nd)
			}
		}
	}
}

func uniformMass(ni int) []float64 {
	p := make([]float64, ni)
	for i := range p {
		p[i] = 1 / float64(ni)
	}
	return p
}

func rampMass(ni int) []float64 {
	p := make([]float64, ni)
	var s float64
	for i := range p {
		p[i] = float64(i + 1)
		s += p[i]
	}
	for i := range p {
		p[i] /= s
	}
	return p
}
