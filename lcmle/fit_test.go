package lcmle

import (
	"math"
	"strings"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ChaoyuYuan/iclogcondist/icdata"
)

// massStart seeds a fit with a fixed mass vector, bypassing the
// self-consistency iteration.
type massStart struct {
	p []float64
}

func (ms *massStart) Solve(str *icdata.IntervalStructure) ([]float64, error) {
	return ms.p, nil
}

func fitData(t *testing.T, left, right []float64) *Results {

	ds, err := icdata.NewDataset(left, right)
	if err != nil {
		t.Fatal(err)
	}
	lc, err := NewLCDist(ds, nil)
	if err != nil {
		t.Fatal(err)
	}
	rslt, err := lc.Fit()
	if err != nil {
		t.Fatal(err)
	}
	return rslt
}

func TestFitOnePoint(t *testing.T) {

	rslt := fitData(t, []float64{0}, []float64{1})

	if !floats.EqualApprox(rslt.Support(), []float64{1}, 1e-12) {
		t.Errorf("support %v", rslt.Support())
	}
	if !floats.EqualApprox(rslt.CumProb(), []float64{1}, 1e-12) {
		t.Errorf("cumprob %v", rslt.CumProb())
	}
	if !rslt.Converged() || rslt.NumIter() != 0 {
		t.Errorf("converged=%v iter=%d", rslt.Converged(), rslt.NumIter())
	}

	v := rslt.Eval([]float64{0.5, 1, 2})
	if !floats.EqualApprox(v, []float64{0, 1, 1}, 1e-12) {
		t.Errorf("eval %v", v)
	}
}

func TestFitTwoPoint(t *testing.T) {

	rslt := fitData(t, []float64{0, 1}, []float64{1, 2})

	if !floats.EqualApprox(rslt.CumProb(), []float64{0.5, 1}, 1e-6) {
		t.Errorf("cumprob %v", rslt.CumProb())
	}
	if math.Abs(rslt.LogLike()-2*math.Log(0.5)) > 1e-8 {
		t.Errorf("loglike %v", rslt.LogLike())
	}
	if !rslt.Converged() {
		t.Errorf("did not converge")
	}
}

// csLeft and csRight form a small mixed current status dataset whose last two
// subjects are right unbounded.
func csData() ([]float64, []float64) {
	inf := math.Inf(1)
	left := []float64{0, 0, 0, 1, 1, 2, 2, 3}
	right := []float64{1, 1, 2, 2, 3, 3, inf, inf}
	return left, right
}

func TestFitProperties(t *testing.T) {

	left, right := csData()
	rslt := fitData(t, left, right)

	if !rslt.Converged() {
		t.Errorf("did not converge")
	}

	cp := rslt.CumProb()
	tau := rslt.Support()

	// F is a sub-distribution function.
	for j, v := range cp {
		if v <= 0 || v > 1+1e-12 {
			t.Errorf("cumprob[%d] = %v out of range", j, v)
		}
		if j > 0 && v < cp[j-1]-1e-12 {
			t.Errorf("cumprob decreases at %d", j)
		}
	}

	// log F is concave on the support grid.
	for j := 1; j+1 < len(cp); j++ {
		sl := (math.Log(cp[j]) - math.Log(cp[j-1])) / (tau[j] - tau[j-1])
		sr := (math.Log(cp[j+1]) - math.Log(cp[j])) / (tau[j+1] - tau[j])
		if sr-sl > 1e-6 {
			t.Errorf("log concavity violated at %d: %v -> %v", j, sl, sr)
		}
	}

	if rslt.Defect() < 0 || rslt.Defect() > 1 {
		t.Errorf("defect %v", rslt.Defect())
	}
	if math.Abs(cp[len(cp)-1]+rslt.Defect()-1) > 1e-12 {
		t.Errorf("mass does not account for defect")
	}

	if !strings.Contains(rslt.Summary(), "Log-concave") {
		t.Errorf("unexpected summary:\n%s", rslt.Summary())
	}
}

func TestFitDominatedByNPMLE(t *testing.T) {

	// The shape constraint can only lower the likelihood.
	left, right := csData()

	ds, err := icdata.NewDataset(left, right)
	if err != nil {
		t.Fatal(err)
	}
	lc, err := NewLCDist(ds, nil)
	if err != nil {
		t.Fatal(err)
	}

	ru, err := lc.FitUnconstrained()
	if err != nil {
		t.Fatal(err)
	}
	rc, err := lc.Fit()
	if err != nil {
		t.Fatal(err)
	}

	if rc.LogLike() > ru.LogLike()+1e-8 {
		t.Errorf("constrained loglike %v exceeds unconstrained %v",
			rc.LogLike(), ru.LogLike())
	}

	d := MaxAbsDiff(rc, ru)
	if d < 0 || d > 1 {
		t.Errorf("max abs diff %v", d)
	}
}

func TestFitIdempotent(t *testing.T) {

	// Refitting from the fitted masses stays at the optimum.
	left, right := csData()

	ds, err := icdata.NewDataset(left, right)
	if err != nil {
		t.Fatal(err)
	}
	lc, err := NewLCDist(ds, nil)
	if err != nil {
		t.Fatal(err)
	}
	r1, err := lc.Fit()
	if err != nil {
		t.Fatal(err)
	}

	// One mass per innermost interval, including the unbounded one.
	p := make([]float64, 0, lc.Structure().NumIntervals())
	p = append(p, r1.Mass()...)
	if lc.Structure().Unbounded() {
		p = append(p, r1.Defect())
	}

	config := DefaultConfig()
	config.Start = &massStart{p: p}
	lc2, err := NewLCDist(ds, config)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := lc2.Fit()
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(r1.LogLike()-r2.LogLike()) > 1e-6 {
		t.Errorf("loglike moved from %v to %v", r1.LogLike(), r2.LogLike())
	}
	if MaxAbsDiff(r1, r2) > 1e-4 {
		t.Errorf("estimates differ by %v", MaxAbsDiff(r1, r2))
	}
}

func TestFitIterationBudget(t *testing.T) {

	// A fit that runs out of iterations still returns a feasible
	// sub-distribution function, flagged as not converged.
	event := distuv.Weibull{K: 2, Lambda: 2, Src: rand.NewSource(7)}
	inspect := distuv.Uniform{Min: 0, Max: 4, Src: rand.NewSource(8)}

	n := 300
	left := make([]float64, n)
	right := make([]float64, n)
	for i := 0; i < n; i++ {
		tm := event.Rand()
		c := inspect.Rand()
		if tm <= c {
			right[i] = c
		} else {
			left[i] = c
			right[i] = math.Inf(1)
		}
	}

	ds, err := icdata.NewDataset(left, right)
	if err != nil {
		t.Fatal(err)
	}

	lc, err := NewLCDist(ds, nil)
	if err != nil {
		t.Fatal(err)
	}
	full, err := lc.Fit()
	if err != nil {
		t.Fatal(err)
	}
	if !full.Converged() || full.NumIter() <= 1 {
		t.Fatalf("full fit: converged=%v iter=%d", full.Converged(), full.NumIter())
	}

	config := DefaultConfig()
	config.MaxIter = 1
	lc1, err := NewLCDist(ds, config)
	if err != nil {
		t.Fatal(err)
	}
	part, err := lc1.Fit()
	if err != nil {
		t.Fatal(err)
	}

	if part.Converged() {
		t.Errorf("budget-limited fit reported convergence")
	}
	if part.NumIter() != 1 {
		t.Errorf("got %d iterations, want 1", part.NumIter())
	}

	cp := part.CumProb()
	for j, v := range cp {
		if v <= 0 || v > 1+1e-12 {
			t.Errorf("cumprob[%d] = %v out of range", j, v)
		}
		if j > 0 && v < cp[j-1] {
			t.Errorf("cumprob decreases at %d", j)
		}
	}

	if part.LogLike() > full.LogLike()+1e-8 {
		t.Errorf("partial fit loglike %v exceeds full fit %v",
			part.LogLike(), full.LogLike())
	}
}

func TestFitEvalMonotone(t *testing.T) {

	left, right := csData()
	rslt := fitData(t, left, right)

	x := []float64{-1, 0, 0.5, 1, 1.5, 2, 2.5, 3, 10}
	v := rslt.Eval(x)

	for i := 1; i < len(v); i++ {
		if v[i] < v[i-1] {
			t.Errorf("eval not monotone at %v", x[i])
		}
	}
	if v[0] != 0 || v[1] != 0 {
		t.Errorf("eval below support should be zero: %v", v[0:2])
	}
	last := rslt.CumProb()[len(rslt.CumProb())-1]
	if v[len(v)-1] != last {
		t.Errorf("eval beyond support %v, want %v", v[len(v)-1], last)
	}
}
