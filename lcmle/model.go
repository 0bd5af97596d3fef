package lcmle

import (
	"log"

	"github.com/ChaoyuYuan/iclogcondist/icdata"
)

// Config defines configuration parameters for fitting the log-concave
// distribution function MLE.
type Config struct {

	// MaxIter is the iteration budget of the outer ICM loop.
	MaxIter int

	// CTol is the tolerance below which a positive second difference of
	// the fitted log distribution function (in slope units) is treated
	// as zero.  It controls both the merge rule of the active set and
	// the convergence test, and is the main reproducibility knob for
	// fitted curves near the constraint boundary.
	CTol float64

	// LTol is the smallest log-likelihood improvement that counts as
	// progress; once gains fall below LTol with a stable active set the
	// fit is declared converged.
	LTol float64

	// PFloor is the smallest probability mass used when taking logs.
	PFloor float64

	// Start computes the unconstrained NPMLE used as a warm start.  If
	// nil, Turnbull self-consistency iteration is used.
	Start MassSolver

	// If not nil, write iteration progress here.
	Log *log.Logger
}

// DefaultConfig returns a default configuration for fitting the log-concave
// distribution function MLE.
func DefaultConfig() *Config {
	return &Config{
		MaxIter: 500,
		CTol:    1e-8,
		LTol:    1e-10,
		PFloor:  1e-12,
	}
}

// LCDist represents the log-concave distribution function MLE for a dataset
// of interval-censored observations.  The model value owns all working state
// of one fit; independent fits over different datasets may run concurrently.
type LCDist struct {
	str    *icdata.IntervalStructure
	config *Config

	// Finite support points, the right endpoints of the bounded
	// innermost intervals.
	tau []float64

	// Working buffers for the ICM iterations.
	grad   []float64
	curv   []float64
	target []float64
	wgt    []float64
	cand   []float64
	cdf    []float64
}

// NewLCDist creates a model for computing the log-concave distribution
// function MLE from the given dataset.  Pass a nil config to use the
// defaults.
func NewLCDist(ds *icdata.Dataset, config *Config) (*LCDist, error) {

	if config == nil {
		config = DefaultConfig()
	}

	str, err := icdata.NewIntervalStructure(ds)
	if err != nil {
		return nil, err
	}

	m := str.NumSupport()

	lc := &LCDist{
		str:    str,
		config: config,
		tau:    str.Support(),
		grad:   make([]float64, m),
		curv:   make([]float64, m),
		target: make([]float64, m),
		wgt:    make([]float64, m),
		cand:   make([]float64, m),
		cdf:    make([]float64, m),
	}

	return lc, nil
}

// NumObs returns the number of observations in the dataset.
func (lc *LCDist) NumObs() int {
	return lc.str.Data().NumObs()
}

// NumSupport returns the number of finite support points of the estimate.
func (lc *LCDist) NumSupport() int {
	return lc.str.NumSupport()
}

// Structure returns the interval structure underlying the model.
func (lc *LCDist) Structure() *icdata.IntervalStructure {
	return lc.str
}
