package lcmle

import (
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/ChaoyuYuan/iclogcondist/icdata"
)

// GradientNPMLE computes the unconstrained NPMLE by maximizing the
// log-likelihood over a softmax parametrization of the mass vector with a
// Gonum optimizer.  It is slower than Turnbull self-consistency but provides
// an independent cross-check of the warm start.
type GradientNPMLE struct {

	// Method is the Gonum optimization method, BFGS with More-Thuente
	// line search if nil.
	Method optimize.Method

	// Settings configures the Gonum optimization routine.
	Settings *optimize.Settings
}

// softmax fills p with the probabilities corresponding to the logits x.
func softmax(x, p []float64) {

	mx := x[0]
	for _, v := range x {
		if v > mx {
			mx = v
		}
	}

	var s float64
	for i, v := range x {
		p[i] = math.Exp(v - mx)
		s += p[i]
	}
	for i := range p {
		p[i] /= s
	}
}

// Solve maximizes the unconstrained likelihood and returns the mass vector.
func (gs *GradientNPMLE) Solve(str *icdata.IntervalStructure) ([]float64, error) {

	ni := str.NumIntervals()

	pbuf := make([]float64, ni)
	gbuf := make([]float64, ni)

	p := optimize.Problem{
		Func: func(x []float64) float64 {
			softmax(x, pbuf)
			return -LogLikeMass(str, pbuf)
		},
		Grad: func(grad, x []float64) {
			softmax(x, pbuf)
			ScoreMass(str, pbuf, gbuf)

			// Chain rule through the softmax map.
			var d float64
			for i := range pbuf {
				d += pbuf[i] * gbuf[i]
			}
			for i := range grad {
				grad[i] = -pbuf[i] * (gbuf[i] - d)
			}
		},
	}

	method := gs.Method
	if method == nil {
		method = &optimize.BFGS{
			Linesearcher: &optimize.MoreThuente{},
		}
	}

	settings := gs.Settings
	if settings == nil {
		settings = &optimize.Settings{
			GradientThreshold: 1e-8,
		}
	}

	start := make([]float64, ni)
	optrslt, err := optimize.Minimize(p, start, settings, method)
	if err != nil && optrslt == nil {
		return nil, err
	}

	mass := make([]float64, ni)
	softmax(optrslt.X, mass)

	return mass, nil
}
