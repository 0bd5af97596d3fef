package icdata

import "fmt"

// MalformedIntervalError indicates an observation whose censoring interval
// is not of the form (L, R] with 0 <= L < R.  The index refers to the row
// of the input data.
type MalformedIntervalError struct {
	Index int
	L     float64
	R     float64
}

func (e *MalformedIntervalError) Error() string {
	return fmt.Sprintf("observation %d: (%v, %v] is not a valid censoring interval",
		e.Index, e.L, e.R)
}

// InfeasibleConfigurationError indicates that the censoring pattern does not
// identify any distribution function, e.g. when every observation is right
// unbounded and no probability mass can be placed at a finite time.
type InfeasibleConfigurationError struct {
	Msg string
}

func (e *InfeasibleConfigurationError) Error() string {
	return e.Msg
}
