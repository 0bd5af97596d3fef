// Package icdata holds interval-censored datasets and derives the Turnbull
// interval structure on which any nonparametric estimate places its mass.
package icdata

import (
	"fmt"
	"io"
	"math"

	"github.com/kshedden/dstream/dstream"
)

// Dtype is the data type of all numeric values in a dataset.
type Dtype = float64

// Dataset holds mixed-case interval-censored observations in columnar form.
// Each observation states that an unobserved event time lies in the interval
// (left, right], where right may be +Inf.  Case weights are optional and
// default to 1.
type Dataset struct {
	left   []Dtype
	right  []Dtype
	weight []Dtype
}

// NewDataset creates a dataset from parallel slices of left and right
// interval endpoints.  The slices are copied.  Rows with L < 0, L >= R, or
// non-numeric values fail with a MalformedIntervalError.
func NewDataset(left, right []Dtype) (*Dataset, error) {

	if len(left) != len(right) {
		panic("icdata: left and right endpoint slices have different lengths")
	}
	if len(left) == 0 {
		panic("icdata: empty dataset")
	}

	for i := range left {
		l := left[i]
		r := right[i]
		if math.IsNaN(l) || math.IsNaN(r) || l < 0 || l >= r || math.IsInf(l, 1) {
			return nil, &MalformedIntervalError{Index: i, L: l, R: r}
		}
	}

	ds := &Dataset{
		left:  make([]Dtype, len(left)),
		right: make([]Dtype, len(right)),
	}
	copy(ds.left, left)
	copy(ds.right, right)

	return ds, nil
}

// Weights attaches positive case weights to the dataset and returns the
// dataset for chaining.
func (ds *Dataset) Weights(w []Dtype) *Dataset {

	if len(w) != len(ds.left) {
		msg := fmt.Sprintf("icdata: %d weights for %d observations", len(w), len(ds.left))
		panic(msg)
	}
	for i, x := range w {
		if !(x > 0) {
			msg := fmt.Sprintf("icdata: weight %d is not positive", i)
			panic(msg)
		}
	}

	ds.weight = make([]Dtype, len(w))
	copy(ds.weight, w)

	return ds
}

// NumObs returns the number of observations.
func (ds *Dataset) NumObs() int {
	return len(ds.left)
}

// Left returns the left interval endpoints.
func (ds *Dataset) Left() []Dtype {
	return ds.left
}

// Right returns the right interval endpoints.
func (ds *Dataset) Right() []Dtype {
	return ds.right
}

// Weight returns the case weight of observation i.
func (ds *Dataset) Weight(i int) Dtype {
	if ds.weight == nil {
		return 1
	}
	return ds.weight[i]
}

// TotalWeight returns the sum of all case weights.
func (ds *Dataset) TotalWeight() Dtype {
	if ds.weight == nil {
		return Dtype(len(ds.left))
	}
	var w Dtype
	for _, x := range ds.weight {
		w += x
	}
	return w
}

// FromDstream extracts the named left and right endpoint variables from a
// dstream and returns them as a Dataset.
func FromDstream(da dstream.Dstream, leftvar, rightvar string) (*Dataset, error) {

	lpos, rpos := -1, -1
	for k, na := range da.Names() {
		switch na {
		case leftvar:
			lpos = k
		case rightvar:
			rpos = k
		}
	}
	if lpos == -1 {
		return nil, fmt.Errorf("left endpoint variable '%s' not found", leftvar)
	}
	if rpos == -1 {
		return nil, fmt.Errorf("right endpoint variable '%s' not found", rightvar)
	}

	var left, right []float64
	da.Reset()
	for da.Next() {
		left = append(left, da.GetPos(lpos).([]float64)...)
		right = append(right, da.GetPos(rpos).([]float64)...)
	}

	return NewDataset(left, right)
}

// FromCSV reads a CSV stream with a header row and returns the named left
// and right endpoint columns as a Dataset.  Right endpoints may be given as
// +Inf for right-unbounded intervals.
func FromCSV(r io.Reader, leftvar, rightvar string) (*Dataset, error) {

	types := []dstream.VarType{
		{Name: leftvar, Type: dstream.Float64},
		{Name: rightvar, Type: dstream.Float64},
	}

	da := dstream.FromCSV(r).SetTypes(types).HasHeader().Done()
	dm := dstream.MemCopy(da, false)

	return FromDstream(dm, leftvar, rightvar)
}
