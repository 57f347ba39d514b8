package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	sentinel "github.com/sartorproj/marketfit/errors"
)

// ACFResult holds sample autocorrelations with their 95% bounds.
type ACFResult struct {
	Lags       []int
	Values     []float64
	ConfBounds float64 // ±1.96/sqrt(n)
}

// ACF computes the sample autocorrelation of x for lags 0 through maxLag.
// maxLag is capped at len(x)-1.
func ACF(x []float64, maxLag int) (*ACFResult, error) {
	n := len(x)
	if n < 2 {
		return nil, sentinel.InsufficientData("acf", 2, n)
	}
	if maxLag < 0 {
		return nil, sentinel.InvalidParameter("acf.maxLag", maxLag, "must be non-negative")
	}
	if maxLag >= n {
		maxLag = n - 1
	}

	mean := stat.Mean(x, nil)
	denom := 0.0
	for _, v := range x {
		d := v - mean
		denom += d * d
	}
	if denom == 0 {
		return nil, sentinel.DegenerateInput("acf", "zero variance")
	}

	res := &ACFResult{
		Lags:       make([]int, maxLag+1),
		Values:     make([]float64, maxLag+1),
		ConfBounds: 1.96 / math.Sqrt(float64(n)),
	}
	for k := 0; k <= maxLag; k++ {
		sum := 0.0
		for i := k; i < n; i++ {
			sum += (x[i] - mean) * (x[i-k] - mean)
		}
		res.Lags[k] = k
		res.Values[k] = sum / denom
	}

	return res, nil
}

// SignificantLags returns the lags (excluding 0) whose autocorrelation lies
// outside the confidence bounds.
func (r *ACFResult) SignificantLags() []int {
	var significant []int
	for i := 1; i < len(r.Values); i++ {
		if math.Abs(r.Values[i]) > r.ConfBounds {
			significant = append(significant, r.Lags[i])
		}
	}
	return significant
}
