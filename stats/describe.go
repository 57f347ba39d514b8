package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	sentinel "github.com/sartorproj/marketfit/errors"
	"github.com/sartorproj/marketfit/timeseries"
)

// DeviationReport summarizes how far a sample departs from a normal
// distribution centred on zero.
type DeviationReport struct {
	N int

	SkewZ      float64
	SkewPValue float64

	KurtosisZ      float64
	KurtosisPValue float64

	// One-sample t-test of H0: mean == 0.
	TStatistic float64
	TPValue    float64

	Mean   float64
	Median float64
	Std    float64 // sample standard deviation (n-1)
	Min    float64
	Max    float64
}

// Describe computes the deviation statistics of x. It needs at least
// MinSkewTestN observations and a non-zero variance.
func Describe(x []float64) (*DeviationReport, error) {
	n := len(x)
	if n < MinSkewTestN {
		return nil, sentinel.InsufficientData("describe", MinSkewTestN, n)
	}
	if err := checkFinite("describe", x); err != nil {
		return nil, err
	}

	mean, std := stat.MeanStdDev(x, nil)
	if std == 0 || math.IsNaN(std) {
		return nil, sentinel.DegenerateInput("describe", "zero variance")
	}

	skew, err := SkewTest(x)
	if err != nil {
		return nil, err
	}
	kurt, err := KurtosisTest(x)
	if err != nil {
		return nil, err
	}
	tt, err := TTest1Samp(x, 0)
	if err != nil {
		return nil, err
	}

	return &DeviationReport{
		N:              n,
		SkewZ:          skew.Statistic,
		SkewPValue:     skew.PValue,
		KurtosisZ:      kurt.Statistic,
		KurtosisPValue: kurt.PValue,
		TStatistic:     tt.Statistic,
		TPValue:        tt.PValue,
		Mean:           mean,
		Median:         timeseries.Median(x),
		Std:            std,
		Min:            floats.Min(x),
		Max:            floats.Max(x),
	}, nil
}

// DescribeSeries is Describe applied to the values of s.
func DescribeSeries(s *timeseries.Series) (*DeviationReport, error) {
	return Describe(s.Values)
}
