package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	sentinel "github.com/sartorproj/marketfit/errors"
)

// DefaultTailSigma is the z-score beyond which an observation counts as a tail event.
const DefaultTailSigma = 3.0

// TailReport compares the number of k-sigma events against the normal expectation.
type TailReport struct {
	K     float64
	Lower []int // indices with z < -K
	Upper []int // indices with z > K

	Observed int
	Expected float64
	// Ratio is Observed/Expected; values well above 1 indicate fat tails.
	Ratio float64

	ExcessKurtosis float64
}

// Tails locates observations more than k sample standard deviations from the mean.
func Tails(x []float64, k float64) (*TailReport, error) {
	if k <= 0 || math.IsNaN(k) {
		return nil, sentinel.InvalidParameter("tails.k", k, "must be positive")
	}
	n := len(x)
	if n < 4 {
		return nil, sentinel.InsufficientData("tails", 4, n)
	}
	if err := checkFinite("tails", x); err != nil {
		return nil, err
	}

	mean, std := stat.MeanStdDev(x, nil)
	if std == 0 {
		return nil, sentinel.DegenerateInput("tails", "zero variance")
	}

	report := &TailReport{K: k}
	for i, v := range x {
		z := (v - mean) / std
		switch {
		case z < -k:
			report.Lower = append(report.Lower, i)
		case z > k:
			report.Upper = append(report.Upper, i)
		}
	}

	report.Observed = len(report.Lower) + len(report.Upper)
	report.Expected = float64(n) * 2 * distuv.UnitNormal.CDF(-k)
	if report.Expected > 0 {
		report.Ratio = float64(report.Observed) / report.Expected
	}
	report.ExcessKurtosis = stat.ExKurtosis(x, nil)

	return report, nil
}
