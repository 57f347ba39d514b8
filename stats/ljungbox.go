package stats

import (
	"gonum.org/v1/gonum/stat/distuv"

	sentinel "github.com/sartorproj/marketfit/errors"
)

// MinLjungBoxN is the shortest sample the Ljung-Box test accepts.
const MinLjungBoxN = 10

// LjungBoxResult represents the result of a Ljung-Box test.
type LjungBoxResult struct {
	Statistic float64
	PValue    float64
	Lags      int
	DOF       int
}

// LjungBox tests for autocorrelation up to the given lag.
// H0: the observations are independently distributed. If p-value < 0.05 the
// null is rejected and the series shows significant serial dependence.
// fitdf is subtracted from the degrees of freedom (zero for raw returns).
func LjungBox(x []float64, lags, fitdf int) (*LjungBoxResult, error) {
	n := len(x)
	if n < MinLjungBoxN {
		return nil, sentinel.InsufficientData("ljungbox", MinLjungBoxN, n)
	}
	if lags < 1 {
		return nil, sentinel.InvalidParameter("ljungbox.lags", lags, "must be at least 1")
	}
	if lags >= n {
		lags = n - 1
	}

	acf, err := ACF(x, lags)
	if err != nil {
		return nil, err
	}

	q := 0.0
	for k := 1; k <= lags; k++ {
		q += (acf.Values[k] * acf.Values[k]) / float64(n-k)
	}
	q *= float64(n * (n + 2))

	dof := lags - fitdf
	if dof < 1 {
		dof = 1
	}

	chi2 := distuv.ChiSquared{K: float64(dof)}

	return &LjungBoxResult{
		Statistic: q,
		PValue:    chi2.Survival(q),
		Lags:      lags,
		DOF:       dof,
	}, nil
}

// DefaultLjungBoxLags is min(10, n/5), the usual choice for daily returns.
func DefaultLjungBoxLags(n int) int {
	lags := n / 5
	if lags > 10 {
		lags = 10
	}
	if lags < 1 {
		lags = 1
	}
	return lags
}
