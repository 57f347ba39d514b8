package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	sentinel "github.com/sartorproj/marketfit/errors"
)

// Regression holds an ordinary least squares fit y = Intercept + Slope*x.
type Regression struct {
	X []float64
	Y []float64

	Intercept   float64
	Slope       float64
	RSquared    float64
	SlopeStdErr float64
}

// OLS fits a simple linear regression of y on x.
func OLS(x, y []float64) (*Regression, error) {
	if len(x) != len(y) {
		return nil, sentinel.InvalidParameter("ols.y", len(y), "length must match x")
	}
	n := len(x)
	if n < 3 {
		return nil, sentinel.InsufficientData("ols", 3, n)
	}
	if err := checkFinite("ols", x); err != nil {
		return nil, err
	}
	if err := checkFinite("ols", y); err != nil {
		return nil, err
	}

	meanX := stat.Mean(x, nil)
	sxx := 0.0
	for _, v := range x {
		d := v - meanX
		sxx += d * d
	}
	if sxx == 0 {
		return nil, sentinel.DegenerateInput("ols", "regressor has zero variance")
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)

	sse := 0.0
	for i := range x {
		r := y[i] - (alpha + beta*x[i])
		sse += r * r
	}

	r2 := stat.RSquared(x, y, nil, alpha, beta)
	if math.IsNaN(r2) {
		// constant y is fitted exactly
		r2 = 1
	}

	return &Regression{
		X:           append([]float64(nil), x...),
		Y:           append([]float64(nil), y...),
		Intercept:   alpha,
		Slope:       beta,
		RSquared:    r2,
		SlopeStdErr: math.Sqrt(sse / float64(n-2) / sxx),
	}, nil
}

// Predict evaluates the fitted line at x.
func (r *Regression) Predict(x float64) float64 {
	return r.Intercept + r.Slope*x
}
