package fractal

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	sentinel "github.com/sartorproj/marketfit/errors"
	"github.com/sartorproj/marketfit/stats"
	"github.com/sartorproj/marketfit/timeseries"
)

// Lag range of the lag-variance method.
const (
	MinLag = 2
	MaxLag = 99
)

// DefaultTolerance is the half-width of the band around H = 0.5 left unclassified.
const DefaultTolerance = 0.05

// WindowFractions are the prefix lengths, as fractions of N, used by the
// rescaled-range method.
var WindowFractions = []float64{1, 1.0 / 2, 1.0 / 4, 1.0 / 8, 1.0 / 16, 1.0 / 32}

// Method identifies how an Estimate was produced.
type Method string

const (
	MethodRescaledRange Method = "rescaled_range"
	MethodLagVariance   Method = "lag_variance"
)

// Class is the qualitative reading of a Hurst exponent.
type Class string

const (
	Trending      Class = "trending"
	MeanReverting Class = "mean_reverting"
	Unclassified  Class = "unclassified"
)

// Estimate holds a Hurst exponent, the fractal dimension D = 2 - H, and the
// log-log regression it came from.
type Estimate struct {
	Method     Method
	H          float64
	D          float64
	Class      Class
	Regression *stats.Regression
}

// Estimator computes Hurst exponents by both methods.
type Estimator struct {
	// Tolerance widens the unclassified band to |H - 0.5| <= Tolerance.
	Tolerance float64
}

// DefaultEstimator returns an Estimator with DefaultTolerance.
func DefaultEstimator() *Estimator {
	return &Estimator{Tolerance: DefaultTolerance}
}

// RescaledRange estimates H with DefaultEstimator.
func RescaledRange(x []float64) (*Estimate, error) {
	return DefaultEstimator().RescaledRange(x)
}

// LagVariance estimates H with DefaultEstimator.
func LagVariance(x []float64) (*Estimate, error) {
	return DefaultEstimator().LagVariance(x)
}

// RescaledRange computes R/S on the first floor(N*f) observations for each
// f in WindowFractions and regresses log(R/S) on log(window size).
// H is twice the fitted slope.
func (e *Estimator) RescaledRange(x []float64) (*Estimate, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	n := len(x)
	smallest := int(math.Floor(float64(n) * WindowFractions[len(WindowFractions)-1]))
	if smallest < 2 {
		return nil, sentinel.InsufficientData("hurst.rescaled_range", 64, n)
	}
	if err := checkFinite("hurst.rescaled_range", x); err != nil {
		return nil, err
	}

	logSize := make([]float64, len(WindowFractions))
	logRS := make([]float64, len(WindowFractions))
	for i, f := range WindowFractions {
		size := int(math.Floor(float64(n) * f))
		rs, err := rescaledRange(x[:size])
		if err != nil {
			return nil, err
		}
		logSize[i] = math.Log(float64(size))
		logRS[i] = math.Log(rs)
	}

	return e.estimate(MethodRescaledRange, logSize, logRS)
}

// rescaledRange returns R/S for one window: the range of the cumulative
// mean-adjusted sum divided by the population standard deviation.
func rescaledRange(window []float64) (float64, error) {
	mean := stat.Mean(window, nil)

	z := make([]float64, len(window))
	sum := 0.0
	for i, v := range window {
		sum += v - mean
		z[i] = sum
	}
	r := floats.Max(z) - floats.Min(z)
	s := math.Sqrt(stat.Moment(2, window, nil))

	if s == 0 || r == 0 {
		return 0, sentinel.DegenerateInput("hurst.rescaled_range", "window has zero range or variance")
	}
	return r / s, nil
}

// LagVariance regresses log(tau) on log(lag) for lags MinLag..MaxLag, where
// tau is the square root of the population standard deviation of
// x[lag:] - x[:len(x)-lag]. H is twice the fitted slope.
func (e *Estimator) LagVariance(x []float64) (*Estimate, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	n := len(x)
	if n <= MaxLag+1 {
		return nil, sentinel.InsufficientData("hurst.lag_variance", MaxLag+2, n)
	}
	if err := checkFinite("hurst.lag_variance", x); err != nil {
		return nil, err
	}

	count := MaxLag - MinLag + 1
	logLag := make([]float64, count)
	logTau := make([]float64, count)
	series := timeseries.New("hurst", x)
	for i, lag := 0, MinLag; lag <= MaxLag; i, lag = i+1, lag+1 {
		d := series.DiffAt(lag).Values

		tau := math.Sqrt(math.Sqrt(stat.Moment(2, d, nil)))
		if tau == 0 {
			return nil, sentinel.DegenerateInput("hurst.lag_variance", "lag differences have zero variance")
		}
		logLag[i] = math.Log(float64(lag))
		logTau[i] = math.Log(tau)
	}

	return e.estimate(MethodLagVariance, logLag, logTau)
}

func (e *Estimator) estimate(method Method, x, y []float64) (*Estimate, error) {
	reg, err := stats.OLS(x, y)
	if err != nil {
		return nil, err
	}

	h := 2 * reg.Slope
	d := 2 - h

	return &Estimate{
		Method:     method,
		H:          h,
		D:          d,
		Class:      Classify(h, d, e.Tolerance),
		Regression: reg,
	}, nil
}

func (e *Estimator) validate() error {
	if math.IsNaN(e.Tolerance) || e.Tolerance < 0 || e.Tolerance >= 0.5 {
		return sentinel.InvalidParameter("tolerance", e.Tolerance, "must lie in [0, 0.5)")
	}
	return nil
}

// Classify reads H and D: persistent when H > 0.5 and D < 1.5, mean-reverting
// when H < 0.5 and D > 1.5. Exponents within tolerance of 0.5 are consistent
// with a random walk and stay unclassified.
func Classify(h, d, tolerance float64) Class {
	switch {
	case math.IsNaN(h) || math.Abs(h-0.5) <= tolerance:
		return Unclassified
	case h > 0.5 && d < 1.5:
		return Trending
	case h < 0.5 && d > 1.5:
		return MeanReverting
	default:
		return Unclassified
	}
}

func checkFinite(op string, x []float64) error {
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return sentinel.InvalidParameter(op+".x", i, "value is not finite")
		}
	}
	return nil
}
