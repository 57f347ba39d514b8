package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	sentinel "github.com/sartorproj/marketfit/errors"
)

// Bounds of the location search, as multiples of the sample range below the minimum.
const (
	minLocOffset = 1e-4
	maxLocOffset = 1e6
)

// LogNormalFit holds the maximum-likelihood parameters of a three-parameter
// log-normal distribution: log(x - Loc) ~ Normal(log(Scale), Shape).
type LogNormalFit struct {
	Shape float64
	Loc   float64
	Scale float64

	LogLikelihood float64

	// Degenerate is set for a constant sample; the fit is a point mass at Loc + Scale.
	Degenerate bool
}

// CDF evaluates the fitted distribution function.
func (f *LogNormalFit) CDF(x float64) float64 {
	if f.Degenerate {
		if x < f.Loc+f.Scale {
			return 0
		}
		return 1
	}
	if x <= f.Loc {
		return 0
	}
	return distuv.LogNormal{Mu: math.Log(f.Scale), Sigma: f.Shape}.CDF(x - f.Loc)
}

// FitLogNormal estimates shape, location and scale by maximum likelihood.
//
// For a fixed location the likelihood is maximized in closed form, so only
// the location is searched numerically (Nelder-Mead), starting from Loc = 0.
// The location stays strictly below the sample minimum. If the search does
// not improve on Loc = 0, that fit is kept.
func FitLogNormal(x []float64) (*LogNormalFit, error) {
	n := len(x)
	if n < 2 {
		return nil, sentinel.InsufficientData("lognorm.fit", 2, n)
	}
	if err := checkFinite("lognorm.fit", x); err != nil {
		return nil, err
	}

	lo, hi := floats.Min(x), floats.Max(x)
	if lo <= 0 {
		return nil, sentinel.InvalidParameter("lognorm.fit.x", lo, "values must be positive")
	}
	span := hi - lo
	if span == 0 {
		return &LogNormalFit{Shape: 0, Loc: 0, Scale: lo, Degenerate: true}, nil
	}

	best := profileLogNormal(x, 0)

	locAt := func(t float64) float64 { return lo - span*math.Exp(t) }
	tMin, tMax := math.Log(minLocOffset), math.Log(maxLocOffset)
	t0 := math.Max(tMin, math.Min(tMax, math.Log(lo/span)))

	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			t := p[0]
			if t < tMin || t > tMax {
				return math.Inf(1)
			}
			fit := profileLogNormal(x, locAt(t))
			if fit == nil {
				return math.Inf(1)
			}
			return -fit.LogLikelihood
		},
	}

	result, err := optimize.Minimize(problem, []float64{t0}, nil, &optimize.NelderMead{})
	if result != nil && !math.IsInf(result.F, 0) && !math.IsNaN(result.F) {
		if cand := profileLogNormal(x, locAt(result.X[0])); cand != nil {
			if best == nil || cand.LogLikelihood > best.LogLikelihood {
				best = cand
			}
		}
	}

	if best == nil {
		if err != nil {
			return nil, sentinel.DegenerateInput("lognorm.fit", err.Error())
		}
		return nil, sentinel.DegenerateInput("lognorm.fit", "no finite likelihood found")
	}
	return best, nil
}

// profileLogNormal returns the closed-form fit for a fixed location, or nil
// when some observation lies at or below it.
func profileLogNormal(x []float64, loc float64) *LogNormalFit {
	y := make([]float64, len(x))
	for i, v := range x {
		if v <= loc {
			return nil
		}
		y[i] = math.Log(v - loc)
	}

	mu := stat.Mean(y, nil)
	sigma := math.Sqrt(stat.Moment(2, y, nil))
	if sigma == 0 || math.IsNaN(sigma) {
		return nil
	}

	nf := float64(len(x))
	ll := -floats.Sum(y) - nf*math.Log(sigma) - 0.5*nf*(1+math.Log(2*math.Pi))

	return &LogNormalFit{
		Shape:         sigma,
		Loc:           loc,
		Scale:         math.Exp(mu),
		LogLikelihood: ll,
	}
}
