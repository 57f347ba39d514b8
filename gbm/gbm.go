package gbm

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	sentinel "github.com/sartorproj/marketfit/errors"
	"github.com/sartorproj/marketfit/timeseries"
)

// TradingDaysPerYear converts a one-day horizon into years.
const TradingDaysPerYear = 252

// DefaultDriftPeriod is the number of observations spanned by the drift
// estimate in ParamsFromSeries, roughly one trading year.
const DefaultDriftPeriod = 259

// Params configures a GBM crash simulation.
type Params struct {
	StartLogPrice    float64
	AnnualDrift      float64
	AnnualVolatility float64
	HorizonYears     float64
	StepSize         float64
	PathCount        int

	// CrashThreshold is the single-step simple return below which a
	// step counts as a crash. -0.203 is the 1987 one-day fall.
	CrashThreshold float64

	// MaxSteps bounds the work done per path.
	MaxSteps int
}

// DefaultParams returns the standard one-day, ten-path configuration.
// StartLogPrice and AnnualDrift are left at zero for the caller to fill in.
func DefaultParams() Params {
	return Params{
		AnnualVolatility: 0.20,
		HorizonYears:     1.0 / TradingDaysPerYear,
		StepSize:         1e-5,
		PathCount:        10,
		CrashThreshold:   -0.203,
		MaxSteps:         1_000_000,
	}
}

// Steps returns round(HorizonYears / StepSize).
func (p Params) Steps() int {
	return int(math.Round(p.HorizonYears / p.StepSize))
}

// Validate checks every parameter, including the derived step count.
func (p Params) Validate() error {
	switch {
	case !finite(p.StartLogPrice):
		return sentinel.InvalidParameter("start_log_price", p.StartLogPrice, "must be finite")
	case !finite(p.AnnualDrift):
		return sentinel.InvalidParameter("annual_drift", p.AnnualDrift, "must be finite")
	case !finite(p.AnnualVolatility) || p.AnnualVolatility < 0:
		return sentinel.InvalidParameter("annual_volatility", p.AnnualVolatility, "must be finite and non-negative")
	case !finite(p.HorizonYears) || p.HorizonYears <= 0:
		return sentinel.InvalidParameter("horizon_years", p.HorizonYears, "must be positive")
	case !finite(p.StepSize) || p.StepSize <= 0:
		return sentinel.InvalidParameter("step_size", p.StepSize, "must be positive")
	case p.PathCount < 1:
		return sentinel.InvalidParameter("path_count", p.PathCount, "must be at least 1")
	case !finite(p.CrashThreshold):
		return sentinel.InvalidParameter("crash_threshold", p.CrashThreshold, "must be finite")
	case p.MaxSteps < 2:
		return sentinel.InvalidParameter("max_steps", p.MaxSteps, "must be at least 2")
	}

	ratio := p.HorizonYears / p.StepSize
	if ratio > float64(p.MaxSteps) {
		return sentinel.InvalidParameter("steps", ratio, "horizon_years/step_size exceeds max_steps")
	}
	if steps := p.Steps(); steps < 2 {
		return sentinel.InvalidParameter("steps", steps, "horizon_years/step_size must round to at least 2")
	}
	return nil
}

// Result holds the simulated paths and their crash statistics.
type Result struct {
	Params Params

	// Paths holds PathCount price paths of Steps levels each, starting at exp(StartLogPrice).
	Paths [][]float64
	Steps int

	// Transitions is the number of step-over-step returns per path, Steps-1.
	Transitions int

	// CrashCounts holds the raw number of violating steps per path.
	CrashCounts []int

	// CrashProbabilities holds CrashCounts normalized by Transitions.
	CrashProbabilities []float64
}

// TotalCrashes sums the violating steps over all paths.
func (r *Result) TotalCrashes() int {
	total := 0
	for _, c := range r.CrashCounts {
		total += c
	}
	return total
}

// MeanCrashProbability averages the per-path crash probabilities.
func (r *Result) MeanCrashProbability() float64 {
	if len(r.CrashProbabilities) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range r.CrashProbabilities {
		sum += p
	}
	return sum / float64(len(r.CrashProbabilities))
}

// Simulate runs p.PathCount geometric Brownian motion paths in log space:
//
//	x[i+1] = x[i] + (mu - sigma^2/2)*dt + sigma*sqrt(dt)*Z
//
// and counts the steps whose simple return falls below p.CrashThreshold.
// All draws come from rng, so a fixed seed reproduces the paths exactly.
func Simulate(p Params, rng *rand.Rand) (*Result, error) {
	if rng == nil {
		return nil, sentinel.InvalidParameter("rng", nil, "a random generator is required")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	steps := p.Steps()
	drift := (p.AnnualDrift - 0.5*p.AnnualVolatility*p.AnnualVolatility) * p.StepSize
	diffusion := p.AnnualVolatility * math.Sqrt(p.StepSize)
	z := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}

	res := &Result{
		Params:             p,
		Paths:              make([][]float64, p.PathCount),
		Steps:              steps,
		Transitions:        steps - 1,
		CrashCounts:        make([]int, p.PathCount),
		CrashProbabilities: make([]float64, p.PathCount),
	}

	for j := 0; j < p.PathCount; j++ {
		path := make([]float64, steps)
		x := p.StartLogPrice
		path[0] = math.Exp(x)
		crashes := 0
		for i := 1; i < steps; i++ {
			x += drift + diffusion*z.Rand()
			path[i] = math.Exp(x)
			if path[i]/path[i-1]-1 < p.CrashThreshold {
				crashes++
			}
		}
		res.Paths[j] = path
		res.CrashCounts[j] = crashes
		res.CrashProbabilities[j] = float64(crashes) / float64(res.Transitions)
	}

	return res, nil
}

// ParamsFromSeries derives the start and drift of a simulation from a price
// history: the start is the log of the last close and the drift is the simple
// return over the first period observations.
func ParamsFromSeries(s *timeseries.Series, period int) (Params, error) {
	if period < 1 {
		return Params{}, sentinel.InvalidParameter("period", period, "must be at least 1")
	}
	changes, err := s.PctChangeOver(period)
	if err != nil {
		return Params{}, err
	}

	last := s.Values[s.Len()-1]
	if !(last > 0) || math.IsInf(last, 0) {
		return Params{}, sentinel.InvalidParameter("last_close", last, "must be positive and finite")
	}

	p := DefaultParams()
	p.StartLogPrice = math.Log(last)
	p.AnnualDrift = changes[0]
	return p, nil
}

// NewRand returns a PCG-backed generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xda3e39cb94b95bdb))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
