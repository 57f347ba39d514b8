package stats

import (
	"math"
	"sort"

	sentinel "github.com/sartorproj/marketfit/errors"
)

// KSTest performs the one-sample Kolmogorov-Smirnov goodness-of-fit test of
// x against the continuous distribution function cdf.
// H0: x was drawn from cdf. The p-value uses the asymptotic Kolmogorov
// distribution with Stephens' small-sample correction.
func KSTest(x []float64, cdf func(float64) float64) (*TestResult, error) {
	n := len(x)
	if n < 1 {
		return nil, sentinel.InsufficientData("kstest", 1, n)
	}
	if cdf == nil {
		return nil, sentinel.InvalidParameter("kstest.cdf", nil, "distribution function is required")
	}
	if err := checkFinite("kstest", x); err != nil {
		return nil, err
	}

	sorted := make([]float64, n)
	copy(sorted, x)
	sort.Float64s(sorted)

	nf := float64(n)
	d := 0.0
	for i, v := range sorted {
		f := cdf(v)
		if dPlus := float64(i+1)/nf - f; dPlus > d {
			d = dPlus
		}
		if dMinus := f - float64(i)/nf; dMinus > d {
			d = dMinus
		}
	}

	sqrtN := math.Sqrt(nf)
	lambda := (sqrtN + 0.12 + 0.11/sqrtN) * d

	return &TestResult{
		Statistic: d,
		PValue:    kolmogorovSurvival(lambda),
		N:         n,
	}, nil
}

// kolmogorovSurvival returns Q(lambda) = 2 * sum_{k>=1} (-1)^(k-1) exp(-2 k^2 lambda^2).
// The alternating series converges slowly for small lambda, where Q is 1.
func kolmogorovSurvival(lambda float64) float64 {
	if lambda <= 0 {
		return 1
	}

	a2 := -2 * lambda * lambda
	fac := 2.0
	sum := 0.0
	prev := 0.0
	for k := 1; k <= 100; k++ {
		kf := float64(k)
		term := fac * math.Exp(a2*kf*kf)
		sum += term
		if math.Abs(term) <= 0.001*prev || math.Abs(term) <= 1e-8*sum {
			return math.Max(0, math.Min(1, sum))
		}
		fac = -fac
		prev = math.Abs(term)
	}

	return 1
}
