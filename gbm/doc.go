// Package gbm estimates the likelihood of an extreme one-period crash by
// Monte-Carlo simulation of geometric Brownian motion.
//
// Paths are advanced in log space with an Euler step and exponentiated back
// to price levels. Every simulation draws from a caller-owned generator; there
// is no package-level random state, so concurrent simulations with distinct
// generators never share a stream.
//
//	params, err := gbm.ParamsFromSeries(spx, gbm.DefaultDriftPeriod)
//	res, err := gbm.Simulate(params, gbm.NewRand(42))
//	for i, c := range res.CrashCounts {
//	    fmt.Printf("path %d: %d crashes (p=%.2e)\n", i, c, res.CrashProbabilities[i])
//	}
//
// The default step size of 1e-5 years over a one-day horizon gives 397 steps
// per path. MaxSteps rejects configurations whose step count would explode.
package gbm
