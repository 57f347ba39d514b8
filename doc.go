// Package marketfit tests whether market price histories follow the textbook
// random-walk models and measures how far they depart from them.
//
// Prices are checked against a log-normal distribution and simple returns
// against a normal one. Where the models fail, the deviation is summarized by
// moment tests, tail counts and autocorrelation, and the series is
// characterized by its Hurst exponent instead. A geometric Brownian motion
// simulation estimates how often a crash of a given size should occur if the
// model did hold.
//
// # Quick Start
//
// Test a set of markets:
//
//	opts := timeseries.DefaultCSVOptions()
//	opts.Name = "SPX"
//	spx, _ := timeseries.LoadCSV("spx.csv", opts)
//	set, _ := timeseries.NewSet(spx)
//	verdicts, failures := conformance.DefaultTester().TestNormalReturns(set)
//
// Simulate one trading day of the index:
//
//	params, _ := gbm.ParamsFromSeries(spx, gbm.DefaultDriftPeriod)
//	result, _ := gbm.Simulate(params, gbm.NewRand(1))
//
// Estimate the Hurst exponent:
//
//	logs, _ := spx.Log()
//	est, _ := fractal.LagVariance(logs.Values)
//	fmt.Println(est.H, est.Class)
//
// # Packages
//
// The library is organized into the following packages:
//
//   - timeseries: Series, ordered series sets, returns and CSV loading
//   - stats: Moment tests, Kolmogorov-Smirnov, log-normal fitting, regression and diagnostics
//   - conformance: Batch log-normal and normal verdicts with deviation reports
//   - gbm: Geometric Brownian motion crash simulation
//   - fractal: Hurst exponent by rescaled range and lag variance
//   - report: JSON and YAML output
//   - pipeline: Runs every analysis over configured markets
//   - config, logging: Command-line configuration and structured logging
//
// # References
//
//   - D'Agostino, R. B., & Pearson, E. S. (1973). Tests for departure from normality
//   - Mandelbrot, B. B., & Hudson, R. L. (2004). The (Mis)Behavior of Markets
//   - Hurst, H. E. (1951). Long-term storage capacity of reservoirs
package marketfit
