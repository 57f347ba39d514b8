// Package stats provides the statistical tests behind the conformance checks.
//
// All functions take plain []float64 samples and return a typed result or an
// error from the errors package: ErrInsufficientData when the sample is too
// short, ErrDegenerateInput when it has zero variance, and ErrInvalidParameter
// for non-finite values or bad arguments.
//
// # Moment Tests
//
// D'Agostino skewness, Anscombe-Glynn kurtosis and their omnibus combination:
//
//	// H0: the sample is normal
//	nt, err := stats.NormalTest(returns)
//	fmt.Printf("K2=%.4f p=%.4f\n", nt.Statistic, nt.PValue)
//
//	// H0: mean == 0
//	tt, err := stats.TTest1Samp(returns, 0)
//
// Describe bundles the z-scores, the t-test and summary statistics:
//
//	report, err := stats.Describe(returns)
//	fmt.Println(report.SkewZ, report.KurtosisZ, report.TPValue)
//
// # Goodness of Fit
//
// Fit a three-parameter log-normal by maximum likelihood and test the sample
// against it with Kolmogorov-Smirnov:
//
//	fit, err := stats.FitLogNormal(prices)
//	ks, err := stats.KSTest(prices, fit.CDF)
//	if ks.PValue < 0.05 {
//	    // prices are not log-normal
//	}
//
// # Tails and Q-Q
//
//	tails, err := stats.Tails(returns, stats.DefaultTailSigma)
//	fmt.Printf("%d 3-sigma events, %.1f expected\n", tails.Observed, tails.Expected)
//
//	qq, err := stats.QQPoints(returns)
//
// # Serial Dependence
//
//	acf, err := stats.ACF(returns, 20)
//	lags := acf.SignificantLags()
//
//	lb, err := stats.LjungBox(returns, 10, 0)
//
// # Regression and Correlation
//
//	reg, err := stats.OLS(x, y)
//	fmt.Println(reg.Slope, reg.RSquared)
//
//	m, err := stats.Correlate(spx, dax, ftse)
package stats
