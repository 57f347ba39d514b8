// Package fractal estimates the Hurst exponent H and fractal dimension
// D = 2 - H of a series by two independent methods.
//
// RescaledRange (Method A) computes the rescaled range R/S on prefixes of the
// series covering 1, 1/2, ..., 1/32 of its length and regresses log(R/S) on
// log(window size). The windows are direct truncations, not averages over
// non-overlapping blocks.
//
// LagVariance (Method B) regresses the log of sqrt(std(x[k:] - x[:-k])) on
// log(k) for lags 2 through 99.
//
// Both report H as twice the fitted slope and keep the regression so callers
// can plot the fit:
//
//	est, err := fractal.LagVariance(prices)
//	fmt.Printf("H=%.3f D=%.3f %s\n", est.H, est.D, est.Class)
//
// The two methods are not expected to agree.
package fractal
