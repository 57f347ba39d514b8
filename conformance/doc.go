// Package conformance answers whether market series plausibly follow the
// textbook models: log-normal prices and normally distributed returns.
//
// A Tester runs over an ordered timeseries.Set. Each batch operation returns
// results in the set's order together with a LabelError for every series that
// could not be evaluated, so one bad market never aborts the others:
//
//	tester := conformance.DefaultTester()
//	verdicts, failures := tester.TestLogNormalPrices(set)
//	for _, v := range verdicts {
//	    fmt.Printf("%s p=%.4f rejects=%v\n", v.Label, v.PValue, v.Rejects)
//	}
//	for _, f := range failures {
//	    log.Printf("skipped %s: %v", f.Label, f.Err)
//	}
//
// Deviation reports describe log prices and returns:
//
//	prices, _ := tester.PriceDeviation(set)
//	returns, _ := tester.ReturnDeviation(set)
package conformance
