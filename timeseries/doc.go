// Package timeseries provides the series types consumed by the analysis packages.
//
// A Series is an ordered, gap-free sequence of closing values. A Set is an
// explicitly ordered collection of labelled series used for batch testing
// across markets; results derived from a Set keep its order.
//
// # Creating a Series
//
//	values := []float64{100, 102, 105, 103, 108, 110}
//	series := timeseries.New("SP500", values)
//
// # Loading from CSV
//
// End-of-day files with a Date and Close column load directly:
//
//	opts := timeseries.DefaultCSVOptions()
//	opts.Name = "SP500"
//	series, err := timeseries.LoadCSV("spx.csv", opts)
//
// Long-format files holding several symbols can be filtered:
//
//	opts = timeseries.DefaultCSVOptions()
//	opts.Name = "DAX"
//	opts.IDColumn = "Symbol"
//	opts.IDFilter = "^GDAXI"
//	series, err := timeseries.LoadCSV("indices.csv", opts)
//
// # Returns
//
// Simple returns leave a gap at the first observation. The policy decides how
// it is filled:
//
//	returns, err := series.Returns(timeseries.BackfillFromLast)
//	returns, err := series.Returns(timeseries.Drop)
//
// # Aligning
//
// Align keeps the dates every series shares:
//
//	aligned := timeseries.Align(spxReturns, daxReturns)
//
// # Sets
//
//	set, err := timeseries.NewSet(spx, dax, ftse)
//	for _, s := range set.All() {
//	    fmt.Println(s.Name, s.Len())
//	}
package timeseries
