package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	sentinel "github.com/sartorproj/marketfit/errors"
)

// QQResult pairs sorted sample values with standard normal quantiles.
type QQResult struct {
	Theoretical []float64
	Sample      []float64

	// Reference line Sample = Intercept + Slope*Theoretical, using the
	// sample mean and standard deviation.
	Intercept float64
	Slope     float64
}

// QQPoints computes normal Q-Q plot coordinates using plotting positions i/(n+1).
func QQPoints(x []float64) (*QQResult, error) {
	n := len(x)
	if n < 2 {
		return nil, sentinel.InsufficientData("qq", 2, n)
	}
	if err := checkFinite("qq", x); err != nil {
		return nil, err
	}

	sample := make([]float64, n)
	copy(sample, x)
	sort.Float64s(sample)

	theoretical := make([]float64, n)
	for i := range theoretical {
		p := float64(i+1) / float64(n+1)
		theoretical[i] = distuv.UnitNormal.Quantile(p)
	}

	mean, std := stat.MeanStdDev(x, nil)

	return &QQResult{
		Theoretical: theoretical,
		Sample:      sample,
		Intercept:   mean,
		Slope:       std,
	}, nil
}
