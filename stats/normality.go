package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	sentinel "github.com/sartorproj/marketfit/errors"
)

// Minimum sample sizes for the moment-based tests.
const (
	MinSkewTestN     = 8
	MinKurtosisTestN = 5
	MinTTestN        = 2
)

// TestResult represents the outcome of a hypothesis test.
type TestResult struct {
	Statistic float64
	PValue    float64
	N         int
}

// NormalTestResult represents the result of the D'Agostino-Pearson omnibus test.
type NormalTestResult struct {
	TestResult
	SkewZ     float64
	KurtosisZ float64
}

// SkewTest tests whether the sample skewness differs from that of a normal
// distribution. The statistic is the D'Agostino z-score; the p-value is two-sided.
func SkewTest(x []float64) (*TestResult, error) {
	n := len(x)
	if n < MinSkewTestN {
		return nil, sentinel.InsufficientData("skewtest", MinSkewTestN, n)
	}
	if err := checkFinite("skewtest", x); err != nil {
		return nil, err
	}

	m2 := stat.Moment(2, x, nil)
	if m2 == 0 {
		return nil, sentinel.DegenerateInput("skewtest", "zero variance")
	}
	b2 := stat.Moment(3, x, nil) / math.Pow(m2, 1.5)
	z := skewZ(b2, n)

	return &TestResult{
		Statistic: z,
		PValue:    twoSidedNormal(z),
		N:         n,
	}, nil
}

// skewZ transforms biased sample skewness into an approximately standard normal z.
func skewZ(b2 float64, n int) float64 {
	nf := float64(n)
	y := b2 * math.Sqrt(((nf+1)*(nf+3))/(6.0*(nf-2)))
	beta2 := 3.0 * (nf*nf + 27*nf - 70) * (nf + 1) * (nf + 3) /
		((nf - 2) * (nf + 5) * (nf + 7) * (nf + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	delta := 1 / math.Sqrt(0.5*math.Log(w2))
	alpha := math.Sqrt(2.0 / (w2 - 1))
	return delta * math.Asinh(y/alpha)
}

// KurtosisTest tests whether the sample kurtosis differs from that of a normal
// distribution (Anscombe-Glynn). The p-value is two-sided.
func KurtosisTest(x []float64) (*TestResult, error) {
	n := len(x)
	if n < MinKurtosisTestN {
		return nil, sentinel.InsufficientData("kurtosistest", MinKurtosisTestN, n)
	}
	if err := checkFinite("kurtosistest", x); err != nil {
		return nil, err
	}

	m2 := stat.Moment(2, x, nil)
	if m2 == 0 {
		return nil, sentinel.DegenerateInput("kurtosistest", "zero variance")
	}
	b2 := stat.Moment(4, x, nil) / (m2 * m2)

	z, ok := kurtosisZ(b2, n)
	if !ok {
		return nil, sentinel.DegenerateInput("kurtosistest", "transformation undefined for this sample")
	}

	return &TestResult{
		Statistic: z,
		PValue:    twoSidedNormal(z),
		N:         n,
	}, nil
}

func kurtosisZ(b2 float64, n int) (float64, bool) {
	nf := float64(n)
	e := 3.0 * (nf - 1) / (nf + 1)
	varb2 := 24.0 * nf * (nf - 2) * (nf - 3) / ((nf + 1) * (nf + 1) * (nf + 3) * (nf + 5))
	x := (b2 - e) / math.Sqrt(varb2)

	sqrtbeta1 := 6.0 * (nf*nf - 5*nf + 2) / ((nf + 7) * (nf + 9)) *
		math.Sqrt((6.0*(nf+3)*(nf+5))/(nf*(nf-2)*(nf-3)))
	a := 6.0 + 8.0/sqrtbeta1*(2.0/sqrtbeta1+math.Sqrt(1+4.0/(sqrtbeta1*sqrtbeta1)))

	term1 := 1 - 2/(9.0*a)
	denom := 1 + x*math.Sqrt(2/(a-4.0))
	if denom == 0 {
		return 0, false
	}
	term2 := math.Copysign(math.Cbrt((1-2.0/a)/math.Abs(denom)), denom)

	return (term1 - term2) / math.Sqrt(2/(9.0*a)), true
}

// NormalTest performs the D'Agostino-Pearson omnibus test for normality.
// The statistic K2 = z_skew^2 + z_kurt^2 is compared against chi-squared(2).
// H0: the sample comes from a normal distribution.
func NormalTest(x []float64) (*NormalTestResult, error) {
	s, err := SkewTest(x)
	if err != nil {
		return nil, err
	}
	k, err := KurtosisTest(x)
	if err != nil {
		return nil, err
	}

	k2 := s.Statistic*s.Statistic + k.Statistic*k.Statistic
	chi2 := distuv.ChiSquared{K: 2}

	return &NormalTestResult{
		TestResult: TestResult{
			Statistic: k2,
			PValue:    chi2.Survival(k2),
			N:         len(x),
		},
		SkewZ:     s.Statistic,
		KurtosisZ: k.Statistic,
	}, nil
}

// TTest1Samp performs a two-sided one-sample t-test of H0: mean(x) == mu.
func TTest1Samp(x []float64, mu float64) (*TestResult, error) {
	n := len(x)
	if n < MinTTestN {
		return nil, sentinel.InsufficientData("ttest_1samp", MinTTestN, n)
	}
	if err := checkFinite("ttest_1samp", x); err != nil {
		return nil, err
	}

	mean, std := stat.MeanStdDev(x, nil)
	if std == 0 {
		return nil, sentinel.DegenerateInput("ttest_1samp", "zero variance leaves the t statistic undefined")
	}

	t := (mean - mu) / (std / math.Sqrt(float64(n)))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}

	return &TestResult{
		Statistic: t,
		PValue:    math.Min(1, 2*dist.CDF(-math.Abs(t))),
		N:         n,
	}, nil
}

func twoSidedNormal(z float64) float64 {
	return math.Min(1, 2*distuv.UnitNormal.CDF(-math.Abs(z)))
}

func checkFinite(op string, x []float64) error {
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return sentinel.InvalidParameter(op+".x", i, "value is not finite")
		}
	}
	return nil
}
