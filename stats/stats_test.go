package stats

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sentinel "github.com/sartorproj/marketfit/errors"
)

func normalSample(seed uint64, n int, mu, sigma float64) []float64 {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	x := make([]float64, n)
	for i := range x {
		x[i] = mu + sigma*r.NormFloat64()
	}
	return x
}

func TestSkewTestSymmetricSample(t *testing.T) {
	x := []float64{-4, -3, -2, -1, 1, 2, 3, 4}

	res, err := SkewTest(x)
	require.NoError(t, err)
	assert.InDelta(t, 0, res.Statistic, 1e-12)
	assert.InDelta(t, 1, res.PValue, 1e-12)
	assert.Equal(t, 8, res.N)
}

func TestMomentTestReferenceValues(t *testing.T) {
	s, err := SkewTest([]float64{2, 8, 0, 4, 1, 9, 9, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.44626385374197, s.Statistic, 1e-12)
	assert.InDelta(t, 0.65540666312755, s.PValue, 1e-12)

	ramp := make([]float64, 20)
	for i := range ramp {
		ramp[i] = float64(i)
	}
	k, err := KurtosisTest(ramp)
	require.NoError(t, err)
	assert.InDelta(t, -1.7058104152122062, k.Statistic, 1e-12)
	assert.InDelta(t, 0.0880433833252835, k.PValue, 1e-12)

	// the ramp is symmetric, so K2 is the squared kurtosis z
	nt, err := NormalTest(ramp)
	require.NoError(t, err)
	assert.InDelta(t, 0, nt.SkewZ, 1e-9)
	assert.InDelta(t, 2.9097891726464393, nt.Statistic, 1e-9)
	assert.InDelta(t, 0.23342496878849506, nt.PValue, 1e-9)
}

func TestSkewAndKurtosisSigns(t *testing.T) {
	flat := []float64{-4, -3, -2, -1, 1, 2, 3, 4}
	k, err := KurtosisTest(flat)
	require.NoError(t, err)
	assert.Less(t, k.Statistic, 0.0, "a flat sample has negative excess kurtosis")

	spiky := []float64{1, 2, 1, 2, 1, 2, 1, 2, 1, 30}
	s, err := SkewTest(spiky)
	require.NoError(t, err)
	assert.Greater(t, s.Statistic, 0.0)

	k, err = KurtosisTest(spiky)
	require.NoError(t, err)
	assert.Greater(t, k.Statistic, 0.0)
}

func TestMomentTestsRejectShortAndConstant(t *testing.T) {
	_, err := SkewTest([]float64{1, 2, 3, 4, 5, 6, 7})
	assert.ErrorIs(t, err, sentinel.ErrInsufficientData)

	_, err = KurtosisTest([]float64{1, 2, 3, 4})
	assert.ErrorIs(t, err, sentinel.ErrInsufficientData)

	constant := []float64{5, 5, 5, 5, 5, 5, 5, 5, 5}
	_, err = SkewTest(constant)
	assert.ErrorIs(t, err, sentinel.ErrDegenerateInput)
	_, err = KurtosisTest(constant)
	assert.ErrorIs(t, err, sentinel.ErrDegenerateInput)

	_, err = SkewTest([]float64{1, 2, 3, 4, 5, 6, 7, math.NaN()})
	assert.ErrorIs(t, err, sentinel.ErrInvalidParameter)
}

func TestNormalTestCombinesComponents(t *testing.T) {
	x := normalSample(7, 300, 0, 1)

	nt, err := NormalTest(x)
	require.NoError(t, err)

	s, err := SkewTest(x)
	require.NoError(t, err)
	k, err := KurtosisTest(x)
	require.NoError(t, err)

	k2 := s.Statistic*s.Statistic + k.Statistic*k.Statistic
	assert.InDelta(t, k2, nt.Statistic, 1e-12)
	// chi-squared(2) survival is exp(-x/2)
	assert.InDelta(t, math.Exp(-k2/2), nt.PValue, 1e-9)
	assert.Equal(t, s.Statistic, nt.SkewZ)
	assert.Equal(t, k.Statistic, nt.KurtosisZ)
}

func TestNormalTestPropertyOnNormalDraws(t *testing.T) {
	accepted := 0
	for seed := uint64(1); seed <= 20; seed++ {
		nt, err := NormalTest(normalSample(seed, 500, 0.001, 0.01))
		require.NoError(t, err)
		if nt.PValue >= 0.05 {
			accepted++
		}
	}
	t.Logf("normal draws accepted: %d/20", accepted)
	assert.GreaterOrEqual(t, accepted, 14)
}

func TestNormalTestRejectsHeavyTails(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 3))
	x := make([]float64, 1000)
	for i := range x {
		// ratio of normals is Cauchy
		x[i] = r.NormFloat64() / r.NormFloat64()
	}

	nt, err := NormalTest(x)
	require.NoError(t, err)
	assert.Less(t, nt.PValue, 1e-6)
}

func TestTTest1Samp(t *testing.T) {
	res, err := TTest1Samp([]float64{1, 2, 3, 4, 5}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 4.242640687119285, res.Statistic, 1e-12)
	assert.InDelta(t, 0.013235599563682695, res.PValue, 1e-12)

	res, err = TTest1Samp([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	assert.InDelta(t, 0, res.Statistic, 1e-12)
	assert.InDelta(t, 1, res.PValue, 1e-12)

	_, err = TTest1Samp([]float64{2, 2, 2}, 0)
	assert.ErrorIs(t, err, sentinel.ErrDegenerateInput)

	_, err = TTest1Samp([]float64{2}, 0)
	assert.ErrorIs(t, err, sentinel.ErrInsufficientData)
}

func TestDescribeLogPrices(t *testing.T) {
	prices := []float64{100, 101, 99, 102, 98, 103, 97, 104}
	logs := make([]float64, len(prices))
	for i, p := range prices {
		logs[i] = math.Log(p)
	}

	r, err := Describe(logs)
	require.NoError(t, err)

	assert.Equal(t, 8, r.N)
	assert.InDelta(t, math.Log(97), r.Min, 1e-12)
	assert.InDelta(t, math.Log(104), r.Max, 1e-12)
	assert.InDelta(t, (math.Log(100)+math.Log(101))/2, r.Median, 1e-12)

	mean := 0.0
	for _, v := range logs {
		mean += v
	}
	mean /= 8
	assert.InDelta(t, mean, r.Mean, 1e-12)

	ss := 0.0
	for _, v := range logs {
		ss += (v - mean) * (v - mean)
	}
	assert.InDelta(t, math.Sqrt(ss/7), r.Std, 1e-12)
	assert.InDelta(t, 0.02438168533677682, r.Std, 1e-12)
	// log prices sit far from zero
	assert.Less(t, r.TPValue, 1e-6)
}

func TestDescribeErrors(t *testing.T) {
	_, err := Describe([]float64{1, 2, 3})
	assert.ErrorIs(t, err, sentinel.ErrInsufficientData)

	_, err = Describe([]float64{1, 1, 1, 1, 1, 1, 1, 1})
	assert.ErrorIs(t, err, sentinel.ErrDegenerateInput)
}
