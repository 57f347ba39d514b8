package pipeline

import (
	"bytes"
	"context"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/marketfit/config"
	sentinel "github.com/sartorproj/marketfit/errors"
	"github.com/sartorproj/marketfit/fractal"
	"github.com/sartorproj/marketfit/logging"
	"github.com/sartorproj/marketfit/report"
	"github.com/sartorproj/marketfit/stats"
	"github.com/sartorproj/marketfit/timeseries"
)

// writeMarket writes n daily closes of a geometric random walk to dir/name.csv.
func writeMarket(t *testing.T, dir, name string, n int, seed uint64) string {
	t.Helper()

	rng := rand.New(rand.NewPCG(seed, 1))
	start := time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC)

	var b strings.Builder
	b.WriteString("Date,Open,Close\n")
	price := 1000.0
	for i := range n {
		price *= math.Exp(0.0003 + 0.01*rng.NormFloat64())
		closing := strconv.FormatFloat(price, 'f', -1, 64)
		b.WriteString(start.AddDate(0, 0, i).Format("2006-01-02") + "," + closing + "," + closing + "\n")
	}

	path := filepath.Join(dir, name+".csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Markets = []config.MarketConfig{
		{Label: "SPX", Path: writeMarket(t, dir, "spx", 1500, 1), DateColumn: "Date", ValueColumn: "Close"},
		{Label: "MISSING", Path: filepath.Join(dir, "missing.csv"), DateColumn: "Date", ValueColumn: "Close"},
		{Label: "DAX", Path: writeMarket(t, dir, "dax", 1500, 2), DateColumn: "Date", ValueColumn: "Close"},
		{Label: "SHORT", Path: writeMarket(t, dir, "short", 6, 3), DateColumn: "Date", ValueColumn: "Close"},
	}
	cfg.Simulation.Market = "SPX"
	require.NoError(t, cfg.Validate())
	return cfg
}

func testLogger(t *testing.T, buf *bytes.Buffer) *logging.Logger {
	t.Helper()
	log, err := logging.New(buf, "debug", logging.FormatJSON)
	require.NoError(t, err)
	return log
}

func failureOps(rep *report.Report, market string) []string {
	var ops []string
	for _, f := range rep.Failures {
		if f.Market == market {
			ops = append(ops, f.Op)
		}
	}
	return ops
}

func TestExecute(t *testing.T) {
	var logs bytes.Buffer
	p := New(testConfig(t), testLogger(t, &logs))

	rep, err := p.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"SPX", "DAX", "SHORT"}, rep.Markets)

	require.NotEmpty(t, rep.Failures)
	assert.Equal(t, "MISSING", rep.Failures[0].Market)
	assert.Equal(t, OpLoad, rep.Failures[0].Op)

	// SHORT is too short for every moment test but still gets a log-normal verdict
	assert.Len(t, rep.Verdicts, 5)
	assert.ElementsMatch(t,
		[]string{"normal_returns", "price_deviation", "return_deviation", OpAutocorrelation},
		failureOps(rep, "SHORT"))
	assert.Empty(t, failureOps(rep, "SPX"))
	assert.Empty(t, failureOps(rep, "DAX"))

	assert.Len(t, rep.Deviations, 4)
	assert.Len(t, rep.Tails, 3)
	assert.Empty(t, rep.QQ)
	require.Len(t, rep.Autocorrelation, 2)
	assert.Len(t, rep.Autocorrelation[0].ACF, maxACFLag+1)

	require.NotNil(t, rep.Correlation)
	assert.Equal(t, []string{"SPX", "DAX", "SHORT"}, rep.Correlation.Markets)
	// SHORT shares five return dates with the others once the leading gap is dropped
	assert.Equal(t, 5, rep.Correlation.Observations)

	require.NotNil(t, rep.Simulation)
	assert.Equal(t, "SPX", rep.Simulation.Market)
	assert.Len(t, rep.Simulation.CrashCounts, 10)
	assert.Equal(t, 397, rep.Simulation.Steps)
	assert.Nil(t, rep.Simulation.Paths)

	require.Len(t, rep.Fractal, 2)
	assert.Equal(t, "SPX", rep.Fractal[0].Market)
	assert.Equal(t, "rescaled_range", rep.Fractal[0].Method)
	assert.Equal(t, "lag_variance", rep.Fractal[1].Method)
	for _, f := range rep.Fractal {
		assert.InDelta(t, 2, f.H+f.D, 1e-12)
	}

	out := logs.String()
	assert.Contains(t, out, "Failed to load market")
	assert.Contains(t, out, "Analysis complete")
	assert.Contains(t, out, rep.RunID)
}

func TestExecuteIsReproducible(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report.IncludePaths = true

	var logs bytes.Buffer
	a, err := New(cfg, testLogger(t, &logs)).Execute(context.Background())
	require.NoError(t, err)
	b, err := New(cfg, testLogger(t, &logs)).Execute(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, a.Verdicts, b.Verdicts)
	assert.Equal(t, a.Simulation, b.Simulation)
	require.Len(t, a.Simulation.Paths, 10)
}

func TestRunOptionalSections(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.Enabled = false
	cfg.Fractal.Market = "SHORT"
	cfg.Report.IncludeQQ = true

	var logs bytes.Buffer
	rep, err := New(cfg, testLogger(t, &logs)).Execute(context.Background())
	require.NoError(t, err)

	assert.Nil(t, rep.Simulation)
	assert.Empty(t, rep.Fractal)
	assert.Subset(t, failureOps(rep, "SHORT"), []string{OpRescaledRange, OpLagVariance})
	require.Len(t, rep.QQ, 3)
	assert.Len(t, rep.QQ[0].Sample, 1500)
}

func TestHurstInputs(t *testing.T) {
	var logs bytes.Buffer
	p := New(testConfig(t), testLogger(t, &logs))
	set, _, err := p.Load(context.Background())
	require.NoError(t, err)

	rep, err := p.Run(context.Background(), set)
	require.NoError(t, err)
	require.Len(t, rep.Fractal, 2)

	spx, ok := set.Get("SPX")
	require.True(t, ok)
	rs, err := fractal.RescaledRange(spx.Values)
	require.NoError(t, err)
	logClose, err := spx.Log()
	require.NoError(t, err)
	lv, err := fractal.LagVariance(logClose.Values)
	require.NoError(t, err)
	raw, err := fractal.LagVariance(spx.Values)
	require.NoError(t, err)

	assert.Equal(t, string(fractal.MethodRescaledRange), rep.Fractal[0].Method)
	assert.InDelta(t, rs.H, rep.Fractal[0].H, 1e-12)
	assert.Equal(t, string(fractal.MethodLagVariance), rep.Fractal[1].Method)
	assert.InDelta(t, lv.H, rep.Fractal[1].H, 1e-12)
	assert.NotEqual(t, raw.H, rep.Fractal[1].H)
}

func TestCorrelationUsesSharedDates(t *testing.T) {
	var logs bytes.Buffer
	p := New(testConfig(t), testLogger(t, &logs))
	set, _, err := p.Load(context.Background())
	require.NoError(t, err)

	rep, err := p.Run(context.Background(), set)
	require.NoError(t, err)
	require.NotNil(t, rep.Correlation)

	spx, _ := set.Get("SPX")
	dax, _ := set.Get("DAX")
	spxReturns, err := spx.Returns(timeseries.Drop)
	require.NoError(t, err)
	daxReturns, err := dax.Returns(timeseries.Drop)
	require.NoError(t, err)

	// SHORT only covers the first five return dates
	want, err := stats.Correlate(spxReturns.Slice(0, 5), daxReturns.Slice(0, 5))
	require.NoError(t, err)
	assert.InDelta(t, want.Values[0][1], rep.Correlation.Values[0][1], 1e-12)
	assert.InDelta(t, 1, rep.Correlation.Values[2][2], 0)
}

func TestLoadRejectsNonFinitePrices(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("Date,Close\n2020-01-01,10\n2020-01-02,Inf\n2020-01-03,11\n"), 0o600))

	cfg := testConfig(t)
	cfg.Markets = append(cfg.Markets, config.MarketConfig{Label: "BAD", Path: bad, DateColumn: "Date", ValueColumn: "Close"})

	var logs bytes.Buffer
	set, failures, err := New(cfg, testLogger(t, &logs)).Load(context.Background())
	require.NoError(t, err)

	_, loaded := set.Get("BAD")
	assert.False(t, loaded)
	require.Len(t, failures, 2)
	assert.Equal(t, "BAD", failures[1].Label)
	assert.ErrorIs(t, failures[1].Err, sentinel.ErrInvalidParameter)
}

func TestLoadErrors(t *testing.T) {
	var logs bytes.Buffer

	cfg := config.DefaultConfig()
	_, _, err := New(cfg, testLogger(t, &logs)).Load(context.Background())
	assert.ErrorIs(t, err, sentinel.ErrInsufficientData)

	cfg.Markets = []config.MarketConfig{{Label: "X", Path: filepath.Join(t.TempDir(), "none.csv")}}
	_, failures, err := New(cfg, testLogger(t, &logs)).Load(context.Background())
	require.Error(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "X", failures[0].Label)
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var logs bytes.Buffer
	_, err := New(testConfig(t), testLogger(t, &logs)).Execute(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRejectsInvalidTester(t *testing.T) {
	cfg := testConfig(t)
	cfg.Conformance.LeadingGap = "ffill"

	var logs bytes.Buffer
	p := New(cfg, testLogger(t, &logs))
	set, _, err := p.Load(context.Background())
	require.NoError(t, err)

	_, err = p.Run(context.Background(), set)
	assert.ErrorIs(t, err, sentinel.ErrInvalidParameter)
}
