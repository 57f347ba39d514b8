package main

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sartorproj/marketfit/report"
)

func writePrices(t *testing.T, dir string, n int) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("Date,Close\n")
	for i := range n {
		// deterministic oscillating trend, strictly positive
		price := 100 + 0.05*float64(i) + 3*math.Sin(float64(i)*0.7) + math.Cos(float64(i)*1.9)
		b.WriteString("2020-01-01," + strconv.FormatFloat(price, 'f', 6, 64) + "\n")
	}

	path := filepath.Join(dir, "spx.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

func TestRunWritesJSONToStdout(t *testing.T) {
	prices := writePrices(t, t.TempDir(), 600)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-m", "SPX=" + prices, "--log-level", "warn", "--summary"}, &stdout, &stderr)
	require.NoError(t, err)

	var rep report.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &rep))
	assert.Equal(t, []string{"SPX"}, rep.Markets)
	assert.NotEmpty(t, rep.Verdicts)
	assert.NotNil(t, rep.Simulation)
	assert.Contains(t, stderr.String(), "run "+rep.RunID)
}

func TestRunWritesYAMLFile(t *testing.T) {
	dir := t.TempDir()
	prices := writePrices(t, dir, 600)
	out := filepath.Join(dir, "report.yaml")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{
		"--market", "SPX=" + prices,
		"--format", "yaml",
		"--output", out,
		"--paths", "3",
		"--log-format", "json",
	}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var rep report.Report
	require.NoError(t, yaml.Unmarshal(data, &rep))
	require.NotNil(t, rep.Simulation)
	assert.Len(t, rep.Simulation.CrashCounts, 3)
	assert.Contains(t, stderr.String(), `"message":"Report written"`)
}

func TestRunErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"--no-such-flag"}, &stdout, &stderr)
	assert.Error(t, err)

	err = run(context.Background(), []string{"-m", "SPX"}, &stdout, &stderr)
	assert.Error(t, err)

	err = run(context.Background(), []string{"-m", "SPX=" + filepath.Join(t.TempDir(), "none.csv")}, &stdout, &stderr)
	assert.Error(t, err)

	assert.NoError(t, run(context.Background(), []string{"--help"}, &stdout, &stderr))
}
