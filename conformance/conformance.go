package conformance

import (
	"fmt"
	"math"

	"github.com/sourcegraph/conc/iter"

	sentinel "github.com/sartorproj/marketfit/errors"
	"github.com/sartorproj/marketfit/stats"
	"github.com/sartorproj/marketfit/timeseries"
)

// DefaultAlpha is the significance level used when none is configured.
const DefaultAlpha = 0.05

// Hypothesis names the distributional null being tested.
type Hypothesis string

const (
	LogNormalPrices Hypothesis = "lognormal_prices"
	NormalReturns   Hypothesis = "normal_returns"
)

// Verdict is the outcome of one conformance test on one series.
type Verdict struct {
	Label      string
	Hypothesis Hypothesis
	Statistic  float64
	PValue     float64
	Alpha      float64
	N          int

	// Rejects is true when PValue < Alpha: the series does not follow the hypothesis.
	Rejects bool

	// Degenerate marks a constant series, which matches a point-mass fit exactly.
	Degenerate bool
}

// LabelledReport pairs a deviation report with the series it describes.
type LabelledReport struct {
	Label  string
	Report *stats.DeviationReport
}

// LabelError represents a per-series failure inside a batch.
type LabelError struct {
	Label string
	Op    string
	Err   error
}

func (e LabelError) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Op, e.Label, e.Err)
}

func (e LabelError) Unwrap() error {
	return e.Err
}

// Tester runs conformance tests over ordered sets of series.
type Tester struct {
	Alpha      float64
	LeadingGap timeseries.LeadingGapPolicy

	// Workers bounds the number of series evaluated concurrently; 0 means GOMAXPROCS.
	Workers int
}

// DefaultTester returns a Tester with alpha 0.05 and the backfill-from-last policy.
func DefaultTester() *Tester {
	return &Tester{
		Alpha:      DefaultAlpha,
		LeadingGap: timeseries.BackfillFromLast,
	}
}

// Validate checks the tester's parameters.
func (t *Tester) Validate() error {
	if math.IsNaN(t.Alpha) || t.Alpha <= 0 || t.Alpha >= 1 {
		return sentinel.InvalidParameter("alpha", t.Alpha, "must lie strictly between 0 and 1")
	}
	if t.Workers < 0 {
		return sentinel.InvalidParameter("workers", t.Workers, "must not be negative")
	}
	if !t.LeadingGap.Valid() {
		return sentinel.InvalidParameter("leading_gap", int(t.LeadingGap), "unknown policy")
	}
	return nil
}

// LogNormalPrice fits a three-parameter log-normal to the raw values of s and
// runs a Kolmogorov-Smirnov test against the fitted distribution.
func (t *Tester) LogNormalPrice(s *timeseries.Series) (Verdict, error) {
	if err := t.Validate(); err != nil {
		return Verdict{}, err
	}

	fit, err := stats.FitLogNormal(s.Values)
	if err != nil {
		return Verdict{}, err
	}

	v := Verdict{
		Label:      s.Name,
		Hypothesis: LogNormalPrices,
		Alpha:      t.Alpha,
		N:          s.Len(),
	}
	if fit.Degenerate {
		v.PValue = 1
		v.Degenerate = true
		return v, nil
	}

	ks, err := stats.KSTest(s.Values, fit.CDF)
	if err != nil {
		return Verdict{}, err
	}
	v.Statistic = ks.Statistic
	v.PValue = ks.PValue
	v.Rejects = ks.PValue < t.Alpha

	return v, nil
}

// NormalReturn converts s to simple returns under the tester's leading-gap
// policy and runs the D'Agostino-Pearson omnibus test on them.
func (t *Tester) NormalReturn(s *timeseries.Series) (Verdict, error) {
	if err := t.Validate(); err != nil {
		return Verdict{}, err
	}

	returns, err := s.Returns(t.LeadingGap)
	if err != nil {
		return Verdict{}, err
	}

	nt, err := stats.NormalTest(returns.Values)
	if err != nil {
		return Verdict{}, err
	}

	return Verdict{
		Label:      s.Name,
		Hypothesis: NormalReturns,
		Statistic:  nt.Statistic,
		PValue:     nt.PValue,
		Alpha:      t.Alpha,
		N:          nt.N,
		Rejects:    nt.PValue < t.Alpha,
	}, nil
}

// TestLogNormalPrices runs LogNormalPrice over every series in set.
// Verdicts keep the set's order; failing labels are reported separately.
func (t *Tester) TestLogNormalPrices(set *timeseries.Set) ([]Verdict, []LabelError) {
	return runBatch(t, set, string(LogNormalPrices), t.LogNormalPrice)
}

// TestNormalReturns runs NormalReturn over every series in set.
func (t *Tester) TestNormalReturns(set *timeseries.Set) ([]Verdict, []LabelError) {
	return runBatch(t, set, string(NormalReturns), t.NormalReturn)
}

// PriceDeviation describes the log prices of every series in set.
func (t *Tester) PriceDeviation(set *timeseries.Set) ([]LabelledReport, []LabelError) {
	return runBatch(t, set, "price_deviation", func(s *timeseries.Series) (LabelledReport, error) {
		logs, err := s.Log()
		if err != nil {
			return LabelledReport{}, err
		}
		r, err := stats.Describe(logs.Values)
		if err != nil {
			return LabelledReport{}, err
		}
		return LabelledReport{Label: s.Name, Report: r}, nil
	})
}

// ReturnDeviation describes the simple returns of every series in set.
func (t *Tester) ReturnDeviation(set *timeseries.Set) ([]LabelledReport, []LabelError) {
	return runBatch(t, set, "return_deviation", func(s *timeseries.Series) (LabelledReport, error) {
		returns, err := s.Returns(t.LeadingGap)
		if err != nil {
			return LabelledReport{}, err
		}
		r, err := stats.Describe(returns.Values)
		if err != nil {
			return LabelledReport{}, err
		}
		return LabelledReport{Label: s.Name, Report: r}, nil
	})
}

type outcome[T any] struct {
	value T
	err   error
}

func runBatch[T any](t *Tester, set *timeseries.Set, op string, fn func(*timeseries.Series) (T, error)) ([]T, []LabelError) {
	if set == nil || set.Len() == 0 {
		return nil, nil
	}

	workers := t.Workers
	if workers < 0 {
		workers = 0
	}

	mapper := iter.Mapper[*timeseries.Series, outcome[T]]{MaxGoroutines: workers}
	outcomes := mapper.Map(set.All(), func(s **timeseries.Series) outcome[T] {
		v, err := fn(*s)
		return outcome[T]{value: v, err: err}
	})

	labels := set.Labels()
	results := make([]T, 0, len(outcomes))
	var failures []LabelError
	for i, o := range outcomes {
		if o.err != nil {
			failures = append(failures, LabelError{Label: labels[i], Op: op, Err: o.err})
			continue
		}
		results = append(results, o.value)
	}

	return results, failures
}
