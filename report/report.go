package report

import (
	"io"
	"math"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/hyp3rd/ewrap"
	"gopkg.in/yaml.v3"

	"github.com/sartorproj/marketfit/conformance"
	sentinel "github.com/sartorproj/marketfit/errors"
	"github.com/sartorproj/marketfit/fractal"
	"github.com/sartorproj/marketfit/gbm"
	"github.com/sartorproj/marketfit/stats"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Deviation kinds.
const (
	KindPrice  = "log_price"
	KindReturn = "return"
)

// Report is the serializable outcome of one analysis run.
type Report struct {
	RunID       string    `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Markets     []string  `json:"markets" yaml:"markets"`

	Verdicts        []Verdict         `json:"verdicts,omitempty" yaml:"verdicts,omitempty"`
	Deviations      []Deviation       `json:"deviations,omitempty" yaml:"deviations,omitempty"`
	Tails           []Tail            `json:"tails,omitempty" yaml:"tails,omitempty"`
	QQ              []QQ              `json:"qq,omitempty" yaml:"qq,omitempty"`
	Autocorrelation []Autocorrelation `json:"autocorrelation,omitempty" yaml:"autocorrelation,omitempty"`
	Correlation     *Correlation      `json:"correlation,omitempty" yaml:"correlation,omitempty"`
	Simulation      *Simulation       `json:"simulation,omitempty" yaml:"simulation,omitempty"`
	Fractal         []Fractal         `json:"fractal,omitempty" yaml:"fractal,omitempty"`
	Failures        []Failure         `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Verdict is one conformance test outcome.
type Verdict struct {
	Market     string  `json:"market" yaml:"market"`
	Hypothesis string  `json:"hypothesis" yaml:"hypothesis"`
	N          int     `json:"n" yaml:"n"`
	Statistic  float64 `json:"statistic" yaml:"statistic"`
	PValue     float64 `json:"p_value" yaml:"p_value"`
	Alpha      float64 `json:"alpha" yaml:"alpha"`
	Rejects    bool    `json:"rejects" yaml:"rejects"`
	Degenerate bool    `json:"degenerate,omitempty" yaml:"degenerate,omitempty"`
}

// Deviation is a deviation report of a market's log prices or returns.
type Deviation struct {
	Market         string  `json:"market" yaml:"market"`
	Kind           string  `json:"kind" yaml:"kind"`
	N              int     `json:"n" yaml:"n"`
	SkewZ          float64 `json:"skew_z" yaml:"skew_z"`
	SkewPValue     float64 `json:"skew_p_value" yaml:"skew_p_value"`
	KurtosisZ      float64 `json:"kurtosis_z" yaml:"kurtosis_z"`
	KurtosisPValue float64 `json:"kurtosis_p_value" yaml:"kurtosis_p_value"`
	TStatistic     float64 `json:"t_statistic" yaml:"t_statistic"`
	TPValue        float64 `json:"t_p_value" yaml:"t_p_value"`
	Mean           float64 `json:"mean" yaml:"mean"`
	Median         float64 `json:"median" yaml:"median"`
	Std            float64 `json:"std" yaml:"std"`
	Min            float64 `json:"min" yaml:"min"`
	Max            float64 `json:"max" yaml:"max"`
}

// Tail counts the k-sigma return events of a market.
type Tail struct {
	Market         string  `json:"market" yaml:"market"`
	K              float64 `json:"k" yaml:"k"`
	Lower          []int   `json:"lower,omitempty" yaml:"lower,omitempty"`
	Upper          []int   `json:"upper,omitempty" yaml:"upper,omitempty"`
	Observed       int     `json:"observed" yaml:"observed"`
	Expected       float64 `json:"expected" yaml:"expected"`
	Ratio          float64 `json:"ratio" yaml:"ratio"`
	ExcessKurtosis float64 `json:"excess_kurtosis" yaml:"excess_kurtosis"`
}

// QQ holds normal probability plot coordinates of a market's returns.
type QQ struct {
	Market      string    `json:"market" yaml:"market"`
	Theoretical []float64 `json:"theoretical" yaml:"theoretical"`
	Sample      []float64 `json:"sample" yaml:"sample"`
	Intercept   float64   `json:"intercept" yaml:"intercept"`
	Slope       float64   `json:"slope" yaml:"slope"`
}

// Autocorrelation holds the serial dependence diagnostics of a market's returns.
type Autocorrelation struct {
	Market          string    `json:"market" yaml:"market"`
	ACF             []float64 `json:"acf" yaml:"acf"`
	ConfBounds      float64   `json:"conf_bounds" yaml:"conf_bounds"`
	SignificantLags []int     `json:"significant_lags,omitempty" yaml:"significant_lags,omitempty"`
	LjungBoxLags    int       `json:"ljung_box_lags" yaml:"ljung_box_lags"`
	LjungBoxQ       float64   `json:"ljung_box_q" yaml:"ljung_box_q"`
	LjungBoxPValue  float64   `json:"ljung_box_p_value" yaml:"ljung_box_p_value"`
}

// Correlation is the pairwise return correlation matrix.
type Correlation struct {
	Markets      []string    `json:"markets" yaml:"markets"`
	Observations int         `json:"observations" yaml:"observations"`
	Values       [][]float64 `json:"values" yaml:"values"`
}

// Simulation holds the crash simulation inputs and outcome.
type Simulation struct {
	Market               string      `json:"market" yaml:"market"`
	Seed                 uint64      `json:"seed" yaml:"seed"`
	StartPrice           float64     `json:"start_price" yaml:"start_price"`
	AnnualDrift          float64     `json:"annual_drift" yaml:"annual_drift"`
	AnnualVolatility     float64     `json:"annual_volatility" yaml:"annual_volatility"`
	HorizonYears         float64     `json:"horizon_years" yaml:"horizon_years"`
	StepSize             float64     `json:"step_size" yaml:"step_size"`
	CrashThreshold       float64     `json:"crash_threshold" yaml:"crash_threshold"`
	Steps                int         `json:"steps" yaml:"steps"`
	Transitions          int         `json:"transitions" yaml:"transitions"`
	CrashCounts          []int       `json:"crash_counts" yaml:"crash_counts"`
	CrashProbabilities   []float64   `json:"crash_probabilities" yaml:"crash_probabilities"`
	TotalCrashes         int         `json:"total_crashes" yaml:"total_crashes"`
	MeanCrashProbability float64     `json:"mean_crash_probability" yaml:"mean_crash_probability"`
	FinalPrices          []float64   `json:"final_prices" yaml:"final_prices"`
	Paths                [][]float64 `json:"paths,omitempty" yaml:"paths,omitempty"`
}

// Fractal is one Hurst exponent estimate with its log-log regression points.
type Fractal struct {
	Market      string    `json:"market" yaml:"market"`
	Method      string    `json:"method" yaml:"method"`
	H           float64   `json:"h" yaml:"h"`
	D           float64   `json:"d" yaml:"d"`
	Class       string    `json:"class" yaml:"class"`
	Intercept   float64   `json:"intercept" yaml:"intercept"`
	Slope       float64   `json:"slope" yaml:"slope"`
	RSquared    float64   `json:"r_squared" yaml:"r_squared"`
	SlopeStdErr float64   `json:"slope_std_err" yaml:"slope_std_err"`
	LogX        []float64 `json:"log_x" yaml:"log_x"`
	LogY        []float64 `json:"log_y" yaml:"log_y"`
}

// Failure records an operation that could not complete for one market.
type Failure struct {
	Market string `json:"market" yaml:"market"`
	Op     string `json:"op" yaml:"op"`
	Error  string `json:"error" yaml:"error"`
}

// New starts an empty report for markets, stamped with a fresh run ID.
func New(markets []string, at time.Time) *Report {
	return &Report{
		RunID:       uuid.New().String(),
		GeneratedAt: at.UTC(),
		Markets:     append([]string(nil), markets...),
	}
}

// AddVerdicts appends conformance verdicts in the given order.
func (r *Report) AddVerdicts(verdicts []conformance.Verdict) {
	for _, v := range verdicts {
		r.Verdicts = append(r.Verdicts, Verdict{
			Market:     v.Label,
			Hypothesis: string(v.Hypothesis),
			N:          v.N,
			Statistic:  v.Statistic,
			PValue:     v.PValue,
			Alpha:      v.Alpha,
			Rejects:    v.Rejects,
			Degenerate: v.Degenerate,
		})
	}
}

// AddDeviations appends deviation reports of the given kind.
func (r *Report) AddDeviations(kind string, reports []conformance.LabelledReport) {
	for _, lr := range reports {
		d := lr.Report
		r.Deviations = append(r.Deviations, Deviation{
			Market:         lr.Label,
			Kind:           kind,
			N:              d.N,
			SkewZ:          d.SkewZ,
			SkewPValue:     d.SkewPValue,
			KurtosisZ:      d.KurtosisZ,
			KurtosisPValue: d.KurtosisPValue,
			TStatistic:     d.TStatistic,
			TPValue:        d.TPValue,
			Mean:           d.Mean,
			Median:         d.Median,
			Std:            d.Std,
			Min:            d.Min,
			Max:            d.Max,
		})
	}
}

// AddTails appends the tail report of market.
func (r *Report) AddTails(market string, t *stats.TailReport) {
	r.Tails = append(r.Tails, Tail{
		Market:         market,
		K:              t.K,
		Lower:          t.Lower,
		Upper:          t.Upper,
		Observed:       t.Observed,
		Expected:       t.Expected,
		Ratio:          t.Ratio,
		ExcessKurtosis: t.ExcessKurtosis,
	})
}

// AddQQ appends Q-Q plot coordinates for market.
func (r *Report) AddQQ(market string, q *stats.QQResult) {
	r.QQ = append(r.QQ, QQ{
		Market:      market,
		Theoretical: q.Theoretical,
		Sample:      q.Sample,
		Intercept:   q.Intercept,
		Slope:       q.Slope,
	})
}

// AddAutocorrelation appends the ACF and Ljung-Box results of market.
func (r *Report) AddAutocorrelation(market string, acf *stats.ACFResult, lb *stats.LjungBoxResult) {
	r.Autocorrelation = append(r.Autocorrelation, Autocorrelation{
		Market:          market,
		ACF:             acf.Values,
		ConfBounds:      acf.ConfBounds,
		SignificantLags: acf.SignificantLags(),
		LjungBoxLags:    lb.Lags,
		LjungBoxQ:       lb.Statistic,
		LjungBoxPValue:  lb.PValue,
	})
}

// SetCorrelation records the correlation matrix computed over observations returns.
func (r *Report) SetCorrelation(m *stats.CorrelationMatrix, observations int) {
	r.Correlation = &Correlation{
		Markets:      m.Labels,
		Observations: observations,
		Values:       m.Values,
	}
}

// SetSimulation records a crash simulation of market. Paths are only kept
// when includePaths is set.
func (r *Report) SetSimulation(market string, seed uint64, res *gbm.Result, includePaths bool) {
	p := res.Params
	sim := &Simulation{
		Market:               market,
		Seed:                 seed,
		StartPrice:           math.Exp(p.StartLogPrice),
		AnnualDrift:          p.AnnualDrift,
		AnnualVolatility:     p.AnnualVolatility,
		HorizonYears:         p.HorizonYears,
		StepSize:             p.StepSize,
		CrashThreshold:       p.CrashThreshold,
		Steps:                res.Steps,
		Transitions:          res.Transitions,
		CrashCounts:          res.CrashCounts,
		CrashProbabilities:   res.CrashProbabilities,
		TotalCrashes:         res.TotalCrashes(),
		MeanCrashProbability: res.MeanCrashProbability(),
		FinalPrices:          make([]float64, len(res.Paths)),
	}
	for i, path := range res.Paths {
		sim.FinalPrices[i] = path[len(path)-1]
	}
	if includePaths {
		sim.Paths = res.Paths
	}
	r.Simulation = sim
}

// AddFractal appends a Hurst exponent estimate for market.
func (r *Report) AddFractal(market string, e *fractal.Estimate) {
	f := Fractal{
		Market: market,
		Method: string(e.Method),
		H:      e.H,
		D:      e.D,
		Class:  string(e.Class),
	}
	if reg := e.Regression; reg != nil {
		f.Intercept = reg.Intercept
		f.Slope = reg.Slope
		f.RSquared = reg.RSquared
		f.SlopeStdErr = reg.SlopeStdErr
		f.LogX = reg.X
		f.LogY = reg.Y
	}
	r.Fractal = append(r.Fractal, f)
}

// AddFailure records that op failed for market.
func (r *Report) AddFailure(market, op string, err error) {
	r.Failures = append(r.Failures, Failure{Market: market, Op: op, Error: err.Error()})
}

// AddLabelErrors records batch failures.
func (r *Report) AddLabelErrors(errs []conformance.LabelError) {
	for _, e := range errs {
		r.AddFailure(e.Label, e.Op, e.Err)
	}
}

// Encode writes the report to w as JSON or YAML.
func (r *Report) Encode(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return ewrap.Wrap(err, "failed to encode json report")
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return ewrap.Wrap(err, "failed to encode yaml report")
		}
		if err := enc.Close(); err != nil {
			return ewrap.Wrap(err, "failed to flush yaml report")
		}
		return nil
	default:
		return sentinel.InvalidParameter("report.format", format, "must be json or yaml")
	}
}
