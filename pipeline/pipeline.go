// Package pipeline runs the conformance, simulation and fractal analyses over
// the configured markets and collects the results in a report. A failure in
// one market or one analysis is recorded and never stops the others.
package pipeline

import (
	"context"
	"time"

	"github.com/hyp3rd/ewrap"

	"github.com/sartorproj/marketfit/config"
	sentinel "github.com/sartorproj/marketfit/errors"
	"github.com/sartorproj/marketfit/fractal"
	"github.com/sartorproj/marketfit/gbm"
	"github.com/sartorproj/marketfit/logging"
	"github.com/sartorproj/marketfit/report"
	"github.com/sartorproj/marketfit/stats"
	"github.com/sartorproj/marketfit/timeseries"
)

// Operation names recorded on failures.
const (
	OpLoad            = "load"
	OpReturns         = "returns"
	OpTails           = "tails"
	OpQQ              = "qq"
	OpAutocorrelation = "autocorrelation"
	OpCorrelation     = "correlation"
	OpSimulation      = "simulation"
	OpRescaledRange   = "hurst.rescaled_range"
	OpLagVariance     = "hurst.lag_variance"
)

// maxACFLag caps the number of autocorrelation lags reported per market.
const maxACFLag = 20

// Pipeline runs every analysis over the configured markets.
type Pipeline struct {
	cfg *config.Config
	log *logging.Logger
	now func() time.Time
}

// New creates a pipeline. A nil logger falls back to the global one.
func New(cfg *config.Config, log *logging.Logger) *Pipeline {
	if log == nil {
		log = logging.Global()
	}
	return &Pipeline{cfg: cfg, log: log, now: time.Now}
}

// LoadFailure records a market whose CSV could not be read.
type LoadFailure struct {
	Label string
	Err   error
}

// Load reads every configured market. Markets that fail to load are skipped
// and returned as failures; an error is returned only when none loads.
func (p *Pipeline) Load(ctx context.Context) (*timeseries.Set, []LoadFailure, error) {
	if len(p.cfg.Markets) == 0 {
		return nil, nil, sentinel.InsufficientData("load", 1, 0)
	}

	set := &timeseries.Set{}
	var failures []LoadFailure
	for _, m := range p.cfg.Markets {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		s, err := timeseries.LoadCSV(m.Path, m.CSVOptions())
		if err == nil {
			err = s.Validate()
		}
		if err == nil {
			err = set.Add(s)
		}
		if err != nil {
			p.log.Warn("Failed to load market", "market", m.Label, "path", m.Path, "error", err)
			failures = append(failures, LoadFailure{Label: m.Label, Err: ewrap.Wrap(err, "loading "+m.Path)})
			continue
		}
		p.log.Debug("Loaded market", "market", m.Label, "observations", s.Len())
	}

	if set.Len() == 0 {
		return nil, failures, ewrap.Wrap(failures[0].Err, "no market could be loaded")
	}
	return set, failures, nil
}

// Execute loads the configured markets and analyses those that loaded.
// Load failures lead the report's failure list.
func (p *Pipeline) Execute(ctx context.Context) (*report.Report, error) {
	set, loadFailures, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}

	rep, err := p.Run(ctx, set)
	if err != nil {
		return nil, err
	}

	if len(loadFailures) > 0 {
		failures := make([]report.Failure, 0, len(loadFailures)+len(rep.Failures))
		for _, f := range loadFailures {
			failures = append(failures, report.Failure{Market: f.Label, Op: OpLoad, Error: f.Err.Error()})
		}
		rep.Failures = append(failures, rep.Failures...)
	}
	return rep, nil
}

// Run analyses set and collects every result and per-market failure in a
// report. It only returns an error for invalid configuration or cancellation.
func (p *Pipeline) Run(ctx context.Context, set *timeseries.Set) (*report.Report, error) {
	tester, err := p.cfg.Tester()
	if err != nil {
		return nil, err
	}
	if err := tester.Validate(); err != nil {
		return nil, err
	}

	start := p.now()
	rep := report.New(set.Labels(), start)
	p.log.Info("Starting analysis", "run_id", rep.RunID, "markets", set.Len())

	verdicts, failures := tester.TestLogNormalPrices(set)
	rep.AddVerdicts(verdicts)
	rep.AddLabelErrors(failures)

	verdicts, failures = tester.TestNormalReturns(set)
	rep.AddVerdicts(verdicts)
	rep.AddLabelErrors(failures)
	p.log.Info("Conformance tests complete", "verdicts", len(rep.Verdicts), "failures", len(rep.Failures))

	deviations, failures := tester.PriceDeviation(set)
	rep.AddDeviations(report.KindPrice, deviations)
	rep.AddLabelErrors(failures)

	deviations, failures = tester.ReturnDeviation(set)
	rep.AddDeviations(report.KindReturn, deviations)
	rep.AddLabelErrors(failures)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.diagnostics(set, tester.LeadingGap, rep)
	p.correlate(set, rep)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.cfg.Simulation.Enabled {
		p.simulate(set, rep)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.cfg.Fractal.Enabled {
		p.hurst(set, rep)
	}

	p.log.Info("Analysis complete",
		"run_id", rep.RunID,
		"failures", len(rep.Failures),
		"duration", p.now().Sub(start).String(),
	)
	return rep, nil
}

// diagnostics computes tail, Q-Q and autocorrelation statistics of each
// market's returns.
func (p *Pipeline) diagnostics(set *timeseries.Set, policy timeseries.LeadingGapPolicy, rep *report.Report) {
	for _, s := range set.All() {
		r, err := s.Returns(policy)
		if err != nil {
			p.fail(rep, s.Name, OpReturns, err)
			continue
		}

		if tails, err := stats.Tails(r.Values, p.cfg.Conformance.TailSigma); err != nil {
			p.fail(rep, s.Name, OpTails, err)
		} else {
			rep.AddTails(s.Name, tails)
		}

		if p.cfg.Report.IncludeQQ {
			if qq, err := stats.QQPoints(r.Values); err != nil {
				p.fail(rep, s.Name, OpQQ, err)
			} else {
				rep.AddQQ(s.Name, qq)
			}
		}

		acf, err := stats.ACF(r.Values, maxACFLag)
		if err != nil {
			p.fail(rep, s.Name, OpAutocorrelation, err)
			continue
		}
		lb, err := stats.LjungBox(r.Values, stats.DefaultLjungBoxLags(r.Len()), 0)
		if err != nil {
			p.fail(rep, s.Name, OpAutocorrelation, err)
			continue
		}
		rep.AddAutocorrelation(s.Name, acf, lb)
	}
}

// correlate correlates the returns of every market over the dates they share.
// The leading gap is dropped so no filled return enters the window.
func (p *Pipeline) correlate(set *timeseries.Set, rep *report.Report) {
	var returns []*timeseries.Series
	for _, s := range set.All() {
		// too-short markets were already recorded under OpReturns
		if r, err := s.Returns(timeseries.Drop); err == nil {
			r.Name = s.Name
			returns = append(returns, r)
		}
	}
	if len(returns) < 2 {
		return
	}

	aligned := timeseries.Align(returns...)
	m, err := stats.Correlate(aligned...)
	if err != nil {
		p.fail(rep, "", OpCorrelation, err)
		return
	}
	rep.SetCorrelation(m, aligned[0].Len())
}

func (p *Pipeline) simulate(set *timeseries.Set, rep *report.Report) {
	sc := p.cfg.Simulation
	s, ok := p.market(set, sc.Market)
	if !ok {
		p.fail(rep, sc.Market, OpSimulation, sentinel.InvalidParameter("simulation.market", sc.Market, "market was not loaded"))
		return
	}

	base, err := gbm.ParamsFromSeries(s, sc.DriftPeriod)
	if err != nil {
		p.fail(rep, s.Name, OpSimulation, err)
		return
	}
	params := sc.Params(base)

	p.log.Debug("Simulating crash paths",
		"market", s.Name,
		"paths", params.PathCount,
		"steps", params.Steps(),
		"drift", params.AnnualDrift,
		"seed", sc.Seed,
	)
	res, err := gbm.Simulate(params, gbm.NewRand(sc.Seed))
	if err != nil {
		p.fail(rep, s.Name, OpSimulation, err)
		return
	}
	rep.SetSimulation(s.Name, sc.Seed, res, p.cfg.Report.IncludePaths)
	p.log.Info("Crash simulation complete",
		"market", s.Name,
		"crashes", res.TotalCrashes(),
		"mean_probability", res.MeanCrashProbability(),
	)
}

func (p *Pipeline) hurst(set *timeseries.Set, rep *report.Report) {
	s, ok := p.market(set, p.cfg.Fractal.Market)
	if !ok {
		p.fail(rep, p.cfg.Fractal.Market, OpRescaledRange, sentinel.InvalidParameter("fractal.market", p.cfg.Fractal.Market, "market was not loaded"))
		return
	}
	est := p.cfg.Estimator()

	// rescaled range reads raw closes, lag variance reads log closes
	e, err := est.RescaledRange(s.Values)
	p.addFractal(rep, s.Name, OpRescaledRange, e, err)

	logs, err := s.Log()
	if err != nil {
		p.fail(rep, s.Name, OpLagVariance, err)
		return
	}
	e, err = est.LagVariance(logs.Values)
	p.addFractal(rep, s.Name, OpLagVariance, e, err)
}

func (p *Pipeline) addFractal(rep *report.Report, market, op string, e *fractal.Estimate, err error) {
	if err != nil {
		p.fail(rep, market, op, err)
		return
	}
	rep.AddFractal(market, e)
	p.log.Info("Hurst exponent estimated", "market", market, "method", string(e.Method), "h", e.H, "class", string(e.Class))
}

// market resolves label against the loaded set; an empty label selects the
// first configured market that loaded.
func (p *Pipeline) market(set *timeseries.Set, label string) (*timeseries.Series, bool) {
	if label != "" {
		return set.Get(label)
	}
	all := set.All()
	if len(all) == 0 {
		return nil, false
	}
	return all[0], true
}

func (p *Pipeline) fail(rep *report.Report, market, op string, err error) {
	p.log.Warn("Analysis step failed", "market", market, "op", op, "error", err)
	rep.AddFailure(market, op, err)
}
