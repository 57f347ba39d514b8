package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hyp3rd/ewrap"
)

// Summary writes a short human-readable digest of the report to w.
func (r *Report) Summary(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "run %s: %s markets\n", r.RunID, humanize.Comma(int64(len(r.Markets))))

	for _, v := range r.Verdicts {
		outcome := "consistent"
		switch {
		case v.Degenerate:
			outcome = "degenerate"
		case v.Rejects:
			outcome = "rejected"
		}
		fmt.Fprintf(&b, "  %-12s %-17s n=%-8s p=%-10s %s\n",
			v.Market, v.Hypothesis, humanize.Comma(int64(v.N)), humanize.FtoaWithDigits(v.PValue, 6), outcome)
	}

	for _, t := range r.Tails {
		fmt.Fprintf(&b, "  %-12s %s-sigma events: %s observed, %s expected\n",
			t.Market, humanize.Ftoa(t.K), humanize.Comma(int64(t.Observed)), humanize.FtoaWithDigits(t.Expected, 2))
	}

	if s := r.Simulation; s != nil {
		fmt.Fprintf(&b, "  %-12s simulated %s paths of %s steps: %s crashes, mean probability %s\n",
			s.Market,
			humanize.Comma(int64(len(s.CrashCounts))),
			humanize.Comma(int64(s.Steps)),
			humanize.Comma(int64(s.TotalCrashes)),
			humanize.FtoaWithDigits(s.MeanCrashProbability, 6))
	}

	for _, f := range r.Fractal {
		fmt.Fprintf(&b, "  %-12s %-15s H=%s D=%s %s\n",
			f.Market, f.Method, humanize.FtoaWithDigits(f.H, 4), humanize.FtoaWithDigits(f.D, 4), f.Class)
	}

	if len(r.Failures) > 0 {
		fmt.Fprintf(&b, "%s failures:\n", humanize.Comma(int64(len(r.Failures))))
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "  %-12s %s: %s\n", f.Market, f.Op, f.Error)
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return ewrap.Wrap(err, "failed to write summary")
	}
	return nil
}
