// Package report turns analysis results into plain structs for JSON or YAML
// output, plus a short text summary for the terminal.
//
// A Report is built incrementally by the pipeline:
//
//	r := report.New(set.Labels(), time.Now())
//	r.AddVerdicts(verdicts)
//	r.AddLabelErrors(failures)
//	err := r.Encode(os.Stdout, report.FormatJSON)
package report
