// Command marketfit tests price histories against log-normal and normal
// models, simulates GBM crash frequencies and estimates Hurst exponents.
//
// Usage:
//
//	marketfit -c configs/marketfit.yaml
//	marketfit -m SPX=data/spx.csv -m DAX=data/dax.csv --format yaml -o report.yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hyp3rd/ewrap"
	"github.com/spf13/pflag"

	"github.com/sartorproj/marketfit/config"
	"github.com/sartorproj/marketfit/logging"
	"github.com/sartorproj/marketfit/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "marketfit: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := config.Flags()
	fs.SetOutput(stderr)
	summary := fs.Bool("summary", false, "print a text summary to stderr")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	configPath, err := fs.GetString("config")
	if err != nil {
		return ewrap.Wrap(err, "reading --config")
	}
	cfg, err := config.Load(configPath, fs)
	if err != nil {
		return ewrap.Wrap(err, "failed to load config")
	}

	log, err := logging.New(stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	logging.SetGlobal(log)
	log.Debug("Configuration loaded", "path", configPath, "markets", len(cfg.Markets))

	rep, err := pipeline.New(cfg, log).Execute(ctx)
	if err != nil {
		return ewrap.Wrap(err, "analysis failed")
	}

	if err := writeReport(cfg.Report.Output, stdout, func(w io.Writer) error {
		return rep.Encode(w, cfg.Report.Format)
	}); err != nil {
		return err
	}
	log.Info("Report written", "output", cfg.Report.Output, "format", cfg.Report.Format)

	if *summary {
		return rep.Summary(stderr)
	}
	return nil
}

// writeReport sends the encoded report to stdout for "-" and to a file otherwise.
func writeReport(output string, stdout io.Writer, encode func(io.Writer) error) (err error) {
	if output == "-" {
		return encode(stdout)
	}

	f, err := os.Create(output)
	if err != nil {
		return ewrap.Wrap(err, "creating report file")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = ewrap.Wrap(cerr, "closing report file")
		}
	}()
	return encode(f)
}
