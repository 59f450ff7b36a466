package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"posmigrate/internal/config"
	"posmigrate/internal/datasource"
	"posmigrate/internal/datasource/file"
	"posmigrate/internal/datasource/httpds"
	"posmigrate/internal/emit"
	"posmigrate/internal/metrics"
	"posmigrate/internal/metrics/datadog"
	"posmigrate/internal/metrics/prompush"
	"posmigrate/internal/migrate"
	"posmigrate/internal/sink"
	"posmigrate/internal/skiplog"
)

// main loads the configuration, applies flag overrides, wires the metrics
// backend and runs the migration.
func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	var (
		cfgPath        string
		input          string
		outDir         string
		reportPath     string
		stream         bool
		metricsBackend string
		pushGatewayURL string
		datadogAddr    string
		validate       bool
	)
	fs := flag.NewFlagSet("posmigrate", flag.ContinueOnError)
	fs.StringVar(&cfgPath, "config", "", "migration config JSON path (defaults apply when empty)")
	fs.StringVar(&input, "input", "", "dump path or http(s) URL (overrides source)")
	fs.StringVar(&outDir, "out", "", "output directory (overrides output.dir)")
	fs.StringVar(&reportPath, "report", "", "CSV report of skipped rows (overrides output.report)")
	fs.BoolVar(&stream, "stream", false, "write all batches to stdout instead of a directory")
	fs.StringVar(&metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway, datadog (overrides metrics.backend)")
	fs.StringVar(&pushGatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	fs.StringVar(&datadogAddr, "datadog-addr", "", "DogStatsD address (overrides env DD_DOGSTATSD_URL)")
	fs.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := fs.Bool("v", false, "enable verbose logs")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := config.Default()
	if cfgPath != "" {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			log.Printf("%v", err)
			return 1
		}
	}
	applyFlags(&cfg, input, outDir, reportPath, stream, metricsBackend, pushGatewayURL, datadogAddr)

	issues := cfg.Validate()
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("configuration is invalid")
		return 1
	}
	if validate {
		log.Printf("configuration is valid")
		return 0
	}

	flush := setupMetrics(cfg, *verbose)
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var src datasource.Source
	switch cfg.Source.Kind {
	case "http":
		src = httpds.NewSource(httpds.NewClient(httpds.Config{MaxRetries: cfg.Source.Retries}), cfg.Source.URL)
	default:
		src = file.NewLocal(cfg.Source.Path)
	}

	if *verbose {
		log.Printf("migrate: job=%s source=%s output=%s", cfg.Job, cfg.Source.Kind, cfg.Output.Kind)
	}
	start := time.Now()

	// Nothing is created on disk until the input has been read and decoded.
	text, encoding, err := migrate.Read(ctx, cfg.Job, src, cfg.Source.Encodings)
	if err != nil {
		log.Printf("fatal: %v", err)
		return 1
	}

	opts := migrate.Options{
		Job:              cfg.Job,
		ExternalMappings: cfg.Emit.ExternalMappings,
		Emit: emit.Options{
			TaxDivisor:       cfg.Emit.TaxDivisor,
			TaxRate:          cfg.Emit.TaxRate,
			FallbackCategory: cfg.Emit.FallbackCategory,
			BatchSizes:       cfg.Emit.BatchSizes,
		},
	}
	if cfg.Emit.Namespace != "" {
		opts.Emit.Namespace = uuid.MustParse(cfg.Emit.Namespace)
	}

	var rec *skiplog.Recorder
	if cfg.Output.Report != "" {
		r, closeReport, err := skiplog.Create(cfg.Output.Report)
		if err != nil {
			log.Printf("%v", err)
			return 1
		}
		defer func() {
			if err := closeReport(); err != nil {
				log.Printf("%v", err)
			}
		}()
		rec, opts.Report = r, r
	}

	var out sink.Sink
	if cfg.Output.Kind == "stream" {
		out = sink.NewStream(stdout)
	} else {
		d, err := sink.NewDir(cfg.Output.Dir, sink.Manifest{Job: cfg.Job, ExternalMappings: cfg.Emit.ExternalMappings})
		if err != nil {
			log.Printf("%v", err)
			return 1
		}
		out = d
	}

	summary, err := migrate.Run(ctx, text, opts, out)
	summary.Encoding = encoding
	if err != nil {
		log.Printf("migrate: %v", err)
		return 1
	}

	summary.Log()
	if rec != nil {
		logReport(rec, cfg.Output.Report)
	}
	if cfg.Output.Kind != "stream" {
		fmt.Fprint(os.Stderr, summary.Instructions())
	}
	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
	return 0
}

// logReport prints the skip report totals per reason.
func logReport(rec *skiplog.Recorder, path string) {
	counts := rec.Counts()
	for _, reason := range rec.Reasons() {
		log.Printf("skiplog: reason=%s rows=%d", reason, counts[reason])
	}
	log.Printf("skiplog: total=%d report=%s", rec.Total(), path)
}

// applyFlags overrides cfg with the non-empty flag values.
func applyFlags(cfg *config.Migration, input, outDir, reportPath string, stream bool, backend, pushURL, ddAddr string) {
	if input != "" {
		if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
			cfg.Source.Kind, cfg.Source.URL = "http", input
		} else {
			cfg.Source.Kind, cfg.Source.Path = "file", input
		}
	}
	if outDir != "" {
		if reportPath == "" && cfg.Output.Report == config.Default().Output.Report {
			cfg.Output.Report = filepath.Join(outDir, "skipped.csv")
		}
		cfg.Output.Dir = outDir
	}
	if reportPath != "" {
		cfg.Output.Report = reportPath
	}
	if stream {
		cfg.Output.Kind = "stream"
	}

	// Metrics: flag, then env, then config.
	if backend == "" {
		backend = os.Getenv("METRICS_BACKEND")
	}
	if backend != "" {
		cfg.Metrics.Backend = backend
	}
	if pushURL == "" {
		pushURL = os.Getenv("PUSHGATEWAY_URL")
	}
	if pushURL != "" {
		cfg.Metrics.PushgatewayURL = pushURL
	}
	if ddAddr == "" {
		ddAddr = os.Getenv("DD_DOGSTATSD_URL")
	}
	if ddAddr != "" {
		cfg.Metrics.DatadogAddr = ddAddr
	}
}

// setupMetrics installs the configured backend and returns its flush hook.
// A backend that fails to initialize leaves metrics disabled.
func setupMetrics(cfg config.Migration, verbose bool) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch cfg.Metrics.Backend {
	case "pushgateway":
		b, err = prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.DatadogAddr,
			Namespace:  cfg.Metrics.Namespace,
			GlobalTags: cfg.Metrics.Tags,
		})
	default:
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", cfg.Metrics.Backend)
		}
		return func() {}
	}
	if err != nil {
		log.Printf("metrics: failed to init %s backend: %v; using nop", cfg.Metrics.Backend, err)
		return func() {}
	}

	log.Printf("metrics: backend=%s job_name=%s", cfg.Metrics.Backend, cfg.Job)
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}
