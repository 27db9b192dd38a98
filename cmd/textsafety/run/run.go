package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flarebyte/textsafety/internal/buildinfo"
	"github.com/flarebyte/textsafety/internal/config"
	"github.com/flarebyte/textsafety/internal/logging"
	"github.com/flarebyte/textsafety/internal/metrics"
	"github.com/flarebyte/textsafety/internal/rowio"
	"github.com/flarebyte/textsafety/internal/safety"
	"github.com/flarebyte/textsafety/internal/stage"
)

var (
	cfgPath        string
	inPath         string
	outPath        string
	inFormat       string
	outFormat      string
	copies         int
	failOnAPIError bool
)

// Cmd represents the `textsafety run` command.
var Cmd = &cobra.Command{
	Use:           "run",
	Short:         "Enrich rows with safety verdicts from the configured service",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgPath == "" {
			return fmt.Errorf("missing required flag: --config")
		}
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		applyFlagOverrides(cmd, &cfg)
		if err := config.FirstError(config.Check(cfg.Stage)); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return execute(ctx, cfg, os.Stdin, os.Stdout, os.Stderr)
	},
}

func init() {
	Cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file (.cue or .yaml)")
	Cmd.Flags().StringVar(&inPath, "in", "", "Input path, - for stdin (overrides input.path)")
	Cmd.Flags().StringVar(&outPath, "out", "", "Output path, - for stdout (overrides output.out)")
	Cmd.Flags().StringVar(&inFormat, "in-format", "", "Input format: csv or ndjson")
	Cmd.Flags().StringVar(&outFormat, "out-format", "", "Output format: csv or ndjson")
	Cmd.Flags().IntVar(&copies, "copies", 0, "Number of parallel stage copies")
	Cmd.Flags().BoolVar(&failOnAPIError, "fail-on-api-error", false, "Exit with code 2 when any row could not be classified")
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Run) {
	f := cmd.Flags()
	if f.Changed("in") {
		cfg.Input.Path = inPath
	}
	if f.Changed("out") {
		cfg.Output.Out = outPath
	}
	if f.Changed("in-format") {
		cfg.Input.Format = inFormat
	}
	if f.Changed("out-format") {
		cfg.Output.Format = outFormat
	}
	if f.Changed("copies") && copies > 0 {
		cfg.Copies = copies
	}
}

// execute wires config, files, logging and metrics into a pipeline run.
func execute(ctx context.Context, cfg config.Run, stdin io.Reader, stdout, stderr io.Writer) error {
	log, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, ServiceName: "textsafety"})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	src, closeIn, err := openInput(cfg.Input.Path, stdin)
	if err != nil {
		return err
	}
	defer closeIn()
	reader, err := rowio.NewReader(cfg.Input.Format, src)
	if err != nil {
		return err
	}
	dst, closeOut, err := openOutput(cfg.Output.Out, stdout)
	if err != nil {
		return err
	}
	writer, err := rowio.NewWriter(cfg.Output.Format, dst)
	if err != nil {
		_ = closeOut()
		return err
	}

	reg := metrics.NewRegistry()
	m := metrics.NewStage(reg)
	if cfg.Metrics.Addr != "" {
		shutdown := serveMetrics(cfg.Metrics.Addr, reg, log)
		defer shutdown()
	}

	progress := newProgressReporter(cfg.UI, stderr)
	progress.start(ctx)

	p := &pipeline{
		Stage:         cfg.Stage,
		Copies:        cfg.Copies,
		Reader:        reader,
		Writer:        writer,
		Log:           log,
		Metrics:       m,
		Progress:      progress,
		NewClassifier: func() stage.Classifier { return safety.NewClient() },
	}
	log.Info("run started",
		zap.String("version", buildinfo.Summary()),
		zap.String("input", cfg.Input.Path),
		zap.String("output", cfg.Output.Out),
		zap.String("service_url", cfg.Stage.ServiceURL),
		zap.Int("copies", cfg.Copies))
	summary, runErr := p.run(ctx)
	progress.finish()
	if err := closeOut(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		log.Error("run failed", zap.Error(runErr))
		return runExitError{code: exitCodeExecErr, msg: runErr.Error()}
	}
	log.Info("run finished",
		zap.Int("rows", summary.Rows),
		zap.Int("skipped", summary.Skipped),
		zap.Int("safe", summary.Safe),
		zap.Int("unsafe", summary.Unsafe),
		zap.Int("api_errors", summary.APIErrors))
	return evaluateRunExit(summary, failOnAPIError)
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, f.Close, nil
}

func serveMetrics(addr string, reg *prometheus.Registry, log *zap.Logger) func() {
	srv := &http.Server{Addr: addr, Handler: metrics.Handler(reg), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics endpoint stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
