package serve

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flarebyte/textsafety/internal/buildinfo"
	"github.com/flarebyte/textsafety/internal/filtersvc"
	"github.com/flarebyte/textsafety/internal/logging"
	"github.com/flarebyte/textsafety/internal/metrics"
)

var (
	addr            string
	threshold       float64
	scriptPath      string
	scriptTimeoutMs int
	logLevel        string
	logFormat       string
)

// Cmd represents the `textsafety serve` command.
var Cmd = &cobra.Command{
	Use:           "serve",
	Short:         "Run a local safety classification service",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("invalid threshold: %g (expected 0..1)", threshold)
		}
		log, err := logging.New(logging.Config{Level: logLevel, Format: logFormat, ServiceName: "textsafety-filter"})
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		c, err := filtersvc.LoadClassifier(scriptPath, filtersvc.WithScriptTimeout(time.Duration(scriptTimeoutMs)*time.Millisecond))
		if err != nil {
			return err
		}
		script := scriptPath
		if script == "" {
			script = "builtin"
		}
		log.Info("classifier loaded", zap.String("script", script), zap.String("version", buildinfo.Summary()))

		gin.SetMode(gin.ReleaseMode)
		s := filtersvc.NewServer(c,
			filtersvc.WithThreshold(threshold),
			filtersvc.WithLogger(log),
			filtersvc.WithRegistry(metrics.NewRegistry()))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return s.ListenAndServe(ctx, addr)
	},
}

func init() {
	Cmd.Flags().StringVar(&addr, "addr", ":8001", "Listen address")
	Cmd.Flags().Float64Var(&threshold, "threshold", filtersvc.DefaultThreshold, "Default risk threshold for requests without one")
	Cmd.Flags().StringVar(&scriptPath, "script", "", "Lua classifier script (built-in keyword scorer when empty)")
	Cmd.Flags().IntVar(&scriptTimeoutMs, "script-timeout-ms", 200, "Per-text classifier time limit")
	Cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	Cmd.Flags().StringVar(&logFormat, "log-format", "json", "Log format: json or console")
}
