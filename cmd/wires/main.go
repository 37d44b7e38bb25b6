package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	buildinfo "github.com/pborges/wires"
	"github.com/pborges/wires/internal/wires"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by every subcommand, set up before each run.
type app struct {
	configPath string
	logLevel   string
	metricsOut string

	cfg      Config
	logger   log.Logger
	registry *prometheus.Registry
	metrics  *wires.Metrics
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "wires",
		Short:         "Resolve signals on circuits of 16-bit wires and gates",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.writeMetrics()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log.level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.metricsOut, "metrics.out", "", "write resolver metrics to this file on exit")

	root.AddCommand(
		newEvalCmd(a),
		newFeedbackCmd(a),
		newCheckCmd(a),
		newWatchCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.configPath != "" {
		cfg, err := loadConfig(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	lvl := a.logLevel
	if !cmd.Flags().Changed("log.level") && a.cfg.LogLevel != "" {
		lvl = a.cfg.LogLevel
	}
	if !cmd.Flags().Changed("metrics.out") && a.cfg.MetricsOut != "" {
		a.metricsOut = a.cfg.MetricsOut
	}

	logger, err := newLogger(cmd.ErrOrStderr(), lvl)
	if err != nil {
		return err
	}
	a.logger = log.With(logger, "component", "wires")
	a.registry = prometheus.NewRegistry()
	a.metrics = wires.NewMetrics(a.registry)
	return nil
}

func (a *app) writeMetrics() error {
	if a.metricsOut == "" || a.registry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.metricsOut, a.registry); err != nil {
		return errors.Wrap(err, "writing metrics")
	}
	level.Debug(a.logger).Log("msg", "metrics written", "path", a.metricsOut)
	return nil
}

func newLogger(w io.Writer, lvl string) (log.Logger, error) {
	v, err := level.Parse(lvl)
	if err != nil {
		return nil, errors.Wrapf(err, "log level %q", lvl)
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = level.NewFilter(logger, level.Allow(v))
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), buildinfo.Version())
			return err
		},
	}
}
