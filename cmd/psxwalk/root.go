// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"

	psx "github.com/petenewcomb/psx-go"
	"github.com/petenewcomb/psx-go/executor"
	"github.com/petenewcomb/psx-go/otpsx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()
	var configFile string

	cmd := &cobra.Command{
		Use:   "psxwalk [flags] DIR",
		Short: "Walk a directory tree with one task per directory",
		Long: `psxwalk walks the directory tree rooted at DIR. Each directory is
read by its own task, which registers a further task for every subdirectory
it finds. The walk ends when no directory is left unread.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, configFile)
			if err != nil {
				return err
			}
			return runWalk(cmd.Context(), cfg, os.DirFS(args[0]), stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVarP(&configFile, "config", "c", "", "YAML config file")
	flags.Int("workers", defaultConfig.Workers, "maximum concurrently running directory tasks (negative for no limit)")
	flags.Int("blocking-workers", defaultConfig.BlockingWorkers, "maximum concurrent directory reads (negative for no limit)")
	flags.Int("max-depth", defaultConfig.MaxDepth, "maximum depth below DIR to visit (negative for no limit)")
	flags.String("log-level", defaultConfig.LogLevel, "log level (debug, info, warn, error)")
	flags.Bool("trace", defaultConfig.Trace, "write task spans to stderr")
	flags.Bool("metrics", defaultConfig.Metrics, "print task metrics in Prometheus text format")
	flags.Duration("progress", defaultConfig.Progress, "log progress at this interval (0 to disable)")

	for key, flag := range map[string]string{
		"workers":          "workers",
		"blocking_workers": "blocking-workers",
		"max_depth":        "max-depth",
		"log_level":        "log-level",
		"trace":            "trace",
		"metrics":          "metrics",
		"progress":         "progress",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}
	return cmd
}

func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(w),
		lvl,
	)
	return zap.New(core), nil
}

func runWalk(ctx context.Context, cfg Config, fsys fs.FS, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := newLogger(cfg.LogLevel, stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	pool := executor.NewPool(cfg.Config)
	delegates := []psx.Delegate[*walkState]{
		failureCounter,
		otpsx.NewLoggingDelegate[*walkState](logger),
	}

	if cfg.Trace {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(stderr))
		if err != nil {
			return fmt.Errorf("creating trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
		defer func() { _ = tp.Shutdown(context.Background()) }()
		delegates = append(delegates, otpsx.NewTracingDelegate[*walkState](tp.Tracer("psxwalk")))
	}

	var reg *prometheus.Registry
	if cfg.Metrics {
		reg = prometheus.NewRegistry()
		pd, err := otpsx.NewPrometheusDelegate[*walkState](reg)
		if err != nil {
			return fmt.Errorf("registering metrics: %w", err)
		}
		delegates = append(delegates, pd)
	}

	engine := psx.NewEngine(psx.Delegates(delegates...),
		psx.WithLogger(logger),
		psx.WithExecutor(pool))

	st := newWalkState(fsys, cfg.MaxDepth)
	var sched *executor.Scheduler
	if cfg.Progress > 0 {
		sched = executor.NewScheduler(pool)
		scheduleProgress(ctx, sched, cfg.Progress, st, logger)
	}

	runErr := engine.Run(ctx, st, newDirTask(".", 0))
	if sched != nil {
		// Must precede pool.Wait so that no progress report is launched
		// while waiting.
		sched.Close()
	}
	if runErr == nil {
		pool.Wait()
	}

	if err := st.summary().write(stdout); err != nil {
		return err
	}
	if reg != nil {
		families, err := reg.Gather()
		if err != nil {
			return fmt.Errorf("gathering metrics: %w", err)
		}
		if err := writeMetrics(stdout, families); err != nil {
			return err
		}
	}
	return runErr
}
