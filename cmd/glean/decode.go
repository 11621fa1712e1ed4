package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gocloud.dev/blob"

	"github.com/ligustah/glean/internal/config"
	"github.com/ligustah/glean/internal/decoder"
	gleanhttp "github.com/ligustah/glean/internal/http"
	"github.com/ligustah/glean/internal/metrics"
	"github.com/ligustah/glean/internal/progress"
	"github.com/ligustah/glean/pkg/fragments"
)

type decodeFlags struct {
	configPath string
	timeout    time.Duration
	cfg        config.Config
}

func newDecodeCmd() *cobra.Command {
	var f decodeFlags

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Sample the fragment endpoint and assemble the message",
		Long: `Sample random ids from the fragment endpoint until the collected indices
form the gap-free range [0, max index], then print the message, its spaced
rendering, the fragment count and the elapsed time.

Configuration is read from defaults, then --config, then GLEAN_* environment
variables, then flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd, &f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "Path to YAML config file")
	fl.DurationVar(&f.timeout, "timeout", 0, "Give up after this long (0 = no limit)")
	fl.StringVar(&f.cfg.URL, "url", "", "Fragment URL template containing {id} (default "+config.DefaultURL+")")
	fl.Int64Var(&f.cfg.MaxID, "max-id", 0, "Upper bound of the sampled id space")
	fl.IntVar(&f.cfg.InitialRequests, "initial-requests", 0, "Size of the first probe batch (default 500)")
	fl.DurationVar(&f.cfg.QuietPeriod, "quiet-period", 0, "Time without a new index before completion is checked (default 50ms)")
	fl.IntVar(&f.cfg.ExtraRequests, "extra-requests", 0, "Probes per backfill round (default 50)")
	fl.DurationVar(&f.cfg.BackfillInterval, "backfill-interval", 0, "Time between backfill rounds (default 50ms)")
	fl.DurationVar(&f.cfg.RequestTimeout, "request-timeout", 0, "Per-request HTTP timeout (default 10s)")
	fl.IntVar(&f.cfg.MaxIdleConns, "max-idle-conns", 0, "Idle connections kept per host (default 100)")
	fl.Float64Var(&f.cfg.RateLimit, "rate-limit", 0, "Probes per second (0 = unlimited)")
	fl.IntVar(&f.cfg.RateBurst, "rate-burst", 0, "Burst size for --rate-limit")
	fl.BoolVar(&f.cfg.Progress, "progress", false, "Show progress on stderr")
	fl.StringVar(&f.cfg.Bucket, "bucket", "", "Bucket URL to store the result in")
	fl.StringVar(&f.cfg.Object, "object", "", "Object key for the stored result")
	fl.StringVar(&f.cfg.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	fl.StringVar(&f.cfg.LogLevel, "log-level", "", "Log level: debug, info, warn, error (default warn)")

	return cmd
}

// loadConfig layers defaults, the config file, the environment and the flags
// the user actually passed.
func loadConfig(cmd *cobra.Command, f *decodeFlags) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		fileCfg, err := config.LoadFromFile(f.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = fileCfg
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return config.Config{}, err
	}
	fl := cmd.Flags()
	cfg = cfg.Merge(f.cfg, func(key string) bool {
		return fl.Changed(strings.ReplaceAll(key, "_", "-"))
	})
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runDecode(cmd *cobra.Command, f *decodeFlags) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return withCode(ExitInvalidArgs, err)
	}

	logger, err := newLogger(stderr, cfg.LogLevel)
	if err != nil {
		return withCode(ExitInvalidArgs, err)
	}
	defer logger.Sync()

	// Setup context with cancellation
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if f.timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, f.timeout)
		defer cancelTimeout()
	}

	// Open bucket
	var bkt *blob.Bucket
	if cfg.Bucket != "" {
		bkt, err = blob.OpenBucket(ctx, cfg.Bucket)
		if err != nil {
			return withCode(ExitStorageError, fmt.Errorf("open bucket: %w", err))
		}
		defer bkt.Close()
	}

	opts := decoder.Options{
		MaxID:            cfg.MaxID,
		InitialRequests:  cfg.InitialRequests,
		QuietPeriod:      cfg.QuietPeriod,
		ExtraRequests:    cfg.ExtraRequests,
		BackfillInterval: cfg.BackfillInterval,
		RateLimit:        cfg.RateLimit,
		RateBurst:        cfg.RateBurst,
		Logger:           logger,
		HTTPOptions: gleanhttp.Options{
			MaxIdleConnsPerHost: cfg.MaxIdleConns,
			Timeout:             cfg.RequestTimeout,
		},
	}

	if cfg.Progress {
		opts.Progress = progress.NewReporter(progress.Options{
			SourceURL:       cfg.URL,
			InitialRequests: cfg.InitialRequests,
			ExtraRequests:   cfg.ExtraRequests,
			Output:          stderr,
		})
	}

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		opts.Metrics = metrics.New(reg)
		srv := serveMetrics(cfg.MetricsAddr, reg, logger)
		defer srv.Close()
	}

	res, err := decoder.Run(ctx, cfg.URL, bkt, cfg.Object, opts)
	if err != nil {
		var incomplete *fragments.IncompleteError
		if errors.As(err, &incomplete) {
			fmt.Fprintf(stderr, "[glean] Stopped with %d fragments (max index %d) after %d requests\n",
				incomplete.Fragments, incomplete.MaxIndex, incomplete.Requests)
			return withCode(ExitIncomplete, err)
		}
		if res == nil {
			return withCode(ExitGeneralError, err)
		}
		// Decoded but not stored: still print the message.
		printResult(stdout, res)
		return withCode(ExitStorageError, err)
	}

	printResult(stdout, res)
	if bkt != nil {
		fmt.Fprintf(stderr, "[glean] Stored: %s/%s\n", cfg.Bucket, cfg.Object)
	}
	return nil
}

func printResult(w io.Writer, res *fragments.Result) {
	fmt.Fprintf(w, "Complete with %d fragments.\n", res.Fragments)
	fmt.Fprintf(w, "Message: %s\n", res.Message)
	fmt.Fprintf(w, "Spaced: %s\n", res.Spaced)
	fmt.Fprintf(w, "Total time: %s\n", progress.FormatDuration(res.Elapsed))
}

// serveMetrics exposes reg on addr/metrics until the returned server is
// closed.
func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
	return srv
}
