package decoder

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go.uber.org/zap"
	"gocloud.dev/blob"
	"golang.org/x/time/rate"

	gleanhttp "github.com/ligustah/glean/internal/http"
	"github.com/ligustah/glean/internal/metrics"
	"github.com/ligustah/glean/internal/progress"
	"github.com/ligustah/glean/pkg/fragments"
	"github.com/ligustah/glean/pkg/results"
)

// ErrInvalidTemplate is returned when the URL template has no id placeholder.
var ErrInvalidTemplate = errors.New("decoder: url template must contain " + gleanhttp.IDPlaceholder)

// Options configures the decoder.
type Options struct {
	// MaxID bounds the sampled id space to [1, MaxID].
	MaxID int64

	// InitialRequests is the size of the first probe batch.
	InitialRequests int

	// QuietPeriod is how long no new index may arrive before the range
	// is checked for completeness.
	QuietPeriod time.Duration

	// ExtraRequests is the number of probes launched per backfill round.
	ExtraRequests int

	// BackfillInterval is the time between backfill rounds.
	BackfillInterval time.Duration

	// RateLimit caps probes per second across the run. Zero disables it.
	RateLimit float64
	RateBurst int

	// Progress is an optional progress reporter.
	Progress *progress.Reporter

	// Metrics is an optional Prometheus observer.
	Metrics *metrics.Metrics

	// Logger receives structured run logs. Default: no-op.
	Logger *zap.Logger

	// HTTPOptions configures the HTTP client.
	HTTPOptions gleanhttp.Options

	// Source overrides the random source for id sampling.
	Source rand.Source
}

// Run decodes the message served at urlTemplate. When bucket is non-nil
// the result is also stored under dest.
//
// A run stopped by ctx returns a *fragments.IncompleteError. A result that
// cannot be stored is returned together with the storage error.
func Run(ctx context.Context, urlTemplate string, bucket *blob.Bucket, dest string, opts Options) (*fragments.Result, error) {
	if !strings.Contains(urlTemplate, gleanhttp.IDPlaceholder) {
		return nil, ErrInvalidTemplate
	}

	// Apply defaults
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.HTTPOptions.MaxIdleConnsPerHost == 0 {
		opts.HTTPOptions.MaxIdleConnsPerHost = gleanhttp.DefaultOptions().MaxIdleConnsPerHost
	}

	client := gleanhttp.NewClient(urlTemplate, opts.HTTPOptions)

	var observers fragments.Observers
	if opts.Progress != nil {
		observers = append(observers, opts.Progress)
		opts.Progress.Start()
		defer opts.Progress.Stop()
	}
	if opts.Metrics != nil {
		observers = append(observers, opts.Metrics)
	}

	decodeOpts := []fragments.Option{
		fragments.WithLogger(opts.Logger),
		fragments.WithObserver(observers),
	}
	if opts.MaxID > 0 {
		decodeOpts = append(decodeOpts, fragments.WithMaxID(opts.MaxID))
	}
	if opts.InitialRequests > 0 {
		decodeOpts = append(decodeOpts, fragments.WithInitialRequests(opts.InitialRequests))
	}
	if opts.QuietPeriod > 0 {
		decodeOpts = append(decodeOpts, fragments.WithQuietPeriod(opts.QuietPeriod))
	}
	if opts.ExtraRequests > 0 || opts.BackfillInterval > 0 {
		batch, interval := opts.ExtraRequests, opts.BackfillInterval
		if batch <= 0 {
			batch = fragments.DefaultExtraRequests
		}
		if interval <= 0 {
			interval = fragments.DefaultBackfillInterval
		}
		decodeOpts = append(decodeOpts, fragments.WithBackfill(batch, interval))
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		decodeOpts = append(decodeOpts, fragments.WithRateLimit(rate.Limit(opts.RateLimit), burst))
	}
	if opts.Source != nil {
		decodeOpts = append(decodeOpts, fragments.WithSource(opts.Source))
	}

	res, err := fragments.Decode(ctx, client, decodeOpts...)
	if err != nil {
		return nil, err
	}

	if bucket == nil {
		return res, nil
	}
	if err := results.Save(ctx, bucket, dest, res); err != nil {
		return res, fmt.Errorf("save result: %w", err)
	}
	opts.Logger.Info("result stored",
		zap.String("run_id", res.RunID),
		zap.String("object", dest),
	)
	return res, nil
}
