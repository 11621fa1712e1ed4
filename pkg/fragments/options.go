package fragments

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Defaults used by Decode when an option is unset.
const (
	DefaultMaxID            = math.MaxInt64
	DefaultInitialRequests  = 500
	DefaultQuietPeriod      = 50 * time.Millisecond
	DefaultExtraRequests    = 50
	DefaultBackfillInterval = 50 * time.Millisecond
)

// Options configures a decode run.
type Options struct {
	MaxID            int64
	InitialRequests  int
	QuietPeriod      time.Duration
	ExtraRequests    int
	BackfillInterval time.Duration

	// RateLimit paces fetches across all probes. Zero means unlimited.
	RateLimit rate.Limit
	RateBurst int

	RunID    string
	Source   rand.Source
	Clock    clockwork.Clock
	Logger   *zap.Logger
	Observer Observer
}

// Option is a functional option for configuring Decode.
type Option func(*Options)

// WithMaxID sets the upper bound of the id space. Ids are drawn from [1, max].
func WithMaxID(max int64) Option {
	return func(o *Options) {
		o.MaxID = max
	}
}

// WithInitialRequests sets the size of the first probe batch.
func WithInitialRequests(n int) Option {
	return func(o *Options) {
		o.InitialRequests = n
	}
}

// WithQuietPeriod sets how long no new index may arrive before completion
// is evaluated.
func WithQuietPeriod(d time.Duration) Option {
	return func(o *Options) {
		o.QuietPeriod = d
	}
}

// WithBackfill sets the number of probes launched per backfill round and
// the interval between rounds.
func WithBackfill(batch int, interval time.Duration) Option {
	return func(o *Options) {
		o.ExtraRequests = batch
		o.BackfillInterval = interval
	}
}

// WithRateLimit caps the fetch rate across all probes. A zero limit
// disables pacing.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(o *Options) {
		o.RateLimit = limit
		o.RateBurst = burst
	}
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(o *Options) {
		o.RunID = id
	}
}

// WithSource sets the random source used for id sampling.
func WithSource(src rand.Source) Option {
	return func(o *Options) {
		o.Source = src
	}
}

// WithClock sets the clock driving the quiet period, backfill ticks and the
// elapsed-time measurement.
func WithClock(clock clockwork.Clock) Option {
	return func(o *Options) {
		o.Clock = clock
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithObserver sets the observer that receives probe and run events.
func WithObserver(obs Observer) Option {
	return func(o *Options) {
		o.Observer = obs
	}
}

func buildOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	if o.MaxID <= 0 {
		o.MaxID = DefaultMaxID
	}
	if o.InitialRequests <= 0 {
		o.InitialRequests = DefaultInitialRequests
	}
	if o.QuietPeriod <= 0 {
		o.QuietPeriod = DefaultQuietPeriod
	}
	if o.ExtraRequests <= 0 {
		o.ExtraRequests = DefaultExtraRequests
	}
	if o.BackfillInterval <= 0 {
		o.BackfillInterval = DefaultBackfillInterval
	}
	if o.RateLimit > 0 && o.RateBurst <= 0 {
		o.RateBurst = 1
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Observer == nil {
		o.Observer = NopObserver{}
	}
	return o
}
