package fragments

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Result is the outcome of a completed run. Requests counts fetches
// actually issued, not probes registered.
type Result struct {
	RunID       string        `json:"run_id"`
	Message     string        `json:"message"`
	Spaced      string        `json:"spaced"`
	Texts       []string      `json:"texts"`
	Fragments   int           `json:"fragments"`
	Requests    int64         `json:"requests"`
	Backfills   int64         `json:"backfills"`
	Elapsed     time.Duration `json:"elapsed"`
	CompletedAt time.Time     `json:"completed_at"`
}

// IncompleteError is returned when a run is stopped by its context before
// the fragment range was complete.
type IncompleteError struct {
	RunID     string
	Fragments int
	MaxIndex  int64
	Requests  int64
	Err       error
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("fragments: run %s incomplete: %d fragments, max index %d, %d requests: %v",
		e.RunID, e.Fragments, e.MaxIndex, e.Requests, e.Err)
}

func (e *IncompleteError) Unwrap() error {
	return e.Err
}

type decoder struct {
	opts    Options
	fetcher Fetcher
	store   *Store
	sampler *Sampler
	reg     *registry
	limiter *rate.Limiter
	clock   clockwork.Clock
	log     *zap.Logger
	obs     Observer
	rounds  atomic.Int64
	fetches atomic.Int64
}

func newDecoder(ctx context.Context, fetcher Fetcher, o Options) *decoder {
	d := &decoder{
		opts:    o,
		fetcher: fetcher,
		store:   NewStore(),
		sampler: NewSampler(o.MaxID, o.Source),
		reg:     newRegistry(ctx),
		clock:   o.Clock,
		log:     o.Logger,
		obs:     o.Observer,
	}
	if o.RateLimit > 0 {
		d.limiter = rate.NewLimiter(o.RateLimit, o.RateBurst)
	}
	return d
}

// Decode samples ids through fetcher until the collected fragments form the
// complete range [0, max index] and returns the assembled message.
//
// Decode only fails when ctx ends first; the error is an *IncompleteError
// wrapping ctx.Err().
func Decode(ctx context.Context, fetcher Fetcher, opts ...Option) (*Result, error) {
	o := buildOptions(opts)
	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}
	o.Logger = o.Logger.With(zap.String("run_id", o.RunID))

	d := newDecoder(ctx, fetcher, o)
	start := d.clock.Now()

	d.log.Info("decode started",
		zap.Int64("max_id", o.MaxID),
		zap.Int("initial_requests", o.InitialRequests),
		zap.Duration("quiet_period", o.QuietPeriod),
		zap.Int("extra_requests", o.ExtraRequests),
		zap.Duration("backfill_interval", o.BackfillInterval),
	)

	d.launchBatch(o.InitialRequests)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.runBackfill(d.reg.ctx, stop)
	}()

	err := d.awaitComplete(ctx)

	// Teardown: no store mutation after this point, no new probes, then
	// cancel and wait for every registered probe.
	d.store.Seal()
	close(stop)
	wg.Wait()
	d.reg.shutdown()

	elapsed := d.clock.Since(start)
	stats := d.store.Stats(maxReportedMissing)
	d.obs.Finished(stats, elapsed)

	if err != nil {
		d.log.Warn("decode stopped before completion",
			zap.Int("fragments", stats.Fragments),
			zap.Int64("max_index", stats.MaxIndex),
			zap.Error(err),
		)
		return nil, &IncompleteError{
			RunID:     o.RunID,
			Fragments: stats.Fragments,
			MaxIndex:  stats.MaxIndex,
			Requests:  d.fetches.Load(),
			Err:       err,
		}
	}

	entries := d.store.Snapshot()
	texts := Ordered(entries)
	message, spaced := Assemble(entries)
	res := &Result{
		RunID:       o.RunID,
		Message:     message,
		Spaced:      spaced,
		Texts:       texts,
		Fragments:   len(texts),
		Requests:    d.fetches.Load(),
		Backfills:   d.rounds.Load(),
		Elapsed:     elapsed,
		CompletedAt: d.clock.Now().UTC(),
	}

	d.log.Info("decode complete",
		zap.Int("fragments", res.Fragments),
		zap.Int64("requests", res.Requests),
		zap.Int64("backfills", res.Backfills),
		zap.Duration("elapsed", elapsed),
	)
	return res, nil
}
