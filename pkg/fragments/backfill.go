package fragments

import (
	"context"

	"go.uber.org/zap"
)

// runBackfill launches a batch of extra probes on every backfill interval
// until stop is closed, whether or not earlier probes have finished.
func (d *decoder) runBackfill(ctx context.Context, stop <-chan struct{}) {
	ticker := d.clock.NewTicker(d.opts.BackfillInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		}

		// stop may have closed while the tick was pending.
		select {
		case <-stop:
			return
		default:
		}

		if d.backlogFull() {
			d.log.Debug("backfill round skipped, probes still waiting on the rate limit",
				zap.Int64("pending", d.reg.pending.Load()),
			)
			continue
		}

		d.launchBatch(d.opts.ExtraRequests)
		round := int(d.rounds.Add(1))
		d.obs.BackfillLaunched(round, d.opts.ExtraRequests)
		d.log.Debug("backfill round launched",
			zap.Int("round", round),
			zap.Int("batch", d.opts.ExtraRequests),
			zap.Int64("launched", d.reg.launched.Load()),
		)
	}
}

// backlogFull reports whether enough probes are already queued behind the
// rate limiter to cover the next interval. Without a limiter it is always
// false.
func (d *decoder) backlogFull() bool {
	if d.limiter == nil {
		return false
	}
	allowance := int64(float64(d.opts.RateLimit)*d.opts.BackfillInterval.Seconds()) + int64(d.opts.RateBurst)
	if allowance < int64(d.opts.ExtraRequests) {
		allowance = int64(d.opts.ExtraRequests)
	}
	return d.reg.pending.Load() >= allowance
}

// stalled handles a quiet period that ended without completion. Launches
// stay with the backfill ticker; this only reports the gap.
func (d *decoder) stalled() {
	st := d.store.Stats(maxReportedMissing)
	d.obs.Stalled(st)
	d.log.Info("still incomplete, launching more requests",
		zap.Int("fragments", st.Fragments),
		zap.Int64("max_index", st.MaxIndex),
		zap.Int64s("missing", st.Missing),
		zap.Int64("pending", d.reg.pending.Load()),
	)
}

// launchBatch registers n probes at freshly sampled ids.
func (d *decoder) launchBatch(n int) {
	for i := 0; i < n; i++ {
		id := d.sampler.Next()
		d.reg.launch(func(ctx context.Context) {
			d.probe(ctx, id)
		})
	}
}
