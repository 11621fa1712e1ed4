package fragments

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// probe performs a single fetch for id and records the result. Failures are
// swallowed: a random probe that misses or errors simply contributes
// nothing.
func (d *decoder) probe(ctx context.Context, id int64) {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return
		}
	}

	d.obs.ProbeStarted()
	d.obs.ProbeDone(d.fetchAndStore(ctx, id))
}

func (d *decoder) fetchAndStore(ctx context.Context, id int64) Outcome {
	d.fetches.Add(1)
	frag, err := d.fetcher.Fetch(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return OutcomeDiscarded
		}
		if errors.Is(err, ErrNoFragment) {
			return OutcomeMiss
		}
		d.log.Debug("probe failed", zap.Int64("id", id), zap.Error(err))
		return OutcomeFailed
	}

	// The run may have ended while the fetch was in flight.
	if ctx.Err() != nil {
		return OutcomeDiscarded
	}

	switch d.store.Insert(frag) {
	case Inserted:
		d.log.Debug("fragment stored",
			zap.Int64("id", id),
			zap.Int64("index", frag.Index),
		)
		return OutcomeHit
	case Duplicate:
		return OutcomeDuplicate
	default:
		if frag.Index < 0 {
			d.log.Debug("negative fragment index", zap.Int64("id", id), zap.Int64("index", frag.Index))
			return OutcomeFailed
		}
		return OutcomeDiscarded
	}
}
