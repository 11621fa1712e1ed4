package fragments

import "context"

// maxReportedMissing bounds the missing-index list attached to stall events.
const maxReportedMissing = 16

// awaitComplete blocks until the store holds exactly [0, max index] after a
// quiet period, sealing it in the same step. New fragments restart the
// quiet period without a completion check. Quiet periods that end
// incomplete are handed to the backfill controller.
func (d *decoder) awaitComplete(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.store.Notify():
			continue
		case <-d.clock.After(d.opts.QuietPeriod):
		}

		if d.store.SealIfComplete() {
			return nil
		}
		d.stalled()
	}
}
