package fragments

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// registry supervises every probe launched during a run. Probes share one
// context that is cancelled at teardown; nothing is removed before then.
type registry struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group

	launched atomic.Int64
	pending  atomic.Int64
}

func newRegistry(parent context.Context) *registry {
	ctx, cancel := context.WithCancel(parent)
	return &registry{ctx: ctx, cancel: cancel}
}

// launch registers fn and runs it on its own goroutine. It must not be
// called once shutdown has started.
func (r *registry) launch(fn func(ctx context.Context)) {
	r.launched.Add(1)
	r.pending.Add(1)
	r.group.Go(func() error {
		defer r.pending.Add(-1)
		fn(r.ctx)
		return nil
	})
}

// shutdown cancels all probes and waits for them to return.
func (r *registry) shutdown() {
	r.cancel()
	_ = r.group.Wait()
}
