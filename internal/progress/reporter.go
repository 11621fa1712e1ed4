package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ligustah/glean/pkg/fragments"
)

// Options configures the progress reporter.
type Options struct {
	// SourceURL is the fragment URL template (for display).
	SourceURL string

	// InitialRequests is the size of the first probe batch (for display).
	InitialRequests int

	// ExtraRequests is the backfill batch size (for display).
	ExtraRequests int

	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer

	// UpdateInterval is how often to update the progress display.
	// Default: 500ms
	UpdateInterval time.Duration

	// NoticeInterval is the minimum gap between two incomplete notices.
	// Stalls inside the gap are only counted.
	// Default: 2s
	NoticeInterval time.Duration
}

// Reporter outputs human-readable progress information. It implements
// fragments.Observer.
type Reporter struct {
	opts Options

	mu         sync.Mutex
	outMu      sync.Mutex
	started    atomic.Int64
	hits       atomic.Int64
	duplicates atomic.Int64
	misses     atomic.Int64
	failed     atomic.Int64
	discarded  atomic.Int64
	inFlight   atomic.Int64
	backfills  atomic.Int64
	stalls     atomic.Int64
	startTime  time.Time
	lastNotice time.Time
	lastUpdate time.Time
	lastDone   int64
	stopCh     chan struct{}
	doneCh     chan struct{}
	running    bool
	stopped    bool
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = 500 * time.Millisecond
	}
	if opts.NoticeInterval == 0 {
		opts.NoticeInterval = 2 * time.Second
	}

	return &Reporter{
		opts:   opts,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins outputting progress information.
func (r *Reporter) Start() {
	r.mu.Lock()
	r.startTime = time.Now()
	r.lastUpdate = r.startTime
	r.running = true
	r.mu.Unlock()

	r.printf("[glean] Decoding: %s\n", r.opts.SourceURL)
	r.printf("[glean] Initial probes: %d | Backfill batch: %d\n",
		r.opts.InitialRequests,
		r.opts.ExtraRequests,
	)

	go r.updateLoop()
}

// Stop stops the progress reporter and waits for its final line.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if r.stopped || !r.running {
		r.stopped = true
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.stopCh)
	<-r.doneCh
}

// ProbeStarted marks a probe as in flight.
func (r *Reporter) ProbeStarted() {
	r.started.Add(1)
	r.inFlight.Add(1)
}

// ProbeDone records how a probe ended.
func (r *Reporter) ProbeDone(outcome fragments.Outcome) {
	r.inFlight.Add(-1)
	switch outcome {
	case fragments.OutcomeHit:
		r.hits.Add(1)
	case fragments.OutcomeDuplicate:
		r.duplicates.Add(1)
	case fragments.OutcomeMiss:
		r.misses.Add(1)
	case fragments.OutcomeFailed:
		r.failed.Add(1)
	case fragments.OutcomeDiscarded:
		r.discarded.Add(1)
	}
}

// BackfillLaunched records a backfill round.
func (r *Reporter) BackfillLaunched(round, batch int) {
	r.backfills.Store(int64(round))
}

// Stalled counts an incomplete quiet period and prints the notice at most
// once per NoticeInterval.
func (r *Reporter) Stalled(st fragments.Stats) {
	r.stalls.Add(1)

	now := time.Now()
	r.mu.Lock()
	if !r.lastNotice.IsZero() && now.Sub(r.lastNotice) < r.opts.NoticeInterval {
		r.mu.Unlock()
		return
	}
	r.lastNotice = now
	r.mu.Unlock()

	r.printf("\n[glean] Still incomplete: %d fragments, max index %d, missing %s; launching more requests\n",
		st.Fragments,
		st.MaxIndex,
		formatIndices(st.Missing),
	)
}

// Finished stops the display.
func (r *Reporter) Finished(fragments.Stats, time.Duration) {
	r.Stop()
}

// updateLoop periodically updates the progress display.
func (r *Reporter) updateLoop() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			r.printFinalStatus()
			return
		case <-ticker.C:
			r.printProgress()
		}
	}
}

// done returns the number of finished probes.
func (r *Reporter) done() int64 {
	return r.hits.Load() + r.duplicates.Load() + r.misses.Load() + r.failed.Load() + r.discarded.Load()
}

// printProgress outputs the current progress.
func (r *Reporter) printProgress() {
	now := time.Now()
	done := r.done()

	r.mu.Lock()
	elapsed := now.Sub(r.lastUpdate).Seconds()
	if elapsed < 0.1 {
		elapsed = 0.1
	}
	speed := float64(done-r.lastDone) / elapsed
	r.lastUpdate = now
	r.lastDone = done
	r.mu.Unlock()

	r.printf("\r[glean] Probes: %d issued | %d in-flight | %.0f/s | Fragments: %d | Backfills: %d    ",
		r.started.Load(),
		r.inFlight.Load(),
		speed,
		r.hits.Load(),
		r.backfills.Load(),
	)
}

// printFinalStatus outputs the final status.
func (r *Reporter) printFinalStatus() {
	r.mu.Lock()
	duration := time.Since(r.startTime)
	r.mu.Unlock()

	r.printf("\r[glean] Probes: %d issued | %d hits | %d duplicates | %d misses | %d failed | %d discarded    \n",
		r.started.Load(),
		r.hits.Load(),
		r.duplicates.Load(),
		r.misses.Load(),
		r.failed.Load(),
		r.discarded.Load(),
	)
	r.printf("[glean] Backfill rounds: %d | Incomplete quiet periods: %d | Total time: %s\n",
		r.backfills.Load(),
		r.stalls.Load(),
		FormatDuration(duration),
	)
}

// printf serialises writes to the output.
func (r *Reporter) printf(format string, args ...any) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	fmt.Fprintf(r.opts.Output, format, args...)
}

// formatIndices renders a missing-index list.
func formatIndices(idx []int64) string {
	if len(idx) == 0 {
		return "none"
	}
	parts := make([]string, len(idx))
	for i, v := range idx {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// FormatDuration formats a duration as a human-readable string.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
