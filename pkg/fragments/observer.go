package fragments

import "time"

// Outcome classifies how a single probe ended.
type Outcome int

const (
	// OutcomeHit means a new index was stored.
	OutcomeHit Outcome = iota
	// OutcomeDuplicate means the fragment's index was already stored.
	OutcomeDuplicate
	// OutcomeMiss means nothing lives at the probed id.
	OutcomeMiss
	// OutcomeFailed means the fetch failed (transport error, bad body, ...).
	OutcomeFailed
	// OutcomeDiscarded means the probe finished after the run was torn down.
	OutcomeDiscarded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeMiss:
		return "miss"
	case OutcomeFailed:
		return "failed"
	case OutcomeDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Observer receives run events. Methods are called from many goroutines
// and must not block.
type Observer interface {
	// ProbeStarted is called before a probe's fetch.
	ProbeStarted()
	// ProbeDone is called once per started probe.
	ProbeDone(outcome Outcome)
	// BackfillLaunched is called after a backfill round registered its probes.
	BackfillLaunched(round int, batch int)
	// Stalled is called on every quiet period that ends without completion.
	Stalled(stats Stats)
	// Finished is called once after teardown.
	Finished(stats Stats, elapsed time.Duration)
}

// NopObserver ignores all events. Embed it to implement a subset.
type NopObserver struct{}

func (NopObserver) ProbeStarted()                 {}
func (NopObserver) ProbeDone(Outcome)             {}
func (NopObserver) BackfillLaunched(int, int)     {}
func (NopObserver) Stalled(Stats)                 {}
func (NopObserver) Finished(Stats, time.Duration) {}

// Observers fans events out to several observers.
type Observers []Observer

func (obs Observers) ProbeStarted() {
	for _, o := range obs {
		o.ProbeStarted()
	}
}

func (obs Observers) ProbeDone(outcome Outcome) {
	for _, o := range obs {
		o.ProbeDone(outcome)
	}
}

func (obs Observers) BackfillLaunched(round, batch int) {
	for _, o := range obs {
		o.BackfillLaunched(round, batch)
	}
}

func (obs Observers) Stalled(stats Stats) {
	for _, o := range obs {
		o.Stalled(stats)
	}
}

func (obs Observers) Finished(stats Stats, elapsed time.Duration) {
	for _, o := range obs {
		o.Finished(stats, elapsed)
	}
}
