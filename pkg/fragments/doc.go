// Package fragments reconstructs a message that is scattered across a sparse
// identifier space.
//
// A remote endpoint maps identifiers to either nothing or a [Fragment]
// carrying a sequence index and a piece of text. The identifier space is far
// too large to enumerate, so [Decode] samples it at random with many
// concurrent probes, collects every fragment it finds in a [Store], and stops
// once the collected indices form the gap-free range [0, max index seen].
//
// # Usage
//
//	res, err := fragments.Decode(ctx, fetcher,
//	    fragments.WithInitialRequests(500),
//	    fragments.WithQuietPeriod(50*time.Millisecond),
//	    fragments.WithBackfill(50, 50*time.Millisecond),
//	)
//	fmt.Println(res.Message)
//
// # Completion
//
// There is no authoritative "all fragments delivered" signal. Every newly
// stored index wakes the detector; completion is only evaluated once no new
// index has arrived for the quiet period. A run therefore always ends at
// least one quiet period after its last new fragment.
//
// Index 0 is always expected, even before anything has been stored.
//
// # Backfill
//
// While the run is incomplete, a batch of extra probes is launched on every
// backfill interval regardless of how many earlier probes are still in
// flight. There is no cap on the total number of probes; bound a run with a
// context deadline instead.
//
// # Teardown
//
// When the range is complete the store is sealed in the same critical
// section that confirmed completion, so late probe results are discarded.
// All probes are then cancelled and waited for before the elapsed time is
// measured.
package fragments
