// Package progress provides progress reporting for decode runs.
//
// The Reporter implements fragments.Observer and writes human-readable
// status lines to stderr: probes issued, in-flight probes, probe rate,
// fragments found and backfill rounds, plus a notice every time a quiet
// period ends with the message still incomplete.
//
// # Usage
//
//	reporter := progress.NewReporter(Options{
//	    SourceURL:       url,
//	    InitialRequests: 500,
//	    ExtraRequests:   50,
//	})
//
//	reporter.Start()
//	defer reporter.Stop()
//
//	res, err := fragments.Decode(ctx, fetcher, fragments.WithObserver(reporter))
//
// # Output Format
//
//	[glean] Decoding: http://localhost:8080/fragment?id={id}
//	[glean] Initial probes: 500 | Backfill batch: 50
//	[glean] Probes: 1450 issued | 212 in-flight | 2900/s | Fragments: 37 | Backfills: 19
//	[glean] Still incomplete: 37 fragments, max index 39, missing [12 30]; launching more requests
package progress
