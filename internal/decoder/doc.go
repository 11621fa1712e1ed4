// Package decoder wires the HTTP fragment client, progress output, metrics
// and result storage around fragments.Decode.
//
// # Usage
//
// The main entry point is the Run function:
//
//	res, err := decoder.Run(ctx, "http://host/fragment?id={id}", bucket, "runs/latest.json", decoder.Options{
//	    InitialRequests: 500,
//	    QuietPeriod:     50 * time.Millisecond,
//	    Progress:        reporter,
//	})
//
// A nil bucket skips storage. Zero-valued options fall back to the
// fragments package defaults.
//
// # Graceful Shutdown
//
// On SIGINT/SIGTERM the caller cancels ctx:
//   - No further probes are launched
//   - In-flight probes are cancelled and waited for
//   - Run returns a *fragments.IncompleteError and stores nothing
package decoder
