// Package http provides the HTTP fragment fetcher.
//
// This package handles:
//   - Connection pooling for many concurrent probes
//   - Substituting the probed id into a URL template
//   - Mapping non-200 responses to fragments.ErrNoFragment
//   - Decoding {"index": n, "text": "..."} bodies
//
// # Usage
//
//	client := http.NewClient("http://localhost:8080/fragment?id={id}", Options{
//	    MaxIdleConnsPerHost: 100,
//	    Timeout:             10 * time.Second,
//	})
//
//	frag, err := client.Fetch(ctx, id)
//	if errors.Is(err, fragments.ErrNoFragment) {
//	    // nothing at this id
//	}
package http
