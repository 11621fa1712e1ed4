// Package results persists decode results in cloud storage.
//
// Results are stored as a single JSON object per key and are
// storage-agnostic via gocloud.dev/blob: any bucket URL the binary has a
// driver for works (mem://, file://, s3://).
//
// # Operations
//
//   - [Save]: write a [fragments.Result] under a key
//   - [Load]: read it back, [ErrNotFound] if absent
//   - [Delete]: remove it
//   - [Validate]: load and check the renderings against the stored texts
//
// # Object Format
//
//	{
//	  "run_id": "0b6c...",
//	  "message": "Hellosparseworld",
//	  "spaced": "Hello sparse world",
//	  "texts": ["Hello", "sparse", "world"],
//	  "fragments": 3,
//	  "requests": 550,
//	  "backfills": 1,
//	  "elapsed": 112000000,
//	  "completed_at": "2025-01-15T10:30:00Z"
//	}
//
// The object carries the content type application/json and a run_id
// metadata entry.
package results
