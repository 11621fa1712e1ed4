package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/ligustah/glean/pkg/fragments"
)

// ErrNotFound is returned when no result is stored under the given key.
var ErrNotFound = errors.New("result not found")

// contentType is set on every stored result object.
const contentType = "application/json"

// Save writes res as JSON to key in bucket, replacing any existing object.
//
// Returns an error if:
//   - res is nil
//   - The object cannot be written (permission denied, network error)
//   - The context is cancelled (context.Canceled or context.DeadlineExceeded)
func Save(ctx context.Context, bucket *blob.Bucket, key string, res *fragments.Result) error {
	if res == nil {
		return errors.New("results: nil result")
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("results: marshal: %w", err)
	}
	err = bucket.WriteAll(ctx, key, data, &blob.WriterOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"run_id": res.RunID},
	})
	if err != nil {
		return fmt.Errorf("results: write %s: %w", key, err)
	}
	return nil
}

// Load reads the result stored at key.
//
// Returns an error if:
//   - The object doesn't exist (error wraps ErrNotFound)
//   - The JSON is malformed (encoding/json error)
//   - The context is cancelled (context.Canceled or context.DeadlineExceeded)
func Load(ctx context.Context, bucket *blob.Bucket, key string) (*fragments.Result, error) {
	data, err := bucket.ReadAll(ctx, key)
	if err != nil {
		if isNotExist(err) {
			return nil, fmt.Errorf("results: %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("results: read %s: %w", key, err)
	}

	var res fragments.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("results: unmarshal %s: %w", key, err)
	}
	return &res, nil
}

// Delete removes the result stored at key.
//
// Returns an error wrapping ErrNotFound if nothing is stored there.
func Delete(ctx context.Context, bucket *blob.Bucket, key string) error {
	if err := bucket.Delete(ctx, key); err != nil {
		if isNotExist(err) {
			return fmt.Errorf("results: %s: %w", key, ErrNotFound)
		}
		return fmt.Errorf("results: delete %s: %w", key, err)
	}
	return nil
}

// ValidationResult contains the results of validating a stored result.
type ValidationResult struct {
	Valid     bool     // true if the stored renderings agree with the texts
	RunID     string   // run id from the stored result
	Fragments int      // number of fragment texts stored
	Errors    []string // detailed error messages
}

// Validate loads the result at key and checks that its message, spaced
// rendering and fragment count are consistent with its ordered texts.
//
// Inconsistencies are NOT returned as errors. They are reported in the
// ValidationResult with Valid=false.
func Validate(ctx context.Context, bucket *blob.Bucket, key string) (*ValidationResult, error) {
	res, err := Load(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	return Check(res), nil
}

// Check reports whether res is internally consistent.
func Check(res *fragments.Result) *ValidationResult {
	v := &ValidationResult{
		Valid:     true,
		RunID:     res.RunID,
		Fragments: len(res.Texts),
		Errors:    make([]string, 0),
	}
	fail := func(format string, args ...any) {
		v.Valid = false
		v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
	}

	if res.Fragments != len(res.Texts) {
		fail("fragment count mismatch: recorded %d, stored %d texts", res.Fragments, len(res.Texts))
	}
	if want := strings.Join(res.Texts, ""); res.Message != want {
		fail("message does not match concatenated texts")
	}
	if want := strings.Join(res.Texts, " "); res.Spaced != want {
		fail("spaced rendering does not match joined texts")
	}
	if res.Fragments == 0 {
		fail("result holds no fragments")
	}
	return v
}

func isNotExist(err error) bool {
	return gcerrors.Code(err) == gcerrors.NotFound
}
