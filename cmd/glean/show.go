package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gocloud.dev/blob"

	"github.com/ligustah/glean/pkg/results"
)

// newShowCmd prints a stored result and checks that it is internally
// consistent.
func newShowCmd() *cobra.Command {
	var bucket, object string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print and verify a stored result",
		Long: `Load a result stored by 'glean decode --bucket --object', print it and
verify that its message and spaced rendering match the stored fragment texts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate required flags
			if bucket == "" || object == "" {
				return withCode(ExitInvalidArgs, errors.New("--bucket and --object are required"))
			}

			// Setup context with cancellation
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			// Open bucket
			bkt, err := blob.OpenBucket(ctx, bucket)
			if err != nil {
				return withCode(ExitStorageError, fmt.Errorf("open bucket: %w", err))
			}
			defer bkt.Close()

			res, err := results.Load(ctx, bkt, object)
			if err != nil {
				return withCode(ExitStorageError, err)
			}
			v := results.Check(res)

			// Print results
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Object: %s\n", object)
			fmt.Fprintf(out, "Run: %s\n", res.RunID)
			fmt.Fprintf(out, "Completed: %s\n", res.CompletedAt.Format(time.RFC3339))
			fmt.Fprintf(out, "Requests: %d | Backfill rounds: %d\n", res.Requests, res.Backfills)
			printResult(out, res)

			if v.Valid {
				fmt.Fprintln(out, "Status: VALID")
				return nil
			}

			fmt.Fprintln(out, "Status: INVALID")
			if len(v.Errors) > 0 {
				fmt.Fprintln(out, "\nErrors:")
				for _, e := range v.Errors {
					fmt.Fprintf(out, "  - %s\n", e)
				}
			}
			return withCode(ExitValidationFailed, fmt.Errorf("stored result %s is inconsistent", object))
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "Bucket URL (required)")
	cmd.Flags().StringVar(&object, "object", "", "Object key (required)")
	return cmd
}
