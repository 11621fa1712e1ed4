package main

import (
	"bufio"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gocloud.dev/blob"

	"github.com/ligustah/glean/pkg/results"
)

// newDeleteCmd removes a stored result. By default prompts for
// confirmation unless --force is specified.
func newDeleteCmd() *cobra.Command {
	var bucket, object string
	var force bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove a stored result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate required flags
			if bucket == "" || object == "" {
				return withCode(ExitInvalidArgs, errors.New("--bucket and --object are required"))
			}

			// Confirm deletion unless --force
			if !force {
				fmt.Fprintf(cmd.OutOrStdout(), "Delete result %s from %s? [y/N]: ", object, bucket)
				reader := bufio.NewReader(cmd.InOrStdin())
				response, _ := reader.ReadString('\n')
				response = strings.TrimSpace(strings.ToLower(response))
				if response != "y" && response != "yes" {
					fmt.Fprintln(cmd.ErrOrStderr(), "Cancelled")
					return nil
				}
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

			if err := results.Delete(ctx, bkt, object); err != nil {
				return withCode(ExitStorageError, err)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "[glean] Deleted: %s/%s\n", bucket, object)
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "Bucket URL (required)")
	cmd.Flags().StringVar(&object, "object", "", "Object key (required)")
	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")
	return cmd
}
