package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// Exit codes
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitInvalidArgs      = 2
	ExitIncomplete       = 3
	ExitStorageError     = 4
	ExitValidationFailed = 5
)

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	return execute(args, os.Stdin, os.Stdout, os.Stderr)
}

func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(context.Background())
	if err == nil {
		return ExitSuccess
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}

	// Anything cobra rejects before RunE (unknown command or flag, bad
	// value) is a usage error.
	fmt.Fprintf(stderr, "Error: %v\n", err)
	fmt.Fprintf(stderr, "Run 'glean --help' for usage.\n")
	return ExitInvalidArgs
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "glean",
		Short: "Reconstruct a message scattered across randomly addressed fragments",
		Long: `glean samples random ids from a fragment endpoint until the collected
fragments form a gap-free range, then prints the assembled message.

Commands:
  decode  Sample the endpoint and assemble the message
  show    Print and verify a stored result
  delete  Remove a stored result`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(newDecodeCmd(), newShowCmd(), newDeleteCmd())
	return root
}
